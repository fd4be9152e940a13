package annotate

import (
	"testing"

	"github.com/xuri/excelize/v2"
)

// 测试用的工作簿构建辅助，风格对齐 excelize 的内存构建

func setRow(t *testing.T, f *excelize.File, sheet, cell string, values []interface{}) {
	t.Helper()
	if err := f.SetSheetRow(sheet, cell, &values); err != nil {
		t.Fatalf("SetSheetRow(%s!%s) failed: %v", sheet, cell, err)
	}
}

func addSheet(t *testing.T, f *excelize.File, name string) {
	t.Helper()
	if _, err := f.NewSheet(name); err != nil {
		t.Fatalf("NewSheet(%s) failed: %v", name, err)
	}
}

// buildTimetable 最小课表：星期一，1A/1B 两班、两个节次块
// 块结构：科目行 / "-" 分隔行 / 老师行，A 列节次号，B 列开始时间
func buildTimetable(t *testing.T) *excelize.File {
	t.Helper()
	f := excelize.NewFile()
	if err := f.SetSheetName("Sheet1", "星期一"); err != nil {
		t.Fatalf("SetSheetName failed: %v", err)
	}
	setRow(t, f, "星期一", "A1", []interface{}{"節次", "時間", "1A", "1B"})
	setRow(t, f, "星期一", "A2", []interface{}{1, "9:05am-9:40am", "Math", "中文"})
	setRow(t, f, "星期一", "A3", []interface{}{"", "", "-", "-"})
	setRow(t, f, "星期一", "A4", []interface{}{"", "", "Ms. X", ""})
	setRow(t, f, "星期一", "A5", []interface{}{2, "9:45am-10:20am", "Science", "-"})
	setRow(t, f, "星期一", "A6", []interface{}{"", "", "-", "-"})
	setRow(t, f, "星期一", "A7", []interface{}{"", "", "Mr. Y", "Ms. Z"})
	return f
}

// buildTargetGrid 最小待标注表：第 2 行星期标头，第 3 行起 A 列时段
func buildTargetGrid(t *testing.T, slotLabel, cellText string) *excelize.File {
	t.Helper()
	f := excelize.NewFile()
	setRow(t, f, "Sheet1", "A2", []interface{}{"", "一", "二"})
	setRow(t, f, "Sheet1", "A3", []interface{}{slotLabel, cellText})
	return f
}

func workbookBytes(t *testing.T, f *excelize.File) []byte {
	t.Helper()
	buf, err := f.WriteToBuffer()
	if err != nil {
		t.Fatalf("WriteToBuffer failed: %v", err)
	}
	return buf.Bytes()
}

func cellValue(t *testing.T, f *excelize.File, sheet, cell string) string {
	t.Helper()
	v, err := f.GetCellValue(sheet, cell)
	if err != nil {
		t.Fatalf("GetCellValue(%s!%s) failed: %v", sheet, cell, err)
	}
	return v
}
