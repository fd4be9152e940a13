package annotate

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"
)

// Annotate 扫描目标工作簿，给命中的行追加 "(科目 老师)" 后缀
// 原地修改工作簿；返回改动单元格数与未匹配清单
// 时间/节次方案只扫描活动工作表的星期网格，token 方案扫描所有文本单元格
func Annotate(f *excelize.File, m *Mapping, opts Options) (Result, error) {
	if err := opts.Validate(); err != nil {
		return Result{}, err
	}

	a := &annotator{f: f, m: m, opts: opts}
	var err error
	if opts.Scheme == KeyByToken {
		err = a.annotateAllCells()
	} else {
		err = a.annotateDayGrid()
	}
	if err != nil {
		return Result{}, err
	}
	a.res.MappingSize = m.Len()
	return a.res, nil
}

type annotator struct {
	f    *excelize.File
	m    *Mapping
	opts Options
	res  Result

	wrapStyle int // 懒创建的 WrapText 样式，0 表示尚未创建
}

// annotateDayGrid 星期网格：第 2 行是星期标头，第 3 行起 A 列是开始时间或节次
func (a *annotator) annotateDayGrid() error {
	sheet := a.f.GetSheetName(a.f.GetActiveSheetIndex())
	if sheet == "" {
		sheets := a.f.GetSheetList()
		if len(sheets) == 0 {
			return nil
		}
		sheet = sheets[0]
	}

	rows, err := a.f.GetRows(sheet)
	if err != nil {
		return fmt.Errorf("读取工作表 %s 失败: %w", sheet, err)
	}
	if len(rows) < 2 {
		return nil
	}

	// 星期标头（B 列起），"一".."五" 规范化为全称
	days := make(map[int]string)
	for c := 1; c < len(rows[1]); c++ {
		if d := Clean(rows[1][c]); d != "" {
			days[c] = DayName(d)
		}
	}

	for r := 2; r < len(rows); r++ {
		slot, ok := a.rowSlot(cellAt(rows, r, 0))
		if !ok {
			continue
		}
		for c, day := range days {
			text := cellAt(rows, r, c)
			if strings.TrimSpace(text) == "" {
				continue
			}
			cell, err := excelize.CoordinatesToCellName(c+1, r+1)
			if err != nil {
				continue
			}
			a.processCell(sheet, cell, day, slot, text)
		}
	}
	return nil
}

// rowSlot 解析网格行的时段：时间方案取开始时间，节次方案取整数节次
func (a *annotator) rowSlot(label string) (string, bool) {
	if a.opts.Scheme == KeyByStartTime {
		return ParseStartTime(label)
	}
	period, ok := parsePeriod(label)
	if !ok {
		return "", false
	}
	return strconv.Itoa(period), true
}

// annotateAllCells token 方案：遍历所有工作表的全部文本单元格
func (a *annotator) annotateAllCells() error {
	for _, sheet := range a.f.GetSheetList() {
		rows, err := a.f.GetRows(sheet)
		if err != nil {
			continue
		}
		for r, row := range rows {
			for c, text := range row {
				if strings.TrimSpace(text) == "" {
					continue
				}
				cell, err := excelize.CoordinatesToCellName(c+1, r+1)
				if err != nil {
					continue
				}
				a.processCell(sheet, cell, "", "", text)
			}
		}
	}
	return nil
}

// processCell 逐行处理单元格文本，有改动时回写
func (a *annotator) processCell(sheet, cell, day, slot, text string) {
	lines := strings.Split(text, "\n")
	newLines := make([]string, 0, len(lines))

	for i := 0; i < len(lines); i++ {
		// 换行方案下后缀在下一行，向前看一行保证幂等
		var next string
		if i+1 < len(lines) {
			next = lines[i+1]
		}
		out, consumedNext := a.processLine(sheet, cell, day, slot, lines[i], next)
		newLines = append(newLines, out...)
		// 已认领的后缀行不再作为普通行扫描，防止后缀文本里碰巧
		// 含有班别 token 时被二次标注或记成未匹配
		if consumedNext {
			i++
		}
	}

	newText := strings.Join(newLines, "\n")
	if newText == text {
		return
	}
	if err := a.f.SetCellValue(sheet, cell, newText); err != nil {
		return
	}
	a.res.CellsChanged++
	if a.opts.Placement == NewLine && strings.Contains(newText, "\n") {
		a.ensureWrapped(sheet, cell)
	}
}

// processLine 单行：找 token、查表、按写入方式追加；查不到记一条未匹配
// 返回替换该行的行序列（同行方案恒为 1 行，换行方案命中时为 2 行），
// 以及下一行是否已作为既有后缀被认领
func (a *annotator) processLine(sheet, cell, day, slot, line, next string) ([]string, bool) {
	class, digits, ok := FindClassToken(line)
	if !ok {
		return []string{line}, false
	}

	var key string
	switch a.opts.Scheme {
	case KeyByStartTime:
		key = timeKey(day, slot, class)
	case KeyByPeriod:
		period, _ := strconv.Atoi(slot)
		key = periodKey(day, period, class)
	case KeyByToken:
		key = tokenKey(class, digits)
		slot = digits
	}

	suffix, found := a.m.Lookup(key)
	if !found {
		a.res.Unmatched = append(a.res.Unmatched, UnmatchedRecord{
			Sheet: sheet,
			Cell:  cell,
			Day:   day,
			Slot:  slot,
			Class: class,
			Line:  line,
		})
		return []string{line}, false
	}
	if strings.Contains(line, suffix) {
		return []string{line}, false
	}
	if a.opts.Placement == NewLine {
		if next == suffix {
			return []string{line, suffix}, true
		}
		return []string{line, suffix}, false
	}
	return []string{line + " " + suffix}, false
}

// ensureWrapped 打开单元格的自动换行，保证追加的新行可见
func (a *annotator) ensureWrapped(sheet, cell string) {
	if a.wrapStyle == 0 {
		style, err := a.f.NewStyle(&excelize.Style{
			Alignment: &excelize.Alignment{WrapText: true, Vertical: "top"},
		})
		if err != nil {
			return
		}
		a.wrapStyle = style
	}
	_ = a.f.SetCellStyle(sheet, cell, cell, a.wrapStyle)
}
