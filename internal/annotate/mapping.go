package annotate

import (
	"bytes"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"
)

// 严格模式下课表结构缺失时返回的错误
var (
	ErrNoClassColumns = errors.New("课表中找不到班别标头")
	ErrNoPeriodBlocks = errors.New("课表中找不到节次块")
)

// periodBlock 一个节次块
// Row 是科目行（0 起算的行下标），老师在 Row+2；Start 仅时间方案使用
type periodBlock struct {
	Row    int
	Period int
	Start  string
}

// BuildMapping 从课表文件字节构建对照表
// 每个工作表对应一个星期；标头行找班别列，A 列找节次块，
// 科目取块首行、老师取 +2 行，拼成 "(科目 老师)" 后缀
func BuildMapping(source []byte, opts Options) (*Mapping, error) {
	if err := opts.Validate(); err != nil {
		return nil, err
	}

	f, err := excelize.OpenReader(bytes.NewReader(source))
	if err != nil {
		return nil, fmt.Errorf("打开课表文件失败: %w", err)
	}
	defer f.Close()

	m := NewMapping()
	sawData := false
	sawClassCols := false
	sawBlocks := false

	for _, sheet := range f.GetSheetList() {
		rows, err := f.GetRows(sheet)
		if err != nil || len(rows) == 0 {
			continue
		}
		sawData = true
		day := DayName(sheet)

		classCols := classColumns(f, sheet, rows)
		if len(classCols) == 0 {
			continue
		}
		sawClassCols = true

		blocks := periodBlocks(f, sheet, rows, opts.Scheme == KeyByStartTime)
		if len(blocks) == 0 {
			continue
		}
		sawBlocks = true

		for _, b := range blocks {
			for class, col := range classCols {
				subject := Clean(cellAt(rows, b.Row, col))
				teacher := Clean(cellAt(rows, b.Row+2, col))
				suffix := composeSuffix(subject, teacher)
				if suffix == "" {
					continue
				}
				switch opts.Scheme {
				case KeyByStartTime:
					if b.Start == "" {
						continue
					}
					m.put(timeKey(day, b.Start, class), suffix)
				case KeyByPeriod:
					m.put(periodKey(day, b.Period, class), suffix)
				case KeyByToken:
					m.put(tokenKey(class, strconv.Itoa(b.Period)), suffix)
				}
			}
		}
	}

	if opts.Strict && m.Len() == 0 && sawData {
		if !sawClassCols {
			return nil, ErrNoClassColumns
		}
		if !sawBlocks {
			return nil, ErrNoPeriodBlocks
		}
	}
	return m, nil
}

// classColumns 扫描第 1 行标头，返回 班别 → 数据列下标（0 起算）
// 标头横向合并时，数据列取合并区间的最右一列
func classColumns(f *excelize.File, sheet string, rows [][]string) map[string]int {
	// 合并区间：标头锚点列 → 区间最右列
	rightmost := make(map[int]int)
	if merges, err := f.GetMergeCells(sheet); err == nil {
		for _, mc := range merges {
			sc, sr, err1 := excelize.CellNameToCoordinates(mc.GetStartAxis())
			ec, er, err2 := excelize.CellNameToCoordinates(mc.GetEndAxis())
			if err1 != nil || err2 != nil {
				continue
			}
			if sr == 1 && er == 1 && ec > sc {
				rightmost[sc] = ec
			}
		}
	}

	cols := make(map[string]int)
	if len(rows) == 0 {
		return cols
	}
	for i, v := range rows[0] {
		text := Clean(v)
		if !IsClassHeader(text) {
			continue
		}
		col := i
		if ec, ok := rightmost[i+1]; ok {
			col = ec - 1
		}
		cols[text] = col
	}
	return cols
}

// periodBlocks 定位节次块
// 优先用 A 列纵向合并的锚点行；没有合并元数据时退回逐行扫描 A 列整数
func periodBlocks(f *excelize.File, sheet string, rows [][]string, withStart bool) []periodBlock {
	anchors := mergedPeriodAnchors(f, sheet)
	blocks := scanBlocks(rows, anchors, withStart)
	if len(blocks) == 0 && len(anchors) > 0 {
		// 合并元数据存在但锚点行取不出节次号，退回整数扫描
		blocks = scanBlocks(rows, nil, withStart)
	}
	return blocks
}

func scanBlocks(rows [][]string, anchors map[int]bool, withStart bool) []periodBlock {
	var blocks []periodBlock
	for r := range rows {
		if len(anchors) > 0 && !anchors[r+1] {
			continue
		}
		period, ok := parsePeriod(cellAt(rows, r, 0))
		if !ok {
			continue
		}
		b := periodBlock{Row: r, Period: period}
		if withStart {
			if start, ok := ParseStartTime(cellAt(rows, r, 1)); ok {
				b.Start = start
			}
		}
		blocks = append(blocks, b)
	}
	return blocks
}

// mergedPeriodAnchors 收集 A 列纵向合并区间的锚点行（1 起算）
func mergedPeriodAnchors(f *excelize.File, sheet string) map[int]bool {
	anchors := make(map[int]bool)
	merges, err := f.GetMergeCells(sheet)
	if err != nil {
		return anchors
	}
	for _, mc := range merges {
		sc, sr, err1 := excelize.CellNameToCoordinates(mc.GetStartAxis())
		ec, er, err2 := excelize.CellNameToCoordinates(mc.GetEndAxis())
		if err1 != nil || err2 != nil {
			continue
		}
		if sc == 1 && ec == 1 && er > sr {
			anchors[sr] = true
		}
	}
	return anchors
}

func parsePeriod(s string) (int, bool) {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil || n <= 0 {
		return 0, false
	}
	return n, true
}

// cellAt 按下标取值，越界返回空串
func cellAt(rows [][]string, r, c int) string {
	if r < 0 || r >= len(rows) {
		return ""
	}
	row := rows[r]
	if c < 0 || c >= len(row) {
		return ""
	}
	return row[c]
}

// composeSuffix 拼装后缀："(科目 老师)"，缺一方时只留另一方，双空格压缩
func composeSuffix(subject, teacher string) string {
	if subject == "" && teacher == "" {
		return ""
	}
	s := strings.TrimSpace(subject + " " + teacher)
	s = spaceRun.ReplaceAllString(s, " ")
	return "(" + s + ")"
}
