package annotate

import (
	"bytes"
	"encoding/csv"
)

// UnmatchedCSV 把未匹配清单导出为 CSV 字节（UTF-8，带表头）
func UnmatchedCSV(records []UnmatchedRecord) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)

	if err := w.Write([]string{"sheet", "cell", "day", "slot", "class", "line"}); err != nil {
		return nil, err
	}
	for _, rec := range records {
		row := []string{rec.Sheet, rec.Cell, rec.Day, rec.Slot, rec.Class, rec.Line}
		if err := w.Write(row); err != nil {
			return nil, err
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
