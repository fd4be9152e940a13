package annotate

import (
	"bytes"
	"fmt"

	"github.com/xuri/excelize/v2"
)

// Run 一次完整标注：课表字节 + 待标注文件字节 → 已标注文件字节 + 未匹配 CSV 字节
// 纯函数，不触碰磁盘；每次调用都从头重建对照表
func Run(source, target []byte, opts Options) (annotated, report []byte, res Result, err error) {
	m, err := BuildMapping(source, opts)
	if err != nil {
		return nil, nil, Result{}, err
	}

	f, err := excelize.OpenReader(bytes.NewReader(target))
	if err != nil {
		return nil, nil, Result{}, fmt.Errorf("打开待标注文件失败: %w", err)
	}
	defer f.Close()

	res, err = Annotate(f, m, opts)
	if err != nil {
		return nil, nil, Result{}, err
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, nil, Result{}, fmt.Errorf("写出标注结果失败: %w", err)
	}

	report, err = UnmatchedCSV(res.Unmatched)
	if err != nil {
		return nil, nil, Result{}, err
	}
	return buf.Bytes(), report, res, nil
}
