package annotate

import (
	"fmt"
	"sort"
	"strconv"
)

// KeyScheme 对照键方案
type KeyScheme string

const (
	KeyByStartTime KeyScheme = "time"   // 星期 + 开始时间 + 班别
	KeyByPeriod    KeyScheme = "period" // 星期 + 节次 + 班别
	KeyByToken     KeyScheme = "token"  // 班别+节次 连写 token（如 "1A1"）
)

// Placement 后缀写入方式
type Placement string

const (
	SameLine Placement = "same_line" // 追加在原行末尾，空格分隔
	NewLine  Placement = "new_line"  // 追加为原行下方的新行
)

// Options 标注选项
type Options struct {
	Scheme    KeyScheme `json:"scheme"`
	Placement Placement `json:"placement"`
	// Strict 为 true 时，课表结构缺失（找不到班别标头或节次块）会报错，
	// 而不是静默产出空对照表
	Strict bool `json:"strict"`
}

// Validate 校验选项取值
func (o Options) Validate() error {
	switch o.Scheme {
	case KeyByStartTime, KeyByPeriod, KeyByToken:
	default:
		return fmt.Errorf("未知的键方案: %q", o.Scheme)
	}
	switch o.Placement {
	case SameLine, NewLine:
	default:
		return fmt.Errorf("未知的写入方式: %q", o.Placement)
	}
	return nil
}

// DefaultOptions 默认选项（星期+开始时间键、同行追加、宽松模式）
func DefaultOptions() Options {
	return Options{Scheme: KeyByStartTime, Placement: SameLine}
}

// Mapping 课表对照表
// 由 MappingBuilder 构建一次，之后只读；重复键后写覆盖先写
type Mapping struct {
	entries map[string]string
}

// NewMapping 创建空对照表
func NewMapping() *Mapping {
	return &Mapping{entries: make(map[string]string)}
}

func (m *Mapping) put(key, suffix string) {
	m.entries[key] = suffix
}

// Lookup 查询键对应的后缀
func (m *Mapping) Lookup(key string) (string, bool) {
	suffix, ok := m.entries[key]
	return suffix, ok
}

// Len 返回条目数
func (m *Mapping) Len() int {
	return len(m.entries)
}

// Sample 返回至多 n 条按键排序的条目，用于前端预览
func (m *Mapping) Sample(n int) map[string]string {
	keys := make([]string, 0, len(m.entries))
	for k := range m.entries {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	if n < 0 {
		n = 0
	}
	if n > len(keys) {
		n = len(keys)
	}
	sample := make(map[string]string, n)
	for _, k := range keys[:n] {
		sample[k] = m.entries[k]
	}
	return sample
}

// 键组合：三种方案共用一张 map[string]string，键形状由方案决定
func timeKey(day, start, class string) string {
	return day + "|" + start + "|" + class
}

func periodKey(day string, period int, class string) string {
	return day + "|" + strconv.Itoa(period) + "|" + class
}

func tokenKey(class, period string) string {
	return class + period
}

// UnmatchedRecord 未匹配条目
// 记录足够的上下文供人工复核，不回写目标文件
type UnmatchedRecord struct {
	Sheet string `json:"sheet"`
	Cell  string `json:"cell"`
	Day   string `json:"day"`
	Slot  string `json:"slot"` // 开始时间或节次，token 方案下为 token 内嵌的节次数字
	Class string `json:"class"`
	Line  string `json:"line"`
}

// Result 标注结果
type Result struct {
	CellsChanged int               `json:"cellsChanged"`
	Unmatched    []UnmatchedRecord `json:"unmatched"`
	MappingSize  int               `json:"mappingSize"`
}
