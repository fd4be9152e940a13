package annotate

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

var spaceRun = regexp.MustCompile(`\s+`)

// Clean 规范化单元格文本
// 去首尾空白，压缩内部连续空白为一个空格；各种横线占位符（"-" "—" "–" "－"）视为空
func Clean(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return ""
	}
	if strings.Trim(s, " -—–－") == "" {
		return ""
	}
	return spaceRun.ReplaceAllString(s, " ")
}

// 接受 "9:05am-9:40am" / "9:05 AM" / "09:05:00" / "9:05" 等写法，只取开始时间
var startTimeRe = regexp.MustCompile(`^\s*(\d{1,2}):(\d{2})(?::\d{2})?\s*([AaPp][Mm])?`)

// ParseStartTime 从时段标签中解析开始时间，返回规范化的 "HH:MM"
// Excel 时间单元格经格式化读出后是文本，这里统一各种呈现形式
func ParseStartTime(label string) (string, bool) {
	m := startTimeRe.FindStringSubmatch(label)
	if m == nil {
		return "", false
	}
	h, _ := strconv.Atoi(m[1])
	mi, _ := strconv.Atoi(m[2])
	if h > 23 || mi > 59 {
		return "", false
	}
	switch strings.ToLower(m[3]) {
	case "pm":
		if h < 12 {
			h += 12
		}
	case "am":
		if h == 12 {
			h = 0
		}
	}
	return fmt.Sprintf("%02d:%02d", h, mi), true
}

// dayMap 目标表标头的简写 → 课表工作表名用的全称
var dayMap = map[string]string{
	"一": "星期一",
	"二": "星期二",
	"三": "星期三",
	"四": "星期四",
	"五": "星期五",
}

// DayName 把星期标头规范化为全称，无法识别的原样返回
func DayName(header string) string {
	if full, ok := dayMap[header]; ok {
		return full
	}
	return header
}
