package annotate

import "regexp"

// 班别 token：年级数字 + 班别字母，后面可跟 1~2 位数字
// 尾随数字在时间/节次方案下是学生编号（查表前剥离），token 方案下是节次
var classTokenRe = regexp.MustCompile(`(\d+[A-E])(\d{1,2})?`)

// 班别标头：整格恰好是 "1A" 这种形状
var classHeaderRe = regexp.MustCompile(`^\d+[A-E]$`)

// FindClassToken 找出行内第一个班别 token
// 返回班别（如 "1A"）与尾随数字（可能为空）
func FindClassToken(line string) (class, digits string, ok bool) {
	m := classTokenRe.FindStringSubmatch(line)
	if m == nil {
		return "", "", false
	}
	return m[1], m[2], true
}

// IsClassHeader 判断清洗后的标头文本是否是班别标头
func IsClassHeader(s string) bool {
	return classHeaderRe.MatchString(s)
}
