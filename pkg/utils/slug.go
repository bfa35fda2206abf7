package utils

import (
	"strings"
	"unicode"
)

// Slug 是唯一的影片标识标准化函数：小写，去除 [a-z0-9]、空白、'-' 以外的字符，
// 连续空白折叠为一个 '-'，最后去掉首尾的 '-'。
// 身份比较、去重、排除集合都必须使用它。
//
//	Slug("The Godfather: Part II") == "the-godfather-part-ii"
//	Slug("Amélie") == "amlie"
func Slug(title string) string {
	var b strings.Builder
	b.Grow(len(title))
	pendingSpace := false
	for _, r := range strings.ToLower(title) {
		switch {
		case unicode.IsSpace(r):
			pendingSpace = true
		case (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') || r == '-':
			if pendingSpace {
				b.WriteByte('-')
				pendingSpace = false
			}
			b.WriteRune(r)
		}
	}
	return strings.Trim(b.String(), "-")
}
