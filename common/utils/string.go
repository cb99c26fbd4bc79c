package utils

import (
	"strings"

	"github.com/duke-git/lancet/v2/strutil"
)

// IsEmpty 判断字符串是否为空白
func IsEmpty(s string) bool {
	return strutil.IsBlank(s)
}

// IsNotEmpty 判断字符串是否不为空白
func IsNotEmpty(s string) bool {
	return !IsEmpty(s)
}

// Trim 去除字符串两端空白
func Trim(s string) string {
	return strutil.Trim(s)
}

// Longer 返回去除空白后较长的字符串，长度相同时保留 a
func Longer(a, b string) string {
	a, b = Trim(a), Trim(b)
	if len([]rune(b)) > len([]rune(a)) {
		return b
	}
	return a
}

// SplitTrim 按分隔符拆分并去除空项
func SplitTrim(s, sep string) []string {
	if IsEmpty(s) {
		return nil
	}
	parts := strings.Split(s, sep)
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = Trim(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
