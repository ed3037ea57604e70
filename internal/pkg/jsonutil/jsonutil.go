package jsonutil

import "encoding/json"

// Indent 以两空格缩进序列化 v，失败时返回空串。
func Indent(v any) string {
	buf, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return ""
	}
	return string(buf)
}

// Compact 单行序列化 v，供日志使用。
func Compact(v any) string {
	buf, err := json.Marshal(v)
	if err != nil {
		return ""
	}
	return string(buf)
}
