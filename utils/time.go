package utils

import (
	"fmt"
	"time"
)

const dateOnly = "2006-01-02"

// ParseDate 解析查询参数中的日期，支持 RFC3339 和 YYYY-MM-DD（按 UTC 零点）
func ParseDate(s string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339Nano, s); err == nil {
		return t.UTC(), nil
	}
	if t, err := time.ParseInLocation(dateOnly, s, time.UTC); err == nil {
		return t, nil
	}
	return time.Time{}, fmt.Errorf("invalid date %q, expected RFC3339 or YYYY-MM-DD", s)
}

// ParseOptionalDate 空字符串返回 nil
func ParseOptionalDate(s string) (*time.Time, error) {
	if s == "" {
		return nil, nil
	}
	t, err := ParseDate(s)
	if err != nil {
		return nil, err
	}
	return &t, nil
}
