// Package query 把联系人列表的过滤、排序、分页参数编译为与存储无关的谓词树，并负责执行分页读取。
package query

import (
	"strings"
	"time"
)

// Predicate 谓词树节点。只有本包定义的节点类型实现该接口，存储层据此做穷举翻译。
type Predicate interface {
	isPredicate()
}

// And 所有子句同时成立；空 And 匹配全部记录
type And struct {
	Clauses []Predicate
}

// Or 任一子句成立；空 Or 不匹配任何记录
type Or struct {
	Clauses []Predicate
}

// Equals 字段精确相等
type Equals struct {
	Field string
	Value string
}

// Contains 大小写不敏感的子串匹配，Needle 按字面量处理
type Contains struct {
	Field  string
	Needle string
}

// InSet 字段（字符串集合）与 Values 至少有一个交集
type InSet struct {
	Field  string
	Values []string
}

// Range 时间闭区间，From/To 为 nil 表示该侧不设限
type Range struct {
	Field string
	From  *time.Time
	To    *time.Time
}

func (And) isPredicate()      {}
func (Or) isPredicate()       {}
func (Equals) isPredicate()   {}
func (Contains) isPredicate() {}
func (InSet) isPredicate()    {}
func (Range) isPredicate()    {}

// Document 可被谓词求值的记录
type Document interface {
	Lookup(field string) (any, bool)
}

// Matches 在内存中对单条记录求值
func Matches(p Predicate, doc Document) bool {
	switch n := p.(type) {
	case And:
		for _, c := range n.Clauses {
			if !Matches(c, doc) {
				return false
			}
		}
		return true

	case Or:
		for _, c := range n.Clauses {
			if Matches(c, doc) {
				return true
			}
		}
		return false

	case Equals:
		v, ok := doc.Lookup(n.Field)
		if !ok {
			return false
		}
		s, ok := v.(string)
		return ok && s == n.Value

	case Contains:
		v, ok := doc.Lookup(n.Field)
		if !ok {
			return false
		}
		s, ok := v.(string)
		return ok && containsFold(s, n.Needle)

	case InSet:
		v, ok := doc.Lookup(n.Field)
		if !ok {
			return false
		}
		return intersects(v, n.Values)

	case Range:
		v, ok := doc.Lookup(n.Field)
		if !ok {
			return false
		}
		t, ok := v.(time.Time)
		if !ok {
			return false
		}
		if n.From != nil && t.Before(*n.From) {
			return false
		}
		if n.To != nil && t.After(*n.To) {
			return false
		}
		return true
	}

	return false
}

func containsFold(s, needle string) bool {
	return strings.Contains(strings.ToLower(s), strings.ToLower(needle))
}

func intersects(v any, values []string) bool {
	switch have := v.(type) {
	case []string:
		for _, h := range have {
			for _, want := range values {
				if h == want {
					return true
				}
			}
		}
	case string:
		for _, want := range values {
			if have == want {
				return true
			}
		}
	}
	return false
}

// CompareValues 比较两个字段值，缺失值排在最前，用于内存排序
func CompareValues(a any, aok bool, b any, bok bool) int {
	switch {
	case !aok && !bok:
		return 0
	case !aok:
		return -1
	case !bok:
		return 1
	}

	switch x := a.(type) {
	case string:
		if y, ok := b.(string); ok {
			return strings.Compare(x, y)
		}
	case time.Time:
		if y, ok := b.(time.Time); ok {
			return x.Compare(y)
		}
	case int64:
		if y, ok := b.(int64); ok {
			switch {
			case x < y:
				return -1
			case x > y:
				return 1
			}
			return 0
		}
	}
	return 0
}
