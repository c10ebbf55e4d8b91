package repository

import (
	"encoding/json"
	"fmt"
	"strings"

	"gorm.io/gorm/clause"

	"ContactHub/internal/query"
)

// columns 字段名到 contacts 表列名
var columns = map[string]string{
	query.FieldID:                "id",
	query.FieldFirstName:         "first_name",
	query.FieldLastName:          "last_name",
	query.FieldEmail:             "email",
	query.FieldCompany:           "company",
	query.FieldJobTitle:          "job_title",
	query.FieldNotes:             "notes",
	query.FieldStatus:            "status",
	query.FieldSource:            "source",
	query.FieldTags:              "tags",
	query.FieldLastContactedDate: "last_contacted_date",
	query.FieldCreatedAt:         "created_at",
	query.FieldUpdatedAt:         "updated_at",
}

const addressPrefix = "address."

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// likePattern 转义 LIKE 通配符后包成 %needle%
func likePattern(needle string) string {
	return "%" + likeEscaper.Replace(needle) + "%"
}

// textOperand 普通列返回列本身，address.* 返回 jsonb 取值表达式
func textOperand(field string) (clause.Expression, error) {
	if sub, ok := strings.CutPrefix(field, addressPrefix); ok {
		return clause.Expr{SQL: "?->>?", Vars: []interface{}{clause.Column{Name: "address"}, sub}}, nil
	}
	col, ok := columns[field]
	if !ok {
		return nil, fmt.Errorf("unknown field %q", field)
	}
	return clause.Expr{SQL: "?", Vars: []interface{}{clause.Column{Name: col}}}, nil
}

func column(field string) (clause.Column, error) {
	col, ok := columns[field]
	if !ok {
		return clause.Column{}, fmt.Errorf("unknown field %q", field)
	}
	return clause.Column{Name: col}, nil
}

// toExpression 把谓词树翻译为 gorm 条件；空 And 返回 nil，表示不加 WHERE
func toExpression(p query.Predicate) (clause.Expression, error) {
	switch n := p.(type) {
	case query.And:
		exprs, err := toExpressions(n.Clauses)
		if err != nil || len(exprs) == 0 {
			return nil, err
		}
		if len(exprs) == 1 {
			return exprs[0], nil
		}
		return clause.And(exprs...), nil

	case query.Or:
		exprs, err := toExpressions(n.Clauses)
		if err != nil {
			return nil, err
		}
		if len(exprs) == 0 {
			return clause.Expr{SQL: "FALSE"}, nil
		}
		return clause.Or(exprs...), nil

	case query.Equals:
		col, err := column(n.Field)
		if err != nil {
			return nil, err
		}
		return clause.Eq{Column: col, Value: n.Value}, nil

	case query.Contains:
		operand, err := textOperand(n.Field)
		if err != nil {
			return nil, err
		}
		return clause.Expr{
			SQL:  `? ILIKE ? ESCAPE '\'`,
			Vars: []interface{}{operand, likePattern(n.Needle)},
		}, nil

	case query.InSet:
		col, err := column(n.Field)
		if err != nil {
			return nil, err
		}
		if len(n.Values) == 0 {
			return clause.Expr{SQL: "FALSE"}, nil
		}
		exprs := make([]clause.Expression, 0, len(n.Values))
		for _, v := range n.Values {
			doc, err := json.Marshal([]string{v})
			if err != nil {
				return nil, err
			}
			exprs = append(exprs, clause.Expr{SQL: "? @> ?::jsonb", Vars: []interface{}{col, string(doc)}})
		}
		if len(exprs) == 1 {
			return exprs[0], nil
		}
		return clause.Or(exprs...), nil

	case query.Range:
		col, err := column(n.Field)
		if err != nil {
			return nil, err
		}
		var exprs []clause.Expression
		if n.From != nil {
			exprs = append(exprs, clause.Gte{Column: col, Value: *n.From})
		}
		if n.To != nil {
			exprs = append(exprs, clause.Lte{Column: col, Value: *n.To})
		}
		switch len(exprs) {
		case 0:
			return nil, nil
		case 1:
			return exprs[0], nil
		}
		return clause.And(exprs...), nil
	}

	return nil, fmt.Errorf("unsupported predicate %T", p)
}

func toExpressions(preds []query.Predicate) ([]clause.Expression, error) {
	exprs := make([]clause.Expression, 0, len(preds))
	for _, p := range preds {
		e, err := toExpression(p)
		if err != nil {
			return nil, err
		}
		if e != nil {
			exprs = append(exprs, e)
		}
	}
	return exprs, nil
}

// whereClauses 供 Find 与 Count 共用
func whereClauses(p query.Predicate) ([]clause.Expression, error) {
	expr, err := toExpression(p)
	if err != nil || expr == nil {
		return nil, err
	}
	return []clause.Expression{clause.Where{Exprs: []clause.Expression{expr}}}, nil
}

// orderBy 缺失值视为最小：升序 NULLS FIRST，降序 NULLS LAST；id 同向决胜
func orderBy(s query.Sort) (clause.Expression, error) {
	col, err := column(s.Field)
	if err != nil {
		return nil, err
	}

	dir, nulls := "ASC", "NULLS FIRST"
	if s.Direction == query.Descending {
		dir, nulls = "DESC", "NULLS LAST"
	}

	return clause.OrderBy{Expression: clause.Expr{
		SQL:                "? " + dir + " " + nulls + ", ? " + dir,
		Vars:               []interface{}{col, clause.Column{Name: "id"}},
		WithoutParentheses: true,
	}}, nil
}
