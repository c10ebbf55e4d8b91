package query

import "time"

// 可过滤、可排序的字段名，存储层负责映射到真实列
const (
	FieldID                = "id"
	FieldFirstName         = "firstName"
	FieldLastName          = "lastName"
	FieldEmail             = "email"
	FieldCompany           = "company"
	FieldJobTitle          = "jobTitle"
	FieldNotes             = "notes"
	FieldStatus            = "status"
	FieldSource            = "source"
	FieldTags              = "tags"
	FieldCity              = "address.city"
	FieldState             = "address.state"
	FieldCountry           = "address.country"
	FieldLastContactedDate = "lastContactedDate"
	FieldCreatedAt         = "createdAt"
	FieldUpdatedAt         = "updatedAt"
)

// searchFields 自由文本搜索覆盖的字段
var searchFields = []string{
	FieldFirstName,
	FieldLastName,
	FieldEmail,
	FieldCompany,
	FieldJobTitle,
	FieldNotes,
}

// ContactQuery 列表查询参数，空字符串与 nil 均视为未提供
type ContactQuery struct {
	Query         string
	Status        string
	Tags          []string
	Company       string
	JobTitle      string
	City          string
	State         string
	Country       string
	CreatedAfter  *time.Time
	CreatedBefore *time.Time
	SortBy        string
	SortOrder     string
	Page          *int
	Limit         *int
}

// Compile 把查询参数组合成一个 And 谓词，子句顺序固定；不做枚举或区间合法性校验
func Compile(q ContactQuery) Predicate {
	clauses := make([]Predicate, 0, 8)

	if q.Query != "" {
		or := Or{Clauses: make([]Predicate, 0, len(searchFields))}
		for _, f := range searchFields {
			or.Clauses = append(or.Clauses, Contains{Field: f, Needle: q.Query})
		}
		clauses = append(clauses, or)
	}

	if q.Status != "" {
		clauses = append(clauses, Equals{Field: FieldStatus, Value: q.Status})
	}

	if len(q.Tags) > 0 {
		tags := make([]string, len(q.Tags))
		copy(tags, q.Tags)
		clauses = append(clauses, InSet{Field: FieldTags, Values: tags})
	}

	for _, c := range []struct {
		field string
		value string
	}{
		{FieldCompany, q.Company},
		{FieldJobTitle, q.JobTitle},
		{FieldCity, q.City},
		{FieldState, q.State},
		{FieldCountry, q.Country},
	} {
		if c.value != "" {
			clauses = append(clauses, Contains{Field: c.field, Needle: c.value})
		}
	}

	if q.CreatedAfter != nil || q.CreatedBefore != nil {
		clauses = append(clauses, Range{
			Field: FieldCreatedAt,
			From:  q.CreatedAfter,
			To:    q.CreatedBefore,
		})
	}

	return And{Clauses: clauses}
}
