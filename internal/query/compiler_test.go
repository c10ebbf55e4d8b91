package query

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCompileEmptyQueryMatchesEverything(t *testing.T) {
	pred := Compile(ContactQuery{})

	and, ok := pred.(And)
	require.True(t, ok)
	assert.Empty(t, and.Clauses)
}

func TestCompileClauseOrder(t *testing.T) {
	after := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	before := time.Date(2024, 12, 31, 0, 0, 0, 0, time.UTC)

	pred := Compile(ContactQuery{
		Query:         "ada",
		Status:        "lead",
		Tags:          []string{"vip", "beta"},
		Company:       "acme",
		JobTitle:      "cto",
		City:          "paris",
		State:         "idf",
		Country:       "fr",
		CreatedAfter:  &after,
		CreatedBefore: &before,
	})

	and := pred.(And)
	require.Len(t, and.Clauses, 9)

	search, ok := and.Clauses[0].(Or)
	require.True(t, ok)
	require.Len(t, search.Clauses, 6)
	fields := make([]string, 0, 6)
	for _, c := range search.Clauses {
		contains := c.(Contains)
		assert.Equal(t, "ada", contains.Needle)
		fields = append(fields, contains.Field)
	}
	assert.Equal(t, []string{"firstName", "lastName", "email", "company", "jobTitle", "notes"}, fields)

	assert.Equal(t, Equals{Field: FieldStatus, Value: "lead"}, and.Clauses[1])
	assert.Equal(t, InSet{Field: FieldTags, Values: []string{"vip", "beta"}}, and.Clauses[2])
	assert.Equal(t, Contains{Field: FieldCompany, Needle: "acme"}, and.Clauses[3])
	assert.Equal(t, Contains{Field: FieldJobTitle, Needle: "cto"}, and.Clauses[4])
	assert.Equal(t, Contains{Field: FieldCity, Needle: "paris"}, and.Clauses[5])
	assert.Equal(t, Contains{Field: FieldState, Needle: "idf"}, and.Clauses[6])
	assert.Equal(t, Contains{Field: FieldCountry, Needle: "fr"}, and.Clauses[7])

	rng := and.Clauses[8].(Range)
	assert.Equal(t, FieldCreatedAt, rng.Field)
	assert.Equal(t, after, *rng.From)
	assert.Equal(t, before, *rng.To)
}

func TestCompileOpenEndedRange(t *testing.T) {
	before := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)

	and := Compile(ContactQuery{CreatedBefore: &before}).(And)
	require.Len(t, and.Clauses, 1)

	rng := and.Clauses[0].(Range)
	assert.Nil(t, rng.From)
	assert.Equal(t, before, *rng.To)
}

func TestCompileSkipsEmptyValues(t *testing.T) {
	and := Compile(ContactQuery{Tags: []string{}, Status: "", City: ""}).(And)
	assert.Empty(t, and.Clauses)
}

func TestCompileDoesNotValidateStatus(t *testing.T) {
	and := Compile(ContactQuery{Status: "not-a-status"}).(And)
	require.Len(t, and.Clauses, 1)
	assert.Equal(t, Equals{Field: FieldStatus, Value: "not-a-status"}, and.Clauses[0])
}

func TestCompileCopiesTags(t *testing.T) {
	tags := []string{"a"}
	and := Compile(ContactQuery{Tags: tags}).(And)
	tags[0] = "changed"

	assert.Equal(t, []string{"a"}, and.Clauses[0].(InSet).Values)
}
