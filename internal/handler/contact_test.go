package handler

import (
	"math"
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ContactHub/internal/model/dto"
	pkgerrors "ContactHub/pkg/errors"
)

func TestParseListQuery(t *testing.T) {
	maxInt := strconv.Itoa(math.MaxInt)

	tests := []struct {
		name      string
		req       dto.ListContactsQuery
		wantField string
	}{
		{"empty", dto.ListContactsQuery{}, ""},
		{"valid paging", dto.ListContactsQuery{Page: "3", Limit: "25", SortOrder: "asc"}, ""},
		{"max limit first page", dto.ListContactsQuery{Page: "1", Limit: maxInt}, ""},
		{"zero page", dto.ListContactsQuery{Page: "0"}, "page"},
		{"non numeric limit", dto.ListContactsQuery{Limit: "ten"}, "limit"},
		{"page beyond int", dto.ListContactsQuery{Page: "92233720368547758080"}, "page"},
		{"page times limit overflows", dto.ListContactsQuery{Page: "4611686018427387905", Limit: "2"}, "page"},
		{"max page default limit", dto.ListContactsQuery{Page: maxInt}, "page"},
		{"bad status", dto.ListContactsQuery{Status: "vip"}, "status"},
		{"bad sort order", dto.ListContactsQuery{SortOrder: "up"}, "sortOrder"},
		{"bad date", dto.ListContactsQuery{CreatedBefore: "tomorrow"}, "createdBefore"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, field, err := parseListQuery(tt.req)
			if tt.wantField == "" {
				require.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Equal(t, tt.wantField, field)
			assert.ErrorIs(t, err, pkgerrors.InvalidInput)
		})
	}
}

func TestParseListQueryKeepsTags(t *testing.T) {
	q, _, err := parseListQuery(dto.ListContactsQuery{Tags: "vip, ,beta", Company: "acme"})
	require.NoError(t, err)
	assert.Equal(t, []string{"vip", "beta"}, q.Tags)
	assert.Equal(t, "acme", q.Company)
}
