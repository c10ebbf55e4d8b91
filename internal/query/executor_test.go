package query

import (
	"context"
	"errors"
	"fmt"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ContactHub/internal/model"
	pkgerrors "ContactHub/pkg/errors"
)

// stubStore 记录调用参数并返回预设结果
type stubStore struct {
	contacts []model.Contact
	total    int64
	findErr  error
	countErr error

	gotSort   Sort
	gotOffset int
	gotLimit  int
	gotPred   Predicate
}

func (s *stubStore) FindMatching(ctx context.Context, pred Predicate, sort Sort, offset, limit int) ([]model.Contact, error) {
	s.gotPred, s.gotSort, s.gotOffset, s.gotLimit = pred, sort, offset, limit
	if s.findErr != nil {
		return nil, s.findErr
	}
	return s.contacts, nil
}

func (s *stubStore) CountMatching(ctx context.Context, pred Predicate) (int64, error) {
	if s.countErr != nil {
		return 0, s.countErr
	}
	return s.total, nil
}

func intPtr(v int) *int { return &v }

func contactsN(n int) []model.Contact {
	out := make([]model.Contact, n)
	for i := range out {
		out[i].ID = int64(i + 1)
	}
	return out
}

func TestResolveSort(t *testing.T) {
	tests := []struct {
		name  string
		query ContactQuery
		want  Sort
	}{
		{"defaults", ContactQuery{}, Sort{Field: FieldCreatedAt, Direction: Descending}},
		{"asc", ContactQuery{SortBy: FieldLastName, SortOrder: "asc"}, Sort{Field: FieldLastName, Direction: Ascending}},
		{"unknown order is desc", ContactQuery{SortBy: FieldEmail, SortOrder: "sideways"}, Sort{Field: FieldEmail, Direction: Descending}},
		{"upper ASC is desc", ContactQuery{SortOrder: "ASC"}, Sort{Field: FieldCreatedAt, Direction: Descending}},
		{"unknown field falls back", ContactQuery{SortBy: "password", SortOrder: "asc"}, Sort{Field: FieldCreatedAt, Direction: Ascending}},
		{"tags not sortable", ContactQuery{SortBy: FieldTags}, Sort{Field: FieldCreatedAt, Direction: Descending}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ResolveSort(tt.query))
		})
	}
}

func TestResolvePage(t *testing.T) {
	tests := []struct {
		name                    string
		page, limit             *int
		wantPage, wantLimit, wo int
		wantErr                 bool
	}{
		{"defaults", nil, nil, 1, 10, 0, false},
		{"page three", intPtr(3), intPtr(10), 3, 10, 20, false},
		{"zero page clamps", intPtr(0), intPtr(5), 1, 5, 0, false},
		{"negative limit clamps", intPtr(2), intPtr(-4), 2, 1, 1, false},
		{"max limit on first page", intPtr(1), intPtr(math.MaxInt), 1, math.MaxInt, 0, false},
		{"product exactly fits", intPtr(2), intPtr(math.MaxInt / 2), 2, math.MaxInt / 2, math.MaxInt / 2, false},
		{"page times limit overflows", intPtr(math.MaxInt/2 + 2), intPtr(2), math.MaxInt/2 + 2, 2, 0, true},
		{"max page", intPtr(math.MaxInt), intPtr(2), math.MaxInt, 2, 0, true},
		{"max limit on second page", intPtr(2), intPtr(math.MaxInt), 2, math.MaxInt, 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			page, limit, offset, err := ResolvePage(ContactQuery{Page: tt.page, Limit: tt.limit})
			if tt.wantErr {
				require.Error(t, err)
				assert.ErrorIs(t, err, pkgerrors.InvalidInput)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantPage, page)
			assert.Equal(t, tt.wantLimit, limit)
			assert.Equal(t, tt.wo, offset)
			assert.GreaterOrEqual(t, offset, 0)
		})
	}
}

func TestListRejectsOverflowingPageWithoutReading(t *testing.T) {
	store := &stubStore{contacts: contactsN(2), total: 2}
	res, err := NewExecutor(store).List(context.Background(), ContactQuery{
		Page:  intPtr(math.MaxInt/2 + 2),
		Limit: intPtr(2),
	})
	require.Error(t, err)
	assert.Nil(t, res)
	assert.ErrorIs(t, err, pkgerrors.InvalidInput)
	assert.Nil(t, store.gotPred)
}

func TestListPaginationMetadata(t *testing.T) {
	tests := []struct {
		name           string
		page, limit    int
		returned       int
		total          int64
		wantTotalPages int
		wantHasMore    bool
	}{
		{"first of three", 1, 10, 10, 23, 3, true},
		{"last partial", 3, 10, 3, 23, 3, false},
		{"beyond end", 4, 10, 0, 23, 3, false},
		{"exact multiple", 2, 5, 5, 10, 2, false},
		{"empty", 1, 10, 0, 0, 0, false},
		{"max limit", 1, math.MaxInt, 3, 3, 1, false},
		{"max limit more rows remain", 1, math.MaxInt, 1, 5, 1, true},
		{"offset near max int", 2, math.MaxInt / 2, 0, 3, 1, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := &stubStore{contacts: contactsN(tt.returned), total: tt.total}
			res, err := NewExecutor(store).List(context.Background(), ContactQuery{
				Page:  intPtr(tt.page),
				Limit: intPtr(tt.limit),
			})
			require.NoError(t, err)

			assert.Len(t, res.Contacts, tt.returned)
			assert.Equal(t, tt.total, res.Pagination.Total)
			assert.Equal(t, tt.page, res.Pagination.Page)
			assert.Equal(t, tt.limit, res.Pagination.Limit)
			assert.Equal(t, tt.wantTotalPages, res.Pagination.TotalPages)
			assert.Equal(t, tt.wantHasMore, res.Pagination.HasMore)
			assert.Equal(t, (tt.page-1)*tt.limit, store.gotOffset)
			assert.Equal(t, tt.limit, store.gotLimit)
		})
	}
}

func TestListPassesCompiledPredicateAndSort(t *testing.T) {
	store := &stubStore{}
	_, err := NewExecutor(store).List(context.Background(), ContactQuery{
		Company:   "acme",
		SortBy:    FieldFirstName,
		SortOrder: "asc",
	})
	require.NoError(t, err)

	assert.Equal(t, And{Clauses: []Predicate{Contains{Field: FieldCompany, Needle: "acme"}}}, store.gotPred)
	assert.Equal(t, Sort{Field: FieldFirstName, Direction: Ascending}, store.gotSort)
}

func TestListNeverReturnsNilContacts(t *testing.T) {
	res, err := NewExecutor(&stubStore{}).List(context.Background(), ContactQuery{})
	require.NoError(t, err)
	assert.NotNil(t, res.Contacts)
}

func TestListFailures(t *testing.T) {
	boom := errors.New("connection refused")

	tests := []struct {
		name     string
		store    *stubStore
		wantCode pkgerrors.Definition
	}{
		{"find fails", &stubStore{findErr: boom}, pkgerrors.StorageUnavailable},
		{"count fails", &stubStore{countErr: boom}, pkgerrors.StorageUnavailable},
		{"find deadline", &stubStore{findErr: fmt.Errorf("query: %w", context.DeadlineExceeded)}, pkgerrors.Timeout},
		{"count deadline", &stubStore{countErr: context.DeadlineExceeded}, pkgerrors.Timeout},
		{"already classified", &stubStore{findErr: pkgerrors.Timeout}, pkgerrors.Timeout},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, err := NewExecutor(tt.store).List(context.Background(), ContactQuery{})
			require.Error(t, err)
			assert.Nil(t, res)
			assert.ErrorIs(t, err, tt.wantCode)
		})
	}
}

func TestListKeepsCause(t *testing.T) {
	boom := errors.New("connection refused")
	_, err := NewExecutor(&stubStore{countErr: boom}).List(context.Background(), ContactQuery{})
	assert.ErrorIs(t, err, boom)
}
