package repository

import (
	"context"
	"fmt"
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ContactHub/internal/model"
	"ContactHub/internal/query"
	pkgerrors "ContactHub/pkg/errors"
)

var base = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

func day(n int) time.Time { return base.AddDate(0, 0, n-1) }

func intPtr(v int) *int { return &v }

func seed(t *testing.T, contacts ...model.Contact) *MemoryContactStore {
	t.Helper()
	s := NewMemoryContactStore()
	for i := range contacts {
		c := contacts[i]
		if c.ID == 0 {
			c.ID = int64(i + 1)
		}
		if c.Email == "" {
			c.Email = fmt.Sprintf("c%d@example.com", c.ID)
		}
		require.NoError(t, s.Create(context.Background(), &c))
	}
	return s
}

func list(t *testing.T, s *MemoryContactStore, q query.ContactQuery) *query.PagedResult {
	t.Helper()
	res, err := query.NewExecutor(s).List(context.Background(), q)
	require.NoError(t, err)
	return res
}

func names(res *query.PagedResult) []string {
	out := make([]string, 0, len(res.Contacts))
	for _, c := range res.Contacts {
		out = append(out, c.FirstName)
	}
	return out
}

func TestScenarioCompanyFilterAscending(t *testing.T) {
	s := seed(t,
		model.Contact{FirstName: "A", Company: "Acme", BaseModel: model.BaseModel{CreatedAt: day(1)}},
		model.Contact{FirstName: "B", Company: "ACME Labs", BaseModel: model.BaseModel{CreatedAt: day(2)}},
		model.Contact{FirstName: "C", Company: "Globex", BaseModel: model.BaseModel{CreatedAt: day(3)}},
	)

	res := list(t, s, query.ContactQuery{Company: "acme", SortOrder: "asc"})

	assert.Equal(t, []string{"A", "B"}, names(res))
	assert.Equal(t, query.Pagination{Total: 2, Page: 1, Limit: 10, TotalPages: 1, HasMore: false}, res.Pagination)
}

func TestEmptyFilterReturnsEverything(t *testing.T) {
	s := seed(t,
		model.Contact{FirstName: "A", BaseModel: model.BaseModel{CreatedAt: day(1)}},
		model.Contact{FirstName: "B", BaseModel: model.BaseModel{CreatedAt: day(2)}},
		model.Contact{FirstName: "C", BaseModel: model.BaseModel{CreatedAt: day(3)}},
	)

	res := list(t, s, query.ContactQuery{})
	assert.Equal(t, int64(3), res.Pagination.Total)
	assert.Equal(t, []string{"C", "B", "A"}, names(res))
}

func TestConjunctiveNarrowing(t *testing.T) {
	s := seed(t,
		model.Contact{FirstName: "A", Company: "Acme", Status: model.ContactStatusLead},
		model.Contact{FirstName: "B", Company: "Acme", Status: model.ContactStatusCustomer},
		model.Contact{FirstName: "C", Company: "Globex", Status: model.ContactStatusLead},
	)

	wide := list(t, s, query.ContactQuery{Company: "acme"})
	narrow := list(t, s, query.ContactQuery{Company: "acme", Status: "lead"})

	assert.Equal(t, int64(2), wide.Pagination.Total)
	assert.Equal(t, int64(1), narrow.Pagination.Total)
	assert.Equal(t, []string{"A"}, names(narrow))
}

func TestTagsHaveOrSemantics(t *testing.T) {
	s := seed(t,
		model.Contact{FirstName: "A", Tags: []string{"x"}},
		model.Contact{FirstName: "B", Tags: []string{"y"}},
		model.Contact{FirstName: "C", Tags: []string{"z"}},
		model.Contact{FirstName: "D", Tags: []string{"x", "y"}},
	)

	res := list(t, s, query.ContactQuery{Tags: []string{"x", "y"}, SortBy: query.FieldFirstName, SortOrder: "asc"})
	assert.Equal(t, []string{"A", "B", "D"}, names(res))
}

func TestDateRangeIsInclusive(t *testing.T) {
	s := seed(t,
		model.Contact{FirstName: "Jan01", BaseModel: model.BaseModel{CreatedAt: day(1)}},
		model.Contact{FirstName: "Jan15", BaseModel: model.BaseModel{CreatedAt: day(15)}},
		model.Contact{FirstName: "Jan31", BaseModel: model.BaseModel{CreatedAt: day(31)}},
		model.Contact{FirstName: "Feb01", BaseModel: model.BaseModel{CreatedAt: day(32)}},
	)

	from, to := day(1), day(31)
	res := list(t, s, query.ContactQuery{CreatedAfter: &from, CreatedBefore: &to, SortOrder: "asc"})
	assert.Equal(t, []string{"Jan01", "Jan15", "Jan31"}, names(res))

	exact := day(15)
	res = list(t, s, query.ContactQuery{CreatedAfter: &exact, CreatedBefore: &exact})
	assert.Equal(t, []string{"Jan15"}, names(res))

	res = list(t, s, query.ContactQuery{CreatedAfter: &to, CreatedBefore: &from})
	assert.Empty(t, res.Contacts)
	assert.Equal(t, int64(0), res.Pagination.Total)
}

func TestPaginationArithmetic(t *testing.T) {
	contacts := make([]model.Contact, 23)
	for i := range contacts {
		contacts[i] = model.Contact{
			FirstName: fmt.Sprintf("n%02d", i),
			BaseModel: model.BaseModel{CreatedAt: base.Add(time.Duration(i) * time.Minute)},
		}
	}
	s := seed(t, contacts...)

	first := list(t, s, query.ContactQuery{Page: intPtr(1), Limit: intPtr(10)})
	assert.Len(t, first.Contacts, 10)
	assert.Equal(t, 3, first.Pagination.TotalPages)
	assert.True(t, first.Pagination.HasMore)

	last := list(t, s, query.ContactQuery{Page: intPtr(3), Limit: intPtr(10)})
	assert.Len(t, last.Contacts, 3)
	assert.Equal(t, int64(23), last.Pagination.Total)
	assert.False(t, last.Pagination.HasMore)

	beyond := list(t, s, query.ContactQuery{Page: intPtr(9), Limit: intPtr(10)})
	assert.Empty(t, beyond.Contacts)
	assert.False(t, beyond.Pagination.HasMore)
}

func TestSubstringIsCaseInsensitive(t *testing.T) {
	s := seed(t,
		model.Contact{FirstName: "A", Address: &model.Address{City: "New York"}},
		model.Contact{FirstName: "B", Address: &model.Address{City: "Newark"}},
		model.Contact{FirstName: "C"},
	)

	for _, needle := range []string{"york", "YORK", "w yo"} {
		res := list(t, s, query.ContactQuery{City: needle})
		assert.Equal(t, []string{"A"}, names(res), needle)
	}
}

func TestFreeTextSearchSpansFields(t *testing.T) {
	s := seed(t,
		model.Contact{FirstName: "Ada", LastName: "Lovelace"},
		model.Contact{FirstName: "Bob", Notes: "met Ada at the conference"},
		model.Contact{FirstName: "Cy", Email: "ada.fan@example.com"},
		model.Contact{FirstName: "Dee", JobTitle: "Engineer"},
	)

	res := list(t, s, query.ContactQuery{Query: "ADA", SortBy: query.FieldFirstName, SortOrder: "asc"})
	assert.Equal(t, []string{"Ada", "Bob", "Cy"}, names(res))
}

func TestSortOrderAcrossPages(t *testing.T) {
	letters := []string{"e", "a", "d", "b", "c", "f", "g"}
	contacts := make([]model.Contact, len(letters))
	for i, l := range letters {
		contacts[i] = model.Contact{FirstName: l}
	}
	s := seed(t, contacts...)

	var got []string
	for page := 1; page <= 3; page++ {
		res := list(t, s, query.ContactQuery{
			SortBy:    query.FieldFirstName,
			SortOrder: "asc",
			Page:      intPtr(page),
			Limit:     intPtr(3),
		})
		got = append(got, names(res)...)
	}
	assert.Equal(t, []string{"a", "b", "c", "d", "e", "f", "g"}, got)
}

func TestTiesBreakByID(t *testing.T) {
	s := seed(t,
		model.Contact{BaseModel: model.BaseModel{ID: 3, CreatedAt: day(1)}, FirstName: "third"},
		model.Contact{BaseModel: model.BaseModel{ID: 1, CreatedAt: day(1)}, FirstName: "first"},
		model.Contact{BaseModel: model.BaseModel{ID: 2, CreatedAt: day(1)}, FirstName: "second"},
	)

	asc := list(t, s, query.ContactQuery{SortOrder: "asc"})
	assert.Equal(t, []string{"first", "second", "third"}, names(asc))

	desc := list(t, s, query.ContactQuery{})
	assert.Equal(t, []string{"third", "second", "first"}, names(desc))
}

func TestUnknownSortFieldFallsBackToCreatedAt(t *testing.T) {
	s := seed(t,
		model.Contact{FirstName: "z", BaseModel: model.BaseModel{CreatedAt: day(1)}},
		model.Contact{FirstName: "a", BaseModel: model.BaseModel{CreatedAt: day(2)}},
	)

	res := list(t, s, query.ContactQuery{SortBy: "nonsense", SortOrder: "asc"})
	assert.Equal(t, []string{"z", "a"}, names(res))
}

func TestExpiredDeadlineIsReportedAsTimeout(t *testing.T) {
	s := seed(t, model.Contact{FirstName: "A"})

	ctx, cancel := context.WithDeadline(context.Background(), time.Now().Add(-time.Second))
	defer cancel()

	_, err := query.NewExecutor(s).List(ctx, query.ContactQuery{})
	require.Error(t, err)
	assert.ErrorIs(t, err, pkgerrors.Timeout)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestMemoryContactStoreCRUD(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryContactStore()

	c := &model.Contact{BaseModel: model.BaseModel{ID: 10}, FirstName: "Ada", Email: "ada@example.com", Tags: []string{"vip"}}
	require.NoError(t, s.Create(ctx, c))
	assert.Equal(t, model.ContactStatusLead, c.Status)
	assert.False(t, c.CreatedAt.IsZero())

	dup := &model.Contact{BaseModel: model.BaseModel{ID: 11}, Email: "ada@example.com"}
	assert.ErrorIs(t, s.Create(ctx, dup), ErrDuplicateEmail)

	got, err := s.GetByID(ctx, 10)
	require.NoError(t, err)
	got.Tags[0] = "mutated"

	again, err := s.GetByID(ctx, 10)
	require.NoError(t, err)
	assert.Equal(t, []string{"vip"}, again.Tags)

	other := &model.Contact{BaseModel: model.BaseModel{ID: 12}, Email: "bob@example.com"}
	require.NoError(t, s.Create(ctx, other))
	other.Email = "ada@example.com"
	assert.ErrorIs(t, s.Update(ctx, other), ErrDuplicateEmail)

	again.Email = "ada@new.example.com"
	require.NoError(t, s.Update(ctx, again))
	assert.Equal(t, c.CreatedAt, again.CreatedAt)

	// 旧邮箱释放后可以被复用
	reuse := &model.Contact{BaseModel: model.BaseModel{ID: 13}, Email: "ada@example.com"}
	require.NoError(t, s.Create(ctx, reuse))

	require.NoError(t, s.Delete(ctx, 10))
	_, err = s.GetByID(ctx, 10)
	assert.ErrorIs(t, err, ErrNotFound)
	assert.ErrorIs(t, s.Delete(ctx, 10), ErrNotFound)
	assert.ErrorIs(t, s.Update(ctx, &model.Contact{BaseModel: model.BaseModel{ID: 99}}), ErrNotFound)
}

func TestMemoryUserStore(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryUserStore()

	u := &model.User{BaseModel: model.BaseModel{ID: 1}, Email: "ada@example.com", PasswordHash: "h"}
	require.NoError(t, s.Create(ctx, u))
	assert.Equal(t, model.UserRoleUser, u.Role)
	assert.ErrorIs(t, s.Create(ctx, &model.User{BaseModel: model.BaseModel{ID: 2}, Email: "ada@example.com"}), ErrDuplicateEmail)

	got, err := s.GetByEmail(ctx, "ada@example.com")
	require.NoError(t, err)
	assert.Nil(t, got.LastLoginAt)

	require.NoError(t, s.TouchLastLogin(ctx, 1))
	got, err = s.GetByID(ctx, 1)
	require.NoError(t, err)
	assert.NotNil(t, got.LastLoginAt)

	_, err = s.GetByEmail(ctx, "nobody@example.com")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestFindMatchingOutOfRangeWindow(t *testing.T) {
	ctx := context.Background()
	s := seed(t, model.Contact{FirstName: "A"}, model.Contact{FirstName: "B"}, model.Contact{FirstName: "C"})
	sort := query.Sort{Field: query.FieldFirstName, Direction: query.Ascending}

	tests := []struct {
		name          string
		offset, limit int
		want          int
	}{
		{"negative offset starts at zero", math.MinInt, 2, 2},
		{"huge limit", 1, math.MaxInt, 2},
		{"offset past end", math.MaxInt, math.MaxInt, 0},
		{"zero limit", 0, 0, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := s.FindMatching(ctx, query.And{}, sort, tt.offset, tt.limit)
			require.NoError(t, err)
			assert.Len(t, got, tt.want)
		})
	}
}

func TestOverflowingPageIsRejected(t *testing.T) {
	s := seed(t, model.Contact{FirstName: "A"})

	_, err := query.NewExecutor(s).List(context.Background(), query.ContactQuery{
		Page:  intPtr(math.MaxInt/2 + 2),
		Limit: intPtr(2),
	})
	require.Error(t, err)
	assert.ErrorIs(t, err, pkgerrors.InvalidInput)
}

func TestMemoryUserStoreHonoursCancellation(t *testing.T) {
	s := NewMemoryUserStore()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	u := &model.User{BaseModel: model.BaseModel{ID: 1}, Email: "ada@example.com"}
	assert.ErrorIs(t, s.Create(ctx, u), context.Canceled)

	require.NoError(t, s.Create(context.Background(), u))

	_, err := s.GetByID(ctx, 1)
	assert.ErrorIs(t, err, context.Canceled)
	_, err = s.GetByEmail(ctx, "ada@example.com")
	assert.ErrorIs(t, err, context.Canceled)
	assert.ErrorIs(t, s.TouchLastLogin(ctx, 1), context.Canceled)

	got, err := s.GetByID(context.Background(), 1)
	require.NoError(t, err)
	assert.Nil(t, got.LastLoginAt)
}
