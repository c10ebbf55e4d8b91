package repository

import (
	"context"
	"slices"
	"sync"
	"time"

	"ContactHub/internal/model"
	"ContactHub/internal/query"
)

// MemoryContactStore 进程内联系人存储，STORAGE_DRIVER=memory 与测试使用
type MemoryContactStore struct {
	mu       sync.RWMutex
	contacts map[int64]model.Contact
	byEmail  map[string]int64
	now      func() time.Time
}

func NewMemoryContactStore() *MemoryContactStore {
	return &MemoryContactStore{
		contacts: make(map[int64]model.Contact),
		byEmail:  make(map[string]int64),
		now:      time.Now,
	}
}

// cloneContact 复制可变字段，避免调用方修改存储内数据
func cloneContact(c model.Contact) model.Contact {
	c.Tags = slices.Clone(c.Tags)
	if c.Address != nil {
		a := *c.Address
		c.Address = &a
	}
	if c.SocialMedia != nil {
		sm := *c.SocialMedia
		c.SocialMedia = &sm
	}
	if c.LastContactedDate != nil {
		t := *c.LastContactedDate
		c.LastContactedDate = &t
	}
	return c
}

func (s *MemoryContactStore) FindMatching(ctx context.Context, pred query.Predicate, sort query.Sort, offset, limit int) ([]model.Contact, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.RLock()
	matched := make([]model.Contact, 0, len(s.contacts))
	for _, c := range s.contacts {
		if query.Matches(pred, &c) {
			matched = append(matched, cloneContact(c))
		}
	}
	s.mu.RUnlock()

	slices.SortFunc(matched, func(a, b model.Contact) int {
		av, aok := a.Lookup(sort.Field)
		bv, bok := b.Lookup(sort.Field)
		cmp := query.CompareValues(av, aok, bv, bok)
		if cmp == 0 {
			cmp = query.CompareValues(a.ID, true, b.ID, true)
		}
		if sort.Direction == query.Descending {
			cmp = -cmp
		}
		return cmp
	})

	offset = max(offset, 0)
	if limit < 1 || offset >= len(matched) {
		return []model.Contact{}, nil
	}
	// limit 可能接近 MaxInt，不能直接算 offset+limit
	end := len(matched)
	if limit < end-offset {
		end = offset + limit
	}
	return matched[offset:end], nil
}

func (s *MemoryContactStore) CountMatching(ctx context.Context, pred query.Predicate) (int64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	var n int64
	for _, c := range s.contacts {
		if query.Matches(pred, &c) {
			n++
		}
	}
	return n, nil
}

func (s *MemoryContactStore) Create(ctx context.Context, c *model.Contact) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.byEmail[c.Email]; exists {
		return ErrDuplicateEmail
	}

	now := s.now()
	if c.CreatedAt.IsZero() {
		c.CreatedAt = now
	}
	if c.UpdatedAt.IsZero() {
		c.UpdatedAt = c.CreatedAt
	}
	if c.Status == "" {
		c.Status = model.ContactStatusLead
	}
	if c.Tags == nil {
		c.Tags = []string{}
	}

	s.contacts[c.ID] = cloneContact(*c)
	s.byEmail[c.Email] = c.ID
	return nil
}

func (s *MemoryContactStore) GetByID(ctx context.Context, id int64) (*model.Contact, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	c, ok := s.contacts[id]
	if !ok {
		return nil, ErrNotFound
	}
	out := cloneContact(c)
	return &out, nil
}

func (s *MemoryContactStore) Update(ctx context.Context, c *model.Contact) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	old, ok := s.contacts[c.ID]
	if !ok {
		return ErrNotFound
	}
	if owner, taken := s.byEmail[c.Email]; taken && owner != c.ID {
		return ErrDuplicateEmail
	}

	c.CreatedAt = old.CreatedAt
	c.UpdatedAt = s.now()

	delete(s.byEmail, old.Email)
	s.byEmail[c.Email] = c.ID
	s.contacts[c.ID] = cloneContact(*c)
	return nil
}

func (s *MemoryContactStore) Delete(ctx context.Context, id int64) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	c, ok := s.contacts[id]
	if !ok {
		return ErrNotFound
	}
	delete(s.byEmail, c.Email)
	delete(s.contacts, id)
	return nil
}

// MemoryUserStore 进程内账号存储
type MemoryUserStore struct {
	mu      sync.RWMutex
	users   map[int64]model.User
	byEmail map[string]int64
}

func NewMemoryUserStore() *MemoryUserStore {
	return &MemoryUserStore{
		users:   make(map[int64]model.User),
		byEmail: make(map[string]int64),
	}
}

func (s *MemoryUserStore) Create(ctx context.Context, u *model.User) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.byEmail[u.Email]; exists {
		return ErrDuplicateEmail
	}

	now := time.Now()
	u.CreatedAt, u.UpdatedAt = now, now
	if u.Role == "" {
		u.Role = model.UserRoleUser
	}

	s.users[u.ID] = *u
	s.byEmail[u.Email] = u.ID
	return nil
}

func (s *MemoryUserStore) GetByID(ctx context.Context, id int64) (*model.User, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	u, ok := s.users[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &u, nil
}

func (s *MemoryUserStore) GetByEmail(ctx context.Context, email string) (*model.User, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	id, ok := s.byEmail[email]
	if !ok {
		return nil, ErrNotFound
	}
	u := s.users[id]
	return &u, nil
}

func (s *MemoryUserStore) TouchLastLogin(ctx context.Context, id int64) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	u, ok := s.users[id]
	if !ok {
		return ErrNotFound
	}
	now := time.Now()
	u.LastLoginAt = &now
	u.UpdatedAt = now
	s.users[id] = u
	return nil
}

var (
	_ ContactStore = (*MemoryContactStore)(nil)
	_ UserStore    = (*MemoryUserStore)(nil)
)
