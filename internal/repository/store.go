package repository

import (
	"context"
	"errors"

	"ContactHub/internal/model"
	"ContactHub/internal/query"
)

var (
	// ErrNotFound 记录不存在
	ErrNotFound = errors.New("record not found")
	// ErrDuplicateEmail 违反 email 唯一约束
	ErrDuplicateEmail = errors.New("duplicate email")
)

// ContactStore 联系人持久化；列表读取部分即 query.Store
type ContactStore interface {
	query.Store
	Create(ctx context.Context, c *model.Contact) error
	GetByID(ctx context.Context, id int64) (*model.Contact, error)
	Update(ctx context.Context, c *model.Contact) error
	Delete(ctx context.Context, id int64) error
}

// UserStore 账号持久化
type UserStore interface {
	Create(ctx context.Context, u *model.User) error
	GetByID(ctx context.Context, id int64) (*model.User, error)
	GetByEmail(ctx context.Context, email string) (*model.User, error)
	TouchLastLogin(ctx context.Context, id int64) error
}
