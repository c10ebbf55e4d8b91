package repository

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"
	"gorm.io/plugin/dbresolver"

	"ContactHub/internal/model"
	"ContactHub/internal/query"
)

// GormContactStore 基于 PostgreSQL 的联系人存储；列表读取经 dbresolver 走只读副本
type GormContactStore struct {
	db      *gorm.DB
	timeout time.Duration
}

func NewGormContactStore(db *gorm.DB, timeout time.Duration) *GormContactStore {
	return &GormContactStore{db: db, timeout: timeout}
}

func (s *GormContactStore) session(ctx context.Context) (*gorm.DB, context.CancelFunc) {
	if s.timeout <= 0 {
		return s.db.WithContext(ctx), func() {}
	}
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	return s.db.WithContext(ctx), cancel
}

// listQuery 构造带过滤条件的查询，Find 与 Count 共用
func listQuery(db *gorm.DB, pred query.Predicate) (*gorm.DB, error) {
	where, err := whereClauses(pred)
	if err != nil {
		return nil, err
	}
	return db.Model(&model.Contact{}).Clauses(where...), nil
}

func (s *GormContactStore) FindMatching(ctx context.Context, pred query.Predicate, sort query.Sort, offset, limit int) ([]model.Contact, error) {
	db, cancel := s.session(ctx)
	defer cancel()

	q, err := listQuery(db, pred)
	if err != nil {
		return nil, err
	}
	order, err := orderBy(sort)
	if err != nil {
		return nil, err
	}

	var contacts []model.Contact
	if err := q.Clauses(order).Offset(offset).Limit(limit).Find(&contacts).Error; err != nil {
		return nil, err
	}
	return contacts, nil
}

func (s *GormContactStore) CountMatching(ctx context.Context, pred query.Predicate) (int64, error) {
	db, cancel := s.session(ctx)
	defer cancel()

	q, err := listQuery(db, pred)
	if err != nil {
		return 0, err
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return 0, err
	}
	return total, nil
}

func (s *GormContactStore) Create(ctx context.Context, c *model.Contact) error {
	db, cancel := s.session(ctx)
	defer cancel()

	return translate(db.Create(c).Error)
}

// GetByID 读主库，保证写后立即可读
func (s *GormContactStore) GetByID(ctx context.Context, id int64) (*model.Contact, error) {
	db, cancel := s.session(ctx)
	defer cancel()

	var c model.Contact
	if err := db.Clauses(dbresolver.Write).First(&c, id).Error; err != nil {
		return nil, translate(err)
	}
	return &c, nil
}

// Update 覆盖除 id、created_at 以外的全部列，updated_at 由 gorm 刷新
func (s *GormContactStore) Update(ctx context.Context, c *model.Contact) error {
	db, cancel := s.session(ctx)
	defer cancel()

	res := db.Model(c).Select("*").Omit("id", "created_at").Updates(c)
	if res.Error != nil {
		return translate(res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *GormContactStore) Delete(ctx context.Context, id int64) error {
	db, cancel := s.session(ctx)
	defer cancel()

	res := db.Delete(&model.Contact{}, id)
	if res.Error != nil {
		return translate(res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// translate 需要 gorm.Config.TranslateError 开启
func translate(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		return ErrNotFound
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return ErrDuplicateEmail
	}
	return err
}
