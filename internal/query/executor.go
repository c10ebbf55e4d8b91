package query

import (
	"context"
	stderrors "errors"
	"fmt"
	"math"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"ContactHub/internal/model"
	pkgerrors "ContactHub/pkg/errors"
	"ContactHub/pkg/logger"
	"ContactHub/pkg/metrics"
)

const (
	DefaultSortBy = FieldCreatedAt
	DefaultPage   = 1
	DefaultLimit  = 10
)

// Direction 排序方向
type Direction int

const (
	Descending Direction = iota
	Ascending
)

func (d Direction) String() string {
	if d == Ascending {
		return "asc"
	}
	return "desc"
}

// Sort 排序描述；存储层应追加 id 同向排序作为并列时的决胜键
type Sort struct {
	Field     string
	Direction Direction
}

// sortableFields 允许排序的字段
var sortableFields = map[string]struct{}{
	FieldFirstName:         {},
	FieldLastName:          {},
	FieldEmail:             {},
	FieldCompany:           {},
	FieldJobTitle:          {},
	FieldStatus:            {},
	FieldSource:            {},
	FieldLastContactedDate: {},
	FieldCreatedAt:         {},
	FieldUpdatedAt:         {},
}

// IsSortable 判断字段是否允许排序
func IsSortable(field string) bool {
	_, ok := sortableFields[field]
	return ok
}

// Store 分页读取与计数两种只读操作，调用方可能并发调用
type Store interface {
	FindMatching(ctx context.Context, pred Predicate, sort Sort, offset, limit int) ([]model.Contact, error)
	CountMatching(ctx context.Context, pred Predicate) (int64, error)
}

// Pagination 分页元数据
type Pagination struct {
	Total      int64 `json:"total"`
	Page       int   `json:"page"`
	Limit      int   `json:"limit"`
	TotalPages int   `json:"totalPages"`
	HasMore    bool  `json:"hasMore"`
}

// PagedResult 一页联系人及分页信息
type PagedResult struct {
	Contacts   []model.Contact `json:"contacts"`
	Pagination Pagination      `json:"pagination"`
}

// Executor 执行列表查询
type Executor struct {
	store Store
}

func NewExecutor(store Store) *Executor {
	return &Executor{store: store}
}

// ResolveSort 未知字段回退到 createdAt；只有 asc 为升序，其余一律降序
func ResolveSort(q ContactQuery) Sort {
	field := q.SortBy
	if !IsSortable(field) {
		field = DefaultSortBy
	}

	dir := Descending
	if q.SortOrder == "asc" {
		dir = Ascending
	}

	return Sort{Field: field, Direction: dir}
}

// ErrPageOutOfRange page*limit 超出 int 范围，偏移量无法表示
var ErrPageOutOfRange = pkgerrors.InvalidInput.WithMessage("page * limit is too large")

// ResolvePage 返回页码、每页条数和偏移量；缺省取默认值，小于 1 的值按 1 处理。
// page*limit 必须能用 int 表示，这样 offset+len(contacts) 也不会溢出。
func ResolvePage(q ContactQuery) (page, limit, offset int, err error) {
	page, limit = DefaultPage, DefaultLimit
	if q.Page != nil {
		page = max(*q.Page, 1)
	}
	if q.Limit != nil {
		limit = max(*q.Limit, 1)
	}
	if page > math.MaxInt/limit {
		return page, limit, 0, ErrPageOutOfRange
	}
	return page, limit, (page - 1) * limit, nil
}

// List 编译过滤条件，并发执行分页读取和计数。
// 两次读取不在同一快照内，并发写入时 total 与 contacts 可能不一致。
func (e *Executor) List(ctx context.Context, q ContactQuery) (*PagedResult, error) {
	start := time.Now()

	pred := Compile(q)
	sort := ResolveSort(q)
	page, limit, offset, err := ResolvePage(q)
	if err != nil {
		metrics.RecordContactList(ctx, pkgerrors.InvalidInput.Code, 0, time.Since(start))
		return nil, err
	}

	var (
		contacts []model.Contact
		total    int64
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		contacts, err = e.store.FindMatching(gctx, pred, sort, offset, limit)
		return err
	})
	g.Go(func() error {
		var err error
		total, err = e.store.CountMatching(gctx, pred)
		return err
	})

	if err := g.Wait(); err != nil {
		classified := ClassifyStorageError(err)
		var def pkgerrors.Definition
		stderrors.As(classified, &def)

		metrics.RecordContactList(ctx, def.Code, 0, time.Since(start))
		logger.WithContext(ctx).Error("Failed to list contacts",
			zap.String("code", def.Code),
			zap.Int("page", page),
			zap.Int("limit", limit),
			zap.Error(err),
		)
		return nil, classified
	}

	if contacts == nil {
		contacts = []model.Contact{}
	}

	// 向上取整；不用 total+limit-1 的写法，limit 接近 MaxInt 时会溢出
	totalPages := int(total / int64(limit))
	if total%int64(limit) != 0 {
		totalPages++
	}

	metrics.RecordContactList(ctx, "ok", len(contacts), time.Since(start))

	return &PagedResult{
		Contacts: contacts,
		Pagination: Pagination{
			Total:      total,
			Page:       page,
			Limit:      limit,
			TotalPages: totalPages,
			HasMore:    int64(offset)+int64(len(contacts)) < total,
		},
	}, nil
}

// ClassifyStorageError 把存储错误归类为 Timeout 或 StorageUnavailable，保留原始错误链
func ClassifyStorageError(err error) error {
	if stderrors.Is(err, pkgerrors.Timeout) || stderrors.Is(err, pkgerrors.StorageUnavailable) {
		return err
	}
	if stderrors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("%w: %w", pkgerrors.Timeout, err)
	}
	return fmt.Errorf("%w: %w", pkgerrors.StorageUnavailable, err)
}
