package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"ContactHub/internal/model"
	"ContactHub/internal/model/dto"
	"ContactHub/internal/query"
	"ContactHub/internal/queue"
	"ContactHub/internal/repository"
	pkgerrors "ContactHub/pkg/errors"
	"ContactHub/pkg/logger"
	"ContactHub/pkg/metrics"
	"ContactHub/pkg/snowflake"
	"ContactHub/utils"
)

var (
	contactService *ContactService
	contactOnce    sync.Once
)

// Contact 返回使用默认存储和事件发布器的单例
func Contact() *ContactService {
	contactOnce.Do(func() {
		contactService = NewContactService(repository.Contacts(), queue.NewPublisher())
	})
	return contactService
}

type ContactService struct {
	store     repository.ContactStore
	executor  *query.Executor
	publisher queue.EventPublisher
}

func NewContactService(store repository.ContactStore, publisher queue.EventPublisher) *ContactService {
	if publisher == nil {
		publisher = queue.NoopPublisher{}
	}
	return &ContactService{
		store:     store,
		executor:  query.NewExecutor(store),
		publisher: publisher,
	}
}

// List 过滤、排序、分页
func (s *ContactService) List(ctx context.Context, q query.ContactQuery) (*query.PagedResult, error) {
	return s.executor.List(ctx, q)
}

// Create 创建联系人，email 重复时返回 EmailAlreadyExists
func (s *ContactService) Create(ctx context.Context, actorID string, req dto.CreateContactRequest) (*model.Contact, error) {
	c := req.ToModel()
	if c.Status == "" {
		c.Status = model.ContactStatusLead
	}
	if err := validateContact(c); err != nil {
		return nil, err
	}

	id, err := snowflake.NextID()
	if err != nil {
		return nil, fmt.Errorf("failed to generate contact ID: %w", err)
	}
	c.ID = id

	err = s.store.Create(ctx, c)
	metrics.RecordContactWrite(ctx, "create", err)
	if err != nil {
		return nil, s.writeError(err, id)
	}

	logger.WithContext(ctx).Info("Contact created",
		zap.Int64("contact_id", c.ID),
		zap.String("actor_id", actorID),
	)
	s.publish(ctx, model.ContactCreated, actorID, c.ID, c)
	return c, nil
}

// Get 按 ID 查询；非法 ID 与不存在同样返回 ContactNotFound
func (s *ContactService) Get(ctx context.Context, rawID string) (*model.Contact, error) {
	id, ok := snowflake.ParseID(rawID)
	if !ok {
		return nil, notFound(rawID)
	}

	c, err := s.store.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, notFound(rawID)
		}
		return nil, query.ClassifyStorageError(err)
	}
	return c, nil
}

// Update 读取后合并非空字段再整体写回，并发更新以最后一次写入为准
func (s *ContactService) Update(ctx context.Context, actorID, rawID string, req dto.UpdateContactRequest) (*model.Contact, error) {
	c, err := s.Get(ctx, rawID)
	if err != nil {
		return nil, err
	}

	req.ApplyTo(c)
	if err := validateContact(c); err != nil {
		return nil, err
	}

	err = s.store.Update(ctx, c)
	metrics.RecordContactWrite(ctx, "update", err)
	if err != nil {
		return nil, s.writeError(err, c.ID)
	}

	logger.WithContext(ctx).Info("Contact updated",
		zap.Int64("contact_id", c.ID),
		zap.String("actor_id", actorID),
	)
	s.publish(ctx, model.ContactUpdated, actorID, c.ID, c)
	return c, nil
}

// Delete 删除联系人
func (s *ContactService) Delete(ctx context.Context, actorID, rawID string) error {
	id, ok := snowflake.ParseID(rawID)
	if !ok {
		return notFound(rawID)
	}

	err := s.store.Delete(ctx, id)
	metrics.RecordContactWrite(ctx, "delete", err)
	if err != nil {
		return s.writeError(err, id)
	}

	logger.WithContext(ctx).Info("Contact deleted",
		zap.Int64("contact_id", id),
		zap.String("actor_id", actorID),
	)
	s.publish(ctx, model.ContactDeleted, actorID, id, nil)
	return nil
}

func (s *ContactService) writeError(err error, id int64) error {
	switch {
	case errors.Is(err, repository.ErrDuplicateEmail):
		return pkgerrors.EmailAlreadyExists
	case errors.Is(err, repository.ErrNotFound):
		return notFound(fmt.Sprint(id))
	default:
		return query.ClassifyStorageError(err)
	}
}

// publish 事件发布失败只记日志，不影响已提交的写入
func (s *ContactService) publish(ctx context.Context, typ model.ContactEventType, actorID string, id int64, c *model.Contact) {
	err := s.publisher.Publish(ctx, model.ContactEvent{
		Type:       typ,
		ContactID:  id,
		ActorID:    actorID,
		OccurredAt: time.Now().UTC(),
		Contact:    c,
	})
	if err != nil {
		logger.WithContext(ctx).Warn("Contact event not published",
			zap.String("type", string(typ)),
			zap.Int64("contact_id", id),
			zap.Error(err),
		)
	}
}

func notFound(id string) error {
	return pkgerrors.ContactNotFound.WithMessage(fmt.Sprintf("Contact with ID %s not found", id))
}

// validateContact 创建和合并后的更新共用
func validateContact(c *model.Contact) error {
	switch {
	case c.FirstName == "":
		return pkgerrors.InvalidInput.WithMessage("firstName is required")
	case c.LastName == "":
		return pkgerrors.InvalidInput.WithMessage("lastName is required")
	case c.Email == "":
		return pkgerrors.InvalidInput.WithMessage("email is required")
	case !utils.ValidateEmail(c.Email):
		return pkgerrors.InvalidInput.WithMessage("email must be a valid email address")
	case !model.ValidContactStatus(string(c.Status)):
		return pkgerrors.InvalidInput.WithMessage("status must be one of active, inactive, lead, customer, prospect")
	}
	for _, tag := range c.Tags {
		if tag == "" {
			return pkgerrors.InvalidInput.WithMessage("tags must not contain empty values")
		}
	}
	return nil
}
