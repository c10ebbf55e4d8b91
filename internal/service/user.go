package service

import (
	"context"
	"errors"
	"strconv"
	"sync"

	"ContactHub/internal/model/dto"
	"ContactHub/internal/query"
	"ContactHub/internal/repository"
	pkgerrors "ContactHub/pkg/errors"
)

var (
	userService *UserService
	userOnce    sync.Once
)

func User() *UserService {
	userOnce.Do(func() {
		userService = NewUserService(repository.Users())
	})
	return userService
}

type UserService struct {
	users repository.UserStore
}

func NewUserService(users repository.UserStore) *UserService {
	return &UserService{users: users}
}

// Profile 当前用户资料
func (s *UserService) Profile(ctx context.Context, userID string) (*dto.UserProfile, error) {
	id, err := strconv.ParseInt(userID, 10, 64)
	if err != nil {
		return nil, pkgerrors.InvalidUserID
	}

	user, err := s.users.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, pkgerrors.UserNotFound
		}
		return nil, query.ClassifyStorageError(err)
	}

	profile := dto.NewUserProfile(user)
	return &profile, nil
}
