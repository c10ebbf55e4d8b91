package service

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"ContactHub/internal/cache"
	"ContactHub/internal/model"
	"ContactHub/internal/model/dto"
	"ContactHub/internal/query"
	"ContactHub/internal/repository"
	pkgerrors "ContactHub/pkg/errors"
	"ContactHub/pkg/logger"
	"ContactHub/pkg/metrics"
	"ContactHub/pkg/snowflake"
	"ContactHub/pkg/token"
	"ContactHub/utils"
)

const minPasswordLength = 8

var (
	authService *AuthService
	authOnce    sync.Once
)

func Auth() *AuthService {
	authOnce.Do(func() {
		authService = NewAuthService(repository.Users(), cache.NewTokenRegistry())
	})
	return authService
}

type AuthService struct {
	users  repository.UserStore
	tokens cache.TokenRegistry
}

func NewAuthService(users repository.UserStore, tokens cache.TokenRegistry) *AuthService {
	return &AuthService{users: users, tokens: tokens}
}

// Register 注册并直接签发令牌
func (s *AuthService) Register(ctx context.Context, req dto.RegisterRequest) (resp *dto.AuthResponse, err error) {
	defer func() { metrics.RecordAuthAttempt(ctx, "register", err) }()

	email := strings.TrimSpace(req.Email)
	switch {
	case strings.TrimSpace(req.FirstName) == "":
		return nil, pkgerrors.InvalidInput.WithMessage("firstName is required")
	case strings.TrimSpace(req.LastName) == "":
		return nil, pkgerrors.InvalidInput.WithMessage("lastName is required")
	case !utils.ValidateEmail(email):
		return nil, pkgerrors.InvalidInput.WithMessage("email must be a valid email address")
	case len(req.Password) < minPasswordLength:
		return nil, pkgerrors.InvalidInput.WithMessage(
			fmt.Sprintf("password must be at least %d characters", minPasswordLength))
	}

	if _, err := s.users.GetByEmail(ctx, email); err == nil {
		return nil, pkgerrors.EmailAlreadyExists
	} else if !errors.Is(err, repository.ErrNotFound) {
		return nil, query.ClassifyStorageError(err)
	}

	hash, err := utils.HashPassword(req.Password)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	id, err := snowflake.NextID()
	if err != nil {
		return nil, fmt.Errorf("failed to generate user ID: %w", err)
	}

	user := &model.User{
		FirstName:    strings.TrimSpace(req.FirstName),
		LastName:     strings.TrimSpace(req.LastName),
		Email:        email,
		PasswordHash: hash,
		Role:         model.UserRoleUser,
	}
	user.ID = id

	if err := s.users.Create(ctx, user); err != nil {
		// 并发注册时由唯一索引兜底
		if errors.Is(err, repository.ErrDuplicateEmail) {
			return nil, pkgerrors.EmailAlreadyExists
		}
		return nil, query.ClassifyStorageError(err)
	}

	logger.WithContext(ctx).Info("User registered", zap.Int64("user_id", user.ID))
	return s.issue(ctx, user)
}

// Login 校验密码，更新 lastLoginAt 后签发令牌
func (s *AuthService) Login(ctx context.Context, req dto.LoginRequest) (resp *dto.AuthResponse, err error) {
	defer func() { metrics.RecordAuthAttempt(ctx, "login", err) }()

	if req.Email == "" || req.Password == "" {
		return nil, pkgerrors.InvalidInput.WithMessage("email and password are required")
	}

	user, err := s.users.GetByEmail(ctx, strings.TrimSpace(req.Email))
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, pkgerrors.InvalidCredentials
		}
		return nil, query.ClassifyStorageError(err)
	}

	ok, err := utils.ComparePassword(user.PasswordHash, req.Password)
	if err != nil {
		return nil, fmt.Errorf("failed to compare password: %w", err)
	}
	if !ok {
		return nil, pkgerrors.InvalidCredentials
	}

	if err := s.users.TouchLastLogin(ctx, user.ID); err != nil {
		logger.WithContext(ctx).Warn("Failed to update last login", zap.Int64("user_id", user.ID), zap.Error(err))
	} else {
		now := time.Now()
		user.LastLoginAt = &now
	}

	return s.issue(ctx, user)
}

// Refresh 消费旧 refresh token 并签发新的一对，同一 refresh token 只能使用一次
func (s *AuthService) Refresh(ctx context.Context, req dto.RefreshTokenRequest) (resp *dto.AuthResponse, err error) {
	defer func() { metrics.RecordAuthAttempt(ctx, "refresh", err) }()

	if req.RefreshToken == "" {
		return nil, pkgerrors.InvalidInput.WithMessage("refreshToken is required")
	}

	claims, err := token.ValidateRefreshToken(req.RefreshToken)
	if err != nil {
		return nil, err
	}

	valid, err := s.tokens.Consume(ctx, claims.UserID, claims.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to consume refresh token: %w", err)
	}
	if !valid {
		return nil, pkgerrors.InvalidToken.WithMessage("Refresh token has been revoked")
	}

	user, err := s.loadUser(ctx, claims.UserID)
	if err != nil {
		return nil, err
	}
	return s.issue(ctx, user)
}

// Logout 吊销该用户的全部 refresh token；已签发的 access token 在过期前仍然有效
func (s *AuthService) Logout(ctx context.Context, userID string) error {
	if err := s.tokens.RevokeAll(ctx, userID); err != nil {
		return fmt.Errorf("failed to revoke refresh tokens: %w", err)
	}
	logger.WithContext(ctx).Info("User logged out", zap.String("user_id", userID))
	return nil
}

func (s *AuthService) loadUser(ctx context.Context, userID string) (*model.User, error) {
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
	return user, nil
}

func (s *AuthService) issue(ctx context.Context, user *model.User) (*dto.AuthResponse, error) {
	uid := strconv.FormatInt(user.ID, 10)

	pair, err := token.GenerateTokenPair(uid, user.Email)
	if err != nil {
		return nil, err
	}
	if err := s.tokens.Register(ctx, uid, pair.RefreshID, pair.RefreshExpiresAt); err != nil {
		return nil, fmt.Errorf("failed to store refresh token: %w", err)
	}

	return &dto.AuthResponse{
		AccessToken:  pair.AccessToken,
		RefreshToken: pair.RefreshToken,
		ExpiresIn:    pair.ExpiresIn,
		User:         dto.NewUserProfile(user),
	}, nil
}
