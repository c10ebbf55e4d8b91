package dto

import (
	"strconv"
	"time"

	"ContactHub/internal/model"
)

// UserProfile 对外暴露的用户信息，不含密码哈希
type UserProfile struct {
	ID              string     `json:"id"`
	FirstName       string     `json:"firstName"`
	LastName        string     `json:"lastName"`
	Email           string     `json:"email"`
	IsEmailVerified bool       `json:"isEmailVerified"`
	Role            string     `json:"role"`
	LastLoginAt     *time.Time `json:"lastLoginAt,omitempty"`
	CreatedAt       time.Time  `json:"createdAt"`
	UpdatedAt       time.Time  `json:"updatedAt"`
}

func NewUserProfile(u *model.User) UserProfile {
	return UserProfile{
		ID:              strconv.FormatInt(u.ID, 10),
		FirstName:       u.FirstName,
		LastName:        u.LastName,
		Email:           u.Email,
		IsEmailVerified: u.IsEmailVerified,
		Role:            string(u.Role),
		LastLoginAt:     u.LastLoginAt,
		CreatedAt:       u.CreatedAt,
		UpdatedAt:       u.UpdatedAt,
	}
}
