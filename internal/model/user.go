package model

import "time"

// UserRole 用户角色
type UserRole string

const (
	UserRoleUser  UserRole = "user"
	UserRoleAdmin UserRole = "admin"
)

// User 用户模型

type User struct {
	BaseModel
	FirstName       string     `gorm:"type:varchar(128);not null" json:"firstName"`
	LastName        string     `gorm:"type:varchar(128);not null" json:"lastName"`
	Email           string     `gorm:"type:varchar(255);not null;uniqueIndex" json:"email"`
	PasswordHash    string     `gorm:"type:varchar(255);not null" json:"-"` // bcrypt 哈希，不对外暴露
	IsEmailVerified bool       `gorm:"not null;default:false" json:"isEmailVerified"`
	Role            UserRole   `gorm:"type:varchar(16);not null;default:'user'" json:"role"`
	LastLoginAt     *time.Time `json:"lastLoginAt,omitempty"`
}

// TableName 指定表名
func (User) TableName() string {
	return "users"
}
