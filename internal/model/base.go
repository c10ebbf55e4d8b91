package model

import (
	"time"
)

// BaseModel 主键由 snowflake 生成，对外以字符串形式输出
type BaseModel struct {
	ID        int64     `gorm:"primaryKey;autoIncrement:false" json:"id,string"`
	CreatedAt time.Time `gorm:"not null;default:now();index" json:"createdAt"`
	UpdatedAt time.Time `gorm:"not null;default:now()" json:"updatedAt"`
}
