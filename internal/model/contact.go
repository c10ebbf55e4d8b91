package model

import (
	"strings"
	"time"
)

// ContactStatus 联系人状态枚举
type ContactStatus string

const (
	ContactStatusActive   ContactStatus = "active"
	ContactStatusInactive ContactStatus = "inactive"
	ContactStatusLead     ContactStatus = "lead"
	ContactStatusCustomer ContactStatus = "customer"
	ContactStatusProspect ContactStatus = "prospect"
)

// ValidContactStatus 判断状态是否属于枚举
func ValidContactStatus(s string) bool {
	switch ContactStatus(s) {
	case ContactStatusActive, ContactStatusInactive, ContactStatusLead,
		ContactStatusCustomer, ContactStatusProspect:
		return true
	}
	return false
}

// Address 嵌套地址（JSONB）
type Address struct {
	Street  string `json:"street,omitempty"`
	City    string `json:"city,omitempty"`
	State   string `json:"state,omitempty"`
	Country string `json:"country,omitempty"`
	ZipCode string `json:"zipCode,omitempty"`
}

// SocialMedia 社交账号（JSONB）
type SocialMedia struct {
	LinkedIn string `json:"linkedin,omitempty"`
	Twitter  string `json:"twitter,omitempty"`
	Facebook string `json:"facebook,omitempty"`
}

// Contact 联系人模型，email 全局唯一
type Contact struct {
	BaseModel
	FirstName         string        `gorm:"type:varchar(128);not null" json:"firstName"`
	LastName          string        `gorm:"type:varchar(128);not null" json:"lastName"`
	Email             string        `gorm:"type:varchar(255);not null;uniqueIndex" json:"email"`
	Phone             string        `gorm:"type:varchar(64);not null;default:''" json:"phone,omitempty"`
	Company           string        `gorm:"type:varchar(255);not null;default:''" json:"company,omitempty"`
	JobTitle          string        `gorm:"type:varchar(255);not null;default:''" json:"jobTitle,omitempty"`
	Tags              []string      `gorm:"type:jsonb;serializer:json;not null;default:'[]'" json:"tags"`
	Address           *Address      `gorm:"type:jsonb;serializer:json" json:"address,omitempty"`
	SocialMedia       *SocialMedia  `gorm:"type:jsonb;serializer:json" json:"socialMedia,omitempty"`
	Notes             string        `gorm:"type:text;not null;default:''" json:"notes,omitempty"`
	Status            ContactStatus `gorm:"type:varchar(16);not null;default:'lead';index" json:"status"`
	Source            string        `gorm:"type:varchar(128);not null;default:''" json:"source,omitempty"`
	LastContactedDate *time.Time    `json:"lastContactedDate,omitempty"`
}

// TableName 指定表名
func (Contact) TableName() string {
	return "contacts"
}

// Lookup 按点分字段名取值，供内存存储求值谓词；address 缺失时嵌套字段视为不存在
func (c *Contact) Lookup(field string) (any, bool) {
	if sub, ok := strings.CutPrefix(field, "address."); ok {
		if c.Address == nil {
			return nil, false
		}
		switch sub {
		case "street":
			return c.Address.Street, true
		case "city":
			return c.Address.City, true
		case "state":
			return c.Address.State, true
		case "country":
			return c.Address.Country, true
		case "zipCode":
			return c.Address.ZipCode, true
		}
		return nil, false
	}

	switch field {
	case "id":
		return c.ID, true
	case "firstName":
		return c.FirstName, true
	case "lastName":
		return c.LastName, true
	case "email":
		return c.Email, true
	case "phone":
		return c.Phone, true
	case "company":
		return c.Company, true
	case "jobTitle":
		return c.JobTitle, true
	case "tags":
		return c.Tags, true
	case "notes":
		return c.Notes, true
	case "status":
		return string(c.Status), true
	case "source":
		return c.Source, true
	case "lastContactedDate":
		if c.LastContactedDate == nil {
			return nil, false
		}
		return *c.LastContactedDate, true
	case "createdAt":
		return c.CreatedAt, true
	case "updatedAt":
		return c.UpdatedAt, true
	}
	return nil, false
}
