package dto

import (
	"strings"
	"time"

	"ContactHub/internal/model"
	"ContactHub/internal/query"
)

// ========== Contact 相关 DTO ==========

// CreateContactRequest 创建联系人请求，firstName/lastName/email 必填
type CreateContactRequest struct {
	FirstName         string             `json:"firstName"`
	LastName          string             `json:"lastName"`
	Email             string             `json:"email"`
	Phone             string             `json:"phone"`
	Company           string             `json:"company"`
	JobTitle          string             `json:"jobTitle"`
	Tags              []string           `json:"tags"`
	Address           *model.Address     `json:"address"`
	SocialMedia       *model.SocialMedia `json:"socialMedia"`
	Notes             string             `json:"notes"`
	Status            string             `json:"status"`
	Source            string             `json:"source"`
	LastContactedDate *time.Time         `json:"lastContactedDate"`
}

// UpdateContactRequest 部分更新，nil 字段保持原值
type UpdateContactRequest struct {
	FirstName         *string            `json:"firstName"`
	LastName          *string            `json:"lastName"`
	Email             *string            `json:"email"`
	Phone             *string            `json:"phone"`
	Company           *string            `json:"company"`
	JobTitle          *string            `json:"jobTitle"`
	Tags              *[]string          `json:"tags"`
	Address           *model.Address     `json:"address"`
	SocialMedia       *model.SocialMedia `json:"socialMedia"`
	Notes             *string            `json:"notes"`
	Status            *string            `json:"status"`
	Source            *string            `json:"source"`
	LastContactedDate *time.Time         `json:"lastContactedDate"`
}

// ToModel 转换为待写入的联系人，id 与时间戳由服务层填充
func (r *CreateContactRequest) ToModel() *model.Contact {
	c := &model.Contact{
		FirstName:         strings.TrimSpace(r.FirstName),
		LastName:          strings.TrimSpace(r.LastName),
		Email:             strings.TrimSpace(r.Email),
		Phone:             r.Phone,
		Company:           r.Company,
		JobTitle:          r.JobTitle,
		Tags:              r.Tags,
		Address:           r.Address,
		SocialMedia:       r.SocialMedia,
		Notes:             r.Notes,
		Status:            model.ContactStatus(r.Status),
		Source:            r.Source,
		LastContactedDate: r.LastContactedDate,
	}
	if c.Tags == nil {
		c.Tags = []string{}
	}
	return c
}

// ApplyTo 把非 nil 字段覆盖到已有联系人上
func (r *UpdateContactRequest) ApplyTo(c *model.Contact) {
	setString := func(dst *string, src *string) {
		if src != nil {
			*dst = *src
		}
	}
	setString(&c.FirstName, r.FirstName)
	setString(&c.LastName, r.LastName)
	setString(&c.Email, r.Email)
	setString(&c.Phone, r.Phone)
	setString(&c.Company, r.Company)
	setString(&c.JobTitle, r.JobTitle)
	setString(&c.Notes, r.Notes)
	setString(&c.Source, r.Source)

	if r.Tags != nil {
		c.Tags = append([]string{}, (*r.Tags)...)
	}
	if r.Address != nil {
		c.Address = r.Address
	}
	if r.SocialMedia != nil {
		c.SocialMedia = r.SocialMedia
	}
	if r.Status != nil {
		c.Status = model.ContactStatus(*r.Status)
	}
	if r.LastContactedDate != nil {
		c.LastContactedDate = r.LastContactedDate
	}
}

// ListContactsQuery GET /v1/contacts 的查询串，数值与日期保留原始字符串由 handler 解析
type ListContactsQuery struct {
	Query         string `query:"query"`
	Status        string `query:"status"`
	Tags          string `query:"tags"`
	Company       string `query:"company"`
	JobTitle      string `query:"jobTitle"`
	City          string `query:"city"`
	State         string `query:"state"`
	Country       string `query:"country"`
	CreatedAfter  string `query:"createdAfter"`
	CreatedBefore string `query:"createdBefore"`
	SortBy        string `query:"sortBy"`
	SortOrder     string `query:"sortOrder"`
	Page          string `query:"page"`
	Limit         string `query:"limit"`
}

// ListContactsResponse 列表响应
type ListContactsResponse = query.PagedResult

// DeleteContactResponse 删除响应
type DeleteContactResponse struct {
	Message string `json:"message"`
}
