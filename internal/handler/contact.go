package handler

import (
	"context"
	"strconv"

	"github.com/cloudwego/hertz/pkg/app"

	"ContactHub/internal/middleware"
	"ContactHub/internal/model"
	"ContactHub/internal/model/dto"
	"ContactHub/internal/query"
	"ContactHub/internal/service"
	pkgerrors "ContactHub/pkg/errors"
	"ContactHub/pkg/response"
	"ContactHub/utils"
)

// ListContacts 按条件分页列出联系人
// GET /v1/contacts
func ListContacts(ctx context.Context, c *app.RequestContext) {
	var req dto.ListContactsQuery
	if err := c.BindQuery(&req); err != nil {
		response.BindError(ctx, c, err)
		return
	}

	q, field, err := parseListQuery(req)
	if err != nil {
		response.ErrorWithDetails(ctx, c, err, map[string]interface{}{"field": field})
		return
	}

	result, err := service.Contact().List(ctx, q)
	if err != nil {
		response.Error(ctx, c, err)
		return
	}
	response.Success(ctx, c, result)
}

// parseListQuery 校验并转换查询串，失败时返回出错的参数名
func parseListQuery(req dto.ListContactsQuery) (query.ContactQuery, string, error) {
	q := query.ContactQuery{
		Query:    req.Query,
		Status:   req.Status,
		Tags:     utils.SplitList(req.Tags),
		Company:  req.Company,
		JobTitle: req.JobTitle,
		City:     req.City,
		State:    req.State,
		Country:  req.Country,
		SortBy:   req.SortBy,
	}

	if q.Status != "" && !model.ValidContactStatus(q.Status) {
		return q, "status", pkgerrors.InvalidInput.WithMessage("status must be one of active, inactive, lead, customer, prospect")
	}

	switch req.SortOrder {
	case "", "asc", "desc":
		q.SortOrder = req.SortOrder
	default:
		return q, "sortOrder", pkgerrors.InvalidInput.WithMessage("sortOrder must be asc or desc")
	}

	var err error
	if q.CreatedAfter, err = utils.ParseOptionalDate(req.CreatedAfter); err != nil {
		return q, "createdAfter", pkgerrors.InvalidInput.WithMessage(err.Error())
	}
	if q.CreatedBefore, err = utils.ParseOptionalDate(req.CreatedBefore); err != nil {
		return q, "createdBefore", pkgerrors.InvalidInput.WithMessage(err.Error())
	}

	if q.Page, err = parsePositive(req.Page); err != nil {
		return q, "page", pkgerrors.InvalidInput.WithMessage("page must be an integer >= 1")
	}
	if q.Limit, err = parsePositive(req.Limit); err != nil {
		return q, "limit", pkgerrors.InvalidInput.WithMessage("limit must be an integer >= 1")
	}
	if _, _, _, err = query.ResolvePage(q); err != nil {
		return q, "page", err
	}

	return q, "", nil
}

func parsePositive(s string) (*int, error) {
	if s == "" {
		return nil, nil
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return nil, err
	}
	if n < 1 {
		return nil, strconv.ErrRange
	}
	return &n, nil
}

// CreateContact 新增联系人
// POST /v1/contacts
func CreateContact(ctx context.Context, c *app.RequestContext) {
	var req dto.CreateContactRequest
	if err := c.BindJSON(&req); err != nil {
		response.BindError(ctx, c, err)
		return
	}

	userID, _ := middleware.GetUserID(ctx, c)
	contact, err := service.Contact().Create(ctx, userID, req)
	if err != nil {
		response.Error(ctx, c, err)
		return
	}
	response.Created(ctx, c, contact)
}

// GetContact 查询单个联系人
// GET /v1/contacts/:id
func GetContact(ctx context.Context, c *app.RequestContext) {
	contact, err := service.Contact().Get(ctx, c.Param("id"))
	if err != nil {
		response.Error(ctx, c, err)
		return
	}
	response.Success(ctx, c, contact)
}

// UpdateContact 部分更新联系人
// PUT /v1/contacts/:id
func UpdateContact(ctx context.Context, c *app.RequestContext) {
	var req dto.UpdateContactRequest
	if err := c.BindJSON(&req); err != nil {
		response.BindError(ctx, c, err)
		return
	}

	userID, _ := middleware.GetUserID(ctx, c)
	contact, err := service.Contact().Update(ctx, userID, c.Param("id"), req)
	if err != nil {
		response.Error(ctx, c, err)
		return
	}
	response.Success(ctx, c, contact)
}

// DeleteContact 删除联系人
// DELETE /v1/contacts/:id
func DeleteContact(ctx context.Context, c *app.RequestContext) {
	userID, _ := middleware.GetUserID(ctx, c)
	if err := service.Contact().Delete(ctx, userID, c.Param("id")); err != nil {
		response.Error(ctx, c, err)
		return
	}
	response.Success(ctx, c, dto.DeleteContactResponse{Message: "Contact deleted successfully"})
}
