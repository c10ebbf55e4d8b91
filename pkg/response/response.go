package response

import (
	"context"
	stderrors "errors"
	"net/http"

	"github.com/cloudwego/hertz/pkg/app"

	"ContactHub/pkg/errors"
)

// ErrorResponse 统一的错误响应格式
type ErrorResponse struct {
	Error ErrorDetail `json:"error"`
}

type ErrorDetail struct {
	Details map[string]interface{} `json:"details,omitempty"`
	Code    string                 `json:"code"`
	Message string                 `json:"message"`
}

// SuccessResponse 统一的成功响应格式
type SuccessResponse struct {
	Data interface{} `json:"data"`
}

// StatusFor 根据错误码映射 HTTP 状态码
func StatusFor(code string) int {
	switch code {
	case errors.InvalidInput.Code, errors.EmailAlreadyExists.Code, errors.InvalidUserID.Code:
		return http.StatusBadRequest // 400
	case errors.Unauthorized.Code, errors.InvalidCredentials.Code, errors.InvalidToken.Code:
		return http.StatusUnauthorized // 401
	case errors.ContactNotFound.Code, errors.UserNotFound.Code:
		return http.StatusNotFound // 404
	case errors.TooManyRequests.Code:
		return http.StatusTooManyRequests // 429
	case errors.StorageUnavailable.Code:
		return http.StatusServiceUnavailable // 503
	case errors.Timeout.Code:
		return http.StatusGatewayTimeout // 504
	default:
		return http.StatusInternalServerError // 500
	}
}

// resolve 沿错误链查找 Definition，找不到时按内部错误处理且不暴露原始信息
func resolve(err error) errors.Definition {
	var def errors.Definition
	if stderrors.As(err, &def) {
		return def
	}
	return errors.Internal
}

// Error 返回错误响应
func Error(ctx context.Context, c *app.RequestContext, err error) {
	ErrorWithDetails(ctx, c, err, nil)
}

func ErrorWithDetails(ctx context.Context, c *app.RequestContext, err error, details map[string]interface{}) {
	def := resolve(err)
	c.JSON(StatusFor(def.Code), ErrorResponse{
		Error: ErrorDetail{
			Code:    def.Code,
			Message: def.Message,
			Details: details,
		},
	})
}

func Success(ctx context.Context, c *app.RequestContext, data interface{}) {
	c.JSON(http.StatusOK, SuccessResponse{
		Data: data,
	})
}

// Created 返回 201
func Created(ctx context.Context, c *app.RequestContext, data interface{}) {
	c.JSON(http.StatusCreated, SuccessResponse{
		Data: data,
	})
}

// BindError 请求体或参数无法解析
func BindError(ctx context.Context, c *app.RequestContext, err error) {
	c.JSON(http.StatusBadRequest, ErrorResponse{
		Error: ErrorDetail{
			Code:    errors.InvalidInput.Code,
			Message: err.Error(),
		},
	})
}
