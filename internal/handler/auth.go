package handler

import (
	"context"

	"github.com/cloudwego/hertz/pkg/app"

	"ContactHub/internal/middleware"
	"ContactHub/internal/model/dto"
	"ContactHub/internal/service"
	pkgerrors "ContactHub/pkg/errors"
	"ContactHub/pkg/response"
)

// Register 注册账号
// POST /v1/auth/register
func Register(ctx context.Context, c *app.RequestContext) {
	var req dto.RegisterRequest
	if err := c.BindJSON(&req); err != nil {
		response.BindError(ctx, c, err)
		return
	}

	resp, err := service.Auth().Register(ctx, req)
	if err != nil {
		response.Error(ctx, c, err)
		return
	}
	response.Created(ctx, c, resp)
}

// Login 邮箱密码登录
// POST /v1/auth/login
func Login(ctx context.Context, c *app.RequestContext) {
	var req dto.LoginRequest
	if err := c.BindJSON(&req); err != nil {
		response.BindError(ctx, c, err)
		return
	}

	resp, err := service.Auth().Login(ctx, req)
	if err != nil {
		response.Error(ctx, c, err)
		return
	}
	response.Success(ctx, c, resp)
}

// RefreshToken 刷新访问令牌
// POST /v1/auth/token/refresh
func RefreshToken(ctx context.Context, c *app.RequestContext) {
	var req dto.RefreshTokenRequest
	if err := c.BindJSON(&req); err != nil {
		response.BindError(ctx, c, err)
		return
	}

	resp, err := service.Auth().Refresh(ctx, req)
	if err != nil {
		response.Error(ctx, c, err)
		return
	}
	response.Success(ctx, c, resp)
}

// Logout 吊销当前用户的 refresh token
// POST /v1/auth/logout
func Logout(ctx context.Context, c *app.RequestContext) {
	userID, ok := middleware.GetUserID(ctx, c)
	if !ok {
		response.Error(ctx, c, pkgerrors.Unauthorized)
		return
	}

	if err := service.Auth().Logout(ctx, userID); err != nil {
		response.Error(ctx, c, err)
		return
	}
	response.Success(ctx, c, dto.LogoutResponse{Message: "Logged out successfully"})
}
