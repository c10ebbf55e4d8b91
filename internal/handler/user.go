package handler

import (
	"context"

	"github.com/cloudwego/hertz/pkg/app"

	"ContactHub/internal/middleware"
	"ContactHub/internal/service"
	pkgerrors "ContactHub/pkg/errors"
	"ContactHub/pkg/response"
)

// GetUserProfile 当前用户资料
// GET /v1/users/me
func GetUserProfile(ctx context.Context, c *app.RequestContext) {
	userID, ok := middleware.GetUserID(ctx, c)
	if !ok {
		response.Error(ctx, c, pkgerrors.Unauthorized)
		return
	}

	profile, err := service.User().Profile(ctx, userID)
	if err != nil {
		response.Error(ctx, c, err)
		return
	}
	response.Success(ctx, c, profile)
}
