package controller

import (
	"habit_tracker_backend/internal/service"
	"habit_tracker_backend/internal/util"

	"github.com/gin-gonic/gin"
)

type SettingsController struct {
	SettingsService *service.SettingsService
}

// NewSettingsController creates a SettingsController.
func NewSettingsController(settingsService *service.SettingsService) *SettingsController {
	return &SettingsController{SettingsService: settingsService}
}

// GetSettings godoc
// @Summary Current user settings
// @Tags settings
// @Produce json
// @Security ApiKeyAuth
// @Success 200 {object} util.Response{data=service.SettingsView}
// @Router /settings [get]
func (c *SettingsController) GetSettings(ctx *gin.Context) {
	user := util.GetUserFromContext(ctx)
	if user == nil {
		util.Unauthorized(ctx)
		return
	}

	settings, err := c.SettingsService.Get(ctx.Request.Context(), user.UserID)
	if err != nil {
		respondError(ctx, err)
		return
	}
	util.Success(ctx, settings)
}

// UpdateSettings godoc
// @Summary Update user settings
// @Description skipExpiryDays applies to skip days granted from now on
// @Tags settings
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param request body service.UpdateSettingsRequest true "settings"
// @Success 200 {object} util.Response{data=service.SettingsView}
// @Failure 400 {object} util.Response
// @Router /settings [put]
func (c *SettingsController) UpdateSettings(ctx *gin.Context) {
	user := util.GetUserFromContext(ctx)
	if user == nil {
		util.Unauthorized(ctx)
		return
	}

	var req service.UpdateSettingsRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	settings, err := c.SettingsService.Update(ctx.Request.Context(), user.UserID, req)
	if err != nil {
		respondError(ctx, err)
		return
	}
	util.Success(ctx, settings)
}
