package controller

import (
	"habit_tracker_backend/internal/service"
	"habit_tracker_backend/internal/util"

	"github.com/gin-gonic/gin"
)

type SystemController struct {
	SystemService *service.SystemService
}

// NewSystemController creates a SystemController.
func NewSystemController(systemService *service.SystemService) *SystemController {
	return &SystemController{SystemService: systemService}
}

// GetStatus godoc
// @Summary Service counters and the last daily sweep
// @Tags system
// @Produce json
// @Security ApiKeyAuth
// @Success 200 {object} util.Response{data=model.SystemStatus}
// @Router /system/status [get]
func (c *SystemController) GetStatus(ctx *gin.Context) {
	status, err := c.SystemService.Status(ctx.Request.Context())
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}
	util.Success(ctx, status)
}
