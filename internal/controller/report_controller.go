package controller

import (
	"habit_tracker_backend/internal/service"
	"habit_tracker_backend/internal/util"

	"github.com/gin-gonic/gin"
)

type ReportController struct {
	ReportService *service.ReportService
}

// NewReportController creates a ReportController.
func NewReportController(reportService *service.ReportService) *ReportController {
	return &ReportController{ReportService: reportService}
}

// GetWeeklyReport godoc
// @Summary Habit report for the last 7 days
// @Tags reports
// @Produce json
// @Security ApiKeyAuth
// @Success 200 {object} util.Response{data=model.WeeklyReport}
// @Router /reports/habits/weekly [get]
func (c *ReportController) GetWeeklyReport(ctx *gin.Context) {
	user := util.GetUserFromContext(ctx)
	if user == nil {
		util.Unauthorized(ctx)
		return
	}

	report, err := c.ReportService.Weekly(ctx.Request.Context(), user.UserID)
	if err != nil {
		respondError(ctx, err)
		return
	}
	util.Success(ctx, report)
}

// GetMonthlyReport godoc
// @Summary Habit heatmap for a month
// @Tags reports
// @Produce json
// @Security ApiKeyAuth
// @Param month query string false "YYYY-MM, defaults to the current month"
// @Success 200 {object} util.Response{data=model.MonthlyReport}
// @Failure 400 {object} util.Response
// @Router /reports/habits/monthly [get]
func (c *ReportController) GetMonthlyReport(ctx *gin.Context) {
	user := util.GetUserFromContext(ctx)
	if user == nil {
		util.Unauthorized(ctx)
		return
	}

	report, err := c.ReportService.Monthly(ctx.Request.Context(), user.UserID, ctx.Query("month"))
	if err != nil {
		respondError(ctx, err)
		return
	}
	util.Success(ctx, report)
}
