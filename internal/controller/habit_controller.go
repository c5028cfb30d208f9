package controller

import (
	"errors"
	"habit_tracker_backend/internal/model"
	"habit_tracker_backend/internal/service"
	"habit_tracker_backend/internal/util"

	"github.com/gin-gonic/gin"
)

type HabitController struct {
	HabitService *service.HabitService
}

// NewHabitController creates a HabitController.
func NewHabitController(habitService *service.HabitService) *HabitController {
	return &HabitController{HabitService: habitService}
}

// DeleteHabitRequest is the optional body of DELETE /habits/:id.
// swagger:model DeleteHabitRequest
type DeleteHabitRequest struct {
	Reason string `json:"reason" binding:"max=255"`
}

func parseHabitID(ctx *gin.Context) (uint, bool) {
	id := util.MustParseUint(ctx.Param("id"))
	if id == 0 {
		util.BadRequest(ctx, "invalid habit id")
		return 0, false
	}
	return id, true
}

// respondError maps service errors onto the response envelope.
func respondError(ctx *gin.Context, err error) {
	switch {
	case errors.Is(err, util.ErrHabitNotFound):
		util.NotFound(ctx)
	case errors.Is(err, util.ErrInvalidDate),
		errors.Is(err, util.ErrInvalidMonth),
		errors.Is(err, util.ErrFutureDate),
		errors.Is(err, util.ErrInvalidStatus),
		errors.Is(err, util.ErrInvalidTargetType),
		errors.Is(err, util.ErrValueRequired),
		errors.Is(err, util.ErrNoFieldsToUpdate):
		util.BadRequest(ctx, err.Error())
	case errors.Is(err, util.ErrLockTimeout):
		util.Conflict(ctx, "habit is being updated, try again")
	default:
		util.LogInternalError(ctx, err)
	}
}

// CreateHabit godoc
// @Summary Create a habit
// @Tags habits
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param request body service.CreateHabitRequest true "habit"
// @Success 201 {object} util.Response{data=model.Habit}
// @Failure 400 {object} util.Response
// @Router /habits [post]
func (c *HabitController) CreateHabit(ctx *gin.Context) {
	user := util.GetUserFromContext(ctx)
	if user == nil {
		util.Unauthorized(ctx)
		return
	}

	var req service.CreateHabitRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}
	if err := req.Validate(); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	habit, err := c.HabitService.Create(ctx.Request.Context(), user.UserID, req)
	if err != nil {
		respondError(ctx, err)
		return
	}
	util.Created(ctx, habit)
}

// ListHabits godoc
// @Summary List habits
// @Description view is active (default), graduated or deleted
// @Tags habits
// @Produce json
// @Security ApiKeyAuth
// @Param view query string false "active | graduated | deleted"
// @Success 200 {object} util.Response{data=[]model.HabitSummary}
// @Router /habits [get]
func (c *HabitController) ListHabits(ctx *gin.Context) {
	user := util.GetUserFromContext(ctx)
	if user == nil {
		util.Unauthorized(ctx)
		return
	}

	view := model.ParseHabitView(ctx.Query("view"))
	habits, err := c.HabitService.List(ctx.Request.Context(), user.UserID, view)
	if err != nil {
		respondError(ctx, err)
		return
	}
	util.Success(ctx, habits)
}

// GetHabit godoc
// @Summary Get a habit
// @Tags habits
// @Produce json
// @Security ApiKeyAuth
// @Param id path int true "habit id"
// @Success 200 {object} util.Response{data=model.Habit}
// @Failure 404 {object} util.Response
// @Router /habits/{id} [get]
func (c *HabitController) GetHabit(ctx *gin.Context) {
	user := util.GetUserFromContext(ctx)
	if user == nil {
		util.Unauthorized(ctx)
		return
	}
	id, ok := parseHabitID(ctx)
	if !ok {
		return
	}

	habit, err := c.HabitService.Get(ctx.Request.Context(), id, user.UserID)
	if err != nil {
		respondError(ctx, err)
		return
	}
	if habit == nil {
		util.NotFound(ctx)
		return
	}
	util.Success(ctx, habit)
}

// UpdateHabit godoc
// @Summary Update a habit
// @Description Changing targetValue of a numeric habit recomputes its level
// @Tags habits
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param id path int true "habit id"
// @Param request body service.UpdateHabitRequest true "fields to change"
// @Success 200 {object} util.Response{data=model.Habit}
// @Failure 400 {object} util.Response
// @Failure 404 {object} util.Response
// @Router /habits/{id} [patch]
func (c *HabitController) UpdateHabit(ctx *gin.Context) {
	user := util.GetUserFromContext(ctx)
	if user == nil {
		util.Unauthorized(ctx)
		return
	}
	id, ok := parseHabitID(ctx)
	if !ok {
		return
	}

	var req service.UpdateHabitRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}
	if err := req.Validate(); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	habit, err := c.HabitService.Update(ctx.Request.Context(), id, user.UserID, req)
	if err != nil {
		respondError(ctx, err)
		return
	}
	if habit == nil {
		util.NotFound(ctx)
		return
	}
	util.Success(ctx, habit)
}

// DeleteHabit godoc
// @Summary Delete a habit
// @Description Soft delete. Unused skip days of the habit are removed.
// @Tags habits
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param id path int true "habit id"
// @Param request body DeleteHabitRequest false "reason"
// @Success 200 {object} util.Response
// @Failure 404 {object} util.Response
// @Router /habits/{id} [delete]
func (c *HabitController) DeleteHabit(ctx *gin.Context) {
	user := util.GetUserFromContext(ctx)
	if user == nil {
		util.Unauthorized(ctx)
		return
	}
	id, ok := parseHabitID(ctx)
	if !ok {
		return
	}

	var req DeleteHabitRequest
	if ctx.Request.ContentLength > 0 {
		if err := ctx.ShouldBindJSON(&req); err != nil {
			util.BadRequest(ctx, err.Error())
			return
		}
	}

	deleted, err := c.HabitService.Delete(ctx.Request.Context(), id, user.UserID, req.Reason)
	if err != nil {
		respondError(ctx, err)
		return
	}
	if !deleted {
		util.NotFound(ctx)
		return
	}
	util.Success(ctx, gin.H{"message": "Habit deleted"})
}

// CompleteHabit godoc
// @Summary Record a day
// @Description Upserts the day's status. A skip with skipDayId spends that skip day when it is still available.
// @Tags habits
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param id path int true "habit id"
// @Param request body service.CompletionRequest true "completion"
// @Success 200 {object} util.Response{data=service.CompletionResult}
// @Failure 400 {object} util.Response
// @Failure 404 {object} util.Response
// @Failure 409 {object} util.Response
// @Router /habits/{id}/complete [post]
func (c *HabitController) CompleteHabit(ctx *gin.Context) {
	c.record(ctx, false)
}

// SyncCompletion godoc
// @Summary Replay an offline completion
// @Description Same as complete, the row is flagged markedOffline. skipDayId is ignored.
// @Tags habits
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param id path int true "habit id"
// @Param request body service.CompletionRequest true "completion"
// @Success 200 {object} util.Response{data=service.CompletionResult}
// @Failure 400 {object} util.Response
// @Failure 404 {object} util.Response
// @Router /habits/{id}/completions/sync [post]
func (c *HabitController) SyncCompletion(ctx *gin.Context) {
	c.record(ctx, true)
}

func (c *HabitController) record(ctx *gin.Context, offline bool) {
	user := util.GetUserFromContext(ctx)
	if user == nil {
		util.Unauthorized(ctx)
		return
	}
	id, ok := parseHabitID(ctx)
	if !ok {
		return
	}

	var req service.CompletionRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}
	if offline && req.Date == "" {
		util.BadRequest(ctx, "date is required when syncing")
		return
	}
	if err := req.Validate(); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	var (
		result *service.CompletionResult
		err    error
	)
	if offline {
		result, err = c.HabitService.SyncCompletion(ctx.Request.Context(), user.UserID, id, req)
	} else {
		result, err = c.HabitService.RecordCompletion(ctx.Request.Context(), user.UserID, id, req)
	}
	if err != nil {
		respondError(ctx, err)
		return
	}
	if result == nil {
		util.NotFound(ctx)
		return
	}
	util.Success(ctx, result)
}

// GetCalendar godoc
// @Summary Completions of one month
// @Tags habits
// @Produce json
// @Security ApiKeyAuth
// @Param id path int true "habit id"
// @Param month path string true "YYYY-MM"
// @Success 200 {object} util.Response{data=[]model.HabitCompletion}
// @Failure 400 {object} util.Response
// @Failure 404 {object} util.Response
// @Router /habits/{id}/calendar/{month} [get]
func (c *HabitController) GetCalendar(ctx *gin.Context) {
	user := util.GetUserFromContext(ctx)
	if user == nil {
		util.Unauthorized(ctx)
		return
	}
	id, ok := parseHabitID(ctx)
	if !ok {
		return
	}

	completions, err := c.HabitService.Calendar(ctx.Request.Context(), id, user.UserID, ctx.Param("month"))
	if err != nil {
		respondError(ctx, err)
		return
	}
	util.Success(ctx, completions)
}

// GetSkipDays godoc
// @Summary Available skip days
// @Description Soonest expiry first
// @Tags habits
// @Produce json
// @Security ApiKeyAuth
// @Param id path int true "habit id"
// @Success 200 {object} util.Response{data=[]model.SkipDay}
// @Failure 404 {object} util.Response
// @Router /habits/{id}/skip-days [get]
func (c *HabitController) GetSkipDays(ctx *gin.Context) {
	user := util.GetUserFromContext(ctx)
	if user == nil {
		util.Unauthorized(ctx)
		return
	}
	id, ok := parseHabitID(ctx)
	if !ok {
		return
	}

	skipDays, err := c.HabitService.AvailableSkipDays(ctx.Request.Context(), id, user.UserID)
	if err != nil {
		respondError(ctx, err)
		return
	}
	util.Success(ctx, skipDays)
}
