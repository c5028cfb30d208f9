package controller

import (
	"bytes"
	"encoding/json"
	"habit_tracker_backend/internal/config"
	"habit_tracker_backend/internal/middleware"
	"habit_tracker_backend/internal/model"
	"habit_tracker_backend/internal/repository"
	"habit_tracker_backend/internal/service"
	"habit_tracker_backend/internal/util"
	"habit_tracker_backend/pkg/database"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

const testSecret = "0123456789abcdef0123456789abcdef"

type testServer struct {
	router *gin.Engine
	habits *service.HabitService
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{Logger: gormlogger.Default.LogMode(gormlogger.Silent)})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { sqlDB.Close() })
	require.NoError(t, database.Migrate(db))

	clock := util.FixedClock{T: time.Date(2024, 3, 20, 12, 0, 0, 0, time.Local)}
	habitRepo := repository.NewHabitRepository(db)
	completionRepo := repository.NewCompletionRepository(db)
	skipDayRepo := repository.NewSkipDayRepository(db)
	settingRepo := repository.NewSettingRepository(db)

	ledger := service.NewSkipDayService(skipDayRepo, settingRepo, clock, 5)
	habits := service.NewHabitService(db, habitRepo, completionRepo, ledger, service.NewLocalHabitLocker(), clock, time.Second)
	sweep := service.NewSweepService(habitRepo, completionRepo, ledger, clock)

	hc := NewHabitController(habits)
	rc := NewReportController(service.NewReportService(habitRepo, completionRepo, clock))
	sc := NewSettingsController(service.NewSettingsService(settingRepo, ledger))
	sys := NewSystemController(service.NewSystemService(habitRepo, completionRepo, skipDayRepo, sweep))
	health := NewHealthController(db, nil)

	cfg := &config.Config{JWT: config.JWTConfig{Secret: testSecret}}
	router := gin.New()
	router.GET("/api/health", health.HealthCheck)
	api := router.Group("/api", middleware.AuthMiddleware(cfg))
	api.POST("/habits", hc.CreateHabit)
	api.GET("/habits", hc.ListHabits)
	api.GET("/habits/:id", hc.GetHabit)
	api.PATCH("/habits/:id", hc.UpdateHabit)
	api.DELETE("/habits/:id", hc.DeleteHabit)
	api.POST("/habits/:id/complete", hc.CompleteHabit)
	api.POST("/habits/:id/completions/sync", hc.SyncCompletion)
	api.GET("/habits/:id/calendar/:month", hc.GetCalendar)
	api.GET("/habits/:id/skip-days", hc.GetSkipDays)
	api.GET("/reports/habits/weekly", rc.GetWeeklyReport)
	api.GET("/reports/habits/monthly", rc.GetMonthlyReport)
	api.GET("/settings", sc.GetSettings)
	api.PUT("/settings", sc.UpdateSettings)
	api.GET("/system/status", sys.GetStatus)

	return &testServer{router: router, habits: habits}
}

type envelope struct {
	Code    int             `json:"code"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

func (s *testServer) do(t *testing.T, userID uint, method, path string, body interface{}) (*httptest.ResponseRecorder, envelope) {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if userID != 0 {
		token, err := util.GenerateJWT(userID, testSecret, time.Hour)
		require.NoError(t, err)
		req.Header.Set("Authorization", "Bearer "+token)
	}

	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)

	var env envelope
	if w.Body.Len() > 0 {
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env))
	}
	return w, env
}

func (s *testServer) createHabit(t *testing.T, userID uint, body gin.H) model.Habit {
	t.Helper()
	w, env := s.do(t, userID, http.MethodPost, "/api/habits", body)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var h model.Habit
	require.NoError(t, json.Unmarshal(env.Data, &h))
	return h
}

func TestHabitEndpointsRequireToken(t *testing.T) {
	s := newTestServer(t)

	w, _ := s.do(t, 0, http.MethodGet, "/api/habits", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	req := httptest.NewRequest(http.MethodGet, "/api/habits", nil)
	req.Header.Set("Authorization", "Bearer garbage")
	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestCreateHabitValidation(t *testing.T) {
	s := newTestServer(t)

	w, _ := s.do(t, 1, http.MethodPost, "/api/habits", gin.H{"name": "Read", "targetType": "numeric", "category": "learning"})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w, _ = s.do(t, 1, http.MethodPost, "/api/habits", gin.H{"name": "Read", "targetType": "weekly", "category": "learning"})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w, _ = s.do(t, 1, http.MethodPost, "/api/habits", gin.H{"targetType": "duration_90", "category": "health"})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	h := s.createHabit(t, 1, gin.H{"name": "Read", "targetType": "numeric", "targetValue": 300, "targetUnit": "pages", "category": "learning"})
	assert.Equal(t, "2024-03-20", h.StartDate)
	assert.Equal(t, model.TargetNumeric, h.TargetType)
}

func TestCompleteHabitFlow(t *testing.T) {
	s := newTestServer(t)
	h := s.createHabit(t, 1, gin.H{"name": "Read", "targetType": "numeric", "targetValue": 100, "category": "learning"})
	path := "/api/habits/" + itoa(h.ID)

	w, _ := s.do(t, 1, http.MethodPost, path+"/complete", gin.H{"status": "done"})
	assert.Equal(t, http.StatusBadRequest, w.Code, "numeric done needs a value")

	w, _ = s.do(t, 1, http.MethodPost, path+"/complete", gin.H{"status": "finished"})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w, _ = s.do(t, 1, http.MethodPost, path+"/complete", gin.H{"status": "done", "date": "20-03-2024", "value": 1})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w, env := s.do(t, 1, http.MethodPost, path+"/complete", gin.H{"status": "done", "value": 45})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var res service.CompletionResult
	require.NoError(t, json.Unmarshal(env.Data, &res))
	assert.Equal(t, 4, res.Habit.CurrentLevel)
	assert.True(t, res.LevelUp)
	require.NotNil(t, res.SkipDayGranted)
	assert.Equal(t, "2024-03-25", res.SkipDayGranted.ExpiryDate)

	w, env = s.do(t, 1, http.MethodGet, path+"/skip-days", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var skipDays []model.SkipDay
	require.NoError(t, json.Unmarshal(env.Data, &skipDays))
	assert.Len(t, skipDays, 1)

	w, env = s.do(t, 1, http.MethodGet, path+"/calendar/2024-03", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var days []model.HabitCompletion
	require.NoError(t, json.Unmarshal(env.Data, &days))
	require.Len(t, days, 1)
	assert.Equal(t, model.StatusDone, days[0].Status)

	w, _ = s.do(t, 1, http.MethodGet, path+"/calendar/2024-3", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestSyncCompletion(t *testing.T) {
	s := newTestServer(t)
	h := s.createHabit(t, 1, gin.H{"name": "Walk", "targetType": "duration_90", "category": "health"})
	path := "/api/habits/" + itoa(h.ID) + "/completions/sync"

	w, _ := s.do(t, 1, http.MethodPost, path, gin.H{"status": "done"})
	assert.Equal(t, http.StatusBadRequest, w.Code, "sync needs the original date")

	w, env := s.do(t, 1, http.MethodPost, path, gin.H{"status": "done", "date": "2024-03-19"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var res service.CompletionResult
	require.NoError(t, json.Unmarshal(env.Data, &res))
	assert.True(t, res.Completion.MarkedOffline)
	assert.Equal(t, "2024-03-19", res.Completion.Date)
}

func TestHabitNotFoundPaths(t *testing.T) {
	s := newTestServer(t)
	h := s.createHabit(t, 1, gin.H{"name": "Walk", "targetType": "duration_90", "category": "health"})
	path := "/api/habits/" + itoa(h.ID)

	w, _ := s.do(t, 2, http.MethodGet, path, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
	w, _ = s.do(t, 2, http.MethodPost, path+"/complete", gin.H{"status": "done"})
	assert.Equal(t, http.StatusNotFound, w.Code)
	w, _ = s.do(t, 2, http.MethodGet, path+"/skip-days", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
	w, _ = s.do(t, 2, http.MethodDelete, path, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w, _ = s.do(t, 1, http.MethodGet, "/api/habits/abc", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestUpdateAndDeleteHabit(t *testing.T) {
	s := newTestServer(t)
	h := s.createHabit(t, 1, gin.H{"name": "Walk", "targetType": "duration_90", "category": "health"})
	path := "/api/habits/" + itoa(h.ID)

	w, _ := s.do(t, 1, http.MethodPatch, path, gin.H{})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w, env := s.do(t, 1, http.MethodPatch, path, gin.H{"name": "Walk 5k", "priority": "high"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var updated model.Habit
	require.NoError(t, json.Unmarshal(env.Data, &updated))
	assert.Equal(t, "Walk 5k", updated.Name)
	assert.Equal(t, "high", updated.Priority)

	w, _ = s.do(t, 1, http.MethodDelete, path, gin.H{"reason": "injured"})
	assert.Equal(t, http.StatusOK, w.Code)

	w, _ = s.do(t, 1, http.MethodGet, path, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w, env = s.do(t, 1, http.MethodGet, "/api/habits?view=deleted", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var deleted []model.HabitSummary
	require.NoError(t, json.Unmarshal(env.Data, &deleted))
	require.Len(t, deleted, 1)
	assert.Equal(t, "injured", deleted[0].DeletionReason)
}

func TestReportsSettingsAndStatus(t *testing.T) {
	s := newTestServer(t)
	s.createHabit(t, 1, gin.H{"name": "Walk", "targetType": "duration_90", "category": "health"})

	w, env := s.do(t, 1, http.MethodGet, "/api/reports/habits/weekly", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var weekly model.WeeklyReport
	require.NoError(t, json.Unmarshal(env.Data, &weekly))
	assert.Len(t, weekly.DailyData, 7)
	assert.Equal(t, int64(1), weekly.TotalHabits)

	w, _ = s.do(t, 1, http.MethodGet, "/api/reports/habits/monthly?month=2024-02", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	w, _ = s.do(t, 1, http.MethodGet, "/api/reports/habits/monthly?month=feb", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w, _ = s.do(t, 1, http.MethodPut, "/api/settings", gin.H{"skipExpiryDays": 0})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	w, _ = s.do(t, 1, http.MethodPut, "/api/settings", gin.H{"skipExpiryDays": 9})
	assert.Equal(t, http.StatusOK, w.Code)
	w, env = s.do(t, 1, http.MethodGet, "/api/settings", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var settings service.SettingsView
	require.NoError(t, json.Unmarshal(env.Data, &settings))
	assert.Equal(t, 9, settings.SkipExpiryDays)

	w, env = s.do(t, 1, http.MethodGet, "/api/system/status", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var status model.SystemStatus
	require.NoError(t, json.Unmarshal(env.Data, &status))
	assert.Equal(t, int64(1), status.ActiveHabits)
}

func TestHealthCheck(t *testing.T) {
	s := newTestServer(t)
	w, env := s.do(t, 0, http.MethodGet, "/api/health", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, string(env.Data), `"redis":"disabled"`)
}

func itoa(id uint) string {
	return strconv.FormatUint(uint64(id), 10)
}

func TestCompleteRejectsFutureDate(t *testing.T) {
	s := newTestServer(t)
	h := s.createHabit(t, 1, gin.H{"name": "Walk", "targetType": "duration_90", "category": "health"})
	path := "/api/habits/" + itoa(h.ID)

	w, env := s.do(t, 1, http.MethodPost, path+"/complete", gin.H{"status": "done", "date": "2024-03-21"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, util.ErrFutureDate.Error(), env.Message)

	w, _ = s.do(t, 1, http.MethodPost, path+"/completions/sync", gin.H{"status": "done", "date": "2024-03-21"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestUpdateRejectsBlankName(t *testing.T) {
	s := newTestServer(t)
	h := s.createHabit(t, 1, gin.H{"name": "Walk", "targetType": "duration_90", "category": "health"})
	path := "/api/habits/" + itoa(h.ID)

	w, _ := s.do(t, 1, http.MethodPatch, path, gin.H{"name": "   "})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w, env := s.do(t, 1, http.MethodGet, path, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var stored model.Habit
	require.NoError(t, json.Unmarshal(env.Data, &stored))
	assert.Equal(t, "Walk", stored.Name)
}
