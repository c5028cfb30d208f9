package app

import (
	"context"
	"habit_tracker_backend/internal/config"
	"habit_tracker_backend/internal/controller"
	"habit_tracker_backend/internal/middleware"
	"habit_tracker_backend/internal/repository"
	"habit_tracker_backend/internal/scheduler"
	"habit_tracker_backend/internal/service"
	"habit_tracker_backend/internal/util"
	"habit_tracker_backend/pkg/configwatcher"
	"habit_tracker_backend/pkg/database"
	"habit_tracker_backend/pkg/logger"
	"habit_tracker_backend/pkg/monitoring"
	"habit_tracker_backend/pkg/security"
	"habit_tracker_backend/pkg/tracing"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// redis lock keys outlive any sane transaction, so a crashed holder frees
// the habit on its own
const redisLockTTL = 30 * time.Second

// App owns the HTTP server, the sweep scheduler and their shared dependencies.
type App struct {
	Config          *config.Config
	Router          *gin.Engine
	DB              *gorm.DB
	Redis           *redis.Client
	Clock           util.Clock
	services        *services
	scheduler       *scheduler.Scheduler
	tracer          *sdktrace.TracerProvider
	ctx             context.Context
	cancel          context.CancelFunc
	configCallbacks []func(*config.Config)
}

type repositories struct {
	habit      *repository.HabitRepository
	completion *repository.CompletionRepository
	skipDay    *repository.SkipDayRepository
	setting    *repository.SettingRepository
}

type services struct {
	skipDay  *service.SkipDayService
	habit    *service.HabitService
	sweep    *service.SweepService
	report   *service.ReportService
	settings *service.SettingsService
	system   *service.SystemService
}

type controllers struct {
	habit    *controller.HabitController
	report   *controller.ReportController
	settings *controller.SettingsController
	system   *controller.SystemController
	health   *controller.HealthController
}

// RegisterConfigCallback runs callback whenever the config file is reloaded.
func (a *App) RegisterConfigCallback(callback func(*config.Config)) {
	a.configCallbacks = append(a.configCallbacks, callback)
}

func (a *App) initRepositories(db *gorm.DB) *repositories {
	return &repositories{
		habit:      repository.NewHabitRepository(db),
		completion: repository.NewCompletionRepository(db),
		skipDay:    repository.NewSkipDayRepository(db),
		setting:    repository.NewSettingRepository(db),
	}
}

func (a *App) habitLocker() service.HabitLocker {
	if a.Redis != nil {
		logger.Log.Info("using redis habit locks")
		return service.NewRedisHabitLocker(a.Redis, redisLockTTL)
	}
	return service.NewLocalHabitLocker()
}

func (a *App) initServices(repos *repositories, cfg *config.Config, db *gorm.DB) *services {
	s := &services{}

	s.skipDay = service.NewSkipDayService(repos.skipDay, repos.setting, a.Clock, cfg.Habit.DefaultSkipExpiryDays)
	s.habit = service.NewHabitService(
		db,
		repos.habit,
		repos.completion,
		s.skipDay,
		a.habitLocker(),
		a.Clock,
		time.Duration(cfg.Habit.LockTimeoutSeconds)*time.Second,
	)
	s.sweep = service.NewSweepService(repos.habit, repos.completion, s.skipDay, a.Clock)
	s.report = service.NewReportService(repos.habit, repos.completion, a.Clock)
	s.settings = service.NewSettingsService(repos.setting, s.skipDay)
	s.system = service.NewSystemService(repos.habit, repos.completion, repos.skipDay, s.sweep)

	return s
}

func (a *App) initControllers(s *services) *controllers {
	return &controllers{
		habit:    controller.NewHabitController(s.habit),
		report:   controller.NewReportController(s.report),
		settings: controller.NewSettingsController(s.settings),
		system:   controller.NewSystemController(s.system),
		health:   controller.NewHealthController(a.DB, a.Redis),
	}
}

func (a *App) setupMiddlewares(router *gin.Engine, cfg *config.Config) {
	router.Use(middleware.RequestID())
	router.Use(security.CORS(cfg.CORS.AllowedOrigins))
	router.Use(security.Secure())
	router.Use(security.RateLimiter(a.ctx, cfg.RateLimit.MaxRequests, time.Duration(cfg.RateLimit.WindowMinutes)*time.Minute))

	if cfg.Tracing.Enabled {
		router.Use(tracing.GinMiddleware())
	}

	router.Use(monitoring.MetricsMiddleware())
}

// sweepClock is the wall clock of the daily sweep, and of "today" everywhere.
func sweepClock(cfg *config.Config) (util.Clock, *time.Location) {
	clock, loc, err := util.ClockIn(cfg.Sweep.Timezone)
	if err != nil {
		logger.Log.Warn("unknown sweep timezone, using local time", zap.String("timezone", cfg.Sweep.Timezone), zap.Error(err))
	}
	return clock, loc
}

func (a *App) startBackgroundTasks(s *services, cfg *config.Config, loc *time.Location) {
	a.scheduler = scheduler.New(loc)

	if cfg.Sweep.Enabled {
		err := a.scheduler.Add("daily-sweep", cfg.Sweep.Schedule, func(ctx context.Context) {
			s.sweep.Run(ctx)
		})
		if err != nil {
			logger.Log.Fatal("Failed to schedule daily sweep", zap.Error(err))
		}

		if cfg.Sweep.CatchUpOnStart {
			go s.sweep.CatchUp(a.ctx)
		}
	}
	a.scheduler.Start()

	if cfg.Server.WatchConfig {
		go func() {
			err := configwatcher.Watch(a.ctx, cfg.File, func(newCfg *config.Config) {
				for _, cb := range a.configCallbacks {
					cb(newCfg)
				}
			})
			if err != nil {
				logger.Log.Error("config watcher stopped", zap.Error(err))
			}
		}()
	}
}

// NewApp connects storage, builds the services and registers routes and jobs.
func NewApp(cfg *config.Config) *App {
	logger.InitLogger(cfg)
	defer logger.Log.Sync()

	logger.Log.Info("Logger initialized successfully")

	db, err := database.InitDB(&cfg.Database)
	if err != nil {
		logger.Log.Fatal("Failed to initialize database", zap.Error(err))
		log.Fatalf("Failed to initialize database: %v", err)
	}

	rdb, err := database.InitRedis(&cfg.Redis)
	if err != nil {
		logger.Log.Fatal("Failed to initialize redis", zap.Error(err))
		log.Fatalf("Failed to initialize redis: %v", err)
	}

	clock, loc := sweepClock(cfg)

	ctx, cancel := context.WithCancel(context.Background())
	app := &App{
		Config: cfg,
		DB:     db,
		Redis:  rdb,
		Clock:  clock,
		ctx:    ctx,
		cancel: cancel,
	}

	repos := app.initRepositories(db)
	services := app.initServices(repos, cfg, db)
	app.services = services
	controllers := app.initControllers(services)

	app.RegisterConfigCallback(func(newCfg *config.Config) {
		services.skipDay.SetDefaultExpiryDays(newCfg.Habit.DefaultSkipExpiryDays)
		logger.SetMode(newCfg.Server.Mode)
	})

	monitoring.Init()

	if cfg.Server.Mode == gin.ReleaseMode {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.Default()
	app.Router = router

	app.setupMiddlewares(router, cfg)

	if cfg.Tracing.Enabled {
		tp, err := tracing.InitTracer("habit-tracker", cfg.Tracing.CollectorEndpoint)
		if err != nil {
			logger.Log.Fatal("Failed to initialize tracing", zap.Error(err))
		}
		app.tracer = tp
	}

	app.registerRoutes(router, controllers, cfg)

	app.startBackgroundTasks(services, cfg, loc)

	return app
}

// Run serves HTTP until SIGINT or SIGTERM, then shuts down gracefully.
func (a *App) Run() {
	srv := &http.Server{
		Addr:              ":" + a.Config.Server.Port,
		Handler:           a.Router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logger.Log.Info("Server running", zap.String("port", a.Config.Server.Port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Log.Fatal("listen failed", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Log.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Log.Error("Server forced to shutdown", zap.Error(err))
	}

	// let a sweep that is already running finish
	if err := a.scheduler.Stop(ctx); err != nil {
		logger.Log.Warn("scheduler did not stop in time", zap.Error(err))
	}
	a.cancel()

	if a.tracer != nil {
		if err := a.tracer.Shutdown(ctx); err != nil {
			logger.Log.Error("Failed to shutdown tracer provider", zap.Error(err))
		}
	}
	if a.Redis != nil {
		a.Redis.Close()
	}
	if sqlDB, err := a.DB.DB(); err == nil {
		sqlDB.Close()
	}

	logger.Log.Info("Server exiting")
}
