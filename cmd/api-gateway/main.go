package main

import (
	"fmt"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	_ "github.com/skolaris/timetable-api/api/swagger"
	"github.com/skolaris/timetable-api/internal/handler"
	"github.com/skolaris/timetable-api/internal/middleware"
	"github.com/skolaris/timetable-api/internal/repository"
	"github.com/skolaris/timetable-api/internal/service"
	"github.com/skolaris/timetable-api/pkg/cache"
	"github.com/skolaris/timetable-api/pkg/config"
	"github.com/skolaris/timetable-api/pkg/database"
	"github.com/skolaris/timetable-api/pkg/logger"
	corsmiddleware "github.com/skolaris/timetable-api/pkg/middleware/cors"
	reqidmiddleware "github.com/skolaris/timetable-api/pkg/middleware/requestid"
)

// @title Skolaris Timetable API
// @version 0.1.0
// @description Timetable generation and version management for school plans
// @BasePath /
// @schemes http

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logr, err := logger.New(cfg)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logr.Sync() //nolint:errcheck

	db, err := database.NewPostgres(cfg.Database)
	if err != nil {
		logr.Sugar().Fatalw("failed to connect to postgres", "error", err)
	}
	defer db.Close()

	redisClient, err := cache.NewRedis(cfg.Redis)
	if err != nil {
		logr.Sugar().Fatalw("failed to connect to redis", "error", err)
	}
	defer redisClient.Close()

	planRepo := repository.NewPlanRepository(db)
	templateRepo := repository.NewTemplateRepository(db)
	classConfigRepo := repository.NewClassConfigRepository(db)
	quotaRepo := repository.NewSubjectQuotaRepository(db)
	subjectRepo := repository.NewSubjectRepository(db)
	assignmentRepo := repository.NewTeacherAssignmentRepository(db)
	versionRepo := repository.NewTimetableVersionRepository(db)
	entryRepo := repository.NewTimetableEntryRepository(db)

	metricsSvc := service.NewMetricsService()

	generatorSvc := service.NewTimetableGeneratorService(
		planRepo,
		templateRepo,
		classConfigRepo,
		quotaRepo,
		subjectRepo,
		assignmentRepo,
		versionRepo,
		entryRepo,
		db,
		nil,
		logr,
		metricsSvc,
		service.TimetableGeneratorConfig{
			MaxTeacherLessonsPerDay: cfg.Generator.MaxTeacherLessonsPerDay,
		},
	)

	querySvc := service.NewTimetableQueryService(
		versionRepo,
		entryRepo,
		db,
		service.NewRedisEntryCache(redisClient, logr),
		cfg.Generator.EntryCacheTTL,
		logr,
	)

	timetableHandler := handler.NewTimetableHandler(generatorSvc, querySvc)

	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))
	r.Use(middleware.Metrics(metricsSvc))

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	r.GET("/ready", func(c *gin.Context) {
		if err := db.PingContext(c.Request.Context()); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable", "component": "postgres"})
			return
		}
		if err := redisClient.Ping(c.Request.Context()).Err(); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable", "component": "redis"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ready"})
	})

	r.GET("/metrics", gin.WrapH(metricsSvc.Handler()))

	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	api := r.Group(cfg.APIPrefix)
	api.GET("/plans/:id/timetable/versions", timetableHandler.ListVersions)
	api.GET("/timetable/versions/:id/entries", timetableHandler.Entries)

	protected := api.Group("")
	protected.Use(middleware.JWT(cfg.JWT.Secret))
	protected.POST("/plans/:id/timetable/generate", timetableHandler.Generate)
	protected.PUT("/timetable/versions/:id/current", timetableHandler.Promote)

	addr := fmt.Sprintf(":%d", cfg.Port)
	logr.Sugar().Infow("server starting", "addr", addr, "env", cfg.Env)
	if err := r.Run(addr); err != nil {
		logr.Sugar().Fatalw("server failed", "error", err)
	}
}
