//go:build !cli
// +build !cli

package main

import (
	"log"
	"os"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	attachmentApi "sourcing.GO/api/attachment"
	sourcingApi "sourcing.GO/api/sourcing"
	"sourcing.GO/config"
	"sourcing.GO/core/auth"
	"sourcing.GO/core/session"
	"sourcing.GO/cron/jobs"
	attachmentRepo "sourcing.GO/model/repository/attachment"
	sourcingRepo "sourcing.GO/model/repository/sourcing"
	attachmentService "sourcing.GO/service/attachment"
	sourcingService "sourcing.GO/service/sourcing"
)

func main() {
	config.LoadEnv()
	config.LoadAppConfig()
	// Initialize Redis
	config.InitRedis()
	redisStatus := "Redis not configured or not reachable, mirror tier disabled."
	if config.RedisClient != nil {
		err := config.RedisClient.Ping(config.RedisCtx()).Err()
		if err == nil {
			redisStatus = "Redis connection successful."
		} else {
			config.RedisClient = nil // Disable the mirror if not reachable
			redisStatus = "Redis configured but not reachable, mirror tier disabled."
		}
	}
	log.Println(redisStatus)

	db, err := config.NewDB()
	if err != nil {
		log.Fatalf("failed to connect to DB: %v", err)
	}

	// Check DB connection
	sqldb, err := db.DB()
	if err != nil {
		log.Fatalf("failed to get DB instance: %v", err)
	}
	if err := sqldb.Ping(); err != nil {
		log.Fatalf("database connection failed: %v", err)
	}
	log.Println("Database connection successful.")

	jobs.SetDB(db)

	var mirror sourcingRepo.MirrorStore
	if config.RedisClient != nil {
		mirror = sourcingRepo.NewRedisMirrorStore(config.RedisClient, "")
	}
	recordStore := sourcingRepo.NewRecordStore(db, sourcingRepo.NewGormStructuredStore(db), mirror)
	if err := recordStore.Init(config.RedisCtx()); err != nil {
		log.Fatalf("record store init failed: %v", err)
	}

	attRepo := attachmentRepo.NewAttachmentRepository(db)
	if err := attRepo.Init(config.RedisCtx()); err != nil {
		log.Fatalf("attachment store init failed: %v", err)
	}
	cfg := config.AppConfig
	blobStore := attachmentService.NewStore(
		attRepo,
		attachmentService.Reencode(cfg.ImageMaxDimension, cfg.ImageQuality),
		cfg.AttachmentMaxBytes,
	)

	session.Configure(recordStore, func() sourcingService.Scheduler {
		return sourcingService.NewCronScheduler(cfg.AutoSaveInterval)
	})

	e := echo.New()
	e.Use(middleware.Logger())
	e.Use(middleware.Recover())
	e.Use(middleware.Gzip())
	e.Use(middleware.Decompress())

	e.Use(func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()
			err := next(c)
			duration := time.Since(start).Milliseconds()
			c.Response().Header().Set("X-Request-Duration-ms", strconv.FormatInt(duration, 10))
			return err
		}
	})

	e.GET("/health", func(c echo.Context) error {
		return c.String(200, "ok")
	})

	apiGroup := e.Group("/api")
	apiGroup.Use(auth.Middleware())

	sourcingApi.RegisterSourcingRoutes(apiGroup)
	attachmentApi.RegisterAttachmentRoutes(apiGroup, blobStore)

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}
	log.Printf("Server running on :%s", port)
	e.Logger.Fatal(e.Start(":" + port))
}
