package main

import (
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"

	"staffdocs/internal/config"
	"staffdocs/internal/database"
	"staffdocs/internal/domain/document"
	"staffdocs/internal/logger"
	"staffdocs/internal/middleware"
	jwtsvc "staffdocs/internal/pkg/jwt"
)

func main() {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		logger.Fatalf("config: %v", err)
	}
	logger.Init(cfg.LogLevel, cfg.LogFormat)

	db, err := database.Connect(cfg.DatabaseURL)
	if err != nil {
		logger.Fatalf("db connect failed: %v", err)
	}
	if err := database.Migrate(db, &document.Document{}); err != nil {
		logger.Fatalf("migrate failed: %v", err)
	}

	blobs, err := document.NewBlobStore(cfg.StorageRoot)
	if err != nil {
		logger.Fatalf("blob store: %v", err)
	}

	repo := document.NewRepository(db)
	service := document.NewService(repo, blobs, cfg.PublicBaseURL, cfg.MaxFileSize)
	handler := document.NewHandler(service, cfg.MaxFileSize)

	j := jwtsvc.New(cfg.JWTSecret, cfg.JWTTTL)

	if cfg.AppEnv != "dev" {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()
	r.Use(middleware.RequestLogger())
	r.Use(middleware.CORS())

	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	v1 := r.Group("/api/v1")
	v1.Use(middleware.Auth(j))
	document.RegisterRoutes(v1, handler)

	logger.Infof("listening on :%s, storage root %s", cfg.Port, blobs.Root())
	if err := r.Run(":" + cfg.Port); err != nil {
		logger.Fatalf("server: %v", err)
	}
}
