package server

import (
	"net/http"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/kd5jp/ChurchBell/internal/api/handlers"
	"github.com/kd5jp/ChurchBell/internal/api/middleware"
	"github.com/kd5jp/ChurchBell/internal/backup"
	"github.com/kd5jp/ChurchBell/internal/config"
	database "github.com/kd5jp/ChurchBell/internal/db"
	"github.com/kd5jp/ChurchBell/internal/player"
	"github.com/kd5jp/ChurchBell/internal/store"
)

type Server struct {
	cfg    *config.Config
	router *gin.Engine
}

// New wires stores, player and backup manager into the route table. sync is
// invoked after every alarm write (no-op in loop mode).
func New(cfg *config.Config, db *database.Client, snd *player.Player, backups *backup.Manager, sync handlers.SyncFunc) *Server {
	if cfg.LogLevel != "debug" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(middleware.RequestLogger(), gin.Recovery())

	s := &Server{cfg: cfg, router: router}

	// CORS Configuration
	corsConfig := cors.DefaultConfig()
	corsConfig.AllowAllOrigins = true
	corsConfig.AllowMethods = []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"}
	corsConfig.AllowHeaders = []string{"Origin", "Content-Length", "Content-Type", "Authorization"}
	router.Use(cors.New(corsConfig))

	alarms := store.NewAlarmStore(db.DB)
	settings := store.NewSettingsStore(db.DB)
	users := store.NewUserStore(db.DB)

	secret := []byte(cfg.Auth.JWTSecret)

	authHandler := handlers.NewAuthHandler(users, secret, cfg.Auth.TokenTTLHours)
	alarmHandler := handlers.NewAlarmHandler(alarms, settings, users, snd, sync)
	userHandler := handlers.NewUserHandler(users)
	soundHandler := handlers.NewSoundHandler(users, settings, snd, cfg.Audio.SoundsDir)
	volumeHandler := handlers.NewVolumeHandler(users, settings, snd)
	backupHandler := handlers.NewBackupHandler(users, backups)
	statsHandler := handlers.NewStatsHandler(alarms, users)

	// Health Check
	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok", "service": "churchbell"})
	})

	v1 := router.Group("/api/v1")
	{
		// Public
		v1.POST("/auth/login", authHandler.Login)

		// Everything else needs a valid token; capability checks happen
		// inside each handler.
		protected := v1.Group("/")
		protected.Use(middleware.RequireAuth(secret))
		{
			protected.POST("/auth/change_password", authHandler.ChangePassword)
			protected.GET("/stats", statsHandler.GetStats)

			protected.GET("/alarms", alarmHandler.List)
			protected.POST("/alarms", alarmHandler.Create)
			protected.PUT("/alarms/:id", alarmHandler.Update)
			protected.DELETE("/alarms/:id", alarmHandler.Delete)
			protected.POST("/alarms/:id/toggle", alarmHandler.Toggle)
			protected.POST("/alarms/:id/test", alarmHandler.Test)

			protected.GET("/volume", volumeHandler.Get)
			protected.POST("/volume", volumeHandler.Set)

			protected.GET("/sounds", soundHandler.List)
			protected.POST("/sounds", soundHandler.Upload)
			protected.DELETE("/sounds/:name", soundHandler.Delete)
			protected.POST("/sounds/:name/test", soundHandler.Test)

			protected.GET("/users", userHandler.List)
			protected.POST("/users", userHandler.Create)
			protected.DELETE("/users/:id", userHandler.Delete)
			protected.PUT("/users/:id/role", userHandler.SetRole)
			protected.PUT("/users/:id/permissions", userHandler.SetPermissions)

			protected.GET("/backups", backupHandler.List)
			protected.POST("/backups", backupHandler.Export)
			protected.POST("/backups/restore", backupHandler.Restore)
		}
	}

	return s
}

// Start runs the server on the configured port
func (s *Server) Start(addr string) error {
	return s.router.Run(addr)
}
