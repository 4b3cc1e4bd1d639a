package server

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"crimson-db/internal/account"
	"crimson-db/internal/auth"
	"crimson-db/internal/catalog"
	"crimson-db/internal/config"
	"crimson-db/internal/db"
	"crimson-db/internal/media"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"gorm.io/gorm"
)

type Server struct {
	db       *gorm.DB
	cfg      config.Config
	logger   *slog.Logger
	catalog  *catalog.Service
	auth     *auth.Provider
	accounts *account.Service
	media    *media.Bucket
}

func New(conn *gorm.DB, bucket *media.Bucket, cfg config.Config, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	provider := auth.NewProvider(conn, auth.Options{
		Secret:     []byte(cfg.SessionSecret),
		SessionTTL: cfg.SessionTTL,
		ResetTTL:   cfg.PasswordResetTTL,
		ResetURL:   cfg.PasswordResetURL,
		Mailer:     auth.LogMailer{Logger: logger},
		Logger:     logger,
	})
	var storage account.Storage
	if bucket != nil {
		storage = bucket
	}
	return &Server{
		db:       conn,
		cfg:      cfg,
		logger:   logger,
		catalog:  catalog.New(db.NewStore(conn), cfg.UpstreamTimeout, logger),
		auth:     provider,
		accounts: account.New(conn, provider, storage, cfg.AvatarPrefix, logger),
		media:    bucket,
	}
}

func (s *Server) Handler() http.Handler {
	registerValidators()

	r := gin.New()
	r.Use(gin.Recovery(), s.telemetry())

	r.GET("/healthz", s.handleHealth)
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))
	r.GET("/media/*key", s.handleMedia)

	api := r.Group("/api")
	authed := api.Group("", s.requireSession)

	api.GET("/games", s.handleListGames)
	api.GET("/games/:id", s.handleGetGame)
	authed.POST("/games", s.handleCreateGame)
	authed.PUT("/games/:id", s.handleUpdateGame)
	authed.DELETE("/games/:id", s.handleDeleteGame)
	authed.POST("/games/:id/characters", s.handleLinkCharacter)
	authed.DELETE("/games/:id/characters/:characterId", s.handleUnlinkCharacter)
	authed.POST("/games/:id/contributors", s.handleLinkContributor)

	for _, routes := range s.entityRoutes() {
		routes.register(api, authed)
	}
	api.GET("/roles", s.handleListRoles)

	api.POST("/auth/signup", s.handleSignUp)
	api.POST("/auth/login", s.handleLogin)
	api.POST("/auth/password-reset", s.handlePasswordReset)
	api.POST("/auth/password-reset/confirm", s.handlePasswordResetConfirm)
	authed.POST("/auth/logout", s.handleLogout)

	authed.GET("/account", s.handleGetAccount)
	authed.PUT("/account", s.handleUpdateAccount)
	authed.POST("/account/pfp", s.handleUploadPicture)

	return r
}

func (s *Server) handleHealth(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
	defer cancel()
	sqlDB, err := s.db.DB()
	if err == nil {
		err = sqlDB.PingContext(ctx)
	}
	if err != nil {
		s.logger.ErrorContext(ctx, "health check failed", "error", err)
		c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
