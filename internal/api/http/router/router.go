package router

import (
	"io"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/dtroode/account-service/internal/api/http/handler"
	"github.com/dtroode/account-service/internal/api/http/middleware"
	"github.com/dtroode/account-service/internal/logger"
	"github.com/dtroode/account-service/internal/model"
	"github.com/dtroode/account-service/internal/service"
)

// Options holds transport-level settings for the HTTP API.
type Options struct {
	AllowedOrigins []string
	Cookies        handler.CookieOptions
	// ExposeErrorDetail adds internal error text to 500 responses.
	ExposeErrorDetail bool
}

// Router represents the HTTP router for the account service.
// It wires handlers and middleware onto a gin engine.
type Router struct {
	authService    *service.Auth
	accountService *service.Accounts
	store          handler.Pinger
	reporter       middleware.Reporter
	contextManager model.ContextManager
	options        Options
	logger         *logger.Logger
}

// New creates new Router instance.
func New(
	authService *service.Auth,
	accountService *service.Accounts,
	store handler.Pinger,
	reporter middleware.Reporter,
	contextManager model.ContextManager,
	options Options,
	logger *logger.Logger,
) *Router {
	return &Router{
		authService:    authService,
		accountService: accountService,
		store:          store,
		reporter:       reporter,
		contextManager: contextManager,
		options:        options,
		logger:         logger,
	}
}

// Register builds the gin engine with every route and middleware.
func (r *Router) Register() *gin.Engine {
	logging := middleware.NewLogging(r.logger)
	errs := middleware.NewErrors(r.reporter, r.options.ExposeErrorDetail, r.logger)
	authenticate := middleware.NewAuthenticate(r.authService, r.contextManager, handler.AccessTokenCookie, r.logger)

	engine := gin.New()
	engine.Use(
		logging.Handle,
		gin.CustomRecoveryWithWriter(io.Discard, errs.Recover),
		r.cors(),
		errs.Handle,
	)
	engine.NoRoute(errs.NotFound)

	v1 := engine.Group("/api/v1")
	r.registerHealthRoutes(v1)
	r.registerAuthRoutes(v1, authenticate)
	r.registerAccountRoutes(v1, authenticate)

	return engine
}

func (r *Router) registerHealthRoutes(v1 *gin.RouterGroup) {
	h := handler.NewHealth(r.store, r.logger)

	health := v1.Group("/health")
	health.GET("/liveness", h.Liveness)
	health.GET("/readiness", h.Readiness)
}

func (r *Router) registerAuthRoutes(v1 *gin.RouterGroup, authenticate *middleware.Authenticate) {
	h := handler.NewAuth(r.authService, r.contextManager, r.options.Cookies, r.logger)

	auth := v1.Group("/auth")
	auth.POST("/register", h.Register)
	auth.POST("/login", h.Login)
	auth.POST("/logout", authenticate.Optional(), h.Logout)
	auth.POST("/refresh-token", h.RefreshToken)
	auth.POST("/forgot-password", h.ForgotPassword)
	auth.POST("/reset-password", h.ResetPassword)
	auth.GET("/verify-email/:token", h.VerifyEmail)

	profile := auth.Group("/profile", authenticate.Required())
	profile.GET("", h.Profile)
	profile.PUT("", h.UpdateProfile)

	if r.accountService.AvatarsEnabled() {
		accounts := handler.NewAccount(r.accountService, r.contextManager, r.logger)
		profile.PUT("/avatar", accounts.UploadAvatar)
	}
}

func (r *Router) registerAccountRoutes(v1 *gin.RouterGroup, authenticate *middleware.Authenticate) {
	h := handler.NewAccount(r.accountService, r.contextManager, r.logger)
	admins := authenticate.Authorize(model.RoleAdmin, model.RoleSuperAdmin)

	users := v1.Group("/users", authenticate.Required())
	users.GET("", admins, h.List)
	users.POST("", admins, h.Create)
	users.GET("/:id", admins, h.Get)
	users.PUT("/:id", admins, h.Update)
	users.DELETE("/:id", authenticate.Authorize(model.RoleSuperAdmin), h.Delete)

	if r.accountService.AvatarsEnabled() {
		users.GET("/:id/avatar", h.Avatar)
	}
}

// cors allows credentialed requests from the configured origins. Without origins any origin
// is allowed, but then cookies are not.
func (r *Router) cors() gin.HandlerFunc {
	config := cors.Config{
		AllowOrigins:     r.options.AllowedOrigins,
		AllowMethods:     []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}
	if len(config.AllowOrigins) == 0 {
		config.AllowOrigins = nil
		config.AllowAllOrigins = true
		config.AllowCredentials = false
	}

	return cors.New(config)
}
