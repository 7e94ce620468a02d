package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/dtroode/account-service/internal/apierror"
	"github.com/dtroode/account-service/internal/logger"
	"github.com/dtroode/account-service/internal/model"
)

// AuthService defines the account lifecycle operations exposed under /auth.
type AuthService interface {
	Register(ctx context.Context, registration model.Registration) (model.Session, error)
	Login(ctx context.Context, email, password string) (model.Session, error)
	RefreshToken(ctx context.Context, refreshToken string) (model.TokenPair, error)
	Logout(ctx context.Context, refreshToken string)
	ForgotPassword(ctx context.Context, email string) error
	ResetPassword(ctx context.Context, token, password string) error
	VerifyEmail(ctx context.Context, token string) error
	UpdateProfile(ctx context.Context, id uuid.UUID, update model.ProfileUpdate) (model.Account, error)
}

// Auth handles HTTP endpoints for authentication and the caller's own profile.
type Auth struct {
	authService    AuthService
	contextManager model.ContextManager
	cookies        CookieOptions
	logger         *logger.Logger
}

// NewAuth creates a new Auth handler.
func NewAuth(authService AuthService, contextManager model.ContextManager, cookies CookieOptions, logger *logger.Logger) *Auth {
	return &Auth{
		authService:    authService,
		contextManager: contextManager,
		cookies:        cookies,
		logger:         logger,
	}
}

// Register creates an account and returns it with a token pair.
func (h *Auth) Register(c *gin.Context) {
	var req registerRequest
	if err := bindJSON(c, &req); err != nil {
		_ = c.Error(err)
		return
	}

	session, err := h.authService.Register(c.Request.Context(), req.registration())
	if err != nil {
		h.logger.Debug("Auth handler: registration failed", "error", err.Error())
		_ = c.Error(err)
		return
	}

	respond(c, http.StatusCreated, "Registration successful. Please check your email for verification.", sessionData{
		User:   newAccountResponse(session.Account),
		Tokens: session.Tokens,
	})
}

// Login authenticates by email and password. Tokens go to the body and to cookies.
func (h *Auth) Login(c *gin.Context) {
	var req loginRequest
	if err := bindJSON(c, &req); err != nil {
		_ = c.Error(err)
		return
	}

	session, err := h.authService.Login(c.Request.Context(), normalizeEmail(req.Email), req.Password)
	if err != nil {
		h.logger.Debug("Auth handler: login failed", "error", err.Error())
		_ = c.Error(err)
		return
	}

	h.cookies.set(c, session.Tokens)
	respond(c, http.StatusOK, "Login successful", sessionData{
		User:   newAccountResponse(session.Account),
		Tokens: session.Tokens,
	})
}

// Logout clears the token cookies and revokes the presented refresh token.
func (h *Auth) Logout(c *gin.Context) {
	refreshToken := h.refreshTokenFrom(c)
	h.authService.Logout(c.Request.Context(), refreshToken)

	if account, ok := h.contextManager.GetAccountFromContext(c.Request.Context()); ok {
		h.logger.Info("Auth handler: account logged out", "account_id", account.ID)
	}

	h.cookies.clear(c)
	respond(c, http.StatusOK, "Logout successful", nil)
}

// RefreshToken exchanges a refresh token for a new pair.
func (h *Auth) RefreshToken(c *gin.Context) {
	refreshToken := h.refreshTokenFrom(c)
	if refreshToken == "" {
		_ = c.Error(apierror.NewErrRefreshTokenRequired())
		return
	}

	tokens, err := h.authService.RefreshToken(c.Request.Context(), refreshToken)
	if err != nil {
		_ = c.Error(err)
		return
	}

	h.cookies.set(c, tokens)
	respond(c, http.StatusOK, "Token refreshed successfully", tokensData{Tokens: tokens})
}

// ForgotPassword answers identically whether or not the email is registered.
func (h *Auth) ForgotPassword(c *gin.Context) {
	var req forgotPasswordRequest
	if err := bindJSON(c, &req); err != nil {
		_ = c.Error(err)
		return
	}

	if err := h.authService.ForgotPassword(c.Request.Context(), normalizeEmail(req.Email)); err != nil {
		_ = c.Error(err)
		return
	}

	respond(c, http.StatusOK, "If email exists, reset instructions have been sent", nil)
}

func (h *Auth) ResetPassword(c *gin.Context) {
	var req resetPasswordRequest
	if err := bindJSON(c, &req); err != nil {
		_ = c.Error(err)
		return
	}

	if err := h.authService.ResetPassword(c.Request.Context(), req.Token, req.Password); err != nil {
		_ = c.Error(err)
		return
	}

	respond(c, http.StatusOK, "Password reset successful", nil)
}

func (h *Auth) VerifyEmail(c *gin.Context) {
	if err := h.authService.VerifyEmail(c.Request.Context(), c.Param("token")); err != nil {
		_ = c.Error(err)
		return
	}

	respond(c, http.StatusOK, "Email verified successfully", nil)
}

// Profile returns the authenticated account.
func (h *Auth) Profile(c *gin.Context) {
	account, ok := h.contextManager.GetAccountFromContext(c.Request.Context())
	if !ok {
		_ = c.Error(apierror.NewErrMissingToken())
		return
	}

	respond(c, http.StatusOK, "", userData{User: newAccountResponse(account)})
}

func (h *Auth) UpdateProfile(c *gin.Context) {
	account, ok := h.contextManager.GetAccountFromContext(c.Request.Context())
	if !ok {
		_ = c.Error(apierror.NewErrMissingToken())
		return
	}

	var req profileRequest
	if err := bindJSON(c, &req); err != nil {
		_ = c.Error(err)
		return
	}

	updated, err := h.authService.UpdateProfile(c.Request.Context(), account.ID, req.update())
	if err != nil {
		_ = c.Error(err)
		return
	}

	respond(c, http.StatusOK, "Profile updated successfully", userData{User: newAccountResponse(updated)})
}

// refreshTokenFrom reads the refresh cookie first and falls back to the JSON body.
func (h *Auth) refreshTokenFrom(c *gin.Context) string {
	if token, err := c.Cookie(RefreshTokenCookie); err == nil && token != "" {
		return token
	}

	var req refreshRequest
	if c.Request.ContentLength != 0 {
		_ = c.ShouldBindJSON(&req)
	}
	return req.RefreshToken
}
