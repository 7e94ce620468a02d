package handler

import (
	"bytes"
	"context"
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/dtroode/account-service/internal/apierror"
	"github.com/dtroode/account-service/internal/logger"
	"github.com/dtroode/account-service/internal/model"
)

const (
	avatarField   = "avatar"
	maxAvatarSize = 5 << 20
	sniffLen      = 512
)

var avatarTypes = map[string]bool{
	"image/png":  true,
	"image/jpeg": true,
	"image/webp": true,
}

// AccountService defines administrative account management.
type AccountService interface {
	List(ctx context.Context, filter model.AccountFilter) (model.AccountPage, error)
	Get(ctx context.Context, id uuid.UUID) (model.Account, error)
	Create(ctx context.Context, draft model.AccountDraft) (model.Account, error)
	Update(ctx context.Context, actor model.Account, id uuid.UUID, patch model.AccountPatch) (model.Account, error)
	Delete(ctx context.Context, actor model.Account, id uuid.UUID) error
	SetAvatar(ctx context.Context, id uuid.UUID, body io.Reader, size int64, contentType string) (model.Account, error)
	GetAvatar(ctx context.Context, id uuid.UUID) (model.Object, error)
}

// Account handles HTTP endpoints for user management and avatars.
type Account struct {
	accountService AccountService
	contextManager model.ContextManager
	logger         *logger.Logger
}

// NewAccount creates a new Account handler.
func NewAccount(accountService AccountService, contextManager model.ContextManager, logger *logger.Logger) *Account {
	return &Account{
		accountService: accountService,
		contextManager: contextManager,
		logger:         logger,
	}
}

// List returns a page of accounts.
func (h *Account) List(c *gin.Context) {
	var q listUsersQuery
	if err := bindQuery(c, &q); err != nil {
		_ = c.Error(err)
		return
	}

	page, err := h.accountService.List(c.Request.Context(), q.filter())
	if err != nil {
		_ = c.Error(err)
		return
	}

	respond(c, http.StatusOK, "", usersData{
		Users:      newAccountResponses(page.Accounts),
		Pagination: page.Pagination,
	})
}

func (h *Account) Get(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	account, err := h.accountService.Get(c.Request.Context(), id)
	if err != nil {
		_ = c.Error(err)
		return
	}

	respond(c, http.StatusOK, "", userData{User: newAccountResponse(account)})
}

// Create adds an account on behalf of an administrator. No verification email is sent.
func (h *Account) Create(c *gin.Context) {
	var req registerRequest
	if err := bindJSON(c, &req); err != nil {
		_ = c.Error(err)
		return
	}

	account, err := h.accountService.Create(c.Request.Context(), req.draft())
	if err != nil {
		_ = c.Error(err)
		return
	}

	respond(c, http.StatusCreated, "User created successfully", userData{User: newAccountResponse(account)})
}

func (h *Account) Update(c *gin.Context) {
	actor, ok := h.actor(c)
	if !ok {
		return
	}
	id, ok := parseID(c)
	if !ok {
		return
	}

	var req updateUserRequest
	if err := bindJSON(c, &req); err != nil {
		_ = c.Error(err)
		return
	}

	account, err := h.accountService.Update(c.Request.Context(), actor, id, req.patch())
	if err != nil {
		_ = c.Error(err)
		return
	}

	respond(c, http.StatusOK, "User updated successfully", userData{User: newAccountResponse(account)})
}

func (h *Account) Delete(c *gin.Context) {
	actor, ok := h.actor(c)
	if !ok {
		return
	}
	id, ok := parseID(c)
	if !ok {
		return
	}

	if err := h.accountService.Delete(c.Request.Context(), actor, id); err != nil {
		_ = c.Error(err)
		return
	}

	respond(c, http.StatusOK, "User deleted successfully", nil)
}

// UploadAvatar stores the caller's avatar from the multipart field "avatar".
func (h *Account) UploadAvatar(c *gin.Context) {
	actor, ok := h.actor(c)
	if !ok {
		return
	}

	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxAvatarSize+1<<20)
	header, err := c.FormFile(avatarField)
	if err != nil {
		_ = c.Error(apierror.NewErrValidation(map[string]string{avatarField: "is required"}))
		return
	}
	if header.Size > maxAvatarSize {
		_ = c.Error(apierror.NewErrValidation(map[string]string{avatarField: "must not exceed 5MB"}))
		return
	}

	file, err := header.Open()
	if err != nil {
		_ = c.Error(apierror.NewErrInternal(err))
		return
	}
	defer file.Close()

	head := make([]byte, sniffLen)
	n, err := io.ReadFull(file, head)
	if err != nil && !errors.Is(err, io.ErrUnexpectedEOF) && !errors.Is(err, io.EOF) {
		_ = c.Error(apierror.NewErrInternal(err))
		return
	}
	head = head[:n]

	contentType := http.DetectContentType(head)
	if !avatarTypes[contentType] {
		_ = c.Error(apierror.NewErrValidation(map[string]string{avatarField: "must be a PNG, JPEG or WebP image"}))
		return
	}

	body := io.MultiReader(bytes.NewReader(head), file)
	account, err := h.accountService.SetAvatar(c.Request.Context(), actor.ID, body, header.Size, contentType)
	if err != nil {
		_ = c.Error(err)
		return
	}

	h.logger.Info("Account handler: avatar uploaded",
		"account_id", actor.ID,
		"size", header.Size,
		"content_type", contentType)

	respond(c, http.StatusOK, "Avatar updated successfully", userData{User: newAccountResponse(account)})
}

// Avatar streams an account's avatar.
func (h *Account) Avatar(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	object, err := h.accountService.GetAvatar(c.Request.Context(), id)
	if err != nil {
		_ = c.Error(err)
		return
	}
	defer object.Body.Close()

	c.DataFromReader(http.StatusOK, object.Size, object.ContentType, object.Body, map[string]string{
		"Cache-Control": "private, max-age=300",
	})
}

func (h *Account) actor(c *gin.Context) (model.Account, bool) {
	account, ok := h.contextManager.GetAccountFromContext(c.Request.Context())
	if !ok {
		_ = c.Error(apierror.NewErrMissingToken())
	}
	return account, ok
}

// parseID reads the :id path parameter. Malformed ids are reported as unknown users.
func parseID(c *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		_ = c.Error(apierror.NewErrNotFound("User"))
		return uuid.Nil, false
	}
	return id, true
}
