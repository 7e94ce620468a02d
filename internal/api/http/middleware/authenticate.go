package middleware

import (
	"context"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/dtroode/account-service/internal/apierror"
	"github.com/dtroode/account-service/internal/logger"
	"github.com/dtroode/account-service/internal/model"
)

// Authenticator resolves an access token to an active account.
type Authenticator interface {
	Authenticate(ctx context.Context, accessToken string) (model.Account, error)
}

// Authenticate validates access tokens and injects the account into the request context.
type Authenticate struct {
	authenticator  Authenticator
	contextManager model.ContextManager
	cookieName     string
	logger         *logger.Logger
}

// NewAuthenticate creates a new Authenticate middleware instance.
// Tokens are read from the Authorization header and, failing that, from cookieName.
func NewAuthenticate(authenticator Authenticator, contextManager model.ContextManager, cookieName string, logger *logger.Logger) *Authenticate {
	return &Authenticate{
		authenticator:  authenticator,
		contextManager: contextManager,
		cookieName:     cookieName,
		logger:         logger,
	}
}

// Required rejects requests without a valid token for an active account.
func (m *Authenticate) Required() gin.HandlerFunc {
	return func(c *gin.Context) {
		account, err := m.authenticator.Authenticate(c.Request.Context(), m.token(c))
		if err != nil {
			m.logger.Debug("Authenticate middleware: request rejected",
				"path", c.Request.URL.Path,
				"error", err.Error())
			_ = c.Error(err)
			c.Abort()
			return
		}

		m.attach(c, account)
		c.Next()
	}
}

// Optional attaches the account when a valid token is present and otherwise lets the request through.
func (m *Authenticate) Optional() gin.HandlerFunc {
	return func(c *gin.Context) {
		token := m.token(c)
		if token == "" {
			c.Next()
			return
		}

		account, err := m.authenticator.Authenticate(c.Request.Context(), token)
		if err == nil {
			m.attach(c, account)
		}
		c.Next()
	}
}

// Authorize allows only accounts whose role is one of roles. It must run after Required.
func (m *Authenticate) Authorize(roles ...model.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		account, ok := m.contextManager.GetAccountFromContext(c.Request.Context())
		if !ok {
			_ = c.Error(apierror.NewErrMissingToken())
			c.Abort()
			return
		}

		if !account.HasRole(roles...) {
			m.logger.Info("Authenticate middleware: insufficient role",
				"account_id", account.ID,
				"role", account.Role,
				"path", c.Request.URL.Path)
			_ = c.Error(apierror.NewErrForbidden())
			c.Abort()
			return
		}

		c.Next()
	}
}

func (m *Authenticate) attach(c *gin.Context, account model.Account) {
	c.Request = c.Request.WithContext(m.contextManager.SetAccountToContext(c.Request.Context(), account))
}

func (m *Authenticate) token(c *gin.Context) string {
	if header := c.GetHeader("Authorization"); header != "" {
		scheme, token, found := strings.Cut(header, " ")
		if found && strings.EqualFold(scheme, "bearer") {
			return strings.TrimSpace(token)
		}
	}

	if token, err := c.Cookie(m.cookieName); err == nil {
		return token
	}
	return ""
}
