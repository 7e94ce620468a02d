package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	httpcontext "github.com/dtroode/account-service/internal/api/http/context"
	"github.com/dtroode/account-service/internal/apierror"
	"github.com/dtroode/account-service/internal/mocks"
	"github.com/dtroode/account-service/internal/model"
	"github.com/dtroode/account-service/internal/testutil"
)

const testCookie = "accessToken"

// newGateEngine serves GET /protected through gate and reports the account the handler saw.
func newGateEngine(authenticator Authenticator, gate func(*Authenticate) []gin.HandlerFunc) (*gin.Engine, *model.Account) {
	cm := httpcontext.NewManager()
	m := NewAuthenticate(authenticator, cm, testCookie, testutil.MakeNoopLogger())
	seen := &model.Account{}

	engine := gin.New()
	engine.Use(NewErrors(&recordingReporter{}, false, testutil.MakeNoopLogger()).Handle)
	handlers := append(gate(m), func(c *gin.Context) {
		if account, ok := cm.GetAccountFromContext(c.Request.Context()); ok {
			*seen = account
		}
		c.Status(http.StatusNoContent)
	})
	engine.GET("/protected", handlers...)
	return engine, seen
}

func TestAuthenticate_Required(t *testing.T) {
	t.Parallel()

	account := model.Account{ID: uuid.New(), IsActive: true, Role: model.RoleUser}

	tests := []struct {
		name      string
		header    string
		cookie    string
		wantToken string
		authErr   error
		wantCode  int
		wantKind  apierror.Kind
	}{
		{
			name:      "bearer header",
			header:    "Bearer good",
			wantToken: "good",
			wantCode:  http.StatusNoContent,
		},
		{
			name:      "lowercase scheme",
			header:    "bearer good",
			wantToken: "good",
			wantCode:  http.StatusNoContent,
		},
		{
			name:      "cookie fallback",
			cookie:    "good",
			wantToken: "good",
			wantCode:  http.StatusNoContent,
		},
		{
			name:      "header wins over cookie",
			header:    "Bearer from-header",
			cookie:    "from-cookie",
			wantToken: "from-header",
			wantCode:  http.StatusNoContent,
		},
		{
			name:      "missing token",
			wantToken: "",
			authErr:   apierror.NewErrMissingToken(),
			wantCode:  http.StatusUnauthorized,
			wantKind:  apierror.KindMissingToken,
		},
		{
			name:      "non bearer scheme",
			header:    "Basic dXNlcjpwYXNz",
			wantToken: "",
			authErr:   apierror.NewErrMissingToken(),
			wantCode:  http.StatusUnauthorized,
			wantKind:  apierror.KindMissingToken,
		},
		{
			name:      "expired token",
			header:    "Bearer old",
			wantToken: "old",
			authErr:   apierror.NewErrTokenExpired(),
			wantCode:  http.StatusUnauthorized,
			wantKind:  apierror.KindTokenExpired,
		},
		{
			name:      "deactivated account",
			header:    "Bearer good",
			wantToken: "good",
			authErr:   apierror.NewErrAccountDeactivated(),
			wantCode:  http.StatusUnauthorized,
			wantKind:  apierror.KindAccountDeactivated,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			authenticator := mocks.NewAuthenticator(t)
			if tt.authErr != nil {
				authenticator.On("Authenticate", mock.Anything, tt.wantToken).Return(model.Account{}, tt.authErr).Once()
			} else {
				authenticator.On("Authenticate", mock.Anything, tt.wantToken).Return(account, nil).Once()
			}

			engine, seen := newGateEngine(authenticator, func(m *Authenticate) []gin.HandlerFunc {
				return []gin.HandlerFunc{m.Required()}
			})

			req := httptest.NewRequest(http.MethodGet, "/protected", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			if tt.cookie != "" {
				req.AddCookie(&http.Cookie{Name: testCookie, Value: tt.cookie})
			}
			rec := serve(engine, req)

			require.Equal(t, tt.wantCode, rec.Code)
			if tt.authErr != nil {
				assert.Equal(t, string(tt.wantKind), decodeBody(t, rec)["error"])
				assert.Equal(t, model.Account{}, *seen)
				return
			}
			assert.Equal(t, account.ID, seen.ID)
		})
	}
}

func TestAuthenticate_Optional(t *testing.T) {
	t.Parallel()

	account := model.Account{ID: uuid.New(), IsActive: true}

	t.Run("no token skips authentication", func(t *testing.T) {
		t.Parallel()
		authenticator := mocks.NewAuthenticator(t)
		engine, seen := newGateEngine(authenticator, func(m *Authenticate) []gin.HandlerFunc {
			return []gin.HandlerFunc{m.Optional()}
		})

		rec := serve(engine, httptest.NewRequest(http.MethodGet, "/protected", nil))

		assert.Equal(t, http.StatusNoContent, rec.Code)
		assert.Equal(t, model.Account{}, *seen)
	})

	t.Run("invalid token is ignored", func(t *testing.T) {
		t.Parallel()
		authenticator := mocks.NewAuthenticator(t)
		authenticator.On("Authenticate", mock.Anything, "bad").Return(model.Account{}, apierror.NewErrInvalidToken()).Once()
		engine, seen := newGateEngine(authenticator, func(m *Authenticate) []gin.HandlerFunc {
			return []gin.HandlerFunc{m.Optional()}
		})

		req := httptest.NewRequest(http.MethodGet, "/protected", nil)
		req.Header.Set("Authorization", "Bearer bad")
		rec := serve(engine, req)

		assert.Equal(t, http.StatusNoContent, rec.Code)
		assert.Equal(t, model.Account{}, *seen)
	})

	t.Run("valid token attaches account", func(t *testing.T) {
		t.Parallel()
		authenticator := mocks.NewAuthenticator(t)
		authenticator.On("Authenticate", mock.Anything, "good").Return(account, nil).Once()
		engine, seen := newGateEngine(authenticator, func(m *Authenticate) []gin.HandlerFunc {
			return []gin.HandlerFunc{m.Optional()}
		})

		req := httptest.NewRequest(http.MethodGet, "/protected", nil)
		req.AddCookie(&http.Cookie{Name: testCookie, Value: "good"})
		rec := serve(engine, req)

		assert.Equal(t, http.StatusNoContent, rec.Code)
		assert.Equal(t, account.ID, seen.ID)
	})
}

func TestAuthenticate_Authorize(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		role     model.Role
		allowed  []model.Role
		wantCode int
	}{
		{name: "admin allowed", role: model.RoleAdmin, allowed: []model.Role{model.RoleAdmin, model.RoleSuperAdmin}, wantCode: http.StatusNoContent},
		{name: "super admin allowed", role: model.RoleSuperAdmin, allowed: []model.Role{model.RoleAdmin, model.RoleSuperAdmin}, wantCode: http.StatusNoContent},
		{name: "user forbidden", role: model.RoleUser, allowed: []model.Role{model.RoleAdmin, model.RoleSuperAdmin}, wantCode: http.StatusForbidden},
		{name: "admin cannot delete", role: model.RoleAdmin, allowed: []model.Role{model.RoleSuperAdmin}, wantCode: http.StatusForbidden},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			authenticator := mocks.NewAuthenticator(t)
			authenticator.On("Authenticate", mock.Anything, "good").
				Return(model.Account{ID: uuid.New(), IsActive: true, Role: tt.role}, nil).Once()

			engine, _ := newGateEngine(authenticator, func(m *Authenticate) []gin.HandlerFunc {
				return []gin.HandlerFunc{m.Required(), m.Authorize(tt.allowed...)}
			})

			req := httptest.NewRequest(http.MethodGet, "/protected", nil)
			req.Header.Set("Authorization", "Bearer good")
			rec := serve(engine, req)

			require.Equal(t, tt.wantCode, rec.Code)
			if tt.wantCode == http.StatusForbidden {
				body := decodeBody(t, rec)
				assert.Equal(t, string(apierror.KindForbidden), body["error"])
				assert.Equal(t, "Insufficient permissions", body["message"])
			}
		})
	}
}

func TestAuthenticate_Authorize_WithoutAccount(t *testing.T) {
	t.Parallel()

	engine, _ := newGateEngine(mocks.NewAuthenticator(t), func(m *Authenticate) []gin.HandlerFunc {
		return []gin.HandlerFunc{m.Authorize(model.RoleAdmin)}
	})

	rec := serve(engine, httptest.NewRequest(http.MethodGet, "/protected", nil))

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}
