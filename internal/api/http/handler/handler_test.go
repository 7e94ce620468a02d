package handler

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"

	httpcontext "github.com/dtroode/account-service/internal/api/http/context"
	"github.com/dtroode/account-service/internal/api/http/middleware"
	"github.com/dtroode/account-service/internal/model"
	"github.com/dtroode/account-service/internal/testutil"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type nopReporter struct{}

func (nopReporter) CaptureRequestError(*http.Request, error) {}
func (nopReporter) Recover(any)                              {}

// newEngine returns an engine rendering errors like production and, when account is set,
// serving every request as that account.
func newEngine(cm *httpcontext.Manager, account *model.Account, routes func(*gin.Engine)) *gin.Engine {
	engine := gin.New()
	engine.Use(middleware.NewErrors(nopReporter{}, false, testutil.MakeNoopLogger()).Handle)
	if account != nil {
		engine.Use(func(c *gin.Context) {
			c.Request = c.Request.WithContext(cm.SetAccountToContext(c.Request.Context(), *account))
			c.Next()
		})
	}
	routes(engine)
	return engine
}

func doJSON(t *testing.T, engine http.Handler, method, path string, body any, cookies ...*http.Cookie) *httptest.ResponseRecorder {
	t.Helper()

	var reader io.Reader
	switch b := body.(type) {
	case nil:
	case string:
		reader = bytes.NewBufferString(b)
	default:
		raw, err := json.Marshal(b)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}

	req := httptest.NewRequest(method, path, reader)
	if reader != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	for _, c := range cookies {
		req.AddCookie(c)
	}

	rec := httptest.NewRecorder()
	engine.ServeHTTP(rec, req)
	return rec
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	return out
}

func dataOf(t *testing.T, body map[string]any) map[string]any {
	t.Helper()
	data, ok := body["data"].(map[string]any)
	require.True(t, ok, "response has no data object: %v", body)
	return data
}

func cookieByName(rec *httptest.ResponseRecorder, name string) *http.Cookie {
	for _, c := range rec.Result().Cookies() {
		if c.Name == name {
			return c
		}
	}
	return nil
}
