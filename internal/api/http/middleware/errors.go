package middleware

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/dtroode/account-service/internal/apierror"
	"github.com/dtroode/account-service/internal/logger"
)

// Reporter receives failures that are not part of the operational error taxonomy.
type Reporter interface {
	CaptureRequestError(req *http.Request, err error)
	Recover(v any)
}

type errorResponse struct {
	Status  string            `json:"status"`
	Error   apierror.Kind     `json:"error"`
	Message string            `json:"message"`
	Details map[string]string `json:"details,omitempty"`
	Detail  string            `json:"detail,omitempty"`
}

// Errors renders errors attached with c.Error and recovers panics.
type Errors struct {
	reporter     Reporter
	exposeDetail bool
	logger       *logger.Logger
}

// NewErrors creates a new Errors middleware.
// With exposeDetail set, internal error text is included in 500 responses.
func NewErrors(reporter Reporter, exposeDetail bool, logger *logger.Logger) *Errors {
	return &Errors{reporter: reporter, exposeDetail: exposeDetail, logger: logger}
}

// Handle renders the last error attached to the context once the chain has run.
func (m *Errors) Handle(c *gin.Context) {
	c.Next()

	if len(c.Errors) == 0 || c.Writer.Written() {
		return
	}
	m.render(c, c.Errors.Last().Err)
}

// Recover is a gin.RecoveryFunc answering panics with INTERNAL_ERROR.
func (m *Errors) Recover(c *gin.Context, recovered any) {
	m.reporter.Recover(recovered)
	m.logger.Error("HTTP: recovered from panic",
		"method", c.Request.Method,
		"path", c.Request.URL.Path,
		"panic", fmt.Sprint(recovered))

	c.AbortWithStatusJSON(http.StatusInternalServerError, m.internal(fmt.Errorf("panic: %v", recovered)))
}

// NotFound answers requests that matched no route.
func (m *Errors) NotFound(c *gin.Context) {
	_ = c.Error(apierror.NewErrNotFound("Route " + c.Request.URL.Path))
}

func (m *Errors) render(c *gin.Context, err error) {
	apiErr, ok := apierror.As(err)
	if !ok || apiErr.Kind == apierror.KindInternal {
		m.logger.Error("HTTP: unexpected error",
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"error", err.Error())
		m.reporter.CaptureRequestError(c.Request, err)
		c.AbortWithStatusJSON(http.StatusInternalServerError, m.internal(err))
		return
	}

	c.AbortWithStatusJSON(apiErr.Status, errorResponse{
		Status:  "fail",
		Error:   apiErr.Kind,
		Message: apiErr.Message,
		Details: apiErr.Details,
	})
}

func (m *Errors) internal(err error) errorResponse {
	resp := errorResponse{
		Status:  "error",
		Error:   apierror.KindInternal,
		Message: "Internal server error",
	}
	if m.exposeDetail {
		resp.Detail = err.Error()
	}
	return resp
}
