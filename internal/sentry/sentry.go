// Package sentry reports unexpected failures to Sentry.
package sentry

import (
	"fmt"
	"net/http"
	"time"

	"github.com/getsentry/sentry-go"
)

type Options struct {
	DSN         string
	Environment string
	Release     string
	SampleRate  float64

	beforeSend func(*sentry.Event, *sentry.EventHint) *sentry.Event
}

// Reporter sends errors and recovered panics to Sentry.
// With an empty DSN nothing leaves the process.
type Reporter struct {
	hub     *sentry.Hub
	enabled bool
}

func New(opts Options) (*Reporter, error) {
	client, err := sentry.NewClient(sentry.ClientOptions{
		Dsn:              opts.DSN,
		Environment:      opts.Environment,
		Release:          opts.Release,
		SampleRate:       opts.SampleRate,
		AttachStacktrace: true,
		BeforeSend:       opts.beforeSend,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to initialize sentry client: %w", err)
	}

	return &Reporter{
		hub:     sentry.NewHub(client, sentry.NewScope()),
		enabled: opts.DSN != "",
	}, nil
}

// Enabled reports whether events are actually delivered.
func (r *Reporter) Enabled() bool {
	return r.enabled
}

func (r *Reporter) CaptureException(err error) {
	if err == nil {
		return
	}
	r.hub.CaptureException(err)
}

// CaptureRequestError reports err together with the request it failed.
func (r *Reporter) CaptureRequestError(req *http.Request, err error) {
	if err == nil {
		return
	}
	r.hub.WithScope(func(scope *sentry.Scope) {
		scope.SetRequest(req)
		scope.SetTag("method", req.Method)
		scope.SetTag("path", req.URL.Path)
		r.hub.CaptureException(err)
	})
}

// Recover reports a recovered panic value.
func (r *Reporter) Recover(v any) {
	if v == nil {
		return
	}
	r.hub.WithScope(func(scope *sentry.Scope) {
		scope.SetLevel(sentry.LevelFatal)
		r.hub.Recover(v)
	})
}

func (r *Reporter) Flush(timeout time.Duration) bool {
	return r.hub.Flush(timeout)
}
