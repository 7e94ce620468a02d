package notify

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dtroode/account-service/internal/testutil"
)

func TestMailtrap_SendVerificationEmail(t *testing.T) {
	var got sendRequest
	var auth string

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		auth = r.Header.Get("Authorization")
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		assert.Equal(t, http.MethodPost, r.Method)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	m := NewMailtrap(MailtrapOptions{
		APIURL:      srv.URL,
		APIKey:      "secret-key",
		FromEmail:   "noreply@example.com",
		FromName:    "Accounts",
		FrontendURL: "https://app.example/",
	}, srv.Client(), testutil.MakeNoopLogger())

	require.NoError(t, m.SendVerificationEmail(context.Background(), "user@example.com", "tok en"))

	assert.Equal(t, "Bearer secret-key", auth)
	assert.Equal(t, address{Email: "noreply@example.com", Name: "Accounts"}, got.From)
	assert.Equal(t, []address{{Email: "user@example.com"}}, got.To)
	assert.Equal(t, "Verify Your Email Address", got.Subject)
	assert.Contains(t, got.Text, "https://app.example/verify-email?token=tok+en")
	assert.Contains(t, got.HTML, `href="https://app.example/verify-email?token=tok`)
}

func TestMailtrap_SendPasswordResetEmail(t *testing.T) {
	var got sendRequest

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	m := NewMailtrap(MailtrapOptions{
		APIURL:      srv.URL,
		FrontendURL: "http://localhost:3000",
		ResetTTL:    30 * time.Minute,
	}, srv.Client(), testutil.MakeNoopLogger())

	require.NoError(t, m.SendPasswordResetEmail(context.Background(), "user@example.com", "abc123"))
	assert.Equal(t, "Password Reset Request", got.Subject)
	assert.Equal(t, "password_reset", got.Category)
	assert.Contains(t, got.Text, "http://localhost:3000/reset-password?token=abc123")
	assert.Contains(t, got.Text, "This link will expire in 30 minutes.")
	assert.Contains(t, got.HTML, "This link will expire in 30 minutes.")
	assert.NotContains(t, got.HTML, "10 minutes")
}

func TestMailtrap_SendPasswordResetEmail_NoTTL(t *testing.T) {
	var got sendRequest

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	m := NewMailtrap(MailtrapOptions{APIURL: srv.URL}, srv.Client(), testutil.MakeNoopLogger())

	require.NoError(t, m.SendPasswordResetEmail(context.Background(), "user@example.com", "abc123"))
	assert.NotContains(t, got.Text, "expire")
	assert.NotContains(t, got.HTML, "expire")
}

func TestHumanDuration(t *testing.T) {
	tests := []struct {
		in   time.Duration
		want string
	}{
		{in: 0, want: ""},
		{in: time.Minute, want: "1 minute"},
		{in: 10 * time.Minute, want: "10 minutes"},
		{in: 90 * time.Minute, want: "90 minutes"},
		{in: time.Hour, want: "1 hour"},
		{in: 24 * time.Hour, want: "24 hours"},
		{in: 10*time.Minute + 20*time.Second, want: "10 minutes"},
	}

	for _, tt := range tests {
		t.Run(tt.in.String(), func(t *testing.T) {
			assert.Equal(t, tt.want, humanDuration(tt.in))
		})
	}
}

func TestMailtrap_ErrorStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"errors":["Unauthorized"]}`))
	}))
	defer srv.Close()

	m := NewMailtrap(MailtrapOptions{APIURL: srv.URL}, srv.Client(), testutil.MakeNoopLogger())

	err := m.SendPasswordResetEmail(context.Background(), "user@example.com", "abc123")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "status 401")
	assert.Contains(t, err.Error(), "Unauthorized")
}

func TestMailtrap_ContextCanceled(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	m := NewMailtrap(MailtrapOptions{APIURL: srv.URL}, srv.Client(), testutil.MakeNoopLogger())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := m.SendVerificationEmail(ctx, "user@example.com", "abc123")
	require.ErrorIs(t, err, context.Canceled)
}

func TestLog_NeverFails(t *testing.T) {
	l := NewLog(testutil.MakeNoopLogger())

	assert.NoError(t, l.SendVerificationEmail(context.Background(), "user@example.com", "t"))
	assert.NoError(t, l.SendPasswordResetEmail(context.Background(), "user@example.com", "t"))
}
