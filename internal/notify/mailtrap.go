package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"html/template"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/dtroode/account-service/internal/logger"
	"github.com/dtroode/account-service/internal/model"
)

var _ model.Notifier = (*Mailtrap)(nil)

// DefaultAPIURL is the Mailtrap transactional send endpoint.
const DefaultAPIURL = "https://send.api.mailtrap.io/api/send"

// MailtrapOptions configures the Mailtrap client.
type MailtrapOptions struct {
	APIURL      string
	APIKey      string
	FromEmail   string
	FromName    string
	FrontendURL string
	// ResetTTL is quoted in password reset emails. Zero leaves the expiry out.
	ResetTTL time.Duration
}

// Mailtrap sends account emails through the Mailtrap send API.
type Mailtrap struct {
	opts       MailtrapOptions
	httpClient *http.Client
	logger     *logger.Logger
}

func NewMailtrap(opts MailtrapOptions, httpClient *http.Client, logger *logger.Logger) *Mailtrap {
	if opts.APIURL == "" {
		opts.APIURL = DefaultAPIURL
	}
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	opts.FrontendURL = strings.TrimRight(opts.FrontendURL, "/")
	return &Mailtrap{opts: opts, httpClient: httpClient, logger: logger}
}

type address struct {
	Email string `json:"email"`
	Name  string `json:"name,omitempty"`
}

type sendRequest struct {
	From     address   `json:"from"`
	To       []address `json:"to"`
	Subject  string    `json:"subject"`
	HTML     string    `json:"html"`
	Text     string    `json:"text"`
	Category string    `json:"category"`
}

var (
	verificationHTML = template.Must(template.New("verification").Parse(`<div style="font-family: Arial, sans-serif; max-width: 600px; margin: 0 auto;">
<h2>Verify Your Email Address</h2>
<p>Thank you for registering! Please click the link below to verify your email address:</p>
<p><a href="{{.Link}}">Verify Email</a></p>
<p>If the link doesn't work, copy and paste this URL into your browser:</p>
<p>{{.Link}}</p>
</div>`))

	resetHTML = template.Must(template.New("reset").Parse(`<div style="font-family: Arial, sans-serif; max-width: 600px; margin: 0 auto;">
<h2>Password Reset Request</h2>
<p>You requested a password reset. Click the link below to reset your password:</p>
<p><a href="{{.Link}}">Reset Password</a></p>
<p>If the link doesn't work, copy and paste this URL into your browser:</p>
<p>{{.Link}}</p>
{{- with .Expiry}}
<p>This link will expire in {{.}}.</p>
{{- end}}
<p>If you didn't request this, please ignore this email.</p>
</div>`))
)

type emailData struct {
	Link   string
	Expiry string
}

func (m *Mailtrap) SendVerificationEmail(ctx context.Context, to, token string) error {
	data := emailData{Link: m.link("/verify-email", token)}
	return m.send(ctx, to, "Verify Your Email Address", "email_verification", verificationHTML, data,
		"Verify your email address: "+data.Link)
}

func (m *Mailtrap) SendPasswordResetEmail(ctx context.Context, to, token string) error {
	data := emailData{Link: m.link("/reset-password", token), Expiry: humanDuration(m.opts.ResetTTL)}
	text := "Reset your password: " + data.Link
	if data.Expiry != "" {
		text += "\nThis link will expire in " + data.Expiry + "."
	}
	return m.send(ctx, to, "Password Reset Request", "password_reset", resetHTML, data, text)
}

func (m *Mailtrap) link(path, token string) string {
	return m.opts.FrontendURL + path + "?token=" + url.QueryEscape(token)
}

func (m *Mailtrap) send(ctx context.Context, to, subject, category string, tmpl *template.Template, data emailData, text string) error {
	var html bytes.Buffer
	if err := tmpl.Execute(&html, data); err != nil {
		return fmt.Errorf("failed to render email: %w", err)
	}

	body, err := json.Marshal(sendRequest{
		From:     address{Email: m.opts.FromEmail, Name: m.opts.FromName},
		To:       []address{{Email: to}},
		Subject:  subject,
		HTML:     html.String(),
		Text:     text,
		Category: category,
	})
	if err != nil {
		return fmt.Errorf("failed to marshal email request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, m.opts.APIURL, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to create email request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+m.opts.APIKey)

	resp, err := m.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to send email request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return fmt.Errorf("mailtrap API returned status %d: %s", resp.StatusCode, strings.TrimSpace(string(msg)))
	}

	m.logger.Debug("Mailtrap: email sent",
		"category", category,
		"to", to)

	return nil
}

// humanDuration renders whole hours or minutes, e.g. "1 hour", "90 minutes".
func humanDuration(d time.Duration) string {
	d = d.Round(time.Minute)
	switch {
	case d <= 0:
		return ""
	case d%time.Hour == 0:
		return plural(int(d/time.Hour), "hour")
	default:
		return plural(int(d/time.Minute), "minute")
	}
}

func plural(n int, unit string) string {
	if n == 1 {
		return "1 " + unit
	}
	return fmt.Sprintf("%d %ss", n, unit)
}
