package mail

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

const mailgunAPIBase = "https://api.mailgun.net/v3"

// MailgunSender delivers email through the Mailgun HTTP API.
type MailgunSender struct {
	domain  string
	apiKey  string
	from    string
	baseURL string
	client  *http.Client
}

// MailgunOption customizes a MailgunSender.
type MailgunOption func(*MailgunSender)

// WithMailgunBaseURL overrides the API base URL. Used in tests.
func WithMailgunBaseURL(u string) MailgunOption {
	return func(s *MailgunSender) { s.baseURL = u }
}

// WithMailgunTimeout sets the HTTP client timeout.
func WithMailgunTimeout(d time.Duration) MailgunOption {
	return func(s *MailgunSender) { s.client.Timeout = d }
}

// NewMailgunSender creates a Mailgun-backed Sender for the given domain.
func NewMailgunSender(domain, apiKey, from string, opts ...MailgunOption) *MailgunSender {
	s := &MailgunSender{
		domain:  domain,
		apiKey:  apiKey,
		from:    from,
		baseURL: mailgunAPIBase,
		client:  &http.Client{Timeout: 15 * time.Second},
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Send posts the message to Mailgun's messages endpoint.
func (s *MailgunSender) Send(ctx context.Context, msg Message) error {
	form := url.Values{}
	form.Set("from", s.from)
	form.Set("to", msg.To)
	for _, cc := range msg.CC {
		form.Add("cc", cc)
	}
	form.Set("subject", msg.Subject)
	form.Set("text", msg.Body)

	endpoint := fmt.Sprintf("%s/%s/messages", s.baseURL, s.domain)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return fmt.Errorf("build mailgun request: %w", err)
	}
	req.SetBasicAuth("api", s.apiKey)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := s.client.Do(req)
	if err != nil {
		return fmt.Errorf("mailgun request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return fmt.Errorf("mailgun returned %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}
	return nil
}
