package mailer

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v4"
	"go.uber.org/zap"
)

// HTTPConfig configures the JSON API provider.
type HTTPConfig struct {
	URL    string
	APIKey string
	From   string

	Client          *http.Client
	MaxRetries      uint64
	InitialInterval time.Duration
}

// HTTP sends mail through a provider that accepts a JSON POST.
type HTTP struct {
	cfg    HTTPConfig
	logger *zap.Logger
}

func NewHTTP(cfg HTTPConfig, logger *zap.Logger) *HTTP {
	if cfg.Client == nil {
		cfg.Client = &http.Client{Timeout: 30 * time.Second}
	}
	if cfg.InitialInterval <= 0 {
		cfg.InitialInterval = 500 * time.Millisecond
	}
	return &HTTP{cfg: cfg, logger: logger}
}

type httpAttachment struct {
	Filename    string `json:"filename"`
	ContentType string `json:"contentType"`
	Content     string `json:"content"`
}

type httpPayload struct {
	From        string            `json:"from"`
	To          string            `json:"to"`
	Subject     string            `json:"subject"`
	Text        string            `json:"text"`
	Summary     map[string]string `json:"summary,omitempty"`
	Attachments []httpAttachment  `json:"attachments,omitempty"`
}

// Send posts the message, retrying transport errors, 429 and 5xx responses.
// Other rejections are returned at once with the provider's message.
func (h *HTTP) Send(ctx context.Context, msg Message) error {
	payload := httpPayload{
		From:    h.cfg.From,
		To:      msg.To,
		Subject: msg.Subject,
		Text:    msg.Text,
		Summary: msg.Summary,
	}
	for _, a := range msg.Attachments {
		payload.Attachments = append(payload.Attachments, httpAttachment{
			Filename:    a.Filename,
			ContentType: a.ContentType,
			Content:     base64.StdEncoding.EncodeToString(a.Data),
		})
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("encode mail payload: %w", err)
	}

	policy := backoff.NewExponentialBackOff()
	policy.InitialInterval = h.cfg.InitialInterval
	policy.MaxElapsedTime = 0
	var b backoff.BackOff = policy
	b = backoff.WithMaxRetries(b, h.cfg.MaxRetries)
	b = backoff.WithContext(b, ctx)

	err = backoff.RetryNotify(
		func() error { return h.post(ctx, body) },
		b,
		func(err error, next time.Duration) {
			h.logger.Warn("mail provider request failed, retrying",
				zap.Error(err),
				zap.Duration("next_attempt_in", next))
		},
	)
	if err == nil {
		return nil
	}
	var de *DeliveryError
	if errors.As(err, &de) {
		return de
	}
	return &DeliveryError{Provider: "http", Err: err}
}

func (h *HTTP) post(ctx context.Context, body []byte) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, h.cfg.URL, bytes.NewReader(body))
	if err != nil {
		return backoff.Permanent(fmt.Errorf("build mail request: %w", err))
	}
	req.Header.Set("Content-Type", "application/json")
	if h.cfg.APIKey != "" {
		req.Header.Set("Authorization", "Bearer "+h.cfg.APIKey)
	}

	resp, err := h.cfg.Client.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return backoff.Permanent(err)
		}
		return err
	}
	defer resp.Body.Close()

	raw, _ := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return nil
	}

	de := &DeliveryError{
		Provider: "http",
		Message:  providerMessage(raw),
		Err:      fmt.Errorf("provider responded %d", resp.StatusCode),
	}
	if resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500 {
		return de
	}
	return backoff.Permanent(de)
}

// maxProviderMessage caps plain text provider bodies, in characters.
const maxProviderMessage = 300

// providerMessage extracts a human readable reason from a provider response.
func providerMessage(raw []byte) string {
	var body struct {
		Message string `json:"message"`
		Error   any    `json:"error"`
	}
	if err := json.Unmarshal(raw, &body); err == nil {
		if body.Message != "" {
			return body.Message
		}
		switch v := body.Error.(type) {
		case string:
			return v
		case map[string]any:
			if m, ok := v["message"].(string); ok {
				return m
			}
		}
	}
	text := strings.TrimSpace(string(raw))
	if strings.HasPrefix(text, "<") {
		return ""
	}
	if runes := []rune(text); len(runes) > maxProviderMessage {
		text = string(runes[:maxProviderMessage])
	}
	return text
}
