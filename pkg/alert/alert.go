// Package alert posts operational alerts to a JSON webhook
package alert

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"
)

// RequestTimeout for webhook requests
const RequestTimeout = 10 * time.Second

// Severity ranks an alert.
type Severity string

const (
	SeverityInfo    Severity = "info"
	SeverityWarning Severity = "warning"
)

// Message is one alert.
type Message struct {
	Title    string         `json:"title"`
	Body     string         `json:"body"`
	Severity Severity       `json:"severity"`
	Data     map[string]any `json:"data,omitempty"`
	SentAt   time.Time      `json:"sent_at"`
}

// Service sends alerts to a webhook
type Service struct {
	url    string
	client *http.Client
	logger *slog.Logger
}

// NewService creates a webhook alert service
func NewService(url string, logger *slog.Logger) *Service {
	return &Service{
		url: url,
		client: &http.Client{
			Timeout: RequestTimeout,
		},
		logger: logger,
	}
}

// Send posts one alert
func (s *Service) Send(ctx context.Context, msg *Message) error {
	if msg.Title == "" {
		return errors.New("alert title is required")
	}
	if msg.Severity == "" {
		msg.Severity = SeverityInfo
	}
	if msg.SentAt.IsZero() {
		msg.SentAt = time.Now().UTC()
	}

	payload, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("failed to marshal alert: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.url, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("failed to create alert request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return fmt.Errorf("failed to send alert: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		s.logger.Error("alert webhook rejected message",
			slog.Int("status", resp.StatusCode),
			slog.String("body", string(body)),
		)
		return fmt.Errorf("alert webhook failed with status: %d", resp.StatusCode)
	}

	s.logger.Info("alert sent", slog.String("title", msg.Title), slog.String("severity", string(msg.Severity)))
	return nil
}
