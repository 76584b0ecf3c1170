package notification

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

var _ WebhookService = (*webhookService)(nil)

type webhookService struct {
	client *http.Client
}

func NewWebhookService(timeout time.Duration) WebhookService {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &webhookService{
		client: &http.Client{Timeout: timeout},
	}
}

// Send POSTs data as JSON. Any non-2xx status is an error.
func (s *webhookService) Send(ctx context.Context, url string, data map[string]any) error {
	body, err := json.Marshal(data)
	if err != nil {
		return fmt.Errorf("webhook: marshal: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("webhook: create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return fmt.Errorf("webhook: send: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		respBody, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("webhook: unexpected status %d: %s", resp.StatusCode, string(respBody))
	}
	return nil
}
