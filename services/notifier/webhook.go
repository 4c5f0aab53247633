package notifier

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"sjmori/vacancywatcher/helpers"
	"sjmori/vacancywatcher/internal/checker"
	cerr "sjmori/vacancywatcher/pkg/errors"
	"sjmori/vacancywatcher/services/cache"
)

// WebhookNotifier delivers alerts by POSTing JSON to a configured endpoint.
// A cache entry keyed by the record suppresses duplicate alerts for the
// suppression window.
type WebhookNotifier struct {
	endpoint   string
	client     *http.Client
	cache      cache.CacheService
	suppress   time.Duration
	maxRetries int
	logger     helpers.LoggerInterface
}

// NewWebhookNotifier creates a new webhook notifier
func NewWebhookNotifier(endpoint string, cacheSvc cache.CacheService, suppress time.Duration, maxRetries int, logger helpers.LoggerInterface) *WebhookNotifier {
	return &WebhookNotifier{
		endpoint: endpoint,
		client: &http.Client{
			Timeout: 10 * time.Second,
		},
		cache:      cacheSvc,
		suppress:   suppress,
		maxRetries: maxRetries,
		logger:     logger,
	}
}

func (n *WebhookNotifier) suppressKey(record checker.AvailabilityRecord) string {
	return "notify:" + record.Key()
}

// Notify delivers an alert for a single availability record
func (n *WebhookNotifier) Notify(ctx context.Context, record checker.AvailabilityRecord) error {
	if n.endpoint == "" {
		return nil
	}

	key := n.suppressKey(record)
	if n.cache != nil {
		if _, err := n.cache.Get(key); err == nil {
			n.logger.LogInfo("Alert suppressed for %s", record.Key())
			return nil
		}
	}

	body, err := json.Marshal(record)
	if err != nil {
		return cerr.NewNotification("webhook", "Failed to encode alert payload", err)
	}

	if err := n.post(ctx, body); err != nil {
		return err
	}

	if n.cache != nil {
		if err := n.cache.Set(key, []byte("1"), n.suppress); err != nil {
			n.logger.LogError("webhook", fmt.Errorf("failed to store suppression key: %w", err))
		}
	}

	n.logger.LogInfo("Alert delivered: %s %s %s", record.Accommodation, record.RoomType, record.Date)
	return nil
}

// NotifyBatch delivers alerts for a batch of records
// Delivery continues past per-record failures; the first error is returned
func (n *WebhookNotifier) NotifyBatch(ctx context.Context, records []checker.AvailabilityRecord) error {
	var firstErr error
	for _, record := range records {
		if err := n.Notify(ctx, record); err != nil {
			n.logger.LogError("webhook", err)
			if firstErr == nil {
				firstErr = err
			}
		}
	}
	return firstErr
}

// post sends the payload with retries and exponential backoff
func (n *WebhookNotifier) post(ctx context.Context, body []byte) error {
	var lastErr error

	backoff := 1 * time.Second
	for attempt := 1; attempt <= n.maxRetries; attempt++ {
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, n.endpoint, bytes.NewReader(body))
		if err != nil {
			return cerr.NewNotification("webhook", "Failed to create request", err)
		}
		req.Header.Set("Content-Type", "application/json")

		resp, err := n.client.Do(req)
		if err == nil {
			io.Copy(io.Discard, resp.Body)
			resp.Body.Close()

			if resp.StatusCode >= 200 && resp.StatusCode < 300 {
				return nil
			}
			lastErr = fmt.Errorf("endpoint returned status %d", resp.StatusCode)
		} else {
			lastErr = err
		}

		if attempt < n.maxRetries {
			n.logger.LogInfo("Webhook attempt %d/%d failed, retrying in %s", attempt, n.maxRetries, backoff)
			select {
			case <-ctx.Done():
				return cerr.NewNotification("webhook", "Delivery cancelled", ctx.Err())
			case <-time.After(backoff):
			}
			backoff *= 2
		}
	}

	return cerr.NewNotification("webhook", fmt.Sprintf("Delivery failed after %d attempts", n.maxRetries), lastErr)
}
