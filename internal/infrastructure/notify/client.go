// Package notify delivers terminal job outcomes from the worker to the API's
// completion webhook. The webhook is idempotent, so delivery retries on
// transient failures are safe.
package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/kirillkom/docstream/internal/core/domain"
	"github.com/kirillkom/docstream/internal/infrastructure/resilience"
)

type Client struct {
	webhookURL string
	httpClient *http.Client
	executor   *resilience.Executor
}

func New(webhookURL string, executor *resilience.Executor) *Client {
	return &Client{
		webhookURL: webhookURL,
		httpClient: &http.Client{Timeout: 30 * time.Second},
		executor:   executor,
	}
}

func (c *Client) NotifyCompletion(ctx context.Context, req domain.CompletionRequest) error {
	payload, err := json.Marshal(req)
	if err != nil {
		return fmt.Errorf("marshal completion payload: %w", err)
	}

	call := func(callCtx context.Context) error {
		return c.post(callCtx, payload)
	}

	if c.executor != nil {
		err = c.executor.Execute(ctx, "webhook.notify", call, classifyWebhookError)
	} else {
		err = call(ctx)
	}
	if err != nil {
		return fmt.Errorf("deliver completion webhook: %w", err)
	}
	return nil
}

func (c *Client) post(ctx context.Context, payload []byte) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.webhookURL, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("create webhook request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("webhook request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		if msg := strings.TrimSpace(string(raw)); msg != "" {
			return &statusError{statusCode: resp.StatusCode, message: fmt.Sprintf("webhook status: %s: %s", resp.Status, msg)}
		}
		return &statusError{statusCode: resp.StatusCode, message: fmt.Sprintf("webhook status: %s", resp.Status)}
	}
	return nil
}

type statusError struct {
	statusCode int
	message    string
}

func (e *statusError) Error() string {
	return e.message
}

func classifyWebhookError(err error) resilience.ErrorClassification {
	if err == nil {
		return resilience.ErrorClassification{}
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return resilience.ErrorClassification{
			Retryable:     false,
			RecordFailure: false,
		}
	}
	if resilience.IsCircuitOpen(err) {
		return resilience.ErrorClassification{
			Retryable:     true,
			RecordFailure: true,
		}
	}

	var netErr net.Error
	if errors.As(err, &netErr) {
		return resilience.ErrorClassification{
			Retryable:     true,
			RecordFailure: true,
		}
	}

	var status *statusError
	if errors.As(err, &status) {
		// 5xx is worth a retry: the webhook either fully commits or fully
		// fails, and its persistence layer is idempotent. 4xx means the
		// payload itself is bad and retrying cannot help.
		return resilience.ErrorClassification{
			Retryable:     status.statusCode >= 500,
			RecordFailure: true,
		}
	}

	return resilience.ErrorClassification{
		Retryable:     true,
		RecordFailure: true,
	}
}
