// Package fulfillment provides the HTTP invoker for completed-intent actions.
package fulfillment

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/parleybot/parley/pkg/domain"
)

// HTTPInvoker implements ports.FulfillmentInvoker by POSTing the request as
// JSON to the configured endpoint.
type HTTPInvoker struct {
	client *http.Client
}

// Option customizes the invoker.
type Option func(*HTTPInvoker)

// WithHTTPClient overrides the underlying HTTP client.
func WithHTTPClient(c *http.Client) Option {
	return func(i *HTTPInvoker) { i.client = c }
}

// NewHTTPInvoker creates the invoker.
func NewHTTPInvoker(opts ...Option) *HTTPInvoker {
	inv := &HTTPInvoker{client: http.DefaultClient}
	for _, opt := range opts {
		opt(inv)
	}
	return inv
}

// wireResponse is the endpoint's reply envelope. Status "success"
// (case-insensitive) marks the action done; anything else is a failure with
// an optional reason.
type wireResponse struct {
	Status       string `json:"status"`
	StatusReason string `json:"status_reason,omitempty"`
	Message      string `json:"message,omitempty"`
	Action       string `json:"action,omitempty"`
}

// Invoke POSTs the request and classifies the response. Transport errors and
// context deadlines come back as a failed result with the error alongside so
// the engine can count the attempt.
func (i *HTTPInvoker) Invoke(ctx context.Context, url string, req domain.FulfillmentRequest) (domain.FulfillmentResult, error) {
	body, err := json.Marshal(req)
	if err != nil {
		return failure(err.Error()), fmt.Errorf("marshal fulfillment request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return failure(err.Error()), fmt.Errorf("build fulfillment request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := i.client.Do(httpReq)
	if err != nil {
		return failure(err.Error()), fmt.Errorf("fulfillment request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		reason := fmt.Sprintf("endpoint returned status %d", resp.StatusCode)
		return failure(reason), fmt.Errorf("fulfillment: %s", reason)
	}

	var wire wireResponse
	if err := json.NewDecoder(resp.Body).Decode(&wire); err != nil {
		return failure("invalid response body"), fmt.Errorf("decode fulfillment response: %w", err)
	}

	result := domain.FulfillmentResult{
		Success: strings.EqualFold(wire.Status, "success"),
		Reason:  wire.StatusReason,
		Message: wire.Message,
	}
	if wire.Action != "" {
		action, err := domain.ParseAction(wire.Action)
		if err != nil {
			return failure(err.Error()), fmt.Errorf("fulfillment response: %w", err)
		}
		result.Action = action
	}
	if !result.Success && result.Reason == "" {
		result.Reason = fmt.Sprintf("status %q", wire.Status)
	}
	return result, nil
}

func failure(reason string) domain.FulfillmentResult {
	return domain.FulfillmentResult{Success: false, Reason: reason}
}
