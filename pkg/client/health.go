package client

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"
)

// HealthStatus is the server health probe result.
type HealthStatus struct {
	Status    string    `json:"status"`
	Timestamp time.Time `json:"timestamp"`
	Data      struct {
		Service       string `json:"service"`
		UptimeSeconds int64  `json:"uptime_seconds"`
	} `json:"data"`
	Error string `json:"error"`
}

// Healthy reports whether the probe came back healthy.
func (h *HealthStatus) Healthy() bool {
	return h.Status == "healthy"
}

// Health probes the server health endpoint. An unhealthy server answers
// 503 with the same body shape, so that case decodes into a result
// rather than an error; only transport failures and unexpected
// responses return an error.
func (c *Client) Health(ctx context.Context) (*HealthStatus, error) {
	var status HealthStatus
	err := c.get(ctx, "/health", &status)
	if err == nil {
		return &status, nil
	}

	var apiErr *APIError
	if errors.As(err, &apiErr) && apiErr.StatusCode == http.StatusServiceUnavailable {
		if json.Unmarshal(apiErr.Body, &status) == nil && status.Status != "" {
			return &status, nil
		}
	}
	return nil, err
}
