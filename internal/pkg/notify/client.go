package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
)

const defaultTimeout = 5 * time.Second

// Client sends best-effort enrollment notifications to the messaging
// service. Callers must treat every error as non-fatal.
type Client struct {
	baseURL string
	token   string
	http    *http.Client
}

// EnrollmentCreatedPayload describes a newly admitted enrollment.
type EnrollmentCreatedPayload struct {
	StudioID     uuid.UUID         `json:"studio_id"`
	ProgramID    uuid.UUID         `json:"program_id"`
	ProgramTitle string            `json:"program_title"`
	EnrollmentID uuid.UUID         `json:"enrollment_id"`
	UserID       uuid.UUID         `json:"user_id"`
	Snapshot     map[string]string `json:"profile_snapshot,omitempty"`
}

// NewClient creates a notification client.
func NewClient(baseURL, token string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = defaultTimeout
	}

	transport := &http.Transport{
		Proxy: http.ProxyFromEnvironment,
		DialContext: (&net.Dialer{
			Timeout:   5 * time.Second,
			KeepAlive: 30 * time.Second,
		}).DialContext,
		MaxIdleConns:        100,
		MaxIdleConnsPerHost: 10,
		IdleConnTimeout:     90 * time.Second,
	}

	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		token:   token,
		http: &http.Client{
			Timeout:   timeout,
			Transport: transport,
		},
	}
}

// EnrollmentCreated posts an enrollment-created notification.
func (c *Client) EnrollmentCreated(ctx context.Context, p EnrollmentCreatedPayload) error {
	if c == nil || c.http == nil {
		return fmt.Errorf("notify request error: client is nil")
	}
	if strings.TrimSpace(c.baseURL) == "" {
		return fmt.Errorf("notify config error: base_url is empty")
	}

	payload, err := json.Marshal(p)
	if err != nil {
		return fmt.Errorf("notify request error: %w", err)
	}

	url := c.baseURL + "/internal/notifications/enrollment-created"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewBuffer(payload))
	if err != nil {
		return fmt.Errorf("notify request error: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("notify request error: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusOK || resp.StatusCode == http.StatusAccepted {
		return nil
	}

	body, readErr := io.ReadAll(resp.Body)
	if readErr != nil {
		return fmt.Errorf("notify http error: status=%d body=<failed to read body: %v>", resp.StatusCode, readErr)
	}

	return fmt.Errorf("notify http error: status=%d body=%s", resp.StatusCode, string(body))
}
