// Package capture calls the external headless-browser automation service
// that logs into the dashboard, navigates to a report, and returns a
// pixel-exact PNG or PDF of the rendered page. This side only invokes the
// endpoint and streams the binary back; readiness and rendering are the
// service's problem.
package capture

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/hdmotors/dealer-service/internal/config"
)

// Report types understood by the capture service.
const (
	ReportSales       = "sales"
	ReportCollections = "collections"
	ReportInventory   = "inventory"
)

// Result is a captured document.
type Result struct {
	ContentType string
	Body        []byte
}

// RemoteError is a non-2xx reply from the capture service. Message and Hint
// come verbatim from the service's JSON error body and are surfaced to the
// user unchanged.
type RemoteError struct {
	StatusCode int
	Message    string
	Hint       string
}

func (e *RemoteError) Error() string {
	if e.Hint != "" {
		return fmt.Sprintf("capture service: %s (%s)", e.Message, e.Hint)
	}
	return fmt.Sprintf("capture service: %s", e.Message)
}

// Client talks to the capture service.
type Client struct {
	url    string
	client *http.Client
	log    *logrus.Logger
}

// NewClient initializes a capture client. Captures render a full page
// server-side, so the timeout is generous.
func NewClient(cfg *config.Config, log *logrus.Logger) *Client {
	return &Client{
		url: cfg.CaptureURL,
		client: &http.Client{
			Timeout: 90 * time.Second,
		},
		log: log,
	}
}

// Screenshot requests a capture of the named report and returns the binary
// response as delivered (PNG or PDF per the service's Content-Type).
func (c *Client) Screenshot(ctx context.Context, reportType string) (*Result, error) {
	payload, err := json.Marshal(map[string]string{"reportType": reportType})
	if err != nil {
		return nil, fmt.Errorf("failed to encode capture request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url+"/shortcut-screenshot", bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("failed to create capture request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("capture request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read capture response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, decodeRemoteError(resp.StatusCode, body)
	}

	c.log.Debugf("Capture of %s report returned %d bytes (%s)", reportType, len(body), resp.Header.Get("Content-Type"))
	return &Result{
		ContentType: resp.Header.Get("Content-Type"),
		Body:        body,
	}, nil
}

func decodeRemoteError(status int, body []byte) error {
	var payload struct {
		Message string `json:"message"`
		Hint    string `json:"hint"`
	}
	if err := json.Unmarshal(body, &payload); err != nil || payload.Message == "" {
		payload.Message = fmt.Sprintf("unexpected status code %d", status)
	}
	return &RemoteError{StatusCode: status, Message: payload.Message, Hint: payload.Hint}
}
