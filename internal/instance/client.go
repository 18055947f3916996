// pattern: Imperative Shell
package instance

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// HealthStatus is the body of GET /api/health.
type HealthStatus struct {
	Status      string    `json:"status"`
	Workspace   string    `json:"workspace"`
	Projects    int       `json:"projects"`
	ConfigFiles int       `json:"config_files"`
	GeneratedAt time.Time `json:"generated_at"`
	LastError   string    `json:"last_error,omitempty"`
}

// Client is a thin HTTP client for communicating with a running watcher.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// NewClient creates a Client targeting the given base URL.
func NewClient(baseURL string) *Client {
	return &Client{
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: 10 * time.Second},
	}
}

// Health fetches the watcher's status summary.
func (c *Client) Health() (HealthStatus, error) {
	body, err := c.do(http.MethodGet, "/api/health")
	if err != nil {
		return HealthStatus{}, err
	}
	var status HealthStatus
	if err := json.Unmarshal(body, &status); err != nil {
		return HealthStatus{}, fmt.Errorf("failed to decode health response: %w", err)
	}
	return status, nil
}

// Graph fetches the latest inferred graph as raw JSON.
func (c *Client) Graph() ([]byte, error) {
	return c.do(http.MethodGet, "/api/graph")
}

// Refresh asks the watcher to drop its cache and re-infer.
func (c *Client) Refresh() ([]byte, error) {
	return c.do(http.MethodPost, "/api/refresh")
}

func (c *Client) do(method, path string) ([]byte, error) {
	req, err := http.NewRequest(method, c.baseURL+path, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to tsgraph: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("tsgraph returned status %d: %s", resp.StatusCode, extractErrorMessage(body))
	}

	return body, nil
}

// extractErrorMessage attempts to extract the error message from a JSON response body.
// If the body is not valid JSON or doesn't have an "error" field, returns the raw body string.
func extractErrorMessage(body []byte) string {
	var errResp struct {
		Error string `json:"error"`
	}
	if err := json.Unmarshal(body, &errResp); err == nil && errResp.Error != "" {
		return errResp.Error
	}
	return string(body)
}
