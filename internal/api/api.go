package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"strings"
	"time"
)

// ============================================================
// API CLIENT - Reusable HTTP client for the auth service
// ============================================================

const maxLoggedBody = 1000

type APIClient struct {
	Timeout   time.Duration
	BaseURL   string
	secretKey string
	verbose   bool
	client    *http.Client
}

// NewAPIClient creates a new API client instance. A zero timeout means requests
// wait for the server for as long as their context allows.
func NewAPIClient(baseURL, secretKey string, timeout time.Duration) *APIClient {
	return &APIClient{
		Timeout:   timeout,
		BaseURL:   strings.TrimRight(baseURL, "/"),
		secretKey: secretKey,
		client:    &http.Client{Timeout: timeout},
	}
}

// SetVerbose toggles header and body logging.
func (c *APIClient) SetVerbose(verbose bool) {
	c.verbose = verbose
}

// IsSuccessStatusCode checks if the HTTP status code indicates success
func (c *APIClient) IsSuccessStatusCode(statusCode int) bool {
	return statusCode >= 200 && statusCode < 300
}

// URL joins the base URL and an endpoint path.
func (c *APIClient) URL(path string) string {
	if strings.HasPrefix(path, "http://") || strings.HasPrefix(path, "https://") {
		return path
	}
	return c.BaseURL + "/" + strings.TrimLeft(path, "/")
}

// SendRequest sends a JSON POST request to the API with proper headers
func (c *APIClient) SendRequest(ctx context.Context, payload interface{}, endpoint string) ([]byte, int, error) {
	jsonData, err := json.Marshal(payload)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to marshal request: %w", err)
	}

	// Frames are large data URLs, only the size is worth logging
	log.Printf("📤 POST %s (%.1fKB)", endpoint, float64(len(jsonData))/1024.0)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.URL(endpoint), bytes.NewReader(jsonData))
	if err != nil {
		return nil, 0, fmt.Errorf("failed to create request: %w", err)
	}

	return c.do(req)
}

// Get sends a GET request and returns the raw body.
func (c *APIClient) Get(ctx context.Context, endpoint string) ([]byte, int, error) {
	log.Printf("📤 GET %s", endpoint)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.URL(endpoint), nil)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to create request: %w", err)
	}

	return c.do(req)
}

func (c *APIClient) do(req *http.Request) ([]byte, int, error) {
	c.setHeaders(req)

	if c.verbose {
		log.Println("Request Headers:")
		for key, values := range req.Header {
			for _, value := range values {
				if key == "X-Secret-Key" {
					value = "***"
				}
				log.Printf("  %s: %s", key, value)
			}
		}
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, 0, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, resp.StatusCode, fmt.Errorf("failed to read response: %w", err)
	}

	if c.verbose {
		c.LogResponse(body, resp.StatusCode)
	}

	return body, resp.StatusCode, nil
}

// setHeaders sets required headers for the API request
func (c *APIClient) setHeaders(req *http.Request) {
	req.Header.Set("Accept", "application/json, text/plain, */*")
	req.Header.Set("Cache-Control", "no-cache")
	req.Header.Set("User-Agent", "checkin-kiosk/1.0")
	if req.Method == http.MethodPost {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.secretKey != "" {
		req.Header.Set("X-Secret-Key", c.secretKey)
	}
}

// ParseResponse unmarshals JSON response into provided struct
func (c *APIClient) ParseResponse(body []byte, result interface{}) error {
	if err := json.Unmarshal(body, result); err != nil {
		return fmt.Errorf("failed to parse response: %w", err)
	}
	return nil
}

// LogResponse logs the status and the raw response if it's small enough
func (c *APIClient) LogResponse(body []byte, statusCode int) {
	if c.IsSuccessStatusCode(statusCode) {
		log.Printf("✅ API response: %d - Success!", statusCode)
	} else {
		log.Printf("⚠️  API response: %d - Failed", statusCode)
	}

	if len(body) > 0 && len(body) < maxLoggedBody {
		log.Printf("📥 Raw response: %s", string(body))
	}
}
