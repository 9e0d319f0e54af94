package seq

import (
	"bytes"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	json "github.com/goccy/go-json"
	"github.com/klauspost/compress/gzip"

	"seqship/internal/logging"
)

const (
	ingestPath   = "api/events/raw"
	apiKeyHeader = "X-Seq-ApiKey"
)

// DeliveryError reports a non-success HTTP status from the ingestion
// endpoint. The caller owns retry policy.
type DeliveryError struct {
	StatusCode int
	URL        string
}

func (e *DeliveryError) Error() string {
	return fmt.Sprintf("seq server at %s responded with status %d", e.URL, e.StatusCode)
}

type client struct {
	endpoint   string
	apiKey     string
	useGzip    bool
	httpClient *http.Client
}

func newClient(serverURL, apiKey string, useGzip bool, timeout time.Duration) *client {
	base := serverURL
	if !strings.HasSuffix(base, "/") {
		base += "/"
	}
	return &client{
		endpoint: base + ingestPath,
		apiKey:   strings.TrimSpace(apiKey),
		useGzip:  useGzip,
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

type ingestResponse struct {
	MinimumLevelAccepted string `json:"MinimumLevelAccepted"`
}

// deliver posts one encoded batch and returns the minimum level the server
// currently accepts, or nil when the server imposes no restriction.
func (c *client) deliver(payload []byte) (*logging.Level, error) {
	body := payload
	if c.useGzip {
		var err error
		if body, err = compress(payload); err != nil {
			return nil, fmt.Errorf("failed to compress payload: %w", err)
		}
	}

	req, err := http.NewRequest(http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json; charset=utf-8")
	if c.useGzip {
		req.Header.Set("Content-Encoding", "gzip")
	}
	if c.apiKey != "" {
		req.Header.Set(apiKeyHeader, c.apiKey)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to reach %s: %w", c.endpoint, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil, &DeliveryError{StatusCode: resp.StatusCode, URL: c.endpoint}
	}

	return parseMinimumLevel(resp.Body), nil
}

// parseMinimumLevel is tolerant: a missing field, an unreadable body or
// malformed JSON all resolve to "no restriction".
func parseMinimumLevel(r io.Reader) *logging.Level {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil
	}

	var parsed ingestResponse
	if err := json.Unmarshal(data, &parsed); err != nil {
		return nil
	}
	if parsed.MinimumLevelAccepted == "" {
		return nil
	}

	level, err := logging.ParseLevel(parsed.MinimumLevelAccepted)
	if err != nil {
		return nil
	}
	return &level
}

func compress(payload []byte) ([]byte, error) {
	var buf bytes.Buffer
	zw := gzip.NewWriter(&buf)
	if _, err := zw.Write(payload); err != nil {
		return nil, err
	}
	if err := zw.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func (c *client) close() {
	c.httpClient.CloseIdleConnections()
}
