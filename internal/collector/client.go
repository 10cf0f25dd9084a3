// internal/collector/client.go
package collector

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

const (
	heartbeatPath = "/api/node/qrCodeReaderHeartbeat"
	recordPath    = "/api/node/recordQRCode"

	emptyJSON = "{}"
)

// ErrTransport marks failures where no HTTP status was received.
var ErrTransport = errors.New("collector: transport")

// Client talks to the remote collector.
// Stateless: one request per call, no retries, no queueing.
type Client struct {
	baseURL    string
	nodeUUID   string
	readerUUID string
	http       *http.Client
}

type Config struct {
	BaseURL    string
	NodeUUID   string
	ReaderUUID string
	Timeout    time.Duration
}

func New(cfg Config) (*Client, error) {
	if cfg.BaseURL == "" {
		return nil, errors.New("collector: base url required")
	}
	if cfg.NodeUUID == "" || cfg.ReaderUUID == "" {
		return nil, errors.New("collector: node and reader uuid required")
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 10 * time.Second
	}

	return &Client{
		baseURL:    strings.TrimRight(cfg.BaseURL, "/"),
		nodeUUID:   cfg.NodeUUID,
		readerUUID: cfg.ReaderUUID,
		http:       &http.Client{Timeout: cfg.Timeout},
	}, nil
}

// Heartbeat announces liveness. Non-empty annotations ride along as errorMessages.
// The returned status is 0 when the request did not complete.
func (c *Client) Heartbeat(ctx context.Context, annotations string) (int, error) {
	u := c.baseURL + heartbeatPath + c.identity()
	if annotations != "" {
		u += "&errorMessages=" + Escape(annotations)
	}
	return c.put(ctx, u)
}

// RecordCode submits one scanned payload.
func (c *Client) RecordCode(ctx context.Context, data string) (int, error) {
	u := c.baseURL + recordPath + c.identity() + "&data=" + Escape(data)
	return c.put(ctx, u)
}

// Success reports whether code is 2xx.
func Success(code int) bool {
	return code >= 200 && code < 300
}

func (c *Client) identity() string {
	return "?nodeUUID=" + Escape(c.nodeUUID) + "&qrReaderUUID=" + Escape(c.readerUUID)
}

func (c *Client) put(ctx context.Context, url string) (int, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPut, url, strings.NewReader(emptyJSON))
	if err != nil {
		return 0, fmt.Errorf("collector: build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return 0, fmt.Errorf("%w: %v", ErrTransport, err)
	}
	defer resp.Body.Close()

	// drain so the connection can be reused
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))

	if !Success(resp.StatusCode) {
		return resp.StatusCode, fmt.Errorf("collector: status %d", resp.StatusCode)
	}
	return resp.StatusCode, nil
}
