package extract

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"
)

// Config for the extraction-service client.
type Config struct {
	BaseURL string
	Timeout time.Duration
}

// Client calls the external table-extraction service over HTTP. The service
// owns all PDF geometry work; this client just ships a path and decodes the
// raw tables.
type Client struct {
	cfg        Config
	httpClient *http.Client
	log        *slog.Logger
}

func NewClient(cfg Config, logger *slog.Logger) *Client {
	if cfg.Timeout <= 0 {
		cfg.Timeout = 60 * time.Second
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Client{
		cfg:        cfg,
		httpClient: &http.Client{Timeout: cfg.Timeout},
		log:        logger,
	}
}

func (c *Client) ExtractTables(ctx context.Context, pdfPath string) ([]RawTable, error) {
	start := time.Now()
	c.log.Info("extract.request.start", "pdf_path", pdfPath)

	body, err := json.Marshal(map[string]string{"pdf_path": pdfPath})
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}
	endpoint := strings.TrimRight(c.cfg.BaseURL, "/") + "/extract"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.log.Error("extract.request.http_error", "error", err,
			"elapsed_ms", time.Since(start).Milliseconds())
		return nil, fmt.Errorf("extraction service: %w", err)
	}
	defer func() {
		if cerr := resp.Body.Close(); cerr != nil {
			c.log.Warn("extract.response.close_error", "error", cerr)
		}
	}()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		raw, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("extraction service status %d: %s", resp.StatusCode, string(raw))
	}

	var out struct {
		Tables []RawTable `json:"tables"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("decode extraction response: %w", err)
	}

	c.log.Info("extract.request.ok",
		"tables", len(out.Tables),
		"elapsed_ms", time.Since(start).Milliseconds())
	return out.Tables, nil
}
