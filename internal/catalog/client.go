// Package catalog is a typed client for the remote products REST API.
package catalog

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"

	"github.com/m3rciful/catalogbot/core/buildinfo"
	"github.com/m3rciful/catalogbot/core/logger"
	"github.com/m3rciful/catalogbot/core/metrics"
)

const (
	defaultTimeout = 10 * time.Second
	maxErrorBody   = 512
)

// Options configures a Client.
type Options struct {
	// BaseURL is the product collection URL, e.g. http://api:8000/products/.
	BaseURL    string
	Timeout    time.Duration
	HTTPClient *http.Client
	UserAgent  string
}

// Client issues CRUD calls against the product resource. It never retries.
type Client struct {
	base      string
	http      *http.Client
	userAgent string
}

// New validates opts and returns a client.
func New(opts Options) (*Client, error) {
	base := strings.TrimSpace(opts.BaseURL)
	if base == "" {
		return nil, errors.New("catalog: base URL is required")
	}
	if !strings.HasPrefix(base, "http://") && !strings.HasPrefix(base, "https://") {
		return nil, errors.Errorf("catalog: base URL %q must be http(s)", base)
	}
	if !strings.HasSuffix(base, "/") {
		base += "/"
	}
	hc := opts.HTTPClient
	if hc == nil {
		timeout := opts.Timeout
		if timeout <= 0 {
			timeout = defaultTimeout
		}
		hc = &http.Client{Timeout: timeout}
	}
	ua := opts.UserAgent
	if ua == "" {
		ua = buildinfo.UserAgent("catalogbot")
	}
	return &Client{base: base, http: hc, userAgent: ua}, nil
}

// BaseURL returns the normalized collection URL.
func (c *Client) BaseURL() string { return c.base }

// ListProducts returns every product.
func (c *Client) ListProducts(ctx context.Context) ([]Product, error) {
	var out []Product
	if err := c.do(ctx, "list", http.MethodGet, c.base, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// GetProduct fetches one product by id.
func (c *Client) GetProduct(ctx context.Context, id int64) (Product, error) {
	var out Product
	err := c.do(ctx, "get", http.MethodGet, c.itemURL(id), nil, &out)
	return out, err
}

// CreateProduct posts in and returns the created product.
func (c *Client) CreateProduct(ctx context.Context, in ProductInput) (Product, error) {
	var out Product
	err := c.do(ctx, "create", http.MethodPost, c.base, in, &out)
	return out, err
}

// UpdateProduct replaces product id with in.
func (c *Client) UpdateProduct(ctx context.Context, id int64, in ProductInput) (Product, error) {
	var out Product
	err := c.do(ctx, "update", http.MethodPut, c.itemURL(id), in, &out)
	return out, err
}

// DeleteProduct removes product id.
func (c *Client) DeleteProduct(ctx context.Context, id int64) error {
	return c.do(ctx, "delete", http.MethodDelete, c.itemURL(id), nil, nil)
}

func (c *Client) itemURL(id int64) string {
	return c.base + strconv.FormatInt(id, 10)
}

func (c *Client) do(ctx context.Context, op, method, url string, body, out any) (err error) {
	requestID := uuid.NewString()
	start := time.Now()
	defer func() {
		took := time.Since(start)
		metrics.ObserveCatalogRequest(op, outcome(err), took)
		level := slog.LevelDebug
		attrs := []slog.Attr{
			slog.String("op", op),
			slog.String("method", method),
			slog.String("url", url),
			slog.String("request_id", requestID),
			slog.String("outcome", outcome(err)),
			slog.Duration("duration", took),
		}
		if err != nil && !IsNotFound(err) {
			level = slog.LevelWarn
			attrs = append(attrs, slog.String("err", logger.SanitizeLimit(err.Error(), 256)))
		}
		logger.LogEvent(ctx, logger.Catalog, level, "catalog.request", attrs...)
	}()

	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return errors.Wrapf(err, "%s: encode request", op)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, url, reader)
	if err != nil {
		return errors.Wrapf(err, "%s: build request", op)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("X-Request-ID", requestID)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return errors.Wrapf(err, "%s: request failed", op)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		_, _ = io.Copy(io.Discard, resp.Body)
		return ErrNotFound
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return &StatusError{Op: op, Status: resp.StatusCode, Body: strings.TrimSpace(string(raw))}
	}

	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return errors.Wrapf(err, "%s: decode response", op)
	}
	return nil
}

func outcome(err error) string {
	switch {
	case err == nil:
		return "ok"
	case IsNotFound(err):
		return "not_found"
	default:
		return "fail"
	}
}
