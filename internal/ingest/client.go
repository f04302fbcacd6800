package ingest

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/DevalPrime/Meta-Ads-Manager/internal/models"
	"github.com/DevalPrime/Meta-Ads-Manager/internal/telemetry"
	"github.com/DevalPrime/Meta-Ads-Manager/internal/utils"
)

type HTTPClient interface {
	Do(req *http.Request) (*http.Response, error)
}

func NewHTTPClient(timeout time.Duration) HTTPClient {
	return &http.Client{Timeout: timeout}
}

var (
	ErrNoBaseURL     = errors.New("ingest: backend url is required")
	ErrBackendStatus = errors.New("ingest: backend returned non-2xx")
)

// StatusError carries the status and a body excerpt of a failed call.
type StatusError struct {
	Code int
	Body string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("ingest: backend returned %d: %s", e.Code, e.Body)
}

func (e *StatusError) Is(target error) bool { return target == ErrBackendStatus }

func retryable(code int) bool {
	return code == http.StatusTooManyRequests || code >= 500
}

type Options struct {
	BaseURL    string
	HTTP       HTTPClient
	Logger     *slog.Logger
	Metrics    *telemetry.Collectors
	Retries    int
	RetryDelay time.Duration
}

// Client talks to the companion ads backend.
type Client struct {
	base    string
	c       HTTPClient
	log     *slog.Logger
	tel     *telemetry.Collectors
	backoff utils.Backoff
}

func NewClient(o Options) (*Client, error) {
	base := strings.TrimRight(strings.TrimSpace(o.BaseURL), "/")
	if base == "" {
		return nil, ErrNoBaseURL
	}
	if _, err := url.Parse(base); err != nil {
		return nil, fmt.Errorf("ingest: parse backend url: %w", err)
	}
	c := o.HTTP
	if c == nil {
		c = NewHTTPClient(15 * time.Second)
	}
	log := o.Logger
	if log == nil {
		log = slog.Default()
	}
	delay := o.RetryDelay
	if delay <= 0 {
		delay = 100 * time.Millisecond
	}
	return &Client{
		base:    base,
		c:       c,
		log:     log,
		tel:     o.Metrics,
		backoff: utils.NewBackoff(delay, o.Retries),
	}, nil
}

func (c *Client) FetchCampaigns(ctx context.Context) ([]models.Campaign, error) {
	var resp []campaignWire
	if err := c.getJSON(ctx, "/campaigns", nil, &resp); err != nil {
		return nil, err
	}
	out := make([]models.Campaign, 0, len(resp))
	for _, w := range resp {
		out = append(out, w.model())
	}
	return out, nil
}

func (c *Client) FetchAdSets(ctx context.Context) ([]models.AdSet, error) {
	var resp []adSetWire
	if err := c.getJSON(ctx, "/adsets", nil, &resp); err != nil {
		return nil, err
	}
	out := make([]models.AdSet, 0, len(resp))
	for _, w := range resp {
		out = append(out, w.model())
	}
	return out, nil
}

// FetchInsights loads ad-set insights. datePreset is passed through to the
// backend when set (e.g. "today", "last_7d").
func (c *Client) FetchInsights(ctx context.Context, datePreset string) ([]models.Insight, error) {
	var q url.Values
	if datePreset != "" {
		q = url.Values{"date_preset": []string{datePreset}}
	}
	var resp []insightWire
	if err := c.getJSON(ctx, "/adsets/insights", q, &resp); err != nil {
		return nil, err
	}
	out := make([]models.Insight, 0, len(resp))
	for _, w := range resp {
		out = append(out, w.model())
	}
	return out, nil
}

// SetStatus asks the backend to move a campaign or ad set to status. The
// response body is ignored beyond success or failure.
func (c *Client) SetStatus(ctx context.Context, kind models.Kind, id string, status models.Status) error {
	var coll string
	switch kind {
	case models.KindCampaign:
		coll = "campaigns"
	case models.KindAdSet:
		coll = "adsets"
	default:
		return fmt.Errorf("ingest: unknown kind %q", kind)
	}
	if id == "" {
		return errors.New("ingest: empty id")
	}
	body, err := json.Marshal(statusBody{Status: status.Wire()})
	if err != nil {
		return fmt.Errorf("ingest: encode status: %w", err)
	}
	path := "/" + coll + "/" + url.PathEscape(id) + "/status"
	return c.do(ctx, http.MethodPost, path, nil, body, nil)
}

func (c *Client) getJSON(ctx context.Context, path string, q url.Values, dst any) error {
	return c.do(ctx, http.MethodGet, path, q, nil, dst)
}

func (c *Client) do(ctx context.Context, method, path string, q url.Values, body []byte, dst any) error {
	u := c.base + path
	if len(q) > 0 {
		u += "?" + q.Encode()
	}
	start := time.Now()
	err := c.backoff.Do(ctx, func(attempt int) error {
		if attempt > 0 {
			c.log.Warn("backend retry", slog.String("method", method), slog.String("path", path), slog.Int("attempt", attempt))
		}
		var rd io.Reader
		if body != nil {
			rd = bytes.NewReader(body)
		}
		req, err := http.NewRequestWithContext(ctx, method, u, rd)
		if err != nil {
			return utils.Permanent(fmt.Errorf("ingest: build request: %w", err))
		}
		req.Header.Set("Accept", "application/json")
		if body != nil {
			req.Header.Set("Content-Type", "application/json")
		}
		resp, err := c.c.Do(req)
		if err != nil {
			if ctx.Err() != nil {
				return utils.Permanent(fmt.Errorf("ingest: %s %s: %w", method, path, err))
			}
			return fmt.Errorf("ingest: %s %s: %w", method, path, err)
		}
		defer resp.Body.Close()
		if resp.StatusCode < 200 || resp.StatusCode >= 300 {
			b, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
			serr := &StatusError{Code: resp.StatusCode, Body: strings.TrimSpace(string(b))}
			if retryable(resp.StatusCode) {
				return serr
			}
			return utils.Permanent(serr)
		}
		if dst == nil {
			_, _ = io.Copy(io.Discard, resp.Body)
			return nil
		}
		if err := json.NewDecoder(resp.Body).Decode(dst); err != nil {
			return utils.Permanent(fmt.Errorf("ingest: decode %s: %w", path, err))
		}
		return nil
	})
	c.tel.ObserveBackend(method+" "+endpointLabel(path), start, err)
	return err
}

// endpointLabel collapses ids so metric labels stay bounded.
func endpointLabel(path string) string {
	parts := strings.Split(strings.Trim(path, "/"), "/")
	if len(parts) == 3 && parts[2] == "status" {
		return "/" + parts[0] + "/{id}/status"
	}
	return path
}
