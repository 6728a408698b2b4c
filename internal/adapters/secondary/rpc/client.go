package rpc

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync/atomic"
	"time"

	"github.com/lorrc/performance-dashboard/internal/core/domain"
	apperrors "github.com/lorrc/performance-dashboard/internal/core/errors"
	"github.com/lorrc/performance-dashboard/internal/core/ports"
)

const (
	dashboardDataPath    = "/performance/dashboard/data"
	dashboardSummaryPath = "/performance/dashboard/summary"
	callKWPath           = "/web/dataset/call_kw"
	versionPath          = "/web/webclient/version_info"

	dashboardModel = "performance.dashboard"
)

// Config holds the connection settings for the metrics backend.
type Config struct {
	BaseURL       string
	SessionCookie string // sent as session_id when set
	Timeout       time.Duration
}

// Client talks JSON-RPC 2.0 to the metrics backend.
type Client struct {
	baseURL string
	session string
	http    *http.Client
	nextID  atomic.Int64
}

var (
	_ ports.MetricsSource = (*Client)(nil)
	_ ports.RecordLookup  = (*Client)(nil)
)

// NewClient creates a client for the backend at cfg.BaseURL.
func NewClient(cfg Config) (*Client, error) {
	base := strings.TrimRight(cfg.BaseURL, "/")
	if base == "" {
		return nil, fmt.Errorf("rpc: base URL is required")
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}

	return &Client{
		baseURL: base,
		session: cfg.SessionCookie,
		http:    &http.Client{Timeout: timeout},
	}, nil
}

type request struct {
	JSONRPC string `json:"jsonrpc"`
	Method  string `json:"method"`
	ID      int64  `json:"id"`
	Params  any    `json:"params"`
}

type response struct {
	Result json.RawMessage `json:"result"`
	Error  *Error          `json:"error"`
}

// Error is a JSON-RPC error returned by the backend.
type Error struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
	Data    struct {
		Name    string `json:"name"`
		Message string `json:"message"`
	} `json:"data"`
}

func (e *Error) Error() string {
	if e.Data.Message != "" {
		return fmt.Sprintf("rpc error %d: %s: %s", e.Code, e.Message, e.Data.Message)
	}
	return fmt.Sprintf("rpc error %d: %s", e.Code, e.Message)
}

// call posts params to path and returns the raw result.
func (c *Client) call(ctx context.Context, path string, params any) (json.RawMessage, error) {
	if params == nil {
		params = map[string]any{}
	}
	body, err := json.Marshal(request{
		JSONRPC: "2.0",
		Method:  "call",
		ID:      c.nextID.Add(1),
		Params:  params,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Accept", "application/json")
	if c.session != "" {
		httpReq.AddCookie(&http.Cookie{Name: "session_id", Value: c.session})
	}

	resp, err := c.http.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", apperrors.ErrUpstream, path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		bodyBytes, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("%w: %s returned status %d: %s", apperrors.ErrUpstream, path, resp.StatusCode, string(bodyBytes))
	}

	var out response
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("%w: %s: failed to decode response: %v", apperrors.ErrMalformedSnapshot, path, err)
	}
	if out.Error != nil {
		return nil, fmt.Errorf("%w: %s: %w", apperrors.ErrUpstream, path, out.Error)
	}
	return out.Result, nil
}

func (c *Client) callKW(ctx context.Context, model, method string, args []any, kwargs map[string]any) (json.RawMessage, error) {
	if args == nil {
		args = []any{}
	}
	if kwargs == nil {
		kwargs = map[string]any{}
	}
	return c.call(ctx, callKWPath, map[string]any{
		"model":  model,
		"method": method,
		"args":   args,
		"kwargs": kwargs,
	})
}

// FetchDashboard calls the filtered endpoint when filters are given and the
// plain one otherwise.
func (c *Client) FetchDashboard(ctx context.Context, filters *domain.Filters) (*domain.Snapshot, error) {
	params := map[string]any{}
	if filters != nil {
		params["filters"] = filters.Params()
	}

	raw, err := c.call(ctx, dashboardDataPath, params)
	if err != nil {
		return nil, err
	}
	return domain.DecodeSnapshot(raw)
}

// FetchSummary returns the summary counters.
func (c *Client) FetchSummary(ctx context.Context) (*domain.Summary, error) {
	raw, err := c.call(ctx, dashboardSummaryPath, nil)
	if err != nil {
		return nil, err
	}

	var summary domain.Summary
	if err := json.Unmarshal(raw, &summary); err != nil {
		return nil, fmt.Errorf("%w: summary: %v", apperrors.ErrMalformedSnapshot, err)
	}
	return &summary, nil
}

// FetchPeriodOptions returns the reporting periods the backend knows.
func (c *Client) FetchPeriodOptions(ctx context.Context) ([]domain.PeriodOption, error) {
	raw, err := c.callKW(ctx, dashboardModel, "get_period_options", nil, nil)
	if err != nil {
		return nil, err
	}

	var periods []domain.PeriodOption
	if err := json.Unmarshal(raw, &periods); err != nil {
		return nil, fmt.Errorf("%w: period options: %v", apperrors.ErrMalformedSnapshot, err)
	}
	return periods, nil
}

// SearchActive reads field of every active record of model.
func (c *Client) SearchActive(ctx context.Context, model, field string) ([]domain.Record, error) {
	domainFilter := []any{[]any{"active", "=", true}}
	raw, err := c.callKW(ctx, model, "search_read", []any{domainFilter, []string{field}}, nil)
	if err != nil {
		return nil, err
	}

	var rows []map[string]json.RawMessage
	if err := json.Unmarshal(raw, &rows); err != nil {
		return nil, fmt.Errorf("%w: %s records: %v", apperrors.ErrMalformedSnapshot, model, err)
	}

	records := make([]domain.Record, 0, len(rows))
	for _, row := range rows {
		var id int64
		if err := json.Unmarshal(row["id"], &id); err != nil {
			continue
		}
		var name domain.Text
		_ = json.Unmarshal(row[field], &name)
		records = append(records, domain.Record{ID: id, Name: name.String()})
	}
	return records, nil
}

// Ping checks that the backend answers JSON-RPC calls.
func (c *Client) Ping(ctx context.Context) error {
	_, err := c.call(ctx, versionPath, nil)
	return err
}
