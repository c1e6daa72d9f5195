// Package registry is the HTTP client for the client record-keeping API.
package registry

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"
)

const (
	clientsPath  = "/clients/"
	maxBodyBytes = 1 << 20
)

// Client talks to the record-keeping API. Every call takes an explicit
// Caller so requests are attributable without ambient session state.
type Client struct {
	BaseURL    string
	HTTPClient *http.Client
	Logger     *zap.Logger
}

// NewClient returns a Client for baseURL. A zero timeout disables the
// per-request deadline.
func NewClient(baseURL string, timeout time.Duration, logger *zap.Logger) *Client {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Client{
		BaseURL:    strings.TrimSuffix(baseURL, "/"),
		HTTPClient: &http.Client{Timeout: timeout},
		Logger:     logger,
	}
}

// List fetches the full client collection in server order.
func (c *Client) List(ctx context.Context, caller Caller) ([]ClientRecord, error) {
	resp, err := c.doRequest(ctx, http.MethodGet, clientsPath, nil, caller, nil)
	if err != nil {
		return nil, &FetchFailure{Err: err}
	}
	defer resp.Body.Close()

	if !isSuccess(resp.StatusCode) {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, maxBodyBytes))
		c.Logger.Warn("list clients rejected", zap.Int("status", resp.StatusCode), zap.String("user", caller.UserID))
		return nil, &FetchFailure{StatusCode: resp.StatusCode}
	}

	var records []ClientRecord
	if err := json.NewDecoder(io.LimitReader(resp.Body, maxBodyBytes)).Decode(&records); err != nil {
		return nil, &FetchFailure{StatusCode: resp.StatusCode, Err: fmt.Errorf("decode client list: %w", err)}
	}
	if records == nil {
		records = []ClientRecord{}
	}
	c.Logger.Debug("client list fetched", zap.Int("count", len(records)), zap.String("user", caller.UserID))
	return records, nil
}

// Create submits a draft and returns the record as stored by the server.
func (c *Client) Create(ctx context.Context, caller Caller, draft Draft) (ClientRecord, error) {
	payload, err := json.Marshal(draft)
	if err != nil {
		return ClientRecord{}, &CreateFailure{Err: fmt.Errorf("encode draft: %w", err)}
	}
	headers := map[string]string{"Content-Type": "application/json"}
	resp, err := c.doRequest(ctx, http.MethodPost, clientsPath, bytes.NewReader(payload), caller, headers)
	if err != nil {
		return ClientRecord{}, &CreateFailure{Err: fmt.Errorf("%s: %w", MsgCreateFailed, err)}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return ClientRecord{}, &CreateFailure{StatusCode: resp.StatusCode, Err: fmt.Errorf("read response: %w", err)}
	}

	if !isSuccess(resp.StatusCode) {
		failure := parseCreateError(resp.StatusCode, body)
		c.Logger.Warn("create client rejected",
			zap.Int("status", resp.StatusCode),
			zap.String("user", caller.UserID),
			zap.String("message", failure.Error()))
		return ClientRecord{}, failure
	}

	var rec ClientRecord
	if err := json.Unmarshal(body, &rec); err != nil {
		return ClientRecord{}, &CreateFailure{StatusCode: resp.StatusCode, Err: fmt.Errorf("decode client: %w", err)}
	}
	c.Logger.Info("client created", zap.String("id", string(rec.ID)), zap.String("user", caller.UserID))
	return rec, nil
}

// doRequest sends one request carrying the caller's identity header.
func (c *Client) doRequest(
	ctx context.Context,
	method, path string,
	body io.Reader,
	caller Caller,
	headers map[string]string,
) (*http.Response, error) {
	if strings.TrimSpace(caller.UserID) == "" {
		return nil, ErrAnonymousCaller
	}

	req, err := http.NewRequestWithContext(ctx, method, c.BaseURL+path, body)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set(HeaderUserID, caller.UserID)
	req.Header.Set("Accept", "application/json")
	for key, value := range headers {
		req.Header.Set(key, value)
	}

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("send request: %w", err)
	}
	return resp, nil
}

// parseCreateError reads {"detail": ...} from an error body. A body that is
// not JSON surfaces the decoding error itself; JSON without a usable detail
// falls back to the generic message.
func parseCreateError(status int, body []byte) *CreateFailure {
	var payload any
	if err := json.Unmarshal(body, &payload); err != nil {
		return &CreateFailure{StatusCode: status, Err: fmt.Errorf("decode error response: %w", err)}
	}
	obj, ok := payload.(map[string]any)
	if !ok {
		return &CreateFailure{StatusCode: status}
	}
	return &CreateFailure{StatusCode: status, Detail: detailText(obj["detail"])}
}

// detailText renders a detail value as display text. Empty and falsy values
// yield "", structured values (e.g. validation lists) are kept as JSON.
func detailText(v any) string {
	switch d := v.(type) {
	case nil:
		return ""
	case string:
		return d
	case bool:
		if !d {
			return ""
		}
	case float64:
		if d == 0 {
			return ""
		}
	}
	raw, err := json.Marshal(v)
	if err != nil {
		return ""
	}
	return string(raw)
}

func isSuccess(status int) bool {
	return status >= 200 && status < 300
}
