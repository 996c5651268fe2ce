package client

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/dmitrijs2005/keydesk/internal/client/models"
	"github.com/dmitrijs2005/keydesk/internal/common"
	"github.com/dmitrijs2005/keydesk/internal/logging"
	"github.com/dmitrijs2005/keydesk/internal/netx"
	"github.com/google/uuid"
)

const defaultTimeout = 10 * time.Second

// HTTPClient talks to the keydesk REST backend. It is stateless with respect
// to credentials and safe for concurrent use.
type HTTPClient struct {
	baseURL *url.URL
	http    *http.Client
	logger  logging.Logger
}

var (
	_ AdminClient  = (*HTTPClient)(nil)
	_ PortalClient = (*HTTPClient)(nil)
)

// NewHTTPClient builds a client for the backend at baseURL. A nil hc gets a
// default client with a 10s timeout; a nil logger discards.
func NewHTTPClient(baseURL string, hc *http.Client, logger logging.Logger) (*HTTPClient, error) {
	u, err := url.Parse(strings.TrimRight(baseURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("parse server url: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("server url %q must be http or https", baseURL)
	}
	if hc == nil {
		hc = &http.Client{Timeout: defaultTimeout}
	}
	if logger == nil {
		logger = logging.Discard()
	}
	return &HTTPClient{baseURL: u, http: hc, logger: logger}, nil
}

// call is the single request path: it encodes the body, attaches the request
// id and bearer token, maps transport and status failures onto the error
// taxonomy and decodes out on success.
func (c *HTTPClient) call(ctx context.Context, op, method, path string, query url.Values, token string, body, out any) error {
	u := c.baseURL.JoinPath(path)
	if len(query) > 0 {
		u.RawQuery = query.Encode()
	}

	req, err := netx.NewJSONRequest(ctx, method, u.String(), body)
	if err != nil {
		return err
	}
	reqID := uuid.NewString()
	req.Header.Set(common.RequestIDHeaderName, reqID)
	if token != "" {
		req.Header.Set(common.AuthorizationHeaderName, common.BearerPrefix+token)
	}

	log := c.logger.With("op", op, "request_id", reqID)
	started := time.Now()

	resp, err := c.http.Do(req)
	if err != nil {
		if errors.Is(err, context.Canceled) {
			return err
		}
		log.Warn(ctx, "request failed", "error", err)
		return fmt.Errorf("%s: %w: %v", op, ErrUnavailable, err)
	}

	data, err := netx.ReadBody(resp)
	if err != nil {
		return fmt.Errorf("%s: read response: %w", op, err)
	}
	log.Debug(ctx, "request done", "method", method, "path", path, "status", resp.StatusCode, "elapsed", time.Since(started))

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return statusError(op, resp.StatusCode, detailOf(data), token != "")
	}

	if out == nil || len(data) == 0 {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("%s: decode response: %w", op, err)
	}
	return nil
}

// detailOf pulls a human-readable message out of an error body. The backend
// sends {"detail": "..."}; request validation failures send a list of
// {"msg": "..."} objects instead.
func detailOf(data []byte) string {
	var body struct {
		Detail json.RawMessage `json:"detail"`
	}
	if err := json.Unmarshal(data, &body); err != nil || len(body.Detail) == 0 {
		return ""
	}

	var s string
	if err := json.Unmarshal(body.Detail, &s); err == nil {
		return s
	}

	var items []struct {
		Msg string `json:"msg"`
	}
	if err := json.Unmarshal(body.Detail, &items); err == nil {
		msgs := make([]string, 0, len(items))
		for _, it := range items {
			if it.Msg != "" {
				msgs = append(msgs, it.Msg)
			}
		}
		return strings.Join(msgs, "; ")
	}
	return ""
}

func (c *HTTPClient) Login(ctx context.Context, username, password string) (models.TokenResponse, error) {
	var tr models.TokenResponse
	err := c.call(ctx, OpLogin, http.MethodPost, "/api/login", nil, "",
		models.LoginRequest{Username: username, Password: password}, &tr)
	if err != nil {
		return models.TokenResponse{}, err
	}
	if tr.AccessToken == "" {
		return models.TokenResponse{}, fmt.Errorf("%s: empty access token", OpLogin)
	}
	return tr, nil
}

func (c *HTTPClient) ListKeys(ctx context.Context, token string) ([]models.APIKey, error) {
	var keys []models.APIKey
	if err := c.call(ctx, OpListKeys, http.MethodGet, "/api/keys", nil, token, nil, &keys); err != nil {
		return nil, err
	}
	return keys, nil
}

func (c *HTTPClient) CreateKey(ctx context.Context, token string, r models.CreateKeyRequest) (models.APIKey, error) {
	var k models.APIKey
	if err := c.call(ctx, OpCreateKey, http.MethodPost, "/api/keys", nil, token, r, &k); err != nil {
		return models.APIKey{}, err
	}
	return k, nil
}

func (c *HTTPClient) UpdateKey(ctx context.Context, token string, id int64, upd models.KeyUpdate) (models.APIKey, error) {
	var k models.APIKey
	path := "/api/keys/" + strconv.FormatInt(id, 10)
	if err := c.call(ctx, OpUpdateKey, http.MethodPut, path, nil, token, upd, &k); err != nil {
		return models.APIKey{}, err
	}
	return k, nil
}

func (c *HTTPClient) DeleteKey(ctx context.Context, token string, id int64) error {
	path := "/api/keys/" + strconv.FormatInt(id, 10)
	return c.call(ctx, OpDeleteKey, http.MethodDelete, path, nil, token, nil, nil)
}

func (c *HTTPClient) Usage(ctx context.Context, token string, q models.UsageQuery) ([]models.UsagePoint, error) {
	query := url.Values{}
	if q.Days > 0 {
		query.Set("days", strconv.Itoa(q.Days))
	}
	if q.UserID != "" {
		query.Set("user_id", q.UserID)
	}

	var points []models.UsagePoint
	if err := c.call(ctx, OpUsage, http.MethodGet, "/api/usage", query, token, nil, &points); err != nil {
		return nil, err
	}
	return points, nil
}

// Ping checks GET /health. Any failure, including an unhealthy status, is
// reported as ErrUnavailable.
func (c *HTTPClient) Ping(ctx context.Context) error {
	var h models.Health
	if err := c.call(ctx, OpHealth, http.MethodGet, "/health", nil, "", nil, &h); err != nil {
		if errors.Is(err, ErrUnavailable) {
			return err
		}
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	if h.Status != "healthy" {
		return fmt.Errorf("%w: status %q", ErrUnavailable, h.Status)
	}
	return nil
}

func (c *HTTPClient) RequestCode(ctx context.Context, email string) (models.CodeSent, error) {
	var sent models.CodeSent
	err := c.call(ctx, OpRequestCode, http.MethodPost, "/auth/request-code", nil, "",
		models.CodeRequest{Email: email}, &sent)
	if err != nil {
		return models.CodeSent{}, err
	}
	return sent, nil
}

func (c *HTTPClient) VerifyCode(ctx context.Context, email, code string) (models.IssuedKey, error) {
	var issued models.IssuedKey
	err := c.call(ctx, OpVerifyCode, http.MethodPost, "/auth/verify-code", nil, "",
		models.VerifyRequest{Email: email, Code: code}, &issued)
	if err != nil {
		return models.IssuedKey{}, err
	}
	if issued.APIKey == "" {
		return models.IssuedKey{}, fmt.Errorf("%s: empty api key", OpVerifyCode)
	}
	return issued, nil
}

func (c *HTTPClient) MyKeys(ctx context.Context, email string) ([]models.APIKey, error) {
	var keys []models.APIKey
	query := url.Values{"email": []string{email}}
	if err := c.call(ctx, OpMyKeys, http.MethodGet, "/auth/my-keys", query, "", nil, &keys); err != nil {
		return nil, err
	}
	return keys, nil
}
