package daily

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/calldeck/backend/internal/domain"
	"github.com/calldeck/backend/internal/platform/apierr"
	"github.com/calldeck/backend/internal/platform/envutil"
	"github.com/calldeck/backend/internal/platform/logger"
)

// Client talks to the remote rooms API. Every call carries the bearer
// credential, is bounded by the configured timeout, and is never retried;
// a failure comes back as a typed *apierr.Error (504 on timeout, 502 on
// anything else upstream) so callers cannot mistake it for success.
type Client interface {
	GetRoom(ctx context.Context, name string) (*domain.Room, error)
	GetRooms(ctx context.Context, query url.Values) ([]domain.Room, error)
	CreateRoom(ctx context.Context, body map[string]interface{}) (*domain.Room, error)
	ModifyRoom(ctx context.Context, name string, body map[string]interface{}) (*domain.Room, error)
	DeleteRoom(ctx context.Context, name string) (*domain.DeletedRoom, error)
}

type Config struct {
	Token   string
	BaseURL string
	Timeout time.Duration
}

func ConfigFromEnv() Config {
	return Config{
		Token:   strings.TrimSpace(os.Getenv("DAILY_API_KEY")),
		BaseURL: envutil.Str("DAILY_API_URL", "https://api.daily.co/v1"),
		Timeout: time.Duration(envutil.Int("DAILY_TIMEOUT_SECONDS", 10)) * time.Second,
	}
}

func NewFromEnv(log *logger.Logger) Client {
	return New(log, ConfigFromEnv())
}

func New(log *logger.Logger, cfg Config) Client {
	clientLog := log.With("client", "DailyClient")
	if cfg.Token == "" {
		// Deliberately not fatal: you may want to run without a key, in
		// which case every remote call fails with a clear error.
		clientLog.Warn("no rooms API key configured, all remote calls will fail")
	}
	cfg.BaseURL = strings.TrimRight(cfg.BaseURL, "/")
	if cfg.Timeout <= 0 {
		cfg.Timeout = 10 * time.Second
	}
	return &client{
		log:        clientLog,
		cfg:        cfg,
		httpClient: &http.Client{Timeout: cfg.Timeout},
	}
}

type client struct {
	log        *logger.Logger
	cfg        Config
	httpClient *http.Client
}

func (c *client) GetRoom(ctx context.Context, name string) (*domain.Room, error) {
	return call[domain.Room](c, ctx, http.MethodGet, "/rooms/"+url.PathEscape(name), nil, nil)
}

func (c *client) GetRooms(ctx context.Context, query url.Values) ([]domain.Room, error) {
	list, err := call[domain.RoomList](c, ctx, http.MethodGet, "/rooms", query, nil)
	if err != nil {
		return nil, err
	}
	return list.Data, nil
}

func (c *client) CreateRoom(ctx context.Context, body map[string]interface{}) (*domain.Room, error) {
	return call[domain.Room](c, ctx, http.MethodPost, "/rooms", nil, body)
}

func (c *client) ModifyRoom(ctx context.Context, name string, body map[string]interface{}) (*domain.Room, error) {
	return call[domain.Room](c, ctx, http.MethodPost, "/rooms/"+url.PathEscape(name), nil, body)
}

func (c *client) DeleteRoom(ctx context.Context, name string) (*domain.DeletedRoom, error) {
	return call[domain.DeletedRoom](c, ctx, http.MethodDelete, "/rooms/"+url.PathEscape(name), nil, nil)
}

// upstreamMessage is the remote API's error body shape; info is the detail
// worth relaying to our own clients.
type upstreamMessage struct {
	Error string `json:"error"`
	Info  string `json:"info"`
}

func call[T any](c *client, ctx context.Context, method, path string, query url.Values, body map[string]interface{}) (*T, error) {
	endpoint := c.cfg.BaseURL + path
	if len(query) > 0 {
		endpoint += "?" + query.Encode()
	}

	var reqBody io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("daily: encode request: %w", err)
		}
		reqBody = bytes.NewReader(raw)
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, reqBody)
	if err != nil {
		return nil, fmt.Errorf("daily: build request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.cfg.Token)
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		status := http.StatusBadGateway
		if isTimeout(err) {
			status = http.StatusGatewayTimeout
		}
		c.log.Error("rooms API call failed",
			"method", method,
			"path", path,
			"error", err.Error(),
		)
		return nil, apierr.Upstream(status, fmt.Errorf("rooms API unreachable: %w", err))
	}

	raw, readErr := io.ReadAll(resp.Body)
	_ = resp.Body.Close()
	if readErr != nil {
		return nil, apierr.Upstream(http.StatusBadGateway, fmt.Errorf("rooms API read: %w", readErr))
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		msg := upstreamErrorMessage(raw)
		c.log.Error("rooms API returned error",
			"method", method,
			"path", path,
			"status", resp.StatusCode,
			"message", msg,
		)
		return nil, apierr.Upstream(http.StatusBadGateway,
			fmt.Errorf("rooms API %d: %s", resp.StatusCode, msg))
	}

	var out T
	if len(raw) == 0 {
		return &out, nil
	}
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, apierr.Upstream(http.StatusBadGateway, fmt.Errorf("rooms API decode: %w", err))
	}
	return &out, nil
}

func upstreamErrorMessage(raw []byte) string {
	var um upstreamMessage
	if json.Unmarshal(raw, &um) == nil {
		if um.Info != "" {
			return um.Info
		}
		if um.Error != "" {
			return um.Error
		}
	}
	msg := strings.TrimSpace(string(raw))
	if msg == "" {
		msg = "<empty body>"
	}
	if len(msg) > 2000 {
		msg = msg[:2000] + "..."
	}
	return msg
}

func isTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr) && netErr.Timeout()
}
