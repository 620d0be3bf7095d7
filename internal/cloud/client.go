package cloud

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/kakuware/ics2000-core/internal/infrastructure/config"
)

// Production endpoints for the trustsmartcloud2 API.
const (
	DefaultAccountEndpoint = "https://trustsmartcloud2.com/ics2000_api/account.php"
	DefaultGatewayEndpoint = "https://trustsmartcloud2.com/ics2000_api/gateway.php"
)

// Command function values understood by the gateway. These match the vendor
// app and the Homebridge plugin.
const (
	CommandOff       = 0
	CommandOn        = 1
	CommandDim       = 2
	CommandStop      = 3
	CommandOpen      = 4
	CommandClose     = 5
	CommandColorTemp = 9
	CommandIdentify  = 99
)

// maxResponseSize caps cloud response bodies (1MB). Sync responses for large
// installs are tens of kilobytes; anything near this limit is garbage.
const maxResponseSize = 1 << 20

// Logger is the logging interface used by the Client.
type Logger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
}

// noopLogger is a logger that does nothing.
type noopLogger struct{}

func (noopLogger) Debug(string, ...any) {}
func (noopLogger) Info(string, ...any)  {}
func (noopLogger) Warn(string, ...any)  {}
func (noopLogger) Error(string, ...any) {}

// Session holds the account context returned by a successful login.
type Session struct {
	// HomeID identifies the account's home on the cloud side.
	HomeID string

	// AESKey is the hex-encoded 128-bit key used to decrypt module blobs.
	AESKey string

	// GatewayMAC is the MAC the cloud reports for the gateway. It may
	// differ from the configured MAC and takes precedence for sync calls.
	GatewayMAC string
}

// Module is one entry of a gateway.php sync response. Each module is a
// device or a scene; its human-readable metadata lives in the encrypted
// Data/Status blobs.
type Module struct {
	ID            int    `json:"-"`
	Data          string `json:"data"`
	Status        string `json:"status"`
	Device        int    `json:"-"`
	VersionStatus string `json:"version_status"`
	VersionData   string `json:"version_data"`
}

// UnmarshalJSON handles the cloud's loose typing: numeric fields arrive as
// either JSON numbers or strings depending on the gateway firmware.
func (m *Module) UnmarshalJSON(data []byte) error {
	var raw struct {
		ID            any    `json:"id"`
		Data          string `json:"data"`
		Status        string `json:"status"`
		Device        any    `json:"device"`
		VersionStatus any    `json:"version_status"`
		VersionData   any    `json:"version_data"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	m.ID = intFromAny(raw.ID)
	m.Data = raw.Data
	m.Status = raw.Status
	m.Device = intFromAny(raw.Device)
	m.VersionStatus = stringFromAny(raw.VersionStatus)
	m.VersionData = stringFromAny(raw.VersionData)
	return nil
}

// intFromAny coerces a JSON number or numeric string to an int.
// Anything else yields zero.
func intFromAny(v any) int {
	switch val := v.(type) {
	case float64:
		return int(val)
	case string:
		n, err := strconv.Atoi(strings.TrimSpace(val))
		if err != nil {
			return 0
		}
		return n
	default:
		return 0
	}
}

// stringFromAny coerces a JSON string or number to a string.
func stringFromAny(v any) string {
	switch val := v.(type) {
	case string:
		return val
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64)
	default:
		return ""
	}
}

// Client is the HTTP client for the ICS-2000 cloud service.
//
// One Client serves one account. It is safe for concurrent use; the
// underlying http.Client handles connection pooling.
type Client struct {
	httpClient *http.Client

	accountURL string
	gatewayURL string

	email    string
	password string
	mac      string

	tries  int
	sleep  time.Duration
	logger Logger
}

// New creates a cloud client from the cloud section of the configuration.
func New(cfg config.CloudConfig) *Client {
	tries := cfg.Tries
	if tries < 1 {
		tries = 1
	}
	return &Client{
		httpClient: &http.Client{Timeout: cfg.HTTPTimeout()},
		accountURL: DefaultAccountEndpoint,
		gatewayURL: DefaultGatewayEndpoint,
		email:      cfg.Email,
		password:   cfg.Password,
		mac:        cfg.MAC,
		tries:      tries,
		sleep:      cfg.CommandSleep(),
		logger:     noopLogger{},
	}
}

// SetLogger sets the logger for the client.
func (c *Client) SetLogger(logger Logger) {
	c.logger = logger
}

// SetEndpoints overrides the account and gateway endpoints.
// Used by tests to point the client at a local server.
func (c *Client) SetEndpoints(account, gateway string) {
	c.accountURL = account
	c.gatewayURL = gateway
}

// Login authenticates against account.php.
//
// The form fields mirror the Homebridge plugin exactly; the cloud rejects
// requests with a different field set. The password is sent as the
// password_hash field — the API names it that way but expects the plain
// password for this device_unique_id.
//
// Parameters:
//   - ctx: Context for cancellation and timeout
//
// Returns:
//   - *Session: Home id, gateway MAC and AES key for this account
//   - error: ErrAuth on non-2xx status, malformed JSON, or a rejected login
func (c *Client) Login(ctx context.Context) (*Session, error) {
	form := url.Values{
		"action":           {"login"},
		"email":            {c.email},
		"password_hash":    {c.password},
		"device_unique_id": {"android"},
		"platform":         {""},
		"mac":              {""},
	}

	body, err := c.postForm(ctx, c.accountURL, form)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrAuth, err)
	}

	var payload map[string]any
	if err := json.Unmarshal(body, &payload); err != nil {
		return nil, fmt.Errorf("%w: malformed login response: %w", ErrAuth, err)
	}

	// The cloud reports failures with a 2xx status and an error payload;
	// only an explicit "ok" counts as an accepted login.
	if status, _ := payload["status"].(string); status != "ok" {
		return nil, fmt.Errorf("%w: cloud rejected login (status %q)", ErrAuth, status)
	}

	session := &Session{
		HomeID:     stringFromAny(payload["home_id"]),
		AESKey:     stringFromAny(payload["aes_key"]),
		GatewayMAC: config.NormaliseMAC(stringFromAny(payload["mac"])),
	}
	if session.GatewayMAC == "" {
		session.GatewayMAC = c.mac
	}

	c.logger.Debug("login succeeded", "home_id", session.HomeID, "has_aes_key", session.AESKey != "")
	return session, nil
}

// Sync fetches the module list from gateway.php.
//
// Parameters:
//   - ctx: Context for cancellation and timeout
//   - mac: Gateway MAC to sync against; the session MAC when available,
//     otherwise the configured one
//
// Returns:
//   - []Module: The raw module list; empty (not nil error) when the cloud
//     returns an empty response
//   - error: ErrSync on network failure or an unexpected payload shape
func (c *Client) Sync(ctx context.Context, mac string) ([]Module, error) {
	if mac == "" {
		mac = c.mac
	}
	form := url.Values{
		"action":        {"sync"},
		"email":         {c.email},
		"mac":           {mac},
		"password_hash": {c.password},
	}

	body, err := c.postForm(ctx, c.gatewayURL, form)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrSync, err)
	}

	// An empty cloud response means no modules, not a failure.
	trimmed := strings.TrimSpace(string(body))
	if trimmed == "" || trimmed == "[]" {
		return []Module{}, nil
	}

	var modules []Module
	if err := json.Unmarshal(body, &modules); err != nil {
		return nil, fmt.Errorf("%w: unexpected sync payload: %w", ErrSync, err)
	}

	return modules, nil
}

// Command sends a device command through gateway.php.
//
// Commands are fire-and-forget on the gateway side, so the call is repeated
// up to the configured number of tries with a short pause in between, the
// same way the vendor app blankets RF commands.
//
// Parameters:
//   - ctx: Context for cancellation and timeout
//   - entityID: The target module id (device or scene)
//   - function: Command function (CommandOn, CommandOff, CommandDim, ...)
//   - value: Function argument (brightness level, position, 1 for triggers)
//
// Returns:
//   - error: ErrCommand when no attempt was accepted
func (c *Client) Command(ctx context.Context, entityID, function, value int) error {
	form := url.Values{
		"action":        {"command"},
		"email":         {c.email},
		"mac":           {c.mac},
		"password_hash": {c.password},
		"entity_id":     {strconv.Itoa(entityID)},
		"function":      {strconv.Itoa(function)},
		"value":         {strconv.Itoa(value)},
	}

	var lastErr error
	for attempt := 1; attempt <= c.tries; attempt++ {
		if _, err := c.postForm(ctx, c.gatewayURL, form); err == nil {
			return nil
		} else {
			lastErr = err
			c.logger.Debug("command attempt failed",
				"entity_id", entityID,
				"attempt", attempt,
				"error", err,
			)
		}

		if attempt == c.tries {
			break
		}
		select {
		case <-ctx.Done():
			return fmt.Errorf("%w: %w", ErrCommand, ctx.Err())
		case <-time.After(c.sleep):
		}
	}

	return fmt.Errorf("%w: entity %d after %d attempts: %w", ErrCommand, entityID, c.tries, lastErr)
}

// postForm issues a form-encoded POST and returns the response body.
// Non-2xx statuses are errors; bodies are capped at maxResponseSize.
func (c *Client) postForm(ctx context.Context, endpoint string, form url.Values) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return nil, fmt.Errorf("building request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close() //nolint:errcheck // Best effort close on read path

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
	if err != nil {
		return nil, fmt.Errorf("reading response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("unexpected status %d", resp.StatusCode)
	}

	return body, nil
}
