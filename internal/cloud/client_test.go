package cloud

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/kakuware/ics2000-core/internal/infrastructure/config"
)

func testClient(accountURL, gatewayURL string) *Client {
	c := New(config.CloudConfig{
		Email:    "user@example.com",
		Password: "hunter2",
		MAC:      "AABBCCDDEEFF",
		Tries:    3,
		Sleep:    1, // milliseconds; keep tests fast
		Timeout:  5,
	})
	c.SetEndpoints(accountURL, gatewayURL)
	return c
}

func TestLogin(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseForm(); err != nil {
			t.Fatalf("parse form: %v", err)
		}

		// Field set must match the Homebridge dialect exactly.
		wantFields := map[string]string{
			"action":           "login",
			"email":            "user@example.com",
			"password_hash":    "hunter2",
			"device_unique_id": "android",
			"platform":         "",
			"mac":              "",
		}
		for field, want := range wantFields {
			if got := r.PostFormValue(field); got != want {
				t.Errorf("form field %s = %q, want %q", field, got, want)
			}
		}

		w.Write([]byte(`{"status":"ok","home_id":"12345","aes_key":"000102030405060708090a0b0c0d0e0f","mac":"00:11:22:33:44:55"}`)) //nolint:errcheck
	}))
	defer srv.Close()

	c := testClient(srv.URL, srv.URL)
	session, err := c.Login(context.Background())
	if err != nil {
		t.Fatalf("Login() error = %v", err)
	}

	if session.HomeID != "12345" {
		t.Errorf("HomeID = %q, want %q", session.HomeID, "12345")
	}
	if session.AESKey != "000102030405060708090a0b0c0d0e0f" {
		t.Errorf("AESKey = %q", session.AESKey)
	}
	if session.GatewayMAC != "001122334455" {
		t.Errorf("GatewayMAC = %q, want normalised %q", session.GatewayMAC, "001122334455")
	}
}

func TestLogin_BadCredentials(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer srv.Close()

	c := testClient(srv.URL, srv.URL)
	_, err := c.Login(context.Background())
	if !errors.Is(err, ErrAuth) {
		t.Errorf("Login() error = %v, want ErrAuth", err)
	}
}

func TestLogin_MalformedJSON(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Write([]byte("<html>not json</html>")) //nolint:errcheck
	}))
	defer srv.Close()

	c := testClient(srv.URL, srv.URL)
	_, err := c.Login(context.Background())
	if !errors.Is(err, ErrAuth) {
		t.Errorf("Login() error = %v, want ErrAuth", err)
	}
}

func TestLogin_RejectedStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Write([]byte(`{"status":"error","message":"wrong password"}`)) //nolint:errcheck
	}))
	defer srv.Close()

	c := testClient(srv.URL, srv.URL)
	_, err := c.Login(context.Background())
	if !errors.Is(err, ErrAuth) {
		t.Errorf("Login() error = %v, want ErrAuth", err)
	}
}

func TestLogin_MissingStatusIsRejected(t *testing.T) {
	// A 2xx payload without a status field is not an accepted login;
	// treating it as one would yield a session with no AES key.
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Write([]byte(`{"error":"maintenance"}`)) //nolint:errcheck
	}))
	defer srv.Close()

	c := testClient(srv.URL, srv.URL)
	_, err := c.Login(context.Background())
	if !errors.Is(err, ErrAuth) {
		t.Errorf("Login() error = %v, want ErrAuth", err)
	}
}

func TestSync(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.PostFormValue("action"); got != "sync" {
			t.Errorf("action = %q, want sync", got)
		}
		if got := r.PostFormValue("mac"); got != "001122334455" {
			t.Errorf("mac = %q, want session mac", got)
		}
		// Firmware mixes string and numeric ids in the same response.
		w.Write([]byte(`[
			{"id": 101, "data": "AAAA", "device": 2, "version_status": "3"},
			{"id": "102", "data": "BBBB", "device": "4", "version_status": 0}
		]`)) //nolint:errcheck
	}))
	defer srv.Close()

	c := testClient(srv.URL, srv.URL)
	modules, err := c.Sync(context.Background(), "001122334455")
	if err != nil {
		t.Fatalf("Sync() error = %v", err)
	}

	if len(modules) != 2 {
		t.Fatalf("len(modules) = %d, want 2", len(modules))
	}
	if modules[0].ID != 101 || modules[1].ID != 102 {
		t.Errorf("module ids = %d, %d, want 101, 102", modules[0].ID, modules[1].ID)
	}
	if modules[1].Device != 4 {
		t.Errorf("modules[1].Device = %d, want 4", modules[1].Device)
	}
	if modules[0].VersionStatus != "3" {
		t.Errorf("modules[0].VersionStatus = %q, want %q", modules[0].VersionStatus, "3")
	}
}

func TestSync_EmptyResponse(t *testing.T) {
	for _, body := range []string{"", "[]", "  \n"} {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			w.Write([]byte(body)) //nolint:errcheck
		}))

		c := testClient(srv.URL, srv.URL)
		modules, err := c.Sync(context.Background(), "")
		if err != nil {
			t.Errorf("Sync() with body %q error = %v, want nil", body, err)
		}
		if len(modules) != 0 {
			t.Errorf("Sync() with body %q returned %d modules, want 0", body, len(modules))
		}
		srv.Close()
	}
}

func TestSync_NetworkFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
	srv.Close() // refuse connections

	c := testClient(srv.URL, srv.URL)
	_, err := c.Sync(context.Background(), "")
	if !errors.Is(err, ErrSync) {
		t.Errorf("Sync() error = %v, want ErrSync", err)
	}
}

func TestSync_UnexpectedPayload(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Write([]byte(`{"not":"a list"}`)) //nolint:errcheck
	}))
	defer srv.Close()

	c := testClient(srv.URL, srv.URL)
	_, err := c.Sync(context.Background(), "")
	if !errors.Is(err, ErrSync) {
		t.Errorf("Sync() error = %v, want ErrSync", err)
	}
}

func TestSync_FallsBackToConfiguredMAC(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.PostFormValue("mac"); got != "AABBCCDDEEFF" {
			t.Errorf("mac = %q, want configured mac", got)
		}
		w.Write([]byte(`[]`)) //nolint:errcheck
	}))
	defer srv.Close()

	c := testClient(srv.URL, srv.URL)
	if _, err := c.Sync(context.Background(), ""); err != nil {
		t.Fatalf("Sync() error = %v", err)
	}
}

func TestCommand(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		if got := r.PostFormValue("entity_id"); got != "7" {
			t.Errorf("entity_id = %q, want 7", got)
		}
		if got := r.PostFormValue("function"); got != "1" {
			t.Errorf("function = %q, want 1", got)
		}
	}))
	defer srv.Close()

	c := testClient(srv.URL, srv.URL)
	if err := c.Command(context.Background(), 7, CommandOn, 1); err != nil {
		t.Fatalf("Command() error = %v", err)
	}
	if calls.Load() != 1 {
		t.Errorf("command calls = %d, want 1 (no retry on success)", calls.Load())
	}
}

func TestCommand_RetriesThenSucceeds(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		if calls.Add(1) < 3 {
			w.WriteHeader(http.StatusBadGateway)
		}
	}))
	defer srv.Close()

	c := testClient(srv.URL, srv.URL)
	if err := c.Command(context.Background(), 7, CommandOff, 0); err != nil {
		t.Fatalf("Command() error = %v", err)
	}
	if calls.Load() != 3 {
		t.Errorf("command calls = %d, want 3", calls.Load())
	}
}

func TestCommand_ExhaustsTries(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	c := testClient(srv.URL, srv.URL)
	err := c.Command(context.Background(), 7, CommandIdentify, 1)
	if !errors.Is(err, ErrCommand) {
		t.Fatalf("Command() error = %v, want ErrCommand", err)
	}
	if calls.Load() != 3 {
		t.Errorf("command calls = %d, want 3 (configured tries)", calls.Load())
	}
}

func TestCommand_ContextCancelled(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	c := testClient(srv.URL, srv.URL)
	c.sleep = time.Second // cancellation must win over the retry pause

	err := c.Command(ctx, 7, CommandOn, 1)
	if !errors.Is(err, ErrCommand) {
		t.Errorf("Command() error = %v, want ErrCommand", err)
	}
}
