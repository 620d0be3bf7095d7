package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/kakuware/ics2000-core/internal/device"
	"github.com/kakuware/ics2000-core/internal/hub"
	"github.com/kakuware/ics2000-core/internal/infrastructure/config"
	"github.com/kakuware/ics2000-core/internal/infrastructure/logging"
	"github.com/kakuware/ics2000-core/internal/service"
)

// fakeHub serves a fixed cache and implements both the api.Hub and
// service.Hub interfaces.
type fakeHub struct {
	devices map[int]device.Device
	scenes  map[int]device.Scene

	reloads   int
	refreshes int
	ranScenes []int
}

func newFakeHub() *fakeHub {
	return &fakeHub{
		devices: map[int]device.Device{
			1: {ID: 1, Name: "Woonkamer Lamp", Type: device.TypeDimmer, Dimmable: true, On: true, Brightness: 80},
			2: {ID: 2, Name: "Tuin Stekker", Type: device.TypeSwitch},
		},
		scenes: map[int]device.Scene{
			10: {ID: 10, Name: "Avond"},
		},
	}
}

func (f *fakeHub) Devices() []device.Device {
	out := make([]device.Device, 0, len(f.devices))
	for id := 1; id <= len(f.devices); id++ {
		out = append(out, f.devices[id])
	}
	return out
}

func (f *fakeHub) Device(id int) (*device.Device, error) {
	d, ok := f.devices[id]
	if !ok {
		return nil, fmt.Errorf("%w: %d", device.ErrDeviceNotFound, id)
	}
	return d.Copy(), nil
}

func (f *fakeHub) Scenes() []device.Scene {
	out := make([]device.Scene, 0, len(f.scenes))
	for _, s := range f.scenes {
		out = append(out, s)
	}
	return out
}

func (f *fakeHub) Scene(id int) (*device.Scene, error) {
	s, ok := f.scenes[id]
	if !ok {
		return nil, fmt.Errorf("%w: %d", device.ErrSceneNotFound, id)
	}
	return &s, nil
}

func (f *fakeHub) Stats() hub.Stats {
	return hub.Stats{Devices: len(f.devices), Scenes: len(f.scenes), RawModules: 3, LastRefresh: time.Now()}
}

func (f *fakeHub) Reload(context.Context) error     { f.reloads++; return nil }
func (f *fakeHub) Refresh(context.Context) error    { f.refreshes++; return nil }
func (f *fakeHub) ResetState(context.Context) error { return nil }

func (f *fakeHub) RunScene(_ context.Context, id int) error {
	if _, ok := f.scenes[id]; !ok {
		return fmt.Errorf("%w: scene %d", device.ErrSceneNotFound, id)
	}
	f.ranScenes = append(f.ranScenes, id)
	return nil
}

func (f *fakeHub) Identify(_ context.Context, id int) error {
	if _, ok := f.devices[id]; !ok {
		return fmt.Errorf("%w: %d", device.ErrDeviceNotFound, id)
	}
	return nil
}

func newTestServer(t *testing.T, showScenes bool) (*httptest.Server, *fakeHub) {
	t.Helper()

	fake := newFakeHub()
	srv, err := New(Deps{
		Config:     config.APIConfig{Host: "127.0.0.1", Port: 9100},
		Devices:    config.DevicesConfig{ShowScenes: showScenes},
		Logger:     logging.Default(),
		Hub:        fake,
		Dispatcher: service.New(fake),
		Version:    "test",
	})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	ts := httptest.NewServer(srv.buildRouter())
	t.Cleanup(ts.Close)
	return ts, fake
}

func get(t *testing.T, url string) (*http.Response, map[string]any) {
	t.Helper()
	resp, err := http.Get(url) //nolint:gosec // Test server URL
	if err != nil {
		t.Fatalf("GET %s: %v", url, err)
	}
	t.Cleanup(func() { resp.Body.Close() }) //nolint:errcheck

	var body map[string]any
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatalf("decoding response: %v", err)
	}
	return resp, body
}

func post(t *testing.T, url, body string) (*http.Response, map[string]any) {
	t.Helper()
	resp, err := http.Post(url, "application/json", strings.NewReader(body)) //nolint:gosec // Test server URL
	if err != nil {
		t.Fatalf("POST %s: %v", url, err)
	}
	t.Cleanup(func() { resp.Body.Close() }) //nolint:errcheck

	var payload map[string]any
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		t.Fatalf("decoding response: %v", err)
	}
	return resp, payload
}

func TestHealth(t *testing.T) {
	ts, _ := newTestServer(t, false)

	resp, body := get(t, ts.URL+"/api/v1/health")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}
	if body["status"] != "ok" || body["version"] != "test" {
		t.Errorf("health body = %v", body)
	}
	if resp.Header.Get("X-Request-ID") == "" {
		t.Error("missing X-Request-ID header")
	}
}

func TestListDevices(t *testing.T) {
	ts, _ := newTestServer(t, false)

	resp, body := get(t, ts.URL+"/api/v1/devices")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}
	if body["count"] != float64(2) {
		t.Errorf("count = %v, want 2", body["count"])
	}
}

func TestGetDevice(t *testing.T) {
	ts, _ := newTestServer(t, false)

	resp, body := get(t, ts.URL+"/api/v1/devices/1")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}
	if body["name"] != "Woonkamer Lamp" {
		t.Errorf("name = %v, want Woonkamer Lamp", body["name"])
	}

	resp, body = get(t, ts.URL+"/api/v1/devices/404")
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", resp.StatusCode)
	}
	if body["code"] != ErrCodeNotFound {
		t.Errorf("error code = %v, want %s", body["code"], ErrCodeNotFound)
	}

	resp, _ = get(t, ts.URL+"/api/v1/devices/abc")
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("status for non-integer id = %d, want 400", resp.StatusCode)
	}
}

func TestScenesRespectShowScenes(t *testing.T) {
	hidden, _ := newTestServer(t, false)
	resp, _ := get(t, hidden.URL+"/api/v1/scenes")
	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("status with show_scenes off = %d, want 404", resp.StatusCode)
	}

	shown, _ := newTestServer(t, true)
	resp, body := get(t, shown.URL+"/api/v1/scenes")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status with show_scenes on = %d, want 200", resp.StatusCode)
	}
	if body["count"] != float64(1) {
		t.Errorf("count = %v, want 1", body["count"])
	}

	resp, body = get(t, shown.URL+"/api/v1/scenes/10")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("scene status = %d, want 200", resp.StatusCode)
	}
	if body["name"] != "Avond" {
		t.Errorf("scene name = %v, want Avond", body["name"])
	}
}

func TestServiceDispatch(t *testing.T) {
	ts, fake := newTestServer(t, false)

	resp, body := post(t, ts.URL+"/api/v1/services/refresh_devices", "")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}
	if body["status"] != "ok" || fake.refreshes != 1 {
		t.Errorf("body = %v, refreshes = %d", body, fake.refreshes)
	}

	resp, _ = post(t, ts.URL+"/api/v1/services/run_scene", `{"scene_id": 10}`)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("run_scene status = %d, want 200", resp.StatusCode)
	}
	if len(fake.ranScenes) != 1 || fake.ranScenes[0] != 10 {
		t.Errorf("ranScenes = %v, want [10]", fake.ranScenes)
	}
}

func TestServiceDispatchErrors(t *testing.T) {
	ts, _ := newTestServer(t, false)

	tests := []struct {
		name       string
		action     string
		body       string
		wantStatus int
	}{
		{"unknown action", "explode", "", http.StatusNotFound},
		{"missing argument", "run_scene", "{}", http.StatusBadRequest},
		{"unknown scene", "run_scene", `{"scene_id": 99}`, http.StatusNotFound},
		{"unknown device", "identify", `{"device_id": 99}`, http.StatusNotFound},
		{"malformed body", "run_scene", "{not json", http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp, body := post(t, ts.URL+"/api/v1/services/"+tt.action, tt.body)
			if resp.StatusCode != tt.wantStatus {
				t.Errorf("status = %d, want %d (body %v)", resp.StatusCode, tt.wantStatus, body)
			}
		})
	}
}

func TestNewValidatesDeps(t *testing.T) {
	if _, err := New(Deps{Logger: logging.Default()}); err == nil {
		t.Error("New() without hub expected error")
	}
	if _, err := New(Deps{Hub: newFakeHub()}); err == nil {
		t.Error("New() without logger expected error")
	}
}
