package hub

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/kakuware/ics2000-core/internal/cloud"
	"github.com/kakuware/ics2000-core/internal/device"
	"github.com/kakuware/ics2000-core/internal/infrastructure/config"
	"github.com/kakuware/ics2000-core/internal/infrastructure/influxdb"
	"github.com/kakuware/ics2000-core/internal/infrastructure/mqtt"
)

// Cloud is the slice of the cloud client the hub depends on.
// *cloud.Client satisfies it; tests substitute a fake.
type Cloud interface {
	Login(ctx context.Context) (*cloud.Session, error)
	Sync(ctx context.Context, mac string) ([]cloud.Module, error)
	Command(ctx context.Context, entityID, function, value int) error
}

// Logger is the logging interface used by the hub.
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

// Options carries the hub's optional collaborators. Any field may be
// nil; the corresponding concern is then skipped.
type Options struct {
	// Store persists last-known device state across restarts.
	Store *device.StateStore

	// MQTT publishes retained state messages after refreshes and commands.
	MQTT *mqtt.Client

	// Influx records state history points.
	Influx *influxdb.Client

	// Logger for hub events. Defaults to a no-op logger.
	Logger Logger
}

// Stats is a snapshot of cache counters for diagnostics.
type Stats struct {
	Devices     int       `json:"devices"`
	Scenes      int       `json:"scenes"`
	RawModules  int       `json:"raw_modules"`
	LastRefresh time.Time `json:"last_refresh"`
}

// Hub owns one cloud session and the device/scene cache for a gateway.
//
// Thread Safety:
//   - All methods are safe for concurrent use.
//   - Refresh is the only cache writer; accessors return copies.
type Hub struct {
	cfg    *config.Config
	client Cloud
	store  *device.StateStore
	mqtt   *mqtt.Client
	influx *influxdb.Client
	logger Logger

	blacklist device.Blacklist
	loc       *time.Location

	mu          sync.RWMutex
	session     *cloud.Session
	devices     map[int]device.Device
	scenes      map[int]device.Scene
	restored    map[int]device.State
	rawModules  int
	lastRefresh time.Time

	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// New creates a Hub from validated configuration.
//
// Parameters:
//   - cfg: Validated daemon configuration
//   - client: Cloud client (or a fake in tests)
//   - opts: Optional collaborators (state store, MQTT, InfluxDB, logger)
//
// Returns:
//   - *Hub: Ready to Start
//   - error: If the entity blacklist cannot be parsed
func New(cfg *config.Config, client Cloud, opts Options) (*Hub, error) {
	blacklist, err := device.ParseBlacklist(cfg.Devices.EntityBlacklist)
	if err != nil {
		return nil, fmt.Errorf("creating hub: %w", err)
	}

	logger := opts.Logger
	if logger == nil {
		logger = noopLogger{}
	}

	return &Hub{
		cfg:       cfg,
		client:    client,
		store:     opts.Store,
		mqtt:      opts.MQTT,
		influx:    opts.Influx,
		logger:    logger,
		blacklist: blacklist,
		loc:       cfg.Location(),
		devices:   make(map[int]device.Device),
		scenes:    make(map[int]device.Scene),
	}, nil
}

// Start brings the hub online.
//
// It restores persisted device state, performs the initial login and
// refresh, and arms the midnight refresh scheduler. A failed initial
// sync is logged and tolerated (the cache starts empty and fills on the
// next refresh); bad credentials are fatal.
func (h *Hub) Start(ctx context.Context) error {
	if h.store != nil {
		states, err := h.store.Load(ctx)
		if err != nil {
			h.logger.Warn("restoring persisted state failed", "error", err)
		} else if len(states) > 0 {
			h.mu.Lock()
			h.restored = states
			h.mu.Unlock()
			h.logger.Info("restored persisted device state", "devices", len(states))
		}
	}

	if err := h.Refresh(ctx); err != nil {
		if errors.Is(err, cloud.ErrAuth) {
			return fmt.Errorf("starting hub: %w", err)
		}
		h.logger.Warn("initial refresh failed, starting with empty cache", "error", err)
	}

	schedCtx, cancel := context.WithCancel(ctx)
	h.cancel = cancel
	h.wg.Add(1)
	go h.runScheduler(schedCtx)

	h.logger.Info("hub started",
		"timezone", h.loc.String(),
		"blacklisted", h.blacklist.Len(),
	)
	return nil
}

// Close stops the midnight scheduler and waits for it to exit.
// In-flight cloud calls are allowed to complete or fail naturally.
func (h *Hub) Close() error {
	if h.cancel != nil {
		h.cancel()
	}
	h.wg.Wait()
	return nil
}

// ensureSession returns the current session, logging in when there is none.
func (h *Hub) ensureSession(ctx context.Context) (*cloud.Session, error) {
	h.mu.RLock()
	session := h.session
	h.mu.RUnlock()
	if session != nil {
		return session, nil
	}

	session, err := h.client.Login(ctx)
	if err != nil {
		return nil, err
	}

	h.mu.Lock()
	h.session = session
	h.mu.Unlock()
	return session, nil
}

// Refresh pulls the module list from the cloud and replaces the cache.
//
// The new cache contains exactly the synced modules minus blacklisted
// and non-positive ids. A module whose blobs cannot be decrypted still
// gets a cache entry under a fallback name. On any cloud failure the
// previous cache is left untouched.
//
// Returns:
//   - error: cloud.ErrAuth on login failure, cloud.ErrSync on sync failure
func (h *Hub) Refresh(ctx context.Context) error {
	start := time.Now()

	session, err := h.ensureSession(ctx)
	if err != nil {
		return fmt.Errorf("refresh: %w", err)
	}

	modules, err := h.client.Sync(ctx, session.GatewayMAC)
	if err != nil {
		return fmt.Errorf("refresh: %w", err)
	}

	h.mu.RLock()
	prev := h.devices
	restored := h.restored
	h.mu.RUnlock()

	devices := make(map[int]device.Device)
	scenes := make(map[int]device.Scene)

	for _, m := range modules {
		if m.ID <= 0 || h.blacklist.Contains(m.ID) {
			continue
		}

		doc, name := h.decodeModule(session.AESKey, m)
		if doc != nil && cloud.ModuleScenes(doc) {
			scenes[m.ID] = device.Scene{ID: m.ID, Name: name}
			continue
		}

		d := device.FromSync(m.ID, name, m.Device, m.VersionStatus)
		carryState(&d, prev, restored)
		devices[m.ID] = d
	}

	h.mu.Lock()
	h.devices = devices
	h.scenes = scenes
	h.rawModules = len(modules)
	h.lastRefresh = time.Now()
	h.mu.Unlock()

	h.logger.Info("cache refreshed",
		"raw_modules", len(modules),
		"devices", len(devices),
		"scenes", len(scenes),
		"duration", time.Since(start),
	)

	h.afterRefresh(ctx, session.GatewayMAC, devices, scenes, time.Since(start))
	return nil
}

// decodeModule decrypts a module's data blob and extracts its name.
//
// The data blob is authoritative; when it yields no name the status
// blob is tried as a fallback, matching the vendor app. A module whose
// blobs are both unreadable still becomes a device — the empty name
// makes FromSync fall back to "Device <id>".
func (h *Hub) decodeModule(aesKey string, m cloud.Module) (map[string]any, string) {
	doc, err := cloud.DecryptBlob(aesKey, m.Data)
	if err != nil {
		h.logger.Warn("module data blob is unreadable", "module_id", m.ID, "error", err)
	}

	name := cloud.ModuleName(doc)
	if name == "" && m.Status != "" {
		if statusDoc, err := cloud.DecryptBlob(aesKey, m.Status); err == nil {
			name = cloud.ModuleName(statusDoc)
		}
	}
	return doc, name
}

// Reload drops the current session and refreshes, forcing a fresh
// login. Used by the reload service to pick up credential or account
// changes on the cloud side.
func (h *Hub) Reload(ctx context.Context) error {
	h.mu.Lock()
	h.session = nil
	h.mu.Unlock()

	return h.Refresh(ctx)
}

// ResetState wipes the persisted device state. Cached devices keep
// their in-memory state until the next refresh; the next daemon start
// begins from a clean slate.
func (h *Hub) ResetState(ctx context.Context) error {
	h.mu.Lock()
	h.restored = nil
	h.mu.Unlock()

	if h.store == nil {
		return nil
	}
	if err := h.store.Clear(ctx); err != nil {
		return fmt.Errorf("resetting state: %w", err)
	}
	h.logger.Info("persisted device state cleared")
	return nil
}

// carryState copies known state onto a freshly synced device.
//
// The sync response only carries the on/off counter; brightness, colour
// temperature and position come from the previous cache entry, or from
// the persisted state for devices reappearing after a restart. The
// sync's on/off state is authoritative either way.
func carryState(d *device.Device, prev map[int]device.Device, restored map[int]device.State) {
	if p, ok := prev[d.ID]; ok {
		d.Brightness = p.Brightness
		d.ColorTemp = p.ColorTemp
		if p.Position != nil {
			pos := *p.Position
			d.Position = &pos
		}
		return
	}
	if st, ok := restored[d.ID]; ok {
		on := d.On
		d.ApplyState(st)
		d.On = on
	}
}

// afterRefresh runs the best-effort side effects of a successful
// refresh: state persistence, MQTT publishing, history recording.
// Failures here never fail the refresh.
func (h *Hub) afterRefresh(ctx context.Context, mac string, devices map[int]device.Device, scenes map[int]device.Scene, elapsed time.Duration) {
	if h.store != nil {
		states := make(map[int]device.State, len(devices))
		for id, d := range devices {
			states[id] = d.State()
		}
		if err := h.store.SaveAll(ctx, states); err != nil {
			h.logger.Warn("persisting device state failed", "error", err)
		}
	}

	for _, d := range devices {
		h.publishState(mac, d)
		h.recordState(d)
	}

	if h.influx != nil {
		h.influx.WriteRefresh(len(devices), len(scenes), elapsed)
	}
}

// publishState publishes a device's retained MQTT state message.
func (h *Hub) publishState(mac string, d device.Device) {
	if h.mqtt == nil {
		return
	}

	payload, err := json.Marshal(d.State())
	if err != nil {
		return
	}

	topic := h.mqtt.TopicBuilder().DeviceState(mac, d.ID)
	if err := h.mqtt.PublishRetained(topic, payload); err != nil {
		h.logger.Warn("publishing device state failed", "device_id", d.ID, "error", err)
	}
}

// recordState writes a device state history point.
func (h *Hub) recordState(d device.Device) {
	if h.influx == nil {
		return
	}
	h.influx.WriteDeviceState(d.ID, d.Name, string(d.Type), influxdb.DeviceState{
		On:         d.On,
		Brightness: d.Brightness,
		ColorTemp:  d.ColorTemp,
		Position:   d.Position,
	})
}

// Devices returns a copy of all cached devices, sorted by id.
func (h *Hub) Devices() []device.Device {
	h.mu.RLock()
	defer h.mu.RUnlock()

	out := make([]device.Device, 0, len(h.devices))
	for _, d := range h.devices {
		out = append(out, *d.Copy())
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// Device returns a copy of one cached device.
//
// Returns:
//   - error: device.ErrDeviceNotFound when the id is not cached
func (h *Hub) Device(id int) (*device.Device, error) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	d, ok := h.devices[id]
	if !ok {
		return nil, fmt.Errorf("%w: %d", device.ErrDeviceNotFound, id)
	}
	return d.Copy(), nil
}

// Scenes returns a copy of all cached scenes, sorted by id.
func (h *Hub) Scenes() []device.Scene {
	h.mu.RLock()
	defer h.mu.RUnlock()

	out := make([]device.Scene, 0, len(h.scenes))
	for _, s := range h.scenes {
		out = append(out, s)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// Scene returns one cached scene.
//
// Returns:
//   - error: device.ErrSceneNotFound when the id is not cached
func (h *Hub) Scene(id int) (*device.Scene, error) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	s, ok := h.scenes[id]
	if !ok {
		return nil, fmt.Errorf("%w: %d", device.ErrSceneNotFound, id)
	}
	return &s, nil
}

// Stats returns cache counters for health reporting.
func (h *Hub) Stats() Stats {
	h.mu.RLock()
	defer h.mu.RUnlock()

	return Stats{
		Devices:     len(h.devices),
		Scenes:      len(h.scenes),
		RawModules:  h.rawModules,
		LastRefresh: h.lastRefresh,
	}
}

// gatewayMAC returns the MAC used for MQTT topics: the session MAC when
// logged in, otherwise the configured one.
func (h *Hub) gatewayMAC() string {
	h.mu.RLock()
	defer h.mu.RUnlock()
	if h.session != nil && h.session.GatewayMAC != "" {
		return h.session.GatewayMAC
	}
	return config.NormaliseMAC(h.cfg.Cloud.MAC)
}
