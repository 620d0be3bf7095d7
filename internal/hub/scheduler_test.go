package hub

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/kakuware/ics2000-core/internal/cloud"
)

func TestNextMidnight(t *testing.T) {
	amsterdam, err := time.LoadLocation("Europe/Amsterdam")
	if err != nil {
		t.Fatalf("loading timezone: %v", err)
	}
	tokyo, err := time.LoadLocation("Asia/Tokyo")
	if err != nil {
		t.Fatalf("loading timezone: %v", err)
	}

	tests := []struct {
		name string
		now  time.Time
		loc  *time.Location
		want time.Time
	}{
		{
			name: "midday UTC",
			now:  time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC),
			loc:  time.UTC,
			want: time.Date(2026, 3, 11, 0, 0, 0, 0, time.UTC),
		},
		{
			name: "just after midnight",
			now:  time.Date(2026, 3, 10, 0, 0, 1, 0, time.UTC),
			loc:  time.UTC,
			want: time.Date(2026, 3, 11, 0, 0, 0, 0, time.UTC),
		},
		{
			name: "DST spring forward",
			// 2026-03-29 is the CET to CEST transition day.
			now:  time.Date(2026, 3, 29, 12, 0, 0, 0, amsterdam),
			loc:  amsterdam,
			want: time.Date(2026, 3, 30, 0, 0, 0, 0, amsterdam),
		},
		{
			name: "now in different zone than loc",
			now:  time.Date(2026, 6, 1, 22, 0, 0, 0, time.UTC),
			loc:  tokyo,
			// 22:00 UTC is already 07:00 next day in Tokyo.
			want: time.Date(2026, 6, 3, 0, 0, 0, 0, tokyo),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := nextMidnight(tt.now, tt.loc)
			if !got.Equal(tt.want) {
				t.Errorf("nextMidnight() = %v, want %v", got, tt.want)
			}
			if !got.After(tt.now) {
				t.Errorf("nextMidnight() = %v not after now %v", got, tt.now)
			}
		})
	}
}

func TestScheduledRefreshFailureIsSwallowed(t *testing.T) {
	// A failing scheduled tick must not break subsequent manual refreshes.
	fake := &fakeCloud{syncErr: fmt.Errorf("%w: cloud down", cloud.ErrSync)}
	h := newTestHub(t, testConfig(), fake)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Simulate the scheduler's tick path directly.
	h.wg.Add(1)
	done := make(chan struct{})
	go func() {
		defer close(done)
		h.runScheduler(ctx)
	}()

	// Manual refresh fails while the cloud is down, then succeeds.
	if err := h.Refresh(ctx); err == nil {
		t.Fatal("Refresh() expected error while cloud is down")
	}

	fake.mu.Lock()
	fake.syncErr = nil
	fake.modules = []cloud.Module{deviceModule(t, 1, "Lamp", "1")}
	fake.mu.Unlock()

	if err := h.Refresh(ctx); err != nil {
		t.Fatalf("Refresh() after recovery error = %v", err)
	}
	if devices := h.Devices(); len(devices) != 1 {
		t.Errorf("len(Devices()) = %d, want 1", len(devices))
	}

	cancel()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("scheduler did not stop on context cancellation")
	}
}

func TestStartAndClose(t *testing.T) {
	fake := &fakeCloud{modules: []cloud.Module{deviceModule(t, 1, "Lamp", "1")}}
	h := newTestHub(t, testConfig(), fake)

	if err := h.Start(context.Background()); err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	if devices := h.Devices(); len(devices) != 1 {
		t.Errorf("len(Devices()) after Start = %d, want 1", len(devices))
	}
	if err := h.Close(); err != nil {
		t.Errorf("Close() error = %v", err)
	}
}

func TestStartFailsOnBadCredentials(t *testing.T) {
	fake := &fakeCloud{loginErr: fmt.Errorf("%w: cloud rejected login", cloud.ErrAuth)}
	h := newTestHub(t, testConfig(), fake)

	if err := h.Start(context.Background()); err == nil {
		_ = h.Close()
		t.Fatal("Start() expected error for bad credentials")
	}
}

func TestStartToleratesSyncFailure(t *testing.T) {
	fake := &fakeCloud{syncErr: fmt.Errorf("%w: cloud down", cloud.ErrSync)}
	h := newTestHub(t, testConfig(), fake)

	if err := h.Start(context.Background()); err != nil {
		t.Fatalf("Start() error = %v, want nil (sync failures are tolerated)", err)
	}
	defer h.Close() //nolint:errcheck

	if devices := h.Devices(); len(devices) != 0 {
		t.Errorf("len(Devices()) = %d, want 0 (empty cache)", len(devices))
	}
}
