package influxdb

import (
	"context"
	"errors"
	"testing"

	"github.com/kakuware/ics2000-core/internal/infrastructure/config"
)

// Tests here do not require a running InfluxDB server; they cover the
// disabled path and the guards that make writes safe no-ops when the
// client is not connected.

func TestConnectDisabled(t *testing.T) {
	_, err := Connect(config.InfluxDBConfig{Enabled: false})
	if !errors.Is(err, ErrDisabled) {
		t.Errorf("Connect(disabled) error = %v, want ErrDisabled", err)
	}
}

func TestWriteDisconnected(t *testing.T) {
	client := &Client{}

	// Must not panic or block on a disconnected client.
	client.WriteDeviceState(1, "Lamp", "dimmer", DeviceState{On: true, Brightness: 50})
	client.WriteSceneActivation(3, "Avond")
	client.WriteRefresh(10, 2, 0)
	client.Flush()
}

func TestHealthCheckDisconnected(t *testing.T) {
	client := &Client{}

	if err := client.HealthCheck(context.Background()); !errors.Is(err, ErrNotConnected) {
		t.Errorf("HealthCheck() error = %v, want ErrNotConnected", err)
	}
}

func TestCloseNil(t *testing.T) {
	client := &Client{}
	if err := client.Close(); err != nil {
		t.Errorf("Close() on zero client error = %v, want nil", err)
	}
}
