package influxdb

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/nerrad567/simfleet-core/internal/infrastructure/config"
)

func TestConnectDisabled(t *testing.T) {
	_, err := Connect(config.InfluxDBConfig{Enabled: false})
	if !errors.Is(err, ErrDisabled) {
		t.Errorf("Connect = %v, want ErrDisabled", err)
	}
}

func TestCloseOnZeroClient(t *testing.T) {
	c := &Client{}
	if err := c.Close(); err != nil {
		t.Errorf("Close: %v", err)
	}
}

func TestHealthCheckDisconnected(t *testing.T) {
	c := &Client{}
	if err := c.HealthCheck(context.Background()); !errors.Is(err, ErrNotConnected) {
		t.Errorf("HealthCheck = %v, want ErrNotConnected", err)
	}
}

func TestWritesDroppedWhenDisconnected(t *testing.T) {
	// A disconnected client must swallow writes without panicking; the
	// telemetry store is optional and never on the critical path.
	c := &Client{}

	c.FrameCaptured("dev-1", 12*time.Millisecond, false)
	c.WritePollMetric("dev-1", 3*time.Millisecond)
	c.WritePoint("custom", map[string]string{"k": "v"}, map[string]interface{}{"f": 1.0})
	c.Flush()
}

func TestIsConnectedDefaultsFalse(t *testing.T) {
	c := &Client{}
	if c.IsConnected() {
		t.Error("zero-value client should not report connected")
	}
}
