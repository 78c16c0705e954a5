package influxdb

import (
	"time"

	"github.com/influxdata/influxdb-client-go/v2/api/write"
)

// FrameCaptured records one capture loop iteration: how long the screenshot
// plus encoder write took, and whether the frame was dropped. Satisfies the
// capture package's Metrics interface.
func (c *Client) FrameCaptured(udid string, latency time.Duration, dropped bool) {
	if !c.IsConnected() {
		return
	}

	point := write.NewPoint(
		"capture_frame",
		map[string]string{
			"udid": udid,
		},
		map[string]interface{}{
			"latency_ms": float64(latency.Microseconds()) / 1000.0,
			"dropped":    dropped,
		},
		time.Now(),
	)
	c.writeAPI.WritePoint(point)
}

// WritePollMetric records one reconciliation poll for a device.
func (c *Client) WritePollMetric(udid string, duration time.Duration) {
	if !c.IsConnected() {
		return
	}

	point := write.NewPoint(
		"reconcile_poll",
		map[string]string{
			"udid": udid,
		},
		map[string]interface{}{
			"duration_ms": float64(duration.Microseconds()) / 1000.0,
		},
		time.Now(),
	)
	c.writeAPI.WritePoint(point)
}

// WritePoint writes a custom point. Tags index the data and should stay low
// cardinality; fields carry the values.
func (c *Client) WritePoint(measurement string, tags map[string]string, fields map[string]interface{}) {
	c.WritePointWithTime(measurement, tags, fields, time.Now())
}

// WritePointWithTime writes a custom point with an explicit timestamp.
func (c *Client) WritePointWithTime(measurement string, tags map[string]string, fields map[string]interface{}, timestamp time.Time) {
	if !c.IsConnected() {
		return
	}
	c.writeAPI.WritePoint(write.NewPoint(measurement, tags, fields, timestamp))
}
