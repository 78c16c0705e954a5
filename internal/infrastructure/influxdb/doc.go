// Package influxdb wraps the InfluxDB v2 client for SimFleet telemetry.
//
// Capture frame latency and reconciliation poll timings are written as
// batched, non-blocking points. The store is optional; when influxdb.enabled
// is false the service runs without telemetry.
package influxdb
