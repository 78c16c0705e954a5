// Package mqtt wraps paho.mqtt.golang for the SimFleet event bus.
//
// The client publishes device state transitions and capture session events
// to the simfleet/ topic hierarchy and announces its own availability on
// simfleet/system/status with a Last Will and Testament, so subscribers can
// tell a crashed service from a gracefully stopped one.
//
// Connection management is delegated to paho: auto-reconnect with backoff,
// with tracked subscriptions restored after every reconnect. All methods are
// safe for concurrent use.
//
// The bus is optional. When mqtt.enabled is false in the configuration the
// service runs without it and event publishing is skipped.
package mqtt
