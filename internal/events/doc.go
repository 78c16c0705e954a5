// Package events fans lifecycle and capture notifications out to the
// interested infrastructure: MQTT topics, WebSocket broadcast channels,
// the transition history store and the time-series database.
//
// The fanout is the single wiring point between the domain packages and
// the outward-facing surfaces. Domain packages emit through their narrow
// sink interfaces and never learn which transports are attached; every
// destination is optional and a nil destination is skipped.
package events
