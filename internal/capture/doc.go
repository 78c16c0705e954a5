// Package capture implements the screenshot-to-encoder streaming pipeline.
//
// A Manager owns the active capture sessions. Each Session launches one
// encoder subprocess (ffmpeg reading stills from stdin, writing one encoded
// stream to the destination) and runs a timed loop: screenshot the device
// through its lifecycle actor, write the frame bytes to the encoder, delete
// the transient file, and sleep the remainder of the frame interval. A failed
// frame is logged and dropped, never fatal to the session. Stopping a session
// guarantees the encoder subprocess is dead before Stop returns; an encoder
// that exits on its own ends the loop and surfaces its error via Err.
//
// The package also provides a window-capture variant: a single blocking
// external recorder invocation with a fixed duration and a plain
// success-or-failure result.
package capture
