// Package timeouts defines shared timeout constants used across the service.
// Centralizing these values prevents drift between components and makes the
// durations discoverable.
package timeouts

import "time"

// ReadHeader limits how long the HTTP server waits for request headers.
const ReadHeader = 5 * time.Second

// Shutdown limits how long the HTTP server waits for in-flight requests
// during graceful shutdown.
const Shutdown = 5 * time.Second

// SinkAppend caps a single best-effort append to the secondary tabular sink.
const SinkAppend = 5 * time.Second
