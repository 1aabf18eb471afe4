// Package timeouts defines shared timeout constants used across services.
package timeouts

import "time"

// ReadHeader limits how long an HTTP server waits for request headers.
const ReadHeader = 5 * time.Second

// Shutdown limits how long an HTTP server waits for in-flight requests
// during graceful shutdown.
const Shutdown = 5 * time.Second

// PageRender caps one storefront page render including storage calls.
const PageRender = 10 * time.Second

// AdminCommand caps one admin controller command.
const AdminCommand = 15 * time.Second
