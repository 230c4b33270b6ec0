// Package stats provides an optional HTTP server with runtime statistics of a
// running dump. It is only functional when built with the statsview build tag:
//
//	go build -tags statsview
//
// The graphs are served at localhost:12600/debug/statsview and the standard pprof
// handlers at localhost:12600/debug/pprof/.
package stats

// Address is the listen address of the statistics server.
const Address = "localhost:12600"

const path = "/debug/statsview"
