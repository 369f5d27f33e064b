// Package daemon runs the sptnr trigger service.
//
// The HTTP surface is small: /process launches a detached sync job built from
// the query parameters, /logs lists past run logs with their completion
// summaries, /logs/{name} shows one log, and /metrics exposes Prometheus
// counters. Every route sits behind the optional api_key query check.
//
// The daemon never waits on the jobs it starts. Launch reports spawn errors
// only; the job's own run log is the record of what happened. A flock-based
// lock in the data directory keeps a second daemon from starting.
package daemon
