// Package metrics exposes poll loop metrics in Prometheus format.
//
// PollMetrics implements poller.Metrics. NewRouter and Serve publish a
// registry over HTTP for the CLI when metrics.addr is configured.
package metrics
