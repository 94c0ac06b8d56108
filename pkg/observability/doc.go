/*
Package observability turns engine lifecycle events into Prometheus metrics.

Metrics are registered on a private registry so several bots can run in one
process; Handler exposes them for scraping.
*/
package observability
