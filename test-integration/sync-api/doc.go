// Package integration provides end-to-end tests for vrsync. They run the full
// application against a fake vehicle registry and drive it over HTTP.
package integration
