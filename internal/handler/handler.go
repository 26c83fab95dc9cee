// Package handler is the HTTP layer after the router.
//
// It serves the system endpoints (health, route table, dry-run checks) and
// the handler behind every validated route, which echoes the request
// regions back. Typed endpoints go through Handle, which validates and
// binds their JSON payload first.
package handler
