// Package http provides the curl-backed HTTP client for curlite.
//
// It turns the raw text printed by `curl -i` into typed responses:
//   - Parsing of status line, headers and body (last block wins on redirects)
//   - Text and JSON access to the body, JSON path lookup and schema checks
//   - Status classification with typed errors for 1xx, 4xx and 5xx
//   - Request building into curl arguments
//   - A pluggable transfer executor with a subprocess implementation
//   - A client with retries, rate limiting, request IDs and latency stats
package http
