// Package cmd implements the curlite CLI commands using Cobra.
//
// Available commands:
//   - request: Send a request with an explicit method
//   - get, post, put, patch, delete, head: Method shorthands for request
//   - replay: Run curl command lines through curlite
//   - history: Show or clear recorded transfers
//   - version: Show curlite version information
//
// Every request goes through the local curl binary. Global flags select
// the config file, the output format and whether HTTP error statuses
// make the process exit non-zero.
package cmd
