// Package todoist is a small client for the Todoist REST API v2.
//
// Every method performs exactly one HTTP round trip, bounded by the client
// timeout and the caller's context. Nothing is retried or cached.
//
// Failures are typed:
//   - *RemoteError: the API answered with a non-2xx status; Body is kept verbatim
//   - *TransportError: no response was received
//   - *ValidationError: an argument was rejected before any request was sent
//   - *ConfigurationError: no usable API token
//
// Use errors.As, or the IsNotFound / IsUnauthorized / IsValidation helpers.
package todoist
