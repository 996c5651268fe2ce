// Package common contains shared constants and small helpers used across
// keydesk components.
package common

const (
	// AuthorizationHeaderName carries the bearer credential on authenticated
	// requests.
	AuthorizationHeaderName = "Authorization"

	// BearerPrefix precedes the token inside the Authorization header.
	BearerPrefix = "Bearer "

	// RequestIDHeaderName tags every outbound request for log correlation.
	RequestIDHeaderName = "X-Request-ID"

	// APIKeyPrefix is the prefix the backend puts on every issued secret.
	APIKeyPrefix = "sk-internal-"
)
