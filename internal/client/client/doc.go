// Package client contains the transport layer of keydesk.
//
// # Overview
//
//  1. AdminClient and PortalClient describe the backend REST contract: admin
//     login, key CRUD, usage statistics, health, and the self-service
//     request-code / verify-code / my-keys endpoints.
//  2. HTTPClient implements both over net/http. Every request goes through one
//     code path that stamps an X-Request-ID, attaches the bearer token when
//     given, and maps failures onto the error taxonomy.
//  3. InitDatabase and RunMigrations bootstrap the local SQLite cache used to
//     keep an admin session across restarts.
//
// # Error Handling
//
// Transport failures wrap ErrUnavailable. Non-2xx responses are *RequestError
// values whose Message is the backend detail (or a fallback) and whose
// Unwrap yields ErrUnauthorized for a 401 on an authenticated call and
// ErrInvalidCredentials for a refused login. Local input rejections are
// *ValidationError values matching ErrValidation. Use Message(err) to get the
// text to show a user.
package client
