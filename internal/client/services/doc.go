// Package services contains the admin-side application services: key
// management, usage statistics and the dashboard loader. Every backend call
// is made through an Authorizer so that a rejected token ends the session in
// one place.
package services

import "context"

// Authorizer runs fn with the current bearer token. session.Gate implements
// it.
type Authorizer interface {
	Authorized(ctx context.Context, fn func(ctx context.Context, token string) error) error
}
