// Package session holds the admin credential and decides when it ends.
//
// Every authenticated backend call goes through Gate.Authorized. A 401 from
// any of them ends the session the same way an explicit logout does, so the
// rest of the CLI never inspects status codes to find out it was signed out.
package session

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/dmitrijs2005/keydesk/internal/client/client"
	"github.com/dmitrijs2005/keydesk/internal/client/models"
	"github.com/dmitrijs2005/keydesk/internal/logging"
	"github.com/golang-jwt/jwt/v5"
)

type State int

const (
	Unauthenticated State = iota
	Authenticated
)

func (s State) String() string {
	if s == Authenticated {
		return "authenticated"
	}
	return "unauthenticated"
}

// Authenticator exchanges admin credentials for a token.
type Authenticator interface {
	Login(ctx context.Context, username, password string) (models.TokenResponse, error)
}

// CredentialCache keeps the credential across restarts.
type CredentialCache interface {
	Load(ctx context.Context) (models.Credential, bool, error)
	Save(ctx context.Context, cred models.Credential) error
	Clear(ctx context.Context) error
}

type Option func(*Gate)

func WithCache(c CredentialCache) Option { return func(g *Gate) { g.cache = c } }

func WithLogger(l logging.Logger) Option { return func(g *Gate) { g.logger = l } }

func WithClock(now func() time.Time) Option { return func(g *Gate) { g.now = now } }

type Gate struct {
	auth   Authenticator
	cache  CredentialCache
	logger logging.Logger
	now    func() time.Time

	mu        sync.RWMutex
	cred      *models.Credential
	listeners []func(State)
}

func New(auth Authenticator, opts ...Option) *Gate {
	g := &Gate{auth: auth, logger: logging.Discard(), now: time.Now}
	for _, o := range opts {
		o(g)
	}
	return g
}

// OnChange registers fn to be called after every state transition. fn runs
// on the goroutine that caused the transition, without the gate locked.
func (g *Gate) OnChange(fn func(State)) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.listeners = append(g.listeners, fn)
}

func (g *Gate) State() State {
	g.mu.RLock()
	defer g.mu.RUnlock()
	if g.cred == nil {
		return Unauthenticated
	}
	return Authenticated
}

// Credential returns a copy of the current credential.
func (g *Gate) Credential() (models.Credential, bool) {
	g.mu.RLock()
	defer g.mu.RUnlock()
	if g.cred == nil {
		return models.Credential{}, false
	}
	return *g.cred, true
}

// Login authenticates against the backend and, on success, replaces the
// current credential. Empty fields are rejected without a request.
func (g *Gate) Login(ctx context.Context, username, password string) (models.Credential, error) {
	username = strings.TrimSpace(username)
	if username == "" {
		return models.Credential{}, client.Invalid("username", "Username is required")
	}
	if password == "" {
		return models.Credential{}, client.Invalid("password", "Password is required")
	}

	tr, err := g.auth.Login(ctx, username, password)
	if err != nil {
		g.logger.Warn(ctx, "login failed", "username", username, "error", err)
		return models.Credential{}, err
	}

	cred := models.Credential{Token: tr.AccessToken, Username: username, ExpiresAt: tokenExpiry(tr.AccessToken)}
	g.set(&cred)

	if g.cache != nil {
		if err := g.cache.Save(ctx, cred); err != nil {
			g.logger.Warn(ctx, "credential not cached", "error", err)
		}
	}
	g.logger.Info(ctx, "logged in", "username", username)
	return cred, nil
}

// Logout ends the session and clears the cache. Logging out twice is fine.
func (g *Gate) Logout(ctx context.Context) error {
	g.drop(ctx, "")
	if g.cache != nil {
		if err := g.cache.Clear(ctx); err != nil {
			return fmt.Errorf("clear cached credential: %w", err)
		}
	}
	return nil
}

// Restore loads a cached credential. It returns false when nothing usable is
// cached; an expired cached token is discarded.
func (g *Gate) Restore(ctx context.Context) (bool, error) {
	if g.cache == nil {
		return false, nil
	}
	cred, ok, err := g.cache.Load(ctx)
	if err != nil {
		return false, fmt.Errorf("load cached credential: %w", err)
	}
	if !ok {
		return false, nil
	}

	cred.ExpiresAt = tokenExpiry(cred.Token)
	if cred.Expired(g.now()) {
		g.logger.Info(ctx, "cached credential expired", "username", cred.Username)
		if err := g.cache.Clear(ctx); err != nil {
			return false, fmt.Errorf("clear cached credential: %w", err)
		}
		return false, nil
	}

	g.set(&cred)
	return true, nil
}

// Authorized runs fn with the current token. Without a session fn is not
// called and ErrNotAuthenticated is returned. If fn reports ErrUnauthorized
// the session ends, unless it was already replaced by a newer login.
func (g *Gate) Authorized(ctx context.Context, fn func(ctx context.Context, token string) error) error {
	cred, ok := g.Credential()
	if !ok {
		return client.ErrNotAuthenticated
	}
	if cred.Expired(g.now()) {
		g.expire(ctx, cred.Token)
		return fmt.Errorf("session expired: %w", client.ErrUnauthorized)
	}

	err := fn(ctx, cred.Token)
	if errors.Is(err, client.ErrUnauthorized) {
		g.expire(ctx, cred.Token)
	}
	return err
}

func (g *Gate) expire(ctx context.Context, token string) {
	if !g.drop(ctx, token) {
		return
	}
	g.logger.Warn(ctx, "session ended by server")
	if g.cache != nil {
		if err := g.cache.Clear(ctx); err != nil {
			g.logger.Error(ctx, "clear cached credential", "error", err)
		}
	}
}

func (g *Gate) set(cred *models.Credential) {
	g.mu.Lock()
	was := g.cred != nil
	g.cred = cred
	listeners := append([]func(State){}, g.listeners...)
	g.mu.Unlock()

	if !was {
		notify(listeners, Authenticated)
	}
}

// drop clears the credential. A non-empty token limits it to that exact
// credential. It reports whether anything was cleared.
func (g *Gate) drop(_ context.Context, token string) bool {
	g.mu.Lock()
	if g.cred == nil || (token != "" && g.cred.Token != token) {
		g.mu.Unlock()
		return false
	}
	g.cred = nil
	listeners := append([]func(State){}, g.listeners...)
	g.mu.Unlock()

	notify(listeners, Unauthenticated)
	return true
}

func notify(listeners []func(State), s State) {
	for _, fn := range listeners {
		fn(s)
	}
}

// tokenExpiry reads the exp claim without verifying the signature; the
// backend remains the authority on validity. Opaque tokens have no expiry.
func tokenExpiry(token string) time.Time {
	claims := &jwt.RegisteredClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return time.Time{}
	}
	if claims.ExpiresAt == nil {
		return time.Time{}
	}
	return claims.ExpiresAt.Time
}
