// Package guard prevents an action from running twice at the same time.
//
// A UI submit handler acquires the action's key before it starts its request
// and releases it when the request settles. A second submit while the first
// is in flight is refused immediately instead of queueing a duplicate.
package guard

import (
	"context"
	"errors"
	"fmt"
	"sync"
)

// ErrBusy is returned when the action is already in flight.
var ErrBusy = errors.New("action already in progress")

// Guard tracks in-flight actions by name. The zero value is ready to use.
type Guard struct {
	mu       sync.Mutex
	inFlight map[string]struct{}
}

func New() *Guard {
	return &Guard{}
}

// TryAcquire marks action as in flight. The returned release may be called
// any number of times; only the first call has an effect.
func (g *Guard) TryAcquire(action string) (release func(), err error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if _, busy := g.inFlight[action]; busy {
		return nil, fmt.Errorf("%s: %w", action, ErrBusy)
	}
	if g.inFlight == nil {
		g.inFlight = make(map[string]struct{})
	}
	g.inFlight[action] = struct{}{}

	var once sync.Once
	return func() {
		once.Do(func() {
			g.mu.Lock()
			delete(g.inFlight, action)
			g.mu.Unlock()
		})
	}, nil
}

// Do runs fn while holding action. The action is released however fn ends,
// including by panic.
func (g *Guard) Do(ctx context.Context, action string, fn func(ctx context.Context) error) error {
	release, err := g.TryAcquire(action)
	if err != nil {
		return err
	}
	defer release()
	return fn(ctx)
}

// Busy reports whether action is in flight.
func (g *Guard) Busy(action string) bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	_, ok := g.inFlight[action]
	return ok
}
