// Package verification implements the self-service email verification flow:
// the user submits an email, receives a six digit code, submits it and is
// issued an API key.
//
//	AwaitingEmail --RequestCode--> AwaitingCode --VerifyCode--> Completed
//	AwaitingCode  --GoBack-------> AwaitingEmail  (email kept)
//	any           --StartOver----> AwaitingEmail  (everything cleared)
//
// Failed requests leave the state untouched. Each submit runs under a
// guard.Guard so a double submit never reaches the backend twice.
package verification

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/dmitrijs2005/keydesk/internal/client/client"
	"github.com/dmitrijs2005/keydesk/internal/client/guard"
	"github.com/dmitrijs2005/keydesk/internal/client/models"
	"github.com/dmitrijs2005/keydesk/internal/logging"
)

type State int

const (
	AwaitingEmail State = iota
	AwaitingCode
	Completed
)

func (s State) String() string {
	switch s {
	case AwaitingEmail:
		return "awaiting-email"
	case AwaitingCode:
		return "awaiting-code"
	case Completed:
		return "completed"
	}
	return fmt.Sprintf("state(%d)", int(s))
}

// Guard keys.
const (
	ActionRequestCode = "request-code"
	ActionVerifyCode  = "verify-code"
	ActionMyKeys      = "my-keys"
)

const codeLength = 6

// ErrWrongStep is returned for an action the current state does not allow.
var ErrWrongStep = errors.New("action not available at this step")

type Flow struct {
	api    client.PortalClient
	guard  *guard.Guard
	logger logging.Logger

	mu    sync.Mutex
	state State
	email string
	key   *models.IssuedKey
	// epoch changes on GoBack and StartOver; a response that arrives after
	// either is not applied.
	epoch uint64
}

func New(api client.PortalClient, logger logging.Logger) *Flow {
	if logger == nil {
		logger = logging.Discard()
	}
	return &Flow{api: api, guard: guard.New(), logger: logger}
}

func (f *Flow) State() State {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.state
}

// Email returns the retained email, empty before a code was sent or after
// StartOver.
func (f *Flow) Email() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.email
}

// IssuedKey returns the key issued by a successful verification.
func (f *Flow) IssuedKey() (models.IssuedKey, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.key == nil {
		return models.IssuedKey{}, false
	}
	return *f.key, true
}

// RequestCode asks the backend to email a code to email. On success the flow
// moves to AwaitingCode and retains the email.
func (f *Flow) RequestCode(ctx context.Context, email string) (models.CodeSent, error) {
	email = strings.TrimSpace(email)
	if email == "" {
		return models.CodeSent{}, client.Invalid("email", "Email is required")
	}

	var sent models.CodeSent
	err := f.guard.Do(ctx, ActionRequestCode, func(ctx context.Context) error {
		epoch, err := f.expect(AwaitingEmail)
		if err != nil {
			return err
		}

		sent, err = f.api.RequestCode(ctx, email)
		if err != nil {
			f.logger.Info(ctx, "code request failed", "email", email, "error", err)
			return err
		}

		f.mu.Lock()
		defer f.mu.Unlock()
		if f.epoch == epoch {
			f.email = email
			f.state = AwaitingCode
		}
		return nil
	})
	if err != nil {
		return models.CodeSent{}, err
	}
	return sent, nil
}

// VerifyCode submits code for email, which must be the retained email. A
// code that is not exactly six decimal digits is rejected without a request.
func (f *Flow) VerifyCode(ctx context.Context, email, code string) (models.IssuedKey, error) {
	code = strings.TrimSpace(code)
	if !validCode(code) {
		return models.IssuedKey{}, client.Invalid("code", "Please enter a valid 6-digit code")
	}
	email = strings.TrimSpace(email)

	var issued models.IssuedKey
	err := f.guard.Do(ctx, ActionVerifyCode, func(ctx context.Context) error {
		epoch, err := f.expect(AwaitingCode)
		if err != nil {
			return err
		}
		if retained := f.Email(); email != retained {
			return client.Invalid("email", fmt.Sprintf("Code was sent to %s", retained))
		}

		issued, err = f.api.VerifyCode(ctx, email, code)
		if err != nil {
			f.logger.Info(ctx, "verification failed", "email", email, "error", err)
			return err
		}
		if issued.APIKey == "" {
			return fmt.Errorf("%s: empty api key", client.OpVerifyCode)
		}

		f.mu.Lock()
		defer f.mu.Unlock()
		if f.epoch == epoch {
			k := issued
			f.key = &k
			f.state = Completed
		}
		return nil
	})
	if err != nil {
		return models.IssuedKey{}, err
	}
	return issued, nil
}

// MyKeys lists the keys registered to the retained email.
func (f *Flow) MyKeys(ctx context.Context) ([]models.APIKey, error) {
	email := f.Email()
	if email == "" {
		return nil, client.Invalid("email", "Email is required")
	}

	var keys []models.APIKey
	err := f.guard.Do(ctx, ActionMyKeys, func(ctx context.Context) error {
		var err error
		keys, err = f.api.MyKeys(ctx, email)
		return err
	})
	return keys, err
}

// GoBack returns from the code step to the email step. The email stays.
func (f *Flow) GoBack() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.state != AwaitingCode {
		return fmt.Errorf("go back from %s: %w", f.state, ErrWrongStep)
	}
	f.state = AwaitingEmail
	f.epoch++
	return nil
}

// StartOver resets the flow from any state and forgets the email and key.
func (f *Flow) StartOver() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.state = AwaitingEmail
	f.email = ""
	f.key = nil
	f.epoch++
}

func (f *Flow) expect(s State) (uint64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.state != s {
		return 0, fmt.Errorf("%s required, flow is %s: %w", s, f.state, ErrWrongStep)
	}
	return f.epoch, nil
}

func validCode(code string) bool {
	if len(code) != codeLength {
		return false
	}
	for i := 0; i < len(code); i++ {
		if code[i] < '0' || code[i] > '9' {
			return false
		}
	}
	return true
}
