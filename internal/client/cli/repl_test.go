package cli

import (
	"bytes"
	"context"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/dmitrijs2005/keydesk/internal/client/client"
)

type fakeExec struct {
	loggedIn bool
	calls    []string
	errs     map[string]error
}

func (f *fakeExec) record(call string) error {
	f.calls = append(f.calls, call)
	name, _, _ := strings.Cut(call, " ")
	return f.errs[name]
}

func (f *fakeExec) isLoggedIn() bool { return f.loggedIn }

func (f *fakeExec) Login(context.Context) error {
	f.loggedIn = true
	return f.record("login")
}

func (f *fakeExec) Logout(context.Context) error {
	f.loggedIn = false
	return f.record("logout")
}

func (f *fakeExec) Dashboard(context.Context) error { return f.record("dashboard") }
func (f *fakeExec) Keys(context.Context) error      { return f.record("keys") }
func (f *fakeExec) Create(context.Context) error    { return f.record("create") }
func (f *fakeExec) WhoAmI(context.Context) error    { return f.record("whoami") }

func (f *fakeExec) Toggle(_ context.Context, id int64) error {
	return f.record(fmt.Sprintf("toggle %d", id))
}

func (f *fakeExec) SetActive(_ context.Context, id int64, active bool) error {
	return f.record(fmt.Sprintf("active %d %t", id, active))
}

func (f *fakeExec) SetTier(_ context.Context, id int64, tier string) error {
	return f.record(fmt.Sprintf("tier %d %s", id, tier))
}

func (f *fakeExec) Describe(_ context.Context, id int64, text string) error {
	return f.record(fmt.Sprintf("describe %d %s", id, text))
}

func (f *fakeExec) Delete(_ context.Context, id int64) error {
	return f.record(fmt.Sprintf("delete %d", id))
}

func (f *fakeExec) Usage(_ context.Context, days int, user string) error {
	return f.record(fmt.Sprintf("usage %d %s", days, user))
}

func TestRunREPL_Dispatch(t *testing.T) {
	input := rdr(strings.Join([]string{
		"help",
		"login",
		"help",
		"",
		"dashboard",
		"KEYS",
		"create",
		"toggle 3",
		"activate 4",
		"deactivate 5",
		"tier 6 premium",
		"describe 7 nightly batch jobs",
		"delete 8",
		"usage",
		"usage 30 bob@company.com",
		"whoami",
		"logout",
		"exit",
		"keys",
	}, "\n"))

	exec := &fakeExec{}
	var out bytes.Buffer
	runREPL(context.Background(), exec, func() string { return "(s)" }, input, &out)

	assert.Equal(t, []string{
		"login", "dashboard", "keys", "create", "toggle 3", "active 4 true", "active 5 false",
		"tier 6 premium", "describe 7 nightly batch jobs", "delete 8", "usage 0 ", "usage 30 bob@company.com",
		"whoami", "logout",
	}, exec.calls)

	s := out.String()
	assert.Contains(t, s, helpLoggedOut)
	assert.Contains(t, s, helpLoggedIn)
	assert.Contains(t, s, "keydesk (s)> ")
	assert.Contains(t, s, "Bye!")
}

func TestRunREPL_BadArguments(t *testing.T) {
	input := rdr("toggle\ndelete abc\ntier 1\nusage -2\ndescribe\nfrobnicate\n")
	exec := &fakeExec{loggedIn: true}
	var out bytes.Buffer

	runREPL(context.Background(), exec, func() string { return "" }, input, &out)

	assert.Empty(t, exec.calls)
	s := out.String()
	assert.Contains(t, s, "Usage: toggle <id>")
	assert.Contains(t, s, `Invalid key id "abc"`)
	assert.Contains(t, s, "Usage: tier <id> <free|standard|premium>")
	assert.Contains(t, s, "Usage: usage [days] [user]")
	assert.Contains(t, s, "Usage: describe <id> [text]")
	assert.Contains(t, s, "Unknown command: frobnicate")
}

func TestRunREPL_ErrorsPrintedAndLoopContinues(t *testing.T) {
	exec := &fakeExec{errs: map[string]error{
		"keys":   fmt.Errorf("list: %w", client.ErrUnauthorized),
		"delete": &client.RequestError{Op: client.OpDeleteKey, StatusCode: 404, Message: "API key not found"},
		"create": client.Invalid("tier", "Invalid tier. Must be free, standard, or premium"),
	}}
	var out bytes.Buffer

	runREPL(context.Background(), exec, func() string { return "" }, rdr("keys\ndelete 9\ncreate\nwhoami"), &out)

	assert.Equal(t, []string{"keys", "delete 9", "create", "whoami"}, exec.calls)
	s := out.String()
	assert.Contains(t, s, "Session expired. Please log in again.")
	assert.Contains(t, s, "API key not found")
	assert.Contains(t, s, "Invalid tier. Must be free, standard, or premium")
}

func TestRunREPL_StopsOnCanceledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	exec := &fakeExec{}
	var out bytes.Buffer

	runREPL(ctx, exec, func() string { return "" }, rdr("login\n"), &out)
	assert.Empty(t, exec.calls)
}

func TestFormatCount(t *testing.T) {
	cases := map[int64]string{
		0:          "0",
		999:        "999",
		1000:       "1,000",
		123456:     "123,456",
		1234567:    "1,234,567",
		9876543210: "9,876,543,210",
		-4500:      "-4,500",
	}
	for in, want := range cases {
		assert.Equal(t, want, formatCount(in))
	}
}
