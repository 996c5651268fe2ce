package cli

import (
	"bytes"
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrijs2005/keydesk/internal/client/client"
	"github.com/dmitrijs2005/keydesk/internal/client/fakeapi"
	"github.com/dmitrijs2005/keydesk/internal/client/verification"
	"github.com/dmitrijs2005/keydesk/internal/logging"
)

const fixedCode = "246810"

func newPortal(t *testing.T, lines ...string) (*fakeapi.Server, *PortalApp, *bytes.Buffer) {
	t.Helper()
	api := fakeapi.New()
	api.SetCodeSource(func() string { return fixedCode })
	ts := api.Start()
	t.Cleanup(ts.Close)

	hc, err := client.NewHTTPClient(ts.URL, ts.Client(), nil)
	require.NoError(t, err)

	var out bytes.Buffer
	flow := verification.New(hc, nil)
	app := newPortalApp(testConfig(ts.URL), flow, logging.Discard(), rdr(strings.Join(lines, "\n")+"\n"), &out)
	return api, app, &out
}

func TestPortal_HappyPath(t *testing.T) {
	api, app, out := newPortal(t,
		"dev@company.com",
		fixedCode,
		"keys",
		"quit",
	)

	require.NoError(t, app.Run(context.Background()))
	s := out.String()

	assert.Contains(t, s, "✅ Verification code sent to your email")
	assert.Contains(t, s, "The code expires in 5 minutes.")
	assert.Contains(t, s, "6-digit code sent to dev@company.com")
	assert.Contains(t, s, "API key created successfully!")
	assert.Contains(t, s, "Bye!")
	assert.Equal(t, verification.Completed, app.flow.State())

	issued, ok := app.flow.IssuedKey()
	require.True(t, ok)
	assert.Contains(t, s, issued.APIKey)
	assert.Equal(t, 1, api.Hits("GET /auth/my-keys"))
}

func TestPortal_ErrorsAndNavigation(t *testing.T) {
	api, app, out := newPortal(t,
		"someone@gmail.com", // rejected by the backend
		"dev@company.com",
		"12ab",   // rejected locally
		"back",   // to step 1, email kept
		"",       // resubmit the kept email
		"000000", // wrong code
		"restart",
		"other@company.com",
		fixedCode,
		"restart",
		"quit",
	)

	require.NoError(t, app.Run(context.Background()))
	s := out.String()

	assert.Contains(t, s, "❌ Email domain not allowed. Please use a company email address.")
	assert.Contains(t, s, "❌ Please enter a valid 6-digit code")
	assert.Contains(t, s, "[dev@company.com]")
	assert.Contains(t, s, "❌ Invalid or expired verification code")
	assert.Contains(t, s, "6-digit code sent to other@company.com")

	assert.Equal(t, 4, api.Hits("POST /auth/request-code"))
	assert.Equal(t, 2, api.Hits("POST /auth/verify-code"))

	// after the final restart nothing is retained
	assert.Equal(t, verification.AwaitingEmail, app.flow.State())
	assert.Empty(t, app.flow.Email())
}

func TestPortal_EOFEndsQuietly(t *testing.T) {
	_, app, _ := newPortal(t, "dev@company.com")

	require.NoError(t, app.Run(context.Background()))
	assert.Equal(t, verification.AwaitingCode, app.flow.State())
}

func TestPortal_StepDelay(t *testing.T) {
	_, app, _ := newPortal(t, "dev@company.com", "quit")
	app.config.StepDelay = 50 * time.Millisecond

	start := time.Now()
	require.NoError(t, app.Run(context.Background()))
	assert.GreaterOrEqual(t, time.Since(start), 50*time.Millisecond)
}

func TestPortal_StepDelayHonorsCancel(t *testing.T) {
	_, app, _ := newPortal(t)
	app.config.StepDelay = time.Hour

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	start := time.Now()
	app.pause(ctx)
	assert.Less(t, time.Since(start), time.Second)
}
