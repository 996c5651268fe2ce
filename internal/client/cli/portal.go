package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/dmitrijs2005/keydesk/internal/client/client"
	"github.com/dmitrijs2005/keydesk/internal/client/config"
	"github.com/dmitrijs2005/keydesk/internal/client/verification"
	"github.com/dmitrijs2005/keydesk/internal/logging"
)

// PortalApp is the self-service wizard: email, code, issued key.
type PortalApp struct {
	config *config.Config
	logger logging.Logger
	flow   *verification.Flow
	reader *bufio.Reader
	out    io.Writer
}

func NewPortalApp(cfg *config.Config, logger logging.Logger) (*PortalApp, error) {
	api, err := client.NewHTTPClient(cfg.ServerURL, &http.Client{Timeout: cfg.RequestTimeout}, logger)
	if err != nil {
		return nil, err
	}
	return newPortalApp(cfg, verification.New(api, logger), logger, bufio.NewReader(os.Stdin), os.Stdout), nil
}

func newPortalApp(cfg *config.Config, flow *verification.Flow, logger logging.Logger, reader *bufio.Reader, out io.Writer) *PortalApp {
	return &PortalApp{config: cfg, logger: logger, flow: flow, reader: reader, out: out}
}

// Run drives the wizard until the user quits or input ends.
func (p *PortalApp) Run(ctx context.Context) error {
	fmt.Fprintln(p.out, "keydesk self-service: get an API key for your company email")

	for ctx.Err() == nil {
		var (
			quit bool
			err  error
		)
		switch p.flow.State() {
		case verification.AwaitingEmail:
			quit, err = p.emailStep(ctx)
		case verification.AwaitingCode:
			quit, err = p.codeStep(ctx)
		case verification.Completed:
			quit, err = p.resultStep(ctx)
		}
		if errors.Is(err, io.EOF) {
			fmt.Fprintln(p.out)
			return nil
		}
		if err != nil {
			return err
		}
		if quit {
			fmt.Fprintln(p.out, "Bye!")
			return nil
		}
	}
	return ctx.Err()
}

func (p *PortalApp) emailStep(ctx context.Context) (bool, error) {
	prompt := "Step 1/3 - Email address (quit to exit)"
	retained := p.flow.Email()
	if retained != "" {
		prompt += fmt.Sprintf(" [%s]", retained)
	}

	line, err := GetSimpleText(p.reader, prompt, p.out)
	if err != nil {
		return false, err
	}
	if isQuit(line) {
		return true, nil
	}
	if line == "" {
		line = retained
	}

	sent, err := p.flow.RequestCode(ctx, line)
	if err != nil {
		p.fail(err)
		return false, nil
	}
	fmt.Fprintf(p.out, "✅ %s\n", sent.Message)
	if sent.ExpiresInMinutes > 0 {
		fmt.Fprintf(p.out, "The code expires in %d minutes.\n", sent.ExpiresInMinutes)
	}
	p.pause(ctx)
	return false, nil
}

func (p *PortalApp) codeStep(ctx context.Context) (bool, error) {
	email := p.flow.Email()
	prompt := fmt.Sprintf("Step 2/3 - 6-digit code sent to %s (back, restart, quit)", email)

	line, err := GetSimpleText(p.reader, prompt, p.out)
	if err != nil {
		return false, err
	}
	switch strings.ToLower(line) {
	case "quit", "exit":
		return true, nil
	case "back":
		return false, p.flow.GoBack()
	case "restart":
		p.flow.StartOver()
		return false, nil
	}

	issued, err := p.flow.VerifyCode(ctx, email, line)
	if err != nil {
		p.fail(err)
		return false, nil
	}
	fmt.Fprintf(p.out, "✅ %s\n\nYour API key:\n\n    %s\n\n", issued.Message, issued.APIKey)
	return false, nil
}

func (p *PortalApp) resultStep(ctx context.Context) (bool, error) {
	line, err := GetSimpleText(p.reader, "Step 3/3 - keys, restart or quit", p.out)
	if err != nil {
		return false, err
	}
	switch strings.ToLower(line) {
	case "quit", "exit":
		return true, nil
	case "restart":
		p.flow.StartOver()
	case "keys":
		keys, err := p.flow.MyKeys(ctx)
		if err != nil {
			p.fail(err)
			return false, nil
		}
		renderKeys(p.out, keys)
	case "":
	default:
		fmt.Fprintln(p.out, "Unknown command:", line)
	}
	return false, nil
}

func (p *PortalApp) fail(err error) {
	fmt.Fprintf(p.out, "❌ %s\n", errorText(err))
}

// pause holds the confirmation on screen before the code prompt.
func (p *PortalApp) pause(ctx context.Context) {
	if p.config.StepDelay <= 0 {
		return
	}
	t := time.NewTimer(p.config.StepDelay)
	defer t.Stop()
	select {
	case <-t.C:
	case <-ctx.Done():
	}
}

func isQuit(s string) bool {
	s = strings.ToLower(s)
	return s == "quit" || s == "exit"
}
