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
	"sync"
	"time"

	"github.com/dmitrijs2005/keydesk/internal/client/client"
	"github.com/dmitrijs2005/keydesk/internal/client/config"
	"github.com/dmitrijs2005/keydesk/internal/client/repositories/metadata"
	"github.com/dmitrijs2005/keydesk/internal/client/services"
	"github.com/dmitrijs2005/keydesk/internal/client/session"
	"github.com/dmitrijs2005/keydesk/internal/logging"
)

type Mode string

const (
	ModeOnline  Mode = "online"
	ModeOffline Mode = "offline"
)

// AdminApp is the interactive admin dashboard.
type AdminApp struct {
	config    *config.Config
	logger    logging.Logger
	api       client.AdminClient
	gate      *session.Gate
	table     *services.KeyTable
	usage     services.UsageService
	dashboard *services.Dashboard
	reader    *bufio.Reader
	out       io.Writer
	closers   []func() error

	mu   sync.Mutex
	mode Mode
}

// NewAdminApp wires the admin CLI: local credential cache, HTTP client,
// session gate and services.
func NewAdminApp(ctx context.Context, cfg *config.Config, logger logging.Logger) (*AdminApp, error) {
	db, err := client.InitDatabase(ctx, cfg.CacheFile)
	if err != nil {
		return nil, fmt.Errorf("init local cache: %w", err)
	}

	api, err := client.NewHTTPClient(cfg.ServerURL, &http.Client{Timeout: cfg.RequestTimeout}, logger)
	if err != nil {
		_ = db.Close()
		return nil, err
	}

	gate := session.New(api,
		session.WithCache(metadata.NewCredentialStore(db)),
		session.WithLogger(logger),
	)

	a := newAdminApp(cfg, api, gate, logger, bufio.NewReader(os.Stdin), os.Stdout)
	a.closers = append(a.closers, db.Close)
	return a, nil
}

func newAdminApp(cfg *config.Config, api client.AdminClient, gate *session.Gate, logger logging.Logger, reader *bufio.Reader, out io.Writer) *AdminApp {
	keys := services.NewKeyService(api, gate)
	table := services.NewKeyTable(keys)
	usage := services.NewUsageService(api, gate)

	gate.OnChange(func(s session.State) {
		if s == session.Unauthenticated {
			table.Clear()
		}
	})

	return &AdminApp{
		config:    cfg,
		logger:    logger,
		api:       api,
		gate:      gate,
		table:     table,
		usage:     usage,
		dashboard: services.NewDashboard(table, usage, cfg.UsageDays),
		reader:    reader,
		out:       out,
	}
}

// Run restores a cached session if there is one, starts the health watcher
// and blocks in the REPL until the user exits.
func (a *AdminApp) Run(ctx context.Context) error {
	defer a.Close()

	fmt.Fprintln(a.out, "Welcome to keydesk admin (type 'help' for commands)")

	restored, err := a.gate.Restore(ctx)
	if err != nil {
		a.logger.Warn(ctx, "session not restored", "error", err)
	}
	if restored {
		cred, _ := a.gate.Credential()
		fmt.Fprintf(a.out, "Welcome back, %s\n", cred.Username)
		if err := a.Dashboard(ctx); err != nil {
			fmt.Fprintln(a.out, errorText(err))
		}
	} else {
		fmt.Fprintln(a.out, "Please log in (login).")
	}

	watchCtx, stop := context.WithCancel(ctx)
	defer stop()
	go a.StartOnlineStatusWatcher(watchCtx, a.config.HealthCheckInterval)

	runREPL(ctx, a, a.status, a.reader, a.out)
	return nil
}

func (a *AdminApp) Close() error {
	var errs []error
	for _, c := range a.closers {
		errs = append(errs, c())
	}
	a.closers = nil
	return errors.Join(errs...)
}

func (a *AdminApp) isLoggedIn() bool {
	return a.gate.State() == session.Authenticated
}

func (a *AdminApp) Mode() Mode {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.mode
}

func (a *AdminApp) setMode(ctx context.Context, mode Mode) {
	a.mu.Lock()
	prev := a.mode
	a.mode = mode
	a.mu.Unlock()

	if prev == mode {
		return
	}
	if mode == ModeOffline {
		a.logger.Warn(ctx, "server unreachable", "url", a.config.ServerURL)
	} else {
		a.logger.Info(ctx, "server reachable", "url", a.config.ServerURL)
	}
}

func (a *AdminApp) status() string {
	var parts []string
	if cred, ok := a.gate.Credential(); ok {
		parts = append(parts, cred.Username)
	}
	if m := a.Mode(); m != "" {
		parts = append(parts, string(m))
	}
	if len(parts) == 0 {
		return ""
	}
	return "(" + strings.Join(parts, " ") + ")"
}

// StartOnlineStatusWatcher pings the backend immediately and then every
// interval until ctx is done, keeping Mode current.
func (a *AdminApp) StartOnlineStatusWatcher(ctx context.Context, interval time.Duration) {
	check := func() {
		pingCtx, cancel := context.WithTimeout(ctx, a.config.RequestTimeout)
		defer cancel()
		if err := a.api.Ping(pingCtx); err != nil {
			if ctx.Err() == nil {
				a.setMode(ctx, ModeOffline)
			}
			return
		}
		a.setMode(ctx, ModeOnline)
	}

	check()

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			check()
		case <-ctx.Done():
			return
		}
	}
}
