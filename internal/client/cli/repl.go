package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
)

// execIface is the command surface the admin REPL dispatches to. AdminApp
// implements it; tests use a stub.
type execIface interface {
	isLoggedIn() bool
	Login(ctx context.Context) error
	Logout(ctx context.Context) error
	Dashboard(ctx context.Context) error
	Keys(ctx context.Context) error
	Create(ctx context.Context) error
	Toggle(ctx context.Context, id int64) error
	SetActive(ctx context.Context, id int64, active bool) error
	SetTier(ctx context.Context, id int64, tier string) error
	Describe(ctx context.Context, id int64, text string) error
	Delete(ctx context.Context, id int64) error
	Usage(ctx context.Context, days int, userID string) error
	WhoAmI(ctx context.Context) error
}

const (
	helpLoggedOut = "Available commands: login, help, exit"
	helpLoggedIn  = "Available commands: dashboard, keys, create, toggle <id>, activate <id>, deactivate <id>, " +
		"tier <id> <free|standard|premium>, describe <id> [text], delete <id>, usage [days] [user], whoami, logout, help, exit"
)

// runREPL reads commands from reader until EOF or exit/quit and dispatches
// them to a. Command errors are printed and the loop continues.
//
// The prompt shows statusFn's result, e.g. "keydesk (admin online)> ".
func runREPL(ctx context.Context, a execIface, statusFn func() string, reader *bufio.Reader, w io.Writer) {
	for {
		if ctx.Err() != nil {
			return
		}
		fmt.Fprintf(w, "keydesk %s> ", statusFn())

		line, err := reader.ReadString('\n')
		if err != nil && (!errors.Is(err, io.EOF) || line == "") {
			fmt.Fprintln(w)
			return
		}
		parts := strings.Fields(line)
		if len(parts) == 0 {
			continue
		}
		cmd, args := strings.ToLower(parts[0]), parts[1:]

		if cmd == "exit" || cmd == "quit" {
			fmt.Fprintln(w, "Bye!")
			return
		}
		if err := dispatch(ctx, a, cmd, args, w); err != nil {
			fmt.Fprintln(w, errorText(err))
		}
	}
}

func dispatch(ctx context.Context, a execIface, cmd string, args []string, w io.Writer) error {
	switch cmd {
	case "help":
		if a.isLoggedIn() {
			fmt.Fprintln(w, helpLoggedIn)
		} else {
			fmt.Fprintln(w, helpLoggedOut)
		}
		return nil

	case "login":
		return a.Login(ctx)
	case "logout":
		return a.Logout(ctx)
	case "dashboard":
		return a.Dashboard(ctx)
	case "keys", "list", "l":
		return a.Keys(ctx)
	case "create":
		return a.Create(ctx)
	case "whoami":
		return a.WhoAmI(ctx)

	case "toggle", "activate", "deactivate", "delete":
		id, ok := keyArg(args, cmd+" <id>", w)
		if !ok {
			return nil
		}
		switch cmd {
		case "toggle":
			return a.Toggle(ctx, id)
		case "activate":
			return a.SetActive(ctx, id, true)
		case "deactivate":
			return a.SetActive(ctx, id, false)
		default:
			return a.Delete(ctx, id)
		}

	case "tier":
		if len(args) != 2 {
			fmt.Fprintln(w, "Usage: tier <id> <free|standard|premium>")
			return nil
		}
		id, ok := keyArg(args[:1], "tier <id> <tier>", w)
		if !ok {
			return nil
		}
		return a.SetTier(ctx, id, args[1])

	case "describe":
		id, ok := keyArg(args, "describe <id> [text]", w)
		if !ok {
			return nil
		}
		return a.Describe(ctx, id, strings.Join(args[1:], " "))

	case "usage":
		days := 0
		if len(args) > 0 {
			n, err := strconv.Atoi(args[0])
			if err != nil || n <= 0 {
				fmt.Fprintln(w, "Usage: usage [days] [user]")
				return nil
			}
			days = n
		}
		user := ""
		if len(args) > 1 {
			user = args[1]
		}
		return a.Usage(ctx, days, user)
	}

	fmt.Fprintln(w, "Unknown command:", cmd)
	return nil
}

func keyArg(args []string, usage string, w io.Writer) (int64, bool) {
	if len(args) == 0 {
		fmt.Fprintln(w, "Usage:", usage)
		return 0, false
	}
	id, err := strconv.ParseInt(args[0], 10, 64)
	if err != nil || id <= 0 {
		fmt.Fprintf(w, "Invalid key id %q\n", args[0])
		return 0, false
	}
	return id, true
}
