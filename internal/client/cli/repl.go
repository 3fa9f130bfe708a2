package cli

import (
	"bufio"
	"context"
	"fmt"
	"slices"
	"strings"
)

// printlnFn is a test seam for user-facing output. In tests, replace it with a stub.
var printlnFn = fmt.Println

// execIface is the command surface the REPL dispatches to. App satisfies it;
// tests provide a lightweight stub.
type execIface interface {
	role(ctx context.Context) role

	Login(ctx context.Context, args []string) error
	AdminLogin(ctx context.Context) error

	Card(ctx context.Context) error
	Claim(ctx context.Context) error
	Lang(ctx context.Context, args []string) error
	Share(ctx context.Context, args []string) error
	Logout(ctx context.Context) error

	List(ctx context.Context) error
	Create(ctx context.Context, args []string) error
	Stamp(ctx context.Context, args []string) error
	Reset(ctx context.Context, args []string) error
	Delete(ctx context.Context, args []string) error
	Import(ctx context.Context, args []string) error
	Export(ctx context.Context, args []string) error
	View(ctx context.Context, args []string) error
	Back(ctx context.Context) error
}

var commands = map[role][]string{
	roleAnonymous: {"help", "login", "admin", "exit"},
	roleCustomer:  {"help", "card", "claim", "lang", "share", "logout", "exit"},
	roleAdmin: {"help", "list", "create", "stamp", "reset", "delete", "share", "import", "export",
		"view", "back", "card", "claim", "lang", "logout", "exit"},
}

func allowed(r role, cmd string) bool {
	if cmd == "quit" {
		cmd = "exit"
	}
	return slices.Contains(commands[r], cmd)
}

// runREPL reads commands line by line and dispatches them to a. Which
// commands exist depends on the current role; anything else is reported as
// unknown. The loop exits on EOF or on "exit" / "quit".
//
// Errors returned by handlers are ignored here: handlers report them to the
// user themselves.
func runREPL(ctx context.Context, a execIface, statusFn func() string, reader *bufio.Reader) {
	for {
		printlnFn(fmt.Sprintf("stampcard%s> ", statusFn()))
		line, err := readLine(reader)
		if err != nil {
			return
		}
		parts := strings.Fields(line)
		if len(parts) == 0 {
			continue
		}
		cmd, args := strings.ToLower(parts[0]), parts[1:]

		r := a.role(ctx)
		if !allowed(r, cmd) {
			printlnFn("Unknown command:", cmd)
			continue
		}

		switch cmd {
		case "help":
			printlnFn("Available commands: " + strings.Join(commands[r], ", "))

		case "login":
			_ = a.Login(ctx, args)

		case "admin":
			_ = a.AdminLogin(ctx)

		case "card":
			_ = a.Card(ctx)

		case "claim":
			_ = a.Claim(ctx)

		case "lang":
			_ = a.Lang(ctx, args)

		case "share":
			_ = a.Share(ctx, args)

		case "logout":
			_ = a.Logout(ctx)

		case "list":
			_ = a.List(ctx)

		case "create":
			_ = a.Create(ctx, args)

		case "stamp":
			_ = a.Stamp(ctx, args)

		case "reset":
			_ = a.Reset(ctx, args)

		case "delete":
			_ = a.Delete(ctx, args)

		case "import":
			_ = a.Import(ctx, args)

		case "export":
			_ = a.Export(ctx, args)

		case "view":
			_ = a.View(ctx, args)

		case "back":
			_ = a.Back(ctx)

		case "exit", "quit":
			printlnFn("Bye!")
			return
		}
	}
}
