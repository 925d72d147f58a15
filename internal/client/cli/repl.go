package cli

import (
	"bufio"
	"context"
	"fmt"
	"strings"
)

// printlnFn is a test seam for user-facing output.
var printlnFn = fmt.Println

// execIface is the command surface the REPL drives. App satisfies it;
// tests use a stub.
type execIface interface {
	isLoggedIn() bool
	Register(ctx context.Context) error
	Login(ctx context.Context) error
	Logout(ctx context.Context) error
	Create(ctx context.Context, args []string) error
	Join(ctx context.Context, args []string) error
	Where(ctx context.Context, args []string) error
	Who(ctx context.Context) error
	Alert(ctx context.Context, args []string) error
	Alerts(ctx context.Context) error
	Leave(ctx context.Context) error
	End(ctx context.Context) error
	Sessions(ctx context.Context) error
	Avatar(ctx context.Context, args []string) error
	Export(ctx context.Context, args []string) error
}

// runREPL reads commands line by line and dispatches them until EOF,
// "exit" or "quit". Handler errors are printed and the loop goes on.
func runREPL(ctx context.Context, a execIface, statusFn func() string, scanner *bufio.Scanner) {
	for {
		printlnFn(fmt.Sprintf("hunt> %s > ", statusFn()))
		if !scanner.Scan() {
			return
		}
		parts := strings.Fields(scanner.Text())
		if len(parts) == 0 {
			continue
		}
		cmd, args := parts[0], parts[1:]

		var err error
		switch cmd {
		case "help":
			if a.isLoggedIn() {
				printlnFn("Available commands: create, join, where, who, alert, alerts, leave, end, sessions, avatar, export, logout, exit")
			} else {
				printlnFn("Available commands: register, login, join <code> <name>, where, who, alert, alerts, leave, exit")
			}

		case "register":
			err = a.Register(ctx)
		case "login":
			err = a.Login(ctx)
		case "logout":
			err = a.Logout(ctx)
		case "create":
			err = a.Create(ctx, args)
		case "join":
			err = a.Join(ctx, args)
		case "where":
			err = a.Where(ctx, args)
		case "who":
			err = a.Who(ctx)
		case "alert":
			err = a.Alert(ctx, args)
		case "alerts":
			err = a.Alerts(ctx)
		case "leave":
			err = a.Leave(ctx)
		case "end":
			err = a.End(ctx)
		case "sessions":
			err = a.Sessions(ctx)
		case "avatar":
			err = a.Avatar(ctx, args)
		case "export":
			err = a.Export(ctx, args)

		case "exit", "quit":
			printlnFn("Bye!")
			return

		default:
			printlnFn("Unknown command:", cmd)
		}

		if err != nil {
			printlnFn("Error:", err)
		}
	}
}
