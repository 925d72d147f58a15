// Package cli is huntctl, an interactive client for the hunt server.
//
// It keeps one cookie-backed API session, remembers the hunt the user is
// in and, while in one, polls for alerts in the background so they show up
// between commands. Commands:
//
//   - register, login, logout
//   - create <name>       open a hunt and join it
//   - join <code> [guest] join as the logged-in user or as a named guest
//   - where <lat> <lon> [accuracy]
//   - who                 roster of the current hunt
//   - alert [message], alerts
//   - leave, end
//   - sessions, avatar <file>, export [csv|xlsx] [hours] [file]
//
// The REPL is started via App.Run(ctx), which blocks until the user exits.
package cli
