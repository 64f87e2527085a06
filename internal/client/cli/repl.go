package cli

import (
	"bufio"
	"context"
	"fmt"
	"strings"
)

// printlnFn is a test seam for user-facing output. In tests, replace it with a stub.
var printlnFn = fmt.Println

// execIface defines the minimal command surface the REPL needs to operate.
// The real App type satisfies this interface; tests can provide a lightweight stub.
type execIface interface {
	isLoggedIn() bool
	Register(ctx context.Context) error
	Login(ctx context.Context) error
	Logout(ctx context.Context) error
	Ping(ctx context.Context) error
	Shifts(ctx context.Context) error
	NewShift(ctx context.Context) error
	Use(ctx context.Context) error
	RenameShift(ctx context.Context) error
	DelShift(ctx context.Context) error
	Patients(ctx context.Context) error
	AddPatient(ctx context.Context) error
	Select(ctx context.Context) error
	RenamePatient(ctx context.Context) error
	Archive(ctx context.Context) error
	DelPatient(ctx context.Context) error
	Notes(ctx context.Context) error
	AddNote(ctx context.Context) error
	EditNote(ctx context.Context) error
	DelNote(ctx context.Context) error
	CycleSort(ctx context.Context) error
	CycleSortArchived(ctx context.Context) error
}

// runREPL starts a simple read-eval-print loop for the shiftnotes CLI.
//
// It reads a line from the provided scanner, parses the first token as the
// command, and dispatches to methods on 'a'. Unknown commands are reported
// back to the user. The loop exits on scanner EOF or when the user types
// "exit" or "quit".
//
// Prompt & Commands
//
// The prompt shows the current status (from statusFn) and accepts commands:
//
//	Not logged in (remote mode):
//	  - help           — show available commands
//	  - register       — create an account
//	  - login          — authenticate
//	  - ping           — check server reachability
//	  - exit | quit    — leave the program
//
//	Logged in (or local mode):
//	  - shifts         — list shifts
//	  - newshift       — create a shift and make it current
//	  - use            — switch the current shift
//	  - renameshift    — rename the current shift
//	  - delshift       — delete the current shift with its patients and notes
//	  - (p)atients     — list patients of the current shift
//	  - add            — add a patient
//	  - select         — select a patient
//	  - rename         — rename the selected patient
//	  - archive        — toggle archive on the selected patient
//	  - delpat         — delete the selected patient with its notes
//	  - (n)otes        — list the selected patient's notes
//	  - note           — add a note
//	  - editnote       — edit a note
//	  - delnote        — delete a note
//	  - sort           — cycle the active patients' sort order
//	  - sortarch       — cycle the archived patients' sort order
//	  - logout         — log out (remote mode)
//	  - exit | quit    — leave the program
//
// Any errors returned by command handlers are ignored here; handlers should
// log their own errors. This keeps the REPL loop resilient and focused on I/O.
func runREPL(ctx context.Context, a execIface, statusFn func() string, scanner *bufio.Scanner) {
	for {
		printlnFn(fmt.Sprintf("sn> %s > ", statusFn()))
		if !scanner.Scan() {
			return
		}
		line := scanner.Text()
		parts := strings.Fields(line)
		if len(parts) == 0 {
			continue
		}
		cmd := parts[0]

		switch cmd {
		case "help":
			if a.isLoggedIn() {
				printlnFn("Shifts: shifts, newshift, use, renameshift, delshift")
				printlnFn("Patients: (p)atients, add, select, rename, archive, delpat, sort, sortarch")
				printlnFn("Notes: (n)otes, note, editnote, delnote")
				printlnFn("Other: ping, logout, exit")
			} else {
				printlnFn("Available commands: register, login, ping, exit")
			}

		case "register":
			_ = a.Register(ctx)

		case "login":
			_ = a.Login(ctx)

		case "logout":
			_ = a.Logout(ctx)

		case "ping":
			_ = a.Ping(ctx)

		case "shifts":
			_ = a.Shifts(ctx)

		case "newshift":
			_ = a.NewShift(ctx)

		case "use":
			_ = a.Use(ctx)

		case "renameshift":
			_ = a.RenameShift(ctx)

		case "delshift":
			_ = a.DelShift(ctx)

		case "p", "patients":
			_ = a.Patients(ctx)

		case "add":
			_ = a.AddPatient(ctx)

		case "select":
			_ = a.Select(ctx)

		case "rename":
			_ = a.RenamePatient(ctx)

		case "archive":
			_ = a.Archive(ctx)

		case "delpat":
			_ = a.DelPatient(ctx)

		case "n", "notes":
			_ = a.Notes(ctx)

		case "note":
			_ = a.AddNote(ctx)

		case "editnote":
			_ = a.EditNote(ctx)

		case "delnote":
			_ = a.DelNote(ctx)

		case "sort":
			_ = a.CycleSort(ctx)

		case "sortarch":
			_ = a.CycleSortArchived(ctx)

		case "exit", "quit":
			printlnFn("Bye!")
			return

		default:
			printlnFn("Unknown command:", cmd)
		}
	}
}
