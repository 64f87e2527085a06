package cli

import (
	"context"
	"fmt"
	"log"
)

// getSimpleText and getPassword are indirections used to facilitate testing.
// They point to interactive input helpers and can be swapped in tests.
var getSimpleText = GetSimpleText
var getPassword = GetPassword

// Register prompts for a username and password and creates an account on
// the server. In local mode there is nothing to register against.
func (a *App) Register(ctx context.Context) error {
	if a.apiClient == nil {
		printlnFn("Running in local mode, no account needed.")
		return nil
	}

	userName, err := getSimpleText(a.reader, "Enter username", a.out)
	if err != nil {
		return err
	}

	password, err := getPassword(a.out)
	if err != nil {
		return err
	}

	if _, err := a.apiClient.Register(ctx, userName, string(password)); err != nil {
		log.Println(err.Error())
		return err
	}

	fmt.Println("Success!")
	return nil
}

// Login prompts for credentials, authenticates against the server and
// restores the shift selection from the freshly loaded list.
func (a *App) Login(ctx context.Context) error {
	if a.apiClient == nil {
		printlnFn("Running in local mode, already available.")
		return nil
	}

	userName, err := getSimpleText(a.reader, "Enter username", a.out)
	if err != nil {
		return err
	}

	password, err := getPassword(a.out)
	if err != nil {
		return err
	}

	if err := a.apiClient.Login(ctx, userName, string(password)); err != nil {
		log.Printf("Login unsuccessful: %s", err.Error())
		return err
	}

	a.userName = userName
	log.Printf("Login successful")

	if _, err := a.refreshShifts(ctx); err != nil {
		return err
	}
	return nil
}

// Logout drops the session token and clears the selection.
func (a *App) Logout(ctx context.Context) error {
	if a.apiClient == nil {
		printlnFn("Running in local mode, nothing to log out from.")
		return nil
	}

	a.apiClient.Logout()
	a.userName = ""
	a.sel = a.sel.ShiftsChanged(nil)
	a.shiftName = ""
	a.patientName = ""
	return nil
}

// Ping reports whether the server answers. Local mode is always reachable.
func (a *App) Ping(ctx context.Context) error {
	if a.apiClient == nil {
		printlnFn("Local mode: data is on disk, no server involved.")
		return nil
	}

	if err := a.apiClient.Ping(ctx); err != nil {
		log.Printf("Server unreachable: %s", err.Error())
		return err
	}
	printlnFn("Server is up.")
	return nil
}
