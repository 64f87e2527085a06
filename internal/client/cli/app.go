// Package cli implements the interactive shiftnotes client. It drives the
// repository (local document or remote API) through a small REPL.
package cli

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"log"
	"log/slog"
	"os"

	"github.com/mpetrenko/shiftnotes/internal/client/api"
	"github.com/mpetrenko/shiftnotes/internal/client/config"
	"github.com/mpetrenko/shiftnotes/internal/client/localstore"
	"github.com/mpetrenko/shiftnotes/internal/client/repository"
	"github.com/mpetrenko/shiftnotes/internal/client/selection"
	"github.com/mpetrenko/shiftnotes/internal/client/sorting"
	"github.com/mpetrenko/shiftnotes/internal/logging"
	"github.com/mpetrenko/shiftnotes/internal/models"
)

type App struct {
	config    *config.Config
	repo      repository.Repository
	keeper    repository.CurrentShiftKeeper
	apiClient *api.Client
	prefs     *sorting.Preferences

	sel         selection.State
	shiftName   string
	patientName string
	userName    string

	reader *bufio.Reader
	out    io.Writer
}

func NewApp(c *config.Config) (*App, error) {

	logger := logging.NewSlogLogger(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.LevelWarn,
	})))

	prefs, err := sorting.LoadPreferences(c.DataDir)
	if err != nil {
		return nil, err
	}

	app := &App{
		config: c,
		prefs:  prefs,
		reader: bufio.NewReader(os.Stdin),
		out:    os.Stdout,
	}

	switch c.Mode {
	case config.ModeLocal:
		store, err := localstore.New(c.DataDir, logger)
		if err != nil {
			return nil, err
		}
		app.repo = store
		app.keeper = store

	case config.ModeRemote:
		client := api.New(c.ServerEndpointAddr)
		app.repo = client
		app.apiClient = client

	default:
		return nil, fmt.Errorf("unknown mode: %s", c.Mode)
	}

	return app, nil
}

func (a *App) Run(ctx context.Context) {
	a.Root(ctx)
}

// isLoggedIn is always true in local mode; remote mode requires a token.
func (a *App) isLoggedIn() bool {
	return a.apiClient == nil || a.apiClient.IsAuthorized()
}

// refreshShifts reloads the shift list and revalidates the current
// selection against it, persisting the pointer when the backend keeps one.
func (a *App) refreshShifts(ctx context.Context) ([]models.Shift, error) {
	shifts, err := a.repo.ListShifts(ctx)
	if err != nil {
		log.Println(err.Error())
		return nil, err
	}

	prev := a.sel
	a.sel = a.sel.ShiftsChanged(shifts)
	a.shiftName = shiftNameByID(shifts, a.sel.ShiftID)
	if a.sel.PatientID == "" {
		a.patientName = ""
	}

	if a.keeper != nil && a.sel.ShiftID != prev.ShiftID {
		if err := a.keeper.SetCurrentShiftID(ctx, a.sel.ShiftID); err != nil {
			log.Println(err.Error())
		}
	}
	return shifts, nil
}

// refreshPatients reloads the current shift's patients and revalidates the
// patient selection. Requires a current shift.
func (a *App) refreshPatients(ctx context.Context) ([]models.Patient, error) {
	if a.sel.ShiftID == "" {
		printlnFn("No current shift. Create one with 'newshift'.")
		return nil, fmt.Errorf("no current shift")
	}

	patients, err := a.repo.ListPatients(ctx, a.sel.ShiftID)
	if err != nil {
		log.Println(err.Error())
		return nil, err
	}

	a.sel = a.sel.PatientsChanged(patients)
	a.patientName = patientNameByID(patients, a.sel.PatientID)
	return patients, nil
}

// switchShift makes the given shift current and persists the pointer.
func (a *App) switchShift(ctx context.Context, shifts []models.Shift, shiftID string) {
	a.sel = a.sel.SwitchShift(shifts, shiftID)
	a.shiftName = shiftNameByID(shifts, a.sel.ShiftID)
	a.patientName = ""

	if a.keeper != nil {
		if err := a.keeper.SetCurrentShiftID(ctx, a.sel.ShiftID); err != nil {
			log.Println(err.Error())
		}
	}
}

func shiftNameByID(shifts []models.Shift, id string) string {
	for _, sh := range shifts {
		if sh.ID == id {
			return sh.Name
		}
	}
	return ""
}

func patientNameByID(patients []models.Patient, id string) string {
	for _, p := range patients {
		if p.ID == id {
			return p.Name
		}
	}
	return ""
}
