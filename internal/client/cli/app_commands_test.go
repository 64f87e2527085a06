package cli

import (
	"bufio"
	"context"
	"io"
	"log"
	"os"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mpetrenko/shiftnotes/internal/client/config"
	"github.com/mpetrenko/shiftnotes/internal/client/localstore"
	"github.com/mpetrenko/shiftnotes/internal/client/sorting"
	"github.com/mpetrenko/shiftnotes/internal/logging"
	"github.com/mpetrenko/shiftnotes/internal/models"
)

// stubInput replaces the interactive input seams with canned answers
// consumed in order.
func stubInput(t *testing.T, answers ...string) {
	t.Helper()

	origSimple := getSimpleText
	origMulti := getMultiline
	i := 0
	next := func() string {
		require.Less(t, i, len(answers), "ran out of stubbed answers")
		a := answers[i]
		i++
		return a
	}
	getSimpleText = func(_ *bufio.Reader, _ string, _ io.Writer) (string, error) {
		return next(), nil
	}
	getMultiline = func(_ *bufio.Reader, _ string, _ io.Writer) (string, error) {
		return next(), nil
	}
	t.Cleanup(func() {
		getSimpleText = origSimple
		getMultiline = origMulti
	})
}

func newLocalApp(t *testing.T) *App {
	t.Helper()
	silencePrintln(t)
	log.SetOutput(io.Discard)
	t.Cleanup(func() { log.SetOutput(os.Stderr) })

	dir := t.TempDir()
	logger := logging.NewDiscardLogger()

	store, err := localstore.New(dir, logger)
	require.NoError(t, err)

	prefs, err := sorting.LoadPreferences(dir)
	require.NoError(t, err)

	return &App{
		config: &config.Config{Mode: config.ModeLocal, DataDir: dir},
		repo:   store,
		keeper: store,
		prefs:  prefs,
		reader: bufio.NewReader(strings.NewReader("")),
		out:    io.Discard,
	}
}

func TestApp_LocalModeIsAlwaysLoggedIn(t *testing.T) {
	a := newLocalApp(t)
	assert.True(t, a.isLoggedIn())
}

func TestNewShift_BecomesCurrent(t *testing.T) {
	a := newLocalApp(t)
	ctx := context.Background()

	stubInput(t, "Night Shift")
	require.NoError(t, a.NewShift(ctx))

	assert.NotEmpty(t, a.sel.ShiftID)
	assert.Equal(t, "Night Shift", a.shiftName)

	cur, err := a.keeper.CurrentShiftID(ctx)
	require.NoError(t, err)
	assert.Equal(t, a.sel.ShiftID, cur)
}

func TestUse_SwitchesShiftAndClearsPatient(t *testing.T) {
	a := newLocalApp(t)
	ctx := context.Background()

	stubInput(t, "First", "Second", "Jane Doe", "1")
	require.NoError(t, a.NewShift(ctx))
	require.NoError(t, a.NewShift(ctx))
	require.NoError(t, a.AddPatient(ctx))
	require.NotEmpty(t, a.sel.PatientID)

	require.NoError(t, a.Use(ctx))
	assert.Equal(t, "First", a.shiftName)
	assert.Empty(t, a.sel.PatientID)
}

func TestAddPatient_SelectsIt(t *testing.T) {
	a := newLocalApp(t)
	ctx := context.Background()

	stubInput(t, "Night Shift", "Jane Doe", "John Roe")
	require.NoError(t, a.NewShift(ctx))
	require.NoError(t, a.AddPatient(ctx))
	first := a.sel.PatientID
	require.NoError(t, a.AddPatient(ctx))

	assert.NotEqual(t, first, a.sel.PatientID)
	assert.Equal(t, "John Roe", a.patientName)
}

func TestArchive_TogglesAndKeepsSelection(t *testing.T) {
	a := newLocalApp(t)
	ctx := context.Background()

	stubInput(t, "Night Shift", "Jane Doe")
	require.NoError(t, a.NewShift(ctx))
	require.NoError(t, a.AddPatient(ctx))
	selected := a.sel.PatientID

	require.NoError(t, a.Archive(ctx))
	assert.Equal(t, selected, a.sel.PatientID, "archiving must not deselect")

	patients, err := a.repo.ListPatients(ctx, a.sel.ShiftID)
	require.NoError(t, err)
	require.Len(t, patients, 1)
	assert.True(t, patients[0].Archived)

	require.NoError(t, a.Archive(ctx))
	patients, err = a.repo.ListPatients(ctx, a.sel.ShiftID)
	require.NoError(t, err)
	assert.False(t, patients[0].Archived)
}

func TestDelPatient_FallsBackToFirstActive(t *testing.T) {
	a := newLocalApp(t)
	ctx := context.Background()

	stubInput(t, "Night Shift", "Jane Doe", "John Roe", "y")
	require.NoError(t, a.NewShift(ctx))
	require.NoError(t, a.AddPatient(ctx))
	first := a.sel.PatientID
	require.NoError(t, a.AddPatient(ctx))

	require.NoError(t, a.DelPatient(ctx))
	assert.Equal(t, first, a.sel.PatientID)
	assert.Equal(t, "Jane Doe", a.patientName)
}

func TestDelShift_RemovesEverythingAndForgetsSort(t *testing.T) {
	a := newLocalApp(t)
	ctx := context.Background()

	stubInput(t, "Night Shift", "Jane Doe", "y")
	require.NoError(t, a.NewShift(ctx))
	require.NoError(t, a.AddPatient(ctx))

	shiftID := a.sel.ShiftID
	require.NoError(t, a.prefs.Set(shiftID, sorting.Pair{Active: sorting.AlphaAsc, Archived: sorting.AlphaDesc}))

	require.NoError(t, a.DelShift(ctx))

	shifts, err := a.repo.ListShifts(ctx)
	require.NoError(t, err)
	assert.Empty(t, shifts)
	assert.Empty(t, a.sel.ShiftID)
	assert.Equal(t, sorting.DefaultPair(), a.prefs.Get(shiftID))
}

func TestDelShift_CancelledKeepsShift(t *testing.T) {
	a := newLocalApp(t)
	ctx := context.Background()

	stubInput(t, "Night Shift", "n")
	require.NoError(t, a.NewShift(ctx))
	require.NoError(t, a.DelShift(ctx))

	shifts, err := a.repo.ListShifts(ctx)
	require.NoError(t, err)
	assert.Len(t, shifts, 1)
}

func TestCycleSort_PersistsPerShift(t *testing.T) {
	a := newLocalApp(t)
	ctx := context.Background()

	stubInput(t, "Night Shift")
	require.NoError(t, a.NewShift(ctx))
	shiftID := a.sel.ShiftID

	require.NoError(t, a.CycleSort(ctx))
	assert.Equal(t, sorting.TimeAsc, a.prefs.Get(shiftID).Active)
	assert.Equal(t, sorting.Default, a.prefs.Get(shiftID).Archived, "archived order is untouched")

	require.NoError(t, a.CycleSort(ctx))
	require.NoError(t, a.CycleSort(ctx))
	require.NoError(t, a.CycleSort(ctx))
	assert.Equal(t, sorting.Default, a.prefs.Get(shiftID).Active, "cycle wraps around")

	require.NoError(t, a.CycleSortArchived(ctx))
	assert.Equal(t, sorting.TimeAsc, a.prefs.Get(shiftID).Archived)
	assert.Equal(t, sorting.Default, a.prefs.Get(shiftID).Active, "active order is untouched")
}

func TestCycleSort_ArchivedPartitionKeepsItsOrder(t *testing.T) {
	a := newLocalApp(t)
	ctx := context.Background()

	stubInput(t, "Night Shift", "Alice", "Bob", "Carol", "Dave")
	require.NoError(t, a.NewShift(ctx))
	require.NoError(t, a.AddPatient(ctx))
	require.NoError(t, a.AddPatient(ctx))
	require.NoError(t, a.AddPatient(ctx))
	require.NoError(t, a.AddPatient(ctx))

	// archive Carol and Dave; the newest-first default lists them Dave, Carol
	patients, err := a.repo.ListPatients(ctx, a.sel.ShiftID)
	require.NoError(t, err)
	archived := true
	for _, p := range patients {
		if p.Name == "Carol" || p.Name == "Dave" {
			_, err = a.repo.UpdatePatient(ctx, p.ID, models.PatientUpdate{Archived: &archived})
			require.NoError(t, err)
		}
	}

	names := func() []string {
		listed, derr := a.displayPatients(ctx)
		require.NoError(t, derr)
		out := make([]string, len(listed))
		for i, p := range listed {
			out[i] = p.Name
		}
		return out
	}

	assert.Equal(t, []string{"Bob", "Alice", "Dave", "Carol"}, names())

	// cycling the active order reorders only the active partition
	require.NoError(t, a.CycleSort(ctx))
	assert.Equal(t, []string{"Alice", "Bob", "Dave", "Carol"}, names())

	require.NoError(t, a.CycleSortArchived(ctx))
	assert.Equal(t, []string{"Alice", "Bob", "Carol", "Dave"}, names())
}

func TestNotesFlow(t *testing.T) {
	a := newLocalApp(t)
	ctx := context.Background()

	stubInput(t, "Night Shift", "Jane Doe", "BP 120/80", "1", "BP 130/85")
	require.NoError(t, a.NewShift(ctx))
	require.NoError(t, a.AddPatient(ctx))
	require.NoError(t, a.AddNote(ctx))
	require.NoError(t, a.EditNote(ctx))

	notes, err := a.repo.ListNotes(ctx, a.sel.PatientID)
	require.NoError(t, err)
	require.Len(t, notes, 1)
	assert.Equal(t, "BP 130/85", notes[0].Content)
	assert.NotNil(t, notes[0].EditedAt)
}

func TestRestoreSelection_PersistsAcrossApps(t *testing.T) {
	a := newLocalApp(t)
	ctx := context.Background()

	stubInput(t, "First", "Second", "1")
	require.NoError(t, a.NewShift(ctx))
	require.NoError(t, a.NewShift(ctx))
	require.NoError(t, a.Use(ctx))
	firstID := a.sel.ShiftID

	b := &App{
		config: a.config,
		repo:   a.repo,
		keeper: a.keeper,
		prefs:  a.prefs,
		reader: bufio.NewReader(strings.NewReader("")),
		out:    io.Discard,
	}
	b.restoreSelection(ctx)
	assert.Equal(t, firstID, b.sel.ShiftID)
	assert.Equal(t, "First", b.shiftName)
}
