package cli

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strconv"

	"github.com/mpetrenko/shiftnotes/internal/common"
)

// Shifts lists all shifts, marking the current one.
func (a *App) Shifts(ctx context.Context) error {
	shifts, err := a.refreshShifts(ctx)
	if err != nil {
		return err
	}

	if len(shifts) == 0 {
		printlnFn("No shifts yet. Create one with 'newshift'.")
		return nil
	}

	for i, sh := range shifts {
		marker := " "
		if sh.ID == a.sel.ShiftID {
			marker = "*"
		}
		printlnFn(fmt.Sprintf("%s %2d. %s (%s)", marker, i+1, sh.Name, sh.CreatedAt.Local().Format("2006-01-02 15:04")))
	}
	return nil
}

// NewShift creates a shift and makes it the current one.
func (a *App) NewShift(ctx context.Context) error {
	name, err := getSimpleText(a.reader, "Enter shift name", a.out)
	if err != nil {
		return err
	}

	shift, err := a.repo.CreateShift(ctx, name)
	if err != nil {
		log.Println(err.Error())
		return err
	}

	shifts, err := a.refreshShifts(ctx)
	if err != nil {
		return err
	}
	a.switchShift(ctx, shifts, shift.ID)

	printlnFn(fmt.Sprintf("Created shift %q, now current.", shift.Name))
	return nil
}

// Use switches the current shift by list number.
func (a *App) Use(ctx context.Context) error {
	shifts, err := a.refreshShifts(ctx)
	if err != nil {
		return err
	}
	if len(shifts) == 0 {
		printlnFn("No shifts yet. Create one with 'newshift'.")
		return nil
	}

	for i, sh := range shifts {
		printlnFn(fmt.Sprintf("%2d. %s", i+1, sh.Name))
	}

	answer, err := getSimpleText(a.reader, "Enter shift number", a.out)
	if err != nil {
		return err
	}
	n, err := strconv.Atoi(answer)
	if err != nil || n < 1 || n > len(shifts) {
		printlnFn("Invalid number.")
		return nil
	}

	a.switchShift(ctx, shifts, shifts[n-1].ID)
	printlnFn(fmt.Sprintf("Current shift: %s", a.shiftName))
	return nil
}

// RenameShift renames the current shift.
func (a *App) RenameShift(ctx context.Context) error {
	if a.sel.ShiftID == "" {
		printlnFn("No current shift.")
		return nil
	}

	name, err := getSimpleText(a.reader, fmt.Sprintf("Enter new name for %q", a.shiftName), a.out)
	if err != nil {
		return err
	}

	shift, err := a.repo.RenameShift(ctx, a.sel.ShiftID, name)
	if err != nil {
		log.Println(err.Error())
		return err
	}

	a.shiftName = shift.Name
	printlnFn("Renamed.")
	return nil
}

// DelShift deletes the current shift together with its patients and notes.
// An interrupted cascade leaves orphans behind; the command reports it and
// the user can simply run it again.
func (a *App) DelShift(ctx context.Context) error {
	if a.sel.ShiftID == "" {
		printlnFn("No current shift.")
		return nil
	}

	answer, err := getSimpleText(a.reader,
		fmt.Sprintf("Delete shift %q with all its patients and notes? (y/N)", a.shiftName), a.out)
	if err != nil {
		return err
	}
	if answer != "y" && answer != "Y" {
		printlnFn("Cancelled.")
		return nil
	}

	deletedID := a.sel.ShiftID
	if err := a.repo.DeleteShift(ctx, deletedID); err != nil {
		if errors.Is(err, common.ErrorPartialCascade) {
			printlnFn("Delete was interrupted partway; run 'delshift' again to finish cleanup.")
		}
		log.Println(err.Error())
		return err
	}

	if err := a.prefs.Forget(deletedID); err != nil {
		log.Println(err.Error())
	}

	if _, err := a.refreshShifts(ctx); err != nil {
		return err
	}
	printlnFn("Deleted.")
	return nil
}
