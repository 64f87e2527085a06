package cli

import (
	"context"
	"fmt"
	"log"
	"strconv"

	"github.com/mpetrenko/shiftnotes/internal/models"
)

// getMultiline is an indirection over GetMultiline for tests.
var getMultiline = GetMultiline

func (a *App) listNotes(ctx context.Context) ([]models.Note, error) {
	if a.sel.PatientID == "" {
		printlnFn("No patient selected.")
		return nil, fmt.Errorf("no patient selected")
	}

	notes, err := a.repo.ListNotes(ctx, a.sel.PatientID)
	if err != nil {
		log.Println(err.Error())
		return nil, err
	}
	return notes, nil
}

func printNote(idx int, n models.Note) {
	stamp := n.CreatedAt.Local().Format("15:04")
	if n.EditedAt != nil {
		stamp += " (edited " + n.EditedAt.Local().Format("15:04") + ")"
	}
	printlnFn(fmt.Sprintf("%2d. %s  %s", idx+1, stamp, n.Content))
}

// Notes lists the selected patient's notes, oldest first.
func (a *App) Notes(ctx context.Context) error {
	notes, err := a.listNotes(ctx)
	if err != nil {
		return err
	}

	if len(notes) == 0 {
		printlnFn("No notes yet. Add one with 'note'.")
		return nil
	}

	printlnFn(fmt.Sprintf("Notes for %s:", a.patientName))
	for i, n := range notes {
		printNote(i, n)
	}
	return nil
}

// AddNote appends a note to the selected patient.
func (a *App) AddNote(ctx context.Context) error {
	if a.sel.PatientID == "" {
		printlnFn("No patient selected.")
		return nil
	}

	content, err := getMultiline(a.reader, "Enter note text", a.out)
	if err != nil {
		return err
	}

	if _, err := a.repo.CreateNote(ctx, a.sel.PatientID, content); err != nil {
		log.Println(err.Error())
		return err
	}

	printlnFn("Note added.")
	return nil
}

// pickNote lists the notes and asks for a number.
func (a *App) pickNote(ctx context.Context) (*models.Note, error) {
	notes, err := a.listNotes(ctx)
	if err != nil {
		return nil, err
	}
	if len(notes) == 0 {
		printlnFn("No notes yet.")
		return nil, nil
	}

	for i, n := range notes {
		printNote(i, n)
	}

	answer, err := getSimpleText(a.reader, "Enter note number", a.out)
	if err != nil {
		return nil, err
	}
	n, err := strconv.Atoi(answer)
	if err != nil || n < 1 || n > len(notes) {
		printlnFn("Invalid number.")
		return nil, nil
	}
	return &notes[n-1], nil
}

// EditNote replaces a note's content and stamps the edit time.
func (a *App) EditNote(ctx context.Context) error {
	note, err := a.pickNote(ctx)
	if err != nil || note == nil {
		return err
	}

	content, err := getMultiline(a.reader, "Enter new text", a.out)
	if err != nil {
		return err
	}

	if _, err := a.repo.UpdateNote(ctx, note.ID, content); err != nil {
		log.Println(err.Error())
		return err
	}

	printlnFn("Note updated.")
	return nil
}

// DelNote deletes a single note.
func (a *App) DelNote(ctx context.Context) error {
	note, err := a.pickNote(ctx)
	if err != nil || note == nil {
		return err
	}

	if err := a.repo.DeleteNote(ctx, note.ID); err != nil {
		log.Println(err.Error())
		return err
	}

	printlnFn("Note deleted.")
	return nil
}
