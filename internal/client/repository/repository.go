// Package repository defines the backend contract shared by the local
// document store and the remote API client. The CLI talks to either
// through this interface and cannot tell them apart.
package repository

import (
	"context"

	"github.com/mpetrenko/shiftnotes/internal/models"
)

// Repository describes CRUD operations over the shift → patient → note
// hierarchy. Entity ids are globally unique, so child operations take only
// the entity's own id.
type Repository interface {
	// ListShifts returns all shifts in creation order.
	ListShifts(ctx context.Context) ([]models.Shift, error)

	// CreateShift adds a shift with the given name. The name is trimmed and
	// must be non-empty.
	CreateShift(ctx context.Context, name string) (*models.Shift, error)

	// RenameShift replaces the shift's name.
	RenameShift(ctx context.Context, shiftID, name string) (*models.Shift, error)

	// DeleteShift removes the shift together with its patients and their
	// notes.
	DeleteShift(ctx context.Context, shiftID string) error

	// ListPatients returns the shift's patients. The remote backend fails
	// with NotFound when the shift does not exist; the local backend treats
	// a missing shift as an empty list.
	ListPatients(ctx context.Context, shiftID string) ([]models.Patient, error)

	// CreatePatient adds a patient to the shift.
	CreatePatient(ctx context.Context, shiftID, name string) (*models.Patient, error)

	// UpdatePatient applies a partial update; nil fields are left untouched.
	UpdatePatient(ctx context.Context, patientID string, upd models.PatientUpdate) (*models.Patient, error)

	// DeletePatient removes the patient together with its notes.
	DeletePatient(ctx context.Context, patientID string) error

	// ListNotes returns the patient's notes, oldest first. Missing-parent
	// behavior matches ListPatients.
	ListNotes(ctx context.Context, patientID string) ([]models.Note, error)

	// CreateNote appends a note to the patient.
	CreateNote(ctx context.Context, patientID, content string) (*models.Note, error)

	// UpdateNote replaces the note's content and stamps its edit time.
	UpdateNote(ctx context.Context, noteID, content string) (*models.Note, error)

	// DeleteNote removes a single note.
	DeleteNote(ctx context.Context, noteID string) error
}

// CurrentShiftKeeper is implemented by backends that persist the active
// shift pointer across sessions. The CLI type-asserts for it and falls back
// to in-memory tracking otherwise.
type CurrentShiftKeeper interface {
	CurrentShiftID(ctx context.Context) (string, error)
	SetCurrentShiftID(ctx context.Context, shiftID string) error
}
