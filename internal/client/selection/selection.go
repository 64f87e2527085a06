// Package selection tracks which shift and patient are active. All
// transitions are pure: they take the current entity lists and return the
// next state, so the rules are the same for both backends and are easy to
// test.
package selection

import "github.com/mpetrenko/shiftnotes/internal/models"

// State holds the active shift and patient ids. Empty means nothing is
// selected at that level.
type State struct {
	ShiftID   string
	PatientID string
}

// firstPick prefers the first non-archived patient and falls back to the
// first patient when every one of them is archived.
func firstPick(patients []models.Patient) string {
	for _, p := range patients {
		if !p.Archived {
			return p.ID
		}
	}
	if len(patients) > 0 {
		return patients[0].ID
	}
	return ""
}

func shiftExists(shifts []models.Shift, id string) bool {
	for _, sh := range shifts {
		if sh.ID == id {
			return true
		}
	}
	return false
}

func patientExists(patients []models.Patient, id string) bool {
	for _, p := range patients {
		if p.ID == id {
			return true
		}
	}
	return false
}

// ShiftsChanged revalidates the active shift against the new list. A
// vanished shift falls back to the first one; changing shifts clears the
// patient selection.
func (s State) ShiftsChanged(shifts []models.Shift) State {
	if s.ShiftID != "" && shiftExists(shifts, s.ShiftID) {
		return s
	}

	next := State{}
	if len(shifts) > 0 {
		next.ShiftID = shifts[0].ID
	}
	return next
}

// SwitchShift activates the given shift if it exists; otherwise the state
// is unchanged. Switching always clears the patient selection.
func (s State) SwitchShift(shifts []models.Shift, shiftID string) State {
	if !shiftExists(shifts, shiftID) {
		return s
	}
	if s.ShiftID == shiftID {
		return s
	}
	return State{ShiftID: shiftID}
}

// PatientsChanged revalidates the patient selection against the new list.
// A still-present patient stays selected even when archived; a vanished
// one falls back to the first non-archived patient.
func (s State) PatientsChanged(patients []models.Patient) State {
	if s.PatientID != "" && patientExists(patients, s.PatientID) {
		return s
	}
	s.PatientID = firstPick(patients)
	return s
}

// SelectPatient activates the given patient if it exists; otherwise the
// state is unchanged. Archived patients can be selected explicitly.
func (s State) SelectPatient(patients []models.Patient, patientID string) State {
	if !patientExists(patients, patientID) {
		return s
	}
	s.PatientID = patientID
	return s
}
