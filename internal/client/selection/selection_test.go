package selection

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/mpetrenko/shiftnotes/internal/models"
)

func shifts(ids ...string) []models.Shift {
	out := make([]models.Shift, 0, len(ids))
	for _, id := range ids {
		out = append(out, models.Shift{ID: id, Name: "shift " + id})
	}
	return out
}

func patient(id string, archived bool) models.Patient {
	return models.Patient{ID: id, Name: "patient " + id, Archived: archived}
}

func TestShiftsChanged(t *testing.T) {
	t.Run("empty list clears everything", func(t *testing.T) {
		s := State{ShiftID: "s1", PatientID: "p1"}.ShiftsChanged(nil)
		assert.Equal(t, State{}, s)
	})

	t.Run("picks first shift when nothing selected", func(t *testing.T) {
		s := State{}.ShiftsChanged(shifts("s1", "s2"))
		assert.Equal(t, "s1", s.ShiftID)
		assert.Empty(t, s.PatientID)
	})

	t.Run("keeps surviving selection", func(t *testing.T) {
		s := State{ShiftID: "s2", PatientID: "p1"}.ShiftsChanged(shifts("s1", "s2"))
		assert.Equal(t, "s2", s.ShiftID)
		assert.Equal(t, "p1", s.PatientID, "patient selection survives a no-op refresh")
	})

	t.Run("vanished shift falls back to first and clears patient", func(t *testing.T) {
		s := State{ShiftID: "gone", PatientID: "p1"}.ShiftsChanged(shifts("s1", "s2"))
		assert.Equal(t, "s1", s.ShiftID)
		assert.Empty(t, s.PatientID)
	})
}

func TestSwitchShift(t *testing.T) {
	list := shifts("s1", "s2")

	t.Run("switch clears patient", func(t *testing.T) {
		s := State{ShiftID: "s1", PatientID: "p1"}.SwitchShift(list, "s2")
		assert.Equal(t, State{ShiftID: "s2"}, s)
	})

	t.Run("unknown shift is a no-op", func(t *testing.T) {
		s := State{ShiftID: "s1", PatientID: "p1"}.SwitchShift(list, "nope")
		assert.Equal(t, State{ShiftID: "s1", PatientID: "p1"}, s)
	})

	t.Run("switching to the current shift keeps patient", func(t *testing.T) {
		s := State{ShiftID: "s1", PatientID: "p1"}.SwitchShift(list, "s1")
		assert.Equal(t, "p1", s.PatientID)
	})
}

func TestPatientsChanged(t *testing.T) {
	t.Run("auto-selects first non-archived", func(t *testing.T) {
		list := []models.Patient{patient("p1", true), patient("p2", false), patient("p3", false)}
		s := State{ShiftID: "s1"}.PatientsChanged(list)
		assert.Equal(t, "p2", s.PatientID)
	})

	t.Run("all archived falls back to first", func(t *testing.T) {
		list := []models.Patient{patient("p1", true), patient("p2", true)}
		s := State{ShiftID: "s1"}.PatientsChanged(list)
		assert.Equal(t, "p1", s.PatientID)
	})

	t.Run("empty list clears selection", func(t *testing.T) {
		s := State{ShiftID: "s1", PatientID: "p1"}.PatientsChanged(nil)
		assert.Empty(t, s.PatientID)
	})

	t.Run("archived but surviving patient stays selected", func(t *testing.T) {
		list := []models.Patient{patient("p1", true), patient("p2", false)}
		s := State{ShiftID: "s1", PatientID: "p1"}.PatientsChanged(list)
		assert.Equal(t, "p1", s.PatientID)
	})

	t.Run("deleted selection falls back to first non-archived", func(t *testing.T) {
		list := []models.Patient{patient("p1", true), patient("p2", false)}
		s := State{ShiftID: "s1", PatientID: "gone"}.PatientsChanged(list)
		assert.Equal(t, "p2", s.PatientID)
	})
}

func TestSelectPatient(t *testing.T) {
	list := []models.Patient{patient("p1", false), patient("p2", true)}

	t.Run("explicit select", func(t *testing.T) {
		s := State{ShiftID: "s1", PatientID: "p1"}.SelectPatient(list, "p2")
		assert.Equal(t, "p2", s.PatientID, "archived patients are selectable")
	})

	t.Run("unknown id is a no-op", func(t *testing.T) {
		s := State{ShiftID: "s1", PatientID: "p1"}.SelectPatient(list, "nope")
		assert.Equal(t, "p1", s.PatientID)
	})
}

func TestDeleteThenRefreshSequence(t *testing.T) {
	// Simulates the flow after deleting the selected patient: the caller
	// reloads the list and feeds it back through PatientsChanged.
	list := []models.Patient{patient("p1", false), patient("p2", false), patient("p3", true)}

	s := State{ShiftID: "s1"}.PatientsChanged(list)
	assert.Equal(t, "p1", s.PatientID)

	s = s.SelectPatient(list, "p2")
	list = []models.Patient{patient("p1", false), patient("p3", true)}

	s = s.PatientsChanged(list)
	assert.Equal(t, "p1", s.PatientID)
}
