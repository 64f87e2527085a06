package cli

import (
	"context"
	"fmt"
	"log"
	"strconv"

	"github.com/mpetrenko/shiftnotes/internal/client/sorting"
	"github.com/mpetrenko/shiftnotes/internal/models"
)

// displayPatients returns the current shift's patients in display order:
// active first, archived after, each partition sorted by its own stored
// sort option.
func (a *App) displayPatients(ctx context.Context) ([]models.Patient, error) {
	patients, err := a.refreshPatients(ctx)
	if err != nil {
		return nil, err
	}

	pair := a.prefs.Get(a.sel.ShiftID)
	active, archived := sorting.Partition(patients)
	active = sorting.Sort(active, pair.Active)
	archived = sorting.Sort(archived, pair.Archived)
	return append(active, archived...), nil
}

func (a *App) printPatient(idx int, p models.Patient) {
	marker := " "
	if p.ID == a.sel.PatientID {
		marker = "*"
	}
	suffix := ""
	if p.Archived {
		suffix = " [archived]"
	}
	printlnFn(fmt.Sprintf("%s %2d. [%s] %s%s", marker, idx+1, models.Initials(p.Name), p.Name, suffix))
}

// Patients lists the current shift's patients, selected one marked.
func (a *App) Patients(ctx context.Context) error {
	patients, err := a.displayPatients(ctx)
	if err != nil {
		return err
	}

	if len(patients) == 0 {
		printlnFn("No patients in this shift. Add one with 'add'.")
		return nil
	}

	pair := a.prefs.Get(a.sel.ShiftID)
	printlnFn(fmt.Sprintf("Patients of %q (active: %s, archived: %s):",
		a.shiftName, pair.Active.Label(), pair.Archived.Label()))
	for i, p := range patients {
		a.printPatient(i, p)
	}
	return nil
}

// AddPatient creates a patient in the current shift and selects it.
func (a *App) AddPatient(ctx context.Context) error {
	if a.sel.ShiftID == "" {
		printlnFn("No current shift. Create one with 'newshift'.")
		return nil
	}

	name, err := getSimpleText(a.reader, "Enter patient name", a.out)
	if err != nil {
		return err
	}

	patient, err := a.repo.CreatePatient(ctx, a.sel.ShiftID, name)
	if err != nil {
		log.Println(err.Error())
		return err
	}

	patients, err := a.refreshPatients(ctx)
	if err != nil {
		return err
	}
	a.sel = a.sel.SelectPatient(patients, patient.ID)
	a.patientName = patientNameByID(patients, a.sel.PatientID)

	printlnFn(fmt.Sprintf("Added %q, now selected.", patient.Name))
	return nil
}

// Select picks a patient by display list number.
func (a *App) Select(ctx context.Context) error {
	patients, err := a.displayPatients(ctx)
	if err != nil {
		return err
	}
	if len(patients) == 0 {
		printlnFn("No patients in this shift. Add one with 'add'.")
		return nil
	}

	for i, p := range patients {
		a.printPatient(i, p)
	}

	answer, err := getSimpleText(a.reader, "Enter patient number", a.out)
	if err != nil {
		return err
	}
	n, err := strconv.Atoi(answer)
	if err != nil || n < 1 || n > len(patients) {
		printlnFn("Invalid number.")
		return nil
	}

	a.sel = a.sel.SelectPatient(patients, patients[n-1].ID)
	a.patientName = patientNameByID(patients, a.sel.PatientID)
	printlnFn(fmt.Sprintf("Selected: %s", a.patientName))
	return nil
}

// RenamePatient renames the selected patient.
func (a *App) RenamePatient(ctx context.Context) error {
	if a.sel.PatientID == "" {
		printlnFn("No patient selected.")
		return nil
	}

	name, err := getSimpleText(a.reader, fmt.Sprintf("Enter new name for %q", a.patientName), a.out)
	if err != nil {
		return err
	}

	patient, err := a.repo.UpdatePatient(ctx, a.sel.PatientID, models.PatientUpdate{Name: &name})
	if err != nil {
		log.Println(err.Error())
		return err
	}

	a.patientName = patient.Name
	printlnFn("Renamed.")
	return nil
}

// Archive toggles the archived flag on the selected patient. The patient
// stays selected either way.
func (a *App) Archive(ctx context.Context) error {
	if a.sel.PatientID == "" {
		printlnFn("No patient selected.")
		return nil
	}

	patients, err := a.refreshPatients(ctx)
	if err != nil {
		return err
	}

	var current *models.Patient
	for i := range patients {
		if patients[i].ID == a.sel.PatientID {
			current = &patients[i]
			break
		}
	}
	if current == nil {
		printlnFn("No patient selected.")
		return nil
	}

	archived := !current.Archived
	patient, err := a.repo.UpdatePatient(ctx, a.sel.PatientID, models.PatientUpdate{Archived: &archived})
	if err != nil {
		log.Println(err.Error())
		return err
	}

	if patient.Archived {
		printlnFn(fmt.Sprintf("Archived %q.", patient.Name))
	} else {
		printlnFn(fmt.Sprintf("Unarchived %q.", patient.Name))
	}
	return nil
}

// DelPatient deletes the selected patient with its notes; the selection
// falls back to the first remaining non-archived patient.
func (a *App) DelPatient(ctx context.Context) error {
	if a.sel.PatientID == "" {
		printlnFn("No patient selected.")
		return nil
	}

	answer, err := getSimpleText(a.reader,
		fmt.Sprintf("Delete patient %q with all notes? (y/N)", a.patientName), a.out)
	if err != nil {
		return err
	}
	if answer != "y" && answer != "Y" {
		printlnFn("Cancelled.")
		return nil
	}

	if err := a.repo.DeletePatient(ctx, a.sel.PatientID); err != nil {
		log.Println(err.Error())
		return err
	}

	a.sel.PatientID = ""
	if _, err := a.refreshPatients(ctx); err != nil {
		return err
	}
	printlnFn("Deleted.")
	return nil
}

// CycleSort advances the active partition's sort order to the next option
// in the cycle and persists the choice. The archived partition keeps its
// own order.
func (a *App) CycleSort(ctx context.Context) error {
	if a.sel.ShiftID == "" {
		printlnFn("No current shift.")
		return nil
	}

	pair := a.prefs.Get(a.sel.ShiftID)
	pair.Active = pair.Active.Next()
	if err := a.prefs.Set(a.sel.ShiftID, pair); err != nil {
		log.Println(err.Error())
		return err
	}

	printlnFn(fmt.Sprintf("Active sort order: %s", pair.Active.Label()))
	return a.Patients(ctx)
}

// CycleSortArchived is CycleSort for the archived partition.
func (a *App) CycleSortArchived(ctx context.Context) error {
	if a.sel.ShiftID == "" {
		printlnFn("No current shift.")
		return nil
	}

	pair := a.prefs.Get(a.sel.ShiftID)
	pair.Archived = pair.Archived.Next()
	if err := a.prefs.Set(a.sel.ShiftID, pair); err != nil {
		log.Println(err.Error())
		return err
	}

	printlnFn(fmt.Sprintf("Archived sort order: %s", pair.Archived.Label()))
	return a.Patients(ctx)
}
