package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/mpetrenko/shiftnotes/internal/common"
	"github.com/mpetrenko/shiftnotes/internal/logging"
	"github.com/mpetrenko/shiftnotes/internal/models"
	"github.com/mpetrenko/shiftnotes/internal/server/store"
)

type PatientService struct {
	store  store.RecordStore
	logger logging.Logger
}

func NewPatientService(s store.RecordStore, l logging.Logger) *PatientService {
	return &PatientService{store: s, logger: l.With("module", "patient_service")}
}

// List returns all patients under a shift. The store only supports prefix
// match on the composite key, so this queries the whole PATIENT# range and
// filters on the parent segment application-side.
func (s *PatientService) List(ctx context.Context, userID, shiftID string) ([]models.Patient, error) {
	if _, err := s.store.Get(ctx, userID, store.ShiftKey(shiftID)); err != nil {
		return nil, err
	}

	recs, err := s.store.QueryPrefix(ctx, userID, store.TypePatient+"#")
	if err != nil {
		return nil, fmt.Errorf("%w: %v", common.ErrorPersistence, err)
	}

	patients := make([]models.Patient, 0, len(recs))
	for i := range recs {
		if store.ParentOf(recs[i].EntityID) != shiftID {
			continue
		}
		var p models.Patient
		if err := unmarshalEntity(&recs[i], &p); err != nil {
			return nil, err
		}
		// notes are listed separately, per patient
		p.Notes = []models.Note{}
		patients = append(patients, p)
	}
	return patients, nil
}

// Get returns one patient by its own id.
func (s *PatientService) Get(ctx context.Context, userID, patientID string) (*models.Patient, error) {
	rec, err := findByOwnID(ctx, s.store, userID, store.TypePatient, patientID)
	if err != nil {
		return nil, err
	}
	p := &models.Patient{}
	if err := unmarshalEntity(rec, p); err != nil {
		return nil, err
	}
	p.Notes = []models.Note{}
	return p, nil
}

// Create validates the name, checks the parent shift exists and persists a
// new patient under it.
func (s *PatientService) Create(ctx context.Context, userID, shiftID, name string) (*models.Patient, error) {
	name, ok := models.TrimRequired(name)
	if !ok {
		return nil, fmt.Errorf("%w: patient name is required", common.ErrorValidation)
	}

	if _, err := s.store.Get(ctx, userID, store.ShiftKey(shiftID)); err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	patient := &models.Patient{
		ID:        models.NewID(),
		Name:      name,
		Notes:     []models.Note{},
		Archived:  false,
		CreatedAt: now,
	}

	data, err := marshalEntity(patient)
	if err != nil {
		return nil, err
	}

	rec := store.Record{
		OwnerID:    userID,
		EntityID:   store.PatientKey(patient.ID, shiftID),
		EntityType: store.TypePatient,
		Data:       data,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	if err := s.store.Put(ctx, rec); err != nil {
		return nil, fmt.Errorf("%w: %v", common.ErrorPersistence, err)
	}

	s.logger.Info(ctx, "patient created", "patient_id", patient.ID, "shift_id", shiftID)
	return patient, nil
}

// Update applies a partial update: only the provided fields change, and the
// record's updated timestamp advances.
func (s *PatientService) Update(ctx context.Context, userID, patientID string, upd models.PatientUpdate) (*models.Patient, error) {
	if upd.Name != nil {
		name, ok := models.TrimRequired(*upd.Name)
		if !ok {
			return nil, fmt.Errorf("%w: patient name is required", common.ErrorValidation)
		}
		upd.Name = &name
	}

	rec, err := findByOwnID(ctx, s.store, userID, store.TypePatient, patientID)
	if err != nil {
		return nil, err
	}

	patient := &models.Patient{}
	if err := unmarshalEntity(rec, patient); err != nil {
		return nil, err
	}

	if upd.Name != nil {
		patient.Name = *upd.Name
	}
	if upd.Archived != nil {
		patient.Archived = *upd.Archived
	}

	data, err := marshalEntity(patient)
	if err != nil {
		return nil, err
	}

	rec.Data = data
	rec.UpdatedAt = time.Now().UTC()
	if err := s.store.Put(ctx, *rec); err != nil {
		return nil, fmt.Errorf("%w: %v", common.ErrorPersistence, err)
	}

	patient.Notes = []models.Note{}
	return patient, nil
}

// Delete removes the patient record, then its notes in sequential bounded
// batches. Same partial-failure contract as shift deletion: a failed
// cascade returns ErrorPartialCascade and re-invoking the delete retries
// the remaining notes even after the patient record itself is gone.
func (s *PatientService) Delete(ctx context.Context, userID, patientID string) error {
	rec, err := findByOwnID(ctx, s.store, userID, store.TypePatient, patientID)
	if err != nil {
		// the primary record may already be gone from an earlier partial
		// delete; retry the note cascade in that case instead of failing
		if !errors.Is(err, common.ErrorNotFound) {
			return err
		}
		orphans, oerr := s.noteKeys(ctx, userID, patientID)
		if oerr != nil || len(orphans) == 0 {
			return common.ErrorNotFound
		}
	} else if derr := s.store.Delete(ctx, userID, rec.EntityID); derr != nil {
		return fmt.Errorf("%w: %v", common.ErrorPersistence, derr)
	}

	keys, err := s.noteKeys(ctx, userID, patientID)
	if err != nil {
		return fmt.Errorf("%w: enumerating notes: %v", common.ErrorPartialCascade, err)
	}
	if len(keys) == 0 {
		return nil
	}

	if err := s.store.BatchDelete(ctx, userID, keys); err != nil {
		s.logger.Error(ctx, "cascade delete failed", "patient_id", patientID, "error", err.Error())
		return fmt.Errorf("%w: %v", common.ErrorPartialCascade, err)
	}

	s.logger.Info(ctx, "patient deleted", "patient_id", patientID, "notes", len(keys))
	return nil
}

// noteKeys collects the composite keys of every note whose parent segment
// is the patient id.
func (s *PatientService) noteKeys(ctx context.Context, userID, patientID string) ([]string, error) {
	notes, err := s.store.QueryPrefix(ctx, userID, store.TypeNote+"#")
	if err != nil {
		return nil, err
	}
	var keys []string
	for i := range notes {
		if store.ParentOf(notes[i].EntityID) == patientID {
			keys = append(keys, notes[i].EntityID)
		}
	}
	return keys, nil
}
