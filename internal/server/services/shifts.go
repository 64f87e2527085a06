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

type ShiftService struct {
	store  store.RecordStore
	logger logging.Logger
}

func NewShiftService(s store.RecordStore, l logging.Logger) *ShiftService {
	return &ShiftService{store: s, logger: l.With("module", "shift_service")}
}

// List returns all shifts owned by the caller. Patient collections are not
// loaded here; they are listed per shift.
func (s *ShiftService) List(ctx context.Context, userID string) ([]models.Shift, error) {
	recs, err := s.store.QueryPrefix(ctx, userID, store.TypeShift+"#")
	if err != nil {
		return nil, fmt.Errorf("%w: %v", common.ErrorPersistence, err)
	}

	shifts := make([]models.Shift, 0, len(recs))
	for i := range recs {
		var shift models.Shift
		if err := unmarshalEntity(&recs[i], &shift); err != nil {
			return nil, err
		}
		shift.Patients = []models.Patient{}
		shifts = append(shifts, shift)
	}
	return shifts, nil
}

// Get returns one shift by id.
func (s *ShiftService) Get(ctx context.Context, userID, shiftID string) (*models.Shift, error) {
	rec, err := s.store.Get(ctx, userID, store.ShiftKey(shiftID))
	if err != nil {
		return nil, err
	}
	shift := &models.Shift{}
	if err := unmarshalEntity(rec, shift); err != nil {
		return nil, err
	}
	shift.Patients = []models.Patient{}
	return shift, nil
}

// Create validates the name and persists a new shift.
func (s *ShiftService) Create(ctx context.Context, userID, name string) (*models.Shift, error) {
	name, ok := models.TrimRequired(name)
	if !ok {
		return nil, fmt.Errorf("%w: shift name is required", common.ErrorValidation)
	}

	now := time.Now().UTC()
	shift := &models.Shift{
		ID:        models.NewID(),
		Name:      name,
		CreatedAt: now,
		Patients:  []models.Patient{},
	}

	data, err := marshalEntity(shift)
	if err != nil {
		return nil, err
	}

	rec := store.Record{
		OwnerID:    userID,
		EntityID:   store.ShiftKey(shift.ID),
		EntityType: store.TypeShift,
		Data:       data,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	if err := s.store.Put(ctx, rec); err != nil {
		return nil, fmt.Errorf("%w: %v", common.ErrorPersistence, err)
	}

	s.logger.Info(ctx, "shift created", "shift_id", shift.ID)
	return shift, nil
}

// Rename updates the shift's name, preserving everything else.
func (s *ShiftService) Rename(ctx context.Context, userID, shiftID, name string) (*models.Shift, error) {
	name, ok := models.TrimRequired(name)
	if !ok {
		return nil, fmt.Errorf("%w: shift name is required", common.ErrorValidation)
	}

	rec, err := s.store.Get(ctx, userID, store.ShiftKey(shiftID))
	if err != nil {
		return nil, err
	}

	shift := &models.Shift{}
	if err := unmarshalEntity(rec, shift); err != nil {
		return nil, err
	}
	shift.Name = name

	data, err := marshalEntity(shift)
	if err != nil {
		return nil, err
	}

	rec.Data = data
	rec.UpdatedAt = time.Now().UTC()
	if err := s.store.Put(ctx, *rec); err != nil {
		return nil, fmt.Errorf("%w: %v", common.ErrorPersistence, err)
	}

	shift.Patients = []models.Patient{}
	return shift, nil
}

// Delete removes the shift, then all its patients and their notes.
//
// Phase one deletes the shift record. Phase two enumerates descendants by
// parent segment (patients whose parent is the shift, notes whose parent is
// one of those patients) and removes them in sequential bounded batches. A
// phase-two failure leaves the store with orphaned descendants and returns
// ErrorPartialCascade; re-invoking the delete retries the cascade.
func (s *ShiftService) Delete(ctx context.Context, userID, shiftID string) error {
	key := store.ShiftKey(shiftID)

	if _, err := s.store.Get(ctx, userID, key); err != nil {
		// the primary record may already be gone from an earlier partial
		// delete; retry the cascade in that case instead of failing
		if !errors.Is(err, common.ErrorNotFound) {
			return fmt.Errorf("%w: %v", common.ErrorPersistence, err)
		}
		orphans, oerr := s.descendantKeys(ctx, userID, shiftID)
		if oerr != nil || len(orphans) == 0 {
			return common.ErrorNotFound
		}
	}

	if err := s.store.Delete(ctx, userID, key); err != nil {
		return fmt.Errorf("%w: %v", common.ErrorPersistence, err)
	}

	victims, err := s.descendantKeys(ctx, userID, shiftID)
	if err != nil {
		return fmt.Errorf("%w: enumerating descendants: %v", common.ErrorPartialCascade, err)
	}
	if len(victims) == 0 {
		return nil
	}

	if err := s.store.BatchDelete(ctx, userID, victims); err != nil {
		s.logger.Error(ctx, "cascade delete failed", "shift_id", shiftID, "error", err.Error())
		return fmt.Errorf("%w: %v", common.ErrorPartialCascade, err)
	}

	s.logger.Info(ctx, "shift deleted", "shift_id", shiftID, "descendants", len(victims))
	return nil
}

// descendantKeys collects the composite keys of every patient under the
// shift and every note under those patients. Matching is on the whole
// parent segment of the key, so an unrelated id that merely contains the
// shift id as a substring is never swept in.
func (s *ShiftService) descendantKeys(ctx context.Context, userID, shiftID string) ([]string, error) {
	patients, err := s.store.QueryPrefix(ctx, userID, store.TypePatient+"#")
	if err != nil {
		return nil, err
	}

	patientIDs := make(map[string]struct{})
	var keys []string
	for i := range patients {
		if store.ParentOf(patients[i].EntityID) != shiftID {
			continue
		}
		_, id, _ := store.SplitKey(patients[i].EntityID)
		patientIDs[id] = struct{}{}
		keys = append(keys, patients[i].EntityID)
	}
	if len(patientIDs) == 0 {
		return keys, nil
	}

	notes, err := s.store.QueryPrefix(ctx, userID, store.TypeNote+"#")
	if err != nil {
		return nil, err
	}
	for i := range notes {
		if _, ok := patientIDs[store.ParentOf(notes[i].EntityID)]; ok {
			keys = append(keys, notes[i].EntityID)
		}
	}
	return keys, nil
}
