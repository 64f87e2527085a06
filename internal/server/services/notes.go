package services

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/mpetrenko/shiftnotes/internal/common"
	"github.com/mpetrenko/shiftnotes/internal/logging"
	"github.com/mpetrenko/shiftnotes/internal/models"
	"github.com/mpetrenko/shiftnotes/internal/server/store"
)

type NoteService struct {
	store  store.RecordStore
	logger logging.Logger
}

func NewNoteService(s store.RecordStore, l logging.Logger) *NoteService {
	return &NoteService{store: s, logger: l.With("module", "note_service")}
}

// List returns all notes under a patient, oldest first.
func (s *NoteService) List(ctx context.Context, userID, patientID string) ([]models.Note, error) {
	if _, err := findByOwnID(ctx, s.store, userID, store.TypePatient, patientID); err != nil {
		return nil, err
	}

	recs, err := s.store.QueryPrefix(ctx, userID, store.TypeNote+"#")
	if err != nil {
		return nil, fmt.Errorf("%w: %v", common.ErrorPersistence, err)
	}

	notes := make([]models.Note, 0, len(recs))
	for i := range recs {
		if store.ParentOf(recs[i].EntityID) != patientID {
			continue
		}
		var n models.Note
		if err := unmarshalEntity(&recs[i], &n); err != nil {
			return nil, err
		}
		notes = append(notes, n)
	}

	sort.Slice(notes, func(i, j int) bool { return notes[i].CreatedAt.Before(notes[j].CreatedAt) })
	return notes, nil
}

// Create validates the content, checks the parent patient exists and
// persists a new note under it.
func (s *NoteService) Create(ctx context.Context, userID, patientID, content string) (*models.Note, error) {
	content, ok := models.TrimRequired(content)
	if !ok {
		return nil, fmt.Errorf("%w: note content is required", common.ErrorValidation)
	}

	if _, err := findByOwnID(ctx, s.store, userID, store.TypePatient, patientID); err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	note := &models.Note{
		ID:        models.NewID(),
		Content:   content,
		CreatedAt: now,
	}

	data, err := marshalEntity(note)
	if err != nil {
		return nil, err
	}

	rec := store.Record{
		OwnerID:    userID,
		EntityID:   store.NoteKey(note.ID, patientID),
		EntityType: store.TypeNote,
		Data:       data,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	if err := s.store.Put(ctx, rec); err != nil {
		return nil, fmt.Errorf("%w: %v", common.ErrorPersistence, err)
	}

	s.logger.Info(ctx, "note created", "note_id", note.ID, "patient_id", patientID)
	return note, nil
}

// Update replaces the note's content and stamps its edited time.
func (s *NoteService) Update(ctx context.Context, userID, noteID, content string) (*models.Note, error) {
	content, ok := models.TrimRequired(content)
	if !ok {
		return nil, fmt.Errorf("%w: note content is required", common.ErrorValidation)
	}

	rec, err := findByOwnID(ctx, s.store, userID, store.TypeNote, noteID)
	if err != nil {
		return nil, err
	}

	note := &models.Note{}
	if err := unmarshalEntity(rec, note); err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	note.Content = content
	note.EditedAt = &now

	data, err := marshalEntity(note)
	if err != nil {
		return nil, err
	}

	rec.Data = data
	rec.UpdatedAt = now
	if err := s.store.Put(ctx, *rec); err != nil {
		return nil, fmt.Errorf("%w: %v", common.ErrorPersistence, err)
	}
	return note, nil
}

// Delete removes a single note. Notes have no descendants, so there is no
// cascade phase.
func (s *NoteService) Delete(ctx context.Context, userID, noteID string) error {
	rec, err := findByOwnID(ctx, s.store, userID, store.TypeNote, noteID)
	if err != nil {
		return err
	}

	if err := s.store.Delete(ctx, userID, rec.EntityID); err != nil {
		return fmt.Errorf("%w: %v", common.ErrorPersistence, err)
	}
	return nil
}
