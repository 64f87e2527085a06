// Package localstore persists the whole shift document as a single JSON
// file and implements the repository contract on top of it. Every mutation
// rewrites the file atomically, so a crash never leaves a torn document.
package localstore

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/mpetrenko/shiftnotes/internal/common"
	"github.com/mpetrenko/shiftnotes/internal/filex"
	"github.com/mpetrenko/shiftnotes/internal/logging"
	"github.com/mpetrenko/shiftnotes/internal/models"
)

const documentFileName = "notes.json"

// Store keeps the document in memory behind a mutex and mirrors every
// change to disk.
type Store struct {
	mu     sync.Mutex
	path   string
	doc    models.Document
	logger logging.Logger
}

// New opens (or creates) the document under dataDir and runs the load-time
// migration. A missing file yields an empty document; the file is not
// created until the first write.
func New(dataDir string, l logging.Logger) (*Store, error) {
	dir, err := filex.EnsureDir(dataDir)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", common.ErrorPersistence, err)
	}

	s := &Store{
		path:   filepath.Join(dir, documentFileName),
		logger: l.With("module", "localstore"),
	}

	if err := s.load(); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *Store) load() error {
	data, err := os.ReadFile(s.path)
	if os.IsNotExist(err) {
		s.doc = models.Document{Shifts: []models.Shift{}}
		return nil
	}
	if err != nil {
		return fmt.Errorf("%w: %v", common.ErrorPersistence, err)
	}

	var doc models.Document
	if err := json.Unmarshal(data, &doc); err != nil {
		return fmt.Errorf("%w: corrupt document %s: %v", common.ErrorPersistence, s.path, err)
	}
	if doc.Shifts == nil {
		doc.Shifts = []models.Shift{}
	}
	s.doc = doc

	if migrateCreatedAt(&s.doc) {
		s.logger.Info(context.Background(), "backfilled patient timestamps", "path", s.path)
		return s.save()
	}
	return nil
}

// migrateCreatedAt backfills Patient.CreatedAt from the id's leading
// millisecond segment on documents written before the field existed.
// Reports whether anything changed, so an already-migrated document is
// not rewritten.
func migrateCreatedAt(doc *models.Document) bool {
	changed := false
	for si := range doc.Shifts {
		for pi := range doc.Shifts[si].Patients {
			p := &doc.Shifts[si].Patients[pi]
			if !p.CreatedAt.IsZero() {
				continue
			}
			if ts, ok := models.IDTimestamp(p.ID); ok {
				p.CreatedAt = ts
				changed = true
			}
		}
	}
	return changed
}

// save must be called with the mutex held (or during load, before the
// store is shared).
func (s *Store) save() error {
	data, err := json.MarshalIndent(s.doc, "", "  ")
	if err != nil {
		return fmt.Errorf("%w: %v", common.ErrorPersistence, err)
	}
	if err := filex.WriteFileAtomic(s.path, data, 0o600); err != nil {
		return fmt.Errorf("%w: %v", common.ErrorPersistence, err)
	}
	return nil
}

func (s *Store) findShift(shiftID string) (*models.Shift, error) {
	for i := range s.doc.Shifts {
		if s.doc.Shifts[i].ID == shiftID {
			return &s.doc.Shifts[i], nil
		}
	}
	return nil, fmt.Errorf("%w: shift %s", common.ErrorNotFound, shiftID)
}

func (s *Store) findPatient(patientID string) (*models.Shift, *models.Patient, error) {
	for si := range s.doc.Shifts {
		shift := &s.doc.Shifts[si]
		for pi := range shift.Patients {
			if shift.Patients[pi].ID == patientID {
				return shift, &shift.Patients[pi], nil
			}
		}
	}
	return nil, nil, fmt.Errorf("%w: patient %s", common.ErrorNotFound, patientID)
}

func (s *Store) findNote(noteID string) (*models.Patient, *models.Note, error) {
	for si := range s.doc.Shifts {
		for pi := range s.doc.Shifts[si].Patients {
			p := &s.doc.Shifts[si].Patients[pi]
			for ni := range p.Notes {
				if p.Notes[ni].ID == noteID {
					return p, &p.Notes[ni], nil
				}
			}
		}
	}
	return nil, nil, fmt.Errorf("%w: note %s", common.ErrorNotFound, noteID)
}

func (s *Store) ListShifts(ctx context.Context) ([]models.Shift, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]models.Shift, 0, len(s.doc.Shifts))
	for _, sh := range s.doc.Shifts {
		sh.Patients = []models.Patient{}
		out = append(out, sh)
	}
	return out, nil
}

func (s *Store) CreateShift(ctx context.Context, name string) (*models.Shift, error) {
	name, ok := models.TrimRequired(name)
	if !ok {
		return nil, fmt.Errorf("%w: shift name is required", common.ErrorValidation)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	shift := models.Shift{
		ID:        models.NewID(),
		Name:      name,
		CreatedAt: time.Now().UTC(),
		Patients:  []models.Patient{},
	}
	s.doc.Shifts = append(s.doc.Shifts, shift)

	if err := s.save(); err != nil {
		return nil, err
	}
	return &shift, nil
}

func (s *Store) RenameShift(ctx context.Context, shiftID, name string) (*models.Shift, error) {
	name, ok := models.TrimRequired(name)
	if !ok {
		return nil, fmt.Errorf("%w: shift name is required", common.ErrorValidation)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	shift, err := s.findShift(shiftID)
	if err != nil {
		return nil, err
	}
	shift.Name = name

	if err := s.save(); err != nil {
		return nil, err
	}
	out := *shift
	out.Patients = []models.Patient{}
	return &out, nil
}

func (s *Store) DeleteShift(ctx context.Context, shiftID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	idx := -1
	for i := range s.doc.Shifts {
		if s.doc.Shifts[i].ID == shiftID {
			idx = i
			break
		}
	}
	if idx < 0 {
		return fmt.Errorf("%w: shift %s", common.ErrorNotFound, shiftID)
	}

	s.doc.Shifts = append(s.doc.Shifts[:idx], s.doc.Shifts[idx+1:]...)
	if s.doc.CurrentShiftID == shiftID {
		s.doc.CurrentShiftID = ""
	}
	return s.save()
}

func (s *Store) ListPatients(ctx context.Context, shiftID string) ([]models.Patient, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	// a missing parent is an empty list here; only mutations demand that
	// the parent exists
	shift, err := s.findShift(shiftID)
	if err != nil {
		return []models.Patient{}, nil
	}

	out := make([]models.Patient, 0, len(shift.Patients))
	for _, p := range shift.Patients {
		p.Notes = []models.Note{}
		out = append(out, p)
	}
	return out, nil
}

func (s *Store) CreatePatient(ctx context.Context, shiftID, name string) (*models.Patient, error) {
	name, ok := models.TrimRequired(name)
	if !ok {
		return nil, fmt.Errorf("%w: patient name is required", common.ErrorValidation)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	shift, err := s.findShift(shiftID)
	if err != nil {
		return nil, err
	}

	patient := models.Patient{
		ID:        models.NewID(),
		Name:      name,
		Notes:     []models.Note{},
		CreatedAt: time.Now().UTC(),
	}
	shift.Patients = append(shift.Patients, patient)

	if err := s.save(); err != nil {
		return nil, err
	}
	return &patient, nil
}

func (s *Store) UpdatePatient(ctx context.Context, patientID string, upd models.PatientUpdate) (*models.Patient, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, patient, err := s.findPatient(patientID)
	if err != nil {
		return nil, err
	}

	if upd.Name != nil {
		name, ok := models.TrimRequired(*upd.Name)
		if !ok {
			return nil, fmt.Errorf("%w: patient name is required", common.ErrorValidation)
		}
		patient.Name = name
	}
	if upd.Archived != nil {
		patient.Archived = *upd.Archived
	}

	if err := s.save(); err != nil {
		return nil, err
	}
	out := *patient
	out.Notes = []models.Note{}
	return &out, nil
}

func (s *Store) DeletePatient(ctx context.Context, patientID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for si := range s.doc.Shifts {
		shift := &s.doc.Shifts[si]
		for pi := range shift.Patients {
			if shift.Patients[pi].ID == patientID {
				shift.Patients = append(shift.Patients[:pi], shift.Patients[pi+1:]...)
				return s.save()
			}
		}
	}
	return fmt.Errorf("%w: patient %s", common.ErrorNotFound, patientID)
}

func (s *Store) ListNotes(ctx context.Context, patientID string) ([]models.Note, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, patient, err := s.findPatient(patientID)
	if err != nil {
		return []models.Note{}, nil
	}

	out := make([]models.Note, len(patient.Notes))
	copy(out, patient.Notes)
	return out, nil
}

func (s *Store) CreateNote(ctx context.Context, patientID, content string) (*models.Note, error) {
	content, ok := models.TrimRequired(content)
	if !ok {
		return nil, fmt.Errorf("%w: note content is required", common.ErrorValidation)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	_, patient, err := s.findPatient(patientID)
	if err != nil {
		return nil, err
	}

	note := models.Note{
		ID:        models.NewID(),
		Content:   content,
		CreatedAt: time.Now().UTC(),
	}
	patient.Notes = append(patient.Notes, note)

	if err := s.save(); err != nil {
		return nil, err
	}
	return &note, nil
}

func (s *Store) UpdateNote(ctx context.Context, noteID, content string) (*models.Note, error) {
	content, ok := models.TrimRequired(content)
	if !ok {
		return nil, fmt.Errorf("%w: note content is required", common.ErrorValidation)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	_, note, err := s.findNote(noteID)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	note.Content = content
	note.EditedAt = &now

	if err := s.save(); err != nil {
		return nil, err
	}
	out := *note
	return &out, nil
}

func (s *Store) DeleteNote(ctx context.Context, noteID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	patient, note, err := s.findNote(noteID)
	if err != nil {
		return err
	}

	for ni := range patient.Notes {
		if patient.Notes[ni].ID == note.ID {
			patient.Notes = append(patient.Notes[:ni], patient.Notes[ni+1:]...)
			break
		}
	}
	return s.save()
}

// CurrentShiftID returns the persisted active shift pointer, which may be
// empty or refer to a shift that no longer exists; callers validate it
// against the shift list.
func (s *Store) CurrentShiftID(ctx context.Context) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.doc.CurrentShiftID, nil
}

func (s *Store) SetCurrentShiftID(ctx context.Context, shiftID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.doc.CurrentShiftID == shiftID {
		return nil
	}
	s.doc.CurrentShiftID = shiftID
	return s.save()
}
