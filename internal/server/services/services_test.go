package services

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mpetrenko/shiftnotes/internal/common"
	"github.com/mpetrenko/shiftnotes/internal/logging"
	"github.com/mpetrenko/shiftnotes/internal/models"
	"github.com/mpetrenko/shiftnotes/internal/server/store"
)

const testUser = "u1"

func testLogger() logging.Logger {
	return logging.NewDiscardLogger()
}

func newServices(t *testing.T) (*store.MemoryStore, *ShiftService, *PatientService, *NoteService) {
	t.Helper()
	ms := store.NewMemoryStore()
	l := testLogger()
	return ms, NewShiftService(ms, l), NewPatientService(ms, l), NewNoteService(ms, l)
}

// failingStore wraps a RecordStore and fails BatchDelete, to exercise the
// partial-cascade path.
type failingStore struct {
	store.RecordStore
	batchErr error
}

func (f *failingStore) BatchDelete(ctx context.Context, ownerID string, ids []string) error {
	if f.batchErr != nil {
		return f.batchErr
	}
	return f.RecordStore.BatchDelete(ctx, ownerID, ids)
}

func TestShiftService_CreateAndList(t *testing.T) {
	ctx := context.Background()
	_, shifts, _, _ := newServices(t)

	created, err := shifts.Create(ctx, testUser, "  Night Shift ")
	require.NoError(t, err)
	assert.Equal(t, "Night Shift", created.Name, "name should be trimmed")
	assert.NotEmpty(t, created.ID)
	assert.False(t, created.CreatedAt.IsZero())

	listed, err := shifts.List(ctx, testUser)
	require.NoError(t, err)
	require.Len(t, listed, 1)
	assert.Equal(t, created.ID, listed[0].ID)
	assert.Equal(t, "Night Shift", listed[0].Name)

	// other callers see nothing
	other, err := shifts.List(ctx, "u2")
	require.NoError(t, err)
	assert.Empty(t, other)
}

func TestShiftService_Create_Validation(t *testing.T) {
	ctx := context.Background()
	_, shifts, _, _ := newServices(t)

	for _, name := range []string{"", "   ", "\t\n"} {
		_, err := shifts.Create(ctx, testUser, name)
		assert.ErrorIs(t, err, common.ErrorValidation, "name %q", name)
	}
}

func TestShiftService_Rename(t *testing.T) {
	ctx := context.Background()
	_, shifts, _, _ := newServices(t)

	created, err := shifts.Create(ctx, testUser, "Day")
	require.NoError(t, err)

	renamed, err := shifts.Rename(ctx, testUser, created.ID, "Evening")
	require.NoError(t, err)
	assert.Equal(t, "Evening", renamed.Name)
	assert.Equal(t, created.ID, renamed.ID)
	assert.Equal(t, created.CreatedAt.Unix(), renamed.CreatedAt.Unix())

	_, err = shifts.Rename(ctx, testUser, "missing", "X")
	assert.ErrorIs(t, err, common.ErrorNotFound)
}

func TestPatientService_CreateListUpdate(t *testing.T) {
	ctx := context.Background()
	_, shifts, patients, _ := newServices(t)

	shift, err := shifts.Create(ctx, testUser, "Night")
	require.NoError(t, err)

	_, err = patients.Create(ctx, testUser, "missing-shift", "Jane")
	assert.ErrorIs(t, err, common.ErrorNotFound, "parent must exist")

	_, err = patients.Create(ctx, testUser, shift.ID, "  ")
	assert.ErrorIs(t, err, common.ErrorValidation)

	jane, err := patients.Create(ctx, testUser, shift.ID, "Jane Doe")
	require.NoError(t, err)
	assert.False(t, jane.Archived)
	assert.False(t, jane.CreatedAt.IsZero())

	listed, err := patients.List(ctx, testUser, shift.ID)
	require.NoError(t, err)
	require.Len(t, listed, 1)
	assert.Equal(t, jane.ID, listed[0].ID)

	// partial update: archive only, name preserved
	archived := true
	upd, err := patients.Update(ctx, testUser, jane.ID, models.PatientUpdate{Archived: &archived})
	require.NoError(t, err)
	assert.True(t, upd.Archived)
	assert.Equal(t, "Jane Doe", upd.Name)
	assert.Equal(t, jane.CreatedAt.Unix(), upd.CreatedAt.Unix())

	// partial update: rename only, archived preserved
	name := "Jane D."
	upd, err = patients.Update(ctx, testUser, jane.ID, models.PatientUpdate{Name: &name})
	require.NoError(t, err)
	assert.Equal(t, "Jane D.", upd.Name)
	assert.True(t, upd.Archived)

	_, err = patients.Update(ctx, testUser, "missing", models.PatientUpdate{Name: &name})
	assert.ErrorIs(t, err, common.ErrorNotFound)
}

func TestPatientService_Update_AdvancesRecordTimestamp(t *testing.T) {
	ctx := context.Background()
	ms, shifts, patients, _ := newServices(t)

	shift, err := shifts.Create(ctx, testUser, "Night")
	require.NoError(t, err)
	jane, err := patients.Create(ctx, testUser, shift.ID, "Jane")
	require.NoError(t, err)

	before, err := ms.Get(ctx, testUser, store.PatientKey(jane.ID, shift.ID))
	require.NoError(t, err)

	name := "Janet"
	_, err = patients.Update(ctx, testUser, jane.ID, models.PatientUpdate{Name: &name})
	require.NoError(t, err)

	after, err := ms.Get(ctx, testUser, store.PatientKey(jane.ID, shift.ID))
	require.NoError(t, err)
	assert.False(t, after.UpdatedAt.Before(before.UpdatedAt))
	assert.Equal(t, before.CreatedAt, after.CreatedAt)
}

func TestNoteService_CRUD(t *testing.T) {
	ctx := context.Background()
	_, shifts, patients, notes := newServices(t)

	shift, err := shifts.Create(ctx, testUser, "Night")
	require.NoError(t, err)
	jane, err := patients.Create(ctx, testUser, shift.ID, "Jane")
	require.NoError(t, err)

	_, err = notes.Create(ctx, testUser, jane.ID, " ")
	assert.ErrorIs(t, err, common.ErrorValidation)

	_, err = notes.Create(ctx, testUser, "missing-patient", "BP 120/80")
	assert.ErrorIs(t, err, common.ErrorNotFound)

	first, err := notes.Create(ctx, testUser, jane.ID, "BP 120/80")
	require.NoError(t, err)
	assert.Nil(t, first.EditedAt)

	second, err := notes.Create(ctx, testUser, jane.ID, "Discharged")
	require.NoError(t, err)

	listed, err := notes.List(ctx, testUser, jane.ID)
	require.NoError(t, err)
	require.Len(t, listed, 2)
	// oldest first
	assert.Equal(t, first.ID, listed[0].ID)
	assert.Equal(t, second.ID, listed[1].ID)

	edited, err := notes.Update(ctx, testUser, first.ID, "BP 130/85")
	require.NoError(t, err)
	assert.Equal(t, "BP 130/85", edited.Content)
	require.NotNil(t, edited.EditedAt)
	assert.Equal(t, first.CreatedAt.Unix(), edited.CreatedAt.Unix())

	require.NoError(t, notes.Delete(ctx, testUser, second.ID))
	listed, err = notes.List(ctx, testUser, jane.ID)
	require.NoError(t, err)
	require.Len(t, listed, 1)

	assert.ErrorIs(t, notes.Delete(ctx, testUser, second.ID), common.ErrorNotFound)
}

func TestPatientService_Delete_CascadesNotes(t *testing.T) {
	ctx := context.Background()
	ms, shifts, patients, notes := newServices(t)

	shift, err := shifts.Create(ctx, testUser, "Night Shift")
	require.NoError(t, err)
	jane, err := patients.Create(ctx, testUser, shift.ID, "Jane Doe")
	require.NoError(t, err)
	_, err = notes.Create(ctx, testUser, jane.ID, "BP 120/80")
	require.NoError(t, err)
	_, err = notes.Create(ctx, testUser, jane.ID, "Discharged")
	require.NoError(t, err)

	require.NoError(t, patients.Delete(ctx, testUser, jane.ID))

	_, err = notes.List(ctx, testUser, jane.ID)
	assert.ErrorIs(t, err, common.ErrorNotFound, "patient is gone")

	listed, err := patients.List(ctx, testUser, shift.ID)
	require.NoError(t, err)
	assert.Empty(t, listed)

	// the shift itself survives with zero patients
	got, err := shifts.Get(ctx, testUser, shift.ID)
	require.NoError(t, err)
	assert.Equal(t, "Night Shift", got.Name)

	// only the shift record remains
	assert.Equal(t, 1, ms.Len(testUser))
}

func TestPatientService_Delete_PartialCascadeSurfacedAndRetryable(t *testing.T) {
	ctx := context.Background()
	ms := store.NewMemoryStore()
	l := testLogger()
	fs := &failingStore{RecordStore: ms, batchErr: errors.New("throttled")}

	shifts := NewShiftService(ms, l)
	patients := NewPatientService(fs, l)
	notes := NewNoteService(ms, l)

	shift, err := shifts.Create(ctx, testUser, "Night")
	require.NoError(t, err)
	jane, err := patients.Create(ctx, testUser, shift.ID, "Jane")
	require.NoError(t, err)
	_, err = notes.Create(ctx, testUser, jane.ID, "n1")
	require.NoError(t, err)

	err = patients.Delete(ctx, testUser, jane.ID)
	require.ErrorIs(t, err, common.ErrorPartialCascade)

	// patient record is gone, its note orphaned alongside the shift
	_, err = patients.Get(ctx, testUser, jane.ID)
	assert.ErrorIs(t, err, common.ErrorNotFound)
	assert.Equal(t, 2, ms.Len(testUser))

	// retry with a healthy store finishes the note cascade
	fs.batchErr = nil
	require.NoError(t, patients.Delete(ctx, testUser, jane.ID))
	assert.Equal(t, 1, ms.Len(testUser))

	// with the orphans cleaned up, another delete is a plain not-found
	assert.ErrorIs(t, patients.Delete(ctx, testUser, jane.ID), common.ErrorNotFound)
}

func TestShiftService_Delete_RemovesAllDescendants(t *testing.T) {
	ctx := context.Background()
	ms, shifts, patients, notes := newServices(t)

	shift, err := shifts.Create(ctx, testUser, "Night")
	require.NoError(t, err)

	// N patients, M notes total
	var total int
	for i := 0; i < 3; i++ {
		p, err := patients.Create(ctx, testUser, shift.ID, "Patient")
		require.NoError(t, err)
		for j := 0; j <= i; j++ {
			_, err := notes.Create(ctx, testUser, p.ID, "note")
			require.NoError(t, err)
			total++
		}
	}
	require.Equal(t, 1+3+total, ms.Len(testUser))

	require.NoError(t, shifts.Delete(ctx, testUser, shift.ID))
	assert.Equal(t, 0, ms.Len(testUser), "all N+M+1 records removed")

	assert.ErrorIs(t, shifts.Delete(ctx, testUser, shift.ID), common.ErrorNotFound)
}

func TestShiftService_Delete_DoesNotTouchOtherShifts(t *testing.T) {
	ctx := context.Background()
	_, shifts, patients, notes := newServices(t)

	doomed, err := shifts.Create(ctx, testUser, "Doomed")
	require.NoError(t, err)
	keep, err := shifts.Create(ctx, testUser, "Keep")
	require.NoError(t, err)

	kp, err := patients.Create(ctx, testUser, keep.ID, "Kept Patient")
	require.NoError(t, err)
	_, err = notes.Create(ctx, testUser, kp.ID, "kept note")
	require.NoError(t, err)

	dp, err := patients.Create(ctx, testUser, doomed.ID, "Doomed Patient")
	require.NoError(t, err)
	_, err = notes.Create(ctx, testUser, dp.ID, "doomed note")
	require.NoError(t, err)

	require.NoError(t, shifts.Delete(ctx, testUser, doomed.ID))

	listed, err := patients.List(ctx, testUser, keep.ID)
	require.NoError(t, err)
	require.Len(t, listed, 1)

	kept, err := notes.List(ctx, testUser, kp.ID)
	require.NoError(t, err)
	assert.Len(t, kept, 1)
}

func TestShiftService_Delete_PartialCascadeSurfacedAndRetryable(t *testing.T) {
	ctx := context.Background()
	ms := store.NewMemoryStore()
	l := testLogger()
	fs := &failingStore{RecordStore: ms, batchErr: errors.New("throttled")}

	shifts := NewShiftService(fs, l)
	patients := NewPatientService(ms, l)
	notes := NewNoteService(ms, l)

	shift, err := shifts.Create(ctx, testUser, "Night")
	require.NoError(t, err)
	p, err := patients.Create(ctx, testUser, shift.ID, "Jane")
	require.NoError(t, err)
	_, err = notes.Create(ctx, testUser, p.ID, "n1")
	require.NoError(t, err)

	err = shifts.Delete(ctx, testUser, shift.ID)
	require.ErrorIs(t, err, common.ErrorPartialCascade)

	// primary record is gone, descendants orphaned
	_, err = ms.Get(ctx, testUser, store.ShiftKey(shift.ID))
	assert.ErrorIs(t, err, common.ErrorNotFound)
	assert.Equal(t, 2, ms.Len(testUser))

	// retry with a healthy store finishes the cascade
	fs.batchErr = nil
	require.NoError(t, shifts.Delete(ctx, testUser, shift.ID))
	assert.Equal(t, 0, ms.Len(testUser))
}

func TestShiftService_Delete_IgnoresSubstringIDMatches(t *testing.T) {
	ctx := context.Background()
	ms, shifts, _, _ := newServices(t)

	shift, err := shifts.Create(ctx, testUser, "Night")
	require.NoError(t, err)

	// a patient in another shift whose shift id contains the target id as
	// a substring must not be swept into the cascade
	otherKey := store.PatientKey("p9", "x"+shift.ID+"x")
	require.NoError(t, ms.Put(ctx, store.Record{
		OwnerID:    testUser,
		EntityID:   otherKey,
		EntityType: store.TypePatient,
		Data:       []byte(`{"id":"p9","name":"Other","notes":[]}`),
	}))

	require.NoError(t, shifts.Delete(ctx, testUser, shift.ID))

	_, err = ms.Get(ctx, testUser, otherKey)
	assert.NoError(t, err, "unrelated patient must survive")
}
