// Package store defines the flat record table the API server persists
// entities into, plus its DynamoDB, PostgreSQL and in-memory backends.
//
// Every record belongs to one owner (the authenticated user) and is keyed
// by a composite entity id that encodes the hierarchy:
//
//	SHIFT#{shiftID}
//	PATIENT#{patientID}#{shiftID}
//	NOTE#{noteID}#{patientID}
//
// Lookups by own id and listings by parent are both prefix queries over the
// composite key; listings additionally filter on the parent segment
// application-side, since the store only supports prefix match. That costs
// read amplification but avoids a secondary index.
package store

import (
	"context"
	"strings"
	"time"
)

// Entity type tags used as the first key segment.
const (
	TypeShift   = "SHIFT"
	TypePatient = "PATIENT"
	TypeNote    = "NOTE"
)

// MaxBatchDelete is the item ceiling per delete batch. It matches the
// DynamoDB BatchWriteItem limit; other backends chunk the same way to keep
// failure semantics identical across implementations.
const MaxBatchDelete = 25

// Record is one row of the flat table: a serialized entity snapshot plus
// bookkeeping timestamps.
type Record struct {
	OwnerID    string
	EntityID   string
	EntityType string
	Data       []byte
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// RecordStore is the persistence contract shared by all backends.
//
// Get returns common.ErrorNotFound when no record exists under the owner's
// scope. BatchDelete issues its chunks sequentially and stops at the first
// failing chunk; records of later chunks are left in place for a retry.
type RecordStore interface {
	Put(ctx context.Context, rec Record) error
	Get(ctx context.Context, ownerID, entityID string) (*Record, error)
	QueryPrefix(ctx context.Context, ownerID, prefix string) ([]Record, error)
	Delete(ctx context.Context, ownerID, entityID string) error
	BatchDelete(ctx context.Context, ownerID string, entityIDs []string) error
}

// ShiftKey builds the composite key of a shift record.
func ShiftKey(shiftID string) string {
	return TypeShift + "#" + shiftID
}

// PatientKey builds the composite key of a patient record under a shift.
func PatientKey(patientID, shiftID string) string {
	return TypePatient + "#" + patientID + "#" + shiftID
}

// NoteKey builds the composite key of a note record under a patient.
func NoteKey(noteID, patientID string) string {
	return TypeNote + "#" + noteID + "#" + patientID
}

// SplitKey breaks a composite key into its type, own id and parent id
// segments. Parent is "" for shift keys.
func SplitKey(entityID string) (typ, id, parent string) {
	parts := strings.SplitN(entityID, "#", 3)
	switch len(parts) {
	case 2:
		return parts[0], parts[1], ""
	case 3:
		return parts[0], parts[1], parts[2]
	default:
		return entityID, "", ""
	}
}

// ParentOf reports the parent segment of a composite key. A key's parent is
// its last segment; matching on the whole segment (not a substring of the
// key) is what keeps ids that merely contain another entity's id from being
// swept into a cascade.
func ParentOf(entityID string) string {
	_, _, parent := SplitKey(entityID)
	return parent
}
