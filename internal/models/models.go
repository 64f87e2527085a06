// Package models defines the shift → patient → note entity hierarchy shared
// by the client backends and the API server. Entities cross the wire as
// JSON, so field names here fix the storage and transport shape.
package models

import (
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Note is a timestamped free-text entry owned by exactly one patient.
type Note struct {
	ID        string     `json:"id"`
	Content   string     `json:"content"`
	CreatedAt time.Time  `json:"createdAt"`
	EditedAt  *time.Time `json:"editedAt,omitempty"`
}

// Patient is a case record owned by exactly one shift. CreatedAt may be the
// zero time in documents written before the field existed; Timestamp falls
// back to the id in that case and the load-time migration backfills it.
type Patient struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Notes     []Note    `json:"notes"`
	Archived  bool      `json:"archived,omitempty"`
	CreatedAt time.Time `json:"createdAt,omitzero"`
}

// Shift is the top-level aggregate.
type Shift struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"createdAt"`
	Patients  []Patient `json:"patients"`
}

// Document is the local backend's persisted state: the whole tree plus the
// active shift pointer, serialized as a single JSON document.
type Document struct {
	Shifts         []Shift `json:"shifts"`
	CurrentShiftID string  `json:"currentShiftId"`
}

// PatientUpdate carries a partial update: nil fields are left untouched.
type PatientUpdate struct {
	Name     *string
	Archived *bool
}

// NewID returns a fresh identifier whose leading segment is the current
// millisecond epoch, followed by a random suffix. The leading segment is
// what Timestamp and the migration parse for legacy records.
func NewID() string {
	return strconv.FormatInt(time.Now().UnixMilli(), 10) + "-" + uuid.NewString()[:8]
}

// IDTimestamp parses the leading numeric segment of an entity id as a
// millisecond epoch. Returns false if the id does not carry one.
func IDTimestamp(id string) (time.Time, bool) {
	head, _, _ := strings.Cut(id, "-")
	ms, err := strconv.ParseInt(head, 10, 64)
	if err != nil || ms <= 0 {
		return time.Time{}, false
	}
	return time.UnixMilli(ms).UTC(), true
}

// Timestamp returns the patient's creation time, deriving it from the id
// when the CreatedAt field is absent.
func (p Patient) Timestamp() time.Time {
	if !p.CreatedAt.IsZero() {
		return p.CreatedAt
	}
	if ts, ok := IDTimestamp(p.ID); ok {
		return ts
	}
	return time.Time{}
}

// TrimRequired trims s and reports whether anything is left. All required
// string fields (shift name, patient name, note content) go through this
// before any persistence attempt.
func TrimRequired(s string) (string, bool) {
	t := strings.TrimSpace(s)
	return t, t != ""
}

// Initials derives up to two display initials from a patient name, first
// and last word.
func Initials(name string) string {
	parts := strings.Fields(strings.TrimSpace(name))
	if len(parts) == 0 {
		return "?"
	}
	first := strings.ToUpper(string([]rune(parts[0])[0]))
	if len(parts) == 1 {
		return first
	}
	last := []rune(parts[len(parts)-1])
	return first + strings.ToUpper(string(last[0]))
}
