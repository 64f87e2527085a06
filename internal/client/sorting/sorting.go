// Package sorting orders patient lists for display. Alphabetical modes use
// locale-aware, case-insensitive collation rather than byte order, so
// "Ärzte" and "apple" land where a human expects.
package sorting

import (
	"sort"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"

	"github.com/mpetrenko/shiftnotes/internal/models"
)

// Option is one of the four display orders.
type Option string

const (
	TimeDesc  Option = "time-desc"
	TimeAsc   Option = "time-asc"
	AlphaAsc  Option = "alpha-asc"
	AlphaDesc Option = "alpha-desc"
)

// Default is the order applied before the user picks anything.
const Default = TimeDesc

// Next returns the following option in the fixed cycle
// time-desc → time-asc → alpha-asc → alpha-desc → time-desc.
// Unknown values restart the cycle.
func (o Option) Next() Option {
	switch o {
	case TimeDesc:
		return TimeAsc
	case TimeAsc:
		return AlphaAsc
	case AlphaAsc:
		return AlphaDesc
	default:
		return TimeDesc
	}
}

// Valid reports whether o is one of the four known orders.
func (o Option) Valid() bool {
	switch o {
	case TimeDesc, TimeAsc, AlphaAsc, AlphaDesc:
		return true
	}
	return false
}

// Label returns a short human-readable description for the REPL prompt.
func (o Option) Label() string {
	switch o {
	case TimeDesc:
		return "newest first"
	case TimeAsc:
		return "oldest first"
	case AlphaAsc:
		return "name A-Z"
	case AlphaDesc:
		return "name Z-A"
	default:
		return string(o)
	}
}

// Partition splits patients into active and archived, preserving their
// relative order.
func Partition(patients []models.Patient) (active, archived []models.Patient) {
	for _, p := range patients {
		if p.Archived {
			archived = append(archived, p)
		} else {
			active = append(active, p)
		}
	}
	return active, archived
}

// Sort returns a new slice ordered by o. Time modes use the patient's
// creation time, falling back to the id-derived timestamp for legacy
// records; entries without any timestamp sort last. The sort is stable, so
// ties keep their incoming order.
func Sort(patients []models.Patient, o Option) []models.Patient {
	out := make([]models.Patient, len(patients))
	copy(out, patients)

	switch o {
	case TimeAsc, TimeDesc:
		asc := o == TimeAsc
		sort.SliceStable(out, func(i, j int) bool {
			ti, tj := out[i].Timestamp(), out[j].Timestamp()
			if ti.IsZero() || tj.IsZero() {
				// zero timestamps go last regardless of direction
				return tj.IsZero() && !ti.IsZero()
			}
			if asc {
				return ti.Before(tj)
			}
			return tj.Before(ti)
		})
	case AlphaAsc, AlphaDesc:
		coll := collate.New(language.Und, collate.IgnoreCase)
		asc := o == AlphaAsc
		sort.SliceStable(out, func(i, j int) bool {
			c := coll.CompareString(out[i].Name, out[j].Name)
			if asc {
				return c < 0
			}
			return c > 0
		})
	}
	return out
}
