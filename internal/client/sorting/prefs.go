package sorting

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/mpetrenko/shiftnotes/internal/common"
	"github.com/mpetrenko/shiftnotes/internal/filex"
)

const prefsFileName = "prefs.json"

// Pair holds the independently chosen sort options of the two patient
// partitions. Cycling one side never moves the other.
type Pair struct {
	Active   Option `json:"active"`
	Archived Option `json:"archived"`
}

// DefaultPair is the order used before the user cycles anything.
func DefaultPair() Pair {
	return Pair{Active: Default, Archived: Default}
}

// Preferences remembers the chosen sort order pair per shift across
// sessions.
type Preferences struct {
	path string

	ByShift map[string]Pair `json:"sortByShift"`
}

// LoadPreferences reads the preferences file under dataDir. A missing file
// yields empty preferences; an unknown stored option falls back to the
// default on read.
func LoadPreferences(dataDir string) (*Preferences, error) {
	dir, err := filex.EnsureDir(dataDir)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", common.ErrorPersistence, err)
	}

	p := &Preferences{
		path:    filepath.Join(dir, prefsFileName),
		ByShift: map[string]Pair{},
	}

	data, err := os.ReadFile(p.path)
	if os.IsNotExist(err) {
		return p, nil
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %v", common.ErrorPersistence, err)
	}

	if err := json.Unmarshal(data, p); err != nil {
		return nil, fmt.Errorf("%w: corrupt preferences %s: %v", common.ErrorPersistence, p.path, err)
	}
	if p.ByShift == nil {
		p.ByShift = map[string]Pair{}
	}
	for shiftID, pair := range p.ByShift {
		if !pair.Active.Valid() {
			pair.Active = Default
		}
		if !pair.Archived.Valid() {
			pair.Archived = Default
		}
		p.ByShift[shiftID] = pair
	}
	return p, nil
}

// Get returns the stored pair for the shift, or the defaults.
func (p *Preferences) Get(shiftID string) Pair {
	if pair, ok := p.ByShift[shiftID]; ok {
		return pair
	}
	return DefaultPair()
}

// Set stores the pair for the shift and persists the file.
func (p *Preferences) Set(shiftID string, pair Pair) error {
	p.ByShift[shiftID] = pair
	return p.save()
}

// Forget drops the entry for a deleted shift.
func (p *Preferences) Forget(shiftID string) error {
	if _, ok := p.ByShift[shiftID]; !ok {
		return nil
	}
	delete(p.ByShift, shiftID)
	return p.save()
}

func (p *Preferences) save() error {
	data, err := json.MarshalIndent(p, "", "  ")
	if err != nil {
		return fmt.Errorf("%w: %v", common.ErrorPersistence, err)
	}
	if err := filex.WriteFileAtomic(p.path, data, 0o600); err != nil {
		return fmt.Errorf("%w: %v", common.ErrorPersistence, err)
	}
	return nil
}
