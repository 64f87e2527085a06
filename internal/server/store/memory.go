package store

import (
	"context"
	"sort"
	"strings"
	"sync"

	"github.com/mpetrenko/shiftnotes/internal/common"
)

// MemoryStore is a map-backed RecordStore used in dev mode and as a test
// fixture. Query results are ordered by entity id for determinism.
type MemoryStore struct {
	mu   sync.RWMutex
	recs map[string]map[string]Record // ownerID → entityID → record
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{recs: make(map[string]map[string]Record)}
}

func (s *MemoryStore) Put(ctx context.Context, rec Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	owner, ok := s.recs[rec.OwnerID]
	if !ok {
		owner = make(map[string]Record)
		s.recs[rec.OwnerID] = owner
	}
	owner[rec.EntityID] = rec
	return nil
}

func (s *MemoryStore) Get(ctx context.Context, ownerID, entityID string) (*Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rec, ok := s.recs[ownerID][entityID]
	if !ok {
		return nil, common.ErrorNotFound
	}
	cp := rec
	return &cp, nil
}

func (s *MemoryStore) QueryPrefix(ctx context.Context, ownerID, prefix string) ([]Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []Record
	for id, rec := range s.recs[ownerID] {
		if strings.HasPrefix(id, prefix) {
			result = append(result, rec)
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].EntityID < result[j].EntityID })
	return result, nil
}

func (s *MemoryStore) Delete(ctx context.Context, ownerID, entityID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.recs[ownerID], entityID)
	return nil
}

func (s *MemoryStore) BatchDelete(ctx context.Context, ownerID string, entityIDs []string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, id := range entityIDs {
		delete(s.recs[ownerID], id)
	}
	return nil
}

// Len reports the number of records stored for an owner. Test helper.
func (s *MemoryStore) Len(ownerID string) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.recs[ownerID])
}
