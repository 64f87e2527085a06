// Package services implements the per-entity operations of the API server
// on top of a store.RecordStore: validation, composite-key lookups, and the
// two-phase cascading deletes.
//
// Cascading deletes are not transactional. The primary record goes first,
// then descendants are removed in sequential bounded batches; a failure
// after the primary delete surfaces as common.ErrorPartialCascade and the
// operation can be re-invoked to finish the cascade.
package services

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/mpetrenko/shiftnotes/internal/common"
	"github.com/mpetrenko/shiftnotes/internal/server/store"
)

// findByOwnID resolves an entity record when only its own id is known: the
// parent segment of the key is unknown to the caller, so this is a prefix
// query over "{TYPE}#{id}#" rather than a direct key fetch.
func findByOwnID(ctx context.Context, s store.RecordStore, ownerID, typ, id string) (*store.Record, error) {
	recs, err := s.QueryPrefix(ctx, ownerID, typ+"#"+id+"#")
	if err != nil {
		return nil, fmt.Errorf("%w: %v", common.ErrorPersistence, err)
	}
	if len(recs) == 0 {
		return nil, common.ErrorNotFound
	}
	return &recs[0], nil
}

func marshalEntity(v any) ([]byte, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("marshal entity: %w", err)
	}
	return data, nil
}

func unmarshalEntity(rec *store.Record, v any) error {
	if err := json.Unmarshal(rec.Data, v); err != nil {
		return fmt.Errorf("unmarshal %s: %w", rec.EntityID, err)
	}
	return nil
}
