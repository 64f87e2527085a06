package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/mpetrenko/shiftnotes/internal/common"
	"github.com/mpetrenko/shiftnotes/internal/dbx"
)

// PostgresStore keeps records in one flat table with primary key
// (owner_id, entity_id). Prefix queries use LIKE over the entity id, which
// the composite-key layout was designed for.
type PostgresStore struct {
	db dbx.DBTX
}

func NewPostgresStore(db dbx.DBTX) *PostgresStore {
	return &PostgresStore{db: db}
}

func (s *PostgresStore) Put(ctx context.Context, rec Record) error {
	query := `
		INSERT INTO records (owner_id, entity_id, entity_type, data, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (owner_id, entity_id)
		DO UPDATE SET
			entity_type = EXCLUDED.entity_type,
			data = EXCLUDED.data,
			updated_at = EXCLUDED.updated_at;
	`
	_, err := s.db.ExecContext(ctx, query,
		rec.OwnerID, rec.EntityID, rec.EntityType, rec.Data, rec.CreatedAt, rec.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to upsert record: %w", err)
	}
	return nil
}

func (s *PostgresStore) Get(ctx context.Context, ownerID, entityID string) (*Record, error) {
	query := `SELECT owner_id, entity_id, entity_type, data, created_at, updated_at
		FROM records WHERE owner_id=$1 AND entity_id=$2`

	rec := &Record{}
	err := s.db.QueryRowContext(ctx, query, ownerID, entityID).Scan(
		&rec.OwnerID, &rec.EntityID, &rec.EntityType, &rec.Data, &rec.CreatedAt, &rec.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("failed to select record: %w", err)
	}
	return rec, nil
}

func (s *PostgresStore) QueryPrefix(ctx context.Context, ownerID, prefix string) ([]Record, error) {
	query := `SELECT owner_id, entity_id, entity_type, data, created_at, updated_at
		FROM records WHERE owner_id=$1 AND entity_id LIKE $2 ORDER BY entity_id`

	rows, err := s.db.QueryContext(ctx, query, ownerID, likePattern(prefix))
	if err != nil {
		return nil, fmt.Errorf("failed to select records: %w", err)
	}
	defer rows.Close()

	var result []Record
	for rows.Next() {
		var rec Record
		if err := rows.Scan(&rec.OwnerID, &rec.EntityID, &rec.EntityType,
			&rec.Data, &rec.CreatedAt, &rec.UpdatedAt); err != nil {
			return nil, err
		}
		result = append(result, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

func (s *PostgresStore) Delete(ctx context.Context, ownerID, entityID string) error {
	query := `DELETE FROM records WHERE owner_id=$1 AND entity_id=$2`
	if _, err := s.db.ExecContext(ctx, query, ownerID, entityID); err != nil {
		return fmt.Errorf("failed to delete record: %w", err)
	}
	return nil
}

// BatchDelete removes records in sequential chunks of MaxBatchDelete,
// matching the DynamoDB backend's batching so partial-failure behavior is
// the same regardless of backend.
func (s *PostgresStore) BatchDelete(ctx context.Context, ownerID string, entityIDs []string) error {
	for start := 0; start < len(entityIDs); start += MaxBatchDelete {
		end := min(start+MaxBatchDelete, len(entityIDs))
		chunk := entityIDs[start:end]

		placeholders := make([]string, len(chunk))
		args := make([]any, 0, len(chunk)+1)
		args = append(args, ownerID)
		for i, id := range chunk {
			placeholders[i] = fmt.Sprintf("$%d", i+2)
			args = append(args, id)
		}

		query := `DELETE FROM records WHERE owner_id=$1 AND entity_id IN (` +
			strings.Join(placeholders, ", ") + `)`
		if _, err := s.db.ExecContext(ctx, query, args...); err != nil {
			return fmt.Errorf("failed to batch delete records: %w", err)
		}
	}
	return nil
}

// likePattern escapes LIKE metacharacters in a key prefix. Entity ids never
// contain them today; this keeps a hostile id from widening the match.
func likePattern(prefix string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return r.Replace(prefix) + "%"
}
