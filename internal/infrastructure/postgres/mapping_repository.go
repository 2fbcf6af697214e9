package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/ledger-sync/internal/domain"
	"github.com/jhoicas/ledger-sync/internal/domain/entity"
	"github.com/jhoicas/ledger-sync/internal/domain/repository"
)

var _ repository.MappingRepository = (*MappingRepo)(nil)

// MappingRepo tabla ledger_mappings. Los dos índices únicos sostienen la biyección por tipo.
type MappingRepo struct {
	q Querier
}

func NewMappingRepository(q Querier) *MappingRepo {
	return &MappingRepo{q: q}
}

func (r *MappingRepo) FindRemoteID(ctx context.Context, kind entity.PartyKind, localID string) (string, error) {
	return r.findOne(ctx, `SELECT remote_id FROM ledger_mappings WHERE entity_type = $1 AND local_id = $2`, kind, localID)
}

func (r *MappingRepo) FindLocalID(ctx context.Context, kind entity.PartyKind, remoteID string) (string, error) {
	return r.findOne(ctx, `SELECT local_id FROM ledger_mappings WHERE entity_type = $1 AND remote_id = $2`, kind, remoteID)
}

func (r *MappingRepo) findOne(ctx context.Context, query string, kind entity.PartyKind, id string) (string, error) {
	var out string
	err := r.q.QueryRow(ctx, query, string(kind), id).Scan(&out)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return "", nil
		}
		return "", fmt.Errorf("get mapping: %w", err)
	}
	return out, nil
}

func (r *MappingRepo) FindByRemoteIDs(ctx context.Context, kind entity.PartyKind, remoteIDs []string) (map[string]string, error) {
	return r.findMany(ctx,
		`SELECT remote_id, local_id FROM ledger_mappings WHERE entity_type = $1 AND remote_id = ANY($2)`, kind, remoteIDs)
}

func (r *MappingRepo) FindByLocalIDs(ctx context.Context, kind entity.PartyKind, localIDs []string) (map[string]string, error) {
	return r.findMany(ctx,
		`SELECT local_id, remote_id FROM ledger_mappings WHERE entity_type = $1 AND local_id = ANY($2)`, kind, localIDs)
}

func (r *MappingRepo) findMany(ctx context.Context, query string, kind entity.PartyKind, ids []string) (map[string]string, error) {
	out := make(map[string]string, len(ids))
	if len(ids) == 0 {
		return out, nil
	}
	rows, err := r.q.Query(ctx, query, string(kind), ids)
	if err != nil {
		return nil, fmt.Errorf("list mappings: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var k, v string
		if err := rows.Scan(&k, &v); err != nil {
			return nil, fmt.Errorf("scan mapping: %w", err)
		}
		out[k] = v
	}
	return out, rows.Err()
}

// Upsert último en escribir gana por local_id. Un remote_id ya tomado por otro local_id
// viola ledger_mappings_entity_remote_key y se traduce a domain.ErrMappingConflict.
func (r *MappingRepo) Upsert(ctx context.Context, kind entity.PartyKind, localID, remoteID string, syncedAt time.Time) error {
	query := `
		INSERT INTO ledger_mappings (id, entity_type, local_id, remote_id, status, synced_at, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $6)
		ON CONFLICT (entity_type, local_id) DO UPDATE
		SET remote_id = EXCLUDED.remote_id, status = EXCLUDED.status, synced_at = EXCLUDED.synced_at`
	_, err := r.q.Exec(ctx, query, uuid.NewString(), string(kind), localID, remoteID, entity.MappingStatusSynced, syncedAt)
	if err != nil {
		if isUniqueViolation(err, constraintMappingRemote) {
			return fmt.Errorf("%w: %s", domain.ErrMappingConflict, remoteID)
		}
		return fmt.Errorf("upsert mapping: %w", err)
	}
	return nil
}

func (r *MappingRepo) Delete(ctx context.Context, kind entity.PartyKind, localID string) error {
	_, err := r.q.Exec(ctx, `DELETE FROM ledger_mappings WHERE entity_type = $1 AND local_id = $2`, string(kind), localID)
	if err != nil {
		return fmt.Errorf("delete mapping: %w", err)
	}
	return nil
}
