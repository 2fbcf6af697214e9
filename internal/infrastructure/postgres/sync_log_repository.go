package postgres

import (
	"context"
	"fmt"

	"github.com/jhoicas/ledger-sync/internal/domain/entity"
	"github.com/jhoicas/ledger-sync/internal/domain/repository"
)

var _ repository.SyncLogRepository = (*SyncLogRepo)(nil)

// SyncLogRepo tabla append-only ledger_sync_logs.
type SyncLogRepo struct {
	q Querier
}

func NewSyncLogRepository(q Querier) *SyncLogRepo {
	return &SyncLogRepo{q: q}
}

func (r *SyncLogRepo) Append(ctx context.Context, e *entity.SyncLogEntry) error {
	query := `
		INSERT INTO ledger_sync_logs (id, entity_type, action, status, processed, created, updated, skipped,
		                              failed, total_count, message, user_id, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)`
	_, err := r.q.Exec(ctx, query,
		e.ID, string(e.EntityType), e.Action, e.Status, e.Processed, e.Created, e.Updated, e.Skipped,
		e.Failed, e.TotalCount, e.Message, e.UserID, e.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert sync log: %w", err)
	}
	return nil
}

// ListRecent kind vacío = todos los tipos.
func (r *SyncLogRepo) ListRecent(ctx context.Context, kind entity.PartyKind, limit int) ([]*entity.SyncLogEntry, error) {
	if limit <= 0 {
		limit = 20
	}
	query := `
		SELECT id, entity_type, action, status, processed, created, updated, skipped, failed, total_count,
		       message, user_id, created_at
		FROM ledger_sync_logs
		WHERE ($1 = '' OR entity_type = $1)
		ORDER BY created_at DESC
		LIMIT $2`
	rows, err := r.q.Query(ctx, query, string(kind), limit)
	if err != nil {
		return nil, fmt.Errorf("list sync logs: %w", err)
	}
	defer rows.Close()
	list := make([]*entity.SyncLogEntry, 0)
	for rows.Next() {
		var e entity.SyncLogEntry
		var kindStr string
		if err := rows.Scan(&e.ID, &kindStr, &e.Action, &e.Status, &e.Processed, &e.Created, &e.Updated,
			&e.Skipped, &e.Failed, &e.TotalCount, &e.Message, &e.UserID, &e.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan sync log: %w", err)
		}
		e.EntityType = entity.PartyKind(kindStr)
		list = append(list, &e)
	}
	return list, rows.Err()
}
