package memory

import (
	"context"

	"github.com/jhoicas/ledger-sync/internal/domain/entity"
	"github.com/jhoicas/ledger-sync/internal/domain/repository"
)

var _ repository.SyncLogRepository = (*SyncLogRepo)(nil)

// SyncLogRepo bitácora append-only en memoria.
type SyncLogRepo struct {
	s *Store
}

func (r *SyncLogRepo) Append(ctx context.Context, entry *entity.SyncLogEntry) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	r.s.st.logs = append(r.s.st.logs, *entry)
	return nil
}

// ListRecent más recientes primero.
func (r *SyncLogRepo) ListRecent(ctx context.Context, kind entity.PartyKind, limit int) ([]*entity.SyncLogEntry, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	out := make([]*entity.SyncLogEntry, 0)
	for i := len(r.s.st.logs) - 1; i >= 0; i-- {
		e := r.s.st.logs[i]
		if kind != "" && e.EntityType != kind {
			continue
		}
		out = append(out, &e)
		if limit > 0 && len(out) == limit {
			break
		}
	}
	return out, nil
}
