package repository

import (
	"context"

	"github.com/jhoicas/ledger-sync/internal/domain/entity"
)

// SyncLogRepository bitácora append-only de operaciones de sincronización.
type SyncLogRepository interface {
	Append(ctx context.Context, entry *entity.SyncLogEntry) error
	// ListRecent devuelve las últimas entradas; kind vacío = todos los tipos.
	ListRecent(ctx context.Context, kind entity.PartyKind, limit int) ([]*entity.SyncLogEntry, error)
}
