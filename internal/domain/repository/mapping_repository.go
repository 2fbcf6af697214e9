package repository

import (
	"context"
	"time"

	"github.com/jhoicas/ledger-sync/internal/domain/entity"
)

// MappingRepository almacén de correspondencias local_id <-> remote_id.
// Es la única fuente de verdad para "¿este registro ya existe en el ledger?".
type MappingRepository interface {
	// FindRemoteID devuelve "" si el registro local no está mapeado.
	FindRemoteID(ctx context.Context, kind entity.PartyKind, localID string) (string, error)
	// FindLocalID devuelve "" si el registro remoto no está mapeado.
	FindLocalID(ctx context.Context, kind entity.PartyKind, remoteID string) (string, error)
	// FindByRemoteIDs resuelve en lote: remote_id -> local_id (solo los mapeados).
	FindByRemoteIDs(ctx context.Context, kind entity.PartyKind, remoteIDs []string) (map[string]string, error)
	// FindByLocalIDs resuelve en lote: local_id -> remote_id (solo los mapeados).
	FindByLocalIDs(ctx context.Context, kind entity.PartyKind, localIDs []string) (map[string]string, error)
	// Upsert idempotente; reemplaza el mapeo previo del local_id.
	// Devuelve domain.ErrMappingConflict si remote_id ya pertenece a otro local_id.
	Upsert(ctx context.Context, kind entity.PartyKind, localID, remoteID string, syncedAt time.Time) error
	Delete(ctx context.Context, kind entity.PartyKind, localID string) error
}
