package repository

import (
	"context"

	"github.com/jhoicas/ledger-sync/internal/domain/entity"
)

// PartyRepository define el puerto de persistencia para clientes y proveedores locales.
// GetByID y ListRange devuelven RemoteID desnormalizado (LEFT JOIN con el mapeo).
type PartyRepository interface {
	Create(ctx context.Context, party *entity.Party) error
	Update(ctx context.Context, party *entity.Party) error
	GetByID(ctx context.Context, kind entity.PartyKind, id string) (*entity.Party, error)
	GetByIDs(ctx context.Context, kind entity.PartyKind, ids []string) ([]*entity.Party, error)
	// ListRange recorre en orden estable (created_at, id) desde offset.
	ListRange(ctx context.Context, kind entity.PartyKind, offset, limit int) ([]*entity.Party, error)
	Count(ctx context.Context, kind entity.PartyKind) (int, error)
}
