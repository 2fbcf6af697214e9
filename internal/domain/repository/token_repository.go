package repository

import (
	"context"

	"github.com/jhoicas/ledger-sync/internal/domain/entity"
)

// TokenRepository contrato de fila única para la credencial del ledger.
type TokenRepository interface {
	// Get devuelve nil, nil si no existe credencial.
	Get(ctx context.Context) (*entity.SyncToken, error)
	Save(ctx context.Context, token *entity.SyncToken) error
	Delete(ctx context.Context) error
}
