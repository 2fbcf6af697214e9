// Package ledgersync implementa la reconciliación bidireccional de clientes y proveedores
// con el ledger contable externo: gestión del token OAuth, importación y exportación
// paginadas, sincronización de un registro y resolución de nombres duplicados.
package ledgersync

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/jhoicas/ledger-sync/internal/domain/entity"
	domledger "github.com/jhoicas/ledger-sync/internal/domain/ledger"
	"github.com/jhoicas/ledger-sync/internal/domain/repository"
)

// DefaultPageSize tamaño fijo de página para importación y exportación.
const DefaultPageSize = 100

// LedgerAPI puerto de salida hacia el ledger externo. Lo implementa infrastructure/ledger.Client.
type LedgerAPI interface {
	Count(ctx context.Context, creds domledger.Credentials, kind entity.PartyKind) (int, error)
	List(ctx context.Context, creds domledger.Credentials, kind entity.PartyKind, offset, limit int) ([]domledger.RemoteParty, error)
	Get(ctx context.Context, creds domledger.Credentials, kind entity.PartyKind, id string) (*domledger.RemoteParty, error)
	// FindByDisplayName devuelve nil, nil si no hay coincidencia exacta.
	FindByDisplayName(ctx context.Context, creds domledger.Credentials, kind entity.PartyKind, name string) (*domledger.RemoteParty, error)
	Create(ctx context.Context, creds domledger.Credentials, kind entity.PartyKind, party *domledger.RemoteParty) (*domledger.RemoteParty, error)
	Update(ctx context.Context, creds domledger.Credentials, kind entity.PartyKind, party *domledger.RemoteParty) (*domledger.RemoteParty, error)
}

// CredentialProvider entrega credenciales vigentes (lo implementa TokenManager).
type CredentialProvider interface {
	ValidToken(ctx context.Context) (domledger.Credentials, error)
}

// TokenRefresher ejecuta el refresh-token grant contra el proveedor de identidad.
type TokenRefresher interface {
	Refresh(ctx context.Context, refreshToken string) (*entity.SyncToken, error)
}

// OAuthFlow URL de consentimiento e intercambio de código (conexión inicial).
type OAuthFlow interface {
	AuthCodeURL(state string) string
	Exchange(ctx context.Context, code string) (*entity.SyncToken, error)
}

// TxRunner ejecuta fn con repositorios atados a una misma transacción.
type TxRunner interface {
	RunSync(ctx context.Context, fn func(parties repository.PartyRepository, mappings repository.MappingRepository) error) error
}

// Deps dependencias compartidas por los pipelines y la sincronización individual.
type Deps struct {
	Tokens   CredentialProvider
	Ledger   LedgerAPI
	Parties  repository.PartyRepository
	Mappings repository.MappingRepository
	Logs     repository.SyncLogRepository // opcional
	Tx       TxRunner
	Locks    *KindLocks // opcional
	Log      zerolog.Logger
	Now      func() time.Time
	PageSize int
}

func (d Deps) now() time.Time {
	if d.Now != nil {
		return d.Now()
	}
	return time.Now()
}

func (d Deps) pageSize() int {
	if d.PageSize > 0 {
		return d.PageSize
	}
	return DefaultPageSize
}

// lock adquiere el candado del tipo si hay KindLocks configurado.
func (d Deps) lock(ctx context.Context, kind entity.PartyKind) (func(), error) {
	if d.Locks == nil {
		return func() {}, nil
	}
	return d.Locks.Acquire(ctx, kind)
}
