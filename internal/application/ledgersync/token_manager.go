package ledgersync

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/singleflight"

	"github.com/jhoicas/ledger-sync/internal/domain"
	"github.com/jhoicas/ledger-sync/internal/domain/entity"
	domledger "github.com/jhoicas/ledger-sync/internal/domain/ledger"
	"github.com/jhoicas/ledger-sync/internal/domain/repository"
)

var _ CredentialProvider = (*TokenManager)(nil)

// refreshTimeout límite de la renovación compartida; no depende del ctx de ningún llamador.
const refreshTimeout = 30 * time.Second

// TokenManager entrega un access token vigente, renovándolo de forma proactiva.
// Un token que vence dentro de entity.RefreshMargin se considera vencido.
// Todas las renovaciones del proceso pasan por un único singleflight.
type TokenManager struct {
	repo      repository.TokenRepository
	refresher TokenRefresher
	log       zerolog.Logger
	now       func() time.Time
	group     singleflight.Group
}

// NewTokenManager construye el gestor. now nil usa time.Now.
func NewTokenManager(repo repository.TokenRepository, refresher TokenRefresher, log zerolog.Logger, now func() time.Time) *TokenManager {
	if now == nil {
		now = time.Now
	}
	return &TokenManager{repo: repo, refresher: refresher, log: log, now: now}
}

// ValidToken devuelve (accessToken, realmID). Falla con domain.ErrNotConnected si no hay
// credencial y con domain.ErrRefreshFailed si el proveedor rechaza la renovación.
func (m *TokenManager) ValidToken(ctx context.Context) (domledger.Credentials, error) {
	tok, err := m.repo.Get(ctx)
	if err != nil {
		return domledger.Credentials{}, fmt.Errorf("leer credencial del ledger: %w", err)
	}
	if tok == nil {
		return domledger.Credentials{}, domain.ErrNotConnected
	}
	if !tok.ExpiresWithin(m.now(), entity.RefreshMargin) {
		return credentials(tok), nil
	}

	// La renovación corre desacoplada del llamador: si este cancela, los demás que esperan el
	// mismo vuelo reciben el token y el refresh token rotado igual se persiste.
	ch := m.group.DoChan("refresh", func() (any, error) {
		rctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), refreshTimeout)
		defer cancel()
		return m.refresh(rctx)
	})
	select {
	case <-ctx.Done():
		return domledger.Credentials{}, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return domledger.Credentials{}, res.Err
		}
		if res.Shared {
			m.log.Debug().Msg("renovación de token compartida con otra goroutine")
		}
		return credentials(res.Val.(*entity.SyncToken)), nil
	}
}

// refresh relee la fila (otra invocación pudo haberla renovado) y ejecuta el grant.
func (m *TokenManager) refresh(ctx context.Context) (*entity.SyncToken, error) {
	current, err := m.repo.Get(ctx)
	if err != nil {
		return nil, fmt.Errorf("leer credencial del ledger: %w", err)
	}
	if current == nil {
		return nil, domain.ErrNotConnected
	}
	if !current.ExpiresWithin(m.now(), entity.RefreshMargin) {
		return current, nil
	}

	fresh, err := m.refresher.Refresh(ctx, current.RefreshToken)
	if err != nil {
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			m.log.Warn().Err(err).Str("realm_id", current.RealmID).Msg("renovación de token interrumpida")
			return nil, fmt.Errorf("renovar token del ledger: %w", err)
		}
		m.log.Error().Err(err).Str("realm_id", current.RealmID).Msg("renovación de token rechazada")
		if errors.Is(err, domain.ErrRefreshFailed) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: %v", domain.ErrRefreshFailed, err)
	}
	fresh.RealmID = current.RealmID
	if fresh.RefreshToken == "" {
		fresh.RefreshToken = current.RefreshToken
	}
	if fresh.RefreshTokenExpiresAt.IsZero() {
		fresh.RefreshTokenExpiresAt = current.RefreshTokenExpiresAt
	}
	fresh.UpdatedAt = m.now()
	if err := m.repo.Save(ctx, fresh); err != nil {
		return nil, fmt.Errorf("persistir token renovado: %w", err)
	}
	m.log.Info().
		Str("realm_id", fresh.RealmID).
		Time("expires_at", fresh.ExpiresAt).
		Msg("token del ledger renovado")
	return fresh, nil
}

func credentials(t *entity.SyncToken) domledger.Credentials {
	return domledger.Credentials{AccessToken: t.AccessToken, RealmID: t.RealmID}
}
