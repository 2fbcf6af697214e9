package ledgersync

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/jhoicas/ledger-sync/internal/application/dto"
	"github.com/jhoicas/ledger-sync/internal/domain"
	"github.com/jhoicas/ledger-sync/internal/domain/entity"
	"github.com/jhoicas/ledger-sync/internal/domain/repository"
	"github.com/jhoicas/ledger-sync/pkg/jwt"
)

// ConnectionUseCase conecta, consulta y desconecta la credencial del ledger.
type ConnectionUseCase struct {
	tokens   repository.TokenRepository
	flow     OAuthFlow
	secret   string
	stateTTL time.Duration
	log      zerolog.Logger
	now      func() time.Time
}

// NewConnectionUseCase secret firma el parámetro state del redirect.
func NewConnectionUseCase(tokens repository.TokenRepository, flow OAuthFlow, secret string, stateTTL time.Duration, log zerolog.Logger) *ConnectionUseCase {
	if stateTTL <= 0 {
		stateTTL = 10 * time.Minute
	}
	return &ConnectionUseCase{tokens: tokens, flow: flow, secret: secret, stateTTL: stateTTL, log: log, now: time.Now}
}

// ConnectURL URL de consentimiento con un state firmado que liga el callback a userID.
func (uc *ConnectionUseCase) ConnectURL(userID string) (*dto.ConnectURLResponse, error) {
	state, err := jwt.GenerateState(uc.secret, userID, uc.stateTTL)
	if err != nil {
		return nil, fmt.Errorf("firmar state: %w", err)
	}
	return &dto.ConnectURLResponse{URL: uc.flow.AuthCodeURL(state)}, nil
}

// Complete valida el state, intercambia el código y reemplaza la fila única de credencial.
func (uc *ConnectionUseCase) Complete(ctx context.Context, code, realmID, state string) (*dto.ConnectionStatus, error) {
	if code == "" || realmID == "" {
		return nil, domain.ErrInvalidInput
	}
	userID, err := jwt.ParseState(uc.secret, state)
	if err != nil {
		return nil, fmt.Errorf("%w: state inválido", domain.ErrUnauthorized)
	}
	tok, err := uc.flow.Exchange(ctx, code)
	if err != nil {
		return nil, err
	}
	tok.RealmID = realmID
	tok.UpdatedAt = uc.now()
	if err := uc.tokens.Save(ctx, tok); err != nil {
		return nil, fmt.Errorf("persistir credencial: %w", err)
	}
	uc.log.Info().Str("realm_id", realmID).Str("user_id", userID).Msg("ledger conectado")
	return uc.status(tok), nil
}

// Status estado de la credencial; no renueva.
func (uc *ConnectionUseCase) Status(ctx context.Context) (*dto.ConnectionStatus, error) {
	tok, err := uc.tokens.Get(ctx)
	if err != nil {
		return nil, fmt.Errorf("leer credencial: %w", err)
	}
	if tok == nil {
		return &dto.ConnectionStatus{Connected: false}, nil
	}
	return uc.status(tok), nil
}

// Disconnect elimina la credencial. Los mapeos se conservan.
func (uc *ConnectionUseCase) Disconnect(ctx context.Context) error {
	if err := uc.tokens.Delete(ctx); err != nil {
		return fmt.Errorf("eliminar credencial: %w", err)
	}
	uc.log.Info().Msg("ledger desconectado")
	return nil
}

func (uc *ConnectionUseCase) status(tok *entity.SyncToken) *dto.ConnectionStatus {
	st := &dto.ConnectionStatus{
		Connected:    true,
		RealmID:      tok.RealmID,
		NeedsRefresh: tok.ExpiresWithin(uc.now(), entity.RefreshMargin),
	}
	exp := tok.ExpiresAt
	st.ExpiresAt = &exp
	if !tok.RefreshTokenExpiresAt.IsZero() {
		rexp := tok.RefreshTokenExpiresAt
		st.RefreshTokenExpiresAt = &rexp
	}
	return st
}
