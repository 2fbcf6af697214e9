package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/ledger-sync/internal/domain/entity"
	"github.com/jhoicas/ledger-sync/internal/domain/repository"
)

var _ repository.TokenRepository = (*TokenRepo)(nil)

// TokenRepo fila única (id = 1) de ledger_tokens.
type TokenRepo struct {
	q Querier
}

func NewTokenRepository(q Querier) *TokenRepo {
	return &TokenRepo{q: q}
}

// Get devuelve nil, nil si no hay credencial.
func (r *TokenRepo) Get(ctx context.Context) (*entity.SyncToken, error) {
	query := `
		SELECT access_token, refresh_token, expires_at, refresh_token_expires_at, realm_id, updated_at
		FROM ledger_tokens WHERE id = 1`
	var t entity.SyncToken
	var refreshExp *time.Time
	err := r.q.QueryRow(ctx, query).Scan(
		&t.AccessToken, &t.RefreshToken, &t.ExpiresAt, &refreshExp, &t.RealmID, &t.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get ledger token: %w", err)
	}
	if refreshExp != nil {
		t.RefreshTokenExpiresAt = *refreshExp
	}
	return &t, nil
}

// Save reemplaza la fila única.
func (r *TokenRepo) Save(ctx context.Context, t *entity.SyncToken) error {
	var refreshExp *time.Time
	if !t.RefreshTokenExpiresAt.IsZero() {
		refreshExp = &t.RefreshTokenExpiresAt
	}
	query := `
		INSERT INTO ledger_tokens (id, access_token, refresh_token, expires_at, refresh_token_expires_at, realm_id, updated_at)
		VALUES (1, $1, $2, $3, $4, $5, $6)
		ON CONFLICT (id) DO UPDATE
		SET access_token = EXCLUDED.access_token, refresh_token = EXCLUDED.refresh_token,
		    expires_at = EXCLUDED.expires_at, refresh_token_expires_at = EXCLUDED.refresh_token_expires_at,
		    realm_id = EXCLUDED.realm_id, updated_at = EXCLUDED.updated_at`
	_, err := r.q.Exec(ctx, query, t.AccessToken, t.RefreshToken, t.ExpiresAt, refreshExp, t.RealmID, t.UpdatedAt)
	if err != nil {
		return fmt.Errorf("save ledger token: %w", err)
	}
	return nil
}

func (r *TokenRepo) Delete(ctx context.Context) error {
	if _, err := r.q.Exec(ctx, `DELETE FROM ledger_tokens WHERE id = 1`); err != nil {
		return fmt.Errorf("delete ledger token: %w", err)
	}
	return nil
}
