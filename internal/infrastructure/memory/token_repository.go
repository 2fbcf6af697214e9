package memory

import (
	"context"

	"github.com/jhoicas/ledger-sync/internal/domain/entity"
	"github.com/jhoicas/ledger-sync/internal/domain/repository"
)

var _ repository.TokenRepository = (*TokenRepo)(nil)

// TokenRepo fila única de credencial.
type TokenRepo struct {
	s *Store
}

func (r *TokenRepo) Get(ctx context.Context) (*entity.SyncToken, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	if r.s.st.token == nil {
		return nil, nil
	}
	t := *r.s.st.token
	return &t, nil
}

func (r *TokenRepo) Save(ctx context.Context, token *entity.SyncToken) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	t := *token
	r.s.st.token = &t
	return nil
}

func (r *TokenRepo) Delete(ctx context.Context) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	r.s.st.token = nil
	return nil
}
