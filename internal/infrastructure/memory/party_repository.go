package memory

import (
	"context"
	"sort"

	"github.com/jhoicas/ledger-sync/internal/domain"
	"github.com/jhoicas/ledger-sync/internal/domain/entity"
	"github.com/jhoicas/ledger-sync/internal/domain/repository"
)

var _ repository.PartyRepository = (*PartyRepo)(nil)

// PartyRepo implementación en memoria de repository.PartyRepository.
type PartyRepo struct {
	s    *Store
	undo *undoLog
}

// Create inserta; mismas restricciones que el esquema SQL (nombre obligatorio, email para clientes).
func (r *PartyRepo) Create(ctx context.Context, p *entity.Party) error {
	if err := validParty(p); err != nil {
		return err
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	k := mappingKey{p.Kind, p.ID}
	if _, ok := r.s.st.parties[k]; ok {
		return domain.ErrDuplicate
	}
	stored := *p
	stored.RemoteID = ""
	r.undo.party(&r.s.st, k)
	r.s.st.parties[k] = stored
	return nil
}

func (r *PartyRepo) Update(ctx context.Context, p *entity.Party) error {
	if err := validParty(p); err != nil {
		return err
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	k := mappingKey{p.Kind, p.ID}
	prev, ok := r.s.st.parties[k]
	if !ok {
		return domain.ErrNotFound
	}
	stored := *p
	stored.RemoteID = ""
	stored.CreatedAt = prev.CreatedAt
	r.undo.party(&r.s.st, k)
	r.s.st.parties[k] = stored
	return nil
}

// GetByID devuelve nil, nil si no existe.
func (r *PartyRepo) GetByID(ctx context.Context, kind entity.PartyKind, id string) (*entity.Party, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	p, ok := r.s.st.parties[mappingKey{kind, id}]
	if !ok {
		return nil, nil
	}
	return r.withRemote(p), nil
}

func (r *PartyRepo) GetByIDs(ctx context.Context, kind entity.PartyKind, ids []string) ([]*entity.Party, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	out := make([]*entity.Party, 0, len(ids))
	for _, id := range ids {
		if p, ok := r.s.st.parties[mappingKey{kind, id}]; ok {
			out = append(out, r.withRemote(p))
		}
	}
	return out, nil
}

// ListRange orden estable (created_at, id).
func (r *PartyRepo) ListRange(ctx context.Context, kind entity.PartyKind, offset, limit int) ([]*entity.Party, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	all := make([]entity.Party, 0)
	for k, p := range r.s.st.parties {
		if k.kind == kind {
			all = append(all, p)
		}
	}
	sort.Slice(all, func(i, j int) bool {
		if !all[i].CreatedAt.Equal(all[j].CreatedAt) {
			return all[i].CreatedAt.Before(all[j].CreatedAt)
		}
		return all[i].ID < all[j].ID
	})
	if offset >= len(all) {
		return []*entity.Party{}, nil
	}
	end := offset + limit
	if limit <= 0 || end > len(all) {
		end = len(all)
	}
	out := make([]*entity.Party, 0, end-offset)
	for _, p := range all[offset:end] {
		out = append(out, r.withRemote(p))
	}
	return out, nil
}

func (r *PartyRepo) Count(ctx context.Context, kind entity.PartyKind) (int, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	n := 0
	for k := range r.s.st.parties {
		if k.kind == kind {
			n++
		}
	}
	return n, nil
}

// withRemote emula el LEFT JOIN con ledger_mappings. Requiere s.mu tomado.
func (r *PartyRepo) withRemote(p entity.Party) *entity.Party {
	if m, ok := r.s.st.localToRemote[mappingKey{p.Kind, p.ID}]; ok {
		p.RemoteID = m.RemoteID
	}
	return &p
}

func validParty(p *entity.Party) error {
	if p == nil || p.ID == "" || !p.Kind.Valid() || p.Name == "" {
		return domain.ErrInvalidInput
	}
	if p.Kind.EmailRequired() && p.Email == "" {
		return domain.ErrInvalidInput
	}
	return nil
}
