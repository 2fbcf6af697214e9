package memory

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/jhoicas/ledger-sync/internal/domain"
	"github.com/jhoicas/ledger-sync/internal/domain/entity"
	"github.com/jhoicas/ledger-sync/internal/domain/repository"
)

var _ repository.MappingRepository = (*MappingRepo)(nil)

// MappingRepo mantiene la biyección local_id <-> remote_id por tipo.
type MappingRepo struct {
	s    *Store
	undo *undoLog
}

func (r *MappingRepo) FindRemoteID(ctx context.Context, kind entity.PartyKind, localID string) (string, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	if m, ok := r.s.st.localToRemote[mappingKey{kind, localID}]; ok {
		return m.RemoteID, nil
	}
	return "", nil
}

func (r *MappingRepo) FindLocalID(ctx context.Context, kind entity.PartyKind, remoteID string) (string, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	return r.s.st.remoteToLocal[mappingKey{kind, remoteID}], nil
}

func (r *MappingRepo) FindByRemoteIDs(ctx context.Context, kind entity.PartyKind, remoteIDs []string) (map[string]string, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	out := make(map[string]string, len(remoteIDs))
	for _, id := range remoteIDs {
		if local, ok := r.s.st.remoteToLocal[mappingKey{kind, id}]; ok {
			out[id] = local
		}
	}
	return out, nil
}

func (r *MappingRepo) FindByLocalIDs(ctx context.Context, kind entity.PartyKind, localIDs []string) (map[string]string, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	out := make(map[string]string, len(localIDs))
	for _, id := range localIDs {
		if m, ok := r.s.st.localToRemote[mappingKey{kind, id}]; ok {
			out[id] = m.RemoteID
		}
	}
	return out, nil
}

// Upsert reemplaza el mapeo del local_id (último en escribir gana). Falla con
// domain.ErrMappingConflict si remote_id ya pertenece a otro local_id.
func (r *MappingRepo) Upsert(ctx context.Context, kind entity.PartyKind, localID, remoteID string, syncedAt time.Time) error {
	if localID == "" || remoteID == "" {
		return domain.ErrInvalidInput
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	rk := mappingKey{kind, remoteID}
	if owner, ok := r.s.st.remoteToLocal[rk]; ok && owner != localID {
		return domain.ErrMappingConflict
	}
	lk := mappingKey{kind, localID}
	r.undo.local(&r.s.st, lk)
	r.undo.remote(&r.s.st, rk)
	if prev, ok := r.s.st.localToRemote[lk]; ok {
		if prev.RemoteID != remoteID {
			r.undo.remote(&r.s.st, mappingKey{kind, prev.RemoteID})
			delete(r.s.st.remoteToLocal, mappingKey{kind, prev.RemoteID})
		}
		prev.RemoteID = remoteID
		prev.SyncedAt = syncedAt
		prev.Status = entity.MappingStatusSynced
	} else {
		r.s.st.localToRemote[lk] = &entity.IdentityMapping{
			ID:         uuid.NewString(),
			EntityType: kind,
			LocalID:    localID,
			RemoteID:   remoteID,
			Status:     entity.MappingStatusSynced,
			SyncedAt:   syncedAt,
			CreatedAt:  r.s.now(),
		}
	}
	r.s.st.remoteToLocal[rk] = localID
	return nil
}

func (r *MappingRepo) Delete(ctx context.Context, kind entity.PartyKind, localID string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	lk := mappingKey{kind, localID}
	if m, ok := r.s.st.localToRemote[lk]; ok {
		r.undo.local(&r.s.st, lk)
		r.undo.remote(&r.s.st, mappingKey{kind, m.RemoteID})
		delete(r.s.st.remoteToLocal, mappingKey{kind, m.RemoteID})
		delete(r.s.st.localToRemote, lk)
	}
	return nil
}

// Get devuelve una copia del mapeo completo (tests y CLI).
func (r *MappingRepo) Get(kind entity.PartyKind, localID string) (entity.IdentityMapping, bool) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	m, ok := r.s.st.localToRemote[mappingKey{kind, localID}]
	if !ok {
		return entity.IdentityMapping{}, false
	}
	return *m, true
}

// Len número de mapeos del tipo.
func (r *MappingRepo) Len(kind entity.PartyKind) int {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	n := 0
	for k := range r.s.st.localToRemote {
		if k.kind == kind {
			n++
		}
	}
	return n
}
