// Package memory implementa los puertos de persistencia en memoria (APP_STORAGE=memory y tests)
// y un ledger remoto en memoria con las mismas reglas que el real: nombres únicos, SyncToken
// obligatorio en updates y error de nombre duplicado.
package memory

import (
	"context"
	"sync"
	"time"

	"github.com/jhoicas/ledger-sync/internal/application/ledgersync"
	"github.com/jhoicas/ledger-sync/internal/domain/entity"
	"github.com/jhoicas/ledger-sync/internal/domain/repository"
)

var _ ledgersync.TxRunner = (*Store)(nil)

type mappingKey struct {
	kind entity.PartyKind
	id   string
}

// state datos protegidos por Store.mu.
type state struct {
	parties       map[mappingKey]entity.Party
	localToRemote map[mappingKey]*entity.IdentityMapping
	remoteToLocal map[mappingKey]string
	token         *entity.SyncToken
	logs          []entity.SyncLogEntry
}

func newState() state {
	return state{
		parties:       make(map[mappingKey]entity.Party),
		localToRemote: make(map[mappingKey]*entity.IdentityMapping),
		remoteToLocal: make(map[mappingKey]string),
	}
}

// undoLog registra el valor previo de cada clave que escribe una transacción. El rollback
// restaura solo esas claves; las escrituras concurrentes fuera de la transacción se conservan.
// Un undoLog nil (repositorios fuera de RunSync) no registra nada. Se usa con Store.mu tomado.
type undoLog struct {
	steps []func(st *state)
}

func (u *undoLog) party(st *state, k mappingKey) {
	if u == nil {
		return
	}
	prev, ok := st.parties[k]
	u.steps = append(u.steps, func(st *state) {
		if ok {
			st.parties[k] = prev
		} else {
			delete(st.parties, k)
		}
	})
}

func (u *undoLog) local(st *state, k mappingKey) {
	if u == nil {
		return
	}
	var saved entity.IdentityMapping
	prev, ok := st.localToRemote[k]
	if ok {
		saved = *prev
	}
	u.steps = append(u.steps, func(st *state) {
		if ok {
			m := saved
			st.localToRemote[k] = &m
		} else {
			delete(st.localToRemote, k)
		}
	})
}

func (u *undoLog) remote(st *state, k mappingKey) {
	if u == nil {
		return
	}
	prev, ok := st.remoteToLocal[k]
	u.steps = append(u.steps, func(st *state) {
		if ok {
			st.remoteToLocal[k] = prev
		} else {
			delete(st.remoteToLocal, k)
		}
	})
}

// rollback aplica los pasos en orden inverso.
func (u *undoLog) rollback(st *state) {
	for i := len(u.steps) - 1; i >= 0; i-- {
		u.steps[i](st)
	}
}

// Store almacén en memoria compartido por todos los repositorios del paquete.
type Store struct {
	mu   sync.RWMutex
	txMu sync.Mutex
	st   state
	now  func() time.Time
}

// NewStore crea un almacén vacío.
func NewStore() *Store {
	return &Store{st: newState(), now: time.Now}
}

// Parties repositorio de clientes y proveedores.
func (s *Store) Parties() *PartyRepo { return &PartyRepo{s: s} }

// Mappings repositorio de mapeos de identidad.
func (s *Store) Mappings() *MappingRepo { return &MappingRepo{s: s} }

// Tokens repositorio de la credencial del ledger.
func (s *Store) Tokens() *TokenRepo { return &TokenRepo{s: s} }

// Logs bitácora de sincronización.
func (s *Store) Logs() *SyncLogRepo { return &SyncLogRepo{s: s} }

// RunSync ejecuta fn con repositorios que registran sus escrituras y, si fn devuelve error,
// deshace solo esas escrituras. Las transacciones se serializan entre sí.
func (s *Store) RunSync(ctx context.Context, fn func(parties repository.PartyRepository, mappings repository.MappingRepository) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.txMu.Lock()
	defer s.txMu.Unlock()

	undo := &undoLog{}
	if err := fn(&PartyRepo{s: s, undo: undo}, &MappingRepo{s: s, undo: undo}); err != nil {
		s.mu.Lock()
		undo.rollback(&s.st)
		s.mu.Unlock()
		return err
	}
	return nil
}
