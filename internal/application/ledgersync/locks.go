package ledgersync

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/jhoicas/ledger-sync/internal/domain"
	"github.com/jhoicas/ledger-sync/internal/domain/entity"
)

// KindLocks serializa en el proceso las operaciones de sincronización de un mismo tipo
// (importación, exportación y sincronización individual).
type KindLocks struct {
	mu      sync.Mutex
	sems    map[entity.PartyKind]chan struct{}
	timeout time.Duration
}

// NewKindLocks timeout <= 0 espera solo mientras el ctx siga vivo.
func NewKindLocks(timeout time.Duration) *KindLocks {
	return &KindLocks{sems: make(map[entity.PartyKind]chan struct{}), timeout: timeout}
}

func (l *KindLocks) sem(kind entity.PartyKind) chan struct{} {
	l.mu.Lock()
	defer l.mu.Unlock()
	s, ok := l.sems[kind]
	if !ok {
		s = make(chan struct{}, 1)
		l.sems[kind] = s
	}
	return s
}

// Acquire bloquea hasta obtener el candado del tipo. Devuelve la función de liberación.
// Si vence la espera de l.timeout falla con domain.ErrSyncBusy; si el ctx del llamador termina
// antes, devuelve ctx.Err() sin envolver.
func (l *KindLocks) Acquire(ctx context.Context, kind entity.PartyKind) (func(), error) {
	var expired <-chan time.Time
	if l.timeout > 0 {
		timer := time.NewTimer(l.timeout)
		defer timer.Stop()
		expired = timer.C
	}
	s := l.sem(kind)
	select {
	case s <- struct{}{}:
		var once sync.Once
		return func() { once.Do(func() { <-s }) }, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	case <-expired:
		return nil, fmt.Errorf("%w (%s): espera de %s agotada", domain.ErrSyncBusy, kind, l.timeout)
	}
}
