package ledgersync

import (
	"sync"

	"github.com/jhoicas/ledger-sync/internal/domain/entity"
)

// batchTally suma los contadores de las páginas contiguas de un lote para la única entrada de
// bitácora que se escribe al final. Una página que empieza en 0, o que no continúa donde terminó
// la anterior, abre un lote nuevo. Vive en el proceso: si el lote se reanuda en otra instancia
// la entrada cubre solo las páginas vistas aquí.
type batchTally struct {
	mu   sync.Mutex
	runs map[entity.PartyKind]*batchRun
}

type batchRun struct {
	next  int
	entry entity.SyncLogEntry
}

func newBatchTally() *batchTally {
	return &batchTally{runs: make(map[entity.PartyKind]*batchRun)}
}

// add acumula la página [start, next) y devuelve los totales del lote hasta ahora.
// Con final = true el lote se cierra.
func (t *batchTally) add(kind entity.PartyKind, start, next int, page entity.SyncLogEntry, final bool) entity.SyncLogEntry {
	t.mu.Lock()
	defer t.mu.Unlock()

	run, ok := t.runs[kind]
	if !ok || start == 0 || run.next != start {
		run = &batchRun{}
		t.runs[kind] = run
	}
	e := &run.entry
	e.Processed += page.Processed
	e.Created += page.Created
	e.Updated += page.Updated
	e.Skipped += page.Skipped
	e.Failed += page.Failed
	if e.Message == "" {
		e.Message = page.Message
	}
	e.TotalCount = page.TotalCount
	run.next = next

	out := run.entry
	if final {
		delete(t.runs, kind)
	}
	return out
}
