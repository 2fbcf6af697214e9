package ledgersync

import (
	"context"

	"github.com/google/uuid"

	"github.com/jhoicas/ledger-sync/internal/domain/entity"
)

// record escribe una entrada en la bitácora sin afectar el resultado de la operación:
// un fallo del sink solo se registra en el log.
func (d Deps) record(ctx context.Context, entry *entity.SyncLogEntry) {
	if d.Logs == nil {
		return
	}
	entry.ID = uuid.NewString()
	entry.CreatedAt = d.now()
	if entry.Status == "" {
		entry.Status = statusFor(entry.Failed + entry.Skipped)
	}
	if err := d.Logs.Append(context.WithoutCancel(ctx), entry); err != nil {
		d.Log.Warn().Err(err).
			Str("entity_type", string(entry.EntityType)).
			Str("action", entry.Action).
			Msg("no se pudo escribir la bitácora de sincronización")
	}
}

func statusFor(failures int) string {
	if failures > 0 {
		return entity.SyncStatusPartial
	}
	return entity.SyncStatusSuccess
}
