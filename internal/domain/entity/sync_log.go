package entity

import "time"

// Acciones registradas en la bitácora de sincronización.
const (
	SyncActionImport       = "import"
	SyncActionExport       = "export"
	SyncActionSyncSingle   = "sync-single"
	SyncActionFindOrCreate = "find-or-create"
)

// Estados de una operación completada.
const (
	SyncStatusSuccess = "success"
	SyncStatusPartial = "partial"
	SyncStatusFailed  = "failed"
)

// SyncLogEntry registro append-only de una operación lógica completada.
// Los lotes paginados escriben una sola entrada, después de la última página.
type SyncLogEntry struct {
	ID         string
	EntityType PartyKind
	Action     string
	Status     string
	Processed  int
	Created    int
	Updated    int
	Skipped    int
	Failed     int
	TotalCount int
	Message    string
	UserID     string
	CreatedAt  time.Time
}
