package entity

import "time"

// Estados de sincronización de un mapeo.
const (
	MappingStatusSynced = "synced"
)

// IdentityMapping correspondencia entre un Party local y su registro en el ledger externo.
// Biyección por tipo: un local_id tiene a lo sumo un remote_id y viceversa.
type IdentityMapping struct {
	ID         string
	EntityType PartyKind
	LocalID    string
	RemoteID   string
	Status     string
	SyncedAt   time.Time
	CreatedAt  time.Time
}
