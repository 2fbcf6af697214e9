package dto

import "time"

// PageRequest body para POST /api/ledger/:entity/import y /export.
type PageRequest struct {
	StartPosition int `json:"start_position" validate:"min=0"`
}

// PageResult cursor de una invocación paginada. El llamador decide si invoca la siguiente página.
type PageResult struct {
	HasMore           bool `json:"has_more"`
	NextStartPosition int  `json:"next_start_position"`
	TotalCount        int  `json:"total_count"`
	Processed         int  `json:"processed"`
}

// ImportResult resultado de una página de importación (ledger -> local).
type ImportResult struct {
	Imported int `json:"imported"`
	Updated  int `json:"updated"`
	Skipped  int `json:"skipped"`
	PageResult
}

// ExportResult resultado de una página de exportación (local -> ledger).
// Linked cuenta los registros que adoptaron un remoto existente por nombre duplicado.
type ExportResult struct {
	Created int      `json:"created"`
	Updated int      `json:"updated"`
	Linked  int      `json:"linked"`
	Errors  []string `json:"errors"`
	PageResult
}

// SyncSingleResult resultado de POST /api/ledger/:entity/:id/sync.
type SyncSingleResult struct {
	Success  bool   `json:"success"`
	RemoteID string `json:"remote_id"`
}

// FindOrCreateResult resultado de POST /api/ledger/:entity/:id/find-or-create.
type FindOrCreateResult struct {
	RemoteID string `json:"remote_id"`
}

// ConnectURLResponse URL de consentimiento OAuth.
type ConnectURLResponse struct {
	URL string `json:"url"`
}

// CallbackRequest query del redirect OAuth del proveedor.
type CallbackRequest struct {
	Code    string `query:"code" validate:"required"`
	RealmID string `query:"realmId" validate:"required"`
	State   string `query:"state" validate:"required"`
}

// ConnectionStatus estado de la credencial del ledger.
type ConnectionStatus struct {
	Connected             bool       `json:"connected"`
	RealmID               string     `json:"realm_id,omitempty"`
	ExpiresAt             *time.Time `json:"expires_at,omitempty"`
	RefreshTokenExpiresAt *time.Time `json:"refresh_token_expires_at,omitempty"`
	NeedsRefresh          bool       `json:"needs_refresh"`
}

// SyncLogResponse entrada de la bitácora en GET /api/ledger/logs.
type SyncLogResponse struct {
	ID         string    `json:"id"`
	EntityType string    `json:"entity_type"`
	Action     string    `json:"action"`
	Status     string    `json:"status"`
	Processed  int       `json:"processed"`
	Created    int       `json:"created"`
	Updated    int       `json:"updated"`
	Skipped    int       `json:"skipped"`
	Failed     int       `json:"failed"`
	TotalCount int       `json:"total_count"`
	Message    string    `json:"message,omitempty"`
	UserID     string    `json:"user_id,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
}
