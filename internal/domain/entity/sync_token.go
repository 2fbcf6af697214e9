package entity

import "time"

// RefreshMargin un token que vence dentro de este margen se trata como vencido.
const RefreshMargin = 5 * time.Minute

// SyncToken credencial OAuth del ledger externo. Una sola fila por proceso, se actualiza en sitio.
type SyncToken struct {
	AccessToken           string
	RefreshToken          string
	ExpiresAt             time.Time
	RefreshTokenExpiresAt time.Time // informativo; cero si el proveedor no lo reporta
	RealmID               string    // tenant/compañía en el ledger
	UpdatedAt             time.Time
}

// ExpiresWithin indica si el token vence antes de now+margin.
func (t *SyncToken) ExpiresWithin(now time.Time, margin time.Duration) bool {
	return t.ExpiresAt.Sub(now) < margin
}
