// Package ledger contiene el modelo del ledger contable externo (forma remota de clientes y
// proveedores), sus errores tipados y la traducción pura entre la forma local y la remota.
package ledger

import (
	"github.com/shopspring/decimal"
)

// Credentials token de acceso vigente y realm (tenant) contra el que se opera.
type Credentials struct {
	AccessToken string
	RealmID     string
}

// EmailAddress dirección de correo en la forma remota.
type EmailAddress struct {
	Address string `json:"Address"`
}

// TelephoneNumber teléfono en la forma remota.
type TelephoneNumber struct {
	FreeFormNumber string `json:"FreeFormNumber"`
}

// PhysicalAddress dirección de facturación en la forma remota.
type PhysicalAddress struct {
	Line1                  string `json:"Line1,omitempty"`
	Line2                  string `json:"Line2,omitempty"`
	City                   string `json:"City,omitempty"`
	CountrySubDivisionCode string `json:"CountrySubDivisionCode,omitempty"`
	PostalCode             string `json:"PostalCode,omitempty"`
	Country                string `json:"Country,omitempty"`
}

// RemoteParty cliente o proveedor tal como lo representa el ledger.
// Los campos opcionales son punteros: ausente (nil) no es lo mismo que vacío.
type RemoteParty struct {
	ID               string           `json:"Id,omitempty"`
	SyncToken        string           `json:"SyncToken,omitempty"`
	Sparse           bool             `json:"sparse,omitempty"`
	DisplayName      string           `json:"DisplayName"`
	CompanyName      *string          `json:"CompanyName,omitempty"`
	PrimaryEmailAddr *EmailAddress    `json:"PrimaryEmailAddr,omitempty"`
	PrimaryPhone     *TelephoneNumber `json:"PrimaryPhone,omitempty"`
	BillAddr         *PhysicalAddress `json:"BillAddr,omitempty"`
	Balance          *decimal.Decimal `json:"Balance,omitempty"`
	Active           *bool            `json:"Active,omitempty"`
}
