package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// PartyKind tipo de entidad sincronizada con el ledger externo.
type PartyKind string

// Tipos de entidad soportados (exactamente dos).
const (
	PartyCustomer PartyKind = "customer"
	PartyVendor   PartyKind = "vendor"
)

// Valid indica si el tipo es uno de los soportados.
func (k PartyKind) Valid() bool {
	return k == PartyCustomer || k == PartyVendor
}

// EmailRequired los clientes exigen email en el esquema local; los proveedores no.
func (k PartyKind) EmailRequired() bool {
	return k == PartyCustomer
}

// Party representa un cliente o proveedor local (obra, facturación, órdenes de compra).
type Party struct {
	ID          string
	Kind        PartyKind
	Name        string // nombre visible; en el ledger debe ser único
	CompanyName string
	Email       string
	Phone       string
	Address     string // dirección aplanada en una sola línea
	TaxID       string
	Balance     decimal.Decimal // espejo del saldo remoto, solo lectura localmente
	RemoteID    string          // mapeo desnormalizado (JOIN); puede estar vacío o desactualizado
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// ParsePartyKind acepta el segmento de ruta/CLI ("customers", "vendors") o el valor singular.
func ParsePartyKind(s string) (PartyKind, bool) {
	switch s {
	case "customers", "customer":
		return PartyCustomer, true
	case "vendors", "vendor":
		return PartyVendor, true
	default:
		return "", false
	}
}
