package ledger

import (
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"golang.org/x/text/unicode/norm"

	"github.com/jhoicas/ledger-sync/internal/domain/entity"
)

// MaxDisplayNameLen longitud máxima (en runas) del nombre visible en el ledger.
const MaxDisplayNameLen = 100

// sentinelEmailDomain dominio reservado (.invalid) para el email sintético de clientes sin correo.
const sentinelEmailDomain = "@placeholder.invalid"

// ErrEmptyDisplayName un registro sin nombre no se puede enviar al ledger.
var ErrEmptyDisplayName = errors.New("ledger: nombre visible vacío")

// remoteField regla "omitir si está vacío" para un campo opcional de la forma remota.
type remoteField struct {
	name  string
	value func(p *entity.Party) string
	set   func(r *RemoteParty, v string)
}

// remoteFields tabla de campos opcionales. Un valor vacío tras normalizar no se envía.
var remoteFields = []remoteField{
	{
		name:  "CompanyName",
		value: func(p *entity.Party) string { return p.CompanyName },
		set:   func(r *RemoteParty, v string) { r.CompanyName = &v },
	},
	{
		name: "PrimaryEmailAddr",
		value: func(p *entity.Party) string {
			if IsSentinelEmail(p.Email) {
				return ""
			}
			return p.Email
		},
		set: func(r *RemoteParty, v string) { r.PrimaryEmailAddr = &EmailAddress{Address: v} },
	},
	{
		name:  "PrimaryPhone",
		value: func(p *entity.Party) string { return p.Phone },
		set:   func(r *RemoteParty, v string) { r.PrimaryPhone = &TelephoneNumber{FreeFormNumber: v} },
	},
	{
		name:  "BillAddr",
		value: func(p *entity.Party) string { return p.Address },
		set:   func(r *RemoteParty, v string) { r.BillAddr = &PhysicalAddress{Line1: v} },
	},
}

// ToRemoteShape traduce un Party local a la forma remota. Función pura.
func ToRemoteShape(p *entity.Party) (*RemoteParty, error) {
	if p == nil {
		return nil, fmt.Errorf("ledger: party nil")
	}
	name := NormalizeDisplayName(p.Name)
	if name == "" {
		return nil, ErrEmptyDisplayName
	}
	r := &RemoteParty{DisplayName: truncateRunes(name, MaxDisplayNameLen)}
	for _, f := range remoteFields {
		if v := strings.TrimSpace(f.value(p)); v != "" {
			f.set(r, v)
		}
	}
	return r, nil
}

// FromRemoteShape vuelca los campos de un registro remoto sobre un Party local (nuevo o existente).
// Los clientes sin correo reciben el email sintético para cumplir el esquema local.
func FromRemoteShape(kind entity.PartyKind, r *RemoteParty, dst *entity.Party) {
	dst.Kind = kind
	dst.Name = NormalizeDisplayName(r.DisplayName)
	dst.CompanyName = deref(r.CompanyName)
	dst.Email = ""
	if r.PrimaryEmailAddr != nil {
		dst.Email = strings.TrimSpace(r.PrimaryEmailAddr.Address)
	}
	if dst.Email == "" && kind.EmailRequired() {
		dst.Email = SentinelEmail(r.ID)
	}
	dst.Phone = ""
	if r.PrimaryPhone != nil {
		dst.Phone = strings.TrimSpace(r.PrimaryPhone.FreeFormNumber)
	}
	dst.Address = FlattenAddress(r.BillAddr)
	if r.Balance != nil {
		dst.Balance = *r.Balance
	}
	dst.RemoteID = r.ID
}

// FlattenAddress une las partes no vacías de la dirección remota en una sola línea.
func FlattenAddress(a *PhysicalAddress) string {
	if a == nil {
		return ""
	}
	parts := make([]string, 0, 6)
	for _, s := range []string{a.Line1, a.Line2, a.City, a.CountrySubDivisionCode, a.PostalCode, a.Country} {
		if s = strings.TrimSpace(s); s != "" {
			parts = append(parts, s)
		}
	}
	return strings.Join(parts, ", ")
}

// NormalizeDisplayName NFC + espacios colapsados. El ledger compara nombres de forma exacta.
func NormalizeDisplayName(s string) string {
	return strings.Join(strings.Fields(norm.NFC.String(s)), " ")
}

// DisambiguatedName agrega un sufijo numérico derivado de now, recortando la base para
// respetar MaxDisplayNameLen.
func DisambiguatedName(name string, now time.Time) string {
	suffix := fmt.Sprintf(" %d", now.UnixMilli()%1_000_000)
	base := truncateRunes(NormalizeDisplayName(name), MaxDisplayNameLen-utf8.RuneCountInString(suffix))
	return strings.TrimRight(base, " ") + suffix
}

// SentinelEmail email sintético para clientes importados sin correo.
func SentinelEmail(remoteID string) string {
	return "noemail+" + remoteID + sentinelEmailDomain
}

// IsSentinelEmail indica si el email es el sintético (nunca se envía al ledger).
func IsSentinelEmail(email string) bool {
	return strings.HasPrefix(email, "noemail+") && strings.HasSuffix(email, sentinelEmailDomain)
}

func truncateRunes(s string, max int) string {
	if max <= 0 {
		return ""
	}
	if utf8.RuneCountInString(s) <= max {
		return s
	}
	return string([]rune(s)[:max])
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return strings.TrimSpace(*s)
}
