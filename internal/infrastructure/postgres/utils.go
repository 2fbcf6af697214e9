package postgres

import (
	"errors"

	"github.com/jackc/pgx/v5/pgconn"

	"github.com/jhoicas/ledger-sync/internal/domain/entity"
)

// constraintMappingRemote índice único (entity_type, remote_id); ver migrations/001_ledger_sync.sql.
const constraintMappingRemote = "ledger_mappings_entity_remote_key"

// isUniqueViolation verifica si un error es una violación de constraint único (23505).
// constraint vacío acepta cualquier constraint.
func isUniqueViolation(err error, constraint string) bool {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) || pgErr.Code != "23505" {
		return false
	}
	return constraint == "" || pgErr.ConstraintName == constraint
}

// isConstraintViolation 23502 (por ejemplo, email vacío de un cliente) o check 23514.
func isConstraintViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && (pgErr.Code == "23502" || pgErr.Code == "23514")
}

// partyTable tabla local por tipo; lista cerrada, nunca viene de la entrada del usuario.
func partyTable(kind entity.PartyKind) (string, bool) {
	switch kind {
	case entity.PartyCustomer:
		return "customers", true
	case entity.PartyVendor:
		return "vendors", true
	default:
		return "", false
	}
}
