package ledger

import (
	"fmt"
	"strings"

	"github.com/jhoicas/ledger-sync/internal/domain/entity"
)

// resourceName nombre del recurso REST (minúsculas) y de la entidad en las consultas.
func resourceName(kind entity.PartyKind) (path string, entityName string, err error) {
	switch kind {
	case entity.PartyCustomer:
		return "customer", "Customer", nil
	case entity.PartyVendor:
		return "vendor", "Vendor", nil
	default:
		return "", "", fmt.Errorf("ledger: tipo de entidad no soportado %q", kind)
	}
}

// quoteLiteral escapa un literal para el lenguaje de consulta tipo SQL del ledger.
func quoteLiteral(s string) string {
	s = strings.ReplaceAll(s, `\`, `\\`)
	s = strings.ReplaceAll(s, `'`, `\'`)
	return "'" + s + "'"
}

func countQuery(entityName string) string {
	return "SELECT COUNT(*) FROM " + entityName
}

// pageQuery STARTPOSITION es 1-based en el ledger; offset es 0-based.
func pageQuery(entityName string, offset, limit int) string {
	return fmt.Sprintf("SELECT * FROM %s ORDERBY Id STARTPOSITION %d MAXRESULTS %d", entityName, offset+1, limit)
}

func displayNameQuery(entityName, name string) string {
	return fmt.Sprintf("SELECT * FROM %s WHERE DisplayName = %s", entityName, quoteLiteral(name))
}
