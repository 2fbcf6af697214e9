package ledger

import (
	"errors"
	"fmt"
)

// Códigos de error de aplicación del ledger (Fault.Error[].code).
const (
	CodeDuplicateName  = "6240"
	CodeObjectNotFound = "610"
	CodeStaleObject    = "5010"
)

// ErrRemoteNotFound el registro remoto no existe (HTTP 404 o código 610).
var ErrRemoteNotFound = errors.New("ledger: registro remoto no encontrado")

// APIError respuesta no-2xx del ledger que no tiene una clasificación más específica.
type APIError struct {
	StatusCode int
	Code       string
	Message    string
	Detail     string
}

func (e *APIError) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("ledger: HTTP %d código %s: %s", e.StatusCode, e.Code, e.message())
	}
	return fmt.Sprintf("ledger: HTTP %d: %s", e.StatusCode, e.message())
}

func (e *APIError) message() string {
	if e.Detail != "" && e.Detail != e.Message {
		return e.Message + " (" + e.Detail + ")"
	}
	return e.Message
}

// Is permite errors.Is(err, ErrRemoteNotFound).
func (e *APIError) Is(target error) bool {
	return target == ErrRemoteNotFound && (e.Code == CodeObjectNotFound || e.StatusCode == 404)
}

// DuplicateNameError el ledger rechazó un create porque el nombre visible ya existe.
// Es recuperable: dispara la resolución buscar-o-renombrar.
type DuplicateNameError struct {
	Message string
}

func (e *DuplicateNameError) Error() string {
	return "ledger: nombre duplicado: " + e.Message
}

// IsDuplicateName indica si err (o alguno que envuelva) es un DuplicateNameError.
func IsDuplicateName(err error) bool {
	var dup *DuplicateNameError
	return errors.As(err, &dup)
}
