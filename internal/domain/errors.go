package domain

import "errors"

// Errores de dominio (sin dependencias externas).
var (
	ErrNotFound     = errors.New("recurso no encontrado")
	ErrInvalidInput = errors.New("entrada inválida")
	ErrDuplicate    = errors.New("recurso duplicado")
	ErrUnauthorized = errors.New("no autorizado")
	ErrForbidden    = errors.New("acceso denegado")
	ErrConflict     = errors.New("conflicto con el estado actual")
)

// Errores de sincronización con el ledger externo.
var (
	// ErrNotConnected no existe credencial del ledger; fatal para la invocación.
	ErrNotConnected = errors.New("ledger externo no conectado")
	// ErrRefreshFailed el proveedor de identidad rechazó el refresh token.
	ErrRefreshFailed = errors.New("no se pudo renovar el token del ledger")
	// ErrMappingInconsistent existe mapeo pero el registro remoto no.
	ErrMappingInconsistent = errors.New("mapeo apunta a un registro remoto inexistente")
	// ErrMappingConflict el remote_id ya está mapeado a otro registro local.
	ErrMappingConflict = errors.New("el registro remoto ya está mapeado a otro registro local")
	// ErrSyncBusy la sincronización del tipo no pudo adquirir el candado a tiempo.
	ErrSyncBusy = errors.New("sincronización en curso para este tipo de entidad")
)
