package http

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/jhoicas/ledger-sync/internal/application/dto"
	"github.com/jhoicas/ledger-sync/internal/domain"
	domledger "github.com/jhoicas/ledger-sync/internal/domain/ledger"
)

// writeError traduce errores de dominio y del ledger a la respuesta HTTP.
func writeError(c *fiber.Ctx, log zerolog.Logger, err error) error {
	status, code := fiber.StatusInternalServerError, "INTERNAL"
	var apiErr *domledger.APIError
	switch {
	case errors.Is(err, domain.ErrNotConnected):
		status, code = fiber.StatusConflict, "NOT_CONNECTED"
	case errors.Is(err, domain.ErrRefreshFailed):
		status, code = fiber.StatusBadGateway, "REFRESH_FAILED"
	case errors.Is(err, domain.ErrMappingInconsistent):
		status, code = fiber.StatusConflict, "MAPPING_INCONSISTENT"
	case errors.Is(err, domain.ErrMappingConflict):
		status, code = fiber.StatusConflict, "MAPPING_CONFLICT"
	case errors.Is(err, domain.ErrSyncBusy):
		status, code = fiber.StatusConflict, "SYNC_BUSY"
	case errors.Is(err, domain.ErrNotFound):
		status, code = fiber.StatusNotFound, "NOT_FOUND"
	case errors.Is(err, domain.ErrInvalidInput), errors.Is(err, domledger.ErrEmptyDisplayName):
		status, code = fiber.StatusBadRequest, "VALIDATION"
	case errors.Is(err, domain.ErrUnauthorized):
		status, code = fiber.StatusUnauthorized, "UNAUTHORIZED"
	case errors.As(err, &apiErr):
		status, code = fiber.StatusBadGateway, "LEDGER_ERROR"
	}
	if status >= fiber.StatusInternalServerError {
		log.Error().Err(err).Str("path", c.Path()).Msg("error en operación del ledger")
	}
	return c.Status(status).JSON(dto.ErrorResponse{Code: code, Message: err.Error()})
}
