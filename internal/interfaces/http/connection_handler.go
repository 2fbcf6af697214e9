package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/jhoicas/ledger-sync/internal/application/dto"
	"github.com/jhoicas/ledger-sync/internal/application/ledgersync"
)

// ConnectionHandler conexión OAuth con el ledger.
type ConnectionHandler struct {
	uc  *ledgersync.ConnectionUseCase
	log zerolog.Logger
}

// NewConnectionHandler construye el handler.
func NewConnectionHandler(uc *ledgersync.ConnectionUseCase, log zerolog.Logger) *ConnectionHandler {
	return &ConnectionHandler{uc: uc, log: log}
}

// Status GET /api/ledger/connection
func (h *ConnectionHandler) Status(c *fiber.Ctx) error {
	st, err := h.uc.Status(c.UserContext())
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(st)
}

// Connect GET /api/ledger/connect
func (h *ConnectionHandler) Connect(c *fiber.Ctx) error {
	res, err := h.uc.ConnectURL(GetUserID(c))
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(res)
}

// Callback GET /api/ledger/callback?code=&realmId=&state= (público; el state firmado autentica).
func (h *ConnectionHandler) Callback(c *fiber.Ctx) error {
	var in dto.CallbackRequest
	if err := c.QueryParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_QUERY", Message: "parámetros inválidos"})
	}
	if err := validate.Struct(in); err != nil {
		return validationError(c, err)
	}
	st, err := h.uc.Complete(c.UserContext(), in.Code, in.RealmID, in.State)
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(st)
}

// Disconnect DELETE /api/ledger/connection
func (h *ConnectionHandler) Disconnect(c *fiber.Ctx) error {
	if err := h.uc.Disconnect(c.UserContext()); err != nil {
		return writeError(c, h.log, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}
