package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/jhoicas/ledger-sync/internal/application/dto"
	"github.com/jhoicas/ledger-sync/internal/application/ledgersync"
	"github.com/jhoicas/ledger-sync/internal/domain/entity"
)

// LedgerHandler importación, exportación y sincronización individual (protegido, admin/manager).
type LedgerHandler struct {
	importer *ledgersync.ImportPipeline
	exporter *ledgersync.ExportPipeline
	single   *ledgersync.SingleSync
	logs     *ledgersync.LogUseCase
	log      zerolog.Logger
}

// NewLedgerHandler construye el handler.
func NewLedgerHandler(importer *ledgersync.ImportPipeline, exporter *ledgersync.ExportPipeline,
	single *ledgersync.SingleSync, logs *ledgersync.LogUseCase, log zerolog.Logger) *LedgerHandler {
	return &LedgerHandler{importer: importer, exporter: exporter, single: single, logs: logs, log: log}
}

// Import POST /api/ledger/:entity/import  {start_position}
func (h *LedgerHandler) Import(c *fiber.Ctx) error {
	kind, start, done, err := h.pageInput(c)
	if done {
		return err
	}
	res, err := h.importer.Run(c.UserContext(), kind, start, GetUserID(c))
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(res)
}

// Export POST /api/ledger/:entity/export  {start_position}
func (h *LedgerHandler) Export(c *fiber.Ctx) error {
	kind, start, done, err := h.pageInput(c)
	if done {
		return err
	}
	res, err := h.exporter.Run(c.UserContext(), kind, start, GetUserID(c))
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(res)
}

// Sync POST /api/ledger/:entity/:id/sync
func (h *LedgerHandler) Sync(c *fiber.Ctx) error {
	kind, ok := entityParam(c)
	if !ok {
		return unknownEntity(c)
	}
	res, err := h.single.Sync(c.UserContext(), kind, c.Params("id"), GetUserID(c))
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(res)
}

// FindOrCreate POST /api/ledger/:entity/:id/find-or-create
func (h *LedgerHandler) FindOrCreate(c *fiber.Ctx) error {
	kind, ok := entityParam(c)
	if !ok {
		return unknownEntity(c)
	}
	res, err := h.single.FindOrCreate(c.UserContext(), kind, c.Params("id"), GetUserID(c))
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(res)
}

// Logs GET /api/ledger/logs?entity=vendors&limit=20
func (h *LedgerHandler) Logs(c *fiber.Ctx) error {
	var q dto.LogQuery
	if err := c.QueryParser(&q); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_QUERY", Message: "parámetros inválidos"})
	}
	if err := validate.Struct(q); err != nil {
		return validationError(c, err)
	}
	q.DefaultLimit()
	var kind entity.PartyKind
	if q.Entity != "" {
		kind, _ = entity.ParsePartyKind(q.Entity)
	}
	list, err := h.logs.Recent(c.UserContext(), kind, q.Limit)
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(list)
}

// pageInput resuelve :entity y el body opcional (sin body equivale a start_position 0).
// done indica que ya se respondió; err es el resultado de esa respuesta.
func (h *LedgerHandler) pageInput(c *fiber.Ctx) (kind entity.PartyKind, start int, done bool, err error) {
	kind, ok := entityParam(c)
	if !ok {
		return "", 0, true, unknownEntity(c)
	}
	var in dto.PageRequest
	if len(c.Body()) > 0 {
		if err := c.BodyParser(&in); err != nil {
			return "", 0, true, c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
		}
	}
	if err := validate.Struct(in); err != nil {
		return "", 0, true, validationError(c, err)
	}
	return kind, in.StartPosition, false, nil
}
