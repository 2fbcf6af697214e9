package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/jhoicas/ledger-sync/internal/application/ledgersync"
)

// RouterDeps dependencias para el router.
type RouterDeps struct {
	Import     *ledgersync.ImportPipeline
	Export     *ledgersync.ExportPipeline
	Single     *ledgersync.SingleSync
	Logs       *ledgersync.LogUseCase
	Connection *ledgersync.ConnectionUseCase
	JWTSecret  string
	Log        zerolog.Logger
}

// Router registra las rutas de la API.
func Router(app *fiber.App, deps RouterDeps) {
	ledgerHandler := NewLedgerHandler(deps.Import, deps.Export, deps.Single, deps.Logs, deps.Log)
	connHandler := NewConnectionHandler(deps.Connection, deps.Log)

	api := app.Group("/api")

	// Callback OAuth (público; el state firmado identifica al usuario)
	api.Get("/ledger/callback", connHandler.Callback)

	// Ledger (protegido: Bearer Token + rol admin o manager)
	ledger := api.Group("/ledger", AuthMiddleware(deps.JWTSecret), RequireRole("admin", "manager"))

	ledger.Get("/connection", connHandler.Status)
	ledger.Get("/connect", connHandler.Connect)
	ledger.Delete("/connection", connHandler.Disconnect)
	ledger.Get("/logs", ledgerHandler.Logs)

	ledger.Post("/:entity/import", ledgerHandler.Import)
	ledger.Post("/:entity/export", ledgerHandler.Export)
	ledger.Post("/:entity/:id/sync", ledgerHandler.Sync)
	ledger.Post("/:entity/:id/find-or-create", ledgerHandler.FindOrCreate)
}
