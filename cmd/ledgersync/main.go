// ledgersync CLI de sincronización con el ledger contable. Usa la misma configuración
// (env / .env) que el servidor HTTP; los logs van a stderr y los resultados a stdout.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/jhoicas/ledger-sync/internal/bootstrap"
	"github.com/jhoicas/ledger-sync/internal/interfaces/cli"
	"github.com/jhoicas/ledger-sync/pkg/config"
	"github.com/jhoicas/ledger-sync/pkg/logger"
)

func main() {
	os.Exit(run())
}

func run() int {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "cargar configuración: %v\n", err)
		return 1
	}
	log := logger.New(logger.Config{
		Env:    cfg.App.Env,
		Level:  cfg.App.LogLevel,
		Output: os.Stderr,
	})

	// Ctrl+C detiene --all entre páginas; la página en curso termina.
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	container, cleanup, err := bootstrap.Build(ctx, cfg, log)
	if err != nil {
		log.Error().Err(err).Msg("inicializar dependencias")
		return 1
	}
	defer cleanup()

	root := cli.NewRootCommand(&cli.Services{
		Import:     container.Import,
		Export:     container.Export,
		Single:     container.Single,
		Connection: container.Connection,
	})
	if err := root.ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		return 1
	}
	return 0
}
