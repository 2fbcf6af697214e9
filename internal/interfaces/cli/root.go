// Package cli expone los pipelines de sincronización como comandos (cobra). Es el driver de
// páginas: invoca una página o, con --all, encadena páginas hasta has_more = false.
package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jhoicas/ledger-sync/internal/application/ledgersync"
)

// Services casos de uso que consumen los comandos.
type Services struct {
	Import     *ledgersync.ImportPipeline
	Export     *ledgersync.ExportPipeline
	Single     *ledgersync.SingleSync
	Connection *ledgersync.ConnectionUseCase
}

// RootOptions flags globales.
type RootOptions struct {
	Format string // "json" | "text"
	UserID string // registrado en la bitácora
}

// ValidFormats formatos de salida permitidos.
var ValidFormats = []string{"text", "json"}

// NewRootCommand comando raíz ledgersync.
func NewRootCommand(svc *Services) *cobra.Command {
	opts := &RootOptions{}

	cmd := &cobra.Command{
		Use:   "ledgersync",
		Short: "Sincronización de clientes y proveedores con el ledger contable",
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if !isValidFormat(opts.Format) {
				return fmt.Errorf("formato inválido %q: debe ser uno de %v", opts.Format, ValidFormats)
			}
			return nil
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.PersistentFlags().StringVar(&opts.Format, "format", "text", "formato de salida (json|text)")
	cmd.PersistentFlags().StringVar(&opts.UserID, "user", "cli", "usuario registrado en la bitácora")

	cmd.AddCommand(newImportCommand(opts, svc))
	cmd.AddCommand(newExportCommand(opts, svc))
	cmd.AddCommand(newSyncCommand(opts, svc))
	cmd.AddCommand(newFindOrCreateCommand(opts, svc))
	cmd.AddCommand(newStatusCommand(opts, svc))

	return cmd
}

func isValidFormat(format string) bool {
	for _, f := range ValidFormats {
		if f == format {
			return true
		}
	}
	return false
}
