package cli

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/jhoicas/ledger-sync/internal/application/dto"
	"github.com/jhoicas/ledger-sync/internal/application/ledgersync"
	"github.com/jhoicas/ledger-sync/internal/domain/entity"
)

type pageOptions struct {
	entity string
	start  int
	all    bool
}

func (p *pageOptions) bind(cmd *cobra.Command) {
	cmd.Flags().StringVar(&p.entity, "entity", "customers", "customers | vendors")
	cmd.Flags().IntVar(&p.start, "start", 0, "posición inicial (offset 0-based)")
	cmd.Flags().BoolVar(&p.all, "all", false, "encadenar páginas hasta has_more = false")
}

func parseEntity(s string) (entity.PartyKind, error) {
	kind, ok := entity.ParsePartyKind(strings.ToLower(strings.TrimSpace(s)))
	if !ok {
		return "", fmt.Errorf("entidad inválida %q: customers | vendors", s)
	}
	return kind, nil
}

// runPages ejecuta una página o, con --all, todas a partir de --start.
func runPages(ctx context.Context, p *pageOptions, step ledgersync.PageStep) (int, error) {
	if !p.all {
		if _, err := step(ctx, p.start); err != nil {
			return 0, err
		}
		return 1, nil
	}
	return ledgersync.Drive(ctx, p.start, step)
}

func newImportCommand(opts *RootOptions, svc *Services) *cobra.Command {
	p := &pageOptions{}
	cmd := &cobra.Command{
		Use:   "import",
		Short: "Importa registros del ledger al almacén local",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			out := output{format: opts.Format, w: cmd.OutOrStdout()}
			kind, err := parseEntity(p.entity)
			if err != nil {
				return out.failure(err)
			}
			_, err = runPages(cmd.Context(), p, func(ctx context.Context, start int) (dto.PageResult, error) {
				res, err := svc.Import.Run(ctx, kind, start, opts.UserID)
				if err != nil {
					return dto.PageResult{}, err
				}
				text := fmt.Sprintf("import %s @%d: importados=%d actualizados=%d omitidos=%d siguiente=%d/%d",
					kind, start, res.Imported, res.Updated, res.Skipped, res.NextStartPosition, res.TotalCount)
				return res.PageResult, out.success(res, text)
			})
			if err != nil {
				return out.failure(err)
			}
			return nil
		},
	}
	p.bind(cmd)
	return cmd
}

func newExportCommand(opts *RootOptions, svc *Services) *cobra.Command {
	p := &pageOptions{}
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Exporta registros locales al ledger",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			out := output{format: opts.Format, w: cmd.OutOrStdout()}
			kind, err := parseEntity(p.entity)
			if err != nil {
				return out.failure(err)
			}
			_, err = runPages(cmd.Context(), p, func(ctx context.Context, start int) (dto.PageResult, error) {
				res, err := svc.Export.Run(ctx, kind, start, opts.UserID)
				if err != nil {
					return dto.PageResult{}, err
				}
				var b strings.Builder
				fmt.Fprintf(&b, "export %s @%d: creados=%d actualizados=%d vinculados=%d errores=%d siguiente=%d/%d",
					kind, start, res.Created, res.Updated, res.Linked, len(res.Errors), res.NextStartPosition, res.TotalCount)
				for _, e := range res.Errors {
					fmt.Fprintf(&b, "\n  - %s", e)
				}
				return res.PageResult, out.success(res, b.String())
			})
			if err != nil {
				return out.failure(err)
			}
			return nil
		},
	}
	p.bind(cmd)
	return cmd
}

func newSyncCommand(opts *RootOptions, svc *Services) *cobra.Command {
	var entityFlag string
	cmd := &cobra.Command{
		Use:   "sync <local-id>",
		Short: "Crea o actualiza un registro en el ledger",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			out := output{format: opts.Format, w: cmd.OutOrStdout()}
			kind, err := parseEntity(entityFlag)
			if err != nil {
				return out.failure(err)
			}
			res, err := svc.Single.Sync(cmd.Context(), kind, args[0], opts.UserID)
			if err != nil {
				return out.failure(err)
			}
			return out.success(res, fmt.Sprintf("%s %s -> %s", kind, args[0], res.RemoteID))
		},
	}
	cmd.Flags().StringVar(&entityFlag, "entity", "customers", "customers | vendors")
	return cmd
}

func newFindOrCreateCommand(opts *RootOptions, svc *Services) *cobra.Command {
	var entityFlag string
	cmd := &cobra.Command{
		Use:   "find-or-create <local-id>",
		Short: "Devuelve el id remoto mapeado o crea el registro",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			out := output{format: opts.Format, w: cmd.OutOrStdout()}
			kind, err := parseEntity(entityFlag)
			if err != nil {
				return out.failure(err)
			}
			res, err := svc.Single.FindOrCreate(cmd.Context(), kind, args[0], opts.UserID)
			if err != nil {
				return out.failure(err)
			}
			return out.success(res, res.RemoteID)
		},
	}
	cmd.Flags().StringVar(&entityFlag, "entity", "customers", "customers | vendors")
	return cmd
}

func newStatusCommand(opts *RootOptions, svc *Services) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Estado de la conexión con el ledger",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			out := output{format: opts.Format, w: cmd.OutOrStdout()}
			st, err := svc.Connection.Status(cmd.Context())
			if err != nil {
				return out.failure(err)
			}
			text := "desconectado"
			if st.Connected {
				text = fmt.Sprintf("conectado realm=%s renovar=%t", st.RealmID, st.NeedsRefresh)
				if st.ExpiresAt != nil {
					text += " vence=" + st.ExpiresAt.Format(time.RFC3339)
				}
			}
			return out.success(st, text)
		},
	}
}
