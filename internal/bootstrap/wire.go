// Package bootstrap arma el grafo de dependencias a partir de la configuración. Lo comparten
// el servidor HTTP y la CLI.
package bootstrap

import (
	"context"
	"fmt"

	"github.com/jhoicas/ledger-sync/internal/application/ledgersync"
	"github.com/jhoicas/ledger-sync/internal/domain/repository"
	"github.com/jhoicas/ledger-sync/internal/infrastructure/ledger"
	"github.com/jhoicas/ledger-sync/internal/infrastructure/memory"
	"github.com/jhoicas/ledger-sync/internal/infrastructure/postgres"
	"github.com/jhoicas/ledger-sync/pkg/config"
	"github.com/jhoicas/ledger-sync/pkg/logger"
)

// Container casos de uso listos para los drivers (HTTP y CLI).
type Container struct {
	Import     *ledgersync.ImportPipeline
	Export     *ledgersync.ExportPipeline
	Single     *ledgersync.SingleSync
	Logs       *ledgersync.LogUseCase
	Connection *ledgersync.ConnectionUseCase
}

type stores struct {
	parties  repository.PartyRepository
	mappings repository.MappingRepository
	tokens   repository.TokenRepository
	logs     repository.SyncLogRepository
	tx       ledgersync.TxRunner
}

// Build abre el almacenamiento configurado y construye los casos de uso.
// El cleanup devuelto cierra el pool de PostgreSQL si se abrió.
func Build(ctx context.Context, cfg *config.Config, log *logger.Logger) (*Container, func(), error) {
	st, cleanup, err := openStores(ctx, cfg, log)
	if err != nil {
		return nil, nil, err
	}

	oauth := ledger.NewOAuthRefresher(ledger.OAuthConfig{
		ClientID:     cfg.Ledger.ClientID,
		ClientSecret: cfg.Ledger.ClientSecret,
		RedirectURL:  cfg.Ledger.RedirectURL,
		AuthURL:      cfg.Ledger.AuthURL,
		TokenURL:     cfg.Ledger.TokenURL,
	})
	client := ledger.NewClient(ledger.ClientOptions{
		BaseURL:       cfg.Ledger.APIBaseURL,
		MinorVersion:  cfg.Ledger.MinorVersion,
		Timeout:       cfg.Ledger.Timeout,
		RatePerSecond: cfg.Ledger.RatePerSecond,
		UserAgent:     cfg.App.Name,
	})

	deps := ledgersync.Deps{
		Tokens:   ledgersync.NewTokenManager(st.tokens, oauth, log.Component("token_manager"), nil),
		Ledger:   client,
		Parties:  st.parties,
		Mappings: st.mappings,
		Logs:     st.logs,
		Tx:       st.tx,
		Locks:    ledgersync.NewKindLocks(cfg.Ledger.LockTimeout),
		Log:      log.Component("ledgersync"),
		PageSize: cfg.Ledger.PageSize,
	}

	return &Container{
		Import:     ledgersync.NewImportPipeline(deps),
		Export:     ledgersync.NewExportPipeline(deps),
		Single:     ledgersync.NewSingleSync(deps),
		Logs:       ledgersync.NewLogUseCase(st.logs),
		Connection: ledgersync.NewConnectionUseCase(st.tokens, oauth, cfg.JWT.Secret, cfg.Ledger.StateTTL, log.Component("connection")),
	}, cleanup, nil
}

func openStores(ctx context.Context, cfg *config.Config, log *logger.Logger) (*stores, func(), error) {
	switch cfg.App.Storage {
	case config.StorageMemory:
		log.Warn().Msg("almacenamiento en memoria: los datos se pierden al reiniciar")
		s := memory.NewStore()
		return &stores{
			parties:  s.Parties(),
			mappings: s.Mappings(),
			tokens:   s.Tokens(),
			logs:     s.Logs(),
			tx:       s,
		}, func() {}, nil
	case config.StoragePostgres:
		pool, err := postgres.NewPool(ctx, cfg.DB)
		if err != nil {
			return nil, nil, fmt.Errorf("conexión a PostgreSQL: %w", err)
		}
		return &stores{
			parties:  postgres.NewPartyRepository(pool),
			mappings: postgres.NewMappingRepository(pool),
			tokens:   postgres.NewTokenRepository(pool),
			logs:     postgres.NewSyncLogRepository(pool),
			tx:       postgres.NewTxRunner(pool),
		}, pool.Close, nil
	default:
		return nil, nil, fmt.Errorf("almacenamiento no soportado: %q", cfg.App.Storage)
	}
}
