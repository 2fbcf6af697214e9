package ledgersync

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/jhoicas/ledger-sync/internal/application/dto"
	"github.com/jhoicas/ledger-sync/internal/domain"
	"github.com/jhoicas/ledger-sync/internal/domain/entity"
	domledger "github.com/jhoicas/ledger-sync/internal/domain/ledger"
	"github.com/jhoicas/ledger-sync/internal/domain/repository"
)

// Estados del pipeline (solo para trazas).
const (
	stateFetchingCount = "fetching_count"
	stateFetchingPage  = "fetching_page"
	stateReconciling   = "reconciling"
	stateDone          = "done"
)

// ImportPipeline trae una página de registros del ledger y la reconcilia contra el almacén local.
// Cada invocación procesa una sola página; el llamador decide si pide la siguiente.
type ImportPipeline struct {
	Deps
	tally *batchTally
}

// NewImportPipeline construye el pipeline de importación.
func NewImportPipeline(deps Deps) *ImportPipeline {
	return &ImportPipeline{Deps: deps, tally: newBatchTally()}
}

// Run procesa la página que empieza en startPosition (offset 0-based).
// Los fallos por registro se registran y se cuentan en Skipped; no abortan la página.
func (p *ImportPipeline) Run(ctx context.Context, kind entity.PartyKind, startPosition int, userID string) (*dto.ImportResult, error) {
	if !kind.Valid() || startPosition < 0 {
		return nil, domain.ErrInvalidInput
	}
	unlock, err := p.lock(ctx, kind)
	if err != nil {
		return nil, err
	}
	defer unlock()

	log := p.Log.With().Str("pipeline", "import").Str("entity_type", string(kind)).Int("start_position", startPosition).Logger()

	creds, err := p.Tokens.ValidToken(ctx)
	if err != nil {
		return nil, err
	}

	log.Debug().Str("state", stateFetchingCount).Msg("estado del pipeline")
	total, err := p.Ledger.Count(ctx, creds, kind)
	if err != nil {
		return nil, fmt.Errorf("contar registros remotos: %w", err)
	}

	log.Debug().Str("state", stateFetchingPage).Msg("estado del pipeline")
	page, err := p.Ledger.List(ctx, creds, kind, startPosition, p.pageSize())
	if err != nil {
		return nil, fmt.Errorf("leer página remota: %w", err)
	}

	log.Debug().Str("state", stateReconciling).Int("records", len(page)).Msg("estado del pipeline")
	res := &dto.ImportResult{}
	if len(page) > 0 {
		if err := p.reconcile(ctx, kind, page, res); err != nil {
			return nil, err
		}
	}

	next := startPosition + len(page)
	res.Processed = len(page)
	res.TotalCount = total
	res.NextStartPosition = next
	res.HasMore = len(page) > 0 && next < total

	log.Debug().Str("state", stateDone).Int("imported", res.Imported).Int("updated", res.Updated).
		Int("skipped", res.Skipped).Bool("has_more", res.HasMore).Msg("estado del pipeline")

	batch := p.tally.add(kind, startPosition, next, entity.SyncLogEntry{
		Processed:  res.Processed,
		Created:    res.Imported,
		Updated:    res.Updated,
		Skipped:    res.Skipped,
		TotalCount: total,
	}, !res.HasMore)
	if !res.HasMore {
		batch.EntityType = kind
		batch.Action = entity.SyncActionImport
		batch.UserID = userID
		p.record(ctx, &batch)
	}
	return res, nil
}

// reconcile resuelve en lote mapeos y registros locales de la página y luego procesa
// cada registro en el orden recibido.
func (p *ImportPipeline) reconcile(ctx context.Context, kind entity.PartyKind, page []domledger.RemoteParty, res *dto.ImportResult) error {
	remoteIDs := make([]string, 0, len(page))
	for _, r := range page {
		remoteIDs = append(remoteIDs, r.ID)
	}
	mapped, err := p.Mappings.FindByRemoteIDs(ctx, kind, remoteIDs)
	if err != nil {
		return fmt.Errorf("resolver mapeos de la página: %w", err)
	}

	localIDs := make([]string, 0, len(mapped))
	for _, id := range mapped {
		localIDs = append(localIDs, id)
	}
	locals := make(map[string]*entity.Party, len(localIDs))
	if len(localIDs) > 0 {
		list, err := p.Parties.GetByIDs(ctx, kind, localIDs)
		if err != nil {
			return fmt.Errorf("leer registros locales de la página: %w", err)
		}
		for _, l := range list {
			locals[l.ID] = l
		}
	}

	for i := range page {
		r := &page[i]
		log := p.Log.With().Str("entity_type", string(kind)).Str("remote_id", r.ID).Logger()

		if localID, ok := mapped[r.ID]; ok {
			existing := locals[localID]
			if existing == nil {
				log.Warn().Str("local_id", localID).Msg("mapeo apunta a un registro local inexistente, se omite")
				res.Skipped++
				continue
			}
			if err := p.updateLocal(ctx, kind, r, existing); err != nil {
				log.Warn().Err(err).Str("local_id", localID).Msg("no se pudo actualizar el registro local")
				res.Skipped++
				continue
			}
			res.Updated++
			continue
		}

		if err := p.insertLocal(ctx, kind, r); err != nil {
			log.Warn().Err(err).Str("display_name", r.DisplayName).Msg("no se pudo insertar el registro local")
			res.Skipped++
			continue
		}
		res.Imported++
	}
	return nil
}

func (p *ImportPipeline) updateLocal(ctx context.Context, kind entity.PartyKind, r *domledger.RemoteParty, party *entity.Party) error {
	now := p.now()
	domledger.FromRemoteShape(kind, r, party)
	party.UpdatedAt = now
	if err := p.Parties.Update(ctx, party); err != nil {
		return err
	}
	return p.Mappings.Upsert(ctx, kind, party.ID, r.ID, now)
}

// insertLocal crea el registro local y su mapeo en una misma transacción.
func (p *ImportPipeline) insertLocal(ctx context.Context, kind entity.PartyKind, r *domledger.RemoteParty) error {
	now := p.now()
	party := &entity.Party{ID: uuid.NewString(), CreatedAt: now, UpdatedAt: now}
	domledger.FromRemoteShape(kind, r, party)
	if party.Name == "" {
		return domledger.ErrEmptyDisplayName
	}
	return p.Tx.RunSync(ctx, func(parties repository.PartyRepository, mappings repository.MappingRepository) error {
		if err := parties.Create(ctx, party); err != nil {
			return err
		}
		return mappings.Upsert(ctx, kind, party.ID, r.ID, now)
	})
}
