package ledgersync

import (
	"context"
	"fmt"

	"github.com/jhoicas/ledger-sync/internal/application/dto"
	"github.com/jhoicas/ledger-sync/internal/domain"
	"github.com/jhoicas/ledger-sync/internal/domain/entity"
)

// ExportPipeline envía una página de registros locales al ledger (create-or-update).
type ExportPipeline struct {
	writer remoteWriter
	tally  *batchTally
}

// NewExportPipeline construye el pipeline de exportación.
func NewExportPipeline(deps Deps) *ExportPipeline {
	return &ExportPipeline{writer: remoteWriter{Deps: deps}, tally: newBatchTally()}
}

// Run procesa la página local [startPosition, startPosition+pageSize-1] en orden estable.
// Los errores por registro se acumulan en Errors y no abortan la página.
func (p *ExportPipeline) Run(ctx context.Context, kind entity.PartyKind, startPosition int, userID string) (*dto.ExportResult, error) {
	d := p.writer.Deps
	if !kind.Valid() || startPosition < 0 {
		return nil, domain.ErrInvalidInput
	}
	unlock, err := d.lock(ctx, kind)
	if err != nil {
		return nil, err
	}
	defer unlock()

	creds, err := d.Tokens.ValidToken(ctx)
	if err != nil {
		return nil, err
	}

	total, err := d.Parties.Count(ctx, kind)
	if err != nil {
		return nil, fmt.Errorf("contar registros locales: %w", err)
	}
	page, err := d.Parties.ListRange(ctx, kind, startPosition, d.pageSize())
	if err != nil {
		return nil, fmt.Errorf("leer página local: %w", err)
	}

	localIDs := make([]string, 0, len(page))
	for _, party := range page {
		localIDs = append(localIDs, party.ID)
	}
	mapped := map[string]string{}
	if len(localIDs) > 0 {
		mapped, err = d.Mappings.FindByLocalIDs(ctx, kind, localIDs)
		if err != nil {
			return nil, fmt.Errorf("resolver mapeos de la página: %w", err)
		}
	}

	res := &dto.ExportResult{Errors: []string{}}
	for _, party := range page {
		out, err := p.writer.push(ctx, creds, party, mapped[party.ID])
		if err != nil {
			d.Log.Warn().Err(err).
				Str("entity_type", string(kind)).
				Str("local_id", party.ID).
				Msg("no se pudo exportar el registro")
			res.Errors = append(res.Errors, fmt.Sprintf("%s (%s): %v", party.Name, party.ID, err))
			continue
		}
		switch out.outcome {
		case outcomeUpdated:
			res.Updated++
		case outcomeLinked:
			res.Linked++
		default:
			res.Created++
		}
	}

	next := startPosition + len(page)
	res.Processed = len(page)
	res.TotalCount = total
	res.NextStartPosition = next
	res.HasMore = len(page) > 0 && next < total

	d.Log.Info().
		Str("entity_type", string(kind)).
		Int("start_position", startPosition).
		Int("created", res.Created).
		Int("updated", res.Updated).
		Int("linked", res.Linked).
		Int("errors", len(res.Errors)).
		Bool("has_more", res.HasMore).
		Msg("página exportada")

	batch := p.tally.add(kind, startPosition, next, entity.SyncLogEntry{
		Processed:  res.Processed,
		Created:    res.Created + res.Linked,
		Updated:    res.Updated,
		Failed:     len(res.Errors),
		TotalCount: total,
		Message:    firstError(res.Errors),
	}, !res.HasMore)
	if !res.HasMore {
		batch.EntityType = kind
		batch.Action = entity.SyncActionExport
		batch.UserID = userID
		d.record(ctx, &batch)
	}
	return res, nil
}

func firstError(errs []string) string {
	if len(errs) == 0 {
		return ""
	}
	return errs[0]
}
