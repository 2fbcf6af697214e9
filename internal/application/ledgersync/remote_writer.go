package ledgersync

import (
	"context"
	"errors"
	"fmt"

	"github.com/jhoicas/ledger-sync/internal/domain"
	"github.com/jhoicas/ledger-sync/internal/domain/entity"
	domledger "github.com/jhoicas/ledger-sync/internal/domain/ledger"
)

// pushOutcome qué ocurrió en el ledger para un registro.
type pushOutcome int

const (
	outcomeCreated pushOutcome = iota + 1
	outcomeUpdated
	outcomeLinked  // se adoptó un registro remoto existente con el mismo nombre
	outcomeRenamed // se creó con sufijo numérico tras un nombre duplicado
)

type pushResult struct {
	outcome  pushOutcome
	remoteID string
}

// remoteWriter lógica create-or-update compartida por la exportación y la sincronización individual.
type remoteWriter struct {
	Deps
}

// push sincroniza un Party. remoteID vacío significa "sin mapeo" (ya verificado por el llamador).
// El mapeo solo se escribe cuando el registro remoto quedó confirmado.
func (w remoteWriter) push(ctx context.Context, creds domledger.Credentials, p *entity.Party, remoteID string) (pushResult, error) {
	shape, err := domledger.ToRemoteShape(p)
	if err != nil {
		return pushResult{}, err
	}
	if remoteID != "" {
		return w.update(ctx, creds, p, shape, remoteID)
	}
	return w.create(ctx, creds, p, shape)
}

func (w remoteWriter) update(ctx context.Context, creds domledger.Credentials, p *entity.Party, shape *domledger.RemoteParty, remoteID string) (pushResult, error) {
	current, err := w.Ledger.Get(ctx, creds, p.Kind, remoteID)
	if err != nil {
		if errors.Is(err, domledger.ErrRemoteNotFound) {
			return pushResult{}, fmt.Errorf("%w: %s -> %s", domain.ErrMappingInconsistent, p.ID, remoteID)
		}
		return pushResult{}, fmt.Errorf("leer registro remoto %s: %w", remoteID, err)
	}
	if current == nil {
		return pushResult{}, fmt.Errorf("%w: %s -> %s", domain.ErrMappingInconsistent, p.ID, remoteID)
	}
	shape.ID = current.ID
	shape.SyncToken = current.SyncToken
	updated, err := w.Ledger.Update(ctx, creds, p.Kind, shape)
	if err != nil {
		return pushResult{}, fmt.Errorf("actualizar registro remoto %s: %w", remoteID, err)
	}
	if err := w.Mappings.Upsert(ctx, p.Kind, p.ID, updated.ID, w.now()); err != nil {
		return pushResult{}, fmt.Errorf("actualizar mapeo: %w", err)
	}
	return pushResult{outcome: outcomeUpdated, remoteID: updated.ID}, nil
}

// create intenta crear; ante nombre duplicado busca el remoto por nombre exacto y lo adopta
// (sin modificarlo). Si no aparece, o ya pertenece a otro registro local, reintenta una vez
// con un sufijo numérico.
func (w remoteWriter) create(ctx context.Context, creds domledger.Credentials, p *entity.Party, shape *domledger.RemoteParty) (pushResult, error) {
	created, err := w.Ledger.Create(ctx, creds, p.Kind, shape)
	if err == nil {
		return w.confirm(ctx, p, created.ID, outcomeCreated)
	}
	if !domledger.IsDuplicateName(err) {
		return pushResult{}, fmt.Errorf("crear registro remoto: %w", err)
	}

	log := w.Log.With().Str("entity_type", string(p.Kind)).Str("local_id", p.ID).Str("display_name", shape.DisplayName).Logger()
	log.Info().Msg("nombre duplicado en el ledger, buscando registro existente")

	existing, err := w.Ledger.FindByDisplayName(ctx, creds, p.Kind, shape.DisplayName)
	if err != nil {
		return pushResult{}, fmt.Errorf("buscar por nombre %q: %w", shape.DisplayName, err)
	}
	if existing != nil {
		owner, err := w.Mappings.FindLocalID(ctx, p.Kind, existing.ID)
		if err != nil {
			return pushResult{}, fmt.Errorf("consultar mapeo de %s: %w", existing.ID, err)
		}
		if owner == "" || owner == p.ID {
			log.Info().Str("remote_id", existing.ID).Msg("registro remoto existente adoptado")
			return w.confirm(ctx, p, existing.ID, outcomeLinked)
		}
		log.Warn().Str("remote_id", existing.ID).Str("owner_local_id", owner).
			Msg("el registro remoto con ese nombre ya pertenece a otro registro local")
	}

	shape.DisplayName = domledger.DisambiguatedName(shape.DisplayName, w.now())
	created, err = w.Ledger.Create(ctx, creds, p.Kind, shape)
	if err != nil {
		return pushResult{}, fmt.Errorf("crear con nombre alternativo %q: %w", shape.DisplayName, err)
	}
	log.Info().Str("remote_id", created.ID).Str("renamed_to", shape.DisplayName).Msg("registro remoto creado con nombre alternativo")
	return w.confirm(ctx, p, created.ID, outcomeRenamed)
}

func (w remoteWriter) confirm(ctx context.Context, p *entity.Party, remoteID string, outcome pushOutcome) (pushResult, error) {
	if err := w.Mappings.Upsert(ctx, p.Kind, p.ID, remoteID, w.now()); err != nil {
		return pushResult{}, fmt.Errorf("guardar mapeo %s -> %s: %w", p.ID, remoteID, err)
	}
	return pushResult{outcome: outcome, remoteID: remoteID}, nil
}
