package ledgersync

import (
	"context"
	"fmt"

	"github.com/jhoicas/ledger-sync/internal/application/dto"
	"github.com/jhoicas/ledger-sync/internal/domain"
	"github.com/jhoicas/ledger-sync/internal/domain/entity"
)

// SingleSync reconcilia un único registro bajo demanda (por ejemplo, antes de registrar
// una factura contra ese cliente). Comparte la lógica create-or-update con la exportación.
type SingleSync struct {
	writer remoteWriter
}

// NewSingleSync construye el caso de uso.
func NewSingleSync(deps Deps) *SingleSync {
	return &SingleSync{writer: remoteWriter{Deps: deps}}
}

// Sync crea o actualiza el registro remoto y devuelve su id. Cualquier error aborta.
func (s *SingleSync) Sync(ctx context.Context, kind entity.PartyKind, localID, userID string) (*dto.SyncSingleResult, error) {
	d := s.writer.Deps
	party, remoteID, unlock, err := s.prepare(ctx, kind, localID)
	if err != nil {
		return nil, err
	}
	defer unlock()

	creds, err := d.Tokens.ValidToken(ctx)
	if err != nil {
		return nil, err
	}
	out, err := s.writer.push(ctx, creds, party, remoteID)
	if err != nil {
		d.record(ctx, &entity.SyncLogEntry{
			EntityType: kind, Action: entity.SyncActionSyncSingle, Status: entity.SyncStatusFailed,
			Processed: 1, Failed: 1, Message: err.Error(), UserID: userID,
		})
		return nil, err
	}
	d.record(ctx, singleEntry(kind, entity.SyncActionSyncSingle, out, userID))
	return &dto.SyncSingleResult{Success: true, RemoteID: out.remoteID}, nil
}

// FindOrCreate devuelve el id remoto mapeado sin tocar el ledger; si no hay mapeo, crea
// (resolviendo nombres duplicados) y lo devuelve.
func (s *SingleSync) FindOrCreate(ctx context.Context, kind entity.PartyKind, localID, userID string) (*dto.FindOrCreateResult, error) {
	d := s.writer.Deps
	party, remoteID, unlock, err := s.prepare(ctx, kind, localID)
	if err != nil {
		return nil, err
	}
	defer unlock()

	if remoteID != "" {
		return &dto.FindOrCreateResult{RemoteID: remoteID}, nil
	}

	creds, err := d.Tokens.ValidToken(ctx)
	if err != nil {
		return nil, err
	}
	out, err := s.writer.push(ctx, creds, party, "")
	if err != nil {
		d.record(ctx, &entity.SyncLogEntry{
			EntityType: kind, Action: entity.SyncActionFindOrCreate, Status: entity.SyncStatusFailed,
			Processed: 1, Failed: 1, Message: err.Error(), UserID: userID,
		})
		return nil, err
	}
	d.record(ctx, singleEntry(kind, entity.SyncActionFindOrCreate, out, userID))
	return &dto.FindOrCreateResult{RemoteID: out.remoteID}, nil
}

// prepare adquiere el candado, carga el registro y resuelve su mapeo.
func (s *SingleSync) prepare(ctx context.Context, kind entity.PartyKind, localID string) (*entity.Party, string, func(), error) {
	d := s.writer.Deps
	if !kind.Valid() || localID == "" {
		return nil, "", nil, domain.ErrInvalidInput
	}
	unlock, err := d.lock(ctx, kind)
	if err != nil {
		return nil, "", nil, err
	}
	party, err := d.Parties.GetByID(ctx, kind, localID)
	if err != nil {
		unlock()
		return nil, "", nil, fmt.Errorf("leer registro local: %w", err)
	}
	if party == nil {
		unlock()
		return nil, "", nil, domain.ErrNotFound
	}
	remoteID, err := s.resolveRemoteID(ctx, party)
	if err != nil {
		unlock()
		return nil, "", nil, err
	}
	return party, remoteID, unlock, nil
}

// resolveRemoteID consulta los dos caminos de búsqueda: el mapeo desnormalizado del JOIN y el
// almacén de mapeos. Solo si ambos están vacíos el registro se considera sin mapeo; un falso
// "sin mapeo" produciría un create duplicado en el ledger. El almacén tiene prioridad.
func (s *SingleSync) resolveRemoteID(ctx context.Context, party *entity.Party) (string, error) {
	d := s.writer.Deps
	stored, err := d.Mappings.FindRemoteID(ctx, party.Kind, party.ID)
	if err != nil {
		return "", fmt.Errorf("consultar mapeo: %w", err)
	}
	if stored != "" {
		if party.RemoteID != "" && party.RemoteID != stored {
			d.Log.Warn().Str("local_id", party.ID).Str("embedded_remote_id", party.RemoteID).
				Str("stored_remote_id", stored).Msg("mapeo desnormalizado desactualizado")
		}
		return stored, nil
	}
	return party.RemoteID, nil
}

func singleEntry(kind entity.PartyKind, action string, out pushResult, userID string) *entity.SyncLogEntry {
	e := &entity.SyncLogEntry{EntityType: kind, Action: action, Processed: 1, UserID: userID, Message: out.remoteID}
	if out.outcome == outcomeUpdated {
		e.Updated = 1
	} else {
		e.Created = 1
	}
	return e
}
