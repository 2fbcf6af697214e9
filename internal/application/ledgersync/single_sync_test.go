package ledgersync_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/ledger-sync/internal/application/ledgersync"
	"github.com/jhoicas/ledger-sync/internal/domain"
	"github.com/jhoicas/ledger-sync/internal/domain/entity"
	"github.com/jhoicas/ledger-sync/internal/domain/repository"
)

// staleParties devuelve un RemoteID desnormalizado fijo en GetByID, como un JOIN que no
// refleja el almacén de mapeos.
type staleParties struct {
	repository.PartyRepository
	remoteID string
}

func (p staleParties) GetByID(ctx context.Context, kind entity.PartyKind, id string) (*entity.Party, error) {
	party, err := p.PartyRepository.GetByID(ctx, kind, id)
	if party != nil {
		party.RemoteID = p.remoteID
	}
	return party, err
}

func TestSync_DosVeces_MismoRemoteID(t *testing.T) {
	f := newFixture(t)
	f.addLocal(t, entity.PartyCustomer, "c1", "Obras Norte", "norte@x.com", 1)
	s := ledgersync.NewSingleSync(f.deps)

	first, err := s.Sync(context.Background(), entity.PartyCustomer, "c1", "u1")
	require.NoError(t, err)
	second, err := s.Sync(context.Background(), entity.PartyCustomer, "c1", "u1")
	require.NoError(t, err)

	assert.True(t, first.Success)
	assert.Equal(t, first.RemoteID, second.RemoteID)
	assert.Equal(t, 1, f.remote.Len(entity.PartyCustomer))
	assert.Equal(t, 1, f.remote.Calls("Create"))
	assert.Equal(t, 1, f.remote.Calls("Update"))
}

// Proveedor v1 "Acme Supply" sin mapeo; el create choca con un nombre existente (QB-42).
func TestSync_AcmeSupply_AdoptaQB42(t *testing.T) {
	f := newFixture(t)
	f.seedRemote(entity.PartyVendor, "QB-42", "Acme Supply", "")
	f.addLocal(t, entity.PartyVendor, "v1", "Acme Supply", "a@x.com", 1)

	res, err := ledgersync.NewSingleSync(f.deps).Sync(context.Background(), entity.PartyVendor, "v1", "u1")
	require.NoError(t, err)

	assert.Equal(t, "QB-42", res.RemoteID)
	m, ok := f.store.Mappings().Get(entity.PartyVendor, "v1")
	require.True(t, ok)
	assert.Equal(t, "QB-42", m.RemoteID)
	assert.Equal(t, fixedNow, m.SyncedAt)
	assert.Equal(t, 1, f.remote.Len(entity.PartyVendor), "no se crean registros remotos nuevos")

	remote, _ := f.remote.Snapshot(entity.PartyVendor, "QB-42")
	assert.Equal(t, "0", remote.SyncToken, "el remoto adoptado no se modifica")
}

func TestFindOrCreate_ConMapeo_NoTocaElLedger(t *testing.T) {
	f := newFixture(t)
	f.addLocal(t, entity.PartyVendor, "v1", "Proveedor", "", 1)
	require.NoError(t, f.store.Mappings().Upsert(context.Background(), entity.PartyVendor, "v1", "QB-7", fixedNow))

	res, err := ledgersync.NewSingleSync(f.deps).FindOrCreate(context.Background(), entity.PartyVendor, "v1", "u1")
	require.NoError(t, err)

	assert.Equal(t, "QB-7", res.RemoteID)
	assert.Equal(t, 0, f.remote.Calls("Create"))
	assert.Equal(t, 0, f.remote.Calls("Get"))
}

func TestFindOrCreate_SinMapeo_Crea(t *testing.T) {
	f := newFixture(t)
	f.addLocal(t, entity.PartyCustomer, "c1", "Nuevo Cliente", "n@x.com", 1)

	res, err := ledgersync.NewSingleSync(f.deps).FindOrCreate(context.Background(), entity.PartyCustomer, "c1", "u1")
	require.NoError(t, err)

	assert.NotEmpty(t, res.RemoteID)
	remoteID, err := f.store.Mappings().FindRemoteID(context.Background(), entity.PartyCustomer, "c1")
	require.NoError(t, err)
	assert.Equal(t, res.RemoteID, remoteID)

	entries := f.logs(t, entity.PartyCustomer)
	require.Len(t, entries, 1)
	assert.Equal(t, entity.SyncActionFindOrCreate, entries[0].Action)
}

func TestSync_MapeoInconsistente_Aborta(t *testing.T) {
	f := newFixture(t)
	f.addLocal(t, entity.PartyVendor, "v1", "Proveedor", "", 1)
	id := f.seedRemote(entity.PartyVendor, "", "Proveedor", "")
	require.NoError(t, f.store.Mappings().Upsert(context.Background(), entity.PartyVendor, "v1", id, fixedNow))
	f.remote.Remove(entity.PartyVendor, id)

	_, err := ledgersync.NewSingleSync(f.deps).Sync(context.Background(), entity.PartyVendor, "v1", "u1")
	assert.ErrorIs(t, err, domain.ErrMappingInconsistent)
	assert.Equal(t, 0, f.remote.Calls("Create"))

	entries := f.logs(t, entity.PartyVendor)
	require.Len(t, entries, 1)
	assert.Equal(t, entity.SyncStatusFailed, entries[0].Status)
}

func TestSync_RegistroInexistente_RetornaNotFound(t *testing.T) {
	f := newFixture(t)

	_, err := ledgersync.NewSingleSync(f.deps).Sync(context.Background(), entity.PartyCustomer, "nope", "u1")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestSync_NoConectado_Aborta(t *testing.T) {
	f := newFixture(t)
	f.addLocal(t, entity.PartyCustomer, "c1", "Cliente", "c@x.com", 1)
	require.NoError(t, f.store.Tokens().Delete(context.Background()))

	_, err := ledgersync.NewSingleSync(f.deps).Sync(context.Background(), entity.PartyCustomer, "c1", "u1")
	assert.ErrorIs(t, err, domain.ErrNotConnected)
}

func TestSync_SoloMapeoDesnormalizado_ActualizaSinCrear(t *testing.T) {
	f := newFixture(t)
	f.seedRemote(entity.PartyVendor, "QB-5", "Proveedor Sur", "")
	f.addLocal(t, entity.PartyVendor, "v1", "Proveedor Sur", "sur@x.com", 1)
	deps := f.deps
	deps.Parties = staleParties{PartyRepository: f.store.Parties(), remoteID: "QB-5"}

	res, err := ledgersync.NewSingleSync(deps).Sync(context.Background(), entity.PartyVendor, "v1", "u1")
	require.NoError(t, err)

	assert.Equal(t, "QB-5", res.RemoteID)
	assert.Equal(t, 0, f.remote.Calls("Create"), "un registro con mapeo embebido nunca se crea de nuevo")
	assert.Equal(t, 1, f.remote.Calls("Update"))
	assert.Equal(t, 1, f.remote.Len(entity.PartyVendor))

	remote, ok := f.remote.Snapshot(entity.PartyVendor, "QB-5")
	require.True(t, ok)
	assert.Equal(t, "sur@x.com", remote.PrimaryEmailAddr.Address)

	m, ok := f.store.Mappings().Get(entity.PartyVendor, "v1")
	require.True(t, ok, "el mapeo embebido queda registrado en el almacén")
	assert.Equal(t, "QB-5", m.RemoteID)
}

func TestSync_MapeosEnDesacuerdo_GanaElAlmacen(t *testing.T) {
	f := newFixture(t)
	f.seedRemote(entity.PartyVendor, "QB-5", "Nombre Viejo", "")
	f.seedRemote(entity.PartyVendor, "QB-7", "Proveedor Sur", "")
	f.addLocal(t, entity.PartyVendor, "v1", "Proveedor Sur", "sur@x.com", 1)
	require.NoError(t, f.store.Mappings().Upsert(context.Background(), entity.PartyVendor, "v1", "QB-7", fixedNow))
	deps := f.deps
	deps.Parties = staleParties{PartyRepository: f.store.Parties(), remoteID: "QB-5"}

	res, err := ledgersync.NewSingleSync(deps).Sync(context.Background(), entity.PartyVendor, "v1", "u1")
	require.NoError(t, err)

	assert.Equal(t, "QB-7", res.RemoteID)
	assert.Equal(t, 0, f.remote.Calls("Create"))

	updated, _ := f.remote.Snapshot(entity.PartyVendor, "QB-7")
	assert.Equal(t, "1", updated.SyncToken)
	untouched, _ := f.remote.Snapshot(entity.PartyVendor, "QB-5")
	assert.Equal(t, "0", untouched.SyncToken)
}
