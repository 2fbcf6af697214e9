package cli_test

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/ledger-sync/internal/application/ledgersync"
	"github.com/jhoicas/ledger-sync/internal/domain/entity"
	domledger "github.com/jhoicas/ledger-sync/internal/domain/ledger"
	"github.com/jhoicas/ledger-sync/internal/infrastructure/memory"
	"github.com/jhoicas/ledger-sync/internal/interfaces/cli"
)

// ──────────────────────────────────────────────────────────────────────────────
// Helpers
// ──────────────────────────────────────────────────────────────────────────────

type noopFlow struct{}

func (noopFlow) AuthCodeURL(state string) string { return "https://auth.example/?state=" + state }

func (noopFlow) Exchange(ctx context.Context, code string) (*entity.SyncToken, error) {
	return nil, fmt.Errorf("no usado")
}

type noopRefresher struct{}

func (noopRefresher) Refresh(ctx context.Context, refreshToken string) (*entity.SyncToken, error) {
	return nil, fmt.Errorf("no usado")
}

type harness struct {
	store  *memory.Store
	remote *memory.Ledger
	svc    *cli.Services
}

func newHarness(t *testing.T, connected bool, pageSize int) *harness {
	t.Helper()
	store := memory.NewStore()
	remote := memory.NewLedger()
	log := zerolog.Nop()
	if connected {
		require.NoError(t, store.Tokens().Save(context.Background(), &entity.SyncToken{
			AccessToken: "a", RefreshToken: "r", RealmID: "realm-9", ExpiresAt: time.Now().Add(time.Hour),
		}))
	}
	deps := ledgersync.Deps{
		Tokens:   ledgersync.NewTokenManager(store.Tokens(), noopRefresher{}, log, nil),
		Ledger:   remote,
		Parties:  store.Parties(),
		Mappings: store.Mappings(),
		Logs:     store.Logs(),
		Tx:       store,
		Locks:    ledgersync.NewKindLocks(time.Second),
		Log:      log,
		PageSize: pageSize,
	}
	return &harness{
		store:  store,
		remote: remote,
		svc: &cli.Services{
			Import:     ledgersync.NewImportPipeline(deps),
			Export:     ledgersync.NewExportPipeline(deps),
			Single:     ledgersync.NewSingleSync(deps),
			Connection: ledgersync.NewConnectionUseCase(store.Tokens(), noopFlow{}, "secret", time.Minute, log),
		},
	}
}

func (h *harness) run(args ...string) (string, error) {
	var out bytes.Buffer
	cmd := cli.NewRootCommand(h.svc)
	cmd.SetOut(&out)
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs(args)
	err := cmd.ExecuteContext(context.Background())
	return out.String(), err
}

// ──────────────────────────────────────────────────────────────────────────────
// Flags globales
// ──────────────────────────────────────────────────────────────────────────────

func TestRoot_FormatoInvalido(t *testing.T) {
	h := newHarness(t, true, 0)

	_, err := h.run("status", "--format", "yaml")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "formato inválido")
}

func TestRoot_EntidadInvalida(t *testing.T) {
	h := newHarness(t, true, 0)

	_, err := h.run("import", "--entity", "employees")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "entidad inválida")
}

// ──────────────────────────────────────────────────────────────────────────────
// Import / Export
// ──────────────────────────────────────────────────────────────────────────────

func TestImport_UnaPagina(t *testing.T) {
	h := newHarness(t, true, 2)
	for i := 0; i < 5; i++ {
		h.remote.Seed(entity.PartyVendor, domledger.RemoteParty{DisplayName: fmt.Sprintf("Proveedor %d", i)})
	}

	out, err := h.run("import", "--entity", "vendors", "--format", "json")
	require.NoError(t, err)

	var resp struct {
		Status string `json:"status"`
		Data   struct {
			Imported          int  `json:"imported"`
			HasMore           bool `json:"has_more"`
			NextStartPosition int  `json:"next_start_position"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	assert.Equal(t, "ok", resp.Status)
	assert.Equal(t, 2, resp.Data.Imported)
	assert.True(t, resp.Data.HasMore)
	assert.Equal(t, 2, resp.Data.NextStartPosition)
}

func TestImport_All_RecorreTodasLasPaginas(t *testing.T) {
	h := newHarness(t, true, 2)
	for i := 0; i < 5; i++ {
		h.remote.Seed(entity.PartyVendor, domledger.RemoteParty{DisplayName: fmt.Sprintf("Proveedor %d", i)})
	}

	out, err := h.run("import", "--entity", "vendors", "--all")
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(out), "\n")
	assert.Len(t, lines, 3)
	n, err := h.store.Parties().Count(context.Background(), entity.PartyVendor)
	require.NoError(t, err)
	assert.Equal(t, 5, n)
}

func TestExport_MuestraErroresPorRegistro(t *testing.T) {
	h := newHarness(t, true, 0)
	ctx := context.Background()
	require.NoError(t, h.store.Parties().Create(ctx, &entity.Party{ID: "v1", Kind: entity.PartyVendor, Name: "Bueno", CreatedAt: time.Now()}))
	require.NoError(t, h.store.Parties().Create(ctx, &entity.Party{ID: "v2", Kind: entity.PartyVendor, Name: "Malo", CreatedAt: time.Now().Add(time.Second)}))
	h.remote.FailCreate = func(p *domledger.RemoteParty) error {
		if p.DisplayName == "Malo" {
			return &domledger.APIError{StatusCode: 400, Code: "2050", Message: "rechazado"}
		}
		return nil
	}

	out, err := h.run("export", "--entity", "vendors")
	require.NoError(t, err)
	assert.Contains(t, out, "creados=1")
	assert.Contains(t, out, "errores=1")
	assert.Contains(t, out, "Malo (v2)")
}

func TestExport_NoConectado_RetornaError(t *testing.T) {
	h := newHarness(t, false, 0)

	out, err := h.run("export", "--entity", "customers", "--format", "json")
	require.Error(t, err)
	assert.Contains(t, out, `"status":"error"`)
}

// ──────────────────────────────────────────────────────────────────────────────
// Sync individual / status
// ──────────────────────────────────────────────────────────────────────────────

func TestSync_DevuelveRemoteID(t *testing.T) {
	h := newHarness(t, true, 0)
	require.NoError(t, h.store.Parties().Create(context.Background(),
		&entity.Party{ID: "c1", Kind: entity.PartyCustomer, Name: "Cliente", Email: "c@x.com", CreatedAt: time.Now()}))

	out, err := h.run("sync", "c1", "--entity", "customers")
	require.NoError(t, err)
	assert.Contains(t, out, "customers c1 -> QB-")
	assert.Equal(t, 1, h.remote.Len(entity.PartyCustomer))
}

func TestFindOrCreate_RegistroInexistente(t *testing.T) {
	h := newHarness(t, true, 0)

	_, err := h.run("find-or-create", "nope", "--entity", "customers")
	require.Error(t, err)
}

func TestStatus_Conectado(t *testing.T) {
	h := newHarness(t, true, 0)

	out, err := h.run("status")
	require.NoError(t, err)
	assert.Contains(t, out, "conectado realm=realm-9")
}

func TestStatus_Desconectado(t *testing.T) {
	h := newHarness(t, false, 0)

	out, err := h.run("status")
	require.NoError(t, err)
	assert.Equal(t, "desconectado\n", out)
}
