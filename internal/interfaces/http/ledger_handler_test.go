package http_test

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/ledger-sync/internal/application/dto"
	"github.com/jhoicas/ledger-sync/internal/application/ledgersync"
	"github.com/jhoicas/ledger-sync/internal/domain/entity"
	domledger "github.com/jhoicas/ledger-sync/internal/domain/ledger"
	"github.com/jhoicas/ledger-sync/internal/infrastructure/memory"
	apphttp "github.com/jhoicas/ledger-sync/internal/interfaces/http"
)

// ──────────────────────────────────────────────────────────────────────────────
// Helpers
// ──────────────────────────────────────────────────────────────────────────────

type noopFlow struct{}

func (noopFlow) AuthCodeURL(state string) string { return "https://auth.example/?state=" + state }

func (noopFlow) Exchange(ctx context.Context, code string) (*entity.SyncToken, error) {
	return &entity.SyncToken{AccessToken: "a", RefreshToken: "r", ExpiresAt: time.Now().Add(time.Hour)}, nil
}

type noopRefresher struct{}

func (noopRefresher) Refresh(ctx context.Context, refreshToken string) (*entity.SyncToken, error) {
	return &entity.SyncToken{AccessToken: "a2", ExpiresAt: time.Now().Add(time.Hour)}, nil
}

type ledgerApp struct {
	app    *fiber.App
	store  *memory.Store
	remote *memory.Ledger
}

func newLedgerApp(t *testing.T, connected bool) *ledgerApp {
	t.Helper()
	store := memory.NewStore()
	remote := memory.NewLedger()
	log := zerolog.Nop()
	if connected {
		require.NoError(t, store.Tokens().Save(context.Background(), &entity.SyncToken{
			AccessToken: "a", RefreshToken: "r", RealmID: "realm", ExpiresAt: time.Now().Add(time.Hour),
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
	}
	app := fiber.New()
	apphttp.Router(app, apphttp.RouterDeps{
		Import:     ledgersync.NewImportPipeline(deps),
		Export:     ledgersync.NewExportPipeline(deps),
		Single:     ledgersync.NewSingleSync(deps),
		Logs:       ledgersync.NewLogUseCase(store.Logs()),
		Connection: ledgersync.NewConnectionUseCase(store.Tokens(), noopFlow{}, testJWTSecret, time.Minute, log),
		JWTSecret:  testJWTSecret,
		Log:        log,
	})
	return &ledgerApp{app: app, store: store, remote: remote}
}

func (a *ledgerApp) do(t *testing.T, method, path, body, role string) *http.Response {
	t.Helper()
	var r io.Reader
	if body != "" {
		r = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, r)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	if role != "" {
		req.Header.Set("Authorization", tokenForRole(t, role))
	}
	resp, err := a.app.Test(req, -1)
	require.NoError(t, err)
	return resp
}

func decode[T any](t *testing.T, resp *http.Response) T {
	t.Helper()
	defer resp.Body.Close()
	var out T
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	return out
}

// ──────────────────────────────────────────────────────────────────────────────
// Import / Export
// ──────────────────────────────────────────────────────────────────────────────

func TestImportHandler_PaginaCompleta(t *testing.T) {
	a := newLedgerApp(t, true)
	a.remote.Seed(entity.PartyVendor, domledger.RemoteParty{DisplayName: "Proveedor Uno"})

	resp := a.do(t, http.MethodPost, "/api/ledger/vendors/import", `{"start_position":0}`, "manager")
	require.Equal(t, http.StatusOK, resp.StatusCode)

	res := decode[dto.ImportResult](t, resp)
	assert.Equal(t, 1, res.Imported)
	assert.False(t, res.HasMore)
	assert.Equal(t, 1, res.TotalCount)
}

func TestImportHandler_SinBody_EmpiezaEnCero(t *testing.T) {
	a := newLedgerApp(t, true)

	resp := a.do(t, http.MethodPost, "/api/ledger/customers/import", "", "admin")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestImportHandler_StartNegativo_Retorna400(t *testing.T) {
	a := newLedgerApp(t, true)

	resp := a.do(t, http.MethodPost, "/api/ledger/vendors/import", `{"start_position":-5}`, "admin")
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	body := decode[dto.ErrorResponse](t, resp)
	assert.Equal(t, "VALIDATION", body.Code)
}

func TestImportHandler_NoConectado_Retorna409(t *testing.T) {
	a := newLedgerApp(t, false)

	resp := a.do(t, http.MethodPost, "/api/ledger/vendors/import", `{"start_position":0}`, "admin")
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
	body := decode[dto.ErrorResponse](t, resp)
	assert.Equal(t, "NOT_CONNECTED", body.Code)
}

func TestHandler_EntidadDesconocida_Retorna404(t *testing.T) {
	a := newLedgerApp(t, true)

	resp := a.do(t, http.MethodPost, "/api/ledger/employees/import", `{}`, "admin")
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestHandler_RolViewer_Retorna403(t *testing.T) {
	a := newLedgerApp(t, true)

	resp := a.do(t, http.MethodPost, "/api/ledger/vendors/export", `{}`, "viewer")
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
}

func TestHandler_SinToken_Retorna401(t *testing.T) {
	a := newLedgerApp(t, true)

	resp := a.do(t, http.MethodPost, "/api/ledger/vendors/export", `{}`, "")
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestExportHandler_ErroresPorRegistro(t *testing.T) {
	a := newLedgerApp(t, true)
	ctx := context.Background()
	require.NoError(t, a.store.Parties().Create(ctx, &entity.Party{ID: "v1", Kind: entity.PartyVendor, Name: "Bueno", CreatedAt: time.Now()}))
	require.NoError(t, a.store.Parties().Create(ctx, &entity.Party{ID: "v2", Kind: entity.PartyVendor, Name: "Malo", CreatedAt: time.Now().Add(time.Second)}))
	a.remote.FailCreate = func(p *domledger.RemoteParty) error {
		if p.DisplayName == "Malo" {
			return &domledger.APIError{StatusCode: 400, Code: "2050", Message: "rechazado"}
		}
		return nil
	}

	resp := a.do(t, http.MethodPost, "/api/ledger/vendors/export", `{"start_position":0}`, "admin")
	require.Equal(t, http.StatusOK, resp.StatusCode)

	res := decode[dto.ExportResult](t, resp)
	assert.Equal(t, 1, res.Created)
	require.Len(t, res.Errors, 1)
	assert.Contains(t, res.Errors[0], "Malo (v2)")
}

// ──────────────────────────────────────────────────────────────────────────────
// Sync individual
// ──────────────────────────────────────────────────────────────────────────────

func TestSyncHandler_CreaYDevuelveRemoteID(t *testing.T) {
	a := newLedgerApp(t, true)
	require.NoError(t, a.store.Parties().Create(context.Background(),
		&entity.Party{ID: "c1", Kind: entity.PartyCustomer, Name: "Cliente", Email: "c@x.com", CreatedAt: time.Now()}))

	resp := a.do(t, http.MethodPost, "/api/ledger/customers/c1/sync", "", "admin")
	require.Equal(t, http.StatusOK, resp.StatusCode)

	res := decode[dto.SyncSingleResult](t, resp)
	assert.True(t, res.Success)
	assert.NotEmpty(t, res.RemoteID)
}

func TestSyncHandler_RegistroInexistente_Retorna404(t *testing.T) {
	a := newLedgerApp(t, true)

	resp := a.do(t, http.MethodPost, "/api/ledger/customers/nope/sync", "", "admin")
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestSyncHandler_MapeoInconsistente_Retorna409(t *testing.T) {
	a := newLedgerApp(t, true)
	ctx := context.Background()
	require.NoError(t, a.store.Parties().Create(ctx, &entity.Party{ID: "v1", Kind: entity.PartyVendor, Name: "P", CreatedAt: time.Now()}))
	require.NoError(t, a.store.Mappings().Upsert(ctx, entity.PartyVendor, "v1", "QB-404", time.Now()))

	resp := a.do(t, http.MethodPost, "/api/ledger/vendors/v1/sync", "", "admin")
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
	body := decode[dto.ErrorResponse](t, resp)
	assert.Equal(t, "MAPPING_INCONSISTENT", body.Code)
}

func TestFindOrCreateHandler_ConMapeo(t *testing.T) {
	a := newLedgerApp(t, true)
	ctx := context.Background()
	require.NoError(t, a.store.Parties().Create(ctx, &entity.Party{ID: "v1", Kind: entity.PartyVendor, Name: "P", CreatedAt: time.Now()}))
	require.NoError(t, a.store.Mappings().Upsert(ctx, entity.PartyVendor, "v1", "QB-42", time.Now()))

	resp := a.do(t, http.MethodPost, "/api/ledger/vendors/v1/find-or-create", "", "manager")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	res := decode[dto.FindOrCreateResult](t, resp)
	assert.Equal(t, "QB-42", res.RemoteID)
}

// ──────────────────────────────────────────────────────────────────────────────
// Conexión y bitácora
// ──────────────────────────────────────────────────────────────────────────────

func TestConnectionHandler_FlujoCallback(t *testing.T) {
	a := newLedgerApp(t, false)

	resp := a.do(t, http.MethodGet, "/api/ledger/connect", "", "admin")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	link := decode[dto.ConnectURLResponse](t, resp)
	state := strings.TrimPrefix(link.URL, "https://auth.example/?state=")
	require.NotEmpty(t, state)

	resp = a.do(t, http.MethodGet, "/api/ledger/callback?code=abc&realmId=123&state="+state, "", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	st := decode[dto.ConnectionStatus](t, resp)
	assert.True(t, st.Connected)
	assert.Equal(t, "123", st.RealmID)

	resp = a.do(t, http.MethodDelete, "/api/ledger/connection", "", "admin")
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)

	resp = a.do(t, http.MethodGet, "/api/ledger/connection", "", "admin")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	st = decode[dto.ConnectionStatus](t, resp)
	assert.False(t, st.Connected)
}

func TestConnectionHandler_CallbackStateInvalido_Retorna401(t *testing.T) {
	a := newLedgerApp(t, false)

	resp := a.do(t, http.MethodGet, "/api/ledger/callback?code=abc&realmId=123&state=falso", "", "")
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestConnectionHandler_CallbackSinCodigo_Retorna400(t *testing.T) {
	a := newLedgerApp(t, false)

	resp := a.do(t, http.MethodGet, "/api/ledger/callback?realmId=123&state=x", "", "")
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestLogsHandler_FiltraPorEntidad(t *testing.T) {
	a := newLedgerApp(t, true)
	a.remote.Seed(entity.PartyVendor, domledger.RemoteParty{DisplayName: "Proveedor"})

	resp := a.do(t, http.MethodPost, "/api/ledger/vendors/import", `{}`, "admin")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	resp.Body.Close()

	resp = a.do(t, http.MethodGet, "/api/ledger/logs?entity=vendors&limit=5", "", "admin")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	list := decode[[]dto.SyncLogResponse](t, resp)
	require.Len(t, list, 1)
	assert.Equal(t, "vendor", list[0].EntityType)
	assert.Equal(t, entity.SyncActionImport, list[0].Action)

	resp = a.do(t, http.MethodGet, "/api/ledger/logs?entity=employees", "", "admin")
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}
