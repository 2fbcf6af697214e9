package ledger

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"github.com/jhoicas/ledger-sync/internal/application/ledgersync"
	"github.com/jhoicas/ledger-sync/internal/domain/entity"
	domledger "github.com/jhoicas/ledger-sync/internal/domain/ledger"
)

const (
	defaultBaseURL      = "https://quickbooks.api.intuit.com"
	defaultMinorVersion = "65"
	maxResponseBytes    = 4 << 20
)

// ClientOptions configuración del cliente HTTP del ledger.
type ClientOptions struct {
	BaseURL       string
	MinorVersion  string
	HTTPClient    *http.Client
	Timeout       time.Duration
	RatePerSecond float64 // límite por realm del lado cliente; <= 0 usa 8 req/s
	Burst         int
	UserAgent     string
}

var _ ledgersync.LedgerAPI = (*Client)(nil)

// Client adaptador REST del ledger contable externo.
// No reintenta: solo el llamador sabe si una operación es repetible.
type Client struct {
	baseURL      string
	minorVersion string
	httpClient   *http.Client
	userAgent    string
	rps          rate.Limit
	burst        int

	mu       sync.Mutex
	limiters map[string]*rate.Limiter
}

// NewClient construye el cliente aplicando valores por defecto.
func NewClient(opts ClientOptions) *Client {
	baseURL := strings.TrimRight(strings.TrimSpace(opts.BaseURL), "/")
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	minor := strings.TrimSpace(opts.MinorVersion)
	if minor == "" {
		minor = defaultMinorVersion
	}
	httpClient := opts.HTTPClient
	if httpClient == nil {
		timeout := opts.Timeout
		if timeout <= 0 {
			timeout = 30 * time.Second
		}
		httpClient = &http.Client{Timeout: timeout}
	}
	rps := opts.RatePerSecond
	if rps <= 0 {
		rps = 8
	}
	burst := opts.Burst
	if burst <= 0 {
		burst = 10
	}
	return &Client{
		baseURL:      baseURL,
		minorVersion: minor,
		httpClient:   httpClient,
		userAgent:    strings.TrimSpace(opts.UserAgent),
		rps:          rate.Limit(rps),
		burst:        burst,
		limiters:     make(map[string]*rate.Limiter),
	}
}

func (c *Client) limiter(realmID string) *rate.Limiter {
	c.mu.Lock()
	defer c.mu.Unlock()
	l, ok := c.limiters[realmID]
	if !ok {
		l = rate.NewLimiter(c.rps, c.burst)
		c.limiters[realmID] = l
	}
	return l
}

// Do ejecuta una petición autenticada contra /v3/company/{realm}{path}.
// path puede incluir query string. Si out no es nil se decodifica el cuerpo JSON en él.
// Respuestas no-2xx se devuelven como *APIError o *DuplicateNameError.
func (c *Client) Do(ctx context.Context, method, path string, creds domledger.Credentials, body, out any) error {
	if creds.AccessToken == "" || creds.RealmID == "" {
		return fmt.Errorf("ledger: credenciales incompletas")
	}
	u, err := url.Parse(c.baseURL + "/v3/company/" + url.PathEscape(creds.RealmID) + path)
	if err != nil {
		return fmt.Errorf("ledger: construir URL: %w", err)
	}
	q := u.Query()
	q.Set("minorversion", c.minorVersion)
	u.RawQuery = q.Encode()

	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("ledger: serializar request: %w", err)
		}
		reader = bytes.NewReader(raw)
	}

	if err := c.limiter(creds.RealmID).Wait(ctx); err != nil {
		return fmt.Errorf("ledger: límite de peticiones: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, method, u.String(), reader)
	if err != nil {
		return fmt.Errorf("ledger: crear HTTP request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+creds.AccessToken)
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.userAgent != "" {
		req.Header.Set("User-Agent", c.userAgent)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return fmt.Errorf("ledger: timeout o cancelación: %w", ctx.Err())
		}
		return fmt.Errorf("ledger: llamada HTTP fallida: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return fmt.Errorf("ledger: leer respuesta: %w", err)
	}
	if err := ClassifyResponse(resp.StatusCode, raw); err != nil {
		return err
	}
	if out == nil || len(raw) == 0 {
		return nil
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("ledger: deserializar respuesta: %w", err)
	}
	return nil
}

// ── Operaciones tipadas ───────────────────────────────────────────────────────

type queryEnvelope struct {
	QueryResponse map[string]json.RawMessage `json:"QueryResponse"`
}

func (c *Client) query(ctx context.Context, creds domledger.Credentials, q string) (map[string]json.RawMessage, error) {
	var env queryEnvelope
	if err := c.Do(ctx, http.MethodGet, "/query?query="+url.QueryEscape(q), creds, nil, &env); err != nil {
		return nil, err
	}
	if env.QueryResponse == nil {
		return map[string]json.RawMessage{}, nil
	}
	return env.QueryResponse, nil
}

func decodeParties(resp map[string]json.RawMessage, entityName string) ([]domledger.RemoteParty, error) {
	raw, ok := resp[entityName]
	if !ok {
		return nil, nil
	}
	var list []domledger.RemoteParty
	if err := json.Unmarshal(raw, &list); err != nil {
		return nil, fmt.Errorf("ledger: deserializar %s: %w", entityName, err)
	}
	return list, nil
}

// Count total de registros remotos del tipo.
func (c *Client) Count(ctx context.Context, creds domledger.Credentials, kind entity.PartyKind) (int, error) {
	_, name, err := resourceName(kind)
	if err != nil {
		return 0, err
	}
	resp, err := c.query(ctx, creds, countQuery(name))
	if err != nil {
		return 0, err
	}
	var total int
	if raw, ok := resp["totalCount"]; ok {
		if err := json.Unmarshal(raw, &total); err != nil {
			return 0, fmt.Errorf("ledger: totalCount inválido: %w", err)
		}
	}
	return total, nil
}

// List página de registros remotos ordenados por Id; offset es 0-based.
func (c *Client) List(ctx context.Context, creds domledger.Credentials, kind entity.PartyKind, offset, limit int) ([]domledger.RemoteParty, error) {
	_, name, err := resourceName(kind)
	if err != nil {
		return nil, err
	}
	resp, err := c.query(ctx, creds, pageQuery(name, offset, limit))
	if err != nil {
		return nil, err
	}
	return decodeParties(resp, name)
}

// FindByDisplayName busca un registro con nombre exactamente igual; nil si no existe.
func (c *Client) FindByDisplayName(ctx context.Context, creds domledger.Credentials, kind entity.PartyKind, name string) (*domledger.RemoteParty, error) {
	_, entityName, err := resourceName(kind)
	if err != nil {
		return nil, err
	}
	resp, err := c.query(ctx, creds, displayNameQuery(entityName, name))
	if err != nil {
		return nil, err
	}
	list, err := decodeParties(resp, entityName)
	if err != nil {
		return nil, err
	}
	for i := range list {
		if list[i].DisplayName == name {
			return &list[i], nil
		}
	}
	return nil, nil
}

// Get lee un registro por id (necesario para obtener el SyncToken antes de actualizar).
func (c *Client) Get(ctx context.Context, creds domledger.Credentials, kind entity.PartyKind, id string) (*domledger.RemoteParty, error) {
	path, entityName, err := resourceName(kind)
	if err != nil {
		return nil, err
	}
	var resp map[string]json.RawMessage
	if err := c.Do(ctx, http.MethodGet, "/"+path+"/"+url.PathEscape(id), creds, nil, &resp); err != nil {
		return nil, err
	}
	return decodeOne(resp, entityName)
}

// Create crea el registro remoto. No es idempotente.
func (c *Client) Create(ctx context.Context, creds domledger.Credentials, kind entity.PartyKind, party *domledger.RemoteParty) (*domledger.RemoteParty, error) {
	path, entityName, err := resourceName(kind)
	if err != nil {
		return nil, err
	}
	body := *party
	body.ID, body.SyncToken, body.Sparse, body.Balance = "", "", false, nil
	var resp map[string]json.RawMessage
	if err := c.Do(ctx, http.MethodPost, "/"+path, creds, &body, &resp); err != nil {
		return nil, err
	}
	return decodeOne(resp, entityName)
}

// Update actualización parcial (sparse); party debe traer Id y SyncToken vigentes.
func (c *Client) Update(ctx context.Context, creds domledger.Credentials, kind entity.PartyKind, party *domledger.RemoteParty) (*domledger.RemoteParty, error) {
	path, entityName, err := resourceName(kind)
	if err != nil {
		return nil, err
	}
	if party.ID == "" || party.SyncToken == "" {
		return nil, fmt.Errorf("ledger: update requiere Id y SyncToken")
	}
	body := *party
	body.Sparse, body.Balance = true, nil
	var resp map[string]json.RawMessage
	if err := c.Do(ctx, http.MethodPost, "/"+path, creds, &body, &resp); err != nil {
		return nil, err
	}
	return decodeOne(resp, entityName)
}

func decodeOne(resp map[string]json.RawMessage, entityName string) (*domledger.RemoteParty, error) {
	raw, ok := resp[entityName]
	if !ok {
		return nil, fmt.Errorf("ledger: respuesta sin %s", entityName)
	}
	var p domledger.RemoteParty
	if err := json.Unmarshal(raw, &p); err != nil {
		return nil, fmt.Errorf("ledger: deserializar %s: %w", entityName, err)
	}
	return &p, nil
}
