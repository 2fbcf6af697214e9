package memory

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"sync"

	"github.com/jhoicas/ledger-sync/internal/application/ledgersync"
	"github.com/jhoicas/ledger-sync/internal/domain/entity"
	domledger "github.com/jhoicas/ledger-sync/internal/domain/ledger"
)

var _ ledgersync.LedgerAPI = (*Ledger)(nil)

type remoteRecord struct {
	seq   int
	party domledger.RemoteParty
}

// Ledger ledger remoto en memoria. Los nombres visibles son únicos entre todos los tipos,
// los updates exigen el SyncToken vigente y los ids se asignan como "QB-<n>".
type Ledger struct {
	mu      sync.Mutex
	records map[entity.PartyKind]map[string]*remoteRecord
	seq     int
	calls   map[string]int

	// FailCreate, si no es nil, se consulta antes de cada Create y su error se devuelve tal cual.
	FailCreate func(p *domledger.RemoteParty) error
}

// NewLedger crea un ledger vacío.
func NewLedger() *Ledger {
	return &Ledger{
		records: map[entity.PartyKind]map[string]*remoteRecord{
			entity.PartyCustomer: {},
			entity.PartyVendor:   {},
		},
		calls: make(map[string]int),
	}
}

// Seed agrega un registro remoto con id explícito (o "QB-<n>" si está vacío) y devuelve su id.
func (l *Ledger) Seed(kind entity.PartyKind, p domledger.RemoteParty) string {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.seq++
	if p.ID == "" {
		p.ID = "QB-" + strconv.Itoa(l.seq)
	}
	if p.SyncToken == "" {
		p.SyncToken = "0"
	}
	l.records[kind][p.ID] = &remoteRecord{seq: l.seq, party: p}
	return p.ID
}

// Remove elimina un registro remoto (simula un borrado fuera del sistema).
func (l *Ledger) Remove(kind entity.PartyKind, id string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	delete(l.records[kind], id)
}

// Snapshot copia de un registro remoto.
func (l *Ledger) Snapshot(kind entity.PartyKind, id string) (domledger.RemoteParty, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	r, ok := l.records[kind][id]
	if !ok {
		return domledger.RemoteParty{}, false
	}
	return r.party, true
}

// Len número de registros del tipo.
func (l *Ledger) Len(kind entity.PartyKind) int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.records[kind])
}

// Calls número de invocaciones de una operación ("Count", "List", "Create", ...).
func (l *Ledger) Calls(op string) int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.calls[op]
}

func (l *Ledger) Count(ctx context.Context, creds domledger.Credentials, kind entity.PartyKind) (int, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if err := l.begin(ctx, "Count", creds); err != nil {
		return 0, err
	}
	return len(l.records[kind]), nil
}

// List ordenado por Id (orden de alta), desde el offset 0-based.
func (l *Ledger) List(ctx context.Context, creds domledger.Credentials, kind entity.PartyKind, offset, limit int) ([]domledger.RemoteParty, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if err := l.begin(ctx, "List", creds); err != nil {
		return nil, err
	}
	all := l.sorted(kind)
	if offset >= len(all) {
		return []domledger.RemoteParty{}, nil
	}
	end := offset + limit
	if end > len(all) {
		end = len(all)
	}
	out := make([]domledger.RemoteParty, 0, end-offset)
	for _, r := range all[offset:end] {
		out = append(out, r.party)
	}
	return out, nil
}

func (l *Ledger) Get(ctx context.Context, creds domledger.Credentials, kind entity.PartyKind, id string) (*domledger.RemoteParty, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if err := l.begin(ctx, "Get", creds); err != nil {
		return nil, err
	}
	r, ok := l.records[kind][id]
	if !ok {
		return nil, notFound(id)
	}
	p := r.party
	return &p, nil
}

func (l *Ledger) FindByDisplayName(ctx context.Context, creds domledger.Credentials, kind entity.PartyKind, name string) (*domledger.RemoteParty, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if err := l.begin(ctx, "FindByDisplayName", creds); err != nil {
		return nil, err
	}
	for _, r := range l.sorted(kind) {
		if r.party.DisplayName == name {
			p := r.party
			return &p, nil
		}
	}
	return nil, nil
}

func (l *Ledger) Create(ctx context.Context, creds domledger.Credentials, kind entity.PartyKind, p *domledger.RemoteParty) (*domledger.RemoteParty, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if err := l.begin(ctx, "Create", creds); err != nil {
		return nil, err
	}
	if l.FailCreate != nil {
		if err := l.FailCreate(p); err != nil {
			return nil, err
		}
	}
	if strings.TrimSpace(p.DisplayName) == "" {
		return nil, &domledger.APIError{StatusCode: 400, Code: "2020", Message: "Required param missing", Detail: "DisplayName"}
	}
	if l.nameTaken(p.DisplayName, "") {
		return nil, &domledger.DuplicateNameError{Message: fmt.Sprintf("The name supplied already exists. : %s", p.DisplayName)}
	}
	l.seq++
	stored := *p
	stored.ID = "QB-" + strconv.Itoa(l.seq)
	stored.SyncToken = "0"
	stored.Sparse = false
	l.records[kind][stored.ID] = &remoteRecord{seq: l.seq, party: stored}
	out := stored
	return &out, nil
}

// Update sparse: solo reemplaza los campos presentes. Exige el SyncToken vigente.
func (l *Ledger) Update(ctx context.Context, creds domledger.Credentials, kind entity.PartyKind, p *domledger.RemoteParty) (*domledger.RemoteParty, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if err := l.begin(ctx, "Update", creds); err != nil {
		return nil, err
	}
	r, ok := l.records[kind][p.ID]
	if !ok {
		return nil, notFound(p.ID)
	}
	if p.SyncToken != r.party.SyncToken {
		return nil, &domledger.APIError{StatusCode: 400, Code: domledger.CodeStaleObject, Message: "Stale Object Error"}
	}
	if p.DisplayName != "" && p.DisplayName != r.party.DisplayName {
		if l.nameTaken(p.DisplayName, p.ID) {
			return nil, &domledger.DuplicateNameError{Message: p.DisplayName}
		}
		r.party.DisplayName = p.DisplayName
	}
	if p.CompanyName != nil {
		r.party.CompanyName = p.CompanyName
	}
	if p.PrimaryEmailAddr != nil {
		r.party.PrimaryEmailAddr = p.PrimaryEmailAddr
	}
	if p.PrimaryPhone != nil {
		r.party.PrimaryPhone = p.PrimaryPhone
	}
	if p.BillAddr != nil {
		r.party.BillAddr = p.BillAddr
	}
	n, _ := strconv.Atoi(r.party.SyncToken)
	r.party.SyncToken = strconv.Itoa(n + 1)
	out := r.party
	return &out, nil
}

// begin requiere l.mu tomado.
func (l *Ledger) begin(ctx context.Context, op string, creds domledger.Credentials) error {
	l.calls[op]++
	if err := ctx.Err(); err != nil {
		return err
	}
	if creds.AccessToken == "" || creds.RealmID == "" {
		return &domledger.APIError{StatusCode: 401, Code: "3200", Message: "AuthenticationFailed"}
	}
	return nil
}

func (l *Ledger) sorted(kind entity.PartyKind) []*remoteRecord {
	all := make([]*remoteRecord, 0, len(l.records[kind]))
	for _, r := range l.records[kind] {
		all = append(all, r)
	}
	sort.Slice(all, func(i, j int) bool { return all[i].seq < all[j].seq })
	return all
}

func (l *Ledger) nameTaken(name, exceptID string) bool {
	for _, byID := range l.records {
		for id, r := range byID {
			if id != exceptID && r.party.DisplayName == name {
				return true
			}
		}
	}
	return false
}

func notFound(id string) error {
	return &domledger.APIError{StatusCode: 400, Code: domledger.CodeObjectNotFound, Message: "Object Not Found", Detail: id}
}
