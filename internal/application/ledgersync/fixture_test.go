package ledgersync_test

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/ledger-sync/internal/application/ledgersync"
	"github.com/jhoicas/ledger-sync/internal/domain/entity"
	domledger "github.com/jhoicas/ledger-sync/internal/domain/ledger"
	"github.com/jhoicas/ledger-sync/internal/infrastructure/memory"
)

// fixedNow 2023-11-14T22:15:23.456Z (UnixMilli 1_700_000_123_456).
var fixedNow = time.UnixMilli(1_700_000_123_456).UTC()

// ─── Reloj ─────────────────────────────────────────────────────────────────────

type clock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *clock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *clock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

// ─── Refresher falso ───────────────────────────────────────────────────────────

type stubRefresher struct {
	calls   atomic.Int32
	delay   time.Duration
	err     error
	clock   *clock
	rotated bool
}

func (s *stubRefresher) Refresh(ctx context.Context, refreshToken string) (*entity.SyncToken, error) {
	n := s.calls.Add(1)
	if s.delay > 0 {
		select {
		case <-time.After(s.delay):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	if s.err != nil {
		return nil, s.err
	}
	tok := &entity.SyncToken{
		AccessToken: fmt.Sprintf("access-%d", n),
		ExpiresAt:   s.clock.Now().Add(time.Hour),
	}
	if s.rotated {
		tok.RefreshToken = fmt.Sprintf("refresh-%d", n)
	}
	return tok, nil
}

// ─── Fixture ───────────────────────────────────────────────────────────────────

type fixture struct {
	store     *memory.Store
	remote    *memory.Ledger
	clock     *clock
	refresher *stubRefresher
	tokens    *ledgersync.TokenManager
	deps      ledgersync.Deps
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	c := &clock{now: fixedNow}
	store := memory.NewStore()
	ref := &stubRefresher{clock: c}
	tm := ledgersync.NewTokenManager(store.Tokens(), ref, zerolog.Nop(), c.Now)

	f := &fixture{
		store:     store,
		remote:    memory.NewLedger(),
		clock:     c,
		refresher: ref,
		tokens:    tm,
	}
	f.deps = ledgersync.Deps{
		Tokens:   tm,
		Ledger:   f.remote,
		Parties:  store.Parties(),
		Mappings: store.Mappings(),
		Logs:     store.Logs(),
		Tx:       store,
		Locks:    ledgersync.NewKindLocks(time.Second),
		Log:      zerolog.Nop(),
		Now:      c.Now,
		PageSize: ledgersync.DefaultPageSize,
	}
	f.connect(t, time.Hour)
	return f
}

// connect guarda una credencial que vence en expiresIn.
func (f *fixture) connect(t *testing.T, expiresIn time.Duration) {
	t.Helper()
	require.NoError(t, f.store.Tokens().Save(context.Background(), &entity.SyncToken{
		AccessToken:  "access-0",
		RefreshToken: "refresh-0",
		ExpiresAt:    f.clock.Now().Add(expiresIn),
		RealmID:      "realm-1",
	}))
}

func (f *fixture) addLocal(t *testing.T, kind entity.PartyKind, id, name, email string, order int) *entity.Party {
	t.Helper()
	p := &entity.Party{
		ID:        id,
		Kind:      kind,
		Name:      name,
		Email:     email,
		CreatedAt: fixedNow.Add(time.Duration(order) * time.Second),
		UpdatedAt: fixedNow,
	}
	require.NoError(t, f.store.Parties().Create(context.Background(), p))
	return p
}

func (f *fixture) seedRemote(kind entity.PartyKind, id, name, email string) string {
	r := domledger.RemoteParty{ID: id, DisplayName: name}
	if email != "" {
		r.PrimaryEmailAddr = &domledger.EmailAddress{Address: email}
	}
	return f.remote.Seed(kind, r)
}

func (f *fixture) logs(t *testing.T, kind entity.PartyKind) []*entity.SyncLogEntry {
	t.Helper()
	entries, err := f.store.Logs().ListRecent(context.Background(), kind, 0)
	require.NoError(t, err)
	return entries
}
