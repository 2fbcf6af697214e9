package main

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/transform"

	"github.com/jhoicas/ledger-sync/internal/domain/entity"
	"github.com/jhoicas/ledger-sync/internal/infrastructure/memory"
)

func TestReadParties_Latin1(t *testing.T) {
	raw := "id,name,company_name,email\nc1,Compañía Ñandú,,ventas@nandu.co\n"
	latin1, err := charmap.ISO8859_1.NewEncoder().String(raw)
	require.NoError(t, err)

	parties, skipped, err := readParties(
		transform.NewReader(strings.NewReader(latin1), charmap.ISO8859_1.NewDecoder()), entity.PartyCustomer)
	require.NoError(t, err)
	assert.Equal(t, 0, skipped)
	require.Len(t, parties, 1)
	assert.Equal(t, "Compañía Ñandú", parties[0].Name)
	assert.Equal(t, "ventas@nandu.co", parties[0].Email)
}

func TestReadParties_OmiteClienteSinEmail(t *testing.T) {
	raw := "id,name,company_name,email\nc1,Sin Correo,,\n,Con Correo,,a@b.co\n"

	parties, skipped, err := readParties(strings.NewReader(raw), entity.PartyCustomer)
	require.NoError(t, err)
	assert.Equal(t, 1, skipped)
	require.Len(t, parties, 1)
	assert.NotEmpty(t, parties[0].ID)
}

func TestReadParties_ProveedorSinEmail(t *testing.T) {
	raw := "id,name\nv1,Proveedor\n"

	parties, skipped, err := readParties(strings.NewReader(raw), entity.PartyVendor)
	require.NoError(t, err)
	assert.Equal(t, 0, skipped)
	assert.Len(t, parties, 1)
}

func TestSeed_CreaYLuegoActualizaConservandoSaldo(t *testing.T) {
	ctx := context.Background()
	repo := memory.NewStore().Parties()
	t0 := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	created, updated, err := seed(ctx, repo, []entity.Party{{ID: "v1", Kind: entity.PartyVendor, Name: "Proveedor"}}, t0)
	require.NoError(t, err)
	assert.Equal(t, 1, created)
	assert.Equal(t, 0, updated)

	p, err := repo.GetByID(ctx, entity.PartyVendor, "v1")
	require.NoError(t, err)
	p.Balance = decimal.NewFromInt(250)
	require.NoError(t, repo.Update(ctx, p))

	created, updated, err = seed(ctx, repo, []entity.Party{{ID: "v1", Kind: entity.PartyVendor, Name: "Proveedor SAS"}}, t0.Add(time.Hour))
	require.NoError(t, err)
	assert.Equal(t, 0, created)
	assert.Equal(t, 1, updated)

	p, err = repo.GetByID(ctx, entity.PartyVendor, "v1")
	require.NoError(t, err)
	assert.Equal(t, "Proveedor SAS", p.Name)
	assert.True(t, p.Balance.Equal(decimal.NewFromInt(250)))
	assert.Equal(t, t0, p.CreatedAt)
}
