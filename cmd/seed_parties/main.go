// seed_parties carga clientes o proveedores desde un CSV exportado por el sistema anterior
// (codificación ISO-8859-1) e inserta o actualiza por id en PostgreSQL.
//
// Uso: go run ./cmd/seed_parties <customers|vendors> ruta/archivo.csv
// Columnas: id,name,company_name,email,phone,address,tax_id (la primera fila es encabezado).
// La conexión se toma de la misma configuración que el servidor (DATABASE_URL / DB_*).
package main

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/transform"

	"github.com/jhoicas/ledger-sync/internal/domain"
	"github.com/jhoicas/ledger-sync/internal/domain/entity"
	"github.com/jhoicas/ledger-sync/internal/domain/repository"
	"github.com/jhoicas/ledger-sync/internal/infrastructure/postgres"
	"github.com/jhoicas/ledger-sync/pkg/config"
)

func main() {
	if len(os.Args) < 3 {
		fmt.Fprintln(os.Stderr, "uso: seed_parties <customers|vendors> archivo.csv")
		os.Exit(2)
	}
	kind, ok := entity.ParsePartyKind(os.Args[1])
	if !ok {
		fmt.Fprintf(os.Stderr, "Entidad inválida: %s\n", os.Args[1])
		os.Exit(2)
	}

	f, err := os.Open(os.Args[2])
	if err != nil {
		fmt.Fprintf(os.Stderr, "Abrir CSV: %v\n", err)
		os.Exit(1)
	}
	defer f.Close()

	parties, skipped, err := readParties(transform.NewReader(f, charmap.ISO8859_1.NewDecoder()), kind)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Leer CSV: %v\n", err)
		os.Exit(1)
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Cargar configuración: %v\n", err)
		os.Exit(1)
	}
	ctx := context.Background()
	pool, err := postgres.NewPool(ctx, cfg.DB)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Conexión a PostgreSQL: %v\n", err)
		os.Exit(1)
	}
	defer pool.Close()

	created, updated, err := seed(ctx, postgres.NewPartyRepository(pool), parties, time.Now().UTC())
	if err != nil {
		fmt.Fprintf(os.Stderr, "Insertar: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("%s: %d creados, %d actualizados, %d omitidos\n", kind, created, updated, skipped)
}

// readParties decodifica el CSV. Omite filas sin nombre y, para clientes, sin email.
func readParties(r io.Reader, kind entity.PartyKind) ([]entity.Party, int, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true

	rows, err := cr.ReadAll()
	if err != nil {
		return nil, 0, err
	}
	if len(rows) == 0 {
		return nil, 0, nil
	}

	var parties []entity.Party
	skipped := 0
	for _, row := range rows[1:] {
		field := func(i int) string {
			if i < len(row) {
				return strings.TrimSpace(row[i])
			}
			return ""
		}
		p := entity.Party{
			ID:          field(0),
			Kind:        kind,
			Name:        field(1),
			CompanyName: field(2),
			Email:       field(3),
			Phone:       field(4),
			Address:     field(5),
			TaxID:       field(6),
		}
		if p.Name == "" || (kind.EmailRequired() && p.Email == "") {
			skipped++
			continue
		}
		if p.ID == "" {
			p.ID = uuid.New().String()
		}
		parties = append(parties, p)
	}
	return parties, skipped, nil
}

// seed inserta cada registro o, si el id ya existe, lo actualiza conservando saldo y fecha de alta.
func seed(ctx context.Context, repo repository.PartyRepository, parties []entity.Party, now time.Time) (created, updated int, err error) {
	for i := range parties {
		p := parties[i]
		existing, err := repo.GetByID(ctx, p.Kind, p.ID)
		if err != nil {
			return created, updated, fmt.Errorf("%s: %w", p.ID, err)
		}
		p.UpdatedAt = now
		if existing == nil {
			p.CreatedAt = now
			if err := repo.Create(ctx, &p); err != nil && !errors.Is(err, domain.ErrDuplicate) {
				return created, updated, fmt.Errorf("%s: %w", p.ID, err)
			}
			created++
			continue
		}
		p.Balance = existing.Balance
		p.CreatedAt = existing.CreatedAt
		if err := repo.Update(ctx, &p); err != nil {
			return created, updated, fmt.Errorf("%s: %w", p.ID, err)
		}
		updated++
	}
	return created, updated, nil
}
