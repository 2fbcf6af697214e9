package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/ledger-sync/internal/domain"
	"github.com/jhoicas/ledger-sync/internal/domain/entity"
	"github.com/jhoicas/ledger-sync/internal/domain/repository"
)

var _ repository.PartyRepository = (*PartyRepo)(nil)

// PartyRepo implementación de PartyRepository sobre las tablas customers y vendors (pool o tx).
type PartyRepo struct {
	q Querier
}

// NewPartyRepository construye el adaptador. Pasar pool o tx (Querier).
func NewPartyRepository(q Querier) *PartyRepo {
	return &PartyRepo{q: q}
}

// partySelect columnas + LEFT JOIN con el mapeo (RemoteID desnormalizado). %s = tabla.
const partySelect = `
		SELECT p.id, p.name, p.company_name, p.email, p.phone, p.address, p.tax_id, p.balance,
		       COALESCE(m.remote_id, ''), p.created_at, p.updated_at
		FROM %s p
		LEFT JOIN ledger_mappings m ON m.entity_type = $1 AND m.local_id = p.id`

// Create persiste un nuevo cliente o proveedor.
func (r *PartyRepo) Create(ctx context.Context, p *entity.Party) error {
	table, ok := partyTable(p.Kind)
	if !ok {
		return domain.ErrInvalidInput
	}
	query := fmt.Sprintf(`
		INSERT INTO %s (id, name, company_name, email, phone, address, tax_id, balance, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`, table)
	_, err := r.q.Exec(ctx, query,
		p.ID, p.Name, p.CompanyName, p.Email, p.Phone, p.Address, p.TaxID, p.Balance, p.CreatedAt, p.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err, "") {
			return domain.ErrDuplicate
		}
		if isConstraintViolation(err) {
			return fmt.Errorf("%w: %v", domain.ErrInvalidInput, err)
		}
		return fmt.Errorf("insert %s: %w", table, err)
	}
	return nil
}

// Update actualiza por id (nunca inserta).
func (r *PartyRepo) Update(ctx context.Context, p *entity.Party) error {
	table, ok := partyTable(p.Kind)
	if !ok {
		return domain.ErrInvalidInput
	}
	query := fmt.Sprintf(`
		UPDATE %s SET name = $2, company_name = $3, email = $4, phone = $5, address = $6,
		       tax_id = $7, balance = $8, updated_at = $9
		WHERE id = $1`, table)
	tag, err := r.q.Exec(ctx, query,
		p.ID, p.Name, p.CompanyName, p.Email, p.Phone, p.Address, p.TaxID, p.Balance, p.UpdatedAt,
	)
	if err != nil {
		if isConstraintViolation(err) {
			return fmt.Errorf("%w: %v", domain.ErrInvalidInput, err)
		}
		return fmt.Errorf("update %s: %w", table, err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// GetByID devuelve nil, nil si no existe.
func (r *PartyRepo) GetByID(ctx context.Context, kind entity.PartyKind, id string) (*entity.Party, error) {
	table, ok := partyTable(kind)
	if !ok {
		return nil, domain.ErrInvalidInput
	}
	row := r.q.QueryRow(ctx, fmt.Sprintf(partySelect, table)+` WHERE p.id = $2`, string(kind), id)
	p, err := scanParty(row, kind)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get %s: %w", table, err)
	}
	return p, nil
}

func (r *PartyRepo) GetByIDs(ctx context.Context, kind entity.PartyKind, ids []string) ([]*entity.Party, error) {
	table, ok := partyTable(kind)
	if !ok {
		return nil, domain.ErrInvalidInput
	}
	if len(ids) == 0 {
		return []*entity.Party{}, nil
	}
	rows, err := r.q.Query(ctx, fmt.Sprintf(partySelect, table)+` WHERE p.id = ANY($2)`, string(kind), ids)
	if err != nil {
		return nil, fmt.Errorf("get %s by ids: %w", table, err)
	}
	return collectParties(rows, kind)
}

// ListRange orden estable (created_at, id) para que las páginas no se solapen.
func (r *PartyRepo) ListRange(ctx context.Context, kind entity.PartyKind, offset, limit int) ([]*entity.Party, error) {
	table, ok := partyTable(kind)
	if !ok {
		return nil, domain.ErrInvalidInput
	}
	query := fmt.Sprintf(partySelect, table) + ` ORDER BY p.created_at, p.id LIMIT $2 OFFSET $3`
	rows, err := r.q.Query(ctx, query, string(kind), limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list %s: %w", table, err)
	}
	return collectParties(rows, kind)
}

func (r *PartyRepo) Count(ctx context.Context, kind entity.PartyKind) (int, error) {
	table, ok := partyTable(kind)
	if !ok {
		return 0, domain.ErrInvalidInput
	}
	var n int
	if err := r.q.QueryRow(ctx, fmt.Sprintf(`SELECT COUNT(*) FROM %s`, table)).Scan(&n); err != nil {
		return 0, fmt.Errorf("count %s: %w", table, err)
	}
	return n, nil
}

func scanParty(row pgx.Row, kind entity.PartyKind) (*entity.Party, error) {
	p := entity.Party{Kind: kind}
	err := row.Scan(&p.ID, &p.Name, &p.CompanyName, &p.Email, &p.Phone, &p.Address, &p.TaxID, &p.Balance,
		&p.RemoteID, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func collectParties(rows pgx.Rows, kind entity.PartyKind) ([]*entity.Party, error) {
	defer rows.Close()
	list := make([]*entity.Party, 0)
	for rows.Next() {
		p, err := scanParty(rows, kind)
		if err != nil {
			return nil, fmt.Errorf("scan party: %w", err)
		}
		list = append(list, p)
	}
	return list, rows.Err()
}
