package repository

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/EstateEmpire/estateempire-backend/internal/properties/domain"
	"github.com/EstateEmpire/estateempire-backend/internal/storage/postgres"
)

// PropertyColumns is shared with repositories that join properties.
const PropertyColumns = `p.id, p.agent_id, p.name, p.type, p.unit_type_id, p.listing_type, p.price, p.location,
	p.description, p.image, p.bedrooms, p.bathrooms, p.units, p.available_units, p.status, p.created_at, p.updated_at`

type PropertyRepository struct {
	db postgres.DB
}

func NewPropertyRepository(db postgres.DB) *PropertyRepository {
	return &PropertyRepository{db: db}
}

func (r *PropertyRepository) List(ctx context.Context, f domain.ListFilter) ([]domain.Property, error) {
	query, args := buildListQuery(f)

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list properties: %w", err)
	}
	defer rows.Close()

	out := make([]domain.Property, 0)
	for rows.Next() {
		p, err := ScanProperty(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list properties: %w", err)
	}
	return out, nil
}

func (r *PropertyRepository) Get(ctx context.Context, id int64) (*domain.Property, error) {
	row := r.db.QueryRow(ctx, `SELECT `+PropertyColumns+` FROM properties p WHERE p.id = $1`, id)
	p, err := ScanProperty(row)
	if postgres.IsNoRows(err) {
		return nil, domain.ErrPropertyNotFound
	}
	return p, err
}

func (r *PropertyRepository) Create(ctx context.Context, p *domain.Property) error {
	err := r.db.QueryRow(ctx, `
		INSERT INTO properties (agent_id, name, type, unit_type_id, listing_type, price, location,
			description, image, bedrooms, bathrooms, units, available_units, status)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
		RETURNING id, created_at, updated_at
	`,
		p.AgentID, p.Name, p.Type, p.UnitTypeID, string(p.ListingType), p.Price, p.Location,
		p.Description, p.Image, p.Bedrooms, p.Bathrooms, p.Units, p.AvailableUnits, string(p.Status),
	).Scan(&p.ID, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return fmt.Errorf("insert property: %w", err)
	}
	return nil
}

// Delete removes the listing if it is owned by agentID.
func (r *PropertyRepository) Delete(ctx context.Context, id int64, agentID uuid.UUID) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM properties WHERE id = $1 AND agent_id = $2`, id, agentID)
	if postgres.IsForeignKeyViolation(err) {
		return domain.ErrHasTransactions
	}
	if err != nil {
		return fmt.Errorf("delete property: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrPropertyNotFound
	}
	return nil
}

func (r *PropertyRepository) UnitTypes(ctx context.Context) ([]domain.UnitType, error) {
	rows, err := r.db.Query(ctx, `SELECT id, name FROM unit_types ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("list unit types: %w", err)
	}

	types, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (domain.UnitType, error) {
		var ut domain.UnitType
		err := row.Scan(&ut.ID, &ut.Name)
		return ut, err
	})
	if err != nil {
		return nil, fmt.Errorf("list unit types: %w", err)
	}
	if types == nil {
		types = []domain.UnitType{}
	}
	return types, nil
}

// ScanProperty reads a row selected with PropertyColumns.
func ScanProperty(row pgx.Row) (*domain.Property, error) {
	return ScanPropertyWith(row)
}

// ScanPropertyWith reads PropertyColumns followed by extra columns into dest.
func ScanPropertyWith(row pgx.Row, dest ...any) (*domain.Property, error) {
	var (
		p           domain.Property
		listingType string
		status      string
	)
	targets := []any{
		&p.ID, &p.AgentID, &p.Name, &p.Type, &p.UnitTypeID, &listingType, &p.Price, &p.Location,
		&p.Description, &p.Image, &p.Bedrooms, &p.Bathrooms, &p.Units, &p.AvailableUnits, &status,
		&p.CreatedAt, &p.UpdatedAt,
	}
	if err := row.Scan(append(targets, dest...)...); err != nil {
		return nil, err
	}
	p.ListingType = domain.ListingType(listingType)
	p.Status = domain.Status(status)
	return &p, nil
}

func buildListQuery(f domain.ListFilter) (string, []any) {
	var (
		where []string
		args  []any
	)
	add := func(cond string, v any) {
		args = append(args, v)
		where = append(where, fmt.Sprintf(cond, len(args)))
	}

	if f.ListingType != "" {
		add("p.listing_type = $%d", string(f.ListingType))
	}
	if f.Status != "" {
		add("p.status = $%d", string(f.Status))
	}
	if f.AgentID != nil {
		add("p.agent_id = $%d", *f.AgentID)
	}
	if f.Location != "" {
		add("p.location ILIKE $%d", "%"+escapeLike(f.Location)+"%")
	}
	if f.MinPrice > 0 {
		add("p.price >= $%d", f.MinPrice)
	}
	if f.MaxPrice > 0 {
		add("p.price <= $%d", f.MaxPrice)
	}
	if f.Bedrooms > 0 {
		add("p.bedrooms >= $%d", f.Bedrooms)
	}

	var sb strings.Builder
	sb.WriteString(`SELECT ` + PropertyColumns + ` FROM properties p`)
	if len(where) > 0 {
		sb.WriteString(" WHERE " + strings.Join(where, " AND "))
	}
	sb.WriteString(" ORDER BY p.created_at DESC, p.id DESC")

	if f.Limit > 0 {
		args = append(args, f.Limit)
		sb.WriteString(fmt.Sprintf(" LIMIT $%d", len(args)))
	}
	if f.Offset > 0 {
		args = append(args, f.Offset)
		sb.WriteString(fmt.Sprintf(" OFFSET $%d", len(args)))
	}
	return sb.String(), args
}

func escapeLike(s string) string {
	return strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(s)
}
