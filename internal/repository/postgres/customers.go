package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	squirrel "github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/oficinahub/workshop-sync/internal/core/domain"
	"github.com/oficinahub/workshop-sync/internal/core/port"
	"github.com/oficinahub/workshop-sync/internal/repository"
)

// CustomerRepository implements port.CustomerRepository using PostgreSQL.
type CustomerRepository struct {
	exec    pgExecutor
	builder squirrel.StatementBuilderType
}

// NewCustomerRepository wires a PostgreSQL-backed customer repository.
func NewCustomerRepository(exec pgExecutor) *CustomerRepository {
	return &CustomerRepository{
		exec:    exec,
		builder: squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}
}

var _ port.CustomerRepository = (*CustomerRepository)(nil)

var customerColumns = []string{"id", "workshop_id", "name", "phone", "active", "created_at", "updated_at"}

// Save upserts a customer row and returns the persisted state.
func (r *CustomerRepository) Save(ctx context.Context, customer *domain.Customer) (*domain.Customer, error) {
	if customer == nil {
		return nil, fmt.Errorf("customer is required")
	}
	if customer.Workshop == nil {
		return nil, fmt.Errorf("customer workshop is required")
	}

	now := time.Now().UTC()
	if customer.ID == uuid.Nil {
		customer.ID = uuid.New()
		customer.CreatedAt = now
	}
	customer.UpdatedAt = now

	var phoneValue any
	if customer.Phone != nil && *customer.Phone != "" {
		phoneValue = *customer.Phone
	}

	// The WHERE clause on conflict stops an ID collision from another
	// workshop being silently rewritten; the statement then returns no
	// row and the write surfaces as a tenant mismatch.
	stmt := `
        INSERT INTO workshop.customers (id, workshop_id, name, phone, active, created_at, updated_at)
        VALUES ($1, $2, $3, $4, $5, $6, $7)
        ON CONFLICT (id) DO UPDATE
            SET name = EXCLUDED.name,
                phone = EXCLUDED.phone,
                active = EXCLUDED.active,
                updated_at = EXCLUDED.updated_at
            WHERE workshop.customers.workshop_id = EXCLUDED.workshop_id
        RETURNING id, workshop_id, name, phone, active, created_at, updated_at
    `

	row := r.exec.QueryRow(ctx, stmt,
		customer.ID,
		int64(customer.Workshop.ID),
		customer.Name,
		phoneValue,
		customer.Active,
		customer.CreatedAt,
		customer.UpdatedAt,
	)

	saved, err := scanCustomer(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) || errors.Is(err, sql.ErrNoRows) {
			return nil, repository.ErrTenantMismatch
		}
		return nil, fmt.Errorf("upsert customer: %w", err)
	}
	return saved, nil
}

// GetByID retrieves a customer scoped to the tenant.
func (r *CustomerRepository) GetByID(ctx context.Context, tenantID domain.TenantID, id uuid.UUID) (*domain.Customer, error) {
	stmt, args, err := r.builder.
		Select(customerColumns...).
		From("workshop.customers").
		Where(squirrel.Eq{"id": id, "workshop_id": int64(tenantID)}).
		Limit(1).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build select customer sql: %w", err)
	}

	customer, err := scanCustomer(r.exec.QueryRow(ctx, stmt, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) || errors.Is(err, sql.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, fmt.Errorf("scan customer: %w", err)
	}
	return customer, nil
}

// Deactivate soft-deletes a customer so the change remains visible to
// incremental pulls.
func (r *CustomerRepository) Deactivate(ctx context.Context, tenantID domain.TenantID, id uuid.UUID) error {
	stmt, args, err := r.builder.
		Update("workshop.customers").
		Set("active", false).
		Set("updated_at", time.Now().UTC()).
		Where(squirrel.Eq{"id": id, "workshop_id": int64(tenantID)}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build deactivate customer sql: %w", err)
	}

	tag, err := r.exec.Exec(ctx, stmt, args...)
	if err != nil {
		return fmt.Errorf("deactivate customer: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return repository.ErrNotFound
	}
	return nil
}

// ListChangedSince returns customers mutated at or after the cursor;
// a nil cursor returns the tenant's full set.
func (r *CustomerRepository) ListChangedSince(ctx context.Context, tenantID domain.TenantID, since *time.Time) ([]*domain.Customer, error) {
	query := r.builder.
		Select(customerColumns...).
		From("workshop.customers").
		Where(squirrel.Eq{"workshop_id": int64(tenantID)}).
		OrderBy("updated_at ASC")

	if since != nil {
		query = query.Where(squirrel.GtOrEq{"updated_at": since.UTC()})
	}

	stmt, args, err := query.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build list customers sql: %w", err)
	}

	rows, err := r.exec.Query(ctx, stmt, args...)
	if err != nil {
		return nil, fmt.Errorf("list customers: %w", err)
	}
	defer rows.Close()

	var customers []*domain.Customer
	for rows.Next() {
		customer, err := scanCustomer(rows)
		if err != nil {
			return nil, fmt.Errorf("scan customer row: %w", err)
		}
		customers = append(customers, customer)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate customers: %w", err)
	}

	return customers, nil
}

// MaxUpdatedAt returns the most recent customer mutation timestamp for
// the tenant, or nil when the tenant has no customers.
func (r *CustomerRepository) MaxUpdatedAt(ctx context.Context, tenantID domain.TenantID) (*time.Time, error) {
	stmt, args, err := r.builder.
		Select("MAX(updated_at)").
		From("workshop.customers").
		Where(squirrel.Eq{"workshop_id": int64(tenantID)}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build max customer updated_at sql: %w", err)
	}

	var max sql.NullTime
	if err := r.exec.QueryRow(ctx, stmt, args...).Scan(&max); err != nil {
		return nil, fmt.Errorf("scan max customer updated_at: %w", err)
	}
	if !max.Valid {
		return nil, nil
	}
	value := max.Time
	return &value, nil
}

func scanCustomer(row pgx.Row) (*domain.Customer, error) {
	var (
		customer   domain.Customer
		workshopID int64
		phone      sql.NullString
	)

	if err := row.Scan(&customer.ID, &workshopID, &customer.Name, &phone, &customer.Active, &customer.CreatedAt, &customer.UpdatedAt); err != nil {
		return nil, err
	}

	customer.Workshop = &domain.Workshop{ID: domain.TenantID(workshopID)}
	if phone.Valid {
		value := phone.String
		customer.Phone = &value
	}
	return &customer, nil
}
