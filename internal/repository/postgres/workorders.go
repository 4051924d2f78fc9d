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
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/oficinahub/workshop-sync/internal/core/domain"
	"github.com/oficinahub/workshop-sync/internal/core/port"
	"github.com/oficinahub/workshop-sync/internal/repository"
)

// WorkOrderRepository implements port.WorkOrderRepository using PostgreSQL.
type WorkOrderRepository struct {
	pool    *pgxpool.Pool
	exec    pgExecutor
	builder squirrel.StatementBuilderType
}

// NewWorkOrderRepository constructs the repository from a generic executor.
func NewWorkOrderRepository(exec pgExecutor) *WorkOrderRepository {
	repo := &WorkOrderRepository{
		exec:    exec,
		builder: squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}
	if pool, ok := exec.(*pgxpool.Pool); ok {
		repo.pool = pool
	}
	return repo
}

// WithTx binds the repository to execute statements within the supplied transaction.
func (r *WorkOrderRepository) WithTx(tx pgx.Tx) *WorkOrderRepository {
	if tx == nil {
		return r
	}
	return &WorkOrderRepository{
		pool:    r.pool,
		exec:    tx,
		builder: r.builder,
	}
}

var _ port.WorkOrderRepository = (*WorkOrderRepository)(nil)

var workOrderColumns = []string{
	"id", "workshop_id", "customer_id", "status", "total_cents",
	"opened_at", "closed_at", "created_at", "updated_at",
}

// Save upserts a work order row and returns the persisted state.
func (r *WorkOrderRepository) Save(ctx context.Context, order *domain.WorkOrder) (*domain.WorkOrder, error) {
	return r.save(ctx, r.exec, order)
}

// SaveAll writes a batch of work orders in a single transaction. The
// batch is assumed to belong to one tenant.
func (r *WorkOrderRepository) SaveAll(ctx context.Context, orders []*domain.WorkOrder) ([]*domain.WorkOrder, error) {
	if len(orders) == 0 {
		return nil, nil
	}

	if r.pool == nil {
		saved := make([]*domain.WorkOrder, 0, len(orders))
		for _, order := range orders {
			s, err := r.save(ctx, r.exec, order)
			if err != nil {
				return nil, err
			}
			saved = append(saved, s)
		}
		return saved, nil
	}

	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin save all work orders: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	saved := make([]*domain.WorkOrder, 0, len(orders))
	for _, order := range orders {
		s, err := r.save(ctx, tx, order)
		if err != nil {
			return nil, err
		}
		saved = append(saved, s)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit save all work orders: %w", err)
	}
	return saved, nil
}

func (r *WorkOrderRepository) save(ctx context.Context, exec pgExecutor, order *domain.WorkOrder) (*domain.WorkOrder, error) {
	if order == nil {
		return nil, fmt.Errorf("work order is required")
	}
	if order.Workshop == nil {
		return nil, fmt.Errorf("work order workshop is required")
	}

	now := time.Now().UTC()
	if order.ID == uuid.Nil {
		order.ID = uuid.New()
		order.CreatedAt = now
	}
	if order.OpenedAt.IsZero() {
		order.OpenedAt = now
	}
	if order.Status == "" {
		order.Status = domain.WorkOrderOpen
	}
	order.UpdatedAt = now

	var customerID any
	if order.Customer != nil {
		customerID = order.Customer.ID
	}
	var closedAt any
	if order.ClosedAt != nil {
		closedAt = order.ClosedAt.UTC()
	}

	stmt := `
        INSERT INTO workshop.work_orders
            (id, workshop_id, customer_id, status, total_cents, opened_at, closed_at, created_at, updated_at)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
        ON CONFLICT (id) DO UPDATE
            SET customer_id = EXCLUDED.customer_id,
                status = EXCLUDED.status,
                total_cents = EXCLUDED.total_cents,
                closed_at = EXCLUDED.closed_at,
                updated_at = EXCLUDED.updated_at
            WHERE workshop.work_orders.workshop_id = EXCLUDED.workshop_id
        RETURNING id, workshop_id, customer_id, status, total_cents, opened_at, closed_at, created_at, updated_at
    `

	row := exec.QueryRow(ctx, stmt,
		order.ID,
		int64(order.Workshop.ID),
		customerID,
		order.Status,
		order.Total,
		order.OpenedAt,
		closedAt,
		order.CreatedAt,
		order.UpdatedAt,
	)

	saved, err := scanWorkOrder(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) || errors.Is(err, sql.ErrNoRows) {
			return nil, repository.ErrTenantMismatch
		}
		return nil, fmt.Errorf("upsert work order: %w", err)
	}
	return saved, nil
}

// GetByID retrieves a work order scoped to the tenant.
func (r *WorkOrderRepository) GetByID(ctx context.Context, tenantID domain.TenantID, id uuid.UUID) (*domain.WorkOrder, error) {
	stmt, args, err := r.builder.
		Select(workOrderColumns...).
		From("workshop.work_orders").
		Where(squirrel.Eq{"id": id, "workshop_id": int64(tenantID)}).
		Limit(1).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build select work order sql: %w", err)
	}

	order, err := scanWorkOrder(r.exec.QueryRow(ctx, stmt, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) || errors.Is(err, sql.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, fmt.Errorf("scan work order: %w", err)
	}
	return order, nil
}

// Delete removes a work order row. Identity-only: the caller has no
// loaded entity, so tenant attribution for the version bump comes from
// the request context.
func (r *WorkOrderRepository) Delete(ctx context.Context, tenantID domain.TenantID, id uuid.UUID) error {
	stmt, args, err := r.builder.
		Delete("workshop.work_orders").
		Where(squirrel.Eq{"id": id, "workshop_id": int64(tenantID)}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build delete work order sql: %w", err)
	}

	tag, err := r.exec.Exec(ctx, stmt, args...)
	if err != nil {
		return fmt.Errorf("delete work order: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return repository.ErrNotFound
	}
	return nil
}

// ListChangedSince returns work orders mutated at or after the cursor;
// a nil cursor returns the tenant's full set.
func (r *WorkOrderRepository) ListChangedSince(ctx context.Context, tenantID domain.TenantID, since *time.Time) ([]*domain.WorkOrder, error) {
	query := r.builder.
		Select(workOrderColumns...).
		From("workshop.work_orders").
		Where(squirrel.Eq{"workshop_id": int64(tenantID)}).
		OrderBy("updated_at ASC")

	if since != nil {
		query = query.Where(squirrel.GtOrEq{"updated_at": since.UTC()})
	}

	stmt, args, err := query.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build list work orders sql: %w", err)
	}

	rows, err := r.exec.Query(ctx, stmt, args...)
	if err != nil {
		return nil, fmt.Errorf("list work orders: %w", err)
	}
	defer rows.Close()

	var orders []*domain.WorkOrder
	for rows.Next() {
		order, err := scanWorkOrder(rows)
		if err != nil {
			return nil, fmt.Errorf("scan work order row: %w", err)
		}
		orders = append(orders, order)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate work orders: %w", err)
	}

	return orders, nil
}

// MaxUpdatedAt returns the most recent work order mutation timestamp
// for the tenant, or nil when the tenant has no orders.
func (r *WorkOrderRepository) MaxUpdatedAt(ctx context.Context, tenantID domain.TenantID) (*time.Time, error) {
	stmt, args, err := r.builder.
		Select("MAX(updated_at)").
		From("workshop.work_orders").
		Where(squirrel.Eq{"workshop_id": int64(tenantID)}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build max work order updated_at sql: %w", err)
	}

	var max sql.NullTime
	if err := r.exec.QueryRow(ctx, stmt, args...).Scan(&max); err != nil {
		return nil, fmt.Errorf("scan max work order updated_at: %w", err)
	}
	if !max.Valid {
		return nil, nil
	}
	value := max.Time
	return &value, nil
}

func scanWorkOrder(row pgx.Row) (*domain.WorkOrder, error) {
	var (
		order      domain.WorkOrder
		workshopID int64
		customerID *uuid.UUID
		closedAt   sql.NullTime
	)

	if err := row.Scan(&order.ID, &workshopID, &customerID, &order.Status, &order.Total,
		&order.OpenedAt, &closedAt, &order.CreatedAt, &order.UpdatedAt); err != nil {
		return nil, err
	}

	order.Workshop = &domain.Workshop{ID: domain.TenantID(workshopID)}
	if customerID != nil {
		order.Customer = &domain.Customer{ID: *customerID, Workshop: order.Workshop}
	}
	if closedAt.Valid {
		value := closedAt.Time
		order.ClosedAt = &value
	}
	return &order, nil
}
