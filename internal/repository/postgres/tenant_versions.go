package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	squirrel "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"

	"github.com/oficinahub/workshop-sync/internal/core/domain"
	"github.com/oficinahub/workshop-sync/internal/core/port"
	"github.com/oficinahub/workshop-sync/internal/repository"
)

// TenantVersionRepository persists per-tenant change counters in
// PostgreSQL. The increment is a single upsert statement, so the
// row-level lock taken by the database is the only synchronization
// needed for the no-lost-update guarantee.
type TenantVersionRepository struct {
	exec    pgExecutor
	builder squirrel.StatementBuilderType
}

// NewTenantVersionRepository constructs the repository from a pool or transaction.
func NewTenantVersionRepository(exec pgExecutor) *TenantVersionRepository {
	return &TenantVersionRepository{
		exec:    exec,
		builder: squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}
}

var _ port.TenantVersionRepository = (*TenantVersionRepository)(nil)

// Get retrieves the counter state for a tenant.
func (r *TenantVersionRepository) Get(ctx context.Context, tenantID domain.TenantID) (*domain.TenantVersion, error) {
	stmt, args, err := r.builder.
		Select("tenant_id", "counter", "last_bumped_at").
		From("workshop.tenant_versions").
		Where(squirrel.Eq{"tenant_id": int64(tenantID)}).
		Limit(1).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build select tenant version sql: %w", err)
	}

	var version domain.TenantVersion
	row := r.exec.QueryRow(ctx, stmt, args...)
	if err := row.Scan(&version.TenantID, &version.Counter, &version.LastBumpedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) || errors.Is(err, sql.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, fmt.Errorf("scan tenant version: %w", err)
	}

	return &version, nil
}

// Bump atomically increments the tenant's counter, creating the row at
// 1 on first use.
func (r *TenantVersionRepository) Bump(ctx context.Context, tenantID domain.TenantID, at time.Time) (domain.TenantVersionChange, error) {
	var change domain.TenantVersionChange

	if at.IsZero() {
		at = time.Now().UTC()
	}

	stmt := `
        INSERT INTO workshop.tenant_versions (tenant_id, counter, last_bumped_at)
        VALUES ($1, 1, $2)
        ON CONFLICT (tenant_id) DO UPDATE
            SET counter = workshop.tenant_versions.counter + 1,
                last_bumped_at = EXCLUDED.last_bumped_at
        RETURNING tenant_id, counter, last_bumped_at
    `

	var current domain.TenantVersion
	row := r.exec.QueryRow(ctx, stmt, int64(tenantID), at.UTC())
	if err := row.Scan(&current.TenantID, &current.Counter, &current.LastBumpedAt); err != nil {
		return change, fmt.Errorf("bump tenant version: %w", err)
	}

	if current.Counter > 1 {
		prevCounter := current.Counter - 1
		change.Previous = &domain.TenantVersion{
			TenantID: current.TenantID,
			Counter:  prevCounter,
		}
	}
	change.Current = current
	return change, nil
}
