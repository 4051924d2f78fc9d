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

// PartTypeRepository implements port.PartTypeRepository using PostgreSQL.
type PartTypeRepository struct {
	exec    pgExecutor
	builder squirrel.StatementBuilderType
}

// NewPartTypeRepository wires a PostgreSQL-backed parts catalog repository.
func NewPartTypeRepository(exec pgExecutor) *PartTypeRepository {
	return &PartTypeRepository{
		exec:    exec,
		builder: squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}
}

var _ port.PartTypeRepository = (*PartTypeRepository)(nil)

// Save upserts a part type row and returns the persisted state.
func (r *PartTypeRepository) Save(ctx context.Context, partType *domain.PartType) (*domain.PartType, error) {
	if partType == nil {
		return nil, fmt.Errorf("part type is required")
	}
	if partType.Workshop == nil {
		return nil, fmt.Errorf("part type workshop is required")
	}

	now := time.Now().UTC()
	if partType.ID == uuid.Nil {
		partType.ID = uuid.New()
		partType.CreatedAt = now
	}
	partType.UpdatedAt = now

	stmt := `
        INSERT INTO workshop.part_types (id, workshop_id, name, created_at, updated_at)
        VALUES ($1, $2, $3, $4, $5)
        ON CONFLICT (id) DO UPDATE
            SET name = EXCLUDED.name,
                updated_at = EXCLUDED.updated_at
            WHERE workshop.part_types.workshop_id = EXCLUDED.workshop_id
        RETURNING id, workshop_id, name, created_at, updated_at
    `

	row := r.exec.QueryRow(ctx, stmt,
		partType.ID,
		int64(partType.Workshop.ID),
		partType.Name,
		partType.CreatedAt,
		partType.UpdatedAt,
	)

	saved, err := scanPartType(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) || errors.Is(err, sql.ErrNoRows) {
			return nil, repository.ErrTenantMismatch
		}
		return nil, fmt.Errorf("upsert part type: %w", err)
	}
	return saved, nil
}

// Delete removes a part type row.
func (r *PartTypeRepository) Delete(ctx context.Context, tenantID domain.TenantID, id uuid.UUID) error {
	stmt, args, err := r.builder.
		Delete("workshop.part_types").
		Where(squirrel.Eq{"id": id, "workshop_id": int64(tenantID)}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build delete part type sql: %w", err)
	}

	tag, err := r.exec.Exec(ctx, stmt, args...)
	if err != nil {
		return fmt.Errorf("delete part type: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return repository.ErrNotFound
	}
	return nil
}

// ListChangedSince returns part types mutated at or after the cursor.
func (r *PartTypeRepository) ListChangedSince(ctx context.Context, tenantID domain.TenantID, since *time.Time) ([]*domain.PartType, error) {
	query := r.builder.
		Select("id", "workshop_id", "name", "created_at", "updated_at").
		From("workshop.part_types").
		Where(squirrel.Eq{"workshop_id": int64(tenantID)}).
		OrderBy("updated_at ASC")

	if since != nil {
		query = query.Where(squirrel.GtOrEq{"updated_at": since.UTC()})
	}

	stmt, args, err := query.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build list part types sql: %w", err)
	}

	rows, err := r.exec.Query(ctx, stmt, args...)
	if err != nil {
		return nil, fmt.Errorf("list part types: %w", err)
	}
	defer rows.Close()

	var partTypes []*domain.PartType
	for rows.Next() {
		partType, err := scanPartType(rows)
		if err != nil {
			return nil, fmt.Errorf("scan part type row: %w", err)
		}
		partTypes = append(partTypes, partType)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate part types: %w", err)
	}

	return partTypes, nil
}

// MaxUpdatedAt returns the most recent catalog mutation timestamp for
// the tenant, or nil when the catalog is empty.
func (r *PartTypeRepository) MaxUpdatedAt(ctx context.Context, tenantID domain.TenantID) (*time.Time, error) {
	stmt, args, err := r.builder.
		Select("MAX(updated_at)").
		From("workshop.part_types").
		Where(squirrel.Eq{"workshop_id": int64(tenantID)}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build max part type updated_at sql: %w", err)
	}

	var max sql.NullTime
	if err := r.exec.QueryRow(ctx, stmt, args...).Scan(&max); err != nil {
		return nil, fmt.Errorf("scan max part type updated_at: %w", err)
	}
	if !max.Valid {
		return nil, nil
	}
	value := max.Time
	return &value, nil
}

func scanPartType(row pgx.Row) (*domain.PartType, error) {
	var (
		partType   domain.PartType
		workshopID int64
	)

	if err := row.Scan(&partType.ID, &workshopID, &partType.Name, &partType.CreatedAt, &partType.UpdatedAt); err != nil {
		return nil, err
	}

	partType.Workshop = &domain.Workshop{ID: domain.TenantID(workshopID)}
	return &partType, nil
}
