package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/sirupsen/logrus"

	"github.com/Emi00093522-cloud/sistema-gapc.com/internal/apperr"
	"github.com/Emi00093522-cloud/sistema-gapc.com/internal/model"
)

type GroupRepository struct {
	db     *sql.DB
	logger *logrus.Logger
}

func NewGroupRepository(db *sql.DB, logger *logrus.Logger) *GroupRepository {
	return &GroupRepository{db: db, logger: logger}
}

func (r *GroupRepository) GetDB() *sql.DB {
	return r.db
}

const groupColumns = `id, district_id, promoter_id, name, start_date, cycle_length,
	       periodicity, interest_rate, rules, status, created_at, updated_at`

func scanGroup(row interface{ Scan(...interface{}) error }) (*model.Group, error) {
	var group model.Group
	err := row.Scan(
		&group.ID,
		&group.DistrictID,
		&group.PromoterID,
		&group.Name,
		&group.StartDate,
		&group.CycleLength,
		&group.Periodicity,
		&group.InterestRate,
		&group.Rules,
		&group.Status,
		&group.CreatedAt,
		&group.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &group, nil
}

func (r *GroupRepository) Create(ctx context.Context, group *model.Group) error {
	query := `
		INSERT INTO groups (id, district_id, promoter_id, name, start_date, cycle_length,
		                    periodicity, interest_rate, rules, status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
	`

	_, err := r.db.ExecContext(
		ctx,
		query,
		group.ID,
		group.DistrictID,
		group.PromoterID,
		group.Name,
		group.StartDate,
		group.CycleLength,
		group.Periodicity,
		group.InterestRate,
		group.Rules,
		group.Status,
		group.CreatedAt,
		group.UpdatedAt,
	)

	if err != nil {
		if pqErr, ok := err.(*pq.Error); ok {
			if pqErr.Code.Name() == "foreign_key_violation" {
				return fmt.Errorf("%w: округ или промотор не найдены", apperr.ErrValidation)
			}
		}
		return fmt.Errorf("%w: не удалось создать группу: %v", apperr.ErrStorage, err)
	}

	return nil
}

func (r *GroupRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.Group, error) {
	query := `SELECT ` + groupColumns + ` FROM groups WHERE id = $1`

	group, err := scanGroup(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, fmt.Errorf("%w: группа %s", apperr.ErrNotFound, id)
		}
		return nil, fmt.Errorf("%w: не удалось получить группу: %v", apperr.ErrStorage, err)
	}

	return group, nil
}

func (r *GroupRepository) List(ctx context.Context) ([]model.Group, error) {
	query := `SELECT ` + groupColumns + ` FROM groups ORDER BY name`
	return r.queryGroups(ctx, query)
}

func (r *GroupRepository) ListByPromoter(ctx context.Context, promoterID uuid.UUID) ([]model.Group, error) {
	query := `SELECT ` + groupColumns + ` FROM groups WHERE promoter_id = $1 ORDER BY name`
	return r.queryGroups(ctx, query, promoterID)
}

func (r *GroupRepository) queryGroups(ctx context.Context, query string, args ...interface{}) ([]model.Group, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: не удалось запросить группы: %v", apperr.ErrStorage, err)
	}
	defer rows.Close()

	var groups []model.Group
	for rows.Next() {
		group, err := scanGroup(rows)
		if err != nil {
			return nil, fmt.Errorf("%w: не удалось прочитать группу: %v", apperr.ErrStorage, err)
		}
		groups = append(groups, *group)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: ошибка обработки результатов: %v", apperr.ErrStorage, err)
	}

	return groups, nil
}

// GroupIDsByPromoter возвращает идентификаторы групп, закрепленных за промотором
func (r *GroupRepository) GroupIDsByPromoter(ctx context.Context, promoterID uuid.UUID) ([]uuid.UUID, error) {
	query := `SELECT id FROM groups WHERE promoter_id = $1`

	rows, err := r.db.QueryContext(ctx, query, promoterID)
	if err != nil {
		return nil, fmt.Errorf("%w: не удалось запросить группы промотора: %v", apperr.ErrStorage, err)
	}
	defer rows.Close()

	var ids []uuid.UUID
	for rows.Next() {
		var id uuid.UUID
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("%w: не удалось прочитать идентификатор группы: %v", apperr.ErrStorage, err)
		}
		ids = append(ids, id)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: ошибка обработки результатов: %v", apperr.ErrStorage, err)
	}

	return ids, nil
}

// UpdateStatus переводит группу в новый статус жизненного цикла.
// Группы никогда не удаляются, только деактивируются.
func (r *GroupRepository) UpdateStatus(ctx context.Context, id uuid.UUID, status model.GroupStatus) error {
	query := `
		UPDATE groups
		SET status = $1,
		    updated_at = NOW()
		WHERE id = $2
	`

	result, err := r.db.ExecContext(ctx, query, status, id)
	if err != nil {
		return fmt.Errorf("%w: не удалось обновить статус группы: %v", apperr.ErrStorage, err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("%w: не удалось получить число затронутых строк: %v", apperr.ErrStorage, err)
	}

	if rowsAffected == 0 {
		return fmt.Errorf("%w: группа %s", apperr.ErrNotFound, id)
	}

	return nil
}
