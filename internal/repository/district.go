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

type DistrictRepository struct {
	db     *sql.DB
	logger *logrus.Logger
}

func NewDistrictRepository(db *sql.DB, logger *logrus.Logger) *DistrictRepository {
	return &DistrictRepository{db: db, logger: logger}
}

func (r *DistrictRepository) Create(ctx context.Context, district *model.District) error {
	query := `
		INSERT INTO districts (id, name, created_at)
		VALUES ($1, $2, $3)
	`

	_, err := r.db.ExecContext(ctx, query, district.ID, district.Name, district.CreatedAt)
	if err != nil {
		if pqErr, ok := err.(*pq.Error); ok {
			if pqErr.Code.Name() == "unique_violation" {
				return fmt.Errorf("%w: округ с таким названием уже существует", apperr.ErrConstraint)
			}
		}
		return fmt.Errorf("%w: не удалось создать округ: %v", apperr.ErrStorage, err)
	}

	return nil
}

func (r *DistrictRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.District, error) {
	query := `SELECT id, name, created_at FROM districts WHERE id = $1`

	var district model.District
	err := r.db.QueryRowContext(ctx, query, id).Scan(&district.ID, &district.Name, &district.CreatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, fmt.Errorf("%w: округ %s", apperr.ErrNotFound, id)
		}
		return nil, fmt.Errorf("%w: не удалось получить округ: %v", apperr.ErrStorage, err)
	}

	return &district, nil
}

func (r *DistrictRepository) List(ctx context.Context) ([]model.District, error) {
	query := `SELECT id, name, created_at FROM districts ORDER BY name`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("%w: не удалось запросить округа: %v", apperr.ErrStorage, err)
	}
	defer rows.Close()

	var districts []model.District
	for rows.Next() {
		var district model.District
		if err := rows.Scan(&district.ID, &district.Name, &district.CreatedAt); err != nil {
			return nil, fmt.Errorf("%w: не удалось прочитать округ: %v", apperr.ErrStorage, err)
		}
		districts = append(districts, district)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: ошибка обработки результатов: %v", apperr.ErrStorage, err)
	}

	return districts, nil
}
