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

type CashRepository struct {
	db     *sql.DB
	logger *logrus.Logger
}

func NewCashRepository(db *sql.DB, logger *logrus.Logger) *CashRepository {
	return &CashRepository{db: db, logger: logger}
}

func (r *CashRepository) GetDB() *sql.DB {
	return r.db
}

// CreateTx добавляет движение кассы внутри транзакции вызывающей операции
func (r *CashRepository) CreateTx(ctx context.Context, tx *sql.Tx, movement *model.CashMovement) error {
	r.logger.WithFields(logrus.Fields{
		"movement_id": movement.ID,
		"meeting_id":  movement.MeetingID,
		"kind":        movement.Kind,
		"category":    movement.Category,
		"amount":      movement.Amount,
	}).Info("Запись движения кассы")

	query := `
		INSERT INTO cash_movements (id, meeting_id, kind, category, amount, date, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`

	_, err := tx.ExecContext(
		ctx,
		query,
		movement.ID,
		movement.MeetingID,
		movement.Kind,
		movement.Category,
		movement.Amount,
		movement.Date,
		movement.CreatedAt,
	)

	if err != nil {
		if pqErr, ok := err.(*pq.Error); ok {
			if pqErr.Code.Name() == "foreign_key_violation" {
				return fmt.Errorf("%w: собрание не найдено", apperr.ErrValidation)
			}
		}
		return fmt.Errorf("%w: не удалось записать движение кассы: %v", apperr.ErrStorage, err)
	}

	return nil
}

func (r *CashRepository) ListByMeeting(ctx context.Context, meetingID uuid.UUID) ([]model.CashMovement, error) {
	query := `
		SELECT id, meeting_id, kind, category, amount, date, created_at
		FROM cash_movements
		WHERE meeting_id = $1
		ORDER BY created_at
	`
	return r.queryMovements(ctx, query, meetingID)
}

// ListByGroup возвращает движения кассы по всем собраниям группы
func (r *CashRepository) ListByGroup(ctx context.Context, groupID uuid.UUID) ([]model.CashMovement, error) {
	query := `
		SELECT mc.id, mc.meeting_id, mc.kind, mc.category, mc.amount, mc.date, mc.created_at
		FROM cash_movements mc
		JOIN meetings r ON mc.meeting_id = r.id
		WHERE r.group_id = $1
		ORDER BY mc.date
	`
	return r.queryMovements(ctx, query, groupID)
}

func (r *CashRepository) queryMovements(ctx context.Context, query string, args ...interface{}) ([]model.CashMovement, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: не удалось запросить движения кассы: %v", apperr.ErrStorage, err)
	}
	defer rows.Close()

	var movements []model.CashMovement
	for rows.Next() {
		var movement model.CashMovement
		if err := rows.Scan(
			&movement.ID,
			&movement.MeetingID,
			&movement.Kind,
			&movement.Category,
			&movement.Amount,
			&movement.Date,
			&movement.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("%w: не удалось прочитать движение кассы: %v", apperr.ErrStorage, err)
		}
		movements = append(movements, movement)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: ошибка обработки результатов: %v", apperr.ErrStorage, err)
	}

	return movements, nil
}
