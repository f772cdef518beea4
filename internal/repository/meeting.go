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

type MeetingRepository struct {
	db     *sql.DB
	logger *logrus.Logger
}

func NewMeetingRepository(db *sql.DB, logger *logrus.Logger) *MeetingRepository {
	return &MeetingRepository{db: db, logger: logger}
}

func (r *MeetingRepository) GetDB() *sql.DB {
	return r.db
}

func (r *MeetingRepository) Create(ctx context.Context, meeting *model.Meeting) error {
	query := `
		INSERT INTO meetings (id, group_id, date, status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`

	_, err := r.db.ExecContext(
		ctx,
		query,
		meeting.ID,
		meeting.GroupID,
		meeting.Date,
		meeting.Status,
		meeting.CreatedAt,
		meeting.UpdatedAt,
	)

	if err != nil {
		if pqErr, ok := err.(*pq.Error); ok {
			if pqErr.Code.Name() == "foreign_key_violation" {
				return fmt.Errorf("%w: группа не найдена", apperr.ErrValidation)
			}
		}
		return fmt.Errorf("%w: не удалось создать собрание: %v", apperr.ErrStorage, err)
	}

	return nil
}

func (r *MeetingRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.Meeting, error) {
	query := `
		SELECT id, group_id, date, status, created_at, updated_at
		FROM meetings
		WHERE id = $1
	`

	var meeting model.Meeting
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&meeting.ID,
		&meeting.GroupID,
		&meeting.Date,
		&meeting.Status,
		&meeting.CreatedAt,
		&meeting.UpdatedAt,
	)

	if err != nil {
		if err == sql.ErrNoRows {
			return nil, fmt.Errorf("%w: собрание %s", apperr.ErrNotFound, id)
		}
		return nil, fmt.Errorf("%w: не удалось получить собрание: %v", apperr.ErrStorage, err)
	}

	return &meeting, nil
}

// GetByIDForUpdate блокирует строку собрания внутри транзакции
func (r *MeetingRepository) GetByIDForUpdate(ctx context.Context, tx *sql.Tx, id uuid.UUID) (*model.Meeting, error) {
	query := `
		SELECT id, group_id, date, status, created_at, updated_at
		FROM meetings
		WHERE id = $1
		FOR UPDATE
	`

	var meeting model.Meeting
	err := tx.QueryRowContext(ctx, query, id).Scan(
		&meeting.ID,
		&meeting.GroupID,
		&meeting.Date,
		&meeting.Status,
		&meeting.CreatedAt,
		&meeting.UpdatedAt,
	)

	if err != nil {
		if err == sql.ErrNoRows {
			return nil, fmt.Errorf("%w: собрание %s", apperr.ErrNotFound, id)
		}
		return nil, fmt.Errorf("%w: не удалось получить собрание: %v", apperr.ErrStorage, err)
	}

	return &meeting, nil
}

func (r *MeetingRepository) ListByGroup(ctx context.Context, groupID uuid.UUID) ([]model.Meeting, error) {
	query := `
		SELECT id, group_id, date, status, created_at, updated_at
		FROM meetings
		WHERE group_id = $1
		ORDER BY date DESC
	`

	rows, err := r.db.QueryContext(ctx, query, groupID)
	if err != nil {
		return nil, fmt.Errorf("%w: не удалось запросить собрания: %v", apperr.ErrStorage, err)
	}
	defer rows.Close()

	var meetings []model.Meeting
	for rows.Next() {
		var meeting model.Meeting
		if err := rows.Scan(
			&meeting.ID,
			&meeting.GroupID,
			&meeting.Date,
			&meeting.Status,
			&meeting.CreatedAt,
			&meeting.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("%w: не удалось прочитать собрание: %v", apperr.ErrStorage, err)
		}
		meetings = append(meetings, meeting)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: ошибка обработки результатов: %v", apperr.ErrStorage, err)
	}

	return meetings, nil
}

func (r *MeetingRepository) UpdateStatusTx(ctx context.Context, tx *sql.Tx, id uuid.UUID, status model.MeetingStatus) error {
	query := `
		UPDATE meetings
		SET status = $1,
		    updated_at = NOW()
		WHERE id = $2
	`

	result, err := tx.ExecContext(ctx, query, status, id)
	if err != nil {
		return fmt.Errorf("%w: не удалось обновить статус собрания: %v", apperr.ErrStorage, err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("%w: не удалось получить число затронутых строк: %v", apperr.ErrStorage, err)
	}

	if rowsAffected == 0 {
		return fmt.Errorf("%w: собрание %s", apperr.ErrNotFound, id)
	}

	return nil
}
