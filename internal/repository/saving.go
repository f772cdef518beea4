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

type SavingRepository struct {
	db     *sql.DB
	logger *logrus.Logger
}

func NewSavingRepository(db *sql.DB, logger *logrus.Logger) *SavingRepository {
	return &SavingRepository{db: db, logger: logger}
}

func (r *SavingRepository) GetDB() *sql.DB {
	return r.db
}

// CreateTx добавляет запись о взносе внутри транзакции.
// Записи реестра после создания не изменяются.
func (r *SavingRepository) CreateTx(ctx context.Context, tx *sql.Tx, entry *model.SavingsEntry) error {
	r.logger.WithFields(logrus.Fields{
		"entry_id":   entry.ID,
		"member_id":  entry.MemberID,
		"meeting_id": entry.MeetingID,
		"amount":     entry.Amount,
	}).Info("Запись взноса в реестр")

	query := `
		INSERT INTO savings_entries (id, member_id, meeting_id, date, amount, other_amount, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`

	_, err := tx.ExecContext(
		ctx,
		query,
		entry.ID,
		entry.MemberID,
		entry.MeetingID,
		entry.Date,
		entry.Amount,
		entry.OtherAmount,
		entry.CreatedAt,
	)

	if err != nil {
		if pqErr, ok := err.(*pq.Error); ok {
			if pqErr.Code.Name() == "foreign_key_violation" {
				return fmt.Errorf("%w: участница или собрание не найдены", apperr.ErrValidation)
			}
		}
		return fmt.Errorf("%w: не удалось записать взнос: %v", apperr.ErrStorage, err)
	}

	return nil
}

func (r *SavingRepository) ListByMember(ctx context.Context, memberID uuid.UUID) ([]model.SavingsEntry, error) {
	query := `
		SELECT id, member_id, meeting_id, date, amount, other_amount, created_at
		FROM savings_entries
		WHERE member_id = $1
		ORDER BY date DESC
	`

	rows, err := r.db.QueryContext(ctx, query, memberID)
	if err != nil {
		return nil, fmt.Errorf("%w: не удалось запросить взносы: %v", apperr.ErrStorage, err)
	}
	defer rows.Close()

	var entries []model.SavingsEntry
	for rows.Next() {
		var entry model.SavingsEntry
		if err := rows.Scan(
			&entry.ID,
			&entry.MemberID,
			&entry.MeetingID,
			&entry.Date,
			&entry.Amount,
			&entry.OtherAmount,
			&entry.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("%w: не удалось прочитать взнос: %v", apperr.ErrStorage, err)
		}
		entries = append(entries, entry)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: ошибка обработки результатов: %v", apperr.ErrStorage, err)
	}

	return entries, nil
}
