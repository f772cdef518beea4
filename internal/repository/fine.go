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

type FineRepository struct {
	db     *sql.DB
	logger *logrus.Logger
}

func NewFineRepository(db *sql.DB, logger *logrus.Logger) *FineRepository {
	return &FineRepository{db: db, logger: logger}
}

func (r *FineRepository) GetDB() *sql.DB {
	return r.db
}

// CreateFineTx добавляет штраф внутри транзакции. Штраф и его назначение
// участнице записываются атомарно.
func (r *FineRepository) CreateFineTx(ctx context.Context, tx *sql.Tx, fine *model.Fine) error {
	query := `
		INSERT INTO fines (id, meeting_id, description, amount, created_at)
		VALUES ($1, $2, $3, $4, $5)
	`

	_, err := tx.ExecContext(
		ctx,
		query,
		fine.ID,
		fine.MeetingID,
		fine.Description,
		fine.Amount,
		fine.CreatedAt,
	)

	if err != nil {
		if pqErr, ok := err.(*pq.Error); ok {
			if pqErr.Code.Name() == "foreign_key_violation" {
				return fmt.Errorf("%w: собрание не найдено", apperr.ErrValidation)
			}
		}
		return fmt.Errorf("%w: не удалось создать штраф: %v", apperr.ErrStorage, err)
	}

	return nil
}

func (r *FineRepository) CreateMemberFineTx(ctx context.Context, tx *sql.Tx, mf *model.MemberFine) error {
	query := `
		INSERT INTO member_fines (id, member_id, fine_id, amount_owed, amount_paid,
		                          settled_at, status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`

	_, err := tx.ExecContext(
		ctx,
		query,
		mf.ID,
		mf.MemberID,
		mf.FineID,
		mf.AmountOwed,
		mf.AmountPaid,
		mf.SettledAt,
		mf.Status,
		mf.CreatedAt,
		mf.UpdatedAt,
	)

	if err != nil {
		if pqErr, ok := err.(*pq.Error); ok {
			if pqErr.Code.Name() == "foreign_key_violation" {
				return fmt.Errorf("%w: участница или штраф не найдены", apperr.ErrValidation)
			}
		}
		return fmt.Errorf("%w: не удалось назначить штраф: %v", apperr.ErrStorage, err)
	}

	return nil
}

const memberFineColumns = `id, member_id, fine_id, amount_owed, amount_paid,
	       settled_at, status, created_at, updated_at`

func scanMemberFine(row interface{ Scan(...interface{}) error }) (*model.MemberFine, error) {
	var mf model.MemberFine
	err := row.Scan(
		&mf.ID,
		&mf.MemberID,
		&mf.FineID,
		&mf.AmountOwed,
		&mf.AmountPaid,
		&mf.SettledAt,
		&mf.Status,
		&mf.CreatedAt,
		&mf.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &mf, nil
}

func (r *FineRepository) GetMemberFineByID(ctx context.Context, id uuid.UUID) (*model.MemberFine, error) {
	query := `SELECT ` + memberFineColumns + ` FROM member_fines WHERE id = $1`

	mf, err := scanMemberFine(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, fmt.Errorf("%w: назначение штрафа %s", apperr.ErrNotFound, id)
		}
		return nil, fmt.Errorf("%w: не удалось получить назначение штрафа: %v", apperr.ErrStorage, err)
	}

	return mf, nil
}

// GetMemberFineForUpdate блокирует строку назначения штрафа, чтобы
// конкурентные платежи не наблюдали устаревший остаток
func (r *FineRepository) GetMemberFineForUpdate(ctx context.Context, tx *sql.Tx, id uuid.UUID) (*model.MemberFine, error) {
	query := `SELECT ` + memberFineColumns + ` FROM member_fines WHERE id = $1 FOR UPDATE`

	mf, err := scanMemberFine(tx.QueryRowContext(ctx, query, id))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, fmt.Errorf("%w: назначение штрафа %s", apperr.ErrNotFound, id)
		}
		return nil, fmt.Errorf("%w: не удалось получить назначение штрафа: %v", apperr.ErrStorage, err)
	}

	return mf, nil
}

func (r *FineRepository) ListByMember(ctx context.Context, memberID uuid.UUID) ([]model.MemberFine, error) {
	query := `SELECT ` + memberFineColumns + ` FROM member_fines WHERE member_id = $1 ORDER BY created_at DESC`

	rows, err := r.db.QueryContext(ctx, query, memberID)
	if err != nil {
		return nil, fmt.Errorf("%w: не удалось запросить штрафы: %v", apperr.ErrStorage, err)
	}
	defer rows.Close()

	var fines []model.MemberFine
	for rows.Next() {
		mf, err := scanMemberFine(rows)
		if err != nil {
			return nil, fmt.Errorf("%w: не удалось прочитать назначение штрафа: %v", apperr.ErrStorage, err)
		}
		fines = append(fines, *mf)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: ошибка обработки результатов: %v", apperr.ErrStorage, err)
	}

	return fines, nil
}

// UpdateMemberFineTx сохраняет новое состояние назначения штрафа после платежа
func (r *FineRepository) UpdateMemberFineTx(ctx context.Context, tx *sql.Tx, mf *model.MemberFine) error {
	query := `
		UPDATE member_fines
		SET amount_paid = $1,
		    settled_at = $2,
		    status = $3,
		    updated_at = $4
		WHERE id = $5
	`

	result, err := tx.ExecContext(ctx, query, mf.AmountPaid, mf.SettledAt, mf.Status, mf.UpdatedAt, mf.ID)
	if err != nil {
		return fmt.Errorf("%w: не удалось обновить назначение штрафа: %v", apperr.ErrStorage, err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("%w: не удалось получить число затронутых строк: %v", apperr.ErrStorage, err)
	}

	if rowsAffected == 0 {
		return fmt.Errorf("%w: назначение штрафа %s", apperr.ErrNotFound, mf.ID)
	}

	return nil
}
