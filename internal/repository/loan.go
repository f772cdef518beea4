package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"github.com/Emi00093522-cloud/sistema-gapc.com/internal/apperr"
	"github.com/Emi00093522-cloud/sistema-gapc.com/internal/model"
)

type LoanRepository struct {
	db     *sql.DB
	logger *logrus.Logger
}

func NewLoanRepository(db *sql.DB, logger *logrus.Logger) *LoanRepository {
	return &LoanRepository{db: db, logger: logger}
}

func (r *LoanRepository) GetDB() *sql.DB {
	return r.db
}

const loanColumns = `id, member_id, disbursed_at, principal, total_interest, interest_rate,
	       term_periods, status, purpose, created_at, updated_at`

func scanLoan(row interface{ Scan(...interface{}) error }) (*model.Loan, error) {
	var loan model.Loan
	err := row.Scan(
		&loan.ID,
		&loan.MemberID,
		&loan.DisbursedAt,
		&loan.Principal,
		&loan.TotalInterest,
		&loan.InterestRate,
		&loan.TermPeriods,
		&loan.Status,
		&loan.Purpose,
		&loan.CreatedAt,
		&loan.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &loan, nil
}

// CreateTx добавляет заем внутри транзакции, чтобы выдача и движение
// кассы фиксировались атомарно
func (r *LoanRepository) CreateTx(ctx context.Context, tx *sql.Tx, loan *model.Loan) error {
	query := `
		INSERT INTO loans (id, member_id, disbursed_at, principal, total_interest, interest_rate,
		                   term_periods, status, purpose, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	`

	_, err := tx.ExecContext(
		ctx,
		query,
		loan.ID,
		loan.MemberID,
		loan.DisbursedAt,
		loan.Principal,
		loan.TotalInterest,
		loan.InterestRate,
		loan.TermPeriods,
		loan.Status,
		loan.Purpose,
		loan.CreatedAt,
		loan.UpdatedAt,
	)

	if err != nil {
		if pqErr, ok := err.(*pq.Error); ok {
			if pqErr.Code.Name() == "foreign_key_violation" {
				return fmt.Errorf("%w: участница не найдена", apperr.ErrValidation)
			}
		}
		return fmt.Errorf("%w: не удалось создать заем: %v", apperr.ErrStorage, err)
	}

	return nil
}

func (r *LoanRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.Loan, error) {
	query := `SELECT ` + loanColumns + ` FROM loans WHERE id = $1`

	loan, err := scanLoan(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, fmt.Errorf("%w: заем %s", apperr.ErrNotFound, id)
		}
		return nil, fmt.Errorf("%w: не удалось получить заем: %v", apperr.ErrStorage, err)
	}

	return loan, nil
}

// GetByIDForUpdate блокирует строку займа на время транзакции, чтобы
// последовательность проверка-остатка-запись-платежа не гонялась
// с конкурентными платежами
func (r *LoanRepository) GetByIDForUpdate(ctx context.Context, tx *sql.Tx, id uuid.UUID) (*model.Loan, error) {
	query := `SELECT ` + loanColumns + ` FROM loans WHERE id = $1 FOR UPDATE`

	loan, err := scanLoan(tx.QueryRowContext(ctx, query, id))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, fmt.Errorf("%w: заем %s", apperr.ErrNotFound, id)
		}
		return nil, fmt.Errorf("%w: не удалось получить заем: %v", apperr.ErrStorage, err)
	}

	return loan, nil
}

func (r *LoanRepository) ListByMember(ctx context.Context, memberID uuid.UUID) ([]model.Loan, error) {
	query := `SELECT ` + loanColumns + ` FROM loans WHERE member_id = $1 ORDER BY disbursed_at DESC`
	return r.queryLoans(ctx, query, memberID)
}

func (r *LoanRepository) ListByGroup(ctx context.Context, groupID uuid.UUID) ([]model.Loan, error) {
	query := `
		SELECT l.id, l.member_id, l.disbursed_at, l.principal, l.total_interest, l.interest_rate,
		       l.term_periods, l.status, l.purpose, l.created_at, l.updated_at
		FROM loans l
		JOIN members m ON l.member_id = m.id
		WHERE m.group_id = $1
		ORDER BY l.disbursed_at DESC
	`
	return r.queryLoans(ctx, query, groupID)
}

// ListCurrent возвращает все непогашенные займы для планового пересмотра статусов
func (r *LoanRepository) ListCurrent(ctx context.Context) ([]model.Loan, error) {
	query := `SELECT ` + loanColumns + ` FROM loans WHERE status = 'current' ORDER BY disbursed_at`
	return r.queryLoans(ctx, query)
}

func (r *LoanRepository) queryLoans(ctx context.Context, query string, args ...interface{}) ([]model.Loan, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: не удалось запросить займы: %v", apperr.ErrStorage, err)
	}
	defer rows.Close()

	var loans []model.Loan
	for rows.Next() {
		loan, err := scanLoan(rows)
		if err != nil {
			return nil, fmt.Errorf("%w: не удалось прочитать заем: %v", apperr.ErrStorage, err)
		}
		loans = append(loans, *loan)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: ошибка обработки результатов: %v", apperr.ErrStorage, err)
	}

	return loans, nil
}

// CreatePaymentTx добавляет платеж по займу внутри транзакции
func (r *LoanRepository) CreatePaymentTx(ctx context.Context, tx *sql.Tx, payment *model.LoanPayment) error {
	r.logger.WithFields(logrus.Fields{
		"payment_id":        payment.ID,
		"loan_id":           payment.LoanID,
		"principal_portion": payment.PrincipalPortion,
		"interest_portion":  payment.InterestPortion,
	}).Info("Запись платежа по займу")

	query := `
		INSERT INTO loan_payments (id, loan_id, payment_date, principal_portion, interest_portion, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`

	_, err := tx.ExecContext(
		ctx,
		query,
		payment.ID,
		payment.LoanID,
		payment.PaymentDate,
		payment.PrincipalPortion,
		payment.InterestPortion,
		payment.CreatedAt,
	)

	if err != nil {
		return fmt.Errorf("%w: не удалось записать платеж: %v", apperr.ErrStorage, err)
	}

	return nil
}

func (r *LoanRepository) ListPayments(ctx context.Context, loanID uuid.UUID) ([]model.LoanPayment, error) {
	query := `
		SELECT id, loan_id, payment_date, principal_portion, interest_portion, created_at
		FROM loan_payments
		WHERE loan_id = $1
		ORDER BY payment_date
	`

	rows, err := r.db.QueryContext(ctx, query, loanID)
	if err != nil {
		return nil, fmt.Errorf("%w: не удалось запросить платежи: %v", apperr.ErrStorage, err)
	}
	defer rows.Close()

	var payments []model.LoanPayment
	for rows.Next() {
		var payment model.LoanPayment
		if err := rows.Scan(
			&payment.ID,
			&payment.LoanID,
			&payment.PaymentDate,
			&payment.PrincipalPortion,
			&payment.InterestPortion,
			&payment.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("%w: не удалось прочитать платеж: %v", apperr.ErrStorage, err)
		}
		payments = append(payments, payment)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: ошибка обработки результатов: %v", apperr.ErrStorage, err)
	}

	return payments, nil
}

// SumPrincipalPaidTx возвращает сумму основных частей платежей по займу
// внутри транзакции, пока строка займа заблокирована
func (r *LoanRepository) SumPrincipalPaidTx(ctx context.Context, tx *sql.Tx, loanID uuid.UUID) (decimal.Decimal, error) {
	query := `
		SELECT COALESCE(SUM(principal_portion), 0)
		FROM loan_payments
		WHERE loan_id = $1
	`

	var total decimal.Decimal
	if err := tx.QueryRowContext(ctx, query, loanID).Scan(&total); err != nil {
		return decimal.Zero, fmt.Errorf("%w: не удалось рассчитать погашенную сумму: %v", apperr.ErrStorage, err)
	}

	return total, nil
}

func (r *LoanRepository) UpdateStatusTx(ctx context.Context, tx *sql.Tx, id uuid.UUID, status model.LoanStatus) error {
	query := `
		UPDATE loans
		SET status = $1,
		    updated_at = NOW()
		WHERE id = $2
	`

	result, err := tx.ExecContext(ctx, query, status, id)
	if err != nil {
		return fmt.Errorf("%w: не удалось обновить статус займа: %v", apperr.ErrStorage, err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("%w: не удалось получить число затронутых строк: %v", apperr.ErrStorage, err)
	}

	if rowsAffected == 0 {
		return fmt.Errorf("%w: заем %s", apperr.ErrNotFound, id)
	}

	return nil
}

// UpdateStatus обновляет статус займа вне транзакции (плановый пересмотр)
func (r *LoanRepository) UpdateStatus(ctx context.Context, id uuid.UUID, status model.LoanStatus) error {
	query := `
		UPDATE loans
		SET status = $1,
		    updated_at = NOW()
		WHERE id = $2
	`

	if _, err := r.db.ExecContext(ctx, query, status, id); err != nil {
		return fmt.Errorf("%w: не удалось обновить статус займа: %v", apperr.ErrStorage, err)
	}

	return nil
}
