package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type LoanStatus string

const (
	LoanStatusCurrent    LoanStatus = "current"
	LoanStatusDelinquent LoanStatus = "delinquent"
	LoanStatusPaid       LoanStatus = "paid"
	LoanStatusWrittenOff LoanStatus = "written_off"
)

// Loan - заем участницы. Непогашенный остаток не хранится,
// а выводится из основной суммы и платежей.
type Loan struct {
	ID            uuid.UUID       `json:"id" db:"id"`
	MemberID      uuid.UUID       `json:"member_id" db:"member_id"`
	DisbursedAt   time.Time       `json:"disbursed_at" db:"disbursed_at"`
	Principal     decimal.Decimal `json:"principal" db:"principal"`
	TotalInterest decimal.Decimal `json:"total_interest" db:"total_interest"`
	InterestRate  decimal.Decimal `json:"interest_rate" db:"interest_rate"` // годовая ставка, %
	TermPeriods   int             `json:"term_periods" db:"term_periods"`
	Status        LoanStatus      `json:"status" db:"status"`
	Purpose       string          `json:"purpose" db:"purpose"`
	CreatedAt     time.Time       `json:"created_at" db:"created_at"`
	UpdatedAt     time.Time       `json:"updated_at" db:"updated_at"`
}

// LoanPayment - платеж по займу с раздельным учетом основной суммы
// и процентов. Запись только добавляется.
type LoanPayment struct {
	ID               uuid.UUID       `json:"id" db:"id"`
	LoanID           uuid.UUID       `json:"loan_id" db:"loan_id"`
	PaymentDate      time.Time       `json:"payment_date" db:"payment_date"`
	PrincipalPortion decimal.Decimal `json:"principal_portion" db:"principal_portion"`
	InterestPortion  decimal.Decimal `json:"interest_portion" db:"interest_portion"`
	CreatedAt        time.Time       `json:"created_at" db:"created_at"`
}

type DisburseLoanRequest struct {
	MemberID  uuid.UUID       `json:"member_id" validate:"required"`
	Principal decimal.Decimal `json:"principal" validate:"required"`
	// InterestRate опциональна: при отсутствии берется ставка группы
	InterestRate *decimal.Decimal `json:"interest_rate"`
	TermPeriods  int              `json:"term_periods" validate:"required,gte=1,lte=52"`
	Purpose      string           `json:"purpose"`
	// MeetingID опционален: при наличии выдача фиксируется расходом кассы
	MeetingID *uuid.UUID `json:"meeting_id"`
}

type RecordPaymentRequest struct {
	LoanID           uuid.UUID       `json:"loan_id" validate:"required"`
	PrincipalPortion decimal.Decimal `json:"principal_portion"`
	InterestPortion  decimal.Decimal `json:"interest_portion"`
	MeetingID        *uuid.UUID      `json:"meeting_id"`
}
