package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// MovementKind - направление движения по кассе группы
type MovementKind string

const (
	MovementKindInflow  MovementKind = "inflow"
	MovementKindOutflow MovementKind = "outflow"
)

// Категории движений кассы
const (
	MovementCategorySaving       = "saving"
	MovementCategoryDisbursement = "loan_disbursement"
	MovementCategoryLoanPayment  = "loan_payment"
	MovementCategoryFinePayment  = "fine_payment"
	MovementCategoryOther        = "other"
)

// CashMovement - приход или расход общей кассы, зафиксированный
// на собрании. Запись только добавляется.
type CashMovement struct {
	ID        uuid.UUID       `json:"id" db:"id"`
	MeetingID uuid.UUID       `json:"meeting_id" db:"meeting_id"`
	Kind      MovementKind    `json:"kind" db:"kind"`
	Category  string          `json:"category" db:"category"`
	Amount    decimal.Decimal `json:"amount" db:"amount"`
	Date      time.Time       `json:"date" db:"date"`
	CreatedAt time.Time       `json:"created_at" db:"created_at"`
}

type RecordMovementRequest struct {
	MeetingID uuid.UUID       `json:"meeting_id" validate:"required"`
	Kind      MovementKind    `json:"kind" validate:"required"`
	Category  string          `json:"category" validate:"required"`
	Amount    decimal.Decimal `json:"amount" validate:"required"`
}
