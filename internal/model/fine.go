package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Fine - штраф по регламенту группы, опционально привязан к собранию
type Fine struct {
	ID          uuid.UUID       `json:"id" db:"id"`
	MeetingID   *uuid.UUID      `json:"meeting_id" db:"meeting_id"`
	Description string          `json:"description" db:"description"`
	Amount      decimal.Decimal `json:"amount" db:"amount"`
	CreatedAt   time.Time       `json:"created_at" db:"created_at"`
}

type MemberFineStatus string

const (
	MemberFineStatusPending MemberFineStatus = "pending"
	MemberFineStatusSettled MemberFineStatus = "settled"
)

// MemberFine - назначение штрафа участнице. Статус settled выставляется
// ровно в момент, когда остаток долга достигает нуля.
type MemberFine struct {
	ID         uuid.UUID        `json:"id" db:"id"`
	MemberID   uuid.UUID        `json:"member_id" db:"member_id"`
	FineID     uuid.UUID        `json:"fine_id" db:"fine_id"`
	AmountOwed decimal.Decimal  `json:"amount_owed" db:"amount_owed"`
	AmountPaid decimal.Decimal  `json:"amount_paid" db:"amount_paid"`
	SettledAt  *time.Time       `json:"settled_at" db:"settled_at"`
	Status     MemberFineStatus `json:"status" db:"status"`
	CreatedAt  time.Time        `json:"created_at" db:"created_at"`
	UpdatedAt  time.Time        `json:"updated_at" db:"updated_at"`
}

type RecordFineRequest struct {
	MemberID  uuid.UUID       `json:"member_id" validate:"required"`
	Reason    string          `json:"reason" validate:"required"`
	Amount    decimal.Decimal `json:"amount" validate:"required"`
	MeetingID *uuid.UUID      `json:"meeting_id"`
}

type FinePaymentRequest struct {
	MemberFineID uuid.UUID       `json:"member_fine_id" validate:"required"`
	Amount       decimal.Decimal `json:"amount" validate:"required"`
}
