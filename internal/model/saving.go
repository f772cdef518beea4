package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// SavingsEntry - взнос участницы на собрании. Запись только добавляется,
// после создания не изменяется.
type SavingsEntry struct {
	ID          uuid.UUID       `json:"id" db:"id"`
	MemberID    uuid.UUID       `json:"member_id" db:"member_id"`
	MeetingID   uuid.UUID       `json:"meeting_id" db:"meeting_id"`
	Date        time.Time       `json:"date" db:"date"`
	Amount      decimal.Decimal `json:"amount" db:"amount"`             // регулярный взнос
	OtherAmount decimal.Decimal `json:"other_amount" db:"other_amount"` // прочие взносы
	CreatedAt   time.Time       `json:"created_at" db:"created_at"`
}

type RecordSavingRequest struct {
	MemberID    uuid.UUID       `json:"member_id" validate:"required"`
	MeetingID   uuid.UUID       `json:"meeting_id" validate:"required"`
	Amount      decimal.Decimal `json:"amount" validate:"required"`
	OtherAmount decimal.Decimal `json:"other_amount"`
}
