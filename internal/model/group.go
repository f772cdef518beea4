package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// District - округ, объединяющий группы сбережений
type District struct {
	ID        uuid.UUID `json:"id" db:"id"`
	Name      string    `json:"name" db:"name"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

type GroupStatus string

const (
	GroupStatusActive GroupStatus = "active"
	GroupStatusClosed GroupStatus = "closed"
)

// Periodicity - периодичность собраний группы
type Periodicity string

const (
	PeriodicityWeekly   Periodicity = "weekly"
	PeriodicityBiweekly Periodicity = "biweekly"
	PeriodicityMonthly  Periodicity = "monthly"
)

// Group - группа сбережений и займов под надзором промотора
type Group struct {
	ID           uuid.UUID       `json:"id" db:"id"`
	DistrictID   uuid.UUID       `json:"district_id" db:"district_id"`
	PromoterID   uuid.UUID       `json:"promoter_id" db:"promoter_id"`
	Name         string          `json:"name" db:"name"`
	StartDate    time.Time       `json:"start_date" db:"start_date"`
	CycleLength  int             `json:"cycle_length" db:"cycle_length"` // число периодов цикла
	Periodicity  Periodicity     `json:"periodicity" db:"periodicity"`
	InterestRate decimal.Decimal `json:"interest_rate" db:"interest_rate"` // годовая ставка, %
	Rules        string          `json:"rules" db:"rules"`
	Status       GroupStatus     `json:"status" db:"status"`
	CreatedAt    time.Time       `json:"created_at" db:"created_at"`
	UpdatedAt    time.Time       `json:"updated_at" db:"updated_at"`
}

type CreateDistrictRequest struct {
	Name string `json:"name" validate:"required,min=2,max=100"`
}

type CreateGroupRequest struct {
	Name        string      `json:"name" validate:"required,min=2,max=100"`
	DistrictID  uuid.UUID   `json:"district_id" validate:"required"`
	PromoterID  uuid.UUID   `json:"promoter_id" validate:"required"`
	StartDate   time.Time   `json:"start_date" validate:"required"`
	CycleLength int         `json:"cycle_length" validate:"required,gte=1,lte=52"`
	Periodicity Periodicity `json:"periodicity" validate:"required"`
	// InterestRate опциональна: при отсутствии берется справочная ставка BCR
	InterestRate *decimal.Decimal `json:"interest_rate"`
	Rules        string           `json:"rules"`
}
