package model

import (
	"time"

	"github.com/google/uuid"
)

type MeetingStatus string

const (
	MeetingStatusScheduled MeetingStatus = "scheduled"
	MeetingStatusHeld      MeetingStatus = "held"
	MeetingStatusCancelled MeetingStatus = "cancelled"
)

// Meeting - собрание группы; привязывает сбережения и движения кассы
// к конкретной дате
type Meeting struct {
	ID        uuid.UUID     `json:"id" db:"id"`
	GroupID   uuid.UUID     `json:"group_id" db:"group_id"`
	Date      time.Time     `json:"date" db:"date"`
	Status    MeetingStatus `json:"status" db:"status"`
	CreatedAt time.Time     `json:"created_at" db:"created_at"`
	UpdatedAt time.Time     `json:"updated_at" db:"updated_at"`
}

type ScheduleMeetingRequest struct {
	GroupID uuid.UUID `json:"group_id" validate:"required"`
	Date    time.Time `json:"date" validate:"required"`
}
