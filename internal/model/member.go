package model

import (
	"time"

	"github.com/google/uuid"
)

// MemberRole - роль внутри группы
type MemberRole string

const (
	MemberRolePresident MemberRole = "president"
	MemberRoleSecretary MemberRole = "secretary"
	MemberRoleTreasurer MemberRole = "treasurer"
	MemberRoleOrdinary  MemberRole = "ordinary"
)

type MemberStatus string

const (
	MemberStatusActive   MemberStatus = "active"
	MemberStatusInactive MemberStatus = "inactive"
)

// Member - участница группы сбережений. DUI хранится только в
// зашифрованном виде, HMAC используется для проверки уникальности.
type Member struct {
	ID           uuid.UUID    `json:"id" db:"id"`
	GroupID      uuid.UUID    `json:"group_id" db:"group_id"`
	Name         string       `json:"name" db:"name"`
	EncryptedDUI string       `json:"-" db:"encrypted_dui"` // PGP
	DUIHMAC      string       `json:"-" db:"dui_hmac"`      // HMAC-SHA256
	Email        string       `json:"email" db:"email"`
	Phone        string       `json:"phone" db:"phone"`
	Role         MemberRole   `json:"role" db:"role"`
	Status       MemberStatus `json:"status" db:"status"`
	AbsenceCount int          `json:"absence_count" db:"absence_count"`
	JoinedAt     time.Time    `json:"joined_at" db:"joined_at"`
	CreatedAt    time.Time    `json:"created_at" db:"created_at"`
	UpdatedAt    time.Time    `json:"updated_at" db:"updated_at"`
}

type CreateMemberRequest struct {
	GroupID uuid.UUID  `json:"group_id" validate:"required"`
	Name    string     `json:"name" validate:"required,min=2,max=100"`
	DUI     string     `json:"dui" validate:"required"`
	Email   string     `json:"email"`
	Phone   string     `json:"phone"`
	Role    MemberRole `json:"role" validate:"required"`
}

// MemberResponse - представление участницы с маскированным DUI
type MemberResponse struct {
	ID           uuid.UUID    `json:"id"`
	GroupID      uuid.UUID    `json:"group_id"`
	Name         string       `json:"name"`
	MaskedDUI    string       `json:"masked_dui"`
	Email        string       `json:"email"`
	Phone        string       `json:"phone"`
	Role         MemberRole   `json:"role"`
	Status       MemberStatus `json:"status"`
	AbsenceCount int          `json:"absence_count"`
}

type AdjustAbsencesRequest struct {
	MemberID uuid.UUID `json:"member_id" validate:"required"`
	Count    int       `json:"count" validate:"gte=0"`
}
