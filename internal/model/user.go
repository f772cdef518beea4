package model

import (
	"fmt"
	"regexp"
	"time"

	"github.com/google/uuid"
)

// Role - тип учетной записи в системе
type Role string

const (
	RoleAdministrator Role = "administrador" // доступ ко всем округам
	RolePromoter      Role = "promotor"      // доступ к закрепленным группам
	RoleBoardMember   Role = "directiva"     // доступ только к своей группе
)

type User struct {
	ID        uuid.UUID  `json:"id" db:"id"`
	Username  string     `json:"username" db:"username"`
	Email     string     `json:"email" db:"email"`
	Password  string     `json:"-" db:"password"`
	Role      Role       `json:"role" db:"role"`
	MemberID  *uuid.UUID `json:"member_id" db:"member_id"` // только для роли directiva
	CreatedAt time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt time.Time  `json:"updated_at" db:"updated_at"`
}

type SignInInput struct {
	Username string `json:"username" validate:"required,min=3,max=50"`
	Password string `json:"password" validate:"required,min=8,max=64"`
}

type CreateUserInput struct {
	Username string     `json:"username" validate:"required,min=3,max=50"`
	Email    string     `json:"email" validate:"required,email"`
	Password string     `json:"password" validate:"required,min=8,max=64"`
	Role     Role       `json:"role" validate:"required"`
	MemberID *uuid.UUID `json:"member_id"`
}

func (u *CreateUserInput) Validate() error {
	if !isValidEmail(u.Email) {
		return fmt.Errorf("invalid email format")
	}

	switch u.Role {
	case RoleAdministrator, RolePromoter:
		if u.MemberID != nil {
			return fmt.Errorf("member_id допустим только для роли directiva")
		}
	case RoleBoardMember:
		if u.MemberID == nil {
			return fmt.Errorf("для роли directiva требуется member_id")
		}
	default:
		return fmt.Errorf("неизвестная роль: %s", u.Role)
	}

	if len(u.Password) < 8 {
		return fmt.Errorf("пароль должен содержать не менее 8 символов")
	}

	return nil
}

func isValidEmail(email string) bool {
	emailRegex := regexp.MustCompile(`^[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}$`)
	return emailRegex.MatchString(email)
}

// Scope - вычисленная зона доступа проверенной учетной записи.
// Передается явным аргументом в каждую операцию ядра,
// никакого глобального состояния сессии.
type Scope struct {
	UserID    uuid.UUID
	Role      Role
	AllGroups bool        // администратор: все округа и группы
	GroupIDs  []uuid.UUID // promotor/directiva: разрешенные группы
}

// AllowsGroup сообщает, входит ли группа в зону доступа
func (s *Scope) AllowsGroup(groupID uuid.UUID) bool {
	if s.AllGroups {
		return true
	}
	for _, id := range s.GroupIDs {
		if id == groupID {
			return true
		}
	}
	return false
}

// IsAdmin сообщает, является ли вызывающий администратором
func (s *Scope) IsAdmin() bool {
	return s.Role == RoleAdministrator
}
