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

type MemberRepository struct {
	db     *sql.DB
	logger *logrus.Logger
}

func NewMemberRepository(db *sql.DB, logger *logrus.Logger) *MemberRepository {
	return &MemberRepository{db: db, logger: logger}
}

const memberColumns = `id, group_id, name, encrypted_dui, dui_hmac, email, phone,
	       role, status, absence_count, joined_at, created_at, updated_at`

func scanMember(row interface{ Scan(...interface{}) error }) (*model.Member, error) {
	var member model.Member
	err := row.Scan(
		&member.ID,
		&member.GroupID,
		&member.Name,
		&member.EncryptedDUI,
		&member.DUIHMAC,
		&member.Email,
		&member.Phone,
		&member.Role,
		&member.Status,
		&member.AbsenceCount,
		&member.JoinedAt,
		&member.CreatedAt,
		&member.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &member, nil
}

func (r *MemberRepository) Create(ctx context.Context, member *model.Member) error {
	query := `
		INSERT INTO members (id, group_id, name, encrypted_dui, dui_hmac, email, phone,
		                     role, status, absence_count, joined_at, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
	`

	_, err := r.db.ExecContext(
		ctx,
		query,
		member.ID,
		member.GroupID,
		member.Name,
		member.EncryptedDUI,
		member.DUIHMAC,
		member.Email,
		member.Phone,
		member.Role,
		member.Status,
		member.AbsenceCount,
		member.JoinedAt,
		member.CreatedAt,
		member.UpdatedAt,
	)

	if err != nil {
		if pqErr, ok := err.(*pq.Error); ok {
			switch pqErr.Code.Name() {
			case "unique_violation":
				return fmt.Errorf("%w: участница с таким DUI уже зарегистрирована", apperr.ErrConstraint)
			case "foreign_key_violation":
				return fmt.Errorf("%w: группа не найдена", apperr.ErrValidation)
			}
		}
		return fmt.Errorf("%w: не удалось создать участницу: %v", apperr.ErrStorage, err)
	}

	return nil
}

func (r *MemberRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.Member, error) {
	query := `SELECT ` + memberColumns + ` FROM members WHERE id = $1`

	member, err := scanMember(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, fmt.Errorf("%w: участница %s", apperr.ErrNotFound, id)
		}
		return nil, fmt.Errorf("%w: не удалось получить участницу: %v", apperr.ErrStorage, err)
	}

	return member, nil
}

func (r *MemberRepository) ListByGroup(ctx context.Context, groupID uuid.UUID) ([]model.Member, error) {
	query := `SELECT ` + memberColumns + ` FROM members WHERE group_id = $1 ORDER BY name`

	rows, err := r.db.QueryContext(ctx, query, groupID)
	if err != nil {
		return nil, fmt.Errorf("%w: не удалось запросить участниц группы: %v", apperr.ErrStorage, err)
	}
	defer rows.Close()

	var members []model.Member
	for rows.Next() {
		member, err := scanMember(rows)
		if err != nil {
			return nil, fmt.Errorf("%w: не удалось прочитать участницу: %v", apperr.ErrStorage, err)
		}
		members = append(members, *member)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: ошибка обработки результатов: %v", apperr.ErrStorage, err)
	}

	return members, nil
}

func (r *MemberRepository) ExistsByDUIHMAC(ctx context.Context, duiHMAC string) (bool, error) {
	query := `SELECT EXISTS(SELECT 1 FROM members WHERE dui_hmac = $1)`

	var exists bool
	if err := r.db.QueryRowContext(ctx, query, duiHMAC).Scan(&exists); err != nil {
		return false, fmt.Errorf("%w: не удалось проверить DUI: %v", apperr.ErrStorage, err)
	}

	return exists, nil
}

// UpdateStatus переводит участницу в новый статус. Участницы никогда
// не удаляются, чтобы записи реестра оставались атрибутируемыми.
func (r *MemberRepository) UpdateStatus(ctx context.Context, id uuid.UUID, status model.MemberStatus) error {
	query := `
		UPDATE members
		SET status = $1,
		    updated_at = NOW()
		WHERE id = $2
	`

	result, err := r.db.ExecContext(ctx, query, status, id)
	if err != nil {
		return fmt.Errorf("%w: не удалось обновить статус участницы: %v", apperr.ErrStorage, err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("%w: не удалось получить число затронутых строк: %v", apperr.ErrStorage, err)
	}

	if rowsAffected == 0 {
		return fmt.Errorf("%w: участница %s", apperr.ErrNotFound, id)
	}

	return nil
}

// IncrementAbsencesTx увеличивает счетчик пропусков на единицу всем активным
// участницам группы, у которых нет взноса на данном собрании
func (r *MemberRepository) IncrementAbsencesTx(ctx context.Context, tx *sql.Tx, groupID, meetingID uuid.UUID) (int64, error) {
	query := `
		UPDATE members m
		SET absence_count = absence_count + 1,
		    updated_at = NOW()
		WHERE m.group_id = $1
		  AND m.status = 'active'
		  AND NOT EXISTS (
		      SELECT 1 FROM savings_entries s
		      WHERE s.member_id = m.id AND s.meeting_id = $2
		  )
	`

	result, err := tx.ExecContext(ctx, query, groupID, meetingID)
	if err != nil {
		return 0, fmt.Errorf("%w: не удалось обновить счетчики пропусков: %v", apperr.ErrStorage, err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("%w: не удалось получить число затронутых строк: %v", apperr.ErrStorage, err)
	}

	return rowsAffected, nil
}

// SetAbsenceCount выставляет счетчик пропусков напрямую.
// Используется только административной корректировкой.
func (r *MemberRepository) SetAbsenceCount(ctx context.Context, id uuid.UUID, count int) error {
	query := `
		UPDATE members
		SET absence_count = $1,
		    updated_at = NOW()
		WHERE id = $2
	`

	result, err := r.db.ExecContext(ctx, query, count, id)
	if err != nil {
		return fmt.Errorf("%w: не удалось скорректировать пропуски: %v", apperr.ErrStorage, err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("%w: не удалось получить число затронутых строк: %v", apperr.ErrStorage, err)
	}

	if rowsAffected == 0 {
		return fmt.Errorf("%w: участница %s", apperr.ErrNotFound, id)
	}

	return nil
}
