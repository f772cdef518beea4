package service

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Emi00093522-cloud/sistema-gapc.com/internal/apperr"
	"github.com/Emi00093522-cloud/sistema-gapc.com/internal/model"
	"github.com/Emi00093522-cloud/sistema-gapc.com/internal/repository"
)

func newMockDB(t *testing.T) (*sql.DB, sqlmock.Sqlmock) {
	t.Helper()

	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	return db, mock
}

// memberRows собирает строку участницы в порядке колонок memberColumns
func memberRows(id, groupID uuid.UUID, status model.MemberStatus) *sqlmock.Rows {
	now := time.Now()
	return sqlmock.NewRows([]string{
		"id", "group_id", "name", "encrypted_dui", "dui_hmac", "email", "phone",
		"role", "status", "absence_count", "joined_at", "created_at", "updated_at",
	}).AddRow(
		id.String(), groupID.String(), "Ana Morales", "pgp-blob", "hmac-hex", "", "",
		string(model.MemberRoleOrdinary), string(status), 0, now, now, now,
	)
}

func groupRows(id uuid.UUID, status model.GroupStatus) *sqlmock.Rows {
	now := time.Now()
	return sqlmock.NewRows([]string{
		"id", "district_id", "promoter_id", "name", "start_date", "cycle_length",
		"periodicity", "interest_rate", "rules", "status", "created_at", "updated_at",
	}).AddRow(
		id.String(), uuid.New().String(), uuid.New().String(), "Grupo Esperanza", now, 16,
		string(model.PeriodicityWeekly), "10", "", string(status), now, now,
	)
}

func meetingRows(id, groupID uuid.UUID, status model.MeetingStatus) *sqlmock.Rows {
	now := time.Now()
	return sqlmock.NewRows([]string{
		"id", "group_id", "date", "status", "created_at", "updated_at",
	}).AddRow(id.String(), groupID.String(), now, string(status), now, now)
}

func newSavingServiceWithDB(db *sql.DB) *SavingService {
	logger := newTestLogger()
	return NewSavingService(
		repository.NewSavingRepository(db, logger),
		repository.NewMemberRepository(db, logger),
		repository.NewMeetingRepository(db, logger),
		repository.NewCashRepository(db, logger),
		logger,
	)
}

func TestRecordSavingForbiddenOutsideScope(t *testing.T) {
	db, mock := newMockDB(t)
	svc := newSavingServiceWithDB(db)

	allowedGroup := uuid.New()
	otherGroup := uuid.New()
	memberID := uuid.New()

	mock.ExpectQuery(`FROM members WHERE id`).
		WithArgs(memberID).
		WillReturnRows(memberRows(memberID, otherGroup, model.MemberStatusActive))

	scope := &model.Scope{
		UserID:   uuid.New(),
		Role:     model.RolePromoter,
		GroupIDs: []uuid.UUID{allowedGroup},
	}
	req := model.RecordSavingRequest{
		MemberID:  memberID,
		MeetingID: uuid.New(),
		Amount:    decimal.NewFromInt(5),
	}

	entry, err := svc.RecordSaving(context.Background(), scope, req)
	require.Error(t, err)
	assert.True(t, errors.Is(err, apperr.ErrForbidden))
	assert.Nil(t, entry)

	// Кроме чтения участницы обращений к базе не было: ни собрания,
	// ни транзакции записи
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRecordSavingCancelledMeeting(t *testing.T) {
	db, mock := newMockDB(t)
	svc := newSavingServiceWithDB(db)

	groupID := uuid.New()
	memberID := uuid.New()
	meetingID := uuid.New()

	mock.ExpectQuery(`FROM members WHERE id`).
		WithArgs(memberID).
		WillReturnRows(memberRows(memberID, groupID, model.MemberStatusActive))
	mock.ExpectQuery(`FROM meetings`).
		WithArgs(meetingID).
		WillReturnRows(meetingRows(meetingID, groupID, model.MeetingStatusCancelled))

	scope := &model.Scope{Role: model.RoleAdministrator, AllGroups: true}
	req := model.RecordSavingRequest{
		MemberID:  memberID,
		MeetingID: meetingID,
		Amount:    decimal.NewFromInt(5),
	}

	entry, err := svc.RecordSaving(context.Background(), scope, req)
	require.Error(t, err)
	assert.True(t, errors.Is(err, apperr.ErrConstraint))
	assert.Nil(t, entry)
	assert.NoError(t, mock.ExpectationsWereMet())
}
