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

// memberFineRows собирает строку назначения штрафа в порядке memberFineColumns
func memberFineRows(id, memberID uuid.UUID, now time.Time) *sqlmock.Rows {
	return sqlmock.NewRows([]string{
		"id", "member_id", "fine_id", "amount_owed", "amount_paid",
		"settled_at", "status", "created_at", "updated_at",
	}).AddRow(
		id.String(), memberID.String(), uuid.New().String(), "5", "0",
		nil, string(model.MemberFineStatusPending), now, now,
	)
}

func newFineServiceWithDB(db *sql.DB) *FineService {
	logger := newTestLogger()
	return NewFineService(
		repository.NewFineRepository(db, logger),
		repository.NewMemberRepository(db, logger),
		repository.NewGroupRepository(db, logger),
		repository.NewMeetingRepository(db, logger),
		logger,
	)
}

func TestRecordFineInactiveMember(t *testing.T) {
	db, mock := newMockDB(t)
	svc := newFineServiceWithDB(db)

	groupID := uuid.New()
	memberID := uuid.New()

	mock.ExpectQuery(`FROM members WHERE id`).
		WithArgs(memberID).
		WillReturnRows(memberRows(memberID, groupID, model.MemberStatusInactive))

	scope := &model.Scope{Role: model.RoleAdministrator, AllGroups: true}
	req := model.RecordFineRequest{
		MemberID: memberID,
		Reason:   "пропуск собрания",
		Amount:   decimal.NewFromInt(1),
	}

	memberFine, err := svc.RecordFine(context.Background(), scope, req)
	require.Error(t, err)
	assert.True(t, errors.Is(err, apperr.ErrConstraint))
	assert.Nil(t, memberFine)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRecordFineClosedGroup(t *testing.T) {
	db, mock := newMockDB(t)
	svc := newFineServiceWithDB(db)

	groupID := uuid.New()
	memberID := uuid.New()

	mock.ExpectQuery(`FROM members WHERE id`).
		WithArgs(memberID).
		WillReturnRows(memberRows(memberID, groupID, model.MemberStatusActive))
	mock.ExpectQuery(`FROM groups WHERE id`).
		WithArgs(groupID).
		WillReturnRows(groupRows(groupID, model.GroupStatusClosed))

	scope := &model.Scope{Role: model.RoleAdministrator, AllGroups: true}
	req := model.RecordFineRequest{
		MemberID: memberID,
		Reason:   "пропуск собрания",
		Amount:   decimal.NewFromInt(1),
	}

	memberFine, err := svc.RecordFine(context.Background(), scope, req)
	require.Error(t, err)
	assert.True(t, errors.Is(err, apperr.ErrConstraint))
	assert.Nil(t, memberFine)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRecordFinePaymentInactiveMember(t *testing.T) {
	db, mock := newMockDB(t)
	svc := newFineServiceWithDB(db)

	groupID := uuid.New()
	memberID := uuid.New()
	memberFineID := uuid.New()
	now := time.Now()

	mock.ExpectQuery(`FROM member_fines WHERE id`).
		WithArgs(memberFineID).
		WillReturnRows(memberFineRows(memberFineID, memberID, now))
	mock.ExpectQuery(`FROM members WHERE id`).
		WithArgs(memberID).
		WillReturnRows(memberRows(memberID, groupID, model.MemberStatusInactive))

	scope := &model.Scope{Role: model.RoleAdministrator, AllGroups: true}
	req := model.FinePaymentRequest{
		MemberFineID: memberFineID,
		Amount:       decimal.NewFromInt(1),
	}

	memberFine, err := svc.RecordFinePayment(context.Background(), scope, req)
	require.Error(t, err)
	assert.True(t, errors.Is(err, apperr.ErrConstraint))
	assert.Nil(t, memberFine)

	// До блокировки строки и записи платежа дело не дошло
	assert.NoError(t, mock.ExpectationsWereMet())
}
