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

func loanRows(id, memberID uuid.UUID, status model.LoanStatus) *sqlmock.Rows {
	now := time.Now()
	return sqlmock.NewRows([]string{
		"id", "member_id", "disbursed_at", "principal", "total_interest", "interest_rate",
		"term_periods", "status", "purpose", "created_at", "updated_at",
	}).AddRow(
		id.String(), memberID.String(), now, "100", "16", "10",
		16, string(status), "", now, now,
	)
}

func newLoanServiceWithDB(db *sql.DB) *LoanService {
	logger := newTestLogger()
	return NewLoanService(
		repository.NewLoanRepository(db, logger),
		repository.NewMemberRepository(db, logger),
		repository.NewGroupRepository(db, logger),
		repository.NewMeetingRepository(db, logger),
		repository.NewCashRepository(db, logger),
		repository.NewUserRepository(db, logger),
		nil,
		logger,
	)
}

func TestRecordPaymentInactiveMember(t *testing.T) {
	db, mock := newMockDB(t)
	svc := newLoanServiceWithDB(db)

	groupID := uuid.New()
	memberID := uuid.New()
	loanID := uuid.New()

	mock.ExpectQuery(`FROM loans WHERE id`).
		WithArgs(loanID).
		WillReturnRows(loanRows(loanID, memberID, model.LoanStatusCurrent))
	mock.ExpectQuery(`FROM members WHERE id`).
		WithArgs(memberID).
		WillReturnRows(memberRows(memberID, groupID, model.MemberStatusInactive))

	scope := &model.Scope{Role: model.RoleAdministrator, AllGroups: true}
	req := model.RecordPaymentRequest{
		LoanID:           loanID,
		PrincipalPortion: decimal.NewFromInt(10),
	}

	payment, err := svc.RecordPayment(context.Background(), scope, req)
	require.Error(t, err)
	assert.True(t, errors.Is(err, apperr.ErrConstraint))
	assert.Nil(t, payment)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRecordPaymentClosedGroup(t *testing.T) {
	db, mock := newMockDB(t)
	svc := newLoanServiceWithDB(db)

	groupID := uuid.New()
	memberID := uuid.New()
	loanID := uuid.New()

	mock.ExpectQuery(`FROM loans WHERE id`).
		WithArgs(loanID).
		WillReturnRows(loanRows(loanID, memberID, model.LoanStatusCurrent))
	mock.ExpectQuery(`FROM members WHERE id`).
		WithArgs(memberID).
		WillReturnRows(memberRows(memberID, groupID, model.MemberStatusActive))
	mock.ExpectQuery(`FROM groups WHERE id`).
		WithArgs(groupID).
		WillReturnRows(groupRows(groupID, model.GroupStatusClosed))

	scope := &model.Scope{Role: model.RoleAdministrator, AllGroups: true}
	req := model.RecordPaymentRequest{
		LoanID:           loanID,
		PrincipalPortion: decimal.NewFromInt(10),
	}

	payment, err := svc.RecordPayment(context.Background(), scope, req)
	require.Error(t, err)
	assert.True(t, errors.Is(err, apperr.ErrConstraint))
	assert.Nil(t, payment)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRecordPaymentCancelledMeeting(t *testing.T) {
	db, mock := newMockDB(t)
	svc := newLoanServiceWithDB(db)

	groupID := uuid.New()
	memberID := uuid.New()
	loanID := uuid.New()
	meetingID := uuid.New()

	mock.ExpectQuery(`FROM loans WHERE id`).
		WithArgs(loanID).
		WillReturnRows(loanRows(loanID, memberID, model.LoanStatusCurrent))
	mock.ExpectQuery(`FROM members WHERE id`).
		WithArgs(memberID).
		WillReturnRows(memberRows(memberID, groupID, model.MemberStatusActive))
	mock.ExpectQuery(`FROM groups WHERE id`).
		WithArgs(groupID).
		WillReturnRows(groupRows(groupID, model.GroupStatusActive))
	mock.ExpectQuery(`FROM meetings`).
		WithArgs(meetingID).
		WillReturnRows(meetingRows(meetingID, groupID, model.MeetingStatusCancelled))

	scope := &model.Scope{Role: model.RoleAdministrator, AllGroups: true}
	req := model.RecordPaymentRequest{
		LoanID:           loanID,
		PrincipalPortion: decimal.NewFromInt(10),
		MeetingID:        &meetingID,
	}

	payment, err := svc.RecordPayment(context.Background(), scope, req)
	require.Error(t, err)
	assert.True(t, errors.Is(err, apperr.ErrConstraint))
	assert.Nil(t, payment)

	// Транзакция не открывалась, платеж не записан
	assert.NoError(t, mock.ExpectationsWereMet())
}
