package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"github.com/Emi00093522-cloud/sistema-gapc.com/internal/apperr"
	"github.com/Emi00093522-cloud/sistema-gapc.com/internal/ledger"
	"github.com/Emi00093522-cloud/sistema-gapc.com/internal/model"
	"github.com/Emi00093522-cloud/sistema-gapc.com/internal/repository"
)

// FineService управляет штрафами. Штраф и его назначение участнице
// создаются атомарно; погашение идет под блокировкой строки назначения.
type FineService struct {
	fineRepo    *repository.FineRepository
	memberRepo  *repository.MemberRepository
	groupRepo   *repository.GroupRepository
	meetingRepo *repository.MeetingRepository
	logger      *logrus.Logger
}

func NewFineService(
	fineRepo *repository.FineRepository,
	memberRepo *repository.MemberRepository,
	groupRepo *repository.GroupRepository,
	meetingRepo *repository.MeetingRepository,
	logger *logrus.Logger,
) *FineService {
	return &FineService{
		fineRepo:    fineRepo,
		memberRepo:  memberRepo,
		groupRepo:   groupRepo,
		meetingRepo: meetingRepo,
		logger:      logger,
	}
}

// RecordFine Назначение штрафа участнице
func (s *FineService) RecordFine(ctx context.Context, scope *model.Scope, req model.RecordFineRequest) (*model.MemberFine, error) {
	member, err := s.memberRepo.GetByID(ctx, req.MemberID)
	if err != nil {
		return nil, err
	}

	if !scope.AllowsGroup(member.GroupID) {
		return nil, fmt.Errorf("%w: группа %s вне зоны доступа", apperr.ErrForbidden, member.GroupID)
	}

	if member.Status != model.MemberStatusActive {
		return nil, fmt.Errorf("%w: участница %s деактивирована", apperr.ErrConstraint, member.ID)
	}

	group, err := s.groupRepo.GetByID(ctx, member.GroupID)
	if err != nil {
		return nil, err
	}
	if group.Status != model.GroupStatusActive {
		return nil, fmt.Errorf("%w: группа %s закрыта", apperr.ErrConstraint, group.ID)
	}

	if req.Reason == "" {
		return nil, fmt.Errorf("%w: причина штрафа не указана", apperr.ErrValidation)
	}
	if !req.Amount.IsPositive() {
		return nil, fmt.Errorf("%w: сумма штрафа должна быть положительной", apperr.ErrValidation)
	}

	if req.MeetingID != nil {
		meeting, err := s.meetingRepo.GetByID(ctx, *req.MeetingID)
		if err != nil {
			return nil, err
		}
		if meeting.GroupID != member.GroupID {
			return nil, fmt.Errorf("%w: собрание %s не принадлежит группе участницы", apperr.ErrValidation, meeting.ID)
		}
		if meeting.Status == model.MeetingStatusCancelled {
			return nil, fmt.Errorf("%w: собрание %s отменено", apperr.ErrConstraint, meeting.ID)
		}
	}

	tx, err := s.fineRepo.GetDB().BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: не удалось начать транзакцию: %v", apperr.ErrStorage, err)
	}
	defer tx.Rollback()

	now := time.Now()
	fine := &model.Fine{
		ID:          uuid.New(),
		MeetingID:   req.MeetingID,
		Description: req.Reason,
		Amount:      req.Amount,
		CreatedAt:   now,
	}

	if err := s.fineRepo.CreateFineTx(ctx, tx, fine); err != nil {
		return nil, err
	}

	memberFine := &model.MemberFine{
		ID:         uuid.New(),
		MemberID:   req.MemberID,
		FineID:     fine.ID,
		AmountOwed: req.Amount,
		AmountPaid: decimal.Zero,
		Status:     model.MemberFineStatusPending,
		CreatedAt:  now,
		UpdatedAt:  now,
	}

	if err := s.fineRepo.CreateMemberFineTx(ctx, tx, memberFine); err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("%w: не удалось зафиксировать транзакцию: %v", apperr.ErrStorage, err)
	}

	s.logger.WithFields(logrus.Fields{
		"member_fine_id": memberFine.ID,
		"member_id":      req.MemberID,
		"amount":         req.Amount,
	}).Info("Штраф назначен")

	return memberFine, nil
}

// RecordFinePayment Частичное или полное погашение штрафа. При точном
// обнулении остатка назначение переводится в settled.
func (s *FineService) RecordFinePayment(ctx context.Context, scope *model.Scope, req model.FinePaymentRequest) (*model.MemberFine, error) {
	memberFine, err := s.fineRepo.GetMemberFineByID(ctx, req.MemberFineID)
	if err != nil {
		return nil, err
	}

	member, err := s.memberRepo.GetByID(ctx, memberFine.MemberID)
	if err != nil {
		return nil, err
	}

	if !scope.AllowsGroup(member.GroupID) {
		return nil, fmt.Errorf("%w: группа %s вне зоны доступа", apperr.ErrForbidden, member.GroupID)
	}

	if member.Status != model.MemberStatusActive {
		return nil, fmt.Errorf("%w: участница %s деактивирована", apperr.ErrConstraint, member.ID)
	}

	group, err := s.groupRepo.GetByID(ctx, member.GroupID)
	if err != nil {
		return nil, err
	}
	if group.Status != model.GroupStatusActive {
		return nil, fmt.Errorf("%w: группа %s закрыта", apperr.ErrConstraint, group.ID)
	}

	tx, err := s.fineRepo.GetDB().BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: не удалось начать транзакцию: %v", apperr.ErrStorage, err)
	}
	defer tx.Rollback()

	// Повторное чтение под блокировкой: параллельные платежи не должны
	// превысить остаток
	memberFine, err = s.fineRepo.GetMemberFineForUpdate(ctx, tx, req.MemberFineID)
	if err != nil {
		return nil, err
	}

	updated, err := ledger.ApplyFinePayment(*memberFine, req.Amount, time.Now())
	if err != nil {
		return nil, err
	}

	if err := s.fineRepo.UpdateMemberFineTx(ctx, tx, &updated); err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("%w: не удалось зафиксировать транзакцию: %v", apperr.ErrStorage, err)
	}

	s.logger.WithFields(logrus.Fields{
		"member_fine_id": updated.ID,
		"amount":         req.Amount,
		"status":         updated.Status,
	}).Info("Платеж по штрафу зафиксирован")

	return &updated, nil
}

// ListByMember Штрафы участницы
func (s *FineService) ListByMember(ctx context.Context, scope *model.Scope, memberID uuid.UUID) ([]model.MemberFine, error) {
	member, err := s.memberRepo.GetByID(ctx, memberID)
	if err != nil {
		return nil, err
	}

	if !scope.AllowsGroup(member.GroupID) {
		return nil, fmt.Errorf("%w: группа %s вне зоны доступа", apperr.ErrForbidden, member.GroupID)
	}

	return s.fineRepo.ListByMember(ctx, memberID)
}
