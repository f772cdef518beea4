package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/Emi00093522-cloud/sistema-gapc.com/internal/apperr"
	"github.com/Emi00093522-cloud/sistema-gapc.com/internal/model"
	"github.com/Emi00093522-cloud/sistema-gapc.com/internal/repository"
)

// SavingService фиксирует взносы участниц. Взнос и приход кассы
// создаются в одной транзакции.
type SavingService struct {
	savingRepo  *repository.SavingRepository
	memberRepo  *repository.MemberRepository
	meetingRepo *repository.MeetingRepository
	cashRepo    *repository.CashRepository
	logger      *logrus.Logger
}

func NewSavingService(
	savingRepo *repository.SavingRepository,
	memberRepo *repository.MemberRepository,
	meetingRepo *repository.MeetingRepository,
	cashRepo *repository.CashRepository,
	logger *logrus.Logger,
) *SavingService {
	return &SavingService{
		savingRepo:  savingRepo,
		memberRepo:  memberRepo,
		meetingRepo: meetingRepo,
		cashRepo:    cashRepo,
		logger:      logger,
	}
}

// RecordSaving Фиксация взноса участницы на собрании
func (s *SavingService) RecordSaving(ctx context.Context, scope *model.Scope, req model.RecordSavingRequest) (*model.SavingsEntry, error) {
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

	meeting, err := s.meetingRepo.GetByID(ctx, req.MeetingID)
	if err != nil {
		return nil, err
	}

	if meeting.GroupID != member.GroupID {
		return nil, fmt.Errorf("%w: собрание %s не принадлежит группе участницы", apperr.ErrValidation, meeting.ID)
	}

	if meeting.Status == model.MeetingStatusCancelled {
		return nil, fmt.Errorf("%w: собрание %s отменено", apperr.ErrConstraint, meeting.ID)
	}

	if req.Amount.IsNegative() || req.OtherAmount.IsNegative() {
		return nil, fmt.Errorf("%w: сумма взноса не может быть отрицательной", apperr.ErrValidation)
	}

	total := req.Amount.Add(req.OtherAmount)
	if total.IsZero() {
		return nil, fmt.Errorf("%w: взнос не может быть нулевым", apperr.ErrValidation)
	}

	tx, err := s.savingRepo.GetDB().BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: не удалось начать транзакцию: %v", apperr.ErrStorage, err)
	}
	defer tx.Rollback()

	now := time.Now()
	entry := &model.SavingsEntry{
		ID:          uuid.New(),
		MemberID:    req.MemberID,
		MeetingID:   req.MeetingID,
		Date:        meeting.Date,
		Amount:      req.Amount,
		OtherAmount: req.OtherAmount,
		CreatedAt:   now,
	}

	if err := s.savingRepo.CreateTx(ctx, tx, entry); err != nil {
		return nil, err
	}

	// Взнос автоматически отражается приходом общей кассы
	movement := &model.CashMovement{
		ID:        uuid.New(),
		MeetingID: req.MeetingID,
		Kind:      model.MovementKindInflow,
		Category:  model.MovementCategorySaving,
		Amount:    total,
		Date:      meeting.Date,
		CreatedAt: now,
	}

	if err := s.cashRepo.CreateTx(ctx, tx, movement); err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("%w: не удалось зафиксировать транзакцию: %v", apperr.ErrStorage, err)
	}

	s.logger.WithFields(logrus.Fields{
		"entry_id":   entry.ID,
		"member_id":  entry.MemberID,
		"meeting_id": entry.MeetingID,
		"amount":     entry.Amount,
	}).Info("Взнос зафиксирован")

	return entry, nil
}

// ListByMember Журнал взносов участницы
func (s *SavingService) ListByMember(ctx context.Context, scope *model.Scope, memberID uuid.UUID) ([]model.SavingsEntry, error) {
	member, err := s.memberRepo.GetByID(ctx, memberID)
	if err != nil {
		return nil, err
	}

	if !scope.AllowsGroup(member.GroupID) {
		return nil, fmt.Errorf("%w: группа %s вне зоны доступа", apperr.ErrForbidden, member.GroupID)
	}

	return s.savingRepo.ListByMember(ctx, memberID)
}
