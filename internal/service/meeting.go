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

// MeetingService управляет жизненным циклом собраний и движениями кассы.
// Проведение собрания и начисление пропусков выполняются в одной транзакции.
type MeetingService struct {
	meetingRepo *repository.MeetingRepository
	memberRepo  *repository.MemberRepository
	groupRepo   *repository.GroupRepository
	cashRepo    *repository.CashRepository
	logger      *logrus.Logger
}

func NewMeetingService(
	meetingRepo *repository.MeetingRepository,
	memberRepo *repository.MemberRepository,
	groupRepo *repository.GroupRepository,
	cashRepo *repository.CashRepository,
	logger *logrus.Logger,
) *MeetingService {
	return &MeetingService{
		meetingRepo: meetingRepo,
		memberRepo:  memberRepo,
		groupRepo:   groupRepo,
		cashRepo:    cashRepo,
		logger:      logger,
	}
}

// ScheduleMeeting Назначение собрания группы
func (s *MeetingService) ScheduleMeeting(ctx context.Context, scope *model.Scope, req model.ScheduleMeetingRequest) (*model.Meeting, error) {
	if !scope.AllowsGroup(req.GroupID) {
		return nil, fmt.Errorf("%w: группа %s вне зоны доступа", apperr.ErrForbidden, req.GroupID)
	}

	group, err := s.groupRepo.GetByID(ctx, req.GroupID)
	if err != nil {
		return nil, err
	}
	if group.Status != model.GroupStatusActive {
		return nil, fmt.Errorf("%w: группа %s закрыта", apperr.ErrConstraint, group.ID)
	}

	if req.Date.IsZero() {
		return nil, fmt.Errorf("%w: дата собрания не указана", apperr.ErrValidation)
	}

	now := time.Now()
	meeting := &model.Meeting{
		ID:        uuid.New(),
		GroupID:   req.GroupID,
		Date:      req.Date,
		Status:    model.MeetingStatusScheduled,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := s.meetingRepo.Create(ctx, meeting); err != nil {
		s.logger.WithError(err).Error("Не удалось создать собрание")
		return nil, err
	}

	s.logger.WithFields(logrus.Fields{
		"meeting_id": meeting.ID,
		"group_id":   meeting.GroupID,
		"date":       meeting.Date,
	}).Info("Собрание назначено")

	return meeting, nil
}

// HoldMeeting Проведение собрания. Переводит собрание в статус held и
// начисляет пропуск каждой активной участнице без взноса сбережений
// на этом собрании. Обе операции выполняются атомарно.
func (s *MeetingService) HoldMeeting(ctx context.Context, scope *model.Scope, meetingID uuid.UUID) (*model.Meeting, error) {
	meeting, err := s.meetingRepo.GetByID(ctx, meetingID)
	if err != nil {
		return nil, err
	}

	if !scope.AllowsGroup(meeting.GroupID) {
		return nil, fmt.Errorf("%w: группа %s вне зоны доступа", apperr.ErrForbidden, meeting.GroupID)
	}

	tx, err := s.meetingRepo.GetDB().BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: не удалось начать транзакцию: %v", apperr.ErrStorage, err)
	}
	defer tx.Rollback()

	// Повторное чтение под блокировкой, чтобы исключить гонку двух проведений
	meeting, err = s.meetingRepo.GetByIDForUpdate(ctx, tx, meetingID)
	if err != nil {
		return nil, err
	}

	if meeting.Status != model.MeetingStatusScheduled {
		return nil, fmt.Errorf("%w: собрание %s уже в статусе %s", apperr.ErrConstraint, meetingID, meeting.Status)
	}

	if err := s.meetingRepo.UpdateStatusTx(ctx, tx, meetingID, model.MeetingStatusHeld); err != nil {
		return nil, err
	}

	absent, err := s.memberRepo.IncrementAbsencesTx(ctx, tx, meeting.GroupID, meetingID)
	if err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("%w: не удалось зафиксировать транзакцию: %v", apperr.ErrStorage, err)
	}

	meeting.Status = model.MeetingStatusHeld

	s.logger.WithFields(logrus.Fields{
		"meeting_id":     meetingID,
		"absent_members": absent,
	}).Info("Собрание проведено, пропуски начислены")

	return meeting, nil
}

// CancelMeeting Отмена назначенного собрания
func (s *MeetingService) CancelMeeting(ctx context.Context, scope *model.Scope, meetingID uuid.UUID) error {
	meeting, err := s.meetingRepo.GetByID(ctx, meetingID)
	if err != nil {
		return err
	}

	if !scope.AllowsGroup(meeting.GroupID) {
		return fmt.Errorf("%w: группа %s вне зоны доступа", apperr.ErrForbidden, meeting.GroupID)
	}

	tx, err := s.meetingRepo.GetDB().BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("%w: не удалось начать транзакцию: %v", apperr.ErrStorage, err)
	}
	defer tx.Rollback()

	meeting, err = s.meetingRepo.GetByIDForUpdate(ctx, tx, meetingID)
	if err != nil {
		return err
	}

	if meeting.Status != model.MeetingStatusScheduled {
		return fmt.Errorf("%w: отменить можно только назначенное собрание", apperr.ErrConstraint)
	}

	if err := s.meetingRepo.UpdateStatusTx(ctx, tx, meetingID, model.MeetingStatusCancelled); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("%w: не удалось зафиксировать транзакцию: %v", apperr.ErrStorage, err)
	}

	s.logger.WithField("meeting_id", meetingID).Info("Собрание отменено")
	return nil
}

// ListMeetings Список собраний группы
func (s *MeetingService) ListMeetings(ctx context.Context, scope *model.Scope, groupID uuid.UUID) ([]model.Meeting, error) {
	if !scope.AllowsGroup(groupID) {
		return nil, fmt.Errorf("%w: группа %s вне зоны доступа", apperr.ErrForbidden, groupID)
	}
	return s.meetingRepo.ListByGroup(ctx, groupID)
}

// RecordCashMovement Фиксация произвольного движения кассы на собрании.
// Движения от сбережений, займов и штрафов создаются соответствующими
// операциями автоматически; здесь регистрируются прочие приходы и расходы.
func (s *MeetingService) RecordCashMovement(ctx context.Context, scope *model.Scope, req model.RecordMovementRequest) (*model.CashMovement, error) {
	meeting, err := s.meetingRepo.GetByID(ctx, req.MeetingID)
	if err != nil {
		return nil, err
	}

	if !scope.AllowsGroup(meeting.GroupID) {
		return nil, fmt.Errorf("%w: группа %s вне зоны доступа", apperr.ErrForbidden, meeting.GroupID)
	}

	if err := validateMovement(req, meeting); err != nil {
		return nil, err
	}

	tx, err := s.cashRepo.GetDB().BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: не удалось начать транзакцию: %v", apperr.ErrStorage, err)
	}
	defer tx.Rollback()

	movement := &model.CashMovement{
		ID:        uuid.New(),
		MeetingID: req.MeetingID,
		Kind:      req.Kind,
		Category:  req.Category,
		Amount:    req.Amount,
		Date:      meeting.Date,
		CreatedAt: time.Now(),
	}

	if err := s.cashRepo.CreateTx(ctx, tx, movement); err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("%w: не удалось зафиксировать транзакцию: %v", apperr.ErrStorage, err)
	}

	s.logger.WithFields(logrus.Fields{
		"movement_id": movement.ID,
		"meeting_id":  movement.MeetingID,
		"kind":        movement.Kind,
		"amount":      movement.Amount,
	}).Info("Движение кассы зафиксировано")

	return movement, nil
}

// ListCashMovements Журнал движений кассы собрания
func (s *MeetingService) ListCashMovements(ctx context.Context, scope *model.Scope, meetingID uuid.UUID) ([]model.CashMovement, error) {
	meeting, err := s.meetingRepo.GetByID(ctx, meetingID)
	if err != nil {
		return nil, err
	}

	if !scope.AllowsGroup(meeting.GroupID) {
		return nil, fmt.Errorf("%w: группа %s вне зоны доступа", apperr.ErrForbidden, meeting.GroupID)
	}

	return s.cashRepo.ListByMeeting(ctx, meetingID)
}

func validateMovement(req model.RecordMovementRequest, meeting *model.Meeting) error {
	if meeting.Status == model.MeetingStatusCancelled {
		return fmt.Errorf("%w: собрание %s отменено", apperr.ErrConstraint, meeting.ID)
	}

	switch req.Kind {
	case model.MovementKindInflow, model.MovementKindOutflow:
	default:
		return fmt.Errorf("%w: неизвестное направление движения %q", apperr.ErrValidation, req.Kind)
	}

	switch req.Category {
	case model.MovementCategorySaving, model.MovementCategoryDisbursement,
		model.MovementCategoryLoanPayment, model.MovementCategoryFinePayment,
		model.MovementCategoryOther:
	default:
		return fmt.Errorf("%w: неизвестная категория движения %q", apperr.ErrValidation, req.Category)
	}

	if !req.Amount.IsPositive() {
		return fmt.Errorf("%w: сумма движения должна быть положительной", apperr.ErrValidation)
	}

	return nil
}
