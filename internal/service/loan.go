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

// LoanService управляет выдачей и погашением займов. Остаток долга
// нигде не хранится: он выводится из журнала платежей в момент операции.
type LoanService struct {
	loanRepo    *repository.LoanRepository
	memberRepo  *repository.MemberRepository
	groupRepo   *repository.GroupRepository
	meetingRepo *repository.MeetingRepository
	cashRepo    *repository.CashRepository
	userRepo    *repository.UserRepository
	emailSender *EmailSender
	logger      *logrus.Logger
}

func NewLoanService(
	loanRepo *repository.LoanRepository,
	memberRepo *repository.MemberRepository,
	groupRepo *repository.GroupRepository,
	meetingRepo *repository.MeetingRepository,
	cashRepo *repository.CashRepository,
	userRepo *repository.UserRepository,
	emailSender *EmailSender,
	logger *logrus.Logger,
) *LoanService {
	return &LoanService{
		loanRepo:    loanRepo,
		memberRepo:  memberRepo,
		groupRepo:   groupRepo,
		meetingRepo: meetingRepo,
		cashRepo:    cashRepo,
		userRepo:    userRepo,
		emailSender: emailSender,
		logger:      logger,
	}
}

// DisburseLoan Выдача займа участнице. Проценты за весь срок
// рассчитываются в момент выдачи и фиксируются в записи займа.
func (s *LoanService) DisburseLoan(ctx context.Context, scope *model.Scope, req model.DisburseLoanRequest) (*model.Loan, error) {
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

	if !req.Principal.IsPositive() {
		return nil, fmt.Errorf("%w: сумма займа должна быть положительной", apperr.ErrValidation)
	}
	if req.TermPeriods < 1 {
		return nil, fmt.Errorf("%w: срок займа должен быть не менее одного периода", apperr.ErrValidation)
	}

	// Ставка займа: явная из запроса, иначе ставка группы
	interestRate := group.InterestRate
	if req.InterestRate != nil {
		if req.InterestRate.IsNegative() {
			return nil, fmt.Errorf("%w: процентная ставка не может быть отрицательной", apperr.ErrValidation)
		}
		interestRate = *req.InterestRate
	}

	totalInterest, err := ledger.TotalInterest(req.Principal, interestRate, req.TermPeriods, group.Periodicity)
	if err != nil {
		return nil, err
	}

	var meeting *model.Meeting
	if req.MeetingID != nil {
		meeting, err = s.meetingRepo.GetByID(ctx, *req.MeetingID)
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

	tx, err := s.loanRepo.GetDB().BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: не удалось начать транзакцию: %v", apperr.ErrStorage, err)
	}
	defer tx.Rollback()

	now := time.Now()
	loan := &model.Loan{
		ID:            uuid.New(),
		MemberID:      req.MemberID,
		DisbursedAt:   now,
		Principal:     req.Principal,
		TotalInterest: totalInterest,
		InterestRate:  interestRate,
		TermPeriods:   req.TermPeriods,
		Status:        model.LoanStatusCurrent,
		Purpose:       req.Purpose,
		CreatedAt:     now,
		UpdatedAt:     now,
	}

	if err := s.loanRepo.CreateTx(ctx, tx, loan); err != nil {
		return nil, err
	}

	// Выдача через кассу собрания фиксируется расходом
	if meeting != nil {
		movement := &model.CashMovement{
			ID:        uuid.New(),
			MeetingID: meeting.ID,
			Kind:      model.MovementKindOutflow,
			Category:  model.MovementCategoryDisbursement,
			Amount:    req.Principal,
			Date:      meeting.Date,
			CreatedAt: now,
		}
		if err := s.cashRepo.CreateTx(ctx, tx, movement); err != nil {
			return nil, err
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("%w: не удалось зафиксировать транзакцию: %v", apperr.ErrStorage, err)
	}

	s.logger.WithFields(logrus.Fields{
		"loan_id":        loan.ID,
		"member_id":      loan.MemberID,
		"principal":      loan.Principal,
		"total_interest": loan.TotalInterest,
	}).Info("Заем выдан")

	s.notifyPromoter(ctx, group, loan)

	return loan, nil
}

// notifyPromoter отправляет промотору уведомление о выдаче займа.
// Сбой отправки не откатывает уже зафиксированную выдачу.
func (s *LoanService) notifyPromoter(ctx context.Context, group *model.Group, loan *model.Loan) {
	promoter, err := s.userRepo.GetByID(ctx, group.PromoterID)
	if err != nil {
		s.logger.WithError(err).Warn("Не удалось получить промотора для уведомления")
		return
	}

	if err := s.emailSender.SendLoanDisbursementNotification(promoter.Email, group.Name, loan.ID, loan.Principal); err != nil {
		s.logger.WithError(err).Warn("Не удалось отправить уведомление о выдаче займа")
	}
}

// RecordPayment Фиксация платежа по займу. Проверка остатка и запись
// платежа выполняются под блокировкой строки займа, чтобы параллельные
// платежи не увели остаток в минус.
func (s *LoanService) RecordPayment(ctx context.Context, scope *model.Scope, req model.RecordPaymentRequest) (*model.LoanPayment, error) {
	loan, err := s.loanRepo.GetByID(ctx, req.LoanID)
	if err != nil {
		return nil, err
	}

	member, err := s.memberRepo.GetByID(ctx, loan.MemberID)
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

	var meeting *model.Meeting
	if req.MeetingID != nil {
		meeting, err = s.meetingRepo.GetByID(ctx, *req.MeetingID)
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

	tx, err := s.loanRepo.GetDB().BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: не удалось начать транзакцию: %v", apperr.ErrStorage, err)
	}
	defer tx.Rollback()

	loan, err = s.loanRepo.GetByIDForUpdate(ctx, tx, req.LoanID)
	if err != nil {
		return nil, err
	}

	if loan.Status == model.LoanStatusPaid || loan.Status == model.LoanStatusWrittenOff {
		return nil, fmt.Errorf("%w: заем %s уже закрыт (%s)", apperr.ErrConstraint, loan.ID, loan.Status)
	}

	principalPaid, err := s.loanRepo.SumPrincipalPaidTx(ctx, tx, loan.ID)
	if err != nil {
		return nil, err
	}
	outstanding := loan.Principal.Sub(principalPaid)

	if err := ledger.ValidatePaymentPortions(outstanding, req.PrincipalPortion, req.InterestPortion); err != nil {
		return nil, err
	}

	now := time.Now()
	paymentDate := now
	if meeting != nil {
		paymentDate = meeting.Date
	}

	payment := &model.LoanPayment{
		ID:               uuid.New(),
		LoanID:           loan.ID,
		PaymentDate:      paymentDate,
		PrincipalPortion: req.PrincipalPortion,
		InterestPortion:  req.InterestPortion,
		CreatedAt:        now,
	}

	if err := s.loanRepo.CreatePaymentTx(ctx, tx, payment); err != nil {
		return nil, err
	}

	newOutstanding := outstanding.Sub(req.PrincipalPortion)
	newStatus := ledger.NextLoanStatus(loan.Status, newOutstanding)
	if newStatus != loan.Status {
		if err := s.loanRepo.UpdateStatusTx(ctx, tx, loan.ID, newStatus); err != nil {
			return nil, err
		}
	}

	// Платеж через кассу собрания фиксируется приходом
	if meeting != nil {
		movement := &model.CashMovement{
			ID:        uuid.New(),
			MeetingID: meeting.ID,
			Kind:      model.MovementKindInflow,
			Category:  model.MovementCategoryLoanPayment,
			Amount:    req.PrincipalPortion.Add(req.InterestPortion),
			Date:      meeting.Date,
			CreatedAt: now,
		}
		if err := s.cashRepo.CreateTx(ctx, tx, movement); err != nil {
			return nil, err
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("%w: не удалось зафиксировать транзакцию: %v", apperr.ErrStorage, err)
	}

	s.logger.WithFields(logrus.Fields{
		"payment_id":        payment.ID,
		"loan_id":           loan.ID,
		"principal_portion": payment.PrincipalPortion,
		"interest_portion":  payment.InterestPortion,
		"new_status":        newStatus,
	}).Info("Платеж по займу зафиксирован")

	return payment, nil
}

// WriteOffLoan Списание безнадежного займа. Доступно только администратору;
// статус written_off терминальный, платежи по списанному займу не принимаются.
func (s *LoanService) WriteOffLoan(ctx context.Context, scope *model.Scope, loanID uuid.UUID) error {
	if !scope.IsAdmin() {
		return fmt.Errorf("%w: списание займов доступно только администратору", apperr.ErrForbidden)
	}

	tx, err := s.loanRepo.GetDB().BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("%w: не удалось начать транзакцию: %v", apperr.ErrStorage, err)
	}
	defer tx.Rollback()

	loan, err := s.loanRepo.GetByIDForUpdate(ctx, tx, loanID)
	if err != nil {
		return err
	}

	if loan.Status == model.LoanStatusPaid || loan.Status == model.LoanStatusWrittenOff {
		return fmt.Errorf("%w: заем %s уже закрыт (%s)", apperr.ErrConstraint, loan.ID, loan.Status)
	}

	if err := s.loanRepo.UpdateStatusTx(ctx, tx, loanID, model.LoanStatusWrittenOff); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("%w: не удалось зафиксировать транзакцию: %v", apperr.ErrStorage, err)
	}

	s.logger.WithField("loan_id", loanID).Warn("Заем списан как безнадежный")
	return nil
}

// GetLoan Получение займа с проверкой зоны доступа
func (s *LoanService) GetLoan(ctx context.Context, scope *model.Scope, loanID uuid.UUID) (*model.Loan, error) {
	loan, err := s.loanRepo.GetByID(ctx, loanID)
	if err != nil {
		return nil, err
	}

	member, err := s.memberRepo.GetByID(ctx, loan.MemberID)
	if err != nil {
		return nil, err
	}

	if !scope.AllowsGroup(member.GroupID) {
		return nil, fmt.Errorf("%w: группа %s вне зоны доступа", apperr.ErrForbidden, member.GroupID)
	}

	return loan, nil
}

// ListByMember Займы участницы
func (s *LoanService) ListByMember(ctx context.Context, scope *model.Scope, memberID uuid.UUID) ([]model.Loan, error) {
	member, err := s.memberRepo.GetByID(ctx, memberID)
	if err != nil {
		return nil, err
	}

	if !scope.AllowsGroup(member.GroupID) {
		return nil, fmt.Errorf("%w: группа %s вне зоны доступа", apperr.ErrForbidden, member.GroupID)
	}

	return s.loanRepo.ListByMember(ctx, memberID)
}

// ListByGroup Займы группы
func (s *LoanService) ListByGroup(ctx context.Context, scope *model.Scope, groupID uuid.UUID) ([]model.Loan, error) {
	if !scope.AllowsGroup(groupID) {
		return nil, fmt.Errorf("%w: группа %s вне зоны доступа", apperr.ErrForbidden, groupID)
	}
	return s.loanRepo.ListByGroup(ctx, groupID)
}

// ListPayments Журнал платежей по займу
func (s *LoanService) ListPayments(ctx context.Context, scope *model.Scope, loanID uuid.UUID) ([]model.LoanPayment, error) {
	if _, err := s.GetLoan(ctx, scope, loanID); err != nil {
		return nil, err
	}
	return s.loanRepo.ListPayments(ctx, loanID)
}

// MarkDelinquentLoans Плановая проверка просрочки: займы со статусом
// current, у которых срок истек, а остаток положителен, переводятся в
// delinquent. Запускается планировщиком раз в сутки.
func (s *LoanService) MarkDelinquentLoans(ctx context.Context) error {
	s.logger.Info("Запуск плановой проверки просроченных займов")

	loans, err := s.loanRepo.ListCurrent(ctx)
	if err != nil {
		s.logger.WithError(err).Error("Не удалось получить список текущих займов")
		return err
	}

	now := time.Now()
	marked := 0

	for i := range loans {
		loan := &loans[i]

		member, err := s.memberRepo.GetByID(ctx, loan.MemberID)
		if err != nil {
			s.logger.WithError(err).Warnf("Не удалось получить участницу займа %s", loan.ID)
			continue
		}

		group, err := s.groupRepo.GetByID(ctx, member.GroupID)
		if err != nil {
			s.logger.WithError(err).Warnf("Не удалось получить группу займа %s", loan.ID)
			continue
		}

		maturity, err := ledger.LoanMaturity(loan.DisbursedAt, loan.TermPeriods, group.Periodicity)
		if err != nil {
			s.logger.WithError(err).Warnf("Не удалось вычислить срок займа %s", loan.ID)
			continue
		}

		if !maturity.Before(now) {
			continue
		}

		outstanding, err := s.loanOutstanding(ctx, loan)
		if err != nil {
			s.logger.WithError(err).Warnf("Не удалось вычислить остаток займа %s", loan.ID)
			continue
		}

		if !outstanding.IsPositive() {
			continue
		}

		if err := s.loanRepo.UpdateStatus(ctx, loan.ID, model.LoanStatusDelinquent); err != nil {
			s.logger.WithError(err).Warnf("Не удалось пометить заем %s просроченным", loan.ID)
			continue
		}
		marked++

		s.logger.WithFields(logrus.Fields{
			"loan_id":     loan.ID,
			"outstanding": outstanding,
			"maturity":    maturity,
		}).Warn("Заем помечен просроченным")

		if promoter, err := s.userRepo.GetByID(ctx, group.PromoterID); err == nil {
			if err := s.emailSender.SendDelinquencyNotification(promoter.Email, loan.ID, outstanding); err != nil {
				s.logger.WithError(err).Warn("Не удалось отправить уведомление о просрочке")
			}
		}
	}

	s.logger.WithFields(logrus.Fields{
		"checked": len(loans),
		"marked":  marked,
	}).Info("Плановая проверка просроченных займов завершена")

	return nil
}

func (s *LoanService) loanOutstanding(ctx context.Context, loan *model.Loan) (decimal.Decimal, error) {
	payments, err := s.loanRepo.ListPayments(ctx, loan.ID)
	if err != nil {
		return decimal.Zero, err
	}
	return ledger.LoanBalance(loan.Principal, payments), nil
}
