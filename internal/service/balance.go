package service

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"github.com/Emi00093522-cloud/sistema-gapc.com/internal/apperr"
	"github.com/Emi00093522-cloud/sistema-gapc.com/internal/ledger"
	"github.com/Emi00093522-cloud/sistema-gapc.com/internal/model"
	"github.com/Emi00093522-cloud/sistema-gapc.com/internal/repository"
)

// BalanceService отвечает на запросы текущих остатков. Остатки нигде
// не хранятся: сервис читает журнал и выводит их заново при каждом
// запросе, поэтому два запроса над одним журналом всегда совпадают.
type BalanceService struct {
	loanRepo   *repository.LoanRepository
	savingRepo *repository.SavingRepository
	fineRepo   *repository.FineRepository
	cashRepo   *repository.CashRepository
	memberRepo *repository.MemberRepository
	logger     *logrus.Logger
}

func NewBalanceService(
	loanRepo *repository.LoanRepository,
	savingRepo *repository.SavingRepository,
	fineRepo *repository.FineRepository,
	cashRepo *repository.CashRepository,
	memberRepo *repository.MemberRepository,
	logger *logrus.Logger,
) *BalanceService {
	return &BalanceService{
		loanRepo:   loanRepo,
		savingRepo: savingRepo,
		fineRepo:   fineRepo,
		cashRepo:   cashRepo,
		memberRepo: memberRepo,
		logger:     logger,
	}
}

// LoanBalance Непогашенный остаток основной суммы займа
func (s *BalanceService) LoanBalance(ctx context.Context, scope *model.Scope, loanID uuid.UUID) (decimal.Decimal, error) {
	loan, err := s.loanRepo.GetByID(ctx, loanID)
	if err != nil {
		return decimal.Zero, err
	}

	if err := s.requireMemberAccess(ctx, scope, loan.MemberID); err != nil {
		return decimal.Zero, err
	}

	payments, err := s.loanRepo.ListPayments(ctx, loanID)
	if err != nil {
		return decimal.Zero, err
	}

	return ledger.LoanBalance(loan.Principal, payments), nil
}

// MemberSavingsTotal Накопления участницы: сумма регулярных и прочих
// взносов по журналу
func (s *BalanceService) MemberSavingsTotal(ctx context.Context, scope *model.Scope, memberID uuid.UUID) (decimal.Decimal, error) {
	if err := s.requireMemberAccess(ctx, scope, memberID); err != nil {
		return decimal.Zero, err
	}

	entries, err := s.savingRepo.ListByMember(ctx, memberID)
	if err != nil {
		return decimal.Zero, err
	}

	return ledger.SavingsTotal(entries), nil
}

// FineBalance Остаток долга по штрафу
func (s *BalanceService) FineBalance(ctx context.Context, scope *model.Scope, memberFineID uuid.UUID) (decimal.Decimal, error) {
	memberFine, err := s.fineRepo.GetMemberFineByID(ctx, memberFineID)
	if err != nil {
		return decimal.Zero, err
	}

	if err := s.requireMemberAccess(ctx, scope, memberFine.MemberID); err != nil {
		return decimal.Zero, err
	}

	return ledger.FineBalance(*memberFine), nil
}

// GroupCashBalance Остаток общей кассы группы по журналу движений
func (s *BalanceService) GroupCashBalance(ctx context.Context, scope *model.Scope, groupID uuid.UUID) (decimal.Decimal, error) {
	if !scope.AllowsGroup(groupID) {
		return decimal.Zero, fmt.Errorf("%w: группа %s вне зоны доступа", apperr.ErrForbidden, groupID)
	}

	movements, err := s.cashRepo.ListByGroup(ctx, groupID)
	if err != nil {
		return decimal.Zero, err
	}

	return ledger.CashBalance(movements), nil
}

func (s *BalanceService) requireMemberAccess(ctx context.Context, scope *model.Scope, memberID uuid.UUID) error {
	member, err := s.memberRepo.GetByID(ctx, memberID)
	if err != nil {
		return err
	}
	if !scope.AllowsGroup(member.GroupID) {
		return fmt.Errorf("%w: группа %s вне зоны доступа", apperr.ErrForbidden, member.GroupID)
	}
	return nil
}
