// Package ledger выводит текущее состояние из записей реестра.
// Все функции чистые: при одном и том же содержимом реестра результат
// побитово одинаков. Денежная арифметика только на decimal.
package ledger

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/Emi00093522-cloud/sistema-gapc.com/internal/apperr"
	"github.com/Emi00093522-cloud/sistema-gapc.com/internal/model"
)

var hundred = decimal.NewFromInt(100)

// PeriodsPerYear возвращает число периодов в году для периодичности собраний
func PeriodsPerYear(p model.Periodicity) (int64, error) {
	switch p {
	case model.PeriodicityWeekly:
		return 52, nil
	case model.PeriodicityBiweekly:
		return 26, nil
	case model.PeriodicityMonthly:
		return 12, nil
	default:
		return 0, fmt.Errorf("%w: неизвестная периодичность %q", apperr.ErrValidation, p)
	}
}

// TotalInterest рассчитывает полный процент по займу:
// основная сумма x годовая ставка x доля года, занимаемая сроком
func TotalInterest(principal, annualRate decimal.Decimal, termPeriods int, p model.Periodicity) (decimal.Decimal, error) {
	perYear, err := PeriodsPerYear(p)
	if err != nil {
		return decimal.Zero, err
	}

	termFraction := decimal.NewFromInt(int64(termPeriods)).Div(decimal.NewFromInt(perYear))
	return principal.Mul(annualRate).Div(hundred).Mul(termFraction).Round(2), nil
}

// LoanBalance возвращает непогашенный остаток основной суммы:
// principal минус сумма основных частей всех платежей
func LoanBalance(principal decimal.Decimal, payments []model.LoanPayment) decimal.Decimal {
	balance := principal
	for _, p := range payments {
		balance = balance.Sub(p.PrincipalPortion)
	}
	return balance
}

// ValidatePaymentPortions проверяет платеж по займу перед записью.
// Платеж, основная часть которого превышает остаток, отклоняется.
func ValidatePaymentPortions(outstanding, principalPortion, interestPortion decimal.Decimal) error {
	if principalPortion.IsNegative() || interestPortion.IsNegative() {
		return fmt.Errorf("%w: части платежа не могут быть отрицательными", apperr.ErrValidation)
	}
	if principalPortion.IsZero() && interestPortion.IsZero() {
		return fmt.Errorf("%w: платеж не может быть нулевым", apperr.ErrValidation)
	}
	if principalPortion.GreaterThan(outstanding) {
		return fmt.Errorf("%w: основная часть %s превышает остаток %s",
			apperr.ErrConstraint, principalPortion.StringFixed(2), outstanding.StringFixed(2))
	}
	return nil
}

// NextLoanStatus возвращает статус займа после платежа
func NextLoanStatus(current model.LoanStatus, outstanding decimal.Decimal) model.LoanStatus {
	if current == model.LoanStatusWrittenOff {
		return current
	}
	if outstanding.IsZero() {
		return model.LoanStatusPaid
	}
	return current
}

// LoanMaturity возвращает дату окончания срока займа
func LoanMaturity(disbursedAt time.Time, termPeriods int, p model.Periodicity) (time.Time, error) {
	switch p {
	case model.PeriodicityWeekly:
		return disbursedAt.AddDate(0, 0, 7*termPeriods), nil
	case model.PeriodicityBiweekly:
		return disbursedAt.AddDate(0, 0, 14*termPeriods), nil
	case model.PeriodicityMonthly:
		return disbursedAt.AddDate(0, termPeriods, 0), nil
	default:
		return time.Time{}, fmt.Errorf("%w: неизвестная периодичность %q", apperr.ErrValidation, p)
	}
}

// SavingsTotal суммирует регулярные и прочие взносы участницы
func SavingsTotal(entries []model.SavingsEntry) decimal.Decimal {
	total := decimal.Zero
	for _, e := range entries {
		total = total.Add(e.Amount).Add(e.OtherAmount)
	}
	return total
}

// FineBalance возвращает остаток долга по штрафу
func FineBalance(mf model.MemberFine) decimal.Decimal {
	return mf.AmountOwed.Sub(mf.AmountPaid)
}

// ApplyFinePayment возвращает состояние назначения штрафа после платежа.
// Платеж сверх долга или после погашения отклоняется; статус settled
// выставляется ровно в момент достижения нулевого остатка.
func ApplyFinePayment(mf model.MemberFine, amount decimal.Decimal, now time.Time) (model.MemberFine, error) {
	if !amount.IsPositive() {
		return mf, fmt.Errorf("%w: сумма платежа должна быть положительной", apperr.ErrValidation)
	}
	if mf.Status == model.MemberFineStatusSettled {
		return mf, fmt.Errorf("%w: штраф уже погашен", apperr.ErrConstraint)
	}
	if amount.GreaterThan(FineBalance(mf)) {
		return mf, fmt.Errorf("%w: платеж %s превышает остаток долга %s",
			apperr.ErrConstraint, amount.StringFixed(2), FineBalance(mf).StringFixed(2))
	}

	mf.AmountPaid = mf.AmountPaid.Add(amount)
	if FineBalance(mf).IsZero() {
		mf.Status = model.MemberFineStatusSettled
		mf.SettledAt = &now
	}
	mf.UpdatedAt = now
	return mf, nil
}

// CashBalance возвращает сальдо кассы: приходы минус расходы
func CashBalance(movements []model.CashMovement) decimal.Decimal {
	balance := decimal.Zero
	for _, m := range movements {
		switch m.Kind {
		case model.MovementKindInflow:
			balance = balance.Add(m.Amount)
		case model.MovementKindOutflow:
			balance = balance.Sub(m.Amount)
		}
	}
	return balance
}
