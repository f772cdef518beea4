package ledger

import (
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Emi00093522-cloud/sistema-gapc.com/internal/apperr"
	"github.com/Emi00093522-cloud/sistema-gapc.com/internal/model"
)

func dec(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return d
}

func payment(principal, interest string) model.LoanPayment {
	return model.LoanPayment{
		ID:               uuid.New(),
		PrincipalPortion: dec(principal),
		InterestPortion:  dec(interest),
	}
}

func TestLoanBalance(t *testing.T) {
	principal := dec("1000")

	assert.True(t, LoanBalance(principal, nil).Equal(dec("1000")))

	payments := []model.LoanPayment{payment("300", "20")}
	assert.True(t, LoanBalance(principal, payments).Equal(dec("700")),
		"проценты не должны уменьшать остаток основной суммы")

	payments = append(payments, payment("700", "0"))
	assert.True(t, LoanBalance(principal, payments).IsZero())
}

func TestValidatePaymentPortions(t *testing.T) {
	outstanding := dec("700")

	require.NoError(t, ValidatePaymentPortions(outstanding, dec("700"), dec("0")))
	require.NoError(t, ValidatePaymentPortions(outstanding, dec("0"), dec("15")))

	err := ValidatePaymentPortions(outstanding, dec("800"), dec("0"))
	require.Error(t, err)
	assert.True(t, errors.Is(err, apperr.ErrConstraint))

	err = ValidatePaymentPortions(outstanding, dec("-1"), dec("0"))
	require.Error(t, err)
	assert.True(t, errors.Is(err, apperr.ErrValidation))

	err = ValidatePaymentPortions(outstanding, dec("0"), dec("0"))
	require.Error(t, err)
	assert.True(t, errors.Is(err, apperr.ErrValidation))
}

// Сценарий: заем 1000, платеж 300/20, затем попытка переплаты 800
func TestLoanPaymentScenario(t *testing.T) {
	principal := dec("1000")
	var payments []model.LoanPayment

	require.True(t, LoanBalance(principal, payments).Equal(dec("1000")))

	require.NoError(t, ValidatePaymentPortions(LoanBalance(principal, payments), dec("300"), dec("20")))
	payments = append(payments, payment("300", "20"))
	require.True(t, LoanBalance(principal, payments).Equal(dec("700")))

	err := ValidatePaymentPortions(LoanBalance(principal, payments), dec("800"), dec("0"))
	require.Error(t, err)
	assert.True(t, errors.Is(err, apperr.ErrConstraint))
	// реестр не изменился, остаток прежний
	assert.True(t, LoanBalance(principal, payments).Equal(dec("700")))
}

func TestTotalInterest(t *testing.T) {
	// 1000 x 10% годовых на 12 месячных периодов = полный год
	got, err := TotalInterest(dec("1000"), dec("10"), 12, model.PeriodicityMonthly)
	require.NoError(t, err)
	assert.True(t, got.Equal(dec("100")), "получено %s", got)

	// 26 недельных периодов = полгода
	got, err = TotalInterest(dec("1000"), dec("10"), 26, model.PeriodicityWeekly)
	require.NoError(t, err)
	assert.True(t, got.Equal(dec("50")), "получено %s", got)

	_, err = TotalInterest(dec("1000"), dec("10"), 12, model.Periodicity("daily"))
	require.Error(t, err)
	assert.True(t, errors.Is(err, apperr.ErrValidation))
}

func TestNextLoanStatus(t *testing.T) {
	assert.Equal(t, model.LoanStatusPaid, NextLoanStatus(model.LoanStatusCurrent, decimal.Zero))
	assert.Equal(t, model.LoanStatusCurrent, NextLoanStatus(model.LoanStatusCurrent, dec("700")))
	assert.Equal(t, model.LoanStatusDelinquent, NextLoanStatus(model.LoanStatusDelinquent, dec("1")))
	assert.Equal(t, model.LoanStatusPaid, NextLoanStatus(model.LoanStatusDelinquent, decimal.Zero))
	// списанный заем не оживает от платежей
	assert.Equal(t, model.LoanStatusWrittenOff, NextLoanStatus(model.LoanStatusWrittenOff, decimal.Zero))
}

func TestSavingsTotal(t *testing.T) {
	entries := []model.SavingsEntry{
		{Amount: dec("50"), OtherAmount: decimal.Zero},
		{Amount: dec("75"), OtherAmount: decimal.Zero},
	}
	assert.True(t, SavingsTotal(entries).Equal(dec("125")))

	entries = append(entries, model.SavingsEntry{Amount: dec("10"), OtherAmount: dec("2.50")})
	assert.True(t, SavingsTotal(entries).Equal(dec("137.50")))

	assert.True(t, SavingsTotal(nil).IsZero())
}

// Сценарий: штраф 20, платеж 20 погашает его, дальнейшие платежи отклоняются
func TestFineSettlementScenario(t *testing.T) {
	now := time.Now()
	mf := model.MemberFine{
		ID:         uuid.New(),
		AmountOwed: dec("20"),
		AmountPaid: decimal.Zero,
		Status:     model.MemberFineStatusPending,
	}

	require.True(t, FineBalance(mf).Equal(dec("20")))

	mf, err := ApplyFinePayment(mf, dec("20"), now)
	require.NoError(t, err)
	assert.Equal(t, model.MemberFineStatusSettled, mf.Status)
	assert.True(t, FineBalance(mf).IsZero())
	require.NotNil(t, mf.SettledAt)
	assert.Equal(t, now, *mf.SettledAt)

	_, err = ApplyFinePayment(mf, dec("0.01"), now)
	require.Error(t, err)
	assert.True(t, errors.Is(err, apperr.ErrConstraint))
}

func TestApplyFinePaymentPartial(t *testing.T) {
	now := time.Now()
	mf := model.MemberFine{
		AmountOwed: dec("20"),
		AmountPaid: decimal.Zero,
		Status:     model.MemberFineStatusPending,
	}

	// частичный платеж не погашает штраф
	mf, err := ApplyFinePayment(mf, dec("5"), now)
	require.NoError(t, err)
	assert.Equal(t, model.MemberFineStatusPending, mf.Status)
	assert.Nil(t, mf.SettledAt)
	assert.True(t, FineBalance(mf).Equal(dec("15")))

	// переплата отклоняется, состояние не меняется
	_, err = ApplyFinePayment(mf, dec("15.01"), now)
	require.Error(t, err)
	assert.True(t, errors.Is(err, apperr.ErrConstraint))
	assert.True(t, FineBalance(mf).Equal(dec("15")))

	_, err = ApplyFinePayment(mf, dec("-5"), now)
	require.Error(t, err)
	assert.True(t, errors.Is(err, apperr.ErrValidation))
}

func TestCashBalance(t *testing.T) {
	movements := []model.CashMovement{
		{Kind: model.MovementKindInflow, Amount: dec("100")},
		{Kind: model.MovementKindInflow, Amount: dec("50.25")},
		{Kind: model.MovementKindOutflow, Amount: dec("30")},
	}
	assert.True(t, CashBalance(movements).Equal(dec("120.25")))
	assert.True(t, CashBalance(nil).IsZero())
}

// Повторный вызов с тем же содержимым реестра дает идентичный результат
func TestDerivationsAreDeterministic(t *testing.T) {
	principal := dec("1000")
	payments := []model.LoanPayment{payment("300", "20"), payment("150.55", "10")}

	first := LoanBalance(principal, payments)
	second := LoanBalance(principal, payments)
	assert.True(t, first.Equal(second))
	assert.Equal(t, first.String(), second.String())
}

func TestLoanMaturity(t *testing.T) {
	start := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)

	got, err := LoanMaturity(start, 4, model.PeriodicityWeekly)
	require.NoError(t, err)
	assert.Equal(t, start.AddDate(0, 0, 28), got)

	got, err = LoanMaturity(start, 3, model.PeriodicityMonthly)
	require.NoError(t, err)
	assert.Equal(t, start.AddDate(0, 3, 0), got)

	_, err = LoanMaturity(start, 3, model.Periodicity("daily"))
	require.Error(t, err)
}
