package amort

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func TestFrequencyTables(t *testing.T) {
	assert.Equal(t, 52, Weekly.PeriodsPerYear())
	assert.Equal(t, 26, BiWeekly.PeriodsPerYear())
	assert.Equal(t, 24, SemiMonthly.PeriodsPerYear())
	assert.Equal(t, 12, Monthly.PeriodsPerYear())

	assert.True(t, Weekly.DaysPerPeriod().Equal(decimal.NewFromInt(7)))
	assert.True(t, BiWeekly.DaysPerPeriod().Equal(decimal.NewFromInt(14)))
	assert.True(t, SemiMonthly.DaysPerPeriod().Equal(decimal.NewFromInt(365).Div(decimal.NewFromInt(24))))
	assert.True(t, Monthly.DaysPerPeriod().Equal(decimal.NewFromInt(365).Div(decimal.NewFromInt(12))))

	assert.True(t, BiWeekly.Valid())
	assert.False(t, Frequency("Quarterly").Valid())
}

func TestPaymentForTermDrainsBalance(t *testing.T) {
	principal := dec("20000")
	apr := dec("19.99")

	q, err := PaymentForTerm(principal, apr, 60, BiWeekly)
	require.NoError(t, err)

	assert.True(t, q.Payment.GreaterThan(decimal.Zero))
	assert.LessOrEqual(t, q.Periods, 130)
	assert.True(t, q.FinanceCharge.GreaterThan(decimal.Zero), "finance charge must be positive")
	assert.True(t, q.BalanceDue.Equal(principal.Add(q.FinanceCharge)),
		"balance due is amount financed plus finance charge exactly")

	// Replaying the derived payment over the full term drains the balance
	// to within a cent.
	s, err := simulate(principal, apr, q.Payment, BiWeekly, 130)
	require.NoError(t, err)
	assert.True(t, s.balance.LessThanOrEqual(dec("0.01")),
		"got final balance %s", s.balance)
}

func TestPaymentForTermRejectsBadInput(t *testing.T) {
	_, err := PaymentForTerm(dec("0"), dec("10"), 60, Weekly)
	assert.Error(t, err)
	_, err = PaymentForTerm(dec("10000"), dec("10"), 0, Weekly)
	assert.Error(t, err)
}

func TestTermForPaymentRoundTrip(t *testing.T) {
	principal := dec("20000")
	apr := dec("19.99")

	forward, err := PaymentForTerm(principal, apr, 60, BiWeekly)
	require.NoError(t, err)

	inverse, err := TermForPayment(principal, apr, forward.Payment, BiWeekly)
	require.NoError(t, err)

	assert.InDelta(t, 60, inverse.TermMonths, 1, "forward and inverse must agree within a month")
}

func TestTermForPaymentInfeasible(t *testing.T) {
	// A $5 payment cannot cover bi-weekly interest on $20k at 19.99%.
	_, err := TermForPayment(dec("20000"), dec("19.99"), dec("5"), BiWeekly)
	assert.ErrorIs(t, err, ErrPaymentTooSmall)
}

func TestTermForPaymentZeroRate(t *testing.T) {
	q, err := TermForPayment(dec("1200"), dec("0"), dec("100"), Monthly)
	require.NoError(t, err)
	assert.Equal(t, 12, q.Periods)
	assert.Equal(t, 12, q.TermMonths)
	assert.True(t, q.FinanceCharge.IsZero())
}

func TestTermForPaymentRoundsMonthsUp(t *testing.T) {
	// 10 weekly payments is 10/52 of a year; months round up to 3.
	q, err := TermForPayment(dec("1000"), dec("0"), dec("100"), Weekly)
	require.NoError(t, err)
	assert.Equal(t, 10, q.Periods)
	assert.Equal(t, 3, q.TermMonths)
}

func TestSimulateTruncatesInterest(t *testing.T) {
	// One bi-weekly period on $10,000 at 10%: 10000 * 0.10/365 * 14 =
	// 38.3561..., truncated (not rounded) to 38.35.
	s, err := simulate(dec("10000"), dec("10"), dec("10038.35"), BiWeekly, 1)
	require.NoError(t, err)
	assert.True(t, s.financeCharge.Equal(dec("38.35")), "got %s", s.financeCharge)
	assert.True(t, s.balance.IsZero(), "got %s", s.balance)
}

func TestSalesTaxesRetail(t *testing.T) {
	taxes := SalesTaxes(dec("10000"), false)
	assert.True(t, taxes.State.Equal(dec("734.60")), "state = %s", taxes.State)
	assert.True(t, taxes.Business.Equal(dec("30.45")), "business = %s", taxes.Business)
	assert.True(t, taxes.Local.Equal(dec("44.00")), "local = %s", taxes.Local)
	assert.True(t, taxes.Total().Equal(dec("809.05")))
}

func TestSalesTaxesTruncateNotRound(t *testing.T) {
	// 9999 * 0.07346 = 734.52654 -> 734.52, a rounder would say 734.53.
	taxes := SalesTaxes(dec("9999"), false)
	assert.True(t, taxes.State.Equal(dec("734.52")), "state = %s", taxes.State)
}

func TestSalesTaxesWholesale(t *testing.T) {
	taxes := SalesTaxes(dec("50000"), true)
	assert.True(t, taxes.State.IsZero())
	assert.True(t, taxes.Business.IsZero())
	assert.True(t, taxes.Local.IsZero())
	assert.True(t, taxes.Total().IsZero())
}
