// Package amort implements the deal-desk amortization engine: day-count
// interest accrual with cent truncation, payment-from-term via bisection,
// term-from-payment via direct simulation, and retail sales-tax derivation.
//
// Every intermediate interest and balance value is truncated (not rounded) to
// two decimal places. The truncation is load-bearing: reference schedules
// were produced that way and rounding drifts the numbers.
package amort

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
)

// Frequency is the payment cadence of a deal.
type Frequency string

const (
	Weekly      Frequency = "Weekly"
	BiWeekly    Frequency = "Bi-Weekly"
	SemiMonthly Frequency = "Semi-Monthly"
	Monthly     Frequency = "Monthly"
)

var (
	// ErrPaymentTooSmall reports a payment that cannot retire the balance:
	// either it fails to cover a period's accrued interest, or the schedule
	// does not pay off within the simulation cap.
	ErrPaymentTooSmall = errors.New("payment too small to amortize the balance")

	// ErrNoPayment reports that bisection found no adequate payment within
	// its search interval.
	ErrNoPayment = errors.New("no payment amortizes the balance over the requested term")
)

const maxTermPeriods = 1000

var (
	daysPerYear  = decimal.NewFromInt(365)
	centTol      = decimal.RequireFromString("0.01")
	two          = decimal.NewFromInt(2)
	oneHundred   = decimal.NewFromInt(100)
	stateTaxRate = decimal.RequireFromString("0.07346")
	bizTaxRate   = decimal.RequireFromString("0.003045")
	localTaxFlat = decimal.RequireFromString("44.00")
)

// DaysPerPeriod is the day-count length of one period.
func (f Frequency) DaysPerPeriod() decimal.Decimal {
	switch f {
	case Weekly:
		return decimal.NewFromInt(7)
	case BiWeekly:
		return decimal.NewFromInt(14)
	case SemiMonthly:
		return daysPerYear.Div(decimal.NewFromInt(24))
	default:
		return daysPerYear.Div(decimal.NewFromInt(12))
	}
}

// PeriodsPerYear is the number of payments made in one year.
func (f Frequency) PeriodsPerYear() int {
	switch f {
	case Weekly:
		return 52
	case BiWeekly:
		return 26
	case SemiMonthly:
		return 24
	default:
		return 12
	}
}

// Valid reports whether f is a known cadence.
func (f Frequency) Valid() bool {
	switch f {
	case Weekly, BiWeekly, SemiMonthly, Monthly:
		return true
	}
	return false
}

// Quote is a solved deal: the payment, the term it amortizes over, and the
// derived totals. FinanceCharge is the sum of truncated per-period interest;
// BalanceDue is the amount financed plus the finance charge.
type Quote struct {
	Payment       decimal.Decimal `json:"payment"`
	TermMonths    int             `json:"term_months"`
	Periods       int             `json:"periods"`
	FinanceCharge decimal.Decimal `json:"finance_charge"`
	BalanceDue    decimal.Decimal `json:"balance_due"`
}

type schedule struct {
	periods       int
	financeCharge decimal.Decimal
	balance       decimal.Decimal
}

// simulate runs the period loop: accrue truncated day-count interest, apply
// the payment, truncate the balance, stop once the balance is within a cent
// of zero or maxPeriods is reached.
func simulate(principal, aprPercent, payment decimal.Decimal, freq Frequency, maxPeriods int) (schedule, error) {
	perDay := aprPercent.Div(oneHundred).Div(daysPerYear)
	days := freq.DaysPerPeriod()

	s := schedule{balance: principal, financeCharge: decimal.Zero}
	for p := 1; p <= maxPeriods; p++ {
		interest := s.balance.Mul(perDay).Mul(days).Truncate(2)
		principalPaid := payment.Sub(interest)
		if principalPaid.LessThanOrEqual(decimal.Zero) {
			return schedule{}, ErrPaymentTooSmall
		}
		s.balance = s.balance.Sub(principalPaid).Truncate(2)
		s.financeCharge = s.financeCharge.Add(interest)
		s.periods = p
		if s.balance.LessThanOrEqual(centTol) {
			return s, nil
		}
	}
	return s, nil
}

// totalPeriods converts a month term to whole periods, rounding up.
func totalPeriods(termMonths int, freq Frequency) int {
	ppy := freq.PeriodsPerYear()
	return (termMonths*ppy + 11) / 12
}

// PaymentForTerm solves for the constant payment that retires principal over
// termMonths at the given APR, by bisection over [0, 2·principal]. The
// returned payment is rounded up to the cent so it stays adequate.
func PaymentForTerm(principal, aprPercent decimal.Decimal, termMonths int, freq Frequency) (Quote, error) {
	if principal.LessThanOrEqual(decimal.Zero) || termMonths <= 0 {
		return Quote{}, fmt.Errorf("invalid loan terms: principal %s, term %d months", principal, termMonths)
	}
	periods := totalPeriods(termMonths, freq)

	adequate := func(x decimal.Decimal) bool {
		s, err := simulate(principal, aprPercent, x, freq, periods)
		return err == nil && s.balance.LessThanOrEqual(centTol)
	}

	lo := decimal.Zero
	hi := principal.Mul(two)
	if !adequate(hi) {
		return Quote{}, ErrNoPayment
	}
	for i := 0; i < 100; i++ {
		if hi.Sub(lo).LessThan(centTol) {
			break
		}
		mid := lo.Add(hi).Div(two)
		if adequate(mid) {
			hi = mid
		} else {
			lo = mid
		}
	}

	payment := ceilCents(hi)
	s, err := simulate(principal, aprPercent, payment, freq, periods)
	if err != nil {
		return Quote{}, err
	}
	return Quote{
		Payment:       payment,
		TermMonths:    termMonths,
		Periods:       s.periods,
		FinanceCharge: s.financeCharge,
		BalanceDue:    principal.Add(s.financeCharge),
	}, nil
}

// TermForPayment solves for the term that a fixed payment amortizes over.
// The month count is rounded up to the next whole month.
func TermForPayment(principal, aprPercent, payment decimal.Decimal, freq Frequency) (Quote, error) {
	if principal.LessThanOrEqual(decimal.Zero) || payment.LessThanOrEqual(decimal.Zero) {
		return Quote{}, fmt.Errorf("invalid loan terms: principal %s, payment %s", principal, payment)
	}
	s, err := simulate(principal, aprPercent, payment, freq, maxTermPeriods)
	if err != nil {
		return Quote{}, err
	}
	if s.balance.GreaterThan(centTol) {
		return Quote{}, ErrPaymentTooSmall
	}
	ppy := freq.PeriodsPerYear()
	months := (s.periods*12 + ppy - 1) / ppy
	return Quote{
		Payment:       payment,
		TermMonths:    months,
		Periods:       s.periods,
		FinanceCharge: s.financeCharge,
		BalanceDue:    principal.Add(s.financeCharge),
	}, nil
}

func ceilCents(d decimal.Decimal) decimal.Decimal {
	t := d.Truncate(2)
	if t.Equal(d) {
		return t
	}
	return t.Add(centTol)
}

// Taxes is the tax block of a retail deal.
type Taxes struct {
	State    decimal.Decimal `json:"state"`
	Business decimal.Decimal `json:"business"`
	Local    decimal.Decimal `json:"local"`
}

// Total is the sum of the three components.
func (t Taxes) Total() decimal.Decimal {
	return t.State.Add(t.Business).Add(t.Local)
}

// SalesTaxes derives the tax block for a sale price. Wholesale deals carry no
// tax; retail deals pay truncated percentage state and business taxes plus a
// flat local fee.
func SalesTaxes(price decimal.Decimal, wholesale bool) Taxes {
	if wholesale {
		return Taxes{State: decimal.Zero, Business: decimal.Zero, Local: decimal.Zero}
	}
	return Taxes{
		State:    price.Mul(stateTaxRate).Truncate(2),
		Business: price.Mul(bizTaxRate).Truncate(2),
		Local:    localTaxFlat,
	}
}
