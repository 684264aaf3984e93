package service

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hdmotors/dealer-service/internal/amort"
	"github.com/hdmotors/dealer-service/internal/config"
)

func newQuoteService(t *testing.T) *Service {
	t.Helper()
	logger := logrus.New()
	logger.SetLevel(logrus.PanicLevel)
	return NewService(nil, nil, logger, &config.Config{JWTSecret: "test"})
}

func TestQuoteSolvesPaymentFromTerm(t *testing.T) {
	svc := newQuoteService(t)
	resp, err := svc.Quote(QuoteRequest{
		Principal:  20000,
		APRPercent: 19.99,
		Frequency:  amort.BiWeekly,
		TermMonths: 60,
		SalePrice:  10000,
	})
	require.NoError(t, err)
	assert.True(t, resp.Quote.Payment.GreaterThan(decimal.Zero))
	assert.Equal(t, 60, resp.Quote.TermMonths)
	assert.True(t, resp.Taxes.State.Equal(decimal.RequireFromString("734.60")))
}

func TestQuoteSolvesTermFromPayment(t *testing.T) {
	svc := newQuoteService(t)
	resp, err := svc.Quote(QuoteRequest{
		Principal:  1200,
		APRPercent: 0,
		Frequency:  amort.Monthly,
		Payment:    100,
	})
	require.NoError(t, err)
	assert.Equal(t, 12, resp.Quote.TermMonths)
}

func TestQuoteTaxesDefaultToPrincipal(t *testing.T) {
	svc := newQuoteService(t)
	resp, err := svc.Quote(QuoteRequest{
		Principal:  10000,
		APRPercent: 0,
		Frequency:  amort.Monthly,
		TermMonths: 12,
	})
	require.NoError(t, err)
	assert.True(t, resp.Taxes.State.Equal(decimal.RequireFromString("734.60")))
}

func TestQuoteWholesaleHasNoTax(t *testing.T) {
	svc := newQuoteService(t)
	resp, err := svc.Quote(QuoteRequest{
		Principal:  10000,
		APRPercent: 0,
		Frequency:  amort.Monthly,
		TermMonths: 12,
		Wholesale:  true,
	})
	require.NoError(t, err)
	assert.True(t, resp.Taxes.Total().IsZero())
}

func TestQuoteValidation(t *testing.T) {
	svc := newQuoteService(t)

	_, err := svc.Quote(QuoteRequest{Principal: 10000, Frequency: "Quarterly", TermMonths: 12})
	assert.Error(t, err, "unknown frequency")

	_, err = svc.Quote(QuoteRequest{Principal: 10000, Frequency: amort.Monthly})
	assert.Error(t, err, "neither term nor payment")

	_, err = svc.Quote(QuoteRequest{Principal: 10000, Frequency: amort.Monthly, TermMonths: 12, Payment: 100})
	assert.Error(t, err, "both term and payment")
}

func TestQuoteInfeasiblePayment(t *testing.T) {
	svc := newQuoteService(t)
	_, err := svc.Quote(QuoteRequest{
		Principal:  20000,
		APRPercent: 19.99,
		Frequency:  amort.BiWeekly,
		Payment:    5,
	})
	assert.ErrorIs(t, err, amort.ErrPaymentTooSmall)
}
