package metrics

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hdmotors/dealer-service/internal/models"
)

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestComputeEmptyInput(t *testing.T) {
	s := Compute(nil, nil, day(2024, time.June, 5), nil)
	assert.Zero(t, s.TodayTotal)
	assert.Zero(t, s.WeekToDateTotal)
	assert.Zero(t, s.RecordDailyTotal)
	assert.Nil(t, s.RecordDailyDate)
	assert.Zero(t, s.RecordWeeklyTotal)
	assert.Zero(t, s.ExpectedWeeklyTotal)
	assert.Zero(t, s.TodayDelinquencyRate)
}

func TestTodayAndWeekToDate(t *testing.T) {
	today := day(2024, time.June, 5) // Wednesday, week starts Jun 3
	daily := []models.DailyRecord{
		{Date: day(2024, time.June, 5), Payments: 900, LateFees: 100},
		{Date: day(2024, time.June, 4), Payments: 500},
		{Date: day(2024, time.June, 3), Payments: 300, LateFees: 50},
		{Date: day(2024, time.June, 2), Payments: 9999}, // Sunday, previous week
		{Date: day(2024, time.June, 6), Payments: 400},  // tomorrow, out of range
	}
	s := Compute(daily, nil, today, nil)
	assert.Equal(t, 1000.0, s.TodayTotal)
	assert.Equal(t, 1850.0, s.WeekToDateTotal)
}

func TestRecordDayFirstMaxWins(t *testing.T) {
	daily := []models.DailyRecord{
		{Date: day(2024, time.March, 1), Payments: 4000},
		{Date: day(2024, time.March, 8), Payments: 4000}, // tie, later in iteration
		{Date: day(2024, time.March, 4), Payments: 2000},
	}
	s := Compute(daily, nil, day(2024, time.June, 5), nil)
	assert.Equal(t, 4000.0, s.RecordDailyTotal)
	require.NotNil(t, s.RecordDailyDate)
	assert.Equal(t, day(2024, time.March, 1), *s.RecordDailyDate)
}

func TestRecordWeek(t *testing.T) {
	weekly := []models.WeekPoint{
		{WeekStart: day(2024, time.May, 6), TotalPayments: 12000},
		{WeekStart: day(2024, time.May, 13), TotalPayments: 15500},
		{WeekStart: day(2024, time.May, 20), TotalPayments: 9000},
	}
	s := Compute(nil, weekly, day(2024, time.June, 5), nil)
	assert.Equal(t, 15500.0, s.RecordWeeklyTotal)
	require.NotNil(t, s.RecordWeekStart)
	assert.Equal(t, day(2024, time.May, 13), *s.RecordWeekStart)
}

func TestExpectedWeeklyTotalUsesTwoWeekLag(t *testing.T) {
	today := day(2024, time.May, 22) // in week starting May 20
	weekly := []models.WeekPoint{
		{WeekStart: day(2024, time.May, 6), TotalPayments: 10000, AvgOpenAccounts: 100},  // per-account 100
		{WeekStart: day(2024, time.May, 13), TotalPayments: 13200, AvgOpenAccounts: 110}, // per-account 120
		{WeekStart: day(2024, time.May, 20), TotalPayments: 2000, AvgOpenAccounts: 105},
	}
	// perAccount mean = (100 + 120 + 2000/105) / 3; lag week is May 6 -> 100 accounts.
	perAccount := (100.0 + 120.0 + 2000.0/105.0) / 3.0
	s := Compute(nil, weekly, today, nil)
	assert.InDelta(t, perAccount*100.0, s.ExpectedWeeklyTotal, 1e-9)
}

func TestExpectedWeeklyTotalFallsBackToCurrentWeek(t *testing.T) {
	today := day(2024, time.May, 8) // in week starting May 6
	weekly := []models.WeekPoint{
		{WeekStart: day(2024, time.May, 6), TotalPayments: 10000, AvgOpenAccounts: 100},
	}
	// Lag index is out of range; current week's count carries.
	s := Compute(nil, weekly, today, nil)
	assert.InDelta(t, 100.0*100.0, s.ExpectedWeeklyTotal, 1e-9)
}

func TestExpectedWeeklyTotalZeroWhenNoAccounts(t *testing.T) {
	weekly := []models.WeekPoint{
		{WeekStart: day(2024, time.May, 6), TotalPayments: 10000, AvgOpenAccounts: 0},
	}
	s := Compute(nil, weekly, day(2024, time.May, 8), nil)
	assert.Zero(t, s.ExpectedWeeklyTotal)
}

func TestDelinquencyRate(t *testing.T) {
	t.Run("normal", func(t *testing.T) {
		rec := &models.DelinquencyRecord{OpenAccounts: 200, OverdueAccounts: 30}
		s := Compute(nil, nil, day(2024, time.May, 8), rec)
		assert.InDelta(t, 15.0, s.TodayDelinquencyRate, 1e-9)
	})
	t.Run("overdue above open is tolerated", func(t *testing.T) {
		rec := &models.DelinquencyRecord{OpenAccounts: 100, OverdueAccounts: 120}
		s := Compute(nil, nil, day(2024, time.May, 8), rec)
		assert.InDelta(t, 120.0, s.TodayDelinquencyRate, 1e-9)
	})
	t.Run("no open accounts", func(t *testing.T) {
		rec := &models.DelinquencyRecord{OpenAccounts: 0, OverdueAccounts: 5}
		s := Compute(nil, nil, day(2024, time.May, 8), rec)
		assert.Zero(t, s.TodayDelinquencyRate)
	})
}
