// Package metrics derives the collections summary figures from the raw daily
// rows and the aggregated weekly series. Everything here is pure computation;
// empty input yields a zero-valued summary, never an error.
package metrics

import (
	"time"

	"github.com/hdmotors/dealer-service/internal/calendar"
	"github.com/hdmotors/dealer-service/internal/models"
)

// Summary is the collections dashboard header block.
type Summary struct {
	TodayTotal           float64    `json:"today_total"`
	WeekToDateTotal      float64    `json:"week_to_date_total"`
	RecordDailyTotal     float64    `json:"record_daily_total"`
	RecordDailyDate      *time.Time `json:"record_daily_date,omitempty"`
	RecordWeeklyTotal    float64    `json:"record_weekly_total"`
	RecordWeekStart      *time.Time `json:"record_week_start,omitempty"`
	ExpectedWeeklyTotal  float64    `json:"expected_weekly_total"`
	TodayDelinquencyRate float64    `json:"today_delinquency_rate"`
}

// Compute builds the summary for today from the daily payment rows, the
// sparse weekly series, and today's delinquency row (nil when not yet
// logged).
//
// Record day and record week keep the first maximum encountered in input
// order. The source system never defined a tie-break; first-wins is the
// documented behavior here, pending product clarification.
func Compute(daily []models.DailyRecord, weekly []models.WeekPoint, today time.Time, delinquency *models.DelinquencyRecord) Summary {
	var s Summary

	todayDate := calendar.DateOnly(today)
	weekStart := calendar.WeekStart(today)

	for _, r := range daily {
		d := calendar.DateOnly(r.Date)
		if d.Equal(todayDate) {
			s.TodayTotal += r.Total()
		}
		if !d.Before(weekStart) && !d.After(todayDate) {
			s.WeekToDateTotal += r.Total()
		}
		if r.Total() > s.RecordDailyTotal {
			s.RecordDailyTotal = r.Total()
			rd := d
			s.RecordDailyDate = &rd
		}
	}

	for _, w := range weekly {
		if w.TotalPayments > s.RecordWeeklyTotal {
			s.RecordWeeklyTotal = w.TotalPayments
			ws := w.WeekStart
			s.RecordWeekStart = &ws
		}
	}

	s.ExpectedWeeklyTotal = expectedWeeklyTotal(weekly, weekStart)

	if delinquency != nil && delinquency.OpenAccounts > 0 {
		s.TodayDelinquencyRate = delinquency.OverdueAccounts / delinquency.OpenAccounts * 100
	}

	return s
}

// expectedWeeklyTotal projects the current week from the per-account weekly
// average scaled by the open-account count two weeks back. The 2-week lag
// absorbs the reporting delay on account counts; when the series is too short
// for the lag it falls back to the current week's count, then to zero.
func expectedWeeklyTotal(weekly []models.WeekPoint, weekStart time.Time) float64 {
	perAccount := perAccountWeeklyAverage(weekly)
	if perAccount == 0 {
		return 0
	}

	current := -1
	for i, w := range weekly {
		if w.WeekStart.Equal(weekStart) {
			current = i
			break
		}
	}
	if current < 0 {
		// Today's week has no entry yet; project off the series tail.
		current = len(weekly)
	}

	var lagOpen float64
	if lag := current - 2; lag >= 0 && lag < len(weekly) {
		lagOpen = weekly[lag].AvgOpenAccounts
	} else if current >= 0 && current < len(weekly) {
		lagOpen = weekly[current].AvgOpenAccounts
	}
	return perAccount * lagOpen
}

// perAccountWeeklyAverage is the mean of totalPayments/avgOpenAccounts over
// every week with a positive open-account count.
func perAccountWeeklyAverage(weekly []models.WeekPoint) float64 {
	var sum float64
	var n int
	for _, w := range weekly {
		if w.AvgOpenAccounts > 0 {
			sum += w.TotalPayments / w.AvgOpenAccounts
			n++
		}
	}
	if n == 0 {
		return 0
	}
	return sum / float64(n)
}
