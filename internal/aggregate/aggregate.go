// Package aggregate folds dated daily records into per-fiscal-year weekly
// series for the collections charts. It is pure computation over
// already-fetched rows; store access and chart rendering live elsewhere.
package aggregate

import (
	"sort"
	"time"

	"github.com/hdmotors/dealer-service/internal/calendar"
	"github.com/hdmotors/dealer-service/internal/models"
)

// Dated is one record contributing to a weekly bucket.
type Dated struct {
	Date  time.Time
	Value float64
}

type bucket struct {
	sum   float64
	count int
}

// foldWeekly accumulates records into (fiscalYear, weekNumber) buckets using
// the anchor window derived from the observed dates.
func foldWeekly(records []Dated) (map[int]map[int]*bucket, calendar.Anchors) {
	if len(records) == 0 {
		return nil, nil
	}
	minYear, maxYear := records[0].Date.Year(), records[0].Date.Year()
	for _, r := range records[1:] {
		if y := r.Date.Year(); y < minYear {
			minYear = y
		} else if y > maxYear {
			maxYear = y
		}
	}
	anchors := calendar.BuildAnchors(minYear, maxYear)

	years := make(map[int]map[int]*bucket)
	for _, r := range records {
		year := anchors.Assign(r.Date)
		week := calendar.WeekNumber(r.Date, year)
		weeks := years[year]
		if weeks == nil {
			weeks = make(map[int]*bucket)
			years[year] = weeks
		}
		b := weeks[week]
		if b == nil {
			b = &bucket{}
			weeks[week] = b
		}
		b.sum += r.Value
		b.count++
	}
	return years, anchors
}

// seriesValue selects how a finished bucket reads out: the raw sum for
// payment totals, the mean for open-account counts.
type seriesValue func(*bucket) float64

func sumValue(b *bucket) float64 { return b.sum }

func avgValue(b *bucket) float64 {
	if b.count == 0 {
		return 0
	}
	return b.sum / float64(b.count)
}

// WeeklySums produces per-year dense chart series of weekly sums. The fiscal
// year containing today is truncated to completed weeks only, so the current
// partial week never renders as a misleadingly low bar; earlier years show
// every week that has data. Weeks without data are nil, not zero.
func WeeklySums(records []Dated, today time.Time) []models.YearSeries {
	return buildSeries(records, today, sumValue)
}

// WeeklyAverages is WeeklySums with per-bucket means, used for the
// open-account overlay.
func WeeklyAverages(records []Dated, today time.Time) []models.YearSeries {
	return buildSeries(records, today, avgValue)
}

func buildSeries(records []Dated, today time.Time, value seriesValue) []models.YearSeries {
	years, anchors := foldWeekly(records)
	if len(years) == 0 {
		return nil
	}
	currentYear := anchors.Assign(today)

	out := make([]models.YearSeries, 0, len(years))
	for year, weeks := range years {
		length := 0
		for week := range weeks {
			if week > length {
				length = week
			}
		}
		if year == currentYear {
			length = completedWeeks(year, today)
		}
		if length <= 0 {
			continue
		}
		series := models.YearSeries{Year: year, Weeks: make([]*float64, length)}
		for week, b := range weeks {
			if week < 1 || week > length {
				continue
			}
			v := value(b)
			series.Weeks[week-1] = &v
		}
		out = append(out, series)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Year < out[j].Year })
	return out
}

// completedWeeks returns the highest week number of year whose start Monday
// is strictly before the start of the week containing today.
func completedWeeks(year int, today time.Time) int {
	days := int(calendar.WeekStart(today).Sub(calendar.YearFirstWeekStart(year)) / (24 * time.Hour))
	if days < 0 {
		return 0
	}
	return days / 7
}

// WeekPoints merges the payment and delinquency inputs into the sparse
// ordered weekly series consumed by the metrics calculator: one entry per
// week that has at least one contributing record from either input, ascending
// by week start.
func WeekPoints(payments, openAccounts []Dated) []models.WeekPoint {
	type acc struct {
		payments float64
		open     bucket
	}
	weeks := make(map[time.Time]*acc)
	get := func(d time.Time) *acc {
		ws := calendar.WeekStart(d)
		a := weeks[ws]
		if a == nil {
			a = &acc{}
			weeks[ws] = a
		}
		return a
	}
	for _, p := range payments {
		get(p.Date).payments += p.Value
	}
	for _, o := range openAccounts {
		a := get(o.Date)
		a.open.sum += o.Value
		a.open.count++
	}

	out := make([]models.WeekPoint, 0, len(weeks))
	for ws, a := range weeks {
		out = append(out, models.WeekPoint{
			WeekStart:       ws,
			TotalPayments:   a.payments,
			AvgOpenAccounts: avgValue(&a.open),
		})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].WeekStart.Before(out[j].WeekStart) })
	return out
}
