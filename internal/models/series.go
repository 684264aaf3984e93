package models

import "time"

// WeekPoint is one completed aggregation bucket: the Monday the week starts
// on, the payment total for the week, and the mean open-account count across
// the week's delinquency rows. Produced fresh on every aggregation run.
type WeekPoint struct {
	WeekStart       time.Time `json:"week_start"`
	TotalPayments   float64   `json:"total_payments"`
	AvgOpenAccounts float64   `json:"avg_open_accounts"`
}

// YearSeries is one fiscal year's dense chart series. Weeks is indexed by
// week number minus one; weeks with no contributing records are nil so the
// chart renderer can gap or connect them instead of plotting zero.
type YearSeries struct {
	Year  int        `json:"year"`
	Weeks []*float64 `json:"weeks"`
}
