package models

import "time"

// DailyRecord is one logged day of collections activity. Rows are immutable
// once fetched; the store owns them and they are only written through the
// explicit daily-log upsert.
type DailyRecord struct {
	Date       time.Time `json:"date"`
	Payments   float64   `json:"payments"`
	LateFees   float64   `json:"late_fees"`
	BOAPortion float64   `json:"boa_portion"`
}

// Total is the day's collected total.
func (r DailyRecord) Total() float64 {
	return r.Payments + r.LateFees
}

// DelinquencyRecord is one logged day of account-status counts. Overdue is
// expected to stay at or below open, but violations are tolerated downstream
// (they show as a rate above 100%).
type DelinquencyRecord struct {
	Date            time.Time `json:"date"`
	OpenAccounts    float64   `json:"open_accounts"`
	OverdueAccounts float64   `json:"overdue_accounts"`
}
