// Package report builds the end-of-day shareable text digest: what sold, what
// came in, what moved through the shop, and the inventory footer counts. The
// digest is constructed fresh per day and discarded once the text is copied.
package report

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/hdmotors/dealer-service/internal/models"
)

// Inputs are the already-fetched query results the digest is built from. The
// week-to-date slices exist only to assign weekly sequence numbers; they are
// expected in original fetch order, which acts as the tie-break for same-day
// entries.
type Inputs struct {
	Today              time.Time
	SoldToday          []models.Sale
	SoldWeekToDate     []models.Sale
	ReceivedToday      []models.Vehicle
	ReceivedWeekToDate []models.Vehicle
	StatusLogsToday    []models.StatusLog
	Inventory          []models.Vehicle
}

// Entry is one sold or received line with its 1-based rank within the week.
type Entry struct {
	Label       string
	WeeklyIndex int
}

// Digest holds the categorized buckets and footer counts.
type Digest struct {
	Sold         []Entry
	ReceivedNew  []Entry
	Repairs      []string
	Trash        []string
	ReceivedBack []string
	Deposit      []string

	TotalInventory int
	BHPHCount      int
	CashCount      int
}

// Build categorizes the day's activity. Status transitions that match none of
// the known patterns are ignored.
func Build(in Inputs) Digest {
	var d Digest

	soldRank := saleRanks(in.SoldWeekToDate)
	for _, s := range in.SoldToday {
		d.Sold = append(d.Sold, Entry{Label: s.Vehicle.Label(), WeeklyIndex: soldRank[s.ID]})
	}

	recvRank := vehicleRanks(in.ReceivedWeekToDate)
	for _, v := range in.ReceivedToday {
		d.ReceivedNew = append(d.ReceivedNew, Entry{Label: v.Label(), WeeklyIndex: recvRank[v.ID]})
	}

	for _, l := range in.StatusLogsToday {
		label := l.Vehicle.Label()
		switch {
		case l.NewStatus == models.StatusRepairs:
			d.Repairs = append(d.Repairs, label)
		case l.NewStatus == models.StatusTrash || l.NewStatus == models.StatusSentToNashville:
			d.Trash = append(d.Trash, label)
		case l.PreviousStatus == models.StatusRepairs &&
			(l.NewStatus == models.StatusAvailable || l.NewStatus == models.StatusAvailablePendingTitle):
			d.ReceivedBack = append(d.ReceivedBack, label)
		case l.NewStatus == models.StatusDeposit:
			d.Deposit = append(d.Deposit, label)
		}
	}

	d.TotalInventory = len(in.Inventory)
	for _, v := range in.Inventory {
		switch v.Financing {
		case models.FinancingBHPH:
			d.BHPHCount++
		case models.FinancingCash:
			d.CashCount++
		}
	}
	return d
}

// saleRanks maps sale ID to its 1-based rank when the week-to-date sales are
// sorted ascending by date, ties kept in fetch order.
func saleRanks(sales []models.Sale) map[int64]int {
	sorted := append([]models.Sale(nil), sales...)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].Date.Before(sorted[j].Date) })
	ranks := make(map[int64]int, len(sorted))
	for i, s := range sorted {
		ranks[s.ID] = i + 1
	}
	return ranks
}

func vehicleRanks(vehicles []models.Vehicle) map[int64]int {
	sorted := append([]models.Vehicle(nil), vehicles...)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].CreatedAt.Before(sorted[j].CreatedAt) })
	ranks := make(map[int64]int, len(sorted))
	for i, v := range sorted {
		ranks[v.ID] = i + 1
	}
	return ranks
}

// Text renders the digest in its fixed section order, omitting empty
// sections. Received merges new arrivals with shop returns.
func (d Digest) Text() string {
	var sections []string

	if len(d.Sold) > 0 {
		sections = append(sections, section("Sold", entryLines("-", d.Sold)))
	}
	if len(d.Deposit) > 0 {
		sections = append(sections, section("Deposit", d.Deposit))
	}
	received := entryLines("+", d.ReceivedNew)
	for _, label := range d.ReceivedBack {
		received = append(received, "+"+label)
	}
	if len(received) > 0 {
		sections = append(sections, section("Received", received))
	}
	if len(d.Repairs) > 0 {
		sections = append(sections, section("Sent to Shop", prefixLines("-", d.Repairs)))
	}
	if len(d.Trash) > 0 {
		sections = append(sections, section("To Nashville", prefixLines("-", d.Trash)))
	}

	sections = append(sections, fmt.Sprintf("Total inventory: %d (BHPH %d / Cash %d)",
		d.TotalInventory, d.BHPHCount, d.CashCount))

	return strings.Join(sections, "\n\n")
}

func section(title string, lines []string) string {
	return title + ":\n" + strings.Join(lines, "\n")
}

func entryLines(prefix string, entries []Entry) []string {
	lines := make([]string, 0, len(entries))
	for _, e := range entries {
		line := prefix + e.Label
		if e.WeeklyIndex > 0 {
			line += fmt.Sprintf(" (#%d this week)", e.WeeklyIndex)
		}
		lines = append(lines, line)
	}
	return lines
}

func prefixLines(prefix string, labels []string) []string {
	lines := make([]string, 0, len(labels))
	for _, l := range labels {
		lines = append(lines, prefix+l)
	}
	return lines
}
