package service

import (
	"fmt"
	"sort"
	"time"

	"github.com/holuwadafe/maglo-finance/internal/model"

	"github.com/shopspring/decimal"
)

// UpcomingWindowDays is how far ahead an unpaid invoice counts as upcoming, inclusive.
const UpcomingWindowDays = 7

type monthKey struct {
	year  int
	month time.Month
}

// Classify splits invoices by status and due date relative to today, compared by UTC
// calendar day like the stored due dates.
// Invoices whose due date does not parse are left out of every date-based view and
// returned in Anomalies.
func Classify(invoices []model.Invoice, today time.Time) model.PaymentsSummary {
	day := model.DateOf(today.UTC())
	summary := model.PaymentsSummary{
		Paid:           []model.Invoice{},
		Unpaid:         []model.Invoice{},
		Overdue:        []model.DueInvoice{},
		Upcoming:       []model.DueInvoice{},
		MonthlyVAT:     []model.MonthlyVAT{},
		TotalOutputVAT: decimal.Zero,
		TotalPayable:   decimal.Zero,
	}
	monthly := make(map[monthKey]decimal.Decimal)

	for _, inv := range invoices {
		switch inv.Status {
		case model.StatusPaid:
			summary.Paid = append(summary.Paid, inv)
			summary.TotalOutputVAT = summary.TotalOutputVAT.Add(inv.VATAmount)

			due, err := inv.Due()
			if err != nil {
				summary.Anomalies = append(summary.Anomalies, inv)
				continue
			}
			key := monthKey{year: due.Year(), month: due.Month()}
			monthly[key] = monthly[key].Add(inv.VATAmount)

		case model.StatusUnpaid:
			summary.Unpaid = append(summary.Unpaid, inv)
			summary.TotalPayable = summary.TotalPayable.Add(inv.Total)

			due, err := inv.Due()
			if err != nil {
				summary.Anomalies = append(summary.Anomalies, inv)
				continue
			}
			days := daysBetween(day, due)
			switch {
			case days < 0:
				summary.Overdue = append(summary.Overdue, model.DueInvoice{Invoice: inv, Days: -days})
			case days <= UpcomingWindowDays:
				summary.Upcoming = append(summary.Upcoming, model.DueInvoice{Invoice: inv, Days: days})
			}
		}
	}

	sort.SliceStable(summary.Upcoming, func(i, j int) bool {
		return summary.Upcoming[i].Days < summary.Upcoming[j].Days
	})

	for key, vat := range monthly {
		summary.MonthlyVAT = append(summary.MonthlyVAT, model.MonthlyVAT{
			Year:      key.year,
			Month:     int(key.month),
			Label:     fmt.Sprintf("%s %d", key.month, key.year),
			VATAmount: vat,
		})
	}
	sort.Slice(summary.MonthlyVAT, func(i, j int) bool {
		a, b := summary.MonthlyVAT[i], summary.MonthlyVAT[j]
		if a.Year != b.Year {
			return a.Year > b.Year
		}
		return a.Month > b.Month
	})

	return summary
}

// daysBetween counts whole calendar days from a to b; both must be midnight UTC.
func daysBetween(a, b time.Time) int {
	return int(b.Sub(a).Hours() / 24)
}
