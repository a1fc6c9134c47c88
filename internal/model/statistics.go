package model

import (
	"github.com/shopspring/decimal"
)

// DashboardStats is recomputed from a user's invoices after every change. Never persisted.
type DashboardStats struct {
	TotalInvoices   int             `json:"totalInvoices"`
	TotalPaid       decimal.Decimal `json:"totalPaid"`       // sum of total over paid
	PendingPayments decimal.Decimal `json:"pendingPayments"` // sum of total over unpaid
	TotalVAT        decimal.Decimal `json:"totalVAT"`        // sum of vatAmount over paid
}

// Equal compares stats by value; decimal.Decimal is not comparable with ==.
func (s DashboardStats) Equal(o DashboardStats) bool {
	return s.TotalInvoices == o.TotalInvoices &&
		s.TotalPaid.Equal(o.TotalPaid) &&
		s.PendingPayments.Equal(o.PendingPayments) &&
		s.TotalVAT.Equal(o.TotalVAT)
}

// MonthlyVAT is the VAT collected on paid invoices due in one calendar month.
type MonthlyVAT struct {
	Year      int             `json:"year"`
	Month     int             `json:"month"` // 1-12
	Label     string          `json:"label"` // e.g. "May 2024"
	VATAmount decimal.Decimal `json:"vatAmount"`
}

// DueInvoice pairs an unpaid invoice with its distance to the due date in whole days.
type DueInvoice struct {
	Invoice
	Days int
}

// PaymentsSummary is the read-time classification of a user's invoices against "today".
// Overdue and upcoming are labels computed on demand, they are never stored.
type PaymentsSummary struct {
	Paid           []Invoice
	Unpaid         []Invoice
	Overdue        []DueInvoice // Days = days overdue
	Upcoming       []DueInvoice // Days = days until due, sorted by due date
	MonthlyVAT     []MonthlyVAT // most recent month first
	TotalOutputVAT decimal.Decimal
	TotalPayable   decimal.Decimal
	// Anomalies lists invoices whose due date could not be parsed.
	Anomalies []Invoice
}
