package service

import (
	"context"
	"fmt"
	"time"

	"github.com/holuwadafe/maglo-finance/internal/model"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// --- DTOs ---

type DashboardStatsResponse struct {
	TotalInvoices   int   `json:"totalInvoices"`
	TotalPaid       Money `json:"totalPaid"`
	PendingPayments Money `json:"pendingPayments"`
	TotalVAT        Money `json:"totalVAT"`
}

type DueInvoiceResponse struct {
	InvoiceResponse
	DaysOverdue  *int `json:"daysOverdue,omitempty"`
	DaysUntilDue *int `json:"daysUntilDue,omitempty"`
}

type MonthlyVATResponse struct {
	Month     string `json:"month"`
	VATAmount Money  `json:"vatAmount"`
}

type PaymentsSummaryResponse struct {
	TotalOutputVAT Money                `json:"totalOutputVAT"`
	TotalPayable   Money                `json:"totalPayable"`
	Paid           []InvoiceResponse    `json:"paid"`
	Unpaid         []InvoiceResponse    `json:"unpaid"`
	Overdue        []DueInvoiceResponse `json:"overdue"`
	Upcoming       []DueInvoiceResponse `json:"upcoming"`
	MonthlyVAT     []MonthlyVATResponse `json:"monthlyVAT"`
}

// --- Interface ---

type StatisticsService interface {
	GetDashboardStats(ctx context.Context, userID uuid.UUID) (DashboardStatsResponse, error)
	// GetPaymentsSummary classifies the user's invoices against today. months > 0 keeps
	// only that many of the most recent monthly VAT buckets.
	GetPaymentsSummary(ctx context.Context, userID uuid.UUID, months int) (PaymentsSummaryResponse, error)
}

type statisticsService struct {
	ledgers *LedgerStore
	now     func() time.Time
	logger  zerolog.Logger
}

func NewStatisticsService(ledgers *LedgerStore, now func() time.Time, logger zerolog.Logger) StatisticsService {
	if now == nil {
		now = func() time.Time { return time.Now().UTC() }
	}
	return &statisticsService{
		ledgers: ledgers,
		now:     now,
		logger:  logger.With().Str("component", "statistics_service").Logger(),
	}
}

func (s *statisticsService) GetDashboardStats(ctx context.Context, userID uuid.UUID) (DashboardStatsResponse, error) {
	ledger, err := s.ledgers.Get(ctx, userID)
	if err != nil {
		return DashboardStatsResponse{}, fmt.Errorf("failed to compute statistics: %w", err)
	}
	return toDashboardStatsResponse(ledger.Stats()), nil
}

func (s *statisticsService) GetPaymentsSummary(ctx context.Context, userID uuid.UUID, months int) (PaymentsSummaryResponse, error) {
	ledger, err := s.ledgers.Get(ctx, userID)
	if err != nil {
		return PaymentsSummaryResponse{}, fmt.Errorf("failed to compute payments summary: %w", err)
	}

	summary := Classify(ledger.Invoices(), s.now())
	for _, inv := range summary.Anomalies {
		s.logger.Warn().
			Str("user_id", userID.String()).
			Str("invoice_id", inv.ID.String()).
			Str("due_date", inv.DueDate).
			Msg("invoice has an unparseable due date")
	}
	if months > 0 && len(summary.MonthlyVAT) > months {
		summary.MonthlyVAT = summary.MonthlyVAT[:months]
	}

	return toPaymentsSummaryResponse(summary), nil
}

// --- Mapping ---

func toDashboardStatsResponse(stats model.DashboardStats) DashboardStatsResponse {
	return DashboardStatsResponse{
		TotalInvoices:   stats.TotalInvoices,
		TotalPaid:       Money(stats.TotalPaid),
		PendingPayments: Money(stats.PendingPayments),
		TotalVAT:        Money(stats.TotalVAT),
	}
}

func toPaymentsSummaryResponse(summary model.PaymentsSummary) PaymentsSummaryResponse {
	res := PaymentsSummaryResponse{
		TotalOutputVAT: Money(summary.TotalOutputVAT),
		TotalPayable:   Money(summary.TotalPayable),
		Paid:           make([]InvoiceResponse, 0, len(summary.Paid)),
		Unpaid:         make([]InvoiceResponse, 0, len(summary.Unpaid)),
		Overdue:        make([]DueInvoiceResponse, 0, len(summary.Overdue)),
		Upcoming:       make([]DueInvoiceResponse, 0, len(summary.Upcoming)),
		MonthlyVAT:     make([]MonthlyVATResponse, 0, len(summary.MonthlyVAT)),
	}
	for _, inv := range summary.Paid {
		res.Paid = append(res.Paid, toInvoiceResponse(inv))
	}
	for _, inv := range summary.Unpaid {
		res.Unpaid = append(res.Unpaid, toInvoiceResponse(inv))
	}
	for _, d := range summary.Overdue {
		days := d.Days
		res.Overdue = append(res.Overdue, DueInvoiceResponse{InvoiceResponse: toInvoiceResponse(d.Invoice), DaysOverdue: &days})
	}
	for _, d := range summary.Upcoming {
		days := d.Days
		res.Upcoming = append(res.Upcoming, DueInvoiceResponse{InvoiceResponse: toInvoiceResponse(d.Invoice), DaysUntilDue: &days})
	}
	for _, m := range summary.MonthlyVAT {
		res.MonthlyVAT = append(res.MonthlyVAT, MonthlyVATResponse{Month: m.Label, VATAmount: Money(m.VATAmount)})
	}
	return res
}
