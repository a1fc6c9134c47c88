package service

import (
	"context"
	"testing"

	"github.com/holuwadafe/maglo-finance/internal/model"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetDashboardStats_Example(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	f := newInvoiceFixture(t)
	userID := uuid.New()

	for _, tc := range []struct {
		amount string
		status model.InvoiceStatus
	}{
		{"200.00", model.StatusPaid},
		{"300.50", model.StatusPaid},
		{"150.25", model.StatusUnpaid},
	} {
		in := validInput()
		in.Amount = ptr(decimal.RequireFromString(tc.amount))
		in.VATPercentage = nil
		in.Status = tc.status
		_, err := f.svc.CreateInvoice(ctx, userID, in)
		require.NoError(t, err)
	}

	stats, err := f.stats.GetDashboardStats(ctx, userID)
	require.NoError(t, err)

	assert.Equal(t, 3, stats.TotalInvoices)
	assert.Equal(t, "500.50", stats.TotalPaid.Decimal().StringFixed(2))
	assert.Equal(t, "150.25", stats.PendingPayments.Decimal().StringFixed(2))
	assert.True(t, stats.TotalVAT.Decimal().IsZero())
}

func TestGetDashboardStats_NoInvoices(t *testing.T) {
	t.Parallel()
	f := newInvoiceFixture(t)

	stats, err := f.stats.GetDashboardStats(context.Background(), uuid.New())
	require.NoError(t, err)
	assert.Equal(t, 0, stats.TotalInvoices)
	assert.True(t, stats.TotalPaid.Decimal().IsZero())
}

func TestGetDashboardStats_BackendUnavailable(t *testing.T) {
	t.Parallel()
	f := newInvoiceFixture(t)
	f.repo.SetUnavailable(true)

	_, err := f.stats.GetDashboardStats(context.Background(), uuid.New())
	assert.ErrorIs(t, err, model.ErrBackendUnavailable)
}

func TestGetPaymentsSummary(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	f := newInvoiceFixture(t) // today is 2024-05-10
	userID := uuid.New()

	create := func(dueDate string, status model.InvoiceStatus) InvoiceResponse {
		in := validInput()
		in.DueDate = dueDate
		in.Status = status
		res, err := f.svc.CreateInvoice(ctx, userID, in)
		require.NoError(t, err)
		return res
	}
	overdue := create("2024-05-05", model.StatusUnpaid)
	upcoming := create("2024-05-15", model.StatusUnpaid)
	create("2024-06-01", model.StatusUnpaid)
	create("2024-04-03", model.StatusPaid)
	create("2024-03-03", model.StatusPaid)

	summary, err := f.stats.GetPaymentsSummary(ctx, userID, 0)
	require.NoError(t, err)

	require.Len(t, summary.Overdue, 1)
	assert.Equal(t, overdue.ID, summary.Overdue[0].ID)
	require.NotNil(t, summary.Overdue[0].DaysOverdue)
	assert.Equal(t, 5, *summary.Overdue[0].DaysOverdue)
	assert.Nil(t, summary.Overdue[0].DaysUntilDue)

	require.Len(t, summary.Upcoming, 1)
	assert.Equal(t, upcoming.ID, summary.Upcoming[0].ID)
	require.NotNil(t, summary.Upcoming[0].DaysUntilDue)
	assert.Equal(t, 5, *summary.Upcoming[0].DaysUntilDue)

	assert.Len(t, summary.Paid, 2)
	assert.Len(t, summary.Unpaid, 3)
	assert.Equal(t, "3225.00", summary.TotalPayable.Decimal().StringFixed(2))
	assert.Equal(t, "150.00", summary.TotalOutputVAT.Decimal().StringFixed(2))

	require.Len(t, summary.MonthlyVAT, 2)
	assert.Equal(t, "April 2024", summary.MonthlyVAT[0].Month)
	assert.Equal(t, "March 2024", summary.MonthlyVAT[1].Month)

	limited, err := f.stats.GetPaymentsSummary(ctx, userID, 1)
	require.NoError(t, err)
	require.Len(t, limited.MonthlyVAT, 1)
	assert.Equal(t, "April 2024", limited.MonthlyVAT[0].Month)
}

func TestGetPaymentsSummary_ReflectsToggle(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	f := newInvoiceFixture(t)
	userID := uuid.New()

	in := validInput()
	in.DueDate = "2024-05-01"
	created, err := f.svc.CreateInvoice(ctx, userID, in)
	require.NoError(t, err)

	summary, err := f.stats.GetPaymentsSummary(ctx, userID, 0)
	require.NoError(t, err)
	require.Len(t, summary.Overdue, 1)

	_, err = f.svc.ToggleStatus(ctx, userID, uuid.MustParse(created.ID))
	require.NoError(t, err)

	summary, err = f.stats.GetPaymentsSummary(ctx, userID, 0)
	require.NoError(t, err)
	assert.Empty(t, summary.Overdue)
	require.Len(t, summary.MonthlyVAT, 1)
	assert.Equal(t, "May 2024", summary.MonthlyVAT[0].Month)
}
