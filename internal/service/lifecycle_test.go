package service

import (
	"testing"
	"time"

	"github.com/holuwadafe/maglo-finance/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var today = time.Date(2024, time.May, 10, 15, 30, 0, 0, time.UTC)

func due(status model.InvoiceStatus, dueDate, total, vat string) model.Invoice {
	inv := invoiceWith(status, total, vat)
	inv.DueDate = dueDate
	return inv
}

func TestClassify_OverdueAndUpcoming(t *testing.T) {
	t.Parallel()

	overdue := due(model.StatusUnpaid, "2024-05-05", "100.00", "0.00")
	upcoming := due(model.StatusUnpaid, "2024-05-15", "200.00", "0.00")
	later := due(model.StatusUnpaid, "2024-06-01", "300.00", "0.00")

	s := Classify([]model.Invoice{overdue, upcoming, later}, today)

	require.Len(t, s.Overdue, 1)
	assert.Equal(t, overdue.ID, s.Overdue[0].ID)
	assert.Equal(t, 5, s.Overdue[0].Days)

	require.Len(t, s.Upcoming, 1)
	assert.Equal(t, upcoming.ID, s.Upcoming[0].ID)
	assert.Equal(t, 5, s.Upcoming[0].Days)

	assert.Len(t, s.Unpaid, 3)
	assert.Equal(t, "600.00", s.TotalPayable.StringFixed(2))
	assert.Empty(t, s.Anomalies)
}

func TestClassify_Boundaries(t *testing.T) {
	t.Parallel()

	dueToday := due(model.StatusUnpaid, "2024-05-10", "1.00", "0.00")
	inSeven := due(model.StatusUnpaid, "2024-05-17", "1.00", "0.00")
	inEight := due(model.StatusUnpaid, "2024-05-18", "1.00", "0.00")
	yesterday := due(model.StatusUnpaid, "2024-05-09", "1.00", "0.00")

	s := Classify([]model.Invoice{inSeven, dueToday, inEight, yesterday}, today)

	require.Len(t, s.Upcoming, 2)
	assert.Equal(t, dueToday.ID, s.Upcoming[0].ID, "sorted by days until due")
	assert.Equal(t, 0, s.Upcoming[0].Days)
	assert.Equal(t, inSeven.ID, s.Upcoming[1].ID)
	assert.Equal(t, 7, s.Upcoming[1].Days)

	require.Len(t, s.Overdue, 1)
	assert.Equal(t, 1, s.Overdue[0].Days)
}

func TestClassify_PaidNeverOverdue(t *testing.T) {
	t.Parallel()

	paid := due(model.StatusPaid, "2024-01-01", "110.00", "10.00")

	s := Classify([]model.Invoice{paid}, today)

	assert.Len(t, s.Paid, 1)
	assert.Empty(t, s.Overdue)
	assert.Empty(t, s.Upcoming)
	assert.Equal(t, "10.00", s.TotalOutputVAT.StringFixed(2))
	assert.True(t, s.TotalPayable.IsZero())
}

func TestClassify_MonthlyVAT(t *testing.T) {
	t.Parallel()

	invoices := []model.Invoice{
		due(model.StatusPaid, "2024-05-02", "110.00", "10.00"),
		due(model.StatusPaid, "2024-05-28", "105.50", "5.50"),
		due(model.StatusPaid, "2023-12-31", "101.00", "1.00"),
		due(model.StatusPaid, "2024-02-10", "120.00", "20.00"),
		due(model.StatusUnpaid, "2024-05-20", "999.00", "99.00"),
	}

	s := Classify(invoices, today)

	require.Len(t, s.MonthlyVAT, 3)
	assert.Equal(t, "May 2024", s.MonthlyVAT[0].Label)
	assert.Equal(t, "15.50", s.MonthlyVAT[0].VATAmount.StringFixed(2))
	assert.Equal(t, "February 2024", s.MonthlyVAT[1].Label)
	assert.Equal(t, "December 2023", s.MonthlyVAT[2].Label)
	assert.Equal(t, 2023, s.MonthlyVAT[2].Year)
	assert.Equal(t, 12, s.MonthlyVAT[2].Month)
	assert.Equal(t, "36.50", s.TotalOutputVAT.StringFixed(2))
}

func TestClassify_UnparseableDueDate(t *testing.T) {
	t.Parallel()

	bad := due(model.StatusUnpaid, "next tuesday", "40.00", "0.00")
	badPaid := due(model.StatusPaid, "", "12.00", "2.00")

	s := Classify([]model.Invoice{bad, badPaid}, today)

	assert.Empty(t, s.Overdue)
	assert.Empty(t, s.Upcoming)
	assert.Empty(t, s.MonthlyVAT)
	require.Len(t, s.Anomalies, 2)
	// Status views and totals still include them.
	assert.Len(t, s.Unpaid, 1)
	assert.Len(t, s.Paid, 1)
	assert.Equal(t, "40.00", s.TotalPayable.StringFixed(2))
	assert.Equal(t, "2.00", s.TotalOutputVAT.StringFixed(2))
}

func TestClassify_TimestampDueDate(t *testing.T) {
	t.Parallel()

	inv := due(model.StatusUnpaid, "2024-05-12T23:59:00Z", "1.00", "0.00")

	s := Classify([]model.Invoice{inv}, today)

	require.Len(t, s.Upcoming, 1)
	assert.Equal(t, 2, s.Upcoming[0].Days)
}

func TestClassify_TodayIsTheUTCDay(t *testing.T) {
	t.Parallel()

	// 01:00 on May 11 in Kiribati is still May 10 in UTC.
	kiribati := time.FixedZone("LINT", 14*60*60)
	now := time.Date(2024, time.May, 11, 1, 0, 0, 0, kiribati)
	inv := due(model.StatusUnpaid, "2024-05-10", "1.00", "0.00")

	s := Classify([]model.Invoice{inv}, now)

	assert.Empty(t, s.Overdue)
	require.Len(t, s.Upcoming, 1)
	assert.Equal(t, 0, s.Upcoming[0].Days)
}

func TestClassify_Empty(t *testing.T) {
	t.Parallel()

	s := Classify(nil, today)

	assert.NotNil(t, s.Paid)
	assert.NotNil(t, s.Overdue)
	assert.NotNil(t, s.MonthlyVAT)
	assert.Empty(t, s.Upcoming)
}
