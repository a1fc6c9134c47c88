package model

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// InvoiceStatus enum
type InvoiceStatus string

const (
	StatusUnpaid InvoiceStatus = "unpaid"
	StatusPaid   InvoiceStatus = "paid"
)

// Valid reports whether s is one of the known statuses.
func (s InvoiceStatus) Valid() bool {
	return s == StatusUnpaid || s == StatusPaid
}

// Toggled returns the opposite status (paid <-> unpaid).
func (s InvoiceStatus) Toggled() InvoiceStatus {
	if s == StatusPaid {
		return StatusUnpaid
	}
	return StatusPaid
}

// DueDateLayout is the storage format of Invoice.DueDate.
const DueDateLayout = "2006-01-02"

// Invoice is a bill issued by a user to one of their clients.
// VATAmount and Total are derived from Amount and VATPercentage and are never set directly.
type Invoice struct {
	ID            uuid.UUID       `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	UserID        uuid.UUID       `gorm:"type:uuid;not null;index" json:"userId"`
	ClientName    string          `gorm:"type:varchar(255);not null" json:"clientName"`
	ClientEmail   string          `gorm:"type:varchar(255);not null" json:"clientEmail"`
	Amount        decimal.Decimal `gorm:"type:decimal(18,2);not null" json:"amount"`
	VATPercentage decimal.Decimal `gorm:"type:decimal(5,2);not null;default:0" json:"vatPercentage"`
	VATAmount     decimal.Decimal `gorm:"type:decimal(18,2);not null;default:0" json:"vatAmount"`
	Total         decimal.Decimal `gorm:"type:decimal(18,2);not null" json:"total"`
	DueDate       string          `gorm:"type:varchar(32);not null" json:"dueDate"` // YYYY-MM-DD
	Status        InvoiceStatus   `gorm:"type:varchar(10);not null;default:'unpaid';index" json:"status"`
	CreatedAt     time.Time       `gorm:"index" json:"createdAt"`
	UpdatedAt     time.Time       `json:"updatedAt"`
}

// Due parses DueDate. Records written by this service always parse; rows imported
// from elsewhere may not.
func (inv Invoice) Due() (time.Time, error) {
	return ParseDueDate(inv.DueDate)
}

// ParseDueDate accepts a plain calendar date or a full RFC3339 timestamp and
// returns midnight UTC of that calendar day.
func ParseDueDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, fmt.Errorf("due date is empty")
	}
	if t, err := time.Parse(DueDateLayout, s); err == nil {
		return t, nil
	}
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("due date %q is not an ISO 8601 date", s)
	}
	return DateOf(t), nil
}

// DateOf truncates t to its calendar day, expressed as midnight UTC.
func DateOf(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
