package service

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/holuwadafe/maglo-finance/internal/model"
	"github.com/holuwadafe/maglo-finance/internal/repository"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

// --- DTOs ---

type CreateInvoiceInput struct {
	ClientName    string              `json:"clientName" validate:"required,max=255"`
	ClientEmail   string              `json:"clientEmail" validate:"required,email"`
	Amount        *decimal.Decimal    `json:"amount" validate:"required"`
	VATPercentage *decimal.Decimal    `json:"vatPercentage"` // optional, defaults to 0
	DueDate       string              `json:"dueDate" validate:"required"`
	Status        model.InvoiceStatus `json:"status" validate:"omitempty,oneof=paid unpaid"`
}

// InvoicePatch lists the fields an update may change. A nil field is left untouched.
// id, userId, vatAmount and total are not patchable.
type InvoicePatch struct {
	ClientName    *string              `json:"clientName"`
	ClientEmail   *string              `json:"clientEmail"`
	Amount        *decimal.Decimal     `json:"amount"`
	VATPercentage *decimal.Decimal     `json:"vatPercentage"`
	DueDate       *string              `json:"dueDate"`
	Status        *model.InvoiceStatus `json:"status"`
}

type InvoiceResponse struct {
	ID            string `json:"id"`
	UserID        string `json:"userId"`
	ClientName    string `json:"clientName"`
	ClientEmail   string `json:"clientEmail"`
	Amount        Money  `json:"amount"`
	VATPercentage Money  `json:"vatPercentage"`
	VATAmount     Money  `json:"vatAmount"`
	Total         Money  `json:"total"`
	DueDate       string `json:"dueDate"`
	Status        string `json:"status"`
	CreatedAt     string `json:"createdAt"`
	UpdatedAt     string `json:"updatedAt"`
}

// EventStatsUpdated is published to a user's dashboards after each successful change.
const EventStatsUpdated = "stats.updated"

// Notifier pushes events to the connected clients of one user.
type Notifier interface {
	Publish(userID uuid.UUID, event string, payload interface{})
}

// --- Interface ---

type InvoiceService interface {
	CreateInvoice(ctx context.Context, userID uuid.UUID, in CreateInvoiceInput) (InvoiceResponse, error)
	GetInvoice(ctx context.Context, userID, id uuid.UUID) (InvoiceResponse, error)
	ListInvoices(ctx context.Context, userID uuid.UUID) ([]InvoiceResponse, error)
	UpdateInvoice(ctx context.Context, userID, id uuid.UUID, patch InvoicePatch) (InvoiceResponse, error)
	ToggleStatus(ctx context.Context, userID, id uuid.UUID) (InvoiceResponse, error)
	DeleteInvoice(ctx context.Context, userID, id uuid.UUID) error
}

type invoiceService struct {
	invoiceRepo repository.InvoiceRepository
	auditRepo   repository.AuditRepository
	txManager   repository.TransactionManager
	ledgers     *LedgerStore
	notifier    Notifier
	logger      zerolog.Logger
}

func NewInvoiceService(
	invoiceRepo repository.InvoiceRepository,
	auditRepo repository.AuditRepository,
	txManager repository.TransactionManager,
	ledgers *LedgerStore,
	notifier Notifier,
	logger zerolog.Logger,
) InvoiceService {
	return &invoiceService{
		invoiceRepo: invoiceRepo,
		auditRepo:   auditRepo,
		txManager:   txManager,
		ledgers:     ledgers,
		notifier:    notifier,
		logger:      logger.With().Str("component", "invoice_service").Logger(),
	}
}

// --- Implementation ---

func (s *invoiceService) CreateInvoice(ctx context.Context, userID uuid.UUID, in CreateInvoiceInput) (InvoiceResponse, error) {
	invoice, err := newInvoice(userID, in)
	if err != nil {
		return InvoiceResponse{}, err
	}

	err = s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		if err := s.invoiceRepo.Create(txCtx, &invoice); err != nil {
			return fmt.Errorf("failed to create invoice: %w", err)
		}
		return s.audit(txCtx, userID, model.ActionCreateInvoice, invoice, map[string]interface{}{
			"amount":        invoice.Amount.StringFixed(2),
			"vatPercentage": invoice.VATPercentage.StringFixed(2),
			"total":         invoice.Total.StringFixed(2),
			"status":        invoice.Status,
		})
	})
	if err != nil {
		return InvoiceResponse{}, err
	}

	s.afterMutation(ctx, userID, func(l *Ledger) bool {
		l.Add(invoice)
		return true
	})
	s.logger.Info().Str("user_id", userID.String()).Str("invoice_id", invoice.ID.String()).Msg("invoice created")

	return toInvoiceResponse(invoice), nil
}

func (s *invoiceService) GetInvoice(ctx context.Context, userID, id uuid.UUID) (InvoiceResponse, error) {
	invoice, err := s.findOwned(ctx, userID, id)
	if err != nil {
		return InvoiceResponse{}, err
	}
	return toInvoiceResponse(*invoice), nil
}

func (s *invoiceService) ListInvoices(ctx context.Context, userID uuid.UUID) ([]InvoiceResponse, error) {
	gen := s.ledgers.Generation()
	invoices, err := s.invoiceRepo.ListByOwner(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch invoices: %w", err)
	}
	s.ledgers.Seed(userID, gen, invoices)

	result := make([]InvoiceResponse, 0, len(invoices))
	for _, inv := range invoices {
		result = append(result, toInvoiceResponse(inv))
	}
	return result, nil
}

func (s *invoiceService) UpdateInvoice(ctx context.Context, userID, id uuid.UUID, patch InvoicePatch) (InvoiceResponse, error) {
	return s.mutate(ctx, userID, id, model.ActionUpdateInvoice, func(inv *model.Invoice) (map[string]interface{}, error) {
		if err := patch.apply(inv); err != nil {
			return nil, err
		}
		return patch.details(), nil
	})
}

func (s *invoiceService) ToggleStatus(ctx context.Context, userID, id uuid.UUID) (InvoiceResponse, error) {
	return s.mutate(ctx, userID, id, model.ActionToggleInvoiceStatus, func(inv *model.Invoice) (map[string]interface{}, error) {
		from := inv.Status
		inv.Status = inv.Status.Toggled()
		return map[string]interface{}{"from": from, "to": inv.Status}, nil
	})
}

// mutate loads an owned invoice, applies change and saves it together with an audit entry.
func (s *invoiceService) mutate(
	ctx context.Context,
	userID, id uuid.UUID,
	action string,
	change func(inv *model.Invoice) (map[string]interface{}, error),
) (InvoiceResponse, error) {
	var invoice *model.Invoice
	err := s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		var err error
		invoice, err = s.findOwned(txCtx, userID, id)
		if err != nil {
			return err
		}

		details, err := change(invoice)
		if err != nil {
			return err
		}

		if err := s.invoiceRepo.Update(txCtx, invoice); err != nil {
			return fmt.Errorf("failed to update invoice: %w", err)
		}
		return s.audit(txCtx, userID, action, *invoice, details)
	})
	if err != nil {
		return InvoiceResponse{}, err
	}

	updated := *invoice
	s.afterMutation(ctx, userID, func(l *Ledger) bool {
		return l.Replace(updated)
	})

	return toInvoiceResponse(updated), nil
}

func (s *invoiceService) DeleteInvoice(ctx context.Context, userID, id uuid.UUID) error {
	err := s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		invoice, err := s.findOwned(txCtx, userID, id)
		if err != nil {
			return err
		}
		if err := s.invoiceRepo.Delete(txCtx, id); err != nil {
			return fmt.Errorf("failed to delete invoice: %w", err)
		}
		return s.audit(txCtx, userID, model.ActionDeleteInvoice, *invoice, nil)
	})
	if err != nil {
		return err
	}

	s.afterMutation(ctx, userID, func(l *Ledger) bool {
		return l.Remove(id)
	})
	s.logger.Info().Str("user_id", userID.String()).Str("invoice_id", id.String()).Msg("invoice deleted")
	return nil
}

// --- Helpers ---

// findOwned hides invoices of other users behind ErrNotFound.
func (s *invoiceService) findOwned(ctx context.Context, userID, id uuid.UUID) (*model.Invoice, error) {
	invoice, err := s.invoiceRepo.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("invoice %s: %w", id, err)
	}
	if invoice.UserID != userID {
		return nil, fmt.Errorf("invoice %s: %w", id, model.ErrNotFound)
	}
	return invoice, nil
}

func (s *invoiceService) audit(ctx context.Context, userID uuid.UUID, action string, inv model.Invoice, details map[string]interface{}) error {
	payload := "{}"
	if details != nil {
		b, err := json.Marshal(details)
		if err != nil {
			return fmt.Errorf("failed to encode audit details: %w", err)
		}
		payload = string(b)
	}

	entry := model.AuditLog{
		UserID:     userID,
		Action:     action,
		EntityID:   inv.ID.String(),
		EntityName: inv.ClientName,
		Details:    payload,
	}
	if err := s.auditRepo.Log(ctx, &entry); err != nil {
		return fmt.Errorf("failed to write audit log: %w", err)
	}
	return nil
}

// afterMutation brings the user's ledger in line with a committed change and pushes the
// new statistics. A ledger loaded here already contains the change. A cached ledger that
// cannot apply it is reloaded from the repository.
func (s *invoiceService) afterMutation(ctx context.Context, userID uuid.UUID, apply func(l *Ledger) bool) {
	s.ledgers.NoteWrite()
	ledger, loaded, err := s.ledgers.getOrLoad(ctx, userID)
	if err == nil && !loaded && !apply(ledger) {
		s.ledgers.Invalidate(userID)
		ledger, err = s.ledgers.Get(ctx, userID)
	}
	if err != nil {
		s.ledgers.Invalidate(userID)
		s.logger.Warn().Err(err).Str("user_id", userID.String()).Msg("ledger refresh failed after mutation")
		return
	}

	if s.notifier != nil {
		s.notifier.Publish(userID, EventStatsUpdated, toDashboardStatsResponse(ledger.Stats()))
	}
}

func newInvoice(userID uuid.UUID, in CreateInvoiceInput) (model.Invoice, error) {
	in.ClientName = strings.TrimSpace(in.ClientName)
	in.ClientEmail = strings.TrimSpace(in.ClientEmail)

	verr := validateStruct(in)

	vatPercentage := decimal.Zero
	if in.VATPercentage != nil {
		vatPercentage = *in.VATPercentage
	}
	if in.Amount != nil {
		checkAmount(verr, *in.Amount)
	}
	checkVATPercentage(verr, vatPercentage)

	var dueDate string
	if in.DueDate != "" {
		due, err := model.ParseDueDate(in.DueDate)
		if err != nil {
			verr.Add("dueDate", "must be an ISO 8601 date")
		} else {
			dueDate = due.Format(model.DueDateLayout)
		}
	}

	if err := verr.OrNil(); err != nil {
		return model.Invoice{}, err
	}

	status := in.Status
	if status == "" {
		status = model.StatusUnpaid
	}

	vatAmount, total := DeriveVAT(*in.Amount, vatPercentage)
	return model.Invoice{
		UserID:        userID,
		ClientName:    in.ClientName,
		ClientEmail:   in.ClientEmail,
		Amount:        *in.Amount,
		VATPercentage: vatPercentage,
		VATAmount:     vatAmount,
		Total:         total,
		DueDate:       dueDate,
		Status:        status,
	}, nil
}

// apply validates the patch and merges it into inv. Money fields are re-derived when
// amount or vatPercentage is part of the patch. Nothing is written on a validation error.
func (p InvoicePatch) apply(inv *model.Invoice) error {
	verr := &model.ValidationError{}

	var clientName, clientEmail, dueDate string
	if p.ClientName != nil {
		clientName = strings.TrimSpace(*p.ClientName)
		if clientName == "" {
			verr.Add("clientName", "is required")
		}
	}
	if p.ClientEmail != nil {
		clientEmail = strings.TrimSpace(*p.ClientEmail)
		if !isEmail(clientEmail) {
			verr.Add("clientEmail", "must be a valid email address")
		}
	}
	if p.Amount != nil {
		checkAmount(verr, *p.Amount)
	}
	if p.VATPercentage != nil {
		checkVATPercentage(verr, *p.VATPercentage)
	}
	if p.DueDate != nil {
		due, err := model.ParseDueDate(*p.DueDate)
		if err != nil {
			verr.Add("dueDate", "must be an ISO 8601 date")
		} else {
			dueDate = due.Format(model.DueDateLayout)
		}
	}
	if p.Status != nil && !p.Status.Valid() {
		verr.Add("status", "must be one of: paid unpaid")
	}
	if err := verr.OrNil(); err != nil {
		return err
	}

	if p.ClientName != nil {
		inv.ClientName = clientName
	}
	if p.ClientEmail != nil {
		inv.ClientEmail = clientEmail
	}
	if p.DueDate != nil {
		inv.DueDate = dueDate
	}
	if p.Status != nil {
		inv.Status = *p.Status
	}
	if p.Amount != nil || p.VATPercentage != nil {
		if p.Amount != nil {
			inv.Amount = *p.Amount
		}
		if p.VATPercentage != nil {
			inv.VATPercentage = *p.VATPercentage
		}
		inv.VATAmount, inv.Total = DeriveVAT(inv.Amount, inv.VATPercentage)
	}
	return nil
}

// details lists the patched field names for the audit trail.
func (p InvoicePatch) details() map[string]interface{} {
	var fields []string
	if p.ClientName != nil {
		fields = append(fields, "clientName")
	}
	if p.ClientEmail != nil {
		fields = append(fields, "clientEmail")
	}
	if p.Amount != nil {
		fields = append(fields, "amount")
	}
	if p.VATPercentage != nil {
		fields = append(fields, "vatPercentage")
	}
	if p.DueDate != nil {
		fields = append(fields, "dueDate")
	}
	if p.Status != nil {
		fields = append(fields, "status")
	}
	return map[string]interface{}{"fields": fields}
}

// maxAmount keeps amount and a total at 100% VAT inside the decimal(18,2) columns.
var maxAmount = decimal.New(1, 15)

func checkAmount(verr *model.ValidationError, amount decimal.Decimal) {
	switch {
	case amount.IsNegative():
		verr.Add("amount", "must not be negative")
	case amount.GreaterThanOrEqual(maxAmount):
		verr.Add("amount", "must be less than "+maxAmount.String())
	case !amount.Equal(amount.Round(2)):
		verr.Add("amount", "must have at most 2 decimal places")
	}
}

func checkVATPercentage(verr *model.ValidationError, pct decimal.Decimal) {
	switch {
	case pct.IsNegative() || pct.GreaterThan(hundred):
		verr.Add("vatPercentage", "must be between 0 and 100")
	case !pct.Equal(pct.Round(2)):
		verr.Add("vatPercentage", "must have at most 2 decimal places")
	}
}

// --- Mapping ---

func toInvoiceResponse(inv model.Invoice) InvoiceResponse {
	return InvoiceResponse{
		ID:            inv.ID.String(),
		UserID:        inv.UserID.String(),
		ClientName:    inv.ClientName,
		ClientEmail:   inv.ClientEmail,
		Amount:        Money(inv.Amount),
		VATPercentage: Money(inv.VATPercentage),
		VATAmount:     Money(inv.VATAmount),
		Total:         Money(inv.Total),
		DueDate:       inv.DueDate,
		Status:        string(inv.Status),
		CreatedAt:     inv.CreatedAt.Format(time.RFC3339),
		UpdatedAt:     inv.UpdatedAt.Format(time.RFC3339),
	}
}
