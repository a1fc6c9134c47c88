package repository

import (
	"context"
	"time"

	"github.com/holuwadafe/maglo-finance/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// InvoiceRepository is the persistence port for invoices. IDs and timestamps are
// assigned by the store. Missing records yield model.ErrNotFound, an unreachable
// store yields model.ErrBackendUnavailable.
type InvoiceRepository interface {
	Create(ctx context.Context, invoice *model.Invoice) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.Invoice, error)
	ListByOwner(ctx context.Context, userID uuid.UUID) ([]model.Invoice, error)
	Update(ctx context.Context, invoice *model.Invoice) error
	Delete(ctx context.Context, id uuid.UUID) error
}

type invoiceRepository struct {
	db *gorm.DB
}

func NewInvoiceRepository(db *gorm.DB) InvoiceRepository {
	return &invoiceRepository{db: db}
}

func (r *invoiceRepository) Create(ctx context.Context, invoice *model.Invoice) error {
	if invoice.ID == uuid.Nil {
		invoice.ID = uuid.New()
	}
	now := time.Now().UTC().Truncate(time.Microsecond)
	invoice.CreatedAt = now
	invoice.UpdatedAt = now
	return mapError(GetDB(ctx, r.db).Create(invoice).Error)
}

func (r *invoiceRepository) FindByID(ctx context.Context, id uuid.UUID) (*model.Invoice, error) {
	var invoice model.Invoice
	if err := GetDB(ctx, r.db).First(&invoice, "id = ?", id).Error; err != nil {
		return nil, mapError(err)
	}
	return &invoice, nil
}

func (r *invoiceRepository) ListByOwner(ctx context.Context, userID uuid.UUID) ([]model.Invoice, error) {
	invoices := []model.Invoice{}
	if err := GetDB(ctx, r.db).
		Where("user_id = ?", userID).
		Order("created_at desc").
		Find(&invoices).Error; err != nil {
		return nil, mapError(err)
	}
	return invoices, nil
}

// Update writes the mutable columns only; id, user_id and created_at are never touched.
func (r *invoiceRepository) Update(ctx context.Context, invoice *model.Invoice) error {
	invoice.UpdatedAt = time.Now().UTC().Truncate(time.Microsecond)
	result := GetDB(ctx, r.db).Model(&model.Invoice{}).
		Where("id = ?", invoice.ID).
		Updates(map[string]interface{}{
			"client_name":    invoice.ClientName,
			"client_email":   invoice.ClientEmail,
			"amount":         invoice.Amount,
			"vat_percentage": invoice.VATPercentage,
			"vat_amount":     invoice.VATAmount,
			"total":          invoice.Total,
			"due_date":       invoice.DueDate,
			"status":         invoice.Status,
			"updated_at":     invoice.UpdatedAt,
		})
	if result.Error != nil {
		return mapError(result.Error)
	}
	if result.RowsAffected == 0 {
		return model.ErrNotFound
	}
	return nil
}

func (r *invoiceRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result := GetDB(ctx, r.db).Where("id = ?", id).Delete(&model.Invoice{})
	if result.Error != nil {
		return mapError(result.Error)
	}
	if result.RowsAffected == 0 {
		return model.ErrNotFound
	}
	return nil
}
