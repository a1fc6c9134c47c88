package repository

import (
	"context"

	"github.com/holuwadafe/maglo-finance/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type AuditRepository interface {
	Log(ctx context.Context, entry *model.AuditLog) error
	ListByUser(ctx context.Context, userID uuid.UUID, page, limit int) ([]model.AuditLog, int64, error)
}

type auditRepository struct {
	db *gorm.DB
}

func NewAuditRepository(db *gorm.DB) AuditRepository {
	return &auditRepository{db: db}
}

func (r *auditRepository) Log(ctx context.Context, entry *model.AuditLog) error {
	if entry.ID == uuid.Nil {
		entry.ID = uuid.New()
	}
	return mapError(GetDB(ctx, r.db).Create(entry).Error)
}

func (r *auditRepository) ListByUser(ctx context.Context, userID uuid.UUID, page, limit int) ([]model.AuditLog, int64, error) {
	logs := []model.AuditLog{}
	var total int64

	db := GetDB(ctx, r.db)
	if err := db.Model(&model.AuditLog{}).Where("user_id = ?", userID).Count(&total).Error; err != nil {
		return nil, 0, mapError(err)
	}

	offset := (page - 1) * limit
	if err := db.Where("user_id = ?", userID).Order("created_at desc").Offset(offset).Limit(limit).Find(&logs).Error; err != nil {
		return nil, 0, mapError(err)
	}

	return logs, total, nil
}
