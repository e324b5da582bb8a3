package repository

import (
	"context"

	"gorm.io/gorm"

	"codefriend-store/internal/model"
)

type AuditRepository interface {
	Append(ctx context.Context, tx *gorm.DB, entry *model.AuditLog) error
	ListByOrder(ctx context.Context, orderID string) ([]*model.AuditLog, error)
}

type auditRepoImpl struct {
	db *gorm.DB
}

func NewAuditRepository(db *gorm.DB) AuditRepository {
	return &auditRepoImpl{
		db: db,
	}
}

func (r *auditRepoImpl) Append(ctx context.Context, tx *gorm.DB, entry *model.AuditLog) error {
	return tx.WithContext(ctx).Create(entry).Error
}

func (r *auditRepoImpl) ListByOrder(ctx context.Context, orderID string) ([]*model.AuditLog, error) {
	var entries []*model.AuditLog
	err := r.db.WithContext(ctx).
		Where("order_id = ?", orderID).
		Order("created_at ASC").
		Find(&entries).Error

	if err != nil {
		return nil, err
	}

	return entries, nil
}
