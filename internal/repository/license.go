package repository

import (
	"context"

	"gorm.io/gorm"

	"codefriend-store/internal/model"
)

type LicenseRepository interface {
	// Create relies on the unique index on order_id to reject a second
	// license for the same order.
	Create(ctx context.Context, tx *gorm.DB, license *model.LicenseKey) error
	FindByOrderID(ctx context.Context, orderID string) (*model.LicenseKey, error)
	FindByOrderIDs(ctx context.Context, orderIDs []string) ([]*model.LicenseKey, error)
	CountByOrderID(ctx context.Context, orderID string) (int64, error)
}

type licenseRepoImpl struct {
	db *gorm.DB
}

func NewLicenseRepository(db *gorm.DB) LicenseRepository {
	return &licenseRepoImpl{
		db: db,
	}
}

func (r *licenseRepoImpl) Create(ctx context.Context, tx *gorm.DB, license *model.LicenseKey) error {
	return tx.WithContext(ctx).Create(license).Error
}

func (r *licenseRepoImpl) FindByOrderID(ctx context.Context, orderID string) (*model.LicenseKey, error) {
	var license model.LicenseKey
	err := r.db.WithContext(ctx).
		Where("order_id = ?", orderID).
		First(&license).Error

	if err != nil {
		return nil, err
	}

	return &license, nil
}

func (r *licenseRepoImpl) FindByOrderIDs(ctx context.Context, orderIDs []string) ([]*model.LicenseKey, error) {
	var licenses []*model.LicenseKey
	err := r.db.WithContext(ctx).
		Where("order_id IN ?", orderIDs).
		Find(&licenses).Error

	if err != nil {
		return nil, err
	}

	return licenses, nil
}

func (r *licenseRepoImpl) CountByOrderID(ctx context.Context, orderID string) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&model.LicenseKey{}).
		Where("order_id = ?", orderID).
		Count(&count).Error

	return count, err
}
