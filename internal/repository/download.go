package repository

import (
	"context"

	"gorm.io/gorm"

	"codefriend-store/internal/model"
)

type DownloadRepository interface {
	Append(ctx context.Context, tx *gorm.DB, entry *model.DownloadHistory) error
	TotalCount(ctx context.Context) (int64, error)
	CountByProduct(ctx context.Context, productID string) (int64, error)
}

type downloadRepoImpl struct {
	db *gorm.DB
}

func NewDownloadRepository(db *gorm.DB) DownloadRepository {
	return &downloadRepoImpl{
		db: db,
	}
}

func (r *downloadRepoImpl) Append(ctx context.Context, tx *gorm.DB, entry *model.DownloadHistory) error {
	return tx.WithContext(ctx).Create(entry).Error
}

func (r *downloadRepoImpl) TotalCount(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&model.DownloadHistory{}).
		Count(&count).Error

	return count, err
}

func (r *downloadRepoImpl) CountByProduct(ctx context.Context, productID string) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&model.DownloadHistory{}).
		Where("product_id = ?", productID).
		Count(&count).Error

	return count, err
}
