package repository

import (
	"context"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"codefriend-store/internal/model"
)

type ProductRepository interface {
	Seed(ctx context.Context) error
	FindByID(ctx context.Context, productID string) (*model.Product, error)
	FindMany(ctx context.Context, productIDs []string) ([]*model.Product, error)
	IncrementViews(ctx context.Context, productID string) error
	IncrementDownloads(ctx context.Context, tx *gorm.DB, productID string) error
	TopByDownloads(ctx context.Context, limit int) ([]*model.Product, error)
}

type productRepoImpl struct {
	db *gorm.DB
}

func NewProductRepository(db *gorm.DB) ProductRepository {
	return &productRepoImpl{
		db: db,
	}
}

func (r *productRepoImpl) Seed(ctx context.Context) error {
	products := []model.Product{
		{ID: "ebook-go-basics", Title: "Go Basics E-Book", Price: decimal.NewFromInt(500), IsFree: false, IsActive: true, AssetKey: "assets/ebook-go-basics.pdf"},
		{ID: "starter-template", Title: "Web Starter Template", Price: decimal.Zero, IsFree: true, IsActive: true, AssetKey: "assets/starter-template.zip"},
		{ID: "video-sql-course", Title: "SQL Crash Course Videos", Price: decimal.NewFromInt(1290), IsFree: false, IsActive: true, AssetKey: "assets/video-sql-course.zip"},
	}

	return r.db.WithContext(ctx).Clauses(clause.OnConflict{DoNothing: true}).Create(&products).Error
}

func (r *productRepoImpl) FindByID(ctx context.Context, productID string) (*model.Product, error) {
	var product model.Product
	err := r.db.WithContext(ctx).
		Where("id = ?", productID).
		First(&product).Error

	if err != nil {
		return nil, err
	}

	return &product, nil
}

func (r *productRepoImpl) FindMany(ctx context.Context, productIDs []string) ([]*model.Product, error) {
	var products []*model.Product
	err := r.db.WithContext(ctx).
		Where("id IN ?", productIDs).
		Find(&products).
		Error

	if err != nil {
		return nil, err
	}

	return products, nil
}

func (r *productRepoImpl) IncrementViews(ctx context.Context, productID string) error {
	return r.db.WithContext(ctx).Model(&model.Product{}).
		Where("id = ?", productID).
		UpdateColumn("views", gorm.Expr("views + 1")).Error
}

func (r *productRepoImpl) IncrementDownloads(ctx context.Context, tx *gorm.DB, productID string) error {
	return tx.WithContext(ctx).Model(&model.Product{}).
		Where("id = ?", productID).
		UpdateColumn("downloads", gorm.Expr("downloads + 1")).Error
}

func (r *productRepoImpl) TopByDownloads(ctx context.Context, limit int) ([]*model.Product, error) {
	var products []*model.Product
	err := r.db.WithContext(ctx).
		Order("downloads DESC").
		Limit(limit).
		Find(&products).
		Error

	if err != nil {
		return nil, err
	}

	return products, nil
}
