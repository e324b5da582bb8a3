package service

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"codefriend-store/internal/apperr"
	"codefriend-store/internal/client"
	"codefriend-store/internal/model"
	"codefriend-store/internal/repository"
)

// EntitlementService is the single chokepoint deciding asset access. Every
// download request goes through Download; nothing else may hand out asset
// URLs.
type EntitlementService interface {
	// CanDownload is side-effect free so it can be called speculatively
	// (e.g. to pick which button to render) without touching telemetry.
	CanDownload(ctx context.Context, userID *string, productID string) (bool, error)
	// Download gates, records telemetry and resolves the asset URL. The
	// telemetry write happens only on granted requests.
	Download(ctx context.Context, userID *string, productID string) (string, error)
}

type entitlementServiceImpl struct {
	db           *gorm.DB
	storage      client.BlobStorage
	productRepo  repository.ProductRepository
	orderRepo    repository.OrderRepository
	downloadRepo repository.DownloadRepository
}

func NewEntitlementService(
	db *gorm.DB,
	storage client.BlobStorage,
	productRepo repository.ProductRepository,
	orderRepo repository.OrderRepository,
	downloadRepo repository.DownloadRepository,
) EntitlementService {
	return &entitlementServiceImpl{
		db:           db,
		storage:      storage,
		productRepo:  productRepo,
		orderRepo:    orderRepo,
		downloadRepo: downloadRepo,
	}
}

func (s *entitlementServiceImpl) CanDownload(ctx context.Context, userID *string, productID string) (bool, error) {
	product, err := s.findProduct(ctx, productID)
	if err != nil {
		return false, err
	}
	return s.entitled(ctx, userID, product)
}

func (s *entitlementServiceImpl) Download(ctx context.Context, userID *string, productID string) (string, error) {
	product, err := s.findProduct(ctx, productID)
	if err != nil {
		return "", err
	}

	ok, err := s.entitled(ctx, userID, product)
	if err != nil {
		return "", err
	}
	if !ok {
		// denied attempts leave no telemetry trace
		return "", fmt.Errorf("no entitlement for product %s: %w", productID, apperr.ErrUnauthorized)
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		entry := &model.DownloadHistory{
			ProductID: productID,
			UserID:    userID,
		}
		if err := s.downloadRepo.Append(ctx, tx, entry); err != nil {
			return fmt.Errorf("append download history: %w", err)
		}
		if err := s.productRepo.IncrementDownloads(ctx, tx, productID); err != nil {
			return fmt.Errorf("increment download counter: %w", err)
		}
		return nil
	})
	if err != nil {
		return "", err
	}

	assetURL, err := s.storage.AssetURL(ctx, product.AssetKey)
	if err != nil {
		return "", fmt.Errorf("resolve asset url: %w", apperr.Dependency(err))
	}

	return assetURL, nil
}

func (s *entitlementServiceImpl) findProduct(ctx context.Context, productID string) (*model.Product, error) {
	product, err := s.productRepo.FindByID(ctx, productID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("product %s: %w", productID, apperr.ErrNotFound)
		}
		return nil, fmt.Errorf("find product: %w", err)
	}
	return product, nil
}

func (s *entitlementServiceImpl) entitled(ctx context.Context, userID *string, product *model.Product) (bool, error) {
	// free active products are open to anyone, anonymous included
	if product.IsFree && product.IsActive {
		return true, nil
	}

	// paid products always require a known user with a completed order
	if userID == nil || *userID == "" {
		return false, nil
	}

	ok, err := s.orderRepo.HasCompleted(ctx, *userID, product.ID)
	if err != nil {
		return false, fmt.Errorf("check completed order: %w", err)
	}
	return ok, nil
}
