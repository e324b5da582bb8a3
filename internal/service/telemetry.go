package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/samber/lo"
	"gorm.io/gorm"

	"codefriend-store/internal/apperr"
	"codefriend-store/internal/client"
	"codefriend-store/internal/dto"
	"codefriend-store/internal/model"
	"codefriend-store/internal/repository"
)

// TelemetryService maintains per-product view counters and serves the admin
// analytics projection. It has no write authority over orders or licenses.
type TelemetryService interface {
	// RecordView counts at most one view per requester per cooldown window.
	// The requester is a user id, or the client address for anonymous
	// visitors.
	RecordView(ctx context.Context, requester, productID string) error
	Stats(ctx context.Context, actor model.Actor) (*dto.StatsResponse, error)
}

type telemetryServiceImpl struct {
	markers      client.ViewMarkerStore
	cooldown     time.Duration
	productRepo  repository.ProductRepository
	downloadRepo repository.DownloadRepository
}

func NewTelemetryService(
	markers client.ViewMarkerStore,
	cooldown time.Duration,
	productRepo repository.ProductRepository,
	downloadRepo repository.DownloadRepository,
) TelemetryService {
	return &telemetryServiceImpl{
		markers:      markers,
		cooldown:     cooldown,
		productRepo:  productRepo,
		downloadRepo: downloadRepo,
	}
}

func (s *telemetryServiceImpl) RecordView(ctx context.Context, requester, productID string) error {
	if requester == "" {
		return fmt.Errorf("missing requester: %w", apperr.ErrValidation)
	}

	if _, err := s.productRepo.FindByID(ctx, productID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("product %s: %w", productID, apperr.ErrNotFound)
		}
		return fmt.Errorf("find product: %w", err)
	}

	first, err := s.markers.MarkViewed(ctx, requester, productID, s.cooldown)
	if err != nil {
		// view counting is best-effort: a marker-store outage must not fail
		// the page view
		log.Println("record view: mark viewed:", err)
		return nil
	}
	if !first {
		return nil
	}

	if err := s.productRepo.IncrementViews(ctx, productID); err != nil {
		return fmt.Errorf("increment view counter: %w", err)
	}

	return nil
}

func (s *telemetryServiceImpl) Stats(ctx context.Context, actor model.Actor) (*dto.StatsResponse, error) {
	if !actor.IsStaff() {
		return nil, apperr.ErrUnauthorized
	}

	total, err := s.downloadRepo.TotalCount(ctx)
	if err != nil {
		return nil, fmt.Errorf("count downloads: %w", err)
	}

	top, err := s.productRepo.TopByDownloads(ctx, 10)
	if err != nil {
		return nil, fmt.Errorf("top products: %w", err)
	}

	return &dto.StatsResponse{
		TotalDownloads: total,
		TopProducts: lo.Map(top, func(p *model.Product, _ int) dto.ProductStat {
			return dto.ProductStat{
				ProductID: p.ID,
				Title:     p.Title,
				Downloads: p.Downloads,
			}
		}),
	}, nil
}
