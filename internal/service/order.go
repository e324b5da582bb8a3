package service

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/google/uuid"
	"github.com/samber/lo"
	"gorm.io/gorm"

	"codefriend-store/internal/apperr"
	"codefriend-store/internal/client"
	"codefriend-store/internal/dto"
	"codefriend-store/internal/model"
	"codefriend-store/internal/repository"
)

// OrderService is the order ledger plus the payment-evidence intake: it owns
// order creation and the PENDING → WAITING_VERIFY transition. Approval and
// rejection belong to VerifyService.
type OrderService interface {
	Create(ctx context.Context, actor model.Actor, productID string) (*dto.CreateOrderResponse, error)
	ListMine(ctx context.Context, actor model.Actor) ([]*dto.OrderSummary, error)
	SubmitEvidence(ctx context.Context, actor model.Actor, orderID, filename string, slip io.Reader) error
	GetLicense(ctx context.Context, actor model.Actor, orderID string) (*dto.LicenseResponse, error)
}

type orderServiceImpl struct {
	db          *gorm.DB
	storage     client.BlobStorage
	productRepo repository.ProductRepository
	orderRepo   repository.OrderRepository
	licenseRepo repository.LicenseRepository
}

func NewOrderService(
	db *gorm.DB,
	storage client.BlobStorage,
	productRepo repository.ProductRepository,
	orderRepo repository.OrderRepository,
	licenseRepo repository.LicenseRepository,
) OrderService {
	return &orderServiceImpl{
		db:          db,
		storage:     storage,
		productRepo: productRepo,
		orderRepo:   orderRepo,
		licenseRepo: licenseRepo,
	}
}

func (s *orderServiceImpl) Create(ctx context.Context, actor model.Actor, productID string) (*dto.CreateOrderResponse, error) {
	if !actor.Known() {
		return nil, apperr.ErrUnauthorized
	}

	product, err := s.productRepo.FindByID(ctx, productID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("product %s: %w", productID, apperr.ErrNotFound)
		}
		return nil, fmt.Errorf("find product: %w", err)
	}
	if !product.IsActive {
		return nil, fmt.Errorf("product %s inactive: %w", productID, apperr.ErrNotFound)
	}

	order := &model.Order{
		ID:        uuid.NewString(),
		UserID:    actor.UserID,
		ProductID: product.ID,
		Total:     product.EffectivePrice(),
		Status:    model.OrderStatusPending,
	}

	if err := s.orderRepo.Create(ctx, s.db, order); err != nil {
		return nil, fmt.Errorf("store order in db: %w", err)
	}

	return &dto.CreateOrderResponse{OrderID: order.ID}, nil
}

func (s *orderServiceImpl) ListMine(ctx context.Context, actor model.Actor) ([]*dto.OrderSummary, error) {
	if !actor.Known() {
		return nil, apperr.ErrUnauthorized
	}

	orders, err := s.orderRepo.FindByUser(ctx, actor.UserID)
	if err != nil {
		return nil, fmt.Errorf("find orders: %w", err)
	}
	if len(orders) == 0 {
		return []*dto.OrderSummary{}, nil
	}

	orderIDs := lo.Map(orders, func(o *model.Order, _ int) string { return o.ID })
	productIDs := lo.Uniq(lo.Map(orders, func(o *model.Order, _ int) string { return o.ProductID }))

	products, err := s.productRepo.FindMany(ctx, productIDs)
	if err != nil {
		return nil, fmt.Errorf("find products: %w", err)
	}
	productByID := lo.KeyBy(products, func(p *model.Product) string { return p.ID })

	licenses, err := s.licenseRepo.FindByOrderIDs(ctx, orderIDs)
	if err != nil {
		return nil, fmt.Errorf("find licenses: %w", err)
	}
	licenseByOrder := lo.KeyBy(licenses, func(l *model.LicenseKey) string { return l.OrderID })

	summaries := make([]*dto.OrderSummary, len(orders))
	for i, order := range orders {
		summary := &dto.OrderSummary{
			OrderID:   order.ID,
			ProductID: order.ProductID,
			Total:     order.Total.StringFixed(2),
			Status:    string(order.Status),
			SlipURL:   order.SlipURL,
			CreatedAt: order.CreatedAt,
		}
		if p, ok := productByID[order.ProductID]; ok {
			summary.ProductTitle = p.Title
		}
		if l, ok := licenseByOrder[order.ID]; ok {
			summary.LicenseKey = l.Key
		}
		summaries[i] = summary
	}

	return summaries, nil
}

// SubmitEvidence uploads the slip image and attaches it to the order in one
// step, so an order can never hold evidence while still PENDING nor reach
// WAITING_VERIFY without evidence.
func (s *orderServiceImpl) SubmitEvidence(ctx context.Context, actor model.Actor, orderID, filename string, slip io.Reader) error {
	if !actor.Known() {
		return apperr.ErrUnauthorized
	}
	if filename == "" || slip == nil {
		return fmt.Errorf("missing slip image: %w", apperr.ErrValidation)
	}

	order, err := s.orderRepo.FindByID(ctx, orderID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("order %s: %w", orderID, apperr.ErrNotFound)
		}
		return fmt.Errorf("find order: %w", err)
	}
	if order.UserID != actor.UserID {
		return apperr.ErrUnauthorized
	}
	if order.Status != model.OrderStatusPending {
		return fmt.Errorf("order %s is %s: %w", orderID, order.Status, apperr.ErrInvalidState)
	}

	slipURL, err := s.storage.UploadSlip(ctx, orderID, filename, slip)
	if err != nil {
		// abort: the order stays PENDING, nothing was attached
		return fmt.Errorf("upload slip: %w", apperr.Dependency(err))
	}

	ok, err := s.orderRepo.AttachEvidence(ctx, orderID, slipURL)
	if err != nil {
		return fmt.Errorf("attach evidence: %w", err)
	}
	if !ok {
		// lost a race: the order left PENDING between the read and the update
		return fmt.Errorf("order %s: %w", orderID, apperr.ErrInvalidState)
	}

	return nil
}

func (s *orderServiceImpl) GetLicense(ctx context.Context, actor model.Actor, orderID string) (*dto.LicenseResponse, error) {
	if !actor.Known() {
		return nil, apperr.ErrUnauthorized
	}

	order, err := s.orderRepo.FindByID(ctx, orderID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("order %s: %w", orderID, apperr.ErrNotFound)
		}
		return nil, fmt.Errorf("find order: %w", err)
	}
	if order.UserID != actor.UserID && !actor.IsStaff() {
		return nil, apperr.ErrUnauthorized
	}

	license, err := s.licenseRepo.FindByOrderID(ctx, orderID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("no license for order %s: %w", orderID, apperr.ErrNotFound)
		}
		return nil, fmt.Errorf("find license: %w", err)
	}

	return &dto.LicenseResponse{
		OrderID:   license.OrderID,
		ProductID: license.ProductID,
		Key:       license.Key,
		CreatedAt: license.CreatedAt,
	}, nil
}
