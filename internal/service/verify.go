package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"
	"github.com/samber/lo"
	"gorm.io/gorm"

	"codefriend-store/internal/apperr"
	"codefriend-store/internal/client"
	"codefriend-store/internal/dto"
	"codefriend-store/internal/model"
	"codefriend-store/internal/repository"
)

// VerifyService is the staff-only verification authority: the only code path
// allowed to move an order out of WAITING_VERIFY.
type VerifyService interface {
	List(ctx context.Context, actor model.Actor, filter dto.AdminOrderFilter) ([]*dto.AdminOrder, error)
	Approve(ctx context.Context, actor model.Actor, orderID string) error
	Reject(ctx context.Context, actor model.Actor, orderID string) error
}

type verifyServiceImpl struct {
	db          *gorm.DB
	mailer      client.Mailer
	orderRepo   repository.OrderRepository
	licenseRepo repository.LicenseRepository
	auditRepo   repository.AuditRepository
	userRepo    repository.UserRepository
	productRepo repository.ProductRepository
}

func NewVerifyService(
	db *gorm.DB,
	mailer client.Mailer,
	orderRepo repository.OrderRepository,
	licenseRepo repository.LicenseRepository,
	auditRepo repository.AuditRepository,
	userRepo repository.UserRepository,
	productRepo repository.ProductRepository,
) VerifyService {
	return &verifyServiceImpl{
		db:          db,
		mailer:      mailer,
		orderRepo:   orderRepo,
		licenseRepo: licenseRepo,
		auditRepo:   auditRepo,
		userRepo:    userRepo,
		productRepo: productRepo,
	}
}

func (s *verifyServiceImpl) List(ctx context.Context, actor model.Actor, filter dto.AdminOrderFilter) ([]*dto.AdminOrder, error) {
	if !actor.IsStaff() {
		return nil, apperr.ErrUnauthorized
	}

	if filter.Status != "" {
		if _, err := model.ToOrderStatus(filter.Status); err != nil {
			return nil, fmt.Errorf("status %q: %w", filter.Status, apperr.ErrValidation)
		}
	}

	rows, err := s.orderRepo.Search(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("search orders: %w", err)
	}

	return lo.Map(rows, func(row *repository.AdminOrderRow, _ int) *dto.AdminOrder {
		return &dto.AdminOrder{
			OrderID:      row.ID,
			CustomerName: row.CustomerName,
			ProductTitle: row.ProductTitle,
			Total:        row.Total.StringFixed(2),
			Status:       row.Status,
			SlipURL:      row.SlipURL,
			CreatedAt:    row.CreatedAt,
		}
	}), nil
}

// Approve moves the order to COMPLETED, mints its license and writes the
// audit row in one transaction. The owner notification goes out after commit
// and never fails the approval.
func (s *verifyServiceImpl) Approve(ctx context.Context, actor model.Actor, orderID string) error {
	// privilege check comes first so unauthorized callers learn nothing
	// about order existence
	if !actor.IsStaff() {
		return apperr.ErrUnauthorized
	}

	order, err := s.orderRepo.FindByID(ctx, orderID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("order %s: %w", orderID, apperr.ErrNotFound)
		}
		return fmt.Errorf("find order: %w", err)
	}

	key, err := newLicenseKey()
	if err != nil {
		return fmt.Errorf("generate license key: %w", err)
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		ok, err := s.orderRepo.TransitionStatus(ctx, tx, orderID, model.OrderStatusWaitingVerify, model.OrderStatusCompleted)
		if err != nil {
			return fmt.Errorf("transition order: %w", err)
		}
		if !ok {
			return fmt.Errorf("order %s is not awaiting verification: %w", orderID, apperr.ErrInvalidState)
		}

		license := &model.LicenseKey{
			ID:        uuid.NewString(),
			OrderID:   orderID,
			ProductID: order.ProductID,
			Key:       key,
		}
		if err := s.licenseRepo.Create(ctx, tx, license); err != nil {
			return fmt.Errorf("store license: %w", err)
		}

		audit := &model.AuditLog{
			ActorID: actor.UserID,
			Action:  "approve",
			OrderID: orderID,
		}
		if err := s.auditRepo.Append(ctx, tx, audit); err != nil {
			return fmt.Errorf("append audit log: %w", err)
		}

		return nil
	})
	if err != nil {
		return err
	}

	go s.notifyApproved(order)

	return nil
}

func (s *verifyServiceImpl) Reject(ctx context.Context, actor model.Actor, orderID string) error {
	if !actor.IsStaff() {
		return apperr.ErrUnauthorized
	}

	if _, err := s.orderRepo.FindByID(ctx, orderID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("order %s: %w", orderID, apperr.ErrNotFound)
		}
		return fmt.Errorf("find order: %w", err)
	}

	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		ok, err := s.orderRepo.TransitionStatus(ctx, tx, orderID, model.OrderStatusWaitingVerify, model.OrderStatusFailed)
		if err != nil {
			return fmt.Errorf("transition order: %w", err)
		}
		if !ok {
			return fmt.Errorf("order %s is not awaiting verification: %w", orderID, apperr.ErrInvalidState)
		}

		audit := &model.AuditLog{
			ActorID: actor.UserID,
			Action:  "reject",
			OrderID: orderID,
		}
		if err := s.auditRepo.Append(ctx, tx, audit); err != nil {
			return fmt.Errorf("append audit log: %w", err)
		}

		return nil
	})
}

func (s *verifyServiceImpl) notifyApproved(order *model.Order) {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	user, err := s.userRepo.FindByID(ctx, order.UserID)
	if err != nil {
		log.Println("notify approved: find user:", err)
		return
	}
	product, err := s.productRepo.FindByID(ctx, order.ProductID)
	if err != nil {
		log.Println("notify approved: find product:", err)
		return
	}

	mail := client.OrderApprovedMail{
		To:           user.Email,
		CustomerName: user.Name,
		ProductTitle: product.Title,
		OrderID:      order.ID,
	}
	if err := s.mailer.SendOrderApproved(ctx, mail); err != nil {
		log.Println("notify approved: send mail:", err)
	}
}
