package repository

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"codefriend-store/internal/dto"
	"codefriend-store/internal/model"
)

// AdminOrderRow is the back-office listing projection: an order joined with
// its customer name and product title.
type AdminOrderRow struct {
	ID           string
	UserID       string
	ProductID    string
	CustomerName string
	ProductTitle string
	Total        decimal.Decimal
	Status       string
	SlipURL      *string
	CreatedAt    time.Time
}

type OrderRepository interface {
	Create(ctx context.Context, tx *gorm.DB, order *model.Order) error
	FindByID(ctx context.Context, orderID string) (*model.Order, error)
	FindByUser(ctx context.Context, userID string) ([]*model.Order, error)
	Search(ctx context.Context, filter dto.AdminOrderFilter) ([]*AdminOrderRow, error)
	// AttachEvidence is the PENDING → WAITING_VERIFY transition; it reports
	// false when the order was not in PENDING.
	AttachEvidence(ctx context.Context, orderID, slipURL string) (bool, error)
	// TransitionStatus applies a single compare-and-set on (id, status); it
	// reports false when the order was not in the expected status.
	TransitionStatus(ctx context.Context, tx *gorm.DB, orderID string, from, to model.OrderStatus) (bool, error)
	HasCompleted(ctx context.Context, userID, productID string) (bool, error)
}

type orderRepoImpl struct {
	db *gorm.DB
}

func NewOrderRepository(db *gorm.DB) OrderRepository {
	return &orderRepoImpl{
		db: db,
	}
}

func (r *orderRepoImpl) Create(ctx context.Context, tx *gorm.DB, order *model.Order) error {
	return tx.WithContext(ctx).Create(order).Error
}

func (r *orderRepoImpl) FindByID(ctx context.Context, orderID string) (*model.Order, error) {
	var order model.Order
	err := r.db.WithContext(ctx).
		Where("id = ?", orderID).
		First(&order).Error

	if err != nil {
		return nil, err
	}

	return &order, nil
}

func (r *orderRepoImpl) FindByUser(ctx context.Context, userID string) ([]*model.Order, error) {
	var orders []*model.Order
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&orders).Error

	if err != nil {
		return nil, err
	}

	return orders, nil
}

func (r *orderRepoImpl) Search(ctx context.Context, filter dto.AdminOrderFilter) ([]*AdminOrderRow, error) {
	q := r.db.WithContext(ctx).
		Table("orders").
		Select("orders.id, orders.user_id, orders.product_id, users.name AS customer_name, products.title AS product_title, orders.total, orders.status, orders.slip_url, orders.created_at").
		Joins("JOIN users ON users.id = orders.user_id").
		Joins("JOIN products ON products.id = orders.product_id").
		Order("orders.created_at DESC")

	if filter.Status != "" {
		q = q.Where("orders.status = ?", filter.Status)
	}
	if filter.Query != "" {
		like := "%" + filter.Query + "%"
		q = q.Where("orders.id LIKE ? OR users.name LIKE ? OR products.title LIKE ?", like, like, like)
	}

	var rows []*AdminOrderRow
	if err := q.Scan(&rows).Error; err != nil {
		return nil, err
	}

	return rows, nil
}

func (r *orderRepoImpl) AttachEvidence(ctx context.Context, orderID, slipURL string) (bool, error) {
	res := r.db.WithContext(ctx).Model(&model.Order{}).
		Where("id = ? AND status = ?", orderID, model.OrderStatusPending).
		Updates(map[string]interface{}{
			"status":     model.OrderStatusWaitingVerify,
			"slip_url":   slipURL,
			"updated_at": time.Now(),
		})

	return res.RowsAffected > 0, res.Error
}

func (r *orderRepoImpl) TransitionStatus(ctx context.Context, tx *gorm.DB, orderID string, from, to model.OrderStatus) (bool, error) {
	res := tx.WithContext(ctx).Model(&model.Order{}).
		Where("id = ? AND status = ?", orderID, from).
		Updates(map[string]interface{}{
			"status":     to,
			"updated_at": time.Now(),
		})

	return res.RowsAffected > 0, res.Error
}

func (r *orderRepoImpl) HasCompleted(ctx context.Context, userID, productID string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&model.Order{}).
		Where("user_id = ?", userID).
		Where("product_id = ?", productID).
		Where("status = ?", model.OrderStatusCompleted).
		Count(&count).Error

	return count > 0, err
}
