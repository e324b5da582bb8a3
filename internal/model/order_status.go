package model

import "errors"

type OrderStatus string

// remember to add new statuses to the validOrderStatuses map
const (
	OrderStatusPending       OrderStatus = "PENDING"
	OrderStatusWaitingVerify OrderStatus = "WAITING_VERIFY"
	OrderStatusCompleted     OrderStatus = "COMPLETED"
	OrderStatusFailed        OrderStatus = "FAILED"
)

var validOrderStatuses = map[OrderStatus]struct{}{
	OrderStatusPending:       {},
	OrderStatusWaitingVerify: {},
	OrderStatusCompleted:     {},
	OrderStatusFailed:        {},
}

func ToOrderStatus(s string) (OrderStatus, error) {
	status := OrderStatus(s)
	if _, ok := validOrderStatuses[status]; ok {
		return status, nil
	}
	return "", errors.New("invalid order status")
}
