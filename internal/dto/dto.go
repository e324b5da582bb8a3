package dto

import "time"

type CreateOrderRequest struct {
	ProductID string `json:"product_id"`
}

type CreateOrderResponse struct {
	OrderID string `json:"order_id"`
}

type OrderSummary struct {
	OrderID      string    `json:"order_id"`
	ProductID    string    `json:"product_id"`
	ProductTitle string    `json:"product_title"`
	Total        string    `json:"total"`
	Status       string    `json:"status"`
	SlipURL      *string   `json:"slip_url,omitempty"`
	LicenseKey   string    `json:"license_key,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
}

type LicenseResponse struct {
	OrderID   string    `json:"order_id"`
	ProductID string    `json:"product_id"`
	Key       string    `json:"key"`
	CreatedAt time.Time `json:"created_at"`
}

// AdminOrderFilter narrows the back-office order listing.
type AdminOrderFilter struct {
	Status string // empty = any
	Query  string // free text against order id / customer name / product title
}

type AdminOrder struct {
	OrderID      string    `json:"order_id"`
	CustomerName string    `json:"customer_name"`
	ProductTitle string    `json:"product_title"`
	Total        string    `json:"total"`
	Status       string    `json:"status"`
	SlipURL      *string   `json:"slip_url,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
}

type ProductStat struct {
	ProductID string `json:"product_id"`
	Title     string `json:"title"`
	Downloads int64  `json:"downloads"`
}

type StatsResponse struct {
	TotalDownloads int64         `json:"total_downloads"`
	TopProducts    []ProductStat `json:"top_products"`
}
