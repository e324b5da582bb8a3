package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// User records are owned by the auth/profile system; this subsystem only
// reads them for admin search and mail addressing.
type User struct {
	ID        string `gorm:"primaryKey;size:64;not null"`
	Name      string `gorm:"size:128;not null"`
	Email     string `gorm:"size:255;uniqueIndex;not null"`
	Role      string `gorm:"size:16;not null"` // customer, staff
	CreatedAt time.Time
}

type Product struct {
	ID       string          `gorm:"primaryKey;size:64;not null"`
	Title    string          `gorm:"size:255;not null"`
	Price    decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	IsFree   bool            `gorm:"not null"`
	IsActive bool            `gorm:"not null;default:true"`
	// opaque pointer into the external asset store
	AssetKey  string `gorm:"size:255;not null"`
	Views     int64  `gorm:"not null;default:0"`
	Downloads int64  `gorm:"not null;default:0"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

// EffectivePrice is zero for free products regardless of the stored price.
func (p *Product) EffectivePrice() decimal.Decimal {
	if p.IsFree {
		return decimal.Zero
	}
	return p.Price
}

type Order struct {
	ID        string `gorm:"primaryKey;size:64;not null"`
	UserID    string `gorm:"size:64;index;not null"`
	ProductID string `gorm:"size:64;index;not null"`
	// price snapshot taken at creation time, immutable afterwards
	Total     decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	Status    OrderStatus     `gorm:"size:32;index;not null"`
	SlipURL   *string         `gorm:"size:512"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

type LicenseKey struct {
	ID string `gorm:"primaryKey;size:64;not null"`
	// FK → orders.id, unique: at most one license per order
	OrderID   string `gorm:"size:64;uniqueIndex;not null"`
	ProductID string `gorm:"size:64;index;not null"`
	Key       string `gorm:"size:128;uniqueIndex;not null"`
	CreatedAt time.Time
}

// DownloadHistory is append-only; rows are never updated or deleted.
type DownloadHistory struct {
	ID        uint   `gorm:"primaryKey"`
	ProductID string `gorm:"size:64;index;not null"`
	// nil for anonymous free downloads
	UserID       *string `gorm:"size:64;index"`
	DownloadedAt time.Time
}

// AuditLog records every manual approve/reject decision: who, what, when.
type AuditLog struct {
	ID        uint   `gorm:"primaryKey"`
	ActorID   string `gorm:"size:64;index;not null"`
	Action    string `gorm:"size:16;not null"` // approve, reject
	OrderID   string `gorm:"size:64;index;not null"`
	CreatedAt time.Time
}
