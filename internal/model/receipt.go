package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// BuyReceipt is the immutable record of a purchase posting. BuyPrice is the
// per-unit cost derived from BuyTotal/Qty when the purchase is recorded.
type BuyReceipt struct {
	BaseModel
	ProductID uuid.UUID       `gorm:"type:uuid;not null;index" json:"productid"`
	Product   Product         `json:"-"`
	Qty       int             `gorm:"not null" json:"qty"`
	BuyPrice  decimal.Decimal `gorm:"type:decimal(14,4);not null" json:"buyprice"`
	BuyTotal  decimal.Decimal `gorm:"type:decimal(14,2);not null" json:"buytotal"`
	Date      time.Time       `gorm:"type:date;not null" json:"date"`
}

// SellReceipt snapshots the product's average unit cost at the moment of sale:
// BuyPrice and BuyTotal are frozen then and never recomputed, so later
// purchases cannot rewrite the profit of an old sale.
type SellReceipt struct {
	BaseModel
	ProductID uuid.UUID       `gorm:"type:uuid;not null;index" json:"productid"`
	Product   Product         `json:"-"`
	Qty       int             `gorm:"not null" json:"qty"`
	SellPrice decimal.Decimal `gorm:"type:decimal(14,4);not null" json:"sellprice"`
	BuyPrice  decimal.Decimal `gorm:"type:decimal(14,4);not null" json:"buyprice"`
	SellTotal decimal.Decimal `gorm:"type:decimal(14,2);not null" json:"selltotal"`
	BuyTotal  decimal.Decimal `gorm:"type:decimal(14,2);not null" json:"buytotal"`
	Profit    decimal.Decimal `gorm:"type:decimal(14,2);not null" json:"profit"`
	Date      time.Time       `gorm:"type:date;not null" json:"date"`
}
