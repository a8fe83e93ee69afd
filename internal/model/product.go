package model

import "github.com/shopspring/decimal"

// Product carries the running valuation of its stock. Value is the cumulative
// cost basis of all units on hand, so Value/QtyOnHand is the weighted-average
// unit cost while stock is positive. The pair only ever moves together, inside
// a ledger transaction.
type Product struct {
	BaseModel
	Name      string          `gorm:"type:varchar(255);not null" json:"name" validate:"required"`
	Value     decimal.Decimal `gorm:"type:decimal(14,2);not null;default:0" json:"value"`
	QtyOnHand int             `gorm:"not null;default:0" json:"qtyonhand"`

	BuyReceipts  []BuyReceipt  `json:"-"`
	SellReceipts []SellReceipt `json:"-"`
}
