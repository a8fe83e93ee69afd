package repository

import (
	"sort"
	"time"

	"go-inventory-ledger/internal/model"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type ReceiptRepository interface {
	FindAllPurchases() ([]PurchaseRow, error)
	FindAllSales() ([]SaleRow, error)
	GetStatistics() (*Statistics, error)
	GetStockMovement(startDate, endDate time.Time) ([]StockMovementData, error)
	DeleteByProduct(tx *gorm.DB, productID uuid.UUID) error
}

// PurchaseRow is a buy receipt joined with its product name.
type PurchaseRow struct {
	BuyReceiptID uuid.UUID       `json:"buyreceiptid"`
	Name         string          `json:"name"`
	BuyPrice     decimal.Decimal `json:"buyprice"`
	Qty          int             `json:"qty"`
	BuyTotal     decimal.Decimal `json:"buytotal"`
	Date         time.Time       `json:"date"`
}

// SaleRow is a sell receipt joined with its product name.
type SaleRow struct {
	SellReceiptID uuid.UUID       `json:"sellreceiptid"`
	Name          string          `json:"name"`
	SellPrice     decimal.Decimal `json:"sellprice"`
	BuyPrice      decimal.Decimal `json:"buyprice"`
	SellTotal     decimal.Decimal `json:"selltotal"`
	BuyTotal      decimal.Decimal `json:"buytotal"`
	Profit        decimal.Decimal `json:"profit"`
	Qty           int             `json:"qty"`
	Date          time.Time       `json:"date"`
}

// Statistics aggregates the whole sell ledger.
type Statistics struct {
	Profit decimal.Decimal `json:"profit"`
	Qty    int64           `json:"qty"`
}

// StockMovementData for chart data
type StockMovementData struct {
	Date     string `json:"date"`
	Inbound  int    `json:"inbound"`
	Outbound int    `json:"outbound"`
}

type receiptRepo struct {
	db *gorm.DB
}

func NewReceiptRepo(db *gorm.DB) ReceiptRepository {
	return &receiptRepo{db}
}

func (r *receiptRepo) FindAllPurchases() ([]PurchaseRow, error) {
	var rows []PurchaseRow
	err := r.db.Model(&model.BuyReceipt{}).
		Select("buy_receipts.id AS buy_receipt_id, products.name AS name, buy_receipts.buy_price, buy_receipts.qty, buy_receipts.buy_total, buy_receipts.date").
		Joins("JOIN products ON products.id = buy_receipts.product_id").
		Order("buy_receipts.created_at DESC").
		Scan(&rows).Error
	return rows, err
}

func (r *receiptRepo) FindAllSales() ([]SaleRow, error) {
	var rows []SaleRow
	err := r.db.Model(&model.SellReceipt{}).
		Select("sell_receipts.id AS sell_receipt_id, products.name AS name, sell_receipts.sell_price, sell_receipts.buy_price, sell_receipts.sell_total, sell_receipts.buy_total, sell_receipts.profit, sell_receipts.qty, sell_receipts.date").
		Joins("JOIN products ON products.id = sell_receipts.product_id").
		Order("sell_receipts.created_at DESC").
		Scan(&rows).Error
	return rows, err
}

// GetStatistics sums profit and quantity over every sale. COALESCE keeps the
// empty ledger a zero aggregate instead of NULL.
func (r *receiptRepo) GetStatistics() (*Statistics, error) {
	var stats Statistics
	err := r.db.Model(&model.SellReceipt{}).
		Select("COALESCE(SUM(profit), 0) AS profit, COALESCE(SUM(qty), 0) AS qty").
		Scan(&stats).Error
	return &stats, err
}

type movementRow struct {
	Date string
	Qty  int
}

// GetStockMovement aggregates purchased and sold quantities per day across
// both receipt tables.
func (r *receiptRepo) GetStockMovement(startDate, endDate time.Time) ([]StockMovementData, error) {
	var bought []movementRow
	if err := r.db.Model(&model.BuyReceipt{}).
		Select("DATE(created_at) AS date, COALESCE(SUM(qty), 0) AS qty").
		Where("created_at BETWEEN ? AND ?", startDate, endDate).
		Group("DATE(created_at)").
		Scan(&bought).Error; err != nil {
		return nil, err
	}

	var sold []movementRow
	if err := r.db.Model(&model.SellReceipt{}).
		Select("DATE(created_at) AS date, COALESCE(SUM(qty), 0) AS qty").
		Where("created_at BETWEEN ? AND ?", startDate, endDate).
		Group("DATE(created_at)").
		Scan(&sold).Error; err != nil {
		return nil, err
	}

	merged := make(map[string]*StockMovementData)
	for _, row := range bought {
		merged[row.Date] = &StockMovementData{Date: row.Date, Inbound: row.Qty}
	}
	for _, row := range sold {
		if data, ok := merged[row.Date]; ok {
			data.Outbound = row.Qty
		} else {
			merged[row.Date] = &StockMovementData{Date: row.Date, Outbound: row.Qty}
		}
	}

	results := make([]StockMovementData, 0, len(merged))
	for _, data := range merged {
		results = append(results, *data)
	}
	sort.Slice(results, func(i, j int) bool { return results[i].Date < results[j].Date })

	return results, nil
}

// DeleteByProduct removes the full receipt history of a product. Runs inside
// the caller's transaction so the parent row can follow atomically.
func (r *receiptRepo) DeleteByProduct(tx *gorm.DB, productID uuid.UUID) error {
	if err := tx.Delete(&model.BuyReceipt{}, "product_id = ?", productID).Error; err != nil {
		return err
	}
	return tx.Delete(&model.SellReceipt{}, "product_id = ?", productID).Error
}
