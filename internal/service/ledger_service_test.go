package service

import (
	"context"
	"testing"

	"go-inventory-ledger/internal/model"
	"go-inventory-ledger/internal/repository"
	"go-inventory-ledger/internal/ws"

	"github.com/glebarez/sqlite"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func setupTestDB(t *testing.T) *gorm.DB {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&model.Product{}, &model.BuyReceipt{}, &model.SellReceipt{}))
	return db
}

func newTestLedger(t *testing.T) (LedgerService, *gorm.DB) {
	db := setupTestDB(t)
	svc := NewLedgerService(repository.NewProductRepo(db), repository.NewReceiptRepo(db), db, ws.NewHub())
	return svc, db
}

func createTestProduct(t *testing.T, svc LedgerService, name string) *model.Product {
	product, err := svc.CreateProduct(context.Background(), &model.CreateProductRequest{Name: name})
	require.NoError(t, err)
	return product
}

func loadProduct(t *testing.T, db *gorm.DB, id uuid.UUID) *model.Product {
	var product model.Product
	require.NoError(t, db.First(&product, "id = ?", id).Error)
	return &product
}

func TestCreateProduct_StartsEmpty(t *testing.T) {
	svc, db := newTestLedger(t)

	product := createTestProduct(t, svc, "Widget")
	assert.NotEqual(t, uuid.Nil, product.ID)

	stored := loadProduct(t, db, product.ID)
	assert.Equal(t, "Widget", stored.Name)
	assert.Equal(t, 0, stored.QtyOnHand)
	assert.True(t, stored.Value.IsZero())
}

func TestCreateProduct_EmptyNameRejected(t *testing.T) {
	svc, _ := newTestLedger(t)

	_, err := svc.CreateProduct(context.Background(), &model.CreateProductRequest{Name: ""})
	assert.ErrorIs(t, err, ErrValidation)
}

func TestRecordPurchase_UpdatesHoldings(t *testing.T) {
	svc, db := newTestLedger(t)
	product := createTestProduct(t, svc, "Widget")

	receipt, err := svc.RecordPurchase(context.Background(), &model.PurchaseRequest{
		ProductID: product.ID,
		Qty:       10,
		BuyTotal:  100,
	})
	require.NoError(t, err)
	assert.NotEqual(t, uuid.Nil, receipt.ID)
	assert.True(t, receipt.BuyPrice.Equal(decimal.NewFromInt(10)), "buy price %s", receipt.BuyPrice)
	assert.True(t, receipt.BuyTotal.Equal(decimal.NewFromInt(100)))

	stored := loadProduct(t, db, product.ID)
	assert.Equal(t, 10, stored.QtyOnHand)
	assert.True(t, stored.Value.Equal(decimal.NewFromInt(100)), "value %s", stored.Value)
}

func TestRecordPurchase_ZeroQtyRejectedBeforeWrite(t *testing.T) {
	svc, db := newTestLedger(t)
	product := createTestProduct(t, svc, "Widget")

	_, err := svc.RecordPurchase(context.Background(), &model.PurchaseRequest{
		ProductID: product.ID,
		Qty:       0,
		BuyTotal:  100,
	})
	assert.ErrorIs(t, err, ErrValidation)

	var count int64
	db.Model(&model.BuyReceipt{}).Count(&count)
	assert.Equal(t, int64(0), count)

	stored := loadProduct(t, db, product.ID)
	assert.Equal(t, 0, stored.QtyOnHand)
	assert.True(t, stored.Value.IsZero())
}

func TestRecordPurchase_NegativeTotalRejected(t *testing.T) {
	svc, _ := newTestLedger(t)
	product := createTestProduct(t, svc, "Widget")

	_, err := svc.RecordPurchase(context.Background(), &model.PurchaseRequest{
		ProductID: product.ID,
		Qty:       5,
		BuyTotal:  -1,
	})
	assert.ErrorIs(t, err, ErrValidation)
}

func TestRecordPurchase_UnknownProduct(t *testing.T) {
	svc, _ := newTestLedger(t)

	_, err := svc.RecordPurchase(context.Background(), &model.PurchaseRequest{
		ProductID: uuid.New(),
		Qty:       5,
		BuyTotal:  50,
	})
	assert.ErrorIs(t, err, ErrProductNotFound)
}

// The scenario from the ledger's accounting model: buy 10 for 100, sell 4 for
// 60. Unit cost is 10, so the sale consumes 40 of cost basis and books 20
// profit, leaving value 60 and 6 units on hand.
func TestRecordSale_AverageCostAccounting(t *testing.T) {
	svc, db := newTestLedger(t)
	product := createTestProduct(t, svc, "Widget")

	_, err := svc.RecordPurchase(context.Background(), &model.PurchaseRequest{
		ProductID: product.ID,
		Qty:       10,
		BuyTotal:  100,
	})
	require.NoError(t, err)

	receipt, err := svc.RecordSale(context.Background(), &model.SaleRequest{
		ProductID: product.ID,
		Qty:       4,
		SellTotal: 60,
	})
	require.NoError(t, err)

	assert.True(t, receipt.BuyPrice.Equal(decimal.NewFromInt(10)), "unit cost %s", receipt.BuyPrice)
	assert.True(t, receipt.BuyTotal.Equal(decimal.NewFromInt(40)), "buy total %s", receipt.BuyTotal)
	assert.True(t, receipt.SellPrice.Equal(decimal.NewFromInt(15)), "sell price %s", receipt.SellPrice)
	assert.True(t, receipt.Profit.Equal(decimal.NewFromInt(20)), "profit %s", receipt.Profit)

	stored := loadProduct(t, db, product.ID)
	assert.Equal(t, 6, stored.QtyOnHand)
	assert.True(t, stored.Value.Equal(decimal.NewFromInt(60)), "value %s", stored.Value)
}

func TestRecordSale_InsufficientStockLeavesProductUnchanged(t *testing.T) {
	svc, db := newTestLedger(t)
	product := createTestProduct(t, svc, "Widget")

	_, err := svc.RecordPurchase(context.Background(), &model.PurchaseRequest{
		ProductID: product.ID,
		Qty:       5,
		BuyTotal:  50,
	})
	require.NoError(t, err)

	_, err = svc.RecordSale(context.Background(), &model.SaleRequest{
		ProductID: product.ID,
		Qty:       6,
		SellTotal: 90,
	})
	assert.ErrorIs(t, err, ErrInsufficientStock)

	var count int64
	db.Model(&model.SellReceipt{}).Count(&count)
	assert.Equal(t, int64(0), count)

	stored := loadProduct(t, db, product.ID)
	assert.Equal(t, 5, stored.QtyOnHand)
	assert.True(t, stored.Value.Equal(decimal.NewFromInt(50)))
}

func TestRecordSale_ZeroStockIsDomainError(t *testing.T) {
	svc, _ := newTestLedger(t)
	product := createTestProduct(t, svc, "Widget")

	// No purchases yet: the sale must fail cleanly, not divide by zero.
	_, err := svc.RecordSale(context.Background(), &model.SaleRequest{
		ProductID: product.ID,
		Qty:       1,
		SellTotal: 10,
	})
	assert.ErrorIs(t, err, ErrInsufficientStock)
}

func TestRecordSale_ZeroQtyRejectedBeforeWrite(t *testing.T) {
	svc, _ := newTestLedger(t)
	product := createTestProduct(t, svc, "Widget")

	_, err := svc.RecordSale(context.Background(), &model.SaleRequest{
		ProductID: product.ID,
		Qty:       0,
		SellTotal: 10,
	})
	assert.ErrorIs(t, err, ErrValidation)
}

// Two sales both asking for the full stock: the first drains it, the second
// must fail. Serialized here; under concurrency the product row lock forces
// the same outcome.
func TestRecordSale_OversellingBlocked(t *testing.T) {
	svc, db := newTestLedger(t)
	product := createTestProduct(t, svc, "Widget")

	_, err := svc.RecordPurchase(context.Background(), &model.PurchaseRequest{
		ProductID: product.ID,
		Qty:       5,
		BuyTotal:  50,
	})
	require.NoError(t, err)

	_, err = svc.RecordSale(context.Background(), &model.SaleRequest{
		ProductID: product.ID,
		Qty:       5,
		SellTotal: 75,
	})
	require.NoError(t, err)

	_, err = svc.RecordSale(context.Background(), &model.SaleRequest{
		ProductID: product.ID,
		Qty:       5,
		SellTotal: 75,
	})
	assert.ErrorIs(t, err, ErrInsufficientStock)

	stored := loadProduct(t, db, product.ID)
	assert.Equal(t, 0, stored.QtyOnHand)
}

func TestRecordSale_AverageCostNeverRisesFromSale(t *testing.T) {
	svc, db := newTestLedger(t)
	product := createTestProduct(t, svc, "Widget")

	// Two purchases at different prices: 10 @ 10 and 10 @ 20, average 15.
	_, err := svc.RecordPurchase(context.Background(), &model.PurchaseRequest{
		ProductID: product.ID, Qty: 10, BuyTotal: 100,
	})
	require.NoError(t, err)
	_, err = svc.RecordPurchase(context.Background(), &model.PurchaseRequest{
		ProductID: product.ID, Qty: 10, BuyTotal: 200,
	})
	require.NoError(t, err)

	_, err = svc.RecordSale(context.Background(), &model.SaleRequest{
		ProductID: product.ID, Qty: 5, SellTotal: 100,
	})
	require.NoError(t, err)

	stored := loadProduct(t, db, product.ID)
	assert.Equal(t, 15, stored.QtyOnHand)
	avg := stored.Value.Div(decimal.NewFromInt(int64(stored.QtyOnHand)))
	assert.True(t, avg.Equal(decimal.NewFromInt(15)), "average cost %s", avg)
}

func TestGetStatistics_EmptyLedger(t *testing.T) {
	svc, _ := newTestLedger(t)

	stats, err := svc.GetStatistics()
	require.NoError(t, err)
	assert.True(t, stats.Profit.IsZero())
	assert.Equal(t, int64(0), stats.Qty)
}

func TestGetStatistics_SumsAllSales(t *testing.T) {
	svc, _ := newTestLedger(t)
	product := createTestProduct(t, svc, "Widget")

	_, err := svc.RecordPurchase(context.Background(), &model.PurchaseRequest{
		ProductID: product.ID, Qty: 10, BuyTotal: 100,
	})
	require.NoError(t, err)

	_, err = svc.RecordSale(context.Background(), &model.SaleRequest{
		ProductID: product.ID, Qty: 4, SellTotal: 60,
	})
	require.NoError(t, err)
	_, err = svc.RecordSale(context.Background(), &model.SaleRequest{
		ProductID: product.ID, Qty: 2, SellTotal: 50,
	})
	require.NoError(t, err)

	stats, err := svc.GetStatistics()
	require.NoError(t, err)
	// Profits: (60-40) + (50-20) = 50 over 6 units.
	assert.True(t, stats.Profit.Equal(decimal.NewFromInt(50)), "profit %s", stats.Profit)
	assert.Equal(t, int64(6), stats.Qty)
}

func TestDeleteProduct_CascadesToReceipts(t *testing.T) {
	svc, db := newTestLedger(t)
	product := createTestProduct(t, svc, "Widget")

	_, err := svc.RecordPurchase(context.Background(), &model.PurchaseRequest{
		ProductID: product.ID, Qty: 10, BuyTotal: 100,
	})
	require.NoError(t, err)
	_, err = svc.RecordSale(context.Background(), &model.SaleRequest{
		ProductID: product.ID, Qty: 4, SellTotal: 60,
	})
	require.NoError(t, err)

	require.NoError(t, svc.DeleteProduct(context.Background(), &model.DeleteProductRequest{
		ProductID: product.ID,
	}))

	products, err := svc.GetAllProducts()
	require.NoError(t, err)
	assert.Empty(t, products)

	purchases, err := svc.GetAllPurchases()
	require.NoError(t, err)
	assert.Empty(t, purchases)

	sales, err := svc.GetAllSales()
	require.NoError(t, err)
	assert.Empty(t, sales)

	var count int64
	db.Model(&model.BuyReceipt{}).Count(&count)
	assert.Equal(t, int64(0), count)
}

func TestDeleteProduct_UnknownIDIsNoOp(t *testing.T) {
	svc, _ := newTestLedger(t)

	err := svc.DeleteProduct(context.Background(), &model.DeleteProductRequest{
		ProductID: uuid.New(),
	})
	assert.NoError(t, err)
}

func TestGetAllPurchases_JoinsProductName(t *testing.T) {
	svc, _ := newTestLedger(t)
	product := createTestProduct(t, svc, "Widget")

	_, err := svc.RecordPurchase(context.Background(), &model.PurchaseRequest{
		ProductID: product.ID, Qty: 10, BuyTotal: 100,
	})
	require.NoError(t, err)

	purchases, err := svc.GetAllPurchases()
	require.NoError(t, err)
	require.Len(t, purchases, 1)
	assert.Equal(t, "Widget", purchases[0].Name)
	assert.Equal(t, 10, purchases[0].Qty)
	assert.True(t, purchases[0].BuyPrice.Equal(decimal.NewFromInt(10)))
}

func TestGetStockMovement_AggregatesPerDay(t *testing.T) {
	svc, _ := newTestLedger(t)
	product := createTestProduct(t, svc, "Widget")

	_, err := svc.RecordPurchase(context.Background(), &model.PurchaseRequest{
		ProductID: product.ID, Qty: 10, BuyTotal: 100,
	})
	require.NoError(t, err)
	_, err = svc.RecordSale(context.Background(), &model.SaleRequest{
		ProductID: product.ID, Qty: 3, SellTotal: 45,
	})
	require.NoError(t, err)

	data, err := svc.GetStockMovement(7)
	require.NoError(t, err)
	require.Len(t, data, 1)
	assert.Equal(t, 10, data[0].Inbound)
	assert.Equal(t, 3, data[0].Outbound)
}
