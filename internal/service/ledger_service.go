package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go-inventory-ledger/internal/model"
	"go-inventory-ledger/internal/repository"
	"go-inventory-ledger/internal/ws"
	"go-inventory-ledger/pkg/validator"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type LedgerService interface {
	CreateProduct(ctx context.Context, req *model.CreateProductRequest) (*model.Product, error)
	RecordPurchase(ctx context.Context, req *model.PurchaseRequest) (*model.BuyReceipt, error)
	RecordSale(ctx context.Context, req *model.SaleRequest) (*model.SellReceipt, error)
	DeleteProduct(ctx context.Context, req *model.DeleteProductRequest) error
	GetAllProducts() ([]model.Product, error)
	GetAllPurchases() ([]repository.PurchaseRow, error)
	GetAllSales() ([]repository.SaleRow, error)
	GetStatistics() (*repository.Statistics, error)
	GetStockMovement(days int) ([]repository.StockMovementData, error)
}

type ledgerService struct {
	productRepo repository.ProductRepository
	receiptRepo repository.ReceiptRepository
	db          *gorm.DB
	hub         *ws.Hub
}

func NewLedgerService(pRepo repository.ProductRepository, rRepo repository.ReceiptRepository, db *gorm.DB, hub *ws.Hub) LedgerService {
	return &ledgerService{
		productRepo: pRepo,
		receiptRepo: rRepo,
		db:          db,
		hub:         hub,
	}
}

func validationError(errs []*validator.ErrorResponse) error {
	first := errs[0]
	return fmt.Errorf("%w: field '%s' failed on tag '%s'", ErrValidation, first.FailedField, first.Tag)
}

// runInTx executes fn as one DB transaction, retrying once when the store
// reports a transient serialization conflict. Validation and not-found
// errors pass through untouched.
func (s *ledgerService) runInTx(ctx context.Context, fn func(tx *gorm.DB) error) error {
	err := s.db.WithContext(ctx).Transaction(fn)
	if isSerializationFailure(err) {
		err = s.db.WithContext(ctx).Transaction(fn)
	}
	return err
}

func isSerializationFailure(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		// 40001 serialization_failure, 40P01 deadlock_detected
		return pgErr.Code == "40001" || pgErr.Code == "40P01"
	}
	return false
}

func (s *ledgerService) CreateProduct(ctx context.Context, req *model.CreateProductRequest) (*model.Product, error) {
	if errs := validator.ValidateStruct(req); len(errs) > 0 {
		return nil, validationError(errs)
	}

	// New products always start empty; stock and value only move through
	// purchase and sale postings.
	product := &model.Product{
		Name:      req.Name,
		Value:     decimal.Zero,
		QtyOnHand: 0,
	}
	if err := s.productRepo.Create(product); err != nil {
		return nil, err
	}

	go s.hub.Publish(ws.Event{
		Type:    "product_created",
		Payload: product,
		Message: fmt.Sprintf("product '%s' created", product.Name),
	})

	return product, nil
}

func (s *ledgerService) RecordPurchase(ctx context.Context, req *model.PurchaseRequest) (*model.BuyReceipt, error) {
	if errs := validator.ValidateStruct(req); len(errs) > 0 {
		return nil, validationError(errs)
	}

	buyTotal := decimal.NewFromFloat(req.BuyTotal)
	// Qty is validated > 0 above, so the unit price division is safe.
	buyPrice := buyTotal.Div(decimal.NewFromInt(int64(req.Qty)))

	var receipt *model.BuyReceipt
	err := s.runInTx(ctx, func(tx *gorm.DB) error {
		product, err := s.productRepo.FindForUpdate(tx, req.ProductID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrProductNotFound
			}
			return err
		}

		receipt = &model.BuyReceipt{
			ProductID: product.ID,
			Qty:       req.Qty,
			BuyPrice:  buyPrice,
			BuyTotal:  buyTotal,
			Date:      time.Now(),
		}
		if err := tx.Create(receipt).Error; err != nil {
			return err
		}

		return s.productRepo.UpdateHoldings(tx, product.ID,
			product.Value.Add(buyTotal), product.QtyOnHand+req.Qty)
	})
	if err != nil {
		return nil, err
	}

	go s.hub.Publish(ws.Event{
		Type:    "purchase_recorded",
		Payload: receipt,
		Message: fmt.Sprintf("bought %d units for %s", receipt.Qty, receipt.BuyTotal),
	})

	return receipt, nil
}

func (s *ledgerService) RecordSale(ctx context.Context, req *model.SaleRequest) (*model.SellReceipt, error) {
	if errs := validator.ValidateStruct(req); len(errs) > 0 {
		return nil, validationError(errs)
	}

	sellTotal := decimal.NewFromFloat(req.SellTotal)
	qty := decimal.NewFromInt(int64(req.Qty))
	sellPrice := sellTotal.Div(qty)

	var receipt *model.SellReceipt
	err := s.runInTx(ctx, func(tx *gorm.DB) error {
		product, err := s.productRepo.FindForUpdate(tx, req.ProductID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrProductNotFound
			}
			return err
		}

		// The row lock above makes this check authoritative: no concurrent
		// sale can drain the stock between here and the update below. This
		// also covers the zero-stock case before any division happens.
		if req.Qty > product.QtyOnHand {
			return ErrInsufficientStock
		}

		// Weighted-average cost of the stock on hand, snapshotted for the
		// receipt.
		unitCost := product.Value.Div(decimal.NewFromInt(int64(product.QtyOnHand)))
		buyTotal := unitCost.Mul(qty)

		receipt = &model.SellReceipt{
			ProductID: product.ID,
			Qty:       req.Qty,
			SellPrice: sellPrice,
			BuyPrice:  unitCost,
			SellTotal: sellTotal,
			BuyTotal:  buyTotal,
			Profit:    sellTotal.Sub(buyTotal),
			Date:      time.Now(),
		}
		if err := tx.Create(receipt).Error; err != nil {
			return err
		}

		return s.productRepo.UpdateHoldings(tx, product.ID,
			product.Value.Sub(buyTotal), product.QtyOnHand-req.Qty)
	})
	if err != nil {
		return nil, err
	}

	go s.hub.Publish(ws.Event{
		Type:    "sale_recorded",
		Payload: receipt,
		Message: fmt.Sprintf("sold %d units for %s (profit %s)", receipt.Qty, receipt.SellTotal, receipt.Profit),
	})

	return receipt, nil
}

// DeleteProduct removes a product and its whole receipt history in one
// transaction, children first. Deleting an unknown product is a no-op.
func (s *ledgerService) DeleteProduct(ctx context.Context, req *model.DeleteProductRequest) error {
	if errs := validator.ValidateStruct(req); len(errs) > 0 {
		return validationError(errs)
	}

	err := s.runInTx(ctx, func(tx *gorm.DB) error {
		if err := s.receiptRepo.DeleteByProduct(tx, req.ProductID); err != nil {
			return err
		}
		return s.productRepo.Delete(tx, req.ProductID)
	})
	if err != nil {
		return err
	}

	go s.hub.Publish(ws.Event{
		Type:    "product_deleted",
		Payload: map[string]interface{}{"productid": req.ProductID},
		Message: "product deleted",
	})

	return nil
}

func (s *ledgerService) GetAllProducts() ([]model.Product, error) {
	return s.productRepo.FindAll()
}

func (s *ledgerService) GetAllPurchases() ([]repository.PurchaseRow, error) {
	return s.receiptRepo.FindAllPurchases()
}

func (s *ledgerService) GetAllSales() ([]repository.SaleRow, error) {
	return s.receiptRepo.FindAllSales()
}

func (s *ledgerService) GetStatistics() (*repository.Statistics, error) {
	return s.receiptRepo.GetStatistics()
}

func (s *ledgerService) GetStockMovement(days int) ([]repository.StockMovementData, error) {
	endDate := time.Now()
	startDate := endDate.AddDate(0, 0, -days)

	return s.receiptRepo.GetStockMovement(startDate, endDate)
}
