package model

import "github.com/google/uuid"

// Request bodies for the ledger endpoints. Field names follow the wire
// contract (all lowercase, no separators).

type CreateProductRequest struct {
	Name string `json:"name" validate:"required"`
}

type PurchaseRequest struct {
	ProductID uuid.UUID `json:"productid" validate:"uuid_required"`
	Qty       int       `json:"qty" validate:"required,gt=0"`
	BuyTotal  float64   `json:"buytotal" validate:"gte=0"`
}

type SaleRequest struct {
	ProductID uuid.UUID `json:"productid" validate:"uuid_required"`
	Qty       int       `json:"qty" validate:"required,gt=0"`
	SellTotal float64   `json:"selltotal"`
}

type DeleteProductRequest struct {
	ProductID uuid.UUID `json:"productid" validate:"uuid_required"`
}
