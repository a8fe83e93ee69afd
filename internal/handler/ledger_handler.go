package handler

import (
	"errors"
	"strconv"

	"go-inventory-ledger/internal/model"
	"go-inventory-ledger/internal/service"

	"github.com/gofiber/fiber/v2"
)

type LedgerHandler struct {
	service service.LedgerService
}

func NewLedgerHandler(s service.LedgerService) *LedgerHandler {
	return &LedgerHandler{service: s}
}

// errorResponse maps the ledger error taxonomy onto HTTP statuses. Everything
// unrecognized is a storage failure.
func errorResponse(c *fiber.Ctx, err error) error {
	status := fiber.StatusInternalServerError
	switch {
	case errors.Is(err, service.ErrValidation):
		status = fiber.StatusBadRequest
	case errors.Is(err, service.ErrProductNotFound):
		status = fiber.StatusNotFound
	case errors.Is(err, service.ErrInsufficientStock):
		status = fiber.StatusConflict
	}
	return c.Status(status).JSON(fiber.Map{"message": err.Error()})
}

func (h *LedgerHandler) GetProducts(c *fiber.Ctx) error {
	products, err := h.service.GetAllProducts()
	if err != nil {
		return errorResponse(c, err)
	}
	return c.JSON(products)
}

func (h *LedgerHandler) GetPurchases(c *fiber.Ctx) error {
	purchases, err := h.service.GetAllPurchases()
	if err != nil {
		return errorResponse(c, err)
	}
	return c.JSON(purchases)
}

func (h *LedgerHandler) GetSales(c *fiber.Ctx) error {
	sales, err := h.service.GetAllSales()
	if err != nil {
		return errorResponse(c, err)
	}
	return c.JSON(sales)
}

func (h *LedgerHandler) GetStatistics(c *fiber.Ctx) error {
	stats, err := h.service.GetStatistics()
	if err != nil {
		return errorResponse(c, err)
	}
	return c.JSON(stats)
}

// GetStockMovement returns per-day inbound/outbound quantities for charts.
// Query params: days (default 7)
func (h *LedgerHandler) GetStockMovement(c *fiber.Ctx) error {
	daysStr := c.Query("days", "7")
	days, err := strconv.Atoi(daysStr)
	if err != nil || days <= 0 {
		days = 7
	}

	data, err := h.service.GetStockMovement(days)
	if err != nil {
		return errorResponse(c, err)
	}

	return c.JSON(fiber.Map{
		"period": days,
		"data":   data,
	})
}

func (h *LedgerHandler) CreateProduct(c *fiber.Ctx) error {
	var req model.CreateProductRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "Invalid JSON"})
	}

	product, err := h.service.CreateProduct(c.UserContext(), &req)
	if err != nil {
		return errorResponse(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"productid": product.ID,
		"message":   "Success",
	})
}

func (h *LedgerHandler) RecordPurchase(c *fiber.Ctx) error {
	var req model.PurchaseRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "Invalid JSON"})
	}

	receipt, err := h.service.RecordPurchase(c.UserContext(), &req)
	if err != nil {
		return errorResponse(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"buyreceiptid": receipt.ID,
		"message":      "Success",
	})
}

func (h *LedgerHandler) RecordSale(c *fiber.Ctx) error {
	var req model.SaleRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "Invalid JSON"})
	}

	receipt, err := h.service.RecordSale(c.UserContext(), &req)
	if err != nil {
		return errorResponse(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"sellreceiptid": receipt.ID,
		"message":       "Success",
	})
}

func (h *LedgerHandler) DeleteProduct(c *fiber.Ctx) error {
	var req model.DeleteProductRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "Invalid JSON"})
	}

	if err := h.service.DeleteProduct(c.UserContext(), &req); err != nil {
		return errorResponse(c, err)
	}

	return c.JSON(fiber.Map{"message": "Deleted Successfully"})
}
