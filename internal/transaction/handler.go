package transaction

import (
	"errors"
	"fmt"
	"time"

	"ledger-backend/internal/auth"
	"ledger-backend/internal/models"

	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type ItemResponse struct {
	ProductID   uint                `json:"product_id"`
	ProductName string              `json:"product_name"`
	WeightKg    decimal.Decimal     `json:"weight_kg"`
	PricePerKg  decimal.Decimal     `json:"price_per_kg"`
	GSTPercent  decimal.NullDecimal `json:"gst_percent"`
	models.LineAmount
}

type TransactionResponse struct {
	ID            uint            `json:"id"`
	PartyID       uint            `json:"party_id"`
	PartyName     string          `json:"party_name"`
	VoucherNumber string          `json:"voucher_number"`
	VehicleNumber string          `json:"vehicle_number,omitempty"`
	PurchaseID    uint            `json:"purchase_transaction_id,omitempty"`
	IsBuilt       bool            `json:"is_built"`
	Items         []ItemResponse  `json:"items"`
	Total         decimal.Decimal `json:"total"`
	CreatedAt     string          `json:"created_at"`
}

func productName(p *models.Product) string {
	if p == nil {
		return ""
	}
	return p.ProductName
}

func purchaseResponse(pt models.PurchaseTransaction) TransactionResponse {
	res := TransactionResponse{
		ID:            pt.ID,
		PartyID:       pt.PartyID,
		PartyName:     models.PartyName(pt.Party),
		VoucherNumber: pt.PurchaseVoucherNumber,
		VehicleNumber: pt.VehicleNumber,
		IsBuilt:       pt.IsBuilt,
		Items:         make([]ItemResponse, 0, len(pt.Items)),
		Total:         models.PurchaseTotal(pt, pt.Items),
		CreatedAt:     pt.CreatedAt.Format(time.RFC3339),
	}
	for _, it := range pt.Items {
		res.Items = append(res.Items, ItemResponse{
			ProductID: it.ProductID, ProductName: productName(it.Product),
			WeightKg: it.WeightKg, PricePerKg: it.PricePerKg, GSTPercent: it.GSTPercent,
			LineAmount: it.Line(pt.IsBuilt),
		})
	}
	return res
}

func supplyResponse(st models.SupplyTransaction) TransactionResponse {
	res := TransactionResponse{
		ID:            st.ID,
		PartyID:       st.PartyID,
		PartyName:     models.PartyName(st.Party),
		VoucherNumber: st.Voucher(),
		PurchaseID:    st.PurchaseTransactionID,
		IsBuilt:       st.IsBuilt,
		Items:         make([]ItemResponse, 0, len(st.Items)),
		Total:         models.SupplyTotal(st, st.Items),
		CreatedAt:     st.CreatedAt.Format(time.RFC3339),
	}
	for _, it := range st.Items {
		res.Items = append(res.Items, ItemResponse{
			ProductID: it.ProductID, ProductName: productName(it.Product),
			WeightKg: it.WeightKg, PricePerKg: it.PricePerKg, GSTPercent: it.GSTPercent,
			LineAmount: it.Line(st.IsBuilt),
		})
	}
	return res
}

func httpError(err error) error {
	var missing *MissingPriceError
	switch {
	case errors.As(err, &missing):
		return fiber.NewError(fiber.StatusUnprocessableEntity, "Please set prices first: "+missing.Error())
	case errors.Is(err, ErrAlreadySupplied), errors.Is(err, ErrPurchaseSupplied):
		return fiber.NewError(fiber.StatusConflict, err.Error())
	case errors.Is(err, ErrInvalidInput):
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	case errors.Is(err, gorm.ErrRecordNotFound):
		return fiber.NewError(fiber.StatusNotFound, "Transaction not found")
	}
	return err
}

// dateRange reads optional from/to (YYYY-MM-DD, inclusive) query params.
func dateRange(c *fiber.Ctx, loc *time.Location) (time.Time, time.Time, error) {
	var from, to time.Time
	if v := c.Query("from"); v != "" {
		t, err := time.ParseInLocation("2006-01-02", v, loc)
		if err != nil {
			return from, to, fiber.NewError(fiber.StatusBadRequest, "from must be YYYY-MM-DD")
		}
		from = t
	}
	if v := c.Query("to"); v != "" {
		t, err := time.ParseInLocation("2006-01-02", v, loc)
		if err != nil {
			return from, to, fiber.NewError(fiber.StatusBadRequest, "to must be YYYY-MM-DD")
		}
		to = t.AddDate(0, 0, 1)
	}
	return from, to, nil
}

func idParam(c *fiber.Ctx) (uint, error) {
	var id uint
	if _, err := fmt.Sscan(c.Params("id"), &id); err != nil || id == 0 {
		return 0, fiber.NewError(fiber.StatusBadRequest, "Invalid id")
	}
	return id, nil
}

// POST /api/purchases
func CreatePurchaseHandler(svc *Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var body PurchaseInput
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
		}
		pt, err := svc.CreatePurchase(c.UserContext(), body, auth.Scope(c))
		if err != nil {
			return httpError(err)
		}
		return c.Status(fiber.StatusCreated).JSON(purchaseResponse(*pt))
	}
}

// GET /api/purchases?from=&to=&party_id=
func ListPurchasesHandler(svc *Service, loc *time.Location) fiber.Handler {
	return func(c *fiber.Ctx) error {
		from, to, err := dateRange(c, loc)
		if err != nil {
			return err
		}
		list, err := svc.ListPurchases(c.UserContext(), from, to, uint(c.QueryInt("party_id")))
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Could not list purchases")
		}
		res := make([]TransactionResponse, 0, len(list))
		for _, pt := range list {
			res = append(res, purchaseResponse(pt))
		}
		return c.JSON(res)
	}
}

// GET /api/purchases/unsupplied
func UnsuppliedHandler(svc *Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		list, err := svc.Unsupplied(c.UserContext())
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Could not list purchases")
		}
		res := make([]TransactionResponse, 0, len(list))
		for _, pt := range list {
			res = append(res, purchaseResponse(pt))
		}
		return c.JSON(res)
	}
}

// DELETE /api/purchases/:id (admin)
func DeletePurchaseHandler(svc *Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := idParam(c)
		if err != nil {
			return err
		}
		if err := svc.DeletePurchase(c.UserContext(), id, auth.Scope(c)); err != nil {
			return httpError(err)
		}
		return c.SendStatus(fiber.StatusNoContent)
	}
}

// POST /api/supplies
func CreateSupplyHandler(svc *Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var body SupplyInput
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
		}
		st, err := svc.CreateSupply(c.UserContext(), body, auth.Scope(c))
		if err != nil {
			return httpError(err)
		}
		return c.Status(fiber.StatusCreated).JSON(supplyResponse(*st))
	}
}

// GET /api/supplies?from=&to=&party_id=
func ListSuppliesHandler(svc *Service, loc *time.Location) fiber.Handler {
	return func(c *fiber.Ctx) error {
		from, to, err := dateRange(c, loc)
		if err != nil {
			return err
		}
		list, err := svc.ListSupplies(c.UserContext(), from, to, uint(c.QueryInt("party_id")))
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Could not list supplies")
		}
		res := make([]TransactionResponse, 0, len(list))
		for _, st := range list {
			res = append(res, supplyResponse(st))
		}
		return c.JSON(res)
	}
}

// DELETE /api/supplies/:id (admin)
func DeleteSupplyHandler(svc *Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := idParam(c)
		if err != nil {
			return err
		}
		if err := svc.DeleteSupply(c.UserContext(), id, auth.Scope(c)); err != nil {
			return httpError(err)
		}
		return c.SendStatus(fiber.StatusNoContent)
	}
}
