package master

import (
	"strings"

	"ledger-backend/internal/database"
	"ledger-backend/internal/models"

	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"
)

type ProductRequest struct {
	ProductName  string              `json:"product_name"`
	ProductGrade string              `json:"product_grade"`
	GSTSlab      decimal.NullDecimal `json:"gst_slab"`
	Confirmed    *bool               `json:"confirmed"`
}

func (r *ProductRequest) normalize() error {
	r.ProductName = strings.TrimSpace(r.ProductName)
	r.ProductGrade = strings.TrimSpace(r.ProductGrade)
	if r.ProductName == "" {
		return fiber.NewError(fiber.StatusBadRequest, "product_name is required")
	}
	if r.GSTSlab.Valid && (r.GSTSlab.Decimal.IsNegative() || r.GSTSlab.Decimal.GreaterThan(decimal.NewFromInt(100))) {
		return fiber.NewError(fiber.StatusBadRequest, "gst_slab must be between 0 and 100")
	}
	return nil
}

// GET /api/products?confirmed=true
func ListProductsHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		dbq := database.DB.Model(&models.Product{})
		switch c.Query("confirmed") {
		case "true":
			dbq = dbq.Where("confirmed = ?", true)
		case "false":
			dbq = dbq.Where("confirmed = ?", false)
		}

		var products []models.Product
		if err := dbq.Order("product_name asc").Find(&products).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Could not list products")
		}
		return c.JSON(products)
	}
}

// POST /api/products
func CreateProductHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		var body ProductRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
		}
		if err := body.normalize(); err != nil {
			return err
		}

		confirmed := body.Confirmed == nil || *body.Confirmed
		product := models.Product{
			ProductName:  body.ProductName,
			ProductGrade: body.ProductGrade,
			GSTSlab:      body.GSTSlab,
			Confirmed:    confirmed,
		}
		if err := database.DB.Create(&product).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Could not create product")
		}
		// gorm skips a false bool on insert and reads back the column default,
		// so product.Confirmed is true here either way
		if !confirmed {
			if err := database.DB.Model(&product).Update("confirmed", false).Error; err != nil {
				return fiber.NewError(fiber.StatusInternalServerError, "Could not create product")
			}
			product.Confirmed = false
		}
		return c.Status(fiber.StatusCreated).JSON(product)
	}
}

// PUT /api/products/:id
func UpdateProductHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		var product models.Product
		if err := database.DB.First(&product, "id = ?", c.Params("id")).Error; err != nil {
			return fiber.NewError(fiber.StatusNotFound, "Product not found")
		}

		var body ProductRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
		}
		if err := body.normalize(); err != nil {
			return err
		}

		product.ProductName = body.ProductName
		product.ProductGrade = body.ProductGrade
		product.GSTSlab = body.GSTSlab
		if body.Confirmed != nil {
			product.Confirmed = *body.Confirmed
		}
		if err := database.DB.Save(&product).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Could not update product")
		}
		return c.JSON(product)
	}
}

// DELETE /api/products/:id (admin)
func DeleteProductHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		var product models.Product
		if err := database.DB.First(&product, "id = ?", c.Params("id")).Error; err != nil {
			return fiber.NewError(fiber.StatusNotFound, "Product not found")
		}

		for _, model := range []any{
			&models.PurchaseTransactionItem{}, &models.SupplyTransactionItem{},
			&models.PurchasePrice{}, &models.SupplyPrice{},
		} {
			var n int64
			if err := database.DB.Model(model).Where("product_id = ?", product.ID).Count(&n).Error; err != nil {
				return fiber.NewError(fiber.StatusInternalServerError, "Could not check product usage")
			}
			if n > 0 {
				return fiber.NewError(fiber.StatusConflict, "Product is in use and cannot be deleted")
			}
		}

		if err := database.DB.Delete(&product).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Could not delete product")
		}
		return c.SendStatus(fiber.StatusNoContent)
	}
}
