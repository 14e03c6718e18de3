// Package transaction records purchase and supply transactions. Prices come
// from the price masters; a supply copies the weights of the purchase it is
// made against and every purchase can be supplied once.
package transaction

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"ledger-backend/internal/audit"
	"ledger-backend/internal/master"
	"ledger-backend/internal/models"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

var (
	ErrInvalidInput     = errors.New("invalid input")
	ErrAlreadySupplied  = errors.New("purchase transaction is already supplied")
	ErrPurchaseSupplied = errors.New("purchase transaction has a supply and cannot be deleted")
)

// MissingPriceError lists the products that have no price for the party.
type MissingPriceError struct {
	Kind     models.PriceKind
	Products []string
}

func (e *MissingPriceError) Error() string {
	return fmt.Sprintf("%s price not set for %s", e.Kind, strings.Join(e.Products, ", "))
}

type PurchaseItemInput struct {
	ProductID uint            `json:"product_id"`
	WeightKg  decimal.Decimal `json:"weight_kg"`
}

type PurchaseInput struct {
	PartyID               uint                `json:"party_id"`
	PurchaseVoucherNumber string              `json:"purchase_voucher_number"`
	VehicleNumber         string              `json:"vehicle_number"`
	IsBuilt               bool                `json:"is_built"`
	Items                 []PurchaseItemInput `json:"items"`
	CreatedAt             time.Time           `json:"-"` // zero means now
}

type SupplyInput struct {
	PurchaseTransactionID uint      `json:"purchase_transaction_id"`
	PartyID               uint      `json:"party_id"`
	IsBuilt               bool      `json:"is_built"`
	CreatedAt             time.Time `json:"-"`
}

type Service struct {
	db *gorm.DB
}

func NewService(db *gorm.DB) *Service {
	return &Service{db: db}
}

func invalid(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalidInput, fmt.Sprintf(format, args...))
}

func partyOfGrade(tx *gorm.DB, id uint, grade models.PartyGrade) (models.Party, error) {
	var party models.Party
	if err := tx.First(&party, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return party, invalid("party %d not found", id)
		}
		return party, err
	}
	if party.Grade != grade {
		return party, invalid("%s is not a %s", party.Name, grade)
	}
	return party, nil
}

func gstFor(p models.Product, built bool) decimal.NullDecimal {
	if !built {
		return decimal.NullDecimal{}
	}
	return p.GSTSlab
}

// CreatePurchase stores a purchase priced from the purchase price master.
// GST rates are taken from the products when the purchase is built.
func (s *Service) CreatePurchase(ctx context.Context, in PurchaseInput, scope models.PinScope) (*models.PurchaseTransaction, error) {
	in.PurchaseVoucherNumber = strings.TrimSpace(in.PurchaseVoucherNumber)
	in.VehicleNumber = strings.TrimSpace(in.VehicleNumber)
	if in.PurchaseVoucherNumber == "" {
		return nil, invalid("purchase_voucher_number is required")
	}
	if len(in.Items) == 0 {
		return nil, invalid("at least one item is required")
	}
	for i, it := range in.Items {
		if it.ProductID == 0 {
			return nil, invalid("item %d: product_id is required", i+1)
		}
		if !it.WeightKg.IsPositive() {
			return nil, invalid("item %d: weight_kg must be greater than 0", i+1)
		}
	}

	var pt models.PurchaseTransaction
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		party, err := partyOfGrade(tx, in.PartyID, models.GradePurchaseParty)
		if err != nil {
			return err
		}

		missing := &MissingPriceError{Kind: models.PriceKindPurchase}
		items := make([]models.PurchaseTransactionItem, 0, len(in.Items))
		for _, it := range in.Items {
			var product models.Product
			if err := tx.First(&product, it.ProductID).Error; err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					return invalid("product %d not found", it.ProductID)
				}
				return err
			}
			price, ok, err := master.LookupPrice(tx, models.PriceKindPurchase, party.ID, product.ID)
			if err != nil {
				return err
			}
			if !ok {
				missing.Products = append(missing.Products, product.ProductName)
				continue
			}
			items = append(items, models.PurchaseTransactionItem{
				ProductID:  product.ID,
				WeightKg:   it.WeightKg,
				PricePerKg: price,
				GSTPercent: gstFor(product, in.IsBuilt),
			})
		}
		if len(missing.Products) > 0 {
			return missing
		}

		pt = models.PurchaseTransaction{
			PartyID:               party.ID,
			PurchaseVoucherNumber: in.PurchaseVoucherNumber,
			VehicleNumber:         in.VehicleNumber,
			IsBuilt:               in.IsBuilt,
			Items:                 items,
			CreatedAt:             in.CreatedAt,
		}
		if err := tx.Create(&pt).Error; err != nil {
			return err
		}
		pt.Party = &party

		return audit.WriteLog(tx, audit.LogOptions{
			Scope:       scope,
			EntityType:  audit.EntityPurchaseTransaction,
			EntityID:    pt.ID,
			Action:      models.AuditActionCreate,
			Description: fmt.Sprintf("Purchase %s from %s", pt.PurchaseVoucherNumber, party.Name),
			After:       pt,
		})
	})
	if err != nil {
		return nil, err
	}
	return &pt, nil
}

// CreateSupply stores a supply against a purchase that has not been supplied
// yet. Weights are copied from the purchase, prices come from the supply
// price master.
func (s *Service) CreateSupply(ctx context.Context, in SupplyInput, scope models.PinScope) (*models.SupplyTransaction, error) {
	if in.PurchaseTransactionID == 0 {
		return nil, invalid("purchase_transaction_id is required")
	}

	var st models.SupplyTransaction
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		party, err := partyOfGrade(tx, in.PartyID, models.GradeSupplyParty)
		if err != nil {
			return err
		}

		var purchase models.PurchaseTransaction
		if err := tx.Preload("Items.Product").First(&purchase, in.PurchaseTransactionID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return invalid("purchase transaction %d not found", in.PurchaseTransactionID)
			}
			return err
		}

		var supplied int64
		if err := tx.Model(&models.SupplyTransaction{}).
			Where("purchase_transaction_id = ?", purchase.ID).
			Count(&supplied).Error; err != nil {
			return err
		}
		if supplied > 0 {
			return ErrAlreadySupplied
		}

		missing := &MissingPriceError{Kind: models.PriceKindSupply}
		items := make([]models.SupplyTransactionItem, 0, len(purchase.Items))
		for _, it := range purchase.Items {
			price, ok, err := master.LookupPrice(tx, models.PriceKindSupply, party.ID, it.ProductID)
			if err != nil {
				return err
			}
			var product models.Product
			if it.Product != nil {
				product = *it.Product
			}
			if !ok {
				missing.Products = append(missing.Products, product.ProductName)
				continue
			}
			items = append(items, models.SupplyTransactionItem{
				ProductID:  it.ProductID,
				WeightKg:   it.WeightKg,
				PricePerKg: price,
				GSTPercent: gstFor(product, in.IsBuilt),
			})
		}
		if len(missing.Products) > 0 {
			return missing
		}
		if len(items) == 0 {
			return invalid("purchase transaction %d has no items", purchase.ID)
		}

		st = models.SupplyTransaction{
			PartyID:               party.ID,
			PurchaseTransactionID: purchase.ID,
			IsBuilt:               in.IsBuilt,
			Items:                 items,
			CreatedAt:             in.CreatedAt,
		}
		if err := tx.Create(&st).Error; err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return ErrAlreadySupplied
			}
			return err
		}
		st.Party = &party
		purchase.Items = nil
		st.PurchaseTransaction = &purchase

		return audit.WriteLog(tx, audit.LogOptions{
			Scope:       scope,
			EntityType:  audit.EntitySupplyTransaction,
			EntityID:    st.ID,
			Action:      models.AuditActionCreate,
			Description: fmt.Sprintf("Supply to %s against %s", party.Name, purchase.PurchaseVoucherNumber),
			After:       st,
		})
	})
	if err != nil {
		return nil, err
	}
	return &st, nil
}

// Unsupplied lists purchases that no supply points at yet, oldest first.
func (s *Service) Unsupplied(ctx context.Context) ([]models.PurchaseTransaction, error) {
	var out []models.PurchaseTransaction
	err := s.db.WithContext(ctx).
		Where("NOT EXISTS (SELECT 1 FROM supply_transactions st WHERE st.purchase_transaction_id = purchase_transactions.id)").
		Preload("Party").
		Preload("Items.Product").
		Order("created_at asc, id asc").
		Find(&out).Error
	return out, err
}

func (s *Service) ListPurchases(ctx context.Context, from, to time.Time, partyID uint) ([]models.PurchaseTransaction, error) {
	q := s.db.WithContext(ctx).Preload("Party").Preload("Items.Product")
	q = between(q, from, to)
	if partyID > 0 {
		q = q.Where("party_id = ?", partyID)
	}
	var out []models.PurchaseTransaction
	err := q.Order("created_at desc, id desc").Find(&out).Error
	return out, err
}

func (s *Service) ListSupplies(ctx context.Context, from, to time.Time, partyID uint) ([]models.SupplyTransaction, error) {
	q := s.db.WithContext(ctx).Preload("Party").Preload("PurchaseTransaction").Preload("Items.Product")
	q = between(q, from, to)
	if partyID > 0 {
		q = q.Where("party_id = ?", partyID)
	}
	var out []models.SupplyTransaction
	err := q.Order("created_at desc, id desc").Find(&out).Error
	return out, err
}

// between limits created_at to [from, to); zero bounds are open.
func between(q *gorm.DB, from, to time.Time) *gorm.DB {
	if !from.IsZero() {
		q = q.Where("created_at >= ?", from.UTC())
	}
	if !to.IsZero() {
		q = q.Where("created_at < ?", to.UTC())
	}
	return q
}

// DeletePurchase removes a purchase with its items. A purchase that has been
// supplied is kept.
func (s *Service) DeletePurchase(ctx context.Context, id uint, scope models.PinScope) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var pt models.PurchaseTransaction
		if err := tx.Preload("Items").First(&pt, id).Error; err != nil {
			return err
		}

		var supplied int64
		if err := tx.Model(&models.SupplyTransaction{}).Where("purchase_transaction_id = ?", id).Count(&supplied).Error; err != nil {
			return err
		}
		if supplied > 0 {
			return ErrPurchaseSupplied
		}

		if err := tx.Select("Items").Delete(&pt).Error; err != nil {
			return err
		}
		return audit.WriteLog(tx, audit.LogOptions{
			Scope:       scope,
			EntityType:  audit.EntityPurchaseTransaction,
			EntityID:    pt.ID,
			Action:      models.AuditActionDelete,
			Description: "Deleted purchase " + pt.PurchaseVoucherNumber,
			Before:      pt,
		})
	})
}

func (s *Service) DeleteSupply(ctx context.Context, id uint, scope models.PinScope) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var st models.SupplyTransaction
		if err := tx.Preload("Items").First(&st, id).Error; err != nil {
			return err
		}
		if err := tx.Select("Items").Delete(&st).Error; err != nil {
			return err
		}
		return audit.WriteLog(tx, audit.LogOptions{
			Scope:       scope,
			EntityType:  audit.EntitySupplyTransaction,
			EntityID:    st.ID,
			Action:      models.AuditActionDelete,
			Description: fmt.Sprintf("Deleted supply %d", st.ID),
			Before:      st,
		})
	})
}
