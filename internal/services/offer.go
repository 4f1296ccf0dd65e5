package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/diewo77/go-offers/internal/db"
	"github.com/diewo77/go-offers/internal/models"
	"github.com/diewo77/go-offers/internal/pricing"
	"github.com/diewo77/go-offers/validation"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// CreateOfferInput is the payload of the new offer form.
type CreateOfferInput struct {
	CustomerName    string `json:"customer_name"`
	CustomerAddress string `json:"customer_address"`
	CustomerPhone   string `json:"customer_phone"`
	CustomerEmail   string `json:"customer_email"`
	ValidUntil      string `json:"valid_until"` // YYYY-MM-DD
	Currency        string `json:"currency"`

	// Set by the handler from the request principal.
	CreatedBy string `json:"-"`
}

// ItemInput is one submitted offer line. TotalCost and SalePrice are what
// the client computed; the stored values are always recomputed.
type ItemInput struct {
	Product      string  `json:"product"`
	Size         string  `json:"size"`
	Quantity     int     `json:"quantity"`
	UnitCost     float64 `json:"unit_cost"`
	AssemblyCost float64 `json:"assembly_cost"`
	ProfitRate   float64 `json:"profit_rate"`
	TotalCost    float64 `json:"total_cost"`
	SalePrice    float64 `json:"sale_price"`
}

func (in ItemInput) line() pricing.Line {
	return pricing.Line{
		Quantity:     in.Quantity,
		UnitCost:     in.UnitCost,
		AssemblyCost: in.AssemblyCost,
		ProfitRate:   in.ProfitRate,
	}
}

// OfferDefaults fill fields the caller leaves blank.
type OfferDefaults struct {
	Currency  string
	CreatedBy string
}

type OfferService struct {
	db       *gorm.DB
	log      *slog.Logger
	defaults OfferDefaults
	now      func() time.Time
}

func NewOfferService(db *gorm.DB, defaults OfferDefaults, log *slog.Logger) *OfferService {
	if log == nil {
		log = slog.Default()
	}
	return &OfferService{
		db:       db,
		log:      log,
		defaults: defaults,
		now:      func() time.Time { return time.Now().UTC() },
	}
}

// WithClock replaces the time source used for created_at and the number year.
func (s *OfferService) WithClock(now func() time.Time) *OfferService {
	s.now = now
	return s
}

func (in *CreateOfferInput) normalize(defaults OfferDefaults) (time.Time, validation.Violations) {
	in.CustomerName = strings.TrimSpace(in.CustomerName)
	in.CustomerAddress = strings.TrimSpace(in.CustomerAddress)
	in.CustomerPhone = strings.TrimSpace(in.CustomerPhone)
	in.CustomerEmail = strings.TrimSpace(in.CustomerEmail)
	in.Currency = strings.ToUpper(strings.TrimSpace(in.Currency))
	if in.Currency == "" {
		in.Currency = defaults.Currency
	}
	if strings.TrimSpace(in.CreatedBy) == "" {
		in.CreatedBy = defaults.CreatedBy
	}

	v := validation.Violations{}
	validation.Required("customer_name", in.CustomerName, v)
	validation.MaxLength("customer_name", in.CustomerName, 100, v)
	validation.MaxLength("customer_address", in.CustomerAddress, 200, v)
	validation.MaxLength("customer_phone", in.CustomerPhone, 30, v)
	validation.MaxLength("customer_email", in.CustomerEmail, 100, v)
	validation.MaxLength("currency", in.Currency, 10, v)
	validUntil := validation.Date("valid_until", in.ValidUntil, v)
	return validUntil, v
}

// Create validates in, then in one transaction reuses or creates the
// customer by exact name, inserts the offer and numbers it after its id.
func (s *OfferService) Create(ctx context.Context, in CreateOfferInput) (*models.Offer, error) {
	validUntil, v := in.normalize(s.defaults)
	if err := invalid(v); err != nil {
		return nil, err
	}
	var offer models.Offer
	err := db.WithTx(ctx, s.db, func(tx *gorm.DB) error {
		var customer models.Customer
		err := tx.Where("name = ?", in.CustomerName).First(&customer).Error
		switch {
		case errors.Is(err, gorm.ErrRecordNotFound):
			customer = models.Customer{
				Name:    in.CustomerName,
				Address: in.CustomerAddress,
				Phone:   in.CustomerPhone,
				Email:   in.CustomerEmail,
			}
			if err := tx.Create(&customer).Error; err != nil {
				return fmt.Errorf("create customer: %w", err)
			}
		case err != nil:
			return fmt.Errorf("find customer: %w", err)
		}

		now := s.now()
		offer = models.Offer{
			CreatedAt:   now,
			OfferNumber: models.ProvisionalOfferNumber(),
			CustomerID:  customer.ID,
			Customer:    &customer,
			CreatedBy:   in.CreatedBy,
			ValidUntil:  validUntil,
			Currency:    in.Currency,
		}
		if err := tx.Omit(clause.Associations).Create(&offer).Error; err != nil {
			return fmt.Errorf("create offer: %w", err)
		}
		if err := models.AssignOfferNumber(tx, &offer, now); err != nil {
			return fmt.Errorf("number offer %d: %w", offer.ID, err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.log.InfoContext(ctx, "offer created", "offer_id", offer.ID, "offer_number", offer.OfferNumber, "customer", in.CustomerName)
	return &offer, nil
}

// ReplaceItems swaps the whole item set of an offer for items, in order.
// Either every new item is stored or the previous set is left untouched.
// An empty list clears the offer.
func (s *OfferService) ReplaceItems(ctx context.Context, offerID uint, items []ItemInput) ([]models.OfferItem, error) {
	v := validation.Violations{}
	rows := make([]models.OfferItem, 0, len(items))
	for i, in := range items {
		prefix := fmt.Sprintf("items[%d].", i)
		product := strings.TrimSpace(in.Product)
		size := strings.TrimSpace(in.Size)
		validation.Required(prefix+"product", product, v)
		validation.MaxLength(prefix+"product", product, 100, v)
		validation.MaxLength(prefix+"size", size, 50, v)
		pricing.Validate(prefix, in.line(), v)
		rows = append(rows, models.OfferItem{
			Position:     i,
			Product:      product,
			Size:         size,
			Quantity:     in.Quantity,
			UnitCost:     in.UnitCost,
			AssemblyCost: in.AssemblyCost,
			ProfitRate:   in.ProfitRate,
		})
	}
	if err := invalid(v); err != nil {
		return nil, err
	}
	for i := range rows {
		totals := pricing.Compute(rows[i].Line())
		if !pricing.Equal(items[i].TotalCost, totals.TotalCost) || !pricing.Equal(items[i].SalePrice, totals.SalePrice) {
			s.log.DebugContext(ctx, "client totals differ, using computed values",
				"offer_id", offerID, "position", i,
				"client_total_cost", items[i].TotalCost, "total_cost", totals.TotalCost,
				"client_sale_price", items[i].SalePrice, "sale_price", totals.SalePrice)
		}
		rows[i].TotalCost = totals.TotalCost
		rows[i].SalePrice = totals.SalePrice
	}

	err := db.WithTx(ctx, s.db, func(tx *gorm.DB) error {
		var offer models.Offer
		err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).Select("id").First(&offer, offerID).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("offer %d: %w", offerID, ErrNotFound)
		}
		if err != nil {
			return fmt.Errorf("lock offer: %w", err)
		}
		if err := tx.Where("offer_id = ?", offerID).Delete(&models.OfferItem{}).Error; err != nil {
			return fmt.Errorf("delete items: %w", err)
		}
		if len(rows) == 0 {
			return nil
		}
		for i := range rows {
			rows[i].ID = 0 // a retried attempt must not reuse ids of the rolled back insert
			rows[i].OfferID = offerID
		}
		if err := tx.Create(&rows).Error; err != nil {
			return fmt.Errorf("insert items: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.log.InfoContext(ctx, "offer items replaced", "offer_id", offerID, "count", len(rows))
	return rows, nil
}

func (s *OfferService) preloaded(ctx context.Context) *gorm.DB {
	return s.db.WithContext(ctx).
		Preload("Customer").
		Preload("Items", func(tx *gorm.DB) *gorm.DB { return tx.Order("position, id") })
}

// Get loads an offer with its customer and ordered items.
func (s *OfferService) Get(ctx context.Context, id uint) (*models.Offer, error) {
	var offer models.Offer
	err := s.preloaded(ctx).First(&offer, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("offer %d: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("load offer %d: %w", id, err)
	}
	return &offer, nil
}

// List returns every offer, newest first.
func (s *OfferService) List(ctx context.Context) ([]models.Offer, error) {
	offers := []models.Offer{}
	err := s.preloaded(ctx).Order("created_at DESC, id DESC").Find(&offers).Error
	return offers, err
}

// Delete removes an offer together with its items.
func (s *OfferService) Delete(ctx context.Context, id uint) error {
	err := db.WithTx(ctx, s.db, func(tx *gorm.DB) error {
		if err := tx.Where("offer_id = ?", id).Delete(&models.OfferItem{}).Error; err != nil {
			return fmt.Errorf("delete items: %w", err)
		}
		res := tx.Delete(&models.Offer{}, id)
		if res.Error != nil {
			return fmt.Errorf("delete offer: %w", res.Error)
		}
		if res.RowsAffected == 0 {
			return fmt.Errorf("offer %d: %w", id, ErrNotFound)
		}
		return nil
	})
	if err != nil {
		return err
	}
	s.log.InfoContext(ctx, "offer deleted", "offer_id", id)
	return nil
}
