package models

import (
	"fmt"
	"time"

	"github.com/diewo77/go-offers/internal/pricing"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// OfferNumberPrefix starts every generated offer number.
const OfferNumberPrefix = "TEK"

// Offer is a price quote issued to a customer.
type Offer struct {
	ID        uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	// Generated at creation, never user supplied.
	OfferNumber string `gorm:"size:50;uniqueIndex;not null" json:"offer_number"`

	CustomerID uint      `gorm:"index;not null" json:"customer_id"`
	Customer   *Customer `gorm:"foreignKey:CustomerID" json:"customer,omitempty"`

	CreatedBy  string    `gorm:"size:50" json:"created_by"`
	ValidUntil time.Time `json:"valid_until"`
	Currency   string    `gorm:"size:10" json:"currency"`

	Items []OfferItem `gorm:"foreignKey:OfferID;constraint:OnDelete:CASCADE" json:"items"`
}

// TotalCost sums the total cost of the loaded items. It is never stored.
func (o *Offer) TotalCost() float64 {
	amounts := make([]float64, 0, len(o.Items))
	for _, item := range o.Items {
		amounts = append(amounts, item.TotalCost)
	}
	return pricing.Sum(amounts...)
}

// TotalSale sums the sale price of the loaded items.
func (o *Offer) TotalSale() float64 {
	amounts := make([]float64, 0, len(o.Items))
	for _, item := range o.Items {
		amounts = append(amounts, item.SalePrice)
	}
	return pricing.Sum(amounts...)
}

// IsExpired returns true once the validity date is strictly before now's date.
func (o *Offer) IsExpired(now time.Time) bool {
	if o.ValidUntil.IsZero() {
		return false
	}
	y, m, d := now.Date()
	today := time.Date(y, m, d, 0, 0, 0, 0, o.ValidUntil.Location())
	return o.ValidUntil.Before(today)
}

// OfferItem is one priced line of an offer. All amounts are snapshots
// taken when the item was saved.
type OfferItem struct {
	ID      uint `gorm:"primaryKey" json:"id"`
	OfferID uint `gorm:"index;not null" json:"offer_id"`

	// Position keeps the submitted order.
	Position int `gorm:"not null;default:0" json:"position"`

	Product      string  `gorm:"size:100;not null" json:"product"`
	Size         string  `gorm:"size:50" json:"size"`
	Quantity     int     `gorm:"not null" json:"quantity"`
	UnitCost     float64 `gorm:"not null" json:"unit_cost"`
	AssemblyCost float64 `gorm:"not null" json:"assembly_cost"`
	ProfitRate   float64 `gorm:"not null" json:"profit_rate"`
	TotalCost    float64 `gorm:"not null" json:"total_cost"`
	SalePrice    float64 `gorm:"not null" json:"sale_price"`
}

// Line returns the pricing input of the item.
func (item *OfferItem) Line() pricing.Line {
	return pricing.Line{
		Quantity:     item.Quantity,
		UnitCost:     item.UnitCost,
		AssemblyCost: item.AssemblyCost,
		ProfitRate:   item.ProfitRate,
	}
}

// FormatOfferNumber builds an offer number.
// Format: TEK-YYYY-NNNN (e.g., TEK-2025-0001)
func FormatOfferNumber(year int, seq uint) string {
	return fmt.Sprintf("%s-%d-%04d", OfferNumberPrefix, year, seq)
}

// ProvisionalOfferNumber fills the unique offer_number column between the
// insert of an offer and AssignOfferNumber.
func ProvisionalOfferNumber() string {
	return "pending-" + uuid.NewString()
}

// AssignOfferNumber numbers a freshly inserted offer after its own id, in the
// calendar year of now. Ids are never reused (AUTOINCREMENT on sqlite, a
// sequence on postgres), so a number is never issued twice, deletes included.
// The sequence is global and does not restart in a new year.
func AssignOfferNumber(tx *gorm.DB, offer *Offer, now time.Time) error {
	if offer.ID == 0 {
		return fmt.Errorf("assign offer number: offer has no id")
	}
	number := FormatOfferNumber(now.Year(), offer.ID)
	if err := tx.Model(offer).Update("offer_number", number).Error; err != nil {
		return err
	}
	offer.OfferNumber = number
	return nil
}
