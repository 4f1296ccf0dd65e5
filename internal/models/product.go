package models

import "time"

// DefaultProfitRate is applied to new products when none is given.
const DefaultProfitRate = 20.0

// Product is a catalogue entry used to prefill offer items.
// Items copy its values; they never reference it.
type Product struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"-"`

	Name              string  `gorm:"size:150;not null;index" json:"name"`
	Size              string  `gorm:"size:50" json:"size"`
	UnitCost          float64 `gorm:"not null;default:0" json:"unit_cost"`
	AssemblyCost      float64 `gorm:"not null;default:0" json:"assembly_cost"`
	DefaultProfitRate float64 `gorm:"not null" json:"default_profit_rate"`
}
