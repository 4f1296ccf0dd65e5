package models

import "time"

// Customer is the party an offer is addressed to. Names are unique.
type Customer struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"-"`

	Name    string `gorm:"size:100;uniqueIndex;not null" json:"name"`
	Address string `gorm:"size:200" json:"address"`
	Phone   string `gorm:"size:30" json:"phone"`
	Email   string `gorm:"size:100" json:"email"`

	// Back-reference only; offers are not owned by the customer's lifecycle.
	Offers []Offer `gorm:"foreignKey:CustomerID" json:"-"`
}
