package services

import (
	"context"
	"time"

	"github.com/diewo77/go-offers/internal/models"
	"gorm.io/gorm"
)

// RecentLimit is how many offers and customers the dashboard lists.
const RecentLimit = 5

// Stats is what the dashboard shows.
type Stats struct {
	OfferCount      int64             `json:"offer_count"`
	CustomerCount   int64             `json:"customer_count"`
	ProductCount    int64             `json:"product_count"`
	OffersThisMonth int64             `json:"offers_this_month"`
	RecentOffers    []models.Offer    `json:"recent_offers"`
	RecentCustomers []models.Customer `json:"recent_customers"`
}

type DashboardService struct {
	db *gorm.DB
}

func NewDashboardService(db *gorm.DB) *DashboardService {
	return &DashboardService{db: db}
}

// Stats computes the dashboard figures; the month is now's calendar month.
func (s *DashboardService) Stats(ctx context.Context, now time.Time) (*Stats, error) {
	tx := s.db.WithContext(ctx)
	st := &Stats{RecentOffers: []models.Offer{}, RecentCustomers: []models.Customer{}}

	if err := tx.Model(&models.Offer{}).Count(&st.OfferCount).Error; err != nil {
		return nil, err
	}
	if err := tx.Model(&models.Customer{}).Count(&st.CustomerCount).Error; err != nil {
		return nil, err
	}
	if err := tx.Model(&models.Product{}).Count(&st.ProductCount).Error; err != nil {
		return nil, err
	}
	start := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())
	end := start.AddDate(0, 1, 0)
	if err := tx.Model(&models.Offer{}).
		Where("created_at >= ? AND created_at < ?", start, end).
		Count(&st.OffersThisMonth).Error; err != nil {
		return nil, err
	}
	if err := tx.Preload("Customer").
		Preload("Items").
		Order("created_at DESC, id DESC").
		Limit(RecentLimit).
		Find(&st.RecentOffers).Error; err != nil {
		return nil, err
	}
	if err := tx.Order("id DESC").Limit(RecentLimit).Find(&st.RecentCustomers).Error; err != nil {
		return nil, err
	}
	return st, nil
}
