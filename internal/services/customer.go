package services

import (
	"context"
	"strings"

	"github.com/diewo77/go-offers/internal/models"
	"gorm.io/gorm"
)

type CustomerService struct {
	db *gorm.DB
}

func NewCustomerService(db *gorm.DB) *CustomerService {
	return &CustomerService{db: db}
}

// List returns every customer in creation order.
func (s *CustomerService) List(ctx context.Context) ([]models.Customer, error) {
	customers := []models.Customer{}
	err := s.db.WithContext(ctx).Order("id").Find(&customers).Error
	return customers, err
}

// Search matches q as a case-insensitive substring of the name.
// A blank query returns every customer.
func (s *CustomerService) Search(ctx context.Context, q string) ([]models.Customer, error) {
	// Blank queries list everything; others match as typed, spaces included.
	if strings.TrimSpace(q) == "" {
		return s.List(ctx)
	}
	customers := []models.Customer{}
	err := s.db.WithContext(ctx).Where(nameLikeClause, likePattern(q)).Order("id").Find(&customers).Error
	return customers, err
}
