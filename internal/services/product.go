package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/diewo77/go-offers/internal/models"
	"github.com/diewo77/go-offers/internal/pricing"
	"github.com/diewo77/go-offers/validation"
	"gorm.io/gorm"
)

// ProductInput is the payload of the product form. Nil amounts take the
// catalogue defaults (0 costs, 20% profit).
type ProductInput struct {
	Name              string   `json:"name"`
	Size              string   `json:"size"`
	UnitCost          *float64 `json:"unit_cost"`
	AssemblyCost      *float64 `json:"assembly_cost"`
	DefaultProfitRate *float64 `json:"default_profit_rate"`
}

type ProductService struct {
	db *gorm.DB
}

func NewProductService(db *gorm.DB) *ProductService {
	return &ProductService{db: db}
}

func valueOr(p *float64, def float64) float64 {
	if p == nil {
		return def
	}
	return *p
}

// Validate checks in and returns the product it describes.
func (in ProductInput) Validate() (models.Product, validation.Violations) {
	v := validation.Violations{}
	p := models.Product{
		Name:              strings.TrimSpace(in.Name),
		Size:              strings.TrimSpace(in.Size),
		UnitCost:          valueOr(in.UnitCost, 0),
		AssemblyCost:      valueOr(in.AssemblyCost, 0),
		DefaultProfitRate: valueOr(in.DefaultProfitRate, models.DefaultProfitRate),
	}
	validation.Required("name", p.Name, v)
	validation.MaxLength("name", p.Name, 150, v)
	validation.MaxLength("size", p.Size, 50, v)
	validation.NonNegativeFloat("unit_cost", p.UnitCost, v)
	validation.NonNegativeFloat("assembly_cost", p.AssemblyCost, v)
	pricing.ValidateRate("default_profit_rate", p.DefaultProfitRate, v)
	return p, v
}

func (s *ProductService) Create(ctx context.Context, in ProductInput) (*models.Product, error) {
	p, v := in.Validate()
	if err := invalid(v); err != nil {
		return nil, err
	}
	if err := s.db.WithContext(ctx).Create(&p).Error; err != nil {
		return nil, fmt.Errorf("create product: %w", err)
	}
	return &p, nil
}

func (s *ProductService) List(ctx context.Context) ([]models.Product, error) {
	products := []models.Product{}
	err := s.db.WithContext(ctx).Order("id").Find(&products).Error
	return products, err
}

// Search matches q as a case-insensitive substring of the name.
// A blank query returns every product.
func (s *ProductService) Search(ctx context.Context, q string) ([]models.Product, error) {
	// Blank queries list everything; others match as typed, spaces included.
	if strings.TrimSpace(q) == "" {
		return s.List(ctx)
	}
	products := []models.Product{}
	err := s.db.WithContext(ctx).Where(nameLikeClause, likePattern(q)).Order("id").Find(&products).Error
	return products, err
}
