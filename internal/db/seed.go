package db

import (
	"errors"
	"fmt"

	"github.com/diewo77/go-offers/internal/models"
	"gorm.io/gorm"
)

// demoProducts prefill the catalogue of a fresh installation.
var demoProducts = []models.Product{
	{Name: "Alüminyum Doğrama", Size: "100x120", UnitCost: 850, AssemblyCost: 150, DefaultProfitRate: 25},
	{Name: "PVC Pencere", Size: "80x100", UnitCost: 600, AssemblyCost: 100, DefaultProfitRate: models.DefaultProfitRate},
	{Name: "Cam Balkon", Size: "m²", UnitCost: 1200, AssemblyCost: 250, DefaultProfitRate: 30},
	{Name: "Sineklik", Size: "60x90", UnitCost: 90, AssemblyCost: 20, DefaultProfitRate: models.DefaultProfitRate},
}

// Seed inserts the demo catalogue. Running it again adds nothing.
func Seed(gdb *gorm.DB) (int, error) {
	created := 0
	for _, p := range demoProducts {
		var existing models.Product
		err := gdb.Where("name = ?", p.Name).First(&existing).Error
		if err == nil {
			continue
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return created, fmt.Errorf("seed lookup %q: %w", p.Name, err)
		}
		if err := gdb.Create(&p).Error; err != nil {
			return created, fmt.Errorf("seed product %q: %w", p.Name, err)
		}
		created++
	}
	return created, nil
}
