// Package document renders an offer as a downloadable file.
package document

import (
	"errors"
	"fmt"

	"github.com/diewo77/go-offers/i18n"
	"github.com/diewo77/go-offers/internal/models"
	"github.com/diewo77/go-offers/internal/pricing"
)

// ErrIncompleteOffer is returned when the offer was loaded without its customer.
var ErrIncompleteOffer = errors.New("offer must be loaded with customer and items")

// Renderer turns a fully loaded offer into file bytes.
type Renderer interface {
	Render(offer *models.Offer) ([]byte, error)
}

const dateLayout = "02.01.2006"

func checkOffer(offer *models.Offer) error {
	if offer == nil || offer.Customer == nil || offer.OfferNumber == "" {
		return ErrIncompleteOffer
	}
	return nil
}

// itemColumns are the table columns shared by every format.
var itemColumns = []string{"product", "size", "quantity", "unit_cost", "assembly_cost", "profit_rate", "total_cost", "sale_price"}

func columnLabels(lang string) []string {
	labels := make([]string, len(itemColumns))
	for i, c := range itemColumns {
		labels[i] = i18n.T(lang, c)
	}
	return labels
}

func money(amount float64) string { return pricing.Format(amount, "") }

func percent(rate float64) string { return fmt.Sprintf("%s%%", pricing.Format(rate, "")) }
