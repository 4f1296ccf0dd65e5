package document

import (
	"bytes"
	"fmt"

	"github.com/diewo77/go-offers/i18n"
	"github.com/diewo77/go-offers/internal/models"
	"github.com/xuri/excelize/v2"
)

// XLSXRenderer writes the offer as a single-sheet workbook named after the
// offer number: info rows, one row per item and a totals row.
type XLSXRenderer struct {
	lang string
}

func NewXLSXRenderer(lang string) *XLSXRenderer {
	return &XLSXRenderer{lang: lang}
}

func (r *XLSXRenderer) ContentType() string {
	return "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
}

func (r *XLSXRenderer) Extension() string { return "xlsx" }

func (r *XLSXRenderer) Render(offer *models.Offer) ([]byte, error) {
	if err := checkOffer(offer); err != nil {
		return nil, err
	}
	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	sheet := offer.OfferNumber
	if err := f.SetSheetName(f.GetSheetName(f.GetActiveSheetIndex()), sheet); err != nil {
		return nil, err
	}
	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return nil, err
	}
	amount, err := f.NewStyle(&excelize.Style{NumFmt: 4}) // #,##0.00
	if err != nil {
		return nil, err
	}

	t := func(code string) string { return i18n.T(r.lang, code) }
	rows := [][]interface{}{
		{t("offer_number"), offer.OfferNumber},
		{t("customer"), offer.Customer.Name},
		{t("created_at"), offer.CreatedAt.Format(dateLayout)},
		{t("valid_until"), offer.ValidUntil.Format(dateLayout)},
		{t("currency"), offer.Currency},
		{t("created_by"), offer.CreatedBy},
	}
	row := 1
	setRow := func(values []interface{}) error {
		cell, err := excelize.CoordinatesToCellName(1, row)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(sheet, cell, &values); err != nil {
			return err
		}
		row++
		return nil
	}
	for _, values := range rows {
		if err := setRow(values); err != nil {
			return nil, err
		}
	}
	row++

	headerRow := row
	header := make([]interface{}, 0, len(itemColumns))
	for _, label := range columnLabels(r.lang) {
		header = append(header, label)
	}
	if err := setRow(header); err != nil {
		return nil, err
	}
	first := row
	for _, item := range offer.Items {
		values := []interface{}{
			item.Product, item.Size, item.Quantity,
			item.UnitCost, item.AssemblyCost, item.ProfitRate,
			item.TotalCost, item.SalePrice,
		}
		if err := setRow(values); err != nil {
			return nil, err
		}
	}
	totalsRow := row
	if err := setRow([]interface{}{t("totals"), "", "", "", "", "", offer.TotalCost(), offer.TotalSale()}); err != nil {
		return nil, err
	}

	if err := f.SetCellStyle(sheet, cellName(1, headerRow), cellName(len(itemColumns), headerRow), bold); err != nil {
		return nil, err
	}
	if err := f.SetCellStyle(sheet, cellName(4, first), cellName(len(itemColumns), totalsRow), amount); err != nil {
		return nil, err
	}
	if err := f.SetCellStyle(sheet, cellName(1, totalsRow), cellName(1, totalsRow), bold); err != nil {
		return nil, err
	}
	if err := f.SetColWidth(sheet, "A", "A", 28); err != nil {
		return nil, err
	}

	buf := &bytes.Buffer{}
	if err := f.Write(buf); err != nil {
		return nil, fmt.Errorf("render xlsx %s: %w", offer.OfferNumber, err)
	}
	return buf.Bytes(), nil
}

func cellName(col, row int) string {
	name, _ := excelize.CoordinatesToCellName(col, row)
	return name
}
