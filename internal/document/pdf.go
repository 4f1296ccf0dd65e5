package document

import (
	"bytes"
	"fmt"
	"os"
	"strconv"

	"github.com/diewo77/go-offers/i18n"
	"github.com/diewo77/go-offers/internal/models"
	"github.com/jung-kurt/gofpdf"
)

const utf8Family = "OfferSans"

// PDFRenderer lays an offer out on an A4 page: header, customer block,
// item table and totals.
type PDFRenderer struct {
	lang string
	font []byte // optional UTF-8 TrueType font
}

// NewPDFRenderer loads the optional font at fontPath. Without a font the
// core Helvetica face is used and text outside cp1252 is approximated.
func NewPDFRenderer(lang, fontPath string) (*PDFRenderer, error) {
	r := &PDFRenderer{lang: lang}
	if fontPath != "" {
		data, err := os.ReadFile(fontPath)
		if err != nil {
			return nil, fmt.Errorf("read pdf font: %w", err)
		}
		r.font = data
	}
	return r, nil
}

// ContentType of the rendered bytes.
func (r *PDFRenderer) ContentType() string { return "application/pdf" }

// Extension of the download file name.
func (r *PDFRenderer) Extension() string { return "pdf" }

func (r *PDFRenderer) Render(offer *models.Offer) ([]byte, error) {
	if err := checkOffer(offer); err != nil {
		return nil, err
	}
	pdf := gofpdf.New("P", "mm", "A4", "")
	family := "Helvetica"
	tr := pdf.UnicodeTranslatorFromDescriptor("")
	if r.font != nil {
		pdf.AddUTF8FontFromBytes(utf8Family, "", r.font)
		pdf.AddUTF8FontFromBytes(utf8Family, "B", r.font)
		family = utf8Family
		tr = func(s string) string { return s }
	}
	t := func(code string) string { return tr(i18n.T(r.lang, code)) }

	pdf.SetTitle(offer.OfferNumber, true)
	pdf.SetCreator("go-offers", true)
	pdf.SetAutoPageBreak(true, 15)
	pdf.AliasNbPages("")
	pdf.SetFooterFunc(func() {
		pdf.SetY(-12)
		pdf.SetFont(family, "", 8)
		pdf.CellFormat(0, 8, fmt.Sprintf("%s  %d/{nb}", offer.OfferNumber, pdf.PageNo()), "", 0, "C", false, 0, "")
	})
	pdf.AddPage()

	pdf.SetFont(family, "B", 16)
	pdf.CellFormat(0, 10, tr(i18n.T(r.lang, "offer")+" "+offer.OfferNumber), "", 1, "L", false, 0, "")
	pdf.Ln(2)

	pdf.SetFont(family, "", 10)
	info := [][2]string{
		{t("created_at"), offer.CreatedAt.Format(dateLayout)},
		{t("valid_until"), offer.ValidUntil.Format(dateLayout)},
		{t("currency"), tr(offer.Currency)},
		{t("created_by"), tr(offer.CreatedBy)},
	}
	for _, kv := range info {
		pdf.CellFormat(40, 6, kv[0]+":", "", 0, "L", false, 0, "")
		pdf.CellFormat(0, 6, kv[1], "", 1, "L", false, 0, "")
	}
	pdf.Ln(4)

	c := offer.Customer
	pdf.SetFont(family, "B", 11)
	pdf.CellFormat(0, 7, t("customer"), "B", 1, "L", false, 0, "")
	pdf.SetFont(family, "", 10)
	pdf.CellFormat(0, 6, tr(c.Name), "", 1, "L", false, 0, "")
	for _, line := range []string{c.Address, c.Phone, c.Email} {
		if line != "" {
			pdf.MultiCell(0, 5, tr(line), "", "L", false)
		}
	}
	pdf.Ln(6)

	widths := []float64{8, 42, 20, 14, 20, 20, 16, 25, 25}
	header := append([]string{"#"}, columnLabels(r.lang)...)
	pdf.SetFont(family, "B", 8)
	pdf.SetFillColor(230, 230, 230)
	for i, h := range header {
		pdf.CellFormat(widths[i], 7, tr(h), "1", 0, "C", true, 0, "")
	}
	pdf.Ln(-1)

	pdf.SetFont(family, "", 8)
	for i, item := range offer.Items {
		row := []string{
			strconv.Itoa(i + 1),
			tr(item.Product),
			tr(item.Size),
			strconv.Itoa(item.Quantity),
			money(item.UnitCost),
			money(item.AssemblyCost),
			percent(item.ProfitRate),
			money(item.TotalCost),
			money(item.SalePrice),
		}
		for j, cell := range row {
			align := "R"
			if j == 1 || j == 2 {
				align = "L"
			}
			pdf.CellFormat(widths[j], 6, cell, "1", 0, align, false, 0, "")
		}
		pdf.Ln(-1)
	}

	pdf.Ln(4)
	pdf.SetFont(family, "B", 10)
	totals := [][2]string{
		{t("total_cost"), money(offer.TotalCost()) + " " + tr(offer.Currency)},
		{t("total_sale"), money(offer.TotalSale()) + " " + tr(offer.Currency)},
	}
	for _, kv := range totals {
		pdf.CellFormat(140, 7, kv[0], "", 0, "R", false, 0, "")
		pdf.CellFormat(50, 7, kv[1], "", 1, "R", false, 0, "")
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("render pdf %s: %w", offer.OfferNumber, err)
	}
	return buf.Bytes(), nil
}
