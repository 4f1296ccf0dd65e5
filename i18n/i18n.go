// Package i18n holds the UI and validation message catalogue.
// Turkish is the default language; English is the only alternative.
package i18n

import "strings"

const DefaultLang = "tr"

var catalog = map[string]map[string]string{
	"tr": {
		"required":             "Zorunlu",
		"too_long":             "Çok uzun",
		"invalid_date":         "Geçersiz tarih (YYYY-AA-GG)",
		"invalid_number":       "Geçersiz sayı",
		"must_be_positive":     "Sıfırdan büyük olmalı",
		"must_not_be_negative": "Negatif olamaz",
		"out_of_range":         "Aralık dışında",
		"validation_failed":    "Form hatalı, lütfen alanları kontrol edin",
		"not_found":            "Kayıt bulunamadı",
		"internal_error":       "Beklenmeyen bir hata oluştu",
		"pdf_unavailable":      "PDF özelliği devre dışı.",
		"export_unavailable":   "Dışa aktarma devre dışı.",
		"dashboard":            "Gösterge Paneli",
		"offer":                "Teklif",
		"invalid_json":         "Geçersiz JSON",
		"invalid_form":         "Geçersiz form",
		"totals":               "Toplam",
		"offers":               "Teklifler",
		"new_offer":            "Yeni Teklif",
		"customers":            "Müşteriler",
		"products":             "Ürünler",
		"new_product":          "Yeni Ürün",
		"offers_this_month":    "Bu ayki teklifler",
		"recent_offers":        "Son teklifler",
		"recent_customers":     "Son müşteriler",
		"offer_number":         "Teklif No",
		"customer":             "Müşteri",
		"customer_name":        "Müşteri adı",
		"address":              "Adres",
		"phone":                "Telefon",
		"email":                "E-posta",
		"valid_until":          "Geçerlilik tarihi",
		"currency":             "Para birimi",
		"created_at":           "Oluşturulma",
		"created_by":           "Hazırlayan",
		"product":              "Ürün",
		"size":                 "Ölçü",
		"quantity":             "Adet",
		"unit_cost":            "Birim maliyet",
		"assembly_cost":        "Montaj maliyeti",
		"profit_rate":          "Kâr oranı (%)",
		"default_profit_rate":  "Varsayılan kâr oranı (%)",
		"total_cost":           "Toplam maliyet",
		"sale_price":           "Satış fiyatı",
		"total_sale":           "Toplam satış",
		"items":                "Kalemler",
		"add_item":             "Kalem ekle",
		"save":                 "Kaydet",
		"saved":                "Kaydedildi",
		"delete":               "Sil",
		"download_pdf":         "PDF indir",
		"download_xlsx":        "Excel indir",
		"name":                 "Ad",
		"empty":                "Kayıt yok",
		"expired":              "Süresi doldu",
	},
	"en": {
		"required":             "Required",
		"too_long":             "Too long",
		"invalid_date":         "Invalid date (YYYY-MM-DD)",
		"invalid_number":       "Invalid number",
		"must_be_positive":     "Must be greater than zero",
		"must_not_be_negative": "Must not be negative",
		"out_of_range":         "Out of range",
		"validation_failed":    "Please correct the highlighted fields",
		"not_found":            "Not found",
		"internal_error":       "Unexpected error",
		"pdf_unavailable":      "PDF export is disabled.",
		"export_unavailable":   "Export is disabled.",
		"dashboard":            "Dashboard",
		"offer":                "Offer",
		"invalid_json":         "Invalid JSON",
		"invalid_form":         "Invalid form",
		"totals":               "Totals",
		"offers":               "Offers",
		"new_offer":            "New offer",
		"customers":            "Customers",
		"products":             "Products",
		"new_product":          "New product",
		"offers_this_month":    "Offers this month",
		"recent_offers":        "Recent offers",
		"recent_customers":     "Recent customers",
		"offer_number":         "Offer no.",
		"customer":             "Customer",
		"customer_name":        "Customer name",
		"address":              "Address",
		"phone":                "Phone",
		"email":                "Email",
		"valid_until":          "Valid until",
		"currency":             "Currency",
		"created_at":           "Created",
		"created_by":           "Prepared by",
		"product":              "Product",
		"size":                 "Size",
		"quantity":             "Qty",
		"unit_cost":            "Unit cost",
		"assembly_cost":        "Assembly cost",
		"profit_rate":          "Profit rate (%)",
		"default_profit_rate":  "Default profit rate (%)",
		"total_cost":           "Total cost",
		"sale_price":           "Sale price",
		"total_sale":           "Total sale",
		"items":                "Items",
		"add_item":             "Add item",
		"save":                 "Save",
		"saved":                "Saved",
		"delete":               "Delete",
		"download_pdf":         "Download PDF",
		"download_xlsx":        "Download Excel",
		"name":                 "Name",
		"empty":                "Nothing here yet",
		"expired":              "Expired",
	},
}

// Supported reports whether lang has a catalogue.
func Supported(lang string) bool {
	_, ok := catalog[lang]
	return ok
}

// T translates code for lang, falling back to Turkish and then to the code itself.
func T(lang, code string) string {
	if m, ok := catalog[lang]; ok {
		if s, ok := m[code]; ok {
			return s
		}
	}
	if s, ok := catalog[DefaultLang][code]; ok {
		return s
	}
	return code
}

// DetectLanguage picks the first supported language of an Accept-Language header.
func DetectLanguage(header string) string {
	for _, part := range strings.Split(header, ",") {
		tag := strings.TrimSpace(strings.SplitN(part, ";", 2)[0])
		if tag == "" {
			continue
		}
		base := strings.ToLower(strings.SplitN(tag, "-", 2)[0])
		if Supported(base) {
			return base
		}
	}
	return DefaultLang
}
