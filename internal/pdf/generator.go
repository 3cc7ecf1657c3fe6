package pdf

import (
	"bytes"
	"fmt"
	"strings"
	"time"

	"github.com/jung-kurt/gofpdf"

	"github.com/yla-umzug/quotes-service/internal/model"
	"github.com/yla-umzug/quotes-service/internal/pricing"
)

const fontName = "Helvetica"

var serviceLabels = map[string]string{
	pricing.ServiceMoving:       "Umzug",
	pricing.ServiceCleaning:     "Putzservice",
	pricing.ServiceDecluttering: "Entrümpelung",
}

type Generator struct{}

func NewGenerator() *Generator {
	return &Generator{}
}

// Quote renders the customer facing offer ("Angebot") for a quote request.
func (g *Generator) Quote(doc model.QuoteDocument) ([]byte, error) {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(20, 20, 20)
	pdf.SetAutoPageBreak(true, 20)
	pdf.SetTitle("Angebot "+doc.Quote.QuoteNumber, true)
	pdf.SetAuthor(doc.Company.Name, true)
	tr := pdf.UnicodeTranslatorFromDescriptor("")
	pdf.AddPage()

	quote := doc.Quote

	pdf.SetFont(fontName, "B", 16)
	pdf.CellFormat(0, 9, tr(doc.Company.Name), "", 1, "L", false, 0, "")
	pdf.SetFont(fontName, "", 9)
	for _, line := range []string{doc.Company.Address, joinNonEmpty(" | ", doc.Company.Phone, doc.Company.Email)} {
		if strings.TrimSpace(line) != "" {
			pdf.CellFormat(0, 5, tr(line), "", 1, "L", false, 0, "")
		}
	}
	pdf.Ln(8)

	pdf.SetFont(fontName, "B", 14)
	pdf.CellFormat(0, 8, tr("Angebot "+quote.QuoteNumber), "", 1, "L", false, 0, "")
	pdf.SetFont(fontName, "", 10)
	pdf.CellFormat(0, 5, tr("Datum: "+formatDate(doc.IssuedAt)), "", 1, "L", false, 0, "")
	pdf.CellFormat(0, 5, tr("Anfrage vom: "+formatDate(quote.CreatedAt)), "", 1, "L", false, 0, "")
	pdf.Ln(4)

	addCustomerBlock(pdf, tr, quote)
	pdf.Ln(4)

	pdf.SetFont(fontName, "B", 12)
	pdf.CellFormat(0, 8, tr("Leistungen"), "", 1, "L", false, 0, "")

	widths := []float64{120, 50}
	drawTableRow(pdf, tr, []string{"Position", "Betrag"}, widths, true)

	pricingResult := quote.Pricing()
	for _, item := range pricingResult.Breakdown {
		drawTableRow(pdf, tr, []string{item.Service, pricing.FormatEUR(item.Cost)}, widths, false)
		if len(item.Details) > 0 {
			pdf.SetFont(fontName, "", 8)
			pdf.SetTextColor(90, 90, 90)
			for _, detail := range item.Details {
				pdf.CellFormat(widths[0], 4.5, tr("   "+detail), "LR", 0, "L", false, 0, "")
				pdf.CellFormat(widths[1], 4.5, "", "R", 1, "L", false, 0, "")
			}
			pdf.SetTextColor(0, 0, 0)
			pdf.CellFormat(widths[0]+widths[1], 0, "", "T", 1, "L", false, 0, "")
		}
	}

	pdf.Ln(3)
	pdf.SetFont(fontName, "", 10)
	if quote.FinalAmount != nil && *quote.FinalAmount != pricingResult.Total {
		pdf.CellFormat(0, 6, tr("Geschätzter Preis: "+pricing.FormatEUR(quote.EstimatedTotal)), "", 1, "R", false, 0, "")
	}
	pdf.SetFont(fontName, "B", 12)
	pdf.CellFormat(0, 8, tr("Gesamtbetrag: "+pricing.FormatEUR(quote.Amount())), "", 1, "R", false, 0, "")
	if quote.DistanceKm != nil {
		pdf.SetFont(fontName, "", 9)
		pdf.CellFormat(0, 5, tr(fmt.Sprintf("Entfernung: %.1f km", *quote.DistanceKm)), "", 1, "R", false, 0, "")
	}
	pdf.Ln(6)

	pdf.SetFont(fontName, "", 10)
	notes := []string{
		"Dieses Angebot ist gültig bis " + formatDate(doc.ValidUntil) + ".",
		"Alle Preise verstehen sich in Euro inklusive gesetzlicher Mehrwertsteuer.",
		"Zur Annahme antworten Sie einfach auf diese E-Mail oder rufen Sie uns an.",
	}
	for _, line := range notes {
		pdf.MultiCell(0, 5, tr(line), "", "L", false)
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func addCustomerBlock(pdf *gofpdf.Fpdf, tr func(string) string, quote model.QuoteRequest) {
	pdf.SetFont(fontName, "B", 11)
	pdf.CellFormat(0, 6, tr("Kunde"), "", 1, "L", false, 0, "")
	pdf.SetFont(fontName, "", 10)

	lines := []string{
		quote.Name,
		"E-Mail: " + safeValue(quote.Email),
		"Telefon: " + safeValue(quote.Phone),
		"Leistungen: " + safeValue(serviceNames(quote.Services())),
	}
	if quote.FromPostalCode != "" || quote.ToPostalCode != "" {
		lines = append(lines, fmt.Sprintf("Von PLZ %s nach PLZ %s", safeValue(quote.FromPostalCode), safeValue(quote.ToPostalCode)))
	}
	if quote.MovingDate != nil {
		lines = append(lines, "Wunschtermin: "+formatDate(*quote.MovingDate))
	}
	for _, line := range lines {
		pdf.MultiCell(0, 5, tr(line), "", "L", false)
	}
}

func drawTableRow(pdf *gofpdf.Fpdf, tr func(string) string, cols []string, widths []float64, header bool) {
	style := ""
	if header {
		style = "B"
	}
	pdf.SetFont(fontName, style, 10)
	for i, col := range cols {
		align := "L"
		if i > 0 {
			align = "R"
		}
		pdf.CellFormat(widths[i], 7, tr(col), "1", 0, align, header, 0, "")
	}
	pdf.Ln(-1)
}

func serviceNames(keys []string) string {
	names := make([]string, 0, len(keys))
	for _, key := range keys {
		if label, ok := serviceLabels[key]; ok {
			names = append(names, label)
			continue
		}
		names = append(names, key)
	}
	return strings.Join(names, ", ")
}

func joinNonEmpty(sep string, parts ...string) string {
	kept := parts[:0]
	for _, p := range parts {
		if strings.TrimSpace(p) != "" {
			kept = append(kept, p)
		}
	}
	return strings.Join(kept, sep)
}

func safeValue(value string) string {
	if strings.TrimSpace(value) == "" {
		return "-"
	}
	return value
}

func formatDate(t time.Time) string {
	if t.IsZero() {
		return "-"
	}
	return t.Format("02.01.2006")
}
