package excel

import (
	"fmt"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/yla-umzug/quotes-service/internal/model"
)

const (
	quotesSheet  = "Anfragen"
	summarySheet = "Übersicht"
)

var statusOrder = []model.QuoteStatus{
	model.QuoteStatusPending,
	model.QuoteStatusReviewed,
	model.QuoteStatusQuoted,
	model.QuoteStatusAccepted,
	model.QuoteStatusRejected,
	model.QuoteStatusCompleted,
}

type Generator struct{}

func NewGenerator() *Generator {
	return &Generator{}
}

// Quotes exports quote requests to a workbook with one row per quote and a
// per-status summary sheet.
func (g *Generator) Quotes(quotes []model.QuoteRequest) ([]byte, error) {
	file := excelize.NewFile()
	defer func() { _ = file.Close() }()

	if err := file.SetSheetName("Sheet1", quotesSheet); err != nil {
		return nil, err
	}
	if err := g.writeQuotes(file, quotesSheet, quotes); err != nil {
		return nil, err
	}

	if _, err := file.NewSheet(summarySheet); err != nil {
		return nil, err
	}
	if err := g.writeSummary(file, summarySheet, quotes); err != nil {
		return nil, err
	}

	file.SetActiveSheet(0)
	buf, err := file.WriteToBuffer()
	if err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func (g *Generator) writeQuotes(file *excelize.File, sheet string, quotes []model.QuoteRequest) error {
	headers := []string{
		"Angebotsnummer",
		"Eingang",
		"Name",
		"E-Mail",
		"Telefon",
		"Leistungen",
		"Von PLZ",
		"Nach PLZ",
		"Umzugstermin",
		"Geschätzt (EUR)",
		"Angebot (EUR)",
		"Status",
		"E-Mail gesendet",
		"WhatsApp gesendet",
	}
	for i, header := range headers {
		cell, err := excelize.CoordinatesToCellName(i+1, 1)
		if err != nil {
			return err
		}
		if err := file.SetCellValue(sheet, cell, header); err != nil {
			return err
		}
	}

	bold, err := file.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return err
	}
	lastHeader, _ := excelize.CoordinatesToCellName(len(headers), 1)
	if err := file.SetCellStyle(sheet, "A1", lastHeader, bold); err != nil {
		return err
	}

	set := func(cell string, value interface{}) {
		_ = file.SetCellValue(sheet, cell, value)
	}

	for i, q := range quotes {
		row := i + 2
		set(fmt.Sprintf("A%d", row), q.QuoteNumber)
		set(fmt.Sprintf("B%d", row), formatDateTime(q.CreatedAt))
		set(fmt.Sprintf("C%d", row), q.Name)
		set(fmt.Sprintf("D%d", row), q.Email)
		set(fmt.Sprintf("E%d", row), q.Phone)
		set(fmt.Sprintf("F%d", row), strings.Join(q.Services(), ", "))
		set(fmt.Sprintf("G%d", row), q.FromPostalCode)
		set(fmt.Sprintf("H%d", row), q.ToPostalCode)
		set(fmt.Sprintf("I%d", row), formatDatePtr(q.MovingDate))
		set(fmt.Sprintf("J%d", row), q.EstimatedTotal)
		if q.FinalAmount != nil {
			set(fmt.Sprintf("K%d", row), *q.FinalAmount)
		}
		set(fmt.Sprintf("L%d", row), q.Status.Label())
		set(fmt.Sprintf("M%d", row), formatDateTimePtr(q.EmailSentAt))
		set(fmt.Sprintf("N%d", row), formatDateTimePtr(q.WhatsAppSentAt))
	}

	_ = file.SetColWidth(sheet, "A", "B", 18)
	_ = file.SetColWidth(sheet, "C", "D", 28)
	_ = file.SetColWidth(sheet, "E", "F", 22)
	_ = file.SetColWidth(sheet, "G", "I", 12)
	_ = file.SetColWidth(sheet, "J", "L", 16)
	_ = file.SetColWidth(sheet, "M", "N", 18)
	return nil
}

func (g *Generator) writeSummary(file *excelize.File, sheet string, quotes []model.QuoteRequest) error {
	counts := make(map[model.QuoteStatus]int, len(statusOrder))
	sums := make(map[model.QuoteStatus]float64, len(statusOrder))
	for _, q := range quotes {
		counts[q.Status]++
		sums[q.Status] += q.Amount()
	}

	set := func(cell string, value interface{}) {
		_ = file.SetCellValue(sheet, cell, value)
	}

	set("A1", "Status")
	set("B1", "Anzahl")
	set("C1", "Summe (EUR)")
	total := 0.0
	for i, status := range statusOrder {
		row := i + 2
		set(fmt.Sprintf("A%d", row), status.Label())
		set(fmt.Sprintf("B%d", row), counts[status])
		set(fmt.Sprintf("C%d", row), sums[status])
		total += sums[status]
	}
	last := len(statusOrder) + 2
	set(fmt.Sprintf("A%d", last), "Gesamt")
	set(fmt.Sprintf("B%d", last), len(quotes))
	set(fmt.Sprintf("C%d", last), total)

	_ = file.SetColWidth(sheet, "A", "A", 22)
	_ = file.SetColWidth(sheet, "B", "C", 14)
	return nil
}

func formatDateTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format("02.01.2006 15:04")
}

func formatDateTimePtr(t *time.Time) string {
	if t == nil {
		return ""
	}
	return formatDateTime(*t)
}

func formatDatePtr(t *time.Time) string {
	if t == nil || t.IsZero() {
		return ""
	}
	return t.Format("02.01.2006")
}
