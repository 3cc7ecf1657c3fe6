package service

import (
	"fmt"
	"strings"
	"time"

	"github.com/yla-umzug/quotes-service/internal/model"
	"github.com/yla-umzug/quotes-service/internal/notify"
	"github.com/yla-umzug/quotes-service/internal/pricing"
)

func confirmationMessage(quote *model.QuoteRequest, company model.CompanyInfo) notify.Message {
	var b strings.Builder
	fmt.Fprintf(&b, "Hallo %s,\n\n", quote.Name)
	fmt.Fprintf(&b, "vielen Dank für Ihre Anfrage bei %s. Ihre Anfragenummer lautet %s.\n\n", company.Name, quote.QuoteNumber)
	b.WriteString("Unverbindliche Preisschätzung:\n")
	writeBreakdown(&b, quote.Pricing())
	fmt.Fprintf(&b, "\nGeschätzter Gesamtpreis: %s\n\n", pricing.FormatEUR(quote.EstimatedTotal))
	b.WriteString("Wir prüfen Ihre Angaben und melden uns in Kürze mit einem verbindlichen Angebot.\n\n")
	writeSignature(&b, company)

	return notify.Message{
		ReplyTo: company.Email,
		Subject: fmt.Sprintf("Ihre Anfrage %s bei %s", quote.QuoteNumber, company.Name),
		Body:    b.String(),
	}
}

func adminMessage(quote *model.QuoteRequest) notify.Message {
	var b strings.Builder
	fmt.Fprintf(&b, "Neue Anfrage %s\n\n", quote.QuoteNumber)
	fmt.Fprintf(&b, "Name: %s\nE-Mail: %s\nTelefon: %s\n", quote.Name, quote.Email, quote.Phone)
	if quote.PreferredContact != "" {
		fmt.Fprintf(&b, "Bevorzugter Kontakt: %s\n", quote.PreferredContact)
	}
	fmt.Fprintf(&b, "Leistungen: %s\n", strings.Join(quote.Services(), ", "))
	if quote.FromPostalCode != "" || quote.ToPostalCode != "" {
		fmt.Fprintf(&b, "Von %s nach %s\n", quote.FromPostalCode, quote.ToPostalCode)
	}
	if quote.MovingDate != nil {
		fmt.Fprintf(&b, "Wunschtermin: %s\n", quote.MovingDate.Format("02.01.2006"))
	}
	if quote.Message != "" {
		fmt.Fprintf(&b, "\nNachricht:\n%s\n", quote.Message)
	}
	b.WriteString("\nPreisschätzung:\n")
	writeBreakdown(&b, quote.Pricing())
	fmt.Fprintf(&b, "\nGesamt: %s\n", pricing.FormatEUR(quote.EstimatedTotal))

	return notify.Message{
		ReplyTo: quote.Email,
		Subject: fmt.Sprintf("Neue Anfrage %s von %s", quote.QuoteNumber, quote.Name),
		Body:    b.String(),
	}
}

func offerMessage(quote *model.QuoteRequest, company model.CompanyInfo, validUntil time.Time) notify.Message {
	var b strings.Builder
	fmt.Fprintf(&b, "Hallo %s,\n\n", quote.Name)
	fmt.Fprintf(&b, "anbei erhalten Sie unser Angebot %s über %s.\n", quote.QuoteNumber, pricing.FormatEUR(quote.Amount()))
	fmt.Fprintf(&b, "Das Angebot ist gültig bis %s.\n\n", validUntil.Format("02.01.2006"))
	b.WriteString("Um das Angebot anzunehmen, antworten Sie einfach auf diese E-Mail.\n\n")
	writeSignature(&b, company)

	return notify.Message{
		ReplyTo: company.Email,
		Subject: fmt.Sprintf("Ihr Angebot %s von %s", quote.QuoteNumber, company.Name),
		Body:    b.String(),
	}
}

func confirmationWhatsAppText(quote *model.QuoteRequest, company model.CompanyInfo) string {
	return fmt.Sprintf("Hallo %s, danke für Ihre Anfrage %s bei %s. Geschätzter Preis: %s. Wir melden uns in Kürze.",
		quote.Name, quote.QuoteNumber, company.Name, pricing.FormatEUR(quote.EstimatedTotal))
}

func offerWhatsAppText(quote *model.QuoteRequest, company model.CompanyInfo) string {
	return fmt.Sprintf("Hallo %s, Ihr Angebot %s von %s beträgt %s. Das PDF haben wir Ihnen per E-Mail gesendet.",
		quote.Name, quote.QuoteNumber, company.Name, pricing.FormatEUR(quote.Amount()))
}

func writeBreakdown(b *strings.Builder, result model.PricingResult) {
	for _, item := range result.Breakdown {
		fmt.Fprintf(b, "- %s: %s\n", item.Service, pricing.FormatEUR(item.Cost))
	}
}

func writeSignature(b *strings.Builder, company model.CompanyInfo) {
	b.WriteString("Mit freundlichen Grüßen\n")
	b.WriteString(company.Name + "\n")
	for _, line := range []string{company.Address, company.Phone, company.Email} {
		if line != "" {
			b.WriteString(line + "\n")
		}
	}
}
