package model

import "time"

type CompanyInfo struct {
	Name    string
	Address string
	Phone   string
	Email   string
}

// QuoteDocument is everything the "Angebot" PDF needs.
type QuoteDocument struct {
	Quote      QuoteRequest
	Company    CompanyInfo
	IssuedAt   time.Time
	ValidUntil time.Time
}
