package model

// LineItem is one labeled row of a price breakdown. Adjustments such as the
// combination discount carry a negative cost.
type LineItem struct {
	Service string   `json:"service"`
	Cost    float64  `json:"cost"`
	Details []string `json:"details"`
	Error   string   `json:"error,omitempty"`
}

type PricingResult struct {
	Total     float64    `json:"total"`
	Currency  string     `json:"currency"`
	Breakdown []LineItem `json:"breakdown"`
}

const CurrencyEUR = "EUR"
