package http

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/yla-umzug/quotes-service/internal/distance"
	"github.com/yla-umzug/quotes-service/internal/model"
	"github.com/yla-umzug/quotes-service/internal/pricing"
	"github.com/yla-umzug/quotes-service/internal/service"
)

func (h *Handler) calculate(c *gin.Context) {
	var req pricing.Request
	if !h.bindJSON(c, &req) {
		return
	}
	result, err := h.calculator.Calculate(c.Request.Context(), req)
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "pricing": result})
}

type publicService struct {
	ID          string  `json:"id"`
	Key         string  `json:"key"`
	Name        string  `json:"name"`
	Description string  `json:"description"`
	BasePrice   float64 `json:"base_price"`
}

func (h *Handler) listPublicServices(c *gin.Context) {
	services, err := h.calculator.Services(c.Request.Context())
	if err != nil {
		h.handleError(c, err)
		return
	}
	items := make([]publicService, 0, len(services))
	for _, s := range services {
		items = append(items, publicService{
			ID:          s.ID.String(),
			Key:         s.Key,
			Name:        s.Name,
			Description: s.Description,
			BasePrice:   s.BasePrice,
		})
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "services": items})
}

func (h *Handler) estimateDistance(c *gin.Context) {
	var req distance.Request
	if !h.bindJSON(c, &req) {
		return
	}
	result, err := h.calculator.Distance(c.Request.Context(), req)
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func (h *Handler) submitQuote(c *gin.Context) {
	var in service.SubmitInput
	if !h.bindJSON(c, &in) {
		return
	}
	quote, err := h.quotes.Submit(c.Request.Context(), in)
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{
		"success":      true,
		"message":      "Vielen Dank! Ihre Anfrage wurde erfolgreich übermittelt.",
		"quote_number": quote.QuoteNumber,
	})
}

type quoteStatusView struct {
	QuoteNumber    string            `json:"quote_number"`
	Status         model.QuoteStatus `json:"status"`
	StatusLabel    string            `json:"status_label"`
	Services       []string          `json:"services"`
	EstimatedTotal float64           `json:"estimated_total"`
	FinalAmount    *float64          `json:"final_amount,omitempty"`
	QuotedAt       *time.Time        `json:"quoted_at,omitempty"`
	CreatedAt      time.Time         `json:"created_at"`
}

func newQuoteStatusView(q *model.QuoteRequest) quoteStatusView {
	return quoteStatusView{
		QuoteNumber:    q.QuoteNumber,
		Status:         q.Status,
		StatusLabel:    q.Status.Label(),
		Services:       q.Services(),
		EstimatedTotal: q.EstimatedTotal,
		FinalAmount:    q.FinalAmount,
		QuotedAt:       q.QuotedAt,
		CreatedAt:      q.CreatedAt,
	}
}

func (h *Handler) lookupQuote(c *gin.Context) {
	quote, err := h.quotes.Lookup(c.Request.Context(), c.Param("number"), c.Query("email"))
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "quote": newQuoteStatusView(quote)})
}

type respondRequest struct {
	Email  string            `json:"email" binding:"required"`
	Action model.QuoteAction `json:"action" binding:"required"`
}

func (h *Handler) respondToQuote(c *gin.Context) {
	var req respondRequest
	if !h.bindJSON(c, &req) {
		return
	}
	quote, err := h.quotes.CustomerRespond(c.Request.Context(), c.Param("number"), req.Email, req.Action)
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "quote": newQuoteStatusView(quote)})
}

func (h *Handler) publicSettings(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"success": true, "settings": h.admin.PublicSettings(c.Request.Context())})
}
