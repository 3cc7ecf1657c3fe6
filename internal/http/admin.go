package http

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/yla-umzug/quotes-service/internal/model"
	"github.com/yla-umzug/quotes-service/internal/repository"
	"github.com/yla-umzug/quotes-service/internal/service"
)

func (h *Handler) quoteFilter(c *gin.Context) (repository.QuoteFilter, bool) {
	filter := repository.QuoteFilter{
		Status:   model.QuoteStatus(strings.ToLower(strings.TrimSpace(c.Query("status")))),
		Search:   strings.TrimSpace(c.Query("search")),
		Page:     queryInt(c, "page"),
		PageSize: queryInt(c, "page_size"),
	}
	if raw := c.Query("from"); raw != "" {
		from, err := parseDate(raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "invalid from"})
			return filter, false
		}
		filter.From = &from
	}
	if raw := c.Query("to"); raw != "" {
		to, err := parseDate(raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "invalid to"})
			return filter, false
		}
		end := to.AddDate(0, 0, 1)
		filter.To = &end
	}
	return filter, true
}

func (h *Handler) listQuotes(c *gin.Context) {
	if _, ok := h.principal(c); !ok {
		return
	}
	filter, ok := h.quoteFilter(c)
	if !ok {
		return
	}
	list, err := h.quotes.List(c.Request.Context(), filter)
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "data": list})
}

func (h *Handler) exportQuotes(c *gin.Context) {
	if _, ok := h.principal(c); !ok {
		return
	}
	filter, ok := h.quoteFilter(c)
	if !ok {
		return
	}
	doc, err := h.quotes.Export(c.Request.Context(), filter)
	if err != nil {
		h.handleError(c, err)
		return
	}
	attachment(c, doc, false)
}

func quoteResponse(quote *model.QuoteRequest) gin.H {
	return gin.H{
		"success": true,
		"quote":   quote,
		"pricing": quote.Pricing(),
		"actions": model.AvailableActions(quote.Status),
	}
}

func (h *Handler) getQuote(c *gin.Context) {
	if _, ok := h.principal(c); !ok {
		return
	}
	id, ok := h.idParam(c)
	if !ok {
		return
	}
	quote, err := h.quotes.Get(c.Request.Context(), id)
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, quoteResponse(quote))
}

func (h *Handler) updateQuote(c *gin.Context) {
	principal, ok := h.principal(c)
	if !ok {
		return
	}
	id, ok := h.idParam(c)
	if !ok {
		return
	}
	var in service.UpdateInput
	if !h.bindJSON(c, &in) {
		return
	}
	quote, err := h.quotes.Update(c.Request.Context(), id, in, principal)
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, quoteResponse(quote))
}

func (h *Handler) transitionQuote(c *gin.Context) {
	principal, ok := h.principal(c)
	if !ok {
		return
	}
	id, ok := h.idParam(c)
	if !ok {
		return
	}
	var in service.TransitionInput
	if !h.bindJSON(c, &in) {
		return
	}
	quote, err := h.quotes.Transition(c.Request.Context(), id, in, principal)
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, quoteResponse(quote))
}

type bulkTransitionRequest struct {
	IDs    []string          `json:"ids"`
	Action model.QuoteAction `json:"action" binding:"required"`
}

func (h *Handler) bulkTransition(c *gin.Context) {
	principal, ok := h.principal(c)
	if !ok {
		return
	}
	var req bulkTransitionRequest
	if !h.bindJSON(c, &req) {
		return
	}
	ids := make([]uuid.UUID, 0, len(req.IDs))
	for _, raw := range req.IDs {
		id, err := uuid.Parse(strings.TrimSpace(raw))
		if err != nil {
			h.handleError(c, &service.ValidationError{Fields: map[string]string{"ids": "Ungültige ID: " + raw}})
			return
		}
		ids = append(ids, id)
	}
	result, err := h.quotes.BulkTransition(c.Request.Context(), ids, req.Action, principal)
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "result": result})
}

func (h *Handler) sendEmail(c *gin.Context) {
	principal, ok := h.principal(c)
	if !ok {
		return
	}
	id, ok := h.idParam(c)
	if !ok {
		return
	}
	quote, err := h.quotes.SendEmail(c.Request.Context(), id, principal)
	if err != nil {
		h.handleError(c, err)
		return
	}
	resp := quoteResponse(quote)
	resp["message"] = "Angebot per E-Mail gesendet"
	c.JSON(http.StatusOK, resp)
}

func (h *Handler) sendWhatsApp(c *gin.Context) {
	principal, ok := h.principal(c)
	if !ok {
		return
	}
	id, ok := h.idParam(c)
	if !ok {
		return
	}
	quote, err := h.quotes.SendWhatsApp(c.Request.Context(), id, principal)
	if err != nil {
		h.handleError(c, err)
		return
	}
	resp := quoteResponse(quote)
	resp["message"] = "Angebot per WhatsApp gesendet"
	c.JSON(http.StatusOK, resp)
}

func (h *Handler) calculateDistance(c *gin.Context) {
	principal, ok := h.principal(c)
	if !ok {
		return
	}
	id, ok := h.idParam(c)
	if !ok {
		return
	}
	quote, result, err := h.quotes.CalculateDistance(c.Request.Context(), id, principal)
	if err != nil {
		h.handleError(c, err)
		return
	}
	resp := quoteResponse(quote)
	resp["distance"] = result
	c.JSON(http.StatusOK, resp)
}

func (h *Handler) previewPDF(c *gin.Context) {
	h.renderPDF(c, true)
}

func (h *Handler) downloadPDF(c *gin.Context) {
	h.renderPDF(c, false)
}

func (h *Handler) renderPDF(c *gin.Context, inline bool) {
	principal, ok := h.principal(c)
	if !ok {
		return
	}
	if !principal.CanManageQuotes() {
		h.handleError(c, service.ErrPermissionDenied)
		return
	}
	id, ok := h.idParam(c)
	if !ok {
		return
	}
	doc, err := h.quotes.RenderPDF(c.Request.Context(), id)
	if err != nil {
		h.handleError(c, err)
		return
	}
	attachment(c, doc, inline)
}
