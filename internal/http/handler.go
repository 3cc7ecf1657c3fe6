package http

import (
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/yla-umzug/quotes-service/internal/http/middleware"
	"github.com/yla-umzug/quotes-service/internal/model"
	"github.com/yla-umzug/quotes-service/internal/notify"
	"github.com/yla-umzug/quotes-service/internal/service"
)

type Handler struct {
	quotes     *service.QuoteService
	calculator *service.CalculatorService
	admin      *service.AdminService
	log        zerolog.Logger
}

func NewHandler(quotes *service.QuoteService, calculator *service.CalculatorService, admin *service.AdminService, log zerolog.Logger) *Handler {
	return &Handler{quotes: quotes, calculator: calculator, admin: admin, log: log}
}

func (h *Handler) Register(router *gin.Engine, authMiddleware gin.HandlerFunc) {
	api := router.Group("/api")
	api.POST("/calculator/calculate", h.calculate)
	api.GET("/calculator/services", h.listPublicServices)
	api.POST("/calculator/distance", h.estimateDistance)
	api.POST("/quotes", h.submitQuote)
	api.POST("/quotes/submit", h.submitQuote)
	api.GET("/quotes/:number", h.lookupQuote)
	api.POST("/quotes/:number/respond", h.respondToQuote)
	api.GET("/settings/public", h.publicSettings)

	documents := router.Group("/quotes")
	documents.Use(authMiddleware)
	documents.GET("/preview-pdf/:id", h.previewPDF)
	documents.GET("/download-pdf/:id", h.downloadPDF)

	admin := router.Group("/admin")
	admin.Use(authMiddleware)
	admin.GET("/quotes", h.listQuotes)
	admin.GET("/quotes/export", h.exportQuotes)
	admin.POST("/quotes/bulk-transition", h.bulkTransition)
	admin.GET("/quotes/:id", h.getQuote)
	admin.PUT("/quotes/:id", h.updateQuote)
	admin.POST("/quotes/:id/transition", h.transitionQuote)
	admin.POST("/quotes/:id/send-email", h.sendEmail)
	admin.POST("/quotes/:id/send-whatsapp", h.sendWhatsApp)
	admin.POST("/quotes/:id/calculate-distance", h.calculateDistance)

	catalog := admin.Group("")
	catalog.Use(middleware.RequireAdmin())
	catalog.GET("/settings", h.listSettings)
	catalog.PUT("/settings/:group/:key", h.updateSetting)
	catalog.GET("/services", h.listServices)
	catalog.POST("/services", h.createService)
	catalog.PUT("/services/:id", h.updateService)
	catalog.GET("/pricing-rules", h.listRules)
	catalog.POST("/pricing-rules", h.createRule)
	catalog.PUT("/pricing-rules/:id", h.updateRule)
	catalog.DELETE("/pricing-rules/:id", h.deleteRule)
}

func (h *Handler) handleError(c *gin.Context, err error) {
	var verr *service.ValidationError
	switch {
	case errors.As(err, &verr):
		c.JSON(http.StatusUnprocessableEntity, gin.H{
			"success": false,
			"message": "Bitte überprüfen Sie Ihre Eingaben.",
			"errors":  verr.Fields,
		})
	case errors.Is(err, service.ErrInvalidInput):
		c.JSON(http.StatusUnprocessableEntity, gin.H{"success": false, "message": err.Error()})
	case errors.Is(err, service.ErrPermissionDenied):
		c.JSON(http.StatusForbidden, gin.H{"success": false, "message": "Keine Berechtigung"})
	case errors.Is(err, service.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"success": false, "message": "Nicht gefunden"})
	case errors.Is(err, model.ErrInvalidTransition):
		c.JSON(http.StatusConflict, gin.H{"success": false, "message": err.Error()})
	case errors.Is(err, notify.ErrNotConfigured):
		c.JSON(http.StatusServiceUnavailable, gin.H{"success": false, "message": "Versandkanal nicht konfiguriert"})
	case errors.Is(err, service.ErrDocumentFailed):
		h.log.Error().Err(err).Str("path", c.FullPath()).Msg("document generation failed")
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "PDF-Generierung fehlgeschlagen"})
	default:
		h.log.Error().Err(err).Str("path", c.FullPath()).Msg("request failed")
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Interner Fehler"})
	}
}

func (h *Handler) bindJSON(c *gin.Context, dst any) bool {
	if err := c.ShouldBindJSON(dst); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "Ungültige Anfrage"})
		return false
	}
	return true
}

func (h *Handler) principal(c *gin.Context) (model.Principal, bool) {
	principal, ok := middleware.MustPrincipal(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"success": false, "message": "Anmeldung erforderlich"})
	}
	return principal, ok
}

func (h *Handler) idParam(c *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(strings.TrimSpace(c.Param("id")))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "Ungültige ID"})
		return uuid.Nil, false
	}
	return id, true
}

func attachment(c *gin.Context, doc *service.Document, inline bool) {
	disposition := "attachment"
	if inline {
		disposition = "inline"
	}
	c.Header("Content-Disposition", disposition+"; filename=\""+doc.FileName+"\"")
	c.Data(http.StatusOK, doc.ContentType, doc.Content)
}

func parseDate(raw string) (time.Time, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return time.Time{}, service.ErrInvalidInput
	}
	layouts := []string{
		time.RFC3339,
		"2006-01-02",
		"02.01.2006",
	}
	for _, layout := range layouts {
		if parsed, err := time.Parse(layout, raw); err == nil {
			return parsed, nil
		}
	}
	return time.Time{}, service.ErrInvalidInput
}

func queryInt(c *gin.Context, key string) int {
	n, err := strconv.Atoi(strings.TrimSpace(c.Query(key)))
	if err != nil {
		return 0
	}
	return n
}
