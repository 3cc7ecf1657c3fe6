package http

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yla-umzug/quotes-service/internal/auth"
	"github.com/yla-umzug/quotes-service/internal/cache"
	"github.com/yla-umzug/quotes-service/internal/db/dbtest"
	"github.com/yla-umzug/quotes-service/internal/distance"
	"github.com/yla-umzug/quotes-service/internal/excel"
	"github.com/yla-umzug/quotes-service/internal/http/middleware"
	"github.com/yla-umzug/quotes-service/internal/model"
	"github.com/yla-umzug/quotes-service/internal/notify"
	"github.com/yla-umzug/quotes-service/internal/pdf"
	"github.com/yla-umzug/quotes-service/internal/pricing"
	"github.com/yla-umzug/quotes-service/internal/repository"
	"github.com/yla-umzug/quotes-service/internal/service"
	"github.com/yla-umzug/quotes-service/internal/settings"
)

type testServer struct {
	router *gin.Engine
	quotes *service.QuoteService
	admin  string
	staff  string
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	gin.SetMode(gin.TestMode)

	database := dbtest.Open(t, true)
	log := zerolog.Nop()

	store := settings.NewStore(repository.NewSettingRepository(database), cache.NewMemory(), time.Minute, log)
	estimator := distance.NewEstimator(nil, cache.NewMemory(), log)
	rules := repository.NewPricingRuleRepository(database)
	catalog := repository.NewServiceRepository(database)
	pricer := pricing.NewService(store,
		pricing.NewDiscountCalculator(store),
		pricing.NewRuleEngine(rules, log),
		log,
		pricing.NewMovingCalculator(store, estimator, log),
		pricing.NewCleaningCalculator(store),
		pricing.NewDeclutterCalculator(store),
	)

	quotes := service.NewQuoteService(
		repository.NewQuoteRepository(database),
		repository.NewNotificationRepository(database),
		pricer,
		estimator,
		pdf.NewGenerator(),
		excel.NewGenerator(),
		notify.Channels{},
		store,
		service.QuoteServiceConfig{Company: model.CompanyInfo{Name: "YLA Umzug"}},
		log,
	)

	parser := auth.NewParser("test-secret")
	handler := NewHandler(quotes, service.NewCalculatorService(pricer, catalog, estimator), service.NewAdminService(catalog, rules, store), log)
	router := NewRouter(handler, middleware.Auth(parser), RouterConfig{Environment: "test"}, log)

	adminToken, err := parser.Issue(model.Principal{UserID: uuid.New(), Name: "Yusuf", Role: model.UserRoleAdmin}, time.Hour)
	require.NoError(t, err)
	staffToken, err := parser.Issue(model.Principal{UserID: uuid.New(), Name: "Lena", Role: model.UserRoleStaff}, time.Hour)
	require.NoError(t, err)

	return &testServer{router: router, quotes: quotes, admin: adminToken, staff: staffToken}
}

func (s *testServer) do(t *testing.T, method, path string, body any, token string) *httptest.ResponseRecorder {
	t.Helper()
	var reader *bytes.Reader
	switch v := body.(type) {
	case nil:
		reader = bytes.NewReader(nil)
	case string:
		reader = bytes.NewReader([]byte(v))
	default:
		raw, err := json.Marshal(v)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)
	return rec
}

func decode(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body), rec.Body.String())
	return body
}

var submission = map[string]any{
	"name":             "Jana Becker",
	"email":            "jana@example.org",
	"phone":            "0151 2345678",
	"from_postal_code": "10115",
	"to_postal_code":   "10245",
	"selectedServices": []string{"umzug"},
	"movingDetails":    map[string]any{"rooms": 3, "floors": 2},
}

func (s *testServer) submit(t *testing.T) *model.QuoteRequest {
	t.Helper()
	rec := s.do(t, http.MethodPost, "/api/quotes", submission, "")
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	quote, err := s.quotes.GetByNumber(context.Background(), decode(t, rec)["quote_number"].(string))
	require.NoError(t, err)
	return quote
}

func TestHealthAndMetrics(t *testing.T) {
	s := newTestServer(t)

	rec := s.do(t, http.MethodGet, "/healthz", nil, "")
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = s.do(t, http.MethodGet, "/metrics", nil, "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "http_requests_total")
}

func TestCalculateEndpoint(t *testing.T) {
	s := newTestServer(t)

	rec := s.do(t, http.MethodPost, "/api/calculator/calculate", map[string]any{
		"selectedServices": []string{"umzug"},
		"movingDetails":    map[string]any{"rooms": 3, "floors": 2},
	}, "")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	body := decode(t, rec)
	assert.Equal(t, true, body["success"])
	result := body["pricing"].(map[string]any)
	assert.Equal(t, 300.0, result["total"])
	assert.Equal(t, "EUR", result["currency"])

	rec = s.do(t, http.MethodPost, "/api/calculator/calculate", map[string]any{"selectedServices": []string{}}, "")
	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	body = decode(t, rec)
	assert.Equal(t, false, body["success"])
	assert.Contains(t, body["errors"], "selectedServices")

	rec = s.do(t, http.MethodPost, "/api/calculator/calculate", "{not json", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestPublicServicesAndDistance(t *testing.T) {
	s := newTestServer(t)

	rec := s.do(t, http.MethodGet, "/api/calculator/services", nil, "")
	require.Equal(t, http.StatusOK, rec.Code)
	services := decode(t, rec)["services"].([]any)
	require.Len(t, services, 3)
	first := services[0].(map[string]any)
	assert.Equal(t, "umzug", first["key"])
	assert.Equal(t, 150.0, first["base_price"])

	rec = s.do(t, http.MethodPost, "/api/calculator/distance", map[string]any{"from_postal_code": "10115", "to_postal_code": "10245"}, "")
	require.Equal(t, http.StatusOK, rec.Code)
	body := decode(t, rec)
	assert.Equal(t, 25.0, body["distance_km"])
	assert.Equal(t, false, body["success"])
	assert.Equal(t, true, body["fallback"])

	rec = s.do(t, http.MethodPost, "/api/calculator/distance", map[string]any{"from_postal_code": "10115"}, "")
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)

	rec = s.do(t, http.MethodGet, "/api/settings/public", nil, "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, decode(t, rec)["settings"], "pricing")
}

func TestSubmitAndLookup(t *testing.T) {
	s := newTestServer(t)

	rec := s.do(t, http.MethodPost, "/api/quotes/submit", map[string]any{"selectedServices": []string{"umzug"}}, "")
	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	errs := decode(t, rec)["errors"].(map[string]any)
	assert.Contains(t, errs, "name")
	assert.Contains(t, errs, "email")
	assert.Contains(t, errs, "phone")

	rec = s.do(t, http.MethodPost, "/api/quotes", submission, "")
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	body := decode(t, rec)
	assert.Equal(t, true, body["success"])
	number := body["quote_number"].(string)
	assert.True(t, strings.HasPrefix(number, "QR-"))

	rec = s.do(t, http.MethodGet, "/api/quotes/"+number+"?email=jana@example.org", nil, "")
	require.Equal(t, http.StatusOK, rec.Code)
	view := decode(t, rec)["quote"].(map[string]any)
	assert.Equal(t, "pending", view["status"])
	assert.Equal(t, 300.0, view["estimated_total"])

	rec = s.do(t, http.MethodGet, "/api/quotes/"+number+"?email=other@example.org", nil, "")
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = s.do(t, http.MethodPost, "/api/quotes/"+number+"/respond", map[string]any{"email": "jana@example.org", "action": "accept"}, "")
	assert.Equal(t, http.StatusConflict, rec.Code)
}

func TestAdminAuthorization(t *testing.T) {
	s := newTestServer(t)

	rec := s.do(t, http.MethodGet, "/admin/quotes", nil, "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = s.do(t, http.MethodGet, "/admin/quotes", nil, "garbage")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = s.do(t, http.MethodGet, "/admin/quotes", nil, s.staff)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = s.do(t, http.MethodGet, "/admin/settings", nil, s.staff)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = s.do(t, http.MethodGet, "/admin/settings", nil, s.admin)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestAdminQuoteWorkflow(t *testing.T) {
	s := newTestServer(t)
	quote := s.submit(t)
	base := "/admin/quotes/" + quote.ID.String()

	rec := s.do(t, http.MethodGet, base, nil, s.staff)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, decode(t, rec)["actions"], "quote")

	rec = s.do(t, http.MethodGet, "/admin/quotes/not-a-uuid", nil, s.staff)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = s.do(t, http.MethodGet, "/admin/quotes/"+uuid.NewString(), nil, s.staff)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = s.do(t, http.MethodPost, base+"/transition", map[string]any{"action": "quote"}, s.staff)
	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.Contains(t, decode(t, rec)["errors"], "amount")

	rec = s.do(t, http.MethodPost, base+"/transition", map[string]any{"action": "quote", "amount": 420}, s.staff)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	updated := decode(t, rec)["quote"].(map[string]any)
	assert.Equal(t, "quoted", updated["status"])
	assert.Equal(t, 420.0, updated["final_amount"])

	rec = s.do(t, http.MethodPost, base+"/transition", map[string]any{"action": "review"}, s.staff)
	assert.Equal(t, http.StatusConflict, rec.Code)

	rec = s.do(t, http.MethodPut, base, map[string]any{"admin_notes": "Rückruf vereinbart"}, s.staff)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Rückruf vereinbart", decode(t, rec)["quote"].(map[string]any)["admin_notes"])

	rec = s.do(t, http.MethodPost, base+"/send-email", nil, s.staff)
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)

	rec = s.do(t, http.MethodPost, base+"/send-whatsapp", nil, s.staff)
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)

	rec = s.do(t, http.MethodPost, base+"/calculate-distance", nil, s.staff)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 25.0, decode(t, rec)["distance"].(map[string]any)["distance_km"])

	rec = s.do(t, http.MethodPost, "/api/quotes/"+quote.QuoteNumber+"/respond", map[string]any{"email": "jana@example.org", "action": "accept"}, "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "accepted", decode(t, rec)["quote"].(map[string]any)["status"])
}

func TestBulkTransitionEndpoint(t *testing.T) {
	s := newTestServer(t)
	first := s.submit(t)
	second := s.submit(t)

	rec := s.do(t, http.MethodPost, "/admin/quotes/bulk-transition", map[string]any{
		"ids":    []string{first.ID.String(), second.ID.String()},
		"action": "review",
	}, s.admin)
	require.Equal(t, http.StatusOK, rec.Code)
	result := decode(t, rec)["result"].(map[string]any)
	assert.Len(t, result["updated"], 2)

	rec = s.do(t, http.MethodPost, "/admin/quotes/bulk-transition", map[string]any{"ids": []string{"x"}, "action": "review"}, s.admin)
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
}

func TestDocuments(t *testing.T) {
	s := newTestServer(t)
	quote := s.submit(t)

	rec := s.do(t, http.MethodGet, "/quotes/download-pdf/"+quote.ID.String(), nil, s.staff)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/pdf", rec.Header().Get("Content-Type"))
	assert.Equal(t, `attachment; filename="Angebot-`+quote.QuoteNumber+`.pdf"`, rec.Header().Get("Content-Disposition"))
	assert.True(t, bytes.HasPrefix(rec.Body.Bytes(), []byte("%PDF-")))

	rec = s.do(t, http.MethodGet, "/quotes/preview-pdf/"+quote.ID.String(), nil, s.staff)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, strings.HasPrefix(rec.Header().Get("Content-Disposition"), "inline"))

	rec = s.do(t, http.MethodGet, "/admin/quotes/export?status=pending", nil, s.admin)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, bytes.HasPrefix(rec.Body.Bytes(), []byte("PK")))

	rec = s.do(t, http.MethodGet, "/admin/quotes/export?from=yesterday", nil, s.admin)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestCatalogEndpoints(t *testing.T) {
	s := newTestServer(t)

	rec := s.do(t, http.MethodPut, "/admin/settings/pricing/minimum_order_value", map[string]any{"value": "abc", "type": "decimal", "is_public": true}, s.admin)
	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.Contains(t, decode(t, rec)["errors"], "value")

	rec = s.do(t, http.MethodPut, "/admin/settings/pricing/minimum_order_value", map[string]any{"value": 400, "type": "decimal", "is_public": true}, s.admin)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	rec = s.do(t, http.MethodPost, "/api/calculator/calculate", map[string]any{
		"selectedServices": []string{"umzug"},
		"movingDetails":    map[string]any{"rooms": 3, "floors": 2},
	}, "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 400.0, decode(t, rec)["pricing"].(map[string]any)["total"])

	rec = s.do(t, http.MethodPost, "/admin/pricing-rules", map[string]any{
		"name": "Klaviertransport", "service_key": "umzug", "rule_type": "surcharge",
		"rule_key": "umzug.piano", "operator": "exists", "price_value": 100, "price_type": "fixed",
	}, s.admin)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	ruleID := decode(t, rec)["rule"].(map[string]any)["id"].(string)

	rec = s.do(t, http.MethodGet, "/admin/pricing-rules", nil, s.admin)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decode(t, rec)["rules"], 1)

	rec = s.do(t, http.MethodDelete, "/admin/pricing-rules/"+ruleID, nil, s.admin)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = s.do(t, http.MethodPost, "/admin/services", map[string]any{"key": "lagerung", "name": "Einlagerung", "base_price": 80}, s.admin)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	rec = s.do(t, http.MethodGet, "/admin/services", nil, s.admin)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decode(t, rec)["services"], 4)
}
