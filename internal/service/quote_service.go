package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"gorm.io/datatypes"

	"github.com/yla-umzug/quotes-service/internal/distance"
	"github.com/yla-umzug/quotes-service/internal/metrics"
	"github.com/yla-umzug/quotes-service/internal/model"
	"github.com/yla-umzug/quotes-service/internal/notify"
	"github.com/yla-umzug/quotes-service/internal/pricing"
	"github.com/yla-umzug/quotes-service/internal/repository"
	"github.com/yla-umzug/quotes-service/internal/settings"
)

type PricingCalculator interface {
	Calculate(ctx context.Context, req pricing.Request) model.PricingResult
}

type PDFGenerator interface {
	Quote(doc model.QuoteDocument) ([]byte, error)
}

type ExcelGenerator interface {
	Quotes(quotes []model.QuoteRequest) ([]byte, error)
}

type QuoteServiceConfig struct {
	Company    model.CompanyInfo
	AdminEmail string
}

type QuoteService struct {
	quotes        *repository.QuoteRepository
	notifications *repository.NotificationRepository
	pricer        PricingCalculator
	distance      pricing.DistanceEstimator
	pdf           PDFGenerator
	excel         ExcelGenerator
	notifier      notify.Port
	settings      settings.Reader
	cfg           QuoteServiceConfig
	validate      *validator.Validate
	log           zerolog.Logger
	now           func() time.Time
}

func NewQuoteService(
	quotes *repository.QuoteRepository,
	notifications *repository.NotificationRepository,
	pricer PricingCalculator,
	estimator pricing.DistanceEstimator,
	pdf PDFGenerator,
	excel ExcelGenerator,
	notifier notify.Port,
	reader settings.Reader,
	cfg QuoteServiceConfig,
	log zerolog.Logger,
) *QuoteService {
	return &QuoteService{
		quotes:        quotes,
		notifications: notifications,
		pricer:        pricer,
		distance:      estimator,
		pdf:           pdf,
		excel:         excel,
		notifier:      notifier,
		settings:      reader,
		cfg:           cfg,
		validate:      newValidator(),
		log:           log.With().Str("component", "quotes").Logger(),
		now:           func() time.Time { return time.Now().UTC() },
	}
}

type SubmitInput struct {
	Name             string               `json:"name" validate:"required,max=255"`
	Email            string               `json:"email" validate:"required,email,max=255"`
	Phone            string               `json:"phone" validate:"required,max=64"`
	PreferredContact string               `json:"preferred_contact" validate:"omitempty,oneof=email phone whatsapp"`
	Message          string               `json:"message" validate:"max=5000"`
	FromPostalCode   string               `json:"from_postal_code" validate:"max=16"`
	ToPostalCode     string               `json:"to_postal_code" validate:"max=16"`
	MovingDate       string               `json:"moving_date" validate:"omitempty,datetime=2006-01-02"`
	Pricing          *model.PricingResult `json:"pricing"`
	pricing.Request
}

// serviceDetails is the persisted shape of the per-service payloads.
type serviceDetails struct {
	MovingDetails    pricing.Payload `json:"movingDetails,omitempty"`
	CleaningDetails  pricing.Payload `json:"cleaningDetails,omitempty"`
	DeclutterDetails pricing.Payload `json:"declutterDetails,omitempty"`
	GeneralInfo      pricing.Payload `json:"generalInfo,omitempty"`
}

// Submit stores a customer request together with its pricing snapshot and
// queues the confirmation mails. A client supplied snapshot is stored as is;
// otherwise the price is computed once here and never recomputed.
func (s *QuoteService) Submit(ctx context.Context, in SubmitInput) (*model.QuoteRequest, error) {
	in.Name = strings.TrimSpace(in.Name)
	in.Email = strings.TrimSpace(in.Email)
	in.Phone = strings.TrimSpace(in.Phone)

	if err := s.validate.Struct(in); err != nil {
		return nil, validationError(err)
	}
	if len(in.Request.Services()) == 0 {
		return nil, fieldError("selectedServices", "Mindestens eine Leistung auswählen")
	}

	var movingDate *time.Time
	if in.MovingDate != "" {
		d, err := time.Parse("2006-01-02", in.MovingDate)
		if err != nil {
			return nil, fieldError("moving_date", "Datum im Format JJJJ-MM-TT erwartet")
		}
		movingDate = &d
	}

	snapshot := in.Pricing
	if snapshot == nil || len(snapshot.Breakdown) == 0 {
		computed := s.pricer.Calculate(ctx, in.Request)
		snapshot = &computed
	}
	if snapshot.Currency == "" {
		snapshot.Currency = model.CurrencyEUR
	}

	selected, err := json.Marshal(in.SelectedServices)
	if err != nil {
		return nil, err
	}
	details, err := json.Marshal(serviceDetails{
		MovingDetails:    in.MovingDetails,
		CleaningDetails:  in.CleaningDetails,
		DeclutterDetails: in.DeclutterDetails,
		GeneralInfo:      in.GeneralInfo,
	})
	if err != nil {
		return nil, err
	}
	pricingData, err := json.Marshal(snapshot)
	if err != nil {
		return nil, err
	}

	quote := &model.QuoteRequest{
		Name:             in.Name,
		Email:            strings.ToLower(in.Email),
		Phone:            in.Phone,
		PreferredContact: in.PreferredContact,
		Message:          strings.TrimSpace(in.Message),
		FromPostalCode:   firstNonEmpty(in.FromPostalCode, in.MovingDetails.String("from_postal_code")),
		ToPostalCode:     firstNonEmpty(in.ToPostalCode, in.MovingDetails.String("to_postal_code")),
		MovingDate:       movingDate,
		SelectedServices: datatypes.JSON(selected),
		ServiceDetails:   datatypes.JSON(details),
		PricingData:      datatypes.JSON(pricingData),
		EstimatedTotal:   snapshot.Total,
		Status:           model.QuoteStatusPending,
		CreatedAt:        s.now(),
	}

	if err := s.quotes.Create(ctx, quote, s.submissionOutbox(ctx, quote)); err != nil {
		return nil, err
	}
	metrics.QuotesSubmitted.Inc()

	s.log.Info().
		Str("quote_number", quote.QuoteNumber).
		Strs("services", in.Request.Services()).
		Float64("estimated_total", quote.EstimatedTotal).
		Msg("quote request submitted")
	return quote, nil
}

func (s *QuoteService) submissionOutbox(ctx context.Context, quote *model.QuoteRequest) []model.Notification {
	outbox := []model.Notification{{
		Channel:   model.ChannelEmail,
		Kind:      model.NotificationCustomerConfirmation,
		Recipient: quote.Email,
		Status:    model.NotificationPending,
	}}
	if s.cfg.AdminEmail != "" {
		outbox = append(outbox, model.Notification{
			Channel:   model.ChannelEmail,
			Kind:      model.NotificationAdminNewQuote,
			Recipient: s.cfg.AdminEmail,
			Status:    model.NotificationPending,
		})
	}
	if quote.PreferredContact == "whatsapp" && s.settings.Bool(ctx, "company", "whatsapp_enabled", false) {
		outbox = append(outbox, model.Notification{
			Channel:   model.ChannelWhatsApp,
			Kind:      model.NotificationCustomerConfirmation,
			Recipient: quote.Phone,
			Status:    model.NotificationPending,
		})
	}
	return outbox
}

func (s *QuoteService) Get(ctx context.Context, id uuid.UUID) (*model.QuoteRequest, error) {
	quote, err := s.quotes.GetByID(ctx, id)
	if err != nil {
		return nil, notFound(err)
	}
	return quote, nil
}

func (s *QuoteService) GetByNumber(ctx context.Context, number string) (*model.QuoteRequest, error) {
	quote, err := s.quotes.GetByNumber(ctx, strings.ToUpper(strings.TrimSpace(number)))
	if err != nil {
		return nil, notFound(err)
	}
	return quote, nil
}

// Lookup returns the quote only if email matches the one it was submitted
// with, so quote numbers alone do not disclose anything.
func (s *QuoteService) Lookup(ctx context.Context, number, email string) (*model.QuoteRequest, error) {
	quote, err := s.GetByNumber(ctx, number)
	if err != nil {
		return nil, err
	}
	if !strings.EqualFold(strings.TrimSpace(email), quote.Email) {
		return nil, ErrNotFound
	}
	return quote, nil
}

type QuoteList struct {
	Items    []model.QuoteRequest        `json:"items"`
	Total    int64                       `json:"total"`
	Page     int                         `json:"page"`
	PageSize int                         `json:"page_size"`
	Counts   map[model.QuoteStatus]int64 `json:"counts"`
}

func (s *QuoteService) List(ctx context.Context, filter repository.QuoteFilter) (*QuoteList, error) {
	if filter.Status != "" && !filter.Status.Valid() {
		return nil, fieldError("status", "Unbekannter Status")
	}
	if filter.Page < 1 {
		filter.Page = 1
	}
	if filter.PageSize <= 0 || filter.PageSize > 100 {
		filter.PageSize = 25
	}

	items, total, err := s.quotes.List(ctx, filter)
	if err != nil {
		return nil, err
	}
	counts, err := s.quotes.CountByStatus(ctx)
	if err != nil {
		return nil, err
	}
	return &QuoteList{Items: items, Total: total, Page: filter.Page, PageSize: filter.PageSize, Counts: counts}, nil
}

// UpdateInput edits contact data, notes and the offered amount. Status
// changes go through Transition.
type UpdateInput struct {
	Name        *string  `json:"name" validate:"omitempty,min=1,max=255"`
	Email       *string  `json:"email" validate:"omitempty,email,max=255"`
	Phone       *string  `json:"phone" validate:"omitempty,min=1,max=64"`
	AdminNotes  *string  `json:"admin_notes"`
	FinalAmount *float64 `json:"final_amount" validate:"omitempty,gte=0"`
}

func (s *QuoteService) Update(ctx context.Context, id uuid.UUID, in UpdateInput, actor model.Principal) (*model.QuoteRequest, error) {
	if !actor.CanManageQuotes() {
		return nil, ErrPermissionDenied
	}
	if err := s.validate.Struct(in); err != nil {
		return nil, validationError(err)
	}

	quote, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if in.Name != nil {
		quote.Name = strings.TrimSpace(*in.Name)
	}
	if in.Email != nil {
		quote.Email = strings.ToLower(strings.TrimSpace(*in.Email))
	}
	if in.Phone != nil {
		quote.Phone = strings.TrimSpace(*in.Phone)
	}
	if in.AdminNotes != nil {
		quote.AdminNotes = *in.AdminNotes
	}
	if in.FinalAmount != nil {
		amount := pricing.Round2(*in.FinalAmount)
		quote.FinalAmount = &amount
	}

	if err := s.quotes.Save(ctx, quote); err != nil {
		return nil, err
	}
	return quote, nil
}

type TransitionInput struct {
	Action         model.QuoteAction `json:"action" validate:"required"`
	Amount         *float64          `json:"amount" validate:"omitempty,gte=0"`
	Note           string            `json:"note" validate:"max=2000"`
	NotifyCustomer bool              `json:"notify_customer"`
}

// Transition applies a status action. Quoting needs an amount, either in the
// input or already stored on the quote, and stamps quoted_at.
func (s *QuoteService) Transition(ctx context.Context, id uuid.UUID, in TransitionInput, actor model.Principal) (*model.QuoteRequest, error) {
	if !actor.CanManageQuotes() {
		return nil, ErrPermissionDenied
	}
	if err := s.validate.Struct(in); err != nil {
		return nil, validationError(err)
	}

	quote, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.apply(quote, in, actor.DisplayName()); err != nil {
		return nil, err
	}
	if err := s.quotes.Save(ctx, quote); err != nil {
		return nil, err
	}

	if in.Action == model.ActionQuote && in.NotifyCustomer {
		offer := &model.Notification{
			QuoteID:   quote.ID,
			Channel:   model.ChannelEmail,
			Kind:      model.NotificationQuoteOffer,
			Recipient: quote.Email,
		}
		if err := s.notifications.Enqueue(ctx, offer); err != nil {
			s.log.Error().Err(err).Str("quote_number", quote.QuoteNumber).Msg("failed to queue quote offer")
		}
	}

	s.log.Info().
		Str("quote_number", quote.QuoteNumber).
		Str("action", string(in.Action)).
		Str("status", string(quote.Status)).
		Str("actor", actor.DisplayName()).
		Msg("quote status changed")
	return quote, nil
}

func (s *QuoteService) apply(quote *model.QuoteRequest, in TransitionInput, actor string) error {
	from := quote.Status
	next, err := model.Transition(from, in.Action)
	if err != nil {
		return err
	}
	now := s.now()

	if in.Action == model.ActionQuote {
		amount := in.Amount
		if amount == nil {
			amount = quote.FinalAmount
		}
		if amount == nil {
			return fieldError("amount", "Für ein Angebot ist ein Betrag erforderlich")
		}
		rounded := pricing.Round2(*amount)
		quote.FinalAmount = &rounded
		quote.QuotedAt = &now
		quote.AppendNote(now, fmt.Sprintf("Angebot über %s erstellt (%s)", pricing.FormatEUR(rounded), actor))
	} else {
		quote.AppendNote(now, fmt.Sprintf("Status %s → %s (%s)", from.Label(), next.Label(), actor))
	}
	if note := strings.TrimSpace(in.Note); note != "" {
		quote.AppendNote(now, note)
	}
	quote.Status = next
	return nil
}

// MarkQuoted is the admin "Angebot erstellen" action.
func (s *QuoteService) MarkQuoted(ctx context.Context, id uuid.UUID, amount float64, note string, actor model.Principal) (*model.QuoteRequest, error) {
	return s.Transition(ctx, id, TransitionInput{Action: model.ActionQuote, Amount: &amount, Note: note}, actor)
}

type BulkResult struct {
	Updated []string          `json:"updated"`
	Failed  map[string]string `json:"failed"`
}

// BulkTransition applies action to every id independently; failures do not
// stop the batch.
func (s *QuoteService) BulkTransition(ctx context.Context, ids []uuid.UUID, action model.QuoteAction, actor model.Principal) (*BulkResult, error) {
	if !actor.CanManageQuotes() {
		return nil, ErrPermissionDenied
	}
	if len(ids) == 0 {
		return nil, fieldError("ids", "Keine Anfragen ausgewählt")
	}

	result := &BulkResult{Updated: []string{}, Failed: map[string]string{}}
	for _, id := range ids {
		quote, err := s.Transition(ctx, id, TransitionInput{Action: action}, actor)
		if err != nil {
			result.Failed[id.String()] = err.Error()
			continue
		}
		result.Updated = append(result.Updated, quote.QuoteNumber)
	}
	return result, nil
}

// CustomerRespond lets the customer accept or reject an offer using the
// quote number and the email the request was submitted with.
func (s *QuoteService) CustomerRespond(ctx context.Context, number, email string, action model.QuoteAction) (*model.QuoteRequest, error) {
	if action != model.ActionAccept && action != model.ActionReject {
		return nil, fieldError("action", "Erlaubt: accept reject")
	}
	quote, err := s.Lookup(ctx, number, email)
	if err != nil {
		return nil, err
	}
	if quote.Status != model.QuoteStatusQuoted {
		return nil, &model.TransitionError{From: quote.Status, Action: action}
	}
	if err := s.apply(quote, TransitionInput{Action: action}, "Kunde"); err != nil {
		return nil, err
	}
	if err := s.quotes.Save(ctx, quote); err != nil {
		return nil, err
	}
	s.log.Info().Str("quote_number", quote.QuoteNumber).Str("action", string(action)).Msg("customer responded to offer")
	return quote, nil
}

type Document struct {
	FileName    string
	ContentType string
	Content     []byte
}

func (s *QuoteService) RenderPDF(ctx context.Context, id uuid.UUID) (*Document, error) {
	quote, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	content, err := s.renderOffer(ctx, quote)
	if err != nil {
		return nil, err
	}
	return &Document{FileName: offerFileName(quote), ContentType: "application/pdf", Content: content}, nil
}

func (s *QuoteService) renderOffer(ctx context.Context, quote *model.QuoteRequest) ([]byte, error) {
	issued := s.now()
	content, err := s.pdf.Quote(model.QuoteDocument{
		Quote:      *quote,
		Company:    s.cfg.Company,
		IssuedAt:   issued,
		ValidUntil: s.validUntil(ctx, issued),
	})
	if err != nil {
		s.log.Error().Err(err).Str("quote_number", quote.QuoteNumber).Msg("pdf generation failed")
		return nil, fmt.Errorf("%w: %v", ErrDocumentFailed, err)
	}
	return content, nil
}

func (s *QuoteService) validUntil(ctx context.Context, from time.Time) time.Time {
	days := s.settings.Int(ctx, "company", "quote_validity_days", 30)
	return from.AddDate(0, 0, int(days))
}

// SendEmail mails the offer PDF to the customer right away. Sending twice
// sends twice and moves email_sent_at.
func (s *QuoteService) SendEmail(ctx context.Context, id uuid.UUID, actor model.Principal) (*model.QuoteRequest, error) {
	if !actor.CanManageQuotes() {
		return nil, ErrPermissionDenied
	}
	quote, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.sendOfferEmail(ctx, quote, quote.Email); err != nil {
		return nil, err
	}
	return s.Get(ctx, id)
}

func (s *QuoteService) sendOfferEmail(ctx context.Context, quote *model.QuoteRequest, to string) error {
	content, err := s.renderOffer(ctx, quote)
	if err != nil {
		return err
	}
	msg := offerMessage(quote, s.cfg.Company, s.validUntil(ctx, s.now()))
	msg.To = []string{to}
	msg.Attachments = []notify.Attachment{{
		Filename:    offerFileName(quote),
		ContentType: "application/pdf",
		Data:        content,
	}}
	if err := s.notifier.SendQuoteEmail(ctx, msg); err != nil {
		return err
	}
	return s.quotes.TouchEmailSent(ctx, quote.ID, s.now())
}

func (s *QuoteService) SendWhatsApp(ctx context.Context, id uuid.UUID, actor model.Principal) (*model.QuoteRequest, error) {
	if !actor.CanManageQuotes() {
		return nil, ErrPermissionDenied
	}
	if !s.settings.Bool(ctx, "company", "whatsapp_enabled", false) {
		return nil, notify.ErrNotConfigured
	}
	quote, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(quote.Phone) == "" {
		return nil, fieldError("phone", "Keine Telefonnummer hinterlegt")
	}
	if err := s.notifier.SendWhatsApp(ctx, quote.Phone, offerWhatsAppText(quote, s.cfg.Company)); err != nil {
		return nil, err
	}
	if err := s.quotes.TouchWhatsAppSent(ctx, quote.ID, s.now()); err != nil {
		return nil, err
	}
	return s.Get(ctx, id)
}

// CalculateDistance estimates the moving distance from the stored postal
// codes and addresses and records it on the quote.
func (s *QuoteService) CalculateDistance(ctx context.Context, id uuid.UUID, actor model.Principal) (*model.QuoteRequest, distance.Result, error) {
	if !actor.CanManageQuotes() {
		return nil, distance.Result{}, ErrPermissionDenied
	}
	quote, err := s.Get(ctx, id)
	if err != nil {
		return nil, distance.Result{}, err
	}

	var details serviceDetails
	if len(quote.ServiceDetails) > 0 {
		_ = json.Unmarshal(quote.ServiceDetails, &details)
	}
	moving := details.MovingDetails
	result, err := s.distance.Estimate(ctx, distance.Request{
		FromPostalCode: firstNonEmpty(quote.FromPostalCode, moving.String("from_postal_code")),
		ToPostalCode:   firstNonEmpty(quote.ToPostalCode, moving.String("to_postal_code")),
		FromStreet:     moving.String("from_street"),
		FromCity:       moving.String("from_city"),
		ToStreet:       moving.String("to_street"),
		ToCity:         moving.String("to_city"),
	})
	if err != nil {
		if errors.Is(err, distance.ErrMissingInput) || errors.Is(err, distance.ErrInvalidPostalCode) {
			return nil, distance.Result{}, fieldError("postal_code", "Gültige Postleitzahlen erforderlich")
		}
		return nil, distance.Result{}, err
	}

	km := result.DistanceKm
	quote.DistanceKm = &km
	label := fmt.Sprintf("Entfernung berechnet: %.1f km", km)
	if result.Fallback {
		label += " (geschätzt)"
	}
	quote.AppendNote(s.now(), label)
	if err := s.quotes.Save(ctx, quote); err != nil {
		return nil, distance.Result{}, err
	}
	return quote, result, nil
}

func (s *QuoteService) Export(ctx context.Context, filter repository.QuoteFilter) (*Document, error) {
	filter.Page, filter.PageSize = 0, 0
	quotes, _, err := s.quotes.List(ctx, filter)
	if err != nil {
		return nil, err
	}
	content, err := s.excel.Quotes(quotes)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDocumentFailed, err)
	}
	return &Document{
		FileName:    fmt.Sprintf("anfragen-%s.xlsx", s.now().Format("20060102")),
		ContentType: "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet",
		Content:     content,
	}, nil
}

// Deliver sends one outbox notification. It implements notify.Deliverer.
func (s *QuoteService) Deliver(ctx context.Context, n model.Notification) error {
	quote, err := s.Get(ctx, n.QuoteID)
	if err != nil {
		return err
	}

	switch n.Channel {
	case model.ChannelEmail:
		switch n.Kind {
		case model.NotificationCustomerConfirmation:
			msg := confirmationMessage(quote, s.cfg.Company)
			msg.To = []string{n.Recipient}
			return s.notifier.SendQuoteEmail(ctx, msg)
		case model.NotificationAdminNewQuote:
			msg := adminMessage(quote)
			msg.To = []string{n.Recipient}
			return s.notifier.SendQuoteEmail(ctx, msg)
		case model.NotificationQuoteOffer:
			return s.sendOfferEmail(ctx, quote, n.Recipient)
		}
	case model.ChannelWhatsApp:
		switch n.Kind {
		case model.NotificationCustomerConfirmation:
			return s.notifier.SendWhatsApp(ctx, n.Recipient, confirmationWhatsAppText(quote, s.cfg.Company))
		case model.NotificationQuoteOffer:
			if err := s.notifier.SendWhatsApp(ctx, n.Recipient, offerWhatsAppText(quote, s.cfg.Company)); err != nil {
				return err
			}
			return s.quotes.TouchWhatsAppSent(ctx, quote.ID, s.now())
		}
	}
	return fmt.Errorf("unsupported notification %s/%s", n.Channel, n.Kind)
}

func offerFileName(quote *model.QuoteRequest) string {
	return "Angebot-" + quote.QuoteNumber + ".pdf"
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			return v
		}
	}
	return ""
}
