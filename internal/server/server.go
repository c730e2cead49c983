package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"net/http"
	"reflect"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"movequote/internal/catalog"
	"movequote/internal/logger"
	"movequote/internal/metrics"
	"movequote/internal/orders"
	"movequote/internal/quote"
	"movequote/internal/rate"
)

const (
	defaultLowConfidence = 0.5
	maxBodyBytes         = 1 << 20
)

// OrderStore persists order notes.
type OrderStore interface {
	Create(ctx context.Context, n orders.Note) (orders.Order, error)
	GetByRef(ctx context.Context, ref string) (orders.Order, error)
}

// Options configures the handler. Zero values fall back to defaults; a nil
// Orders store makes the order routes answer 503.
type Options struct {
	Engine                 *quote.Engine
	Orders                 OrderStore
	Logger                 *zap.Logger
	Metrics                *metrics.Metrics
	Normalizer             Normalizer
	LowConfidenceThreshold float64
}

type Server struct {
	engine        *quote.Engine
	orders        OrderStore
	log           *zap.Logger
	metrics       *metrics.Metrics
	normalizer    Normalizer
	validate      *validator.Validate
	lowConfidence float64
}

// New returns a handler over the embedded catalog and default rates.
func New() http.Handler {
	return NewWithOptions(Options{})
}

// NewWithOptions allows injecting the engine, order store and observability.
func NewWithOptions(opts Options) http.Handler {
	s := &Server{
		engine:        opts.Engine,
		orders:        opts.Orders,
		log:           opts.Logger,
		metrics:       opts.Metrics,
		normalizer:    opts.Normalizer,
		validate:      newValidator(),
		lowConfidence: opts.LowConfidenceThreshold,
	}
	if s.engine == nil {
		// A broken embedded catalog surfaces as catalog_unavailable per request.
		idx, _ := catalog.Default()
		s.engine = quote.NewEngine(idx, nil, nil)
	}
	if s.log == nil {
		s.log = zap.NewNop()
	}
	if s.metrics == nil {
		s.metrics = metrics.New("movequote")
	}
	if s.normalizer == nil {
		s.normalizer = NewNormalizer()
	}
	if s.lowConfidence <= 0 {
		s.lowConfidence = defaultLowConfidence
	}

	r := chi.NewRouter()
	r.Use(requestIDMiddleware)
	r.Use(s.requestLogger)
	r.Use(s.metrics.Middleware)
	r.Use(middleware.Recoverer)
	r.Get("/healthz", s.handleHealth)
	r.Method(http.MethodGet, "/metrics", s.metrics.Handler())
	r.Get("/catalog/match", s.handleMatch)
	r.Post("/orders/summary", s.handleSummary)
	r.Post("/quotes", s.handleQuote)
	r.Post("/orders", s.handleCreateOrder)
	r.Get("/orders/{ref}", s.handleGetOrder)
	return r
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("ok"))
}

// Catalog match
type MatchResponse struct {
	Query         string       `json:"query"`
	Item          catalog.Item `json:"item"`
	Confidence    float64      `json:"confidence"`
	LowConfidence bool         `json:"low_confidence"`
}

func (s *Server) handleMatch(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query().Get("q")
	if strings.TrimSpace(q) == "" {
		writeErrorJSON(w, http.StatusBadRequest, "invalid_request", "q required")
		return
	}
	it, confidence, err := s.engine.Catalog().Resolve(q)
	if err != nil {
		s.writeCatalogError(w, r, err)
		return
	}
	outcome := s.metrics.RecordLookup(confidence, s.lowConfidence)
	writeJSON(w, http.StatusOK, MatchResponse{
		Query:         q,
		Item:          it,
		Confidence:    roundConfidence(confidence),
		LowConfidence: outcome == metrics.LookupLowConfidence,
	})
}

// Order summary
type SummaryRequest struct {
	Items           json.RawMessage `json:"items"`
	LocationProfile string          `json:"location_profile"`
}

type SummaryResponse struct {
	quote.Summary
	Warnings []string `json:"warnings,omitempty"`
}

func (s *Server) handleSummary(w http.ResponseWriter, r *http.Request) {
	var req SummaryRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeErrorJSON(w, http.StatusBadRequest, "invalid_json", "invalid json")
		return
	}
	items, ok := s.normalizeItems(w, req.Items)
	if !ok {
		return
	}
	if len(items) == 0 {
		writeErrorJSON(w, http.StatusBadRequest, "invalid_request", "items required")
		return
	}
	profile, known := rate.ParseProfile(req.LocationProfile)
	sum, err := s.engine.Summarize(items, profile)
	if err != nil {
		s.writeCatalogError(w, r, err)
		return
	}
	resp := SummaryResponse{Summary: sum}
	if !known {
		resp.Warnings = append(resp.Warnings, unknownProfileWarning(req.LocationProfile))
	}
	resp.Warnings = append(resp.Warnings, s.reviewMatches(r, sum.Items)...)
	writeJSON(w, http.StatusOK, resp)
}

// Quotes
type QuoteRequest struct {
	Items     json.RawMessage `json:"items"`
	WeightLbs *float64        `json:"weight_lbs" validate:"omitempty,gte=0"`
	quote.Params
}

type QuoteResponse struct {
	Quote    quote.Quote            `json:"quote"`
	Items    []catalog.ResolvedLine `json:"items,omitempty"`
	Warnings []string               `json:"warnings,omitempty"`
}

func (s *Server) handleQuote(w http.ResponseWriter, r *http.Request) {
	var req QuoteRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeErrorJSON(w, http.StatusBadRequest, "invalid_json", "invalid json")
		return
	}
	items, ok := s.normalizeItems(w, req.Items)
	if !ok {
		return
	}
	if err := s.validate.Struct(req); err != nil {
		writeErrorJSON(w, http.StatusBadRequest, "validation_failed", validationMessage(err))
		return
	}
	if len(items) == 0 && req.WeightLbs == nil {
		writeErrorJSON(w, http.StatusBadRequest, "invalid_request", "items or weight_lbs required")
		return
	}

	est, known, err := s.engine.Price(items, req.WeightLbs, req.Params)
	if err != nil {
		s.writeCatalogError(w, r, err)
		return
	}
	resp := QuoteResponse{Quote: est.Quote, Items: est.Items}
	if !known {
		resp.Warnings = append(resp.Warnings, unknownProfileWarning(req.LocationProfile))
	}
	resp.Warnings = append(resp.Warnings, s.reviewMatches(r, resp.Items)...)

	s.metrics.RecordQuote(resp.Quote.Tier)
	s.log.Info("quote computed",
		zap.String("request_id", requestID(r.Context())),
		zap.Float64("weight_lbs", resp.Quote.WeightLbs),
		zap.String("tier", resp.Quote.Tier),
		zap.Int("movers", resp.Quote.Movers),
		zap.Float64("total_hours", resp.Quote.TotalHours),
		zap.Float64("subtotal", resp.Quote.Subtotal),
	)
	writeJSON(w, http.StatusOK, resp)
}

// Orders
func (s *Server) handleCreateOrder(w http.ResponseWriter, r *http.Request) {
	if s.orders == nil {
		writeErrorJSON(w, http.StatusServiceUnavailable, "db_unavailable", "order storage not configured")
		return
	}
	var note orders.Note
	if err := decodeJSON(w, r, &note); err != nil {
		writeErrorJSON(w, http.StatusBadRequest, "invalid_json", "invalid json")
		return
	}
	if err := s.validate.Struct(note); err != nil {
		writeErrorJSON(w, http.StatusBadRequest, "validation_failed", validationMessage(err))
		return
	}
	o, err := s.orders.Create(r.Context(), note)
	if err != nil {
		s.log.Error("create order failed", zap.String("request_id", requestID(r.Context())), zap.Error(err))
		writeErrorJSON(w, http.StatusInternalServerError, "db_error", "failed to create order")
		return
	}
	s.log.Info("order created", zap.String("request_id", requestID(r.Context())), zap.String("order_ref", o.Ref))
	writeJSON(w, http.StatusCreated, o)
}

func (s *Server) handleGetOrder(w http.ResponseWriter, r *http.Request) {
	ref := chi.URLParam(r, "ref")
	if strings.TrimSpace(ref) == "" {
		writeErrorJSON(w, http.StatusBadRequest, "invalid_request", "ref required")
		return
	}
	if s.orders == nil {
		writeErrorJSON(w, http.StatusServiceUnavailable, "db_unavailable", "order storage not configured")
		return
	}
	o, err := s.orders.GetByRef(r.Context(), ref)
	if err != nil {
		if errors.Is(err, orders.ErrNotFound) {
			writeErrorJSON(w, http.StatusNotFound, "resource_not_found", "order not found")
			return
		}
		s.log.Error("get order failed", zap.String("request_id", requestID(r.Context())), zap.Error(err))
		writeErrorJSON(w, http.StatusInternalServerError, "db_error", "db error")
		return
	}
	writeJSON(w, http.StatusOK, o)
}

func (s *Server) normalizeItems(w http.ResponseWriter, raw json.RawMessage) (catalog.Order, bool) {
	items, err := s.normalizer.Normalize(raw)
	if err != nil {
		writeErrorJSON(w, http.StatusBadRequest, "invalid_request", "items: "+err.Error())
		return nil, false
	}
	if err := s.validate.Struct(orderLines{Lines: items}); err != nil {
		writeErrorJSON(w, http.StatusBadRequest, "validation_failed", validationMessage(err))
		return nil, false
	}
	return items, true
}

type orderLines struct {
	Lines catalog.Order `json:"items" validate:"dive"`
}

// reviewMatches counts each resolution and returns a warning per line whose
// match is too weak to trust without asking the customer.
func (s *Server) reviewMatches(r *http.Request, lines []catalog.ResolvedLine) []string {
	var warnings []string
	for _, l := range lines {
		if s.metrics.RecordLookup(l.RawConfidence, s.lowConfidence) != metrics.LookupLowConfidence {
			continue
		}
		s.log.Warn("low confidence item match",
			zap.String("request_id", requestID(r.Context())),
			zap.String("requested", logger.Truncate(l.Requested, 80)),
			zap.String("matched", l.MatchedName),
			zap.Float64("confidence", l.Confidence),
		)
		warnings = append(warnings, fmt.Sprintf("%q matched %q with low confidence %.3f", l.Requested, l.MatchedName, l.Confidence))
	}
	return warnings
}

func (s *Server) writeCatalogError(w http.ResponseWriter, r *http.Request, err error) {
	s.log.Error("catalog lookup failed", zap.String("request_id", requestID(r.Context())), zap.Error(err))
	if errors.Is(err, catalog.ErrCatalogEmpty) {
		writeErrorJSON(w, http.StatusServiceUnavailable, "catalog_unavailable", "catalog unavailable")
		return
	}
	writeErrorJSON(w, http.StatusInternalServerError, "catalog_unavailable", "catalog error")
}

func unknownProfileWarning(name string) string {
	return fmt.Sprintf("unknown location profile %q; using the %s rate", name, rate.MultiFloor)
}

func roundConfidence(c float64) float64 {
	return math.Round(c*1000) / 1000
}

func decodeJSON(w http.ResponseWriter, r *http.Request, v any) error {
	return json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(v)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// writeErrorJSON writes a standardized JSON error response:
// {"error": {"code": string, "message": string}}
func writeErrorJSON(w http.ResponseWriter, status int, code string, message string) {
	writeJSON(w, status, map[string]any{
		"error": map[string]string{
			"code":    code,
			"message": message,
		},
	})
}

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name, _, _ := strings.Cut(fld.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// validationMessage flattens validator errors into "field failed tag" pairs.
func validationMessage(err error) string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err.Error()
	}
	parts := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		parts = append(parts, fmt.Sprintf("%s failed %s", fe.Field(), fe.Tag()))
	}
	return strings.Join(parts, "; ")
}

type ctxKey struct{}

// requestIDMiddleware ensures X-Request-ID is set on the response.
// If provided in the request header, it is propagated; otherwise a UUID is generated.
func requestIDMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		rid := strings.TrimSpace(r.Header.Get("X-Request-ID"))
		if rid == "" {
			rid = uuid.New().String()
		}
		w.Header().Set("X-Request-ID", rid)
		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), ctxKey{}, rid)))
	})
}

func requestID(ctx context.Context) string {
	rid, _ := ctx.Value(ctxKey{}).(string)
	return rid
}

func (s *Server) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)
		s.log.Info("request",
			zap.String("request_id", requestID(r.Context())),
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Int("status", ww.Status()),
			zap.Int("bytes", ww.BytesWritten()),
			zap.Duration("duration", time.Since(start)),
		)
	})
}
