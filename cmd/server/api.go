package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/Simplici0/printledger/internal/apperr"
	"github.com/Simplici0/printledger/internal/auth"
	"github.com/Simplici0/printledger/internal/catalog"
	"github.com/Simplici0/printledger/internal/engine"
	"github.com/Simplici0/printledger/internal/settings"
)

type server struct {
	engine *engine.Engine
	auth   *auth.Service
	logger *slog.Logger
}

type errorBody struct {
	Error errorDetail `json:"error"`
}

type errorDetail struct {
	Kind    string `json:"kind"`
	Message string `json:"message"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type saleRequest struct {
	ProductID int64 `json:"product_id"`
	Quantity  *int  `json:"quantity,omitempty"`
}

func newRouter(s *server) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(s.requestLogger)
	r.Use(middleware.Recoverer)
	if s.auth != nil {
		r.Use(s.auth.Middleware("/login", "/healthz"))
	}

	r.Get("/healthz", s.handleHealth)
	r.Post("/login", s.handleLogin)
	r.Post("/logout", s.handleLogout)

	r.Get("/settings", s.handleGetSettings)
	r.Patch("/settings", s.handleUpdateSettings)

	r.Get("/products", s.handleListProducts)
	r.Post("/products", s.handleCreateProduct)
	r.Get("/products/{id}", s.handleGetProduct)

	r.Get("/sales", s.handleListSales)
	r.Post("/sales", s.handleRecordSale)
	r.Get("/sales/{id}", s.handleGetSale)

	r.Route("/reports", func(r chi.Router) {
		r.Get("/summary", s.handleSummary)
		r.Get("/sales-by-product", s.handleSalesByProduct)
		r.Get("/cumulative-revenue", s.handleCumulativeRevenue)
		r.Get("/costs", s.handleCosts)
		r.Get("/products", s.handleProductSummary)
	})

	return r
}

func (s *server) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		s.logger.Info("http request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"duration", time.Since(start),
			"request_id", middleware.GetReqID(r.Context()),
		)
	})
}

func (s *server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, r, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *server) handleLogin(w http.ResponseWriter, r *http.Request) {
	if s.auth == nil {
		s.writeJSON(w, r, http.StatusNotFound, errorBody{Error: errorDetail{Kind: string(apperr.NotFound), Message: "login is disabled"}})
		return
	}

	var req loginRequest
	if err := decodeJSON(r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}

	valid, err := s.auth.ValidateCredentials(r.Context(), req.Email, req.Password)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if !valid {
		s.writeJSON(w, r, http.StatusUnauthorized, errorBody{Error: errorDetail{Kind: "UNAUTHORIZED", Message: "invalid credentials"}})
		return
	}

	s.auth.SetSessionCookie(w, req.Email)
	w.WriteHeader(http.StatusNoContent)
}

func (s *server) handleLogout(w http.ResponseWriter, r *http.Request) {
	if s.auth != nil {
		s.auth.ClearSessionCookie(w)
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *server) handleGetSettings(w http.ResponseWriter, r *http.Request) {
	current, err := s.engine.GetSettings(r.Context())
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, r, http.StatusOK, current)
}

func (s *server) handleUpdateSettings(w http.ResponseWriter, r *http.Request) {
	var u settings.Update
	if err := decodeJSON(r, &u); err != nil {
		s.writeError(w, r, err)
		return
	}

	updated, err := s.engine.UpdateSettings(r.Context(), u)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, r, http.StatusOK, updated)
}

func (s *server) handleListProducts(w http.ResponseWriter, r *http.Request) {
	products, err := s.engine.ListProducts(r.Context())
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, r, http.StatusOK, products)
}

func (s *server) handleCreateProduct(w http.ResponseWriter, r *http.Request) {
	var p catalog.NewProduct
	if err := decodeJSON(r, &p); err != nil {
		s.writeError(w, r, err)
		return
	}

	id, err := s.engine.AddProduct(r.Context(), p)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	created, err := s.engine.GetProduct(r.Context(), id)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	w.Header().Set("Location", fmt.Sprintf("/products/%d", id))
	s.writeJSON(w, r, http.StatusCreated, created)
}

func (s *server) handleGetProduct(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	product, err := s.engine.GetProduct(r.Context(), id)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, r, http.StatusOK, product)
}

func (s *server) handleListSales(w http.ResponseWriter, r *http.Request) {
	limit, err := parseLimit(r.URL.Query().Get("limit"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	sales, err := s.engine.ListSales(r.Context())
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if limit > 0 && len(sales) > limit {
		sales = sales[:limit]
	}
	s.writeJSON(w, r, http.StatusOK, sales)
}

func (s *server) handleRecordSale(w http.ResponseWriter, r *http.Request) {
	var req saleRequest
	if err := decodeJSON(r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}

	quantity := 1
	if req.Quantity != nil {
		quantity = *req.Quantity
	}

	id, err := s.engine.RecordSale(r.Context(), req.ProductID, quantity)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	sale, err := s.engine.GetSale(r.Context(), id)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	w.Header().Set("Location", fmt.Sprintf("/sales/%d", id))
	s.writeJSON(w, r, http.StatusCreated, sale)
}

func (s *server) handleGetSale(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	sale, err := s.engine.GetSale(r.Context(), id)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, r, http.StatusOK, sale)
}

func (s *server) handleSummary(w http.ResponseWriter, r *http.Request) {
	summary, err := s.engine.FinancialSummary(r.Context())
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, r, http.StatusOK, summary)
}

func (s *server) handleSalesByProduct(w http.ResponseWriter, r *http.Request) {
	byProduct, err := s.engine.SalesByProduct(r.Context())
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, r, http.StatusOK, byProduct)
}

func (s *server) handleCumulativeRevenue(w http.ResponseWriter, r *http.Request) {
	series, err := s.engine.CumulativeRevenueByDate(r.Context())
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, r, http.StatusOK, series)
}

func (s *server) handleCosts(w http.ResponseWriter, r *http.Request) {
	costs, err := s.engine.CostBreakdown(r.Context())
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, r, http.StatusOK, costs)
}

func (s *server) handleProductSummary(w http.ResponseWriter, r *http.Request) {
	products, err := s.engine.ProductSummary(r.Context())
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, r, http.StatusOK, products)
}

func parseID(r *http.Request) (int64, error) {
	raw := chi.URLParam(r, "id")
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, apperr.Invalid("invalid id %q", raw)
	}
	return id, nil
}

func parseLimit(raw string) (int, error) {
	if raw == "" {
		return 0, nil
	}
	limit, err := strconv.Atoi(raw)
	if err != nil || limit < 0 {
		return 0, apperr.Invalid("limit must be a non-negative integer")
	}
	return limit, nil
}

// decodeJSON reads exactly one JSON value with no unknown fields.
func decodeJSON(r *http.Request, dst any) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		if errors.Is(err, io.EOF) {
			return apperr.Invalid("request body is empty")
		}
		return apperr.Invalid("invalid JSON body: %v", err)
	}
	var extra json.RawMessage
	if err := dec.Decode(&extra); !errors.Is(err, io.EOF) {
		return apperr.Invalid("request body must contain a single JSON value")
	}
	return nil
}

// writeJSON encodes v before writing the status, so an encoding failure is
// logged and answered with 500 instead of an empty success response.
func (s *server) writeJSON(w http.ResponseWriter, r *http.Request, status int, v any) {
	body, err := json.Marshal(v)
	if err != nil {
		s.logger.Error("encode response",
			"method", r.Method,
			"path", r.URL.Path,
			"request_id", middleware.GetReqID(r.Context()),
			"error", err,
		)
		status = http.StatusInternalServerError
		body, _ = json.Marshal(errorBody{Error: errorDetail{Kind: "INTERNAL", Message: "internal error"}})
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if _, err := w.Write(append(body, '\n')); err != nil {
		s.logger.Debug("write response", "path", r.URL.Path, "error", err)
	}
}

func statusFor(kind apperr.Kind) int {
	switch kind {
	case apperr.InvalidParameter:
		return http.StatusBadRequest
	case apperr.NotFound:
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

func (s *server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	kind := apperr.KindOf(err)
	status := statusFor(kind)

	message := err.Error()
	if kind == "" {
		kind = "INTERNAL"
		message = "internal error"
	}
	if status >= http.StatusInternalServerError {
		s.logger.Error("request failed",
			"path", r.URL.Path,
			"request_id", middleware.GetReqID(r.Context()),
			"error", err,
		)
	}

	s.writeJSON(w, r, status, errorBody{Error: errorDetail{Kind: string(kind), Message: message}})
}
