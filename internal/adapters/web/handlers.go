package web

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"
	"time"

	"supplies-agent/internal/app"
	"supplies-agent/internal/core"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"
)

// Handler exposes the workflow and the read-side of the ledger over HTTP.
type Handler struct {
	workflow  app.WorkflowService
	ledger    core.LedgerService
	reporting core.ReportingService
	history   core.QuoteHistoryService
}

// NewHandler creates and wires the chi router with all routes.
func NewHandler(workflow app.WorkflowService, ledger core.LedgerService,
	reporting core.ReportingService, history core.QuoteHistoryService,
	allowedOrigins string, log zerolog.Logger) http.Handler {

	h := &Handler{workflow: workflow, ledger: ledger, reporting: reporting, history: history}

	r := chi.NewRouter()
	r.Use(RequestID)
	r.Use(Logger(log))
	r.Use(Recoverer(log))
	r.Use(CORS(allowedOrigins))
	r.Use(RequestBodyLimit(1 << 20)) // 1 MB

	r.Get("/api/health", h.health)
	r.Post("/api/requests", h.handleRequest)
	r.Get("/api/report", h.report)
	r.Get("/api/inventory", h.inventory)
	r.Get("/api/cash", h.cash)
	r.Get("/api/quotes/search", h.searchQuotes)
	r.Get("/api/transactions", h.transactions)

	return r
}

func (h *Handler) health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, map[string]string{"status": "ok"})
}

type workflowRequest struct {
	Text string `json:"text"`
	Date string `json:"date"`
}

type workflowResponse struct {
	Response  string `json:"response"`
	RequestID string `json:"request_id,omitempty"`
}

// handleRequest drives one full orchestration run. The workflow never errors;
// it always produces a customer-facing string.
func (h *Handler) handleRequest(w http.ResponseWriter, r *http.Request) {
	var req workflowRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, r, "invalid JSON body", "BAD_REQUEST", http.StatusBadRequest)
		return
	}
	if strings.TrimSpace(req.Text) == "" {
		writeError(w, r, "text is required", "BAD_REQUEST", http.StatusBadRequest)
		return
	}
	if req.Date == "" {
		req.Date = time.Now().Format("2006-01-02")
	}

	response := h.workflow.Handle(r.Context(), req.Text, req.Date)
	writeJSON(w, workflowResponse{
		Response:  response,
		RequestID: requestIDFromContext(r.Context()),
	})
}

func (h *Handler) report(w http.ResponseWriter, r *http.Request) {
	asOf, ok := h.asOfDate(w, r)
	if !ok {
		return
	}
	report, err := h.reporting.Report(r.Context(), asOf)
	if err != nil {
		writeError(w, r, err.Error(), "INTERNAL_ERROR", http.StatusInternalServerError)
		return
	}
	writeJSON(w, report)
}

func (h *Handler) inventory(w http.ResponseWriter, r *http.Request) {
	asOf, ok := h.asOfDate(w, r)
	if !ok {
		return
	}
	stock, err := h.ledger.AllStockAsOf(r.Context(), asOf)
	if err != nil {
		writeError(w, r, err.Error(), "INTERNAL_ERROR", http.StatusInternalServerError)
		return
	}
	writeJSON(w, map[string]any{"as_of_date": asOf.Format("2006-01-02"), "stock": stock})
}

func (h *Handler) cash(w http.ResponseWriter, r *http.Request) {
	asOf, ok := h.asOfDate(w, r)
	if !ok {
		return
	}
	cash, err := h.ledger.CashAsOf(r.Context(), asOf)
	if err != nil {
		writeError(w, r, err.Error(), "INTERNAL_ERROR", http.StatusInternalServerError)
		return
	}
	writeJSON(w, map[string]any{"as_of_date": asOf.Format("2006-01-02"), "cash_balance": cash.StringFixed(2)})
}

func (h *Handler) searchQuotes(w http.ResponseWriter, r *http.Request) {
	var keywords []string
	for _, k := range strings.Split(r.URL.Query().Get("keywords"), ",") {
		if k = strings.TrimSpace(k); k != "" {
			keywords = append(keywords, k)
		}
	}
	limit := core.DefaultSearchLimit
	if s := r.URL.Query().Get("limit"); s != "" {
		n, err := strconv.Atoi(s)
		if err != nil || n <= 0 {
			writeError(w, r, "limit must be a positive integer", "BAD_REQUEST", http.StatusBadRequest)
			return
		}
		limit = n
	}

	quotes, err := h.history.Search(r.Context(), keywords, limit)
	if err != nil {
		writeError(w, r, err.Error(), "INTERNAL_ERROR", http.StatusInternalServerError)
		return
	}
	writeJSON(w, map[string]any{"quotes": quotes})
}

func (h *Handler) transactions(w http.ResponseWriter, r *http.Request) {
	limit := 20
	if s := r.URL.Query().Get("limit"); s != "" {
		n, err := strconv.Atoi(s)
		if err != nil || n <= 0 {
			writeError(w, r, "limit must be a positive integer", "BAD_REQUEST", http.StatusBadRequest)
			return
		}
		limit = n
	}

	txs, err := h.ledger.RecentTransactions(r.Context(), limit)
	if err != nil {
		writeError(w, r, err.Error(), "INTERNAL_ERROR", http.StatusInternalServerError)
		return
	}
	writeJSON(w, map[string]any{"transactions": txs})
}

// asOfDate parses the date query parameter, defaulting to today.
func (h *Handler) asOfDate(w http.ResponseWriter, r *http.Request) (time.Time, bool) {
	s := r.URL.Query().Get("date")
	if s == "" {
		return time.Now(), true
	}
	asOf, err := core.ParseDate(s)
	if err != nil {
		writeError(w, r, err.Error(), "BAD_REQUEST", http.StatusBadRequest)
		return time.Time{}, false
	}
	return asOf, true
}
