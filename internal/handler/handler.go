package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/hdmotors/dealer-service/internal/amort"
	"github.com/hdmotors/dealer-service/internal/integrations/capture"
	"github.com/hdmotors/dealer-service/internal/models"
	"github.com/hdmotors/dealer-service/internal/service"
)

// Handler exposes the dashboard API over HTTP.
type Handler struct {
	svc *service.Service
	log *logrus.Logger
}

// NewHandler creates a handler around the service layer.
func NewHandler(svc *service.Service, log *logrus.Logger) *Handler {
	return &Handler{svc: svc, log: log}
}

// errorBody matches the error shape the dashboard surfaces verbatim.
type errorBody struct {
	Message string `json:"message"`
	Hint    string `json:"hint,omitempty"`
}

func (h *Handler) respondJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		h.log.Errorf("Failed to encode response: %v", err)
	}
}

func (h *Handler) respondError(w http.ResponseWriter, status int, message, hint string) {
	h.respondJSON(w, status, errorBody{Message: message, Hint: hint})
}

// Register handles user registration
func (h *Handler) Register(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Username string `json:"username"`
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.respondError(w, http.StatusBadRequest, "invalid request body", "")
		return
	}
	if req.Email == "" || req.Password == "" {
		h.respondError(w, http.StatusBadRequest, "email and password are required", "")
		return
	}

	user, err := h.svc.Register(req.Username, req.Email, req.Password)
	if err != nil {
		h.respondError(w, http.StatusInternalServerError, "failed to register user", "")
		return
	}
	h.respondJSON(w, http.StatusCreated, user)
}

// Login handles user authentication
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.respondError(w, http.StatusBadRequest, "invalid request body", "")
		return
	}

	token, err := h.svc.Login(req.Email, req.Password)
	if err != nil {
		h.respondError(w, http.StatusUnauthorized, "invalid credentials", "")
		return
	}
	h.respondJSON(w, http.StatusOK, map[string]string{"token": token})
}

// CollectionsWeekly serves the per-year weekly chart series.
func (h *Handler) CollectionsWeekly(w http.ResponseWriter, r *http.Request) {
	charts, err := h.svc.CollectionsWeekly()
	if err != nil {
		h.log.Errorf("Failed to aggregate weekly series: %v", err)
		h.respondError(w, http.StatusBadGateway, "failed to load collections data", "")
		return
	}
	h.respondJSON(w, http.StatusOK, charts)
}

// CollectionsSummary serves today's dashboard header metrics.
func (h *Handler) CollectionsSummary(w http.ResponseWriter, r *http.Request) {
	summary, err := h.svc.CollectionsSummary()
	if err != nil {
		h.log.Errorf("Failed to compute summary: %v", err)
		h.respondError(w, http.StatusBadGateway, "failed to load collections data", "")
		return
	}
	h.respondJSON(w, http.StatusOK, summary)
}

// dailyLogRequest is the explicit "log daily data" write.
type dailyLogRequest struct {
	Date            string   `json:"date"`
	Payments        float64  `json:"payments"`
	LateFees        float64  `json:"late_fees"`
	BOAPortion      float64  `json:"boa_portion"`
	OpenAccounts    *float64 `json:"open_accounts,omitempty"`
	OverdueAccounts *float64 `json:"overdue_accounts,omitempty"`
}

// LogDaily upserts one day's logged figures, keyed by date.
func (h *Handler) LogDaily(w http.ResponseWriter, r *http.Request) {
	var req dailyLogRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.respondError(w, http.StatusBadRequest, "invalid request body", "")
		return
	}
	day, err := time.Parse("2006-01-02", req.Date)
	if err != nil {
		h.respondError(w, http.StatusBadRequest, "invalid date", "expected YYYY-MM-DD")
		return
	}

	rec := models.DailyRecord{Date: day, Payments: req.Payments, LateFees: req.LateFees, BOAPortion: req.BOAPortion}
	var del *models.DelinquencyRecord
	if req.OpenAccounts != nil || req.OverdueAccounts != nil {
		del = &models.DelinquencyRecord{Date: day}
		if req.OpenAccounts != nil {
			del.OpenAccounts = *req.OpenAccounts
		}
		if req.OverdueAccounts != nil {
			del.OverdueAccounts = *req.OverdueAccounts
		}
	}

	if err := h.svc.LogDaily(rec, del); err != nil {
		h.log.Errorf("Failed to log daily data: %v", err)
		h.respondError(w, http.StatusBadGateway, "failed to save daily log", "")
		return
	}
	h.respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// Quote solves a deal-desk amortization quote.
func (h *Handler) Quote(w http.ResponseWriter, r *http.Request) {
	var req service.QuoteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.respondError(w, http.StatusBadRequest, "invalid request body", "")
		return
	}

	resp, err := h.svc.Quote(req)
	if err != nil {
		switch {
		case errors.Is(err, amort.ErrPaymentTooSmall):
			h.respondError(w, http.StatusUnprocessableEntity, "payment too small to amortize the balance",
				"raise the payment or extend the term")
		case errors.Is(err, amort.ErrNoPayment):
			h.respondError(w, http.StatusUnprocessableEntity, "no payment amortizes the balance over the requested term", "")
		default:
			h.respondError(w, http.StatusBadRequest, err.Error(), "")
		}
		return
	}
	h.respondJSON(w, http.StatusOK, resp)
}

// ReportDigest serves today's digest, both structured and as shareable text.
func (h *Handler) ReportDigest(w http.ResponseWriter, r *http.Request) {
	digest, err := h.svc.DailyDigest()
	if err != nil {
		h.log.Errorf("Failed to build digest: %v", err)
		h.respondError(w, http.StatusBadGateway, "failed to build report digest", "")
		return
	}
	h.respondJSON(w, http.StatusOK, map[string]any{
		"digest": digest,
		"text":   digest.Text(),
	})
}

// CollectionsCSV streams the weekly series as a CSV download.
func (h *Handler) CollectionsCSV(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition", `attachment; filename="collections.csv"`)
	if err := h.svc.WriteCollectionsCSV(w); err != nil {
		// Headers are out; all we can do is log.
		h.log.Errorf("Failed to stream collections CSV: %v", err)
	}
}

// ExportSalesReport returns the captured sales report, or the local fallback
// render when the capture service is down.
func (h *Handler) ExportSalesReport(w http.ResponseWriter, r *http.Request) {
	contentType, data, err := h.svc.ExportSalesReport(r.Context())
	if err != nil {
		h.remoteError(w, err)
		return
	}
	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Disposition", `attachment; filename="sales-report.pdf"`)
	w.Write(data)
}

// Screenshot proxies a capture of the named report.
func (h *Handler) Screenshot(w http.ResponseWriter, r *http.Request) {
	var req struct {
		ReportType string `json:"reportType"`
		Format     string `json:"format,omitempty"` // "pdf" wraps a PNG capture in a document
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.ReportType == "" {
		h.respondError(w, http.StatusBadRequest, "reportType is required", "")
		return
	}

	contentType, data, err := h.svc.Screenshot(r.Context(), req.ReportType, req.Format == "pdf")
	if err != nil {
		h.remoteError(w, err)
		return
	}
	w.Header().Set("Content-Type", contentType)
	w.Write(data)
}

// remoteError surfaces a capture-service failure, passing its message and
// hint through verbatim.
func (h *Handler) remoteError(w http.ResponseWriter, err error) {
	h.log.Errorf("Capture failed: %v", err)
	var remote *capture.RemoteError
	if errors.As(err, &remote) {
		h.respondError(w, http.StatusBadGateway, remote.Message, remote.Hint)
		return
	}
	h.respondError(w, http.StatusBadGateway, "report capture failed", "")
}
