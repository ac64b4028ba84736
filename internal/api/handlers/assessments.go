package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"vendorguard/internal/domain/models"
	"vendorguard/internal/domain/services"
	"vendorguard/pkg/logger"
)

// AssessmentsHandler handles risk assessment endpoints
type AssessmentsHandler struct {
	service *services.AssessmentService
	logger  *logger.Logger
}

// NewAssessmentsHandler creates a new assessments handler
func NewAssessmentsHandler(service *services.AssessmentService, log *logger.Logger) *AssessmentsHandler {
	return &AssessmentsHandler{
		service: service,
		logger:  log.WithComponent("assessments-handler"),
	}
}

// AssessRequest is the request body for a vendor onboarding assessment
type AssessRequest struct {
	RequestID           string    `json:"request_id,omitempty"`
	VendorName          string    `json:"vendor_name"`
	ContactEmail        string    `json:"contact_email"`
	BusinessDescription string    `json:"business_description"`
	TaxID               string    `json:"tax_id,omitempty"`
	SourceIP            string    `json:"source_ip,omitempty"`
	SubmittedAt         time.Time `json:"submitted_at,omitempty"`
}

// Create handles POST /api/v1/assessments - runs a full risk assessment
func (h *AssessmentsHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req AssessRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.logger.Debug().Err(err).Msg("invalid request body")
		http.Error(w, `{"error":"invalid request body"}`, http.StatusBadRequest)
		return
	}

	sub := &models.Submission{
		ID:                  req.RequestID,
		VendorName:          req.VendorName,
		ContactEmail:        req.ContactEmail,
		BusinessDescription: req.BusinessDescription,
		TaxID:               req.TaxID,
		SourceIP:            req.SourceIP,
		SubmittedAt:         req.SubmittedAt,
	}
	if sub.ID == "" {
		sub.ID = uuid.NewString()
	}
	if sub.SourceIP == "" {
		sub.SourceIP = clientIP(r)
	}

	// Reject malformed submissions before any analyzer runs
	if err := sub.Validate(); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	decision, err := h.service.Assess(r.Context(), sub)
	if err != nil {
		h.logger.Error().Err(err).Str("request_id", sub.ID).Msg("assessment failed")
		writeError(w, http.StatusInternalServerError, "assessment failed")
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(decision)
}

// Get handles GET /api/v1/assessments/{id} - loads a stored decision
func (h *AssessmentsHandler) Get(w http.ResponseWriter, r *http.Request) {
	requestID := chi.URLParam(r, "id")
	if requestID == "" {
		writeError(w, http.StatusBadRequest, "request id is required")
		return
	}

	decision, err := h.service.GetDecision(r.Context(), requestID)
	if err != nil {
		if errors.Is(err, models.ErrDecisionNotFound) {
			writeError(w, http.StatusNotFound, "decision not found")
			return
		}
		h.logger.Warn().Err(err).Str("request_id", requestID).Msg("failed to load decision")
		writeError(w, http.StatusNotFound, "decision not found")
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(decision)
}

// writeError writes a JSON error response
func writeError(w http.ResponseWriter, status int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]string{"error": msg})
}

// clientIP extracts the originating address, honoring proxy headers
func clientIP(r *http.Request) string {
	if ip := r.Header.Get("X-Forwarded-For"); ip != "" {
		return ip
	}
	if ip := r.Header.Get("X-Real-IP"); ip != "" {
		return ip
	}
	return r.RemoteAddr
}
