// Package handler provides HTTP request handlers.
package handler

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"

	"github.com/getsentry/sentry-go"

	"github.com/evansachie/lifeguard/internal/handler/dto"
	"github.com/evansachie/lifeguard/internal/middleware"
	"github.com/evansachie/lifeguard/internal/service"
)

// APIVersion is reported by the root endpoint.
const APIVersion = "1.0.0"

// Handler serves the operational root endpoints.
type Handler struct{}

// New creates a new Handler instance.
func New() *Handler {
	return &Handler{}
}

// Root reports that the API is up.
// GET /
func (h *Handler) Root(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"message": "LifeGuard API is running!",
		"version": APIVersion,
	})
}

// NotFound handles 404 responses.
func (h *Handler) NotFound(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusNotFound, map[string]string{
		"error": "resource not found",
	})
}

// MethodNotAllowed handles 405 responses.
func (h *Handler) MethodNotAllowed(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusMethodNotAllowed, map[string]string{
		"error": "method not allowed",
	})
}

// writeJSON writes a JSON response with the given status code.
func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

// writeError writes the {error, code} envelope.
func writeError(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, dto.ErrorResponse{
		Error: message,
		Code:  code,
	})
}

// errBadJSON is returned by decodeJSON for unreadable bodies.
var errBadJSON = errors.New("invalid request body")

// decodeJSON decodes the request body into dst. An empty body leaves dst
// untouched.
func decodeJSON(r *http.Request, dst any) error {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil && !errors.Is(err, io.EOF) {
		return errBadJSON
	}
	return nil
}

// responder carries what every domain handler needs to answer errors.
type responder struct {
	logger    *slog.Logger
	validator *Validator
}

func newResponder(logger *slog.Logger, v *Validator) responder {
	if logger == nil {
		logger = slog.Default()
	}
	if v == nil {
		v = NewValidator()
	}
	return responder{logger: logger, validator: v}
}

// bind decodes and validates a request body. It writes the 400 response
// itself and reports false when the request must stop.
func (h responder) bind(w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := decodeJSON(r, dst); err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_JSON", "Invalid request body")
		return false
	}
	if msg := h.validator.Validate(dst); msg != "" {
		writeError(w, http.StatusBadRequest, "VALIDATION_FAILED", msg)
		return false
	}
	return true
}

// handleServiceError maps service errors to responses. Unknown errors are
// answered with fallback as a 500.
func (h responder) handleServiceError(w http.ResponseWriter, r *http.Request, err error, fallback string) {
	switch {
	case errors.Is(err, service.ErrInvalidInput):
		writeError(w, http.StatusBadRequest, "INVALID_INPUT", "Invalid input values")
	case errors.Is(err, service.ErrMissingFields):
		writeError(w, http.StatusBadRequest, "MISSING_FIELDS", "Missing required fields")
	case errors.Is(err, service.ErrInvalidVerification):
		writeError(w, http.StatusBadRequest, "INVALID_TOKEN", "Invalid verification token")
	case errors.Is(err, service.ErrInvalidAcknowledgement):
		writeError(w, http.StatusBadRequest, "INVALID_SIGNATURE", "Invalid acknowledgement link")
	case errors.Is(err, service.ErrNoEmail):
		writeError(w, http.StatusBadRequest, "NO_EMAIL", "No email address found for this account")
	case errors.Is(err, service.ErrInvalidMeasurementUnit):
		writeError(w, http.StatusBadRequest, "INVALID_MEASUREMENT_UNIT", "Measurement unit must be Metric or Imperial")
	case errors.Is(err, service.ErrInvalidDayEndTime):
		writeError(w, http.StatusBadRequest, "INVALID_DAY_END_TIME", "Day end time must be HH:MM or HH:MM:SS")
	case errors.Is(err, service.ErrInvalidLeadTime):
		writeError(w, http.StatusBadRequest, "INVALID_LEAD_TIME", "Reminder lead time must be between 0 and 1440 minutes")
	case errors.Is(err, service.ErrInvalidDoseTime):
		writeError(w, http.StatusBadRequest, "INVALID_TIME", "Medication times must use HH:MM")
	case errors.Is(err, service.ErrNoVitals):
		writeError(w, http.StatusBadRequest, "NO_VITALS", "At least one vital sign is required")
	case errors.Is(err, service.ErrForbidden):
		writeError(w, http.StatusForbidden, "FORBIDDEN", "Unauthorized access")
	case errors.Is(err, service.ErrMemoNotFound):
		writeError(w, http.StatusNotFound, "MEMO_NOT_FOUND", "Memo not found")
	case errors.Is(err, service.ErrContactNotFound):
		writeError(w, http.StatusNotFound, "CONTACT_NOT_FOUND", "Contact not found")
	case errors.Is(err, service.ErrAlertNotFound):
		writeError(w, http.StatusNotFound, "ALERT_NOT_FOUND", "Alert not found")
	case errors.Is(err, service.ErrFavoriteNotFound):
		writeError(w, http.StatusNotFound, "FAVORITE_NOT_FOUND", "Favorite not found")
	case errors.Is(err, service.ErrMedicationNotFound):
		writeError(w, http.StatusNotFound, "MEDICATION_NOT_FOUND", "Medication not found")
	default:
		h.internalError(w, r, err, fallback)
	}
}

// internalError logs err, reports it to Sentry and answers 500.
func (h responder) internalError(w http.ResponseWriter, r *http.Request, err error, message string) {
	if message == "" {
		message = "Internal server error"
	}
	h.logger.Error("internal_error",
		slog.String("error", err.Error()),
		slog.String("endpoint", r.Method+" "+r.URL.Path),
		slog.String("request_id", middleware.GetRequestID(r.Context())),
	)

	hub := sentry.GetHubFromContext(r.Context())
	if hub == nil {
		hub = sentry.CurrentHub()
	}
	hub.CaptureException(err)

	writeError(w, http.StatusInternalServerError, "INTERNAL_ERROR", message)
}
