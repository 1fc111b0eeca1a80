package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"goldloan-engine/internal/api/handler/dto"
	"goldloan-engine/internal/pkg/apperrors"
)

func decodeJSON(r *http.Request, v interface{}) error {
	if r.Body == nil {
		return fmt.Errorf("no request body")
	}
	defer r.Body.Close()
	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	return decoder.Decode(v)
}

func respondJSON(w http.ResponseWriter, status int, payload interface{}) {
	respondEnvelope(w, status, payload, "")
}

func respondEnvelope(w http.ResponseWriter, status int, payload interface{}, message string) {
	data, err := json.Marshal(payload)
	if err != nil {
		slog.Default().Error("Failed to marshal JSON response", "error", err)
		http.Error(w, `{"success":false,"data":null,"message":"INTERNAL_ERROR: encoding failed"}`, http.StatusInternalServerError)
		return
	}

	envelope := dto.Response{
		Success: status < http.StatusBadRequest,
		Data:    data,
		Message: message,
	}
	response, err := json.Marshal(envelope)
	if err != nil {
		slog.Default().Error("Failed to marshal response envelope", "error", err)
		http.Error(w, `{"success":false,"data":null,"message":"INTERNAL_ERROR: encoding failed"}`, http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	w.Write(response)
}

func respondError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	message := "An unexpected error occurred."

	switch {
	case errors.Is(err, apperrors.ErrNotFound):
		status, message = http.StatusNotFound, err.Error()
	case errors.Is(err, apperrors.ErrItemUnavailable):
		status, message = http.StatusConflict, err.Error()
	case errors.Is(err, apperrors.ErrLoanNotActive):
		status, message = http.StatusConflict, err.Error()
	case errors.Is(err, apperrors.ErrInvalidAmount):
		status, message = http.StatusBadRequest, err.Error()
	case errors.Is(err, apperrors.ErrValidation), errors.Is(err, apperrors.ErrInvalidArgument):
		status, message = http.StatusBadRequest, err.Error()
	case errors.Is(err, apperrors.ErrUnauthorized):
		status, message = http.StatusUnauthorized, err.Error()
	case errors.Is(err, apperrors.ErrForbidden):
		status, message = http.StatusForbidden, err.Error()
	case errors.Is(err, apperrors.ErrAlreadyExists), errors.Is(err, apperrors.ErrConflict):
		status, message = http.StatusConflict, err.Error()
	case errors.Is(err, apperrors.ErrDatabase):
		status, message = http.StatusServiceUnavailable, "A transient storage failure occurred, please retry."
	default:
		slog.Default().Error("Unhandled internal error", "error", err)
	}

	respondEnvelope(w, status, nil, fmt.Sprintf("%s: %s", apperrors.Kind(err), message))
}

func getIDParam(r *http.Request, name string) (int64, error) {
	idStr := chi.URLParam(r, name)
	if idStr == "" {
		return 0, fmt.Errorf("%s not found in URL path", name)
	}
	return strconv.ParseInt(idStr, 10, 64)
}

// getAmountQuery parses the ?amount= query parameter the payment endpoints
// take, mirroring a POS terminal posting a till amount.
func getAmountQuery(r *http.Request) (decimal.Decimal, error) {
	raw := r.URL.Query().Get("amount")
	if raw == "" {
		return decimal.Zero, fmt.Errorf("amount query parameter is required")
	}
	amount, err := decimal.NewFromString(raw)
	if err != nil {
		return decimal.Zero, fmt.Errorf("invalid amount %q: %w", raw, err)
	}
	return amount, nil
}
