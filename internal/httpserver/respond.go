package httpserver

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"fundhub/internal/domain"
)

// apiResponse is the uniform envelope every endpoint answers with.
type apiResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
	Data    any    `json:"data,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if v != nil {
		_ = json.NewEncoder(w).Encode(v)
	}
}

func writeData(w http.ResponseWriter, status int, data any) {
	writeJSON(w, status, apiResponse{Success: true, Data: data})
}

func writeMessage(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, apiResponse{Success: true, Message: msg})
}

func writeFail(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, apiResponse{Success: false, Message: msg})
}

// writeError maps domain sentinels onto HTTP statuses. Anything unrecognized
// is an internal error and its detail stays in the server log.
func writeError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, domain.ErrValidation),
		errors.Is(err, domain.ErrAlreadyVerified),
		errors.Is(err, domain.ErrNotVerified),
		errors.Is(err, domain.ErrExpiredOTP),
		errors.Is(err, domain.ErrOTPMismatch),
		errors.Is(err, domain.ErrNoPendingOTP):
		writeFail(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, domain.ErrInvalidCredentials):
		writeFail(w, http.StatusUnauthorized, err.Error())
	case errors.Is(err, domain.ErrNotFound):
		writeFail(w, http.StatusNotFound, err.Error())
	case errors.Is(err, domain.ErrConflict):
		writeFail(w, http.StatusConflict, err.Error())
	case errors.Is(err, domain.ErrDeliveryFailure):
		writeFail(w, http.StatusBadGateway, err.Error())
	default:
		log.Printf("http: internal error: %v", err)
		writeFail(w, http.StatusInternalServerError, "internal server error")
	}
}

func decodeBody(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		writeFail(w, http.StatusBadRequest, "invalid JSON body")
		return false
	}
	return true
}
