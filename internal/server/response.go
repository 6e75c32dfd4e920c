package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"stockdash/internal/chart"
	"stockdash/internal/dashboard"
)

// Error types reported in ErrorResponse.Type.
const (
	errTypeInput    = "input"
	errTypeProvider = "provider"
	errTypeInternal = "internal"
)

type ErrorResponse struct {
	Type    string `json:"type"`
	Message string `json:"message"`
}

func NewErrorResponse(errType, msg string) *ErrorResponse {
	return &ErrorResponse{Type: errType, Message: msg}
}

type ProfileResponse struct {
	Description string `json:"description"`
	LogoURL     string `json:"logo_url"`
	Name        string `json:"name"`
	Message     string `json:"message"`
}

// ChartResponse carries one chart slot. A null chart clears the slot.
type ChartResponse struct {
	Chart *chart.Spec `json:"chart"`
}

type HealthResponse struct {
	Status   string `json:"status"`
	Provider string `json:"provider"`
}

func newProfileResponse(out dashboard.ProfileOutput) *ProfileResponse {
	return &ProfileResponse{
		Description: out.Description,
		LogoURL:     out.LogoURL,
		Name:        out.Name,
		Message:     out.Message,
	}
}

func setResponse(response interface{}, w http.ResponseWriter) error {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)

	if err := json.NewEncoder(w).Encode(response); err != nil {
		return fmt.Errorf("setResponse: encode: %w", err)
	}

	return nil
}

func setErrorResponse(errType string, statusCode int, err error, w http.ResponseWriter) error {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)

	resp := NewErrorResponse(errType, err.Error())
	if encodeErr := json.NewEncoder(w).Encode(resp); encodeErr != nil {
		return encodeErr
	}

	return nil
}

// classify maps a handler error to its response type and status code.
func classify(err error) (string, int) {
	if dashboard.IsInputError(err) || errors.Is(err, errBadForm) {
		return errTypeInput, http.StatusBadRequest
	}
	return errTypeProvider, http.StatusBadGateway
}
