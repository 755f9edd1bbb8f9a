package response

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/mrops-br/product-catalog-api/internal/domain"
)

// ErrorResponse represents an error response
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
	Field   string `json:"field,omitempty"`
}

// JSON sends a JSON response
func JSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

// Error sends an error response
func Error(w http.ResponseWriter, status int, err error) {
	errorType := "error"
	switch status {
	case http.StatusNotFound:
		errorType = "not_found"
	case http.StatusBadRequest:
		errorType = "bad_request"
	case http.StatusConflict:
		errorType = "conflict"
	case http.StatusTooManyRequests:
		errorType = "too_many_requests"
	case http.StatusInternalServerError:
		errorType = "internal_server_error"
	}

	body := ErrorResponse{
		Error:   errorType,
		Message: err.Error(),
	}

	var verr *domain.ValidationError
	if errors.As(err, &verr) {
		body.Field = verr.Field
	}

	JSON(w, status, body)
}

// StatusFor maps a domain error to its HTTP status
func StatusFor(err error) int {
	var verr *domain.ValidationError
	switch {
	case errors.As(err, &verr):
		return http.StatusBadRequest
	case errors.Is(err, domain.ErrDuplicateID):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}
