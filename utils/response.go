package utils

import (
	"encoding/json"
	"net/http"

	"github.com/sethshivam11/project-store-backend/logging"
)

// ApiError is the typed error raised by services. Handlers convert it to the
// standard envelope; anything else becomes a generic 500.
type ApiError struct {
	Status  int
	Message string
}

func (e *ApiError) Error() string {
	return e.Message
}

func NewApiError(status int, message string) *ApiError {
	return &ApiError{Status: status, Message: message}
}

type ApiResponse struct {
	Success bool        `json:"success"`
	Status  int         `json:"status"`
	Data    interface{} `json:"data"`
	Message string      `json:"message"`
}

func RespondWithJSON(w http.ResponseWriter, status int, data interface{}, message string) {
	if data == nil {
		data = map[string]interface{}{}
	}

	response := ApiResponse{
		Success: status < 400,
		Status:  status,
		Data:    data,
		Message: message,
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(response)
}

func RespondWithError(w http.ResponseWriter, err error) {
	apiErr, ok := err.(*ApiError)
	if !ok {
		logging.Logger.Errorf("Event ID: UNHANDLED_ERROR, Description: %v", err)
		apiErr = NewApiError(http.StatusInternalServerError, "Something went wrong")
	}

	RespondWithJSON(w, apiErr.Status, nil, apiErr.Message)
}
