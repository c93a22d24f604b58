package httpapi

import (
	"encoding/json"
	"net/http"
)

type errorBody struct {
	Message string `json:"message"`
}

// JSON writes data with status.
func JSON(w http.ResponseWriter, status int, data any) error {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	return json.NewEncoder(w).Encode(data)
}

// Error writes {"message": message} with status.
func Error(w http.ResponseWriter, status int, message string) error {
	return JSON(w, status, errorBody{Message: message})
}
