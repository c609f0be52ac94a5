package http

import (
	"encoding/json"
	"net/http"
)

type errorBody struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, statusCode int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeSuccess(w http.ResponseWriter, statusCode int, data any, message string) {
	writeJSON(w, statusCode, map[string]any{
		"success": true,
		"data":    data,
		"message": message,
	})
}

func writeMessage(w http.ResponseWriter, statusCode int, message string) {
	writeJSON(w, statusCode, map[string]any{
		"success": true,
		"message": message,
	})
}

func writeError(w http.ResponseWriter, statusCode int, code, message string) {
	writeJSON(w, statusCode, map[string]any{
		"success": false,
		"error":   errorBody{Code: code, Message: message},
	})
}

// writeRejection carries the partial signals gathered before the failing step
// so support can diagnose the refusal.
func writeRejection(w http.ResponseWriter, code, message string, signals any) {
	body := map[string]any{
		"success": false,
		"error":   errorBody{Code: code, Message: message},
	}
	if signals != nil {
		body["data"] = signals
	}
	writeJSON(w, http.StatusBadRequest, body)
}
