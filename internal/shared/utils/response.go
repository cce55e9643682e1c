package utils

import (
	"encoding/json"
	"net/http"
)

// ErrorResponse is the error envelope used by the action endpoints.
type ErrorResponse struct {
	Success bool   `json:"success"`
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}

func WriteJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func WriteError(w http.ResponseWriter, status int, message string, err error) {
	resp := ErrorResponse{Success: false, Error: message}
	if err != nil {
		resp.Details = err.Error()
	}
	WriteJSON(w, status, resp)
}

// WriteSuccess merges payload into a {"success": true} envelope.
func WriteSuccess(w http.ResponseWriter, payload map[string]any) {
	body := make(map[string]any, len(payload)+1)
	for k, v := range payload {
		body[k] = v
	}
	body["success"] = true
	WriteJSON(w, http.StatusOK, body)
}
