package api

import (
	"encoding/json"
	"log"
	"net/http"
)

// ErrorResponse is the standard error envelope returned by all endpoints.
type ErrorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code,omitempty"`
}

// RespondJSON writes data as a JSON response with the given status code.
func RespondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data != nil {
		if err := json.NewEncoder(w).Encode(data); err != nil {
			log.Printf("Failed to encode JSON response: %v", err)
		}
	}
}

// RespondError writes a standard error response.
func RespondError(w http.ResponseWriter, status int, message string) {
	RespondJSON(w, status, ErrorResponse{Error: message})
}

// RespondErrorWithCode writes an error response with a machine-readable code.
func RespondErrorWithCode(w http.ResponseWriter, status int, code, message string) {
	RespondJSON(w, status, ErrorResponse{Error: message, Code: code})
}

// ListEnvelope wraps paginated collection responses.
type ListEnvelope struct {
	Data       interface{} `json:"data"`
	Page       int         `json:"page"`
	PerPage    int         `json:"per_page"`
	Total      int64       `json:"total"`
	TotalPages int         `json:"total_pages"`
}

// RespondList writes a paginated collection with its envelope.
func RespondList(w http.ResponseWriter, data interface{}, p Pagination, total int64) {
	RespondJSON(w, http.StatusOK, ListEnvelope{
		Data:       data,
		Page:       p.Page,
		PerPage:    p.PerPage,
		Total:      total,
		TotalPages: p.TotalPages(total),
	})
}
