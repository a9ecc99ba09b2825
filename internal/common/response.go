package common

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
)

type ErrorResponse struct {
	Success bool         `json:"success"`
	Error   string       `json:"error"`
	Details []FieldError `json:"details,omitempty"` // For validation errors
}

// DataResponse is the envelope for every successful response.
type DataResponse struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data"`
}

type Pagination struct {
	Page  int `json:"page"`
	Limit int `json:"limit"`
	Total int `json:"total"`
}

type PageResponse struct {
	Success    bool        `json:"success"`
	Count      int         `json:"count"`
	Pagination Pagination  `json:"pagination"`
	Data       interface{} `json:"data"`
}

func RespondWithError(w http.ResponseWriter, code int, message string) {
	RespondWithJSON(w, code, ErrorResponse{Error: message})
}

// RespondWithServiceError writes err using its mapped status. Server-side
// failures are logged and collapsed to a generic message.
func RespondWithServiceError(w http.ResponseWriter, r *http.Request, err error) {
	code := HTTPStatusFromError(err)
	if code >= http.StatusInternalServerError && code != http.StatusServiceUnavailable {
		log.Printf("ERROR: %s %s: %v", r.Method, r.URL.Path, err)
		RespondWithError(w, code, ErrInternalServer.Error())
		return
	}

	resp := ErrorResponse{Error: err.Error()}
	var vErr *ValidationError
	if errors.As(err, &vErr) {
		resp.Details = vErr.Fields
	}
	RespondWithJSON(w, code, resp)
}

func RespondWithData(w http.ResponseWriter, code int, data interface{}) {
	RespondWithJSON(w, code, DataResponse{Success: true, Data: data})
}

func RespondWithJSON(w http.ResponseWriter, code int, payload interface{}) {
	response, err := json.Marshal(payload)
	if err != nil {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusInternalServerError)
		w.Write([]byte(`{"success": false, "error": "Failed to marshal JSON response"}`))
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	w.Write(response)
}
