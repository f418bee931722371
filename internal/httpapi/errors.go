package httpapi

import (
	"encoding/json"
	"net/http"

	"go.uber.org/zap"
)

// Error codes returned in APIError.Error.Code. Clients match on these, not
// on the message.
const (
	CodeMethodNotAllowed = "method_not_allowed"
	CodeOriginNotAllowed = "origin_not_allowed"
	CodeForbidden        = "forbidden"
	CodeInternal         = "internal_error"
	CodeNoStore          = "no_store"
	CodeStore            = "store_error"
	CodeInvalidID        = "invalid_id"
	CodeNotFound         = "not_found"
	CodeInvalidDuration  = "invalid_duration"
	CodeInvalidJSON      = "invalid_json"
	CodeSaveFailed       = "save_failed"
	CodeReloadFailed     = "reload_failed"
	CodeNoStreaming      = "stream_unsupported"
	CodeRunInProgress    = "already_running"
)

type ErrorBody struct {
	Code      string `json:"code"`
	Message   string `json:"message"`
	RequestID string `json:"request_id,omitempty"`
}

// APIError is the body of every non-2xx response except config validation,
// which answers with the config.Validation lists instead.
type APIError struct {
	Error ErrorBody `json:"error"`
}

func WriteJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func WriteError(w http.ResponseWriter, r *http.Request, status int, code, message string) {
	WriteJSON(w, status, APIError{Error: ErrorBody{
		Code:      code,
		Message:   message,
		RequestID: RequestIDFrom(r.Context()),
	}})
}

// writeStoreError logs the sqlite failure and answers 500 without echoing
// file paths or SQL back to the caller.
func writeStoreError(w http.ResponseWriter, r *http.Request, err error) {
	zap.L().Error("httpapi: run history",
		zap.String("request_id", RequestIDFrom(r.Context())),
		zap.String("path", r.URL.Path),
		zap.Error(err),
	)
	WriteError(w, r, http.StatusInternalServerError, CodeStore, "run history query failed")
}
