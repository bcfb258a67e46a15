// Package handler contains the HTTP handlers for the simulator API. Handlers
// declare the narrow engine interfaces they need locally, so the package
// never depends on the concrete engine type.
package handler

import (
	"encoding/json"
	"io"
	"net/http"

	"github.com/suilfg/marketsim/internal/domain"
	"github.com/suilfg/marketsim/internal/wallet"
)

// maxBodySize bounds request bodies; every payload in this API is tiny.
const maxBodySize = 1 << 16

// writeJSON marshals v as JSON and writes it to the response with the given
// HTTP status code. If marshaling fails, it falls back to a plain-text 500.
func writeJSON(w http.ResponseWriter, status int, v any) {
	data, err := json.Marshal(v)
	if err != nil {
		http.Error(w, `{"error":"internal server error"}`, http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	w.Write(data)
}

// writeError sends a JSON-formatted error response.
func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

// decodeJSON reads the request body into dst, rejecting unknown fields.
func decodeJSON(r *http.Request, dst any) error {
	dec := json.NewDecoder(io.LimitReader(r.Body, maxBodySize))
	dec.DisallowUnknownFields()
	return dec.Decode(dst)
}

// resultResponse is the envelope every action endpoint returns.
type resultResponse struct {
	OK     bool          `json:"ok"`
	Reason domain.Reason `json:"reason,omitempty"`
}

// writeResult maps an engine Result onto an HTTP response. Accepted actions
// are 200; rejections carry the reason with 422, except for a closed engine,
// which is a 503.
func writeResult(w http.ResponseWriter, res domain.Result) {
	status := http.StatusOK
	if !res.OK {
		status = http.StatusUnprocessableEntity
		if res.Reason == domain.ReasonEngineClosed {
			status = http.StatusServiceUnavailable
		}
	}
	writeJSON(w, status, resultResponse{OK: res.OK, Reason: res.Reason})
}

// pathParam extracts a named path parameter from the request using Go 1.22+
// built-in routing (http.Request.PathValue).
func pathParam(r *http.Request, name string) string {
	return r.PathValue(name)
}

// identityFrom normalizes a raw wallet string, writing a 400 on failure.
// Callers return immediately when ok is false.
func identityFrom(w http.ResponseWriter, raw string) (string, bool) {
	id, err := wallet.Normalize(raw)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid wallet address")
		return "", false
	}
	return id, true
}
