package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"

	"github.com/safar/minimarket/internal/store"
)

type errorResponse struct {
	Error      string   `json:"error"`
	Kind       string   `json:"kind"`
	Fields     []string `json:"fields,omitempty"`
	ProductIDs []string `json:"productIds,omitempty"`
}

func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	encoder := json.NewEncoder(w)
	encoder.SetEscapeHTML(false)
	if err := encoder.Encode(data); err != nil {
		slog.Error("encode JSON response", "error", err)
	}
}

func respondError(w http.ResponseWriter, status int, kind, message string) {
	respondJSON(w, status, errorResponse{Error: message, Kind: kind})
}

// respondStoreError translates a store error into a status code and a
// structured body.
func (h *Handler) respondStoreError(w http.ResponseWriter, r *http.Request, err error) {
	class := store.ClassifyError(err)
	body := errorResponse{Error: err.Error(), Kind: class.String()}

	var status int
	switch class {
	case store.ErrorClassValidation:
		status = http.StatusBadRequest
		var verr *store.ValidationError
		if errors.As(err, &verr) {
			body.Fields = verr.Fields
		}
	case store.ErrorClassConflict:
		status = http.StatusConflict
	case store.ErrorClassNotFound:
		status = http.StatusNotFound
	case store.ErrorClassInsufficientStock:
		status = http.StatusBadRequest
		var serr *store.InsufficientStockError
		if errors.As(err, &serr) {
			body.ProductIDs = serr.ProductIDs
		}
		h.logger.Warn("sale rejected", "product_ids", body.ProductIDs, "path", r.URL.Path)
	default:
		status = http.StatusInternalServerError
		body.Error = "internal server error"
		h.logger.Error("request failed", "method", r.Method, "path", r.URL.Path, "error", err)
	}

	respondJSON(w, status, body)
}

// decodeJSON reads a single JSON object from the request body. Unknown
// fields are rejected. On failure it writes a 400 and returns false.
func decodeJSON(w http.ResponseWriter, r *http.Request, dest interface{}) bool {
	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()

	err := decoder.Decode(dest)
	if err == nil {
		if err := decoder.Decode(&json.RawMessage{}); !errors.Is(err, io.EOF) {
			respondError(w, http.StatusBadRequest, store.ErrorClassValidation.String(), "invalid request body: unexpected data after JSON value")
			return false
		}
		return true
	}

	var typeErr *json.UnmarshalTypeError
	switch {
	case errors.Is(err, io.EOF):
		respondError(w, http.StatusBadRequest, store.ErrorClassValidation.String(), "request body is empty")
	case errors.As(err, &typeErr):
		respondJSON(w, http.StatusBadRequest, errorResponse{
			Error:  fmt.Sprintf("invalid value for field %s", typeErr.Field),
			Kind:   store.ErrorClassValidation.String(),
			Fields: []string{typeErr.Field},
		})
	default:
		respondError(w, http.StatusBadRequest, store.ErrorClassValidation.String(), "invalid request body: "+err.Error())
	}
	return false
}
