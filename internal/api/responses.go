package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/snarg/voxconvert/internal/convert"
)

// Error codes for failures that do not come from a conversion. Conversion
// failures use their convert.Kind as the code.
const (
	ErrBadRequest   = "InvalidRequest"
	ErrInvalidBody  = "InvalidBody"
	ErrNotFound     = "NotFound"
	ErrUnauthorized = "Unauthorized"
	ErrRateLimited  = "RateLimited"
	ErrTooLarge     = "PayloadTooLarge"
	ErrInternal     = "Internal"
)

// WriteJSON writes a JSON response with the given status code.
func WriteJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// ErrorResponse is the standard error response body.
type ErrorResponse struct {
	Error  string `json:"error"`
	Code   string `json:"code,omitempty"`
	Detail string `json:"detail,omitempty"`
}

// WriteError writes a JSON error response.
func WriteError(w http.ResponseWriter, status int, msg string) {
	WriteJSON(w, status, ErrorResponse{Error: msg})
}

// WriteErrorWithCode writes a JSON error response with a machine-readable code.
func WriteErrorWithCode(w http.ResponseWriter, status int, code, msg string) {
	WriteJSON(w, status, ErrorResponse{Error: msg, Code: code})
}

// StatusForKind maps a conversion failure kind to an HTTP status.
func StatusForKind(k convert.Kind) int {
	switch k {
	case convert.KindEmptyInput, convert.KindInvalidAudio, convert.KindInvalidRequest:
		return http.StatusBadRequest
	case convert.KindUnintelligible:
		return http.StatusUnprocessableEntity
	case convert.KindServiceUnavailable, convert.KindTranslationServiceError:
		return http.StatusBadGateway
	}
	return http.StatusInternalServerError
}

// conversionError builds the response body for a failed conversion. The
// user-facing message comes from the kind; the underlying cause goes to the
// log, not the client.
func conversionError(err error) (int, ErrorResponse) {
	kind := convert.KindOf(err)
	body := ErrorResponse{Error: kind.Message(), Code: string(kind)}
	var ce *convert.Error
	if errors.As(err, &ce) && ce.Kind == convert.KindInvalidRequest && ce.Err != nil {
		body.Detail = ce.Err.Error()
	}
	return StatusForKind(kind), body
}

// WriteConversionError writes the JSON error for a failed conversion.
func WriteConversionError(w http.ResponseWriter, err error) {
	status, body := conversionError(err)
	WriteJSON(w, status, body)
}

// DecodeJSON reads and decodes a JSON request body into v.
func DecodeJSON(r *http.Request, v any) error {
	if r.Body == nil {
		return fmt.Errorf("missing request body")
	}
	return json.NewDecoder(r.Body).Decode(v)
}
