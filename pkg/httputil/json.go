package httputil

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/matzehuels/sectorlock/pkg/errors"
)

// MaxBodyBytes limits request bodies read by DecodeJSON.
const MaxBodyBytes = 64 << 10

// ErrorBody is the JSON shape of every error response.
type ErrorBody struct {
	Code    errors.Code `json:"code"`
	Message string      `json:"message"`
}

// WriteJSON writes v as JSON with the given status.
func WriteJSON(w http.ResponseWriter, status int, v any) error {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	return json.NewEncoder(w).Encode(v)
}

// WriteError writes err as an ErrorBody. Errors without a code are
// reported as INTERNAL_ERROR.
func WriteError(w http.ResponseWriter, err error) error {
	code := errors.GetCode(err)
	if code == "" {
		code = errors.ErrCodeInternal
	}
	return WriteJSON(w, StatusFor(err), ErrorBody{Code: code, Message: errors.UserMessage(err)})
}

// StatusFor maps an error onto an HTTP status code.
func StatusFor(err error) int {
	switch code := errors.GetCode(err); {
	case errors.IsValidation(err):
		return http.StatusBadRequest
	case code == errors.ErrCodeNotFound, code == errors.ErrCodeSessionNotFound, code == errors.ErrCodeFileNotFound:
		return http.StatusNotFound
	case code == errors.ErrCodeStore:
		return http.StatusServiceUnavailable
	case code == errors.ErrCodeTimeout:
		return http.StatusGatewayTimeout
	case code == errors.ErrCodeConflict:
		return http.StatusConflict
	case code == errors.ErrCodeRateLimited:
		return http.StatusTooManyRequests
	case code == errors.ErrCodeUnsupported:
		return http.StatusNotImplemented
	default:
		return http.StatusInternalServerError
	}
}

// DecodeJSON decodes the request body into v. An empty body leaves v
// untouched.
func DecodeJSON(r *http.Request, v any) error {
	if r.Body == nil {
		return nil
	}
	dec := json.NewDecoder(io.LimitReader(r.Body, MaxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		if err == io.EOF {
			return nil
		}
		return errors.Wrap(errors.ErrCodeInvalidInput, err, "%s", describeDecodeError(err))
	}
	return nil
}

func describeDecodeError(err error) string {
	switch e := err.(type) {
	case *json.UnmarshalTypeError:
		return fmt.Sprintf("field %q must be a %s", e.Field, e.Type)
	case *json.SyntaxError:
		return fmt.Sprintf("malformed JSON at offset %d", e.Offset)
	default:
		return fmt.Sprintf("invalid request body: %v", err)
	}
}
