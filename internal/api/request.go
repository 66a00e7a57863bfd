package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
)

// MaxBodySize is the maximum allowed request body size (4 MB). Import
// payloads can carry full rosters, so the limit is generous.
const MaxBodySize = 4 << 20

// DecodeJSON reads and decodes a JSON request body into dst.
// It returns user-friendly error messages instead of leaking Go internals.
func DecodeJSON(r *http.Request, dst interface{}) error {
	if r.Body == nil {
		return errors.New("request body is empty")
	}

	r.Body = http.MaxBytesReader(nil, r.Body, MaxBodySize)

	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()

	err := dec.Decode(dst)
	if err == nil {
		return nil
	}

	var syntaxErr *json.SyntaxError
	var unmarshalTypeErr *json.UnmarshalTypeError
	var maxBytesErr *http.MaxBytesError

	switch {
	case errors.As(err, &syntaxErr):
		return fmt.Errorf("malformed JSON at position %d", syntaxErr.Offset)
	case errors.As(err, &unmarshalTypeErr):
		return fmt.Errorf("invalid value for field %q: expected %s", unmarshalTypeErr.Field, unmarshalTypeErr.Type)
	case errors.Is(err, io.EOF):
		return errors.New("request body is empty")
	case errors.As(err, &maxBytesErr):
		return fmt.Errorf("request body exceeds maximum size of %d bytes", MaxBodySize)
	case strings.HasPrefix(err.Error(), "json: unknown field"):
		field := strings.TrimPrefix(err.Error(), "json: unknown field ")
		return fmt.Errorf("unknown field %s", field)
	default:
		return errors.New("invalid JSON in request body")
	}
}

// ReadBody reads a raw request body up to the size limit. Import
// endpoints pass the bytes through to the source adapters untouched.
func ReadBody(r *http.Request) ([]byte, error) {
	if r.Body == nil {
		return nil, errors.New("request body is empty")
	}
	r.Body = http.MaxBytesReader(nil, r.Body, MaxBodySize)
	body, err := io.ReadAll(r.Body)
	if err != nil {
		var maxBytesErr *http.MaxBytesError
		if errors.As(err, &maxBytesErr) {
			return nil, fmt.Errorf("request body exceeds maximum size of %d bytes", MaxBodySize)
		}
		return nil, errors.New("failed to read request body")
	}
	if len(body) == 0 {
		return nil, errors.New("request body is empty")
	}
	return body, nil
}
