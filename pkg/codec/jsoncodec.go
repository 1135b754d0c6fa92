// Package codec is the strict JSON encoding used on the admin API.
package codec

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
)

// MaxBody caps request bodies read by Decode.
const MaxBody = 1 << 20

// ErrTrailing means the body held more than one JSON value.
var ErrTrailing = errors.New("json trailing content")

// Decode reads one JSON value from r into v, rejecting unknown fields and
// trailing content. An empty body leaves v untouched.
func Decode(r io.Reader, v any) error {
	data, err := io.ReadAll(io.LimitReader(r, MaxBody+1))
	if err != nil {
		return fmt.Errorf("json read: %w", err)
	}
	if len(data) > MaxBody {
		return fmt.Errorf("json body exceeds %d bytes", MaxBody)
	}
	if len(bytes.TrimSpace(data)) == 0 {
		return nil
	}
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return fmt.Errorf("json decode: %w", err)
	}
	var extra any
	if err := dec.Decode(&extra); err != io.EOF {
		return ErrTrailing
	}
	return nil
}

// Marshal encodes v without HTML escaping or a trailing newline.
func Marshal(v any) ([]byte, error) {
	buf := &bytes.Buffer{}
	enc := json.NewEncoder(buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return nil, err
	}
	return bytes.TrimRight(buf.Bytes(), "\n"), nil
}

// Write sends v as JSON with the given status. An encoding failure becomes a 500.
func Write(w http.ResponseWriter, status int, v any) {
	payload, err := Marshal(v)
	if err != nil {
		http.Error(w, "encode response", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write(payload)
}
