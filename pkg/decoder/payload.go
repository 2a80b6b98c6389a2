package decoder

import (
	"bytes"
	"encoding/hex"
	"encoding/json"
	"strings"
	"unicode"
)

type PayloadKind string

const (
	PayloadHex  PayloadKind = "hex"
	PayloadJSON PayloadKind = "json"
)

// RawPayload is either a hex frame (Bytes) or a JSON object (Object), never both.
type RawPayload struct {
	Kind   PayloadKind
	Bytes  []byte
	Object map[string]json.RawMessage
}

// ParseRawPayload detects the payload encoding. Input starting with '{' is JSON; anything else
// is treated as hex, with whitespace and an optional 0x prefix ignored.
func ParseRawPayload(s string) (RawPayload, error) {
	trimmed := strings.TrimSpace(s)
	if trimmed == "" {
		return RawPayload{}, newDecodeError(ErrEmptyPayload, "payload is empty")
	}

	if strings.HasPrefix(trimmed, "{") {
		dec := json.NewDecoder(strings.NewReader(trimmed))
		var obj map[string]json.RawMessage
		if err := dec.Decode(&obj); err != nil {
			return RawPayload{}, newDecodeError(ErrMalformedJSON, "invalid json: %v", err)
		}
		if dec.More() {
			return RawPayload{}, newDecodeError(ErrMalformedJSON, "trailing data after json object")
		}
		return RawPayload{Kind: PayloadJSON, Object: obj}, nil
	}

	compact := strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) {
			return -1
		}
		return r
	}, trimmed)
	if len(compact) >= 2 && (compact[:2] == "0x" || compact[:2] == "0X") {
		compact = compact[2:]
	}
	if compact == "" {
		return RawPayload{}, newDecodeError(ErrEmptyPayload, "payload is empty")
	}

	b, err := hex.DecodeString(compact)
	if err != nil {
		return RawPayload{}, newDecodeError(ErrInvalidHex, "invalid hex %q: %v", compact, err)
	}
	return RawPayload{Kind: PayloadHex, Bytes: b}, nil
}

var jsonNull = []byte("null")

func isAbsent(raw json.RawMessage, ok bool) bool {
	return !ok || bytes.Equal(bytes.TrimSpace(raw), jsonNull)
}

func requireBool(obj map[string]json.RawMessage, key string) (bool, error) {
	raw, ok := obj[key]
	if isAbsent(raw, ok) {
		return false, newDecodeError(ErrMalformedField, "missing field %q", key)
	}
	var v bool
	if err := json.Unmarshal(raw, &v); err != nil {
		return false, newDecodeError(ErrMalformedField, "field %q must be a boolean", key)
	}
	return v, nil
}

func requireNumber(obj map[string]json.RawMessage, key string) (float64, error) {
	raw, ok := obj[key]
	if isAbsent(raw, ok) {
		return 0, newDecodeError(ErrMalformedField, "missing field %q", key)
	}
	var v float64
	if err := json.Unmarshal(raw, &v); err != nil {
		return 0, newDecodeError(ErrMalformedField, "field %q must be a number", key)
	}
	return v, nil
}

func optionalNumber(obj map[string]json.RawMessage, key string) (*float64, error) {
	raw, ok := obj[key]
	if isAbsent(raw, ok) {
		return nil, nil
	}
	var v float64
	if err := json.Unmarshal(raw, &v); err != nil {
		return nil, newDecodeError(ErrMalformedField, "field %q must be a number", key)
	}
	return &v, nil
}

func optionalInt(obj map[string]json.RawMessage, key string) (*int, error) {
	raw, ok := obj[key]
	if isAbsent(raw, ok) {
		return nil, nil
	}
	var v int
	if err := json.Unmarshal(raw, &v); err != nil {
		return nil, newDecodeError(ErrMalformedField, "field %q must be an integer", key)
	}
	return &v, nil
}
