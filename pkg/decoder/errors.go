package decoder

import "fmt"

type ErrorKind string

const (
	ErrEmptyPayload        ErrorKind = "EMPTY_PAYLOAD"
	ErrInvalidHex          ErrorKind = "INVALID_HEX"
	ErrMalformedJSON       ErrorKind = "MALFORMED_JSON"
	ErrMalformedLength     ErrorKind = "MALFORMED_LENGTH"
	ErrMalformedField      ErrorKind = "MALFORMED_FIELD"
	ErrUnsupportedEncoding ErrorKind = "UNSUPPORTED_ENCODING"
	ErrUnknownSensorType   ErrorKind = "UNKNOWN_SENSOR_TYPE"
)

// DecodeError is the only error Decode returns. Kind is stable and machine readable.
type DecodeError struct {
	Kind    ErrorKind
	Message string
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func newDecodeError(kind ErrorKind, format string, args ...any) *DecodeError {
	return &DecodeError{Kind: kind, Message: fmt.Sprintf(format, args...)}
}
