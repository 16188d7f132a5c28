package contest

import "errors"

var (
	ErrInvalidArgument = errors.New("invalid argument")
	ErrNotFound        = errors.New("not found")
	ErrFormat          = errors.New("unexpected format")
	ErrEmptyRegistry   = errors.New("no entrants registered")
	ErrIO              = errors.New("i/o failure")
)

const (
	CodeInvalidArgument = "E_INVALID_ARGUMENT"
	CodeNotFound        = "E_NOT_FOUND"
	CodeFormat          = "E_FORMAT"
	CodeEmptyRegistry   = "E_EMPTY_REGISTRY"
	CodeIO              = "E_IO"
	CodeInternal        = "E_INTERNAL"
)

// Code maps an error to its stable E_* code. A nil error maps to "".
func Code(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrInvalidArgument):
		return CodeInvalidArgument
	case errors.Is(err, ErrNotFound):
		return CodeNotFound
	case errors.Is(err, ErrFormat):
		return CodeFormat
	case errors.Is(err, ErrEmptyRegistry):
		return CodeEmptyRegistry
	case errors.Is(err, ErrIO):
		return CodeIO
	default:
		return CodeInternal
	}
}
