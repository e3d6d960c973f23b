package scorecard

import "errors"

var (
	// ErrInputNotFound marks a missing input file. It is the only load
	// failure the dashboard reports with a dedicated message.
	ErrInputNotFound       = errors.New("scorecard input not found")
	ErrEmptyInput          = errors.New("no header row")
	ErrMissingColumns      = errors.New("missing required columns")
	ErrColumnCount         = errors.New("unexpected column count")
	ErrUnsupportedEncoding = errors.New("unsupported encoding")
)
