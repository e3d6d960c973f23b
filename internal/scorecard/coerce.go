package scorecard

import (
	"math"
	"strconv"
	"strings"
)

// CoercionStatus tells how a raw cell turned into a number.
type CoercionStatus int

const (
	CoercionOK CoercionStatus = iota
	CoercionEmpty
	CoercionInvalid
)

func (s CoercionStatus) String() string {
	switch s {
	case CoercionOK:
		return "ok"
	case CoercionEmpty:
		return "empty"
	default:
		return "invalid"
	}
}

// IntResult is the outcome of coercing a cell to an integer.
type IntResult struct {
	Value  int
	Status CoercionStatus
	Raw    string
}

// OK reports whether the cell held a usable number.
func (r IntResult) OK() bool { return r.Status == CoercionOK }

// Or returns the coerced value, or def when coercion failed.
func (r IntResult) Or(def int) int {
	if r.OK() {
		return r.Value
	}
	return def
}

// FloatResult is the outcome of coercing a cell to a float.
type FloatResult struct {
	Value  float64
	Status CoercionStatus
	Raw    string
}

// OK reports whether the cell held a usable number.
func (r FloatResult) OK() bool { return r.Status == CoercionOK }

// Or returns the coerced value, or def when coercion failed.
func (r FloatResult) Or(def float64) float64 {
	if r.OK() {
		return r.Value
	}
	return def
}

// CoerceFloat parses a decimal number. Hex literals, digit separators, NaN
// and infinities are rejected so that only plain spreadsheet numbers pass.
func CoerceFloat(raw string) FloatResult {
	s := strings.TrimSpace(raw)
	if s == "" {
		return FloatResult{Status: CoercionEmpty, Raw: raw}
	}
	if strings.ContainsAny(s, "xX_") {
		return FloatResult{Status: CoercionInvalid, Raw: raw}
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return FloatResult{Status: CoercionInvalid, Raw: raw}
	}
	return FloatResult{Value: f, Status: CoercionOK, Raw: raw}
}

// CoerceInt parses a number and truncates it toward zero, so "35.9" is 35.
func CoerceInt(raw string) IntResult {
	f := CoerceFloat(raw)
	if !f.OK() {
		return IntResult{Status: f.Status, Raw: raw}
	}
	t := math.Trunc(f.Value)
	if t >= math.MaxInt64 || t < math.MinInt64 {
		return IntResult{Status: CoercionInvalid, Raw: raw}
	}
	return IntResult{Value: int(t), Status: CoercionOK, Raw: raw}
}
