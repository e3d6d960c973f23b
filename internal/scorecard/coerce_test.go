package scorecard

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCoerceInt(t *testing.T) {
	tests := []struct {
		name       string
		raw        string
		wantValue  int
		wantStatus CoercionStatus
	}{
		{name: "integer", raw: "35", wantValue: 35, wantStatus: CoercionOK},
		{name: "padded", raw: "  7 ", wantValue: 7, wantStatus: CoercionOK},
		{name: "decimal truncates", raw: "35.9", wantValue: 35, wantStatus: CoercionOK},
		{name: "negative decimal truncates toward zero", raw: "-2.7", wantValue: -2, wantStatus: CoercionOK},
		{name: "exponent", raw: "1e2", wantValue: 100, wantStatus: CoercionOK},
		{name: "empty", raw: "", wantValue: 0, wantStatus: CoercionEmpty},
		{name: "blank", raw: "   ", wantValue: 0, wantStatus: CoercionEmpty},
		{name: "text", raw: "abc", wantValue: 0, wantStatus: CoercionInvalid},
		{name: "comma decimal", raw: "1,5", wantValue: 0, wantStatus: CoercionInvalid},
		{name: "hex literal", raw: "0x10", wantValue: 0, wantStatus: CoercionInvalid},
		{name: "digit separator", raw: "1_000", wantValue: 0, wantStatus: CoercionInvalid},
		{name: "nan", raw: "NaN", wantValue: 0, wantStatus: CoercionInvalid},
		{name: "infinity", raw: "inf", wantValue: 0, wantStatus: CoercionInvalid},
		{name: "out of range", raw: "1e300", wantValue: 0, wantStatus: CoercionInvalid},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := CoerceInt(tt.raw)
			assert.Equal(t, tt.wantValue, res.Value)
			assert.Equal(t, tt.wantStatus, res.Status)
			assert.Equal(t, tt.raw, res.Raw)
		})
	}
}

func TestCoerceFloat_Or(t *testing.T) {
	assert.Equal(t, 21.0, CoerceFloat("21").Or(0))
	assert.Equal(t, 100.0, CoerceFloat("").Or(100))
	assert.Equal(t, 0.0, CoerceFloat("x").Or(0))
	assert.Equal(t, 12.5, CoerceFloat(" 12.5").Or(0))
}

func TestCoercionStatus_String(t *testing.T) {
	assert.Equal(t, "ok", CoercionOK.String())
	assert.Equal(t, "empty", CoercionEmpty.String())
	assert.Equal(t, "invalid", CoercionInvalid.String())
}
