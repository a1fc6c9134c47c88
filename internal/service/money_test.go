package service

import (
	"encoding/json"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func TestDeriveVAT(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		amount    string
		pct       string
		wantVAT   string
		wantTotal string
	}{
		{"standard rate", "1000", "7.5", "75.00", "1075.00"},
		{"zero rate", "500", "0", "0.00", "500.00"},
		{"zero amount", "0", "20", "0.00", "0.00"},
		{"full rate", "12.34", "100", "12.34", "24.68"},
		{"rounds half up", "0.10", "5", "0.01", "0.11"},
		{"rounds down", "0.10", "4", "0.00", "0.10"},
		{"fractional rate", "199.99", "16.25", "32.50", "232.49"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			vat, total := DeriveVAT(dec(tt.amount), dec(tt.pct))
			assert.Equal(t, tt.wantVAT, vat.StringFixed(2))
			assert.Equal(t, tt.wantTotal, total.StringFixed(2))
			assert.True(t, total.Equal(dec(tt.amount).Add(vat)), "total must equal amount + vat")
		})
	}
}

func TestMoney_JSON(t *testing.T) {
	t.Parallel()

	b, err := json.Marshal(struct {
		Total Money `json:"total"`
	}{Total: Money(dec("1075"))})
	require.NoError(t, err)
	assert.JSONEq(t, `{"total":1075.00}`, string(b))

	var m Money
	require.NoError(t, json.Unmarshal([]byte(`"12.5"`), &m))
	assert.True(t, m.Decimal().Equal(dec("12.5")))
}
