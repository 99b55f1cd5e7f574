package valuta

import (
	"testing"

	"github.com/shopspring/decimal"
)

func TestMoney_String(t *testing.T) {
	tests := []struct {
		name string
		m    Money
		want string
	}{
		{"usd", M(1234.5, "USD"), "$1,234.50"},
		{"btc keeps satoshis", M(0.12345678, "BTC"), "0.12345678 ₿"},
		{"rounds to the currency fraction", M(decimal.RequireFromString("10.005"), "USD"), "$10.01"},
		{"unknown currency", M(3, "XYZ"), "3 XYZ"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.m.String(); got != tt.want {
				t.Errorf("String() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestMoney_Convert(t *testing.T) {
	got := M(100, "EUR").Convert(1.1, "USD")
	if !got.Equal(M(110, "USD")) {
		t.Errorf("Convert() = %v, want 110 USD", got)
	}
}
