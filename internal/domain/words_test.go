package domain

import "testing"

func TestSpellOut(t *testing.T) {
	t.Parallel()

	tests := []struct {
		money Money
		want  string
	}{
		{MustMoney("123.45", "USD"), "One Hundred And Twenty Three Dollars And Forty Five Cents"},
		{MustMoney("1", "USD"), "One Dollar And No Cents"},
		{MustMoney("0.50", "USD"), "No Dollars And Fifty Cents"},
		{MustMoney("1005", "USD"), "One Thousand And Five Dollars And No Cents"},
		{MustMoney("2000000.10", "USD"), "Two Million Dollars And Ten Cents"},
		{MustMoney("1.01", "EUR"), "One EUR And One Cent"},
		{MustMoney("-19.99", "USD"), "Nineteen Dollars And Ninety Nine Cents"},
		{MustMoney("1212", "GBP"), "One Thousand Two Hundred And Twelve GBP And No Cents"},
	}

	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			if got := SpellOut(tt.money); got != tt.want {
				t.Errorf("expected %q, got %q", tt.want, got)
			}
		})
	}
}
