package service

import (
	"github.com/shopspring/decimal"
)

var hundred = decimal.NewFromInt(100)

// DeriveVAT computes the VAT amount and gross total of a net amount.
// vatAmount is rounded half away from zero to 2 places; total is amount + vatAmount.
func DeriveVAT(amount, vatPercentage decimal.Decimal) (vatAmount, total decimal.Decimal) {
	vatAmount = amount.Mul(vatPercentage).Div(hundred).Round(2)
	total = amount.Add(vatAmount)
	return vatAmount, total
}

// Money renders a decimal as a JSON number with exactly two fraction digits.
type Money decimal.Decimal

func (m Money) MarshalJSON() ([]byte, error) {
	return []byte(decimal.Decimal(m).StringFixed(2)), nil
}

func (m *Money) UnmarshalJSON(b []byte) error {
	var d decimal.Decimal
	if err := d.UnmarshalJSON(b); err != nil {
		return err
	}
	*m = Money(d)
	return nil
}

func (m Money) Decimal() decimal.Decimal { return decimal.Decimal(m) }
