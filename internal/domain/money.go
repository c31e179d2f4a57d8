package domain

import (
	"github.com/shopspring/decimal"
	"golang.org/x/text/currency"
)

// PEN is the sol. x/text/currency only exports the most traded units.
var PEN = currency.MustParseISO("PEN")

type Money struct {
	Amount   decimal.Decimal
	Currency currency.Unit
}

func ZeroMoney(unit currency.Unit) Money {
	return Money{Amount: decimal.Zero, Currency: unit}
}

// Times multiplies the amount by a quantity, keeping the currency.
func (m Money) Times(quantity int) Money {
	return Money{
		Amount:   m.Amount.Mul(decimal.NewFromInt(int64(quantity))),
		Currency: m.Currency,
	}
}

// Plus adds the amount of other. Both must be in the same currency; callers
// check with SameCurrency first.
func (m Money) Plus(other Money) Money {
	return Money{
		Amount:   m.Amount.Add(other.Amount),
		Currency: m.Currency,
	}
}

func (m Money) SameCurrency(other Money) bool {
	return m.Currency == other.Currency
}

func (m Money) String() string {
	return m.Currency.String() + " " + m.Amount.StringFixed(2)
}
