// Package core provides money parsing and handling utilities.
//
// This file contains functions for parsing monetary amounts from user text
// and converting between cents and currency-unit representations.
package core

import (
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
)

// Money is an amount in cents. Allocations and expenses are stored this way
// so that sums are exact.
type Money struct {
	Cents int64
}

// maxAmount is the largest accepted amount, 10 trillion. Totals of three
// allocations plus any realistic number of expenses stay inside int64 cents.
var maxAmount = decimal.New(1, 13)

// MaxCents is maxAmount in cents.
const MaxCents int64 = 1e15

// ParseAmount converts decimal text to Money, rounding half away from zero
// on the third decimal place.
//
// Both dot (12.34) and comma (12,34) are accepted as decimal separator.
// Zero is allowed; negative values return ErrNegativeAmount and anything that
// is not a number returns ErrInvalidAmount.
//
// Examples:
//
//	ParseAmount("1000")   -> {100000}, nil
//	ParseAmount("12,345") -> {1235}, nil
//	ParseAmount("abc")    -> {}, ErrInvalidAmount
func ParseAmount(s string) (Money, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return Money{}, ErrInvalidAmount
	}
	s = strings.ReplaceAll(s, ",", ".")
	d, err := decimal.NewFromString(s)
	if err != nil {
		return Money{}, ErrInvalidAmount
	}
	if d.IsNegative() {
		return Money{}, ErrNegativeAmount
	}
	if d.GreaterThan(maxAmount) {
		return Money{}, ErrInvalidAmount
	}
	return Money{Cents: d.Shift(2).Round(0).IntPart()}, nil
}

// ParseUnitID converts user text to a unit identifier.
func ParseUnitID(s string) (int64, error) {
	id, err := strconv.ParseInt(strings.TrimSpace(s), 10, 64)
	if err != nil || id <= 0 {
		return 0, ErrInvalidUnitID
	}
	return id, nil
}

func (m Money) Add(o Money) Money {
	return Money{Cents: m.Cents + o.Cents}
}

// Float returns the amount in currency units. Charts work on these values;
// sums must be done on cents.
func (m Money) Float() float64 {
	return decimal.New(m.Cents, -2).InexactFloat64()
}

// String formats the amount with two decimals and a dot separator.
func (m Money) String() string {
	return decimal.New(m.Cents, -2).StringFixed(2)
}

// Sum adds up a list of amounts.
func Sum(amounts []Money) Money {
	var total Money
	for _, a := range amounts {
		total = total.Add(a)
	}
	return total
}
