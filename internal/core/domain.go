package core

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

type (
	// Unit is a healthcare facility (UBS) with its three funding allocations.
	Unit struct {
		ID        int64
		Name      string
		Federal   Money
		State     Money
		Municipal Money
		CreatedAt time.Time
	}

	// Expense is a cost entry linked to exactly one unit.
	Expense struct {
		ID          int64
		UnitID      int64
		Description string
		Amount      Money
		CreatedAt   time.Time
	}
)

var (
	ErrUnitNotFound     = errors.New("unit not found")
	ErrInvalidUnitID    = errors.New("invalid unit id")
	ErrInvalidAmount    = errors.New("invalid amount")
	ErrNegativeAmount   = errors.New("amount must not be negative")
	ErrEmptyName        = errors.New("empty unit name")
	ErrEmptyDescription = errors.New("empty description")
)

const maxTextLength = 200

// ValidationError reports user input that could not be coerced or accepted.
// It unwraps to one of the sentinel errors above.
type ValidationError struct {
	Field string
	Value string
	Err   error
}

func (e *ValidationError) Error() string {
	if e.Value == "" {
		return fmt.Sprintf("%s: %v", e.Field, e.Err)
	}
	return fmt.Sprintf("%s %q: %v", e.Field, e.Value, e.Err)
}

func (e *ValidationError) Unwrap() error { return e.Err }

// IsValidation reports whether err carries a ValidationError.
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

// IsNotFound reports whether err is or wraps ErrUnitNotFound.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrUnitNotFound)
}

// Total returns federal + state + municipal.
func (u Unit) Total() Money {
	return u.Federal.Add(u.State).Add(u.Municipal)
}

func (u Unit) Validate() error {
	if strings.TrimSpace(u.Name) == "" {
		return &ValidationError{Field: "name", Err: ErrEmptyName}
	}
	if len(u.Name) > maxTextLength {
		return &ValidationError{Field: "name", Err: errors.New("name too long (max 200 characters)")}
	}
	amounts := []struct {
		field string
		m     Money
	}{{"federal", u.Federal}, {"state", u.State}, {"municipal", u.Municipal}}
	for _, a := range amounts {
		if err := checkAmount(a.field, a.m); err != nil {
			return err
		}
	}
	return nil
}

func (e Expense) Validate() error {
	if e.UnitID <= 0 {
		return &ValidationError{Field: "unit_id", Err: ErrInvalidUnitID}
	}
	if strings.TrimSpace(e.Description) == "" {
		return &ValidationError{Field: "description", Err: ErrEmptyDescription}
	}
	if len(e.Description) > maxTextLength {
		return &ValidationError{Field: "description", Err: errors.New("description too long (max 200 characters)")}
	}
	return checkAmount("amount", e.Amount)
}

func checkAmount(field string, m Money) error {
	switch {
	case m.Cents < 0:
		return &ValidationError{Field: field, Value: m.String(), Err: ErrNegativeAmount}
	case m.Cents > MaxCents:
		return &ValidationError{Field: field, Value: m.String(), Err: ErrInvalidAmount}
	}
	return nil
}
