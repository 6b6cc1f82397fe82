// Package http provides HTTP server and handler implementations.
//
// This file turns raw form or JSON input into validated ledger values. Text
// that cannot be coerced becomes a core.ValidationError naming the field.

package http

import (
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"ubs/internal/core"
)

// maxBodyBytes bounds what a form post may send.
const maxBodyBytes = 64 << 10

// RequestBodyParser handles different content types for request body parsing.
// It supports both JSON and form-encoded data, commonly used with HTMX.
type RequestBodyParser struct {
	body        []byte
	contentType string
	jsonData    map[string]interface{}
	formData    url.Values
	parsed      bool
	err         error
}

// NewRequestBodyParser creates a parser for the given request.
// It reads the body once and stores it for subsequent parsing.
func NewRequestBodyParser(r *http.Request) *RequestBodyParser {
	p := &RequestBodyParser{
		contentType: r.Header.Get("Content-Type"),
	}
	p.body, p.err = io.ReadAll(io.LimitReader(r.Body, maxBodyBytes))
	return p
}

// Parse attempts to parse the body as JSON or form data.
func (p *RequestBodyParser) Parse() error {
	if p.parsed {
		return p.err
	}
	p.parsed = true

	if p.err != nil {
		return p.err
	}

	if len(p.body) == 0 {
		p.formData = url.Values{}
		return nil
	}

	if p.IsJSONContent() {
		p.jsonData = make(map[string]interface{})
		if err := json.Unmarshal(p.body, &p.jsonData); err != nil {
			p.err = err
			return err
		}
		return nil
	}

	p.formData, p.err = url.ParseQuery(string(p.body))
	return p.err
}

// IsJSONContent reports whether the body should be read as JSON.
func (p *RequestBodyParser) IsJSONContent() bool {
	if strings.HasPrefix(p.contentType, "application/json") {
		return true
	}
	return len(p.body) > 0 && p.body[0] == '{'
}

// Get returns a string value from the parsed data (JSON or form).
func (p *RequestBodyParser) Get(key string) string {
	if p.jsonData != nil {
		if val, ok := p.jsonData[key]; ok {
			return sanitizeInput(stringValue(val))
		}
		return ""
	}
	if p.formData != nil {
		return sanitizeInput(p.formData.Get(key))
	}
	return ""
}

// stringValue converts an interface{} to string.
func stringValue(v interface{}) string {
	switch val := v.(type) {
	case string:
		return val
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(val)
	default:
		return ""
	}
}

// parseAmountField coerces one money field.
func parseAmountField(field, raw string) (core.Money, error) {
	m, err := core.ParseAmount(raw)
	if err != nil {
		return core.Money{}, &core.ValidationError{Field: field, Value: raw, Err: err}
	}
	return m, nil
}

// parseUnitIDField coerces a unit identifier.
func parseUnitIDField(field, raw string) (int64, error) {
	id, err := core.ParseUnitID(raw)
	if err != nil {
		return 0, &core.ValidationError{Field: field, Value: raw, Err: err}
	}
	return id, nil
}

// ParseUnitInput reads name, federal, state and municipal.
func ParseUnitInput(p *RequestBodyParser) (core.Unit, error) {
	u := core.Unit{Name: p.Get("name")}
	targets := []struct {
		field string
		dst   *core.Money
	}{
		{"federal", &u.Federal},
		{"state", &u.State},
		{"municipal", &u.Municipal},
	}
	for _, t := range targets {
		m, err := parseAmountField(t.field, p.Get(t.field))
		if err != nil {
			return core.Unit{}, err
		}
		*t.dst = m
	}
	return u, u.Validate()
}

// ParseExpenseInput reads unit_id, description and amount.
func ParseExpenseInput(p *RequestBodyParser) (core.Expense, error) {
	unitID, err := parseUnitIDField("unit_id", p.Get("unit_id"))
	if err != nil {
		return core.Expense{}, err
	}
	amount, err := parseAmountField("amount", p.Get("amount"))
	if err != nil {
		return core.Expense{}, err
	}
	e := core.Expense{UnitID: unitID, Description: p.Get("description"), Amount: amount}
	return e, e.Validate()
}

// ParseUnitIDQuery reads the unit_id query parameter.
func ParseUnitIDQuery(query url.Values) (int64, error) {
	return parseUnitIDField("unit_id", sanitizeInput(query.Get("unit_id")))
}

// ParseFormOrFail parses the request body and returns an error response on
// failure. Returns nil on success.
func ParseFormOrFail(p *RequestBodyParser) *HTMXResponseBuilder {
	if err := p.Parse(); err != nil {
		return BadRequestError("Invalid request format")
	}
	return nil
}
