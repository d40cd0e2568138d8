// Package dto provides Data Transfer Objects for API requests and responses.
package dto

import (
	"encoding/json"
	"math"
	"strconv"
	"strings"
	"time"
)

// ErrorResponse is the error envelope of every endpoint.
type ErrorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code,omitempty"`
}

// MessageResponse is a plain confirmation.
type MessageResponse struct {
	Message string `json:"message"`
}

// DataResponse wraps payloads of the routes that answer {success, data}.
type DataResponse struct {
	Success bool `json:"success"`
	Data    any  `json:"data"`
}

// OK wraps data in a successful DataResponse.
func OK(data any) DataResponse {
	return DataResponse{Success: true, Data: data}
}

// Number is a JSON number that also accepts numeric strings, as sent by
// HTML form clients. A string that does not parse decodes as NaN so range
// checks reject it.
type Number float64

// UnmarshalJSON implements json.Unmarshaler.
func (n *Number) UnmarshalJSON(b []byte) error {
	if string(b) == "null" {
		return nil
	}
	if len(b) > 0 && b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		f, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
		if err != nil {
			f = math.NaN()
		}
		*n = Number(f)
		return nil
	}
	var f float64
	if err := json.Unmarshal(b, &f); err != nil {
		return err
	}
	*n = Number(f)
	return nil
}

// Float returns n as a float64.
func (n Number) Float() float64 { return float64(n) }

// Int truncates n. NaN and infinities become 0.
func (n Number) Int() int {
	f := float64(n)
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0
	}
	return int(f)
}

// Date accepts a calendar date ("2006-01-02") or an RFC 3339 timestamp.
// An empty string decodes as the zero time.
type Date struct {
	time.Time
}

// UnmarshalJSON implements json.Unmarshaler.
func (d *Date) UnmarshalJSON(b []byte) error {
	if string(b) == "null" {
		return nil
	}
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return err
	}
	s = strings.TrimSpace(s)
	if s == "" {
		d.Time = time.Time{}
		return nil
	}
	for _, layout := range []string{time.DateOnly, time.RFC3339, "2006-01-02T15:04:05"} {
		if t, err := time.Parse(layout, s); err == nil {
			d.Time = t.UTC()
			return nil
		}
	}
	return &time.ParseError{Layout: time.DateOnly, Value: s, Message: ": invalid date"}
}

// TimePtr returns the date as a pointer, or nil when d is nil or zero.
func (d *Date) TimePtr() *time.Time {
	if d == nil || d.IsZero() {
		return nil
	}
	t := d.Time
	return &t
}
