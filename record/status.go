/*
 * Copyright 2025 Humaid Alqasimi
 * SPDX-License-Identifier: Apache-2.0
 */
package record

import (
	"math"
	"strconv"
	"strings"
)

// Status classifies a test result against its reference range.
type Status string

// Status values for a classified result.
const (
	StatusNormal Status = "normal"
	StatusLow    Status = "low"
	StatusHigh   Status = "high"
)

// Valid reports whether s is one of the known statuses.
func (s Status) Valid() bool {
	switch s {
	case StatusNormal, StatusLow, StatusHigh:
		return true
	}

	return false
}

func (s Status) String() string {
	return string(s)
}

// Classify returns StatusLow when result is below low, StatusHigh when it is
// above high, and StatusNormal otherwise. Both bounds are inclusive.
func Classify(result, low, high float64) Status {
	switch {
	case result < low:
		return StatusLow
	case result > high:
		return StatusHigh
	default:
		return StatusNormal
	}
}

// ParseNumber parses a string-encoded measurement. Only finite values parse.
func ParseNumber(s string) (float64, bool) {
	v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return 0, false
	}

	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, false
	}

	return v, true
}

// classifyTest derives the status for t if all of its numeric fields parse.
func classifyTest(t TestRecord) (Status, bool) {
	result, ok := ParseNumber(t.Result)
	if !ok {
		return "", false
	}

	low, ok := ParseNumber(t.Low)
	if !ok {
		return "", false
	}

	high, ok := ParseNumber(t.High)
	if !ok {
		return "", false
	}

	return Classify(result, low, high), true
}
