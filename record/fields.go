/*
 * Copyright 2025 Humaid Alqasimi
 * SPDX-License-Identifier: Apache-2.0
 */
package record

import (
	"fmt"
	"strings"
)

// PatientField identifies an editable scalar field of a PatientRecord.
type PatientField int

// PatientField values. The zero value is not a field.
const (
	PatientName PatientField = iota + 1
	PatientAge
	PatientGender
	PatientLabReference
	PatientPackage
)

// PatientFields lists every patient field in display order.
var PatientFields = []PatientField{
	PatientName, PatientAge, PatientGender, PatientLabReference, PatientPackage,
}

func (f PatientField) String() string {
	switch f {
	case PatientName:
		return "name"
	case PatientAge:
		return "age"
	case PatientGender:
		return "gender"
	case PatientLabReference:
		return "labRef"
	case PatientPackage:
		return "packageName"
	}

	return fmt.Sprintf("PatientField(%d)", int(f))
}

// ParsePatientField maps a form or JSON key to a PatientField.
func ParsePatientField(key string) (PatientField, error) {
	switch strings.ToLower(strings.TrimSpace(key)) {
	case "name":
		return PatientName, nil
	case "age":
		return PatientAge, nil
	case "gender":
		return PatientGender, nil
	case "labref", "lab_ref":
		return PatientLabReference, nil
	case "packagename", "package_name":
		return PatientPackage, nil
	}

	return 0, fmt.Errorf("%w: patient field %q", ErrUnknownField, key)
}

func (f PatientField) set(p *PatientRecord, value string) error {
	switch f {
	case PatientName:
		p.Name = value
	case PatientAge:
		p.Age = value
	case PatientGender:
		p.Gender = value
	case PatientLabReference:
		p.LabReferenceNumber = value
	case PatientPackage:
		p.PackageName = value
	default:
		return fmt.Errorf("%w: %s", ErrUnknownField, f)
	}

	return nil
}

// Get returns the value of field f on p.
func (f PatientField) Get(p PatientRecord) string {
	switch f {
	case PatientName:
		return p.Name
	case PatientAge:
		return p.Age
	case PatientGender:
		return p.Gender
	case PatientLabReference:
		return p.LabReferenceNumber
	case PatientPackage:
		return p.PackageName
	}

	return ""
}

// TestField identifies a user-editable field of a TestRecord. Status is
// derived and has no field identifier.
type TestField int

// TestField values. The zero value is not a field.
const (
	TestName TestField = iota + 1
	TestResult
	TestUnit
	TestLow
	TestHigh
)

// TestFields lists every test field in column order.
var TestFields = []TestField{TestName, TestResult, TestUnit, TestLow, TestHigh}

func (f TestField) String() string {
	switch f {
	case TestName:
		return "name"
	case TestResult:
		return "result"
	case TestUnit:
		return "unit"
	case TestLow:
		return "low"
	case TestHigh:
		return "high"
	}

	return fmt.Sprintf("TestField(%d)", int(f))
}

// IsNumeric reports whether edits to f trigger status recomputation.
func (f TestField) IsNumeric() bool {
	return f == TestResult || f == TestLow || f == TestHigh
}

// ParseTestField maps a form or JSON key to a TestField.
func ParseTestField(key string) (TestField, error) {
	switch strings.ToLower(strings.TrimSpace(key)) {
	case "name":
		return TestName, nil
	case "result":
		return TestResult, nil
	case "unit":
		return TestUnit, nil
	case "low":
		return TestLow, nil
	case "high":
		return TestHigh, nil
	}

	return 0, fmt.Errorf("%w: test field %q", ErrUnknownField, key)
}

func (f TestField) set(t *TestRecord, value string) error {
	switch f {
	case TestName:
		t.Name = value
	case TestResult:
		t.Result = value
	case TestUnit:
		t.Unit = value
	case TestLow:
		t.Low = value
	case TestHigh:
		t.High = value
	default:
		return fmt.Errorf("%w: %s", ErrUnknownField, f)
	}

	return nil
}

// Get returns the value of field f on t.
func (f TestField) Get(t TestRecord) string {
	switch f {
	case TestName:
		return t.Name
	case TestResult:
		return t.Result
	case TestUnit:
		return t.Unit
	case TestLow:
		return t.Low
	case TestHigh:
		return t.High
	}

	return ""
}
