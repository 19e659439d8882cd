/*
 * Copyright 2025 Humaid Alqasimi
 * SPDX-License-Identifier: Apache-2.0
 */
package record

// TestRecord is a single lab measurement. Result, Low and High are kept as
// text so partially typed values survive editing.
type TestRecord struct {
	Name   string `json:"name"`
	Result string `json:"result"`
	Unit   string `json:"unit"`
	Low    string `json:"low"`
	High   string `json:"high"`
	Status Status `json:"status"`
}

// PatientRecord holds patient identity fields and the ordered list of tests.
// Test order is display order; names need not be unique.
type PatientRecord struct {
	Name               string       `json:"name"`
	Age                string       `json:"age"`
	Gender             string       `json:"gender"`
	LabReferenceNumber string       `json:"labRef"`
	PackageName        string       `json:"packageName"`
	Tests              []TestRecord `json:"tests"`
}

// Clone returns a deep copy of the record.
func (p PatientRecord) Clone() PatientRecord {
	c := p
	if p.Tests != nil {
		c.Tests = make([]TestRecord, len(p.Tests))
		copy(c.Tests, p.Tests)
	}

	return c
}

// Reclassify returns a copy of the record with every test's status derived
// from its bounds. Tests whose numbers do not parse keep their status.
func (p PatientRecord) Reclassify() PatientRecord {
	c := p.Clone()
	for i := range c.Tests {
		if status, ok := classifyTest(c.Tests[i]); ok {
			c.Tests[i].Status = status
		}
	}

	return c
}

// Summary counts the tests of a record by status.
type Summary struct {
	Total  int
	Normal int
	Low    int
	High   int
}

// OutOfRange is the number of tests classified low or high.
func (s Summary) OutOfRange() int {
	return s.Low + s.High
}

// SummaryReport is the JSON form of a Summary shared by the web API and the
// command line.
type SummaryReport struct {
	Total      int `json:"total"`
	Normal     int `json:"normal"`
	Low        int `json:"low"`
	High       int `json:"high"`
	OutOfRange int `json:"outOfRange"`
}

// Report returns s in its JSON form.
func (s Summary) Report() SummaryReport {
	return SummaryReport{
		Total:      s.Total,
		Normal:     s.Normal,
		Low:        s.Low,
		High:       s.High,
		OutOfRange: s.OutOfRange(),
	}
}

// Summarize counts the tests in p by status.
func Summarize(p PatientRecord) Summary {
	s := Summary{Total: len(p.Tests)}

	for _, t := range p.Tests {
		switch t.Status {
		case StatusLow:
			s.Low++
		case StatusHigh:
			s.High++
		default:
			s.Normal++
		}
	}

	return s
}
