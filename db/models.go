/*
 * Copyright 2025 Humaid Alqasimi
 * SPDX-License-Identifier: Apache-2.0
 */
package db

import (
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Gender represents biological sex for medical reference ranges
type Gender string

// Gender values represent supported biological-sex categories.
const (
	GenderMale   Gender = "Male"
	GenderFemale Gender = "Female"
	GenderUnisex Gender = "Unisex" // For ranges that don't vary by gender
)

// GenderFor maps a free-text gender to the category used for range lookups.
// Anything other than male or female looks up unisex ranges.
func GenderFor(value string) Gender {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "male", "m":
		return GenderMale
	case "female", "f":
		return GenderFemale
	}

	return GenderUnisex
}

// AgeRange represents age-based categorization for reference ranges
type AgeRange string

// AgeRange values represent supported age groups for lab ranges.
const (
	AgePediatric AgeRange = "Pediatric" // 0-17
	AgeAdult     AgeRange = "Adult"     // 18-49
	AgeMiddleAge AgeRange = "MiddleAge" // 50-64
	AgeSenior    AgeRange = "Senior"    // 65+
)

// AgeRanges lists every age range from youngest to oldest.
var AgeRanges = []AgeRange{AgePediatric, AgeAdult, AgeMiddleAge, AgeSenior}

// AgeRangeFor returns the age range category for an age in years
func AgeRangeFor(age int) AgeRange {
	switch {
	case age <= 17:
		return AgePediatric
	case age <= 49:
		return AgeAdult
	case age <= 64:
		return AgeMiddleAge
	default:
		return AgeSenior
	}
}

// ParseAge parses a free-text age in whole years, such as "44" or "44 years".
func ParseAge(value string) (int, bool) {
	fields := strings.Fields(value)
	if len(fields) == 0 {
		return 0, false
	}

	age, err := strconv.Atoi(fields[0])
	if err != nil || age < 0 || age > 150 {
		return 0, false
	}

	return age, true
}

// AgeRangeForText maps a free-text age to an age range, defaulting to adult
// when the age cannot be read.
func AgeRangeForText(value string) AgeRange {
	age, ok := ParseAge(value)
	if !ok {
		return AgeAdult
	}

	return AgeRangeFor(age)
}

// ReferenceRange represents reference and optimal ranges for a lab test
type ReferenceRange struct {
	ID           uuid.UUID `db:"id"`
	TestName     string    `db:"test_name"`
	AgeRange     AgeRange  `db:"age_range"`
	Gender       Gender    `db:"gender"`
	ReferenceMin *float64  `db:"reference_min"`
	ReferenceMax *float64  `db:"reference_max"`
	OptimalMin   *float64  `db:"optimal_min"`
	OptimalMax   *float64  `db:"optimal_max"`
	CreatedAt    time.Time `db:"created_at"`
	UpdatedAt    time.Time `db:"updated_at"`
}

// GetDisplayRange returns the range to display based on the logic:
// - If both optimal min/max missing: use reference only
// - If only optimal max set: optimal min = reference min
// - If only optimal min set: optimal max = reference max
func (r *ReferenceRange) GetDisplayRange() (refMin, refMax, optMin, optMax *float64, hasOptimal bool) {
	refMin = r.ReferenceMin
	refMax = r.ReferenceMax

	if r.OptimalMin == nil && r.OptimalMax == nil {
		return refMin, refMax, nil, nil, false
	}

	optMin = r.OptimalMin
	if optMin == nil {
		optMin = r.ReferenceMin
	}

	optMax = r.OptimalMax
	if optMax == nil {
		optMax = r.ReferenceMax
	}

	return refMin, refMax, optMin, optMax, true
}

// Bounds returns the reference bounds formatted the way a test row stores
// them. A missing bound is returned as an empty string.
func (r *ReferenceRange) Bounds() (low, high string) {
	return formatBound(r.ReferenceMin), formatBound(r.ReferenceMax)
}

func formatBound(v *float64) string {
	if v == nil {
		return ""
	}

	return strconv.FormatFloat(*v, 'f', -1, 64)
}

// LabTestCategory represents the lab package a test is reported under
type LabTestCategory string

// LabTestCategory values match the package options offered in the preview.
const (
	CategoryBloodCount LabTestCategory = "Complete Blood Count"
	CategoryMetabolic  LabTestCategory = "Comprehensive Metabolic Panel"
	CategoryLipidPanel LabTestCategory = "Lipid Panel"
	CategoryThyroid    LabTestCategory = "Thyroid Function Tests"
)

// LabTest represents a predefined medical lab test
type LabTest struct {
	Name     string
	Unit     string
	Category LabTestCategory
}

// GetPredefinedLabTests returns the tests known to the reference catalog,
// grouped by package.
func GetPredefinedLabTests() []LabTest {
	return []LabTest{
		{Name: "Hemoglobin", Unit: "g/dL", Category: CategoryBloodCount},
		{Name: "Red blood cells", Unit: "x10^12/L", Category: CategoryBloodCount},
		{Name: "White blood cells", Unit: "x10^9/L", Category: CategoryBloodCount},
		{Name: "Platelets", Unit: "x10^9/L", Category: CategoryBloodCount},
		{Name: "Hematocrit", Unit: "%", Category: CategoryBloodCount},
		{Name: "M.C.V", Unit: "fL", Category: CategoryBloodCount},

		{Name: "Glucose fasting FBS", Unit: "mg/dL", Category: CategoryMetabolic},
		{Name: "Creatinine", Unit: "mg/dL", Category: CategoryMetabolic},
		{Name: "Sodium", Unit: "mmol/L", Category: CategoryMetabolic},
		{Name: "Potassium", Unit: "mmol/L", Category: CategoryMetabolic},
		{Name: "Calcium", Unit: "mg/dL", Category: CategoryMetabolic},

		{Name: "Total Cholesterol", Unit: "mg/dL", Category: CategoryLipidPanel},
		{Name: "LDL Cholesterol", Unit: "mg/dL", Category: CategoryLipidPanel},
		{Name: "HDL Cholesterol", Unit: "mg/dL", Category: CategoryLipidPanel},
		{Name: "Triglycerides", Unit: "mg/dL", Category: CategoryLipidPanel},

		{Name: "TSH", Unit: "mIU/L", Category: CategoryThyroid},
		{Name: "Free T4", Unit: "ng/dL", Category: CategoryThyroid},
	}
}

// PredefinedTestsFor returns the predefined tests reported under a package.
func PredefinedTestsFor(category LabTestCategory) []LabTest {
	var tests []LabTest

	for _, test := range GetPredefinedLabTests() {
		if test.Category == category {
			tests = append(tests, test)
		}
	}

	return tests
}
