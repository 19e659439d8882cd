/*
 * Copyright 2025 Humaid Alqasimi
 * SPDX-License-Identifier: Apache-2.0
 */
package db

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
)

// ReferenceRangeDefinition represents a reference range to be synced to the database
type ReferenceRangeDefinition struct {
	TestName     string
	AgeRange     AgeRange
	Gender       Gender
	ReferenceMin *float64
	ReferenceMax *float64
	OptimalMin   *float64
	OptimalMax   *float64
}

func ptr(f float64) *float64 {
	return &f
}

// band is one row of the catalog for a single test.
type band struct {
	ages           []AgeRange
	gender         Gender
	refMin, refMax *float64
	optMin, optMax *float64
}

var adultAges = []AgeRange{AgeAdult, AgeMiddleAge, AgeSenior}

func expand(testName string, bands ...band) []ReferenceRangeDefinition {
	var defs []ReferenceRangeDefinition

	for _, b := range bands {
		for _, age := range b.ages {
			defs = append(defs, ReferenceRangeDefinition{
				TestName:     testName,
				AgeRange:     age,
				Gender:       b.gender,
				ReferenceMin: b.refMin,
				ReferenceMax: b.refMax,
				OptimalMin:   b.optMin,
				OptimalMax:   b.optMax,
			})
		}
	}

	return defs
}

// GetReferenceRangeDefinitions returns all reference ranges to be synced to the database
// This is the authoritative source of truth for reference ranges
func GetReferenceRangeDefinitions() []ReferenceRangeDefinition {
	var defs []ReferenceRangeDefinition

	// Complete blood count
	defs = append(defs, expand("Hemoglobin",
		band{ages: []AgeRange{AgePediatric}, gender: GenderUnisex, refMin: ptr(11.0), refMax: ptr(15.5)},
		band{ages: adultAges, gender: GenderMale, refMin: ptr(13.5), refMax: ptr(17.5), optMin: ptr(14.0), optMax: ptr(16.0)},
		band{ages: adultAges, gender: GenderFemale, refMin: ptr(12.0), refMax: ptr(15.5), optMin: ptr(12.5), optMax: ptr(14.5)},
	)...)
	defs = append(defs, expand("Red blood cells",
		band{ages: []AgeRange{AgePediatric}, gender: GenderUnisex, refMin: ptr(4.0), refMax: ptr(5.5)},
		band{ages: adultAges, gender: GenderMale, refMin: ptr(4.5), refMax: ptr(5.5), optMin: ptr(4.5), optMax: ptr(5.4)},
		band{ages: adultAges, gender: GenderFemale, refMin: ptr(3.9), refMax: ptr(5.1), optMin: ptr(4.0), optMax: ptr(4.9)},
	)...)
	defs = append(defs, expand("White blood cells",
		band{ages: []AgeRange{AgePediatric}, gender: GenderUnisex, refMin: ptr(4.5), refMax: ptr(13.0)},
		band{ages: []AgeRange{AgeAdult, AgeMiddleAge}, gender: GenderUnisex, refMin: ptr(4.0), refMax: ptr(11.0), optMin: ptr(5.0), optMax: ptr(8.0)},
		band{ages: []AgeRange{AgeSenior}, gender: GenderUnisex, refMin: ptr(4.0), refMax: ptr(10.5), optMin: ptr(4.5), optMax: ptr(8.0)},
	)...)
	defs = append(defs, expand("Platelets",
		band{ages: AgeRanges, gender: GenderUnisex, refMin: ptr(150), refMax: ptr(450), optMin: ptr(175), optMax: ptr(350)},
	)...)
	defs = append(defs, expand("Hematocrit",
		band{ages: []AgeRange{AgePediatric}, gender: GenderUnisex, refMin: ptr(33), refMax: ptr(45)},
		band{ages: adultAges, gender: GenderMale, refMin: ptr(40.0), refMax: ptr(52.0)},
		band{ages: adultAges, gender: GenderFemale, refMin: ptr(36.0), refMax: ptr(46.0)},
	)...)
	defs = append(defs, expand("M.C.V",
		band{ages: AgeRanges, gender: GenderUnisex, refMin: ptr(80), refMax: ptr(100), optMin: ptr(82), optMax: ptr(92)},
	)...)

	// Metabolic panel
	defs = append(defs, expand("Glucose fasting FBS",
		band{ages: AgeRanges, gender: GenderUnisex, refMin: ptr(70), refMax: ptr(99), optMin: ptr(75), optMax: ptr(90)},
	)...)
	defs = append(defs, expand("Creatinine",
		band{ages: []AgeRange{AgePediatric}, gender: GenderUnisex, refMin: ptr(0.3), refMax: ptr(0.9)},
		band{ages: adultAges, gender: GenderMale, refMin: ptr(0.74), refMax: ptr(1.35)},
		band{ages: adultAges, gender: GenderFemale, refMin: ptr(0.59), refMax: ptr(1.04)},
	)...)
	defs = append(defs, expand("Sodium",
		band{ages: AgeRanges, gender: GenderUnisex, refMin: ptr(135), refMax: ptr(145)},
	)...)
	defs = append(defs, expand("Potassium",
		band{ages: AgeRanges, gender: GenderUnisex, refMin: ptr(3.5), refMax: ptr(5.1)},
	)...)
	defs = append(defs, expand("Calcium",
		band{ages: AgeRanges, gender: GenderUnisex, refMin: ptr(8.6), refMax: ptr(10.3)},
	)...)

	// Lipid panel
	defs = append(defs, expand("Total Cholesterol",
		band{ages: []AgeRange{AgePediatric}, gender: GenderUnisex, refMax: ptr(170)},
		band{ages: adultAges, gender: GenderUnisex, refMax: ptr(200), optMax: ptr(180)},
	)...)
	defs = append(defs, expand("LDL Cholesterol",
		band{ages: []AgeRange{AgePediatric}, gender: GenderUnisex, refMax: ptr(110)},
		band{ages: adultAges, gender: GenderUnisex, refMax: ptr(130), optMax: ptr(100)},
	)...)
	defs = append(defs, expand("HDL Cholesterol",
		band{ages: []AgeRange{AgePediatric}, gender: GenderUnisex, refMin: ptr(45)},
		band{ages: adultAges, gender: GenderMale, refMin: ptr(40), optMin: ptr(50)},
		band{ages: adultAges, gender: GenderFemale, refMin: ptr(50), optMin: ptr(60)},
	)...)
	defs = append(defs, expand("Triglycerides",
		band{ages: []AgeRange{AgePediatric}, gender: GenderUnisex, refMax: ptr(90)},
		band{ages: adultAges, gender: GenderUnisex, refMax: ptr(150), optMax: ptr(100)},
	)...)

	// Thyroid
	defs = append(defs, expand("TSH",
		band{ages: []AgeRange{AgePediatric}, gender: GenderUnisex, refMin: ptr(0.7), refMax: ptr(5.7)},
		band{ages: adultAges, gender: GenderUnisex, refMin: ptr(0.4), refMax: ptr(4.5), optMin: ptr(1.0), optMax: ptr(2.5)},
	)...)
	defs = append(defs, expand("Free T4",
		band{ages: AgeRanges, gender: GenderUnisex, refMin: ptr(0.8), refMax: ptr(1.8)},
	)...)

	return defs
}

// testNameAliases maps spellings seen on lab reports to catalog names.
var testNameAliases = map[string]string{
	"haemoglobin":       "Hemoglobin",
	"hemoglobin":        "Hemoglobin",
	"hb":                "Hemoglobin",
	"hgb":               "Hemoglobin",
	"rbc":               "Red blood cells",
	"rbc count":         "Red blood cells",
	"red blood cells":   "Red blood cells",
	"wbc":               "White blood cells",
	"wbc count":         "White blood cells",
	"white blood cells": "White blood cells",
	"platelets":         "Platelets",
	"platelet count":    "Platelets",
	"plt":               "Platelets",
	"hematocrit":        "Hematocrit",
	"haematocrit":       "Hematocrit",
	"hct":               "Hematocrit",
	"mcv":               "M.C.V",
	"m.c.v":             "M.C.V",
	"glucose":           "Glucose fasting FBS",
	"fasting glucose":   "Glucose fasting FBS",
	"fbs":               "Glucose fasting FBS",
	"cholesterol":       "Total Cholesterol",
	"ldl":               "LDL Cholesterol",
	"hdl":               "HDL Cholesterol",
	"tg":                "Triglycerides",
	"ft4":               "Free T4",
	"free thyroxine":    "Free T4",
}

// CanonicalTestName folds a test name as written on a report to the name
// used by the reference catalog. Unknown names are returned trimmed.
func CanonicalTestName(name string) string {
	trimmed := strings.Join(strings.Fields(name), " ")

	if canonical, ok := testNameAliases[strings.ToLower(trimmed)]; ok {
		return canonical
	}

	for _, test := range GetPredefinedLabTests() {
		if strings.EqualFold(test.Name, trimmed) {
			return test.Name
		}
	}

	return trimmed
}

// SyncReferenceRanges synchronizes reference ranges from Go code to the database
// This is called on application startup to ensure database has latest ranges
func SyncReferenceRanges(ctx context.Context) error {
	if pool == nil {
		return ErrDatabaseConnectionNotInitialized
	}

	definitions := GetReferenceRangeDefinitions()
	logger.Info("Syncing reference range definitions", "count", len(definitions))

	query := `
		INSERT INTO reference_ranges (test_name, age_range, gender, reference_min, reference_max, optimal_min, optimal_max)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (test_name, age_range, gender)
		DO UPDATE SET
			reference_min = EXCLUDED.reference_min,
			reference_max = EXCLUDED.reference_max,
			optimal_min = EXCLUDED.optimal_min,
			optimal_max = EXCLUDED.optimal_max,
			updated_at = now()
	`

	batch := &pgx.Batch{}
	for _, def := range definitions {
		batch.Queue(query,
			def.TestName, def.AgeRange, def.Gender,
			def.ReferenceMin, def.ReferenceMax,
			def.OptimalMin, def.OptimalMax,
		)
	}

	results := pool.SendBatch(ctx, batch)

	for _, def := range definitions {
		if _, err := results.Exec(); err != nil {
			_ = results.Close()
			return fmt.Errorf("failed to sync reference range for %s/%s/%s: %w",
				def.TestName, def.AgeRange, def.Gender, err)
		}
	}

	if err := results.Close(); err != nil {
		return fmt.Errorf("failed to sync reference ranges: %w", err)
	}

	logger.Info("Synced reference ranges", "count", len(definitions))

	return nil
}

// GetReferenceRange retrieves the reference range for a given test, age, and gender
func GetReferenceRange(ctx context.Context, testName string, ageRange AgeRange, gender Gender) (*ReferenceRange, error) {
	if pool == nil {
		return nil, ErrDatabaseConnectionNotInitialized
	}

	query := `
		SELECT id, test_name, age_range, gender, reference_min, reference_max, optimal_min, optimal_max, created_at, updated_at
		FROM reference_ranges
		WHERE test_name = $1 AND age_range = $2 AND gender = $3
	`

	for _, g := range lookupGenders(gender) {
		var rr ReferenceRange

		err := pool.QueryRow(ctx, query, testName, ageRange, g).Scan(
			&rr.ID, &rr.TestName, &rr.AgeRange, &rr.Gender,
			&rr.ReferenceMin, &rr.ReferenceMax,
			&rr.OptimalMin, &rr.OptimalMax,
			&rr.CreatedAt, &rr.UpdatedAt,
		)
		if err == nil {
			return &rr, nil
		}

		if !errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("failed to get reference range: %w", err)
		}
	}

	return nil, nil //nolint:nilnil // Missing reference ranges are expected for some tests.
}

// LookupReferenceRange finds the range for a test as named on a report. It
// reads the database when one is connected and the in-code catalog otherwise.
// A nil range with a nil error means the catalog has no entry.
func LookupReferenceRange(ctx context.Context, testName string, ageRange AgeRange, gender Gender) (*ReferenceRange, error) {
	canonical := CanonicalTestName(testName)
	if canonical == "" {
		return nil, nil //nolint:nilnil // Unnamed rows have no range.
	}

	if Enabled() {
		return GetReferenceRange(ctx, canonical, ageRange, gender)
	}

	definitions := GetReferenceRangeDefinitions()

	for _, g := range lookupGenders(gender) {
		for _, def := range definitions {
			if def.TestName == canonical && def.AgeRange == ageRange && def.Gender == g {
				return &ReferenceRange{
					TestName:     def.TestName,
					AgeRange:     def.AgeRange,
					Gender:       def.Gender,
					ReferenceMin: def.ReferenceMin,
					ReferenceMax: def.ReferenceMax,
					OptimalMin:   def.OptimalMin,
					OptimalMax:   def.OptimalMax,
				}, nil
			}
		}
	}

	return nil, nil //nolint:nilnil // Missing reference ranges are expected for some tests.
}

// lookupGenders is the order ranges are tried in: gender-specific first,
// then unisex.
func lookupGenders(gender Gender) []Gender {
	if gender == GenderUnisex || gender == "" {
		return []Gender{GenderUnisex}
	}

	return []Gender{gender, GenderUnisex}
}
