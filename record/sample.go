/*
 * Copyright 2025 Humaid Alqasimi
 * SPDX-License-Identifier: Apache-2.0
 */
package record

// SampleFileName is the report name used when the sample report is loaded.
const SampleFileName = "LabReport-Sample.pdf"

// GenderOptions are the choices offered for the patient gender field.
var GenderOptions = []string{"Male", "Female", "Other"}

// PackageOptions are the lab packages offered for the package field.
var PackageOptions = []string{
	"Complete Blood Count",
	"Comprehensive Metabolic Panel",
	"Lipid Panel",
	"Thyroid Function Tests",
}

// SampleRecord returns the complete blood count used for previews until a
// report can be read.
func SampleRecord() PatientRecord {
	return PatientRecord{
		Name:               "Alkhaldi Abdullah Saud",
		Age:                "44",
		Gender:             "Male",
		LabReferenceNumber: "2966",
		PackageName:        "Complete Blood Count",
		Tests: []TestRecord{
			{Name: "Haemoglobin", Result: "15.6", Unit: "g/dL", Low: "13.5", High: "17.5", Status: StatusNormal},
			{Name: "RBC Count", Result: "5.77", Unit: "x10^12/L", Low: "4.5", High: "5.5", Status: StatusHigh},
			{Name: "WBC Count", Result: "6.2", Unit: "x10^9/L", Low: "4.0", High: "11.0", Status: StatusNormal},
			{Name: "Platelets", Result: "145", Unit: "x10^9/L", Low: "150", High: "450", Status: StatusLow},
			{Name: "Hematocrit", Result: "45.2", Unit: "%", Low: "40.0", High: "52.0", Status: StatusNormal},
		},
	}
}
