/*
 * Copyright 2025 Humaid Alqasimi
 * SPDX-License-Identifier: Apache-2.0
 */
package utils

import (
	"path"
	"strings"
)

// MaxReportNameLength bounds the length of an accepted report file name.
const MaxReportNameLength = 255

// ReportExtensions are the accepted report file extensions.
var ReportExtensions = []string{".pdf", ".csv"}

// ValidateReportFileName cleans an uploaded report name and checks that it
// names a PDF or CSV file. Directory components sent by some browsers are
// stripped. The cleaned base name is returned.
func ValidateReportFileName(name string) (string, error) {
	name = strings.TrimSpace(strings.ReplaceAll(name, "\\", "/"))
	if name == "" {
		return "", ErrReportNameRequired
	}

	base := path.Base(name)
	if base == "." || base == "/" {
		return "", ErrReportNameRequired
	}

	if len(base) > MaxReportNameLength {
		return "", ErrReportNameTooLong
	}

	ext := strings.ToLower(path.Ext(base))
	if strings.TrimSuffix(base, path.Ext(base)) == "" {
		return "", ErrReportNameRequired
	}

	for _, allowed := range ReportExtensions {
		if ext == allowed {
			return base, nil
		}
	}

	return "", ErrUnsupportedReportType
}
