/*
 * Copyright 2025 Humaid Alqasimi
 * SPDX-License-Identifier: Apache-2.0
 */
package utils

import "errors"

var (
	// ErrReportNameRequired is returned when no report file name was given.
	ErrReportNameRequired = errors.New("report file name is required")
	// ErrUnsupportedReportType is returned for names other than .pdf or .csv.
	ErrUnsupportedReportType = errors.New("only PDF and CSV reports are supported")
	// ErrReportNameTooLong is returned for names longer than MaxReportNameLength.
	ErrReportNameTooLong = errors.New("report file name is too long")
)
