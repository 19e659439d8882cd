/*
 * Copyright 2025 Humaid Alqasimi
 * SPDX-License-Identifier: Apache-2.0
 */
package routes

import "errors"

var (
	errMalformedForm       = errors.New("malformed form")
	errMalformedFieldEvent = errors.New("malformed field event")
	errNoReferenceRange    = errors.New("no reference range for test")
	errResultNotNumeric    = errors.New("result is not a number")
)
