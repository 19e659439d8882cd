/*
 * Copyright 2025 Humaid Alqasimi
 * SPDX-License-Identifier: Apache-2.0
 */
package record

import "errors"

var (
	// ErrIndexOutOfRange is returned when a test index is not a valid
	// position in the draft. The draft is left unchanged.
	ErrIndexOutOfRange = errors.New("test index out of range")
	// ErrInvalidState is returned when an operation is not allowed in the
	// editor's current mode.
	ErrInvalidState = errors.New("operation not allowed in current mode")
	// ErrUnknownField is returned for field identifiers outside the known set.
	ErrUnknownField = errors.New("unknown field")
)
