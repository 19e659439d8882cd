/*
 * Copyright 2025 Humaid Alqasimi
 * SPDX-License-Identifier: Apache-2.0
 */
package preview

import "errors"

var (
	// ErrSessionNotFound is returned for unknown or expired preview sessions.
	ErrSessionNotFound = errors.New("preview session not found")
	// ErrTooManySessions is returned when the workspace is full.
	ErrTooManySessions = errors.New("too many open preview sessions")
)
