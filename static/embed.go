/*
 * Copyright 2025 Humaid Alqasimi
 * SPDX-License-Identifier: Apache-2.0
 */
package static

import "embed"

// Static holds the stylesheet and the inline-edit script served at the site root.
//
//go:embed *.css *.js
var Static embed.FS
