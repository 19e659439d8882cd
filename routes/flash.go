/*
 * Copyright 2025 Humaid Alqasimi
 * SPDX-License-Identifier: Apache-2.0
 */
package routes

import (
	"encoding/gob"

	"github.com/flamego/flamego"
	"github.com/flamego/session"
	"github.com/flamego/template"
)

// FlashType selects how a flash message is styled.
type FlashType string

const (
	FlashError   FlashType = "error"
	FlashSuccess FlashType = "success"
	FlashWarning FlashType = "warning"
	FlashInfo    FlashType = "info"
)

// FlashMessage is a one-shot notice shown on the next rendered page, such
// as the outcome of an editor action after its redirect.
type FlashMessage struct {
	Type    FlashType
	Message string
}

// Role is the ARIA role for the message. Errors and warnings interrupt.
func (m FlashMessage) Role() string {
	if m.Type == FlashError || m.Type == FlashWarning {
		return "alert"
	}

	return "status"
}

func init() {
	// Postgres-backed sessions gob-encode their data.
	gob.Register(FlashMessage{})
}

func setFlash(s session.Session, typ FlashType, message string) {
	s.SetFlash(FlashMessage{Type: typ, Message: message})
}

func SetErrorFlash(s session.Session, message string)   { setFlash(s, FlashError, message) }
func SetSuccessFlash(s session.Session, message string) { setFlash(s, FlashSuccess, message) }
func SetWarningFlash(s session.Session, message string) { setFlash(s, FlashWarning, message) }
func SetInfoFlash(s session.Session, message string)    { setFlash(s, FlashInfo, message) }

// FlashInjector exposes the pending flash message to templates.
func FlashInjector() flamego.Handler {
	return func(flash session.Flash, data template.Data) {
		if msg, ok := flash.(FlashMessage); ok {
			data["Flash"] = msg
		}
	}
}
