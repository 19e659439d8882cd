/*
 * Copyright 2025 Humaid Alqasimi
 * SPDX-License-Identifier: Apache-2.0
 */
package routes

import (
	"github.com/flamego/csrf"
	"github.com/flamego/flamego"
)

// Mount registers the preview routes. Mutating routes validate the CSRF
// token, so the session and csrf middleware must already be in use.
func Mount(f *flamego.Flame) {
	f.Get("/", Home)
	f.Get("/help", Help)
	f.Post("/upload", csrf.Validate, Upload)
	f.Post("/sample", csrf.Validate, Sample)

	f.Group("/preview/{id}", func() {
		f.Get("", ViewPreview)
		f.Get("/record.json", PreviewJSON)
		f.Post("/edit", csrf.Validate, BeginEdit)
		f.Post("/toggle", csrf.Validate, ToggleEdit)
		f.Post("/save", csrf.Validate, SaveEdits)
		f.Post("/discard", csrf.Validate, DiscardEdits)
		f.Post("/patient", csrf.Validate, UpdatePatient)
		f.Post("/field", csrf.Validate, UpdateField)
		f.Post("/tests", csrf.Validate, AddTestRow)
		f.Post("/tests/{index}", csrf.Validate, UpdateTestRow)
		f.Post("/tests/{index}/delete", csrf.Validate, RemoveTestRow)
		f.Post("/tests/{index}/reference", csrf.Validate, ApplyReferenceRange)
		f.Get("/tests/{index}/chart", TestChart)
		f.Post("/close", csrf.Validate, ClosePreview)
	})
}
