/*
 * Copyright 2025 Humaid Alqasimi
 * SPDX-License-Identifier: Apache-2.0
 */
package routes

import (
	"errors"
	"fmt"
	htmltemplate "html/template"
	"net/http"
	"strings"

	"github.com/flamego/flamego"
	"github.com/flamego/session"
	"github.com/flamego/template"

	"github.com/humaidq/labsight/db"
	"github.com/humaidq/labsight/preview"
	"github.com/humaidq/labsight/record"
	"github.com/humaidq/labsight/templates"
	"github.com/humaidq/labsight/utils"
)

// maxUploadMemory bounds the multipart form kept in memory. Only the file
// name of an upload is used.
const maxUploadMemory = 10 << 20

// testRow is a test record prepared for the preview table.
type testRow struct {
	Index int
	Test  record.TestRecord
	Class string
	Label string
}

// statusClass maps a status to its CSS class: danger for low, warning for
// high and success for normal.
func statusClass(status record.Status) string {
	switch status {
	case record.StatusLow:
		return "status-low"
	case record.StatusHigh:
		return "status-high"
	case record.StatusNormal:
		return "status-normal"
	}

	return "status-unknown"
}

func statusLabel(status record.Status) string {
	switch status {
	case record.StatusLow:
		return "Low"
	case record.StatusHigh:
		return "High"
	case record.StatusNormal:
		return "Normal"
	}

	return "Unknown"
}

func testRows(rec record.PatientRecord) []testRow {
	rows := make([]testRow, 0, len(rec.Tests))

	for i, t := range rec.Tests {
		rows = append(rows, testRow{
			Index: i,
			Test:  t,
			Class: statusClass(t.Status),
			Label: statusLabel(t.Status),
		})
	}

	return rows
}

// Home renders the upload page.
func Home(t template.Template, data template.Data) {
	data["Title"] = "Upload a lab report"
	data["Extensions"] = strings.Join(utils.ReportExtensions, ",")

	t.HTML(http.StatusOK, "upload")
}

// Help renders the embedded org-mode guide.
func Help(t template.Template, data template.Data) {
	page, err := utils.RenderOrgPage(templates.HelpOrg)
	if err != nil {
		logger.Error("Error rendering help page", "error", err)
		data["Error"] = "Failed to render help page"
		t.HTML(http.StatusInternalServerError, "help")

		return
	}

	data["Title"] = page.Title
	data["Content"] = htmltemplate.HTML(page.HTML) //nolint:gosec // Rendered from embedded org content.

	t.HTML(http.StatusOK, "help")
}

// Upload opens a preview for an uploaded report. The name comes from the
// multipart file part, or from the file_name field when no file is attached.
func Upload(c flamego.Context, s session.Session, ws *preview.Workspace) {
	name, err := uploadedFileName(c.Request().Request)

	var sess preview.Session
	if err == nil {
		sess, err = ws.OpenUpload(name)
	}

	if err != nil {
		openFailed(c, s, err)
		return
	}

	respond(c, s, ws, sess.ID, nil, actionResult{Success: "Loaded " + sess.FileName})
}

// openFailed reports a preview that could not be opened. There is no page
// to return to, so form posts go back to the upload page.
func openFailed(c flamego.Context, s session.Session, err error) {
	logActionError(c, err)

	if wantsJSON(c) {
		writeJSONError(c, httpStatus(err), err.Error())
		return
	}

	SetErrorFlash(s, userMessage(err))
	c.Redirect("/", http.StatusSeeOther)
}

func uploadedFileName(r *http.Request) (string, error) {
	if !strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/form-data") {
		if err := r.ParseForm(); err != nil {
			return "", fmt.Errorf("%w: %w", errMalformedForm, err)
		}

		return r.PostForm.Get("file_name"), nil
	}

	if err := r.ParseMultipartForm(maxUploadMemory); err != nil {
		return "", fmt.Errorf("%w: %w", errMalformedForm, err)
	}

	defer func() {
		if err := r.MultipartForm.RemoveAll(); err != nil {
			logger.Warn("Failed to remove multipart temp files", "error", err)
		}
	}()

	file, header, err := r.FormFile("file")
	if errors.Is(err, http.ErrMissingFile) {
		return r.FormValue("file_name"), nil
	}

	if err != nil {
		return "", fmt.Errorf("%w: %w", errMalformedForm, err)
	}

	if err := file.Close(); err != nil {
		logger.Warn("Failed to close uploaded file", "error", err)
	}

	return header.Filename, nil
}

// Sample opens a preview of the built-in sample report.
func Sample(c flamego.Context, s session.Session, ws *preview.Workspace) {
	sess, err := ws.OpenSample()
	if err != nil {
		openFailed(c, s, err)
		return
	}

	respond(c, s, ws, sess.ID, nil, actionResult{Success: "Loaded the sample report"})
}

// ViewPreview renders the record: the draft while editing, the committed
// record otherwise.
func ViewPreview(c flamego.Context, t template.Template, data template.Data, ws *preview.Workspace) {
	id, err := previewID(c)

	var snap preview.Snapshot
	if err == nil {
		snap, err = ws.View(id)
	}

	if err != nil {
		logActionError(c, err)
		data["Title"] = "Preview not found"
		t.HTML(http.StatusNotFound, "not_found")

		return
	}

	data["Title"] = snap.Session.FileName
	data["Preview"] = snap
	data["PreviewURL"] = previewURL(id)
	data["Editing"] = snap.Mode == record.ModeEditing
	data["Rows"] = testRows(snap.Record)
	data["PatientFields"] = patientFieldRows(snap.Record)
	data["GenderOptions"] = selectOptions(record.GenderOptions, snap.Record.Gender)
	data["PackageOptions"] = selectOptions(record.PackageOptions, snap.Record.PackageName)
	data["TestSuggestions"] = testSuggestions(snap.Record.PackageName)

	t.HTML(http.StatusOK, "preview")
}

// patientFieldRow is one labelled patient field in the preview header.
type patientFieldRow struct {
	Key   string
	Label string
	Value string
}

func patientFieldRows(rec record.PatientRecord) []patientFieldRow {
	labels := map[record.PatientField]string{
		record.PatientName:         "Patient name",
		record.PatientAge:          "Age",
		record.PatientGender:       "Gender",
		record.PatientLabReference: "Lab reference",
		record.PatientPackage:      "Package",
	}

	rows := make([]patientFieldRow, 0, len(record.PatientFields))
	for _, field := range record.PatientFields {
		rows = append(rows, patientFieldRow{
			Key:   field.String(),
			Label: labels[field],
			Value: field.Get(rec),
		})
	}

	return rows
}

// PreviewJSON returns the snapshot of a session.
func PreviewJSON(c flamego.Context, ws *preview.Workspace) {
	id, err := previewID(c)

	var snap preview.Snapshot
	if err == nil {
		snap, err = ws.View(id)
	}

	if err != nil {
		logActionError(c, err)
		writeJSONError(c, httpStatus(err), err.Error())

		return
	}

	writeJSON(c, newSnapshotResponse(snap))
}

// ClosePreview drops the session and any unsaved draft.
func ClosePreview(c flamego.Context, s session.Session, ws *preview.Workspace) {
	id, err := previewID(c)
	if err == nil {
		err = ws.Close(id)
	}

	if err != nil {
		respond(c, s, ws, id, err, actionResult{})
		return
	}

	if wantsJSON(c) {
		c.ResponseWriter().WriteHeader(http.StatusNoContent)
		return
	}

	SetInfoFlash(s, "Preview closed")
	c.Redirect("/", http.StatusSeeOther)
}

// selectOption is one choice of a select field.
type selectOption struct {
	Value    string
	Selected bool
}

// selectOptions lists choices with current selected. A current value outside
// the fixed choices is offered first so saving the form keeps it.
func selectOptions(choices []string, current string) []selectOption {
	options := make([]selectOption, 0, len(choices)+1)
	found := false

	for _, choice := range choices {
		selected := choice == current
		found = found || selected
		options = append(options, selectOption{Value: choice, Selected: selected})
	}

	if !found {
		options = append([]selectOption{{Value: current, Selected: true}}, options...)
	}

	return options
}

// testSuggestions are the catalog test names offered for a row's name. The
// package's own tests come first, followed by every other catalog test.
func testSuggestions(packageName string) []string {
	var names []string

	seen := make(map[string]bool)

	for _, test := range db.PredefinedTestsFor(db.LabTestCategory(packageName)) {
		names = append(names, test.Name)
		seen[test.Name] = true
	}

	for _, test := range db.GetPredefinedLabTests() {
		if !seen[test.Name] {
			names = append(names, test.Name)
		}
	}

	return names
}
