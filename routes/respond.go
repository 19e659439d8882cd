/*
 * Copyright 2025 Humaid Alqasimi
 * SPDX-License-Identifier: Apache-2.0
 */
package routes

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/flamego/flamego"
	"github.com/flamego/session"
	"github.com/google/uuid"

	"github.com/humaidq/labsight/preview"
	"github.com/humaidq/labsight/record"
	"github.com/humaidq/labsight/utils"
)

// snapshotResponse is the JSON document returned for a preview session.
type snapshotResponse struct {
	ID       string               `json:"id"`
	FileName string               `json:"fileName"`
	Source   preview.Source       `json:"source"`
	Mode     record.Mode          `json:"mode"`
	Record   record.PatientRecord `json:"record"`
	Summary  record.SummaryReport `json:"summary"`
	Update   *record.StatusUpdate `json:"update,omitempty"`
	Index    *int                 `json:"index,omitempty"`
}

func newSnapshotResponse(snap preview.Snapshot) snapshotResponse {
	return snapshotResponse{
		ID:       snap.Session.ID.String(),
		FileName: snap.Session.FileName,
		Source:   snap.Session.Source,
		Mode:     snap.Mode,
		Record:   snap.Record,
		Summary:  snap.Summary.Report(),
	}
}

// actionResult carries what a mutating handler has to report besides the
// snapshot.
type actionResult struct {
	Success string
	Warning string
	Update  *record.StatusUpdate
	Index   *int
}

func writeJSON(c flamego.Context, payload any) {
	c.ResponseWriter().Header().Set("Content-Type", "application/json")

	if err := json.NewEncoder(c.ResponseWriter()).Encode(payload); err != nil {
		logger.Error("Error encoding JSON response", "error", err)
	}
}

func writeJSONError(c flamego.Context, status int, message string) {
	c.ResponseWriter().Header().Set("Content-Type", "application/json")
	c.ResponseWriter().WriteHeader(status)

	if err := json.NewEncoder(c.ResponseWriter()).Encode(map[string]string{"error": message}); err != nil {
		logger.Error("Error encoding JSON error", "error", err)
	}
}

// wantsJSON reports whether the client asked for a JSON answer instead of a
// redirect.
func wantsJSON(c flamego.Context) bool {
	r := c.Request()

	if strings.Contains(r.Header.Get("Accept"), "application/json") {
		return true
	}

	return strings.HasPrefix(r.Header.Get("Content-Type"), "application/json")
}

// httpStatus maps a core error to the status code reported to clients.
func httpStatus(err error) int {
	switch {
	case errors.Is(err, preview.ErrSessionNotFound):
		return http.StatusNotFound
	case errors.Is(err, record.ErrInvalidState):
		return http.StatusConflict
	case errors.Is(err, record.ErrIndexOutOfRange),
		errors.Is(err, record.ErrUnknownField),
		errors.Is(err, utils.ErrReportNameRequired),
		errors.Is(err, utils.ErrUnsupportedReportType),
		errors.Is(err, utils.ErrReportNameTooLong),
		errors.Is(err, errMalformedFieldEvent),
		errors.Is(err, errNoReferenceRange),
		errors.Is(err, errResultNotNumeric):
		return http.StatusUnprocessableEntity
	case errors.Is(err, errMalformedForm):
		return http.StatusBadRequest
	case errors.Is(err, preview.ErrTooManySessions):
		return http.StatusServiceUnavailable
	}

	return http.StatusInternalServerError
}

// userMessage is the flash text shown for a failed action.
func userMessage(err error) string {
	switch {
	case errors.Is(err, preview.ErrSessionNotFound):
		return "This preview has expired or was closed"
	case errors.Is(err, record.ErrInvalidState):
		return "That action is not available in the current mode"
	case errors.Is(err, record.ErrIndexOutOfRange):
		return "That test row no longer exists"
	case errors.Is(err, record.ErrUnknownField):
		return "Unknown field"
	case errors.Is(err, utils.ErrReportNameRequired):
		return "Please choose a report file"
	case errors.Is(err, utils.ErrUnsupportedReportType):
		return "Only PDF and CSV reports are supported"
	case errors.Is(err, utils.ErrReportNameTooLong):
		return "The report file name is too long"
	case errors.Is(err, errNoReferenceRange):
		return "No reference range is known for this test"
	case errors.Is(err, errResultNotNumeric):
		return "The result is not a number"
	case errors.Is(err, errMalformedFieldEvent):
		return "Malformed field update"
	case errors.Is(err, errMalformedForm):
		return "Failed to parse form"
	case errors.Is(err, preview.ErrTooManySessions):
		return "Too many previews are open, please try again later"
	}

	return "Something went wrong"
}

func previewURL(id uuid.UUID) string {
	return "/preview/" + id.String()
}

// previewID reads the session id from the route. A malformed id cannot name
// a session, so it is reported as not found.
func previewID(c flamego.Context) (uuid.UUID, error) {
	raw := c.Param("id")

	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, fmt.Errorf("%w: %q", preview.ErrSessionNotFound, raw)
	}

	return id, nil
}

func testIndex(c flamego.Context) (int, error) {
	raw := c.Param("index")

	index, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("%w: %q", record.ErrIndexOutOfRange, raw)
	}

	return index, nil
}

func parseForm(c flamego.Context) error {
	if err := c.Request().ParseForm(); err != nil {
		return fmt.Errorf("%w: %w", errMalformedForm, err)
	}

	return nil
}

// respond finishes a mutating preview request. JSON clients get the fresh
// snapshot or an error document. Form posts get a flash message and are
// sent back to the preview page.
func respond(c flamego.Context, s session.Session, ws *preview.Workspace, id uuid.UUID, err error, result actionResult) {
	if err != nil {
		logActionError(c, err)

		if wantsJSON(c) {
			writeJSONError(c, httpStatus(err), err.Error())
			return
		}

		SetErrorFlash(s, userMessage(err))

		if errors.Is(err, preview.ErrSessionNotFound) {
			c.Redirect("/", http.StatusSeeOther)
			return
		}

		c.Redirect(previewURL(id), http.StatusSeeOther)

		return
	}

	if wantsJSON(c) {
		snap, err := ws.View(id)
		if err != nil {
			writeJSONError(c, httpStatus(err), err.Error())
			return
		}

		resp := newSnapshotResponse(snap)
		resp.Update = result.Update
		resp.Index = result.Index
		writeJSON(c, resp)

		return
	}

	switch {
	case result.Warning != "":
		SetWarningFlash(s, result.Warning)
	case result.Success != "":
		SetSuccessFlash(s, result.Success)
	}

	c.Redirect(previewURL(id), http.StatusSeeOther)
}

// logActionError logs recoverable client mistakes at warn and everything
// else at error.
func logActionError(c flamego.Context, err error) {
	fields := []interface{}{
		"method", c.Request().Method,
		"path", c.Request().URL.Path,
		"error", err,
	}

	if httpStatus(err) >= http.StatusInternalServerError {
		logger.Error("Preview action failed", fields...)
		return
	}

	logger.Warn("Preview action rejected", fields...)
}
