// SPDX-FileCopyrightText: 2025 Humaid Alqasimi
// SPDX-License-Identifier: Apache-2.0

package utils

import (
	"errors"
	"strings"
	"testing"
)

func TestValidateReportFileName(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		in      string
		want    string
		wantErr error
	}{
		{name: "pdf", in: "LabReport-Sample.pdf", want: "LabReport-Sample.pdf"},
		{name: "csv upper case", in: "results.CSV", want: "results.CSV"},
		{name: "windows path", in: `C:\Users\me\cbc.pdf`, want: "cbc.pdf"},
		{name: "unix path", in: "/tmp/reports/cbc.csv", want: "cbc.csv"},
		{name: "surrounding space", in: "  cbc.pdf ", want: "cbc.pdf"},
		{name: "empty", in: "", wantErr: ErrReportNameRequired},
		{name: "only extension", in: ".pdf", wantErr: ErrReportNameRequired},
		{name: "directory", in: "reports/", wantErr: ErrUnsupportedReportType},
		{name: "image", in: "scan.png", wantErr: ErrUnsupportedReportType},
		{name: "double extension", in: "report.pdf.exe", wantErr: ErrUnsupportedReportType},
		{name: "too long", in: strings.Repeat("a", MaxReportNameLength) + ".pdf", wantErr: ErrReportNameTooLong},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got, err := ValidateReportFileName(tt.in)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("expected %v, got %v (%q)", tt.wantErr, err, got)
				}

				return
			}

			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}

			if got != tt.want {
				t.Fatalf("got %q, want %q", got, tt.want)
			}
		})
	}
}
