package commands

import (
	"bytes"
	"context"
	"encoding/json"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/thoreinstein/nsm/internal/doctor"
	"github.com/thoreinstein/nsm/internal/errors"
)

type stubCheck struct {
	name   string
	status doctor.Severity
	msg    string
}

func (c stubCheck) Name() string     { return c.name }
func (c stubCheck) Category() string { return "test" }
func (c stubCheck) Run(context.Context) *doctor.CheckResult {
	return &doctor.CheckResult{Name: c.name, Category: "test", Status: c.status, Message: c.msg, FixHint: "do a thing"}
}

func resetDoctorFlags(t *testing.T) {
	t.Helper()
	t.Cleanup(func() {
		doctorJSON, doctorVerbose, doctorFix, doctorRedact = false, false, false, false
	})
}

func TestDoctor_ExitCodes(t *testing.T) {
	tests := []struct {
		name     string
		checks   []doctor.Check
		wantCode int
	}{
		{"all pass", []doctor.Check{stubCheck{"a", doctor.SeverityPass, "ok"}}, errors.ExitSuccess},
		{"warning", []doctor.Check{stubCheck{"a", doctor.SeverityWarning, "hmm"}}, errors.ExitUser},
		{"error", []doctor.Check{
			stubCheck{"a", doctor.SeverityWarning, "hmm"},
			stubCheck{"b", doctor.SeverityError, "bad"},
		}, errors.ExitSystem},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resetDoctorFlags(t)
			var buf bytes.Buffer
			err := runDoctorWithWriter(t.Context(), &buf, doctor.NewRunner(tt.checks...))
			assert.Equal(t, tt.wantCode, Report(&bytes.Buffer{}, err))
			assert.Contains(t, buf.String(), "Summary:")
		})
	}
}

func TestDoctor_TextHidesPassesByDefault(t *testing.T) {
	resetDoctorFlags(t)
	runner := doctor.NewRunner(
		stubCheck{"fine", doctor.SeverityPass, "all good"},
		stubCheck{"meh", doctor.SeverityWarning, "careful"},
	)

	var buf bytes.Buffer
	_ = runDoctorWithWriter(t.Context(), &buf, runner)
	assert.NotContains(t, buf.String(), "all good")
	assert.Contains(t, buf.String(), "[test] meh: careful")
	assert.Contains(t, buf.String(), "hint: do a thing")

	doctorVerbose = true
	buf.Reset()
	_ = runDoctorWithWriter(t.Context(), &buf, runner)
	assert.Contains(t, buf.String(), "all good")
}

func TestDoctor_JSONRedacted(t *testing.T) {
	resetDoctorFlags(t)
	home := t.TempDir()
	t.Setenv("HOME", home)
	doctorJSON, doctorRedact = true, true

	runner := doctor.NewRunner(stubCheck{"p", doctor.SeverityInfo, "saves at " + filepath.Join(home, "saves")})
	var buf bytes.Buffer
	require.NoError(t, runDoctorWithWriter(t.Context(), &buf, runner))

	var report struct {
		Results []struct {
			Status  string `json:"status"`
			Message string `json:"message"`
		} `json:"results"`
	}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &report))
	require.Len(t, report.Results, 1)
	assert.Equal(t, "info", report.Results[0].Status)
	assert.NotContains(t, report.Results[0].Message, home)
}

func TestDoctor_FixWritesSettings(t *testing.T) {
	resetDoctorFlags(t)
	useSaves(t)
	doctorFix = true

	var buf bytes.Buffer
	runner := doctor.NewRunner(doctor.NewSettingsFileCheck(settingsPath()))
	_ = runDoctorWithWriter(t.Context(), &buf, runner)

	assert.FileExists(t, settingsPath())
	assert.Contains(t, buf.String(), "fixed:")
}
