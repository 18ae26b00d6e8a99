package cli

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func jsonFormatter() (*OutputFormatter, *bytes.Buffer) {
	buf := &bytes.Buffer{}
	return &OutputFormatter{Format: "json", Writer: buf}, buf
}

func envelope(t *testing.T, buf *bytes.Buffer) CLIResponse {
	t.Helper()
	var resp CLIResponse
	require.NoError(t, json.Unmarshal(buf.Bytes(), &resp), buf.String())
	return resp
}

func TestOutputFormatter_JSONEnvelopes(t *testing.T) {
	tests := []struct {
		name     string
		write    func(*OutputFormatter) error
		status   string
		code     string
		wantData bool
	}{
		{
			name:     "success",
			write:    func(f *OutputFormatter) error { return f.Success(map[string]int{"facts": 12}) },
			status:   "ok",
			wantData: true,
		},
		{
			name:   "error",
			write:  func(f *OutputFormatter) error { return f.Error(ErrCodeLoadFailed, "problem file failed to compile", nil) },
			status: "error",
			code:   ErrCodeLoadFailed,
		},
		{
			name: "failure keeps its result",
			write: func(f *OutputFormatter) error {
				return f.Failure(ErrCodeNotProved, "1 of 2 goal(s) not proved", map[string]int{"unproved": 1})
			},
			status:   "error",
			code:     ErrCodeNotProved,
			wantData: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f, buf := jsonFormatter()
			require.NoError(t, tt.write(f))

			resp := envelope(t, buf)
			assert.Equal(t, tt.status, resp.Status)
			assert.Equal(t, tt.wantData, resp.Data != nil)
			if tt.code == "" {
				assert.Nil(t, resp.Error)
				return
			}
			require.NotNil(t, resp.Error)
			assert.Equal(t, tt.code, resp.Error.Code)
		})
	}
}

func TestOutputFormatter_JSONModeSuppressesText(t *testing.T) {
	f, buf := jsonFormatter()
	f.Printf("Proving %s\n", "orthocenter")
	assert.Empty(t, buf.String())
}

func TestOutputFormatter_TextFailureWritesNothing(t *testing.T) {
	buf := &bytes.Buffer{}
	f := &OutputFormatter{Format: "text", Writer: buf}

	require.NoError(t, f.Failure(ErrCodeNotProved, "not proved", nil))
	f.Printf("summary\n")
	assert.Equal(t, "summary\n", buf.String())
}

func TestOutputFormatter_TextError(t *testing.T) {
	details := map[string]string{"file": "problem.cue"}

	for _, verbose := range []bool{false, true} {
		t.Run(fmt.Sprintf("verbose=%v", verbose), func(t *testing.T) {
			buf := &bytes.Buffer{}
			f := &OutputFormatter{Format: "text", Writer: buf, Verbose: verbose}

			require.NoError(t, f.Error(ErrCodeJournal, "journal locked", details))
			assert.Contains(t, buf.String(), "Error ["+ErrCodeJournal+"]: journal locked")
			if verbose {
				assert.Contains(t, buf.String(), "Details:")
			} else {
				assert.NotContains(t, buf.String(), "Details:")
			}
		})
	}
}

func TestOutputFormatter_VerboseLog(t *testing.T) {
	tests := []struct {
		name    string
		verbose bool
		errOut  bool
		stdout  string
		stderr  string
	}{
		{"disabled", false, true, "", ""},
		{"to stderr", true, true, "", "Proving orthocenter\n"},
		{"falls back to writer", true, false, "Proving orthocenter\n", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			stdout, stderr := &bytes.Buffer{}, &bytes.Buffer{}
			f := &OutputFormatter{Format: "json", Writer: stdout, Verbose: tt.verbose}
			if tt.errOut {
				f.ErrWriter = stderr
			}

			f.VerboseLog("Proving %s", "orthocenter")
			assert.Equal(t, tt.stdout, stdout.String())
			assert.Equal(t, tt.stderr, stderr.String())
		})
	}
}

func TestOutputFormatter_FailLoadError(t *testing.T) {
	path := writeFile(t, t.TempDir(), "bad.cue", `problem: bad: {
	hypotheses: [
		"coll(A,B)",
	]
}
`)
	_, loadErr := LoadProblemFile(path, "")
	require.Error(t, loadErr)

	f, buf := jsonFormatter()
	err := f.fail(ExitCommandError, loadErr)
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.ErrorIs(t, err, loadErr)
	assert.Equal(t, loadErr.Error(), err.Error())

	resp := envelope(t, buf)
	require.NotNil(t, resp.Error)
	assert.Equal(t, ErrCodeLoadFailed, resp.Error.Code)
	assert.Contains(t, resp.Error.Message, "hypotheses[0]")
	details, ok := resp.Error.Details.(map[string]any)
	require.True(t, ok)
	assert.Equal(t, float64(3), details["line"])
}

func TestOutputFormatter_FailPlainError(t *testing.T) {
	buf := &bytes.Buffer{}
	f := &OutputFormatter{Format: "text", Writer: buf}

	err := f.fail(ExitCommandError, errors.New("boom"))
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Equal(t, "E001: boom", err.Error())
	assert.Contains(t, buf.String(), "Error [E001]: boom")
}

func TestGetExitCode(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"nil", nil, ExitSuccess},
		{"uncoded", errors.New("x"), ExitFailure},
		{"not proved", NewExitError(ExitFailure, "goal not proved"), ExitFailure},
		{"bad path", NewExitError(ExitCommandError, "bad path"), ExitCommandError},
		{"wrapped", fmt.Errorf("outer: %w", NewExitError(ExitCommandError, "bad path")), ExitCommandError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, GetExitCode(tt.err))
		})
	}
}

func TestExitError_Message(t *testing.T) {
	cause := errors.New("disk full")

	tests := []struct {
		err  *ExitError
		want string
	}{
		{WrapExitError(ExitCommandError, "write journal", cause), "write journal: disk full"},
		{&ExitError{Code: ExitCommandError, Err: cause}, "disk full"},
		{NewExitError(ExitFailure, "plain"), "plain"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, tt.err.Error())
	}
	assert.ErrorIs(t, WrapExitError(ExitCommandError, "write journal", cause), cause)
}
