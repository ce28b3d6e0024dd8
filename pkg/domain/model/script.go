package model

import (
	"path/filepath"
	"strings"
)

// ScriptKind is the file extension of a supported script.
type ScriptKind string

const (
	ScriptKindShell  ScriptKind = ".sh"
	ScriptKindPython ScriptKind = ".py"
)

// ScriptKinds lists supported kinds in lookup order.
var ScriptKinds = []ScriptKind{ScriptKindShell, ScriptKindPython}

// ScriptKindOf returns the kind of the script at path based on its extension.
func ScriptKindOf(path string) (ScriptKind, bool) {
	kind := ScriptKind(filepath.Ext(path))
	for _, k := range ScriptKinds {
		if k == kind {
			return kind, true
		}
	}
	return kind, false
}

// ScriptName returns the file name of the action script for kind.
func (k ScriptKind) ScriptName(action string) string {
	return action + string(k)
}

// ExecutionResult is the outcome of a single script run.
type ExecutionResult struct {
	ExitCode int
	Stdout   string
	Stderr   string
}

// Failed reports whether the run must be treated as fatal. Any output on
// stderr counts as a failure even when the exit code is zero.
func (r *ExecutionResult) Failed() bool {
	return r.ExitCode != 0 || r.Stderr != ""
}

func (r *ExecutionResult) StdoutLines() []string {
	return splitLines(r.Stdout)
}

// splitLines splits s into lines. Only the final line terminator is
// dropped, so blank lines at the end are kept.
func splitLines(s string) []string {
	if s == "" {
		return nil
	}
	s = strings.TrimSuffix(s, "\n")
	lines := strings.Split(s, "\n")
	for i, line := range lines {
		lines[i] = strings.TrimSuffix(line, "\r")
	}
	return lines
}
