package tools

import (
	"fmt"
	"strings"
	"time"
)

// TimeoutError reports a tool that was killed on its deadline. It is
// always surfaced, never silently ignored.
type TimeoutError struct {
	Tool    string
	Timeout time.Duration
}

func (e *TimeoutError) Error() string {
	return fmt.Sprintf("%s killed after exceeding %v deadline", e.Tool, e.Timeout)
}

// ToolError reports a non-zero exit, carrying the captured stderr.
type ToolError struct {
	Tool     string
	ExitCode int
	Stderr   string
}

func (e *ToolError) Error() string {
	stderr := strings.TrimSpace(e.Stderr)
	if stderr == "" {
		return fmt.Sprintf("%s exited with code %d", e.Tool, e.ExitCode)
	}
	return fmt.Sprintf("%s exited with code %d: %s", e.Tool, e.ExitCode, stderr)
}

// recordError converts a finished record into the typed outcome the
// callers branch on, or nil for success.
func recordError(tool string, timeout time.Duration, record *Record) error {
	if record.TimedOut {
		return &TimeoutError{Tool: tool, Timeout: timeout}
	}
	if !record.Success() {
		code := -1
		if record.ExitCode != nil {
			code = *record.ExitCode
		}
		return &ToolError{Tool: tool, ExitCode: code, Stderr: string(record.Stderr)}
	}
	return nil
}
