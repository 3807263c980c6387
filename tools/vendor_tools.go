package tools

import (
	"context"
	"path/filepath"
	"time"
)

// Paths locates the vendor executables. Each tool lives wherever the
// vendor installer put it and is always launched from its own directory.
type Paths struct {
	Format string `json:"format"`
	Assign string `json:"assign"`
	Load   string `json:"load"`
	Check  string `json:"check"`
}

const (
	FORMAT_TIMEOUT = 90 * time.Minute
	ASSIGN_TIMEOUT = 5 * time.Minute
	LOAD_TIMEOUT   = 10 * time.Minute
	CHECK_TIMEOUT  = 30 * time.Minute
)

// Tools wraps the vendor command-line programs behind the supervisor.
type Tools struct {
	runner *Runner
	paths  Paths
}

func New(runner *Runner, paths Paths) *Tools {
	return &Tools{
		runner: runner,
		paths:  paths,
	}
}

func (t *Tools) run(ctx context.Context, path string, timeout time.Duration, args ...string) (*Record, error) {
	record, err := t.runner.Run(ctx, Invocation{
		Path:    path,
		Args:    args,
		Timeout: timeout,
	})
	if err != nil {
		return nil, err
	}
	return record, recordError(filepath.Base(path), timeout, record)
}

// Format initializes the medium in the drive and writes the volume
// label.
func (t *Tools) Format(ctx context.Context, device string, barcode string) (*Record, error) {
	serial := barcode
	if len(serial) > 6 {
		serial = serial[:6]
	}
	return t.run(ctx, t.paths.Format, FORMAT_TIMEOUT,
		"--device", device, "-n", barcode, "-s", serial, "-f")
}

// Assign binds a drive letter / mount name to the loaded medium.
func (t *Tools) Assign(ctx context.Context, device string, label string) (*Record, error) {
	return t.run(ctx, t.paths.Assign, ASSIGN_TIMEOUT, "assign", device, label)
}

func (t *Tools) Unassign(ctx context.Context, device string) (*Record, error) {
	return t.run(ctx, t.paths.Assign, ASSIGN_TIMEOUT, "unassign", device)
}

// Load threads the medium in the drive.
func (t *Tools) Load(ctx context.Context, device string) (*Record, error) {
	return t.run(ctx, t.paths.Load, LOAD_TIMEOUT, "load", device)
}

// Eject rewinds and unloads the medium.
func (t *Tools) Eject(ctx context.Context, device string) (*Record, error) {
	return t.run(ctx, t.paths.Load, LOAD_TIMEOUT, "eject", device)
}

// Check runs the vendor medium consistency check.
func (t *Tools) Check(ctx context.Context, device string) (*Record, error) {
	return t.run(ctx, t.paths.Check, CHECK_TIMEOUT, "--device", device)
}
