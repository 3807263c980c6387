package tools

import (
	"bytes"
	"context"
	"os/exec"
	"path/filepath"
	"time"

	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
)

const DEFAULT_GRACE = 5 * time.Second

// Invocation describes one vendor tool run. Dir defaults to the
// directory of the executable: the tools resolve their shared libraries
// relative to themselves, independent of our own working directory.
type Invocation struct {
	Path    string
	Args    []string
	Dir     string
	Timeout time.Duration
}

// Record is the complete outcome of one supervised run. Exactly one of
// ExitCode and TimedOut is ever set: a timed-out process has no exit
// code, an exited process is never marked timed out. A child killed by
// an outside signal records the runtime's -1 exit code.
type Record struct {
	Path     string
	Args     []string
	Start    time.Time
	Duration time.Duration
	Stdout   []byte
	Stderr   []byte
	ExitCode *int
	TimedOut bool
}

func (r *Record) Success() bool {
	return !r.TimedOut && r.ExitCode != nil && *r.ExitCode == 0
}

// Runner supervises external processes with a hard deadline. On
// deadline the child is killed and its termination awaited for at most
// Grace; a hung child can never hang the caller past timeout+grace.
type Runner struct {
	Grace time.Duration
}

func NewRunner() *Runner {
	return &Runner{Grace: DEFAULT_GRACE}
}

func (r *Runner) Run(ctx context.Context, inv Invocation) (*Record, error) {
	if inv.Timeout <= 0 {
		return nil, errors.Errorf("invocation of %s has no timeout", inv.Path)
	}

	dir := inv.Dir
	if dir == "" {
		dir = filepath.Dir(inv.Path)
	}

	runCtx, cancel := context.WithTimeout(ctx, inv.Timeout)
	defer cancel()

	var stdout, stderr bytes.Buffer
	cmd := exec.CommandContext(runCtx, inv.Path, inv.Args...)
	cmd.Dir = dir
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	// Kill is issued by CommandContext on deadline; WaitDelay bounds how
	// long we wait for the kill to be observed when the child holds its
	// pipes open.
	cmd.WaitDelay = r.Grace

	record := &Record{
		Path:  inv.Path,
		Args:  append([]string(nil), inv.Args...),
		Start: time.Now(),
	}

	log.WithFields(log.Fields{
		"tool":    filepath.Base(inv.Path),
		"args":    inv.Args,
		"timeout": inv.Timeout,
	}).Debug("running external tool")

	err := cmd.Run()
	record.Duration = time.Since(record.Start)
	record.Stdout = stdout.Bytes()
	record.Stderr = stderr.Bytes()

	interrupted := err != nil || !cmd.ProcessState.Exited()

	// The caller's own context going away is a cancellation, not a tool
	// deadline; the kill happened on their behalf.
	if ctx.Err() != nil && interrupted {
		return record, ctx.Err()
	}

	if runCtx.Err() != nil && interrupted {
		record.TimedOut = true
		log.WithFields(log.Fields{
			"tool":     filepath.Base(inv.Path),
			"duration": record.Duration,
		}).Warn("external tool killed on deadline")
		return record, nil
	}

	if err != nil {
		var exitErr *exec.ExitError
		if !errors.As(err, &exitErr) {
			// The process never ran: bad path, permissions, fork failure.
			return nil, errors.Wrapf(err, "spawning %s", inv.Path)
		}
	}

	if cmd.ProcessState != nil {
		// -1 when the child died to a signal outside our deadline; the
		// record still carries an explicit outcome.
		code := cmd.ProcessState.ExitCode()
		record.ExitCode = &code
	}

	return record, nil
}
