package dispatch

import (
	"context"
	"fmt"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/FoxDenHome/tapectl/scsi"
)

// Policy bounds the retry loop for one logical call.
type Policy struct {
	MaxAttempts int
	BaseDelay   time.Duration
	MaxDelay    time.Duration
}

var DefaultPolicy = Policy{
	MaxAttempts: 5,
	BaseDelay:   250 * time.Millisecond,
	MaxDelay:    5 * time.Second,
}

// Submitter is the slice of scsi.Device the executor needs.
type Submitter interface {
	Path() string
	SubmitRead(cmd scsi.Command) (*scsi.Result, []byte, error)
}

type Executor struct {
	Policy Policy
}

func New(policy Policy) *Executor {
	if policy.MaxAttempts < 1 {
		policy.MaxAttempts = 1
	}
	return &Executor{Policy: policy}
}

// Execute runs one logical command, retrying transient faults with
// exponential backoff. A fresh descriptor and buffer are built per
// attempt by the command itself. The returned result is the last one
// observed, annotated with the number of attempts made; only a transport
// or handle error yields a non-nil error.
func (e *Executor) Execute(ctx context.Context, dev Submitter, cmd scsi.Command) (*scsi.Result, []byte, error) {
	var res *scsi.Result
	var data []byte
	var err error

	delay := e.Policy.BaseDelay
	for attempt := 1; ; attempt++ {
		res, data, err = dev.SubmitRead(cmd)
		if err != nil {
			// Handle and host faults are never retried here: an invalid
			// handle needs a reopen and a transport fault needs a human.
			return nil, nil, err
		}

		res.Attempts = attempt
		if res.Ok() {
			return res, data, nil
		}

		class := Classify(res)
		if class != Transient {
			log.WithFields(log.Fields{
				"device": dev.Path(),
				"opcode": fmt.Sprintf("%#02x", cmd.Opcode()),
				"class":  class.String(),
			}).Debugf("command failed without retry: %v", res)
			return res, data, nil
		}

		if attempt >= e.Policy.MaxAttempts {
			log.WithFields(log.Fields{
				"device":   dev.Path(),
				"opcode":   fmt.Sprintf("%#02x", cmd.Opcode()),
				"attempts": attempt,
			}).Warnf("transient fault persisted: %v", res)
			return res, data, nil
		}

		log.WithFields(log.Fields{
			"device":  dev.Path(),
			"opcode":  fmt.Sprintf("%#02x", cmd.Opcode()),
			"attempt": attempt,
			"delay":   delay,
		}).Debugf("retrying transient fault: %v", res)

		select {
		case <-ctx.Done():
			return res, data, ctx.Err()
		case <-time.After(delay):
		}

		delay *= 2
		if delay > e.Policy.MaxDelay {
			delay = e.Policy.MaxDelay
		}
	}
}

// Run is Execute for commands whose response payload does not matter.
func (e *Executor) Run(ctx context.Context, dev Submitter, cmd scsi.Command) (*scsi.Result, error) {
	res, _, err := e.Execute(ctx, dev, cmd)
	return res, err
}
