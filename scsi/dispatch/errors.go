package dispatch

import (
	"fmt"

	"github.com/FoxDenHome/tapectl/scsi"
)

// CommandError wraps a final non-success result as a typed fault, so
// callers can branch on the classification without re-parsing sense.
type CommandError struct {
	Result *scsi.Result
	Class  Class
}

func (e *CommandError) Error() string {
	return fmt.Sprintf("%s command fault after %d attempt(s): %v", e.Class, e.Result.Attempts, e.Result)
}

// ResultError converts a result into its typed fault, or nil on
// success.
func ResultError(res *scsi.Result) error {
	if res.Ok() {
		return nil
	}
	return &CommandError{
		Result: res,
		Class:  Classify(res),
	}
}
