package notify

import (
	log "github.com/sirupsen/logrus"
)

// Notifier reports critical conditions to an operator channel. Calls
// are fire-and-forget: delivery failure is the notifier's problem and
// never propagates into the operation that raised the condition.
type Notifier interface {
	Critical(subject string, detail string)
}

// LogNotifier reports through the process log.
type LogNotifier struct{}

func (LogNotifier) Critical(subject string, detail string) {
	log.WithField("subject", subject).Error(detail)
}

// Multi fans one condition out to several channels.
type Multi []Notifier

func (m Multi) Critical(subject string, detail string) {
	for _, n := range m {
		n.Critical(subject, detail)
	}
}
