package logging

import (
	"github.com/sirupsen/logrus"
)

// WithTx creates a log entry with transaction context.
//
// Example:
//
//	log := logging.WithTx(tid.ID())
//	log.Debug("inserting tuple")
func WithTx(txID int64) *logrus.Entry {
	return GetLogger().WithField("tx_id", txID)
}

// WithTable creates a log entry with table context.
func WithTable(table any) *logrus.Entry {
	return GetLogger().WithField("table", table)
}

// WithPage creates a log entry with page context.
// Useful for buffer pool and storage operations.
//
// Example:
//
//	log := logging.WithPage(pid)
//	log.WithField("dirty", isDirty).Debug("page evicted")
func WithPage(page any) *logrus.Entry {
	return GetLogger().WithField("page", page)
}

// WithComponent creates a log entry with component/subsystem context.
func WithComponent(component string) *logrus.Entry {
	return GetLogger().WithField("component", component)
}

// WithError creates a log entry carrying err.
func WithError(err error) *logrus.Entry {
	return GetLogger().WithError(err)
}

// WithFields creates a log entry with arbitrary structured fields.
func WithFields(fields map[string]any) *logrus.Entry {
	return GetLogger().WithFields(logrus.Fields(fields))
}
