// Package logging provides a process-wide structured logger for storecore.
//
// The package wraps [github.com/sirupsen/logrus] and exposes a single global
// logger instance that is initialized once and then retrieved via GetLogger.
// All subsystems should obtain a logger through this package rather than
// constructing their own, so that log level and output destination are
// controlled from a single place.
//
// # Initialisation
//
// Call Init (or InitDefault for sensible defaults) once at program startup:
//
//	if err := logging.Init(logging.Config{Level: logging.LevelDebug}); err != nil {
//	    log.Fatal(err)
//	}
//
// If GetLogger is called before Init, a default stderr logger is created
// lazily so that packages that log during init are safe.
//
// # Context helpers
//
// Several helpers return entries pre-populated with structured fields:
//
//	log := logging.WithComponent("PageStore") // adds component field
//	log := logging.WithTable(tableID)          // adds table field
//	log := logging.WithPage(pageID)            // adds page field
package logging
