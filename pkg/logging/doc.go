// Package logging provides a process-wide structured logger for lockmy.
//
// The package wraps [log/slog] and exposes a single global logger instance
// that is initialized once and then retrieved via GetLogger. The library's
// lock hot paths never log; the logger exists for the coordination-level
// events (simulation progress, demo lifecycle, benchmark phases) where a
// record is worth a syscall.
//
// # Initialisation
//
// Call Init (or InitDefault for sensible defaults) once at program startup,
// before any goroutines that might call GetLogger are spawned:
//
//	if err := logging.Init(logging.Config{
//	    Level:      logging.LevelDebug,
//	    OutputPath: "logs/demo.log",
//	    Format:     "json",
//	}); err != nil {
//	    log.Fatal(err)
//	}
//
// InitDefault writes INFO-level text logs to stdout.
//
// # Retrieving the logger
//
//	logger := logging.GetLogger()
//	logger.Info("table seated", "diners", n)
//
// If GetLogger is called before Init, a default logger is created lazily
// (via sync.Once) so that packages that log during init are safe.
//
// # Context helpers
//
// Several helpers return child loggers pre-populated with structured fields,
// reducing repetition:
//
//	log := logging.WithDiner(id)          // adds diner field
//	log := logging.WithComponent("philo") // adds component field
package logging
