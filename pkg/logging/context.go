package logging

import (
	"log/slog"
)

// WithComponent creates a logger with component/subsystem context.
//
// Example:
//
//	log := logging.WithComponent("philo")
//	log.Info("component initialized")
func WithComponent(component string) *slog.Logger {
	return GetLogger().With("component", component)
}

// WithDiner creates a logger with diner context for the simulation.
//
// Example:
//
//	log := logging.WithDiner(3)
//	log.Debug("backing off", "tries", tries)
func WithDiner(diner int) *slog.Logger {
	return GetLogger().With("diner", diner)
}

// WithRun creates a logger carrying the demo run parameters.
//
// Example:
//
//	log := logging.WithRun(method, strategy)
//	log.Info("run starting")
func WithRun(method, strategy string) *slog.Logger {
	return GetLogger().With("method", method, "strategy", strategy)
}

// WithError creates a logger with error context.
// Use this when logging errors to include the error in structured format.
//
// Example:
//
//	log := logging.WithError(err)
//	log.Error("run failed", "method", method)
func WithError(err error) *slog.Logger {
	return GetLogger().With("error", err.Error())
}
