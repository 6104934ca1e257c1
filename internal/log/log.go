// Package log is the structured logging surface the security core uses
// for its ambient operations (identity/key lifecycle, backend pairing,
// signing fallbacks). It wraps apex/log the same way the rest of the
// ndn ecosystem does: a small set of helpers (Debug, Info, Warn,
// Error) tagged with the
// calling module's name, rather than passing a logger value around.
package log

import (
	"fmt"
	"os"
	"sync"

	"github.com/apex/log"
	"github.com/apex/log/handlers/text"
)

var (
	once  sync.Once
	level = log.InfoLevel
)

func initialize() {
	log.SetHandler(text.New(os.Stderr))
	log.SetLevel(level)
}

// SetLevel adjusts the minimum level logged; call before any other
// package in this module has had a chance to log. Accepts the same
// names as apex/log ("debug", "info", "warn", "error", "fatal").
func SetLevel(name string) error {
	lvl, err := log.ParseLevel(name)
	if err != nil {
		return fmt.Errorf("log: %w", err)
	}
	level = lvl
	once.Do(initialize)
	log.SetLevel(level)
	return nil
}

func tag(module, message string) string {
	return fmt.Sprintf("[%s] %s", module, message)
}

// Debug logs a DEBUG-level message tagged with module.
func Debug(module, message string) {
	once.Do(initialize)
	log.Debug(tag(module, message))
}

// Info logs an INFO-level message tagged with module.
func Info(module, message string) {
	once.Do(initialize)
	log.Info(tag(module, message))
}

// Warn logs a WARN-level message tagged with module.
func Warn(module, message string) {
	once.Do(initialize)
	log.Warn(tag(module, message))
}

// Error logs an ERROR-level message tagged with module.
func Error(module, message string) {
	once.Do(initialize)
	log.Error(tag(module, message))
}
