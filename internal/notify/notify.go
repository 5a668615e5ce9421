// Package notify carries non-fatal operator notifications out of the core
// engines. Falling back to canned questions because the AI provider was
// never configured and falling back because a configured provider broke are
// different operator-facing signals, even though the resulting behavior is
// identical; the level distinguishes them.
package notify

import "log"

// Level classifies a notification.
type Level string

const (
	// LevelWarning signals a degraded but expected condition, such as an
	// unconfigured AI provider.
	LevelWarning Level = "warning"
	// LevelError signals a configured capability that failed or timed out.
	LevelError Level = "error"
)

// Func receives notifications. Implementations must not block.
type Func func(level Level, message string)

// Log returns a Func that writes notifications to the standard logger.
func Log() Func {
	return func(level Level, message string) {
		log.Printf("[NOTIFY] %s: %s", level, message)
	}
}

// Discard returns a Func that drops all notifications.
func Discard() Func {
	return func(Level, string) {}
}
