package debug

import (
	"fmt"
	"log"
	"time"
)

// Header logs the start of a debugged section
func Header(enabled bool, section string) {
	if enabled {
		log.Printf("=== DEBUG START: %s ===", section)
	}
}

// Footer logs the end of a debugged section
func Footer(enabled bool, section string) {
	if enabled {
		log.Printf("=== DEBUG END: %s ===", section)
	}
}

// Output logs a timestamped message when debugging is enabled
func Output(enabled bool, format string, args ...interface{}) {
	if !enabled {
		return
	}
	log.Printf("[%s] %s", time.Now().Format("15:04:05.000"), fmt.Sprintf(format, args...))
}

// Timing logs how long an operation took. Call the returned func when done.
func Timing(enabled bool, operation string) func() {
	if !enabled {
		return func() {}
	}

	start := time.Now()
	Output(enabled, "Starting: %s", operation)
	return func() {
		Output(enabled, "Completed: %s (took %v)", operation, time.Since(start))
	}
}
