package utils

import (
	"io"

	"github.com/quarrydata/quarry/internal/logger"
)

// Try runs a deferred cleanup and logs instead of dropping its error.
func Try(f func() error) {
	if err := f(); err != nil {
		logger.LogError("deferred cleanup failed: %v", err)
	}
}

// Close closes c and logs a failure.
func Close(c io.Closer) {
	if err := c.Close(); err != nil {
		logger.LogError("close failed: %v", err)
	}
}
