package observability

import (
	"log/slog"

	sharedobs "github.com/couchcryptid/storm-data-shared/observability"
)

// NewLogger builds the process logger from LOG_LEVEL / LOG_FORMAT values
// and installs it as the slog default.
func NewLogger(level, format string) *slog.Logger {
	return sharedobs.NewLogger(level, format)
}
