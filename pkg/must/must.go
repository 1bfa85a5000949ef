package must

import (
	"io"
	"os"

	"github.com/redo-tools/redo/pkg/logging"
)

// Close closes a resource on a cleanup path, warning (rather than failing) if
// closure doesn't succeed.
func Close(closer io.Closer, logger *logging.Logger) {
	if err := closer.Close(); err != nil {
		logger.Warn(err)
	}
}

// OSRemove removes a filesystem entry on a cleanup path, warning (rather than
// failing) if removal doesn't succeed.
func OSRemove(name string, logger *logging.Logger) {
	if err := os.Remove(name); err != nil {
		logger.Warn(err)
	}
}

// Rename renames a filesystem entry whose failure shouldn't abort the
// surrounding operation, warning if the rename doesn't succeed.
func Rename(oldpath, newpath string, logger *logging.Logger) {
	if err := os.Rename(oldpath, newpath); err != nil {
		logger.Warn(err)
	}
}
