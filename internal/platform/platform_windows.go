//go:build windows

package platform

import "os"

// SMTC is bound to a window, so the window backend is the default
const (
	platformTag    = "smtc"
	defaultBackend = BackendWindow
)

func socketDir() string {
	return os.TempDir()
}
