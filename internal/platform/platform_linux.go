//go:build linux

package platform

import "os"

const (
	platformTag    = "mpris"
	defaultBackend = BackendIPC
)

// socketDir prefers the per-user runtime directory
func socketDir() string {
	if dir := os.Getenv("XDG_RUNTIME_DIR"); dir != "" {
		return dir
	}
	return os.TempDir()
}
