//go:build !linux && !darwin && !windows

package platform

import "os"

const (
	platformTag    = "generic"
	defaultBackend = BackendTerminal
)

func socketDir() string {
	return os.TempDir()
}
