//go:build darwin

package platform

import "os"

const (
	platformTag    = "nowplaying"
	defaultBackend = BackendIPC
)

func socketDir() string {
	return os.TempDir()
}
