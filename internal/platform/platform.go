// Package platform selects the media control backend for the running OS.
package platform

import (
	"fmt"
	"path/filepath"

	"github.com/rs/zerolog"

	"github.com/jfmyers9/mediakeys/internal/media"
	"github.com/jfmyers9/mediakeys/internal/media/ipc"
	"github.com/jfmyers9/mediakeys/internal/media/terminal"
	"github.com/jfmyers9/mediakeys/internal/media/window"
)

// Backend names.
const (
	BackendAuto     = "auto"
	BackendIPC      = "ipc"
	BackendTerminal = "terminal"
	BackendWindow   = "window"
)

// Options selects and configures a backend
type Options struct {
	Backend     string // Backend name; "" or "auto" picks the platform default
	Name        string // Short identity, used for the socket name
	DisplayName string // Human readable name, used as the window title
	SocketPath  string // Session socket path (default: per-OS runtime dir)
}

// Tag names the native media subsystem of the running OS
func Tag() string {
	return platformTag
}

// DefaultBackend returns the backend used when none is configured
func DefaultBackend() string {
	return defaultBackend
}

// DefaultSocketPath returns the session socket location for name
func DefaultSocketPath(name string) string {
	return filepath.Join(socketDir(), name+".sock")
}

// Resolve maps "" and "auto" to the platform default and validates the name
func Resolve(backend string) (string, error) {
	switch backend {
	case "", BackendAuto:
		return defaultBackend, nil
	case BackendIPC, BackendTerminal, BackendWindow:
		return backend, nil
	default:
		return "", fmt.Errorf("unknown backend %q (must be auto, ipc, terminal or window)", backend)
	}
}

// New creates the media controls for opts. It returns the resolved
// backend name alongside the controls.
func New(opts Options, logger zerolog.Logger) (media.Controls, string, error) {
	backend, err := Resolve(opts.Backend)
	if err != nil {
		return nil, "", err
	}

	logger.Debug().
		Str("backend", backend).
		Str("platform", platformTag).
		Msg("Creating media controls")

	switch backend {
	case BackendTerminal:
		return terminal.New(logger), backend, nil
	case BackendWindow:
		title := opts.DisplayName
		if title == "" {
			title = opts.Name
		}
		return window.New(title, logger), backend, nil
	default:
		path := opts.SocketPath
		if path == "" {
			path = DefaultSocketPath(opts.Name)
		}
		return ipc.NewServer(path, opts.Name, platformTag, logger), backend, nil
	}
}
