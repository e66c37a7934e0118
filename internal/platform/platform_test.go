package platform

import (
	"path/filepath"
	"strings"
	"testing"

	"github.com/rs/zerolog"

	"github.com/jfmyers9/mediakeys/internal/media/ipc"
	"github.com/jfmyers9/mediakeys/internal/media/terminal"
	"github.com/jfmyers9/mediakeys/internal/media/window"
)

func TestResolve(t *testing.T) {
	tests := []struct {
		input   string
		want    string
		wantErr bool
	}{
		{input: "", want: DefaultBackend()},
		{input: "auto", want: DefaultBackend()},
		{input: "ipc", want: BackendIPC},
		{input: "terminal", want: BackendTerminal},
		{input: "window", want: BackendWindow},
		{input: "dbus", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := Resolve(tt.input)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("Resolve(%q) expected error", tt.input)
				}
				return
			}
			if err != nil {
				t.Fatalf("Resolve(%q): %v", tt.input, err)
			}
			if got != tt.want {
				t.Errorf("Resolve(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestNew_SelectsBackend(t *testing.T) {
	logger := zerolog.Nop()
	socket := filepath.Join(t.TempDir(), "test.sock")

	c, name, err := New(Options{Backend: BackendIPC, Name: "test", SocketPath: socket}, logger)
	if err != nil {
		t.Fatalf("New(ipc): %v", err)
	}
	srv, ok := c.(*ipc.Server)
	if !ok || name != BackendIPC {
		t.Fatalf("New(ipc) = %T, %q", c, name)
	}
	if srv.Path() != socket {
		t.Errorf("socket path = %q, want %q", srv.Path(), socket)
	}

	if c, _, err := New(Options{Backend: BackendTerminal}, logger); err != nil {
		t.Fatalf("New(terminal): %v", err)
	} else if _, ok := c.(*terminal.Prompt); !ok {
		t.Errorf("New(terminal) = %T", c)
	}

	if c, _, err := New(Options{Backend: BackendWindow, Name: "test"}, logger); err != nil {
		t.Fatalf("New(window): %v", err)
	} else if _, ok := c.(*window.Window); !ok {
		t.Errorf("New(window) = %T", c)
	}

	if _, _, err := New(Options{Backend: "smoke-signals"}, logger); err == nil {
		t.Error("New with unknown backend succeeded")
	}
}

func TestDefaultSocketPath(t *testing.T) {
	path := DefaultSocketPath("mediakeys")
	if !strings.HasSuffix(path, "mediakeys.sock") {
		t.Errorf("DefaultSocketPath = %q", path)
	}
	if Tag() == "" {
		t.Error("platform tag is empty")
	}
}
