package service

import (
	"fmt"
	"os"
	"os/exec"
	"strconv"
	"strings"
)

// runner executes a service manager command and returns its combined output
type runner func(name string, args ...string) ([]byte, error)

func execRunner(name string, args ...string) ([]byte, error) {
	return exec.Command(name, args...).CombinedOutput()
}

// Load starts the installed agent and enables it at login
func Load(m Manager, path string) error {
	return load(execRunner, m, path)
}

// Unload stops the agent. A missing agent is not an error.
func Unload(m Manager) error {
	return unload(execRunner, m)
}

func load(run runner, m Manager, path string) error {
	switch m {
	case Launchd:
		if out, err := run("launchctl", "bootstrap", guiDomain(), path); err != nil {
			return commandError("launchctl bootstrap", out, err)
		}
	case Systemd:
		if out, err := run("systemctl", "--user", "daemon-reload"); err != nil {
			return commandError("systemctl daemon-reload", out, err)
		}
		if out, err := run("systemctl", "--user", "enable", "--now", UnitName); err != nil {
			return commandError("systemctl enable", out, err)
		}
	default:
		return ErrUnsupported
	}
	return nil
}

func unload(run runner, m Manager) error {
	switch m {
	case Launchd:
		// Bootout fails when the agent is not loaded, which is fine
		_, _ = run("launchctl", "bootout", guiDomain()+"/"+Label)
	case Systemd:
		_, _ = run("systemctl", "--user", "disable", "--now", UnitName)
	default:
		return ErrUnsupported
	}
	return nil
}

func guiDomain() string {
	return "gui/" + strconv.Itoa(os.Getuid())
}

func commandError(what string, out []byte, err error) error {
	if msg := strings.TrimSpace(string(out)); msg != "" {
		return fmt.Errorf("%s failed: %s", what, msg)
	}
	return fmt.Errorf("failed to run %s: %w", what, err)
}
