// Package service installs the mediakeys session as a per-user login agent:
// a launchd agent on macOS and a systemd user unit on Linux.
package service

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"text/template"
)

// Label identifies the agent to launchd and names the systemd unit
const Label = "com.mediakeys.session"

// UnitName is the systemd unit file name
const UnitName = Label + ".service"

// ErrUnsupported is returned on systems without a supported service manager
var ErrUnsupported = errors.New("login agents are only supported with launchd and systemd")

// Manager names a service manager.
type Manager string

const (
	Launchd Manager = "launchd"
	Systemd Manager = "systemd"
)

const plistTemplate = `<?xml version="1.0" encoding="UTF-8"?>
<!DOCTYPE plist PUBLIC "-//Apple//DTD PLIST 1.0//EN" "http://www.apple.com/DTDs/PropertyList-1.0.dtd">
<plist version="1.0">
<dict>
	<key>Label</key>
	<string>{{.Label}}</string>
	<key>ProgramArguments</key>
	<array>
		<string>{{.BinaryPath}}</string>
{{- range .Args}}
		<string>{{.}}</string>
{{- end}}
	</array>
	<key>RunAtLoad</key>
	<true/>
	<key>KeepAlive</key>
	<true/>
	<key>StandardOutPath</key>
	<string>{{.LogPath}}/mediakeys.out</string>
	<key>StandardErrorPath</key>
	<string>{{.LogPath}}/mediakeys.err</string>
	<key>WorkingDirectory</key>
	<string>{{.WorkingDirectory}}</string>
</dict>
</plist>
`

const unitTemplate = `[Unit]
Description=mediakeys media session
After=graphical-session.target

[Service]
ExecStart={{.BinaryPath}}{{range .Args}} {{.}}{{end}}
WorkingDirectory={{.WorkingDirectory}}
Restart=on-failure
RestartSec=2

[Install]
WantedBy=default.target
`

// Config holds the values rendered into an agent definition
type Config struct {
	BinaryPath       string
	Args             []string
	LogPath          string
	WorkingDirectory string
}

type templateData struct {
	Config
	Label string
}

// Current returns the service manager of the running OS
func Current() (Manager, error) {
	return managerFor(runtime.GOOS)
}

func managerFor(goos string) (Manager, error) {
	switch goos {
	case "darwin":
		return Launchd, nil
	case "linux":
		return Systemd, nil
	default:
		return "", ErrUnsupported
	}
}

// Generate renders the agent definition for m
func Generate(m Manager, cfg Config) (string, error) {
	var text string
	switch m {
	case Launchd:
		text = plistTemplate
	case Systemd:
		text = unitTemplate
	default:
		return "", ErrUnsupported
	}

	tmpl, err := template.New(string(m)).Parse(text)
	if err != nil {
		return "", fmt.Errorf("failed to parse %s template: %w", m, err)
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, templateData{Config: cfg, Label: Label}); err != nil {
		return "", fmt.Errorf("failed to execute %s template: %w", m, err)
	}

	return buf.String(), nil
}

// Path returns where the agent definition for m is installed
func Path(m Manager) (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get user home directory: %w", err)
	}

	switch m {
	case Launchd:
		return filepath.Join(home, "Library", "LaunchAgents", Label+".plist"), nil
	case Systemd:
		configHome := os.Getenv("XDG_CONFIG_HOME")
		if configHome == "" {
			configHome = filepath.Join(home, ".config")
		}
		return filepath.Join(configHome, "systemd", "user", UnitName), nil
	default:
		return "", ErrUnsupported
	}
}

// GetDefaultLogPath returns the default path for agent logs
func GetDefaultLogPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get user home directory: %w", err)
	}

	return filepath.Join(home, ".local", "share", "mediakeys", "logs"), nil
}
