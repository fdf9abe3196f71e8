package adapter

import (
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"os/exec"
	"runtime"
)

// Launcher opens product links (image URLs) in an external browser
type Launcher struct {
	command string   // configured browser command, empty for system default
	args    []string // additional arguments for the browser
	logger  *slog.Logger

	// start runs the command; replaced in tests
	start func(name string, args ...string) error
}

// NewLauncher creates a Launcher. An empty command uses the OS handler.
func NewLauncher(command string, args []string, logger *slog.Logger) *Launcher {
	if logger == nil {
		logger = slog.Default()
	}
	return &Launcher{
		command: command,
		args:    args,
		logger:  logger,
		start: func(name string, args ...string) error {
			return exec.Command(name, args...).Start()
		},
	}
}

// Open launches link in the configured browser or the system default.
// Only absolute http(s) links are accepted.
func (l *Launcher) Open(link string) error {
	u, err := url.Parse(link)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("not an http(s) link: %q", link)
	}

	name, args := l.commandFor(runtime.GOOS, u.String())
	l.logger.Info("opening link", "command", name, "url", u.String())
	if err := l.start(name, args...); err != nil {
		var execErr *exec.Error
		if errors.As(err, &execErr) {
			return fmt.Errorf("browser %q not found: %w", name, err)
		}
		return fmt.Errorf("failed to open link: %w", err)
	}
	return nil
}

// commandFor builds the command line for goos
func (l *Launcher) commandFor(goos, link string) (string, []string) {
	if l.command != "" {
		args := append(append([]string{}, l.args...), link)
		return l.command, args
	}

	switch goos {
	case "darwin":
		return "open", []string{link}
	case "windows":
		return "cmd", []string{"/c", "start", "", link}
	default:
		// Linux and other Unix-like systems
		return "xdg-open", []string{link}
	}
}
