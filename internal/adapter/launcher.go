package adapter

import (
	"fmt"
	"log/slog"
	"os/exec"
	"runtime"
)

// Launcher opens URLs in the configured browser or the system default handler
type Launcher struct {
	command string   // configured browser command, empty for system default
	args    []string // additional arguments for the browser
	logger  *slog.Logger
}

// NewLauncher creates a new Launcher
func NewLauncher(cfg BrowserConfig, logger *slog.Logger) *Launcher {
	if logger == nil {
		logger = slog.Default()
	}
	return &Launcher{
		command: cfg.Command,
		args:    cfg.Args,
		logger:  logger,
	}
}

// Launch opens url without waiting for the program to exit
func (l *Launcher) Launch(url string) error {
	name, args := l.commandFor(url)
	if _, err := exec.LookPath(name); err != nil {
		return fmt.Errorf("browser %q not found: %w", name, err)
	}

	l.logger.Info("launching browser", "command", name, "url", url)
	return exec.Command(name, args...).Start()
}

// commandFor resolves the program and arguments used to open url
func (l *Launcher) commandFor(url string) (string, []string) {
	if l.command != "" {
		args := append([]string{}, l.args...)
		return l.command, append(args, url)
	}

	switch runtime.GOOS {
	case "darwin":
		return "open", []string{url}
	case "windows":
		return "cmd", []string{"/c", "start", "", url}
	default:
		// Linux and other Unix-like systems
		return "xdg-open", []string{url}
	}
}
