package notify

import (
	"context"
	"fmt"
	"log/slog"
	"os/exec"
	"runtime"
	"strconv"
	"sync"

	"github.com/mmcdole/shutter/internal/domain"
)

// Surface is the system notification sink. Posting twice with the same
// request code replaces the earlier notification where the platform allows it.
type Surface interface {
	Post(ctx context.Context, requestCode int, n domain.Notification) error
}

// SurfaceFunc adapts a function to Surface.
type SurfaceFunc func(ctx context.Context, requestCode int, n domain.Notification) error

func (f SurfaceFunc) Post(ctx context.Context, requestCode int, n domain.Notification) error {
	return f(ctx, requestCode, n)
}

// CommandRunner executes an external command and waits for it.
type CommandRunner func(ctx context.Context, name string, args ...string) error

func runCommand(ctx context.Context, name string, args ...string) error {
	if _, err := exec.LookPath(name); err != nil {
		return err
	}
	return exec.CommandContext(ctx, name, args...).Run()
}

// DesktopSurface posts through the desktop notification daemon.
type DesktopSurface struct {
	appName string
	run     CommandRunner
	logger  *slog.Logger
}

// NewDesktopSurface creates a surface for the current platform. A nil runner
// executes the real commands.
func NewDesktopSurface(appName string, run CommandRunner, logger *slog.Logger) *DesktopSurface {
	if logger == nil {
		logger = slog.Default()
	}
	if run == nil {
		run = runCommand
	}
	return &DesktopSurface{appName: appName, run: run, logger: logger}
}

// stackTag identifies notifications that replace each other.
func (s *DesktopSurface) stackTag(requestCode int) string {
	return s.appName + "-" + strconv.Itoa(requestCode)
}

// Post shows the notification. On Linux it uses notify-send with both the
// dunst and the canonical stack hints so a repeat replaces the previous one.
func (s *DesktopSurface) Post(ctx context.Context, requestCode int, n domain.Notification) error {
	switch runtime.GOOS {
	case "darwin":
		script := fmt.Sprintf("display notification %q with title %q subtitle %q",
			n.Text, n.Title, n.Ticker)
		return s.run(ctx, "osascript", "-e", script)
	case "windows":
		return fmt.Errorf("desktop notifications unsupported on %s", runtime.GOOS)
	default:
		tag := s.stackTag(requestCode)
		body := n.Text
		if n.Link != "" {
			body += "\n" + n.Link
		}
		s.logger.Debug("posting desktop notification", "tag", tag)
		return s.run(ctx, "notify-send",
			"--app-name="+s.appName,
			"--hint=string:x-dunst-stack-tag:"+tag,
			"--hint=string:x-canonical-private-synchronous:"+tag,
			n.Title, body)
	}
}

// LogSurface writes notifications to the log and keeps the latest per request code.
type LogSurface struct {
	logger *slog.Logger

	mu     sync.Mutex
	latest map[int]domain.Notification
	posts  int
}

func NewLogSurface(logger *slog.Logger) *LogSurface {
	if logger == nil {
		logger = slog.Default()
	}
	return &LogSurface{logger: logger, latest: make(map[int]domain.Notification)}
}

func (s *LogSurface) Post(_ context.Context, requestCode int, n domain.Notification) error {
	s.mu.Lock()
	s.latest[requestCode] = n
	s.posts++
	s.mu.Unlock()

	s.logger.Info("notification", "requestCode", requestCode, "title", n.Title, "text", n.Text, "link", n.Link)
	return nil
}

// Latest returns the notification currently shown for requestCode.
func (s *LogSurface) Latest(requestCode int) (domain.Notification, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	n, ok := s.latest[requestCode]
	return n, ok
}

// Posts returns how many notifications were posted in total.
func (s *LogSurface) Posts() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.posts
}
