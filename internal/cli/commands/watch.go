package commands

import (
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/cobra"

	"github.com/grovekit/grove/pkg/project"
)

// NewWatchCommand creates the watch command.
func NewWatchCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "watch [path]",
		Short: "Reload and revalidate a project file on every change",
		Long: `Locate the project at the given path, then watch the project file and
reload it whenever it changes, logging the result and any diagnostics.

Each reload produces a fresh project value; nothing is patched in place.`,
		Example: `  # Watch the project in the current directory
  grove watch

  # Watch a specific project file with debug logging
  grove watch game.project.json -v`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := "."
			if len(args) > 0 {
				path = args[0]
			}
			return runWatch(cmd, path)
		},
	}

	return cmd
}

func runWatch(cmd *cobra.Command, path string) error {
	cfg := GetConfig(cmd.Context())

	level := slog.LevelInfo
	if cfg.Verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{
		Level: level,
	}))

	located, ok := project.Locate(path)
	if !ok {
		return fmt.Errorf("no project file found at %s", path)
	}
	if abs, err := filepath.Abs(located); err == nil {
		located = abs
	}

	reload(logger, located, cfg.ServePort)

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create watcher: %w", err)
	}
	defer watcher.Close()

	// Watch the parent directory rather than the file itself: editors that
	// save through rename-and-replace would otherwise detach the watch.
	if err := watcher.Add(filepath.Dir(located)); err != nil {
		return fmt.Errorf("failed to watch %s: %w", filepath.Dir(located), err)
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	logger.Info("watching project file", "file", located)

	for {
		select {
		case <-ctx.Done():
			logger.Info("stopping watch")
			return nil
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(event.Name) != located {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
				continue
			}
			logger.Debug("project file changed", "op", event.Op.String())
			reload(logger, located, cfg.ServePort)
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			logger.Error("watch error", "error", err)
		}
	}
}

// reload loads the project file and logs the outcome. Load failures are
// reported and watching continues; the next save may fix them.
func reload(logger *slog.Logger, path string, defaultPort int) {
	proj, err := project.Load(path)
	if err != nil {
		logger.Error("project failed to load", "file", path, "error", err)
		return
	}

	port := defaultPort
	if proj.ServePort != nil {
		port = int(*proj.ServePort)
	}
	logger.Info("project loaded",
		"name", proj.Name,
		"instances", proj.Tree.InstanceCount(),
		"port", port,
	)

	for _, d := range proj.Diagnostics {
		attrs := []any{"rule", d.Rule, "instance", instancePathString(d)}
		switch d.Severity {
		case project.SeverityError:
			logger.Error(d.Message, attrs...)
		case project.SeverityWarning:
			logger.Warn(d.Message, attrs...)
		default:
			logger.Info(d.Message, attrs...)
		}
	}
}

func instancePathString(d project.Diagnostic) string {
	return strings.Join(d.InstancePath, "/")
}
