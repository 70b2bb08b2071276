package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/conneroisu/pathtemplate/internal/bindings"
	"github.com/conneroisu/pathtemplate/internal/config"
	apperrors "github.com/conneroisu/pathtemplate/internal/errors"
	"github.com/conneroisu/pathtemplate/internal/logging"
	"github.com/conneroisu/pathtemplate/internal/registry"
	"github.com/conneroisu/pathtemplate/internal/watcher"
)

var watchCmd = &cobra.Command{
	Use:     "watch [template]",
	Aliases: []string{"w"},
	Short:   "Re-render a template whenever its bindings change",
	Long: `Render a template, then render it again each time a bindings file or
the configuration file changes. Files under --root matching watch.patterns
are watched, as are the files given with --bindings.

Render failures are reported and watching continues.

Examples:
  pathtemplate watch --name users -b prod.yml
  pathtemplate watch '/v1/{org}/{id}' -b 'env/**/*.yml' --root env`,
	Args: cobra.MaximumNArgs(1),
	RunE: runWatch,
}

var (
	watchName           string
	watchBindingFiles   []string
	watchSet            assignmentsValue
	watchFormat         string
	watchRoot           string
	watchIgnoreDefaults bool
)

func init() {
	rootCmd.AddCommand(watchCmd)

	watchCmd.Flags().StringVarP(&watchName, "name", "n", "", "Name of a template from the configuration file")
	watchCmd.Flags().StringVar(&watchRoot, "root", ".", "Directory watched recursively for watch.patterns")
	watchCmd.Flags().BoolVar(&watchIgnoreDefaults, "no-defaults", false, "Ignore bindings from the configuration file")
	addBindingsFlags(watchCmd, &watchBindingFiles, &watchSet)
	addFormatFlag(watchCmd, &watchFormat)
}

// watchSession renders one template on every change batch.
type watchSession struct {
	name           string
	args           []string
	files          []string
	assignments    []string
	format         string
	ignoreDefaults bool
	out            io.Writer
	errOut         io.Writer
	logger         *logging.StructuredLogger
	last           string

	// registry persists across cycles so unchanged sources stay compiled.
	registry *registry.TemplateRegistry
	events   <-chan registry.TemplateEvent
}

func newWatchSession(logger *logging.StructuredLogger) *watchSession {
	reg := registry.NewTemplateRegistry(logger)
	return &watchSession{
		logger:   logger,
		registry: reg,
		events:   reg.Watch(),
	}
}

func (s *watchSession) close() {
	s.registry.UnWatch(s.events)
}

func runWatch(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	session := newWatchSession(appLogger)
	defer session.close()
	session.name = watchName
	session.args = args
	session.files = watchBindingFiles
	session.assignments = watchSet.Values()
	session.format = watchFormat
	session.ignoreDefaults = watchIgnoreDefaults
	session.out = cmd.OutOrStdout()
	session.errOut = cmd.ErrOrStderr()

	fileWatcher, err := watcher.NewFileWatcher(cfg.Watch.Debounce, appLogger)
	if err != nil {
		return apperrors.NewInternalError(apperrors.ErrCodeInternalError, "failed to create file watcher", err)
	}
	defer fileWatcher.Stop()

	explicit, err := session.watchedFiles(cfg)
	if err != nil {
		return err
	}

	fileWatcher.AddFilter(watcher.NoGitFilter)
	fileWatcher.AddFilter(watcher.NoBackupFilter)
	fileWatcher.AddFilter(watcher.AnyFilter(
		watcher.PatternFilter(watchRoot, cfg.Watch.Patterns),
		watcher.FileSetFilter(explicit),
	))

	if err := fileWatcher.AddRecursive(watchRoot); err != nil {
		return apperrors.WrapIO(err, watchRoot, "failed to watch directory")
	}
	for _, f := range explicit {
		if err := fileWatcher.AddFile(f); err != nil {
			appLogger.Warn(cmd.Context(), err, "Cannot watch file", "path", f)
		}
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	fileWatcher.AddHandler(func(events []watcher.ChangeEvent) error {
		return session.cycle(ctx, events)
	})

	if err := session.cycle(ctx, nil); err != nil {
		return err
	}

	if err := fileWatcher.Start(ctx); err != nil {
		return apperrors.NewInternalError(apperrors.ErrCodeInternalError, "failed to start file watcher", err)
	}

	appLogger.Info(ctx, "Watching for changes",
		"root", watchRoot,
		"patterns", cfg.Watch.Patterns,
		"directories", len(fileWatcher.WatchList()),
		"templates", session.registry.Names(),
	)
	fmt.Fprintln(session.errOut, "Watching for changes... (Press Ctrl+C to stop)")

	<-ctx.Done()
	return nil
}

// watchedFiles returns the binding and configuration files that are
// watched in addition to the pattern matches under the root.
func (s *watchSession) watchedFiles(cfg *config.Config) ([]string, error) {
	files, err := bindings.Expand(s.files, "")
	if err != nil {
		return nil, err
	}

	if !s.ignoreDefaults {
		configured, err := bindings.Expand(cfg.Bindings.Files, configBaseDir())
		if err != nil {
			return nil, err
		}
		files = append(files, configured...)
	}

	if used := viper.ConfigFileUsed(); used != "" {
		files = append(files, used)
	}

	for i, f := range files {
		if abs, err := filepath.Abs(f); err == nil {
			files[i] = abs
		}
	}

	return files, nil
}

// cycle reloads configuration and bindings and renders the template once.
// Only a broken configuration or template is returned; binding and file
// errors are reported and the session keeps going.
func (s *watchSession) cycle(ctx context.Context, events []watcher.ChangeEvent) error {
	log := s.logger.WithRequestID(uuid.New().String())
	for _, e := range events {
		log.Debug(ctx, "File changed", "path", e.Path, "type", e.Type.String())
	}

	if viper.ConfigFileUsed() != "" && len(events) > 0 {
		if err := viper.ReadInConfig(); err != nil {
			s.report(ctx, log, apperrors.WrapConfig(err, "reloading configuration"))
			return nil
		}
	}

	cfg, err := loadConfig()
	if err != nil {
		s.report(ctx, log, err)
		return nil
	}

	s.registry.Sync(cfg.Templates, nil)
	if s.templateChanged(ctx, log) {
		s.last = ""
	}
	log.Debug(ctx, "Templates synced", "templates", s.registry.Count(), "compiled", s.registry.CacheSize())

	name, tmpl, err := resolveTemplate(cfg, s.registry, s.name, s.args)
	if err != nil {
		if len(events) == 0 {
			return err
		}
		s.report(ctx, log, err)
		return nil
	}

	b, err := buildBindings(cfg, s.ignoreDefaults, s.files, s.assignments)
	if err != nil {
		s.report(ctx, log, err)
		return nil
	}

	result, err := renderTemplate(name, tmpl, b)
	if err != nil {
		s.report(ctx, log, err)
		return nil
	}

	if result.Path == s.last && len(events) > 0 {
		log.Debug(ctx, "Rendered path unchanged", "path", result.Path)
		return nil
	}
	s.last = result.Path

	log.Info(ctx, "Rendered", "path", result.Path, "changes", len(events))
	return writeRenderResult(s.out, resolveFormat(s.format, cfg), result)
}

// templateChanged drains pending registry events and reports whether the
// watched named template was updated or removed. A first registration does
// not count as a change.
func (s *watchSession) templateChanged(ctx context.Context, log logging.Logger) bool {
	changed := false
	for {
		select {
		case event, ok := <-s.events:
			if !ok {
				return changed
			}
			log.Debug(ctx, "Template "+event.Type.String(), "template", event.Template.Name)
			if event.Template.Name == s.name && event.Type != registry.EventTypeAdded {
				log.Info(ctx, "Template changed", "template", s.name, "source", event.Template.Source)
				changed = true
			}
		default:
			return changed
		}
	}
}

func (s *watchSession) report(ctx context.Context, log logging.Logger, err error) {
	apperrors.NewErrorHandler(log).Handle(ctx, err)
	fmt.Fprint(s.errOut, apperrors.FormatError(err))
}
