package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/muesli/termenv"
	"github.com/spf13/cobra"

	"github.com/dshills/veco/internal/config"
	"github.com/dshills/veco/internal/diagnostic"
	"github.com/dshills/veco/internal/document"
	"github.com/dshills/veco/internal/highlight"
	"github.com/dshills/veco/internal/host"
	"github.com/dshills/veco/internal/log"
	"github.com/dshills/veco/internal/project/workspace"
	"github.com/dshills/veco/internal/tracing"
)

// globalOptions are the persistent flags shared by every command.
type globalOptions struct {
	configPath    string
	workspacePath string
	logLevel      string
	trace         string
	traceFile     string
}

func newRootCmd(version string) *cobra.Command {
	opts := &globalOptions{}

	root := &cobra.Command{
		Use:           "veco",
		Short:         "Highlight annotation keywords such as TODO: and FIXME:",
		Long:          `veco finds annotation keywords in source files, paints them in the terminal and lists them across a workspace.`,
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(*cobra.Command, []string) error {
			switch opts.logLevel {
			case "debug", "info", "warn", "error":
				return nil
			default:
				return fmt.Errorf("invalid log level %q (must be debug, info, warn, or error)", opts.logLevel)
			}
		},
	}

	flags := root.PersistentFlags()
	flags.StringVarP(&opts.configPath, "config", "c", "", "user settings file (default: ~/.config/veco/settings.yaml)")
	flags.StringVarP(&opts.workspacePath, "workspace", "w", "", "workspace directory (default: current directory)")
	flags.StringVar(&opts.logLevel, "log-level", "warn", "log level (debug, info, warn, error)")
	flags.StringVar(&opts.trace, "trace", tracing.ExporterNone, "trace exporter (none, stdout, file, otlp)")
	flags.StringVar(&opts.traceFile, "trace-file", "veco-trace.jsonl", "output of the file trace exporter")

	root.AddCommand(
		newHighlightCmd(opts),
		newSearchCmd(opts),
		newWatchCmd(opts),
		newToggleCmd(opts),
		newKeywordsCmd(opts),
	)
	return root
}

// session holds what every command needs: logging, settings, the
// workspace, tracing and the diagnostics collection.
type session struct {
	logger  *log.Logger
	store   *config.Store
	ws      *workspace.Workspace
	tracing *tracing.Provider
	diags   *diagnostic.Collection
}

func (o *globalOptions) open() (*session, error) {
	logger := log.New(log.Config{
		Level:  log.ParseLevel(o.logLevel),
		Output: os.Stderr,
		Prefix: "veco",
	})

	root := o.workspacePath
	if root == "" {
		wd, err := os.Getwd()
		if err != nil {
			return nil, fmt.Errorf("getting current directory: %w", err)
		}
		root = wd
	}
	root, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("resolving workspace: %w", err)
	}

	userFile := o.configPath
	if userFile == "" {
		userFile = config.DefaultUserFile()
	}
	store, err := config.NewStore(
		config.WithUserFile(userFile),
		config.WithWorkspaceFile(config.DefaultWorkspaceFile(root)),
		config.WithLogger(logger),
	)
	if err != nil {
		return nil, fmt.Errorf("loading settings: %w", err)
	}

	ws, err := workspace.New([]string{root}, workspace.WithLogger(logger))
	if err != nil {
		return nil, fmt.Errorf("opening workspace: %w", err)
	}

	tp, err := tracing.NewProvider(tracing.FromFlag(o.trace, o.traceFile))
	if err != nil {
		return nil, fmt.Errorf("starting tracing: %w", err)
	}

	return &session{
		logger:  logger,
		store:   store,
		ws:      ws,
		tracing: tp,
		diags:   diagnostic.NewCollection(highlight.DiagnosticSource),
	}, nil
}

// highlighter creates a Highlighter on window with the session's settings
// and workspace.
func (s *session) highlighter(window *host.Window, status *host.Status, out *host.Log, opts ...highlight.Option) *highlight.Highlighter {
	opts = append([]highlight.Option{
		highlight.WithLogger(s.logger),
		highlight.WithTracer(s.tracing.Tracer()),
	}, opts...)
	return highlight.New(highlight.Deps{
		Window:      window,
		Workspace:   s.ws,
		Config:      s.store,
		Diagnostics: s.diags,
		Status:      status,
		Log:         out,
	}, opts...)
}

func (s *session) Close() {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := s.tracing.Shutdown(ctx); err != nil {
		s.logger.Warn("tracing shutdown: %v", err)
	}
}

// openDocument loads path, resolved against the working directory.
func (s *session) openDocument(ctx context.Context, path string) (document.Document, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("resolving %s: %w", path, err)
	}
	return s.ws.OpenTextDocument(ctx, abs)
}

// colorProfile maps a --color value to a termenv profile. ok is false for
// "auto", which detects the profile from the output.
func colorProfile(mode string) (p termenv.Profile, ok bool, err error) {
	switch mode {
	case "auto", "":
		return termenv.Ascii, false, nil
	case "always":
		return termenv.TrueColor, true, nil
	case "never":
		return termenv.Ascii, true, nil
	default:
		return termenv.Ascii, false, fmt.Errorf("invalid color mode %q (must be auto, always, or never)", mode)
	}
}
