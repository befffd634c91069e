package main

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/dshills/veco/internal/config/watcher"
	"github.com/dshills/veco/internal/host"
	"github.com/dshills/veco/internal/renderer"
)

func newWatchCmd(opts *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "watch FILE",
		Short: "View a file full screen, re-highlighting it as it or the settings change",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := opts.open()
			if err != nil {
				return err
			}
			defer s.Close()

			ctx := cmd.Context()
			path, err := filepath.Abs(args[0])
			if err != nil {
				return err
			}
			doc, err := s.ws.OpenTextDocument(ctx, path)
			if err != nil {
				return err
			}

			surface := renderer.NewSurface(renderer.WithSurfaceLogger(s.logger))
			viewer, err := renderer.NewTerminalViewer(surface, renderer.WithViewerLogger(s.logger))
			if err != nil {
				return fmt.Errorf("creating terminal: %w", err)
			}
			if err := viewer.Init(); err != nil {
				return fmt.Errorf("initializing terminal: %w", err)
			}
			defer viewer.Close()
			viewer.SetDocument(doc)

			setStatus := func(text string) {
				viewer.SetStatus(text)
				viewer.Refresh()
			}

			editor := host.NewEditor(doc, surface,
				host.OnDecorationsChanged(viewer.Refresh),
				host.WithEditorLogger(s.logger),
			)
			window := host.NewWindow(surface,
				host.WithMessageWriter(nil),
				host.OnMessage(func(m host.Message) { setStatus(m.Level.String() + ": " + m.Text) }),
				host.WithWindowLogger(s.logger),
			)
			window.SetActive(editor)

			h := s.highlighter(window, host.NewStatus(nil), host.NewLog(nil))
			defer h.Dispose()

			sub := s.store.Notifier().Subscribe(h.HandleConfigChange)
			defer sub.Unsubscribe()

			settings, err := watcher.WatchStore(s.store, watcher.WithLogger(s.logger))
			if err != nil {
				return fmt.Errorf("watching settings: %w", err)
			}
			defer settings.Close()

			files, err := watcher.New(func(watcher.Event) {
				s.ws.Invalidate(path)
				next, err := s.ws.OpenTextDocument(ctx, path)
				if err != nil {
					setStatus("error: " + err.Error())
					return
				}
				editor.SetDocument(next)
				viewer.SetDocument(next)
				h.TriggerUpdate()
			}, watcher.WithLogger(s.logger))
			if err != nil {
				return fmt.Errorf("watching %s: %w", path, err)
			}
			defer files.Close()
			if err := files.Watch(path); err != nil {
				return fmt.Errorf("watching %s: %w", path, err)
			}

			if err := h.Init(); err == nil {
				h.TriggerUpdate()
			}
			title := path
			if rel, err := s.ws.RelativePath(path); err == nil {
				title = rel
			}
			setStatus(title)
			return viewer.Run(ctx)
		},
	}
}
