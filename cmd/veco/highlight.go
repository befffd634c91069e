package main

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/dshills/veco/internal/host"
	"github.com/dshills/veco/internal/renderer"
)

func newHighlightCmd(opts *globalOptions) *cobra.Command {
	var (
		color         string
		noLineNumbers bool
	)

	cmd := &cobra.Command{
		Use:   "highlight FILE...",
		Short: "Print files with their annotation keywords highlighted",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			profile, forced, err := colorProfile(color)
			if err != nil {
				return err
			}

			s, err := opts.open()
			if err != nil {
				return err
			}
			defer s.Close()

			painterOpts := []renderer.PainterOption{renderer.WithLineNumbers(!noLineNumbers)}
			if forced {
				painterOpts = append(painterOpts, renderer.WithColorProfile(profile))
			}
			painter := renderer.NewPainter(cmd.OutOrStdout(), painterOpts...)

			failed := false
			for _, path := range args {
				if err := highlightFile(cmd.Context(), s, painter, cmd.OutOrStdout(), cmd.ErrOrStderr(), path); err != nil {
					fmt.Fprintf(cmd.ErrOrStderr(), "%s: %v\n", path, err)
					failed = true
				}
			}
			if failed {
				return &exitError{code: 1}
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&color, "color", "auto", "colorize output (auto, always, never)")
	cmd.Flags().BoolVar(&noLineNumbers, "no-line-numbers", false, "omit the line number and ruler gutter")
	return cmd
}

// highlightFile scans path once as the active document, paints it to out
// and lists its diagnostics.
func highlightFile(ctx context.Context, s *session, painter *renderer.Painter, out, errOut io.Writer, path string) error {
	doc, err := s.openDocument(ctx, path)
	if err != nil {
		return err
	}

	surface := renderer.NewSurface(renderer.WithSurfaceLogger(s.logger))
	window := host.NewWindow(surface, host.WithMessageWriter(errOut), host.WithWindowLogger(s.logger))
	window.SetActive(host.NewEditor(doc, surface, host.WithEditorLogger(s.logger)))

	h := s.highlighter(window, host.NewStatus(nil), host.NewLog(nil))
	defer h.Dispose()

	if err := h.Init(); err != nil {
		return err
	}
	res, err := h.Scan(ctx)
	if err != nil {
		return err
	}
	if res.Skipped {
		fmt.Fprintf(errOut, "%s: not highlighted (%s)\n", path, res.Reason)
		return nil
	}

	if err := painter.Paint(doc, surface); err != nil {
		return err
	}
	for _, d := range s.diags.Get(doc.URI()) {
		fmt.Fprintf(out, "%s:%s: %s: %s\n", path, d.Range.Start, d.Severity, d.Message)
	}
	return nil
}
