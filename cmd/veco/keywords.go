package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"
	"github.com/spf13/cobra"

	"github.com/dshills/veco/internal/highlight"
	"github.com/dshills/veco/internal/renderer"
)

func newKeywordsCmd(opts *globalOptions) *cobra.Command {
	var color string

	cmd := &cobra.Command{
		Use:   "keywords",
		Short: "Print the assembled keywords and the pattern matching them",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			profile, forced, err := colorProfile(color)
			if err != nil {
				return err
			}

			s, err := opts.open()
			if err != nil {
				return err
			}
			defer s.Close()

			a, err := highlight.Assemble(s.store.Highlight())
			if err != nil {
				return err
			}

			r := lipgloss.NewRenderer(cmd.OutOrStdout())
			if forced {
				r.SetColorProfile(profile)
			}
			printKeywords(cmd.OutOrStdout(), r, a)
			return nil
		},
	}

	cmd.Flags().StringVar(&color, "color", "auto", "colorize output (auto, always, never)")
	return cmd
}

// printKeywords writes one row per key, styled with its decoration, then
// the composite pattern.
func printKeywords(w io.Writer, r *lipgloss.Renderer, a *highlight.Assembly) {
	fmt.Fprintf(w, "mode: %s, case sensitive: %t\n", a.Mode, a.CaseSensitive)

	width := 0
	for _, key := range a.Keys {
		width = max(width, runewidth.StringWidth(key))
	}
	for _, key := range a.Keys {
		ks, _ := a.Keyword(key)
		style, _ := renderer.FromDecoration(a.DecorationStyle(key))
		pad := strings.Repeat(" ", width-runewidth.StringWidth(key))
		fmt.Fprintf(w, "  %s%s  %-11s  %s\n",
			style.ToLipgloss(r).Render(key), pad, ks.Severity, ks.PatternSource(highlight.RewriteGroups))
	}
	fmt.Fprintf(w, "pattern: %s\n", a.Pattern)
}
