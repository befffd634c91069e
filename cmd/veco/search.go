package main

import (
	"github.com/spf13/cobra"

	"github.com/dshills/veco/internal/highlight"
	"github.com/dshills/veco/internal/host"
	"github.com/dshills/veco/internal/renderer"
)

func newSearchCmd(opts *globalOptions) *cobra.Command {
	var keyword string

	cmd := &cobra.Command{
		Use:   "search",
		Short: "List the annotations of every file in the workspace",
		Long: `Search the workspace for annotation keywords and print one locator per
annotation. Without --keyword the keyword is picked interactively; ALL
searches every keyword.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			s, err := opts.open()
			if err != nil {
				return err
			}
			defer s.Close()

			winOpts := []host.WindowOption{
				host.WithMessageWriter(cmd.ErrOrStderr()),
				host.WithWindowLogger(s.logger),
			}
			if cmd.Flags().Changed("keyword") {
				winOpts = append(winOpts, host.WithPresetPick(keyword))
			} else {
				winOpts = append(winOpts, host.WithPrompt(cmd.InOrStdin(), cmd.ErrOrStderr()))
			}
			window := host.NewWindow(renderer.NewSurface(), winOpts...)

			h := s.highlighter(window, host.NewStatus(cmd.ErrOrStderr()), host.NewLog(cmd.OutOrStdout()))
			defer h.Dispose()

			if err := h.Init(); err != nil {
				return err
			}
			res, err := h.ListAnnotations(cmd.Context())
			if err != nil {
				return err
			}

			switch res.State {
			case highlight.SearchFailed:
				return res.Err
			case highlight.SearchNoFiles:
				return &exitError{code: 1}
			case highlight.SearchCanceled:
				s.logger.Info("search canceled")
			default:
				if res.Err != nil {
					s.logger.Warn("%d of %d files could not be read: %v", res.Failed, res.Files, res.Err)
				}
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&keyword, "keyword", "k", "", "keyword to search for, or ALL")
	return cmd
}
