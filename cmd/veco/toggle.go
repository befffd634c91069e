package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/dshills/veco/internal/host"
	"github.com/dshills/veco/internal/renderer"
)

func newToggleCmd(opts *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "toggle",
		Short: "Enable or disable highlighting in the user settings",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			s, err := opts.open()
			if err != nil {
				return err
			}
			defer s.Close()

			window := host.NewWindow(renderer.NewSurface(),
				host.WithMessageWriter(cmd.ErrOrStderr()),
				host.WithWindowLogger(s.logger),
			)
			h := s.highlighter(window, host.NewStatus(nil), host.NewLog(nil))
			defer h.Dispose()

			if err := h.ToggleEnabled(cmd.Context()); err != nil {
				s.logger.Debug("toggle: %v", err)
				return &exitError{code: 1}
			}

			state := "disabled"
			if s.store.Highlight().Enabled {
				state = "enabled"
			}
			fmt.Fprintf(cmd.OutOrStdout(), "highlight %s\n", state)
			return nil
		},
	}
}
