package main

import (
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"naicstag/internal/tui"
)

func newInteractiveCmd(root *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "interactive",
		Short: "Classify descriptions in a terminal UI",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := root.loadConfig()
			if err != nil {
				return fmt.Errorf("failed to load config: %w", err)
			}
			logger, err := newLogger(cfg)
			if err != nil {
				return err
			}
			svc, err := buildService(cfg, logger)
			if err != nil {
				return err
			}
			summary := fmt.Sprintf("%d subsectors from %s | mode=%s", len(svc.Corpus()), cfg.Corpus.Path, cfg.Ranking.Mode)
			p := tea.NewProgram(tui.New(svc, summary), tea.WithAltScreen())
			_, err = p.Run()
			return err
		},
	}
}
