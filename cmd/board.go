/*
Copyright © 2025 NAME HERE <EMAIL ADDRESS>
*/
package cmd

import (
	"fmt"

	"github.com/atotto/clipboard"
	"github.com/nakachan-ing/jmt-cli/internal/tui"
	"github.com/nakachan-ing/jmt-cli/internal/util"
	"github.com/spf13/cobra"
)

func runBoard() error {
	a, err := openApp(true)
	if err != nil {
		return err
	}
	defer a.Close()

	opts := tui.Options{
		Log:      a.log,
		OpenURL:  util.OpenBrowser,
		CopyText: clipboard.WriteAll,
	}
	if a.jira != nil {
		opts.BrowseURL = a.jira.BrowseURL
	}

	a.log.Info().Str("key", a.tasks.Key()).Msg("board started")
	if err := tui.Run(tui.New(a.tasks, a.resolver(), opts)); err != nil {
		return fmt.Errorf("❌ Error running TUI: %w", err)
	}
	return nil
}

// boardCmd represents the board command
var boardCmd = &cobra.Command{
	Use:     "board",
	Short:   "Open the interactive task board",
	Aliases: []string{"b"},
	RunE: func(cmd *cobra.Command, args []string) error {
		return runBoard()
	},
}

func init() {
	rootCmd.AddCommand(boardCmd)
}
