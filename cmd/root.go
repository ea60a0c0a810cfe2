/*
Copyright © 2025 NAME HERE <EMAIL ADDRESS>
*/
package cmd

import (
	"context"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"strconv"
	"time"

	"github.com/nakachan-ing/jmt-cli/internal/board"
	"github.com/nakachan-ing/jmt-cli/internal/jira"
	"github.com/nakachan-ing/jmt-cli/internal/model"
	"github.com/nakachan-ing/jmt-cli/internal/store"
	"github.com/nakachan-ing/jmt-cli/internal/util"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
)

const jiraTimeout = 20 * time.Second

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "jmt",
	Short: "Jira mini tasks: a small to-do list linked to Jira issues",
	Long: `jmt keeps an ordered personal to-do list. A task that mentions an issue key
(ABC-123) is linked to the Jira issue, an @today / @tomorrow / @thisweek /
@nextweek / @later / @forgotten tag sets its due date.

Run without arguments to open the board.`,
	SilenceUsage: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runBoard()
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		os.Exit(1)
	}
}

// app is what every command needs: config, logger, storage and the
// optional Jira client.
type app struct {
	config  model.Config
	log     zerolog.Logger
	backend store.Backend
	tasks   *store.TaskStore
	jira    *jira.Client
	closers []io.Closer
}

// openApp loads config and opens storage. With logToFile diagnostics go to
// the configured log file so they do not tear the board.
func openApp(logToFile bool) (*app, error) {
	config, err := store.LoadConfig()
	if err != nil {
		return nil, fmt.Errorf("❌ Error loading config: %w", err)
	}

	logger, logCloser, err := util.NewLogger(*config, logToFile)
	if err != nil {
		return nil, err
	}

	backend, err := store.OpenBackend(*config)
	if err != nil {
		logCloser.Close()
		return nil, fmt.Errorf("❌ Error opening storage: %w", err)
	}

	a := &app{
		config:  *config,
		log:     logger,
		backend: backend,
		tasks:   store.NewTaskStore(backend, config.StorageKey, logger),
		closers: []io.Closer{logCloser},
	}
	if c, ok := backend.(io.Closer); ok {
		a.closers = append(a.closers, c)
	}
	if config.Jira.BaseURL != "" {
		a.jira = jira.NewClient(nil, config.Jira.BaseURL, config.Jira.User, config.Jira.Token)
	}
	return a, nil
}

func mustOpenApp() *app {
	a, err := openApp(false)
	if err != nil {
		log.Printf("%v\n", err)
		os.Exit(1)
	}
	return a
}

func (a *app) Close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		a.closers[i].Close()
	}
}

// resolver returns nil when Jira is not configured, so lookups report
// jira.ErrNotConfigured.
func (a *app) resolver() board.IssueResolver {
	if a.jira == nil {
		return nil
	}
	return a.jira
}

func (a *app) requireJira() (*jira.Client, error) {
	if a.jira == nil {
		return nil, fmt.Errorf("❌ %w: set jira.base_url with `jmt config set jira.base_url <url>`", jira.ErrNotConfigured)
	}
	return a.jira, nil
}

// board returns a headless board over the store for one-shot commands.
func (a *app) board() *board.Board {
	b := board.New(a.tasks, board.RendererFunc(func(board.ListView) {}), a.log)
	b.Mount()
	return b
}

func jiraContext(cmd *cobra.Command) (context.Context, context.CancelFunc) {
	return context.WithTimeout(cmd.Context(), jiraTimeout)
}

func parseTaskID(s string) (int64, error) {
	id, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("❌ Invalid task ID %q", s)
	}
	return id, nil
}
