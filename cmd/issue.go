/*
Copyright © 2025 NAME HERE <EMAIL ADDRESS>
*/
package cmd

import (
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"github.com/fatih/color"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
	"github.com/nakachan-ing/jmt-cli/internal/parse"
	"github.com/spf13/cobra"
)

var jiraMax int

func issueKeyArg(arg string) string {
	key := parse.ExtractIssueKey(arg)
	if key == "" || key != strings.TrimSpace(arg) {
		log.Printf("❌ %q is not an issue key (expected e.g. ABC-123)", arg)
		os.Exit(1)
	}
	return key
}

// issueCmd represents the issue command
var issueCmd = &cobra.Command{
	Use:     "issue",
	Short:   "Work with the tasks of one Jira issue",
	Aliases: []string{"i"},
}

var issueListCmd = &cobra.Command{
	Use:     "list [KEY]",
	Short:   "List tasks linked to an issue",
	Args:    cobra.ExactArgs(1),
	Aliases: []string{"ls"},
	Run: func(cmd *cobra.Command, args []string) {
		key := issueKeyArg(args[0])

		a := mustOpenApp()
		defer a.Close()

		tasks := a.tasks.TasksForIssue(key)
		fmt.Printf("Tasks for %s: %d\n", color.New(color.FgCyan, color.Bold).Sprint(key), len(tasks))
		if len(tasks) > 0 {
			renderTaskTable(tasks, time.Now())
		}
	},
}

var issueAddCmd = &cobra.Command{
	Use:   "add [KEY] [text]",
	Short: "Add a task linked to an issue, at the top of the list",
	Args:  cobra.MinimumNArgs(2),
	Run: func(cmd *cobra.Command, args []string) {
		key := issueKeyArg(args[0])

		a := mustOpenApp()
		defer a.Close()

		ctx, cancel := jiraContext(cmd)
		defer cancel()

		task, err := a.board().AddForIssue(ctx, key, strings.Join(args[1:], " "), a.resolver())
		if err != nil {
			log.Printf("❌ Failed to add task: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("✅ Task %d added to %s\n", task.ID, key)
	},
}

// jiraCmd represents the jira command
var jiraCmd = &cobra.Command{
	Use:   "jira",
	Short: "Query the configured Jira server",
}

var jiraMineCmd = &cobra.Command{
	Use:   "mine",
	Short: "List the most recent issues assigned to you",
	Run: func(cmd *cobra.Command, args []string) {
		a := mustOpenApp()
		defer a.Close()

		client, err := a.requireJira()
		if err != nil {
			log.Printf("%v", err)
			os.Exit(1)
		}

		ctx, cancel := jiraContext(cmd)
		defer cancel()

		hits, err := client.SearchMine(ctx, jiraMax)
		if err != nil {
			log.Printf("❌ Jira search failed: %v", err)
			os.Exit(1)
		}

		t := table.NewWriter()
		t.SetOutputMirror(os.Stdout)
		t.SetStyle(table.StyleDouble)
		t.AppendHeader(table.Row{
			text.FgGreen.Sprintf("Key"), text.FgGreen.Sprintf("Summary"), text.FgGreen.Sprintf("Status"), text.FgGreen.Sprintf("Tasks"),
		})
		for _, hit := range hits {
			t.AppendRow(table.Row{hit.Key, hit.Summary, hit.Status, len(a.tasks.TasksForIssue(hit.Key))})
		}
		t.Render()
	},
}

var jiraInfoCmd = &cobra.Command{
	Use:   "info",
	Short: "Check the connection to the Jira server",
	Run: func(cmd *cobra.Command, args []string) {
		a := mustOpenApp()
		defer a.Close()

		client, err := a.requireJira()
		if err != nil {
			log.Printf("%v", err)
			os.Exit(1)
		}

		ctx, cancel := jiraContext(cmd)
		defer cancel()

		info, err := client.ServerInfo(ctx)
		if err != nil {
			log.Printf("❌ Jira is not reachable: %v", err)
			os.Exit(1)
		}

		fieldStyle := color.New(color.FgHiGreen).SprintFunc()
		fmt.Printf("Server: %v\n", fieldStyle(info.ServerTitle))
		fmt.Printf("URL: %v\n", fieldStyle(info.BaseURL))
		fmt.Printf("Version: %v\n", fieldStyle(info.Version))
		fmt.Printf("Deployment: %v\n", fieldStyle(info.DeploymentType))
		fmt.Println("✅ Jira connection OK")
	},
}

func init() {
	issueCmd.AddCommand(issueListCmd, issueAddCmd)
	jiraCmd.AddCommand(jiraMineCmd, jiraInfoCmd)
	rootCmd.AddCommand(issueCmd, jiraCmd)
	jiraMineCmd.Flags().IntVar(&jiraMax, "limit", 10, "Maximum number of issues")
}
