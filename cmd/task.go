/*
Copyright © 2025 NAME HERE <EMAIL ADDRESS>
*/
package cmd

import (
	"bufio"
	"errors"
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"github.com/charmbracelet/glamour"
	"github.com/fatih/color"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
	"github.com/nakachan-ing/jmt-cli/internal/board"
	"github.com/nakachan-ing/jmt-cli/internal/model"
	"github.com/nakachan-ing/jmt-cli/internal/store"
	"github.com/nakachan-ing/jmt-cli/internal/util"
	"github.com/spf13/cobra"
)

var taskFrom string
var taskTo string
var taskSearchQuery string
var taskIssue string
var taskPageSize int
var taskDone bool
var taskPending bool
var taskMeta bool
var moveBefore string
var moveAfter string

// renderTaskTable prints tasks the way the board shows them: text, due
// badge, Jira badge and state.
func renderTaskTable(tasks []model.Task, now time.Time) {
	view := board.Render(tasks, now)

	t := table.NewWriter()
	t.SetOutputMirror(os.Stdout)
	t.SetStyle(table.StyleDouble)
	t.Style().Options.SeparateRows = false

	t.AppendHeader(table.Row{
		text.FgGreen.Sprintf("Task ID"), text.FgGreen.Sprintf("%s", text.Bold.Sprintf("Task")),
		text.FgGreen.Sprintf("Due"),
		text.FgGreen.Sprintf("Jira"),
		text.FgGreen.Sprintf("Status"),
	})

	for _, item := range view.Items {
		var due, issue string
		for _, b := range item.Badges {
			switch b.Kind {
			case board.BadgeDue:
				due = b.Text
				if b.Title != "" {
					due += " (" + b.Title + ")"
				}
				if b.Overdue {
					due = text.FgHiRed.Sprintf("%s", due)
				}
			case board.BadgeJira:
				issue = text.FgHiBlue.Sprintf("%s", b.Text)
			}
		}

		status := text.FgHiYellow.Sprintf("Pending")
		taskText := strings.ReplaceAll(item.Text, "\n", " ⏎ ")
		if item.Done {
			status = text.FgHiGreen.Sprintf("Done")
			taskText = text.Faint.Sprintf("%s", taskText)
		}

		t.AppendRow(table.Row{item.ID, taskText, due, issue, status})
	}

	t.Render()
}

func printHeader(tasks []model.Task) {
	fmt.Println(strings.Repeat("=", 30))
	fmt.Println(board.HeaderText(model.Count(tasks)))
	fmt.Println(strings.Repeat("=", 30))
}

func findTask(a *app, arg string) model.Task {
	id, err := parseTaskID(arg)
	if err != nil {
		log.Printf("%v", err)
		os.Exit(1)
	}
	tasks := a.tasks.Load()
	i := model.IndexOf(tasks, id)
	if i < 0 {
		log.Printf("❌ Task with ID %d not found", id)
		os.Exit(1)
	}
	return tasks[i]
}

var addTaskCmd = &cobra.Command{
	Use:     "add [text]",
	Short:   "Add a task (KEY-1 links a Jira issue, @tag sets a due date)",
	Args:    cobra.MinimumNArgs(1),
	Aliases: []string{"a", "new"},
	Run: func(cmd *cobra.Command, args []string) {
		a := mustOpenApp()
		defer a.Close()

		ctx, cancel := jiraContext(cmd)
		defer cancel()

		task, err := a.board().Add(ctx, strings.Join(args, " "), a.resolver())
		if err != nil {
			log.Printf("❌ Failed to add task: %v\n", err)
			os.Exit(1)
		}

		fmt.Printf("✅ Task %d has been created successfully.\n", task.ID)
		if task.HasJira() {
			fmt.Printf("🔗 Linked to %s: %s\n", task.JiraKey, task.JiraSummary)
		}
		if task.HasDueDate() {
			fmt.Printf("📅 Due %s (%s)\n", task.DueDateLabel, task.DueDate.String())
		}
	},
}

var listTaskCmd = &cobra.Command{
	Use:     "list",
	Short:   "List tasks",
	Aliases: []string{"ls"},
	Run: func(cmd *cobra.Command, args []string) {
		a := mustOpenApp()
		defer a.Close()

		all := a.tasks.Load()
		filtered := util.FilterTasks(all, util.TaskFilter{
			Query:    taskSearchQuery,
			FromDate: taskFrom,
			ToDate:   taskTo,
			Done:     taskDone,
			Pending:  taskPending,
			Issue:    taskIssue,
		})

		printHeader(all)
		fmt.Printf("Tasks: %v tasks shown\n", len(filtered))

		if len(filtered) == 0 {
			return
		}

		reader := bufio.NewReader(os.Stdin)
		page := 0

		// `--limit -1` shows everything at once
		if taskPageSize <= 0 {
			taskPageSize = len(filtered)
		}

		now := time.Now()
		for {
			start := page * taskPageSize
			end := start + taskPageSize
			if start >= len(filtered) {
				break
			}
			if end > len(filtered) {
				end = len(filtered)
			}

			renderTaskTable(filtered[start:end], now)

			if end >= len(filtered) {
				break
			}

			fmt.Print("\nPress Enter for the next page (q to quit): ")
			input, _ := reader.ReadString('\n')
			if strings.TrimSpace(input) == "q" {
				break
			}
			page++
		}
	},
}

var showTaskCmd = &cobra.Command{
	Use:     "show [Task ID]",
	Short:   "Show task detail",
	Args:    cobra.ExactArgs(1),
	Aliases: []string{"s"},
	Run: func(cmd *cobra.Command, args []string) {
		a := mustOpenApp()
		defer a.Close()

		task := findTask(a, args[0])
		item := board.RenderItem(task, time.Now())

		titleStyle := color.New(color.FgCyan, color.Bold).SprintFunc()
		fieldStyle := color.New(color.FgHiGreen).SprintFunc()

		firstLine, _, _ := strings.Cut(task.Text, "\n")
		fmt.Printf("[%v] %v\n", titleStyle(task.ID), titleStyle(firstLine))
		fmt.Println(strings.Repeat("-", 50))
		fmt.Printf("Done: %v\n", fieldStyle(task.Done))
		fmt.Printf("Created at: %v\n", fieldStyle(time.UnixMilli(task.CreatedAt).Format("2006-01-02 15:04:05")))
		for _, b := range item.Badges {
			switch b.Kind {
			case board.BadgeDue:
				due := fmt.Sprintf("%s (%s)", task.DueDateLabel, task.DueDate.String())
				if b.Title != "" {
					due += " " + b.Title
				}
				if b.Overdue {
					due += " overdue"
				}
				fmt.Printf("Due: %v\n", fieldStyle(due))
			case board.BadgeJira:
				fmt.Printf("Jira: %v\n", fieldStyle(task.JiraKey+" "+task.JiraSummary))
				if task.JiraURL != "" {
					fmt.Printf("URL: %v\n", fieldStyle(task.JiraURL))
				}
			}
		}

		if !taskMeta {
			renderedContent, err := glamour.Render(task.Text, "dark")
			if err != nil {
				log.Printf("⚠️ Failed to render markdown content: %v", err)
				fmt.Println(task.Text)
			} else {
				fmt.Println(renderedContent)
			}
		}
	},
}

var editTaskCmd = &cobra.Command{
	Use:     "edit [Task ID] [text]",
	Short:   "Edit a task's text (opens $EDITOR without text)",
	Args:    cobra.MinimumNArgs(1),
	Aliases: []string{"e"},
	Run: func(cmd *cobra.Command, args []string) {
		a := mustOpenApp()
		defer a.Close()

		task := findTask(a, args[0])

		newText := strings.Join(args[1:], " ")
		if len(args) == 1 {
			edited, err := util.EditText(task.Text, a.config)
			if err != nil {
				log.Printf("❌ Failed to open editor: %v\n", err)
				os.Exit(1)
			}
			newText = edited
		}

		b := a.board()
		if _, err := b.BeginEdit(task.ID); err != nil {
			log.Printf("❌ Failed to edit task: %v\n", err)
			os.Exit(1)
		}
		b.Editor.SetDraft(newText)

		ctx, cancel := jiraContext(cmd)
		defer cancel()

		if _, err := b.Editor.Save(ctx, a.resolver()); err != nil {
			switch {
			case errors.Is(err, board.ErrEmptyText):
				log.Printf("❌ Task text cannot be empty")
			default:
				log.Printf("❌ Failed to save task: %v", err)
			}
			os.Exit(1)
		}

		fmt.Printf("✅ Task %d updated\n", task.ID)
	},
}

// stateCmd builds the one-id commands that only differ in the board action.
func stateCmd(use, short, done string, aliases []string, action func(b *board.Board, id int64) error) *cobra.Command {
	return &cobra.Command{
		Use:     use + " [Task ID]",
		Short:   short,
		Args:    cobra.ExactArgs(1),
		Aliases: aliases,
		Run: func(cmd *cobra.Command, args []string) {
			a := mustOpenApp()
			defer a.Close()

			id, err := parseTaskID(args[0])
			if err != nil {
				log.Printf("%v", err)
				os.Exit(1)
			}
			if err := action(a.board(), id); err != nil {
				if errors.Is(err, store.ErrTaskNotFound) {
					log.Printf("❌ Task with ID %d not found", id)
				} else {
					log.Printf("❌ %v", err)
				}
				os.Exit(1)
			}
			fmt.Printf("✅ Task %d %s\n", id, done)
		},
	}
}

var doneTaskCmd = stateCmd("done", "Mark a task as done", "marked as done", []string{"d"},
	func(b *board.Board, id int64) error { return b.SetDone(id, true) })

var undoneTaskCmd = stateCmd("undone", "Mark a task as not done", "marked as not done", nil,
	func(b *board.Board, id int64) error { return b.SetDone(id, false) })

var deleteTaskCmd = stateCmd("remove", "Delete a task", "deleted", []string{"rm"},
	func(b *board.Board, id int64) error { return b.Delete(id) })

var undateTaskCmd = stateCmd("undate", "Clear a task's due date", "due date cleared", nil,
	func(b *board.Board, id int64) error { return b.ClearDueDate(id) })

var unlinkTaskCmd = stateCmd("unlink", "Remove a task's Jira link", "unlinked", nil,
	func(b *board.Board, id int64) error { return b.Unlink(id) })

var moveTaskCmd = &cobra.Command{
	Use:     "move [Task ID]",
	Short:   "Move a task before or after another one",
	Args:    cobra.ExactArgs(1),
	Aliases: []string{"mv"},
	Run: func(cmd *cobra.Command, args []string) {
		if (moveBefore == "") == (moveAfter == "") {
			log.Printf("❌ Exactly one of --before or --after is required")
			os.Exit(1)
		}

		a := mustOpenApp()
		defer a.Close()

		id, err := parseTaskID(args[0])
		if err != nil {
			log.Printf("%v", err)
			os.Exit(1)
		}
		refArg, after := moveBefore, false
		if moveAfter != "" {
			refArg, after = moveAfter, true
		}
		ref, err := parseTaskID(refArg)
		if err != nil {
			log.Printf("%v", err)
			os.Exit(1)
		}

		if err := a.board().Move(id, ref, after); err != nil {
			log.Printf("❌ Failed to move task: %v", err)
			os.Exit(1)
		}
		fmt.Printf("✅ Task %d moved\n", id)
	},
}

var sortTaskCmd = &cobra.Command{
	Use:   "sort",
	Short: "Sort tasks by due date (undated last, done at the end)",
	Run: func(cmd *cobra.Command, args []string) {
		a := mustOpenApp()
		defer a.Close()

		b := a.board()
		b.SortByDate()
		fmt.Println("✅ Tasks sorted by due date")
		renderTaskTable(a.tasks.Load(), time.Now())
	},
}

func init() {
	rootCmd.AddCommand(addTaskCmd, listTaskCmd, showTaskCmd, editTaskCmd,
		doneTaskCmd, undoneTaskCmd, deleteTaskCmd, undateTaskCmd, unlinkTaskCmd,
		moveTaskCmd, sortTaskCmd)
	listTaskCmd.Flags().StringVar(&taskFrom, "from", "", "Filter by due date from (YYYY-MM-DD)")
	listTaskCmd.Flags().StringVar(&taskTo, "to", "", "Filter by due date to (YYYY-MM-DD)")
	listTaskCmd.Flags().StringVarP(&taskSearchQuery, "search", "q", "", "Search text and linked issue")
	listTaskCmd.Flags().StringVar(&taskIssue, "issue", "", "Only tasks linked to this issue key")
	listTaskCmd.Flags().IntVar(&taskPageSize, "limit", 20, "Set the number of tasks to display per page (-1 for all)")
	listTaskCmd.Flags().BoolVar(&taskDone, "done", false, "Only done tasks")
	listTaskCmd.Flags().BoolVar(&taskPending, "pending", false, "Only pending tasks")
	showTaskCmd.Flags().BoolVar(&taskMeta, "meta", false, "Show only metadata without the rendered text")
	moveTaskCmd.Flags().StringVar(&moveBefore, "before", "", "Place the task right before this task ID")
	moveTaskCmd.Flags().StringVar(&moveAfter, "after", "", "Place the task right after this task ID")
}
