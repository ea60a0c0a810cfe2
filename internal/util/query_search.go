package util

import (
	"strings"
	"time"

	"github.com/nakachan-ing/jmt-cli/internal/model"
)

// FullTextSearch keeps tasks whose text or linked issue matches query,
// ignoring case.
func FullTextSearch(tasks []model.Task, query string) []model.Task {
	if query == "" {
		return tasks
	}

	query = strings.ToLower(query)
	var filtered []model.Task

	for _, task := range tasks {
		haystack := task.Text
		if task.HasJira() {
			haystack += " " + task.JiraKey + " " + task.JiraSummary
		}
		if strings.Contains(strings.ToLower(haystack), query) {
			filtered = append(filtered, task)
		}
	}

	return filtered
}

type TaskFilter struct {
	Query    string
	FromDate string // YYYY-MM-DD, due date lower bound
	ToDate   string // YYYY-MM-DD, due date upper bound
	Done     bool
	Pending  bool
	Issue    string
}

// FilterTasks applies the search, state, issue and due-date filters. A date
// range excludes tasks without a due date.
func FilterTasks(tasks []model.Task, f TaskFilter) []model.Task {
	var filtered []model.Task

	for _, task := range FullTextSearch(tasks, f.Query) {
		if f.Done && !task.Done {
			continue
		}
		if f.Pending && task.Done {
			continue
		}
		if f.Issue != "" && (!task.HasJira() || !strings.EqualFold(task.JiraKey, f.Issue)) {
			continue
		}
		if f.FromDate != "" || f.ToDate != "" {
			if !task.HasDueDate() || !IsWithinDateRange(task.DueDate.String(), f.FromDate, f.ToDate) {
				continue
			}
		}
		filtered = append(filtered, task)
	}

	return filtered
}

// IsWithinDateRange checks a YYYY-MM-DD date against optional inclusive bounds.
func IsWithinDateRange(date string, fromDate, toDate string) bool {
	day := strings.Split(date, " ")[0]

	if fromDate == "" && toDate == "" {
		return true
	}

	t, err := time.Parse("2006-01-02", day)
	if err != nil {
		return false
	}

	if fromDate != "" {
		fromTime, err := time.Parse("2006-01-02", fromDate)
		if err == nil && t.Before(fromTime) {
			return false
		}
	}

	if toDate != "" {
		toTime, err := time.Parse("2006-01-02", toDate)
		if err == nil && t.After(toTime) {
			return false
		}
	}

	return true
}
