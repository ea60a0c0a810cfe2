package model

import (
	"github.com/go-openapi/strfmt"
)

type DueDateType string

const (
	DueToday     DueDateType = "today"
	DueTomorrow  DueDateType = "tomorrow"
	DueThisWeek  DueDateType = "thisweek"
	DueNextWeek  DueDateType = "nextweek"
	DueLater     DueDateType = "later"
	DueForgotten DueDateType = "forgotten"
)

// IsRange reports whether the due date spans a week and carries a start date.
func (t DueDateType) IsRange() bool {
	return t == DueThisWeek || t == DueNextWeek
}

// JiraLink is the linked issue group. Embedded as a pointer so the three
// fields are written together or not at all.
type JiraLink struct {
	JiraKey     string `json:"jiraKey"`
	JiraSummary string `json:"jiraSummary"`
	JiraURL     string `json:"jiraUrl"`
}

// Due is the parsed due-date annotation group.
type Due struct {
	DueDate      strfmt.Date  `json:"dueDate"`
	DueDateLabel string       `json:"dueDateLabel"`
	DueDateStart *strfmt.Date `json:"dueDateStart"` // thisweek, nextweek only
	DueDateType  DueDateType  `json:"dueDateType"`
}

type Task struct {
	ID        int64  `json:"id"`        // epoch ms at creation
	Text      string `json:"text"`
	Done      bool   `json:"done"`
	CreatedAt int64  `json:"createdAt"` // epoch ms
	*JiraLink
	*Due
}

func (t Task) HasJira() bool {
	return t.JiraLink != nil && t.JiraKey != ""
}

func (t Task) HasDueDate() bool {
	return t.Due != nil
}

func (t *Task) ClearJira() {
	t.JiraLink = nil
}

func (t *Task) ClearDueDate() {
	t.Due = nil
}
