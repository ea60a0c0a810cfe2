// Package board holds the toolkit-independent task board: a view model built
// from the task list, an abstract realized list with geometry, the drag
// reorder engine and the inline edit state machine.
package board

import (
	"fmt"
	"time"

	"github.com/charmbracelet/x/ansi"
	"github.com/nakachan-ing/jmt-cli/internal/model"
	"github.com/nakachan-ing/jmt-cli/internal/parse"
)

const summaryWidth = 25

type BadgeKind int

const (
	BadgeDue BadgeKind = iota
	BadgeJira
	BadgeDone
)

// Badge is one decoration shown next to an item's text.
type Badge struct {
	Kind    BadgeKind
	Text    string
	Title   string
	Overdue bool
	URL     string
}

type ItemView struct {
	ID      int64
	Text    string
	Done    bool
	Editing bool
	Badges  []Badge
}

// Draggable reports whether the drag handle is live for this item.
func (v ItemView) Draggable() bool {
	return !v.Editing
}

type ListView struct {
	Header string
	Counts model.Counts
	Sorted bool
	Items  []ItemView
}

// Renderer materializes a ListView into some UI toolkit.
type Renderer interface {
	RenderList(view ListView)
}

// RendererFunc adapts a function to Renderer.
type RendererFunc func(view ListView)

func (f RendererFunc) RenderList(view ListView) { f(view) }

func HeaderText(c model.Counts) string {
	return fmt.Sprintf("Jira Mini Tasks ∑ %d (✔ %d/✘ %d)", c.Total, c.Done, c.Undone)
}

// Render builds the full view model for the list. It is a pure function of
// the tasks and the current time.
func Render(tasks []model.Task, now time.Time) ListView {
	counts := model.Count(tasks)
	view := ListView{
		Header: HeaderText(counts),
		Counts: counts,
		Items:  make([]ItemView, 0, len(tasks)),
	}
	for _, t := range tasks {
		view.Items = append(view.Items, RenderItem(t, now))
	}
	return view
}

func RenderItem(t model.Task, now time.Time) ItemView {
	item := ItemView{ID: t.ID, Text: t.Text, Done: t.Done}
	if t.HasDueDate() {
		item.Badges = append(item.Badges, DueBadge(*t.Due, now))
	}
	if t.HasJira() && t.JiraSummary != "" {
		item.Badges = append(item.Badges, Badge{
			Kind:  BadgeJira,
			Text:  t.JiraKey + " | " + truncateSummary(t.JiraSummary),
			Title: t.JiraSummary,
			URL:   t.JiraURL,
		})
	}
	if t.Done {
		item.Badges = append(item.Badges, Badge{Kind: BadgeDone, Text: "✓ Done"})
	}
	return item
}

// DueBadge shows the label, or the date itself once it is overdue. Week
// ranges carry the range as the title; "later" carries none.
func DueBadge(d model.Due, now time.Time) Badge {
	b := Badge{Kind: BadgeDue, Text: d.DueDateLabel}
	if parse.IsOverdueAt(d.DueDate, now) {
		b.Overdue = true
		b.Text = parse.FormatDay(d.DueDate)
	}
	switch {
	case d.DueDateType.IsRange() && d.DueDateStart != nil:
		b.Title = parse.FormatRange(*d.DueDateStart, d.DueDate)
	case d.DueDateType == model.DueLater:
	default:
		b.Title = parse.FormatDay(d.DueDate)
	}
	return b
}

func truncateSummary(s string) string {
	if ansi.StringWidth(s) <= summaryWidth {
		return s
	}
	return ansi.Truncate(s, summaryWidth+1, "…")
}
