package board

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/nakachan-ing/jmt-cli/internal/jira"
	"github.com/nakachan-ing/jmt-cli/internal/model"
	"github.com/nakachan-ing/jmt-cli/internal/parse"
	"github.com/nakachan-ing/jmt-cli/internal/store"
	"github.com/rs/zerolog"
)

// MaxEditLines caps the visible height of the inline editor.
const MaxEditLines = 6

var (
	ErrEmptyText  = errors.New("task text is empty")
	ErrNotEditing = errors.New("no item is being edited")
	ErrBusy       = errors.New("issue lookup in progress")
)

type EditState int

const (
	Display EditState = iota
	Editing
	Saving
)

func (s EditState) String() string {
	switch s {
	case Editing:
		return "editing"
	case Saving:
		return "saving"
	default:
		return "display"
	}
}

// IssueResolver looks an issue key up on the tracker.
type IssueResolver interface {
	LookupIssue(ctx context.Context, key string) (*jira.Issue, error)
}

// TaskSource is the load/save pair of the task store.
type TaskSource interface {
	Load() []model.Task
	Save(tasks []model.Task)
}

// Editor is the per-list edit state machine: at most one item is in
// Editing or Saving at a time.
type Editor struct {
	store  TaskSource
	render func(tasks []model.Task)
	now    func() time.Time
	log    zerolog.Logger

	id    int64
	state EditState
	draft string
	err   error
}

func NewEditor(store TaskSource, render func(tasks []model.Task), log zerolog.Logger) *Editor {
	if render == nil {
		render = func([]model.Task) {}
	}
	return &Editor{store: store, render: render, now: time.Now, log: log}
}

// State returns the state of the item with the given id.
func (e *Editor) State(id int64) EditState {
	if e.state != Display && e.id == id {
		return e.state
	}
	return Display
}

// Current returns the id of the item being edited.
func (e *Editor) Current() (int64, bool) {
	return e.id, e.state != Display
}

func (e *Editor) Draft() string { return e.draft }

func (e *Editor) SetDraft(text string) {
	if e.state == Editing {
		e.draft = text
	}
}

// Err is the last save failure for the item being edited. The UI flags the
// input while it is set.
func (e *Editor) Err() error { return e.err }

// Begin puts the item with the given id into Editing, pre-filled with its
// stored text. Another item still in Editing is first forced back to
// Display, dropping its draft; forced reports that item's id.
func (e *Editor) Begin(id int64) (forced int64, err error) {
	if e.state == Saving {
		return 0, ErrBusy
	}
	if e.state == Editing && e.id == id {
		return 0, nil
	}

	tasks := e.store.Load()
	i := model.IndexOf(tasks, id)
	if i < 0 {
		return 0, store.ErrTaskNotFound
	}

	if e.state == Editing {
		forced = e.id
		e.log.Debug().Int64("id", forced).Msg("edit discarded for another item")
		e.reset()
		e.render(tasks)
	}

	e.id = id
	e.state = Editing
	e.draft = tasks[i].Text
	return forced, nil
}

// Cancel drops the draft and re-renders from the persisted list.
func (e *Editor) Cancel() {
	if e.state == Display {
		return
	}
	e.reset()
	e.render(e.store.Load())
}

func (e *Editor) reset() {
	e.id = 0
	e.state = Display
	e.draft = ""
	e.err = nil
}

// SaveRequest is a parsed draft waiting for its issue lookup.
type SaveRequest struct {
	ID       int64
	Text     string
	IssueKey string
	Due      *model.Due
}

// BeginSave validates and parses the draft and moves to Saving. An empty
// draft keeps the item in Editing.
func (e *Editor) BeginSave() (*SaveRequest, error) {
	switch e.state {
	case Display:
		return nil, ErrNotEditing
	case Saving:
		return nil, ErrBusy
	}

	text := strings.TrimSpace(e.draft)
	if text == "" {
		e.err = ErrEmptyText
		return nil, ErrEmptyText
	}

	req := &SaveRequest{ID: e.id, Text: text, IssueKey: parse.ExtractIssueKey(text)}
	if req.IssueKey != "" {
		req.Text = parse.StripIssueKey(req.Text)
	}
	if due := parse.ExtractDueDateAt(text, e.now()); due != nil {
		req.Due = due
		req.Text = parse.StripDueTag(req.Text)
	}

	e.state = Saving
	e.err = nil
	return req, nil
}

// FinishSave applies the lookup outcome. A failed lookup returns to Editing
// with the draft intact and nothing persisted. On success the record is
// rewritten from a fresh load, persisted and re-rendered.
func (e *Editor) FinishSave(req *SaveRequest, issue *jira.Issue, lookupErr error) ([]model.Task, error) {
	if e.state != Saving || req == nil || req.ID != e.id {
		return nil, ErrNotEditing
	}
	if req.IssueKey != "" && lookupErr == nil && issue == nil {
		lookupErr = jira.ErrIssueNotFound
	}
	if req.IssueKey != "" && lookupErr != nil {
		e.state = Editing
		e.err = lookupErr
		e.log.Warn().Err(lookupErr).Str("key", req.IssueKey).Msg("issue lookup failed, edit kept open")
		return nil, lookupErr
	}

	tasks := e.store.Load()
	i := model.IndexOf(tasks, req.ID)
	if i < 0 {
		e.reset()
		e.render(tasks)
		return tasks, store.ErrTaskNotFound
	}

	tasks[i].Text = req.Text
	if req.IssueKey != "" {
		tasks[i].JiraLink = &model.JiraLink{JiraKey: issue.Key, JiraSummary: issue.Summary, JiraURL: issue.URL}
	}
	if req.Due != nil {
		tasks[i].Due = req.Due
	}
	e.store.Save(tasks)

	e.reset()
	e.render(tasks)
	return tasks, nil
}

// Save runs BeginSave, the lookup and FinishSave in one go.
func (e *Editor) Save(ctx context.Context, resolver IssueResolver) ([]model.Task, error) {
	req, err := e.BeginSave()
	if err != nil {
		return nil, err
	}
	issue, lookupErr := Lookup(ctx, resolver, req.IssueKey)
	return e.FinishSave(req, issue, lookupErr)
}

// Lookup resolves key, or does nothing for an empty key.
func Lookup(ctx context.Context, resolver IssueResolver, key string) (*jira.Issue, error) {
	if key == "" {
		return nil, nil
	}
	if resolver == nil {
		return nil, jira.ErrNotConfigured
	}
	return resolver.LookupIssue(ctx, key)
}

type Key int

const (
	KeyOther Key = iota
	KeyEnter
	KeyShiftEnter
	KeyEscape
)

type EditAction int

const (
	ActionNone EditAction = iota
	ActionSave
	ActionNewline
	ActionCancel
)

// ActionFor maps the edit keyboard contract: Enter saves, Shift+Enter
// inserts a newline, Escape cancels.
func ActionFor(k Key) EditAction {
	switch k {
	case KeyEnter:
		return ActionSave
	case KeyShiftEnter:
		return ActionNewline
	case KeyEscape:
		return ActionCancel
	}
	return ActionNone
}

// EditHeight is the number of visible input lines for text wrapped at
// width, capped at MaxEditLines.
func EditHeight(text string, width int) int {
	if width < 1 {
		width = 1
	}
	lines := 0
	for _, line := range strings.Split(text, "\n") {
		n := (len([]rune(line)) + width - 1) / width
		if n == 0 {
			n = 1
		}
		lines += n
	}
	if lines > MaxEditLines {
		return MaxEditLines
	}
	return lines
}
