package board

import (
	"context"
	"strings"
	"time"

	"github.com/nakachan-ing/jmt-cli/internal/jira"
	"github.com/nakachan-ing/jmt-cli/internal/model"
	"github.com/nakachan-ing/jmt-cli/internal/parse"
	"github.com/nakachan-ing/jmt-cli/internal/store"
	"github.com/rs/zerolog"
)

// Store is what the board needs from the task store.
type Store interface {
	TaskSource
	Reorderer
	New(text string) model.Task
	Append(task model.Task) []model.Task
	Prepend(task model.Task) []model.Task
	Delete(id int64) ([]model.Task, error)
	SetDone(id int64, done bool) ([]model.Task, error)
	ClearDueDate(id int64) ([]model.Task, error)
	Unlink(id int64) ([]model.Task, error)
	SortByDate() []model.Task
}

// Board ties the store, the view model, the realized surface, the drag
// engine and the editor together. Every mutation loads, changes, saves and
// re-renders the whole list.
type Board struct {
	store    Store
	renderer Renderer
	now      func() time.Time
	log      zerolog.Logger

	Surface *Surface
	Drag    *DragEngine
	Editor  *Editor

	mounted bool
	sorted  bool
	view    ListView
}

func New(store Store, renderer Renderer, log zerolog.Logger) *Board {
	b := &Board{
		store:    store,
		renderer: renderer,
		now:      time.Now,
		log:      log,
		Surface:  NewSurface(),
	}
	if b.renderer == nil {
		b.renderer = RendererFunc(func(ListView) {})
	}
	b.Editor = NewEditor(store, b.Rerender, log)
	b.Drag = NewDragEngine(DragDeps{
		Surface:   b.Surface,
		Store:     store,
		Render:    b.Rerender,
		OnReorder: func() { b.sorted = false },
		Locked: func(id int64) bool {
			return b.Editor.State(id) != Display
		},
		Log: log,
	})
	return b
}

// Mount renders the board for the first time. A second call is a no-op and
// returns false.
func (b *Board) Mount() bool {
	if b.mounted {
		return false
	}
	b.mounted = true
	b.Rerender(b.store.Load())
	return true
}

func (b *Board) Mounted() bool { return b.mounted }

// Sorted reports whether the list currently shows the sort-by-date order.
func (b *Board) Sorted() bool { return b.sorted }

func (b *Board) View() ListView { return b.view }

// Rerender rebuilds the view model and the surface from tasks.
// An active drag is aborted first: its nodes do not survive the rebuild.
func (b *Board) Rerender(tasks []model.Task) {
	if b.Drag != nil {
		b.Drag.Abort()
	}
	view := Render(tasks, b.now())
	view.Sorted = b.sorted
	ids := make([]int64, 0, len(view.Items))
	for i := range view.Items {
		view.Items[i].Editing = b.Editor.State(view.Items[i].ID) != Display
		ids = append(ids, view.Items[i].ID)
	}
	b.view = view
	b.Surface.Build(ids)
	b.renderer.RenderList(view)
}

// Reload re-renders from the persisted list.
func (b *Board) Reload() {
	b.Rerender(b.store.Load())
}

// BeginEdit puts an item into Editing and re-renders so the input shows.
func (b *Board) BeginEdit(id int64) (forced int64, err error) {
	forced, err = b.Editor.Begin(id)
	if err != nil {
		return forced, err
	}
	b.Reload()
	return forced, nil
}

// AddRequest is a parsed new-task input waiting for its issue lookup.
type AddRequest struct {
	Text     string
	IssueKey string
	Due      *model.Due
}

// ParseAdd trims and parses new-task input. Empty input is rejected.
func (b *Board) ParseAdd(input string) (*AddRequest, error) {
	text := strings.TrimSpace(input)
	if text == "" {
		return nil, ErrEmptyText
	}
	req := &AddRequest{Text: text, IssueKey: parse.ExtractIssueKey(text)}
	if req.IssueKey != "" {
		req.Text = parse.StripIssueKey(req.Text)
	}
	if due := parse.ExtractDueDateAt(text, b.now()); due != nil {
		req.Due = due
		req.Text = parse.StripDueTag(req.Text)
	}
	return req, nil
}

// FinishAdd appends the task once the lookup settled. A failed lookup adds
// nothing; the caller keeps the input for correction.
func (b *Board) FinishAdd(req *AddRequest, issue *jira.Issue, lookupErr error) (model.Task, error) {
	if req.IssueKey != "" && lookupErr == nil && issue == nil {
		lookupErr = jira.ErrIssueNotFound
	}
	if req.IssueKey != "" && lookupErr != nil {
		b.log.Warn().Err(lookupErr).Str("key", req.IssueKey).Msg("issue lookup failed, task not added")
		return model.Task{}, lookupErr
	}

	task := b.store.New(req.Text)
	if issue != nil {
		task.JiraLink = &model.JiraLink{JiraKey: issue.Key, JiraSummary: issue.Summary, JiraURL: issue.URL}
	}
	task.Due = req.Due
	b.Rerender(b.store.Append(task))
	return task, nil
}

// Add parses, looks up and appends in one go.
func (b *Board) Add(ctx context.Context, input string, resolver IssueResolver) (model.Task, error) {
	req, err := b.ParseAdd(input)
	if err != nil {
		return model.Task{}, err
	}
	issue, lookupErr := Lookup(ctx, resolver, req.IssueKey)
	return b.FinishAdd(req, issue, lookupErr)
}

// Toggle flips done. Completing drops the due date and moves the item last.
func (b *Board) Toggle(id int64) error {
	tasks := b.store.Load()
	i := model.IndexOf(tasks, id)
	if i < 0 {
		return store.ErrTaskNotFound
	}
	return b.apply(b.store.SetDone(id, !tasks[i].Done))
}

func (b *Board) SetDone(id int64, done bool) error {
	return b.apply(b.store.SetDone(id, done))
}

func (b *Board) Delete(id int64) error {
	if cur, ok := b.Editor.Current(); ok && cur == id {
		b.Editor.reset()
	}
	return b.apply(b.store.Delete(id))
}

func (b *Board) ClearDueDate(id int64) error {
	return b.apply(b.store.ClearDueDate(id))
}

func (b *Board) Unlink(id int64) error {
	return b.apply(b.store.Unlink(id))
}

// SortByDate applies the one-shot date sort and marks the list sorted until
// the next manual drag.
func (b *Board) SortByDate() {
	tasks := b.store.SortByDate()
	b.sorted = true
	b.Rerender(tasks)
}

// AddForIssue prepends a task linked to key. A due-date tag in input is
// honoured; an issue key in input is ignored in favour of key.
func (b *Board) AddForIssue(ctx context.Context, key, input string, resolver IssueResolver) (model.Task, error) {
	text := strings.TrimSpace(input)
	if text == "" {
		return model.Task{}, ErrEmptyText
	}
	issue, err := Lookup(ctx, resolver, key)
	if err == nil && issue == nil {
		err = jira.ErrIssueNotFound
	}
	if err != nil {
		b.log.Warn().Err(err).Str("key", key).Msg("issue lookup failed, task not added")
		return model.Task{}, err
	}

	due := parse.ExtractDueDateAt(text, b.now())
	if due != nil {
		text = parse.StripDueTag(text)
	}
	task := b.store.New(text)
	task.JiraLink = &model.JiraLink{JiraKey: issue.Key, JiraSummary: issue.Summary, JiraURL: issue.URL}
	task.Due = due
	b.Rerender(b.store.Prepend(task))
	return task, nil
}

// Move places id right before ref (or right after it when after is set)
// on the realized list and reconciles the store from it, the same way a
// completed drag does.
func (b *Board) Move(id, ref int64, after bool) error {
	b.Mount()
	n, target := b.Surface.Node(id), b.Surface.Node(ref)
	if n == nil || target == nil {
		return store.ErrTaskNotFound
	}
	if n == target {
		return nil
	}
	if b.Editor.State(id) != Display {
		return ErrNotDraggable
	}

	if after {
		b.Surface.Remove(n)
		b.Surface.InsertBefore(n, b.Surface.NextSibling(target))
	} else {
		b.Surface.InsertBefore(n, target)
	}

	tasks, ok := b.store.Reorder(b.Surface.IDs())
	b.sorted = false
	b.Rerender(tasks)
	if !ok {
		b.log.Debug().Int64("id", id).Msg("move did not map onto stored list")
	}
	return nil
}

func (b *Board) apply(tasks []model.Task, err error) error {
	if err != nil {
		return err
	}
	b.Rerender(tasks)
	return nil
}
