package board

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/go-openapi/strfmt"
	"github.com/nakachan-ing/jmt-cli/internal/jira"
	"github.com/nakachan-ing/jmt-cli/internal/model"
	"github.com/nakachan-ing/jmt-cli/internal/store"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Friday
var fixedNow = time.Date(2026, 10, 16, 9, 30, 0, 0, time.Local)

type fakeResolver map[string]*jira.Issue

func (f fakeResolver) LookupIssue(_ context.Context, key string) (*jira.Issue, error) {
	issue, ok := f[key]
	if !ok {
		return nil, jira.ErrIssueNotFound
	}
	return issue, nil
}

var resolver = fakeResolver{
	"AB-1": {Key: "AB-1", Summary: "Linked issue", URL: "https://jira.example.com/browse/AB-1"},
}

func newTestBoard(t *testing.T, tasks ...model.Task) (*Board, *store.TaskStore, *[]ListView) {
	t.Helper()
	s := store.NewTaskStore(store.NewMemoryBackend(), "k", zerolog.Nop())
	s.Save(tasks)

	var renders []ListView
	b := New(s, RendererFunc(func(v ListView) { renders = append(renders, v) }), zerolog.Nop())
	b.now = func() time.Time { return fixedNow }
	b.Editor.now = b.now
	require.True(t, b.Mount())
	return b, s, &renders
}

func abc() []model.Task {
	return []model.Task{
		{ID: 1, Text: "A"},
		{ID: 2, Text: "B"},
		{ID: 3, Text: "C"},
	}
}

func ids(tasks []model.Task) []int64 {
	out := []int64{}
	for _, t := range tasks {
		out = append(out, t.ID)
	}
	return out
}

// layout gives every item two rows, the indicator none.
func layout(b *Board) {
	b.Surface.Layout(Point{}, 40, func(n *Node) int {
		if n.IsIndicator() {
			return 0
		}
		return 2
	})
}

func TestMountIsIdempotent(t *testing.T) {
	b, _, renders := newTestBoard(t, abc()...)
	assert.False(t, b.Mount())
	assert.Len(t, *renders, 1)
	assert.Equal(t, "Jira Mini Tasks ∑ 3 (✔ 0/✘ 3)", b.View().Header)
}

func TestDragBetweenItems(t *testing.T) {
	b, s, _ := newTestBoard(t, abc()...)
	b.SortByDate()
	require.True(t, b.Sorted())
	layout(b)

	session, err := b.Drag.Start(1, Point{X: 3, Y: 0})
	require.NoError(t, err)
	assert.True(t, b.Surface.Node(1).Lifted)

	_, err = b.Drag.Start(2, Point{X: 3, Y: 2})
	assert.ErrorIs(t, err, ErrDragActive)

	// B spans rows 2-3 (mid 3), C rows 4-5 (mid 5)
	session.Move(Point{X: 3, Y: 4})
	assert.Equal(t, b.Surface, session.Indicator().Parent())
	assert.Equal(t, Rect{X: 0, Y: 4, W: 40, H: 2}, session.Ghost().Rect)

	tasks, persisted := session.End()
	assert.True(t, persisted)
	assert.Equal(t, []int64{2, 1, 3}, ids(tasks))
	assert.Equal(t, []int64{2, 1, 3}, ids(s.Load()))
	assert.Equal(t, []int64{2, 1, 3}, b.Surface.IDs())
	assert.Nil(t, b.Drag.Active())
	assert.False(t, b.Sorted(), "manual drop clears the date sort")
}

func TestDragOutsideListRestores(t *testing.T) {
	b, s, renders := newTestBoard(t, abc()...)
	layout(b)
	before := len(*renders)

	session, err := b.Drag.Start(1, Point{X: 3, Y: 1})
	require.NoError(t, err)
	session.Move(Point{X: 3, Y: 4})
	session.Move(Point{X: 3, Y: 20})
	assert.Nil(t, session.Indicator().Parent())

	_, persisted := session.End()
	assert.False(t, persisted)
	assert.Equal(t, []int64{1, 2, 3}, b.Surface.IDs())
	assert.Equal(t, []int64{1, 2, 3}, ids(s.Load()))
	assert.False(t, b.Surface.Node(1).Lifted)
	assert.Equal(t, before, len(*renders))
}

func TestRerenderAbortsActiveDrag(t *testing.T) {
	tests := []struct {
		name   string
		change func(b *Board) error
		want   []int64
	}{
		{"reload", func(b *Board) error { b.Reload(); return nil }, []int64{1, 2, 3}},
		{"delete dragged item", func(b *Board) error { return b.Delete(1) }, []int64{2, 3}},
		{"toggle other item", func(b *Board) error { return b.Toggle(2) }, []int64{1, 3, 2}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b, s, _ := newTestBoard(t, abc()...)
			layout(b)

			session, err := b.Drag.Start(1, Point{X: 1, Y: 1})
			require.NoError(t, err)
			session.Move(Point{X: 1, Y: 4})

			require.NoError(t, tt.change(b))
			assert.True(t, session.Ended())
			assert.Nil(t, b.Drag.Active())

			layout(b)
			session.Move(Point{X: 1, Y: 50})
			tasks, persisted := session.End()
			assert.Nil(t, tasks)
			assert.False(t, persisted)
			assert.Equal(t, tt.want, b.Surface.IDs())
			assert.Equal(t, tt.want, ids(s.Load()))

			for _, n := range b.Surface.Children() {
				assert.False(t, n.IsIndicator())
				assert.False(t, n.Lifted)
			}

			next, err := b.Drag.Start(tt.want[0], Point{X: 1, Y: 1})
			require.NoError(t, err)
			next.End()
		})
	}
}

func TestDragWithoutMoveIsNoop(t *testing.T) {
	b, s, _ := newTestBoard(t, abc()...)
	layout(b)

	session, err := b.Drag.Start(2, Point{X: 1, Y: 2})
	require.NoError(t, err)
	_, persisted := session.End()
	assert.False(t, persisted)
	assert.Equal(t, []int64{1, 2, 3}, b.Surface.IDs())
	assert.Equal(t, []int64{1, 2, 3}, ids(s.Load()))
}

func TestDragPastLastItem(t *testing.T) {
	b, s, _ := newTestBoard(t, abc()...)
	layout(b)

	session, err := b.Drag.Start(1, Point{X: 0, Y: 0})
	require.NoError(t, err)
	session.Move(Point{X: 0, Y: 5})
	tasks, persisted := session.End()
	require.True(t, persisted)
	assert.Equal(t, []int64{2, 3, 1}, ids(tasks))
	assert.Equal(t, []int64{2, 3, 1}, ids(s.Load()))
}

func TestDragSingleItemParksAtEnd(t *testing.T) {
	b, s, _ := newTestBoard(t, model.Task{ID: 7, Text: "only"})
	layout(b)

	session, err := b.Drag.Start(7, Point{X: 0, Y: 0})
	require.NoError(t, err)
	session.Move(Point{X: 0, Y: 1})
	assert.Equal(t, b.Surface, session.Indicator().Parent())

	_, persisted := session.End()
	assert.True(t, persisted)
	assert.Equal(t, []int64{7}, ids(s.Load()))
}

func TestDragReconcileGuardKeepsStoredOrder(t *testing.T) {
	b, s, _ := newTestBoard(t, abc()...)
	layout(b)

	// another writer added a task the surface does not know about
	s.Append(model.Task{ID: 4, Text: "D"})

	session, err := b.Drag.Start(1, Point{X: 0, Y: 0})
	require.NoError(t, err)
	session.Move(Point{X: 0, Y: 4})
	tasks, persisted := session.End()
	assert.False(t, persisted)
	assert.Equal(t, []int64{1, 2, 3, 4}, ids(tasks))
	assert.Equal(t, []int64{1, 2, 3, 4}, ids(s.Load()))
	assert.Equal(t, []int64{1, 2, 3, 4}, b.Surface.IDs())
}

func TestDragBlockedWhileEditing(t *testing.T) {
	b, _, _ := newTestBoard(t, abc()...)
	layout(b)

	_, err := b.BeginEdit(2)
	require.NoError(t, err)
	assert.False(t, b.View().Items[1].Draggable())

	_, err = b.Drag.Start(2, Point{X: 0, Y: 2})
	assert.ErrorIs(t, err, ErrNotDraggable)

	_, err = b.Drag.Start(1, Point{X: 0, Y: 0})
	assert.NoError(t, err)
}

func TestEditForcesOtherItemBack(t *testing.T) {
	b, s, _ := newTestBoard(t, abc()...)

	_, err := b.BeginEdit(2)
	require.NoError(t, err)
	b.Editor.SetDraft("B changed but not saved")

	forced, err := b.BeginEdit(1)
	require.NoError(t, err)
	assert.Equal(t, int64(2), forced)
	assert.Equal(t, Display, b.Editor.State(2))
	assert.Equal(t, Editing, b.Editor.State(1))
	assert.Equal(t, "A", b.Editor.Draft())
	assert.Equal(t, "B", s.Load()[1].Text)

	assert.True(t, b.View().Items[0].Editing)
	assert.False(t, b.View().Items[1].Editing)
}

func TestEditSave(t *testing.T) {
	b, s, _ := newTestBoard(t, abc()...)

	_, err := b.BeginEdit(3)
	require.NoError(t, err)
	b.Editor.SetDraft("  write AB-1 report @tomorrow \n")

	tasks, err := b.Editor.Save(context.Background(), resolver)
	require.NoError(t, err)
	assert.Equal(t, Display, b.Editor.State(3))

	got := s.Load()[2]
	assert.Equal(t, tasks[2], got)
	assert.Equal(t, "write  report", got.Text)
	require.True(t, got.HasJira())
	assert.Equal(t, "Linked issue", got.JiraSummary)
	require.True(t, got.HasDueDate())
	assert.Equal(t, model.DueTomorrow, got.DueDateType)
	assert.Equal(t, "2026-10-17", got.DueDate.String())
}

func TestEditSaveKeepsExistingLinkAndDate(t *testing.T) {
	due, err := parseDate("2026-10-20")
	require.NoError(t, err)
	task := model.Task{
		ID: 1, Text: "old",
		JiraLink: &model.JiraLink{JiraKey: "AB-1", JiraSummary: "s", JiraURL: "u"},
		Due:      &model.Due{DueDate: due, DueDateLabel: "Later", DueDateType: model.DueLater},
	}
	b, s, _ := newTestBoard(t, task)

	_, err = b.BeginEdit(1)
	require.NoError(t, err)
	b.Editor.SetDraft("new text")
	_, err = b.Editor.Save(context.Background(), nil)
	require.NoError(t, err)

	got := s.Load()[0]
	assert.Equal(t, "new text", got.Text)
	assert.Equal(t, task.JiraLink, got.JiraLink)
	assert.Equal(t, task.Due, got.Due)
}

func TestEditSaveRejectsEmpty(t *testing.T) {
	b, s, _ := newTestBoard(t, abc()...)
	_, err := b.BeginEdit(1)
	require.NoError(t, err)

	b.Editor.SetDraft("   \n ")
	_, err = b.Editor.Save(context.Background(), resolver)
	assert.ErrorIs(t, err, ErrEmptyText)
	assert.Equal(t, Editing, b.Editor.State(1))
	assert.Equal(t, "A", s.Load()[0].Text)
}

func TestEditSaveLookupFailureKeepsEditing(t *testing.T) {
	b, s, _ := newTestBoard(t, abc()...)
	_, err := b.BeginEdit(1)
	require.NoError(t, err)

	b.Editor.SetDraft("see ZZ-9")
	_, err = b.Editor.Save(context.Background(), resolver)
	assert.ErrorIs(t, err, jira.ErrIssueNotFound)
	assert.Equal(t, Editing, b.Editor.State(1))
	assert.Equal(t, "see ZZ-9", b.Editor.Draft())
	assert.Error(t, b.Editor.Err())
	assert.Equal(t, "A", s.Load()[0].Text)
}

func TestEditSplitSaveIsBusy(t *testing.T) {
	b, _, _ := newTestBoard(t, abc()...)
	_, err := b.BeginEdit(1)
	require.NoError(t, err)
	b.Editor.SetDraft("AB-1 fix")

	req, err := b.Editor.BeginSave()
	require.NoError(t, err)
	assert.Equal(t, "AB-1", req.IssueKey)
	assert.Equal(t, Saving, b.Editor.State(1))

	_, err = b.Editor.BeginSave()
	assert.ErrorIs(t, err, ErrBusy)
	_, err = b.BeginEdit(2)
	assert.ErrorIs(t, err, ErrBusy)

	_, err = b.Editor.FinishSave(req, nil, errors.New("network down"))
	assert.Error(t, err)
	assert.Equal(t, Editing, b.Editor.State(1))
}

func TestEditCancel(t *testing.T) {
	b, s, renders := newTestBoard(t, abc()...)
	_, err := b.BeginEdit(1)
	require.NoError(t, err)
	b.Editor.SetDraft("nope")
	n := len(*renders)

	b.Editor.Cancel()
	assert.Equal(t, Display, b.Editor.State(1))
	assert.Equal(t, "A", s.Load()[0].Text)
	assert.Len(t, *renders, n+1)
	assert.False(t, (*renders)[n].Items[0].Editing)
}

func TestToggleDoneClearsDueDate(t *testing.T) {
	due, err := parseDate("2026-10-17")
	require.NoError(t, err)
	tasks := abc()
	tasks[0].Due = &model.Due{DueDate: due, DueDateLabel: "Tomorrow", DueDateType: model.DueTomorrow}
	b, s, _ := newTestBoard(t, tasks...)

	require.NoError(t, b.Toggle(1))
	got := s.Load()
	assert.Equal(t, []int64{2, 3, 1}, ids(got))
	assert.True(t, got[2].Done)
	assert.Nil(t, got[2].Due)
	assert.Equal(t, []int64{2, 3, 1}, b.Surface.IDs())
	assert.Equal(t, "Jira Mini Tasks ∑ 3 (✔ 1/✘ 2)", b.View().Header)

	require.NoError(t, b.Toggle(1))
	assert.False(t, s.Load()[2].Done)

	assert.ErrorIs(t, b.Toggle(99), store.ErrTaskNotFound)
}

func TestAdd(t *testing.T) {
	b, s, _ := newTestBoard(t, abc()...)

	task, err := b.Add(context.Background(), "  AB-1 call back @thisweek ", resolver)
	require.NoError(t, err)
	assert.Equal(t, "call back", task.Text)
	assert.Equal(t, "AB-1", task.JiraKey)
	assert.Equal(t, model.DueThisWeek, task.DueDateType)
	assert.Equal(t, []int64{1, 2, 3, task.ID}, ids(s.Load()))

	_, err = b.Add(context.Background(), "  ", resolver)
	assert.ErrorIs(t, err, ErrEmptyText)

	_, err = b.Add(context.Background(), "ZZ-9 unknown", resolver)
	assert.ErrorIs(t, err, jira.ErrIssueNotFound)
	assert.Len(t, s.Load(), 4)
}

func TestDeleteClearAndUnlink(t *testing.T) {
	due, err := parseDate("2026-10-17")
	require.NoError(t, err)
	tasks := abc()
	tasks[1].Due = &model.Due{DueDate: due, DueDateLabel: "Tomorrow", DueDateType: model.DueTomorrow}
	tasks[2].JiraLink = &model.JiraLink{JiraKey: "AB-1", JiraSummary: "s", JiraURL: "u"}
	b, s, _ := newTestBoard(t, tasks...)

	require.NoError(t, b.ClearDueDate(2))
	require.NoError(t, b.Unlink(3))
	require.NoError(t, b.Delete(1))

	got := s.Load()
	assert.Equal(t, []int64{2, 3}, ids(got))
	assert.False(t, got[0].HasDueDate())
	assert.False(t, got[1].HasJira())
	assert.Empty(t, b.View().Items[0].Badges)

	assert.ErrorIs(t, b.Delete(1), store.ErrTaskNotFound)
}

func TestEditHeight(t *testing.T) {
	assert.Equal(t, 1, EditHeight("", 10))
	assert.Equal(t, 2, EditHeight("a\nb", 10))
	assert.Equal(t, 3, EditHeight("12345678901", 5))
	assert.Equal(t, MaxEditLines, EditHeight("1\n2\n3\n4\n5\n6\n7\n8", 10))
}

func TestActionFor(t *testing.T) {
	assert.Equal(t, ActionSave, ActionFor(KeyEnter))
	assert.Equal(t, ActionNewline, ActionFor(KeyShiftEnter))
	assert.Equal(t, ActionCancel, ActionFor(KeyEscape))
	assert.Equal(t, ActionNone, ActionFor(KeyOther))
}

func TestMove(t *testing.T) {
	b, s, _ := newTestBoard(t, abc()...)
	b.SortByDate()

	require.NoError(t, b.Move(3, 1, false))
	assert.Equal(t, []int64{3, 1, 2}, ids(s.Load()))
	assert.False(t, b.Sorted())

	require.NoError(t, b.Move(3, 2, true))
	assert.Equal(t, []int64{1, 2, 3}, ids(s.Load()))

	require.NoError(t, b.Move(1, 2, true))
	assert.Equal(t, []int64{2, 1, 3}, ids(s.Load()))
	assert.Equal(t, []int64{2, 1, 3}, b.Surface.IDs())

	assert.ErrorIs(t, b.Move(9, 1, false), store.ErrTaskNotFound)

	_, err := b.BeginEdit(2)
	require.NoError(t, err)
	assert.ErrorIs(t, b.Move(2, 3, true), ErrNotDraggable)
}

func TestAddForIssuePrepends(t *testing.T) {
	b, s, _ := newTestBoard(t, abc()...)

	task, err := b.AddForIssue(context.Background(), "AB-1", "  follow up @tomorrow ", resolver)
	require.NoError(t, err)

	got := s.Load()
	require.Len(t, got, 4)
	assert.Equal(t, task.ID, got[0].ID)
	assert.Equal(t, "follow up", got[0].Text)
	assert.Equal(t, "Linked issue", got[0].JiraSummary)
	require.True(t, got[0].HasDueDate())
	assert.Equal(t, "2026-10-17", got[0].DueDate.String())

	_, err = b.AddForIssue(context.Background(), "ZZ-9", "x", resolver)
	assert.ErrorIs(t, err, jira.ErrIssueNotFound)
	_, err = b.AddForIssue(context.Background(), "AB-1", "  ", resolver)
	assert.ErrorIs(t, err, ErrEmptyText)
	assert.Len(t, s.Load(), 4)
}

// parseDate reads a YYYY-MM-DD calendar date.
func parseDate(s string) (strfmt.Date, error) {
	var d strfmt.Date
	err := d.UnmarshalText([]byte(s))
	return d, err
}
