package store

import (
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/nakachan-ing/jmt-cli/internal/model"
	"github.com/rs/zerolog"
)

// TaskStore persists the ordered task list as one JSON array under a single
// key. Load never fails and Save swallows errors: the list is a best-effort
// personal cache, and the last writer wins.
type TaskStore struct {
	backend Backend
	key     string
	log     zerolog.Logger
	now     func() time.Time
}

func NewTaskStore(backend Backend, key string, log zerolog.Logger) *TaskStore {
	if key == "" {
		key = model.DefaultStorageKey
	}
	return &TaskStore{backend: backend, key: key, log: log, now: time.Now}
}

func (s *TaskStore) Key() string {
	return s.key
}

// Load returns the persisted list, or an empty one when the key is absent,
// unreadable, not JSON, or not an array. Damaged records are salvaged or
// skipped one by one.
func (s *TaskStore) Load() []model.Task {
	raw, ok, err := s.backend.Get(s.key)
	if err != nil {
		s.log.Warn().Err(err).Str("key", s.key).Msg("task list unreadable, using empty list")
		return []model.Task{}
	}
	if !ok {
		return []model.Task{}
	}

	var items []json.RawMessage
	if err := json.Unmarshal([]byte(raw), &items); err != nil {
		s.log.Warn().Err(err).Str("key", s.key).Msg("task list corrupt, using empty list")
		return []model.Task{}
	}

	tasks := make([]model.Task, 0, len(items))
	for i, item := range items {
		t, err := decodeTask(item)
		if err != nil {
			s.log.Warn().Err(err).Int("index", i).Str("key", s.key).Msg("task record unreadable, skipped")
			continue
		}
		tasks = append(tasks, t)
	}
	return tasks
}

// decodeTask reads one stored record. A record that does not decode as a
// whole keeps its id, text, done and createdAt; a Jira or due-date group
// that does not decode on its own is dropped.
func decodeTask(raw json.RawMessage) (model.Task, error) {
	var t model.Task
	err := json.Unmarshal(raw, &t)
	if err == nil {
		return t, nil
	}

	var fields map[string]json.RawMessage
	if json.Unmarshal(raw, &fields) != nil {
		return model.Task{}, err
	}
	id, ok := decodeInt(fields["id"])
	if !ok {
		return model.Task{}, fmt.Errorf("no usable id: %w", err)
	}

	t = model.Task{ID: id}
	json.Unmarshal(fields["text"], &t.Text)
	json.Unmarshal(fields["done"], &t.Done)
	t.CreatedAt, _ = decodeInt(fields["createdAt"])

	var link model.JiraLink
	if json.Unmarshal(raw, &link) == nil && link.JiraKey != "" {
		t.JiraLink = &link
	}
	if d, has := fields["dueDate"]; has && string(d) != "null" {
		var due model.Due
		if json.Unmarshal(raw, &due) == nil {
			t.Due = &due
		}
	}
	return t, nil
}

// decodeInt accepts a JSON number or a numeric string.
func decodeInt(raw json.RawMessage) (int64, bool) {
	if len(raw) == 0 || string(raw) == "null" {
		return 0, false
	}
	var n int64
	if json.Unmarshal(raw, &n) == nil {
		return n, true
	}
	var f float64
	if json.Unmarshal(raw, &f) == nil {
		return int64(f), true
	}
	var str string
	if json.Unmarshal(raw, &str) == nil {
		if n, err := strconv.ParseInt(str, 10, 64); err == nil {
			return n, true
		}
	}
	return 0, false
}

// Save rewrites the whole list.
func (s *TaskStore) Save(tasks []model.Task) {
	if tasks == nil {
		tasks = []model.Task{}
	}
	raw, err := json.Marshal(tasks)
	if err != nil {
		s.log.Warn().Err(err).Msg("task list not encodable, dropped")
		return
	}
	if err := s.backend.Set(s.key, string(raw)); err != nil {
		s.log.Warn().Err(err).Str("key", s.key).Msg("task list not saved")
		return
	}
	s.log.Debug().Int("tasks", len(tasks)).Msg("task list saved")
}

// Update loads the list, lets fn change the task with the given id in place,
// and saves the result. fn may reorder by returning a new list.
func (s *TaskStore) Update(id int64, fn func(tasks []model.Task, i int) []model.Task) ([]model.Task, error) {
	tasks := s.Load()
	i := model.IndexOf(tasks, id)
	if i < 0 {
		return tasks, ErrTaskNotFound
	}
	next := fn(tasks, i)
	s.Save(next)
	return next, nil
}

// Append adds a task at the end of the list.
func (s *TaskStore) Append(task model.Task) []model.Task {
	next := append(s.Load(), task)
	s.Save(next)
	return next
}

// Prepend adds a task at the start of the list.
func (s *TaskStore) Prepend(task model.Task) []model.Task {
	next := append([]model.Task{task}, s.Load()...)
	s.Save(next)
	return next
}

// New builds a record with a fresh id against the current list.
func (s *TaskStore) New(text string) model.Task {
	return model.NewTask(text, s.now(), s.Load())
}

func (s *TaskStore) Delete(id int64) ([]model.Task, error) {
	tasks := s.Load()
	if model.IndexOf(tasks, id) < 0 {
		return tasks, ErrTaskNotFound
	}
	next := model.Remove(tasks, id)
	s.Save(next)
	return next, nil
}

// SetDone marks a task done or not done. Completing a task drops its due
// date; the list is then re-sorted so completed tasks come last.
func (s *TaskStore) SetDone(id int64, done bool) ([]model.Task, error) {
	return s.Update(id, func(tasks []model.Task, i int) []model.Task {
		tasks[i].Done = done
		if done {
			tasks[i].ClearDueDate()
		}
		return model.DoneLast(tasks)
	})
}

func (s *TaskStore) ClearDueDate(id int64) ([]model.Task, error) {
	return s.Update(id, func(tasks []model.Task, i int) []model.Task {
		tasks[i].ClearDueDate()
		return tasks
	})
}

func (s *TaskStore) Unlink(id int64) ([]model.Task, error) {
	return s.Update(id, func(tasks []model.Task, i int) []model.Task {
		tasks[i].ClearJira()
		return tasks
	})
}

func (s *TaskStore) SortByDate() []model.Task {
	next := model.SortByDueDate(s.Load())
	s.Save(next)
	return next
}

// Reorder persists the order given by ids when it maps onto the stored list
// exactly. Otherwise the stored order is returned untouched and ok is false.
func (s *TaskStore) Reorder(ids []int64) (tasks []model.Task, ok bool) {
	current := s.Load()
	next, ok := model.Reorder(current, ids)
	if !ok {
		s.log.Debug().Ints64("ids", ids).Int("stored", len(current)).Msg("reorder does not map onto stored list, kept previous order")
		return current, false
	}
	s.Save(next)
	return next, true
}

// TasksForIssue returns the tasks linked to an issue key, in list order.
func (s *TaskStore) TasksForIssue(key string) []model.Task {
	var out []model.Task
	for _, t := range s.Load() {
		if t.HasJira() && t.JiraKey == key {
			out = append(out, t)
		}
	}
	return out
}
