package model

import (
	"sort"
	"time"
)

// NewTask builds a fresh record. The id is the creation time in epoch
// milliseconds, bumped past any id already present so it is never reused.
func NewTask(text string, now time.Time, existing []Task) Task {
	id := now.UnixMilli()
	for _, t := range existing {
		if t.ID >= id {
			id = t.ID + 1
		}
	}
	return Task{
		ID:        id,
		Text:      text,
		Done:      false,
		CreatedAt: now.UnixMilli(),
	}
}

// IndexOf returns the position of the task with the given id, or -1.
func IndexOf(tasks []Task, id int64) int {
	for i := range tasks {
		if tasks[i].ID == id {
			return i
		}
	}
	return -1
}

// Remove returns a new list without the task with the given id. The
// relative order of the remaining tasks is preserved.
func Remove(tasks []Task, id int64) []Task {
	next := make([]Task, 0, len(tasks))
	for _, t := range tasks {
		if t.ID != id {
			next = append(next, t)
		}
	}
	return next
}

// DoneLast moves completed tasks behind open ones, keeping relative order
// inside each group.
func DoneLast(tasks []Task) []Task {
	next := make([]Task, 0, len(tasks))
	var done []Task
	for _, t := range tasks {
		if t.Done {
			done = append(done, t)
			continue
		}
		next = append(next, t)
	}
	return append(next, done...)
}

// SortByDueDate orders open tasks with a due date first (ascending), then
// open tasks without one, then completed tasks.
func SortByDueDate(tasks []Task) []Task {
	var dated, undated, done []Task
	for _, t := range tasks {
		switch {
		case t.Done:
			done = append(done, t)
		case t.HasDueDate():
			dated = append(dated, t)
		default:
			undated = append(undated, t)
		}
	}
	sort.SliceStable(dated, func(i, j int) bool {
		return time.Time(dated[i].Due.DueDate).Before(time.Time(dated[j].Due.DueDate))
	})

	next := make([]Task, 0, len(tasks))
	next = append(next, dated...)
	next = append(next, undated...)
	return append(next, done...)
}

// Reorder maps ids back to tasks. It reports false when an id is unknown,
// repeated, or when any task would be lost; the caller must then keep the
// previous order.
func Reorder(tasks []Task, ids []int64) ([]Task, bool) {
	if len(ids) != len(tasks) {
		return nil, false
	}
	byID := make(map[int64]Task, len(tasks))
	for _, t := range tasks {
		byID[t.ID] = t
	}
	next := make([]Task, 0, len(ids))
	for _, id := range ids {
		t, ok := byID[id]
		if !ok {
			return nil, false
		}
		delete(byID, id)
		next = append(next, t)
	}
	return next, true
}

// Counts summarises a list for the header counter.
type Counts struct {
	Total  int
	Done   int
	Undone int
}

func Count(tasks []Task) Counts {
	c := Counts{Total: len(tasks)}
	for _, t := range tasks {
		if t.Done {
			c.Done++
		}
	}
	c.Undone = c.Total - c.Done
	return c
}
