// Package lessontest provides an in-memory lesson.Store for tests.
package lessontest

import (
	"context"
	"sort"
	"strconv"
	"sync"

	"github.com/1babii1/lessonsBot/internal/lesson"
)

// Memory keeps lessons in a map keyed by id. Err, when set, is returned by
// every operation wrapped in a *lesson.StoreError.
type Memory struct {
	mu      sync.Mutex
	seq     int
	lessons map[string]lesson.Lesson

	Err    error
	closed bool
}

var _ lesson.Store = (*Memory)(nil)

// NewMemory returns an empty store, optionally seeded with lessons.
func NewMemory(seed ...lesson.Lesson) *Memory {
	m := &Memory{lessons: make(map[string]lesson.Lesson)}
	for _, l := range seed {
		m.seq++
		if l.ID == "" {
			l.ID = strconv.Itoa(m.seq)
		}
		m.lessons[l.ID] = l
	}
	return m
}

// ListActive returns lessons with a positive counter ordered by id.
func (m *Memory) ListActive(context.Context) ([]lesson.Lesson, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return nil, lesson.WrapStore(lesson.OpList, m.Err)
	}
	var out []lesson.Lesson
	for _, l := range m.lessons {
		if l.Counter > 0 {
			out = append(out, l)
		}
	}
	sort.Slice(out, func(i, j int) bool { return idLess(out[i].ID, out[j].ID) })
	return out, nil
}

// Upsert updates every lesson with the title or inserts a new one.
func (m *Memory) Upsert(_ context.Context, title string, counter int) (lesson.Lesson, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return lesson.Lesson{}, lesson.WrapStore(lesson.OpUpsert, m.Err)
	}
	var (
		found lesson.Lesson
		ok    bool
	)
	for id, l := range m.lessons {
		if l.Title != title {
			continue
		}
		l.Counter = counter
		m.lessons[id] = l
		if !ok || idLess(id, found.ID) {
			found, ok = l, true
		}
	}
	if ok {
		return found, nil
	}
	m.seq++
	l := lesson.Lesson{ID: strconv.Itoa(m.seq), Title: title, Counter: counter}
	m.lessons[l.ID] = l
	return l, nil
}

// FindByTitle returns the lowest-id lesson with the title.
func (m *Memory) FindByTitle(_ context.Context, title string) (lesson.Lesson, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return lesson.Lesson{}, lesson.WrapStore(lesson.OpFind, m.Err)
	}
	var (
		found lesson.Lesson
		ok    bool
	)
	for id, l := range m.lessons {
		if l.Title == title && (!ok || idLess(id, found.ID)) {
			found, ok = l, true
		}
	}
	if !ok {
		return lesson.Lesson{}, lesson.ErrNotFound
	}
	return found, nil
}

// SetCounter overwrites the counter of the lesson with id.
func (m *Memory) SetCounter(_ context.Context, id string, counter int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return lesson.WrapStore(lesson.OpSetCounter, m.Err)
	}
	l, ok := m.lessons[id]
	if !ok {
		return nil
	}
	l.Counter = counter
	m.lessons[id] = l
	return nil
}

// Delete removes the lesson with id.
func (m *Memory) Delete(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return lesson.WrapStore(lesson.OpDelete, m.Err)
	}
	delete(m.lessons, id)
	return nil
}

// DecrementOrDelete implements lesson.Store.
func (m *Memory) DecrementOrDelete(ctx context.Context, title string) (lesson.Outcome, error) {
	return lesson.Decrement(ctx, m, title)
}

// Close marks the store closed.
func (m *Memory) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.closed = true
	return nil
}

// Closed reports whether Close was called.
func (m *Memory) Closed() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.closed
}

// All returns every stored lesson, including zero counters, ordered by id.
func (m *Memory) All() []lesson.Lesson {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]lesson.Lesson, 0, len(m.lessons))
	for _, l := range m.lessons {
		out = append(out, l)
	}
	sort.Slice(out, func(i, j int) bool { return idLess(out[i].ID, out[j].ID) })
	return out
}

func idLess(a, b string) bool {
	ai, errA := strconv.Atoi(a)
	bi, errB := strconv.Atoi(b)
	if errA == nil && errB == nil {
		return ai < bi
	}
	return a < b
}
