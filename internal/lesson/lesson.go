// Package lesson holds the lesson entity, the storage contract shared by all
// backends and the service used by chat handlers.
package lesson

import "context"

// Lesson is a titled countdown of remaining occurrences.
type Lesson struct {
	ID      string
	Title   string
	Counter int
}

// Store persists lessons. Title is the natural key: at most one lesson per
// title is expected, but no backend enforces it at the schema level.
type Store interface {
	// ListActive returns lessons with a positive counter in no particular order.
	ListActive(ctx context.Context) ([]Lesson, error)
	// Upsert replaces the counter of the lesson with this title or creates it.
	Upsert(ctx context.Context, title string, counter int) (Lesson, error)
	// FindByTitle returns ErrNotFound when no lesson has this exact title.
	FindByTitle(ctx context.Context, title string) (Lesson, error)
	// DecrementOrDelete consumes one occurrence of the lesson.
	DecrementOrDelete(ctx context.Context, title string) (Outcome, error)
	Close() error
}

// Records is the subset of primitives Decrement is built from.
type Records interface {
	FindByTitle(ctx context.Context, title string) (Lesson, error)
	SetCounter(ctx context.Context, id string, counter int) error
	Delete(ctx context.Context, id string) error
}

// OutcomeKind tells how a decrement ended.
type OutcomeKind int

const (
	// OutcomeNotFound means no lesson had the requested title.
	OutcomeNotFound OutcomeKind = iota + 1
	// OutcomeCompleted means the counter ran out and the lesson was deleted.
	OutcomeCompleted
	// OutcomeUpdated means the counter was lowered and the lesson kept.
	OutcomeUpdated
)

// String implements fmt.Stringer for log attributes.
func (k OutcomeKind) String() string {
	switch k {
	case OutcomeNotFound:
		return "not_found"
	case OutcomeCompleted:
		return "completed"
	case OutcomeUpdated:
		return "updated"
	}
	return "unknown"
}

// Outcome is the result of DecrementOrDelete.
type Outcome struct {
	Kind  OutcomeKind
	Title string
	// Remaining is the stored counter after an update; zero otherwise.
	Remaining int
}

// Decrement implements DecrementOrDelete on top of the Records primitives.
//
// The lookup and the write are separate statements. Two concurrent calls for
// the same title can both read the same counter and one decrement is lost.
func Decrement(ctx context.Context, r Records, title string) (Outcome, error) {
	l, err := r.FindByTitle(ctx, title)
	if err != nil {
		if IsNotFound(err) {
			return Outcome{Kind: OutcomeNotFound, Title: title}, nil
		}
		return Outcome{}, err
	}

	remaining := l.Counter - 1
	if remaining <= 0 {
		if err := r.Delete(ctx, l.ID); err != nil {
			return Outcome{}, err
		}
		return Outcome{Kind: OutcomeCompleted, Title: l.Title}, nil
	}

	if err := r.SetCounter(ctx, l.ID, remaining); err != nil {
		return Outcome{}, err
	}
	return Outcome{Kind: OutcomeUpdated, Title: l.Title, Remaining: remaining}, nil
}
