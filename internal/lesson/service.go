package lesson

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/1babii1/lessonsBot/core/logger"
)

const component = "service.lessons"

// Service applies input rules on top of a Store and logs every operation.
type Service struct {
	store Store
}

// NewService wires a service to the given store.
func NewService(store Store) *Service {
	return &Service{store: store}
}

// Active lists lessons that still have occurrences left.
func (s *Service) Active(ctx context.Context) ([]Lesson, error) {
	start := time.Now()
	list, err := s.store.ListActive(ctx)
	if err != nil {
		s.logFailure(ctx, "lesson.list", start, err)
		return nil, err
	}
	logger.Debug(ctx, component, "lesson.list",
		slog.String("status", "ok"),
		slog.Int("count", len(list)),
		slog.Duration("duration", logger.Took(start)),
	)
	return list, nil
}

// Add creates the lesson or overwrites its counter with count.
func (s *Service) Add(ctx context.Context, title string, count int) (Lesson, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return Lesson{}, &ValidationError{Field: "title", Reason: "must not be empty"}
	}
	if count <= 0 {
		return Lesson{}, &ValidationError{Field: "count", Reason: "must be greater than 0"}
	}

	start := time.Now()
	l, err := s.store.Upsert(ctx, title, count)
	if err != nil {
		s.logFailure(ctx, "lesson.upsert", start, err, slog.String("title", title))
		return Lesson{}, err
	}
	logger.Info(ctx, component, "lesson.upsert",
		slog.String("status", "ok"),
		slog.String("lesson_id", l.ID),
		slog.String("title", l.Title),
		slog.Int("counter", l.Counter),
		slog.Duration("duration", logger.Took(start)),
	)
	return l, nil
}

// Done consumes one occurrence of the titled lesson.
func (s *Service) Done(ctx context.Context, title string) (Outcome, error) {
	title = strings.TrimSpace(title)
	start := time.Now()
	out, err := s.store.DecrementOrDelete(ctx, title)
	if err != nil {
		s.logFailure(ctx, "lesson.done", start, err, slog.String("title", title))
		return Outcome{}, err
	}
	logger.Info(ctx, component, "lesson.done",
		slog.String("status", "ok"),
		slog.String("title", out.Title),
		slog.String("result", out.Kind.String()),
		slog.Int("counter", out.Remaining),
		slog.Duration("duration", logger.Took(start)),
	)
	return out, nil
}

func (s *Service) logFailure(ctx context.Context, event string, start time.Time, err error, extra ...slog.Attr) {
	attrs := []slog.Attr{
		slog.String("status", "fail"),
		slog.String("err", err.Error()),
		slog.Duration("duration", logger.Took(start)),
	}
	var c interface{ Code() string }
	if errors.As(err, &c) {
		attrs = append(attrs, slog.String("err_code", c.Code()))
	}
	logger.Error(ctx, component, event, append(attrs, extra...)...)
}
