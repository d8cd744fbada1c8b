// Package sqlstore implements lesson.Store on SQLite or PostgreSQL through sqlx.
package sqlstore

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"
	"strconv"

	"github.com/jmoiron/sqlx"

	"github.com/1babii1/lessonsBot/core/logger"
	"github.com/1babii1/lessonsBot/internal/lesson"
)

const component = "store.sql"

type row struct {
	ID      int64  `db:"id"`
	Title   string `db:"title"`
	Counter int    `db:"counter"`
}

func (r row) lesson() lesson.Lesson {
	return lesson.Lesson{ID: strconv.FormatInt(r.ID, 10), Title: r.Title, Counter: r.Counter}
}

// Store keeps lessons in the "lessons" table. Title carries no unique
// constraint, so two concurrent first inserts of a title both succeed.
type Store struct {
	db *sqlx.DB
}

var _ lesson.Store = (*Store)(nil)

// New wraps an open, migrated database.
func New(db *sqlx.DB) *Store {
	return &Store{db: db}
}

// ListActive returns lessons with a positive counter in insertion order.
func (s *Store) ListActive(ctx context.Context) ([]lesson.Lesson, error) {
	var rows []row
	if err := s.db.SelectContext(ctx, &rows, `SELECT id, title, counter FROM lessons WHERE counter > 0 ORDER BY id`); err != nil {
		return nil, s.fail(ctx, lesson.OpList, err)
	}
	out := make([]lesson.Lesson, 0, len(rows))
	for _, r := range rows {
		out = append(out, r.lesson())
	}
	return out, nil
}

// Upsert overwrites the counter of every row with the title, or inserts one.
func (s *Store) Upsert(ctx context.Context, title string, counter int) (lesson.Lesson, error) {
	var id int64
	err := s.db.GetContext(ctx, &id,
		s.db.Rebind(`UPDATE lessons SET counter = ? WHERE title = ? RETURNING id`), counter, title)
	if errors.Is(err, sql.ErrNoRows) {
		err = s.db.GetContext(ctx, &id,
			s.db.Rebind(`INSERT INTO lessons (title, counter) VALUES (?, ?) RETURNING id`), title, counter)
		if err == nil {
			logger.Debug(ctx, component, "lesson.insert", slog.Int64("lesson_id", id), slog.String("title", title))
		}
	}
	if err != nil {
		return lesson.Lesson{}, s.fail(ctx, lesson.OpUpsert, err)
	}
	return row{ID: id, Title: title, Counter: counter}.lesson(), nil
}

// FindByTitle returns the oldest row with the title.
func (s *Store) FindByTitle(ctx context.Context, title string) (lesson.Lesson, error) {
	var r row
	err := s.db.GetContext(ctx, &r,
		s.db.Rebind(`SELECT id, title, counter FROM lessons WHERE title = ? ORDER BY id LIMIT 1`), title)
	if errors.Is(err, sql.ErrNoRows) {
		return lesson.Lesson{}, lesson.ErrNotFound
	}
	if err != nil {
		return lesson.Lesson{}, s.fail(ctx, lesson.OpFind, err)
	}
	return r.lesson(), nil
}

// SetCounter overwrites the counter of the row with id.
func (s *Store) SetCounter(ctx context.Context, id string, counter int) error {
	n, err := parseID(id)
	if err == nil {
		_, err = s.db.ExecContext(ctx, s.db.Rebind(`UPDATE lessons SET counter = ? WHERE id = ?`), counter, n)
	}
	if err != nil {
		return s.fail(ctx, lesson.OpSetCounter, err)
	}
	return nil
}

// Delete removes the row with id.
func (s *Store) Delete(ctx context.Context, id string) error {
	n, err := parseID(id)
	if err == nil {
		_, err = s.db.ExecContext(ctx, s.db.Rebind(`DELETE FROM lessons WHERE id = ?`), n)
	}
	if err != nil {
		return s.fail(ctx, lesson.OpDelete, err)
	}
	return nil
}

// DecrementOrDelete implements lesson.Store. It is a plain read-modify-write:
// concurrent calls for one title may lose a decrement.
func (s *Store) DecrementOrDelete(ctx context.Context, title string) (lesson.Outcome, error) {
	return lesson.Decrement(ctx, s, title)
}

// Close closes the connection pool.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) fail(ctx context.Context, op string, err error) error {
	serr := lesson.WrapStore(op, err)
	logger.Error(ctx, component, "lesson."+op,
		slog.String("status", "fail"),
		slog.String("driver", s.db.DriverName()),
		slog.String("err", err.Error()),
		slog.String("err_code", "STORE_ERROR"),
	)
	return serr
}

func parseID(id string) (int64, error) {
	return strconv.ParseInt(id, 10, 64)
}
