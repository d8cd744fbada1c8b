package mongostore

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/1babii1/lessonsBot/core/mongodb"
	"github.com/1babii1/lessonsBot/internal/lesson"
)

// newStore connects to MONGODB_TEST_URI and uses a throwaway database.
func newStore(t *testing.T) *Store {
	t.Helper()
	uri := os.Getenv("MONGODB_TEST_URI")
	if uri == "" {
		t.Skip("MONGODB_TEST_URI not set")
	}
	dbName := "lessons_test_" + uuid.NewString()[:8]
	client, err := mongodb.Connect(context.Background(), mongodb.Config{URI: uri, Database: dbName, ConnectTimeoutSeconds: 5})
	require.NoError(t, err)
	s := New(client, dbName)
	t.Cleanup(func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = client.Database(dbName).Drop(ctx)
		_ = s.Close()
	})
	return s
}

func TestUpsertCreatesThenOverwrites(t *testing.T) {
	ctx := context.Background()
	s := newStore(t)

	created, err := s.Upsert(ctx, "Piano", 3)
	require.NoError(t, err)
	_, err = uuid.Parse(created.ID)
	require.NoError(t, err)

	updated, err := s.Upsert(ctx, "Piano", 7)
	require.NoError(t, err)
	assert.Equal(t, created.ID, updated.ID)
	assert.Equal(t, 7, updated.Counter)

	n, err := s.coll.CountDocuments(ctx, map[string]string{"title": "Piano"})
	require.NoError(t, err)
	assert.EqualValues(t, 1, n)
}

func TestListActiveAndDecrement(t *testing.T) {
	ctx := context.Background()
	s := newStore(t)
	_, err := s.Upsert(ctx, "Piano", 2)
	require.NoError(t, err)
	_, err = s.Upsert(ctx, "Guitar", 1)
	require.NoError(t, err)

	got, err := s.ListActive(ctx)
	require.NoError(t, err)
	want := []lesson.Lesson{{Title: "Guitar", Counter: 1}, {Title: "Piano", Counter: 2}}
	opts := []cmp.Option{
		cmpopts.IgnoreFields(lesson.Lesson{}, "ID"),
		cmpopts.SortSlices(func(a, b lesson.Lesson) bool { return a.Title < b.Title }),
	}
	if diff := cmp.Diff(want, got, opts...); diff != "" {
		t.Fatalf("ListActive mismatch (-want +got):\n%s", diff)
	}

	out, err := s.DecrementOrDelete(ctx, "Guitar")
	require.NoError(t, err)
	assert.Equal(t, lesson.OutcomeCompleted, out.Kind)

	out, err = s.DecrementOrDelete(ctx, "Piano")
	require.NoError(t, err)
	assert.Equal(t, lesson.Outcome{Kind: lesson.OutcomeUpdated, Title: "Piano", Remaining: 1}, out)

	_, err = s.FindByTitle(ctx, "Guitar")
	assert.ErrorIs(t, err, lesson.ErrNotFound)

	out, err = s.DecrementOrDelete(ctx, "Drums")
	require.NoError(t, err)
	assert.Equal(t, lesson.OutcomeNotFound, out.Kind)
}
