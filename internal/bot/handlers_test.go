package bot

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	tg "github.com/1babii1/lessonsBot/core/telegram"
	"github.com/1babii1/lessonsBot/core/telegram/telegramtest"
	"github.com/1babii1/lessonsBot/internal/lesson"
	"github.com/1babii1/lessonsBot/internal/lesson/lessontest"
)

func newHandler(store lesson.Store) *Handler {
	return NewHandler(lesson.NewService(store))
}

func dispatch(t *testing.T, h *Handler, text string) string {
	t.Helper()
	reply, ok := h.Dispatch(context.Background(), text)
	require.True(t, ok, "not a command: %q", text)
	return reply
}

func TestPianoScenario(t *testing.T) {
	store := lessontest.NewMemory()
	h := newHandler(store)

	assert.Equal(t, `Урок "Piano" добавлен/обновлён. Осталось: 3`, dispatch(t, h, "/add_lesson Piano 3"))
	assert.Equal(t, "Оставшиеся уроки:\n- Piano (осталось: 3)", dispatch(t, h, "/lessons"))

	assert.Equal(t, `Урок "Piano" обновлён. Осталось: 2`, dispatch(t, h, "/done Piano"))
	assert.Equal(t, []lesson.Lesson{{ID: "1", Title: "Piano", Counter: 2}}, store.All())

	assert.Equal(t, `Урок "Piano" обновлён. Осталось: 1`, dispatch(t, h, "/done Piano"))
	assert.Equal(t, `Урок "Piano" завершён!`, dispatch(t, h, "/done Piano"))
	assert.Empty(t, store.All())

	assert.Equal(t, "Нет предстоящих уроков.", dispatch(t, h, "/lessons"))
	assert.Equal(t, `Урок "Piano" не найден.`, dispatch(t, h, "/done Piano"))
}

func TestAddOverwritesWithoutDuplicates(t *testing.T) {
	store := lessontest.NewMemory()
	h := newHandler(store)

	dispatch(t, h, "/add_lesson Guitar 4")
	dispatch(t, h, "/add_lesson Guitar 9")
	assert.Equal(t, []lesson.Lesson{{ID: "1", Title: "Guitar", Counter: 9}}, store.All())
}

func TestAddValidation(t *testing.T) {
	store := lessontest.NewMemory(lesson.Lesson{Title: "Piano", Counter: 2})
	h := newHandler(store)
	before := store.All()

	for _, text := range []string{"/add_lesson Piano 0", "/add_lesson Piano -5", "/add_lesson Piano 99999999999999999999"} {
		assert.Equal(t, "Количество должно быть больше 0.", dispatch(t, h, text), text)
	}
	assert.Equal(t, "Название урока не может быть пустым.", h.Handle(context.Background(), Command{Op: OpAdd, Title: " ", Count: "2"}))
	assert.Equal(t, before, store.All())
}

func TestDoneUnknownLeavesOthersUntouched(t *testing.T) {
	store := lessontest.NewMemory(lesson.Lesson{Title: "Guitar", Counter: 2})
	h := newHandler(store)

	assert.Equal(t, `Урок "Drums" не найден.`, dispatch(t, h, "/done Drums"))
	assert.Equal(t, []lesson.Lesson{{ID: "1", Title: "Guitar", Counter: 2}}, store.All())
}

func TestStartListsCommands(t *testing.T) {
	h := newHandler(lessontest.NewMemory())
	require.NoError(t, h.Register(tg.NewRegistry()))

	reply := dispatch(t, h, "/start")
	assert.Contains(t, reply, "Привет! Я бот для учёта уроков.")
	assert.Contains(t, reply, "/add_lesson <название> <количество>")
	assert.Contains(t, reply, "/done <название>")
}

func TestUnknownTextIsIgnored(t *testing.T) {
	h := newHandler(lessontest.NewMemory())
	for _, text := range []string{"hello", "/done", "/add_lesson Piano", "/unknown"} {
		_, ok := h.Dispatch(context.Background(), text)
		assert.False(t, ok, text)
	}
}

// failingWrites finds lessons but fails the chosen write.
type failingWrites struct {
	*lessontest.Memory
	op string
}

func (f *failingWrites) SetCounter(ctx context.Context, id string, counter int) error {
	if f.op == lesson.OpSetCounter {
		return lesson.WrapStore(lesson.OpSetCounter, errors.New("disk I/O error"))
	}
	return f.Memory.SetCounter(ctx, id, counter)
}

func (f *failingWrites) Delete(ctx context.Context, id string) error {
	if f.op == lesson.OpDelete {
		return lesson.WrapStore(lesson.OpDelete, errors.New("disk I/O error"))
	}
	return f.Memory.Delete(ctx, id)
}

func (f *failingWrites) DecrementOrDelete(ctx context.Context, title string) (lesson.Outcome, error) {
	return lesson.Decrement(ctx, f, title)
}

func TestStoreFailureReplies(t *testing.T) {
	broken := lessontest.NewMemory()
	broken.Err = errors.New("database is locked")
	h := newHandler(broken)
	assert.Equal(t, "Произошла ошибка при получении данных.", dispatch(t, h, "/lessons"))
	assert.Equal(t, "Ошибка при добавлении урока.", dispatch(t, h, "/add_lesson Piano 2"))
	assert.Equal(t, "Ошибка при поиске урока.", dispatch(t, h, "/done Piano"))

	seed := []lesson.Lesson{{Title: "Piano", Counter: 1}, {Title: "Guitar", Counter: 5}}
	h = newHandler(&failingWrites{Memory: lessontest.NewMemory(seed...), op: lesson.OpDelete})
	assert.Equal(t, "Ошибка при удалении.", dispatch(t, h, "/done Piano"))

	h = newHandler(&failingWrites{Memory: lessontest.NewMemory(seed...), op: lesson.OpSetCounter})
	assert.Equal(t, "Ошибка при обновлении.", dispatch(t, h, "/done Guitar"))
}

func TestRegisteredHandlersReplyInChat(t *testing.T) {
	reg := tg.NewRegistry()
	h := newHandler(lessontest.NewMemory())
	require.NoError(t, h.Register(reg))

	_, add, ok := reg.LookupCommand("/add_lesson")
	require.True(t, ok)
	c := telegramtest.NewText(100, 42, "/add_lesson Piano 3")
	require.NoError(t, add.Handler(c))
	assert.Equal(t, []string{`Урок "Piano" добавлен/обновлён. Осталось: 3`}, c.Sent())

	_, done, ok := reg.LookupCommand("/done")
	require.True(t, ok)
	empty := telegramtest.NewText(101, 42, "/done")
	assert.ErrorIs(t, done.Handler(empty), tg.ErrNotHandled)
	assert.Empty(t, empty.Sent())

	assert.ErrorIs(t, reg.TextFallback()(telegramtest.NewText(102, 42, "hi")), tg.ErrNotHandled)
}

func TestReplyPropagatesSendFailure(t *testing.T) {
	c := telegramtest.NewText(103, 42, "/start")
	c.SendErr = errors.New("Forbidden: bot was blocked by the user (403)")
	assert.Error(t, Reply(c, "hi"))
}
