package bot

import (
	"context"
	"log/slog"
	"strconv"

	tele "gopkg.in/telebot.v4"

	"github.com/1babii1/lessonsBot/core/logger"
	tg "github.com/1babii1/lessonsBot/core/telegram"
	"github.com/1babii1/lessonsBot/core/telegram/commands"
	tghelpers "github.com/1babii1/lessonsBot/core/telegram/helpers"
	"github.com/1babii1/lessonsBot/internal/lesson"
)

// Lessons is the service the handlers drive.
type Lessons interface {
	Active(ctx context.Context) ([]lesson.Lesson, error)
	Add(ctx context.Context, title string, count int) (lesson.Lesson, error)
	Done(ctx context.Context, title string) (lesson.Outcome, error)
}

// Handler turns commands into service calls and reply text.
type Handler struct {
	lessons Lessons
	help    []string
}

// NewHandler binds the handlers to a lessons service.
func NewHandler(lessons Lessons) *Handler {
	return &Handler{lessons: lessons}
}

// menu lists the commands in the order they are shown by /start.
var menu = []struct {
	name string
	cmd  commands.Command
}{
	{name: "/" + string(OpStart), cmd: commands.Command{Description: "показать справку"}},
	{name: "/" + string(OpLessons), cmd: commands.Command{Description: "оставшиеся уроки"}},
	{name: "/" + string(OpAdd), cmd: commands.Command{Description: "добавить урок или задать остаток", Usage: "<название> <количество>"}},
	{name: "/" + string(OpDone), cmd: commands.Command{Description: "отметить проведённый урок", Usage: "<название>"}},
}

// Register adds the chat commands to reg. Every command handler parses the
// full message text, so "/done" without a title is skipped.
func (h *Handler) Register(reg *tg.Registry) error {
	for _, item := range menu {
		cmd := item.cmd
		cmd.Handler = h.handleUpdate
		if err := reg.RegisterCommand(item.name, cmd); err != nil {
			return err
		}
	}
	reg.SetTextFallback(func(tele.Context) error { return tg.ErrNotHandled })
	h.help = reg.HelpLines()
	return nil
}

func (h *Handler) handleUpdate(c tele.Context) error {
	ctx := tghelpers.BuildContext(c)
	reply, ok := h.Dispatch(ctx, c.Text())
	if !ok {
		return tg.ErrNotHandled
	}
	return Reply(c, reply)
}

// Dispatch parses text and runs the command. It reports false for text that
// is not a command.
func (h *Handler) Dispatch(ctx context.Context, text string) (string, bool) {
	cmd, ok := Parse(text)
	if !ok {
		return "", false
	}
	return h.Handle(ctx, cmd), true
}

// Handle runs cmd and returns the reply. Failures become reply text.
func (h *Handler) Handle(ctx context.Context, cmd Command) string {
	switch cmd.Op {
	case OpStart:
		return startText(h.help)

	case OpLessons:
		list, err := h.lessons.Active(ctx)
		if err != nil {
			return errorText(err, msgListFailed)
		}
		return lessonsText(list)

	case OpAdd:
		count, err := strconv.Atoi(cmd.Count)
		if err != nil {
			logger.Debug(ctx, "service.lessons", "lesson.upsert",
				slog.String("status", "skip"),
				slog.String("err", err.Error()),
			)
			return msgCountPositive
		}
		l, err := h.lessons.Add(ctx, cmd.Title, count)
		if err != nil {
			return errorText(err, msgAddFailed)
		}
		return addedText(l)

	case OpDone:
		out, err := h.lessons.Done(ctx, cmd.Title)
		if err != nil {
			return errorText(err, msgFindFailed)
		}
		return doneText(out)
	}
	return ""
}
