package bot

import (
	"errors"
	"fmt"
	"strings"

	tele "gopkg.in/telebot.v4"

	tghelpers "github.com/1babii1/lessonsBot/core/telegram/helpers"
	"github.com/1babii1/lessonsBot/internal/lesson"
)

const (
	msgGreeting   = "Привет! Я бот для учёта уроков."
	msgNoLessons  = "Нет предстоящих уроков."
	msgListHeader = "Оставшиеся уроки:"

	msgCountPositive = "Количество должно быть больше 0."
	msgEmptyTitle    = "Название урока не может быть пустым."

	msgListFailed   = "Произошла ошибка при получении данных."
	msgAddFailed    = "Ошибка при добавлении урока."
	msgFindFailed   = "Ошибка при поиске урока."
	msgDeleteFailed = "Ошибка при удалении."
	msgUpdateFailed = "Ошибка при обновлении."
)

func startText(help []string) string {
	if len(help) == 0 {
		return msgGreeting
	}
	return msgGreeting + "\n\nКоманды:\n" + strings.Join(help, "\n")
}

func lessonsText(list []lesson.Lesson) string {
	if len(list) == 0 {
		return msgNoLessons
	}
	var b strings.Builder
	b.WriteString(msgListHeader)
	for _, l := range list {
		fmt.Fprintf(&b, "\n- %s (осталось: %d)", l.Title, l.Counter)
	}
	return b.String()
}

func addedText(l lesson.Lesson) string {
	return fmt.Sprintf(`Урок "%s" добавлен/обновлён. Осталось: %d`, l.Title, l.Counter)
}

func doneText(out lesson.Outcome) string {
	switch out.Kind {
	case lesson.OutcomeUpdated:
		return fmt.Sprintf(`Урок "%s" обновлён. Осталось: %d`, out.Title, out.Remaining)
	case lesson.OutcomeCompleted:
		return fmt.Sprintf(`Урок "%s" завершён!`, out.Title)
	default:
		return fmt.Sprintf(`Урок "%s" не найден.`, out.Title)
	}
}

// errorText picks the user-facing message for a failed command. Errors that
// carry no store operation get fallback.
func errorText(err error, fallback string) string {
	var verr *lesson.ValidationError
	if errors.As(err, &verr) {
		if verr.Field == "title" {
			return msgEmptyTitle
		}
		return msgCountPositive
	}
	var serr *lesson.StoreError
	if errors.As(err, &serr) {
		switch serr.Op {
		case lesson.OpList:
			return msgListFailed
		case lesson.OpUpsert:
			return msgAddFailed
		case lesson.OpDelete:
			return msgDeleteFailed
		case lesson.OpFind:
			return msgFindFailed
		case lesson.OpSetCounter:
			return msgUpdateFailed
		}
	}
	return fallback
}

// Reply sends text to the chat the update came from.
func Reply(c tele.Context, text string) error {
	return tghelpers.SendText(c, text)
}
