package bot

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParse(t *testing.T) {
	tests := []struct {
		text string
		want Command
		ok   bool
	}{
		{text: "/start", want: Command{Op: OpStart}, ok: true},
		{text: "/start@lessons_bot", want: Command{Op: OpStart}, ok: true},
		{text: "/starting", ok: false},
		{text: "/lessons", want: Command{Op: OpLessons}, ok: true},
		{text: "/lessons please", want: Command{Op: OpLessons}, ok: true},
		{text: "/add_lesson Piano 3", want: Command{Op: OpAdd, Title: "Piano", Count: "3"}, ok: true},
		{text: "/add_lesson@lessons_bot   Английский язык   10", want: Command{Op: OpAdd, Title: "Английский язык", Count: "10"}, ok: true},
		{text: "/add_lesson Piano -5", want: Command{Op: OpAdd, Title: "Piano", Count: "-5"}, ok: true},
		{text: "/add_lesson Piano 2 3", want: Command{Op: OpAdd, Title: "Piano", Count: "2"}, ok: true},
		{text: "/add_lesson Piano", ok: false},
		{text: "/add_lesson 3", ok: false},
		{text: "/done Piano", want: Command{Op: OpDone, Title: "Piano"}, ok: true},
		{text: "/done  Solfeggio group 2 ", want: Command{Op: OpDone, Title: "Solfeggio group 2"}, ok: true},
		{text: "/done", ok: false},
		{text: "/done    ", ok: false},
		{text: "/donePiano", ok: false},
		{text: "hello", ok: false},
		{text: "", ok: false},
	}
	for _, tt := range tests {
		t.Run(tt.text, func(t *testing.T) {
			got, ok := Parse(tt.text)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}
