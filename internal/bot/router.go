// Package bot maps chat commands onto the lesson service and renders replies.
package bot

import (
	"regexp"
	"strings"
)

// Op names a recognised command.
type Op string

const (
	OpStart   Op = "start"
	OpLessons Op = "lessons"
	OpAdd     Op = "add_lesson"
	OpDone    Op = "done"
)

// Command is a parsed chat command. Count is the raw count token of
// /add_lesson, converted by the handler so that overflow is a validation error.
type Command struct {
	Op    Op
	Title string
	Count string
}

var (
	startRe   = regexp.MustCompile(`^/start(?:@\w+)?(?:\s|$)`)
	lessonsRe = regexp.MustCompile(`^/lessons(?:@\w+)?(?:\s|$)`)
	// The title is the shortest prefix followed by a whitespace separated
	// integer, so "/add_lesson Piano 2 3" adds "Piano" with 2.
	addRe  = regexp.MustCompile(`^/add_lesson(?:@\w+)?\s+(.+?)\s+(-?\d+)`)
	doneRe = regexp.MustCompile(`^/done(?:@\w+)?\s+(.+)`)
)

// Parse matches text against the command patterns. Text matching none of
// them, including /add_lesson and /done without arguments, is not a command.
func Parse(text string) (Command, bool) {
	text = strings.TrimLeft(text, " \t")
	switch {
	case startRe.MatchString(text):
		return Command{Op: OpStart}, true
	case lessonsRe.MatchString(text):
		return Command{Op: OpLessons}, true
	}
	if m := addRe.FindStringSubmatch(text); m != nil {
		return Command{Op: OpAdd, Title: strings.TrimSpace(m[1]), Count: m[2]}, true
	}
	if m := doneRe.FindStringSubmatch(text); m != nil {
		if title := strings.TrimSpace(m[1]); title != "" {
			return Command{Op: OpDone, Title: title}, true
		}
	}
	return Command{}, false
}
