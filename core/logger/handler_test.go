package logger

import (
	"bytes"
	"context"
	"io"
	"log/slog"
	"strings"
	"testing"
	"time"
)

func captureLine(t *testing.T, format logFormat, emit func(log *slog.Logger)) string {
	t.Helper()
	buf := &bytes.Buffer{}
	aw := newAsyncWriter([]io.Writer{buf}, 1024)
	handler := newStructuredHandler(handlerConfig{
		level:    slog.LevelDebug,
		writer:   aw,
		format:   format,
		keyOrder: append([]string(nil), defaultKeyOrder...),
	})
	emit(slog.New(handler))
	if err := aw.Flush(); err != nil {
		t.Fatalf("flush: %v", err)
	}
	if err := aw.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}
	line := strings.TrimSpace(buf.String())
	if line == "" {
		t.Fatal("expected log line")
	}
	return line
}

func TestStructuredHandlerKVOrder(t *testing.T) {
	ctx := WithRID(context.Background(), "rid-123")
	ctx = WithUpdateMeta(ctx, 42, 7, 9)

	line := captureLine(t, formatKV, func(log *slog.Logger) {
		LogEvent(ctx, log.With("component", "service.lessons"), slog.LevelInfo, "lesson.upsert",
			slog.String("status", "ok"),
			slog.String("title", "Piano"),
			slog.Int("counter", 3),
		)
	})

	tokens := strings.Split(line, " ")
	expected := []string{"ts=", "level=INFO", "component=service.lessons", "event=lesson.upsert", "status=ok", "rid=rid-123", "update_id=42", "user_id=7", "chat_id=9"}
	if len(tokens) < len(expected) {
		t.Fatalf("unexpected token count: %d (%s)", len(tokens), line)
	}
	for i, prefix := range expected {
		if !strings.HasPrefix(tokens[i], prefix) {
			t.Fatalf("token %d = %s, expected prefix %s", i, tokens[i], prefix)
		}
	}
	if !strings.Contains(line, "title=Piano counter=3") {
		t.Fatalf("expected lesson fields in order, got %s", line)
	}
}

func TestStructuredHandlerJSONOrder(t *testing.T) {
	ctx := WithRID(context.Background(), "rid-json")

	line := captureLine(t, formatJSON, func(log *slog.Logger) {
		LogEvent(ctx, log.With("component", "store.sql"), slog.LevelError, "lesson.find",
			slog.String("status", "fail"),
			slog.String("err", "database is locked"),
			slog.String("err_code", "STORE_ERROR"),
		)
	})

	if !strings.HasPrefix(line, "{") {
		t.Fatalf("expected JSON, got %s", line)
	}
	prefixes := []string{`{"ts":`, `"level":"ERROR"`, `"component":"store.sql"`, `"event":"lesson.find"`, `"status":"fail"`, `"rid":"rid-json"`, `"err":"database is locked"`}
	pos := -1
	for _, pref := range prefixes {
		idx := strings.Index(line, pref)
		if idx == -1 || idx < pos {
			t.Fatalf("prefix %s not found in order within %s", pref, line)
		}
		pos = idx
	}
}

func TestStructuredHandlerCompactRID(t *testing.T) {
	rawRID := BuildRID(123, -456, 789)
	ctx := WithRID(context.Background(), rawRID)

	kv := captureLine(t, formatKV, func(log *slog.Logger) {
		LogEvent(ctx, log, slog.LevelInfo, "rid.test")
	})
	if !strings.Contains(kv, "rid="+CompactRID(rawRID)) {
		t.Fatalf("expected compact rid, got %s", kv)
	}
	if strings.Contains(kv, "rid_full=") {
		t.Fatalf("rid_full should be omitted in KV output, got %s", kv)
	}

	js := captureLine(t, formatJSON, func(log *slog.Logger) {
		LogEvent(ctx, log, slog.LevelInfo, "rid.test")
	})
	if !strings.Contains(js, `"rid_full":"`+rawRID+`"`) {
		t.Fatalf("expected rid_full in JSON output, got %s", js)
	}
	if !strings.Contains(js, `"ts_unix_nano"`) {
		t.Fatalf("expected ts_unix_nano in JSON output, got %s", js)
	}
}

func TestStructuredHandlerDurationsAndDefaults(t *testing.T) {
	line := captureLine(t, formatKV, func(log *slog.Logger) {
		log.LogAttrs(context.Background(), slog.LevelInfo, "",
			slog.Duration("duration", 1500*time.Microsecond),
			slog.Duration("startup_duration", 2*time.Second),
			slog.String("outcome", "exploded"),
			slog.String("payload", ""),
		)
	})

	for _, want := range []string{"component=app", "event=unknown", "duration_ms=2", "startup_duration_ms=2000"} {
		if !strings.Contains(line, want) {
			t.Fatalf("expected %q in %s", want, line)
		}
	}
	for _, unwanted := range []string{"outcome=", "payload="} {
		if strings.Contains(line, unwanted) {
			t.Fatalf("did not expect %q in %s", unwanted, line)
		}
	}
}

func TestStructuredHandlerLevelFilter(t *testing.T) {
	buf := &bytes.Buffer{}
	aw := newAsyncWriter([]io.Writer{buf}, 1024)
	handler := newStructuredHandler(handlerConfig{level: slog.LevelWarn, writer: aw, format: formatKV})
	log := slog.New(handler)

	log.Info("dropped")
	log.Warn("kept")
	if err := aw.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}
	out := buf.String()
	if strings.Contains(out, "dropped") || !strings.Contains(out, "event=kept") {
		t.Fatalf("unexpected output %q", out)
	}
}

func TestCompactRIDPassesThroughForeignValues(t *testing.T) {
	for _, rid := range []string{"", "abc", "1:2", "1:x:3"} {
		if got := CompactRID(rid); got != rid {
			t.Fatalf("CompactRID(%q) = %q", rid, got)
		}
	}
	if got := CompactRID("35:36:0"); got != "z.10.0" {
		t.Fatalf("CompactRID = %q", got)
	}
}

func TestSanitizeLimit(t *testing.T) {
	if got := SanitizeLimit("add\x00_lesson\u200b Piano", 10); got != "add_lesson" {
		t.Fatalf("SanitizeLimit = %q", got)
	}
	if got := SanitizeLimit("Пианино", 3); got != "Пиа" {
		t.Fatalf("SanitizeLimit = %q", got)
	}
}

func TestRatioSampler(t *testing.T) {
	s := newRatioSampler(1, 3)
	var allowed int
	for i := 0; i < 9; i++ {
		if s.Allow() {
			allowed++
		}
	}
	if allowed != 3 {
		t.Fatalf("allowed = %d, want 3", allowed)
	}
	if num, den := parseRatioSpec("2/5"); num != 2 || den != 5 {
		t.Fatalf("parseRatioSpec(2/5) = %d/%d", num, den)
	}
	if num, den := parseRatioSpec("10"); num != 1 || den != 10 {
		t.Fatalf("parseRatioSpec(10) = %d/%d", num, den)
	}
}
