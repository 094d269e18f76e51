package logging

import (
	"bytes"
	"errors"
	"strings"
	"testing"
	"time"
)

func TestLoggerWritesKeyValuePairs(t *testing.T) {
	var buf bytes.Buffer
	logger := New(Options{Level: LevelInfo, Output: &buf, Service: "archive-ingest"})

	logger.With("season", "1973-74").Info("file parsed", "file", "bundesliga_01.html", "error", errors.New("boom"))
	logger.Debug("hidden", "k", "v")

	out := buf.String()
	for _, want := range []string{
		`"msg":"file parsed"`,
		`"service":"archive-ingest"`,
		`"season":"1973-74"`,
		`"file":"bundesliga_01.html"`,
		`"error":"boom"`,
	} {
		if !strings.Contains(out, want) {
			t.Fatalf("expected %s in log output, got %s", want, out)
		}
	}
	if strings.Contains(out, "hidden") {
		t.Fatalf("debug entry should be filtered at info level: %s", out)
	}
}

func TestZapFieldsOddArgs(t *testing.T) {
	fields := zapFields([]any{"a", 1, "dangling"})
	if len(fields) != 2 {
		t.Fatalf("expected 2 fields, got %d", len(fields))
	}
	if fields[1].Key != "dangling" {
		t.Fatalf("unexpected key for dangling arg: %s", fields[1].Key)
	}
}

func TestNilLoggerFallsBackToDefault(t *testing.T) {
	var logger *Logger
	logger.Info("no panic")
	if logger.Enabled(LevelError) {
		t.Fatalf("nil logger must report disabled")
	}
}

type stage string

func (s stage) String() string { return "stage:" + string(s) }

func TestLoggerTypedFields(t *testing.T) {
	var buf bytes.Buffer
	logger := New(Options{Level: LevelDebug, Output: &buf, RunID: "run-1"})

	logger.Debug("match loaded", "stage", stage("load"), "took", 1500*time.Millisecond)

	out := buf.String()
	for _, want := range []string{`"run_id":"run-1"`, `"stage":"stage:load"`, `"took":"1.5s"`} {
		if !strings.Contains(out, want) {
			t.Fatalf("expected %s in log output, got %s", want, out)
		}
	}
}
