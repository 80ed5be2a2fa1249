package logging

import (
	"bytes"
	"context"
	"log/slog"
	"strings"
	"testing"
	"time"
)

func TestHandler_Handle(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(NewHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))

	logger.Info("save restored", "backup", "BACKUP_a_1")

	output := buf.String()
	for _, want := range []string{"INFO", "save restored", "backup=BACKUP_a_1"} {
		if !strings.Contains(output, want) {
			t.Errorf("expected %q in output, got: %q", want, output)
		}
	}
}

func TestHandler_TraceLevelName(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(NewHandler(&buf, &slog.HandlerOptions{Level: LevelTrace}))

	logger.Log(context.Background(), LevelTrace, "copied file")

	if !strings.Contains(buf.String(), "TRACE") {
		t.Errorf("expected TRACE level name, got: %q", buf.String())
	}
}

func TestHandler_WithAttrsAndGroup(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(NewHandler(&buf, nil)).With("attempt", "abc").WithGroup("restore")

	logger.Info("state", "to", "replacing")

	output := buf.String()
	if !strings.Contains(output, "attempt=abc") {
		t.Errorf("expected attempt attribute, got: %q", output)
	}
	if !strings.Contains(output, "restore.to=replacing") {
		t.Errorf("expected grouped attribute, got: %q", output)
	}
}

func TestHandler_Enabled(t *testing.T) {
	h := NewHandler(&bytes.Buffer{}, &slog.HandlerOptions{Level: slog.LevelWarn})
	ctx := t.Context()

	if h.Enabled(ctx, slog.LevelInfo) {
		t.Error("expected Info to be disabled when min level is Warn")
	}
	if !h.Enabled(ctx, slog.LevelError) {
		t.Error("expected Error to be enabled")
	}
}

func TestHandler_NoTime(t *testing.T) {
	var buf bytes.Buffer
	h := NewHandler(&buf, nil)

	r := slog.NewRecord(time.Time{}, slog.LevelInfo, "no time", 0)
	if err := h.Handle(t.Context(), r); err != nil {
		t.Fatalf("Handle failed: %v", err)
	}
	if !strings.HasPrefix(buf.String(), "INFO") {
		t.Errorf("expected line to start with level, got: %q", buf.String())
	}
}

func TestMultiHandler_FansOut(t *testing.T) {
	var console, file bytes.Buffer
	h := NewMultiHandler(
		NewHandler(&console, &slog.HandlerOptions{Level: slog.LevelWarn}),
		nil,
		NewFileHandler(&file, slog.LevelInfo),
	)
	logger := slog.New(h)

	logger.Info("backup created")
	logger.Error("restore failed")

	if strings.Contains(console.String(), "backup created") {
		t.Error("console handler should filter Info at Warn level")
	}
	if !strings.Contains(console.String(), "restore failed") {
		t.Error("console handler should receive Error")
	}
	if got := strings.Count(file.String(), "\n"); got != 2 {
		t.Errorf("file handler got %d records, want 2", got)
	}
}
