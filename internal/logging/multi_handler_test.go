package logging

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"testing"
)

func TestMultiHandlerFansOutByLevel(t *testing.T) {
	var info, errs bytes.Buffer
	h := NewMultiHandler(
		slog.NewJSONHandler(&info, &slog.HandlerOptions{Level: slog.LevelInfo}),
		slog.NewJSONHandler(&errs, &slog.HandlerOptions{Level: slog.LevelError}),
	)
	logger := slog.New(h).With("request_id", "r-1")

	logger.Info("hello")
	logger.Error("boom", "error", "bad")

	if got := bytes.Count(info.Bytes(), []byte("\n")); got != 2 {
		t.Fatalf("info handler got %d lines, want 2", got)
	}
	if got := bytes.Count(errs.Bytes(), []byte("\n")); got != 1 {
		t.Fatalf("error handler got %d lines, want 1", got)
	}

	var rec map[string]interface{}
	if err := json.Unmarshal(bytes.TrimSpace(errs.Bytes()), &rec); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if rec["request_id"] != "r-1" || rec["msg"] != "boom" {
		t.Fatalf("unexpected record: %v", rec)
	}
}
