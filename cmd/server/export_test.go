package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"mindsoothe-backend/internal/models"
)

type failingLister struct{}

func (failingLister) ListBySession(ctx context.Context, sessionKey string, limit int) ([]*models.Exchange, error) {
	return nil, errors.New("database unavailable")
}

func TestRunExport_SQLite(t *testing.T) {
	url := "sqlite://" + filepath.Join(t.TempDir(), "exchanges.db")

	recorder, closeFn, err := openArchive(url)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	base := time.Date(2026, 10, 1, 9, 0, 0, 0, time.UTC)
	for i, msg := range []string{"hello", "how are you?"} {
		err := recorder.Record(context.Background(), &models.Exchange{
			SessionKey: "1.2.3.4", UserMessage: msg, AssistantMessage: "reply", Provider: "openai",
			CreatedAt: base.Add(time.Duration(i) * time.Minute),
		})
		if err != nil {
			t.Fatalf("Failed to record exchange: %v", err)
		}
	}
	recorder.Record(context.Background(), &models.Exchange{SessionKey: "5.6.7.8", UserMessage: "other"})
	closeFn()

	var out bytes.Buffer
	n, err := runExport(url, "1.2.3.4", 10, &out)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if n != 2 {
		t.Fatalf("expected 2 exchanges, got %d", n)
	}

	lines := strings.Split(strings.TrimSpace(out.String()), "\n")
	if len(lines) != 2 {
		t.Fatalf("expected 2 JSON lines, got %q", out.String())
	}
	var first models.Exchange
	if err := json.Unmarshal([]byte(lines[0]), &first); err != nil {
		t.Fatalf("Failed to decode line: %v", err)
	}
	if first.UserMessage != "hello" {
		t.Errorf("expected oldest exchange first, got %q", first.UserMessage)
	}
}

func TestRunExport_NoArchive(t *testing.T) {
	if _, err := runExport("", "1.2.3.4", 10, &bytes.Buffer{}); err == nil {
		t.Fatalf("expected error without an archive")
	}
}

func TestExportSession_ListError(t *testing.T) {
	_, err := exportSession(context.Background(), failingLister{}, "1.2.3.4", 10, &bytes.Buffer{})
	if err == nil || !strings.Contains(err.Error(), "database unavailable") {
		t.Fatalf("expected list error, got %v", err)
	}
}
