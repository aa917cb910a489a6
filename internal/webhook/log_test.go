package webhook

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"strings"
	"testing"
)

func receivedEvents(t *testing.T, buf *bytes.Buffer) []string {
	t.Helper()
	var logged []string
	for _, line := range strings.Split(strings.TrimSpace(buf.String()), "\n") {
		if line == "" {
			continue
		}
		var rec map[string]any
		if err := json.Unmarshal([]byte(line), &rec); err != nil {
			t.Fatalf("invalid log line %q: %v", line, err)
		}
		if rec["msg"] == "Received event" {
			event, _ := rec["event"].(string)
			logged = append(logged, event)
		}
	}
	return logged
}

func TestHandleLogsRawEvent(t *testing.T) {
	events := []struct {
		name string
		raw  string
	}{
		{name: "missing body", raw: `{"headers":{"x":"y"}}`},
		{name: "invalid json", raw: `{"body":"{not json"}`},
		{name: "not an object", raw: `42`},
		{name: "dispatched", raw: `{"body":"{\"impactedEntities\":[\"mt-test-win01\"]}"}`},
	}

	for _, tt := range events {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			h := New(&mockDispatcher{})
			h.Logger = slog.New(slog.NewJSONHandler(&buf, nil))

			h.Handle(context.Background(), json.RawMessage(tt.raw))

			logged := receivedEvents(t, &buf)
			if len(logged) != 1 {
				t.Fatalf("expected 1 received event log, got %d: %s", len(logged), buf.String())
			}
			if logged[0] != tt.raw {
				t.Errorf("expected raw event %q, got %q", tt.raw, logged[0])
			}
		})
	}
}

func TestProcessLogsBodyText(t *testing.T) {
	var buf bytes.Buffer
	h := New(&mockDispatcher{})
	h.Logger = slog.New(slog.NewTextHandler(&buf, nil))

	body := `{"impactedEntities":["unknown-entity"]}`
	h.Process(context.Background(), Event{Body: &body})

	out := buf.String()
	if strings.Count(out, "Received event") != 1 {
		t.Fatalf("expected one received event line, got %s", out)
	}
	if !strings.Contains(out, "unknown-entity") {
		t.Errorf("expected body text in log, got %s", out)
	}
	if strings.Contains(out, "0xc") {
		t.Errorf("expected no pointer address in log, got %s", out)
	}
}

func TestEventString(t *testing.T) {
	body := `{"impactedEntities":[]}`
	tests := []struct {
		event Event
		want  string
	}{
		{event: Event{}, want: `{"body":null}`},
		{event: Event{Body: &body}, want: `{"body":"{\"impactedEntities\":[]}"}`},
		{event: Event{Body: &body, IsBase64Encoded: true}, want: `{"body":"{\"impactedEntities\":[]}","isBase64Encoded":true}`},
	}

	for _, tt := range tests {
		if got := tt.event.String(); got != tt.want {
			t.Errorf("expected %s, got %s", tt.want, got)
		}
	}
}
