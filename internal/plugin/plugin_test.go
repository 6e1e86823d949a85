package plugin

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/valpere/figtrans/internal"
	"github.com/valpere/figtrans/internal/reconcile"
	"github.com/valpere/figtrans/internal/scene"
)

const pluginDoc = `{
  "name": "Landing",
  "selection": ["frame"],
  "root": {"id": "frame", "type": "FRAME", "children": [
    {"id": "1:2", "type": "TEXT", "characters": "Hello", "fontName": {"family": "Inter", "style": "Regular"}},
    {"id": "1:3", "type": "TEXT", "characters": "Goodbye", "fontName": {"family": "Inter", "style": "Regular"}}
  ]}
}`

func newController(t *testing.T) (*Controller, *scene.Document) {
	t.Helper()
	d, err := scene.Load(strings.NewReader(pluginDoc))
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	return NewController(d, reconcile.New(d), nil), d
}

func TestController_Extract(t *testing.T) {
	c, d := newController(t)

	out := c.Extract()
	if out.Type != MsgTextExtracted || out.Count != 2 || len(out.Data) != 2 {
		t.Fatalf("unexpected reply %+v", out)
	}
	notices := d.Notices()
	if len(notices) != 1 || notices[0].Message != "✓ Extracted 2 text element(s)" {
		t.Errorf("notices = %+v", notices)
	}
}

func TestController_ExtractError(t *testing.T) {
	c, d := newController(t)
	d.Select()

	out := c.Extract()
	if out.Type != MsgError || out.Message != "Please select a frame to extract text from." {
		t.Errorf("unexpected reply %+v", out)
	}
	if len(d.Notices()) != 0 {
		t.Error("a rejected extraction should not notify")
	}
}

func TestController_HandleApply(t *testing.T) {
	c, d := newController(t)

	var hooked *reconcile.Report
	c.OnReport(func(ctx context.Context, r *reconcile.Report) { hooked = r })

	payload := `[
	  {"id": "TXT_0001", "nodeId": "1:2", "originalText": "Hello", "translation": "Bonjour et bienvenue",
	   "metadata": {"fontName": {"family": "Inter", "style": "Regular"}}},
	  {"id": "TXT_0002", "nodeId": "1:3", "originalText": "Bye", "translation": "Au revoir"}
	]`
	out, more := c.Handle(context.Background(), Inbound{Type: MsgApplyTranslations, Data: json.RawMessage(payload)})
	if !more {
		t.Fatal("apply should keep the session open")
	}
	if out.Type != MsgTranslationApplied || out.Report == nil {
		t.Fatalf("unexpected reply %+v", out)
	}
	if out.SuccessCount != 1 || out.ErrorCount != 1 || len(out.Warnings) != 1 {
		t.Errorf("unexpected report %+v", out.Report)
	}
	if hooked != out.Report {
		t.Error("hook did not receive the report")
	}

	notices := d.Notices()
	if len(notices) != 3 {
		t.Fatalf("expected 3 notices, got %+v", notices)
	}
	if notices[0].Message != "✓ Applied 1 translation(s) successfully" {
		t.Errorf("notice 0 = %q", notices[0].Message)
	}
	if !notices[1].Options.Error {
		t.Error("failure notice should be an error")
	}
	if notices[2].Options.TimeoutMs != 5000 {
		t.Errorf("overflow notice timeout = %d", notices[2].Options.TimeoutMs)
	}
}

func TestController_HandleInvalidPayload(t *testing.T) {
	c, _ := newController(t)
	out, more := c.Handle(context.Background(), Inbound{Type: MsgApplyTranslations, Data: json.RawMessage(`{"id": 1}`)})
	if !more || out.Type != MsgError {
		t.Errorf("unexpected reply %+v, %v", out, more)
	}
}

func TestController_HandleUnknownAndCancel(t *testing.T) {
	c, _ := newController(t)

	out, more := c.Handle(context.Background(), Inbound{Type: "resize"})
	if !more || out.Type != MsgError {
		t.Errorf("unknown message: %+v, %v", out, more)
	}
	if _, more := c.Handle(context.Background(), Inbound{Type: MsgCancel}); more {
		t.Error("cancel should end the session")
	}
}

func TestController_Serve(t *testing.T) {
	c, d := newController(t)

	in := strings.NewReader(`{"type": "extract-text"}
{"type": "apply-translations", "data": [{"id": "TXT_0001", "nodeId": "1:2", "originalText": "Hello", "translation": "Salut"}]}
{"type": "cancel"}
{"type": "extract-text"}
`)
	var out bytes.Buffer
	if err := c.Serve(context.Background(), in, &out); err != nil {
		t.Fatalf("Serve failed: %v", err)
	}

	dec := json.NewDecoder(&out)
	var replies []map[string]any
	for dec.More() {
		var m map[string]any
		if err := dec.Decode(&m); err != nil {
			t.Fatalf("decode reply: %v", err)
		}
		replies = append(replies, m)
	}
	if len(replies) != 2 {
		t.Fatalf("expected 2 replies before cancel, got %d", len(replies))
	}
	if replies[0]["type"] != MsgTextExtracted || replies[1]["type"] != MsgTranslationApplied {
		t.Errorf("reply types = %v, %v", replies[0]["type"], replies[1]["type"])
	}
	if replies[1]["successCount"] != float64(1) {
		t.Errorf("successCount = %v", replies[1]["successCount"])
	}

	n, _ := d.NodeByID(context.Background(), "1:2")
	if got := n.(scene.TextNode).Characters(); got != "Salut" {
		t.Errorf("characters = %q", got)
	}
}

func TestController_ServeCancelWhileIdle(t *testing.T) {
	c, _ := newController(t)
	pr, pw := io.Pipe()
	defer pw.Close()

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- c.Serve(ctx, pr, io.Discard) }()

	time.Sleep(20 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		if !errors.Is(err, context.Canceled) {
			t.Errorf("Serve returned %v, want context.Canceled", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("Serve did not return after cancel")
	}
}

func TestController_AppliedAcrossBatches(t *testing.T) {
	c, _ := newController(t)
	ctx := context.Background()

	c.Apply(ctx, []internal.ApplyRequest{
		{ID: "TXT_0001", NodeID: "1:2", OriginalText: "Hello", Translation: "Salut"},
	})
	c.Apply(ctx, []internal.ApplyRequest{
		{ID: "TXT_0002", NodeID: "1:3", OriginalText: "Goodbye", Translation: "Au revoir"},
		{ID: "TXT_0003", NodeID: "9:9", OriginalText: "Gone", Translation: "Parti"},
	})

	if got := c.Applied(); got != 2 {
		t.Errorf("Applied() = %d, want 2", got)
	}
}

func TestController_ServeBadJSON(t *testing.T) {
	c, _ := newController(t)
	err := c.Serve(context.Background(), strings.NewReader(`{"type": `), &bytes.Buffer{})
	if err == nil {
		t.Error("expected decode error")
	}
}
