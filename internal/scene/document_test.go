package scene

import (
	"bytes"
	"context"
	"path/filepath"
	"strings"
	"testing"
)

const sampleDoc = `{
  "name": "Landing",
  "selection": ["frame"],
  "root": {
    "id": "page", "type": "PAGE", "children": [
      {"id": "frame", "type": "FRAME", "name": "Hero", "children": [
        {"id": "title", "type": "TEXT", "characters": "Welcome",
         "fontName": {"family": "Inter", "style": "Bold"}, "fontSize": 32},
        {"id": "body", "type": "TEXT", "characters": "Read the docs",
         "fontName": "MIXED", "fonts": [{"family": "Inter", "style": "Regular"}, {"family": "Inter", "style": "Italic"}],
         "hyperlinks": [{"start": 9, "end": 13, "type": "URL", "value": "https://example.com"}]},
        {"id": "logo", "type": "VECTOR"}
      ]}
    ]
  }
}`

func loadSample(t *testing.T) *Document {
	t.Helper()
	d, err := Load(strings.NewReader(sampleDoc))
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	return d
}

func textByID(t *testing.T, d *Document, id string) TextNode {
	t.Helper()
	n, err := d.NodeByID(context.Background(), id)
	if err != nil || n == nil {
		t.Fatalf("NodeByID(%s) = %v, %v", id, n, err)
	}
	tn, ok := n.(TextNode)
	if !ok {
		t.Fatalf("node %s is not text", id)
	}
	return tn
}

func TestLoad_ClassifiesNodes(t *testing.T) {
	d := loadSample(t)

	sel := d.Selection()
	if len(sel) != 1 {
		t.Fatalf("expected one selected node, got %d", len(sel))
	}
	frame, ok := sel[0].(ContainerNode)
	if !ok {
		t.Fatal("selected frame should be a container")
	}
	if len(frame.Children()) != 3 {
		t.Errorf("expected 3 children, got %d", len(frame.Children()))
	}
	if _, ok := frame.Children()[2].(TextNode); ok {
		t.Error("vector should not be a text node")
	}
	if _, ok := frame.Children()[2].(ContainerNode); ok {
		t.Error("vector should not be a container")
	}
}

func TestLoad_RejectsDuplicateIDs(t *testing.T) {
	doc := `{"root": {"id": "a", "type": "FRAME", "children": [{"id": "b", "type": "TEXT"}, {"id": "b", "type": "TEXT"}]}}`
	if _, err := Load(strings.NewReader(doc)); err == nil {
		t.Error("expected duplicate id error")
	}
}

func TestDocument_NodeByID(t *testing.T) {
	d := loadSample(t)

	n, err := d.NodeByID(context.Background(), "missing")
	if err != nil || n != nil {
		t.Errorf("missing node = %v, %v; want nil, nil", n, err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := d.NodeByID(ctx, "title"); err == nil {
		t.Error("expected error on cancelled context")
	}
}

func TestDocument_SelectionDropsUnknown(t *testing.T) {
	d := loadSample(t)
	d.Select("ghost", "title")
	sel := d.Selection()
	if len(sel) != 1 || sel[0].ID() != "title" {
		t.Errorf("unexpected selection %v", sel)
	}
}

func TestSetCharacters_RequiresLoadedFont(t *testing.T) {
	d := loadSample(t)
	title := textByID(t, d, "title")

	if err := title.SetCharacters("Bienvenue"); err == nil {
		t.Fatal("expected error before font load")
	}
	if err := d.LoadFont(context.Background(), FontName{Family: "Inter", Style: "Bold"}); err != nil {
		t.Fatalf("LoadFont failed: %v", err)
	}
	if err := title.SetCharacters("Bienvenue"); err != nil {
		t.Fatalf("SetCharacters failed: %v", err)
	}
	if title.Characters() != "Bienvenue" {
		t.Errorf("characters = %q", title.Characters())
	}
}

func TestSetCharacters_MixedFontCollapses(t *testing.T) {
	d := loadSample(t)
	body := textByID(t, d, "body")
	ctx := context.Background()

	d.LoadFont(ctx, FontName{Family: "Inter", Style: "Regular"})
	if err := body.SetCharacters("Lire"); err == nil {
		t.Fatal("expected error while italic face is unloaded")
	}
	d.LoadFont(ctx, FontName{Family: "Inter", Style: "Italic"})
	if err := body.SetCharacters("Lire la documentation"); err != nil {
		t.Fatalf("SetCharacters failed: %v", err)
	}
	f, ok := body.FontName().Get()
	if !ok || f.Style != "Regular" {
		t.Errorf("font = %+v, %v; want Inter Regular", f, ok)
	}
	link, err := body.RangeHyperlink(0, 4)
	if err != nil || !link.IsAbsent() {
		t.Errorf("hyperlinks should be cleared, got %+v, %v", link, err)
	}
}

func TestRestrictFonts(t *testing.T) {
	d := loadSample(t)
	d.RestrictFonts(FontName{Family: "Inter", Style: "Regular"})

	if err := d.LoadFont(context.Background(), FontName{Family: "Roboto", Style: "Regular"}); err == nil {
		t.Error("expected unavailable font error")
	}
	if err := d.LoadFont(context.Background(), FontName{Family: "Inter", Style: "Regular"}); err != nil {
		t.Errorf("LoadFont failed: %v", err)
	}
}

func TestRangeHyperlink(t *testing.T) {
	d := loadSample(t)
	body := textByID(t, d, "body")

	tests := []struct {
		name       string
		start, end int
		wantMixed  bool
		wantAbsent bool
		wantURL    string
	}{
		{name: "plain", start: 0, end: 4, wantAbsent: true},
		{name: "linked", start: 9, end: 13, wantURL: "https://example.com"},
		{name: "straddles", start: 8, end: 10, wantMixed: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v, err := body.RangeHyperlink(tt.start, tt.end)
			if err != nil {
				t.Fatalf("RangeHyperlink failed: %v", err)
			}
			if v.IsMixed() != tt.wantMixed || v.IsAbsent() != tt.wantAbsent {
				t.Fatalf("got mixed=%v absent=%v", v.IsMixed(), v.IsAbsent())
			}
			if tt.wantURL != "" {
				if l, _ := v.Get(); l.Value != tt.wantURL {
					t.Errorf("url = %q, want %q", l.Value, tt.wantURL)
				}
			}
		})
	}

	if _, err := body.RangeHyperlink(10, 20); err == nil {
		t.Error("expected out of range error")
	}
}

func TestSetRangeHyperlink_SplitsExisting(t *testing.T) {
	d := loadSample(t)
	body := textByID(t, d, "body")
	other := Hyperlink{Type: HyperlinkURL, Value: "https://other.example"}

	if err := body.SetRangeHyperlink(10, 12, other); err != nil {
		t.Fatalf("SetRangeHyperlink failed: %v", err)
	}
	for i, want := range []string{"https://example.com", "https://other.example", "https://other.example", "https://example.com"} {
		v, err := body.RangeHyperlink(9+i, 10+i)
		if err != nil {
			t.Fatalf("RangeHyperlink failed: %v", err)
		}
		if l, _ := v.Get(); l.Value != want {
			t.Errorf("offset %d: url = %q, want %q", 9+i, l.Value, want)
		}
	}
	if err := body.SetRangeHyperlink(3, 3, other); err == nil {
		t.Error("expected empty range error")
	}
}

func TestDocument_Notify(t *testing.T) {
	d := loadSample(t)
	var buf bytes.Buffer
	d.MirrorNotices(&buf)

	d.Notify("done", NotifyOptions{TimeoutMs: 5000})
	notices := d.Notices()
	if len(notices) != 1 || notices[0].Options.TimeoutMs != 5000 {
		t.Errorf("unexpected notices %+v", notices)
	}
	if buf.String() != "done\n" {
		t.Errorf("mirrored = %q", buf.String())
	}
}

func TestDocument_SaveFileRoundTrip(t *testing.T) {
	d := loadSample(t)
	d.LoadFont(context.Background(), FontName{Family: "Inter", Style: "Bold"})
	if err := textByID(t, d, "title").SetCharacters("Bienvenue"); err != nil {
		t.Fatalf("SetCharacters failed: %v", err)
	}

	path := filepath.Join(t.TempDir(), "out", "landing.json")
	if err := d.SaveFile(path); err != nil {
		t.Fatalf("SaveFile failed: %v", err)
	}

	reopened, err := Open(path)
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	if reopened.Name != "Landing" {
		t.Errorf("name = %q", reopened.Name)
	}
	title := textByID(t, reopened, "title")
	if title.Characters() != "Bienvenue" {
		t.Errorf("characters = %q", title.Characters())
	}
	if size, _ := title.FontSize().Get(); size != 32 {
		t.Errorf("font size = %v", size)
	}
	if len(reopened.Selection()) != 1 {
		t.Error("selection should survive a save")
	}
}
