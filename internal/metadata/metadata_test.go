package metadata

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/valpere/figtrans/internal/scene"
)

func newTextNode(t *testing.T, props *scene.TextProps) scene.TextNode {
	t.Helper()
	doc, err := scene.New("test", &scene.NodeSpec{ID: "1:1", Type: scene.TypeText, TextProps: props}, "1:1")
	if err != nil {
		t.Fatalf("scene.New failed: %v", err)
	}
	return doc.Root().(scene.TextNode)
}

func url(u string) scene.Hyperlink {
	return scene.Hyperlink{Type: scene.HyperlinkURL, Value: u}
}

// failingNode makes every hyperlink query fail or panic.
type failingNode struct {
	scene.TextNode
	panics bool
}

func (f failingNode) RangeHyperlink(start, end int) (scene.Value[scene.Hyperlink], error) {
	if f.panics {
		panic("range query crashed")
	}
	return scene.Value[scene.Hyperlink]{}, errors.New("range query failed")
}

func TestSerialize(t *testing.T) {
	n := newTextNode(t, &scene.TextProps{
		Characters:          "Café",
		FontName:            scene.Single(scene.FontName{Family: "Inter", Style: "SemiBold"}),
		FontSize:            scene.Single(14.0),
		TextAlignHorizontal: scene.Single("CENTER"),
		TextCase:            scene.Mixed[string](),
		Width:               120,
		Height:              20,
	})

	f := Serialize(n)
	if f.FontWeight != "SemiBold" {
		t.Errorf("FontWeight = %q", f.FontWeight)
	}
	if f.CharacterCount != 4 {
		t.Errorf("CharacterCount = %d, want 4", f.CharacterCount)
	}
	if f.Width != 120 || f.Height != 20 {
		t.Errorf("size = %vx%v", f.Width, f.Height)
	}
	if !f.TextCase.IsMixed() {
		t.Error("TextCase should stay mixed")
	}
	if f.HasHyperlink {
		t.Error("expected no hyperlinks")
	}

	data, err := json.Marshal(f)
	if err != nil {
		t.Fatalf("Marshal failed: %v", err)
	}
	var raw map[string]json.RawMessage
	json.Unmarshal(data, &raw)
	if string(raw["textCase"]) != `"MIXED"` {
		t.Errorf("textCase = %s", raw["textCase"])
	}
	if string(raw["textDecoration"]) != "null" {
		t.Errorf("textDecoration = %s", raw["textDecoration"])
	}
}

func TestSerialize_MixedFontWeight(t *testing.T) {
	n := newTextNode(t, &scene.TextProps{
		Characters: "Hi",
		FontName:   scene.Mixed[scene.FontName](),
	})
	if got := Serialize(n).FontWeight; got != "Regular" {
		t.Errorf("FontWeight = %q, want Regular", got)
	}
}

func TestProbeHyperlinks(t *testing.T) {
	n := newTextNode(t, &scene.TextProps{
		Characters: "See docs or blog",
		Hyperlinks: []scene.LinkSpan{
			{Start: 4, End: 8, Hyperlink: url("https://example.com/docs")},
			{Start: 9, End: 11, Hyperlink: scene.Hyperlink{Type: scene.HyperlinkNode, Value: "2:7"}},
			{Start: 12, End: 16, Hyperlink: url("https://example.com/blog")},
		},
	})

	info := ProbeHyperlinks(n)
	if !info.HasLinks || info.Error != "" {
		t.Fatalf("unexpected info %+v", info)
	}
	want := []Link{
		{Type: scene.HyperlinkURL, URL: "https://example.com/docs", Start: 4, End: 8},
		{Type: scene.HyperlinkURL, URL: "https://example.com/blog", Start: 12, End: 16},
	}
	if len(info.Links) != len(want) {
		t.Fatalf("links = %+v", info.Links)
	}
	for i := range want {
		if info.Links[i] != want[i] {
			t.Errorf("link %d = %+v, want %+v", i, info.Links[i], want[i])
		}
	}
}

func TestProbeHyperlinks_Empty(t *testing.T) {
	info := ProbeHyperlinks(newTextNode(t, &scene.TextProps{}))
	if info.HasLinks || info.Links == nil || len(info.Links) != 0 {
		t.Errorf("unexpected info %+v", info)
	}
}

func TestProbeHyperlinks_Failure(t *testing.T) {
	base := newTextNode(t, &scene.TextProps{Characters: "broken"})

	for _, panics := range []bool{false, true} {
		info := ProbeHyperlinks(failingNode{TextNode: base, panics: panics})
		if info.HasLinks || len(info.Links) != 0 {
			t.Errorf("panics=%v: expected no links, got %+v", panics, info)
		}
		if info.Error == "" {
			t.Errorf("panics=%v: expected an error message", panics)
		}
	}
}
