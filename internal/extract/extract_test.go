package extract

import (
	"context"
	"errors"
	"testing"

	"github.com/valpere/figtrans/internal/scene"
)

func text(id, chars string) *scene.NodeSpec {
	return &scene.NodeSpec{ID: id, Type: scene.TypeText, TextProps: &scene.TextProps{Characters: chars}}
}

func frame(id string, children ...*scene.NodeSpec) *scene.NodeSpec {
	if children == nil {
		children = []*scene.NodeSpec{}
	}
	return &scene.NodeSpec{ID: id, Type: "FRAME", Children: children}
}

func newDoc(t *testing.T, root *scene.NodeSpec, selection ...string) *scene.Document {
	t.Helper()
	d, err := scene.New("test", root, selection...)
	if err != nil {
		t.Fatalf("scene.New failed: %v", err)
	}
	return d
}

func sampleTree() *scene.NodeSpec {
	return frame("page",
		frame("hero",
			text("a", "Title"),
			frame("group",
				text("b", "Subtitle"),
				&scene.NodeSpec{ID: "icon", Type: "VECTOR"},
			),
			text("c", "Call to action"),
		),
		frame("other", text("d", "Ignored")),
	)
}

func TestExtract_Selection(t *testing.T) {
	tests := []struct {
		name      string
		selection []string
		wantErr   error
	}{
		{name: "nothing selected", wantErr: ErrNoSelection},
		{name: "two frames", selection: []string{"hero", "other"}, wantErr: ErrMultipleSelection},
		{name: "no text", selection: []string{"icon"}, wantErr: ErrEmptyResult},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Extract(newDoc(t, sampleTree(), tt.selection...))
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("err = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestExtract_PreOrder(t *testing.T) {
	d := newDoc(t, sampleTree(), "hero")

	units, err := Extract(d)
	if err != nil {
		t.Fatalf("Extract failed: %v", err)
	}
	want := []struct{ id, node, text string }{
		{"TXT_0001", "a", "Title"},
		{"TXT_0002", "b", "Subtitle"},
		{"TXT_0003", "c", "Call to action"},
	}
	if len(units) != len(want) {
		t.Fatalf("got %d units, want %d", len(units), len(want))
	}
	for i, w := range want {
		u := units[i]
		if u.ID != w.id || u.NodeID != w.node || u.Text != w.text || u.Characters != w.text {
			t.Errorf("unit %d = %+v, want %+v", i, u, w)
		}
	}
	if units[2].CharacterCount != 14 {
		t.Errorf("CharacterCount = %d", units[2].CharacterCount)
	}
}

func TestExtract_SelectedTextNode(t *testing.T) {
	units, err := Extract(newDoc(t, sampleTree(), "b"))
	if err != nil {
		t.Fatalf("Extract failed: %v", err)
	}
	if len(units) != 1 || units[0].ID != "TXT_0001" {
		t.Errorf("unexpected units %+v", units)
	}
}

func TestExtract_Idempotent(t *testing.T) {
	d := newDoc(t, sampleTree(), "hero")

	first, err := Extract(d)
	if err != nil {
		t.Fatalf("first Extract failed: %v", err)
	}
	second, err := Extract(d)
	if err != nil {
		t.Fatalf("second Extract failed: %v", err)
	}
	for i := range first {
		if first[i].ID != second[i].ID || first[i].NodeID != second[i].NodeID {
			t.Errorf("unit %d differs: %s/%s vs %s/%s", i, first[i].ID, first[i].NodeID, second[i].ID, second[i].NodeID)
		}
	}

	n, _ := d.NodeByID(context.Background(), "a")
	if n.(scene.TextNode).Characters() != "Title" {
		t.Error("extraction must not modify the tree")
	}
}

func TestExtract_EmptyFrame(t *testing.T) {
	_, err := Extract(newDoc(t, frame("empty"), "empty"))
	if !errors.Is(err, ErrEmptyResult) {
		t.Errorf("err = %v, want ErrEmptyResult", err)
	}
}

func TestUnitID(t *testing.T) {
	if got := UnitID(7); got != "TXT_0007" {
		t.Errorf("UnitID(7) = %q", got)
	}
	if got := UnitID(12345); got != "TXT_12345" {
		t.Errorf("UnitID(12345) = %q", got)
	}
}
