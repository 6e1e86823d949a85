package scene

import (
	"encoding/json"
	"testing"
)

func TestValue_States(t *testing.T) {
	var absent Value[float64]
	if !absent.IsAbsent() || absent.IsMixed() {
		t.Error("zero value should be absent")
	}
	if _, ok := absent.Get(); ok {
		t.Error("absent value should not Get")
	}
	if got := absent.OrElse(12); got != 12 {
		t.Errorf("OrElse = %v, want 12", got)
	}

	single := Single(16.0)
	if got, ok := single.Get(); !ok || got != 16 {
		t.Errorf("Get = %v, %v", got, ok)
	}

	mixed := Mixed[float64]()
	if !mixed.IsMixed() {
		t.Error("expected mixed")
	}
	if got := mixed.OrElse(12); got != 12 {
		t.Errorf("mixed OrElse = %v, want 12", got)
	}
}

func TestValue_JSON(t *testing.T) {
	type props struct {
		Size  Value[float64]  `json:"size"`
		Font  Value[FontName] `json:"font"`
		Align Value[string]   `json:"align"`
	}

	in := props{
		Size: Mixed[float64](),
		Font: Single(FontName{Family: "Inter", Style: "Regular"}),
	}
	data, err := json.Marshal(in)
	if err != nil {
		t.Fatalf("Marshal failed: %v", err)
	}
	want := `{"size":"MIXED","font":{"family":"Inter","style":"Regular"},"align":null}`
	if string(data) != want {
		t.Errorf("Marshal = %s, want %s", data, want)
	}

	var out props
	if err := json.Unmarshal(data, &out); err != nil {
		t.Fatalf("Unmarshal failed: %v", err)
	}
	if !out.Size.IsMixed() {
		t.Error("size should decode as mixed")
	}
	if f, ok := out.Font.Get(); !ok || f.Family != "Inter" {
		t.Errorf("font = %+v, %v", f, ok)
	}
	if !out.Align.IsAbsent() {
		t.Error("align should decode as absent")
	}
}

func TestValue_UnmarshalRejectsWrongType(t *testing.T) {
	var v Value[float64]
	if err := json.Unmarshal([]byte(`"large"`), &v); err == nil {
		t.Error("expected error for non-numeric size")
	}
}
