package scene

import (
	"fmt"
	"sort"
	"unicode/utf8"
)

type textNode struct {
	spec *NodeSpec
	doc  *Document
}

func (t *textNode) ID() string   { return t.spec.ID }
func (t *textNode) Name() string { return t.spec.Name }

func (t *textNode) Characters() string { return t.spec.Characters }

func (t *textNode) FontName() Value[FontName]           { return t.spec.FontName }
func (t *textNode) FontSize() Value[float64]            { return t.spec.FontSize }
func (t *textNode) TextAlignHorizontal() Value[string]  { return t.spec.TextAlignHorizontal }
func (t *textNode) TextAlignVertical() Value[string]    { return t.spec.TextAlignVertical }
func (t *textNode) TextAutoResize() Value[string]       { return t.spec.TextAutoResize }
func (t *textNode) TextDecoration() Value[string]       { return t.spec.TextDecoration }
func (t *textNode) TextCase() Value[string]             { return t.spec.TextCase }
func (t *textNode) LetterSpacing() Value[LetterSpacing] { return t.spec.LetterSpacing }
func (t *textNode) LineHeight() Value[LineHeight]       { return t.spec.LineHeight }
func (t *textNode) Fills() Value[[]Paint]               { return t.spec.Fills }
func (t *textNode) Width() float64                      { return t.spec.Width }
func (t *textNode) Height() float64                     { return t.spec.Height }

// fonts lists every face used by the run.
func (t *textNode) fonts() []FontName {
	if f, ok := t.spec.FontName.Get(); ok {
		return []FontName{f}
	}
	if t.spec.FontName.IsMixed() {
		return t.spec.Fonts
	}
	return nil
}

func (t *textNode) SetCharacters(text string) error {
	for _, f := range t.fonts() {
		if !t.doc.fontLoaded(f) {
			return fmt.Errorf("cannot write to node with unloaded font %q %q", f.Family, f.Style)
		}
	}
	if t.spec.FontName.IsMixed() && len(t.spec.Fonts) > 0 {
		// The new content takes the style of the first character.
		t.spec.FontName = Single(t.spec.Fonts[0])
		t.spec.Fonts = nil
	}
	t.spec.Characters = text
	t.spec.Hyperlinks = nil
	return nil
}

func (t *textNode) checkRange(start, end int) error {
	n := utf8.RuneCountInString(t.spec.Characters)
	if start < 0 || end > n || start >= end {
		return fmt.Errorf("range [%d, %d) out of bounds for text of length %d", start, end, n)
	}
	return nil
}

func (t *textNode) linkAt(offset int) *Hyperlink {
	for i := range t.spec.Hyperlinks {
		s := &t.spec.Hyperlinks[i]
		if s.Start <= offset && offset < s.End {
			return &s.Hyperlink
		}
	}
	return nil
}

func (t *textNode) RangeHyperlink(start, end int) (Value[Hyperlink], error) {
	if err := t.checkRange(start, end); err != nil {
		return Value[Hyperlink]{}, err
	}
	first := t.linkAt(start)
	for i := start + 1; i < end; i++ {
		cur := t.linkAt(i)
		if (cur == nil) != (first == nil) || (cur != nil && *cur != *first) {
			return Mixed[Hyperlink](), nil
		}
	}
	if first == nil {
		return Value[Hyperlink]{}, nil
	}
	return Single(*first), nil
}

func (t *textNode) SetRangeHyperlink(start, end int, link Hyperlink) error {
	if err := t.checkRange(start, end); err != nil {
		return err
	}
	var spans []LinkSpan
	for _, s := range t.spec.Hyperlinks {
		if s.End <= start || s.Start >= end {
			spans = append(spans, s)
			continue
		}
		if s.Start < start {
			spans = append(spans, LinkSpan{Start: s.Start, End: start, Hyperlink: s.Hyperlink})
		}
		if s.End > end {
			spans = append(spans, LinkSpan{Start: end, End: s.End, Hyperlink: s.Hyperlink})
		}
	}
	spans = append(spans, LinkSpan{Start: start, End: end, Hyperlink: link})
	sort.Slice(spans, func(i, j int) bool { return spans[i].Start < spans[j].Start })
	t.spec.Hyperlinks = spans
	return nil
}
