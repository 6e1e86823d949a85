// Package metadata snapshots the formatting of a text node into plain,
// transport-safe values. Properties that vary across the run serialize as
// the mixed sentinel instead of a picked or merged value.
package metadata

import (
	"fmt"
	"unicode/utf8"

	"github.com/valpere/figtrans/internal/scene"
)

// defaultFontWeight is reported when the run mixes several font styles.
const defaultFontWeight = "Regular"

// Formatting is the serialized formatting of one text run. It holds no live
// host references.
type Formatting struct {
	FontName            scene.Value[scene.FontName]      `json:"fontName"`
	FontSize            scene.Value[float64]             `json:"fontSize"`
	FontWeight          string                           `json:"fontWeight"`
	TextAlignHorizontal scene.Value[string]              `json:"textAlignHorizontal"`
	TextAlignVertical   scene.Value[string]              `json:"textAlignVertical"`
	TextAutoResize      scene.Value[string]              `json:"textAutoResize"`
	Fills               scene.Value[[]scene.Paint]       `json:"fills"`
	Width               float64                          `json:"width"`
	Height              float64                          `json:"height"`
	CharacterCount      int                              `json:"characterCount"`
	LetterSpacing       scene.Value[scene.LetterSpacing] `json:"letterSpacing"`
	LineHeight          scene.Value[scene.LineHeight]    `json:"lineHeight"`
	TextDecoration      scene.Value[string]              `json:"textDecoration"`
	TextCase            scene.Value[string]              `json:"textCase"`
	Hyperlink           HyperlinkInfo                    `json:"hyperlink"`
	HasHyperlink        bool                             `json:"hasHyperlink"`
}

// Link is a URL hyperlink over the character range [Start, End).
type Link struct {
	Type  scene.HyperlinkType `json:"type"`
	URL   string              `json:"url"`
	Start int                 `json:"start"`
	End   int                 `json:"end"`
}

// HyperlinkInfo is the result of probing a run for hyperlinks.
type HyperlinkInfo struct {
	HasLinks bool   `json:"hasLinks"`
	Links    []Link `json:"links"`
	Error    string `json:"error,omitempty"`
}

// Serialize captures the formatting of n.
func Serialize(n scene.TextNode) Formatting {
	font := n.FontName()
	weight := defaultFontWeight
	if f, ok := font.Get(); ok {
		weight = f.Style
	}

	links := ProbeHyperlinks(n)

	return Formatting{
		FontName:            font,
		FontSize:            n.FontSize(),
		FontWeight:          weight,
		TextAlignHorizontal: n.TextAlignHorizontal(),
		TextAlignVertical:   n.TextAlignVertical(),
		TextAutoResize:      n.TextAutoResize(),
		Fills:               n.Fills(),
		Width:               n.Width(),
		Height:              n.Height(),
		CharacterCount:      utf8.RuneCountInString(n.Characters()),
		LetterSpacing:       n.LetterSpacing(),
		LineHeight:          n.LineHeight(),
		TextDecoration:      n.TextDecoration(),
		TextCase:            n.TextCase(),
		Hyperlink:           links,
		HasHyperlink:        links.HasLinks,
	}
}

// ProbeHyperlinks queries every single-character range of the run, since the
// host answers hyperlink queries per sub-range only. Only URL links are
// kept. Hits on consecutive characters with the same URL are coalesced into
// one span. A failing probe yields an empty result carrying the error.
func ProbeHyperlinks(n scene.TextNode) (info HyperlinkInfo) {
	defer func() {
		if r := recover(); r != nil {
			info = HyperlinkInfo{Links: []Link{}, Error: fmt.Sprint(r)}
		}
	}()

	length := utf8.RuneCountInString(n.Characters())
	links := []Link{}
	for i := 0; i < length; i++ {
		v, err := n.RangeHyperlink(i, i+1)
		if err != nil {
			return HyperlinkInfo{Links: []Link{}, Error: err.Error()}
		}
		target, ok := v.Get()
		if !ok || target.Type != scene.HyperlinkURL {
			continue
		}
		if seen(links, target.Value, i) {
			continue
		}
		if last := len(links) - 1; last >= 0 && links[last].URL == target.Value && links[last].End == i {
			links[last].End = i + 1
			continue
		}
		links = append(links, Link{Type: scene.HyperlinkURL, URL: target.Value, Start: i, End: i + 1})
	}
	return HyperlinkInfo{HasLinks: len(links) > 0, Links: links}
}

func seen(links []Link, url string, start int) bool {
	for _, l := range links {
		if l.URL == url && l.Start == start {
			return true
		}
	}
	return false
}
