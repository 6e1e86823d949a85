package scene

import "context"

// FontName identifies a font face.
type FontName struct {
	Family string `json:"family"`
	Style  string `json:"style"`
}

// HyperlinkType is the kind of target a hyperlink points at.
type HyperlinkType string

const (
	HyperlinkURL  HyperlinkType = "URL"
	HyperlinkNode HyperlinkType = "NODE"
)

// Hyperlink is the target attached to a character range.
type Hyperlink struct {
	Type  HyperlinkType `json:"type"`
	Value string        `json:"value"`
}

// Color is an RGB colour with components in [0, 1].
type Color struct {
	R float64 `json:"r"`
	G float64 `json:"g"`
	B float64 `json:"b"`
}

// Paint describes one fill layer.
type Paint struct {
	Type    string   `json:"type"`
	Visible *bool    `json:"visible,omitempty"`
	Opacity *float64 `json:"opacity,omitempty"`
	Color   *Color   `json:"color,omitempty"`
}

// LetterSpacing is a spacing amount in PIXELS or PERCENT.
type LetterSpacing struct {
	Value float64 `json:"value"`
	Unit  string  `json:"unit"`
}

// LineHeight is a line height; Value is omitted for the AUTO unit.
type LineHeight struct {
	Value float64 `json:"value,omitempty"`
	Unit  string  `json:"unit"`
}

// Node is any element of the scene graph. The concrete kinds are TextNode,
// ContainerNode and everything else.
type Node interface {
	ID() string
	Name() string
}

// ContainerNode is a node with ordered children.
type ContainerNode interface {
	Node
	Children() []Node
}

// TextNode is a leaf text run and the only node kind figtrans mutates.
type TextNode interface {
	Node

	Characters() string
	// SetCharacters replaces the content. Hosts reject the call unless every
	// font used by the node has been loaded.
	SetCharacters(text string) error

	FontName() Value[FontName]
	FontSize() Value[float64]
	TextAlignHorizontal() Value[string]
	TextAlignVertical() Value[string]
	TextAutoResize() Value[string]
	TextDecoration() Value[string]
	TextCase() Value[string]
	LetterSpacing() Value[LetterSpacing]
	LineHeight() Value[LineHeight]
	Fills() Value[[]Paint]
	Width() float64
	Height() float64

	// RangeHyperlink reports the link covering [start, end). Absent means no
	// link, Mixed means more than one.
	RangeHyperlink(start, end int) (Value[Hyperlink], error)
	SetRangeHyperlink(start, end int, link Hyperlink) error
}

// NotifyOptions tune a transient host notification.
type NotifyOptions struct {
	Error     bool
	TimeoutMs int
}

// Host is the slice of the design tool figtrans relies on.
type Host interface {
	// Selection returns the currently selected root nodes.
	Selection() []Node
	// NodeByID resolves a node. A missing node is (nil, nil).
	NodeByID(ctx context.Context, id string) (Node, error)
	// LoadFont makes a font ready for text assignment.
	LoadFont(ctx context.Context, font FontName) error
	Notify(message string, opts NotifyOptions)
}
