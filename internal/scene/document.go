package scene

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"
)

// NodeSpec is the serialized form of a scene node. Text properties live in
// the embedded TextProps and are only meaningful for TEXT nodes.
type NodeSpec struct {
	ID       string      `json:"id"`
	Type     string      `json:"type"`
	Name     string      `json:"name,omitempty"`
	Children []*NodeSpec `json:"children,omitempty"`
	*TextProps
}

// TextProps carries the text-run properties of a TEXT node.
type TextProps struct {
	Characters          string               `json:"characters"`
	FontName            Value[FontName]      `json:"fontName"`
	Fonts               []FontName           `json:"fonts,omitempty"`
	FontSize            Value[float64]       `json:"fontSize"`
	TextAlignHorizontal Value[string]        `json:"textAlignHorizontal"`
	TextAlignVertical   Value[string]        `json:"textAlignVertical"`
	TextAutoResize      Value[string]        `json:"textAutoResize"`
	TextDecoration      Value[string]        `json:"textDecoration"`
	TextCase            Value[string]        `json:"textCase"`
	LetterSpacing       Value[LetterSpacing] `json:"letterSpacing"`
	LineHeight          Value[LineHeight]    `json:"lineHeight"`
	Fills               Value[[]Paint]       `json:"fills"`
	Width               float64              `json:"width"`
	Height              float64              `json:"height"`
	Hyperlinks          []LinkSpan           `json:"hyperlinks,omitempty"`
}

// LinkSpan attaches a hyperlink to the character range [Start, End).
type LinkSpan struct {
	Start int `json:"start"`
	End   int `json:"end"`
	Hyperlink
}

// TypeText is the node type string of text runs.
const TypeText = "TEXT"

// Notice is a recorded host notification.
type Notice struct {
	Message string
	Options NotifyOptions
}

// Document is an in-memory Host backed by a JSON scene export.
type Document struct {
	Name string

	root      *NodeSpec
	top       Node
	index     map[string]Node
	selection []string

	mu        sync.Mutex
	loaded    map[FontName]bool
	available map[FontName]bool
	notices   []Notice
	notifyOut io.Writer
}

type documentFile struct {
	Name      string    `json:"name"`
	Selection []string  `json:"selection"`
	Root      *NodeSpec `json:"root"`
}

// New builds a document around root with the given selection.
func New(name string, root *NodeSpec, selection ...string) (*Document, error) {
	if root == nil {
		return nil, fmt.Errorf("document %q has no root node", name)
	}
	d := &Document{
		Name:      name,
		root:      root,
		index:     make(map[string]Node),
		selection: selection,
		loaded:    make(map[FontName]bool),
	}
	top, err := d.build(root)
	if err != nil {
		return nil, err
	}
	d.top = top
	return d, nil
}

// Load decodes a document from r.
func Load(r io.Reader) (*Document, error) {
	var f documentFile
	if err := json.NewDecoder(r).Decode(&f); err != nil {
		return nil, fmt.Errorf("failed to decode document: %w", err)
	}
	return New(f.Name, f.Root, f.Selection...)
}

// Open reads a document from a JSON file.
func Open(path string) (*Document, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open document: %w", err)
	}
	defer f.Close()
	return Load(f)
}

func (d *Document) build(spec *NodeSpec) (Node, error) {
	if spec.ID == "" {
		return nil, fmt.Errorf("node %q has no id", spec.Name)
	}
	if _, dup := d.index[spec.ID]; dup {
		return nil, fmt.Errorf("duplicate node id %s", spec.ID)
	}

	var n Node
	switch {
	case spec.Type == TypeText:
		if spec.TextProps == nil {
			spec.TextProps = &TextProps{}
		}
		n = &textNode{spec: spec, doc: d}
	case spec.Children != nil:
		c := &containerNode{spec: spec}
		for _, child := range spec.Children {
			cn, err := d.build(child)
			if err != nil {
				return nil, err
			}
			c.children = append(c.children, cn)
		}
		n = c
	default:
		n = &otherNode{spec: spec}
	}
	d.index[spec.ID] = n
	return n, nil
}

// Root returns the top node of the document.
func (d *Document) Root() Node { return d.top }

// Select replaces the current selection.
func (d *Document) Select(ids ...string) {
	d.selection = ids
}

// Selection resolves the selected ids; unknown ids are dropped.
func (d *Document) Selection() []Node {
	var nodes []Node
	for _, id := range d.selection {
		if n, ok := d.index[id]; ok {
			nodes = append(nodes, n)
		}
	}
	return nodes
}

func (d *Document) NodeByID(ctx context.Context, id string) (Node, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	n, ok := d.index[id]
	if !ok {
		return nil, nil
	}
	return n, nil
}

// RestrictFonts limits LoadFont to the given faces. With no arguments every
// font loads.
func (d *Document) RestrictFonts(fonts ...FontName) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if len(fonts) == 0 {
		d.available = nil
		return
	}
	d.available = make(map[FontName]bool, len(fonts))
	for _, f := range fonts {
		d.available[f] = true
	}
}

func (d *Document) LoadFont(ctx context.Context, font FontName) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.available != nil && !d.available[font] {
		return fmt.Errorf("font %q %q is not available", font.Family, font.Style)
	}
	d.loaded[font] = true
	return nil
}

func (d *Document) fontLoaded(font FontName) bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.loaded[font]
}

// MirrorNotices writes every later notification to w.
func (d *Document) MirrorNotices(w io.Writer) {
	d.mu.Lock()
	d.notifyOut = w
	d.mu.Unlock()
}

func (d *Document) Notify(message string, opts NotifyOptions) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.notices = append(d.notices, Notice{Message: message, Options: opts})
	if d.notifyOut != nil {
		fmt.Fprintln(d.notifyOut, message)
	}
}

// Notices returns the notifications recorded so far.
func (d *Document) Notices() []Notice {
	d.mu.Lock()
	defer d.mu.Unlock()
	out := make([]Notice, len(d.notices))
	copy(out, d.notices)
	return out
}

// Save encodes the document, including any mutations, to w.
func (d *Document) Save(w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(documentFile{Name: d.Name, Selection: d.selection, Root: d.root})
}

// SaveFile writes the document to path.
func (d *Document) SaveFile(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create document file: %w", err)
	}
	if err := d.Save(f); err != nil {
		f.Close()
		return fmt.Errorf("failed to write document: %w", err)
	}
	return f.Close()
}

type containerNode struct {
	spec     *NodeSpec
	children []Node
}

func (c *containerNode) ID() string       { return c.spec.ID }
func (c *containerNode) Name() string     { return c.spec.Name }
func (c *containerNode) Children() []Node { return c.children }

type otherNode struct {
	spec *NodeSpec
}

func (o *otherNode) ID() string   { return o.spec.ID }
func (o *otherNode) Name() string { return o.spec.Name }
