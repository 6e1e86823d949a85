// Package extract walks the selected frame and collects its text runs.
package extract

import (
	"errors"
	"fmt"

	"github.com/valpere/figtrans/internal"
	"github.com/valpere/figtrans/internal/metadata"
	"github.com/valpere/figtrans/internal/scene"
)

// Traversal conditions. Their messages are shown to the user as-is.
var (
	ErrNoSelection       = errors.New("Please select a frame to extract text from.")
	ErrMultipleSelection = errors.New("Please select only one frame at a time.")
	ErrEmptyResult       = errors.New("No text found in the selected frame.")
)

// UnitID formats the n-th identifier of an extraction pass.
func UnitID(n int) string {
	return fmt.Sprintf("TXT_%04d", n)
}

// Extract collects the text runs under the single selected node.
func Extract(host scene.Host) ([]internal.TextUnit, error) {
	selection := host.Selection()
	switch {
	case len(selection) == 0:
		return nil, ErrNoSelection
	case len(selection) > 1:
		return nil, ErrMultipleSelection
	}

	units := Walk(selection[0])
	if len(units) == 0 {
		return nil, ErrEmptyResult
	}
	return units, nil
}

// Walk visits root depth-first in pre-order and returns a unit for every
// text node, numbered from TXT_0001. The tree is not modified.
func Walk(root scene.Node) []internal.TextUnit {
	var units []internal.TextUnit
	counter := 1

	var visit func(n scene.Node)
	visit = func(n scene.Node) {
		switch node := n.(type) {
		case scene.TextNode:
			text := node.Characters()
			units = append(units, internal.TextUnit{
				ID:         UnitID(counter),
				NodeID:     node.ID(),
				Text:       text,
				Characters: text,
				Formatting: metadata.Serialize(node),
			})
			counter++
		case scene.ContainerNode:
			for _, child := range node.Children() {
				visit(child)
			}
		}
	}
	visit(root)

	return units
}
