package internal

import "github.com/valpere/figtrans/internal/metadata"

// TextUnit is one text run extracted from the selected frame. It lives for a
// single extract-translate-apply round trip and is never persisted.
type TextUnit struct {
	ID         string `json:"id"`
	NodeID     string `json:"nodeId"`
	Text       string `json:"text"`
	Characters string `json:"characters"`
	metadata.Formatting
}

// ApplyRequest asks for a translation to be written back to the node the
// unit was extracted from.
type ApplyRequest struct {
	ID           string              `json:"id"`
	NodeID       string              `json:"nodeId"`
	OriginalText string              `json:"originalText"`
	Translation  string              `json:"translation"`
	Metadata     metadata.Formatting `json:"metadata"`
}

// NewApplyRequest pairs a unit with its translation.
func NewApplyRequest(u TextUnit, translation string) ApplyRequest {
	return ApplyRequest{
		ID:           u.ID,
		NodeID:       u.NodeID,
		OriginalText: u.Text,
		Translation:  translation,
		Metadata:     u.Formatting,
	}
}
