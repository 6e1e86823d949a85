// Package reconcile writes translations back into the live scene graph.
//
// Every request is matched to its node, checked against the text that was
// translated, and applied only when that text is still in place. Requests
// are processed one at a time in input order: the font load, text assignment
// and hyperlink restore of a unit complete before the next unit starts.
package reconcile

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"unicode/utf8"

	"github.com/valpere/figtrans/internal"
	"github.com/valpere/figtrans/internal/metadata"
	"github.com/valpere/figtrans/internal/scene"
)

// DefaultOverflowRatio is the translated/original length ratio above which an
// overflow warning is attached.
const DefaultOverflowRatio = 1.5

// Status classifies the result of one apply request.
type Status int

const (
	Applied Status = iota
	SkippedNotFound
	SkippedTextMismatch
	Failed
)

func (s Status) String() string {
	switch s {
	case Applied:
		return "applied"
	case SkippedNotFound:
		return "skipped_not_found"
	case SkippedTextMismatch:
		return "skipped_text_mismatch"
	case Failed:
		return "failed"
	default:
		return fmt.Sprintf("status(%d)", int(s))
	}
}

func (s Status) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// OverflowWarning reports how much longer the translation is.
type OverflowWarning struct {
	GrowthPercent int `json:"growthPercent"`
}

// HyperlinkRestoreWarning reports that links could not be put back.
type HyperlinkRestoreWarning struct {
	Reason string `json:"reason"`
}

// Outcome is the result for a single request.
type Outcome struct {
	UnitID    string                   `json:"unitId"`
	NodeID    string                   `json:"nodeId"`
	Status    Status                   `json:"status"`
	Reason    string                   `json:"reason,omitempty"`
	// Found is the node's live text after a text mismatch.
	Found     string                   `json:"found,omitempty"`
	Overflow  *OverflowWarning         `json:"overflow,omitempty"`
	Hyperlink *HyperlinkRestoreWarning `json:"hyperlink,omitempty"`
}

// Report aggregates the outcomes of a batch.
type Report struct {
	Outcomes     []Outcome `json:"outcomes"`
	SuccessCount int       `json:"successCount"`
	ErrorCount   int       `json:"errorCount"`
	Errors       []string  `json:"errors"`
	Warnings     []string  `json:"warnings"`
}

// Option configures an Engine.
type Option func(*Engine)

// WithLogger sets the logger; nil keeps slog.Default().
func WithLogger(l *slog.Logger) Option {
	return func(e *Engine) {
		if l != nil {
			e.logger = l
		}
	}
}

// WithOverflowRatio overrides DefaultOverflowRatio.
func WithOverflowRatio(r float64) Option {
	return func(e *Engine) {
		if r > 0 {
			e.overflowRatio = r
		}
	}
}

// Engine applies translated units to a Host.
type Engine struct {
	host          scene.Host
	logger        *slog.Logger
	overflowRatio float64
}

func New(host scene.Host, opts ...Option) *Engine {
	e := &Engine{
		host:          host,
		logger:        slog.Default(),
		overflowRatio: DefaultOverflowRatio,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Apply processes reqs sequentially and returns the batch report. No request
// is retried and no failure stops the batch.
func (e *Engine) Apply(ctx context.Context, reqs []internal.ApplyRequest) *Report {
	report := &Report{
		Outcomes: make([]Outcome, 0, len(reqs)),
		Errors:   []string{},
		Warnings: []string{},
	}

	for _, req := range reqs {
		out := e.applyOne(ctx, req)
		report.Outcomes = append(report.Outcomes, out)

		switch out.Status {
		case Applied:
			report.SuccessCount++
		case SkippedNotFound:
			report.ErrorCount++
			report.Errors = append(report.Errors, fmt.Sprintf("Node not found for ID: %s", req.ID))
		case SkippedTextMismatch:
			report.ErrorCount++
			report.Errors = append(report.Errors, fmt.Sprintf("Text mismatch for %s. Expected: %q, Found: %q", req.ID, req.OriginalText, out.Found))
		case Failed:
			report.ErrorCount++
			report.Errors = append(report.Errors, fmt.Sprintf("Error applying translation for %s: %s", req.ID, out.Reason))
		}
		if out.Overflow != nil {
			report.Warnings = append(report.Warnings, fmt.Sprintf("%s: Translation is %d%% longer. May cause overflow.", req.ID, out.Overflow.GrowthPercent))
		}
		if out.Hyperlink != nil {
			report.Warnings = append(report.Warnings, fmt.Sprintf("%s: Could not restore hyperlinks - %s", req.ID, out.Hyperlink.Reason))
		}
	}

	e.logger.Info("translations applied",
		"requests", len(reqs), "succeeded", report.SuccessCount, "failed", report.ErrorCount, "warnings", len(report.Warnings))
	return report
}

func (e *Engine) applyOne(ctx context.Context, req internal.ApplyRequest) Outcome {
	out := Outcome{UnitID: req.ID, NodeID: req.NodeID}
	log := e.logger.With("unit", req.ID, "node", req.NodeID)

	n, err := e.host.NodeByID(ctx, req.NodeID)
	if err != nil {
		out.Status = Failed
		out.Reason = err.Error()
		log.Warn("node lookup failed", "error", err)
		return out
	}
	node, ok := n.(scene.TextNode)
	if !ok {
		out.Status = SkippedNotFound
		log.Debug("node not found")
		return out
	}

	// Never overwrite text that changed since it was extracted.
	if current := node.Characters(); current != req.OriginalText {
		out.Status = SkippedTextMismatch
		out.Found = current
		out.Reason = fmt.Sprintf("text changed: found %q", current)
		log.Debug("text mismatch")
		return out
	}

	out.Overflow = e.overflow(req.OriginalText, req.Translation)

	if err := e.loadFont(ctx, node, req.Metadata); err != nil {
		out.Status = Failed
		out.Reason = err.Error()
		log.Warn("font load failed", "error", err)
		return out
	}

	if err := node.SetCharacters(req.Translation); err != nil {
		out.Status = Failed
		out.Reason = err.Error()
		log.Warn("text assignment failed", "error", err)
		return out
	}

	if req.Metadata.HasHyperlink && req.Metadata.Hyperlink.HasLinks {
		if err := restoreLinks(node, req.Metadata.Hyperlink.Links); err != nil {
			out.Hyperlink = &HyperlinkRestoreWarning{Reason: err.Error()}
			log.Warn("hyperlink restore failed", "error", err)
		}
	}

	out.Status = Applied
	log.Debug("translation applied")
	return out
}

// overflow returns a warning when translated exceeds the ratio. Growth is
// rounded half up. An empty original has no defined growth and never warns.
func (e *Engine) overflow(original, translated string) *OverflowWarning {
	ol := utf8.RuneCountInString(original)
	tl := utf8.RuneCountInString(translated)
	if ol == 0 || float64(tl) <= float64(ol)*e.overflowRatio {
		return nil
	}
	growth := (float64(tl)/float64(ol) - 1) * 100
	return &OverflowWarning{GrowthPercent: int(math.Floor(growth + 0.5))}
}

// loadFont readies the recorded font, or the node's own font when the
// recording is mixed or absent. A node whose font is mixed too loads nothing.
func (e *Engine) loadFont(ctx context.Context, node scene.TextNode, f metadata.Formatting) error {
	font, ok := f.FontName.Get()
	if !ok {
		font, ok = node.FontName().Get()
	}
	if !ok {
		return nil
	}
	return e.host.LoadFont(ctx, font)
}

// restoreLinks re-applies recorded spans clamped to the new text length.
// Offsets are not realigned to the translated wording.
func restoreLinks(node scene.TextNode, links []metadata.Link) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%v", r)
		}
	}()

	newLen := utf8.RuneCountInString(node.Characters())
	for _, link := range links {
		if link.Type != scene.HyperlinkURL || link.URL == "" {
			continue
		}
		start := min(link.Start, newLen-1)
		end := min(link.End, newLen)
		if start < 0 || end <= start {
			continue
		}
		if err := node.SetRangeHyperlink(start, end, scene.Hyperlink{Type: scene.HyperlinkURL, Value: link.URL}); err != nil {
			return err
		}
	}
	return nil
}
