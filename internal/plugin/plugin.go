// Package plugin implements the message boundary between the UI and the
// scene-side code: extraction requests, translation batches and the
// notifications the host shows after each of them.
package plugin

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/valpere/figtrans/internal"
	"github.com/valpere/figtrans/internal/extract"
	"github.com/valpere/figtrans/internal/reconcile"
	"github.com/valpere/figtrans/internal/scene"
)

// Message kinds.
const (
	MsgExtractText        = "extract-text"
	MsgApplyTranslations  = "apply-translations"
	MsgCancel             = "cancel"
	MsgError              = "error"
	MsgTextExtracted      = "text-extracted"
	MsgTranslationApplied = "translation-applied"
)

const overflowNoticeTimeoutMs = 5000

// Inbound is a message sent by the UI.
type Inbound struct {
	Type string          `json:"type"`
	Data json.RawMessage `json:"data,omitempty"`
}

// Outbound is a message sent to the UI. Report is set for
// translation-applied only.
type Outbound struct {
	Type    string              `json:"type"`
	Message string              `json:"message,omitempty"`
	Data    []internal.TextUnit `json:"data,omitempty"`
	Count   int                 `json:"count,omitempty"`
	*reconcile.Report
}

// ReportHook observes every finished batch.
type ReportHook func(ctx context.Context, report *reconcile.Report)

// Controller dispatches UI messages against a host.
type Controller struct {
	host   scene.Host
	engine *reconcile.Engine
	logger  *slog.Logger
	hook    ReportHook
	applied int
}

func NewController(host scene.Host, engine *reconcile.Engine, logger *slog.Logger) *Controller {
	if logger == nil {
		logger = slog.Default()
	}
	return &Controller{host: host, engine: engine, logger: logger}
}

// OnReport registers a hook called after every apply batch.
func (c *Controller) OnReport(h ReportHook) {
	c.hook = h
}

// Applied returns the number of translations written across all batches.
func (c *Controller) Applied() int {
	return c.applied
}

// Extract runs a traversal over the current selection.
func (c *Controller) Extract() Outbound {
	units, err := extract.Extract(c.host)
	if err != nil {
		c.logger.Info("extraction rejected", "reason", err)
		return Outbound{Type: MsgError, Message: err.Error()}
	}
	c.host.Notify(fmt.Sprintf("✓ Extracted %d text element(s)", len(units)), scene.NotifyOptions{})
	return Outbound{Type: MsgTextExtracted, Data: units, Count: len(units)}
}

// Apply writes a translation batch back and notifies the user.
func (c *Controller) Apply(ctx context.Context, reqs []internal.ApplyRequest) Outbound {
	report := c.engine.Apply(ctx, reqs)
	c.applied += report.SuccessCount
	if c.hook != nil {
		c.hook(ctx, report)
	}

	if report.SuccessCount > 0 {
		c.host.Notify(fmt.Sprintf("✓ Applied %d translation(s) successfully", report.SuccessCount), scene.NotifyOptions{})
	}
	if report.ErrorCount > 0 {
		c.host.Notify(fmt.Sprintf("⚠ %d translation(s) failed. Check the plugin for details.", report.ErrorCount),
			scene.NotifyOptions{Error: true})
	}
	if len(report.Warnings) > 0 {
		c.host.Notify(fmt.Sprintf("⚠ %d text(s) may overflow. Check the plugin for details.", len(report.Warnings)),
			scene.NotifyOptions{TimeoutMs: overflowNoticeTimeoutMs})
	}
	return Outbound{Type: MsgTranslationApplied, Report: report}
}

// Handle dispatches one inbound message. The boolean is false once the
// session should end.
func (c *Controller) Handle(ctx context.Context, in Inbound) (Outbound, bool) {
	switch in.Type {
	case MsgExtractText:
		return c.Extract(), true
	case MsgApplyTranslations:
		var reqs []internal.ApplyRequest
		if len(in.Data) > 0 {
			if err := json.Unmarshal(in.Data, &reqs); err != nil {
				return Outbound{Type: MsgError, Message: fmt.Sprintf("invalid translations payload: %v", err)}, true
			}
		}
		return c.Apply(ctx, reqs), true
	case MsgCancel:
		return Outbound{}, false
	default:
		return Outbound{Type: MsgError, Message: fmt.Sprintf("unknown message type %q", in.Type)}, true
	}
}

// Serve reads JSON messages from r and writes replies to w, one message at
// a time, until cancel, EOF or ctx is done. Messages are decoded on a
// separate goroutine so cancellation is seen while r is idle; that goroutine
// stays blocked in r until the caller closes it.
func (c *Controller) Serve(ctx context.Context, r io.Reader, w io.Writer) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	msgs := make(chan Inbound)
	errc := make(chan error, 1)
	go func() {
		dec := json.NewDecoder(r)
		for {
			var in Inbound
			if err := dec.Decode(&in); err != nil {
				errc <- err
				return
			}
			select {
			case msgs <- in:
			case <-ctx.Done():
				return
			}
		}
	}()

	enc := json.NewEncoder(w)
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case err := <-errc:
			if errors.Is(err, io.EOF) {
				return nil
			}
			return fmt.Errorf("failed to decode message: %w", err)
		case in := <-msgs:
			c.logger.Debug("message received", "type", in.Type)

			out, more := c.Handle(ctx, in)
			if !more {
				return nil
			}
			if err := enc.Encode(out); err != nil {
				return fmt.Errorf("failed to write message: %w", err)
			}
		}
	}
}
