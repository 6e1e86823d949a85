/*
Copyright © 2025 Valentyn Solomko <valentyn.solomko@gmail.com>

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

	http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/
package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"strconv"

	"github.com/lmittmann/tint"
	"github.com/spf13/cobra"

	"github.com/valpere/figtrans/internal/plugin"
	"github.com/valpere/figtrans/internal/reconcile"
	"github.com/valpere/figtrans/internal/scene"
	"github.com/valpere/figtrans/internal/store"
)

// ANSI colours for the status attribute of outcome log lines.
const (
	colorApplied = 10
	colorSkipped = 11
	colorFailed  = 9
)

var (
	applyDoc      string
	applyInput    string
	applyWrite    string
	applyDBPath   string
	applyNoRecord bool
	applyRatio    float64
	applyReport   string
)

var applyCmd = &cobra.Command{
	Use:   "apply",
	Short: "Write translations back into a scene document",
	Long: `Apply translated units to the nodes they were extracted from.

A unit is only written when its node still holds the exact text that was
translated. Units whose node is gone or whose text was edited are skipped
and reported. Fonts are loaded before each write, hyperlinks are restored
clamped to the new length, and translations much longer than the original
are flagged as possible overflow.

The document is saved in place unless --write names another file.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		reqs, err := readRequests(applyInput)
		if err != nil {
			return err
		}

		doc, err := scene.Open(applyDoc)
		if err != nil {
			return err
		}
		doc.MirrorNotices(os.Stderr)

		ratio := applyRatio
		if v := setting(cmd, "overflow-ratio", "overflow_ratio"); v != "" {
			if r, err := strconv.ParseFloat(v, 64); err == nil {
				ratio = r
			}
		}

		engine := reconcile.New(doc, reconcile.WithLogger(logger), reconcile.WithOverflowRatio(ratio))
		ctrl := plugin.NewController(doc, engine, logger)

		if !applyNoRecord {
			db, err := openStore(setting(cmd, "db", "db"))
			if err != nil {
				return err
			}
			defer db.Close()
			ctrl.OnReport(recordRun(db, applyDoc))
		}

		out := ctrl.Apply(context.Background(), reqs)
		report := out.Report
		logOutcomes(report)

		for _, e := range report.Errors {
			fmt.Fprintf(os.Stderr, "  ✗ %s\n", e)
		}
		for _, w := range report.Warnings {
			fmt.Fprintf(os.Stderr, "  ⚠ %s\n", w)
		}

		target, err := saveDocument(doc, applyDoc, applyWrite, report.SuccessCount)
		if err != nil {
			return err
		}
		if target != "" {
			fmt.Fprintf(os.Stderr, "Document written to %s\n", target)
		}

		if applyReport != "" {
			return writeJSON(applyReport, report)
		}
		return nil
	},
}

// recordRun stores every finished batch in the run history.
func recordRun(db *store.Store, document string) plugin.ReportHook {
	return func(ctx context.Context, report *reconcile.Report) {
		id, err := db.RecordRun(ctx, document, report)
		if err != nil {
			logger.Warn("failed to record run", "error", err)
			return
		}
		logger.Debug("run recorded", "run", id)
	}
}

func logOutcomes(report *reconcile.Report) {
	for _, o := range report.Outcomes {
		color := uint8(colorApplied)
		switch o.Status {
		case reconcile.SkippedNotFound, reconcile.SkippedTextMismatch:
			color = colorSkipped
		case reconcile.Failed:
			color = colorFailed
		}
		logger.Debug("outcome",
			"unit", o.UnitID,
			"node", o.NodeID,
			tint.Attr(color, slog.String("status", o.Status.String())))
	}
}

func init() {
	rootCmd.AddCommand(applyCmd)

	applyCmd.Flags().StringVar(&applyDoc, "doc", "", "Scene document to update (required)")
	applyCmd.Flags().StringVarP(&applyInput, "input", "i", "", "Apply requests, .json or .xlsx (required)")
	applyCmd.Flags().StringVar(&applyWrite, "write", "", "Write the updated document here instead of in place")
	applyCmd.Flags().StringVar(&applyDBPath, "db", defaultDBPath, "Database path for run history")
	applyCmd.Flags().BoolVar(&applyNoRecord, "no-history", false, "Do not record the run in the history")
	applyCmd.Flags().Float64Var(&applyRatio, "overflow-ratio", reconcile.DefaultOverflowRatio, "Length ratio above which an overflow warning is raised")
	applyCmd.Flags().StringVar(&applyReport, "report", "", "Write the JSON report to this file (- for stdout)")

	applyCmd.MarkFlagRequired("doc")
	applyCmd.MarkFlagRequired("input")
}
