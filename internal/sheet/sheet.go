// Package sheet round-trips extracted units through an xlsx workbook so
// translators can fill in a Translation column offline.
package sheet

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/valpere/figtrans/internal"
	"github.com/valpere/figtrans/internal/metadata"
	"github.com/valpere/figtrans/internal/scene"
)

// SheetName is the worksheet written by Export.
const SheetName = "Translations"

const (
	colID          = "ID"
	colNodeID      = "Node ID"
	colOriginal    = "Original Text"
	colTranslation = "Translation"
	colCharacters  = "Characters"
	colFont        = "Font"
	colFontSize    = "Font Size"
	colHyperlink   = "Has Hyperlink"
	colMetadata    = "Metadata"
)

var header = []string{
	colID, colNodeID, colOriginal, colTranslation, colCharacters,
	colFont, colFontSize, colHyperlink, colMetadata,
}

// Export writes units to a new workbook at path.
func Export(units []internal.TextUnit, path string) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", SheetName); err != nil {
		return fmt.Errorf("failed to name sheet: %w", err)
	}

	row := make([]interface{}, len(header))
	for i, h := range header {
		row[i] = h
	}
	if err := f.SetSheetRow(SheetName, "A1", &row); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}

	for i, u := range units {
		meta, err := json.Marshal(u.Formatting)
		if err != nil {
			return fmt.Errorf("failed to encode metadata for %s: %w", u.ID, err)
		}
		values := []interface{}{
			u.ID,
			u.NodeID,
			u.Text,
			"",
			u.CharacterCount,
			fontLabel(u.FontName),
			fontSizeLabel(u.FontSize),
			u.HasHyperlink,
			string(meta),
		}
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(SheetName, cell, &values); err != nil {
			return fmt.Errorf("failed to write row for %s: %w", u.ID, err)
		}
	}

	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return err
	}
	if err := f.SetCellStyle(SheetName, "A1", "I1", bold); err != nil {
		return err
	}
	if err := f.SetColWidth(SheetName, "C", "D", 50); err != nil {
		return err
	}
	if err := f.SetColVisible(SheetName, "I", false); err != nil {
		return err
	}

	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("failed to save workbook: %w", err)
	}
	return nil
}

// Import reads filled-in rows back as apply requests. Rows without a
// translation are skipped.
func Import(path string) ([]internal.ApplyRequest, error) {
	rows, err := readRows(path)
	if err != nil {
		return nil, err
	}
	var reqs []internal.ApplyRequest
	for _, r := range rows {
		if r.translation == "" {
			continue
		}
		reqs = append(reqs, internal.NewApplyRequest(r.unit, r.translation))
	}
	return reqs, nil
}

// ReadUnits reads every row back as a text unit, ignoring the Translation
// column.
func ReadUnits(path string) ([]internal.TextUnit, error) {
	rows, err := readRows(path)
	if err != nil {
		return nil, err
	}
	units := make([]internal.TextUnit, 0, len(rows))
	for _, r := range rows {
		units = append(units, r.unit)
	}
	return units, nil
}

type sheetRow struct {
	unit        internal.TextUnit
	translation string
}

func readRows(path string) ([]sheetRow, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open workbook: %w", err)
	}
	defer f.Close()

	sheetName := SheetName
	if idx, err := f.GetSheetIndex(SheetName); err != nil || idx < 0 {
		sheets := f.GetSheetList()
		if len(sheets) == 0 {
			return nil, fmt.Errorf("workbook has no sheets")
		}
		sheetName = sheets[0]
	}

	rows, err := f.GetRows(sheetName)
	if err != nil {
		return nil, fmt.Errorf("failed to read rows: %w", err)
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("sheet %q is empty", sheetName)
	}

	cols := make(map[string]int)
	for i, h := range rows[0] {
		cols[strings.TrimSpace(h)] = i
	}
	for _, required := range []string{colID, colNodeID, colOriginal, colTranslation} {
		if _, ok := cols[required]; !ok {
			return nil, fmt.Errorf("sheet %q is missing the %q column", sheetName, required)
		}
	}

	var out []sheetRow
	for i, row := range rows[1:] {
		id := cell(row, cols[colID])
		if id == "" {
			continue
		}
		text := cell(row, cols[colOriginal])
		r := sheetRow{
			unit: internal.TextUnit{
				ID:         id,
				NodeID:     cell(row, cols[colNodeID]),
				Text:       text,
				Characters: text,
			},
			translation: cell(row, cols[colTranslation]),
		}
		if idx, ok := cols[colMetadata]; ok {
			if raw := cell(row, idx); raw != "" {
				var meta metadata.Formatting
				if err := json.Unmarshal([]byte(raw), &meta); err != nil {
					return nil, fmt.Errorf("row %d: invalid metadata: %w", i+2, err)
				}
				r.unit.Formatting = meta
			}
		}
		out = append(out, r)
	}
	return out, nil
}

func cell(row []string, idx int) string {
	if idx < len(row) {
		return row[idx]
	}
	return ""
}

func fontLabel(v scene.Value[scene.FontName]) string {
	if v.IsMixed() {
		return scene.MixedSentinel
	}
	if f, ok := v.Get(); ok {
		return f.Family + " " + f.Style
	}
	return ""
}

func fontSizeLabel(v scene.Value[float64]) interface{} {
	if v.IsMixed() {
		return scene.MixedSentinel
	}
	if s, ok := v.Get(); ok {
		return s
	}
	return ""
}
