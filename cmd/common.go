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
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/valpere/figtrans/internal"
	"github.com/valpere/figtrans/internal/scene"
	"github.com/valpere/figtrans/internal/sheet"
	"github.com/valpere/figtrans/internal/store"
	"github.com/valpere/figtrans/internal/translator"
)

const defaultDBPath = "./data/figtrans.db"

// buildService constructs the translation service selected on the command line.
func buildService(name, relayURL, deeplKey, deeplURL, mymemoryEmail string) (translator.TranslationService, error) {
	switch name {
	case "relay":
		return translator.NewRelayService(relayURL), nil
	case "deepl":
		return translator.NewDeepLService(deeplKey, deeplURL), nil
	case "google":
		return translator.NewGoogleService(), nil
	case "mymemory":
		return translator.NewMyMemoryService(mymemoryEmail, ""), nil
	default:
		return nil, fmt.Errorf("unknown service %q (want relay, deepl, google or mymemory)", name)
	}
}

// openStore opens the SQLite database, creating its directory first.
func openStore(path string) (*store.Store, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("failed to create database directory: %w", err)
	}
	db, err := store.New(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	return db, nil
}

// saveDocument writes doc to write, or back to docPath when write is empty.
// An in-place save is skipped when nothing was applied. It returns the path
// written, or "" when nothing was saved.
func saveDocument(doc *scene.Document, docPath, write string, applied int) (string, error) {
	target := write
	if target == "" {
		target = docPath
	}
	if applied == 0 && target == docPath {
		return "", nil
	}
	if err := doc.SaveFile(target); err != nil {
		return "", fmt.Errorf("failed to save document: %w", err)
	}
	return target, nil
}

func isSheet(path string) bool {
	return strings.EqualFold(filepath.Ext(path), ".xlsx")
}

func readUnits(path string) ([]internal.TextUnit, error) {
	if isSheet(path) {
		return sheet.ReadUnits(path)
	}
	var units []internal.TextUnit
	if err := readJSON(path, &units); err != nil {
		return nil, err
	}
	return units, nil
}

func readRequests(path string) ([]internal.ApplyRequest, error) {
	if isSheet(path) {
		return sheet.Import(path)
	}
	var reqs []internal.ApplyRequest
	if err := readJSON(path, &reqs); err != nil {
		return nil, err
	}
	return reqs, nil
}

func readJSON(path string, v any) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read input file: %w", err)
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("failed to parse %s: %w", path, err)
	}
	return nil
}

// writeJSON writes v to path, or to stdout when path is empty or "-".
func writeJSON(path string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode output: %w", err)
	}
	data = append(data, '\n')

	if path == "" || path == "-" {
		_, err := os.Stdout.Write(data)
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write output file: %w", err)
	}
	return nil
}
