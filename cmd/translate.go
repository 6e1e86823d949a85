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
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/valpere/figtrans/internal/detector"
	"github.com/valpere/figtrans/internal/store"
	"github.com/valpere/figtrans/internal/translator"
)

var (
	inputFile   string
	outputFile  string
	sourceLang  string
	targetLang  string
	serviceName string

	relayURL    string
	deeplKey    string
	deeplURL    string
	credentials string
	projectID   string

	mymemoryEmail string

	dbPath    string
	noCache   bool
	checkLang bool
)

var translateCmd = &cobra.Command{
	Use:   "translate",
	Short: "Translate extracted units",
	Long: `Translate every unit of an extraction, one request at a time, and write
apply requests pairing each unit with its translation.

Available services:
  - relay    figtrans relay (holds the DeepL key, default)
  - deepl    DeepL directly (requires API key)
  - google   Google Cloud Translation (requires credentials)
  - mymemory MyMemory (free, daily quota)

Translations are cached in the SQLite translation memory unless --no-cache
is given.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		if inputFile == outputFile {
			return fmt.Errorf("input file and output file cannot be the same")
		}

		units, err := readUnits(inputFile)
		if err != nil {
			return err
		}
		if len(units) == 0 {
			return fmt.Errorf("no units in %s", inputFile)
		}

		ctx := context.Background()

		var det *detector.Detector
		if checkLang || sourceLang == "auto" {
			det = detector.New()
		}

		// Auto-detect source language when not specified
		if sourceLang == "auto" {
			var sample []string
			for _, u := range units {
				sample = append(sample, u.Text)
			}
			if detected, ok := det.DetectISO(strings.Join(sample, "\n")); ok {
				sourceLang = detected
				fmt.Fprintf(os.Stderr, "Detected source language: %s\n", sourceLang)
			}
		}

		svcName := setting(cmd, "service", "service")
		svc, err := buildService(svcName,
			setting(cmd, "relay-url", "relay_url"),
			setting(cmd, "deepl-key", "deepl_api_key"),
			setting(cmd, "deepl-url", "deepl_url"),
			setting(cmd, "mymemory-email", "mymemory_email"))
		if err != nil {
			return err
		}
		if err := svc.IsAvailable(ctx); err != nil {
			return fmt.Errorf("service %s is not available: %w", svc.Name(), err)
		}

		opts := translator.UnitOptions{
			SourceLang: sourceLang,
			TargetLang: targetLang,
			Logger:     logger,
		}
		if checkLang {
			opts.Checker = det
		}

		var db *store.Store
		if !noCache {
			db, err = openStore(setting(cmd, "db", "db"))
			if err != nil {
				return err
			}
			defer db.Close()
			opts.Memory = db
		}

		svcCfg := translator.ServiceConfig{
			Credentials: setting(cmd, "credentials", "google_credentials"),
			ProjectID:   setting(cmd, "project", "google_project"),
		}

		fmt.Fprintf(os.Stderr, "Translating %d unit(s) with %s...\n", len(units), svc.Name())
		res, err := translator.TranslateUnits(ctx, svc, svcCfg, units, opts)
		if err != nil {
			return err
		}

		for _, f := range res.Failed {
			fmt.Fprintf(os.Stderr, "  ✗ %s\n", f)
		}
		for _, w := range res.Warnings {
			fmt.Fprintf(os.Stderr, "  ⚠ %s\n", w)
		}

		if err := writeJSON(outputFile, res.Requests); err != nil {
			return err
		}

		fmt.Fprintf(os.Stderr, "Translated %d of %d unit(s) (%d from cache)\n",
			len(res.Requests), len(units), res.Cached)
		if len(res.Requests) == 0 {
			return fmt.Errorf("all translations failed")
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(translateCmd)

	translateCmd.Flags().StringVarP(&inputFile, "input", "i", "", "Units to translate, .json or .xlsx (required)")
	translateCmd.Flags().StringVarP(&outputFile, "output", "o", "", "Output file for apply requests (default stdout)")
	translateCmd.Flags().StringVarP(&sourceLang, "source", "s", "auto", "Source language code")
	translateCmd.Flags().StringVarP(&targetLang, "target", "t", "", "Target language code (required)")
	translateCmd.Flags().StringVar(&serviceName, "service", "relay", "Translation service: relay, deepl, google or mymemory")

	translateCmd.Flags().StringVar(&relayURL, "relay-url", "http://localhost:3000", "figtrans relay base URL")
	translateCmd.Flags().StringVar(&deeplKey, "deepl-key", "", "DeepL API key (or DEEPL_API_KEY)")
	translateCmd.Flags().StringVar(&deeplURL, "deepl-url", translator.DeepLEndpoint, "DeepL translate endpoint")
	translateCmd.Flags().StringVarP(&credentials, "credentials", "c", "", "Path to Google Cloud credentials")
	translateCmd.Flags().StringVarP(&projectID, "project", "p", "", "Google Cloud Project ID")
	translateCmd.Flags().StringVar(&mymemoryEmail, "mymemory-email", "", "MyMemory email (for higher limits)")

	translateCmd.Flags().StringVar(&dbPath, "db", defaultDBPath, "Database path for translation memory")
	translateCmd.Flags().BoolVar(&noCache, "no-cache", false, "Disable translation memory cache")
	translateCmd.Flags().BoolVar(&checkLang, "check-lang", true, "Warn when a translation is not in the target language")

	translateCmd.MarkFlagRequired("input")
	translateCmd.MarkFlagRequired("target")
}
