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
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/valpere/figtrans/internal/plugin"
	"github.com/valpere/figtrans/internal/scene"
	"github.com/valpere/figtrans/internal/sheet"
)

var (
	extractDoc    string
	extractSelect []string
	extractOutput string
)

var extractCmd = &cobra.Command{
	Use:   "extract",
	Short: "Extract the text runs of the selected frame",
	Long: `Walk the selected frame of a scene document depth-first and write one
unit per text node, numbered TXT_0001, TXT_0002, ... in document order.

The selection stored in the document is used unless --select is given.
An .xlsx output writes a translation sheet instead of JSON.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		doc, err := scene.Open(extractDoc)
		if err != nil {
			return err
		}
		if len(extractSelect) > 0 {
			doc.Select(extractSelect...)
		}
		doc.MirrorNotices(os.Stderr)

		out := plugin.NewController(doc, nil, logger).Extract()
		if out.Type == plugin.MsgError {
			return errors.New(out.Message)
		}

		if isSheet(extractOutput) {
			if err := sheet.Export(out.Data, extractOutput); err != nil {
				return err
			}
			fmt.Fprintf(os.Stderr, "Sheet written to %s\n", extractOutput)
			return nil
		}
		return writeJSON(extractOutput, out.Data)
	},
}

func init() {
	rootCmd.AddCommand(extractCmd)

	extractCmd.Flags().StringVar(&extractDoc, "doc", "", "Scene document (required)")
	extractCmd.Flags().StringSliceVar(&extractSelect, "select", nil, "Node ID to select instead of the stored selection (repeatable)")
	extractCmd.Flags().StringVarP(&extractOutput, "output", "o", "", "Output file, .json or .xlsx (default stdout)")

	extractCmd.MarkFlagRequired("doc")
}
