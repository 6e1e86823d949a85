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
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/valpere/figtrans/internal/plugin"
	"github.com/valpere/figtrans/internal/reconcile"
	"github.com/valpere/figtrans/internal/scene"
)

var (
	sessionDoc       string
	sessionWrite     string
	sessionDBPath    string
	sessionNoHistory bool
)

var sessionCmd = &cobra.Command{
	Use:   "session",
	Short: "Serve UI messages over stdin/stdout",
	Long: `Run a message session against a scene document. Each line on stdin is a
JSON message; each reply is written to stdout as one JSON line.

Messages:
  {"type": "extract-text"}
  {"type": "apply-translations", "data": [...apply requests...]}
  {"type": "cancel"}

The session ends on cancel, end of input or Ctrl-C. Host notifications are
printed to stderr. Applied translations are saved in place when the session
ends, unless --write names another file.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		doc, err := scene.Open(sessionDoc)
		if err != nil {
			return err
		}
		doc.MirrorNotices(os.Stderr)

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		engine := reconcile.New(doc, reconcile.WithLogger(logger))
		ctrl := plugin.NewController(doc, engine, logger)

		if !sessionNoHistory {
			db, err := openStore(setting(cmd, "db", "db"))
			if err != nil {
				return err
			}
			defer db.Close()
			ctrl.OnReport(recordRun(db, sessionDoc))
		}

		if err := ctrl.Serve(ctx, os.Stdin, os.Stdout); err != nil && ctx.Err() == nil {
			return err
		}

		target, err := saveDocument(doc, sessionDoc, sessionWrite, ctrl.Applied())
		if err != nil {
			return err
		}
		if target != "" {
			fmt.Fprintf(os.Stderr, "Document written to %s\n", target)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(sessionCmd)

	sessionCmd.Flags().StringVar(&sessionDoc, "doc", "", "Scene document (required)")
	sessionCmd.Flags().StringVar(&sessionWrite, "write", "", "Write the updated document here instead of in place")
	sessionCmd.Flags().StringVar(&sessionDBPath, "db", defaultDBPath, "Database path for run history")
	sessionCmd.Flags().BoolVar(&sessionNoHistory, "no-history", false, "Do not record runs in the history")

	sessionCmd.MarkFlagRequired("doc")
}
