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
	"net"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/valpere/figtrans/internal/relay"
)

var (
	relayPort     string
	relayUpstream string
	relayTimeout  time.Duration
)

var relayCmd = &cobra.Command{
	Use:   "relay",
	Short: "Run the translation relay",
	Long: `Run an HTTP relay that forwards translation requests to DeepL with a
server-side key, so callers never hold the credential.

  POST /translate  {"text": "...", "target_lang": "FR"}
  GET  /health

The key is read from DEEPL_API_KEY (environment or .env) and the port from
--port or PORT. A "relay" section in the config file may set addr,
upstream_url, timeout and api_key.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		rc, err := relayConfig(cmd)
		if err != nil {
			return err
		}
		srv, err := relay.New(rc, logger)
		if err != nil {
			return err
		}

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		return srv.ListenAndServe(ctx)
	},
}

// relayConfig loads the relay section of the config file. Changed flags,
// PORT and DEEPL_API_KEY take precedence, and flag defaults fill the gaps.
func relayConfig(cmd *cobra.Command) (relay.Config, error) {
	var rc relay.Config
	if err := cfg.UnmarshalKey("relay", &rc); err != nil {
		return rc, fmt.Errorf("invalid relay config: %w", err)
	}

	flags := cmd.Flags()
	if flags.Changed("port") || cfg.IsSet("port") || rc.Addr == "" {
		rc.Addr = net.JoinHostPort("", setting(cmd, "port", "port"))
	}
	if flags.Changed("upstream") || rc.UpstreamURL == "" {
		rc.UpstreamURL, _ = flags.GetString("upstream")
	}
	if flags.Changed("timeout") || rc.Timeout <= 0 {
		rc.Timeout, _ = flags.GetDuration("timeout")
	}
	if key := cfg.GetString("deepl_api_key"); key != "" {
		rc.APIKey = key
	}
	return rc, nil
}

func init() {
	rootCmd.AddCommand(relayCmd)

	relayCmd.Flags().StringVar(&relayPort, "port", "3000", "Port to listen on")
	relayCmd.Flags().StringVar(&relayUpstream, "upstream", relay.DefaultUpstreamURL, "Upstream translate endpoint")
	relayCmd.Flags().DurationVar(&relayTimeout, "timeout", 30*time.Second, "Upstream request timeout")
}
