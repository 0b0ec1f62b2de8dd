package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/dossier/internal/adapters/driving/api"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP API",
	Long: `Starts a JSON HTTP API over the research agent.

Endpoints (all POST, JSON bodies with "company", "years", "department"):
  /init    - company overview
  /deep    - deep PDF collection
  /qa      - quick answer from overview snippets ("question")
  /ask     - answer in any mode ("question", "mode", "k", "kb_ready")
  /report  - account plan ("directive", "render")`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().StringP("addr", "a", "127.0.0.1:8000", "listen address")
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, _ []string) error {
	addr, err := cmd.Flags().GetString("addr")
	if err != nil {
		return fmt.Errorf("getting addr flag: %w", err)
	}
	if sessionPool == nil {
		return errors.New("research service not configured")
	}

	server, err := api.NewServer(&api.Ports{
		Sessions: sessionPool,
		Guard:    guard,
		TTLDays:  cacheTTLDays,
	})
	if err != nil {
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "HTTP API listening on http://%s\n", addr)
	return server.Run(cmd.Context(), addr)
}
