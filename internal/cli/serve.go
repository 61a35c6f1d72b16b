// internal/cli/serve.go
package cli

import (
	"fmt"

	"github.com/law-makers/shelf/internal/ratelimit"
	"github.com/law-makers/shelf/internal/server"
	"github.com/law-makers/shelf/internal/ui"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
)

// serveCmd represents the serve command
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the interactive dashboard",
	Long: `Starts the dashboard on --addr. Every browser gets its own session: the last
successful collection stays on screen until the next one succeeds or the
session expires.`,
	Example: `  # Serve on the default port
  shelf serve

  # Serve on another address with JSON logs
  shelf serve --addr 127.0.0.1:9000 --json`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().String("addr", "", "Address to listen on (default :8080)")
	serveCmd.Flags().StringP("mode", "m", "", "Force engine mode: auto, static, or spa")
}

func runServe(cmd *cobra.Command, args []string) error {
	a := GetAppFromCmd(cmd)
	if a == nil {
		return fmt.Errorf("application not initialized")
	}
	cfg := a.Config

	// A server is useless without request logs; keep them unless asked to be quiet
	if !cfg.Quiet && zerolog.GlobalLevel() > zerolog.InfoLevel {
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
	}

	throttle, err := ratelimit.NewKeyedLimiter(cfg.Server.CollectRPS, cfg.Server.CollectBurst, cfg.Server.ThrottleSessions)
	if err != nil {
		return err
	}

	srv, err := server.New(server.Options{
		Collector:     a.Collector,
		Store:         a.Store,
		Metrics:       a.Metrics,
		Limits:        cfg.Limits,
		Throttle:      throttle,
		Attempts:      cfg.Retries,
		FlashSessions: cfg.Server.ThrottleSessions,
	})
	if err != nil {
		return err
	}

	if !cfg.Quiet && !cfg.JSONLog {
		fmt.Fprintf(cmd.ErrOrStderr(), "%s %s\n", ui.Bold("Dashboard:"), ui.Success("http://"+displayAddr(cfg.Server.Addr)))
	}

	return srv.Run(cmd.Context(), cfg.Server.Addr)
}

// displayAddr makes ":8080" clickable
func displayAddr(addr string) string {
	if len(addr) > 0 && addr[0] == ':' {
		return "localhost" + addr
	}
	return addr
}
