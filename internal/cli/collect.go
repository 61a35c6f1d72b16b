// internal/cli/collect.go
package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/law-makers/shelf/internal/collector"
	"github.com/law-makers/shelf/internal/report"
	"github.com/law-makers/shelf/internal/ui"
	urlutil "github.com/law-makers/shelf/internal/utils/url"
	"github.com/rs/zerolog/log"
	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"
)

var (
	limit   int
	output  string
	retries int
	bins    int
)

// collectCmd represents the collect command
var collectCmd = &cobra.Command{
	Use:   "collect <url>",
	Short: "Collect products from a listing page and summarize them",
	Long: `Loads the page, reads up to --limit product cards and prints the average
price, average rating, total reviews and price range, followed by a price
histogram and the raw records.

The page is fetched with plain HTTP first and rendered in headless Chrome when
the listing is built client-side. Use --mode to force one engine.`,
	Example: `  # Collect the first 20 products
  shelf collect https://shop.example/widgets

  # Collect 50 products with a browser
  shelf collect https://shop.example/widgets --limit 50 --mode spa

  # Export the records as CSV
  shelf collect https://shop.example/widgets -o widgets.csv

  # Retry failed page loads twice more
  shelf collect https://shop.example/widgets --retries 3

  # Add custom headers
  shelf collect https://shop.example/widgets -H "Accept-Language: en-US"`,
	Args: cobra.ExactArgs(1),
	RunE: runCollect,
}

func init() {
	rootCmd.AddCommand(collectCmd)

	collectCmd.Flags().IntVarP(&limit, "limit", "n", 20, "Maximum number of products to collect (5-50)")
	collectCmd.Flags().StringP("mode", "m", "", "Force engine mode: auto, static, or spa")
	collectCmd.Flags().StringVarP(&output, "output", "o", "", "File path to save the result (supports .json, .csv, .md, .html)")
	collectCmd.Flags().IntVar(&retries, "retries", 1, "Page load attempts (1 means no retry)")
	collectCmd.Flags().IntVar(&bins, "bins", 0, "Number of histogram bins (default 20)")
	collectCmd.Flags().StringArrayP("header", "H", []string{}, "Custom headers (e.g., -H \"Accept-Language: en-US\")")
}

func runCollect(cmd *cobra.Command, args []string) error {
	a := GetAppFromCmd(cmd)
	if a == nil {
		return fmt.Errorf("application not initialized")
	}
	cfg := a.Config

	n := cfg.Limits.Default
	if cmd.Flags().Changed("limit") {
		n = limit
	}
	if err := cfg.CheckLimit(n); err != nil {
		return err
	}

	target := urlutil.Normalize(args[0])
	if err := urlutil.ValidateURL(target); err != nil {
		return err
	}

	req := collector.Request{
		URL:      target,
		Limit:    n,
		Timeout:  cfg.HTTPTimeout,
		Attempts: cfg.Retries,
	}

	log.Info().Str("url", req.URL).Int("limit", n).Str("mode", cfg.Mode).Msg("Collecting")

	stop := startSpinner(!cfg.Quiet && !cfg.JSONLog)
	result, err := a.Collector.Collect(cmd.Context(), req)
	stop()

	if cfg.JSONLog {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		if encErr := enc.Encode(collector.NewOutcome(result, err)); encErr != nil {
			return encErr
		}
	}
	if err != nil {
		return userError(err)
	}

	if output != "" {
		if err := report.Save(result, output); err != nil {
			return fmt.Errorf("failed to save output: %w", err)
		}
		log.Info().Str("path", output).Msg("Result saved")
		if !cfg.Quiet && !cfg.JSONLog {
			fmt.Fprintf(os.Stderr, "%s %s\n", ui.Success("Saved"), output)
		}
	}

	if cfg.JSONLog {
		return nil
	}
	if cfg.Quiet && output != "" {
		return nil
	}
	return report.Render(os.Stdout, result, report.RenderOptions{Color: ui.Enabled(os.Stdout), Bins: bins})
}

// startSpinner shows an indeterminate progress spinner on stderr until the
// returned func is called
func startSpinner(enabled bool) func() {
	if !enabled {
		return func() {}
	}

	bar := progressbar.NewOptions(-1,
		progressbar.OptionSetWriter(os.Stderr),
		progressbar.OptionSetDescription("Collecting data..."),
		progressbar.OptionSpinnerType(14),
		progressbar.OptionClearOnFinish(),
	)

	done := make(chan struct{})
	finished := make(chan struct{})
	go func() {
		defer close(finished)
		ticker := time.NewTicker(100 * time.Millisecond)
		defer ticker.Stop()
		for {
			select {
			case <-done:
				_ = bar.Finish()
				return
			case <-ticker.C:
				_ = bar.Add(1)
			}
		}
	}()

	return func() {
		close(done)
		<-finished
	}
}

// userError turns a pipeline failure into the message shown on the terminal
func userError(err error) error {
	var ce *collector.CollectionError
	if !errors.As(err, &ce) {
		return err
	}
	if ce.Stage == collector.StageValidate {
		return errors.New(ce.UserMessage())
	}
	log.Debug().Err(ce.Err).Str("stage", string(ce.Stage)).Msg("Collection failed")
	return fmt.Errorf("%s: %v", ce.UserMessage(), ce.Err)
}
