// internal/cli/root.go
package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/law-makers/shelf/internal/app"
	"github.com/law-makers/shelf/internal/config"
	"github.com/law-makers/shelf/internal/ui"
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "shelf",
	Short: "Collect product listings from a page and summarize them",
	Long: `Shelf loads a product listing page, reads name, price, rating and review count
from each product card and reports the averages, totals and price range.

Pages are fetched with plain HTTP first and rendered in headless Chrome when
the listing is built client-side.`,
	Version:       "0.1.0",
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	ctx, stop := signalContext()
	defer stop()

	err := rootCmd.ExecuteContext(ctx)
	closeApp()
	if err != nil {
		fmt.Fprintf(os.Stderr, "%s %v\n", ui.Error("Error:"), err)
		os.Exit(1)
	}
}

func init() {
	// Lazily initialize the application before running commands (avoid starting app for -h/help)
	rootCmd.PersistentPreRunE = func(cmd *cobra.Command, args []string) error {
		if GetAppFromCmd(cmd) != nil {
			return nil
		}

		cfg, err := config.Load(cmd)
		if err != nil {
			return err
		}

		a, err := app.New(cmd.Context(), cfg)
		if err != nil {
			return err
		}

		SetApp(cmd, a)
		return nil
	}
}

func init() {
	// Register centralized flags
	config.RegisterFlags(rootCmd)

	// Customize help and version flag descriptions
	rootCmd.Flags().BoolP("help", "h", false, "Help for Shelf")
	rootCmd.Flags().Bool("version", false, "Version for Shelf")
}
