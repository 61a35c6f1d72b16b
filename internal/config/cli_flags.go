package config

import "github.com/spf13/cobra"

// RegisterFlags registers common CLI flags on the provided root command
func RegisterFlags(cmd *cobra.Command) {
	if cmd == nil {
		return
	}

	cmd.PersistentFlags().BoolP("verbose", "v", false, "Enable debug logging")
	cmd.PersistentFlags().BoolP("quiet", "q", false, "Suppress all output except errors")
	cmd.PersistentFlags().Bool("json", false, "Output in JSON format only")
	cmd.PersistentFlags().String("proxy", "", "Comma separated HTTP/SOCKS5 proxies, rotated per collection")
	cmd.PersistentFlags().String("timeout", "", "Hard timeout for a page fetch (default 30s)")
	cmd.PersistentFlags().String("user-agent", "", "Custom user agent string")
	cmd.PersistentFlags().String("config", "", "Path to a YAML configuration file (optional)")
}
