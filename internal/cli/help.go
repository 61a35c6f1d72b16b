// internal/cli/help.go
package cli

import (
	"fmt"
	"io"
	"strings"

	"github.com/law-makers/shelf/internal/ui"
	"github.com/spf13/cobra"
)

const (
	helpWidth    = 80
	minFlagWidth = 28
)

func init() {
	// Disable the default completion command
	rootCmd.CompletionOptions.DisableDefaultCmd = true

	rootCmd.SetHelpFunc(func(cmd *cobra.Command, args []string) {
		writeHelp(cmd.OutOrStdout(), cmd)
	})
	rootCmd.SetUsageFunc(func(cmd *cobra.Command) error {
		writeUsage(cmd.ErrOrStderr(), cmd)
		return nil
	})
}

// writeHelp prints the full colorized help for cmd
func writeHelp(w io.Writer, cmd *cobra.Command) {
	fmt.Fprintf(w, "\n%s\n", ui.Style(strings.ToUpper(cmd.Name()), ui.ColorBold, ui.ColorCyan))
	if cmd.Short != "" {
		fmt.Fprintln(w, cmd.Short)
	}
	if cmd.Long != "" && cmd.Long != cmd.Short {
		fmt.Fprintf(w, "\n%s\n", wrapText(cmd.Long, helpWidth))
	}

	writeUsageLines(w, cmd)

	if cmd.HasExample() {
		fmt.Fprintf(w, "\n%s\n", ui.Heading("Examples"))
		writeExamples(w, cmd.Example)
	}

	writeCommands(w, cmd)

	if cmd.HasAvailableLocalFlags() {
		fmt.Fprintf(w, "\n%s\n", ui.Heading("Flags"))
		writeFlags(w, cmd.LocalFlags().FlagUsages())
	}
	if cmd.HasAvailableInheritedFlags() {
		fmt.Fprintf(w, "\n%s\n", ui.Heading("Global Flags"))
		writeFlags(w, cmd.InheritedFlags().FlagUsages())
	}

	if cmd.HasAvailableSubCommands() {
		fmt.Fprintf(w, "\n%s\n", ui.Style(fmt.Sprintf("Use \"%s <command> --help\" for more information about a command.", cmd.CommandPath()), ui.ColorDim))
	}
	fmt.Fprintln(w)
}

// writeUsage prints the short usage shown after a command line error
func writeUsage(w io.Writer, cmd *cobra.Command) {
	writeUsageLines(w, cmd)
	writeCommands(w, cmd)
	if cmd.HasAvailableLocalFlags() {
		fmt.Fprintf(w, "\n%s\n", ui.Heading("Flags"))
		writeFlags(w, cmd.LocalFlags().FlagUsages())
	}
	fmt.Fprintf(w, "\n%s\n", ui.Style(fmt.Sprintf("Use \"%s --help\" for more information.", cmd.CommandPath()), ui.ColorDim))
}

func writeUsageLines(w io.Writer, cmd *cobra.Command) {
	fmt.Fprintf(w, "\n%s\n", ui.Heading("Usage"))
	if cmd.Runnable() {
		fmt.Fprintf(w, "  %s\n", ui.Style(cmd.UseLine(), ui.ColorCyan))
	}
	if cmd.HasAvailableSubCommands() {
		fmt.Fprintf(w, "  %s %s %s\n",
			ui.Style(cmd.CommandPath(), ui.ColorCyan),
			ui.Style("<command>", ui.ColorYellow),
			ui.Style("[flags]", ui.ColorDim))
	}
}

// writeExamples prints "# comment" lines dimmed and commands with a prompt
func writeExamples(w io.Writer, example string) {
	lastWasCommand := false
	for _, line := range strings.Split(example, "\n") {
		line = strings.TrimSpace(line)
		switch {
		case line == "":
		case strings.HasPrefix(line, "#"):
			if lastWasCommand {
				fmt.Fprintln(w)
			}
			fmt.Fprintf(w, "  %s\n", ui.Style(line, ui.ColorDim))
			lastWasCommand = false
		default:
			fmt.Fprintf(w, "  %s\n", ui.Style("$ "+line, ui.ColorGreen))
			lastWasCommand = true
		}
	}
}

func writeCommands(w io.Writer, cmd *cobra.Command) {
	if !cmd.HasAvailableSubCommands() {
		return
	}

	var available []*cobra.Command
	width := 0
	for _, c := range cmd.Commands() {
		if c.IsAvailableCommand() && c.Name() != "help" {
			available = append(available, c)
			width = max(width, len(c.Name()))
		}
	}

	fmt.Fprintf(w, "\n%s\n", ui.Heading("Commands"))
	for _, c := range available {
		fmt.Fprintf(w, "  %s%s%s\n",
			ui.Style(c.Name(), ui.ColorCyan),
			strings.Repeat(" ", width-len(c.Name())+2),
			ui.Style(c.Short, ui.ColorDim))
	}
}

// writeFlags re-aligns pflag's usage block and colors flag names
func writeFlags(w io.Writer, usages string) {
	lines := strings.Split(usages, "\n")

	width := minFlagWidth
	for _, line := range lines {
		if name, _, ok := splitFlagLine(line); ok {
			width = max(width, len(name))
		}
	}

	for _, line := range lines {
		if strings.TrimSpace(line) == "" {
			continue
		}
		name, desc, ok := splitFlagLine(line)
		switch {
		case ok && desc != "":
			fmt.Fprintf(w, "  %s%s%s\n",
				ui.Style(name, ui.ColorGreen),
				strings.Repeat(" ", width-len(name)+2),
				ui.Style(desc, ui.ColorDim))
		case ok:
			fmt.Fprintf(w, "  %s\n", ui.Style(name, ui.ColorGreen))
		default:
			// continuation of the previous description
			fmt.Fprintf(w, "%s%s\n", strings.Repeat(" ", width+4), ui.Style(strings.TrimSpace(line), ui.ColorDim))
		}
	}
}

// splitFlagLine splits "  -l, --limit int   Maximum ..." into name and description
func splitFlagLine(line string) (name, desc string, ok bool) {
	trimmed := strings.TrimLeft(line, " ")
	if !strings.HasPrefix(trimmed, "-") {
		return "", "", false
	}
	name, desc, _ = strings.Cut(trimmed, "  ")
	return strings.TrimSpace(name), strings.TrimSpace(desc), true
}

// wrapText wraps text at width, keeping paragraphs and list items on their own lines
func wrapText(text string, width int) string {
	var paragraphs []string
	for _, para := range strings.Split(text, "\n\n") {
		var lines []string
		var current strings.Builder

		flush := func() {
			if current.Len() > 0 {
				lines = append(lines, current.String())
				current.Reset()
			}
		}

		for _, line := range strings.Split(para, "\n") {
			line = strings.TrimSpace(line)
			if line == "" {
				continue
			}
			if strings.HasPrefix(line, "-") || strings.HasPrefix(line, "•") || strings.HasPrefix(line, "*") {
				flush()
				lines = append(lines, line)
				continue
			}
			for _, word := range strings.Fields(line) {
				switch {
				case current.Len() == 0:
				case current.Len()+1+len(word) <= width:
					current.WriteByte(' ')
				default:
					flush()
				}
				current.WriteString(word)
			}
		}
		flush()

		if len(lines) > 0 {
			paragraphs = append(paragraphs, strings.Join(lines, "\n"))
		}
	}
	return strings.Join(paragraphs, "\n\n")
}
