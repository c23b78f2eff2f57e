package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var (
	cfgFile string
	debug   bool
)

func main() {
	if err := rootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func rootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "suggestbox",
		Short: "Personalized shortcut cache for search suggestions",
	}

	root.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: ./config.yaml)")
	root.PersistentFlags().BoolVar(&debug, "debug", false, "verbose logging")

	root.AddCommand(reportCmd())
	root.AddCommand(shortcutsCmd())
	root.AddCommand(suggestCmd())
	root.AddCommand(rankingCmd())
	root.AddCommand(clearCmd())
	root.AddCommand(serveCmd())
	root.AddCommand(runCmd())

	return root
}

func reportCmd() *cobra.Command {
	var opts reportOpts

	cmd := &cobra.Command{
		Use:   "report",
		Short: "Record a click on a suggestion",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runReport(opts)
		},
	}

	cmd.Flags().StringVar(&opts.query, "query", "", "query the user had typed")
	cmd.Flags().StringVar(&opts.source, "source", "", "suggestion source identity")
	cmd.Flags().StringVar(&opts.shortcutID, "id", "", "shortcut id within the source")
	cmd.Flags().StringVar(&opts.text1, "text1", "", "display text")
	cmd.Flags().StringVar(&opts.text2, "text2", "", "secondary text")
	cmd.Flags().StringVar(&opts.action, "action", "open", "intent action")
	cmd.Flags().StringVar(&opts.data, "data", "", "intent data (e.g. a URL)")
	cmd.MarkFlagRequired("source")
	return cmd
}

func shortcutsCmd() *cobra.Command {
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "shortcuts [query]",
		Short: "Show ranked shortcuts for a typed query",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			query := ""
			if len(args) > 0 {
				query = args[0]
			}
			return runShortcuts(query, jsonOutput)
		},
	}

	cmd.Flags().BoolVar(&jsonOutput, "json", false, "output as JSON")
	return cmd
}

func suggestCmd() *cobra.Command {
	var (
		limit int
		click int
	)

	cmd := &cobra.Command{
		Use:   "suggest <query>",
		Short: "Query live suggestion sources, shortcuts first",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSuggest(args[0], limit, click)
		},
	}

	cmd.Flags().IntVar(&limit, "limit", 10, "max live suggestions per source")
	cmd.Flags().IntVar(&click, "click", 0, "record a click on result N (1-based)")
	return cmd
}

func rankingCmd() *cobra.Command {
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "ranking",
		Short: "Show suggestion sources ranked by click history",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRanking(jsonOutput)
		},
	}

	cmd.Flags().BoolVar(&jsonOutput, "json", false, "output as JSON")
	return cmd
}

func clearCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "clear",
		Short: "Delete all click history",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runClear()
		},
	}
}

func serveCmd() *cobra.Command {
	var port int

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start HTTP API server",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(port)
		},
	}

	cmd.Flags().IntVar(&port, "port", 0, "server port (default: from config)")
	return cmd
}

func runCmd() *cobra.Command {
	var port int

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Start server with background maintenance",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDaemon(port)
		},
	}

	cmd.Flags().IntVar(&port, "port", 0, "server port (default: from config)")
	return cmd
}
