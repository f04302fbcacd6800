package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"
)

var (
	rootCmd = &cobra.Command{
		Use:          "ads-manager",
		Short:        "Ads performance console for a Meta ad account",
		RunE:         serve,
		SilenceUsage: true,
	}

	serveCmd = &cobra.Command{
		Use:   "serve",
		Short: "Serve the dashboard and JSON API",
		RunE:  serve,
	}

	reportCmd = &cobra.Command{
		Use:   "report",
		Short: "Load the account once and print the overview",
		RunE:  report,
	}

	versionCmd = &cobra.Command{
		Use:   "version",
		Short: "Print the ads-manager version",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Println(version)
		},
	}

	cfgFile string
	version = "dev"

	reportQuery     string
	reportBreakEven string
	reportStatus    string
	reportFormat    string
)

func main() {
	slog.SetDefault(slog.New(slog.NewJSONHandler(os.Stderr, nil)))
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "", "path to a YAML configuration file (optional)")

	reportCmd.Flags().StringVarP(&reportQuery, "query", "q", "", "search text applied to campaigns and ad sets")
	reportCmd.Flags().StringVar(&reportBreakEven, "break-even", "", "break-even ROAS (defaults to config)")
	reportCmd.Flags().StringVar(&reportStatus, "status", "all", "status filter: all, active or paused")
	reportCmd.Flags().StringVarP(&reportFormat, "format", "f", "table", "output format: table or json")

	rootCmd.AddCommand(serveCmd, reportCmd, versionCmd)
	if err := rootCmd.Execute(); err != nil {
		slog.Error("ads-manager failed", slog.String("err", err.Error()))
		os.Exit(1)
	}
}
