package main

import (
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "cropledger",
	Short: "Offline production and cost analytics over spreadsheet exports",
	Long: `cropledger reads harvest and input-cost workbooks, then reports
KPIs, the financial balance, climate correlations and a production
forecast without any running services.`,
	SilenceUsage: true,
}

func main() {
	rootCmd.AddCommand(newAnalyzeCmd())
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
