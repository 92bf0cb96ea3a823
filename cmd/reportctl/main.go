// Command reportctl renders reports from a local dataset file, runs the
// analysis on its own and checks rendered files for section order.
//
//	go run ./cmd/reportctl analyze --input data.csv --language fi --raw
//	go run ./cmd/reportctl render --input data.csv --title "Line 3" --format all --out ./out
//	go run ./cmd/reportctl verify --file ./out/Line_3_20240501_143005_0f8e2c1a.pdf
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "reportctl",
		Short:         "Render and verify ReportAI quality reports",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.AddCommand(newRenderCmd(), newAnalyzeCmd(), newVerifyCmd())
	return root
}
