package main

import (
	"fmt"
	"os"

	"memescout/internal/features/tg_charts"
	"memescout/internal/infra/fs"
)

// go run etc/tools/render_chart.go
// renders data_out/last_search.json into etc/charts
func main() {
	fmt.Println("Rendering chart from the last search...")

	snapshot, err := fs.LoadSearchSnapshot(fs.LastSearchFile)
	if err != nil {
		fmt.Printf("Error loading last search: %v\n", err)
		fmt.Println("Run a search first (bot /search or `memescout search`).")
		os.Exit(1)
	}

	chartPath, err := tg_charts.GenerateResultsChart(snapshot.Records, tg_charts.DefaultChartsDir)
	if err != nil {
		fmt.Printf("Error generating chart: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("Chart generated successfully: %s\n", chartPath)
	fmt.Printf("Filters: %s, tokens: %d\n", snapshot.Filter, len(snapshot.Records))
}
