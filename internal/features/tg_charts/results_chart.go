package tg_charts

import (
	"fmt"
	"image/color"
	"os"
	"path/filepath"
	"sort"

	"memescout/internal/filter"
	logging "memescout/internal/infra/log"
	"memescout/internal/token"

	"github.com/fogleman/gg"
	"go.uber.org/zap"
)

const (
	chartWidth  = 1600
	chartHeight = 900

	titleX    = 80.0
	titleY    = 90.0
	titleSize = 48.0

	totalVolumeX         = 950.0
	totalVolumeLabelY    = 70.0
	totalVolumeValueY    = 130.0
	totalVolumeLabelSize = 28.0
	totalVolumeValueSize = 56.0

	avgMCX         = 1280.0
	avgMCLabelY    = 70.0
	avgMCValueY    = 130.0
	avgMCLabelSize = 28.0
	avgMCValueSize = 56.0

	chartAreaLeft   = 100.0
	chartAreaRight  = 1500.0
	chartAreaTop    = 230.0
	chartAreaBottom = 760.0

	// Seven fixed bar slots, sparser result sets leave the right side empty.
	maxBars    = 7
	barWidth   = 140.0
	barSpacing = 60.0
	barAreaX   = 130.0

	gridLinesCount = 4

	mainFontSize     = 30.0
	barValueFontSize = 28.0
	symbolFontSize   = 26.0
	gridLabelSize    = 22.0

	barValueOffsetY = 16.0
	symbolOffsetY   = 42.0

	// DefaultChartsDir is where generated charts land unless overridden.
	DefaultChartsDir = "etc/charts"
	chartFileName    = "results_chart.png"
)

var (
	backgroundColor = color.RGBA{16, 18, 24, 255}
	gridColor       = color.RGBA{60, 64, 72, 255}
	textColor       = color.White
	bullColor       = color.RGBA{0, 200, 83, 255}
	bearColor       = color.RGBA{229, 57, 53, 255}
)

// fontPaths is tried in order, first loadable face wins. A repo-local font
// takes priority so deployments can ship their own.
var fontPaths = []string{
	"etc/fonts/InterVariable.ttf",
	"etc/fonts/Inter-Regular.ttf",
	"/usr/share/fonts/truetype/dejavu/DejaVuSans.ttf",
	"/usr/share/fonts/truetype/liberation/LiberationSans-Regular.ttf",
	"~/Library/Fonts/Inter-Regular.ttf",
	"/System/Library/Fonts/Supplemental/Arial.ttf",
	"/System/Library/Fonts/Helvetica.ttc",
}

// GenerateResultsChart renders a bar chart of the most active tokens in the
// result set (24h volume, bar color by price change sign) and returns the
// path of the saved PNG. Empty outputDir selects etc/charts.
func GenerateResultsChart(records []token.Record, outputDir string) (string, error) {
	if len(records) == 0 {
		return "", fmt.Errorf("no records to chart")
	}

	charted := make([]token.Record, len(records))
	copy(charted, records)
	sort.SliceStable(charted, func(i, j int) bool {
		return filter.ActivityScore(charted[i]) > filter.ActivityScore(charted[j])
	})
	if len(charted) > maxBars {
		charted = charted[:maxBars]
	}

	var totalVolume, totalMC float64
	maxVolume := 0.0
	for _, rec := range charted {
		totalVolume += rec.Volume24h
		totalMC += rec.MarketCap
		if rec.Volume24h > maxVolume {
			maxVolume = rec.Volume24h
		}
	}
	if maxVolume == 0 {
		maxVolume = 1.0
	}
	avgMC := totalMC / float64(len(charted))

	dc := gg.NewContext(chartWidth, chartHeight)
	dc.SetColor(backgroundColor)
	dc.Clear()

	fontPath, fontLoaded := loadChartFont(dc, mainFontSize)

	setFace := func(size float64) {
		if fontLoaded {
			dc.LoadFontFace(fontPath, size)
		}
	}

	// Header.
	dc.SetColor(textColor)
	setFace(titleSize)
	dc.DrawString("Top Solana Memecoins", titleX, titleY)

	setFace(totalVolumeLabelSize)
	dc.DrawString("Total 24h Volume", totalVolumeX, totalVolumeLabelY)
	setFace(totalVolumeValueSize)
	dc.SetColor(bullColor)
	dc.DrawString("$"+filter.FormatNumber(totalVolume), totalVolumeX, totalVolumeValueY)

	dc.SetColor(textColor)
	setFace(avgMCLabelSize)
	dc.DrawString("Avg Market Cap", avgMCX, avgMCLabelY)
	setFace(avgMCValueSize)
	dc.DrawString("$"+filter.FormatNumber(avgMC), avgMCX, avgMCValueY)

	// Grid with volume captions on the left.
	chartAreaHeight := chartAreaBottom - chartAreaTop
	dc.SetLineWidth(1)
	for i := 0; i <= gridLinesCount; i++ {
		value := maxVolume * float64(i) / float64(gridLinesCount)
		y := chartAreaBottom - (value/maxVolume)*chartAreaHeight

		dc.SetColor(gridColor)
		dc.DrawLine(chartAreaLeft, y, chartAreaRight, y)
		dc.Stroke()

		dc.SetColor(textColor)
		setFace(gridLabelSize)
		dc.DrawString(filter.FormatNumber(value), chartAreaLeft-80, y+8)
	}

	// Bars.
	for i, rec := range charted {
		barX := barAreaX + float64(i)*(barWidth+barSpacing)
		barHeight := (rec.Volume24h / maxVolume) * chartAreaHeight
		barY := chartAreaBottom - barHeight

		barColor := bullColor
		if rec.PriceChange24h < 0 {
			barColor = bearColor
		}
		dc.SetColor(barColor)
		dc.DrawRectangle(barX, barY, barWidth, barHeight)
		dc.Fill()

		if rec.Volume24h > 0 {
			dc.SetColor(textColor)
			setFace(barValueFontSize)
			caption := "$" + filter.FormatNumber(rec.Volume24h)
			captionWidth, _ := dc.MeasureString(caption)
			dc.DrawString(caption, barX+(barWidth-captionWidth)/2, barY-barValueOffsetY)
		}

		label := rec.Symbol
		if label == "" {
			label = token.ShortAddress(rec.Address)
		}
		dc.SetColor(textColor)
		setFace(symbolFontSize)
		labelWidth, _ := dc.MeasureString(label)
		dc.DrawString(label, barX+(barWidth-labelWidth)/2, chartAreaBottom+symbolOffsetY)
	}

	if outputDir == "" {
		outputDir = DefaultChartsDir
	}
	if err := os.MkdirAll(outputDir, 0755); err != nil {
		return "", fmt.Errorf("failed to create charts directory: %w", err)
	}

	filename := filepath.Join(outputDir, chartFileName)
	if err := dc.SavePNG(filename); err != nil {
		return "", fmt.Errorf("failed to save chart: %w", err)
	}

	fileInfo, err := os.Stat(filename)
	if err != nil {
		return "", fmt.Errorf("failed to stat chart file: %w", err)
	}
	if fileInfo.Size() == 0 {
		os.Remove(filename)
		logging.LogError("Chart file is empty after rendering", zap.String("filename", filename))
		return "", fmt.Errorf("chart file is empty after rendering")
	}

	logging.LogInfo("Results chart generated",
		zap.String("filename", filename),
		zap.Int64("fileSize", fileInfo.Size()),
		zap.Int("barsCount", len(charted)))

	return filename, nil
}

// loadChartFont tries the fallback list and leaves the context on the first
// face that loads. Rendering still works with gg's built-in font when none do.
func loadChartFont(dc *gg.Context, size float64) (string, bool) {
	for _, fontPath := range fontPaths {
		expanded := expandHome(fontPath)
		if _, err := os.Stat(expanded); err != nil {
			continue
		}
		if err := dc.LoadFontFace(expanded, size); err != nil {
			logging.LogWarn("Font file exists but failed to load", zap.String("path", expanded), zap.Error(err))
			continue
		}
		return expanded, true
	}

	logging.LogWarn("No chart font found, using default face", zap.Int("paths_checked", len(fontPaths)))
	return "", false
}

func expandHome(path string) string {
	if len(path) > 0 && path[0] == '~' {
		if homeDir, err := os.UserHomeDir(); err == nil {
			return filepath.Join(homeDir, path[1:])
		}
	}
	return path
}
