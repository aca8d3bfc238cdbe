package fs

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	logging "memescout/internal/infra/log"

	"go.uber.org/zap"
)

const (
	KnownTokensFile = "data_out/known_tokens.json"
)

// DefaultKnownTokens are established symbols that discovery always skips.
// The JSON file only holds user additions on top of these.
var DefaultKnownTokens = []string{"sol", "usdc", "usdt", "btc", "eth", "ray", "orca", "serum", "wsol"}

type KnownTokensData struct {
	Symbols []string `json:"symbols"`
}

// LoadKnownTokens returns the built-in symbols merged with any extras from
// the known tokens file. Symbols are lowercased and deduplicated.
func LoadKnownTokens() ([]string, error) {
	extras, err := loadExtraTokens()
	if err != nil {
		return nil, err
	}

	seen := make(map[string]bool, len(DefaultKnownTokens)+len(extras))
	merged := make([]string, 0, len(DefaultKnownTokens)+len(extras))
	for _, symbol := range DefaultKnownTokens {
		symbol = strings.ToLower(strings.TrimSpace(symbol))
		if symbol == "" || seen[symbol] {
			continue
		}
		seen[symbol] = true
		merged = append(merged, symbol)
	}
	for _, symbol := range extras {
		symbol = strings.ToLower(strings.TrimSpace(symbol))
		if symbol == "" || seen[symbol] {
			continue
		}
		seen[symbol] = true
		merged = append(merged, symbol)
	}

	return merged, nil
}

func loadExtraTokens() ([]string, error) {
	filePath := KnownTokensFile

	if _, err := os.Stat(filePath); os.IsNotExist(err) {
		logging.LogDebug("Known tokens file does not exist, using built-ins only", zap.String("file", filePath))
		return []string{}, nil
	}

	data, err := os.ReadFile(filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to read known tokens file: %w", err)
	}

	if len(data) == 0 || strings.TrimSpace(string(data)) == "" || strings.TrimSpace(string(data)) == "{}" {
		logging.LogDebug("Known tokens file is empty, using built-ins only", zap.String("file", filePath))
		return []string{}, nil
	}

	var tokensData KnownTokensData
	if err := json.Unmarshal(data, &tokensData); err != nil {
		return nil, fmt.Errorf("failed to parse known tokens JSON: %w", err)
	}

	logging.LogDebug("Loaded extra known tokens from file",
		zap.String("file", filePath),
		zap.Int("count", len(tokensData.Symbols)))

	return tokensData.Symbols, nil
}

// SaveKnownTokens writes the extra symbols atomically (tmp file + rename).
func SaveKnownTokens(symbols []string) error {
	filePath := KnownTokensFile

	dir := filepath.Dir(filePath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}

	tokensData := KnownTokensData{
		Symbols: symbols,
	}

	data, err := json.MarshalIndent(tokensData, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal known tokens JSON: %w", err)
	}

	tempFilePath := filePath + ".tmp"
	if err := os.WriteFile(tempFilePath, data, 0644); err != nil {
		return fmt.Errorf("failed to write temporary known tokens file: %w", err)
	}

	if err := os.Rename(tempFilePath, filePath); err != nil {
		os.Remove(tempFilePath)
		return fmt.Errorf("failed to rename temporary file to known tokens file: %w", err)
	}

	logging.LogInfo("Saved known tokens to file",
		zap.String("file", filePath),
		zap.Int("count", len(symbols)))

	return nil
}

// AddKnownToken appends a symbol to the extras file so discovery starts
// skipping it. Re-reads the file afterwards to confirm the write landed.
func AddKnownToken(symbol string) error {
	symbol = strings.ToLower(strings.TrimSpace(symbol))
	if symbol == "" {
		return fmt.Errorf("symbol cannot be empty")
	}

	current, err := LoadKnownTokens()
	if err != nil {
		return fmt.Errorf("failed to load known tokens: %w", err)
	}
	if IsKnownToken(symbol, current) {
		logging.LogDebug("Symbol already in known tokens list", zap.String("symbol", symbol))
		return nil
	}

	extras, err := loadExtraTokens()
	if err != nil {
		return fmt.Errorf("failed to load known tokens: %w", err)
	}
	extras = append(extras, symbol)

	if err := SaveKnownTokens(extras); err != nil {
		return fmt.Errorf("failed to save known tokens: %w", err)
	}

	verifySymbols, err := loadExtraTokens()
	if err != nil {
		logging.LogWarn("Failed to verify saved known tokens", zap.Error(err))
	} else if !IsKnownToken(symbol, verifySymbols) {
		return fmt.Errorf("symbol was not found in file after save")
	}

	logging.LogInfo("Added symbol to known tokens list",
		zap.String("symbol", symbol),
		zap.Int("extraCount", len(extras)))

	return nil
}

// RemoveKnownToken drops a symbol from the extras file. Built-in symbols
// cannot be removed.
func RemoveKnownToken(symbol string) error {
	symbol = strings.ToLower(strings.TrimSpace(symbol))
	if symbol == "" {
		return fmt.Errorf("symbol cannot be empty")
	}

	extras, err := loadExtraTokens()
	if err != nil {
		return fmt.Errorf("failed to load known tokens: %w", err)
	}

	found := false
	var updatedSymbols []string
	for _, s := range extras {
		if strings.ToLower(strings.TrimSpace(s)) != symbol {
			updatedSymbols = append(updatedSymbols, s)
		} else {
			found = true
		}
	}

	if !found {
		return fmt.Errorf("symbol not found in list")
	}

	if err := SaveKnownTokens(updatedSymbols); err != nil {
		return fmt.Errorf("failed to save known tokens: %w", err)
	}

	logging.LogInfo("Removed symbol from known tokens list",
		zap.String("symbol", symbol),
		zap.Int("extraCount", len(updatedSymbols)))

	return nil
}

// IsKnownToken reports whether symbol appears in the list, ignoring case.
func IsKnownToken(symbol string, knownTokens []string) bool {
	if symbol == "" || len(knownTokens) == 0 {
		return false
	}
	symbol = strings.ToLower(strings.TrimSpace(symbol))
	for _, known := range knownTokens {
		if strings.ToLower(strings.TrimSpace(known)) == symbol {
			return true
		}
	}
	return false
}
