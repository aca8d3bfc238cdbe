//go:build integration

package tests

import (
	"context"
	"os"
	"testing"
	"time"

	solanatracker "memescout/internal/clients_api/solanatracker"
	"memescout/internal/filter"
)

func TestIntegration_SolanaTracker_SearchByPredicate(t *testing.T) {
	apiKey := os.Getenv("SOLANATRACKER_API_KEY")
	if apiKey == "" {
		t.Skip("SOLANATRACKER_API_KEY not set")
	}

	client := solanatracker.NewClient("https://data.solanatracker.io", apiKey, 15*time.Second, 2)

	p := filter.Parse("mc > 100K, volume > 10K")
	records, err := client.SearchByPredicate(context.Background(), p, 10080, 20)
	if err != nil {
		t.Fatalf("SearchByPredicate failed: %v", err)
	}
	if len(records) == 0 {
		t.Fatalf("expected records for a broad filter, got none")
	}
	for _, rec := range records {
		if rec.MarketCap < 100_000 {
			t.Fatalf("expected market cap >= 100K, got %f for %s", rec.MarketCap, rec.Address)
		}
	}
}
