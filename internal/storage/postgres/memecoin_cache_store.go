package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"memescout/internal/storage"
	"memescout/internal/token"
)

// MemecoinCacheStore implements storage.MemecoinCacheStore using PostgreSQL.
type MemecoinCacheStore struct {
	pool *Pool
}

// NewMemecoinCacheStore creates a new MemecoinCacheStore.
func NewMemecoinCacheStore(pool *Pool) *MemecoinCacheStore {
	return &MemecoinCacheStore{pool: pool}
}

// Compile-time interface check.
var _ storage.MemecoinCacheStore = (*MemecoinCacheStore)(nil)

const cachedTokenColumns = `
	ca, name, symbol, mc, volume_24h, liquidity, holders_estimate,
	price_usd, price_change_24h, dex_id, dex_url, pair_created_at
`

// Upsert replaces the cached row for each record's contract address.
// The batch runs in one transaction so a failed write leaves no half-replaced
// addresses behind.
func (s *MemecoinCacheStore) Upsert(ctx context.Context, records []token.Record, filterHash string) error {
	if len(records) == 0 {
		return nil
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin cache upsert: %w", err)
	}
	defer tx.Rollback(ctx)

	insert := `
		INSERT INTO memecoins_cache (` + cachedTokenColumns + `, filter_hash)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
	`

	for _, rec := range records {
		if rec.Address == "" {
			return storage.ErrInvalidInput
		}

		if _, err := tx.Exec(ctx, `DELETE FROM memecoins_cache WHERE ca = $1`, rec.Address); err != nil {
			return fmt.Errorf("evict cached token: %w", err)
		}

		_, err := tx.Exec(ctx, insert,
			rec.Address,
			rec.Name,
			rec.Symbol,
			rec.MarketCap,
			rec.Volume24h,
			rec.Liquidity,
			rec.HoldersEstimate,
			rec.PriceUSD,
			rec.PriceChange24h,
			rec.DexID,
			rec.DexURL,
			rec.PairCreatedAt,
			filterHash,
		)
		if err != nil {
			if isDuplicateKeyError(err) {
				return storage.ErrDuplicateKey
			}
			return fmt.Errorf("insert cached token: %w", err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit cache upsert: %w", err)
	}
	return nil
}

// GetByFilterHash retrieves fresh rows cached under the given filter key,
// market cap descending, at most storage.FilterResultLimit.
func (s *MemecoinCacheStore) GetByFilterHash(ctx context.Context, filterHash string, maxAge time.Duration) ([]token.Record, error) {
	query := `
		SELECT ` + cachedTokenColumns + `
		FROM memecoins_cache
		WHERE filter_hash = $1 AND cached_at > $2
		ORDER BY mc DESC
		LIMIT $3
	`

	rows, err := s.pool.Query(ctx, query, filterHash, time.Now().UTC().Add(-maxAge), storage.FilterResultLimit)
	if err != nil {
		return nil, fmt.Errorf("query cached tokens by filter: %w", err)
	}
	defer rows.Close()

	var records []token.Record
	for rows.Next() {
		rec, err := scanCachedToken(rows)
		if err != nil {
			return nil, fmt.Errorf("scan cached token: %w", err)
		}
		records = append(records, *rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate cached tokens: %w", err)
	}

	return records, nil
}

// GetByAddress retrieves the fresh cached row for one token.
// Returns ErrNotFound when missing or stale.
func (s *MemecoinCacheStore) GetByAddress(ctx context.Context, address string, maxAge time.Duration) (*token.Record, error) {
	query := `
		SELECT ` + cachedTokenColumns + `
		FROM memecoins_cache
		WHERE ca = $1 AND cached_at > $2
		ORDER BY cached_at DESC
		LIMIT 1
	`

	row := s.pool.QueryRow(ctx, query, address, time.Now().UTC().Add(-maxAge))
	rec, err := scanCachedToken(row)
	if err != nil {
		if isNotFoundError(err) {
			return nil, storage.ErrNotFound
		}
		return nil, fmt.Errorf("get cached token by address: %w", err)
	}
	return rec, nil
}

// DeleteOlderThan evicts rows cached before the cutoff.
func (s *MemecoinCacheStore) DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	tag, err := s.pool.Exec(ctx, `DELETE FROM memecoins_cache WHERE cached_at < $1`, cutoff.UTC())
	if err != nil {
		return 0, fmt.Errorf("delete old cached tokens: %w", err)
	}
	return tag.RowsAffected(), nil
}

// scanCachedToken scans a single row into a token.Record.
func scanCachedToken(row pgx.Row) (*token.Record, error) {
	var rec token.Record

	err := row.Scan(
		&rec.Address,
		&rec.Name,
		&rec.Symbol,
		&rec.MarketCap,
		&rec.Volume24h,
		&rec.Liquidity,
		&rec.HoldersEstimate,
		&rec.PriceUSD,
		&rec.PriceChange24h,
		&rec.DexID,
		&rec.DexURL,
		&rec.PairCreatedAt,
	)
	if err != nil {
		return nil, err
	}

	return &rec, nil
}
