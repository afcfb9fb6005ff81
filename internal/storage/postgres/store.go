package postgres

import (
	"context"
	"errors"
	"fmt"
	"math/big"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"pairpulse/internal/model"
)

// Store provides Postgres persistence for pair statistics and indexer state.
type Store struct {
	pool *pgxpool.Pool
}

func NewStore(ctx context.Context, dsn string) (*Store, error) {
	if dsn == "" {
		return nil, fmt.Errorf("pg dsn is required")
	}
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, err
	}
	return &Store{pool: pool}, nil
}

func (s *Store) Close() {
	if s.pool != nil {
		s.pool.Close()
	}
}

// GetPairStats loads a pair record by id. Counters are stored as numeric
// strings to keep full precision above 2^63.
func (s *Store) GetPairStats(ctx context.Context, pairID string) (model.PairStats, bool, error) {
	if pairID == "" {
		return model.PairStats{}, false, fmt.Errorf("pair id required")
	}

	var (
		fee     uint32
		added   string
		removed string
		swapped string
	)
	row := s.pool.QueryRow(ctx, `
		SELECT fee, total_liquidity_added::text, total_liquidity_removed::text, total_swapped_quote::text
		FROM pair_stats WHERE pair_id=$1
	`, pairID)
	if err := row.Scan(&fee, &added, &removed, &swapped); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return model.PairStats{}, false, nil
		}
		return model.PairStats{}, false, err
	}

	stats := model.PairStats{PairID: pairID, Fee: fee}
	var err error
	if stats.TotalLiquidityAdded, err = parseCounter(added); err != nil {
		return model.PairStats{}, false, fmt.Errorf("total_liquidity_added: %w", err)
	}
	if stats.TotalLiquidityRemoved, err = parseCounter(removed); err != nil {
		return model.PairStats{}, false, fmt.Errorf("total_liquidity_removed: %w", err)
	}
	if stats.TotalSwappedQuote, err = parseCounter(swapped); err != nil {
		return model.PairStats{}, false, fmt.Errorf("total_swapped_quote: %w", err)
	}
	return stats, true, nil
}

// PutPairStats inserts or updates a pair record. The fee of an existing row
// is left untouched.
func (s *Store) PutPairStats(ctx context.Context, stats model.PairStats) error {
	if stats.PairID == "" {
		return fmt.Errorf("pair id required")
	}
	_, err := s.pool.Exec(ctx, `
		INSERT INTO pair_stats (
			pair_id, fee, total_liquidity_added, total_liquidity_removed, total_swapped_quote, created_at, updated_at
		) VALUES ($1, $2, $3::numeric, $4::numeric, $5::numeric, now(), now())
		ON CONFLICT (pair_id)
		DO UPDATE SET
			total_liquidity_added = EXCLUDED.total_liquidity_added,
			total_liquidity_removed = EXCLUDED.total_liquidity_removed,
			total_swapped_quote = EXCLUDED.total_swapped_quote,
			updated_at = now()
	`,
		stats.PairID,
		stats.Fee,
		counterText(stats.TotalLiquidityAdded),
		counterText(stats.TotalLiquidityRemoved),
		counterText(stats.TotalSwappedQuote),
	)
	return err
}

// LoadState returns last_processed_block for a name.
func (s *Store) LoadState(ctx context.Context, name string) (uint64, bool, error) {
	if name == "" {
		return 0, false, fmt.Errorf("state name required")
	}
	var block uint64
	row := s.pool.QueryRow(ctx, `SELECT last_processed_block FROM indexer_state WHERE name=$1`, name)
	if err := row.Scan(&block); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, false, nil
		}
		return 0, false, err
	}
	return block, true, nil
}

// SaveState upserts last_processed_block for a name.
func (s *Store) SaveState(ctx context.Context, name string, block uint64) error {
	if name == "" {
		return fmt.Errorf("state name required")
	}
	_, err := s.pool.Exec(ctx, `
		INSERT INTO indexer_state (name, last_processed_block, updated_at)
		VALUES ($1, $2, now())
		ON CONFLICT (name) DO UPDATE
		SET last_processed_block = EXCLUDED.last_processed_block, updated_at = now()
	`, name, block)
	return err
}

func counterText(value *big.Int) string {
	if value == nil {
		return "0"
	}
	return value.String()
}

func parseCounter(value string) (*big.Int, error) {
	if value == "" {
		return big.NewInt(0), nil
	}
	parsed, ok := new(big.Int).SetString(value, 10)
	if !ok {
		return nil, fmt.Errorf("invalid numeric: %s", value)
	}
	return parsed, nil
}
