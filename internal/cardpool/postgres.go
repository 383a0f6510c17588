package cardpool

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"github.com/technobros/cardgame-go/internal/game"
	"github.com/technobros/cardgame-go/internal/game/effects"
)

const importBatchSize = 500

// PostgresSource reads card templates from a table. Effects are stored
// as a JSONB array of descriptors.
type PostgresSource struct {
	pool   *pgxpool.Pool
	table  string
	logger *zap.Logger
}

// NewPostgresSource connects to the database and verifies the connection.
func NewPostgresSource(ctx context.Context, url, table string, maxConns int32, logger *zap.Logger) (*PostgresSource, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	poolCfg, err := pgxpool.ParseConfig(url)
	if err != nil {
		return nil, fmt.Errorf("failed to parse database url: %w", err)
	}
	if maxConns > 0 {
		poolCfg.MaxConns = maxConns
	}
	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create connection pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}
	logger.Info("card pool database connected",
		zap.String("table", table),
		zap.Int32("max_conns", poolCfg.MaxConns),
	)
	return &PostgresSource{pool: pool, table: table, logger: logger}, nil
}

func (s *PostgresSource) ident() string {
	return pgx.Identifier{s.table}.Sanitize()
}

// EnsureSchema creates the card table if it does not exist.
func (s *PostgresSource) EnsureSchema(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, `
		CREATE TABLE IF NOT EXISTS `+s.ident()+` (
			id          SERIAL PRIMARY KEY,
			name        TEXT    NOT NULL,
			card_type   TEXT    NOT NULL,
			cost        INTEGER NOT NULL DEFAULT 0,
			attack      INTEGER NOT NULL DEFAULT 0,
			defense     INTEGER NOT NULL DEFAULT 0,
			description TEXT    NOT NULL DEFAULT '',
			flavor_text TEXT    NOT NULL DEFAULT '',
			effects     JSONB   NOT NULL DEFAULT '[]'::jsonb
		)`)
	if err != nil {
		return fmt.Errorf("failed to create card table: %w", err)
	}
	return nil
}

// Load reads every row in insertion order.
func (s *PostgresSource) Load(ctx context.Context) ([]game.Template, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT name, card_type, cost, attack, defense, description, flavor_text, effects
		FROM `+s.ident()+`
		ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("failed to query cards: %w", err)
	}
	defer rows.Close()

	var templates []game.Template
	for rows.Next() {
		var t game.Template
		var cardType string
		var raw []byte
		if err := rows.Scan(&t.Name, &cardType, &t.Cost, &t.Attack, &t.Defense, &t.Description, &t.FlavorText, &raw); err != nil {
			return nil, fmt.Errorf("failed to scan card: %w", err)
		}
		t.Type = game.CardType(cardType)
		if len(raw) > 0 {
			if err := json.Unmarshal(raw, &t.Effects); err != nil {
				s.logger.Warn("card has unreadable effects", zap.String("card", t.Name), zap.Error(err))
				t.Effects = nil
			}
		}
		templates = append(templates, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read cards: %w", err)
	}
	return sanitize("postgres:"+s.table, templates, s.logger)
}

// Count returns the number of rows in the card table.
func (s *PostgresSource) Count(ctx context.Context) (int64, error) {
	var n int64
	if err := s.pool.QueryRow(ctx, "SELECT COUNT(*) FROM "+s.ident()).Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count cards: %w", err)
	}
	return n, nil
}

// Truncate removes every card.
func (s *PostgresSource) Truncate(ctx context.Context) error {
	if _, err := s.pool.Exec(ctx, "TRUNCATE "+s.ident()+" RESTART IDENTITY"); err != nil {
		return fmt.Errorf("failed to clear cards: %w", err)
	}
	return nil
}

// Import inserts templates in batched transactions and returns how many
// rows were written. Invalid templates are skipped.
func (s *PostgresSource) Import(ctx context.Context, templates []game.Template) (int, error) {
	imported := 0
	for start := 0; start < len(templates); start += importBatchSize {
		end := min(start+importBatchSize, len(templates))

		tx, err := s.pool.Begin(ctx)
		if err != nil {
			return imported, fmt.Errorf("failed to begin transaction: %w", err)
		}
		batch := &pgx.Batch{}
		for _, t := range templates[start:end] {
			if err := t.Validate(); err != nil {
				s.logger.Warn("skipping invalid card template", zap.Error(err))
				continue
			}
			effs := t.Effects
			if effs == nil {
				effs = []effects.Descriptor{}
			}
			raw, err := json.Marshal(effs)
			if err != nil {
				_ = tx.Rollback(ctx)
				return imported, fmt.Errorf("failed to encode effects for %s: %w", t.Name, err)
			}
			batch.Queue(`
				INSERT INTO `+s.ident()+` (name, card_type, cost, attack, defense, description, flavor_text, effects)
				VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
				t.Name, string(t.Type), t.Cost, t.Attack, t.Defense, t.Description, t.FlavorText, raw,
			)
		}
		queued := batch.Len()
		if err := tx.SendBatch(ctx, batch).Close(); err != nil {
			_ = tx.Rollback(ctx)
			return imported, fmt.Errorf("failed to insert cards: %w", err)
		}
		if err := tx.Commit(ctx); err != nil {
			return imported, fmt.Errorf("failed to commit batch: %w", err)
		}
		imported += queued
		s.logger.Debug("card batch imported", zap.Int("rows", queued), zap.Int("total", imported))
	}
	return imported, nil
}

// Close releases the connection pool.
func (s *PostgresSource) Close() error {
	s.pool.Close()
	return nil
}
