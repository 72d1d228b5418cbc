package store

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"speedrun-browser/internal/domain"

	"github.com/rs/zerolog"
)

// Store is the local cache: the games table plus the settings and
// selection rows, with subscribable reads. It is the only shared mutable
// state in the system; every multi-row mutation runs in one transaction and
// committed mutations notify active watchers.
type Store struct {
	db     *sql.DB
	logger zerolog.Logger
	hub    *hub
}

func New(db *sql.DB, logger zerolog.Logger) *Store {
	return &Store{
		db:     db,
		logger: logger,
		hub:    newHub(logger),
	}
}

func (s *Store) withTx(ctx context.Context, fn func(tx *sql.Tx) error) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if err := fn(tx); err != nil {
		return err
	}
	return tx.Commit()
}

// UpsertGames writes a batch of games in one transaction. Re-inserting an
// existing id overwrites the row in place.
func (s *Store) UpsertGames(ctx context.Context, games []domain.Game) error {
	if len(games) == 0 {
		return nil
	}

	now := time.Now().UTC()
	err := s.withTx(ctx, func(tx *sql.Tx) error {
		stmt, err := tx.PrepareContext(ctx, `INSERT INTO games (id, abbreviation, name, created_at, updated_at)
			VALUES (?, ?, ?, ?, ?)
			ON CONFLICT(id) DO UPDATE SET
				abbreviation = excluded.abbreviation,
				name = excluded.name,
				updated_at = excluded.updated_at`)
		if err != nil {
			return fmt.Errorf("failed to prepare game upsert: %w", err)
		}
		defer stmt.Close()

		for _, g := range games {
			if _, err := stmt.ExecContext(ctx, g.ID, g.Abbreviation, g.Name, now, now); err != nil {
				return fmt.Errorf("failed to upsert game %s: %w", g.ID, err)
			}
		}
		return nil
	})
	if err != nil {
		return err
	}

	s.logger.Debug().Int("count", len(games)).Msg("games upserted")
	s.hub.notify(topicGames)
	return nil
}

// CountGames reports the cached game count; zero means the bulk cache has
// never been populated.
func (s *Store) CountGames(ctx context.Context) (int, error) {
	var count int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM games`).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count games: %w", err)
	}
	return count, nil
}

func (s *Store) GetGame(ctx context.Context, id string) (*domain.Game, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, abbreviation, name, created_at, updated_at FROM games WHERE id = ?`, id)

	var g domain.Game
	if err := row.Scan(&g.ID, &g.Abbreviation, &g.Name, &g.CreatedAt, &g.UpdatedAt); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("failed to get game %s: %w", id, err)
	}
	return &g, nil
}

// SearchGames matches cached games by name, case-insensitively. Each run of
// spaces in the query acts as a multi-character wildcard, so "super mario"
// matches "Super Something Mario Bros".
func (s *Store) SearchGames(ctx context.Context, query string, limit int) ([]domain.Game, error) {
	pattern := searchPattern(query)

	rows, err := s.db.QueryContext(ctx,
		`SELECT id, abbreviation, name, created_at, updated_at
		 FROM games
		 WHERE name LIKE ? ESCAPE '\'
		 ORDER BY name COLLATE NOCASE
		 LIMIT ?`, pattern, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to search games: %w", err)
	}
	defer rows.Close()

	var games []domain.Game
	for rows.Next() {
		var g domain.Game
		if err := rows.Scan(&g.ID, &g.Abbreviation, &g.Name, &g.CreatedAt, &g.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan game row: %w", err)
		}
		games = append(games, g)
	}
	return games, rows.Err()
}

func searchPattern(query string) string {
	escaped := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(query)
	fields := strings.Fields(escaped)
	if len(fields) == 0 {
		return "%"
	}
	return "%" + strings.Join(fields, "%") + "%"
}
