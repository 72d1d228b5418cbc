package store

import (
	"context"
	"database/sql"
	"fmt"

	"speedrun-browser/internal/domain"
)

// The settings and selection tables each hold exactly one logical row,
// seeded by the first migration, so reads never miss.
const (
	settingsRowID  = 1
	selectionRowID = 1
)

func (s *Store) GetSettings(ctx context.Context) (domain.Settings, error) {
	var settings domain.Settings
	err := s.withTx(ctx, func(tx *sql.Tx) error {
		var err error
		settings, err = readSettings(ctx, tx)
		return err
	})
	return settings, err
}

func readSettings(ctx context.Context, tx *sql.Tx) (domain.Settings, error) {
	var settings domain.Settings
	var status, orderBy, direction string

	row := tx.QueryRowContext(ctx,
		`SELECT game_id, category_id, run_status, one_run_per_player, order_by, direction
		 FROM settings WHERE id = ?`, settingsRowID)
	if err := row.Scan(
		&settings.SelectedGameID,
		&settings.SelectedCategoryID,
		&status,
		&settings.OneRunPerPlayer,
		&orderBy,
		&direction,
	); err != nil {
		return domain.Settings{}, fmt.Errorf("failed to read settings row: %w", err)
	}

	var err error
	if settings.RunStatus, err = domain.ParseRunStatus(status); err != nil {
		return domain.Settings{}, fmt.Errorf("stored run status: %w", err)
	}
	if settings.OrderBy, err = domain.ParseOrderBy(orderBy); err != nil {
		return domain.Settings{}, fmt.Errorf("stored order-by: %w", err)
	}
	if settings.Direction, err = domain.ParseDirection(direction); err != nil {
		return domain.Settings{}, fmt.Errorf("stored direction: %w", err)
	}

	rows, err := tx.QueryContext(ctx,
		`SELECT variable_id, value_id FROM settings_filters ORDER BY variable_id`)
	if err != nil {
		return domain.Settings{}, fmt.Errorf("failed to read settings filters: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var vv domain.VariableValue
		if err := rows.Scan(&vv.VariableID, &vv.ValueID); err != nil {
			return domain.Settings{}, fmt.Errorf("failed to scan settings filter: %w", err)
		}
		settings.VariableFilters = append(settings.VariableFilters, vv)
	}
	return settings, rows.Err()
}

// SetSettings replaces the settings row and its filters in one transaction.
// A write equal to the stored value is a no-op and does not notify
// watchers, so downstream refetches are not triggered spuriously. Returns
// whether anything changed.
func (s *Store) SetSettings(ctx context.Context, settings domain.Settings) (bool, error) {
	settings = settings.NormalizeFilters()

	changed := false
	err := s.withTx(ctx, func(tx *sql.Tx) error {
		current, err := readSettings(ctx, tx)
		if err != nil {
			return err
		}
		if current.Equal(settings) {
			return nil
		}
		changed = true
		return writeSettings(ctx, tx, settings)
	})
	if err != nil {
		return false, err
	}

	if changed {
		s.logger.Debug().
			Str("game_id", settings.SelectedGameID).
			Str("category_id", settings.SelectedCategoryID).
			Str("status", string(settings.RunStatus)).
			Msg("settings updated")
		s.hub.notify(topicSettings)
	}
	return changed, nil
}

// SetSelectedGame switches the selected game, clearing the dependent
// category and variable filters atomically. Selecting the already-selected
// game changes nothing.
func (s *Store) SetSelectedGame(ctx context.Context, gameID string) (bool, error) {
	changed := false
	err := s.withTx(ctx, func(tx *sql.Tx) error {
		current, err := readSettings(ctx, tx)
		if err != nil {
			return err
		}
		if current.SelectedGameID == gameID {
			return nil
		}
		changed = true

		next := current
		next.SelectedGameID = gameID
		next.SelectedCategoryID = ""
		next.VariableFilters = nil
		return writeSettings(ctx, tx, next)
	})
	if err != nil {
		return false, err
	}

	if changed {
		s.logger.Info().Str("game_id", gameID).Msg("selected game changed")
		s.hub.notify(topicSettings)
	}
	return changed, nil
}

func writeSettings(ctx context.Context, tx *sql.Tx, settings domain.Settings) error {
	if _, err := tx.ExecContext(ctx,
		`UPDATE settings
		 SET game_id = ?, category_id = ?, run_status = ?, one_run_per_player = ?, order_by = ?, direction = ?
		 WHERE id = ?`,
		settings.SelectedGameID,
		settings.SelectedCategoryID,
		string(settings.RunStatus),
		settings.OneRunPerPlayer,
		string(settings.OrderBy),
		string(settings.Direction),
		settingsRowID,
	); err != nil {
		return fmt.Errorf("failed to write settings row: %w", err)
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM settings_filters`); err != nil {
		return fmt.Errorf("failed to clear settings filters: %w", err)
	}
	for _, vv := range settings.VariableFilters {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO settings_filters (variable_id, value_id) VALUES (?, ?)`,
			vv.VariableID, vv.ValueID,
		); err != nil {
			return fmt.Errorf("failed to write settings filter %s: %w", vv.VariableID, err)
		}
	}
	return nil
}

// GetSelectedRunID returns the selected run id, nil when nothing is
// selected.
func (s *Store) GetSelectedRunID(ctx context.Context) (*string, error) {
	var runID sql.NullString
	row := s.db.QueryRowContext(ctx, `SELECT run_id FROM selection WHERE id = ?`, selectionRowID)
	if err := row.Scan(&runID); err != nil {
		return nil, fmt.Errorf("failed to read selection: %w", err)
	}
	if !runID.Valid {
		return nil, nil
	}
	return &runID.String, nil
}

func (s *Store) SetSelectedRunID(ctx context.Context, runID string) error {
	return s.writeSelection(ctx, sql.NullString{String: runID, Valid: true})
}

func (s *Store) ClearSelectedRun(ctx context.Context) error {
	return s.writeSelection(ctx, sql.NullString{})
}

func (s *Store) writeSelection(ctx context.Context, runID sql.NullString) error {
	if _, err := s.db.ExecContext(ctx,
		`UPDATE selection SET run_id = ? WHERE id = ?`, runID, selectionRowID); err != nil {
		return fmt.Errorf("failed to write selection: %w", err)
	}
	s.hub.notify(topicSelection)
	return nil
}
