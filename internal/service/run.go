package service

import (
	"context"
	"errors"
	"strings"

	"speedrun-browser/internal/api"
	"speedrun-browser/internal/constants"
	"speedrun-browser/internal/domain"

	"github.com/rs/zerolog"
)

// ErrNoGameSelected is returned when settings do not name a game to list
// runs for.
var ErrNoGameSelected = errors.New("no game selected")

// RunService fetches run listings. Runs are never persisted; every call is
// a fresh paginated fetch that completes before anything is returned.
type RunService struct {
	api    *api.Client
	logger zerolog.Logger
}

func NewRunService(apiClient *api.Client, logger zerolog.Logger) *RunService {
	return &RunService{api: apiClient, logger: logger}
}

// ListRuns accumulates every page for the given parameters, in strictly
// increasing offset order, deduplicating by run id across page boundaries.
func (s *RunService) ListRuns(ctx context.Context, params api.ListRunsParams) ([]domain.Run, error) {
	ctx, cancel := context.WithTimeout(ctx, constants.RequestTimeout)
	defer cancel()

	seen := make(map[string]struct{})
	var runs []domain.Run
	params.Offset = 0

	for page := 1; ; page++ {
		if page > constants.MaxPages {
			return nil, ErrTooManyPages
		}

		pg, err := s.api.ListRuns(ctx, params)
		if err != nil {
			return nil, err
		}

		for _, r := range pg.Runs {
			if _, dup := seen[r.ID]; dup {
				continue
			}
			seen[r.ID] = struct{}{}
			runs = append(runs, r)
		}

		size, max := pageBounds(pg.Pagination, len(pg.Runs), constants.RunsPageSize)
		if size < max {
			break
		}
		params.Offset += size
	}

	s.logger.Debug().
		Str("game_id", params.GameID).
		Int("count", len(runs)).
		Msg("runs fetched")
	return runs, nil
}

// ListRunsForSettings translates the user's filters into request
// parameters and delegates to the pagination loop. The one-run-per-player
// leaderboard style is applied after the fetch, keeping each player
// line-up's first run in the requested sort order.
func (s *RunService) ListRunsForSettings(ctx context.Context, settings domain.Settings) ([]domain.Run, error) {
	if settings.SelectedGameID == "" {
		return nil, ErrNoGameSelected
	}

	status := settings.RunStatus
	orderBy := settings.OrderBy
	direction := settings.Direction

	params := api.ListRunsParams{
		GameID:          settings.SelectedGameID,
		CategoryID:      settings.SelectedCategoryID,
		Status:          &status,
		OrderBy:         &orderBy,
		Direction:       &direction,
		VariableFilters: settings.VariableFilters,
	}

	runs, err := s.ListRuns(ctx, params)
	if err != nil {
		return nil, err
	}

	if settings.OneRunPerPlayer {
		runs = oneRunPerPlayer(runs)
	}
	return runs, nil
}

func oneRunPerPlayer(runs []domain.Run) []domain.Run {
	seen := make(map[string]struct{}, len(runs))
	out := make([]domain.Run, 0, len(runs))
	for _, r := range runs {
		key := playersKey(r.Players)
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, r)
	}
	return out
}

// playersKey builds a stable identity for a run's player line-up:
// registered users by id, guests by name.
func playersKey(players []domain.Player) string {
	parts := make([]string, 0, len(players))
	for _, p := range players {
		switch pl := p.(type) {
		case domain.RegisteredUser:
			parts = append(parts, "user:"+pl.ID)
		case domain.Guest:
			parts = append(parts, "guest:"+pl.Name)
		default:
			parts = append(parts, "other:"+p.DisplayName())
		}
	}
	return strings.Join(parts, "|")
}
