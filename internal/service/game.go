package service

import (
	"context"
	"fmt"

	"speedrun-browser/internal/api"
	"speedrun-browser/internal/constants"
	"speedrun-browser/internal/domain"
	"speedrun-browser/internal/store"

	"github.com/rs/zerolog"
)

// ErrTooManyPages guards the pagination sentinel: a server that keeps
// returning full pages past the cap is treated like a failing transport.
var ErrTooManyPages = fmt.Errorf("%w: pagination did not terminate within %d pages", api.ErrTransport, constants.MaxPages)

// GameService orchestrates game data between the remote API and the local
// cache. It is the only component that decides fetch-from-network versus
// serve-from-cache.
type GameService struct {
	api    *api.Client
	store  *store.Store
	logger zerolog.Logger
}

func NewGameService(apiClient *api.Client, st *store.Store, logger zerolog.Logger) *GameService {
	return &GameService{api: apiClient, store: st, logger: logger}
}

// SearchGames runs a free-text search against the remote API. Search
// results are never cached.
func (s *GameService) SearchGames(ctx context.Context, query string) ([]domain.Game, error) {
	ctx, cancel := context.WithTimeout(ctx, constants.RequestTimeout)
	defer cancel()

	page, err := s.api.ListGames(ctx, query, 0)
	if err != nil {
		s.logger.Error().Err(err).Str("query", query).Msg("game search failed")
		return nil, err
	}

	s.logger.Debug().Str("query", query).Int("count", len(page.Games)).Msg("game search completed")
	return page.Games, nil
}

// SearchCachedGames matches the local game cache by name.
func (s *GameService) SearchCachedGames(ctx context.Context, query string) ([]domain.Game, error) {
	ctx, cancel := context.WithTimeout(ctx, constants.DatabaseTimeout)
	defer cancel()

	return s.store.SearchGames(ctx, query, constants.GameSearchLimit)
}

// CacheProgress reports one completed page of the bulk game download.
type CacheProgress struct {
	Page         int
	PageSize     int
	TotalFetched int
}

func (p CacheProgress) String() string {
	return fmt.Sprintf("fetched page %d (%d games, %d total)", p.Page, p.PageSize, p.TotalFetched)
}

// CacheGamesIfNeeded populates the local game cache on first run. When the
// cache already holds games it performs no network calls and no writes.
// Otherwise it pages through the bulk listing until the first short page,
// reports progress per page, and commits everything in one transaction.
func (s *GameService) CacheGamesIfNeeded(ctx context.Context, onProgress func(CacheProgress)) error {
	count, err := s.store.CountGames(ctx)
	if err != nil {
		return err
	}
	if count > 0 {
		s.logger.Debug().Int("count", count).Msg("game cache already populated")
		return nil
	}

	s.logger.Info().Msg("populating game cache")

	seen := make(map[string]struct{})
	var games []domain.Game
	offset := 0

	for page := 1; ; page++ {
		if page > constants.MaxPages {
			return ErrTooManyPages
		}

		pg, err := s.api.ListGames(ctx, "", offset)
		if err != nil {
			return err
		}

		for _, g := range pg.Games {
			if _, dup := seen[g.ID]; dup {
				continue
			}
			seen[g.ID] = struct{}{}
			games = append(games, g)
		}

		progress := CacheProgress{Page: page, PageSize: len(pg.Games), TotalFetched: len(games)}
		s.logger.Info().Msg(progress.String())
		if onProgress != nil {
			onProgress(progress)
		}

		size, max := pageBounds(pg.Pagination, len(pg.Games), constants.BulkGamesPageSize)
		if size < max {
			break
		}
		offset += size
	}

	if err := s.store.UpsertGames(ctx, games); err != nil {
		return err
	}

	s.logger.Info().Int("count", len(games)).Msg("game cache populated")
	return nil
}

// GetFullGame always fetches fresh: the full record is too volatile and
// too large to persist.
func (s *GameService) GetFullGame(ctx context.Context, gameID string) (*domain.FullGame, error) {
	ctx, cancel := context.WithTimeout(ctx, constants.RequestTimeout)
	defer cancel()

	s.logger.Debug().Str("game_id", gameID).Msg("fetching full game")
	return s.api.GetFullGame(ctx, gameID)
}

// pageBounds extracts the sentinel inputs from a pagination block, falling
// back to the observed item count and the requested page size when the
// server omits the block.
func pageBounds(p api.Pagination, itemCount, requestedMax int) (size, max int) {
	size = p.Size
	max = p.Max
	if max == 0 {
		size = itemCount
		max = requestedMax
	}
	return size, max
}
