package service

import (
	"context"
	"sync"

	"speedrun-browser/internal/domain"
	"speedrun-browser/internal/store"

	"github.com/rs/zerolog"
)

// RefreshResult is one completed refresh: the settings it was computed
// for, the freshly fetched full game and the matching run list.
type RefreshResult struct {
	Settings domain.Settings
	Game     *domain.FullGame
	Runs     []domain.Run
}

// Refresher watches the settings row and keeps at most one fetch sequence
// in flight. A settings change cancels the previous sequence before
// starting a new one. A canceled sequence applies nothing; results are
// only delivered after a final cancellation check.
type Refresher struct {
	games  *GameService
	runs   *RunService
	store  *store.Store
	logger zerolog.Logger

	onResult func(RefreshResult)
	onError  func(domain.Settings, error)

	mu     sync.Mutex
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

func NewRefresher(games *GameService, runs *RunService, st *store.Store, logger zerolog.Logger) *Refresher {
	return &Refresher{
		games:  games,
		runs:   runs,
		store:  st,
		logger: logger,
	}
}

// OnResult registers the consumer for completed refreshes. Must be set
// before Run.
func (r *Refresher) OnResult(fn func(RefreshResult)) { r.onResult = fn }

// OnError registers the consumer for failed refreshes. Errors are terminal
// for the sequence that produced them; prior state is untouched.
func (r *Refresher) OnError(fn func(domain.Settings, error)) { r.onError = fn }

// Run consumes the settings stream until ctx is done. Each received value
// kicks off a refresh sequence for that exact settings snapshot.
func (r *Refresher) Run(ctx context.Context) error {
	settingsCh, err := r.store.WatchSettings(ctx)
	if err != nil {
		return err
	}

	for {
		select {
		case <-ctx.Done():
			r.cancelInFlight()
			r.wg.Wait()
			return ctx.Err()
		case settings := <-settingsCh:
			r.kick(ctx, settings)
		}
	}
}

// Refresh starts a sequence for the given settings directly, outside the
// watch loop. Used for manual retry after a failure.
func (r *Refresher) Refresh(ctx context.Context, settings domain.Settings) {
	r.kick(ctx, settings)
}

func (r *Refresher) kick(parent context.Context, settings domain.Settings) {
	r.mu.Lock()
	if r.cancel != nil {
		r.cancel()
	}
	ctx, cancel := context.WithCancel(parent)
	r.cancel = cancel
	r.mu.Unlock()

	r.wg.Add(1)
	go func() {
		defer r.wg.Done()
		r.refresh(ctx, settings)
	}()
}

func (r *Refresher) cancelInFlight() {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.cancel != nil {
		r.cancel()
		r.cancel = nil
	}
}

func (r *Refresher) refresh(ctx context.Context, settings domain.Settings) {
	if settings.SelectedGameID == "" {
		r.logger.Debug().Msg("no game selected, nothing to refresh")
		return
	}

	game, err := r.games.GetFullGame(ctx, settings.SelectedGameID)
	if err != nil {
		r.fail(ctx, settings, err)
		return
	}
	if ctx.Err() != nil {
		return
	}

	runs, err := r.runs.ListRunsForSettings(ctx, settings)
	if err != nil {
		r.fail(ctx, settings, err)
		return
	}
	if ctx.Err() != nil {
		return
	}

	r.logger.Info().
		Str("game_id", settings.SelectedGameID).
		Int("run_count", len(runs)).
		Msg("refresh completed")

	if r.onResult != nil {
		r.onResult(RefreshResult{Settings: settings, Game: game, Runs: runs})
	}
}

func (r *Refresher) fail(ctx context.Context, settings domain.Settings, err error) {
	// A canceled sequence stays silent; a newer one has taken over.
	if ctx.Err() != nil {
		return
	}
	r.logger.Error().Err(err).Str("game_id", settings.SelectedGameID).Msg("refresh failed")
	if r.onError != nil {
		r.onError(settings, err)
	}
}
