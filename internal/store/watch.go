package store

import (
	"context"
	"sync"

	"speedrun-browser/internal/constants"
	"speedrun-browser/internal/domain"

	gonanoid "github.com/matoous/go-nanoid/v2"
	"github.com/rs/zerolog"
)

// The watch hub turns committed store mutations into pushed query results.
// Each subscriber owns a buffered channel of size one. On notify the
// subscription re-runs its query and replaces any undelivered value, so a
// slow reader sees the latest state rather than a backlog.

type topic int

const (
	topicGames topic = iota
	topicSettings
	topicSelection
)

type hub struct {
	mu     sync.Mutex
	subs   map[topic]map[string]func()
	logger zerolog.Logger
}

func newHub(logger zerolog.Logger) *hub {
	return &hub{
		subs:   make(map[topic]map[string]func()),
		logger: logger,
	}
}

func (h *hub) subscribe(t topic, deliver func()) (id string) {
	id, err := gonanoid.New()
	if err != nil {
		// nanoid only fails when the OS random source is broken.
		panic(err)
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	if h.subs[t] == nil {
		h.subs[t] = make(map[string]func())
	}
	h.subs[t][id] = deliver
	return id
}

func (h *hub) unsubscribe(t topic, id string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	delete(h.subs[t], id)
}

func (h *hub) notify(t topic) {
	h.mu.Lock()
	delivers := make([]func(), 0, len(h.subs[t]))
	for _, d := range h.subs[t] {
		delivers = append(delivers, d)
	}
	h.mu.Unlock()

	for _, d := range delivers {
		d()
	}
}

// offer replaces the channel's pending value with v without blocking.
func offer[T any](ch chan T, v T) {
	select {
	case ch <- v:
	default:
		select {
		case <-ch:
		default:
		}
		select {
		case ch <- v:
		default:
		}
	}
}

// WatchSettings streams the settings row: the current value immediately,
// then a fresh snapshot after every committed settings mutation. The
// subscription ends when ctx is done.
func (s *Store) WatchSettings(ctx context.Context) (<-chan domain.Settings, error) {
	return watch(ctx, s, topicSettings, func(qctx context.Context) (domain.Settings, error) {
		return s.GetSettings(qctx)
	})
}

// WatchSelection streams the selected run id, nil when cleared.
func (s *Store) WatchSelection(ctx context.Context) (<-chan *string, error) {
	return watch(ctx, s, topicSelection, func(qctx context.Context) (*string, error) {
		return s.GetSelectedRunID(qctx)
	})
}

// WatchGameCount streams the cached game count; the first non-zero value
// tells a subscriber the bulk cache is populated.
func (s *Store) WatchGameCount(ctx context.Context) (<-chan int, error) {
	return watch(ctx, s, topicGames, func(qctx context.Context) (int, error) {
		return s.CountGames(qctx)
	})
}

func watch[T any](ctx context.Context, s *Store, t topic, query func(context.Context) (T, error)) (<-chan T, error) {
	ch := make(chan T, 1)

	id := s.hub.subscribe(t, func() {
		qctx, cancel := context.WithTimeout(context.Background(), constants.DatabaseTimeout)
		defer cancel()

		v, err := query(qctx)
		if err != nil {
			s.logger.Warn().Err(err).Int("topic", int(t)).Msg("watch re-query failed")
			return
		}
		select {
		case <-ctx.Done():
		default:
			offer(ch, v)
		}
	})

	// Snapshot after subscribing, so a mutation committing in between
	// still triggers a push instead of being lost. A value already pushed
	// by such a notify is at least as fresh as the snapshot, so keep it.
	current, err := query(ctx)
	if err != nil {
		s.hub.unsubscribe(t, id)
		return nil, err
	}
	select {
	case ch <- current:
	default:
	}

	go func() {
		<-ctx.Done()
		s.hub.unsubscribe(t, id)
	}()

	return ch, nil
}
