package api

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"time"

	"speedrun-browser/internal/config"
	"speedrun-browser/internal/constants"
	"speedrun-browser/internal/domain"

	json "github.com/goccy/go-json"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	gobreaker "github.com/sony/gobreaker/v2"
	"github.com/valyala/fasthttp"
)

// Error classes. Transport covers network failures, non-2xx responses and
// an open circuit; decode covers any response body that does not match the
// expected shape. Neither is retried here.
var (
	ErrTransport = errors.New("transport error")
	ErrDecode    = errors.New("decode error")
)

// Client is the typed speedrun.com API client. It owns query-parameter
// construction and response decoding; cache-vs-network policy lives in the
// service layer.
type Client struct {
	baseURL string
	agent   string
	client  *fasthttp.Client
	cb      *gobreaker.CircuitBreaker[[]byte]
	logger  zerolog.Logger
}

func NewClient(cfg *config.Config, logger zerolog.Logger) *Client {
	c := &Client{
		baseURL: cfg.APIBaseURL,
		agent:   cfg.UserAgent,
		client: &fasthttp.Client{
			MaxConnsPerHost:     10,
			ReadTimeout:         constants.ExternalAPITimeout,
			WriteTimeout:        constants.ExternalAPITimeout,
			MaxIdleConnDuration: 1 * time.Minute,
		},
		logger: logger,
	}

	// Fail-fast only: the breaker sheds load when the remote API is down,
	// it never retries. Decode errors are counted outside the breaker so a
	// schema mismatch cannot open the circuit.
	c.cb = gobreaker.NewCircuitBreaker[[]byte](gobreaker.Settings{
		Name:        "srcom-api",
		MaxRequests: 3,
		Interval:    time.Minute,
		Timeout:     30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.Requests >= 5 && counts.TotalFailures*2 > counts.Requests
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Warn().
				Str("breaker", name).
				Str("from", from.String()).
				Str("to", to.String()).
				Msg("circuit breaker state change")
		},
	})

	return c
}

// Pagination is the envelope's pagination block.
type Pagination struct {
	Offset int `json:"offset"`
	Max    int `json:"max"`
	Size   int `json:"size"`
}

type envelope struct {
	Data       json.RawMessage `json:"data"`
	Pagination *Pagination     `json:"pagination"`
}

type GamesPage struct {
	Games      []domain.Game
	Pagination Pagination
}

type RunsPage struct {
	Runs       []domain.Run
	Pagination Pagination
}

// ListGames fetches one page of the game list. An empty query selects the
// bulk listing (large fixed pages, offset-paginated); a non-empty query is
// a free-text name search bound to a small single page.
func (c *Client) ListGames(ctx context.Context, query string, offset int) (*GamesPage, error) {
	params := url.Values{}
	if query == "" {
		params.Set("_bulk", "yes")
		params.Set("orderby", "name.int")
		params.Set("max", strconv.Itoa(constants.BulkGamesPageSize))
		params.Set("offset", strconv.Itoa(offset))
	} else {
		params.Set("name", query)
		params.Set("max", strconv.Itoa(constants.SearchGamesPageSize))
	}

	env, err := c.get(ctx, "/games", params)
	if err != nil {
		return nil, err
	}

	var wires []gameWire
	if err := json.Unmarshal(env.Data, &wires); err != nil {
		return nil, fmt.Errorf("%w: games payload: %v", ErrDecode, err)
	}

	page := &GamesPage{Games: make([]domain.Game, 0, len(wires))}
	if env.Pagination != nil {
		page.Pagination = *env.Pagination
	}
	for _, w := range wires {
		g, err := w.toDomain()
		if err != nil {
			return nil, fmt.Errorf("%w: game %q: %v", ErrDecode, w.ID, err)
		}
		page.Games = append(page.Games, g)
	}
	return page, nil
}

// GetFullGame fetches a single game with categories (and their variables),
// moderators and levels embedded in one response.
func (c *Client) GetFullGame(ctx context.Context, gameID string) (*domain.FullGame, error) {
	params := url.Values{}
	params.Set("embed", "categories.variables,moderators,levels")

	env, err := c.get(ctx, "/games/"+url.PathEscape(gameID), params)
	if err != nil {
		return nil, err
	}

	var wire fullGameWire
	if err := json.Unmarshal(env.Data, &wire); err != nil {
		return nil, fmt.Errorf("%w: full game payload: %v", ErrDecode, err)
	}
	full, err := wire.toDomain()
	if err != nil {
		return nil, fmt.Errorf("%w: full game %q: %v", ErrDecode, gameID, err)
	}
	return full, nil
}

// ListRunsParams carries everything that becomes a query parameter on the
// runs endpoint. Variable filters map to one var-<id>=<valueID> pair each.
type ListRunsParams struct {
	GameID          string
	CategoryID      string
	Status          *domain.RunStatus
	OrderBy         *domain.OrderBy
	Direction       *domain.Direction
	VariableFilters []domain.VariableValue
	Offset          int
}

// ListRuns fetches one page of runs with player records embedded.
func (c *Client) ListRuns(ctx context.Context, p ListRunsParams) (*RunsPage, error) {
	params := url.Values{}
	params.Set("game", p.GameID)
	params.Set("embed", "players")
	params.Set("max", strconv.Itoa(constants.RunsPageSize))
	params.Set("offset", strconv.Itoa(p.Offset))
	if p.CategoryID != "" {
		params.Set("category", p.CategoryID)
	}
	if p.Status != nil {
		params.Set("status", string(*p.Status))
	}
	if p.OrderBy != nil {
		params.Set("orderby", string(*p.OrderBy))
	}
	if p.Direction != nil {
		params.Set("direction", string(*p.Direction))
	}
	for _, vv := range p.VariableFilters {
		params.Set("var-"+vv.VariableID, vv.ValueID)
	}

	env, err := c.get(ctx, "/runs", params)
	if err != nil {
		return nil, err
	}

	var wires []runWire
	if err := json.Unmarshal(env.Data, &wires); err != nil {
		return nil, fmt.Errorf("%w: runs payload: %v", ErrDecode, err)
	}

	page := &RunsPage{Runs: make([]domain.Run, 0, len(wires))}
	if env.Pagination != nil {
		page.Pagination = *env.Pagination
	}
	for _, w := range wires {
		r, err := w.toDomain()
		if err != nil {
			return nil, fmt.Errorf("%w: run %q: %v", ErrDecode, w.ID, err)
		}
		page.Runs = append(page.Runs, r)
	}
	return page, nil
}

func (c *Client) get(ctx context.Context, path string, params url.Values) (*envelope, error) {
	fullURL := c.baseURL + path
	if encoded := params.Encode(); encoded != "" {
		fullURL += "?" + encoded
	}

	requestID := uuid.New().String()
	c.logger.Debug().
		Str("request_id", requestID).
		Str("url", fullURL).
		Msg("outbound request")

	body, err := c.cb.Execute(func() ([]byte, error) {
		return c.do(ctx, fullURL, requestID)
	})
	if err != nil {
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			return nil, fmt.Errorf("%w: %v", ErrTransport, err)
		}
		return nil, err
	}

	var env envelope
	if err := json.Unmarshal(body, &env); err != nil {
		return nil, fmt.Errorf("%w: response envelope: %v", ErrDecode, err)
	}
	return &env, nil
}

func (c *Client) do(ctx context.Context, fullURL, requestID string) ([]byte, error) {
	req := fasthttp.AcquireRequest()
	resp := fasthttp.AcquireResponse()
	defer fasthttp.ReleaseRequest(req)
	defer fasthttp.ReleaseResponse(resp)

	req.SetRequestURI(fullURL)
	req.Header.SetMethod(fasthttp.MethodGet)
	req.Header.Set("X-Agent", c.agent)
	req.Header.Set("X-Request-ID", requestID)

	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrTransport, err)
	}

	deadline, ok := ctx.Deadline()
	if ok {
		if err := c.client.DoDeadline(req, resp, deadline); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrTransport, err)
		}
	} else {
		if err := c.client.Do(req, resp); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrTransport, err)
		}
	}

	if resp.StatusCode() != fasthttp.StatusOK {
		return nil, fmt.Errorf("%w: unexpected status %d", ErrTransport, resp.StatusCode())
	}

	// The response buffer is pooled; callers keep the copy.
	body := make([]byte, len(resp.Body()))
	copy(body, resp.Body())
	return body, nil
}
