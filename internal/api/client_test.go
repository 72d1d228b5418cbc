package api

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"speedrun-browser/internal/config"
	"speedrun-browser/internal/domain"

	"github.com/rs/zerolog"
)

func newTestClient(t *testing.T, handler http.Handler) (*Client, *httptest.Server) {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	cfg := &config.Config{
		APIBaseURL: srv.URL,
		UserAgent:  "speedrun-browser-test/1.0",
	}
	return NewClient(cfg, zerolog.Nop()), srv
}

func TestListGamesBulkRequest(t *testing.T) {
	var gotPath, gotAgent, gotRequestID string
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotAgent = r.Header.Get("X-Agent")
		gotRequestID = r.Header.Get("X-Request-ID")

		if r.URL.Query().Get("_bulk") != "yes" {
			t.Errorf("expected bulk mode, query = %v", r.URL.Query())
		}
		if r.URL.Query().Get("max") != "1000" {
			t.Errorf("max = %q", r.URL.Query().Get("max"))
		}
		w.Write([]byte(`{
			"data": [
				{"id": "g1", "names": {"international": "Game One"}, "abbreviation": "g1abbr"},
				{"id": "g2", "names": {"international": "Game Two"}, "abbreviation": "g2abbr"}
			],
			"pagination": {"offset": 0, "max": 1000, "size": 2}
		}`))
	}))

	page, err := client.ListGames(context.Background(), "", 0)
	if err != nil {
		t.Fatalf("ListGames: %v", err)
	}

	if gotPath != "/games" {
		t.Errorf("path = %q", gotPath)
	}
	if gotAgent != "speedrun-browser-test/1.0" {
		t.Errorf("X-Agent = %q", gotAgent)
	}
	if gotRequestID == "" {
		t.Error("missing X-Request-ID header")
	}
	if len(page.Games) != 2 || page.Games[0].Name != "Game One" {
		t.Errorf("games = %+v", page.Games)
	}
	if page.Pagination.Size != 2 || page.Pagination.Max != 1000 {
		t.Errorf("pagination = %+v", page.Pagination)
	}
}

func TestListGamesSearchRequest(t *testing.T) {
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("name") != "mario kart" {
			t.Errorf("name = %q", r.URL.Query().Get("name"))
		}
		if r.URL.Query().Get("_bulk") != "" {
			t.Error("search must not use bulk mode")
		}
		if r.URL.Query().Get("max") != "20" {
			t.Errorf("max = %q", r.URL.Query().Get("max"))
		}
		w.Write([]byte(`{"data": [], "pagination": {"offset": 0, "max": 20, "size": 0}}`))
	}))

	if _, err := client.ListGames(context.Background(), "mario kart", 0); err != nil {
		t.Fatalf("ListGames: %v", err)
	}
}

func TestListRunsQueryConstruction(t *testing.T) {
	status := domain.StatusApproved
	orderBy := domain.OrderByDate
	direction := domain.DirectionDesc

	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		if q.Get("game") != "abc123" || q.Get("category") != "c1" {
			t.Errorf("game/category = %q/%q", q.Get("game"), q.Get("category"))
		}
		if q.Get("status") != "verified" {
			t.Errorf("status = %q", q.Get("status"))
		}
		if q.Get("orderby") != "date" || q.Get("direction") != "desc" {
			t.Errorf("sort = %q %q", q.Get("orderby"), q.Get("direction"))
		}
		if q.Get("embed") != "players" {
			t.Errorf("embed = %q", q.Get("embed"))
		}
		if q.Get("var-v1") != "val1" {
			t.Errorf("var-v1 = %q", q.Get("var-v1"))
		}
		w.Write([]byte(`{"data": [], "pagination": {"offset": 0, "max": 200, "size": 0}}`))
	}))

	_, err := client.ListRuns(context.Background(), ListRunsParams{
		GameID:          "abc123",
		CategoryID:      "c1",
		Status:          &status,
		OrderBy:         &orderBy,
		Direction:       &direction,
		VariableFilters: []domain.VariableValue{{VariableID: "v1", ValueID: "val1"}},
	})
	if err != nil {
		t.Fatalf("ListRuns: %v", err)
	}
}

func TestTransportErrorOnBadStatus(t *testing.T) {
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "not found", http.StatusNotFound)
	}))

	_, err := client.GetFullGame(context.Background(), "nope")
	if !errors.Is(err, ErrTransport) {
		t.Fatalf("expected ErrTransport, got %v", err)
	}
}

func TestDecodeErrorOnMalformedBody(t *testing.T) {
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"data": "this is not a run list"`))
	}))

	_, err := client.ListRuns(context.Background(), ListRunsParams{GameID: "g1"})
	if !errors.Is(err, ErrDecode) {
		t.Fatalf("expected ErrDecode, got %v", err)
	}
}

func TestDecodeErrorIsNotTransport(t *testing.T) {
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"data": [{"id": "r1", "game": "g1", "category": "c1",
			"status": {"status": "imaginary"},
			"times": {"primary": "PT1S", "primary_t": 1}}]}`))
	}))

	_, err := client.ListRuns(context.Background(), ListRunsParams{GameID: "g1"})
	if !errors.Is(err, ErrDecode) {
		t.Fatalf("expected ErrDecode, got %v", err)
	}
	if errors.Is(err, ErrTransport) {
		t.Fatal("decode failures must not class as transport errors")
	}
}

func TestCanceledContext(t *testing.T) {
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"data": []}`))
	}))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := client.ListGames(ctx, "", 0)
	if !errors.Is(err, ErrTransport) {
		t.Fatalf("expected ErrTransport for canceled context, got %v", err)
	}
}
