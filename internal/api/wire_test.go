package api

import (
	"testing"

	"speedrun-browser/internal/domain"

	json "github.com/goccy/go-json"
)

func TestDecodeRunValuesMap(t *testing.T) {
	payload := []byte(`{
		"id": "run1",
		"game": "g1",
		"category": "c1",
		"status": {"status": "verified"},
		"times": {"primary": "PT1M", "primary_t": 60},
		"values": {"var1": "val1", "var2": "val2"}
	}`)

	var w runWire
	if err := json.Unmarshal(payload, &w); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	run, err := w.toDomain()
	if err != nil {
		t.Fatalf("toDomain: %v", err)
	}

	if len(run.Values) != 2 {
		t.Fatalf("expected 2 variable-value pairs, got %d", len(run.Values))
	}
	got := map[string]string{}
	for _, vv := range run.Values {
		got[vv.VariableID] = vv.ValueID
	}
	if got["var1"] != "val1" || got["var2"] != "val2" {
		t.Errorf("unexpected pairs: %v", got)
	}
}

func TestDecodeRunUnknownStatusFails(t *testing.T) {
	payload := []byte(`{
		"id": "run1",
		"game": "g1",
		"category": "c1",
		"status": {"status": "totally-new-status"},
		"times": {"primary": "PT1M", "primary_t": 60}
	}`)

	var w runWire
	if err := json.Unmarshal(payload, &w); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if _, err := w.toDomain(); err == nil {
		t.Fatal("expected decode error for unknown status token")
	}
}

func TestDecodePlayerGuestIgnoresExtraFields(t *testing.T) {
	raw := json.RawMessage(`{"rel": "guest", "name": "SomeGuest", "unexpected": {"x": 1}, "links": []}`)

	player, err := decodePlayer(raw)
	if err != nil {
		t.Fatalf("decodePlayer: %v", err)
	}

	guest, ok := player.(domain.Guest)
	if !ok {
		t.Fatalf("expected Guest, got %T", player)
	}
	if guest.DisplayName() != "SomeGuest" {
		t.Errorf("display name = %q", guest.DisplayName())
	}
	if guest.Rel() != domain.RelGuest {
		t.Errorf("rel = %q", guest.Rel())
	}
}

func TestDecodePlayerUserRequiresRole(t *testing.T) {
	raw := json.RawMessage(`{"rel": "user", "id": "u1", "names": {"international": "Runner"}, "weblink": "https://example.org/u1"}`)

	if _, err := decodePlayer(raw); err == nil {
		t.Fatal("expected decode error for user without role")
	}
}

func TestDecodePlayerUser(t *testing.T) {
	raw := json.RawMessage(`{
		"rel": "user",
		"id": "u1",
		"names": {"international": "Runner"},
		"weblink": "https://example.org/u1",
		"role": "moderator",
		"location": {"country": {"code": "de"}}
	}`)

	player, err := decodePlayer(raw)
	if err != nil {
		t.Fatalf("decodePlayer: %v", err)
	}
	user, ok := player.(domain.RegisteredUser)
	if !ok {
		t.Fatalf("expected RegisteredUser, got %T", player)
	}
	if user.Role != domain.RoleModerator {
		t.Errorf("role = %q", user.Role)
	}
	if user.Country == nil || *user.Country != "de" {
		t.Errorf("country = %v", user.Country)
	}
}

func TestDecodePlayerUnknownRel(t *testing.T) {
	if _, err := decodePlayer(json.RawMessage(`{"rel": "robot", "name": "x"}`)); err == nil {
		t.Fatal("expected error for unknown rel")
	}
}

func TestDecodeLevelRefShapes(t *testing.T) {
	tests := []struct {
		name    string
		payload string
		want    *string
	}{
		{"null", `null`, nil},
		{"plain id", `"lvl1"`, strPtr("lvl1")},
		{"embedded empty list", `{"data": []}`, nil},
		{"embedded object", `{"data": {"id": "lvl2", "name": "Stage 2", "weblink": ""}}`, strPtr("lvl2")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var ref levelRefWire
			if err := json.Unmarshal([]byte(tt.payload), &ref); err != nil {
				t.Fatalf("unmarshal: %v", err)
			}
			switch {
			case tt.want == nil && ref.ID != nil:
				t.Errorf("expected absent level, got %q", *ref.ID)
			case tt.want != nil && (ref.ID == nil || *ref.ID != *tt.want):
				t.Errorf("expected level %q, got %v", *tt.want, ref.ID)
			}
		})
	}
}

func TestDecodeVariableValuesKeyedByID(t *testing.T) {
	payload := []byte(`{
		"id": "var1",
		"name": "Difficulty",
		"category": null,
		"scope": {"type": "full-game"},
		"mandatory": true,
		"user-defined": false,
		"obsoletes": true,
		"is-subcategory": true,
		"values": {
			"values": {
				"v1": {"label": "Easy", "rules": null},
				"v2": {"label": "Hard", "rules": "no cheats", "flags": {"miscellaneous": false}}
			},
			"default": "v2"
		}
	}`)

	var w variableWire
	if err := json.Unmarshal(payload, &w); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	variable, err := w.toDomain()
	if err != nil {
		t.Fatalf("toDomain: %v", err)
	}

	if len(variable.Values) != 2 {
		t.Fatalf("expected 2 values, got %d", len(variable.Values))
	}
	if variable.DefaultValueID == nil || *variable.DefaultValueID != "v2" {
		t.Errorf("default value id = %v", variable.DefaultValueID)
	}
	if variable.Scope != domain.ScopeFullGame {
		t.Errorf("scope = %q", variable.Scope)
	}
	if !variable.IsSubcategory || !variable.Mandatory || !variable.Obsoletes {
		t.Error("flags not decoded")
	}

	labels := map[string]string{}
	for _, v := range variable.Values {
		labels[v.ID] = v.Label
	}
	if labels["v1"] != "Easy" || labels["v2"] != "Hard" {
		t.Errorf("labels = %v", labels)
	}
}

func TestDecodeVariableUnknownScopeFails(t *testing.T) {
	payload := []byte(`{"id": "var1", "name": "X", "scope": {"type": "galactic"}, "values": {"values": {}}}`)

	var w variableWire
	if err := json.Unmarshal(payload, &w); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if _, err := w.toDomain(); err == nil {
		t.Fatal("expected error for unknown scope")
	}
}

func TestDecodeRunTimes(t *testing.T) {
	payload := []byte(`{
		"primary": "PT1M30S",
		"primary_t": 90.5,
		"realtime": "PT1M30S",
		"realtime_t": 90.5,
		"realtime_noloads": null,
		"realtime_noloads_t": 0,
		"ingame": null,
		"ingame_t": 0
	}`)

	var w timesWire
	if err := json.Unmarshal(payload, &w); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	times := w.toDomain()

	if times.Primary == nil || times.Primary.Seconds() != 90.5 {
		t.Errorf("primary = %v", times.Primary)
	}
	if times.Realtime == nil || times.Realtime.Seconds() != 90.5 {
		t.Errorf("realtime = %v", times.Realtime)
	}
	if times.RealtimeNoLoads != nil {
		t.Errorf("expected absent noloads time, got %v", *times.RealtimeNoLoads)
	}
	if times.InGame != nil {
		t.Errorf("expected absent ingame time, got %v", *times.InGame)
	}
}

func TestDecodeRunTimesMissingPrimary(t *testing.T) {
	var w timesWire
	if err := json.Unmarshal([]byte(`{"primary": null, "ingame": "PT30S", "ingame_t": 30}`), &w); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	times := w.toDomain()
	if times.Primary != nil {
		t.Errorf("expected absent primary time, got %v", *times.Primary)
	}
	if times.InGame == nil || times.InGame.Seconds() != 30 {
		t.Errorf("ingame = %v", times.InGame)
	}
}

func TestDecodeFullGame(t *testing.T) {
	payload := []byte(`{
		"id": "abc123",
		"names": {"international": "Example Quest"},
		"abbreviation": "exq",
		"weblink": "https://example.org/exq",
		"release-date": "2001-05-20",
		"created": "2015-02-01T12:00:00Z",
		"romhack": false,
		"ruleset": {
			"show-milliseconds": true,
			"require-verification": true,
			"require-video": false,
			"run-times": ["realtime", "realtime_noloads"],
			"default-time": "realtime_noloads",
			"emulators-allowed": true
		},
		"gametypes": [],
		"platforms": ["p1", "p2"],
		"regions": ["r1"],
		"genres": ["ge1"],
		"engines": [],
		"developers": ["d1"],
		"publishers": [],
		"moderators": {"data": [
			{"rel": "user", "id": "m1", "names": {"international": "Mod"}, "weblink": "", "role": "user"}
		]},
		"categories": {"data": [
			{
				"id": "c1",
				"name": "Any%",
				"weblink": "",
				"type": "per-game",
				"rules": "go fast",
				"players": {"type": "up-to", "value": 2},
				"miscellaneous": false,
				"variables": {"data": [
					{"id": "v1", "name": "Version", "category": "c1",
					 "scope": {"type": "global"}, "mandatory": false, "user-defined": false,
					 "obsoletes": true, "is-subcategory": false,
					 "values": {"values": {"x": {"label": "1.0"}}, "default": null}}
				]}
			}
		]},
		"levels": {"data": [
			{"id": "l1", "name": "World 1", "rules": null, "weblink": ""}
		]}
	}`)

	var w fullGameWire
	if err := json.Unmarshal(payload, &w); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	full, err := w.toDomain()
	if err != nil {
		t.Fatalf("toDomain: %v", err)
	}

	if full.Name != "Example Quest" || full.Abbreviation != "exq" {
		t.Errorf("game identity: %+v", full.Game)
	}
	if full.Ruleset.DefaultTiming != domain.TimingRealtimeNoLoads {
		t.Errorf("default timing = %q", full.Ruleset.DefaultTiming)
	}
	if len(full.Ruleset.TimingMethods) != 2 {
		t.Errorf("timing methods = %v", full.Ruleset.TimingMethods)
	}
	if full.ReleaseDate == nil || full.ReleaseDate.Year() != 2001 {
		t.Errorf("release date = %v", full.ReleaseDate)
	}
	if len(full.Moderators) != 1 || full.Moderators[0].Name != "Mod" {
		t.Errorf("moderators = %v", full.Moderators)
	}
	if len(full.Categories) != 1 {
		t.Fatalf("categories = %d", len(full.Categories))
	}
	cat := full.Categories[0]
	if cat.Players.Type != domain.PlayersUpTo || cat.Players.Value != 2 {
		t.Errorf("players spec = %+v", cat.Players)
	}
	if len(cat.Variables) != 1 || cat.Variables[0].CategoryID == nil {
		t.Errorf("variables = %+v", cat.Variables)
	}
	if len(full.Levels) != 1 || full.Levels[0].ID != "l1" {
		t.Errorf("levels = %+v", full.Levels)
	}
}

func TestDecodeFullGameUnknownDefaultTimingFails(t *testing.T) {
	payload := []byte(`{
		"id": "abc123",
		"names": {"international": "X"},
		"ruleset": {"run-times": ["realtime"], "default-time": "gametime"}
	}`)

	var w fullGameWire
	if err := json.Unmarshal(payload, &w); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if _, err := w.toDomain(); err == nil {
		t.Fatal("expected error for unknown default timing token")
	}
}

func strPtr(s string) *string { return &s }
