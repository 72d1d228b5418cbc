package api

import (
	"bytes"
	"fmt"
	"time"

	"speedrun-browser/internal/domain"

	json "github.com/goccy/go-json"
)

// Wire types for the remote API's JSON shapes. The shapes are the remote
// service's, not ours: enums arrive as string tokens, players are
// polymorphic on "rel", and several sub-objects are keyed by domain ids
// rather than using fixed schemas. Conversion to domain records happens in
// the toDomain methods; any unrecognized token fails the conversion.

const (
	wireDateLayout = "2006-01-02"
)

type namesWire struct {
	International string `json:"international"`
}

type gameWire struct {
	ID           string    `json:"id"`
	Names        namesWire `json:"names"`
	Abbreviation string    `json:"abbreviation"`
}

func (w gameWire) toDomain() (domain.Game, error) {
	if w.ID == "" {
		return domain.Game{}, fmt.Errorf("missing game id")
	}
	return domain.Game{
		ID:           w.ID,
		Abbreviation: w.Abbreviation,
		Name:         w.Names.International,
	}, nil
}

// embeddedList is the {"data": [...]} wrapper the API uses for embedded
// sub-resources.
type embeddedList[T any] struct {
	Data []T `json:"data"`
}

type rulesetWire struct {
	ShowMilliseconds    bool     `json:"show-milliseconds"`
	RequireVerification bool     `json:"require-verification"`
	RequireVideo        bool     `json:"require-video"`
	RunTimes            []string `json:"run-times"`
	DefaultTime         string   `json:"default-time"`
	EmulatorsAllowed    bool     `json:"emulators-allowed"`
}

type fullGameWire struct {
	ID           string                     `json:"id"`
	Names        namesWire                  `json:"names"`
	Abbreviation string                     `json:"abbreviation"`
	Weblink      string                     `json:"weblink"`
	ReleaseDate  *string                    `json:"release-date"`
	Created      *string                    `json:"created"`
	Ruleset      rulesetWire                `json:"ruleset"`
	Romhack      bool                       `json:"romhack"`
	Gametypes    []string                   `json:"gametypes"`
	Platforms    []string                   `json:"platforms"`
	Regions      []string                   `json:"regions"`
	Genres       []string                   `json:"genres"`
	Engines      []string                   `json:"engines"`
	Developers   []string                   `json:"developers"`
	Publishers   []string                   `json:"publishers"`
	Moderators   embeddedList[userWire]     `json:"moderators"`
	Categories   embeddedList[categoryWire] `json:"categories"`
	Levels       *embeddedList[levelWire]   `json:"levels"`
}

func (w fullGameWire) toDomain() (*domain.FullGame, error) {
	if w.ID == "" {
		return nil, fmt.Errorf("missing game id")
	}

	ruleset := domain.Ruleset{
		ShowMilliseconds:    w.Ruleset.ShowMilliseconds,
		RequireVerification: w.Ruleset.RequireVerification,
		RequireVideo:        w.Ruleset.RequireVideo,
		EmulatorsAllowed:    w.Ruleset.EmulatorsAllowed,
	}
	for _, tok := range w.Ruleset.RunTimes {
		m, err := domain.ParseTimingMethod(tok)
		if err != nil {
			return nil, err
		}
		ruleset.TimingMethods = append(ruleset.TimingMethods, m)
	}
	defaultTiming, err := domain.ParseTimingMethod(w.Ruleset.DefaultTime)
	if err != nil {
		return nil, fmt.Errorf("default timing: %w", err)
	}
	ruleset.DefaultTiming = defaultTiming

	full := &domain.FullGame{
		Game: domain.Game{
			ID:           w.ID,
			Abbreviation: w.Abbreviation,
			Name:         w.Names.International,
		},
		Ruleset:      ruleset,
		IsROMHack:    w.Romhack,
		GameTypeIDs:  w.Gametypes,
		PlatformIDs:  w.Platforms,
		RegionIDs:    w.Regions,
		GenreIDs:     w.Genres,
		EngineIDs:    w.Engines,
		DeveloperIDs: w.Developers,
		PublisherIDs: w.Publishers,
	}

	if w.ReleaseDate != nil {
		t, err := time.Parse(wireDateLayout, *w.ReleaseDate)
		if err != nil {
			return nil, fmt.Errorf("release date: %w", err)
		}
		full.ReleaseDate = &t
	}
	if w.Created != nil {
		t, err := time.Parse(time.RFC3339, *w.Created)
		if err != nil {
			return nil, fmt.Errorf("added date: %w", err)
		}
		full.AddedDate = &t
	}

	for _, mw := range w.Moderators.Data {
		user, err := mw.toDomain()
		if err != nil {
			return nil, fmt.Errorf("moderator: %w", err)
		}
		full.Moderators = append(full.Moderators, user)
	}
	for _, cw := range w.Categories.Data {
		cat, err := cw.toDomain()
		if err != nil {
			return nil, fmt.Errorf("category %q: %w", cw.ID, err)
		}
		full.Categories = append(full.Categories, cat)
	}
	if w.Levels != nil {
		for _, lw := range w.Levels.Data {
			full.Levels = append(full.Levels, lw.toDomain())
		}
	}

	return full, nil
}

type categoryWire struct {
	ID            string                     `json:"id"`
	Name          string                     `json:"name"`
	Weblink       string                     `json:"weblink"`
	Type          string                     `json:"type"`
	Rules         *string                    `json:"rules"`
	Players       playersSpecWire            `json:"players"`
	Miscellaneous bool                       `json:"miscellaneous"`
	Variables     embeddedList[variableWire] `json:"variables"`
}

type playersSpecWire struct {
	Type  string `json:"type"`
	Value int    `json:"value"`
}

func (w categoryWire) toDomain() (domain.Category, error) {
	catType, err := domain.ParseCategoryType(w.Type)
	if err != nil {
		return domain.Category{}, err
	}
	playersType, err := domain.ParsePlayersType(w.Players.Type)
	if err != nil {
		return domain.Category{}, err
	}

	cat := domain.Category{
		ID:            w.ID,
		Name:          w.Name,
		Type:          catType,
		Rules:         w.Rules,
		Players:       domain.PlayersSpec{Type: playersType, Value: w.Players.Value},
		Miscellaneous: w.Miscellaneous,
		Weblink:       w.Weblink,
	}
	for _, vw := range w.Variables.Data {
		variable, err := vw.toDomain()
		if err != nil {
			return domain.Category{}, fmt.Errorf("variable %q: %w", vw.ID, err)
		}
		cat.Variables = append(cat.Variables, variable)
	}
	return cat, nil
}

type variableWire struct {
	ID            string             `json:"id"`
	Name          string             `json:"name"`
	Category      *string            `json:"category"`
	Scope         variableScopeWire  `json:"scope"`
	Mandatory     bool               `json:"mandatory"`
	UserDefined   bool               `json:"user-defined"`
	Obsoletes     bool               `json:"obsoletes"`
	Values        variableValuesWire `json:"values"`
	IsSubcategory bool               `json:"is-subcategory"`
}

type variableScopeWire struct {
	Type  string  `json:"type"`
	Level *string `json:"level"`
}

// variableValuesWire holds the value definitions keyed by value id. The
// "default" key sits alongside "values" and names the default value id; it
// is not a value entry.
type variableValuesWire struct {
	Values  map[string]valueDefWire `json:"values"`
	Default *string                 `json:"default"`
}

type valueDefWire struct {
	Label string  `json:"label"`
	Rules *string `json:"rules"`
	Flags *struct {
		Miscellaneous *bool `json:"miscellaneous"`
	} `json:"flags"`
}

func (w variableWire) toDomain() (domain.Variable, error) {
	scope, err := domain.ParseVariableScope(w.Scope.Type)
	if err != nil {
		return domain.Variable{}, err
	}

	variable := domain.Variable{
		ID:             w.ID,
		Name:           w.Name,
		CategoryID:     w.Category,
		Scope:          scope,
		ScopeLevelID:   w.Scope.Level,
		Mandatory:      w.Mandatory,
		UserDefined:    w.UserDefined,
		IsSubcategory:  w.IsSubcategory,
		Obsoletes:      w.Obsoletes,
		DefaultValueID: w.Values.Default,
	}
	for id, def := range w.Values.Values {
		value := domain.Value{
			ID:    id,
			Label: def.Label,
			Rules: def.Rules,
		}
		if def.Flags != nil {
			value.Miscellaneous = def.Flags.Miscellaneous
		}
		variable.Values = append(variable.Values, value)
	}
	return variable, nil
}

type levelWire struct {
	ID      string  `json:"id"`
	Name    string  `json:"name"`
	Rules   *string `json:"rules"`
	Weblink string  `json:"weblink"`
}

func (w levelWire) toDomain() domain.Level {
	return domain.Level{ID: w.ID, Name: w.Name, Rules: w.Rules, Weblink: w.Weblink}
}

type runWire struct {
	ID        string            `json:"id"`
	Weblink   string            `json:"weblink"`
	Game      string            `json:"game"`
	Level     levelRefWire      `json:"level"`
	Category  string            `json:"category"`
	Videos    *videosWire       `json:"videos"`
	Comment   *string           `json:"comment"`
	Status    runStatusWire     `json:"status"`
	Players   playersWire       `json:"players"`
	Date      *string           `json:"date"`
	Submitted *string           `json:"submitted"`
	Times     timesWire         `json:"times"`
	Splits    *linkWire         `json:"splits"`
	Values    map[string]string `json:"values"`
}

type videosWire struct {
	Links []linkWire `json:"links"`
}

type linkWire struct {
	URI string `json:"uri"`
}

type runStatusWire struct {
	Status     string  `json:"status"`
	Examiner   *string `json:"examiner"`
	VerifyDate *string `json:"verify-date"`
}

// levelRefWire absorbs the shapes the level field can take: a plain id
// string, JSON null, or an embedded object yielding its id. When the level
// resource is embedded and the run has none, the server sends an empty
// list under "data" where an object would normally be.
type levelRefWire struct {
	ID *string
}

func (l *levelRefWire) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		return nil
	}
	switch data[0] {
	case '"':
		var id string
		if err := json.Unmarshal(data, &id); err != nil {
			return err
		}
		l.ID = &id
		return nil
	case '{':
		var embed struct {
			Data json.RawMessage `json:"data"`
		}
		if err := json.Unmarshal(data, &embed); err != nil {
			return err
		}
		inner := bytes.TrimSpace(embed.Data)
		if len(inner) == 0 || inner[0] == '[' {
			// Empty structure substituted for an absent level.
			return nil
		}
		var lw levelWire
		if err := json.Unmarshal(inner, &lw); err != nil {
			return err
		}
		if lw.ID != "" {
			l.ID = &lw.ID
		}
		return nil
	default:
		return fmt.Errorf("unexpected level shape %q", string(data))
	}
}

// playersWire accepts the embedded {"data": [...]} form and keeps the raw
// entries so each one can be dispatched on its "rel" discriminator.
type playersWire struct {
	Data []json.RawMessage `json:"data"`
}

func (w runWire) toDomain() (domain.Run, error) {
	status, err := domain.ParseRunStatus(w.Status.Status)
	if err != nil {
		return domain.Run{}, err
	}

	run := domain.Run{
		ID:         w.ID,
		GameID:     w.Game,
		CategoryID: w.Category,
		LevelID:    w.Level.ID,
		Status:     domain.RunStatusInfo{Status: status, ExaminerID: w.Status.Examiner},
		Comment:    w.Comment,
		Weblink:    w.Weblink,
	}

	if w.Status.VerifyDate != nil {
		t, err := time.Parse(time.RFC3339, *w.Status.VerifyDate)
		if err != nil {
			return domain.Run{}, fmt.Errorf("verify date: %w", err)
		}
		run.Status.VerifyDate = &t
	}
	if w.Date != nil {
		t, err := time.Parse(wireDateLayout, *w.Date)
		if err != nil {
			return domain.Run{}, fmt.Errorf("run date: %w", err)
		}
		run.Date = &t
	}
	if w.Submitted != nil {
		t, err := time.Parse(time.RFC3339, *w.Submitted)
		if err != nil {
			return domain.Run{}, fmt.Errorf("submitted date: %w", err)
		}
		run.Submitted = &t
	}

	// The values object is keyed by variable id; iterate entries rather
	// than expecting a fixed schema.
	for variableID, valueID := range w.Values {
		run.Values = append(run.Values, domain.VariableValue{
			VariableID: variableID,
			ValueID:    valueID,
		})
	}

	for _, raw := range w.Players.Data {
		player, err := decodePlayer(raw)
		if err != nil {
			return domain.Run{}, err
		}
		run.Players = append(run.Players, player)
	}

	run.Times = w.Times.toDomain()

	if w.Videos != nil {
		for _, link := range w.Videos.Links {
			run.VideoLinks = append(run.VideoLinks, link.URI)
		}
	}
	if w.Splits != nil && w.Splits.URI != "" {
		uri := w.Splits.URI
		run.SplitsURI = &uri
	}

	return run, nil
}

type timesWire struct {
	Primary          *string `json:"primary"`
	PrimaryT         float64 `json:"primary_t"`
	Realtime         *string `json:"realtime"`
	RealtimeT        float64 `json:"realtime_t"`
	RealtimeNoloads  *string `json:"realtime_noloads"`
	RealtimeNoloadsT float64 `json:"realtime_noloads_t"`
	Ingame           *string `json:"ingame"`
	IngameT          float64 `json:"ingame_t"`
}

func (w timesWire) toDomain() domain.RunTimes {
	var times domain.RunTimes
	if w.Primary != nil {
		d := secondsToDuration(w.PrimaryT)
		times.Primary = &d
	}
	if w.Realtime != nil {
		d := secondsToDuration(w.RealtimeT)
		times.Realtime = &d
	}
	if w.RealtimeNoloads != nil {
		d := secondsToDuration(w.RealtimeNoloadsT)
		times.RealtimeNoLoads = &d
	}
	if w.Ingame != nil {
		d := secondsToDuration(w.IngameT)
		times.InGame = &d
	}
	return times
}

func secondsToDuration(sec float64) time.Duration {
	return time.Duration(sec * float64(time.Second))
}

type userWire struct {
	ID       string    `json:"id"`
	Names    namesWire `json:"names"`
	Weblink  string    `json:"weblink"`
	Role     *string   `json:"role"`
	Location *struct {
		Country struct {
			Code string `json:"code"`
		} `json:"country"`
	} `json:"location"`
}

func (w userWire) toDomain() (domain.RegisteredUser, error) {
	if w.ID == "" {
		return domain.RegisteredUser{}, fmt.Errorf("missing user id")
	}
	// Role is required on registered users; a record without one fails
	// decode rather than defaulting.
	if w.Role == nil {
		return domain.RegisteredUser{}, fmt.Errorf("user %q missing role", w.ID)
	}
	role, err := domain.ParseUserRole(*w.Role)
	if err != nil {
		return domain.RegisteredUser{}, err
	}

	user := domain.RegisteredUser{
		ID:      w.ID,
		Name:    w.Names.International,
		Role:    role,
		Weblink: w.Weblink,
	}
	if w.Location != nil && w.Location.Country.Code != "" {
		code := w.Location.Country.Code
		user.Country = &code
	}
	return user, nil
}

type guestWire struct {
	Name     string `json:"name"`
	Location *struct {
		Country struct {
			Code string `json:"code"`
		} `json:"country"`
	} `json:"location"`
}

func (w guestWire) toDomain() domain.Guest {
	guest := domain.Guest{Name: w.Name}
	if w.Location != nil && w.Location.Country.Code != "" {
		code := w.Location.Country.Code
		guest.Country = &code
	}
	return guest
}

// decodePlayer dispatches on the "rel" discriminator before parsing the
// remainder of the record. Unknown discriminators fail decode.
func decodePlayer(raw json.RawMessage) (domain.Player, error) {
	var probe struct {
		Rel string `json:"rel"`
	}
	if err := json.Unmarshal(raw, &probe); err != nil {
		return nil, fmt.Errorf("player discriminator: %w", err)
	}

	switch probe.Rel {
	case string(domain.RelUser):
		var uw userWire
		if err := json.Unmarshal(raw, &uw); err != nil {
			return nil, fmt.Errorf("user player: %w", err)
		}
		return uw.toDomain()
	case string(domain.RelGuest):
		var gw guestWire
		if err := json.Unmarshal(raw, &gw); err != nil {
			return nil, fmt.Errorf("guest player: %w", err)
		}
		return gw.toDomain(), nil
	default:
		return nil, fmt.Errorf("unknown player rel %q", probe.Rel)
	}
}
