package domain

import (
	"time"
)

// Game is the cached listing row: just enough for search and selection.
type Game struct {
	ID           string
	Abbreviation string
	Name         string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// FullGame is the complete per-game record with embedded categories,
// variables, moderators and levels. It is fetched fresh on every game
// selection and never persisted.
type FullGame struct {
	Game
	ReleaseDate  *time.Time
	AddedDate    *time.Time
	Ruleset      Ruleset
	IsROMHack    bool
	GameTypeIDs  []string
	PlatformIDs  []string
	RegionIDs    []string
	GenreIDs     []string
	EngineIDs    []string
	DeveloperIDs []string
	PublisherIDs []string
	Moderators   []RegisteredUser
	Categories   []Category
	Levels       []Level
}

type Ruleset struct {
	ShowMilliseconds    bool
	RequireVerification bool
	RequireVideo        bool
	EmulatorsAllowed    bool
	TimingMethods       []TimingMethod
	DefaultTiming       TimingMethod
}

type Category struct {
	ID            string
	Name          string
	Type          CategoryType
	Rules         *string
	Players       PlayersSpec
	Miscellaneous bool
	Variables     []Variable
	Weblink       string
}

// PlayersSpec is the category's player-count rule: exactly N or up to N.
type PlayersSpec struct {
	Type  PlayersType
	Value int
}

type Variable struct {
	ID             string
	Name           string
	CategoryID     *string // nil means the variable applies game-wide
	Scope          VariableScope
	ScopeLevelID   *string // set only for single-level scope
	Mandatory      bool
	UserDefined    bool
	IsSubcategory  bool
	Obsoletes      bool
	Values         []Value
	DefaultValueID *string
}

type Value struct {
	ID            string
	Label         string
	Rules         *string
	Miscellaneous *bool
}

type Level struct {
	ID      string
	Name    string
	Rules   *string
	Weblink string
}

type Run struct {
	ID         string
	GameID     string
	CategoryID string
	LevelID    *string
	Status     RunStatusInfo
	Values     []VariableValue
	Players    []Player
	Times      RunTimes
	Date       *time.Time
	Submitted  *time.Time
	Comment    *string
	Weblink    string
	VideoLinks []string
	SplitsURI  *string
}

// RunStatusInfo carries the status plus verification metadata when present.
type RunStatusInfo struct {
	Status     RunStatus
	ExaminerID *string
	VerifyDate *time.Time
}

// VariableValue is one (variable id, value id) selection on a run.
type VariableValue struct {
	VariableID string
	ValueID    string
}

// RunTimes holds the recorded durations. Every field is optional; the
// upstream omits timing methods a run was not measured with.
type RunTimes struct {
	Primary         *time.Duration
	Realtime        *time.Duration
	RealtimeNoLoads *time.Duration
	InGame          *time.Duration
}
