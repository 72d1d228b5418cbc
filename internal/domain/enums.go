package domain

import "fmt"

// Enumerated wire tokens. Each type's value is the exact token the remote
// API uses, so the same constant serves both decode tables and query
// parameter construction. Parse functions reject unknown tokens instead of
// defaulting.

type TimingMethod string

const (
	TimingRealtime        TimingMethod = "realtime"
	TimingRealtimeNoLoads TimingMethod = "realtime_noloads"
	TimingInGame          TimingMethod = "ingame"
)

var timingMethods = map[string]TimingMethod{
	"realtime":         TimingRealtime,
	"realtime_noloads": TimingRealtimeNoLoads,
	"ingame":           TimingInGame,
}

func ParseTimingMethod(tok string) (TimingMethod, error) {
	m, ok := timingMethods[tok]
	if !ok {
		return "", fmt.Errorf("unknown timing method %q", tok)
	}
	return m, nil
}

type VariableScope string

const (
	ScopeGlobal      VariableScope = "global"
	ScopeFullGame    VariableScope = "full-game"
	ScopeAllLevels   VariableScope = "all-levels"
	ScopeSingleLevel VariableScope = "single-level"
)

var variableScopes = map[string]VariableScope{
	"global":       ScopeGlobal,
	"full-game":    ScopeFullGame,
	"all-levels":   ScopeAllLevels,
	"single-level": ScopeSingleLevel,
}

func ParseVariableScope(tok string) (VariableScope, error) {
	s, ok := variableScopes[tok]
	if !ok {
		return "", fmt.Errorf("unknown variable scope %q", tok)
	}
	return s, nil
}

type CategoryType string

const (
	CategoryPerGame  CategoryType = "per-game"
	CategoryPerLevel CategoryType = "per-level"
)

var categoryTypes = map[string]CategoryType{
	"per-game":  CategoryPerGame,
	"per-level": CategoryPerLevel,
}

func ParseCategoryType(tok string) (CategoryType, error) {
	t, ok := categoryTypes[tok]
	if !ok {
		return "", fmt.Errorf("unknown category type %q", tok)
	}
	return t, nil
}

type PlayersType string

const (
	PlayersExactly PlayersType = "exactly"
	PlayersUpTo    PlayersType = "up-to"
)

var playersTypes = map[string]PlayersType{
	"exactly": PlayersExactly,
	"up-to":   PlayersUpTo,
}

func ParsePlayersType(tok string) (PlayersType, error) {
	t, ok := playersTypes[tok]
	if !ok {
		return "", fmt.Errorf("unknown players type %q", tok)
	}
	return t, nil
}

// RunStatus uses the remote tokens: a freshly submitted run is "new",
// an approved run is "verified".
type RunStatus string

const (
	StatusPending  RunStatus = "new"
	StatusApproved RunStatus = "verified"
	StatusRejected RunStatus = "rejected"
)

var runStatuses = map[string]RunStatus{
	"new":      StatusPending,
	"verified": StatusApproved,
	"rejected": StatusRejected,
}

func ParseRunStatus(tok string) (RunStatus, error) {
	s, ok := runStatuses[tok]
	if !ok {
		return "", fmt.Errorf("unknown run status %q", tok)
	}
	return s, nil
}

type UserRole string

const (
	RoleBanned     UserRole = "banned"
	RoleUser       UserRole = "user"
	RoleTrusted    UserRole = "trusted"
	RoleModerator  UserRole = "moderator"
	RoleAdmin      UserRole = "admin"
	RoleProgrammer UserRole = "programmer"
)

var userRoles = map[string]UserRole{
	"banned":     RoleBanned,
	"user":       RoleUser,
	"trusted":    RoleTrusted,
	"moderator":  RoleModerator,
	"admin":      RoleAdmin,
	"programmer": RoleProgrammer,
}

func ParseUserRole(tok string) (UserRole, error) {
	r, ok := userRoles[tok]
	if !ok {
		return "", fmt.Errorf("unknown user role %q", tok)
	}
	return r, nil
}

// OrderBy values accepted by the runs endpoint. Only used for request
// construction, never decoded, but kept closed all the same.
type OrderBy string

const (
	OrderByGame       OrderBy = "game"
	OrderByCategory   OrderBy = "category"
	OrderByDate       OrderBy = "date"
	OrderBySubmitted  OrderBy = "submitted"
	OrderByStatus     OrderBy = "status"
	OrderByVerifyDate OrderBy = "verify-date"
)

var orderBys = map[string]OrderBy{
	"game":        OrderByGame,
	"category":    OrderByCategory,
	"date":        OrderByDate,
	"submitted":   OrderBySubmitted,
	"status":      OrderByStatus,
	"verify-date": OrderByVerifyDate,
}

func ParseOrderBy(tok string) (OrderBy, error) {
	o, ok := orderBys[tok]
	if !ok {
		return "", fmt.Errorf("unknown order-by field %q", tok)
	}
	return o, nil
}

type Direction string

const (
	DirectionAsc  Direction = "asc"
	DirectionDesc Direction = "desc"
)

var directions = map[string]Direction{
	"asc":  DirectionAsc,
	"desc": DirectionDesc,
}

func ParseDirection(tok string) (Direction, error) {
	d, ok := directions[tok]
	if !ok {
		return "", fmt.Errorf("unknown sort direction %q", tok)
	}
	return d, nil
}
