package domain

// Settings is the user's current view configuration. A pure value type:
// the store persists and streams it, the services read it to build request
// parameters, and nothing mutates it outside the store's transactional
// write.
type Settings struct {
	SelectedGameID     string
	SelectedCategoryID string
	RunStatus          RunStatus
	VariableFilters    []VariableValue
	OneRunPerPlayer    bool
	OrderBy            OrderBy
	Direction          Direction
}

// DefaultSettings mirrors the row the first migration seeds.
func DefaultSettings() Settings {
	return Settings{
		RunStatus: StatusApproved,
		OrderBy:   OrderByDate,
		Direction: DirectionAsc,
	}
}

// FilterValue returns the selected value id for a variable, if any.
func (s Settings) FilterValue(variableID string) (string, bool) {
	for _, vv := range s.VariableFilters {
		if vv.VariableID == variableID {
			return vv.ValueID, true
		}
	}
	return "", false
}

// Equal reports whether two settings describe the same view. Filter order
// is not significant.
func (s Settings) Equal(o Settings) bool {
	if s.SelectedGameID != o.SelectedGameID ||
		s.SelectedCategoryID != o.SelectedCategoryID ||
		s.RunStatus != o.RunStatus ||
		s.OneRunPerPlayer != o.OneRunPerPlayer ||
		s.OrderBy != o.OrderBy ||
		s.Direction != o.Direction ||
		len(s.VariableFilters) != len(o.VariableFilters) {
		return false
	}
	for _, vv := range s.VariableFilters {
		got, ok := o.FilterValue(vv.VariableID)
		if !ok || got != vv.ValueID {
			return false
		}
	}
	return true
}

// NormalizeFilters drops duplicate variable ids, keeping the first
// occurrence, so a settings value never selects two values for one
// variable.
func (s Settings) NormalizeFilters() Settings {
	if len(s.VariableFilters) == 0 {
		return s
	}
	seen := make(map[string]struct{}, len(s.VariableFilters))
	out := make([]VariableValue, 0, len(s.VariableFilters))
	for _, vv := range s.VariableFilters {
		if _, dup := seen[vv.VariableID]; dup {
			continue
		}
		seen[vv.VariableID] = struct{}{}
		out = append(out, vv)
	}
	s.VariableFilters = out
	return s
}
