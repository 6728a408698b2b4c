package domain

import (
	"fmt"

	apperrors "github.com/lorrc/performance-dashboard/internal/core/errors"
)

// ActiveContextKey is set on every navigation so lists open on active rows.
const ActiveContextKey = "search_default_active"

// NavigationRequest asks the host to open another view.
type NavigationRequest struct {
	Action  string         `json:"action"`
	Context map[string]any `json:"context"`
}

// Destination describes how a metric card translates the current filters
// into default filters of the view it opens.
type Destination struct {
	Action       string            `yaml:"action" json:"action"`
	BandKeys     map[Band][]string `yaml:"band_keys" json:"band_keys,omitempty"`
	Static       map[string]any    `yaml:"static" json:"static,omitempty"`
	EntityKey    string            `yaml:"entity_key" json:"entity_key,omitempty"`
	EntityScopes []Scope           `yaml:"entity_scopes" json:"entity_scopes,omitempty"`
}

func (d Destination) scopesEntity(s Scope) bool {
	scopes := d.EntityScopes
	if len(scopes) == 0 {
		scopes = []Scope{ScopeDirectorate}
	}
	for _, candidate := range scopes {
		if candidate == s {
			return true
		}
	}
	return false
}

// NavigationTable is the fixed set of destinations metric cards can open.
type NavigationTable struct {
	Destinations []Destination `yaml:"destinations"`
}

// Validate rejects empty or duplicate actions and unknown bands or scopes.
func (t *NavigationTable) Validate() error {
	seen := make(map[string]struct{}, len(t.Destinations))
	for i, d := range t.Destinations {
		if d.Action == "" {
			return fmt.Errorf("destination %d: action is required", i)
		}
		if _, dup := seen[d.Action]; dup {
			return fmt.Errorf("destination %q declared twice", d.Action)
		}
		seen[d.Action] = struct{}{}

		for b := range d.BandKeys {
			if !b.IsValid() {
				return fmt.Errorf("destination %q: unknown band %q", d.Action, b)
			}
		}
		for _, s := range d.EntityScopes {
			if !s.IsValid() {
				return fmt.Errorf("destination %q: %w %q", d.Action, apperrors.ErrUnknownScope, s)
			}
		}
	}
	return nil
}

// Lookup finds a destination by action.
func (t *NavigationTable) Lookup(action string) (Destination, bool) {
	for _, d := range t.Destinations {
		if d.Action == action {
			return d, true
		}
	}
	return Destination{}, false
}

// Resolve builds the navigation request for a card click under the given
// filters. Unknown actions are rejected.
func (t *NavigationTable) Resolve(action string, f Filters) (NavigationRequest, error) {
	dest, ok := t.Lookup(action)
	if !ok {
		return NavigationRequest{}, fmt.Errorf("%w: %s", apperrors.ErrUnknownDestination, action)
	}

	ctx := map[string]any{ActiveContextKey: 1}
	for k, v := range dest.Static {
		ctx[k] = v
	}

	if band, ok := f.Band(); ok {
		for _, key := range dest.BandKeys[band] {
			ctx[key] = 1
		}
	}

	if id, ok := f.EntityID(); ok && dest.EntityKey != "" && dest.scopesEntity(f.Scope) {
		ctx[dest.EntityKey] = id
	}

	return NavigationRequest{Action: dest.Action, Context: ctx}, nil
}
