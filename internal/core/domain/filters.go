package domain

import (
	"strconv"
	"strings"

	apperrors "github.com/lorrc/performance-dashboard/internal/core/errors"
)

// AllValue is the selector value meaning "no restriction".
const AllValue = "all"

// DataType narrows the dashboard to one family of indicators.
type DataType string

const (
	DataTypeAll       DataType = "all"
	DataTypeStrategic DataType = "strategic"
	DataTypeProgramme DataType = "programme"
)

func (d DataType) IsValid() bool {
	switch d {
	case DataTypeAll, DataTypeStrategic, DataTypeProgramme:
		return true
	}
	return false
}

// Scope is the organisational level the entity selector operates on.
type Scope string

const (
	ScopeOrganization       Scope = "organization"
	ScopeStrategicGoal      Scope = "strategic_goal"
	ScopeStrategicObjective Scope = "strategic_objective"
	ScopeProgramme          Scope = "programme"
	ScopeDirectorate        Scope = "directorate"
	ScopeDivision           Scope = "division"
)

type scopeSource struct {
	model    string
	allLabel string
}

var scopeSources = map[Scope]scopeSource{
	ScopeStrategicGoal:      {model: "strategic.goal", allLabel: "All Goals"},
	ScopeStrategicObjective: {model: "strategic.objective", allLabel: "All Objectives"},
	ScopeProgramme:          {model: "kcca.programme", allLabel: "All Programmes"},
	ScopeDirectorate:        {model: "kcca.directorate", allLabel: "All Directorates"},
	ScopeDivision:           {model: "kcca.division", allLabel: "All Divisions"},
}

func (s Scope) IsValid() bool {
	if s == ScopeOrganization {
		return true
	}
	_, ok := scopeSources[s]
	return ok
}

// Model returns the backend model holding the scope's entities. The
// organisation scope has none.
func (s Scope) Model() (string, bool) {
	src, ok := scopeSources[s]
	return src.model, ok
}

// AllLabel is the label of the first entity option.
func (s Scope) AllLabel() string {
	if src, ok := scopeSources[s]; ok {
		return src.allLabel
	}
	return "All"
}

// LookupModels lists every model an entity lookup may touch.
func LookupModels() []string {
	models := make([]string, 0, len(scopeSources))
	for _, s := range []Scope{ScopeStrategicGoal, ScopeStrategicObjective, ScopeProgramme, ScopeDirectorate, ScopeDivision} {
		models = append(models, scopeSources[s].model)
	}
	return models
}

// Filters is the user's current selection.
type Filters struct {
	DataType    DataType `json:"data_type"`
	Scope       Scope    `json:"scope"`
	Entity      string   `json:"entity"`
	Performance string   `json:"performance"`
	Period      string   `json:"period,omitempty"`
}

// DefaultFilters returns the selection of a freshly mounted view.
func DefaultFilters() Filters {
	return Filters{
		DataType:    DataTypeAll,
		Scope:       ScopeOrganization,
		Entity:      AllValue,
		Performance: AllValue,
	}
}

// WithDefaults fills empty fields and drops the "all" period.
func (f Filters) WithDefaults() Filters {
	f.Entity = strings.TrimSpace(f.Entity)
	f.Performance = strings.TrimSpace(f.Performance)
	f.Period = strings.TrimSpace(f.Period)

	if f.DataType == "" {
		f.DataType = DataTypeAll
	}
	if f.Scope == "" {
		f.Scope = ScopeOrganization
	}
	if f.Entity == "" {
		f.Entity = AllValue
	}
	if f.Performance == "" {
		f.Performance = AllValue
	}
	if f.Period == AllValue {
		f.Period = ""
	}
	return f
}

// Validate checks every selector against its allowed values.
func (f Filters) Validate() error {
	errs := apperrors.NewValidationErrors()

	if !f.DataType.IsValid() {
		errs.Add("data_type", "must be one of all, strategic, programme")
	}
	if !f.Scope.IsValid() {
		errs.Add("scope", "unknown scope")
	}
	if f.Entity != AllValue {
		if _, err := strconv.ParseInt(f.Entity, 10, 64); err != nil {
			errs.Add("entity", "must be 'all' or a record id")
		}
	}
	if f.Performance != AllValue && !Band(f.Performance).IsValid() {
		errs.Add("performance", "must be one of all, excellent, good, fair, poor")
	}

	if errs.HasErrors() {
		return errs
	}
	return nil
}

// EntityID returns the selected record id, if any.
func (f Filters) EntityID() (int64, bool) {
	if f.Entity == "" || f.Entity == AllValue {
		return 0, false
	}
	id, err := strconv.ParseInt(f.Entity, 10, 64)
	if err != nil {
		return 0, false
	}
	return id, true
}

// Band returns the selected performance band, if any.
func (f Filters) Band() (Band, bool) {
	b := Band(f.Performance)
	return b, b.IsValid()
}

// Params renders the filters as the metrics backend expects them: the period
// key is null when every period is selected.
func (f Filters) Params() map[string]any {
	var period any
	if f.Period != "" {
		period = f.Period
	}
	return map[string]any{
		"data_type":   string(f.DataType),
		"scope":       string(f.Scope),
		"entity":      f.Entity,
		"performance": f.Performance,
		"period":      period,
	}
}
