package domain

import (
	"encoding/json"
	"fmt"
	"math"
	"time"

	apperrors "github.com/lorrc/performance-dashboard/internal/core/errors"
)

const (
	// DefaultTarget is used for goals that carry no target percentage.
	DefaultTarget = 100.0
	// DefaultTopKPIs caps the top performers list when the caller sets no limit.
	DefaultTopKPIs = 10
	// MaxContributions caps the directorate and division charts.
	MaxContributions = 10
)

// Summary holds the headline counters and averages of a snapshot.
type Summary struct {
	TotalGoals          Number `json:"total_goals"`
	TotalStrategicGoals Number `json:"total_strategic_goals"`
	TotalKRAs           Number `json:"total_kras"`
	TotalKPIs           Number `json:"total_kpis"`
	TotalProgrammes     Number `json:"total_programmes"`
	TotalDirectorates   Number `json:"total_directorates"`
	TotalDivisions      Number `json:"total_divisions"`
	FilteredKPIs        Number `json:"filtered_kpis"`

	AvgPerformance            Number `json:"avg_performance"`
	AvgKPIPerformance         Number `json:"avg_kpi_performance"`
	KPIOnlyPerformance        Number `json:"kpi_only_performance"`
	AvgKRAPerformance         Number `json:"avg_kra_performance"`
	AvgProgrammePerformance   Number `json:"avg_programme_performance"`
	AvgDirectoratePerformance Number `json:"avg_directorate_performance"`
	AvgDivisionPerformance    Number `json:"avg_division_performance"`
}

// Counters returns the count fields keyed by their wire name. Metric cards
// on the host page use the same names as element ids.
func (s Summary) Counters() map[string]float64 {
	return map[string]float64{
		"total_goals":           s.TotalGoals.Float(),
		"total_strategic_goals": s.TotalStrategicGoals.Float(),
		"total_kras":            s.TotalKRAs.Float(),
		"total_kpis":            s.TotalKPIs.Float(),
		"total_programmes":      s.TotalProgrammes.Float(),
		"total_directorates":    s.TotalDirectorates.Float(),
		"total_divisions":       s.TotalDivisions.Float(),
		"filtered_kpis":         s.FilteredKPIs.Float(),
	}
}

// OverallPerformance prefers the KPI-only average and falls back to the
// broader averages when it is zero.
func (s Summary) OverallPerformance() float64 {
	for _, v := range []Number{s.KPIOnlyPerformance, s.AvgKPIPerformance, s.AvgPerformance} {
		if v != 0 {
			return v.Float()
		}
	}
	return 0
}

func (s Summary) normalize() Summary {
	out := s
	for _, p := range []*Number{
		&out.TotalGoals, &out.TotalStrategicGoals, &out.TotalKRAs, &out.TotalKPIs,
		&out.TotalProgrammes, &out.TotalDirectorates, &out.TotalDivisions, &out.FilteredKPIs,
	} {
		*p = Number(math.Max(0, p.Float()))
	}
	for _, p := range []*Number{
		&out.AvgPerformance, &out.AvgKPIPerformance, &out.KPIOnlyPerformance,
		&out.AvgKRAPerformance, &out.AvgProgrammePerformance,
		&out.AvgDirectoratePerformance, &out.AvgDivisionPerformance,
	} {
		*p = p.Percent()
	}
	return out
}

// Distribution counts classified items per band.
type Distribution struct {
	Excellent Number `json:"excellent"`
	Good      Number `json:"good"`
	Fair      Number `json:"fair"`
	Poor      Number `json:"poor"`
}

// Total is the number of classified items.
func (d Distribution) Total() float64 {
	return d.Excellent.Float() + d.Good.Float() + d.Fair.Float() + d.Poor.Float()
}

// Count returns the count for a band.
func (d Distribution) Count(b Band) float64 {
	switch b {
	case BandExcellent:
		return d.Excellent.Float()
	case BandGood:
		return d.Good.Float()
	case BandFair:
		return d.Fair.Float()
	case BandPoor:
		return d.Poor.Float()
	}
	return 0
}

// PortfolioHealth is the share of items rated good or better, rounded.
func (d Distribution) PortfolioHealth() float64 {
	total := d.Total()
	if total == 0 {
		return 0
	}
	return math.Round((d.Excellent.Float() + d.Good.Float()) / total * 100)
}

// GoalPerformance is one strategic goal row.
type GoalPerformance struct {
	Name        Text   `json:"name"`
	Performance Number `json:"performance"`
	Target      Number `json:"target"`
	KPICount    Number `json:"kpi_count"`
}

// KRAPerformance is one key result area row.
type KRAPerformance struct {
	Name               Text   `json:"name"`
	Performance        Number `json:"performance"`
	KPICount           Number `json:"kpi_count"`
	StrategicObjective Text   `json:"strategic_objective"`
}

// TopKPI is one entry of the top performers list.
type TopKPI struct {
	Name        Text   `json:"name"`
	Performance Number `json:"performance"`
	KRA         Text   `json:"kra"`
	Target      Number `json:"target"`
	Current     Number `json:"current"`
	Type        Text   `json:"type"`
}

// DirectorateContribution is one bar group of the directorate chart.
type DirectorateContribution struct {
	Name              Text   `json:"name"`
	KPIAchievement    Number `json:"kpi_achievement"`
	ProgrammeProgress Number `json:"programme_progress"`
}

// DivisionContribution is one bar group of the division chart.
type DivisionContribution struct {
	Name                 Text   `json:"name"`
	ProgrammeProgress    Number `json:"programme_progress"`
	IndicatorAchievement Number `json:"indicator_achievement"`
}

// Snapshot is one dashboard payload. A refresh replaces it wholesale.
type Snapshot struct {
	Summary                  Summary                   `json:"summary"`
	Distribution             Distribution              `json:"distribution"`
	GoalsPerformance         []GoalPerformance         `json:"goals_performance"`
	KRAsPerformance          []KRAPerformance          `json:"kras_performance"`
	TopKPIs                  []TopKPI                  `json:"top_kpis"`
	DirectorateContributions []DirectorateContribution `json:"directorate_contributions"`
	DivisionContributions    []DivisionContribution    `json:"division_contributions"`

	Placeholder bool      `json:"placeholder"`
	ReceivedAt  time.Time `json:"received_at"`
}

// DecodeSnapshot parses a backend payload. Only structurally broken JSON is
// an error; absent or mistyped fields decode to their zero values.
func DecodeSnapshot(data []byte) (*Snapshot, error) {
	if len(data) == 0 || string(data) == "null" {
		return nil, apperrors.ErrMalformedSnapshot
	}

	var snap Snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return nil, fmt.Errorf("%w: %v", apperrors.ErrMalformedSnapshot, err)
	}
	return &snap, nil
}

// Normalize returns a copy with percentages clamped, goal targets defaulted,
// nil lists replaced by empty ones and top KPIs capped to topN.
func (s *Snapshot) Normalize(topN int) *Snapshot {
	if topN <= 0 {
		topN = DefaultTopKPIs
	}

	out := &Snapshot{
		Summary: s.Summary.normalize(),
		Distribution: Distribution{
			Excellent: Number(math.Max(0, s.Distribution.Excellent.Float())),
			Good:      Number(math.Max(0, s.Distribution.Good.Float())),
			Fair:      Number(math.Max(0, s.Distribution.Fair.Float())),
			Poor:      Number(math.Max(0, s.Distribution.Poor.Float())),
		},
		GoalsPerformance:         make([]GoalPerformance, 0, len(s.GoalsPerformance)),
		KRAsPerformance:          make([]KRAPerformance, 0, len(s.KRAsPerformance)),
		TopKPIs:                  make([]TopKPI, 0, min(len(s.TopKPIs), topN)),
		DirectorateContributions: make([]DirectorateContribution, 0, len(s.DirectorateContributions)),
		DivisionContributions:    make([]DivisionContribution, 0, len(s.DivisionContributions)),
		Placeholder:              s.Placeholder,
		ReceivedAt:               s.ReceivedAt,
	}

	for _, g := range s.GoalsPerformance {
		if g.Target == 0 {
			g.Target = DefaultTarget
		}
		g.Performance = g.Performance.Percent()
		g.Target = g.Target.Percent()
		out.GoalsPerformance = append(out.GoalsPerformance, g)
	}

	for _, k := range s.KRAsPerformance {
		k.Performance = k.Performance.Percent()
		out.KRAsPerformance = append(out.KRAsPerformance, k)
	}

	for i, k := range s.TopKPIs {
		if i >= topN {
			break
		}
		k.Performance = k.Performance.Percent()
		out.TopKPIs = append(out.TopKPIs, k)
	}

	for _, d := range s.DirectorateContributions {
		d.KPIAchievement = d.KPIAchievement.Percent()
		d.ProgrammeProgress = d.ProgrammeProgress.Percent()
		out.DirectorateContributions = append(out.DirectorateContributions, d)
	}

	for _, d := range s.DivisionContributions {
		d.ProgrammeProgress = d.ProgrammeProgress.Percent()
		d.IndicatorAchievement = d.IndicatorAchievement.Percent()
		out.DivisionContributions = append(out.DivisionContributions, d)
	}

	return out
}

// PlaceholderSnapshot is shown when the backend cannot be reached so the
// view never renders empty charts.
func PlaceholderSnapshot() *Snapshot {
	return &Snapshot{
		Summary: Summary{
			TotalGoals:          5,
			TotalStrategicGoals: 5,
			TotalKRAs:           37,
			TotalKPIs:           108,
			TotalProgrammes:     19,
			TotalDirectorates:   19,
			TotalDivisions:      10,
			AvgPerformance:      75,
		},
		Distribution: Distribution{
			Excellent: 40,
			Good:      35,
			Fair:      20,
			Poor:      5,
		},
		GoalsPerformance:         []GoalPerformance{},
		KRAsPerformance:          []KRAPerformance{},
		TopKPIs:                  []TopKPI{},
		DirectorateContributions: []DirectorateContribution{},
		DivisionContributions:    []DivisionContribution{},
		Placeholder:              true,
		ReceivedAt:               time.Now().UTC(),
	}
}
