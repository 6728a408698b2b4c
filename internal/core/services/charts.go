package services

import (
	"fmt"
	"math"

	"github.com/lorrc/performance-dashboard/internal/core/domain"
)

const (
	gaugeTrackColor = "#e9edf5"
	targetLineColor = "#f5576c"
)

var (
	trendLabels  = []string{"Jan", "Feb", "Mar", "Apr", "May", "Jun"}
	trendOffsets = []float64{-10, -6, -4, -2, -1, 0}
	trendTargets = []float64{70, 75, 80, 85, 88, 90}

	gaugeColors = map[string]string{
		domain.CanvasGaugeOverall:   "#5b7cfa",
		domain.CanvasGaugeKRA:       "#36d399",
		domain.CanvasGaugeProgramme: "#f6ad55",
		domain.CanvasGaugePortfolio: "#6b3fa0",
	}
)

func boolPtr(b bool) *bool        { return &b }

// round1 keeps one decimal so float noise does not reach the page.
func round1(v float64) float64 { return math.Round(v*10) / 10 }
func floatPtr(f float64) *float64 { return &f }

func percentScale() map[string]any {
	return map[string]any{
		"beginAtZero": true,
		"max":         100,
	}
}

func baseOptions() map[string]any {
	return map[string]any{
		"responsive":          true,
		"maintainAspectRatio": false,
	}
}

// BuildCharts produces the configuration of every chart for a normalised
// snapshot, keyed by canvas id.
func BuildCharts(snap *domain.Snapshot) domain.DashboardCharts {
	return domain.DashboardCharts{
		domain.CanvasOverview:       OverviewChart(snap.GoalsPerformance),
		domain.CanvasTrends:         TrendChart(snap.Summary.AvgPerformance.Float()),
		domain.CanvasDistrib:        DistributionChart(snap.Distribution),
		domain.CanvasDirectorate:    DirectorateChart(snap.DirectorateContributions),
		domain.CanvasDivision:       DivisionChart(snap.DivisionContributions),
		domain.CanvasGaugeOverall:   GaugeChart(domain.CanvasGaugeOverall, snap.Summary.OverallPerformance()),
		domain.CanvasGaugeKRA:       GaugeChart(domain.CanvasGaugeKRA, snap.Summary.AvgKRAPerformance.Float()),
		domain.CanvasGaugeProgramme: GaugeChart(domain.CanvasGaugeProgramme, snap.Summary.AvgProgrammePerformance.Float()),
		domain.CanvasGaugePortfolio: GaugeChart(domain.CanvasGaugePortfolio, snap.Distribution.PortfolioHealth()),
	}
}

// OverviewChart is a horizontal bar per strategic goal, coloured by band,
// with the goal target drawn as a dashed line.
func OverviewChart(goals []domain.GoalPerformance) domain.ChartConfig {
	labels := make([]string, 0, len(goals))
	values := make([]float64, 0, len(goals))
	targets := make([]float64, 0, len(goals))
	colors := make([]string, 0, len(goals))

	for _, g := range goals {
		perf := domain.ClampPercent(g.Performance.Float())
		target := g.Target.Float()
		if target == 0 {
			target = domain.DefaultTarget
		}
		labels = append(labels, g.Name.String())
		values = append(values, perf)
		targets = append(targets, domain.ClampPercent(target))
		colors = append(colors, domain.Classify(perf).Color())
	}

	opts := baseOptions()
	opts["indexAxis"] = "y"
	opts["scales"] = map[string]any{"x": percentScale()}
	opts["plugins"] = map[string]any{"legend": map[string]any{"position": "bottom"}}

	return domain.ChartConfig{
		Type: domain.ChartBar,
		Data: domain.ChartData{
			Labels: labels,
			Datasets: []domain.Dataset{
				{
					Label:           "Performance",
					Data:            values,
					BackgroundColor: colors,
					BorderRadius:    6,
					Order:           2,
				},
				{
					Type:        domain.ChartLine,
					Label:       "Target",
					Data:        targets,
					BorderColor: targetLineColor,
					BorderWidth: 2,
					BorderDash:  []float64{5, 5},
					Fill:        boolPtr(false),
					PointRadius: floatPtr(0),
					Order:       1,
				},
			},
		},
		Options: opts,
	}
}

// TrendChart derives a six month series ending at the current average.
func TrendChart(avg float64) domain.ChartConfig {
	values := make([]float64, len(trendOffsets))
	for i, off := range trendOffsets {
		values[i] = round1(domain.ClampPercent(avg + off))
	}

	targets := make([]float64, len(trendTargets))
	copy(targets, trendTargets)

	opts := baseOptions()
	opts["scales"] = map[string]any{"y": percentScale()}
	opts["plugins"] = map[string]any{"legend": map[string]any{"position": "bottom"}}

	return domain.ChartConfig{
		Type: domain.ChartLine,
		Data: domain.ChartData{
			Labels: append([]string(nil), trendLabels...),
			Datasets: []domain.Dataset{
				{
					Label:           "Performance",
					Data:            values,
					BorderColor:     domain.BandGood.Color(),
					BackgroundColor: "rgba(102, 126, 234, 0.1)",
					Fill:            boolPtr(true),
					Tension:         0.4,
				},
				{
					Label:       "Target",
					Data:        targets,
					BorderColor: targetLineColor,
					BorderDash:  []float64{5, 5},
					Fill:        boolPtr(false),
					Tension:     0.4,
				},
			},
		},
		Options: opts,
	}
}

// DistributionChart is a doughnut of the band counts.
func DistributionChart(d domain.Distribution) domain.ChartConfig {
	labels := make([]string, 0, len(domain.Bands))
	values := make([]float64, 0, len(domain.Bands))
	colors := make([]string, 0, len(domain.Bands))
	for _, b := range domain.Bands {
		labels = append(labels, b.Label())
		values = append(values, d.Count(b))
		colors = append(colors, b.Color())
	}

	opts := baseOptions()
	opts["cutout"] = "65%"
	opts["plugins"] = map[string]any{"legend": map[string]any{"position": "bottom"}}

	return domain.ChartConfig{
		Type: domain.ChartDoughnut,
		Data: domain.ChartData{
			Labels: labels,
			Datasets: []domain.Dataset{{
				Data:            values,
				BackgroundColor: colors,
				BorderWidth:     2,
			}},
		},
		Options: opts,
	}
}

// DirectorateChart groups KPI achievement and programme progress for the
// first directorates.
func DirectorateChart(rows []domain.DirectorateContribution) domain.ChartConfig {
	rows = rows[:min(len(rows), domain.MaxContributions)]

	labels := make([]string, 0, len(rows))
	kpi := make([]float64, 0, len(rows))
	prog := make([]float64, 0, len(rows))
	for _, r := range rows {
		labels = append(labels, r.Name.String())
		kpi = append(kpi, domain.ClampPercent(r.KPIAchievement.Float()))
		prog = append(prog, domain.ClampPercent(r.ProgrammeProgress.Float()))
	}

	return contributionChart(labels,
		domain.Dataset{Label: "KPI Achievement", Data: kpi, BackgroundColor: domain.BandGood.Color(), BorderRadius: 4},
		domain.Dataset{Label: "Programme Progress", Data: prog, BackgroundColor: domain.BandExcellent.Color(), BorderRadius: 4},
	)
}

// DivisionChart groups programme progress and indicator achievement for the
// first divisions.
func DivisionChart(rows []domain.DivisionContribution) domain.ChartConfig {
	rows = rows[:min(len(rows), domain.MaxContributions)]

	labels := make([]string, 0, len(rows))
	prog := make([]float64, 0, len(rows))
	ind := make([]float64, 0, len(rows))
	for _, r := range rows {
		labels = append(labels, r.Name.String())
		prog = append(prog, domain.ClampPercent(r.ProgrammeProgress.Float()))
		ind = append(ind, domain.ClampPercent(r.IndicatorAchievement.Float()))
	}

	return contributionChart(labels,
		domain.Dataset{Label: "Programme Progress", Data: prog, BackgroundColor: domain.BandExcellent.Color(), BorderRadius: 4},
		domain.Dataset{Label: "Indicator Achievement", Data: ind, BackgroundColor: domain.BandFair.Color(), BorderRadius: 4},
	)
}

func contributionChart(labels []string, datasets ...domain.Dataset) domain.ChartConfig {
	opts := baseOptions()
	opts["scales"] = map[string]any{"y": percentScale()}
	opts["plugins"] = map[string]any{"legend": map[string]any{"position": "bottom"}}

	return domain.ChartConfig{
		Type:    domain.ChartBar,
		Data:    domain.ChartData{Labels: labels, Datasets: datasets},
		Options: opts,
	}
}

// GaugeChart is a half doughnut filled to value percent. The whole percent
// is carried as the centerText plugin label.
func GaugeChart(canvas string, value float64) domain.ChartConfig {
	clamped := domain.ClampPercent(value)
	v := round1(clamped)
	color, ok := gaugeColors[canvas]
	if !ok {
		color = domain.Classify(clamped).Color()
	}

	opts := baseOptions()
	opts["plugins"] = map[string]any{
		"legend":     map[string]any{"display": false},
		"tooltip":    map[string]any{"enabled": false},
		"centerText": map[string]any{"text": GaugeLabel(clamped)},
	}

	return domain.ChartConfig{
		Type: domain.ChartDoughnut,
		Data: domain.ChartData{
			Labels: []string{"Value", "Remaining"},
			Datasets: []domain.Dataset{{
				Data:            []float64{v, round1(100 - v)},
				BackgroundColor: []string{color, gaugeTrackColor},
				BorderWidth:     0,
				Circumference:   180,
				Rotation:        270,
				Cutout:          "70%",
			}},
		},
		Options: opts,
	}
}

// GaugeLabel formats a gauge value the way it is shown in the centre.
func GaugeLabel(value float64) string {
	return fmt.Sprintf("%d%%", int(math.Round(domain.ClampPercent(value))))
}
