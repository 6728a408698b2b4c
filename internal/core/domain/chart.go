package domain

import "github.com/google/uuid"

// ChartType names a chart kind understood by the host's chart library.
type ChartType string

const (
	ChartBar      ChartType = "bar"
	ChartLine     ChartType = "line"
	ChartDoughnut ChartType = "doughnut"
)

// ChartConfig is a declarative chart description the host hands to its chart
// library unchanged.
type ChartConfig struct {
	Type    ChartType      `json:"type"`
	Data    ChartData      `json:"data"`
	Options map[string]any `json:"options,omitempty"`
}

type ChartData struct {
	Labels   []string  `json:"labels"`
	Datasets []Dataset `json:"datasets"`
}

type Dataset struct {
	Type            ChartType `json:"type,omitempty"`
	Label           string    `json:"label,omitempty"`
	Data            []float64 `json:"data"`
	BackgroundColor any       `json:"backgroundColor,omitempty"`
	BorderColor     any       `json:"borderColor,omitempty"`
	BorderWidth     float64   `json:"borderWidth,omitempty"`
	BorderDash      []float64 `json:"borderDash,omitempty"`
	Fill            *bool     `json:"fill,omitempty"`
	Tension         float64   `json:"tension,omitempty"`
	PointRadius     *float64  `json:"pointRadius,omitempty"`
	BorderRadius    float64   `json:"borderRadius,omitempty"`
	Cutout          string    `json:"cutout,omitempty"`
	Circumference   float64   `json:"circumference,omitempty"`
	Rotation        float64   `json:"rotation,omitempty"`
	Order           int       `json:"order,omitempty"`
}

// ChartInstance is one chart bound to a canvas on the host page.
type ChartInstance struct {
	ID     uuid.UUID   `json:"id"`
	Canvas string      `json:"canvas"`
	Config ChartConfig `json:"config"`
}

// DashboardCharts is the full set of configurations produced for a snapshot,
// keyed by canvas id.
type DashboardCharts map[string]ChartConfig
