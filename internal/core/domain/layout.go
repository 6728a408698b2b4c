package domain

// Element ids of the host template.
const (
	CanvasOverview       = "performanceOverviewChart"
	CanvasTrends         = "trendsChart"
	CanvasDistrib        = "distributionChart"
	CanvasDirectorate    = "directorateContribChart"
	CanvasDivision       = "divisionContribChart"
	CanvasGaugeOverall   = "gaugeOverall"
	CanvasGaugeKRA       = "gaugeKRA"
	CanvasGaugeProgramme = "gaugeProgramme"
	CanvasGaugePortfolio = "gaugePortfolio"

	ElementTopPerformers   = "topPerformersList"
	ElementPerformanceFill = "performance-fill"
	ElementPerformanceText = "performance-text"

	ControlDataType    = "filter-data-type"
	ControlScope       = "filter-scope"
	ControlEntity      = "filter-entity"
	ControlPerformance = "filter-performance"
	ControlPeriod      = "filter-period"
)

// ResizableCanvases are re-laid out on window resize.
var ResizableCanvases = []string{CanvasOverview, CanvasTrends, CanvasDistrib}

// HostLayout is the set of element ids a mounted page declared.
type HostLayout map[string]struct{}

// NewHostLayout builds a layout from the ids sent at mount.
func NewHostLayout(ids []string) HostLayout {
	l := make(HostLayout, len(ids))
	for _, id := range ids {
		if id != "" {
			l[id] = struct{}{}
		}
	}
	return l
}

// FullLayout declares every element the controller knows about.
func FullLayout() HostLayout {
	ids := []string{
		CanvasOverview, CanvasTrends, CanvasDistrib, CanvasDirectorate, CanvasDivision,
		CanvasGaugeOverall, CanvasGaugeKRA, CanvasGaugeProgramme, CanvasGaugePortfolio,
		ElementTopPerformers, ElementPerformanceFill, ElementPerformanceText,
		ControlDataType, ControlScope, ControlEntity, ControlPerformance, ControlPeriod,
	}
	for key := range (Summary{}).Counters() {
		ids = append(ids, key)
	}
	return NewHostLayout(ids)
}

// Has reports whether the page provides the element.
func (l HostLayout) Has(id string) bool {
	_, ok := l[id]
	return ok
}
