package services

import (
	"bytes"
	"fmt"
	"html/template"

	"github.com/microcosm-cc/bluemonday"

	"github.com/lorrc/performance-dashboard/internal/core/domain"
)

// TopPerformersLimit is how many KPIs the top performers list shows.
const TopPerformersLimit = 6

const emptyTopPerformers = `<div class="no-data">No KPI data available.</div>`

var topPerformersTmpl = template.Must(template.New("top").Parse(
	`{{range .}}<div class="performer-item">` +
		`<div class="performer-info"><span class="performer-name">{{.Name}}</span>` +
		`{{if .KRA}}<small class="performer-kra">{{.KRA}}</small>{{end}}</div>` +
		`<span class="performer-score score-{{.Band}}">{{.Score}}</span>` +
		`</div>{{end}}`))

// fragmentPolicy admits only the markup the list template emits.
var fragmentPolicy = func() *bluemonday.Policy {
	p := bluemonday.NewPolicy()
	p.AllowElements("div", "span", "small")
	p.AllowAttrs("class").Matching(bluemonday.SpaceSeparatedTokens).OnElements("div", "span", "small")
	return p
}()

type performerRow struct {
	Name  string
	KRA   string
	Band  domain.Band
	Score string
}

// TopPerformersHTML renders the first KPIs as an HTML fragment.
func TopPerformersHTML(kpis []domain.TopKPI) string {
	if len(kpis) == 0 {
		return emptyTopPerformers
	}

	rows := make([]performerRow, 0, min(len(kpis), TopPerformersLimit))
	for _, k := range kpis[:min(len(kpis), TopPerformersLimit)] {
		perf := domain.ClampPercent(k.Performance.Float())
		name := k.Name.String()
		if name == "" {
			name = "Unnamed KPI"
		}
		rows = append(rows, performerRow{
			Name:  name,
			KRA:   k.KRA.String(),
			Band:  domain.Classify(perf),
			Score: fmt.Sprintf("%.1f%%", perf),
		})
	}

	var buf bytes.Buffer
	if err := topPerformersTmpl.Execute(&buf, rows); err != nil {
		return emptyTopPerformers
	}
	return fragmentPolicy.Sanitize(buf.String())
}
