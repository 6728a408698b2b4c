package services_test

import (
	"context"
	"testing"

	"github.com/lorrc/performance-dashboard/internal/core/domain"
	apperrors "github.com/lorrc/performance-dashboard/internal/core/errors"
	"github.com/lorrc/performance-dashboard/internal/core/mocks"
	"github.com/lorrc/performance-dashboard/internal/core/services"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// liveByCanvas counts mounts minus destroys per canvas.
func liveByCanvas(host *mocks.FakeHost) map[string]int {
	live := map[string]int{}
	for _, e := range host.Events() {
		switch p := e.Payload.(type) {
		case domain.ChartMountPayload:
			live[p.Canvas]++
		case domain.ChartRefPayload:
			if e.Type == domain.EventChartDestroy {
				live[p.Canvas]--
			}
		}
	}
	return live
}

func TestChartRenderer_RenderTwiceKeepsOneChartPerCanvas(t *testing.T) {
	host := mocks.NewFakeHost(domain.FullLayout())
	r := services.NewChartRenderer(host, host, testOptions(), testLogger())
	snap := sampleSnapshot().Normalize(0)

	r.Render(snap)
	r.Render(snap)

	assert.Equal(t, 9, r.LiveCount())
	for canvas, n := range liveByCanvas(host) {
		assert.Equal(t, 1, n, "canvas %s", canvas)
	}
	assert.Len(t, host.EventsOf(domain.EventChartDestroy), 9)
}

func TestChartRenderer_SkipsMissingElements(t *testing.T) {
	host := mocks.NewFakeHost(domain.NewHostLayout([]string{domain.CanvasTrends, "total_kpis"}))
	r := services.NewChartRenderer(host, host, testOptions(), testLogger())

	r.Render(sampleSnapshot().Normalize(0))

	assert.Equal(t, 1, r.LiveCount())
	_, ok := r.Chart(domain.CanvasTrends)
	assert.True(t, ok)
	assert.Empty(t, host.EventsOf(domain.EventSetHTML))
	assert.Empty(t, host.EventsOf(domain.EventSetProgress))

	texts := host.EventsOf(domain.EventSetText)
	require.Len(t, texts, 1)
	assert.Equal(t, domain.ContentPayload{Element: "total_kpis", Content: "52"}, texts[0].Payload)
}

func TestChartRenderer_SummaryAndProgress(t *testing.T) {
	host := mocks.NewFakeHost(domain.FullLayout())
	r := services.NewChartRenderer(host, host, testOptions(), testLogger())

	r.RenderSummary(domain.Summary{AvgPerformance: 72.5})

	progress := host.EventsOf(domain.EventSetProgress)
	require.Len(t, progress, 1)
	assert.Equal(t, domain.ProgressPayload{Element: domain.ElementPerformanceFill, Percent: 72.5, Band: domain.BandGood}, progress[0].Payload)
	assert.Contains(t, host.EventsOf(domain.EventSetText), domain.Event{
		Type:    domain.EventSetText,
		Payload: domain.ContentPayload{Element: domain.ElementPerformanceText, Content: "72.5%"},
	})
}

func TestChartRenderer_ResizeOnlyResizable(t *testing.T) {
	host := mocks.NewFakeHost(domain.FullLayout())
	r := services.NewChartRenderer(host, host, testOptions(), testLogger())
	r.Render(sampleSnapshot().Normalize(0))

	r.Resize()

	resized := host.EventsOf(domain.EventChartResize)
	require.Len(t, resized, len(domain.ResizableCanvases))
	for _, e := range resized {
		assert.Contains(t, domain.ResizableCanvases, e.Payload.(domain.ChartRefPayload).Canvas)
	}
}

func TestChartRenderer_DestroyAll(t *testing.T) {
	host := mocks.NewFakeHost(domain.FullLayout())
	r := services.NewChartRenderer(host, host, testOptions(), testLogger())
	r.Render(sampleSnapshot().Normalize(0))

	r.DestroyAll()
	r.DestroyAll()

	assert.Equal(t, 0, r.LiveCount())
	assert.Empty(t, host.LiveCharts())
	assert.Len(t, host.EventsOf(domain.EventChartDestroy), 9)
}

func TestChartRenderer_EnsureLibrary(t *testing.T) {
	ctx := context.Background()

	t.Run("ready immediately", func(t *testing.T) {
		host := mocks.NewFakeHost(domain.FullLayout())
		r := services.NewChartRenderer(host, host, testOptions(), testLogger())
		assert.NoError(t, r.EnsureLibrary(ctx))
	})

	t.Run("gives up after bounded retries", func(t *testing.T) {
		host := mocks.NewFakeHost(domain.FullLayout())
		host.SetReady(false)
		r := services.NewChartRenderer(host, host, testOptions(), testLogger())

		err := r.EnsureLibrary(ctx)
		assert.ErrorIs(t, err, apperrors.ErrChartLibraryUnavailable)

		snap := r.Prepare(ctx, sampleSnapshot().Normalize(0))
		assert.True(t, snap.Placeholder)
	})

	t.Run("picks up a late library", func(t *testing.T) {
		host := mocks.NewFakeHost(domain.FullLayout())
		host.SetReady(false)
		opts := testOptions()
		opts.LibraryRetries = 50
		r := services.NewChartRenderer(host, host, opts, testLogger())

		go host.SetReady(true)

		assert.NoError(t, r.EnsureLibrary(ctx))
	})
}
