package services_test

import (
	"io"
	"log/slog"
	"time"

	"github.com/lorrc/performance-dashboard/internal/core/domain"
	"github.com/lorrc/performance-dashboard/internal/core/services"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func testOptions() services.Options {
	return services.Options{
		RequestTimeout:  time.Second,
		TopKPIs:         10,
		ResizeDebounce:  20 * time.Millisecond,
		LibraryRetries:  3,
		LibraryInterval: 5 * time.Millisecond,
	}
}

func sampleSnapshot() *domain.Snapshot {
	return &domain.Snapshot{
		Summary: domain.Summary{
			TotalGoals:         4,
			TotalKPIs:          52,
			AvgPerformance:     72.5,
			KPIOnlyPerformance: 68,
			AvgKRAPerformance:  74,
		},
		Distribution: domain.Distribution{Excellent: 10, Good: 20, Fair: 15, Poor: 5},
		GoalsPerformance: []domain.GoalPerformance{
			{Name: "Service Delivery", Performance: 91, Target: 85},
			{Name: "Revenue", Performance: 64},
		},
		TopKPIs: []domain.TopKPI{
			{Name: "Collections", Performance: 97, KRA: "Revenue"},
			{Name: "Roads paved", Performance: 73},
		},
		DirectorateContributions: []domain.DirectorateContribution{
			{Name: "Finance", KPIAchievement: 80, ProgrammeProgress: 60},
		},
	}
}

func sampleTable() *domain.NavigationTable {
	return &domain.NavigationTable{Destinations: []domain.Destination{
		{
			Action: "robust_pmis.action_key_performance_indicator",
			BandKeys: map[domain.Band][]string{
				domain.BandExcellent: {"search_default_achieved"},
				domain.BandGood:      {"search_default_on_track"},
			},
			Static:    map[string]any{"search_default_group_by_status": 1},
			EntityKey: "search_default_directorate_id",
		},
	}}
}
