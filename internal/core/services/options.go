package services

import (
	"time"

	"github.com/lorrc/performance-dashboard/internal/core/domain"
)

// Options tunes the dashboard controllers built by DashboardService.
type Options struct {
	RequestTimeout  time.Duration
	TopKPIs         int
	AutoRefresh     time.Duration // zero disables periodic summary refresh
	ResizeDebounce  time.Duration
	LibraryRetries  int
	LibraryInterval time.Duration
}

// DefaultOptions returns the settings used when configuration is silent.
func DefaultOptions() Options {
	return Options{
		RequestTimeout:  10 * time.Second,
		TopKPIs:         domain.DefaultTopKPIs,
		ResizeDebounce:  200 * time.Millisecond,
		LibraryRetries:  20,
		LibraryInterval: 250 * time.Millisecond,
	}
}

func (o Options) withDefaults() Options {
	d := DefaultOptions()
	if o.RequestTimeout <= 0 {
		o.RequestTimeout = d.RequestTimeout
	}
	if o.TopKPIs <= 0 {
		o.TopKPIs = d.TopKPIs
	}
	if o.ResizeDebounce <= 0 {
		o.ResizeDebounce = d.ResizeDebounce
	}
	if o.LibraryRetries < 0 {
		o.LibraryRetries = 0
	}
	if o.LibraryInterval <= 0 {
		o.LibraryInterval = d.LibraryInterval
	}
	if o.AutoRefresh < 0 {
		o.AutoRefresh = 0
	}
	return o
}
