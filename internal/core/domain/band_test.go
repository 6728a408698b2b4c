package domain_test

import (
	"math"
	"testing"

	"github.com/lorrc/performance-dashboard/internal/core/domain"
	"github.com/stretchr/testify/assert"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		percent float64
		want    domain.Band
	}{
		{100, domain.BandExcellent},
		{90, domain.BandExcellent},
		{89.9, domain.BandGood},
		{70, domain.BandGood},
		{69.9, domain.BandFair},
		{50, domain.BandFair},
		{49.9, domain.BandPoor},
		{0, domain.BandPoor},
		{-5, domain.BandPoor},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, domain.Classify(tt.percent), "percent %v", tt.percent)
	}
}

func TestBand_IsValid(t *testing.T) {
	for _, b := range domain.Bands {
		assert.True(t, b.IsValid())
		assert.NotEmpty(t, b.Color())
		assert.NotEmpty(t, b.Label())
	}
	assert.False(t, domain.Band("all").IsValid())
	assert.False(t, domain.Band("Excellent").IsValid())
}

func TestClampPercent(t *testing.T) {
	assert.Equal(t, 0.0, domain.ClampPercent(-1))
	assert.Equal(t, 100.0, domain.ClampPercent(140))
	assert.Equal(t, 42.5, domain.ClampPercent(42.5))
	assert.Equal(t, 0.0, domain.ClampPercent(math.NaN()))
	assert.Equal(t, 0.0, domain.ClampPercent(math.Inf(1)))
}
