package harness

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mwiater/gollamabench/internal/judge"
)

func rated(model string, first, total float64, chars, rating int) Result {
	return Result{
		Model:             model,
		TestName:          "t",
		FirstTokenLatency: first,
		TotalLatency:      total,
		ResponseChars:     chars,
		Succeeded:         true,
		Judge:             &judge.Verdict{Model: "j", Rating: rating},
	}
}

func TestSummarize_MeansExcludeZeroRatings(t *testing.T) {
	results := []Result{
		rated("m1", 0.1, 1.0, 10, 4),
		rated("m1", 0.2, 2.0, 20, 0),
		rated("m1", 0.3, 3.0, 30, 5),
		{Model: "m1", TestName: "t", TotalLatency: 60, Succeeded: false, Error: "boom", ErrorKind: "timeout"},
	}

	s := Summarize(results)
	require.Len(t, s.Models, 1)
	m := s.Models[0]
	assert.Equal(t, "m1", m.Model)
	assert.Equal(t, 4, m.Attempted)
	assert.Equal(t, 3, m.Succeeded)
	assert.InDelta(t, 2.0, m.MeanTotal, 1e-9)
	assert.InDelta(t, 0.2, m.MeanFirstToken, 1e-9)
	assert.InDelta(t, 20.0, m.MeanChars, 1e-9)
	assert.InDelta(t, 2.0, m.TotalP50, 1e-9)
	assert.Equal(t, 2, m.Rated)
	assert.InDelta(t, 4.5, m.MeanRating, 1e-9)
	assert.Equal(t, "4.50", m.RatingText())
}

func TestSummarize_FirstAppearanceOrder(t *testing.T) {
	results := []Result{
		rated("zeta", 1, 1, 1, 0),
		rated("alpha", 1, 1, 1, 0),
		rated("zeta", 1, 1, 1, 0),
	}
	s := Summarize(results)
	require.Len(t, s.Models, 2)
	assert.Equal(t, "zeta", s.Models[0].Model)
	assert.Equal(t, "alpha", s.Models[1].Model)
}

func TestSummarize_Rankings(t *testing.T) {
	results := []Result{
		rated("slow", 0.9, 2, 5, 5),
		rated("fast", 0.1, 1, 5, 3),
		rated("unrated", 0.5, 1, 5, 0),
		rated("tie", 0.9, 2, 5, 5),
		{Model: "broken", TestName: "t", Succeeded: false, ErrorKind: "connection"},
	}
	s := Summarize(results)

	var speed []string
	for _, r := range s.Speed {
		speed = append(speed, r.Model)
	}
	assert.Equal(t, []string{"fast", "unrated", "slow", "tie"}, speed)

	var quality []string
	for _, r := range s.Quality {
		quality = append(quality, r.Model)
	}
	assert.Equal(t, []string{"slow", "tie", "fast"}, quality)

	for _, m := range s.Models {
		if m.Model == "unrated" || m.Model == "broken" {
			assert.False(t, m.HasRating())
			assert.Equal(t, "N/A", m.RatingText())
		}
	}
}

func TestSummarize_Deterministic(t *testing.T) {
	results := []Result{
		rated("a", 0.5, 1, 5, 4),
		rated("b", 0.5, 1, 5, 4),
		rated("c", 0.5, 1, 5, 4),
	}
	first := Summarize(results).Render()
	for range 5 {
		assert.Equal(t, first, Summarize(results).Render())
	}
}

func TestSummaryRender(t *testing.T) {
	results := []Result{
		rated("a", 0.25, 1.5, 12, 5),
		rated("b", 0.5, 2.0, 7, 0),
	}
	out := Summarize(results).Render()

	assert.Contains(t, out, "SUMMARY")
	assert.Contains(t, out, "Model: a")
	assert.Contains(t, out, "Avg judge rating: 5.00/5 (1 rated)")
	assert.Contains(t, out, "Avg judge rating: N/A")
	assert.Contains(t, out, "  1. a - 0.25s\n  2. b - 0.50s\n")
	quality := out[strings.Index(out, "QUALITY RANKING"):]
	assert.Contains(t, quality, "1. a - 5.00/5")
	assert.NotContains(t, quality, " b ")

	assert.Contains(t, Summarize(nil).Render(), "No results.")
}

func TestQuantileAndMeanStd(t *testing.T) {
	vals := []float64{3, 1, 2, 4}
	assert.InDelta(t, 2.5, quantile(vals, 0.5), 1e-9)
	assert.Equal(t, []float64{3, 1, 2, 4}, vals, "input must not be reordered")
	assert.Equal(t, 1.0, quantile(vals, 0))
	assert.Equal(t, 4.0, quantile(vals, 1))
	assert.Equal(t, 0.0, quantile(nil, 0.5))

	m, sd := meanStd([]float64{2, 4, 4, 4, 5, 5, 7, 9})
	assert.InDelta(t, 5.0, m, 1e-9)
	assert.InDelta(t, 2.0, sd, 1e-9)
}
