// internal/harness/summary.go
// Package: harness
package harness

import (
	"cmp"
	"fmt"
	"slices"
	"strings"
)

// ModelStats aggregates one model's cells. Latency and length figures are
// over successful cells only; the rating mean is over cells rated 1-5.
type ModelStats struct {
	Model     string `json:"model"`
	Attempted int    `json:"attempted"`
	Succeeded int    `json:"succeeded"`

	MeanFirstToken float64 `json:"mean_first_token_seconds"`
	MeanTotal      float64 `json:"mean_total_seconds"`
	TotalP50       float64 `json:"total_p50_seconds"`
	TotalP95       float64 `json:"total_p95_seconds"`
	MeanChars      float64 `json:"mean_response_chars"`

	TokensPerSecMean float64 `json:"tokens_per_sec_mean"`
	TokensPerSecStd  float64 `json:"tokens_per_sec_std"`

	Rated      int     `json:"rated"`
	MeanRating float64 `json:"mean_rating"` // meaningless when Rated == 0
}

// HasRating reports whether any cell of the model got a valid rating.
func (m ModelStats) HasRating() bool { return m.Rated > 0 }

// RatingText is the mean rating for display, or "N/A".
func (m ModelStats) RatingText() string {
	if !m.HasRating() {
		return "N/A"
	}
	return fmt.Sprintf("%.2f", m.MeanRating)
}

// Ranked is one ranking entry.
type Ranked struct {
	Model string  `json:"model"`
	Value float64 `json:"value"`
}

// Summary is the per-model reduction of a run plus its two rankings.
type Summary struct {
	Models  []ModelStats `json:"models"`  // first-appearance order
	Speed   []Ranked     `json:"speed"`   // ascending mean first-token latency
	Quality []Ranked     `json:"quality"` // descending mean rating; unrated models omitted
}

// Summarize groups results by model in order of first appearance. It is pure
// and deterministic for a given input.
func Summarize(results []Result) Summary {
	var order []string
	byModel := map[string][]Result{}
	for _, r := range results {
		if _, seen := byModel[r.Model]; !seen {
			order = append(order, r.Model)
		}
		byModel[r.Model] = append(byModel[r.Model], r)
	}

	s := Summary{Models: make([]ModelStats, 0, len(order))}
	for _, m := range order {
		s.Models = append(s.Models, modelStats(m, byModel[m]))
	}

	for _, ms := range s.Models {
		if ms.Succeeded > 0 {
			s.Speed = append(s.Speed, Ranked{Model: ms.Model, Value: ms.MeanFirstToken})
		}
		if ms.HasRating() {
			s.Quality = append(s.Quality, Ranked{Model: ms.Model, Value: ms.MeanRating})
		}
	}
	slices.SortStableFunc(s.Speed, func(a, b Ranked) int { return cmp.Compare(a.Value, b.Value) })
	slices.SortStableFunc(s.Quality, func(a, b Ranked) int { return cmp.Compare(b.Value, a.Value) })
	return s
}

func modelStats(model string, rows []Result) ModelStats {
	ms := ModelStats{Model: model, Attempted: len(rows)}

	var firstVals, totalVals, charVals, tps, ratings []float64
	for _, r := range rows {
		if r.Succeeded {
			firstVals = append(firstVals, r.FirstTokenLatency)
			totalVals = append(totalVals, r.TotalLatency)
			charVals = append(charVals, float64(r.ResponseChars))
			if r.TokensPerSecond > 0 {
				tps = append(tps, r.TokensPerSecond)
			}
		}
		if rating := r.Rating(); rating > 0 {
			ratings = append(ratings, float64(rating))
		}
	}

	ms.Succeeded = len(totalVals)
	ms.MeanFirstToken = mean(firstVals)
	ms.MeanTotal = mean(totalVals)
	ms.TotalP50 = quantile(totalVals, 0.50)
	ms.TotalP95 = quantile(totalVals, 0.95)
	ms.MeanChars = mean(charVals)
	ms.TokensPerSecMean, ms.TokensPerSecStd = meanStd(tps)
	ms.Rated = len(ratings)
	ms.MeanRating = mean(ratings)
	return ms
}

// Render formats the summary as the plain-text block appended to transcripts.
func (s Summary) Render() string {
	var b strings.Builder
	b.WriteString("\n" + strings.Repeat("=", 100) + "\n")
	b.WriteString("SUMMARY\n")
	b.WriteString(strings.Repeat("=", 100) + "\n")

	if len(s.Models) == 0 {
		b.WriteString("No results.\n")
	}
	for _, m := range s.Models {
		fmt.Fprintf(&b, "\nModel: %s\n", m.Model)
		fmt.Fprintf(&b, "  Successful: %d/%d\n", m.Succeeded, m.Attempted)
		if m.Succeeded > 0 {
			fmt.Fprintf(&b, "  Avg first token: %.2fs\n", m.MeanFirstToken)
			fmt.Fprintf(&b, "  Avg total time: %.2fs (p50 %.2fs, p95 %.2fs)\n", m.MeanTotal, m.TotalP50, m.TotalP95)
			fmt.Fprintf(&b, "  Avg response length: %.0f chars\n", m.MeanChars)
			if m.TokensPerSecMean > 0 {
				fmt.Fprintf(&b, "  Gen tokens/s: %.2f ± %.2f\n", m.TokensPerSecMean, m.TokensPerSecStd)
			}
		}
		if m.HasRating() {
			fmt.Fprintf(&b, "  Avg judge rating: %s/5 (%d rated)\n", m.RatingText(), m.Rated)
		} else {
			b.WriteString("  Avg judge rating: N/A\n")
		}
	}

	b.WriteString("\nSPEED RANKING (first token, lower is better)\n")
	if len(s.Speed) == 0 {
		b.WriteString("  (no successful generations)\n")
	}
	for i, r := range s.Speed {
		fmt.Fprintf(&b, "  %d. %s - %.2fs\n", i+1, r.Model, r.Value)
	}

	b.WriteString("\nQUALITY RANKING (judge rating, higher is better)\n")
	if len(s.Quality) == 0 {
		b.WriteString("  (no rated models)\n")
	}
	for i, r := range s.Quality {
		fmt.Fprintf(&b, "  %d. %s - %.2f/5\n", i+1, r.Model, r.Value)
	}
	return b.String()
}
