package sentiment

import (
	"errors"
	"fmt"
	"math"
	"strings"
	"time"
)

// ErrNoData marks an analysis run that produced zero scored posts. It is
// the single fatal condition of the pipeline's happy path, distinct from a
// transport failure.
var ErrNoData = errors.New("no analyzable data")

// themeTable maps theme labels to trigger keywords. Fixed iteration order
// keeps the output deterministic.
var themeTable = []struct {
	name     string
	keywords []string
}{
	{"bullish", []string{"bullish", "uptrend", "growth", "rally", "surge"}},
	{"bearish", []string{"bearish", "downtrend", "decline", "dump", "crash"}},
	{"momentum", []string{"momentum", "volume", "breakout", "resistance", "support"}},
	{"fundamental", []string{"adoption", "development", "partnership", "news", "update"}},
	{"risk", []string{"risk", "volatile", "uncertainty", "caution", "warning"}},
}

// themeThreshold is the minimum number of posts mentioning a theme before
// it is reported.
const themeThreshold = 2

// Aggregate reduces scored posts into one result record. Post order is
// preserved in the output. Fails with ErrNoData on an empty input.
func Aggregate(ticker string, posts []ScoredPost) (*AggregateResult, error) {
	if len(posts) == 0 {
		return nil, fmt.Errorf("%w: no scored posts for %s", ErrNoData, ticker)
	}

	return &AggregateResult{
		Ticker:            ticker,
		WeightedSentiment: weightedSentiment(posts),
		Stats:             computeStats(posts),
		Themes:            extractThemes(posts),
		ScoredPosts:       posts,
		Timestamp:         time.Now(),
	}, nil
}

// weightedSentiment weights each score by engagement normalized against the
// maximum engagement. With no engagement data at all, every weight is 1.0
// and the result reduces to the arithmetic mean.
func weightedSentiment(posts []ScoredPost) float64 {
	totalEngagement := 0
	maxEngagement := 0
	for _, p := range posts {
		totalEngagement += p.Engagement
		if p.Engagement > maxEngagement {
			maxEngagement = p.Engagement
		}
	}

	var weightedSum, weightSum float64
	for _, p := range posts {
		weight := 1.0
		if totalEngagement > 0 {
			weight = float64(p.Engagement) / float64(maxEngagement)
		}
		weightedSum += p.SentimentScore * weight
		weightSum += weight
	}
	return weightedSum / weightSum
}

func computeStats(posts []ScoredPost) Stats {
	n := len(posts)

	var sum, engagementSum float64
	min, max := posts[0].SentimentScore, posts[0].SentimentScore
	for _, p := range posts {
		sum += p.SentimentScore
		engagementSum += float64(p.Engagement)
		if p.SentimentScore < min {
			min = p.SentimentScore
		}
		if p.SentimentScore > max {
			max = p.SentimentScore
		}
	}
	mean := sum / float64(n)

	// Sample standard deviation; reported as 0 for a single post.
	std := 0.0
	if n > 1 {
		var sq float64
		for _, p := range posts {
			d := p.SentimentScore - mean
			sq += d * d
		}
		std = math.Sqrt(sq / float64(n-1))
	}

	return Stats{
		Count:         n,
		Mean:          mean,
		Std:           std,
		Min:           min,
		Max:           max,
		AvgEngagement: engagementSum / float64(n),
	}
}

// extractThemes counts each theme once per post whose analysis mentions any
// of its keywords. Themes below the threshold are dropped; if none remain
// the set is exactly {neutral}.
func extractThemes(posts []ScoredPost) []string {
	var themes []string
	for _, theme := range themeTable {
		count := 0
		for _, p := range posts {
			lower := strings.ToLower(p.AnalysisText)
			for _, kw := range theme.keywords {
				if strings.Contains(lower, kw) {
					count++
					break
				}
			}
		}
		if count >= themeThreshold {
			themes = append(themes, theme.name)
		}
	}
	if len(themes) == 0 {
		return []string{"neutral"}
	}
	return themes
}
