package sentiment

import (
	"errors"
	"math"
	"testing"
)

func scored(score float64, engagement int, analysis string) ScoredPost {
	return ScoredPost{
		AnalysisText:   analysis,
		SentimentScore: score,
		Source:         "primary",
		Engagement:     engagement,
	}
}

func TestAggregateEmptyFails(t *testing.T) {
	_, err := Aggregate("$BTC", nil)
	if !errors.Is(err, ErrNoData) {
		t.Fatalf("expected ErrNoData, got %v", err)
	}
}

func TestAggregateSinglePost(t *testing.T) {
	res, err := Aggregate("$BTC", []ScoredPost{scored(0.4, 10, "fine")})
	if err != nil {
		t.Fatalf("Aggregate: %v", err)
	}
	if res.Stats.Count != 1 {
		t.Errorf("count = %d, want 1", res.Stats.Count)
	}
	if res.Stats.Std != 0 {
		t.Errorf("single-post std must be 0, got %v", res.Stats.Std)
	}
	if res.WeightedSentiment != 0.4 {
		t.Errorf("weighted = %v, want 0.4", res.WeightedSentiment)
	}
}

func TestAggregateWeightedByEngagement(t *testing.T) {
	posts := []ScoredPost{
		scored(1.0, 100, ""),
		scored(-1.0, 10, ""),
	}
	res, err := Aggregate("$BTC", posts)
	if err != nil {
		t.Fatalf("Aggregate: %v", err)
	}

	// weights: 1.0 and 0.1 -> (1.0*1.0 + -1.0*0.1) / 1.1
	want := (1.0 - 0.1) / 1.1
	if math.Abs(res.WeightedSentiment-want) > 1e-9 {
		t.Errorf("weighted = %v, want %v", res.WeightedSentiment, want)
	}
	if res.WeightedSentiment < res.Stats.Min || res.WeightedSentiment > res.Stats.Max {
		t.Errorf("weighted %v outside [%v, %v]", res.WeightedSentiment, res.Stats.Min, res.Stats.Max)
	}
}

func TestAggregateUniformWeightsWithoutEngagement(t *testing.T) {
	posts := []ScoredPost{
		scored(0.9, 0, ""),
		scored(0.1, 0, ""),
		scored(-0.4, 0, ""),
	}
	res, err := Aggregate("$BTC", posts)
	if err != nil {
		t.Fatalf("Aggregate: %v", err)
	}

	mean := (0.9 + 0.1 - 0.4) / 3.0
	if math.Abs(res.WeightedSentiment-mean) > 1e-9 {
		t.Errorf("zero engagement must reduce to arithmetic mean: got %v, want %v",
			res.WeightedSentiment, mean)
	}
	if math.Abs(res.Stats.Mean-mean) > 1e-9 {
		t.Errorf("mean = %v, want %v", res.Stats.Mean, mean)
	}
}

func TestAggregateStats(t *testing.T) {
	posts := []ScoredPost{
		scored(0.2, 10, ""),
		scored(0.6, 30, ""),
	}
	res, err := Aggregate("$BTC", posts)
	if err != nil {
		t.Fatalf("Aggregate: %v", err)
	}

	st := res.Stats
	if st.Count != 2 || st.Min != 0.2 || st.Max != 0.6 {
		t.Errorf("stats = %+v", st)
	}
	if math.Abs(st.Mean-0.4) > 1e-9 {
		t.Errorf("mean = %v, want 0.4", st.Mean)
	}
	// sample std of {0.2, 0.6}: sqrt(((0.2-0.4)^2 + (0.6-0.4)^2) / 1)
	wantStd := math.Sqrt(0.08)
	if math.Abs(st.Std-wantStd) > 1e-9 {
		t.Errorf("std = %v, want %v", st.Std, wantStd)
	}
	if math.Abs(st.AvgEngagement-20) > 1e-9 {
		t.Errorf("avg engagement = %v, want 20", st.AvgEngagement)
	}
}

func TestAggregatePreservesOrder(t *testing.T) {
	posts := []ScoredPost{
		scored(-0.9, 50, ""),
		scored(0.9, 40, ""),
		scored(0.1, 30, ""),
	}
	res, err := Aggregate("$BTC", posts)
	if err != nil {
		t.Fatalf("Aggregate: %v", err)
	}
	for i := range posts {
		if res.ScoredPosts[i].SentimentScore != posts[i].SentimentScore {
			t.Fatalf("post order changed at %d: %+v", i, res.ScoredPosts[i])
		}
	}
}

func TestExtractThemes(t *testing.T) {
	posts := []ScoredPost{
		scored(0, 0, "price holding above key support"),
		scored(0, 0, "watch the support level closely"),
		scored(0, 0, "growing adoption among institutions"),
	}
	res, err := Aggregate("$BTC", posts)
	if err != nil {
		t.Fatalf("Aggregate: %v", err)
	}
	if len(res.Themes) != 1 || res.Themes[0] != "momentum" {
		t.Errorf("themes = %v, want [momentum]", res.Themes)
	}
}

func TestExtractThemesCountsOncePerPost(t *testing.T) {
	// One post mentioning two bullish keywords must not reach the threshold.
	posts := []ScoredPost{
		scored(0, 0, "rally and surge expected"),
		scored(0, 0, "nothing relevant"),
	}
	res, err := Aggregate("$BTC", posts)
	if err != nil {
		t.Fatalf("Aggregate: %v", err)
	}
	if len(res.Themes) != 1 || res.Themes[0] != "neutral" {
		t.Errorf("themes = %v, want [neutral]", res.Themes)
	}
}

func TestExtractThemesNeutralFallback(t *testing.T) {
	posts := []ScoredPost{
		scored(0.5, 0, "nothing thematic here"),
		scored(0.5, 0, "still nothing"),
	}
	res, err := Aggregate("$BTC", posts)
	if err != nil {
		t.Fatalf("Aggregate: %v", err)
	}
	if len(res.Themes) != 1 || res.Themes[0] != "neutral" {
		t.Errorf("themes = %v, want [neutral]", res.Themes)
	}
}
