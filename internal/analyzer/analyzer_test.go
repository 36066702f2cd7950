package analyzer

import (
	"context"
	"errors"
	"math"
	"testing"
	"time"

	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"

	"github.com/pulselab/cryptopulse/config"
	"github.com/pulselab/cryptopulse/internal/collector"
	"github.com/pulselab/cryptopulse/internal/dataflows"
	"github.com/pulselab/cryptopulse/internal/sentiment"
)

type fakeSearcher struct {
	posts []dataflows.RawPost
	err   error
	calls int
}

func (f *fakeSearcher) Search(_ context.Context, _ string, _ int) ([]dataflows.RawPost, error) {
	f.calls++
	return f.posts, f.err
}

// fakeModel replays canned replies and then repeats the last one.
type fakeModel struct {
	replies []string
	errs    []error
	calls   int
}

func (f *fakeModel) Generate(_ context.Context, _ []*schema.Message, _ ...model.Option) (*schema.Message, error) {
	i := f.calls
	f.calls++
	if i < len(f.errs) && f.errs[i] != nil {
		return nil, f.errs[i]
	}
	reply := "Sentiment Score: 0"
	if len(f.replies) > 0 {
		if i >= len(f.replies) {
			i = len(f.replies) - 1
		}
		reply = f.replies[i]
	}
	return schema.AssistantMessage(reply, nil), nil
}

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	cfg := config.DefaultConfig()
	cfg.QueueMinDelay = time.Millisecond
	cfg.QueueMaxDelay = 2 * time.Millisecond
	cfg.AnalysisRPM = 600000
	cfg.CacheEnabled = false
	cfg.DataCacheDir = t.TempDir()
	return cfg
}

func TestRunAnalysisEndToEnd(t *testing.T) {
	now := time.Now()
	fs := &fakeSearcher{}
	// 20 posts; the first 12 are recent, the rest fall outside the window.
	for i := 0; i < 20; i++ {
		age := time.Duration(i+1) * time.Hour
		if i >= 12 {
			age = 30 * time.Hour
		}
		fs.posts = append(fs.posts, dataflows.RawPost{
			Text:      "post",
			Timestamp: now.Add(-age),
			Likes:     100 - i*5,
		})
	}
	fm := &fakeModel{replies: []string{"Sentiment Score: 0.5"}}

	a := New(testConfig(t), fs, fm)
	res, err := a.RunAnalysis(context.Background(), "$BTC", collector.Window{HoursBack: 24, MaxItems: 50})
	if err != nil {
		t.Fatalf("RunAnalysis: %v", err)
	}

	if res.Stats.Count != 12 {
		t.Errorf("count = %d, want 12 (inside window, under top-k 15)", res.Stats.Count)
	}
	if math.Abs(res.WeightedSentiment-0.5) > 1e-9 {
		t.Errorf("weighted = %v, want 0.5 for identical scores", res.WeightedSentiment)
	}
	if res.Ticker != "$BTC" {
		t.Errorf("ticker = %q", res.Ticker)
	}
	if res.Summary == "" {
		t.Error("expected a summary")
	}

	// Selection is engagement-descending and preserved in the result.
	for i := 1; i < len(res.ScoredPosts); i++ {
		if res.ScoredPosts[i].Engagement > res.ScoredPosts[i-1].Engagement {
			t.Fatalf("result order not engagement-descending at %d", i)
		}
	}
}

func TestRunAnalysisEmitsProgress(t *testing.T) {
	now := time.Now()
	fs := &fakeSearcher{posts: []dataflows.RawPost{
		{Text: "a", Timestamp: now.Add(-time.Hour)},
		{Text: "b", Timestamp: now.Add(-time.Hour)},
	}}
	a := New(testConfig(t), fs, &fakeModel{})

	if _, err := a.RunAnalysis(context.Background(), "$BTC", collector.Window{HoursBack: 24, MaxItems: 50}); err != nil {
		t.Fatalf("RunAnalysis: %v", err)
	}

	stages := map[string]bool{}
	for {
		select {
		case ev := <-a.Progress():
			stages[ev.Stage] = true
			continue
		default:
		}
		break
	}
	for _, want := range []string{"collect", "score", "aggregate", "done"} {
		if !stages[want] {
			t.Errorf("missing progress stage %q (got %v)", want, stages)
		}
	}
}

func TestRunAnalysisNoRecentPosts(t *testing.T) {
	fs := &fakeSearcher{posts: []dataflows.RawPost{
		{Text: "old", Timestamp: time.Now().Add(-48 * time.Hour), Likes: 10},
	}}
	a := New(testConfig(t), fs, &fakeModel{})

	_, err := a.RunAnalysis(context.Background(), "$BTC", collector.Window{HoursBack: 24, MaxItems: 50})
	if !errors.Is(err, sentiment.ErrNoData) {
		t.Fatalf("expected ErrNoData, got %v", err)
	}
}

func TestRunAnalysisAllScoringFails(t *testing.T) {
	fs := &fakeSearcher{posts: []dataflows.RawPost{
		{Text: "a", Timestamp: time.Now().Add(-time.Hour)},
	}}
	fm := &fakeModel{errs: []error{errors.New("down"), errors.New("down")}}
	a := New(testConfig(t), fs, fm)

	_, err := a.RunAnalysis(context.Background(), "$BTC", collector.Window{HoursBack: 24, MaxItems: 50})
	if !errors.Is(err, sentiment.ErrNoData) {
		t.Fatalf("expected ErrNoData, got %v", err)
	}
}

func TestRunAnalysisValidatesBeforeFetch(t *testing.T) {
	fs := &fakeSearcher{}
	a := New(testConfig(t), fs, &fakeModel{})

	_, err := a.RunAnalysis(context.Background(), "$BTC", collector.Window{HoursBack: 24, MaxItems: 500})
	if !errors.Is(err, collector.ErrInvalidWindow) {
		t.Fatalf("expected ErrInvalidWindow, got %v", err)
	}
	if fs.calls != 0 {
		t.Fatalf("no external call expected, got %d", fs.calls)
	}
}

func TestRunAnalysisScrapeFailure(t *testing.T) {
	fs := &fakeSearcher{err: errors.New("blocked")}
	a := New(testConfig(t), fs, &fakeModel{})

	_, err := a.RunAnalysis(context.Background(), "$BTC", collector.Window{HoursBack: 24, MaxItems: 50})
	if !errors.Is(err, collector.ErrScrapeUnavailable) {
		t.Fatalf("expected ErrScrapeUnavailable, got %v", err)
	}
	if errors.Is(err, sentiment.ErrNoData) {
		t.Fatal("transport failure must stay distinguishable from no-data")
	}
}

func TestScoreSingleText(t *testing.T) {
	fm := &fakeModel{replies: []string{"Sentiment Score: 0.8"}}
	a := New(testConfig(t), &fakeSearcher{}, fm)

	sp, err := a.ScoreSingleText(context.Background(), "bitcoin halving soon")
	if err != nil {
		t.Fatalf("ScoreSingleText: %v", err)
	}
	if sp.SentimentScore != 0.8 {
		t.Errorf("score = %v, want 0.8", sp.SentimentScore)
	}
	if sp.Engagement != 0 {
		t.Errorf("ad-hoc text must have zero engagement, got %d", sp.Engagement)
	}

	if _, err := a.ScoreSingleText(context.Background(), "   "); err == nil {
		t.Error("expected error for blank text")
	}
}

func TestScoreMultipleTextsUniformWeights(t *testing.T) {
	fm := &fakeModel{replies: []string{"Score: 0.9", "Score: 0.1", "Score: -0.4"}}
	a := New(testConfig(t), &fakeSearcher{}, fm)

	res, err := a.ScoreMultipleTexts(context.Background(), []string{"one", "two", "three"})
	if err != nil {
		t.Fatalf("ScoreMultipleTexts: %v", err)
	}

	mean := (0.9 + 0.1 - 0.4) / 3.0
	if math.Abs(res.WeightedSentiment-mean) > 1e-9 {
		t.Errorf("weighted = %v, want arithmetic mean %v", res.WeightedSentiment, mean)
	}
	if res.Stats.AvgEngagement != 0 {
		t.Errorf("avg engagement = %v, want 0", res.Stats.AvgEngagement)
	}
}

func TestMarketSymbol(t *testing.T) {
	cases := map[string]string{
		"$BTC":    "BTC-USD",
		"eth":     "ETH-USD",
		"BTC-USD": "BTC-USD",
		"700.HK":  "700.HK",
	}
	for in, want := range cases {
		if got := marketSymbol(in); got != want {
			t.Errorf("marketSymbol(%q) = %q, want %q", in, got, want)
		}
	}
}
