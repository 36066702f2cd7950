// Package analyzer chains collection, scoring and aggregation into the
// public analysis operations.
package analyzer

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/cloudwego/eino/schema"

	"github.com/pulselab/cryptopulse/config"
	"github.com/pulselab/cryptopulse/internal/collector"
	"github.com/pulselab/cryptopulse/internal/dataflows"
	"github.com/pulselab/cryptopulse/internal/logger"
	"github.com/pulselab/cryptopulse/internal/queue"
	"github.com/pulselab/cryptopulse/internal/sentiment"
)

// adHocTicker labels results produced without a collection step.
const adHocTicker = "ad-hoc"

// summaryFailedPlaceholder is stored when the summary call fails; a missing
// summary never fails an otherwise complete run.
const summaryFailedPlaceholder = "Failed to generate analysis"

// ProgressEvent reports pipeline progress. Consumers read the event channel
// independently of the pipeline; events are dropped, not buffered
// indefinitely, when nobody listens.
type ProgressEvent struct {
	Stage     string
	Message   string
	Completed int
	Total     int
}

// Analyzer is the pipeline entry point. Safe for sequential reuse; the
// shared fetch queue serializes all scrape traffic.
type Analyzer struct {
	cfg       *config.Config
	collector *collector.Collector
	scorer    *sentiment.Scorer
	model     sentiment.ChatModel
	market    *dataflows.YahooFinanceClient
	events    chan ProgressEvent
}

// New wires the pipeline around the given scrape source and chat model.
func New(cfg *config.Config, searcher collector.Searcher, chatModel sentiment.ChatModel) *Analyzer {
	q := queue.New[[]dataflows.RawPost](queue.Options{
		MinDelay: cfg.QueueMinDelay,
		MaxDelay: cfg.QueueMaxDelay,
	})
	return &Analyzer{
		cfg:       cfg,
		collector: collector.New(searcher, q),
		scorer:    sentiment.NewScorer(chatModel, cfg.AnalysisRPM),
		model:     chatModel,
		market:    dataflows.NewYahooFinanceClient(cfg.DataCacheDir, cfg.CacheEnabled),
		events:    make(chan ProgressEvent, 32),
	}
}

// Progress returns the pipeline's event stream.
func (a *Analyzer) Progress() <-chan ProgressEvent {
	return a.events
}

func (a *Analyzer) emit(stage, message string, completed, total int) {
	select {
	case a.events <- ProgressEvent{Stage: stage, Message: message, Completed: completed, Total: total}:
	default:
	}
}

// RunAnalysis collects recent posts about ticker, scores them and returns
// the aggregate. Fails with sentiment.ErrNoData when nothing survives
// collection or scoring.
func (a *Analyzer) RunAnalysis(ctx context.Context, ticker string, w collector.Window) (*sentiment.AggregateResult, error) {
	if err := w.Validate(); err != nil {
		return nil, err
	}

	a.emit("collect", fmt.Sprintf("searching recent posts about %s", ticker), 0, 0)
	posts, err := a.collector.Collect(ctx, ticker, w)
	if err != nil {
		return nil, err
	}
	if len(posts) == 0 {
		return nil, fmt.Errorf("%w: no posts for %s in the past %dh",
			sentiment.ErrNoData, ticker, w.HoursBack)
	}

	a.emit("score", fmt.Sprintf("analyzing %d posts", len(posts)), 0, len(posts))
	scored := a.scorer.ScoreMany(ctx, posts)
	if len(scored) == 0 {
		return nil, fmt.Errorf("%w: all %d analysis calls for %s failed",
			sentiment.ErrNoData, len(posts), ticker)
	}
	a.emit("score", fmt.Sprintf("scored %d of %d posts", len(scored), len(posts)), len(scored), len(posts))

	a.emit("aggregate", "computing weighted sentiment", 0, 0)
	result, err := sentiment.Aggregate(ticker, scored)
	if err != nil {
		return nil, err
	}

	a.emit("summarize", "generating market summary", 0, 0)
	result.Summary = a.generateSummary(ctx, result)

	a.emit("done", "analysis complete", result.Stats.Count, result.Stats.Count)
	return result, nil
}

// ScoreSingleText scores one ad-hoc text, bypassing collection.
func (a *Analyzer) ScoreSingleText(ctx context.Context, text string) (*sentiment.ScoredPost, error) {
	if strings.TrimSpace(text) == "" {
		return nil, fmt.Errorf("text cannot be empty")
	}
	return a.scorer.Score(ctx, dataflows.RawPost{Text: text, Timestamp: time.Now()})
}

// ScoreMultipleTexts scores ad-hoc texts and aggregates them. All
// engagement values are zero, so the aggregate uses uniform weights.
func (a *Analyzer) ScoreMultipleTexts(ctx context.Context, texts []string) (*sentiment.AggregateResult, error) {
	posts := make([]dataflows.RawPost, 0, len(texts))
	now := time.Now()
	for _, text := range texts {
		if strings.TrimSpace(text) == "" {
			continue
		}
		posts = append(posts, dataflows.RawPost{Text: text, Timestamp: now})
	}

	a.emit("score", fmt.Sprintf("analyzing %d texts", len(posts)), 0, len(posts))
	scored := a.scorer.ScoreMany(ctx, posts)
	if len(scored) == 0 {
		return nil, fmt.Errorf("%w: no texts could be analyzed", sentiment.ErrNoData)
	}
	return sentiment.Aggregate(adHocTicker, scored)
}

// CorrelateWithMarket relates the run's per-post scores to recent daily
// price changes of the ticker.
func (a *Analyzer) CorrelateWithMarket(ctx context.Context, ticker string, result *sentiment.AggregateResult) (*sentiment.CorrelationResult, error) {
	scores := make([]float64, 0, len(result.ScoredPosts))
	for _, p := range result.ScoredPosts {
		scores = append(scores, p.SentimentScore)
	}

	bars, err := a.market.GetHistoricalDataWindow(marketSymbol(ticker), len(scores)+1)
	if err != nil {
		return nil, fmt.Errorf("fetch price history: %w", err)
	}
	changes := dataflows.PercentChanges(bars)

	n := len(scores)
	if len(changes) < n {
		n = len(changes)
	}
	if n < 2 {
		return nil, fmt.Errorf("not enough overlapping samples to correlate (%d)", n)
	}
	return sentiment.Correlation(scores[len(scores)-n:], changes[len(changes)-n:])
}

// marketSymbol maps a cashtag to its Yahoo Finance crypto pair.
func marketSymbol(ticker string) string {
	sym := dataflows.NormalizeSymbol(ticker)
	if strings.ContainsAny(sym, ".-") {
		return sym
	}
	return sym + "-USD"
}

const summaryPromptTemplate = `Generate a concise market analysis for %s.

Context:
- Weighted sentiment score: %.2f
- Number of sources analyzed: %d
- Sentiment range: %.2f to %.2f
- Common themes: %s

Cover: overall market sentiment and confidence, key factors driving it,
potential price impact, risks, and a short-term (24-48h) outlook. End with
a clear one-paragraph conclusion.`

func (a *Analyzer) generateSummary(ctx context.Context, result *sentiment.AggregateResult) string {
	prompt := fmt.Sprintf(summaryPromptTemplate,
		result.Ticker,
		result.WeightedSentiment,
		result.Stats.Count,
		result.Stats.Min,
		result.Stats.Max,
		strings.Join(result.Themes, ", "),
	)

	resp, err := a.model.Generate(ctx, []*schema.Message{
		schema.SystemMessage("You are a crypto market analyst."),
		schema.UserMessage(prompt),
	})
	if err != nil {
		logger.Log.Warnf("summary generation failed for %s: %v", result.Ticker, err)
		return summaryFailedPlaceholder
	}
	return resp.Content
}
