// Package sentiment converts post text into numeric sentiment via an LLM
// and reduces per-post scores into one weighted aggregate.
package sentiment

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"
	"golang.org/x/time/rate"

	"github.com/pulselab/cryptopulse/internal/dataflows"
	"github.com/pulselab/cryptopulse/internal/logger"
)

// ErrAnalysisUnavailable marks a failed call to the text-analysis model.
var ErrAnalysisUnavailable = errors.New("analysis service unavailable")

// ChatModel is the subset of the eino chat model interface the scorer needs.
type ChatModel interface {
	Generate(ctx context.Context, input []*schema.Message, opts ...model.Option) (*schema.Message, error)
}

const scoringSystemPrompt = "You are a crypto market sentiment analyst. " +
	"Be concise and always end with a numerical score."

const scoringPromptTemplate = `Analyze the sentiment of this crypto-related text. Follow these steps:
1. Identify key sentiment indicators
2. Consider market impact and technical factors
3. Evaluate overall sentiment
4. Provide a sentiment score from -1 (very negative) to 1 (very positive)

Text: %s

Provide your analysis in clear steps and end with a line "Sentiment Score: <value>".`

// scoreMarkers are scanned case-insensitively; the last matching line wins.
var scoreMarkers = []string{"score:", "score is:", "sentiment:", "rating:"}

var (
	positiveKeywords = []string{"bullish", "positive", "optimistic", "growth", "gain"}
	negativeKeywords = []string{"bearish", "negative", "pessimistic", "decline", "loss"}
)

// Scorer scores posts one model call at a time, capped at a configured
// request rate. Stateless apart from the model handle and limiter.
type Scorer struct {
	model   ChatModel
	limiter *rate.Limiter
}

// NewScorer creates a scorer capped at rpm analysis requests per minute.
func NewScorer(m ChatModel, rpm int) *Scorer {
	if rpm <= 0 {
		rpm = 30
	}
	return &Scorer{
		model:   m,
		limiter: rate.NewLimiter(rate.Limit(float64(rpm)/60.0), 1),
	}
}

// Score analyzes one post. The returned score comes from the analysis
// text's explicit score line when present, otherwise from the keyword
// heuristic. Scores are passed through unclamped.
func (s *Scorer) Score(ctx context.Context, post dataflows.RawPost) (*ScoredPost, error) {
	if err := s.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	messages := []*schema.Message{
		schema.SystemMessage(scoringSystemPrompt),
		schema.UserMessage(fmt.Sprintf(scoringPromptTemplate, post.Text)),
	}
	resp, err := s.model.Generate(ctx, messages)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrAnalysisUnavailable, err)
	}

	analysis := resp.Content
	source := "primary"
	score, ok := extractMarkedScore(analysis)
	if !ok {
		score = keywordScore(analysis)
		source = "fallback"
	}

	return &ScoredPost{
		Post:           post,
		AnalysisText:   analysis,
		SentimentScore: score,
		Source:         source,
		Engagement:     post.Engagement(),
	}, nil
}

// ScoreMany scores each post independently. A failed post is logged and
// skipped; it never aborts the batch. The result preserves input order and
// may be empty if every post fails.
func (s *Scorer) ScoreMany(ctx context.Context, posts []dataflows.RawPost) []ScoredPost {
	scored := make([]ScoredPost, 0, len(posts))
	for i, post := range posts {
		sp, err := s.Score(ctx, post)
		if err != nil {
			logger.Log.Warnf("skipping post %d/%d by @%s: %v", i+1, len(posts), post.Author, err)
			continue
		}
		logger.Log.Debugf("post %d/%d scored %.2f (engagement %d)",
			i+1, len(posts), sp.SentimentScore, sp.Engagement)
		scored = append(scored, *sp)
	}
	return scored
}

// extractMarkedScore finds the last line carrying a score marker and parses
// the first token after its final colon.
func extractMarkedScore(analysis string) (float64, bool) {
	var marked string
	found := false
	for _, line := range strings.Split(analysis, "\n") {
		lower := strings.ToLower(line)
		for _, marker := range scoreMarkers {
			if strings.Contains(lower, marker) {
				marked = line
				found = true
				break
			}
		}
	}
	if !found {
		return 0, false
	}

	idx := strings.LastIndex(marked, ":")
	fields := strings.Fields(marked[idx+1:])
	if len(fields) == 0 {
		return 0, false
	}
	v, err := strconv.ParseFloat(fields[0], 64)
	if err != nil {
		return 0, false
	}
	return v, true
}

// keywordScore is the fallback heuristic: balance of positive vs negative
// keyword occurrences across the whole analysis text.
func keywordScore(analysis string) float64 {
	lower := strings.ToLower(analysis)

	var positive, negative int
	for _, w := range positiveKeywords {
		positive += strings.Count(lower, w)
	}
	for _, w := range negativeKeywords {
		negative += strings.Count(lower, w)
	}

	total := positive + negative
	if total == 0 {
		return 0
	}
	return float64(positive-negative) / float64(total)
}
