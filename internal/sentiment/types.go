package sentiment

import (
	"time"

	"github.com/pulselab/cryptopulse/internal/dataflows"
)

// ScoredPost pairs a post with the analysis that scored it. Posts that fail
// analysis are dropped, never represented as a ScoredPost.
type ScoredPost struct {
	Post           dataflows.RawPost `json:"post"`
	AnalysisText   string            `json:"analysis_text"`
	SentimentScore float64           `json:"sentiment_score"`
	Source         string            `json:"source"`
	Engagement     int               `json:"engagement"`
}

// Stats summarizes the per-post sentiment scores of one run.
type Stats struct {
	Count         int     `json:"count"`
	Mean          float64 `json:"mean"`
	Std           float64 `json:"std"`
	Min           float64 `json:"min"`
	Max           float64 `json:"max"`
	AvgEngagement float64 `json:"avg_engagement"`
}

// AggregateResult is the final record of one analysis run. Immutable.
type AggregateResult struct {
	Ticker            string       `json:"ticker"`
	WeightedSentiment float64      `json:"weighted_sentiment"`
	Stats             Stats        `json:"stats"`
	Themes            []string     `json:"themes"`
	ScoredPosts       []ScoredPost `json:"scored_posts"`
	Summary           string       `json:"summary,omitempty"`
	Timestamp         time.Time    `json:"timestamp"`
}
