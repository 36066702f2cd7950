package sentiment

import (
	"fmt"
	"math"
	"time"
)

// CorrelationResult relates sentiment scores to price movement.
type CorrelationResult struct {
	Correlation    float64   `json:"correlation"`
	Interpretation string    `json:"interpretation"`
	Samples        int       `json:"samples"`
	Timestamp      time.Time `json:"timestamp"`
}

// Correlation computes the Pearson correlation between per-post sentiment
// scores and price changes over the same period.
func Correlation(scores, priceChanges []float64) (*CorrelationResult, error) {
	if len(scores) != len(priceChanges) {
		return nil, fmt.Errorf("length of sentiment scores (%d) and price changes (%d) must match",
			len(scores), len(priceChanges))
	}
	if len(scores) < 2 {
		return nil, fmt.Errorf("need at least 2 samples, got %d", len(scores))
	}

	corr, err := pearson(scores, priceChanges)
	if err != nil {
		return nil, err
	}

	return &CorrelationResult{
		Correlation:    corr,
		Interpretation: interpretCorrelation(corr),
		Samples:        len(scores),
		Timestamp:      time.Now(),
	}, nil
}

func pearson(xs, ys []float64) (float64, error) {
	n := float64(len(xs))

	var sumX, sumY float64
	for i := range xs {
		sumX += xs[i]
		sumY += ys[i]
	}
	meanX, meanY := sumX/n, sumY/n

	var cov, varX, varY float64
	for i := range xs {
		dx, dy := xs[i]-meanX, ys[i]-meanY
		cov += dx * dy
		varX += dx * dx
		varY += dy * dy
	}
	if varX == 0 || varY == 0 {
		return 0, fmt.Errorf("correlation undefined: zero variance in input")
	}
	return cov / math.Sqrt(varX*varY), nil
}

func interpretCorrelation(correlation float64) string {
	switch {
	case correlation > 0.7:
		return "Strong positive correlation: Sentiment strongly predicts price movements"
	case correlation > 0.3:
		return "Moderate positive correlation: Sentiment somewhat predicts price movements"
	case correlation > -0.3:
		return "Weak correlation: Sentiment has limited predictive value"
	case correlation > -0.7:
		return "Moderate negative correlation: Sentiment inversely predicts price movements"
	default:
		return "Strong negative correlation: Sentiment strongly inversely predicts price movements"
	}
}
