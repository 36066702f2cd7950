package dataflows

import (
	"time"

	"github.com/shopspring/decimal"
)

// RawPost is a social-media post as returned by the scrape source.
// Immutable once produced.
type RawPost struct {
	Text      string    `json:"text"`
	Author    string    `json:"author"`
	Timestamp time.Time `json:"timestamp"`
	Likes     int       `json:"likes"`
	Retweets  int       `json:"retweets"`
	Replies   int       `json:"replies"`
}

// Engagement is the ranking signal: likes + retweets + replies.
func (p RawPost) Engagement() int {
	return p.Likes + p.Retweets + p.Replies
}

// MarketData represents one daily price bar.
type MarketData struct {
	Symbol    string          `json:"symbol"`
	Date      time.Time       `json:"date"`
	Open      decimal.Decimal `json:"open"`
	High      decimal.Decimal `json:"high"`
	Low       decimal.Decimal `json:"low"`
	Close     decimal.Decimal `json:"close"`
	AdjClose  decimal.Decimal `json:"adj_close"`
	Volume    int64           `json:"volume"`
	Timestamp time.Time       `json:"timestamp"`
}
