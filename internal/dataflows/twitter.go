package dataflows

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/go-resty/resty/v2"
)

// nitterDateLayout matches the title attribute on Nitter tweet timestamps,
// e.g. "Jan 2, 2026 · 3:04 PM UTC".
const nitterDateLayout = "Jan 2, 2006 · 3:04 PM MST"

// TwitterSearchClient scrapes tweet search results from a Nitter mirror.
// Failures are surfaced to the caller as-is; pacing and backoff are the
// fetch queue's responsibility, so no retry happens here.
type TwitterSearchClient struct {
	client  *resty.Client
	baseURL string
}

// NewTwitterSearchClient creates a search client against baseURL.
func NewTwitterSearchClient(baseURL string) *TwitterSearchClient {
	client := resty.New()
	client.SetTimeout(30 * time.Second)
	client.SetHeader("User-Agent", "Mozilla/5.0 (compatible; CryptoPulse/1.0)")

	return &TwitterSearchClient{
		client:  client,
		baseURL: strings.TrimRight(baseURL, "/"),
	}
}

// Search fetches tweets matching query, newest first as served by the
// mirror. May return fewer than maxResults.
func (tc *TwitterSearchClient) Search(ctx context.Context, query string, maxResults int) ([]RawPost, error) {
	if strings.TrimSpace(query) == "" {
		return nil, fmt.Errorf("search query cannot be empty")
	}
	if maxResults <= 0 {
		maxResults = 50
	}

	searchURL := tc.buildSearchURL(query)
	resp, err := tc.client.R().SetContext(ctx).Get(searchURL)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch tweet search: %w", err)
	}
	if resp.StatusCode() != 200 {
		return nil, fmt.Errorf("HTTP error %d when searching tweets", resp.StatusCode())
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(resp.String()))
	if err != nil {
		return nil, fmt.Errorf("failed to parse HTML: %w", err)
	}

	posts := parseSearchTimeline(doc)
	if len(posts) > maxResults {
		posts = posts[:maxResults]
	}
	return posts, nil
}

// buildSearchURL constructs the mirror's search URL. The English-language
// filter lives here, on the source side.
func (tc *TwitterSearchClient) buildSearchURL(query string) string {
	values := url.Values{}
	values.Set("f", "tweets")
	values.Set("q", query+" lang:en")
	return fmt.Sprintf("%s/search?%s", tc.baseURL, values.Encode())
}

// parseSearchTimeline extracts posts from a Nitter search result page.
func parseSearchTimeline(doc *goquery.Document) []RawPost {
	var posts []RawPost

	doc.Find(".timeline-item").Each(func(_ int, s *goquery.Selection) {
		text := strings.TrimSpace(s.Find(".tweet-content").Text())
		if text == "" {
			return
		}

		author := strings.TrimSpace(s.Find(".username").First().Text())
		author = strings.TrimPrefix(author, "@")

		var timestamp time.Time
		if title, ok := s.Find(".tweet-date a").Attr("title"); ok {
			if t, err := time.Parse(nitterDateLayout, title); err == nil {
				timestamp = t
			}
		}
		if timestamp.IsZero() {
			return
		}

		post := RawPost{
			Text:      text,
			Author:    author,
			Timestamp: timestamp,
		}

		s.Find(".tweet-stats .tweet-stat").Each(func(_ int, stat *goquery.Selection) {
			count := parseCount(stat.Text())
			icon := stat.Find(".icon-container span").First()
			switch {
			case icon.HasClass("icon-comment"):
				post.Replies = count
			case icon.HasClass("icon-retweet"):
				post.Retweets = count
			case icon.HasClass("icon-heart"):
				post.Likes = count
			}
		})

		posts = append(posts, post)
	})

	return posts
}

// parseCount converts a Nitter stat label ("1,234", "12", "") to an int.
// Zero-engagement stats render as empty strings.
func parseCount(s string) int {
	s = strings.ReplaceAll(strings.TrimSpace(s), ",", "")
	if s == "" {
		return 0
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0
	}
	return n
}
