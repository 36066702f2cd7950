package dataflows

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/PuerkitoBio/goquery"
)

const searchPageFixture = `<!DOCTYPE html>
<html><body><div class="timeline">
  <div class="timeline-item">
    <a class="fullname" href="/alice">Alice</a>
    <a class="username" href="/alice">@alice</a>
    <span class="tweet-date"><a href="/alice/status/1" title="Jan 2, 2026 · 3:04 PM UTC">Jan 2</a></span>
    <div class="tweet-content media-body">$BTC breaking out, very bullish setup</div>
    <div class="tweet-stats">
      <span class="tweet-stat"><div class="icon-container"><span class="icon-comment"></span> 12</div></span>
      <span class="tweet-stat"><div class="icon-container"><span class="icon-retweet"></span> 1,234</div></span>
      <span class="tweet-stat"><div class="icon-container"><span class="icon-quote"></span> 3</div></span>
      <span class="tweet-stat"><div class="icon-container"><span class="icon-heart"></span> 567</div></span>
    </div>
  </div>
  <div class="timeline-item">
    <a class="username" href="/bob">@bob</a>
    <span class="tweet-date"><a href="/bob/status/2" title="Jan 2, 2026 · 1:00 PM UTC">Jan 2</a></span>
    <div class="tweet-content media-body">selling everything, bearish</div>
    <div class="tweet-stats">
      <span class="tweet-stat"><div class="icon-container"><span class="icon-comment"></span></div></span>
      <span class="tweet-stat"><div class="icon-container"><span class="icon-retweet"></span></div></span>
      <span class="tweet-stat"><div class="icon-container"><span class="icon-heart"></span> 2</div></span>
    </div>
  </div>
  <div class="timeline-item show-more"><a href="?cursor=x">Load more</a></div>
</div></body></html>`

func TestParseSearchTimeline(t *testing.T) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(searchPageFixture))
	if err != nil {
		t.Fatalf("parse fixture: %v", err)
	}

	posts := parseSearchTimeline(doc)
	if len(posts) != 2 {
		t.Fatalf("expected 2 posts, got %d", len(posts))
	}

	first := posts[0]
	if first.Author != "alice" {
		t.Errorf("author = %q, want alice", first.Author)
	}
	if !strings.Contains(first.Text, "bullish") {
		t.Errorf("unexpected text: %q", first.Text)
	}
	if first.Replies != 12 || first.Retweets != 1234 || first.Likes != 567 {
		t.Errorf("stats = %d/%d/%d, want 12/1234/567", first.Replies, first.Retweets, first.Likes)
	}
	if first.Engagement() != 12+1234+567 {
		t.Errorf("engagement = %d", first.Engagement())
	}
	want := time.Date(2026, 1, 2, 15, 4, 0, 0, time.UTC)
	if !first.Timestamp.Equal(want) {
		t.Errorf("timestamp = %v, want %v", first.Timestamp, want)
	}

	second := posts[1]
	if second.Likes != 2 || second.Retweets != 0 || second.Replies != 0 {
		t.Errorf("empty stats should parse as zero, got %d/%d/%d",
			second.Replies, second.Retweets, second.Likes)
	}
}

func TestSearchAgainstServer(t *testing.T) {
	var gotQuery string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.Query().Get("q")
		w.Write([]byte(searchPageFixture))
	}))
	defer srv.Close()

	tc := NewTwitterSearchClient(srv.URL)
	posts, err := tc.Search(context.Background(), "$BTC -filter:retweets", 1)
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(posts) != 1 {
		t.Fatalf("maxResults not applied, got %d posts", len(posts))
	}
	if !strings.Contains(gotQuery, "lang:en") {
		t.Errorf("language filter missing from query %q", gotQuery)
	}
}

func TestSearchHTTPError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "rate limited", http.StatusTooManyRequests)
	}))
	defer srv.Close()

	tc := NewTwitterSearchClient(srv.URL)
	if _, err := tc.Search(context.Background(), "$BTC", 10); err == nil {
		t.Fatal("expected error on HTTP 429")
	}
}

func TestParseCount(t *testing.T) {
	cases := map[string]int{"": 0, " 12 ": 12, "1,234": 1234, "n/a": 0}
	for in, want := range cases {
		if got := parseCount(in); got != want {
			t.Errorf("parseCount(%q) = %d, want %d", in, got, want)
		}
	}
}
