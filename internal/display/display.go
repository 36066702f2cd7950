// Package display renders analysis results for the terminal.
package display

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/pulselab/cryptopulse/internal/sentiment"
)

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#7C3AED")).
			Padding(0, 1)

	headerStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#3B82F6")).
			BorderStyle(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("#3B82F6")).
			Padding(1, 2).
			Width(78)

	bullishStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#10B981")).
			Bold(true)

	bearishStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#EF4444")).
			Bold(true)

	neutralStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#F59E0B")).
			Bold(true)

	dimStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#6B7280"))

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#EF4444")).
			Bold(true)
)

// ResultsDisplay handles the display of analysis results
type ResultsDisplay struct {
	ticker string
}

// NewResultsDisplay creates a new results display handler
func NewResultsDisplay(ticker string) *ResultsDisplay {
	return &ResultsDisplay{ticker: ticker}
}

// ShowResult renders the full aggregate result
func (d *ResultsDisplay) ShowResult(result *sentiment.AggregateResult) {
	d.showHeader(result)
	d.showSentimentGauge(result)
	d.showStats(&result.Stats)
	d.showThemes(result.Themes)
	d.showTopPosts(result.ScoredPosts, 5)
	d.showSummary(result.Summary)
	d.showFooter()
}

func (d *ResultsDisplay) showHeader(result *sentiment.AggregateResult) {
	header := fmt.Sprintf("📊 Sentiment Analysis: %s | 🕐 %s",
		result.Ticker,
		result.Timestamp.Format("2006-01-02 15:04:05"),
	)
	fmt.Println()
	fmt.Println(headerStyle.Render(header))
}

func (d *ResultsDisplay) showSentimentGauge(result *sentiment.AggregateResult) {
	label, style := sentimentLabel(result.WeightedSentiment)
	fmt.Printf("\n🎯 Weighted Sentiment: %s %s\n",
		style.Render(fmt.Sprintf("%+.3f", result.WeightedSentiment)),
		style.Render(label),
	)
	fmt.Printf("   %s\n", renderGauge(result.WeightedSentiment, 41))
}

// renderGauge draws a -1..+1 scale with a marker at score.
func renderGauge(score float64, width int) string {
	if score < -1 {
		score = -1
	}
	if score > 1 {
		score = 1
	}
	pos := int((score + 1) / 2 * float64(width-1))
	var b strings.Builder
	b.WriteString("[")
	for i := 0; i < width; i++ {
		if i == pos {
			b.WriteString("●")
		} else if i == width/2 {
			b.WriteString("|")
		} else {
			b.WriteString("─")
		}
	}
	b.WriteString("]")
	return "-1 " + b.String() + " +1"
}

func (d *ResultsDisplay) showStats(st *sentiment.Stats) {
	fmt.Println("\n📈 STATISTICS")
	fmt.Println("══════════════════════════════════════════════════════════════════════════")
	fmt.Printf("   Posts analyzed:     %d\n", st.Count)
	fmt.Printf("   Mean score:         %+.3f\n", st.Mean)
	fmt.Printf("   Std deviation:      %.3f\n", st.Std)
	fmt.Printf("   Score range:        %+.2f to %+.2f\n", st.Min, st.Max)
	fmt.Printf("   Avg engagement:     %.1f\n", st.AvgEngagement)
}

func (d *ResultsDisplay) showThemes(themes []string) {
	fmt.Println("\n🏷️  THEMES")
	fmt.Println("══════════════════════════════════════════════════════════════════════════")
	if len(themes) == 0 {
		fmt.Println("   (none detected)")
		return
	}
	fmt.Printf("   %s\n", strings.Join(themes, ", "))
}

func (d *ResultsDisplay) showTopPosts(posts []sentiment.ScoredPost, limit int) {
	fmt.Println("\n💬 TOP POSTS")
	fmt.Println("══════════════════════════════════════════════════════════════════════════")
	if len(posts) > limit {
		posts = posts[:limit]
	}
	for i, p := range posts {
		_, style := sentimentLabel(p.SentimentScore)
		fmt.Printf("   %d. %s %s\n", i+1,
			style.Render(fmt.Sprintf("[%+.2f]", p.SentimentScore)),
			truncateString(p.Post.Text, 60),
		)
		meta := fmt.Sprintf("      @%s · ❤️ %d 🔁 %d 💬 %d",
			strings.TrimPrefix(p.Post.Author, "@"),
			p.Post.Likes, p.Post.Retweets, p.Post.Replies,
		)
		fmt.Println(dimStyle.Render(meta))
	}
}

func (d *ResultsDisplay) showSummary(summary string) {
	if summary == "" {
		return
	}
	fmt.Println("\n📝 MARKET SUMMARY")
	fmt.Println("══════════════════════════════════════════════════════════════════════════")
	displayWrappedText(summary, "   ")
}

// ShowCorrelation renders a sentiment/price correlation result
func (d *ResultsDisplay) ShowCorrelation(corr *sentiment.CorrelationResult) {
	fmt.Println("\n📉 PRICE CORRELATION")
	fmt.Println("══════════════════════════════════════════════════════════════════════════")
	fmt.Printf("   Pearson coefficient: %+.3f (%d samples)\n", corr.Correlation, corr.Samples)
	fmt.Printf("   %s\n", corr.Interpretation)
}

// ShowScoredText renders a single ad-hoc scoring result
func ShowScoredText(post *sentiment.ScoredPost) {
	label, style := sentimentLabel(post.SentimentScore)
	fmt.Printf("\n🎯 Score: %s %s\n",
		style.Render(fmt.Sprintf("%+.3f", post.SentimentScore)),
		style.Render(label),
	)
	if post.Source != "primary" {
		fmt.Println(dimStyle.Render("   (keyword fallback; analysis output had no parseable score)"))
	}
	fmt.Printf("   %s\n", renderGauge(post.SentimentScore, 41))
}

func (d *ResultsDisplay) showFooter() {
	fmt.Println("\n══════════════════════════════════════════════════════════════════════════")
	fmt.Println(dimStyle.Render("⚠️  This analysis is for informational purposes only and should not be"))
	fmt.Println(dimStyle.Render("   considered as financial advice. Always do your own research."))
	fmt.Println()
}

// DisplayProgress shows pipeline progress in real-time
func DisplayProgress(stage, message string, completed, total int) {
	if total > 0 {
		barWidth := 30
		filledWidth := (completed * barWidth) / total
		bar := strings.Repeat("█", filledWidth) + strings.Repeat("░", barWidth-filledWidth)
		fmt.Printf("\r🔄 %-10s [%s] %d/%d %s", stage, bar, completed, total, message)
		if completed >= total {
			fmt.Println(" ✅")
		}
		return
	}
	fmt.Printf("🔄 %-10s %s\n", stage, message)
}

// DisplayError shows formatted error messages
func DisplayError(err error, context string) {
	fmt.Println(errorStyle.Render(fmt.Sprintf("❌ Error in %s:", context)))
	fmt.Printf("   %v\n", err)
}

// DisplayWarning shows formatted warning messages
func DisplayWarning(message string) {
	fmt.Printf("⚠️  Warning: %s\n", message)
}

// DisplaySuccess shows formatted success messages
func DisplaySuccess(message string) {
	fmt.Println(bullishStyle.Render(fmt.Sprintf("✅ %s", message)))
}

// DisplayInfo shows formatted info messages
func DisplayInfo(message string) {
	fmt.Printf("ℹ️  %s\n", message)
}

// DisplayWelcomeBanner shows the welcome banner
func DisplayWelcomeBanner() {
	banner := `
 ██████╗██████╗ ██╗   ██╗██████╗ ████████╗ ██████╗ ██████╗ ██╗   ██╗██╗     ███████╗███████╗
██╔════╝██╔══██╗╚██╗ ██╔╝██╔══██╗╚══██╔══╝██╔═══██╗██╔══██╗██║   ██║██║     ██╔════╝██╔════╝
██║     ██████╔╝ ╚████╔╝ ██████╔╝   ██║   ██║   ██║██████╔╝██║   ██║██║     ███████╗█████╗
██║     ██╔══██╗  ╚██╔╝  ██╔═══╝    ██║   ██║   ██║██╔═══╝ ██║   ██║██║     ╚════██║██╔══╝
╚██████╗██║  ██║   ██║   ██║        ██║   ╚██████╔╝██║     ╚██████╔╝███████╗███████║███████╗
 ╚═════╝╚═╝  ╚═╝   ╚═╝   ╚═╝        ╚═╝    ╚═════╝ ╚═╝      ╚═════╝ ╚══════╝╚══════╝╚══════╝

              🚀 Crypto Social Sentiment Analysis 🚀
`
	fmt.Print(titleStyle.Render(banner))
	fmt.Println()
}

// SaveResultsToFile saves an aggregate result to a JSON file under dir.
func (d *ResultsDisplay) SaveResultsToFile(result *sentiment.AggregateResult, dir string) (string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create results directory: %w", err)
	}

	name := fmt.Sprintf("%s_%s.json",
		strings.TrimPrefix(strings.ToUpper(d.ticker), "$"),
		result.Timestamp.Format("20060102_150405"),
	)
	path := filepath.Join(dir, name)

	data, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		return "", fmt.Errorf("marshal results: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("write results file: %w", err)
	}
	return path, nil
}

func sentimentLabel(score float64) (string, lipgloss.Style) {
	switch {
	case score > 0.3:
		return "BULLISH 🟢", bullishStyle
	case score < -0.3:
		return "BEARISH 🔴", bearishStyle
	default:
		return "NEUTRAL 🟡", neutralStyle
	}
}

func displayWrappedText(text, indent string) {
	const maxWidth = 75
	for _, paragraph := range strings.Split(text, "\n") {
		words := strings.Fields(paragraph)
		if len(words) == 0 {
			fmt.Println()
			continue
		}
		line := indent + words[0]
		for i := 1; i < len(words); i++ {
			if len(line)+1+len(words[i]) > maxWidth {
				fmt.Println(line)
				line = indent + words[i]
			} else {
				line += " " + words[i]
			}
		}
		fmt.Println(line)
	}
}

func truncateString(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen-3] + "..."
}
