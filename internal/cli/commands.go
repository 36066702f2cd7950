package cli

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/pulselab/cryptopulse/config"
	"github.com/pulselab/cryptopulse/internal/analyzer"
	"github.com/pulselab/cryptopulse/internal/collector"
	"github.com/pulselab/cryptopulse/internal/dataflows"
	"github.com/pulselab/cryptopulse/internal/debug"
	"github.com/pulselab/cryptopulse/internal/display"
	"github.com/pulselab/cryptopulse/internal/llm"
	"github.com/pulselab/cryptopulse/internal/logger"
)

// NewRootCmd creates the root command
func NewRootCmd() *cobra.Command {
	cfg := config.DefaultConfig()

	rootCmd := &cobra.Command{
		Use:   "cryptopulse",
		Short: "CryptoPulse - Crypto Social Sentiment Analysis",
		Long: `CryptoPulse scrapes recent social media posts about a crypto ticker,
scores each post's sentiment with a language model and aggregates the
results into an engagement-weighted market signal.`,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if err := cfg.EnsureDirectories(); err != nil {
				return fmt.Errorf("failed to create directories: %w", err)
			}
			if err := logger.Init(cfg.LogLevel, cfg.LogFile); err != nil {
				return fmt.Errorf("failed to initialize logging: %w", err)
			}
			return debug.NewEinoDebugger(cfg).Initialize()
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return runInteractiveMode(cfg)
		},
	}

	rootCmd.AddCommand(newAnalyzeCmd(cfg))
	rootCmd.AddCommand(newTextCmd(cfg))
	rootCmd.AddCommand(newTextsCmd(cfg))
	rootCmd.AddCommand(newInteractiveCmd(cfg))
	rootCmd.AddCommand(newVersionCmd())
	rootCmd.AddCommand(newConfigCmd(cfg))

	rootCmd.PersistentFlags().Bool("debug", false, "Enable debug mode")

	return rootCmd
}

// newAnalyzeCmd creates the analyze command
func newAnalyzeCmd(cfg *config.Config) *cobra.Command {
	var hoursBack, maxItems int
	var correlate, save bool

	cmd := &cobra.Command{
		Use:   "analyze [TICKER]",
		Short: "Run sentiment analysis for a crypto ticker",
		Long: `Collect recent posts about a crypto ticker, score them and show the
aggregated sentiment.
Example: cryptopulse analyze $BTC --hours=24 --max-items=50`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			w := collector.Window{HoursBack: hoursBack, MaxItems: maxItems}
			return runAnalyzeCommand(cfg, args[0], w, correlate, save)
		},
	}

	cmd.Flags().IntVar(&hoursBack, "hours", cfg.HoursBack, "How far back to look for posts")
	cmd.Flags().IntVar(&maxItems, "max-items", cfg.MaxItems, "Maximum posts to fetch (10-100)")
	cmd.Flags().BoolVar(&correlate, "correlate", false, "Correlate sentiment with recent price changes")
	cmd.Flags().BoolVar(&save, "save", false, "Save results as JSON in the results directory")

	return cmd
}

// newTextCmd creates the text command for ad-hoc scoring
func newTextCmd(cfg *config.Config) *cobra.Command {
	return &cobra.Command{
		Use:   "text [TEXT]",
		Short: "Score the sentiment of a single text",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := buildAnalyzer(cfg)
			if err != nil {
				return err
			}
			scored, err := a.ScoreSingleText(cmd.Context(), args[0])
			if err != nil {
				return fmt.Errorf("scoring failed: %w", err)
			}
			display.ShowScoredText(scored)
			return nil
		},
	}
}

// newTextsCmd creates the texts command for batch ad-hoc scoring
func newTextsCmd(cfg *config.Config) *cobra.Command {
	return &cobra.Command{
		Use:   "texts [TEXT...]",
		Short: "Score multiple texts and aggregate them",
		Long: `Score each text's sentiment and aggregate into a single result.
Texts without engagement data are weighted uniformly.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := buildAnalyzer(cfg)
			if err != nil {
				return err
			}
			result, err := a.ScoreMultipleTexts(cmd.Context(), args)
			if err != nil {
				return fmt.Errorf("scoring failed: %w", err)
			}
			display.NewResultsDisplay(result.Ticker).ShowResult(result)
			return nil
		},
	}
}

// newInteractiveCmd creates the interactive command. The root command with
// no arguments does the same thing.
func newInteractiveCmd(cfg *config.Config) *cobra.Command {
	return &cobra.Command{
		Use:   "interactive",
		Short: "Start interactive analysis mode",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runInteractiveMode(cfg)
		},
	}
}

// newVersionCmd creates the version command
func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Println("CryptoPulse v1.0.0")
			fmt.Println("Crypto Social Sentiment Analysis")
		},
	}
}

// newConfigCmd creates the config command
func newConfigCmd(cfg *config.Config) *cobra.Command {
	configCmd := &cobra.Command{
		Use:   "config",
		Short: "Configuration management",
		Long:  "Manage CryptoPulse configuration settings",
	}

	configCmd.AddCommand(&cobra.Command{
		Use:   "show",
		Short: "Show current configuration",
		Run: func(cmd *cobra.Command, args []string) {
			showConfig(cfg)
		},
	})

	configCmd.AddCommand(&cobra.Command{
		Use:   "validate",
		Short: "Validate configuration and dependencies",
		RunE: func(cmd *cobra.Command, args []string) error {
			return validateConfig(cfg)
		},
	})

	return configCmd
}

// buildAnalyzer wires the pipeline from the current configuration.
func buildAnalyzer(cfg *config.Config) (*analyzer.Analyzer, error) {
	chatModel, err := llm.NewChatModel(context.Background(), cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create chat model: %w", err)
	}
	searcher := dataflows.NewTwitterSearchClient(cfg.NitterBaseURL)
	return analyzer.New(cfg, searcher, chatModel), nil
}

// runAnalyzeCommand executes the main analysis workflow
func runAnalyzeCommand(cfg *config.Config, ticker string, w collector.Window, correlate, save bool) error {
	ctx := context.Background()

	if strings.TrimSpace(ticker) == "" {
		return fmt.Errorf("ticker is required")
	}

	a, err := buildAnalyzer(cfg)
	if err != nil {
		return err
	}

	done := make(chan struct{})
	go func() {
		defer close(done)
		for ev := range a.Progress() {
			display.DisplayProgress(ev.Stage, ev.Message, ev.Completed, ev.Total)
			if ev.Stage == "done" {
				return
			}
		}
	}()

	fmt.Printf("🚀 Starting sentiment analysis for %s (past %dh, up to %d posts)\n",
		ticker, w.HoursBack, w.MaxItems)

	result, err := a.RunAnalysis(ctx, ticker, w)
	if err != nil {
		return fmt.Errorf("analysis failed: %w", err)
	}
	<-done

	d := display.NewResultsDisplay(ticker)
	d.ShowResult(result)

	if correlate {
		corr, err := a.CorrelateWithMarket(ctx, ticker, result)
		if err != nil {
			display.DisplayWarning(fmt.Sprintf("correlation unavailable: %v", err))
		} else {
			d.ShowCorrelation(corr)
		}
	}

	if save {
		path, err := d.SaveResultsToFile(result, cfg.ResultsDir)
		if err != nil {
			display.DisplayWarning(fmt.Sprintf("could not save results: %v", err))
		} else {
			display.DisplaySuccess(fmt.Sprintf("Results saved to %s", path))
		}
	}

	return nil
}

// showConfig displays the current configuration
func showConfig(cfg *config.Config) {
	fmt.Println("📋 Current CryptoPulse Configuration:")
	fmt.Println("═══════════════════════════════════════")
	fmt.Printf("Project Directory:    %s\n", cfg.ProjectDir)
	fmt.Printf("Results Directory:    %s\n", cfg.ResultsDir)
	fmt.Printf("Data Directory:       %s\n", cfg.DataDir)
	fmt.Printf("Cache Directory:      %s\n", cfg.DataCacheDir)
	fmt.Println()
	fmt.Printf("LLM Provider:         %s\n", cfg.LLMProvider)
	fmt.Printf("LLM Model:            %s\n", cfg.LLMModel)
	fmt.Printf("Analysis RPM:         %d\n", cfg.AnalysisRPM)
	fmt.Println()
	fmt.Printf("Nitter Base URL:      %s\n", cfg.NitterBaseURL)
	fmt.Printf("Queue Delay:          %s - %s\n", cfg.QueueMinDelay, cfg.QueueMaxDelay)
	fmt.Printf("Default Window:       %dh / %d posts\n", cfg.HoursBack, cfg.MaxItems)
	fmt.Println()
	fmt.Printf("Cache Enabled:        %t\n", cfg.CacheEnabled)
	fmt.Printf("Debug Mode:           %t\n", cfg.Debug)
	fmt.Printf("Eino Debug:           %t\n", cfg.EinoDebugEnabled)
	if cfg.EinoDebugEnabled {
		fmt.Printf("Eino Debug Port:      %d\n", cfg.EinoDebugPort)
		fmt.Printf("Debug URL:            http://localhost:%d\n", cfg.EinoDebugPort)
	}
	fmt.Println()

	fmt.Println("🔌 API Configuration:")
	fmt.Println("─────────────────────")
	if cfg.DeepSeekAPIKey != "" {
		fmt.Println("DeepSeek API:         ✅ Configured")
	} else {
		fmt.Println("DeepSeek API:         ❌ Not configured")
	}
	if cfg.OpenAIAPIKey != "" {
		fmt.Println("OpenAI API:           ✅ Configured")
	} else {
		fmt.Println("OpenAI API:           ❌ Not configured")
	}
}

// validateConfig validates the configuration and dependencies
func validateConfig(cfg *config.Config) error {
	fmt.Println("🔍 Validating CryptoPulse Configuration...")
	fmt.Println("═══════════════════════════════════════")

	fmt.Print("📁 Checking directories... ")
	if err := cfg.EnsureDirectories(); err != nil {
		fmt.Println("❌")
		return fmt.Errorf("directory validation failed: %w", err)
	}
	fmt.Println("✅")

	fmt.Print("🔑 Checking API keys... ")
	warnings := []string{}

	switch strings.ToLower(cfg.LLMProvider) {
	case "deepseek":
		if cfg.DeepSeekAPIKey == "" {
			warnings = append(warnings, "DEEPSEEK_API_KEY not configured")
		}
	case "openai":
		if cfg.OpenAIAPIKey == "" {
			warnings = append(warnings, "OPENAI_API_KEY not configured")
		}
	default:
		warnings = append(warnings, fmt.Sprintf("unknown LLM provider %q", cfg.LLMProvider))
	}

	if len(warnings) > 0 {
		fmt.Println("⚠️")
		for _, warning := range warnings {
			fmt.Printf("  ⚠️  %s\n", warning)
		}
	} else {
		fmt.Println("✅")
	}

	fmt.Print("⚙️  Checking configuration values... ")
	if cfg.QueueMinDelay <= 0 || cfg.QueueMaxDelay < cfg.QueueMinDelay {
		fmt.Println("❌")
		return fmt.Errorf("queue delays must satisfy 0 < min <= max")
	}
	if err := (collector.Window{HoursBack: cfg.HoursBack, MaxItems: cfg.MaxItems}).Validate(); err != nil {
		fmt.Println("❌")
		return fmt.Errorf("default window invalid: %w", err)
	}
	fmt.Println("✅")

	fmt.Println()
	if len(warnings) == 0 {
		fmt.Println("✅ Configuration validation completed successfully!")
	} else {
		fmt.Printf("⚠️  Configuration validation completed with %d warnings.\n", len(warnings))
	}

	fmt.Println()
	fmt.Println("💡 Tips:")
	fmt.Println("  • Set DEEPSEEK_API_KEY or OPENAI_API_KEY for sentiment scoring")
	fmt.Println("  • Set NITTER_BASE_URL to point at a reachable Nitter instance")
	fmt.Println("  • Use 'cryptopulse analyze $BTC' to start your first analysis")

	return nil
}

// runInteractiveMode starts the interactive analysis mode
func runInteractiveMode(cfg *config.Config) error {
	display.DisplayWelcomeBanner()

	for {
		selections, err := PromptForSelections(cfg)
		if err != nil {
			return err
		}

		confirmed, err := PromptForConfirmation(selections)
		if err != nil {
			return err
		}
		if !confirmed {
			continue
		}

		w := collector.Window{HoursBack: selections.HoursBack, MaxItems: selections.MaxItems}
		if err := runAnalyzeCommand(cfg, selections.Ticker, w, selections.Correlate, selections.Save); err != nil {
			display.DisplayError(err, "analysis")
		}

		again, err := PromptForRestartOrExit()
		if err != nil || !again {
			fmt.Println("👋 Thank you for using CryptoPulse!")
			return err
		}
	}
}
