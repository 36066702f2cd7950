package config

import (
	"testing"
	"time"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.LLMProvider != "deepseek" {
		t.Errorf("expected default provider deepseek, got %s", cfg.LLMProvider)
	}
	if cfg.QueueMinDelay != 1500*time.Millisecond || cfg.QueueMaxDelay != 3500*time.Millisecond {
		t.Errorf("unexpected queue delays: %v / %v", cfg.QueueMinDelay, cfg.QueueMaxDelay)
	}
	if cfg.HoursBack != 24 || cfg.MaxItems != 50 {
		t.Errorf("unexpected default window: %d hours / %d items", cfg.HoursBack, cfg.MaxItems)
	}
}

func TestLoadFromEnv(t *testing.T) {
	t.Setenv("LLM_PROVIDER", "openai")
	t.Setenv("LLM_MODEL", "gpt-4o-mini")
	t.Setenv("NITTER_BASE_URL", "https://nitter.example.com/")
	t.Setenv("ANALYSIS_RPM", "12")
	t.Setenv("QUEUE_MIN_DELAY", "10ms")
	t.Setenv("MAX_ITEMS", "30")

	cfg := DefaultConfig()

	if cfg.LLMProvider != "openai" {
		t.Errorf("expected provider openai, got %s", cfg.LLMProvider)
	}
	if cfg.LLMModel != "gpt-4o-mini" {
		t.Errorf("expected model gpt-4o-mini, got %s", cfg.LLMModel)
	}
	if cfg.NitterBaseURL != "https://nitter.example.com" {
		t.Errorf("expected trailing slash trimmed, got %s", cfg.NitterBaseURL)
	}
	if cfg.AnalysisRPM != 12 {
		t.Errorf("expected RPM 12, got %d", cfg.AnalysisRPM)
	}
	if cfg.QueueMinDelay != 10*time.Millisecond {
		t.Errorf("expected 10ms min delay, got %v", cfg.QueueMinDelay)
	}
	if cfg.MaxItems != 30 {
		t.Errorf("expected 30 max items, got %d", cfg.MaxItems)
	}
}

func TestLoadFromEnvIgnoresInvalid(t *testing.T) {
	t.Setenv("ANALYSIS_RPM", "not-a-number")
	t.Setenv("QUEUE_MAX_DELAY", "soon")

	cfg := DefaultConfig()

	if cfg.AnalysisRPM != 30 {
		t.Errorf("invalid RPM should keep default 30, got %d", cfg.AnalysisRPM)
	}
	if cfg.QueueMaxDelay != 3500*time.Millisecond {
		t.Errorf("invalid delay should keep default, got %v", cfg.QueueMaxDelay)
	}
}
