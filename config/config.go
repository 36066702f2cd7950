package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	ProjectDir   string `json:"project_dir"`
	ResultsDir   string `json:"results_dir"`
	DataDir      string `json:"data_dir"`
	DataCacheDir string `json:"data_cache_dir"`

	// LLM configuration
	LLMProvider    string `json:"llm_provider"` // "openai" or "deepseek"
	LLMModel       string `json:"llm_model"`
	OpenAIAPIKey   string `json:"openai_api_key"`
	OpenAIBaseURL  string `json:"openai_base_url"`
	DeepSeekAPIKey string `json:"deepseek_api_key"`

	// Requests-per-minute cap on analysis calls
	AnalysisRPM int `json:"analysis_rpm"`

	// Scrape source
	NitterBaseURL string `json:"nitter_base_url"`

	// Fetch queue pacing
	QueueMinDelay time.Duration `json:"queue_min_delay"`
	QueueMaxDelay time.Duration `json:"queue_max_delay"`

	// Default selection window
	HoursBack int `json:"hours_back"`
	MaxItems  int `json:"max_items"`

	CacheEnabled bool   `json:"cache_enabled"`
	Debug        bool   `json:"debug"`
	LogLevel     string `json:"log_level"`
	LogFile      string `json:"log_file"`

	// Eino Debug configuration
	EinoDebugEnabled bool `json:"eino_debug_enabled"`
	EinoDebugPort    int  `json:"eino_debug_port"`
}

func DefaultConfig() *Config {
	currentDir, _ := os.Getwd()

	cfg := &Config{
		ProjectDir:   currentDir,
		ResultsDir:   filepath.Join(currentDir, "results"),
		DataDir:      filepath.Join(currentDir, "data"),
		DataCacheDir: filepath.Join(currentDir, "data", "cache"),

		LLMProvider:   "deepseek",
		LLMModel:      "deepseek-chat",
		OpenAIBaseURL: "https://api.openai.com/v1",

		AnalysisRPM: 30,

		NitterBaseURL: "https://nitter.net",

		QueueMinDelay: 1500 * time.Millisecond,
		QueueMaxDelay: 3500 * time.Millisecond,

		HoursBack: 24,
		MaxItems:  50,

		CacheEnabled: true,
		Debug:        false,
		LogLevel:     "info",

		EinoDebugEnabled: false,
		EinoDebugPort:    52538,
	}

	// Load environment variables from .env file
	_ = godotenv.Load()

	// Override with environment variables if they exist
	cfg.loadFromEnv()

	return cfg
}

func (c *Config) loadFromEnv() {
	if val := os.Getenv("PROJECT_DIR"); val != "" {
		c.ProjectDir = val
	}
	if val := os.Getenv("RESULTS_DIR"); val != "" {
		c.ResultsDir = val
	}
	if val := os.Getenv("DATA_DIR"); val != "" {
		c.DataDir = val
	}
	if val := os.Getenv("DATA_CACHE_DIR"); val != "" {
		c.DataCacheDir = val
	}

	if val := os.Getenv("LLM_PROVIDER"); val != "" {
		c.LLMProvider = val
	}
	if val := os.Getenv("LLM_MODEL"); val != "" {
		c.LLMModel = val
	}
	if val := os.Getenv("OPENAI_API_KEY"); val != "" {
		c.OpenAIAPIKey = val
	}
	if val := os.Getenv("OPENAI_BASE_URL"); val != "" {
		c.OpenAIBaseURL = val
	}
	if val := os.Getenv("DEEPSEEK_API_KEY"); val != "" {
		c.DeepSeekAPIKey = val
	}

	if val := os.Getenv("ANALYSIS_RPM"); val != "" {
		if v, err := strconv.Atoi(val); err == nil && v > 0 {
			c.AnalysisRPM = v
		}
	}

	if val := os.Getenv("NITTER_BASE_URL"); val != "" {
		c.NitterBaseURL = strings.TrimRight(val, "/")
	}

	if val := os.Getenv("QUEUE_MIN_DELAY"); val != "" {
		if d, err := time.ParseDuration(val); err == nil {
			c.QueueMinDelay = d
		}
	}
	if val := os.Getenv("QUEUE_MAX_DELAY"); val != "" {
		if d, err := time.ParseDuration(val); err == nil {
			c.QueueMaxDelay = d
		}
	}

	if val := os.Getenv("HOURS_BACK"); val != "" {
		if v, err := strconv.Atoi(val); err == nil {
			c.HoursBack = v
		}
	}
	if val := os.Getenv("MAX_ITEMS"); val != "" {
		if v, err := strconv.Atoi(val); err == nil {
			c.MaxItems = v
		}
	}

	if val := os.Getenv("CACHE_ENABLED"); val != "" {
		if cache, err := strconv.ParseBool(val); err == nil {
			c.CacheEnabled = cache
		}
	}
	if val := os.Getenv("CRYPTOPULSE_DEBUG"); val != "" {
		if enabled, err := strconv.ParseBool(val); err == nil {
			c.Debug = enabled
		}
	}
	if val := os.Getenv("LOG_LEVEL"); val != "" {
		c.LogLevel = val
	}
	if val := os.Getenv("LOG_FILE"); val != "" {
		c.LogFile = val
	}

	if val := os.Getenv("EINO_DEBUG_ENABLED"); val != "" {
		if enabled, err := strconv.ParseBool(val); err == nil {
			c.EinoDebugEnabled = enabled
		}
	}
	if val := os.Getenv("EINO_DEBUG_PORT"); val != "" {
		if port, err := strconv.Atoi(val); err == nil {
			c.EinoDebugPort = port
		}
	}
}

func (c *Config) EnsureDirectories() error {
	dirs := []string{c.ProjectDir, c.ResultsDir, c.DataDir, c.DataCacheDir}
	for _, dir := range dirs {
		path := strings.TrimSpace(dir)
		if path == "" {
			continue
		}
		if err := os.MkdirAll(path, 0o755); err != nil {
			return fmt.Errorf("create directory %s: %w", path, err)
		}
	}
	return nil
}
