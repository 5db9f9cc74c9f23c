// Package config loads the application settings from a YAML file.
package config

import (
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Default file looked up when no explicit path is given.
const DefaultConfigFile = "config.yaml"

// ChromaConfig holds connection details for the Chroma vector store.
type ChromaConfig struct {
	URL         string `yaml:"url"`
	TimeoutSecs int    `yaml:"timeout_secs"`
}

// OllamaConfig configures the local embedding endpoint.
type OllamaConfig struct {
	URL         string `yaml:"url"`
	Model       string `yaml:"model"`
	TimeoutSecs int    `yaml:"timeout_secs"`
}

// GeminiConfig configures the Gemini chat and summarization models.
type GeminiConfig struct {
	ChatModel      string `yaml:"chat_model"`
	SummarizeModel string `yaml:"summarize_model"`
}

// YoutubeConfig configures the YouTube search and transcript endpoints.
type YoutubeConfig struct {
	APIURL        string `yaml:"api_url"`
	TranscriptURL string `yaml:"transcript_url"`
	MaxResults    int    `yaml:"max_results"`
	TimeoutSecs   int    `yaml:"timeout_secs"`
}

// WikipediaConfig configures the Wikipedia extract endpoint.
type WikipediaConfig struct {
	APIURL      string `yaml:"api_url"`
	TimeoutSecs int    `yaml:"timeout_secs"`
}

// Config is the root application configuration.
type Config struct {
	Chroma    ChromaConfig    `yaml:"chroma"`
	Ollama    OllamaConfig    `yaml:"ollama"`
	Gemini    GeminiConfig    `yaml:"gemini"`
	Youtube   YoutubeConfig   `yaml:"youtube"`
	Wikipedia WikipediaConfig `yaml:"wikipedia"`

	// Chunking settings for the admission path.
	ChunkSize    int `yaml:"chunk_size"`
	ChunkOverlap int `yaml:"chunk_overlap"`

	// AddSimilarityThreshold gates admission: a document tagged with a query
	// is only stored if cosine similarity to that query is at least this
	// value (range -1..1, higher is more similar).
	AddSimilarityThreshold float64 `yaml:"add_similarity_threshold"`

	// SearchDistanceThreshold filters retrieval: candidates are kept only if
	// their cosine distance is strictly below this value (lower is closer).
	// Independent from the admission threshold, tuned separately.
	SearchDistanceThreshold float64 `yaml:"search_distance_threshold"`

	// MaxSummaryLength is the raw-content length above which external text
	// is summarized before storage instead of stored verbatim.
	MaxSummaryLength int `yaml:"max_summary_length"`

	// LibraryPath is the local drop folder scanned for book notes.
	LibraryPath string `yaml:"library_path"`

	ServerPort string `yaml:"server_port"`
}

// Load reads the config from path. A missing file yields the defaults.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			cfg := defaultConfig()
			return cfg, nil
		}
		return nil, fmt.Errorf("could not read config file %s: %w", path, err)
	}
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("could not parse config file %s: %w", path, err)
	}
	applyDefaults(&cfg)
	return &cfg, nil
}

func defaultConfig() *Config {
	cfg := &Config{}
	applyDefaults(cfg)
	return cfg
}

func applyDefaults(cfg *Config) {
	if cfg.Chroma.URL == "" {
		cfg.Chroma.URL = "http://localhost:8000"
	}
	if cfg.Chroma.TimeoutSecs == 0 {
		cfg.Chroma.TimeoutSecs = 30
	}
	if cfg.Ollama.URL == "" {
		cfg.Ollama.URL = "http://localhost:11434"
	}
	if cfg.Ollama.Model == "" {
		cfg.Ollama.Model = "nomic-embed-text:v1.5"
	}
	if cfg.Ollama.TimeoutSecs == 0 {
		cfg.Ollama.TimeoutSecs = 30
	}
	if cfg.Gemini.ChatModel == "" {
		cfg.Gemini.ChatModel = "gemini-2.5-flash"
	}
	if cfg.Gemini.SummarizeModel == "" {
		cfg.Gemini.SummarizeModel = "gemini-2.5-flash"
	}
	if cfg.Youtube.APIURL == "" {
		cfg.Youtube.APIURL = "https://www.googleapis.com/youtube/v3"
	}
	if cfg.Youtube.TranscriptURL == "" {
		cfg.Youtube.TranscriptURL = "https://www.youtube.com/api/timedtext"
	}
	if cfg.Youtube.MaxResults == 0 {
		cfg.Youtube.MaxResults = 3
	}
	if cfg.Youtube.TimeoutSecs == 0 {
		cfg.Youtube.TimeoutSecs = 30
	}
	if cfg.Wikipedia.APIURL == "" {
		cfg.Wikipedia.APIURL = "https://en.wikipedia.org/w/api.php"
	}
	if cfg.Wikipedia.TimeoutSecs == 0 {
		cfg.Wikipedia.TimeoutSecs = 30
	}
	if cfg.ChunkSize == 0 {
		cfg.ChunkSize = 500
	}
	if cfg.ChunkOverlap == 0 {
		cfg.ChunkOverlap = 50
	}
	if cfg.AddSimilarityThreshold == 0 {
		cfg.AddSimilarityThreshold = 0.3
	}
	if cfg.SearchDistanceThreshold == 0 {
		cfg.SearchDistanceThreshold = 0.8
	}
	if cfg.MaxSummaryLength == 0 {
		cfg.MaxSummaryLength = 500
	}
	if cfg.ServerPort == "" {
		cfg.ServerPort = "8080"
	}
}
