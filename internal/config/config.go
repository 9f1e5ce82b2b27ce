package config

import (
	"errors"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// OpenAIEmbedderConfig holds configuration for the OpenAI-compatible embedder.
type OpenAIEmbedderConfig struct {
	BaseURL     string `yaml:"base_url"`
	APIKeyEnv   string `yaml:"api_key_env"`
	Model       string `yaml:"model"`
	TimeoutSecs int    `yaml:"timeout_secs"`
}

// EmbedderConfig selects and configures the text embedder implementation.
type EmbedderConfig struct {
	Type   string                `yaml:"type"`
	OpenAI *OpenAIEmbedderConfig `yaml:"openai,omitempty"`
}

// ChunkerConfig configures how documents are split into chunks.
type ChunkerConfig struct {
	Type              string `yaml:"type"`
	SentencesPerChunk int    `yaml:"sentences_per_chunk"`
	OverlapSentences  int    `yaml:"overlap_sentences"`
}

// QdrantConfig contains connection details for a Qdrant vector store.
type QdrantConfig struct {
	URL         string `yaml:"url"`
	APIKey      string `yaml:"api_key"`
	Collection  string `yaml:"collection"`
	TimeoutSecs int    `yaml:"timeout_secs"`
}

// VectorStoreConfig selects and configures the vector store implementation.
type VectorStoreConfig struct {
	Type   string        `yaml:"type"`
	Qdrant *QdrantConfig `yaml:"qdrant,omitempty"`
}

// LLMConfig selects and configures the text-generation backend.
type LLMConfig struct {
	Provider    string  `yaml:"provider"` // "openai" or "anthropic"
	Model       string  `yaml:"model"`
	BaseURL     string  `yaml:"base_url"`
	APIKeyEnv   string  `yaml:"api_key_env"`
	Temperature float64 `yaml:"temperature"`
	MaxTokens   int     `yaml:"max_tokens"`
	TimeoutSecs int     `yaml:"timeout_secs"`
}

// WikipediaConfig configures the factual lookup collaborator.
type WikipediaConfig struct {
	BaseURL          string `yaml:"base_url"`
	TimeoutSecs      int    `yaml:"timeout_secs"`
	DefaultSentences int    `yaml:"default_sentences"`
}

// AgentConfig bounds the tool-augmented reasoning loop.
type AgentConfig struct {
	MaxTurns     int `yaml:"max_turns"`
	MaxToolCalls int `yaml:"max_tool_calls"`
	TimeoutSecs  int `yaml:"timeout_secs"`
	DefaultTopK  int `yaml:"default_top_k"`
}

// IdentityConfig configures anonymized identity assignment.
type IdentityConfig struct {
	IDMin int `yaml:"id_min"`
	IDMax int `yaml:"id_max"`
}

// IngestConfig configures the ingest pipeline.
type IngestConfig struct {
	ExtractProfessions bool `yaml:"extract_professions"`
}

// SummaryConfig selects how candidate summaries are produced.
type SummaryConfig struct {
	Type         string `yaml:"type"` // "llm" or "frequency"
	MaxSentences int    `yaml:"max_sentences"`
}

// AppConfig is the root application configuration structure.
type AppConfig struct {
	Embedder    EmbedderConfig    `yaml:"embedder"`
	Chunker     ChunkerConfig     `yaml:"chunker"`
	VectorStore VectorStoreConfig `yaml:"vector_store"`
	LLM         LLMConfig         `yaml:"llm"`
	Wikipedia   WikipediaConfig   `yaml:"wikipedia"`
	Agent       AgentConfig       `yaml:"agent"`
	Identity    IdentityConfig    `yaml:"identity"`
	Ingest      IngestConfig      `yaml:"ingest"`
	Summary     SummaryConfig     `yaml:"summary"`
}

// Load reads a config from a specified path. If the file does not exist, returns defaults.
func Load(path string) (*AppConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			cfg := defaultConfig()
			return cfg, nil
		}
		return nil, err
	}
	var cfg AppConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}
	applyConfigDefaults(&cfg)
	return &cfg, nil
}

// LoadDefault tries ./config.yaml first, then ~/.config/candidate-search/config.yaml.
// If neither exists, it writes defaults to the user path and returns them.
func LoadDefault() (*AppConfig, string, error) {
	cwdPath := "config.yaml"
	if _, err := os.Stat(cwdPath); err == nil {
		cfg, err := Load(cwdPath)
		return cfg, cwdPath, err
	}
	userPath, err := defaultUserConfigPath()
	if err != nil {
		return nil, "", err
	}
	if _, err := os.Stat(userPath); err == nil {
		cfg, err := Load(userPath)
		return cfg, userPath, err
	}
	cfg := defaultConfig()
	if err := Save(userPath, cfg); err != nil {
		return nil, "", err
	}
	return cfg, userPath, nil
}

// Save writes the config to the given path, creating directories as needed.
func Save(path string, cfg *AppConfig) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

func defaultUserConfigPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", "candidate-search", "config.yaml"), nil
}

func defaultConfig() *AppConfig {
	cfg := &AppConfig{
		Embedder:    EmbedderConfig{Type: "tfidf"},
		Chunker:     ChunkerConfig{Type: "sentence", SentencesPerChunk: 5, OverlapSentences: 1},
		VectorStore: VectorStoreConfig{Type: "memory"},
		LLM: LLMConfig{
			Provider:    "openai",
			Model:       "gpt-4o-mini",
			APIKeyEnv:   "OPENAI_API_KEY",
			Temperature: 0.1,
			MaxTokens:   1000,
			TimeoutSecs: 30,
		},
		Wikipedia: WikipediaConfig{DefaultSentences: 3},
		Agent:     AgentConfig{MaxTurns: 10, MaxToolCalls: 15, TimeoutSecs: 300, DefaultTopK: 10},
		Identity:  IdentityConfig{IDMin: 1000, IDMax: 9999},
		Ingest:    IngestConfig{ExtractProfessions: false},
		Summary:   SummaryConfig{Type: "llm", MaxSentences: 5},
	}
	return cfg
}

func applyConfigDefaults(cfg *AppConfig) {
	if cfg.Chunker.SentencesPerChunk == 0 {
		cfg.Chunker.SentencesPerChunk = 5
	}
	if cfg.Embedder.Type == "openai" && cfg.Embedder.OpenAI != nil {
		if cfg.Embedder.OpenAI.BaseURL == "" {
			cfg.Embedder.OpenAI.BaseURL = "https://api.openai.com/v1"
		}
		if cfg.Embedder.OpenAI.APIKeyEnv == "" {
			cfg.Embedder.OpenAI.APIKeyEnv = "OPENAI_API_KEY"
		}
		if cfg.Embedder.OpenAI.Model == "" {
			cfg.Embedder.OpenAI.Model = "text-embedding-3-small"
		}
		if cfg.Embedder.OpenAI.TimeoutSecs == 0 {
			cfg.Embedder.OpenAI.TimeoutSecs = 30
		}
	}
	if cfg.LLM.Provider == "" {
		cfg.LLM.Provider = "openai"
	}
	if cfg.LLM.APIKeyEnv == "" {
		switch cfg.LLM.Provider {
		case "anthropic":
			cfg.LLM.APIKeyEnv = "ANTHROPIC_API_KEY"
		default:
			cfg.LLM.APIKeyEnv = "OPENAI_API_KEY"
		}
	}
	if cfg.LLM.Model == "" {
		switch cfg.LLM.Provider {
		case "anthropic":
			cfg.LLM.Model = "claude-sonnet-4-20250514"
		default:
			cfg.LLM.Model = "gpt-4o-mini"
		}
	}
	if cfg.LLM.MaxTokens == 0 {
		cfg.LLM.MaxTokens = 1000
	}
	if cfg.LLM.TimeoutSecs == 0 {
		cfg.LLM.TimeoutSecs = 30
	}
	if cfg.Wikipedia.BaseURL == "" {
		cfg.Wikipedia.BaseURL = "https://en.wikipedia.org/w/api.php"
	}
	if cfg.Wikipedia.TimeoutSecs == 0 {
		cfg.Wikipedia.TimeoutSecs = 15
	}
	if cfg.Wikipedia.DefaultSentences == 0 {
		cfg.Wikipedia.DefaultSentences = 3
	}
	if cfg.Agent.MaxTurns == 0 {
		cfg.Agent.MaxTurns = 10
	}
	if cfg.Agent.MaxToolCalls == 0 {
		cfg.Agent.MaxToolCalls = 15
	}
	if cfg.Agent.TimeoutSecs == 0 {
		cfg.Agent.TimeoutSecs = 300
	}
	if cfg.Agent.DefaultTopK == 0 {
		cfg.Agent.DefaultTopK = 10
	}
	if cfg.Identity.IDMin == 0 {
		cfg.Identity.IDMin = 1000
	}
	if cfg.Identity.IDMax == 0 {
		cfg.Identity.IDMax = 9999
	}
	if cfg.Summary.Type == "" {
		cfg.Summary.Type = "llm"
	}
	if cfg.Summary.MaxSentences == 0 {
		cfg.Summary.MaxSentences = 5
	}
}
