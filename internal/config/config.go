package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/Kavirubc/gh-labeler/internal/retry"
)

// Prediction engines
const (
	EngineLLM    = "llm"
	EngineVector = "vector"
)

// Config represents the full application configuration
type Config struct {
	GitHub       GitHubConfig       `yaml:"github"`
	Download     DownloadConfig     `yaml:"download"`
	Predictor    PredictorConfig    `yaml:"predictor"`
	LLM          LLMConfig          `yaml:"llm"`
	Embedding    EmbeddingConfig    `yaml:"embedding"`
	Qdrant       QdrantConfig       `yaml:"qdrant"`
	Index        IndexConfig        `yaml:"index"`
	Repositories []RepositoryConfig `yaml:"repositories"`
}

// GitHubConfig contains GitHub API settings
type GitHubConfig struct {
	Token             string  `yaml:"token"`
	Host              string  `yaml:"host"`
	RequestsPerSecond float64 `yaml:"requests_per_second"`
	// Retries are the page fetch backoff delays in seconds.
	Retries []int `yaml:"retries"`
	// LabelRetries are the label mutation backoff delays in seconds.
	LabelRetries []int `yaml:"label_retries"`
}

// DownloadConfig contains corpus download settings
type DownloadConfig struct {
	LabelPrefix string `yaml:"label_prefix"`
	PageSize    int    `yaml:"page_size"`
	PageLimit   int    `yaml:"page_limit"`
	IssueLimit  int    `yaml:"issue_limit"`
	PullLimit   int    `yaml:"pull_limit"`
	MaxLabels   int    `yaml:"max_labels"`
	MaxFiles    int    `yaml:"max_files"`
	IssueData   string `yaml:"issue_data"`
	PullData    string `yaml:"pull_data"`
}

// PredictorConfig contains label prediction settings
type PredictorConfig struct {
	Engine          string   `yaml:"engine"`
	Threshold       float64  `yaml:"threshold"`
	Neighbors       int      `yaml:"neighbors"`
	ExcludedAuthors []string `yaml:"excluded_authors"`
	// DefaultLabel is added when no prediction is confident enough and
	// removed once an area label is applied.
	DefaultLabel string `yaml:"default_label"`
	// Labels restricts the LLM engine's candidates. Empty means the
	// repository's labels matching the prefix.
	Labels []string `yaml:"labels"`
}

// LLMConfig contains chat model settings for the llm engine
type LLMConfig struct {
	Provider string `yaml:"provider"`
	Model    string `yaml:"model"`
	APIKey   string `yaml:"api_key"`
}

// QdrantConfig contains Qdrant connection settings
type QdrantConfig struct {
	URL    string `yaml:"url"`
	APIKey string `yaml:"api_key"`
}

// EmbeddingConfig contains embedding provider settings
type EmbeddingConfig struct {
	Primary  ProviderConfig `yaml:"primary"`
	Fallback ProviderConfig `yaml:"fallback"`
}

// ProviderConfig contains settings for an embedding provider
type ProviderConfig struct {
	Provider   string `yaml:"provider"`
	Model      string `yaml:"model"`
	APIKey     string `yaml:"api_key"`
	Dimensions int    `yaml:"dimensions"`
}

// IndexConfig contains corpus indexing settings
type IndexConfig struct {
	BatchSize int `yaml:"batch_size"`
}

// RepositoryConfig contains settings for a specific repository
type RepositoryConfig struct {
	Org         string  `yaml:"org"`
	Repo        string  `yaml:"repo"`
	Enabled     bool    `yaml:"enabled"`
	LabelPrefix string  `yaml:"label_prefix,omitempty"`
	Threshold   float64 `yaml:"threshold,omitempty"`
}

// FullName returns org/repo
func (r RepositoryConfig) FullName() string {
	return r.Org + "/" + r.Repo
}

// Default returns a configuration with every default applied
func Default() *Config {
	cfg := &Config{}
	applyDefaults(cfg)
	return cfg
}

// Load reads and parses config from the given path
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	expandConfigEnvVars(&cfg)
	applyDefaults(&cfg)

	return &cfg, nil
}

// LoadOptional loads the config found by FindConfigPath, or the
// defaults when there is none. An explicit path must exist.
func LoadOptional(explicit string) (*Config, string, error) {
	path := FindConfigPath(explicit)
	if path == "" {
		return Default(), "", nil
	}

	cfg, err := Load(path)
	if err != nil {
		if explicit == "" && errors.Is(err, os.ErrNotExist) {
			return Default(), "", nil
		}
		return nil, path, err
	}
	return cfg, path, nil
}

// FindConfigPath looks for config in common locations
func FindConfigPath(explicit string) string {
	if explicit != "" {
		return explicit
	}

	paths := []string{
		".github/labeler.yaml",
		".github/labeler.yml",
		"labeler.yaml",
		"labeler.yml",
	}

	for _, p := range paths {
		if _, err := os.Stat(p); err == nil {
			return p
		}
	}

	if home, err := os.UserHomeDir(); err == nil {
		homePath := filepath.Join(home, ".config", "gh-labeler", "config.yaml")
		if _, err := os.Stat(homePath); err == nil {
			return homePath
		}
	}

	return ""
}

// RetryPolicy returns the page fetch retry schedule
func (cfg *Config) RetryPolicy() retry.Policy {
	return retry.Seconds(cfg.GitHub.Retries...)
}

// LabelRetryPolicy returns the label mutation retry schedule
func (cfg *Config) LabelRetryPolicy() retry.Policy {
	return retry.Seconds(cfg.GitHub.LabelRetries...)
}

// ResolveToken picks the GitHub token: the flag value, then the config
// file, then GITHUB_TOKEN. An empty result leaves lookup to go-gh.
func (cfg *Config) ResolveToken(flag string) string {
	if flag != "" {
		return flag
	}
	if cfg.GitHub.Token != "" {
		return cfg.GitHub.Token
	}
	return os.Getenv("GITHUB_TOKEN")
}

// GetRepoConfig returns config for a specific repository
func (cfg *Config) GetRepoConfig(org, repo string) *RepositoryConfig {
	for i := range cfg.Repositories {
		if cfg.Repositories[i].Org == org && cfg.Repositories[i].Repo == repo {
			return &cfg.Repositories[i]
		}
	}
	return nil
}

// GetLabelPrefix returns the area label prefix for a repo (or default)
func (cfg *Config) GetLabelPrefix(org, repo string) string {
	if rc := cfg.GetRepoConfig(org, repo); rc != nil && rc.LabelPrefix != "" {
		return rc.LabelPrefix
	}
	return cfg.Download.LabelPrefix
}

// GetThreshold returns the prediction threshold for a repo (or default)
func (cfg *Config) GetThreshold(org, repo string) float64 {
	if rc := cfg.GetRepoConfig(org, repo); rc != nil && rc.Threshold > 0 {
		return rc.Threshold
	}
	return cfg.Predictor.Threshold
}

// EnabledRepositories returns the repositories not switched off
func (cfg *Config) EnabledRepositories() []RepositoryConfig {
	var repos []RepositoryConfig
	for _, r := range cfg.Repositories {
		if r.Enabled {
			repos = append(repos, r)
		}
	}
	return repos
}

// applyDefaults sets default values for unset fields
func applyDefaults(cfg *Config) {
	if cfg.GitHub.RequestsPerSecond == 0 {
		cfg.GitHub.RequestsPerSecond = 10
	}
	if cfg.GitHub.Retries == nil {
		cfg.GitHub.Retries = []int{30, 30, 300, 300, 3000, 3000}
	}
	if cfg.GitHub.LabelRetries == nil {
		cfg.GitHub.LabelRetries = []int{5, 10, 30}
	}

	if cfg.Download.PageSize == 0 {
		cfg.Download.PageSize = 100
	}
	if cfg.Download.PageLimit == 0 {
		cfg.Download.PageLimit = 1000
	}
	if cfg.Download.MaxLabels == 0 {
		cfg.Download.MaxLabels = 25
	}
	if cfg.Download.MaxFiles == 0 {
		cfg.Download.MaxFiles = 100
	}

	if cfg.Predictor.Engine == "" {
		cfg.Predictor.Engine = EngineVector
	}
	if cfg.Predictor.Threshold == 0 {
		cfg.Predictor.Threshold = 0.4
	}
	if cfg.Predictor.Neighbors == 0 {
		cfg.Predictor.Neighbors = 10
	}

	if cfg.Embedding.Primary.Dimensions == 0 {
		cfg.Embedding.Primary.Dimensions = 768
	}
	if cfg.Embedding.Fallback.Dimensions == 0 {
		cfg.Embedding.Fallback.Dimensions = 768
	}

	if cfg.Index.BatchSize == 0 {
		cfg.Index.BatchSize = 50
	}
}
