package config

import (
	"fmt"
	"strings"
)

// ValidationError represents a configuration validation error
type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// Validate checks the configuration for errors
func Validate(cfg *Config) []error {
	var errs []error
	add := func(field, msg string) {
		errs = append(errs, ValidationError{field, msg})
	}

	if unexpanded(cfg.GitHub.Token) {
		add("github.token", "references an unset environment variable")
	}
	if cfg.GitHub.RequestsPerSecond < 0 {
		add("github.requests_per_second", "must not be negative")
	}
	for _, d := range cfg.GitHub.Retries {
		if d < 0 {
			add("github.retries", "delays must not be negative")
			break
		}
	}
	for _, d := range cfg.GitHub.LabelRetries {
		if d < 0 {
			add("github.label_retries", "delays must not be negative")
			break
		}
	}

	if cfg.Download.PageSize < 1 || cfg.Download.PageSize > 100 {
		add("download.page_size", "must be between 1 and 100")
	}
	if cfg.Download.PageLimit < 0 {
		add("download.page_limit", "must not be negative")
	}
	if cfg.Download.IssueLimit < 0 {
		add("download.issue_limit", "must not be negative")
	}
	if cfg.Download.PullLimit < 0 {
		add("download.pull_limit", "must not be negative")
	}

	if cfg.Predictor.Threshold < 0 || cfg.Predictor.Threshold > 1 {
		add("predictor.threshold", "must be between 0 and 1")
	}
	if cfg.Predictor.Neighbors < 1 {
		add("predictor.neighbors", "must be at least 1")
	}

	switch cfg.Predictor.Engine {
	case EngineVector:
		errs = append(errs, validateVector(cfg)...)
	case EngineLLM:
		if !validProvider(cfg.LLM.Provider) {
			add("llm.provider", "must be 'gemini' or 'openai'")
		}
		if cfg.LLM.APIKey == "" || unexpanded(cfg.LLM.APIKey) {
			add("llm.api_key", "required for the llm engine")
		}
	default:
		add("predictor.engine", "must be 'llm' or 'vector'")
	}

	if cfg.Index.BatchSize < 1 {
		add("index.batch_size", "must be at least 1")
	}

	for i, repo := range cfg.Repositories {
		prefix := fmt.Sprintf("repositories[%d]", i)

		if repo.Org == "" {
			add(prefix+".org", "required")
		}
		if repo.Repo == "" {
			add(prefix+".repo", "required")
		}
		if strings.Contains(repo.Repo, "/") {
			add(prefix+".repo", "must be the repository name only")
		}
		if repo.Threshold < 0 || repo.Threshold > 1 {
			add(prefix+".threshold", "must be between 0 and 1")
		}
	}

	return errs
}

// ValidateIndex checks the settings the index and vector engine need
func ValidateIndex(cfg *Config) []error {
	return validateVector(cfg)
}

func validateVector(cfg *Config) []error {
	var errs []error

	if cfg.Qdrant.URL == "" {
		errs = append(errs, ValidationError{"qdrant.url", "required"})
	}

	if cfg.Embedding.Primary.Provider == "" {
		errs = append(errs, ValidationError{"embedding.primary.provider", "required"})
	} else if !validProvider(cfg.Embedding.Primary.Provider) {
		errs = append(errs, ValidationError{"embedding.primary.provider", "must be 'gemini' or 'openai'"})
	}

	if cfg.Embedding.Primary.APIKey == "" || unexpanded(cfg.Embedding.Primary.APIKey) {
		errs = append(errs, ValidationError{"embedding.primary.api_key", "required"})
	}

	if cfg.Embedding.Fallback.Provider != "" && !validProvider(cfg.Embedding.Fallback.Provider) {
		errs = append(errs, ValidationError{"embedding.fallback.provider", "must be 'gemini' or 'openai'"})
	}

	return errs
}

func validProvider(p string) bool {
	return p == "gemini" || p == "openai"
}
