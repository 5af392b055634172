package config

import (
	"os"
	"regexp"
)

var envVarPattern = regexp.MustCompile(`\$\{([^}]+)\}`)

// expandEnvVars replaces ${VAR_NAME} patterns with environment variable values
func expandEnvVars(s string) string {
	return envVarPattern.ReplaceAllStringFunc(s, func(match string) string {
		varName := envVarPattern.FindStringSubmatch(match)[1]
		if value := os.Getenv(varName); value != "" {
			return value
		}
		return match // unset variables stay visible to Validate
	})
}

// expandConfigEnvVars expands environment variables in secrets and endpoints
func expandConfigEnvVars(cfg *Config) {
	for _, field := range []*string{
		&cfg.GitHub.Token,
		&cfg.GitHub.Host,
		&cfg.LLM.APIKey,
		&cfg.Qdrant.URL,
		&cfg.Qdrant.APIKey,
		&cfg.Embedding.Primary.APIKey,
		&cfg.Embedding.Fallback.APIKey,
		&cfg.Download.IssueData,
		&cfg.Download.PullData,
	} {
		*field = expandEnvVars(*field)
	}
}

// unexpanded reports whether s still holds a ${VAR} reference
func unexpanded(s string) bool {
	return envVarPattern.MatchString(s)
}
