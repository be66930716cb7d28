package config

import (
	"os"
	"path/filepath"

	"github.com/joho/godotenv"

	"github.com/mgpai22/attool/internal/logging"
)

const (
	EnvOpenAIKey    = "OPENAI_API_KEY"
	EnvGeminiKey    = "GEMINI_API_KEY"
	EnvAnthropicKey = "ANTHROPIC_API_KEY"
)

// EnvFiles lists the .env files LoadEnv looks for, in load order. Earlier
// files win because godotenv never overrides a variable already set.
func EnvFiles() []string {
	files := []string{".env", "attool.env"}
	if home, err := os.UserHomeDir(); err == nil {
		files = append(files, filepath.Join(home, ".config", "attool.env"))
	}
	return files
}

// LoadEnv loads whichever of files exist. A file that fails to parse is
// logged and skipped. It returns the files that were loaded.
func LoadEnv(logger *logging.Logger, files ...string) []string {
	var loaded []string
	for _, envFile := range files {
		if _, err := os.Stat(envFile); err != nil {
			continue
		}
		logger.Debugw("Loading environment file", "path", envFile)
		if err := godotenv.Load(envFile); err != nil {
			logger.Errorw("Failed to load environment file", "path", envFile, "error", err)
			continue
		}
		loaded = append(loaded, envFile)
	}
	return loaded
}

// APIKey returns the key for a provider from the environment, preferring
// an explicit value.
func APIKey(provider, explicit string) string {
	if explicit != "" {
		return explicit
	}
	switch provider {
	case "openai":
		return os.Getenv(EnvOpenAIKey)
	case "gemini":
		return os.Getenv(EnvGeminiKey)
	case "anthropic":
		return os.Getenv(EnvAnthropicKey)
	default:
		return ""
	}
}
