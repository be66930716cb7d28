package cli

import (
	"slices"
	"strings"

	"github.com/mgpai22/attool/internal/transcribe"
	"github.com/mgpai22/attool/internal/translate"
)

var (
	geminiModels = []string{
		"gemini-3-pro-preview",
		"gemini-3-flash-preview",
		"gemini-2.5-pro",
		"gemini-2.5-flash",
		"gemini-2.5-flash-lite",
	}
	openAIChatModels = []string{
		"o1", "o3-mini", "o1-pro", "o3",
		"gpt-5", "gpt-5-nano", "gpt-5-mini", "gpt-5-pro",
		"gpt-5.1", "gpt-5.2", "gpt-5.2-pro",
	}
	openAIAudioModels = []string{
		"whisper-1",
		"gpt-4o-transcribe",
		"gpt-4o-mini-transcribe",
	}
	whisperModels = []string{
		"tiny", "tiny.en", "base", "base.en", "small", "small.en",
		"medium", "medium.en", "large", "large-v2", "large-v3", "turbo",
	}
)

func isValidGeminiModel(model string) bool {
	return slices.Contains(geminiModels, model)
}

func isValidOpenAIModel(model string) bool {
	return slices.Contains(openAIChatModels, model)
}

func isValidTranscriptionModel(provider transcribe.Provider, model string) bool {
	switch provider {
	case transcribe.ProviderGemini:
		return isValidGeminiModel(model)
	case transcribe.ProviderOpenAI:
		return slices.Contains(openAIAudioModels, model)
	case transcribe.ProviderWhisper:
		return slices.Contains(whisperModels, model)
	default:
		return false
	}
}

// validates translation model names; anthropic accepts anything
func isValidTranslationModel(provider translate.Provider, model string) bool {
	switch provider {
	case translate.ProviderGemini:
		return isValidGeminiModel(model)
	case translate.ProviderOpenAI:
		return isValidOpenAIModel(model)
	default:
		return true
	}
}

// OpenAI audio endpoints can only keep the spoken language or translate
// into English.
func isValidOpenAITranscriptLanguage(lang string) bool {
	switch strings.ToLower(strings.TrimSpace(lang)) {
	case "", "native", "english", "en":
		return true
	default:
		return false
	}
}
