package cli

import (
	"testing"

	"github.com/mgpai22/attool/internal/transcribe"
	"github.com/mgpai22/attool/internal/translate"
)

func TestIsValidOpenAITranscriptLanguage(t *testing.T) {
	tests := []struct {
		lang string
		want bool
	}{
		{"", true},
		{"native", true},
		{"NATIVE", true},
		{"english", true},
		{" en ", true},
		{"spanish", false},
		{"ja", false},
	}

	for _, tt := range tests {
		t.Run(tt.lang, func(t *testing.T) {
			if got := isValidOpenAITranscriptLanguage(tt.lang); got != tt.want {
				t.Errorf("isValidOpenAITranscriptLanguage(%q) = %v, want %v", tt.lang, got, tt.want)
			}
		})
	}
}

func TestIsValidTranscriptionModel(t *testing.T) {
	tests := []struct {
		provider transcribe.Provider
		model    string
		want     bool
	}{
		{transcribe.ProviderWhisper, "medium", true},
		{transcribe.ProviderWhisper, "large-v3", true},
		{transcribe.ProviderWhisper, "whisper-1", false},
		{transcribe.ProviderOpenAI, "whisper-1", true},
		{transcribe.ProviderOpenAI, "gpt-5", false},
		{transcribe.ProviderGemini, "gemini-2.5-flash", true},
		{transcribe.ProviderGemini, "gemini-1.0", false},
		{transcribe.Provider("other"), "medium", false},
	}

	for _, tt := range tests {
		if got := isValidTranscriptionModel(tt.provider, tt.model); got != tt.want {
			t.Errorf("isValidTranscriptionModel(%s, %q) = %v, want %v", tt.provider, tt.model, got, tt.want)
		}
	}
}

func TestIsValidTranslationModel(t *testing.T) {
	if !isValidTranslationModel(translate.ProviderGemini, "gemini-2.5-pro") {
		t.Error("gemini-2.5-pro should be valid for gemini")
	}
	if isValidTranslationModel(translate.ProviderGemini, "gpt-5") {
		t.Error("gpt-5 should not be valid for gemini")
	}
	if !isValidTranslationModel(translate.ProviderOpenAI, "gpt-5-mini") {
		t.Error("gpt-5-mini should be valid for openai")
	}
	if !isValidTranslationModel(translate.ProviderAnthropic, "anything") {
		t.Error("anthropic models are not restricted")
	}
}
