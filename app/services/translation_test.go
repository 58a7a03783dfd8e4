package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTranslateGoogleNotConfigured(t *testing.T) {
	svc := NewTranslationService("google", "", "")
	texts := []string{"Hallo", "Wereld"}

	translations, warning := svc.Translate("nl", "en", texts)
	assert.Equal(t, texts, translations)
	assert.Equal(t, "Google Translate is niet geconfigureerd. Zet GOOGLE_TRANSLATE_API_KEY environment variable.", warning)
}

func TestTranslateOpenAINotConfigured(t *testing.T) {
	svc := NewTranslationService("openai", "", "")
	texts := []string{"Hallo"}

	translations, warning := svc.Translate("nl", "en", texts)
	assert.Equal(t, texts, translations)
	assert.Equal(t, "OpenAI vertaling is niet geconfigureerd. Zet OPENAI_API_KEY environment variable.", warning)
}

func TestTranslateUnknownProviderFallsBackToGoogle(t *testing.T) {
	svc := NewTranslationService("", "", "")
	translations, warning := svc.Translate("nl", "en", []string{"Tekst"})
	assert.Equal(t, []string{"Tekst"}, translations)
	assert.Contains(t, warning, "Google Translate")
}
