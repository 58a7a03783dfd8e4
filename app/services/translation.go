package services

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

const (
	googleTranslateUrl = "https://translation.googleapis.com/language/translate/v2"
	openAIChatUrl      = "https://api.openai.com/v1/chat/completions"
	openAIModel        = "gpt-4o-mini"
)

// TranslationService translates builder texts via Google Translate or OpenAI.
// Failures never break the caller: the original texts come back together with
// a warning the frontend shows to the author.
type TranslationService struct {
	provider     string
	googleApiKey string
	openAIApiKey string
	client       *http.Client
}

func NewTranslationService(provider, googleApiKey, openAIApiKey string) *TranslationService {
	return &TranslationService{
		provider:     provider,
		googleApiKey: googleApiKey,
		openAIApiKey: openAIApiKey,
		client:       &http.Client{Timeout: 30 * time.Second},
	}
}

// Translate returns one translation per input text, in order. The warning is
// non-empty when the provider was unavailable and the originals are returned.
func (s *TranslationService) Translate(sourceLanguage, targetLanguage string, texts []string) ([]string, string) {
	if len(texts) == 0 {
		return []string{}, ""
	}
	if strings.EqualFold(s.provider, "openai") {
		return s.translateWithOpenAI(sourceLanguage, targetLanguage, texts)
	}
	return s.translateWithGoogle(sourceLanguage, targetLanguage, texts)
}

func (s *TranslationService) translateWithGoogle(sourceLanguage, targetLanguage string, texts []string) ([]string, string) {
	if strings.TrimSpace(s.googleApiKey) == "" {
		return texts, "Google Translate is niet geconfigureerd. Zet GOOGLE_TRANSLATE_API_KEY environment variable."
	}

	payload := map[string]any{
		"q":      texts,
		"source": sourceLanguage,
		"target": targetLanguage,
		"format": "html",
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return texts, "Google Translate faalde: " + err.Error()
	}

	resp, err := s.client.Post(googleTranslateUrl+"?key="+s.googleApiKey, "application/json", bytes.NewReader(body))
	if err != nil {
		return texts, "Google Translate faalde: " + err.Error()
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return texts, fmt.Sprintf("Google Translate faalde: %d", resp.StatusCode)
	}

	var parsed struct {
		Data struct {
			Translations []struct {
				TranslatedText string `json:"translatedText"`
			} `json:"translations"`
		} `json:"data"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return texts, "Google Translate faalde: onverwacht antwoord"
	}
	if len(parsed.Data.Translations) != len(texts) {
		return texts, "Google Translate gaf een onverwachte lengte terug"
	}

	translations := make([]string, len(texts))
	for i, t := range parsed.Data.Translations {
		translations[i] = t.TranslatedText
	}
	return translations, ""
}

func (s *TranslationService) translateWithOpenAI(sourceLanguage, targetLanguage string, texts []string) ([]string, string) {
	if strings.TrimSpace(s.openAIApiKey) == "" {
		return texts, "OpenAI vertaling is niet geconfigureerd. Zet OPENAI_API_KEY environment variable."
	}

	systemPrompt := "You are a professional translator. Translate from " + sourceLanguage + " to " + targetLanguage +
		". Return ONLY a JSON array of strings in the same order. No extra text."
	userContent, err := json.Marshal(texts)
	if err != nil {
		return texts, "OpenAI vertaling faalde: " + err.Error()
	}

	payload := map[string]any{
		"model":       openAIModel,
		"temperature": 0.2,
		"messages": []map[string]string{
			{"role": "system", "content": systemPrompt},
			{"role": "user", "content": string(userContent)},
		},
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return texts, "OpenAI vertaling faalde: " + err.Error()
	}

	req, err := http.NewRequest(http.MethodPost, openAIChatUrl, bytes.NewReader(body))
	if err != nil {
		return texts, "OpenAI vertaling faalde: " + err.Error()
	}
	req.Header.Set("Authorization", "Bearer "+s.openAIApiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return texts, "OpenAI vertaling faalde: " + err.Error()
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return texts, fmt.Sprintf("OpenAI vertaling faalde: %d", resp.StatusCode)
	}

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return texts, "OpenAI vertaling faalde: " + err.Error()
	}
	var parsed struct {
		Choices []struct {
			Message struct {
				Content string `json:"content"`
			} `json:"message"`
		} `json:"choices"`
	}
	if err := json.Unmarshal(raw, &parsed); err != nil || len(parsed.Choices) == 0 {
		return texts, "OpenAI vertaling faalde: leeg antwoord"
	}

	var translations []string
	if err := json.Unmarshal([]byte(parsed.Choices[0].Message.Content), &translations); err != nil {
		return texts, "OpenAI vertaling faalde: " + err.Error()
	}
	if len(translations) != len(texts) {
		return texts, "OpenAI vertaling gaf een onverwachte lengte terug"
	}
	return translations, ""
}
