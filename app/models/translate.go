package models

type TranslateRequest struct {
	SourceLanguage string   `json:"sourceLanguage"`
	TargetLanguage string   `json:"targetLanguage" validate:"required"`
	Texts          []string `json:"texts" validate:"required"`
}

type TranslateResponse struct {
	Translations []string `json:"translations"`
	Warning      string   `json:"warning,omitempty"`
}
