package models

import "time"

// AssessmentDefinition is the language-neutral export of a published
// questionnaire: categories, competences and items nested with per-language
// text maps keyed "nl"/"en".
type AssessmentDefinition struct {
	ID         int64                         `json:"id"`
	Version    string                        `json:"version"`
	Metadata   DefinitionMetadata            `json:"metadata"`
	Texts      map[string]QuestionnaireTexts `json:"texts"`
	Scale      DefinitionScale               `json:"scale"`
	Categories []CategoryDef                 `json:"categories"`
}

type DefinitionMetadata struct {
	CreatedFrom string    `json:"createdFrom"`
	ExportedAt  time.Time `json:"exportedAt"`
}

type QuestionnaireTexts struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Instruction string `json:"instruction"`
}

type DefinitionScale struct {
	Points int    `json:"points"`
	Type   string `json:"type"`
}

type CategoryDef struct {
	ID          int64                    `json:"id"`
	SortOrder   int                      `json:"sortOrder"`
	Texts       map[string]CategoryTexts `json:"texts"`
	Competences []CompetenceDef          `json:"competences"`
}

type CategoryTexts struct {
	Name string `json:"name"`
}

type CompetenceDef struct {
	ID        int64                      `json:"id"`
	SortOrder int                        `json:"sortOrder"`
	Texts     map[string]CompetenceTexts `json:"texts"`
	Items     []ItemDef                  `json:"items"`
}

type CompetenceTexts struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

type ItemDef struct {
	ID        int64                `json:"id"`
	Polarity  string               `json:"polarity"`
	SortOrder int                  `json:"sortOrder"`
	Texts     map[string]ItemTexts `json:"texts"`
}

type ItemTexts struct {
	LeftText  string `json:"leftText"`
	RightText string `json:"rightText"`
}

type QuestionnaireListItem struct {
	ID              int64  `json:"id"`
	Name            string `json:"name"`
	NameNl          string `json:"nameNl"`
	NameEn          string `json:"nameEn"`
	ItemCount       int    `json:"itemCount"`
	CompetenceCount int    `json:"competenceCount"`
}
