package models

// AssessmentBuildRequest is the authoring payload for a bipolar competence
// assessment. EN fields are optional and fall back to NL during publish.
type AssessmentBuildRequest struct {
	AssessmentName          string `json:"assessmentName" validate:"required"`
	AssessmentDescription   string `json:"assessmentDescription"`
	AssessmentInstruction   string `json:"assessmentInstruction"`
	AssessmentNameEn        string `json:"assessmentNameEn"`
	AssessmentDescriptionEn string `json:"assessmentDescriptionEn"`
	AssessmentInstructionEn string `json:"assessmentInstructionEn"`

	Competences []CompetenceInput `json:"competences" validate:"required,min=1,dive"`
	GroupIds    []int64           `json:"groupIds" validate:"required,min=1"`

	// When set, the publish reuses this questionnaire id instead of matching
	// by name.
	EditQuestionnaireId *int64 `json:"editQuestionnaireId"`
}

type CompetenceInput struct {
	Category              string `json:"category" validate:"required"`
	CategoryEn            string `json:"categoryEn"`
	CategoryDescription   string `json:"categoryDescription"`
	CategoryDescriptionEn string `json:"categoryDescriptionEn"`

	Subcategory              string `json:"subcategory"`
	SubcategoryEn            string `json:"subcategoryEn"`
	SubcategoryDescription   string `json:"subcategoryDescription"`
	SubcategoryDescriptionEn string `json:"subcategoryDescriptionEn"`

	Name          string `json:"name" validate:"required"`
	NameEn        string `json:"nameEn"`
	Description   string `json:"description"`
	DescriptionEn string `json:"descriptionEn"`

	QuestionLeft    string `json:"questionLeft"`
	QuestionLeftEn  string `json:"questionLeftEn"`
	QuestionRight   string `json:"questionRight"`
	QuestionRightEn string `json:"questionRightEn"`

	IsNew      bool   `json:"isNew"`
	ExistingId *int64 `json:"existingId"`
}

// IntegrationPreview is the output of the SQL planner: the ordered statement
// list plus warnings and counters for the UI.
type IntegrationPreview struct {
	SqlStatements []string       `json:"sqlStatements"`
	Warnings      []string       `json:"warnings"`
	Summary       PreviewSummary `json:"summary"`
}

type PreviewSummary struct {
	NewCompetences  int64 `json:"newCompetences"`
	NewCategories   int64 `json:"newCategories"`
	NewGoals        int64 `json:"newGoals"`
	QuestionnaireId int64 `json:"questionnaireId"`
	NewItems        int64 `json:"newItems"`
}

type PublishResult struct {
	QuestionnaireId int64            `json:"questionnaireId"`
	Published       bool             `json:"published"`
	Timings         map[string]int64 `json:"timings,omitempty"`
}

type XmlPreviewResponse struct {
	QuestionnaireXmlNl string   `json:"questionnaireXmlNl"`
	QuestionnaireXmlEn string   `json:"questionnaireXmlEn"`
	ReportXmlNl        string   `json:"reportXmlNl"`
	ReportXmlEn        string   `json:"reportXmlEn"`
	Warnings           []string `json:"warnings"`
}

// CompetenceSummary is a search hit over existing Metro competences,
// categories or groups.
type CompetenceSummary struct {
	ID     int64  `json:"id"`
	NameNl string `json:"nameNl"`
	NameEn string `json:"nameEn"`
}
