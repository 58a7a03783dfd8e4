package models

// Step structural types. The structural type drives colour and size; the
// stored step type (TEXT/QUESTION) is derived from content instead.
const (
	StepHoofdstap  = "hoofdstap"
	StepSubstap    = "substap"
	StepAfsluiting = "afsluiting"
)

type LearningJourneyPublishRequest struct {
	Name          string `json:"name" validate:"required"`
	NameEn        string `json:"nameEn"`
	Description   string `json:"description"`
	DescriptionEn string `json:"descriptionEn"`

	GroupIds      []int64     `json:"groupIds" validate:"required,min=1"`
	AiCoachEnabled bool       `json:"aiCoachEnabled"`
	Steps         []StepInput `json:"steps" validate:"required,min=1,dive"`

	// When set and the row still exists, the journey keeps its id and its
	// user assignments; derived content is replaced.
	EditLearningJourneyId *int64 `json:"editLearningJourneyId"`
}

type StepInput struct {
	Type           string          `json:"type" validate:"required,oneof=hoofdstap substap afsluiting"`
	Title          string          `json:"title" validate:"required"`
	TitleEn        string          `json:"titleEn"`
	TextContent    string          `json:"textContent"`
	TextContentEn  string          `json:"textContentEn"`
	ChatboxEnabled bool            `json:"chatboxEnabled"`
	UploadEnabled  bool            `json:"uploadEnabled"`
	VideoUrl       string          `json:"videoUrl"`
	Questions      []QuestionInput `json:"questions" validate:"dive"`
	Documents      []DocumentInput `json:"documents" validate:"dive"`
}

type QuestionInput struct {
	Text         string `json:"text" validate:"required"`
	TextEn       string `json:"textEn"`
	QuestionType string `json:"questionType"`
}

type DocumentInput struct {
	Label    string `json:"label" validate:"required"`
	FileName string `json:"fileName" validate:"required"`
	Url      string `json:"url"`
	Lang     string `json:"lang" validate:"required,oneof=nl en"`
}

type LearningJourneyPublishResult struct {
	LearningJourneyId int64            `json:"learningJourneyId"`
	Success           bool             `json:"success"`
	Environment       string           `json:"environment"`
	Timings           map[string]int64 `json:"timings,omitempty"`
}

type LearningJourneyListItem struct {
	ID    int64  `json:"id"`
	Name  string `json:"name"`
	LjKey string `json:"ljKey"`
}

type LearningJourneyDetail struct {
	ID            int64            `json:"id"`
	Name          string           `json:"name"`
	NameEn        string           `json:"nameEn"`
	LjKey         string           `json:"ljKey"`
	Description   string           `json:"description"`
	DescriptionEn string           `json:"descriptionEn"`
	Steps         []StepDetail     `json:"steps"`
	Documents     []DocumentDetail `json:"documents"`
	GroupIds      []int64          `json:"groupIds"`
	AiCoachEnabled bool            `json:"aiCoachEnabled"`
}

type StepDetail struct {
	ID                  int64            `json:"id"`
	Position            int              `json:"position"`
	StructuralType      string           `json:"structuralType"`
	TitleNl             string           `json:"titleNl"`
	TitleEn             string           `json:"titleEn"`
	TextContentNl       string           `json:"textContentNl"`
	TextContentEn       string           `json:"textContentEn"`
	DbType              string           `json:"dbType"`
	Colour              string           `json:"colour"`
	Size                string           `json:"size"`
	ChatboxEnabled      bool             `json:"chatboxEnabled"`
	DocumentsIdentifier string           `json:"documentsIdentifier"`
	Questions           []QuestionDetail `json:"questions"`
}

type QuestionDetail struct {
	ID           int64  `json:"id"`
	Order        int    `json:"order"`
	TextNl       string `json:"textNl"`
	TextEn       string `json:"textEn"`
	QuestionType string `json:"questionType"`
}

type DocumentDetail struct {
	ID         int64  `json:"id"`
	Identifier string `json:"identifier"`
	Label      string `json:"label"`
	Url        string `json:"url"`
	Lang       string `json:"lang"`
}
