package services

import (
	"testing"

	"github.com/gerarddekkers/builder-backend/app/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validJourney() *models.LearningJourneyPublishRequest {
	return &models.LearningJourneyPublishRequest{
		Name:     "Onboarding",
		GroupIds: []int64{1},
		Steps: []models.StepInput{
			{Type: models.StepHoofdstap, Title: "Start"},
			{Type: models.StepSubstap, Title: "Kennismaken"},
			{Type: models.StepHoofdstap, Title: "Verdieping"},
			{Type: models.StepAfsluiting, Title: "Afronding"},
		},
	}
}

func validationErrors(t *testing.T, err error) []string {
	t.Helper()
	var vErr *ValidationError
	require.ErrorAs(t, err, &vErr)
	return vErr.Errors
}

func TestValidateLearningJourneyAccepts(t *testing.T) {
	assert.NoError(t, ValidateLearningJourney(validJourney()))
}

func TestValidateLearningJourneyRequiresName(t *testing.T) {
	req := validJourney()
	req.Name = "  "
	errs := validationErrors(t, ValidateLearningJourney(req))
	assert.Contains(t, errs, "Learning journey name is required.")
}

func TestValidateLearningJourneyNameTooLong(t *testing.T) {
	req := validJourney()
	req.Name = "Een hele erg lange naam die ver over de vijftig tekens heen gaat"
	errs := validationErrors(t, ValidateLearningJourney(req))
	assert.Contains(t, errs, "Learning journey name exceeds 50 characters.")
}

func TestValidateLearningJourneyRequiresGroups(t *testing.T) {
	req := validJourney()
	req.GroupIds = nil
	errs := validationErrors(t, ValidateLearningJourney(req))
	assert.Contains(t, errs, "At least one group must be selected.")
}

func TestValidateLearningJourneyNoStepsShortCircuits(t *testing.T) {
	req := validJourney()
	req.Steps = nil
	errs := validationErrors(t, ValidateLearningJourney(req))
	assert.Equal(t, []string{"At least one step is required."}, errs)
}

func TestValidateLearningJourneyNeedsTwoHoofdstappen(t *testing.T) {
	req := validJourney()
	req.Steps = []models.StepInput{
		{Type: models.StepHoofdstap, Title: "Start"},
		{Type: models.StepAfsluiting, Title: "Einde"},
	}
	errs := validationErrors(t, ValidateLearningJourney(req))
	assert.Contains(t, errs, "At least 2 Hoofdstappen required (found 1).")
}

func TestValidateLearningJourneyLastMustBeAfsluiting(t *testing.T) {
	req := validJourney()
	req.Steps = req.Steps[:3]
	errs := validationErrors(t, ValidateLearningJourney(req))
	assert.Contains(t, errs, "Last step must be Afsluiting.")
}

func TestValidateLearningJourneyStepTitleRequired(t *testing.T) {
	req := validJourney()
	req.Steps[1].Title = ""
	errs := validationErrors(t, ValidateLearningJourney(req))
	assert.Contains(t, errs, "Step 2 has no title.")
}

func TestValidateLearningJourneySubstapQuestionLimit(t *testing.T) {
	req := validJourney()
	req.Steps[1].Questions = make([]models.QuestionInput, 6)
	errs := validationErrors(t, ValidateLearningJourney(req))
	assert.Contains(t, errs, "Step 2 has 6 questions (max 5).")
}

func TestValidateLearningJourneyRejectsTraversalFilename(t *testing.T) {
	req := validJourney()
	req.Steps[0].Documents = []models.DocumentInput{{FileName: "../../etc/passwd", Lang: "nl"}}
	errs := validationErrors(t, ValidateLearningJourney(req))
	require.Len(t, errs, 1)
	assert.Contains(t, errs[0], "invalid filename")
}

func TestValidateLearningJourneyRejectsUnknownDocLang(t *testing.T) {
	req := validJourney()
	req.Steps[0].Documents = []models.DocumentInput{{FileName: "handout.pdf", Lang: "de"}}
	errs := validationErrors(t, ValidateLearningJourney(req))
	require.Len(t, errs, 1)
	assert.Contains(t, errs[0], "unsupported language 'de'")
}

func TestValidationErrorMessageFormat(t *testing.T) {
	err := &ValidationError{Errors: []string{"one", "two"}}
	assert.Equal(t, "Validation failed:\n- one\n- two", err.Error())
}
