package services

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/gerarddekkers/builder-backend/app/models"
)

const (
	maxJourneyNameLength   = 50
	maxQuestionsPerSubstep = 5
)

var safeFileName = regexp.MustCompile(`^[a-zA-Z0-9][a-zA-Z0-9._-]*$`)

var allowedDocumentLangs = map[string]bool{"nl": true, "en": true}

// ValidationError carries all validation failures of one publish request.
type ValidationError struct {
	Errors []string
}

func (e *ValidationError) Error() string {
	return "Validation failed:\n- " + strings.Join(e.Errors, "\n- ")
}

// ValidateLearningJourney runs every check before any SQL is issued. All
// failures are collected so the author sees the full list at once.
func ValidateLearningJourney(req *models.LearningJourneyPublishRequest) error {
	var errs []string

	name := strings.TrimSpace(req.Name)
	if name == "" {
		errs = append(errs, "Learning journey name is required.")
	} else if len(req.Name) > maxJourneyNameLength {
		errs = append(errs, fmt.Sprintf("Learning journey name exceeds %d characters.", maxJourneyNameLength))
	}

	if strings.Contains(GenerateLjKey(req.Name), " ") {
		errs = append(errs, "Generated ljKey must not contain spaces.")
	}

	if len(req.GroupIds) == 0 {
		errs = append(errs, "At least one group must be selected.")
	}

	if len(req.Steps) == 0 {
		errs = append(errs, "At least one step is required.")
		return &ValidationError{Errors: errs}
	}

	hoofdstapCount := 0
	for _, step := range req.Steps {
		if step.Type == models.StepHoofdstap {
			hoofdstapCount++
		}
	}
	if hoofdstapCount < 2 {
		errs = append(errs, fmt.Sprintf("At least 2 Hoofdstappen required (found %d).", hoofdstapCount))
	}

	if req.Steps[len(req.Steps)-1].Type != models.StepAfsluiting {
		errs = append(errs, "Last step must be Afsluiting.")
	}

	for i, step := range req.Steps {
		pos := i + 1

		if strings.TrimSpace(step.Title) == "" {
			errs = append(errs, fmt.Sprintf("Step %d has no title.", pos))
		}

		if step.Type == models.StepSubstap && len(step.Questions) > maxQuestionsPerSubstep {
			errs = append(errs, fmt.Sprintf("Step %d has %d questions (max %d).",
				pos, len(step.Questions), maxQuestionsPerSubstep))
		}

		for d, doc := range step.Documents {
			docPos := d + 1
			if doc.FileName != "" && !safeFileName.MatchString(doc.FileName) {
				errs = append(errs, fmt.Sprintf("Step %d document %d: invalid filename '%s'.",
					pos, docPos, doc.FileName))
			}
			if doc.Lang != "" && !allowedDocumentLangs[doc.Lang] {
				errs = append(errs, fmt.Sprintf("Step %d document %d: unsupported language '%s' (allowed: nl, en).",
					pos, docPos, doc.Lang))
			}
		}
	}

	if len(errs) > 0 {
		return &ValidationError{Errors: errs}
	}
	return nil
}
