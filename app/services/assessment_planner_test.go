package services

import (
	"strings"
	"testing"

	"github.com/gerarddekkers/builder-backend/app/database"
	"github.com/gerarddekkers/builder-backend/app/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeLookup struct {
	maxIds         database.MaxIds
	questionnaires map[string]int64
	categories     map[string]int64
	goals          map[string]int64
	competences    map[string]int64
	knownGroups    map[int64]bool
}

func newFakeLookup() *fakeLookup {
	return &fakeLookup{
		maxIds:         database.MaxIds{Questionnaires: 100, Categories: 200, Competences: 300, Goals: 400, Items: 500, CompetenceQuestions: 600},
		questionnaires: map[string]int64{},
		categories:     map[string]int64{},
		goals:          map[string]int64{},
		competences:    map[string]int64{},
		knownGroups:    map[int64]bool{1: true, 2: true},
	}
}

func (f *fakeLookup) GetAllMaxIds() (database.MaxIds, error) { return f.maxIds, nil }

func lookupByName(m map[string]int64, name string) (int64, bool, error) {
	id, ok := m[strings.ToLower(strings.TrimSpace(name))]
	return id, ok, nil
}

func (f *fakeLookup) FindQuestionnaireIdByName(name string) (int64, bool, error) {
	return lookupByName(f.questionnaires, name)
}

func (f *fakeLookup) FindCategoryIdByName(name string) (int64, bool, error) {
	return lookupByName(f.categories, name)
}

func (f *fakeLookup) FindGoalIdByName(name string) (int64, bool, error) {
	return lookupByName(f.goals, name)
}

func (f *fakeLookup) FindCompetenceIdByName(name string) (int64, bool, error) {
	return lookupByName(f.competences, name)
}

func (f *fakeLookup) FindMissingGroupIds(ids []int64) ([]int64, error) {
	var missing []int64
	for _, id := range ids {
		if !f.knownGroups[id] {
			missing = append(missing, id)
		}
	}
	return missing, nil
}

func basicRequest() *models.AssessmentBuildRequest {
	return &models.AssessmentBuildRequest{
		AssessmentName: "Leiderschap",
		GroupIds:       []int64{1},
		Competences: []models.CompetenceInput{
			{
				Category:      "Persoonlijk",
				Name:          "Zelfvertrouwen",
				IsNew:         true,
				QuestionLeft:  "Ik twijfel vaak",
				QuestionRight: "Ik sta stevig",
			},
		},
	}
}

func TestGeneratePlanNewQuestionnaire(t *testing.T) {
	lookup := newFakeLookup()
	preview, err := GeneratePlan(basicRequest(), lookup)
	require.NoError(t, err)

	assert.Equal(t, int64(101), preview.Summary.QuestionnaireId)
	assert.Equal(t, int64(1), preview.Summary.NewCompetences)
	assert.Equal(t, int64(1), preview.Summary.NewCategories)
	assert.Equal(t, int64(1), preview.Summary.NewItems)
	assert.Empty(t, preview.Warnings)

	joined := strings.Join(preview.SqlStatements, "\n")
	assert.Contains(t, joined, "INSERT INTO questionnaires(id, name) VALUES (101, 'Leiderschap');")
	assert.Contains(t, joined, "INSERT INTO categories(id, name) VALUES (201, 'Persoonlijk');")
	assert.Contains(t, joined, "INSERT INTO competences(id, name, description, defaultMinPassScore, defaultMinMentorScore) VALUES (301, 'Zelfvertrouwen', NULL, NULL, NULL);")
	assert.Contains(t, joined, "INSERT INTO items(id, name, invertOrder) VALUES (501, 'Zelfvertrouwen_item', 0);")
	assert.Contains(t, joined, "INSERT INTO competence_questions (competenceId, questionnaireId, questionId, cq_id) VALUES (301, 101, '1.1.', 601);")
	assert.Contains(t, joined, "INSERT INTO group_questionnaires (groupId, questionnaireId, promoted, price) VALUES (1, 101, 0, 0.00);")
}

func TestGeneratePlanReusesQuestionnaireByName(t *testing.T) {
	lookup := newFakeLookup()
	lookup.questionnaires["leiderschap"] = 42

	preview, err := GeneratePlan(basicRequest(), lookup)
	require.NoError(t, err)

	assert.Equal(t, int64(42), preview.Summary.QuestionnaireId)
	require.NotEmpty(t, preview.Warnings)
	assert.Contains(t, preview.Warnings[0], "bestaat al (ID: 42)")

	// Clean-and-replace runs child tables first, then restores translations
	// and the name.
	stmts := preview.SqlStatements
	assert.Contains(t, stmts[0], "DELETE it FROM item_translations")
	assert.Contains(t, stmts[1], "DELETE ci FROM competence_items")
	assert.Contains(t, stmts[2], "DELETE i FROM items")
	assert.Contains(t, stmts[3], "DELETE FROM questionnaire_items WHERE questionnaireId = 42;")
	assert.Contains(t, stmts[4], "DELETE FROM competence_questions WHERE questionnaireId = 42;")
	assert.Contains(t, stmts[5], "DELETE FROM group_questionnaires WHERE questionnaireId = 42;")
	assert.Contains(t, stmts[6], "DELETE FROM questionnaire_translations WHERE questionnaireId = 42;")
	assert.Contains(t, stmts[9], "UPDATE questionnaires SET name = 'Leiderschap' WHERE id = 42;")
}

func TestGeneratePlanExplicitEditIdWins(t *testing.T) {
	lookup := newFakeLookup()
	lookup.questionnaires["leiderschap"] = 42

	req := basicRequest()
	editId := int64(77)
	req.EditQuestionnaireId = &editId

	preview, err := GeneratePlan(req, lookup)
	require.NoError(t, err)
	assert.Equal(t, int64(77), preview.Summary.QuestionnaireId)
}

func TestGeneratePlanUnknownGroups(t *testing.T) {
	lookup := newFakeLookup()
	req := basicRequest()
	req.GroupIds = []int64{1, 99}

	_, err := GeneratePlan(req, lookup)
	var unknownErr *UnknownGroupError
	require.ErrorAs(t, err, &unknownErr)
	assert.Equal(t, []int64{99}, unknownErr.Missing)
	assert.Equal(t, "Onbekende groep(en): 99", unknownErr.Error())
}

func TestGeneratePlanTruncatesLongName(t *testing.T) {
	lookup := newFakeLookup()
	req := basicRequest()
	req.AssessmentName = strings.Repeat("a", 40)

	preview, err := GeneratePlan(req, lookup)
	require.NoError(t, err)
	require.NotEmpty(t, preview.Warnings)
	assert.Contains(t, preview.Warnings[0], "afgekapt")
	assert.Contains(t, preview.SqlStatements[0], "'"+strings.Repeat("a", 30)+"'")
}

func TestGeneratePlanExistingWithoutIdSkipsLinks(t *testing.T) {
	lookup := newFakeLookup()
	req := basicRequest()
	req.Competences[0].IsNew = false

	preview, err := GeneratePlan(req, lookup)
	require.NoError(t, err)
	require.NotEmpty(t, preview.Warnings)
	assert.Contains(t, preview.Warnings[0], "geen existingId")
	assert.Equal(t, int64(0), preview.Summary.NewItems)
	for _, stmt := range preview.SqlStatements {
		assert.NotContains(t, stmt, "category_competences")
	}
}

func TestGeneratePlanEscapesQuotes(t *testing.T) {
	lookup := newFakeLookup()
	req := basicRequest()
	req.AssessmentName = "O'Brien"

	preview, err := GeneratePlan(req, lookup)
	require.NoError(t, err)
	assert.Contains(t, preview.SqlStatements[0], "'O''Brien'")
}

func TestGeneratePlanQuestionIdsPerCategory(t *testing.T) {
	lookup := newFakeLookup()
	req := basicRequest()
	req.Competences = append(req.Competences,
		models.CompetenceInput{Category: "Persoonlijk", Name: "Moed", IsNew: true, QuestionLeft: "l", QuestionRight: "r"},
		models.CompetenceInput{Category: "Sociaal", Name: "Empathie", IsNew: true, QuestionLeft: "l", QuestionRight: "r"},
	)

	preview, err := GeneratePlan(req, lookup)
	require.NoError(t, err)

	joined := strings.Join(preview.SqlStatements, "\n")
	assert.Contains(t, joined, "'1.1.'")
	assert.Contains(t, joined, "'1.2.'")
	assert.Contains(t, joined, "'2.1.'")
}
