package services

import (
	"context"
	"fmt"
	"strings"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/gerarddekkers/builder-backend/app/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateLjKey(t *testing.T) {
	cases := map[string]string{
		"Onboarding":               "onboarding",
		"Persoonlijk Leiderschap":  "persoonlijk-leidersc",
		"  Team & Samenwerking!  ": "team-samenwerking",
		"":                         "unnamed",
		"   ":                      "unnamed",
		"???":                      "unnamed",
		"A":                        "a",
	}
	for input, expected := range cases {
		assert.Equal(t, expected, GenerateLjKey(input), "input %q", input)
	}
}

func TestGenerateLjKeyMaxLength(t *testing.T) {
	key := GenerateLjKey(strings.Repeat("x", 40))
	assert.Len(t, key, 20)
}

func TestEnsureMediaInEnNoMediaPassesThrough(t *testing.T) {
	assert.Equal(t, "Hello", EnsureMediaInEn("Hello", "Hallo"))
}

func TestEnsureMediaInEnCopiesMediaLines(t *testing.T) {
	nl := "Welkom bij de reis\n<img src=\"intro.png\" />\nVeel succes"
	en := "Welcome to the journey\nGood luck"

	result := EnsureMediaInEn(en, nl)
	assert.Equal(t, "Welcome to the journey\n<img src=\"intro.png\" />\nGood luck", result)
}

func TestEnsureMediaInEnStripsStaleEnMedia(t *testing.T) {
	nl := "Tekst\n<video controls><source src=\"a.mp4\"></video>"
	en := "Text\n<video controls><source src=\"old.mp4\"></video>"

	result := EnsureMediaInEn(en, nl)
	assert.Equal(t, "Text\n<video controls><source src=\"a.mp4\"></video>", result)
}

func TestEnsureMediaInEnMissingEnSegmentsStayEmpty(t *testing.T) {
	nl := "Regel een\n<img src=\"a.png\" />\nRegel twee\nRegel drie"
	en := "Line one"

	result := EnsureMediaInEn(en, nl)
	assert.Equal(t, "Line one\n<img src=\"a.png\" />\n\n", result)
}

func TestEnsureMediaInEnSurplusEnAppended(t *testing.T) {
	nl := "<img src=\"a.png\" />"
	en := "Extra one\nExtra two"

	result := EnsureMediaInEn(en, nl)
	assert.Equal(t, "<img src=\"a.png\" />\nExtra one\nExtra two", result)
}

const columnProbe = "SELECT COUNT(*) FROM INFORMATION_SCHEMA.COLUMNS WHERE TABLE_SCHEMA = DATABASE() AND TABLE_NAME = 'learning_journeys' AND UPPER(COLUMN_NAME) = UPPER(?)"

func expectJourneyColumns(mock sqlmock.Sqlmock) {
	for _, col := range []string{"nameEn", "descriptionEn", "aiCoachEnabled"} {
		mock.ExpectQuery(columnProbe).WithArgs(col).
			WillReturnRows(sqlmock.NewRows([]string{"COUNT(*)"}).AddRow(1))
	}
}

func newJourneyMock(t *testing.T) (*JourneyPublisher, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherEqual))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return NewJourneyPublisher(db, nil), mock
}

func TestJourneyPublishColoursAndStructure(t *testing.T) {
	publisher, mock := newJourneyMock(t)

	req := &models.LearningJourneyPublishRequest{
		Name:     "Onboarding",
		GroupIds: []int64{5},
		Steps: []models.StepInput{
			{Type: models.StepHoofdstap, Title: "Intro", TextContent: "Welkom"},
			{Type: models.StepHoofdstap, Title: "Deel twee"},
			{Type: models.StepSubstap, Title: "Oefening", Questions: []models.QuestionInput{{Text: "Hoe ging het?"}}},
			{Type: models.StepAfsluiting, Title: "Einde"},
		},
	}

	category := "Learning_Journey_onboarding"
	stepInsert := "INSERT INTO steps (position, title, learningJourneyId, textContent, conversation, type, colour, size, role, documents) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)"
	labelInsert := "INSERT INTO labels (identifier, text, lang, category) VALUES (?, ?, ?, ?)"

	// EnsureJourneyColumns probes, assuming all columns exist already.
	expectJourneyColumns(mock)

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO learning_journeys (name, nameEn, ljKey, description, descriptionEn, aiCoachEnabled) VALUES (?, ?, ?, ?, ?, ?)").
		WithArgs("Onboarding", "", "onboarding", "", "", 0).
		WillReturnResult(sqlmock.NewResult(10, 1))

	// Step 1: first hoofdstap is blue and big.
	mock.ExpectExec(labelInsert).WithArgs("LJ_10_STEP_1_TITLE", "Intro", "nl", category).WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectExec(labelInsert).WithArgs("LJ_10_STEP_1_TITLE", "Intro", "en", category).WillReturnResult(sqlmock.NewResult(2, 1))
	mock.ExpectExec(labelInsert).WithArgs("LJ_10_STEP_1_TEXT", "Welkom", "nl", category).WillReturnResult(sqlmock.NewResult(3, 1))
	mock.ExpectExec(labelInsert).WithArgs("LJ_10_STEP_1_TEXT", "Welkom", "en", category).WillReturnResult(sqlmock.NewResult(4, 1))
	mock.ExpectExec(stepInsert).
		WithArgs(1, "LJ_10_STEP_1_TITLE", 10, "LJ_10_STEP_1_TEXT", nil, "TEXT", "blue", "big", "principal", nil).
		WillReturnResult(sqlmock.NewResult(101, 1))

	// Step 2: second hoofdstap switches to orange and medium.
	mock.ExpectExec(labelInsert).WithArgs("LJ_10_STEP_2_TITLE", "Deel twee", "nl", category).WillReturnResult(sqlmock.NewResult(5, 1))
	mock.ExpectExec(labelInsert).WithArgs("LJ_10_STEP_2_TITLE", "Deel twee", "en", category).WillReturnResult(sqlmock.NewResult(6, 1))
	mock.ExpectExec(stepInsert).
		WithArgs(2, "LJ_10_STEP_2_TITLE", 10, nil, nil, "TEXT", "orange", "medium", "principal", nil).
		WillReturnResult(sqlmock.NewResult(102, 1))

	// Step 3: substap inherits the group colour, small, QUESTION type.
	mock.ExpectExec(labelInsert).WithArgs("LJ_10_STEP_3_TITLE", "Oefening", "nl", category).WillReturnResult(sqlmock.NewResult(7, 1))
	mock.ExpectExec(labelInsert).WithArgs("LJ_10_STEP_3_TITLE", "Oefening", "en", category).WillReturnResult(sqlmock.NewResult(8, 1))
	mock.ExpectExec(stepInsert).
		WithArgs(3, "LJ_10_STEP_3_TITLE", 10, nil, nil, "QUESTION", "orange", "small", "principal", nil).
		WillReturnResult(sqlmock.NewResult(103, 1))

	// Step 4: afsluiting is always blue and big.
	mock.ExpectExec(labelInsert).WithArgs("LJ_10_STEP_4_TITLE", "Einde", "nl", category).WillReturnResult(sqlmock.NewResult(9, 1))
	mock.ExpectExec(labelInsert).WithArgs("LJ_10_STEP_4_TITLE", "Einde", "en", category).WillReturnResult(sqlmock.NewResult(10, 1))
	mock.ExpectExec(stepInsert).
		WithArgs(4, "LJ_10_STEP_4_TITLE", 10, nil, nil, "TEXT", "blue", "big", "principal", nil).
		WillReturnResult(sqlmock.NewResult(104, 1))

	// Questions for step 3.
	mock.ExpectExec(labelInsert).WithArgs("LJ_10_STEP_3_Q_1", "Hoe ging het?", "nl", category).WillReturnResult(sqlmock.NewResult(11, 1))
	mock.ExpectExec(labelInsert).WithArgs("LJ_10_STEP_3_Q_1", "Hoe ging het?", "en", category).WillReturnResult(sqlmock.NewResult(12, 1))
	mock.ExpectExec("INSERT INTO step_question (stepId, question, `order`, type) VALUES (?, ?, ?, ?)").
		WithArgs(int64(103), "LJ_10_STEP_3_Q_1", 1, "menteeValuation").
		WillReturnResult(sqlmock.NewResult(1, 1))

	// Group sync.
	mock.ExpectQuery("SELECT id FROM `groups` WHERE id IN (?)").
		WithArgs(int64(5)).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(5))
	mock.ExpectExec("INSERT INTO group_learning_journey (groupId, learningJourneyId) VALUES (?, ?)").
		WithArgs(int64(5), int64(10)).
		WillReturnResult(sqlmock.NewResult(1, 1))

	mock.ExpectCommit()

	result, err := publisher.Publish(context.Background(), req, EnvTest)
	require.NoError(t, err)
	assert.Equal(t, int64(10), result.LearningJourneyId)
	assert.True(t, result.Success)
	assert.Equal(t, "TEST", result.Environment)
	assert.Equal(t, int64(4), result.Timings["stepCount"])
	assert.Equal(t, int64(1), result.Timings["questionCount"])
	assert.Equal(t, int64(10), result.Timings["labelCountTotal"])
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestJourneyPublishInvalidGroupsRollsBack(t *testing.T) {
	publisher, mock := newJourneyMock(t)

	req := &models.LearningJourneyPublishRequest{
		Name:     "Kort",
		GroupIds: []int64{9},
		Steps: []models.StepInput{
			{Type: models.StepHoofdstap, Title: "Een"},
			{Type: models.StepHoofdstap, Title: "Twee"},
			{Type: models.StepAfsluiting, Title: "Einde"},
		},
	}

	expectJourneyColumns(mock)

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO learning_journeys (name, nameEn, ljKey, description, descriptionEn, aiCoachEnabled) VALUES (?, ?, ?, ?, ?, ?)").
		WithArgs("Kort", "", "kort", "", "", 0).
		WillReturnResult(sqlmock.NewResult(20, 1))

	labelInsert := "INSERT INTO labels (identifier, text, lang, category) VALUES (?, ?, ?, ?)"
	stepInsert := "INSERT INTO steps (position, title, learningJourneyId, textContent, conversation, type, colour, size, role, documents) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)"
	category := "Learning_Journey_kort"
	titles := []string{"Een", "Twee", "Einde"}
	colours := []string{"blue", "orange", "blue"}
	sizes := []string{"big", "medium", "big"}
	for i, title := range titles {
		id := fmt.Sprintf("LJ_20_STEP_%d_TITLE", i+1)
		mock.ExpectExec(labelInsert).WithArgs(id, title, "nl", category).WillReturnResult(sqlmock.NewResult(1, 1))
		mock.ExpectExec(labelInsert).WithArgs(id, title, "en", category).WillReturnResult(sqlmock.NewResult(1, 1))
		mock.ExpectExec(stepInsert).
			WithArgs(i+1, id, 20, nil, nil, "TEXT", colours[i], sizes[i], "principal", nil).
			WillReturnResult(sqlmock.NewResult(int64(200+i), 1))
	}

	mock.ExpectQuery("SELECT id FROM `groups` WHERE id IN (?)").
		WithArgs(int64(9)).
		WillReturnRows(sqlmock.NewRows([]string{"id"}))
	mock.ExpectRollback()

	_, err := publisher.Publish(context.Background(), req, EnvTest)
	var vErr *ValidationError
	require.ErrorAs(t, err, &vErr)
	assert.Contains(t, vErr.Errors[0], "Invalid group IDs: [9]")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDeleteJourneyRowOrder(t *testing.T) {
	publisher, mock := newJourneyMock(t)

	mock.ExpectBegin()
	ordered := []struct {
		sql string
		arg any
	}{
		{"DELETE usa FROM user_step_answer usa INNER JOIN user_step us ON us.id = usa.userStepId INNER JOIN user_learning_journey ulj ON ulj.id = us.userLearningJourneyId WHERE ulj.learningJourneyId = ?", int64(7)},
		{"DELETE us FROM user_step us INNER JOIN user_learning_journey ulj ON ulj.id = us.userLearningJourneyId WHERE ulj.learningJourneyId = ?", int64(7)},
		{"DELETE FROM user_learning_journey WHERE learningJourneyId = ?", int64(7)},
		{"DELETE sq FROM step_question sq INNER JOIN steps s ON s.id = sq.stepId WHERE s.learningJourneyId = ?", int64(7)},
		{"DELETE FROM labels WHERE identifier LIKE ?", "LJ_7_%"},
		{"DELETE FROM learning_journey_documents WHERE identifier LIKE ?", "LJ_7_%"},
		{"DELETE FROM group_learning_journey WHERE learningJourneyId = ?", int64(7)},
		{"DELETE FROM steps WHERE learningJourneyId = ?", int64(7)},
		{"DELETE FROM learning_journeys WHERE id = ?", int64(7)},
	}
	for _, stmt := range ordered {
		mock.ExpectExec(stmt.sql).WithArgs(stmt.arg).WillReturnResult(sqlmock.NewResult(0, 1))
	}
	mock.ExpectCommit()

	require.NoError(t, publisher.DeleteJourney(context.Background(), 7, EnvTest))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestJourneyPublishProdNotConfigured(t *testing.T) {
	publisher, _ := newJourneyMock(t)
	_, err := publisher.Publish(context.Background(), validJourney(), EnvProduction)
	assert.ErrorIs(t, err, ErrProdNotConfigured)
}
