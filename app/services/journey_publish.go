package services

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"regexp"
	"strings"
	"time"

	"github.com/gerarddekkers/builder-backend/app/database"
	"github.com/gerarddekkers/builder-backend/app/models"
)

// Metro column sizes. Values longer than these are truncated, not rejected.
const (
	maxLjKeyLength         = 20
	maxJourneyDescLength   = 50
	maxLabelTextLength     = 10000
	maxLabelIdLength       = 100
	maxDocIdentifierLength = 50
)

const (
	stepTypeText     = "TEXT"
	stepTypeQuestion = "QUESTION"
	stepRoleDefault  = "principal"

	colourBlue   = "blue"
	colourViolet = "violet"
	colourOrange = "orange"
	sizeBig      = "big"
	sizeMedium   = "medium"
	sizeSmall    = "small"
)

const journeyDocumentBaseUrl = "https://s3-eu-west-1.amazonaws.com/metro-learningjourney/"

// Second hoofdstap is orange, third violet, fourth orange again.
var alternatingColours = []string{colourOrange, colourViolet}

// JourneyPublisher writes learning journeys into Metro. Same environment
// split as the questionnaire publisher.
type JourneyPublisher struct {
	testDB *sql.DB
	prodDB *sql.DB
}

func NewJourneyPublisher(testDB, prodDB *sql.DB) *JourneyPublisher {
	return &JourneyPublisher{testDB: testDB, prodDB: prodDB}
}

func (p *JourneyPublisher) resolve(env PublishEnvironment) (*sql.DB, string, error) {
	if env == EnvProduction {
		if p.prodDB == nil {
			return nil, "", ErrProdNotConfigured
		}
		return p.prodDB, "PRODUCTION", nil
	}
	if p.testDB == nil {
		return nil, "", database.ErrNotConfigured
	}
	return p.testDB, "TEST", nil
}

// Publish validates the request, then runs the full insert flow in one
// transaction against the selected environment.
func (p *JourneyPublisher) Publish(ctx context.Context, req *models.LearningJourneyPublishRequest, env PublishEnvironment) (*models.LearningJourneyPublishResult, error) {
	if err := ValidateLearningJourney(req); err != nil {
		return nil, err
	}

	db, envLabel, err := p.resolve(env)
	if err != nil {
		return nil, err
	}
	slog.Info("publishing learning journey", "name", req.Name, "env", envLabel)

	// ALTER TABLE commits implicitly in MySQL, so the column check runs
	// before the transaction starts.
	if err := database.EnsureJourneyColumns(db); err != nil {
		return nil, err
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	result, err := executeJourneyPublish(tx, req, envLabel)
	if err != nil {
		_ = tx.Rollback()
		return nil, err
	}
	if err := tx.Commit(); err != nil {
		return nil, err
	}

	slog.Info("learning journey published", "env", envLabel, "name", req.Name, "id", result.LearningJourneyId)
	return result, nil
}

// DeleteJourney removes a journey and everything that hangs off it, in FK
// order, within one transaction.
func (p *JourneyPublisher) DeleteJourney(ctx context.Context, ljId int64, env PublishEnvironment) error {
	db, envLabel, err := p.resolve(env)
	if err != nil {
		return err
	}
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	if err := deleteJourneyRows(tx, ljId); err != nil {
		_ = tx.Rollback()
		return err
	}
	if err := tx.Commit(); err != nil {
		return err
	}
	slog.Info("learning journey deleted", "env", envLabel, "id", ljId)
	return nil
}

// executeJourneyPublish is the insert flow. Order matters:
// journey row, then per step labels and the step row, then question labels
// and step_question rows, then documents, then group links.
func executeJourneyPublish(tx database.DBTX, req *models.LearningJourneyPublishRequest, envLabel string) (*models.LearningJourneyPublishResult, error) {
	timings := map[string]int64{}
	totalStart := time.Now()
	steps := req.Steps

	t0 := time.Now()
	var ljId int64
	if req.EditLearningJourneyId != nil {
		editId := *req.EditLearningJourneyId
		var count int
		if err := tx.QueryRow("SELECT COUNT(*) FROM learning_journeys WHERE id = ?", editId).Scan(&count); err != nil {
			return nil, err
		}
		if count > 0 {
			slog.Info("re-publishing journey, clearing content and keeping id", "env", envLabel, "id", editId)
			if err := cleanJourneyContent(tx, editId); err != nil {
				return nil, err
			}
			if err := updateLearningJourney(tx, editId, req); err != nil {
				return nil, err
			}
			ljId = editId
		} else {
			slog.Warn("journey no longer exists, creating new", "env", envLabel, "id", editId)
			newId, err := insertLearningJourney(tx, req)
			if err != nil {
				return nil, err
			}
			ljId = newId
		}
	} else {
		newId, err := insertLearningJourney(tx, req)
		if err != nil {
			return nil, err
		}
		ljId = newId
	}
	timings["phase1_journey_ms"] = time.Since(t0).Milliseconds()

	ljKey := GenerateLjKey(req.Name)
	category := truncate("Learning_Journey_"+ljKey, 50)

	t1 := time.Now()
	stepDbIds := make([]int64, len(steps))
	labelCount := 0
	hoofdstapCounter := 0
	currentGroupColour := colourBlue

	for i, step := range steps {
		stepIdx := i + 1

		if step.Type == models.StepHoofdstap {
			hoofdstapCounter++
			if hoofdstapCounter == 1 {
				currentGroupColour = colourBlue
			} else {
				currentGroupColour = alternatingColours[(hoofdstapCounter-2)%len(alternatingColours)]
			}
		}

		titleId := labelId(ljId, stepIdx, "TITLE")
		if err := insertLabel(tx, titleId, step.Title, "nl", category); err != nil {
			return nil, err
		}
		if err := insertLabel(tx, titleId, fallback(step.TitleEn, step.Title), "en", category); err != nil {
			return nil, err
		}
		labelCount += 2

		var textId sql.NullString
		if strings.TrimSpace(step.TextContent) != "" {
			textId = sql.NullString{String: labelId(ljId, stepIdx, "TEXT"), Valid: true}
			nlText := step.TextContent
			enText := EnsureMediaInEn(fallback(step.TextContentEn, nlText), nlText)
			if err := insertLabel(tx, textId.String, truncate(nlText, maxLabelTextLength), "nl", category); err != nil {
				return nil, err
			}
			if err := insertLabel(tx, textId.String, truncate(enText, maxLabelTextLength), "en", category); err != nil {
				return nil, err
			}
			labelCount += 2
		}

		hasQuestions := len(step.Questions) > 0
		var colour, size string
		switch step.Type {
		case models.StepHoofdstap:
			colour = currentGroupColour
			if hoofdstapCounter == 1 {
				size = sizeBig
			} else {
				size = sizeMedium
			}
		case models.StepSubstap:
			colour = currentGroupColour
			size = sizeSmall
		case models.StepAfsluiting:
			colour = colourBlue
			size = sizeBig
		default:
			return nil, fmt.Errorf("unknown step type: %s", step.Type)
		}

		var docsId sql.NullString
		if len(step.Documents) > 0 || step.UploadEnabled {
			// Upload-enabled steps get a docs identifier so Metro shows
			// the upload zone even without documents.
			docsId = sql.NullString{String: docGroupId(ljId, stepIdx), Valid: true}
		}

		var conversation sql.NullString
		if step.ChatboxEnabled {
			conversation = sql.NullString{String: "S", Valid: true}
		}

		dbType := stepTypeText
		if hasQuestions {
			dbType = stepTypeQuestion
		}

		res, err := tx.Exec(
			"INSERT INTO steps (position, title, learningJourneyId, textContent, conversation, type, colour, size, role, documents) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)",
			stepIdx, titleId, ljId, textId, conversation, dbType, colour, size, stepRoleDefault, docsId)
		if err != nil {
			return nil, err
		}
		stepDbId, err := res.LastInsertId()
		if err != nil {
			return nil, err
		}
		stepDbIds[i] = stepDbId
	}
	timings["phase2_labelsAndSteps_ms"] = time.Since(t1).Milliseconds()
	timings["stepCount"] = int64(len(steps))
	timings["labelCount"] = int64(labelCount)
	slog.Info("steps written", "env", envLabel, "steps", len(steps), "labels", labelCount)

	t2 := time.Now()
	questionCount := 0
	for i, step := range steps {
		if len(step.Questions) == 0 {
			continue
		}
		stepDbId := stepDbIds[i]
		stepIdx := i + 1

		for q, question := range step.Questions {
			sortOrder := q + 1

			qId := questionLabelId(ljId, stepIdx, sortOrder)
			if err := insertLabel(tx, qId, question.Text, "nl", category); err != nil {
				return nil, err
			}
			if err := insertLabel(tx, qId, fallback(question.TextEn, question.Text), "en", category); err != nil {
				return nil, err
			}
			labelCount += 2

			qType := strings.TrimSpace(question.QuestionType)
			if qType == "" {
				qType = "menteeValuation"
			}
			if _, err := tx.Exec(
				"INSERT INTO step_question (stepId, question, `order`, type) VALUES (?, ?, ?, ?)",
				stepDbId, qId, sortOrder, qType); err != nil {
				return nil, err
			}
			questionCount++
		}
	}
	timings["phase3_questions_ms"] = time.Since(t2).Milliseconds()
	timings["questionCount"] = int64(questionCount)

	t3 := time.Now()
	docCount := 0
	for i, step := range steps {
		if len(step.Documents) == 0 {
			continue
		}
		docsIdentifier := docGroupId(ljId, i+1)
		for _, doc := range step.Documents {
			url := strings.TrimSpace(doc.Url)
			if url == "" {
				url = journeyDocumentBaseUrl + ljKey + "/" + doc.FileName
			}
			if _, err := tx.Exec(
				"INSERT INTO learning_journey_documents (identifier, label, url, lang) VALUES (?, ?, ?, ?)",
				docsIdentifier, doc.Label, url, doc.Lang); err != nil {
				return nil, err
			}
			docCount++
		}
	}
	timings["phase4_documents_ms"] = time.Since(t3).Milliseconds()
	timings["documentCount"] = int64(docCount)

	t4 := time.Now()
	if err := syncJourneyGroups(tx, ljId, req); err != nil {
		return nil, err
	}
	timings["phase5_groups_ms"] = time.Since(t4).Milliseconds()
	timings["groupCount"] = int64(len(req.GroupIds))

	timings["total_ms"] = time.Since(totalStart).Milliseconds()
	timings["labelCountTotal"] = int64(labelCount)
	slog.Info("journey written", "env", envLabel, "id", ljId, "totalMs", timings["total_ms"])

	return &models.LearningJourneyPublishResult{
		LearningJourneyId: ljId,
		Success:           true,
		Environment:       envLabel,
		Timings:           timings,
	}, nil
}

// syncJourneyGroups validates the requested group ids and replaces the
// journey's group bindings. On edit the FK from user_learning_journey to
// group_learning_journey is nullified first.
func syncJourneyGroups(tx database.DBTX, ljId int64, req *models.LearningJourneyPublishRequest) error {
	groupIds := req.GroupIds
	if len(groupIds) == 0 {
		return &ValidationError{Errors: []string{"At least one group must be selected."}}
	}

	placeholders := strings.TrimSuffix(strings.Repeat("?,", len(groupIds)), ",")
	args := make([]any, len(groupIds))
	for i, id := range groupIds {
		args[i] = id
	}
	rows, err := tx.Query("SELECT id FROM `groups` WHERE id IN ("+placeholders+")", args...)
	if err != nil {
		return err
	}
	valid := map[int64]bool{}
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			rows.Close()
			return err
		}
		valid[id] = true
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return err
	}
	var invalid []string
	for _, id := range groupIds {
		if !valid[id] {
			invalid = append(invalid, fmt.Sprintf("%d", id))
		}
	}
	if len(invalid) > 0 {
		return &ValidationError{Errors: []string{"Invalid group IDs: [" + strings.Join(invalid, ", ") + "]"}}
	}

	if req.EditLearningJourneyId != nil {
		if _, err := tx.Exec(
			"UPDATE user_learning_journey SET groupLearningJourneyId = NULL WHERE groupLearningJourneyId IN (SELECT id FROM group_learning_journey WHERE learningJourneyId = ?)",
			ljId); err != nil {
			slog.Warn("could not nullify user_learning_journey FK", "journey", ljId, "error", err)
		}
		if _, err := tx.Exec("DELETE FROM group_learning_journey WHERE learningJourneyId = ?", ljId); err != nil {
			return err
		}
	}

	for _, groupId := range groupIds {
		if _, err := tx.Exec(
			"INSERT INTO group_learning_journey (groupId, learningJourneyId) VALUES (?, ?)",
			groupId, ljId); err != nil {
			return err
		}
	}
	return nil
}

// cleanJourneyContent clears derived content before a re-publish. The
// learning_journeys row and user_learning_journey assignments stay.
func cleanJourneyContent(tx database.DBTX, ljId int64) error {
	// User progress tables may not exist in every environment.
	if _, err := tx.Exec(
		"DELETE usa FROM user_step_answer usa INNER JOIN user_step us ON us.id = usa.userStepId INNER JOIN user_learning_journey ulj ON ulj.id = us.userLearningJourneyId WHERE ulj.learningJourneyId = ?",
		ljId); err != nil {
		slog.Warn("could not clean user step answers", "journey", ljId, "error", err)
	} else if _, err := tx.Exec(
		"DELETE us FROM user_step us INNER JOIN user_learning_journey ulj ON ulj.id = us.userLearningJourneyId WHERE ulj.learningJourneyId = ?",
		ljId); err != nil {
		slog.Warn("could not clean user steps", "journey", ljId, "error", err)
	}

	if _, err := tx.Exec(
		"DELETE sq FROM step_question sq INNER JOIN steps s ON s.id = sq.stepId WHERE s.learningJourneyId = ?",
		ljId); err != nil {
		return err
	}
	labelPattern := fmt.Sprintf("LJ_%d_%%", ljId)
	if _, err := tx.Exec("DELETE FROM labels WHERE identifier LIKE ?", labelPattern); err != nil {
		return err
	}
	if _, err := tx.Exec("DELETE FROM learning_journey_documents WHERE identifier LIKE ?", labelPattern); err != nil {
		return err
	}
	if _, err := tx.Exec("DELETE FROM steps WHERE learningJourneyId = ?", ljId); err != nil {
		return err
	}
	return nil
}

func deleteJourneyRows(tx database.DBTX, ljId int64) error {
	statements := []struct {
		sql  string
		args []any
	}{
		{"DELETE usa FROM user_step_answer usa INNER JOIN user_step us ON us.id = usa.userStepId INNER JOIN user_learning_journey ulj ON ulj.id = us.userLearningJourneyId WHERE ulj.learningJourneyId = ?", []any{ljId}},
		{"DELETE us FROM user_step us INNER JOIN user_learning_journey ulj ON ulj.id = us.userLearningJourneyId WHERE ulj.learningJourneyId = ?", []any{ljId}},
		{"DELETE FROM user_learning_journey WHERE learningJourneyId = ?", []any{ljId}},
		{"DELETE sq FROM step_question sq INNER JOIN steps s ON s.id = sq.stepId WHERE s.learningJourneyId = ?", []any{ljId}},
		{"DELETE FROM labels WHERE identifier LIKE ?", []any{fmt.Sprintf("LJ_%d_%%", ljId)}},
		{"DELETE FROM learning_journey_documents WHERE identifier LIKE ?", []any{fmt.Sprintf("LJ_%d_%%", ljId)}},
		{"DELETE FROM group_learning_journey WHERE learningJourneyId = ?", []any{ljId}},
		{"DELETE FROM steps WHERE learningJourneyId = ?", []any{ljId}},
		{"DELETE FROM learning_journeys WHERE id = ?", []any{ljId}},
	}
	for _, stmt := range statements {
		if _, err := tx.Exec(stmt.sql, stmt.args...); err != nil {
			return err
		}
	}
	return nil
}

func insertLearningJourney(tx database.DBTX, req *models.LearningJourneyPublishRequest) (int64, error) {
	res, err := tx.Exec(
		"INSERT INTO learning_journeys (name, nameEn, ljKey, description, descriptionEn, aiCoachEnabled) VALUES (?, ?, ?, ?, ?, ?)",
		truncate(req.Name, maxJourneyNameLength),
		truncate(req.NameEn, maxJourneyNameLength),
		GenerateLjKey(req.Name),
		truncate(req.Description, maxJourneyDescLength),
		truncate(req.DescriptionEn, maxJourneyDescLength),
		boolToInt(req.AiCoachEnabled))
	if err != nil {
		return 0, err
	}
	return res.LastInsertId()
}

func updateLearningJourney(tx database.DBTX, ljId int64, req *models.LearningJourneyPublishRequest) error {
	_, err := tx.Exec(
		"UPDATE learning_journeys SET name = ?, nameEn = ?, ljKey = ?, description = ?, descriptionEn = ?, aiCoachEnabled = ? WHERE id = ?",
		truncate(req.Name, maxJourneyNameLength),
		truncate(req.NameEn, maxJourneyNameLength),
		GenerateLjKey(req.Name),
		truncate(req.Description, maxJourneyDescLength),
		truncate(req.DescriptionEn, maxJourneyDescLength),
		boolToInt(req.AiCoachEnabled),
		ljId)
	return err
}

// Labels carry the step texts; steps reference them by identifier. The
// identifier is the same for NL and EN, the lang column disambiguates.
func insertLabel(tx database.DBTX, identifier, text, lang, category string) error {
	_, err := tx.Exec(
		"INSERT INTO labels (identifier, text, lang, category) VALUES (?, ?, ?, ?)",
		identifier, text, lang, category)
	return err
}

func labelId(ljId int64, stepIdx int, suffix string) string {
	return truncate(fmt.Sprintf("LJ_%d_STEP_%d_%s", ljId, stepIdx, suffix), maxLabelIdLength)
}

func questionLabelId(ljId int64, stepIdx, questionIdx int) string {
	return truncate(fmt.Sprintf("LJ_%d_STEP_%d_Q_%d", ljId, stepIdx, questionIdx), maxLabelIdLength)
}

func docGroupId(ljId int64, stepIdx int) string {
	return truncate(fmt.Sprintf("LJ_%d_STEP_%d_DOCS", ljId, stepIdx), maxDocIdentifierLength)
}

var (
	ljKeyInvalid = regexp.MustCompile(`[^a-z0-9]+`)
	ljKeyTrim    = regexp.MustCompile(`^-|-$`)
)

// GenerateLjKey makes the journey's Metro key: lowercase slug, no spaces,
// max 20 chars.
func GenerateLjKey(name string) string {
	if strings.TrimSpace(name) == "" {
		return "unnamed"
	}
	slug := strings.ToLower(strings.TrimSpace(name))
	slug = ljKeyInvalid.ReplaceAllString(slug, "-")
	slug = ljKeyTrim.ReplaceAllString(slug, "")
	if slug == "" {
		return "unnamed"
	}
	return truncate(slug, maxLjKeyLength)
}

func truncate(value string, max int) string {
	if len(value) <= max {
		return value
	}
	return value[:max]
}

func fallback(primary, fallbackValue string) string {
	if strings.TrimSpace(primary) != "" {
		return primary
	}
	return fallbackValue
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

var (
	imgTagPattern   = regexp.MustCompile(`<img\s[^>]*/?>`)
	videoTagPattern = regexp.MustCompile(`<video\s[^>]*>.*?</video>`)
)

// EnsureMediaInEn interleaves the NL media tags into the EN text. The
// frontend sends text-only EN; media structure always comes from NL. NL
// parts split on newlines; media lines are copied as-is, text positions take
// the next EN segment, missing segments stay empty, surplus EN is appended.
func EnsureMediaInEn(enText, nlText string) string {
	if !strings.Contains(nlText, "<img ") && !strings.Contains(nlText, "<video ") {
		return enText
	}
	cleanEn := imgTagPattern.ReplaceAllString(enText, "")
	cleanEn = videoTagPattern.ReplaceAllString(cleanEn, "")
	cleanEn = strings.TrimSpace(cleanEn)

	nlParts := strings.Split(nlText, "\n")
	enParts := strings.Split(cleanEn, "\n")

	result := make([]string, 0, len(nlParts))
	enIdx := 0
	for _, nlPart := range nlParts {
		trimmed := strings.TrimSpace(nlPart)
		if strings.HasPrefix(trimmed, "<img ") || strings.HasPrefix(trimmed, "<video ") {
			result = append(result, nlPart)
		} else if enIdx < len(enParts) {
			result = append(result, enParts[enIdx])
			enIdx++
		} else {
			result = append(result, "")
		}
	}
	for enIdx < len(enParts) {
		result = append(result, enParts[enIdx])
		enIdx++
	}
	return strings.Join(result, "\n")
}
