package database

import (
	"database/sql"
	"fmt"

	"github.com/gerarddekkers/builder-backend/app/models"
)

// Read-only lookups for learning journeys in the Metro database.

func FindAllLearningJourneys(db DBTX) ([]models.LearningJourneyListItem, error) {
	rows, err := db.Query(`SELECT id, name, ljKey FROM learning_journeys ORDER BY id DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var list []models.LearningJourneyListItem
	for rows.Next() {
		var item models.LearningJourneyListItem
		var ljKey sql.NullString
		if err := rows.Scan(&item.ID, &item.Name, &ljKey); err != nil {
			return nil, err
		}
		item.LjKey = ljKey.String
		list = append(list, item)
	}
	return list, rows.Err()
}

// HasLearningJourneyColumn checks INFORMATION_SCHEMA for a column on
// learning_journeys. Some Metro environments predate the bilingual columns.
func HasLearningJourneyColumn(db DBTX, column string) (bool, error) {
	var count int
	err := db.QueryRow(`SELECT COUNT(*) FROM INFORMATION_SCHEMA.COLUMNS
		WHERE TABLE_SCHEMA = DATABASE() AND TABLE_NAME = 'learning_journeys' AND UPPER(COLUMN_NAME) = UPPER(?)`,
		column).Scan(&count)
	return count > 0, err
}

func FindLearningJourneyById(db DBTX, id int64) (*models.LearningJourneyDetail, error) {
	hasAiCoach, err := HasLearningJourneyColumn(db, "aiCoachEnabled")
	if err != nil {
		return nil, err
	}
	query := `SELECT id, name, nameEn, ljKey, description, descriptionEn`
	if hasAiCoach {
		query += `, aiCoachEnabled`
	}
	query += ` FROM learning_journeys WHERE id = ?`

	detail := &models.LearningJourneyDetail{}
	var nameEn, ljKey, description, descriptionEn sql.NullString
	var aiCoach sql.NullInt64

	dest := []any{&detail.ID, &detail.Name, &nameEn, &ljKey, &description, &descriptionEn}
	if hasAiCoach {
		dest = append(dest, &aiCoach)
	}
	err = db.QueryRow(query, id).Scan(dest...)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	detail.NameEn = nameEn.String
	detail.LjKey = ljKey.String
	detail.Description = description.String
	detail.DescriptionEn = descriptionEn.String
	detail.AiCoachEnabled = aiCoach.Int64 == 1

	if detail.Steps, err = findJourneySteps(db, id); err != nil {
		return nil, err
	}
	if detail.Documents, err = findJourneyDocuments(db, id); err != nil {
		return nil, err
	}
	if detail.GroupIds, err = findJourneyGroupIds(db, id); err != nil {
		return nil, err
	}
	return detail, nil
}

func findJourneySteps(db DBTX, ljId int64) ([]models.StepDetail, error) {
	rows, err := db.Query(`SELECT s.id, s.position, s.type AS dbType,
			s.colour, s.size, s.conversation, s.documents,
			(SELECT l.text FROM labels l WHERE l.identifier = s.title AND l.lang = 'nl' LIMIT 1) AS titleNl,
			(SELECT l.text FROM labels l WHERE l.identifier = s.title AND l.lang = 'en' LIMIT 1) AS titleEn,
			(SELECT l.text FROM labels l WHERE l.identifier = s.textContent AND l.lang = 'nl' LIMIT 1) AS textContentNl,
			(SELECT l.text FROM labels l WHERE l.identifier = s.textContent AND l.lang = 'en' LIMIT 1) AS textContentEn
		FROM steps s WHERE s.learningJourneyId = ? ORDER BY s.position`, ljId)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var steps []models.StepDetail
	for rows.Next() {
		var s models.StepDetail
		var conversation, documents, titleNl, titleEn, textNl, textEn sql.NullString
		var colour, size, dbType sql.NullString
		if err := rows.Scan(&s.ID, &s.Position, &dbType, &colour, &size, &conversation, &documents,
			&titleNl, &titleEn, &textNl, &textEn); err != nil {
			return nil, err
		}
		s.DbType = dbType.String
		s.Colour = colour.String
		s.Size = size.String
		s.TitleNl = titleNl.String
		s.TitleEn = titleEn.String
		s.TextContentNl = textNl.String
		s.TextContentEn = textEn.String
		s.ChatboxEnabled = conversation.String == "S"
		s.DocumentsIdentifier = documents.String
		steps = append(steps, s)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for i := range steps {
		isLast := i == len(steps)-1
		steps[i].StructuralType = DeriveStructuralType(steps[i].Size, isLast)
		questions, err := findStepQuestions(db, steps[i].ID)
		if err != nil {
			return nil, err
		}
		steps[i].Questions = questions
	}
	return steps, nil
}

func findStepQuestions(db DBTX, stepId int64) ([]models.QuestionDetail, error) {
	rows, err := db.Query(`SELECT sq.id, sq.`+"`order`"+`, sq.type AS questionType,
			(SELECT l.text FROM labels l WHERE l.identifier = sq.question AND l.lang = 'nl' LIMIT 1) AS textNl,
			(SELECT l.text FROM labels l WHERE l.identifier = sq.question AND l.lang = 'en' LIMIT 1) AS textEn
		FROM step_question sq WHERE sq.stepId = ? ORDER BY sq.`+"`order`", stepId)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var questions []models.QuestionDetail
	for rows.Next() {
		var q models.QuestionDetail
		var questionType, textNl, textEn sql.NullString
		if err := rows.Scan(&q.ID, &q.Order, &questionType, &textNl, &textEn); err != nil {
			return nil, err
		}
		q.QuestionType = questionType.String
		q.TextNl = textNl.String
		q.TextEn = textEn.String
		questions = append(questions, q)
	}
	return questions, rows.Err()
}

func findJourneyDocuments(db DBTX, ljId int64) ([]models.DocumentDetail, error) {
	rows, err := db.Query(`SELECT d.id, d.identifier, d.label, d.url, d.lang
		FROM learning_journey_documents d
		WHERE d.identifier LIKE ? ORDER BY d.identifier, d.lang`,
		fmt.Sprintf("LJ_%d_%%", ljId))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var docs []models.DocumentDetail
	for rows.Next() {
		var d models.DocumentDetail
		var label, url, lang sql.NullString
		if err := rows.Scan(&d.ID, &d.Identifier, &label, &url, &lang); err != nil {
			return nil, err
		}
		d.Label = label.String
		d.Url = url.String
		d.Lang = lang.String
		docs = append(docs, d)
	}
	return docs, rows.Err()
}

func findJourneyGroupIds(db DBTX, ljId int64) ([]int64, error) {
	rows, err := db.Query(`SELECT groupId FROM group_learning_journey WHERE learningJourneyId = ?`, ljId)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var ids []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// DeriveStructuralType reverses the publish encoding of step size/position:
// small is a substap, medium a hoofdstap, big the afsluiting when it is the
// last step and a hoofdstap otherwise.
func DeriveStructuralType(size string, isLast bool) string {
	switch size {
	case "small":
		return models.StepSubstap
	case "medium":
		return models.StepHoofdstap
	}
	if isLast {
		return models.StepAfsluiting
	}
	return models.StepHoofdstap
}
