package database

import (
	"database/sql"
	"errors"
	"strings"

	"github.com/gerarddekkers/builder-backend/app/models"
)

// Row types backing the definition exporter.

type QuestionnaireRow struct {
	ID   int64
	Name string
}

type QuestionnaireTranslationRow struct {
	Language  string
	Name      string
	Questions string
	Report    string
}

type ItemDetailRow struct {
	ItemId       int64
	ItemName     string
	InvertOrder  int
	ItemOrder    int
	CompetenceId int64
	CategoryId   int64
}

type ItemTranslationRow struct {
	ItemId    int64
	Language  string
	LeftText  string
	RightText string
}

type CompetenceTranslationRow struct {
	CompetenceId int64
	Language     string
	Name         string
	Description  string
}

type CategoryTranslationRow struct {
	CategoryId int64
	Language   string
	Name       string
}

func FindQuestionnaireById(db DBTX, questionnaireId int64) (*QuestionnaireRow, error) {
	var row QuestionnaireRow
	err := db.QueryRow(`SELECT id, name FROM questionnaires WHERE id = ?`, questionnaireId).
		Scan(&row.ID, &row.Name)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &row, nil
}

func FindQuestionnaireTranslations(db DBTX, questionnaireId int64) ([]QuestionnaireTranslationRow, error) {
	rows, err := db.Query(
		`SELECT language, name, questions, report FROM questionnaire_translations WHERE questionnaireId = ?`,
		questionnaireId)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var list []QuestionnaireTranslationRow
	for rows.Next() {
		var r QuestionnaireTranslationRow
		var questions, report sql.NullString
		if err := rows.Scan(&r.Language, &r.Name, &questions, &report); err != nil {
			return nil, err
		}
		r.Questions = questions.String
		r.Report = report.String
		list = append(list, r)
	}
	return list, rows.Err()
}

// FindQuestionnaireItemsWithDetails returns the flat item join ordered by the
// questionnaire item order; that order drives all sortOrder values in the
// exported definition.
func FindQuestionnaireItemsWithDetails(db DBTX, questionnaireId int64) ([]ItemDetailRow, error) {
	rows, err := db.Query(`SELECT qi.itemId, i.name AS itemName, i.invertOrder, qi.`+"`order`"+` AS itemOrder,
			ci.competenceId, cc.categoryId
		FROM questionnaire_items qi
		JOIN items i ON i.id = qi.itemId
		JOIN competence_items ci ON ci.itemId = qi.itemId
		JOIN category_competences cc ON cc.competenceId = ci.competenceId
		WHERE qi.questionnaireId = ?
		ORDER BY qi.`+"`order`"+` ASC`, questionnaireId)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var list []ItemDetailRow
	for rows.Next() {
		var r ItemDetailRow
		if err := rows.Scan(&r.ItemId, &r.ItemName, &r.InvertOrder, &r.ItemOrder, &r.CompetenceId, &r.CategoryId); err != nil {
			return nil, err
		}
		list = append(list, r)
	}
	return list, rows.Err()
}

func FindItemTranslationsForQuestionnaire(db DBTX, questionnaireId int64) ([]ItemTranslationRow, error) {
	rows, err := db.Query(`SELECT it.itemId, it.language, it.leftText, it.rightText
		FROM item_translations it
		WHERE it.itemId IN (SELECT qi.itemId FROM questionnaire_items qi WHERE qi.questionnaireId = ?)`,
		questionnaireId)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var list []ItemTranslationRow
	for rows.Next() {
		var r ItemTranslationRow
		var left, right sql.NullString
		if err := rows.Scan(&r.ItemId, &r.Language, &left, &right); err != nil {
			return nil, err
		}
		r.LeftText = left.String
		r.RightText = right.String
		list = append(list, r)
	}
	return list, rows.Err()
}

func FindCompetenceTranslationsForIds(db DBTX, competenceIds []int64) ([]CompetenceTranslationRow, error) {
	if len(competenceIds) == 0 {
		return nil, nil
	}
	placeholders, args := idPlaceholders(competenceIds)
	rows, err := db.Query(
		`SELECT competenceId, language, name, description FROM competence_translations WHERE competenceId IN (`+placeholders+`)`,
		args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var list []CompetenceTranslationRow
	for rows.Next() {
		var r CompetenceTranslationRow
		var name, description sql.NullString
		if err := rows.Scan(&r.CompetenceId, &r.Language, &name, &description); err != nil {
			return nil, err
		}
		r.Name = name.String
		r.Description = description.String
		list = append(list, r)
	}
	return list, rows.Err()
}

func FindCategoryTranslationsForIds(db DBTX, categoryIds []int64) ([]CategoryTranslationRow, error) {
	if len(categoryIds) == 0 {
		return nil, nil
	}
	placeholders, args := idPlaceholders(categoryIds)
	rows, err := db.Query(
		`SELECT categoryId, language, name FROM category_translations WHERE categoryId IN (`+placeholders+`)`,
		args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var list []CategoryTranslationRow
	for rows.Next() {
		var r CategoryTranslationRow
		var name sql.NullString
		if err := rows.Scan(&r.CategoryId, &r.Language, &name); err != nil {
			return nil, err
		}
		r.Name = name.String
		list = append(list, r)
	}
	return list, rows.Err()
}

// ListQuestionnairesForPicker feeds the definition picker: id, names and
// counts, newest first, optionally filtered by a name query.
func ListQuestionnairesForPicker(db DBTX, query string, limit int) ([]models.QuestionnaireListItem, error) {
	if limit <= 0 || limit > 100 {
		limit = 100
	}
	sqlText := `SELECT q.id, q.name,
		COALESCE((SELECT qt.name FROM questionnaire_translations qt WHERE qt.questionnaireId = q.id AND qt.language = 'nl' LIMIT 1), '') AS nameNl,
		COALESCE((SELECT qt.name FROM questionnaire_translations qt WHERE qt.questionnaireId = q.id AND qt.language = 'en' LIMIT 1), '') AS nameEn,
		(SELECT COUNT(*) FROM questionnaire_items qi WHERE qi.questionnaireId = q.id) AS itemCount,
		(SELECT COUNT(DISTINCT ci.competenceId) FROM questionnaire_items qi JOIN competence_items ci ON ci.itemId = qi.itemId WHERE qi.questionnaireId = q.id) AS competenceCount
		FROM questionnaires q`
	var args []any
	if strings.TrimSpace(query) != "" {
		sqlText += ` WHERE LOWER(q.name) LIKE ?`
		args = append(args, "%"+strings.ToLower(strings.TrimSpace(query))+"%")
	}
	sqlText += ` ORDER BY q.id DESC LIMIT ?`
	args = append(args, limit)

	rows, err := db.Query(sqlText, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var list []models.QuestionnaireListItem
	for rows.Next() {
		var item models.QuestionnaireListItem
		if err := rows.Scan(&item.ID, &item.Name, &item.NameNl, &item.NameEn, &item.ItemCount, &item.CompetenceCount); err != nil {
			return nil, err
		}
		list = append(list, item)
	}
	return list, rows.Err()
}

func idPlaceholders(ids []int64) (string, []any) {
	placeholders := strings.TrimSuffix(strings.Repeat("?,", len(ids)), ",")
	args := make([]any, len(ids))
	for i, id := range ids {
		args[i] = id
	}
	return placeholders, args
}
