package services

import (
	"fmt"
	"strings"

	"github.com/gerarddekkers/builder-backend/app/database"
	"github.com/gerarddekkers/builder-backend/app/models"
)

// PlannerLookup is the slice of the Metro DAO the planner needs. Tests
// provide an in-memory implementation.
type PlannerLookup interface {
	GetAllMaxIds() (database.MaxIds, error)
	FindQuestionnaireIdByName(name string) (int64, bool, error)
	FindCategoryIdByName(name string) (int64, bool, error)
	FindGoalIdByName(name string) (int64, bool, error)
	FindCompetenceIdByName(name string) (int64, bool, error)
	FindMissingGroupIds(ids []int64) ([]int64, error)
}

type dbLookup struct {
	db database.DBTX
}

// NewDBLookup binds the planner lookups to one environment's connection.
func NewDBLookup(db database.DBTX) PlannerLookup {
	return &dbLookup{db: db}
}

func (l *dbLookup) GetAllMaxIds() (database.MaxIds, error) {
	return database.GetAllMaxIds(l.db)
}

func (l *dbLookup) FindQuestionnaireIdByName(name string) (int64, bool, error) {
	return database.FindQuestionnaireIdByName(l.db, name)
}

func (l *dbLookup) FindCategoryIdByName(name string) (int64, bool, error) {
	return database.FindCategoryIdByName(l.db, name)
}

func (l *dbLookup) FindGoalIdByName(name string) (int64, bool, error) {
	return database.FindGoalIdByName(l.db, name)
}

func (l *dbLookup) FindCompetenceIdByName(name string) (int64, bool, error) {
	return database.FindCompetenceIdByName(l.db, name)
}

func (l *dbLookup) FindMissingGroupIds(ids []int64) ([]int64, error) {
	return database.FindMissingGroupIds(l.db, ids)
}

// UnknownGroupError is raised before any mutation when a requested group id
// does not exist in Metro.
type UnknownGroupError struct {
	Missing []int64
}

func (e *UnknownGroupError) Error() string {
	parts := make([]string, len(e.Missing))
	for i, id := range e.Missing {
		parts[i] = fmt.Sprintf("%d", id)
	}
	return "Onbekende groep(en): " + strings.Join(parts, ", ")
}

const maxAssessmentNameLength = 30

// GeneratePlan turns an assessment request into an ordered SQL statement
// list. The plan is emitted, not executed, so it can be logged, previewed and
// unit-tested without a database.
//
// Questionnaire identity: an explicit editQuestionnaireId wins, then a
// case-insensitive name match; both take the clean-and-replace path. Only
// when neither matches is a fresh id allocated.
func GeneratePlan(req *models.AssessmentBuildRequest, lookup PlannerLookup) (*models.IntegrationPreview, error) {
	maxIds, err := lookup.GetAllMaxIds()
	if err != nil {
		return nil, err
	}

	missing, err := lookup.FindMissingGroupIds(req.GroupIds)
	if err != nil {
		return nil, err
	}
	if len(missing) > 0 {
		return nil, &UnknownGroupError{Missing: missing}
	}

	questionnaireSeq := NewSequence(maxIds.Questionnaires)
	categorySeq := NewSequence(maxIds.Categories)
	competenceSeq := NewSequence(maxIds.Competences)
	goalSeq := NewSequence(maxIds.Goals)
	itemSeq := NewSequence(maxIds.Items)
	cqSeq := NewSequence(maxIds.CompetenceQuestions)

	var sql []string
	var warnings []string

	name := strings.TrimSpace(req.AssessmentName)
	if len(name) > maxAssessmentNameLength {
		name = name[:maxAssessmentNameLength]
		warnings = append(warnings, fmt.Sprintf("Assessment naam is langer dan %d tekens en is afgekapt voor Metro.", maxAssessmentNameLength))
	}
	nameEn := strings.TrimSpace(req.AssessmentNameEn)
	if nameEn == "" {
		nameEn = name
	}
	if len(nameEn) > maxAssessmentNameLength {
		nameEn = nameEn[:maxAssessmentNameLength]
	}

	var questionnaireId int64
	reuse := false
	if req.EditQuestionnaireId != nil {
		questionnaireId = *req.EditQuestionnaireId
		reuse = true
	} else if id, found, err := lookup.FindQuestionnaireIdByName(name); err != nil {
		return nil, err
	} else if found {
		questionnaireId = id
		reuse = true
	}

	if reuse {
		warnings = append(warnings, fmt.Sprintf("Questionnaire '%s' bestaat al (ID: %d); questionnaire wordt bijgewerkt.", name, questionnaireId))
		sql = append(sql, cleanAndReplaceStatements(questionnaireId, name, nameEn)...)
	} else {
		questionnaireId = questionnaireSeq.Next()
		sql = append(sql,
			fmt.Sprintf("INSERT INTO questionnaires(id, name) VALUES (%d, '%s');", questionnaireId, escapeSql(name)),
			fmt.Sprintf("INSERT INTO questionnaire_translations(questionnaireId, language, name, questions, report) VALUES (%d, 'nl', '%s', NULL, NULL);", questionnaireId, escapeSql(name)),
			fmt.Sprintf("INSERT INTO questionnaire_translations(questionnaireId, language, name, questions, report) VALUES (%d, 'en', '%s', NULL, NULL);", questionnaireId, escapeSql(nameEn)),
		)
	}

	categoryIds := map[string]int64{}
	goalIds := map[string]int64{}
	var categoryOrder []string          // lowercased names, first-seen order
	categoryQuestionCount := map[string]int{}
	var allCategoryIds []int64
	var allGoalIds []int64

	summary := models.PreviewSummary{QuestionnaireId: questionnaireId}
	itemOrder := 0

	for _, input := range req.Competences {
		categoryName := strings.TrimSpace(input.Category)
		categoryKey := strings.ToLower(categoryName)

		categoryId, seen := categoryIds[categoryKey]
		if !seen {
			id, found, err := lookup.FindCategoryIdByName(categoryName)
			if err != nil {
				return nil, err
			}
			if found {
				categoryId = id
			} else {
				categoryId = categorySeq.Next()
				categoryEn := strings.TrimSpace(input.CategoryEn)
				if categoryEn == "" {
					categoryEn = categoryName
				}
				sql = append(sql,
					fmt.Sprintf("INSERT INTO categories(id, name) VALUES (%d, '%s');", categoryId, escapeSql(categoryName)),
					fmt.Sprintf("INSERT INTO category_translations(categoryId, language, name) VALUES (%d, 'nl', '%s');", categoryId, escapeSql(categoryName)),
					fmt.Sprintf("INSERT INTO category_translations(categoryId, language, name) VALUES (%d, 'en', '%s');", categoryId, escapeSql(categoryEn)),
				)
				summary.NewCategories++
			}
			categoryIds[categoryKey] = categoryId
			categoryOrder = append(categoryOrder, categoryKey)
			allCategoryIds = append(allCategoryIds, categoryId)
		}

		var goalId int64
		hasGoal := false
		subcategoryName := strings.TrimSpace(input.Subcategory)
		if subcategoryName != "" {
			hasGoal = true
			goalKey := strings.ToLower(subcategoryName)
			if cached, ok := goalIds[goalKey]; ok {
				goalId = cached
			} else {
				id, found, err := lookup.FindGoalIdByName(subcategoryName)
				if err != nil {
					return nil, err
				}
				if found {
					goalId = id
				} else {
					goalId = goalSeq.Next()
					subcategoryEn := strings.TrimSpace(input.SubcategoryEn)
					if subcategoryEn == "" {
						subcategoryEn = subcategoryName
					}
					sql = append(sql,
						fmt.Sprintf("INSERT INTO goals(id, name) VALUES (%d, '%s');", goalId, escapeSql(subcategoryName)),
						fmt.Sprintf("INSERT INTO goal_translations(goalId, language, name) VALUES (%d, 'nl', '%s');", goalId, escapeSql(subcategoryName)),
						fmt.Sprintf("INSERT INTO goal_translations(goalId, language, name) VALUES (%d, 'en', '%s');", goalId, escapeSql(subcategoryEn)),
					)
					summary.NewGoals++
				}
				goalIds[goalKey] = goalId
				allGoalIds = append(allGoalIds, goalId)
			}
		}

		var competenceId int64
		resolved := false
		if input.ExistingId != nil {
			competenceId = *input.ExistingId
			resolved = true
		} else {
			id, found, err := lookup.FindCompetenceIdByName(input.Name)
			if err != nil {
				return nil, err
			}
			if found {
				competenceId = id
				resolved = true
			}
		}

		if !resolved && input.IsNew {
			competenceId = competenceSeq.Next()
			resolved = true

			competenceName := strings.TrimSpace(input.Name)
			description := strings.TrimSpace(input.Description)
			competenceNameEn := strings.TrimSpace(input.NameEn)
			if competenceNameEn == "" {
				competenceNameEn = competenceName
			}
			descriptionEn := strings.TrimSpace(input.DescriptionEn)
			if descriptionEn == "" {
				descriptionEn = description
			}

			sql = append(sql,
				fmt.Sprintf("INSERT INTO competences(id, name, description, defaultMinPassScore, defaultMinMentorScore) VALUES (%d, '%s', %s, NULL, NULL);",
					competenceId, escapeSql(competenceName), nullOrQuoted(description)),
				fmt.Sprintf("INSERT INTO competence_translations(competenceId, language, name, description) VALUES (%d, 'nl', '%s', %s);",
					competenceId, escapeSql(competenceName), nullOrQuoted(description)),
				fmt.Sprintf("INSERT INTO competence_translations(competenceId, language, name, description) VALUES (%d, 'en', '%s', %s);",
					competenceId, escapeSql(competenceNameEn), nullOrQuoted(descriptionEn)),
			)
			summary.NewCompetences++
		}

		if !resolved {
			warnings = append(warnings, fmt.Sprintf("Competence '%s' is gemarkeerd als bestaand maar heeft geen existingId. Koppelingen zijn overgeslagen.", input.Name))
			continue
		}

		sql = append(sql, fmt.Sprintf("INSERT IGNORE INTO category_competences (categoryId, competenceId) VALUES (%d, %d);", categoryId, competenceId))
		if hasGoal {
			sql = append(sql, fmt.Sprintf("INSERT IGNORE INTO goal_competences (goalId, competenceId) VALUES (%d, %d);", goalId, competenceId))
		}

		questionLeft := strings.TrimSpace(input.QuestionLeft)
		questionRight := strings.TrimSpace(input.QuestionRight)
		if questionLeft == "" && questionRight == "" {
			continue
		}

		// Blank sides fall back to each other so both poles always carry text.
		leftNl := questionLeft
		if leftNl == "" {
			leftNl = questionRight
		}
		rightNl := questionRight
		if rightNl == "" {
			rightNl = questionLeft
		}
		leftEn := strings.TrimSpace(input.QuestionLeftEn)
		if leftEn == "" {
			leftEn = leftNl
		}
		rightEn := strings.TrimSpace(input.QuestionRightEn)
		if rightEn == "" {
			rightEn = rightNl
		}

		itemId := itemSeq.Next()
		itemName := strings.TrimSpace(input.Name) + "_item"
		itemOrder++

		sql = append(sql,
			fmt.Sprintf("INSERT INTO items(id, name, invertOrder) VALUES (%d, '%s', 0);", itemId, escapeSql(itemName)),
			fmt.Sprintf("INSERT INTO item_translations(itemId, language, leftText, rightText) VALUES (%d, 'nl', '%s', '%s');", itemId, escapeSql(leftNl), escapeSql(rightNl)),
			fmt.Sprintf("INSERT INTO item_translations(itemId, language, leftText, rightText) VALUES (%d, 'en', '%s', '%s');", itemId, escapeSql(leftEn), escapeSql(rightEn)),
			fmt.Sprintf("INSERT IGNORE INTO questionnaire_items (questionnaireId, itemId, `order`) VALUES (%d, %d, %d);", questionnaireId, itemId, itemOrder),
			fmt.Sprintf("INSERT IGNORE INTO competence_items (competenceId, itemId) VALUES (%d, %d);", competenceId, itemId),
		)

		section := categoryRank(categoryOrder, categoryKey)
		categoryQuestionCount[categoryKey]++
		questionId := fmt.Sprintf("%d.%d.", section, categoryQuestionCount[categoryKey])
		sql = append(sql, fmt.Sprintf("INSERT INTO competence_questions (competenceId, questionnaireId, questionId, cq_id) VALUES (%d, %d, '%s', %d);",
			competenceId, questionnaireId, questionId, cqSeq.Next()))

		summary.NewItems++
	}

	for _, groupId := range req.GroupIds {
		sql = append(sql, fmt.Sprintf("INSERT INTO group_questionnaires (groupId, questionnaireId, promoted, price) VALUES (%d, %d, 0, 0.00);", groupId, questionnaireId))
		for _, categoryId := range allCategoryIds {
			sql = append(sql, fmt.Sprintf("INSERT INTO group_categories (groupId, categoryId) SELECT %d, %d FROM DUAL WHERE NOT EXISTS (SELECT 1 FROM group_categories WHERE groupId = %d AND categoryId = %d);",
				groupId, categoryId, groupId, categoryId))
		}
		for _, goalId := range allGoalIds {
			sql = append(sql, fmt.Sprintf("INSERT INTO group_goals (groupId, goalId) SELECT %d, %d FROM DUAL WHERE NOT EXISTS (SELECT 1 FROM group_goals WHERE groupId = %d AND goalId = %d);",
				groupId, goalId, groupId, goalId))
		}
	}

	return &models.IntegrationPreview{
		SqlStatements: sql,
		Warnings:      warnings,
		Summary:       summary,
	}, nil
}

// cleanAndReplaceStatements removes all derived content of an existing
// questionnaire while keeping its id, then restores the translation rows
// (URLs cleared, they are re-patched after upload) and the name.
func cleanAndReplaceStatements(questionnaireId int64, name, nameEn string) []string {
	return []string{
		fmt.Sprintf("DELETE it FROM item_translations it INNER JOIN questionnaire_items qi ON qi.itemId = it.itemId WHERE qi.questionnaireId = %d;", questionnaireId),
		fmt.Sprintf("DELETE ci FROM competence_items ci INNER JOIN questionnaire_items qi ON qi.itemId = ci.itemId WHERE qi.questionnaireId = %d;", questionnaireId),
		fmt.Sprintf("DELETE i FROM items i INNER JOIN questionnaire_items qi ON qi.itemId = i.id WHERE qi.questionnaireId = %d;", questionnaireId),
		fmt.Sprintf("DELETE FROM questionnaire_items WHERE questionnaireId = %d;", questionnaireId),
		fmt.Sprintf("DELETE FROM competence_questions WHERE questionnaireId = %d;", questionnaireId),
		fmt.Sprintf("DELETE FROM group_questionnaires WHERE questionnaireId = %d;", questionnaireId),
		fmt.Sprintf("DELETE FROM questionnaire_translations WHERE questionnaireId = %d;", questionnaireId),
		fmt.Sprintf("INSERT INTO questionnaire_translations(questionnaireId, language, name, questions, report) VALUES (%d, 'nl', '%s', NULL, NULL);", questionnaireId, escapeSql(name)),
		fmt.Sprintf("INSERT INTO questionnaire_translations(questionnaireId, language, name, questions, report) VALUES (%d, 'en', '%s', NULL, NULL);", questionnaireId, escapeSql(nameEn)),
		fmt.Sprintf("UPDATE questionnaires SET name = '%s' WHERE id = %d;", escapeSql(name), questionnaireId),
	}
}

func categoryRank(order []string, key string) int {
	for i, k := range order {
		if k == key {
			return i + 1
		}
	}
	return len(order)
}

func escapeSql(value string) string {
	return strings.ReplaceAll(value, "'", "''")
}

func nullOrQuoted(value string) string {
	if strings.TrimSpace(value) == "" {
		return "NULL"
	}
	return "'" + escapeSql(value) + "'"
}
