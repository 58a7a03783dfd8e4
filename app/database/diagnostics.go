package database

import (
	"database/sql"
	"fmt"
)

// CleanupResult reports per-table delete counts for a questionnaire range
// cleanup, in FK order.
type CleanupResult struct {
	Range                     string `json:"range"`
	ItemTranslations          int64  `json:"item_translations"`
	CompetenceItems           int64  `json:"competence_items"`
	Items                     int64  `json:"items"`
	QuestionnaireItems        int64  `json:"questionnaire_items"`
	CompetenceQuestions       int64  `json:"competence_questions"`
	GroupQuestionnaires       int64  `json:"group_questionnaires"`
	QuestionnaireTranslations int64  `json:"questionnaire_translations"`
	Questionnaires            int64  `json:"questionnaires"`
}

// CleanupQuestionnaireRange cascade-deletes questionnaires fromId..toId with
// the recalculation triggers bypassed. The range is capped at 100 ids.
func CleanupQuestionnaireRange(db DBTX, fromId, toId int64) (*CleanupResult, error) {
	if toId-fromId > 100 {
		return nil, fmt.Errorf("range too large (max 100)")
	}

	if err := dropCompetenceQuestionTriggers(db); err != nil {
		return nil, err
	}
	defer recreateCompetenceQuestionTriggers(db)

	del := func(query string) (int64, error) {
		res, err := db.Exec(query, fromId, toId)
		if err != nil {
			return 0, err
		}
		return res.RowsAffected()
	}

	result := &CleanupResult{Range: fmt.Sprintf("%d-%d", fromId, toId)}
	var err error
	if result.ItemTranslations, err = del(`DELETE it FROM item_translations it INNER JOIN questionnaire_items qi ON qi.itemId = it.itemId WHERE qi.questionnaireId BETWEEN ? AND ?`); err != nil {
		return nil, err
	}
	if result.CompetenceItems, err = del(`DELETE ci FROM competence_items ci INNER JOIN questionnaire_items qi ON qi.itemId = ci.itemId WHERE qi.questionnaireId BETWEEN ? AND ?`); err != nil {
		return nil, err
	}
	if result.Items, err = del(`DELETE i FROM items i INNER JOIN questionnaire_items qi ON qi.itemId = i.id WHERE qi.questionnaireId BETWEEN ? AND ?`); err != nil {
		return nil, err
	}
	if result.QuestionnaireItems, err = del(`DELETE FROM questionnaire_items WHERE questionnaireId BETWEEN ? AND ?`); err != nil {
		return nil, err
	}
	if result.CompetenceQuestions, err = del(`DELETE FROM competence_questions WHERE questionnaireId BETWEEN ? AND ?`); err != nil {
		return nil, err
	}
	if result.GroupQuestionnaires, err = del(`DELETE FROM group_questionnaires WHERE questionnaireId BETWEEN ? AND ?`); err != nil {
		return nil, err
	}
	if result.QuestionnaireTranslations, err = del(`DELETE FROM questionnaire_translations WHERE questionnaireId BETWEEN ? AND ?`); err != nil {
		return nil, err
	}
	if result.Questionnaires, err = del(`DELETE FROM questionnaires WHERE id BETWEEN ? AND ?`); err != nil {
		return nil, err
	}
	return result, nil
}

// QuestionnaireOverview is one row of the db-questionnaires diagnostic view.
type QuestionnaireOverview struct {
	ID        int64  `json:"id"`
	Name      string `json:"name"`
	GroupIds  string `json:"groupIds"`
	ItemCount int64  `json:"itemCount"`
	CqCount   int64  `json:"cqCount"`
}

func ListRecentQuestionnaires(db DBTX) ([]QuestionnaireOverview, error) {
	rows, err := db.Query(`SELECT q.id, q.name,
		COALESCE(GROUP_CONCAT(DISTINCT gq.groupId ORDER BY gq.groupId), '') AS groupIds,
		(SELECT COUNT(*) FROM questionnaire_items qi WHERE qi.questionnaireId = q.id) AS itemCount,
		(SELECT COUNT(*) FROM competence_questions cq WHERE cq.questionnaireId = q.id) AS cqCount
		FROM questionnaires q
		LEFT JOIN group_questionnaires gq ON gq.questionnaireId = q.id
		GROUP BY q.id, q.name
		ORDER BY q.id DESC LIMIT 30`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var list []QuestionnaireOverview
	for rows.Next() {
		var q QuestionnaireOverview
		if err := rows.Scan(&q.ID, &q.Name, &q.GroupIds, &q.ItemCount, &q.CqCount); err != nil {
			return nil, err
		}
		list = append(list, q)
	}
	return list, rows.Err()
}

// TranslationRow is one questionnaire_translations row with its URL columns.
type TranslationRow struct {
	QuestionnaireId int64  `json:"questionnaireId"`
	Language        string `json:"language"`
	Name            string `json:"name"`
	Questions       string `json:"questions"`
	Report          string `json:"report"`
}

func ListQuestionnaireTranslations(db DBTX, questionnaireId int64) ([]TranslationRow, error) {
	rows, err := db.Query(
		`SELECT questionnaireId, language, name, questions, report FROM questionnaire_translations WHERE questionnaireId = ?`,
		questionnaireId)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var list []TranslationRow
	for rows.Next() {
		var t TranslationRow
		var questions, report sql.NullString
		if err := rows.Scan(&t.QuestionnaireId, &t.Language, &t.Name, &questions, &report); err != nil {
			return nil, err
		}
		t.Questions = questions.String
		t.Report = report.String
		list = append(list, t)
	}
	return list, rows.Err()
}
