package database

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/gerarddekkers/builder-backend/app/models"
)

// DBTX is satisfied by both *sql.DB and *sql.Tx so the same queries can run
// inside and outside a publish transaction.
type DBTX interface {
	Exec(query string, args ...any) (sql.Result, error)
	Query(query string, args ...any) (*sql.Rows, error)
	QueryRow(query string, args ...any) *sql.Row
}

var ErrNotConfigured = errors.New("metro database is not configured")

// ErrUrlPatchMissed means the translation URL update matched zero rows, which
// would leave a questionnaire without XML references.
var ErrUrlPatchMissed = errors.New("translation URL update affected no rows")

// MaxIds holds the current MAX(id) of every table the planner allocates from.
type MaxIds struct {
	Questionnaires      int64
	Categories          int64
	Competences         int64
	Goals               int64
	Items               int64
	CompetenceQuestions int64
}

var maxIdTables = map[string]string{
	"questionnaires": "id",
	"categories":     "id",
	"competences":    "id",
	"goals":          "id",
	"items":          "id",
}

// GetMaxId returns COALESCE(MAX(id), 0) for one of the allowlisted tables.
func GetMaxId(db DBTX, table string) (int64, error) {
	col, ok := maxIdTables[table]
	if !ok {
		return 0, fmt.Errorf("max id not allowed for table %q", table)
	}
	var max int64
	err := db.QueryRow(fmt.Sprintf("SELECT COALESCE(MAX(%s), 0) FROM %s", col, table)).Scan(&max)
	return max, err
}

// GetAllMaxIds probes every planner-relevant table in a single round-trip.
func GetAllMaxIds(db DBTX) (MaxIds, error) {
	var ids MaxIds
	query := `SELECT
		(SELECT COALESCE(MAX(id), 0) FROM questionnaires),
		(SELECT COALESCE(MAX(id), 0) FROM categories),
		(SELECT COALESCE(MAX(id), 0) FROM competences),
		(SELECT COALESCE(MAX(id), 0) FROM goals),
		(SELECT COALESCE(MAX(id), 0) FROM items),
		(SELECT COALESCE(MAX(cq_id), 0) FROM competence_questions)`
	err := db.QueryRow(query).Scan(
		&ids.Questionnaires, &ids.Categories, &ids.Competences,
		&ids.Goals, &ids.Items, &ids.CompetenceQuestions,
	)
	return ids, err
}

func findIdByName(db DBTX, directQuery, translatedQuery, name string) (int64, bool, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return 0, false, nil
	}
	var id int64
	err := db.QueryRow(directQuery, name).Scan(&id)
	if err == nil {
		return id, true, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return 0, false, err
	}
	err = db.QueryRow(translatedQuery, name).Scan(&id)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, err
	}
	return id, true, nil
}

func FindQuestionnaireIdByName(db DBTX, name string) (int64, bool, error) {
	return findIdByName(db,
		`SELECT id FROM questionnaires WHERE LOWER(name) = LOWER(?) LIMIT 1`,
		`SELECT questionnaireId FROM questionnaire_translations WHERE LOWER(name) = LOWER(?) LIMIT 1`,
		name)
}

func FindCategoryIdByName(db DBTX, name string) (int64, bool, error) {
	return findIdByName(db,
		`SELECT id FROM categories WHERE LOWER(name) = LOWER(?) LIMIT 1`,
		`SELECT categoryId FROM category_translations WHERE LOWER(name) = LOWER(?) LIMIT 1`,
		name)
}

func FindGoalIdByName(db DBTX, name string) (int64, bool, error) {
	return findIdByName(db,
		`SELECT id FROM goals WHERE LOWER(name) = LOWER(?) LIMIT 1`,
		`SELECT goalId FROM goal_translations WHERE LOWER(name) = LOWER(?) LIMIT 1`,
		name)
}

func FindCompetenceIdByName(db DBTX, name string) (int64, bool, error) {
	return findIdByName(db,
		`SELECT id FROM competences WHERE LOWER(name) = LOWER(?) LIMIT 1`,
		`SELECT competenceId FROM competence_translations WHERE LOWER(name) = LOWER(?) LIMIT 1`,
		name)
}

// FindMissingGroupIds returns the subset of ids with no row in groups.
func FindMissingGroupIds(db DBTX, ids []int64) ([]int64, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	placeholders := strings.TrimSuffix(strings.Repeat("?,", len(ids)), ",")
	args := make([]any, len(ids))
	for i, id := range ids {
		args[i] = id
	}
	rows, err := db.Query("SELECT id FROM groups WHERE id IN ("+placeholders+")", args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	found := make(map[int64]bool, len(ids))
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		found[id] = true
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	var missing []int64
	for _, id := range ids {
		if !found[id] {
			missing = append(missing, id)
		}
	}
	return missing, nil
}

func SearchGroups(db DBTX, query string) ([]models.CompetenceSummary, error) {
	like := "%" + strings.ToLower(strings.TrimSpace(query)) + "%"
	rows, err := db.Query(`SELECT id, name FROM groups WHERE LOWER(name) LIKE ? LIMIT 20`, like)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var results []models.CompetenceSummary
	for rows.Next() {
		var r models.CompetenceSummary
		if err := rows.Scan(&r.ID, &r.NameNl); err != nil {
			return nil, err
		}
		results = append(results, r)
	}
	return results, rows.Err()
}

func SearchCompetences(db DBTX, query string) ([]models.CompetenceSummary, error) {
	return searchTranslated(db, query, `SELECT c.id,
		(SELECT ct.name FROM competence_translations ct WHERE ct.competenceId = c.id AND ct.language = 'nl' LIMIT 1) AS nameNl,
		(SELECT ct.name FROM competence_translations ct WHERE ct.competenceId = c.id AND ct.language = 'en' LIMIT 1) AS nameEn
		FROM competences c
		WHERE LOWER(c.name) LIKE ?
		OR EXISTS (SELECT 1 FROM competence_translations ct WHERE ct.competenceId = c.id AND LOWER(ct.name) LIKE ?)
		LIMIT 20`)
}

func SearchCategories(db DBTX, query string) ([]models.CompetenceSummary, error) {
	return searchTranslated(db, query, `SELECT c.id,
		(SELECT ct.name FROM category_translations ct WHERE ct.categoryId = c.id AND ct.language = 'nl' LIMIT 1) AS nameNl,
		(SELECT ct.name FROM category_translations ct WHERE ct.categoryId = c.id AND ct.language = 'en' LIMIT 1) AS nameEn
		FROM categories c
		WHERE LOWER(c.name) LIKE ?
		OR EXISTS (SELECT 1 FROM category_translations ct WHERE ct.categoryId = c.id AND LOWER(ct.name) LIKE ?)
		LIMIT 20`)
}

func searchTranslated(db DBTX, query, sqlText string) ([]models.CompetenceSummary, error) {
	like := "%" + strings.ToLower(strings.TrimSpace(query)) + "%"
	rows, err := db.Query(sqlText, like, like)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var results []models.CompetenceSummary
	for rows.Next() {
		var r models.CompetenceSummary
		var nameNl, nameEn sql.NullString
		if err := rows.Scan(&r.ID, &nameNl, &nameEn); err != nil {
			return nil, err
		}
		r.NameNl = nameNl.String
		r.NameEn = nameEn.String
		results = append(results, r)
	}
	return results, rows.Err()
}

// FindGroupsForQuestionnaire returns the group ids currently linked to a
// questionnaire.
func FindGroupsForQuestionnaire(db DBTX, questionnaireId int64) ([]int64, error) {
	rows, err := db.Query(`SELECT groupId FROM group_questionnaires WHERE questionnaireId = ?`, questionnaireId)
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

// The score-recalculation triggers on competence_questions run per row and
// dominate publish latency, so bulk mutations run with the triggers dropped.
var competenceQuestionTriggers = []string{
	"recalculate_user_competence_scores_on_insert_2",
	"recalculate_user_competence_scores_on_update_2",
	"recalculate_user_competence_scores_on_delete_2",
}

var triggerEvents = map[string]string{
	"recalculate_user_competence_scores_on_insert_2": "INSERT",
	"recalculate_user_competence_scores_on_update_2": "UPDATE",
	"recalculate_user_competence_scores_on_delete_2": "DELETE",
}

func dropCompetenceQuestionTriggers(db DBTX) error {
	for _, name := range competenceQuestionTriggers {
		if _, err := db.Exec("DROP TRIGGER IF EXISTS " + name); err != nil {
			return fmt.Errorf("drop trigger %s: %w", name, err)
		}
	}
	return nil
}

func recreateCompetenceQuestionTriggers(db DBTX) error {
	for _, name := range competenceQuestionTriggers {
		stmt := fmt.Sprintf(
			"CREATE TRIGGER %s AFTER %s ON competence_questions FOR EACH ROW CALL metro.calculate_user_competence_scores_for_all_assessments()",
			name, triggerEvents[name])
		if _, err := db.Exec(stmt); err != nil {
			return fmt.Errorf("recreate trigger %s: %w", name, err)
		}
	}
	return nil
}

// StatementTiming records how long one plan statement took.
type StatementTiming struct {
	Index int
	Ms    int64
}

// ExecuteSqlStatements runs a planner-produced statement list in order. When
// any statement touches competence_questions the three recalculation triggers
// are dropped first and recreated afterwards; the recreate runs even when a
// statement in between fails.
func ExecuteSqlStatements(db DBTX, statements []string) ([]StatementTiming, error) {
	touchesCq := false
	for _, stmt := range statements {
		if strings.Contains(stmt, "competence_questions") {
			touchesCq = true
			break
		}
	}

	if touchesCq {
		if err := dropCompetenceQuestionTriggers(db); err != nil {
			return nil, err
		}
	}

	timings := make([]StatementTiming, 0, len(statements))
	var execErr error
	for i, stmt := range statements {
		stmt = strings.TrimSpace(strings.TrimSuffix(strings.TrimSpace(stmt), ";"))
		if stmt == "" {
			continue
		}
		start := time.Now()
		if _, err := db.Exec(stmt); err != nil {
			execErr = fmt.Errorf("statement %d failed: %w", i, err)
			break
		}
		timings = append(timings, StatementTiming{Index: i, Ms: time.Since(start).Milliseconds()})
	}

	if touchesCq {
		if err := recreateCompetenceQuestionTriggers(db); err != nil {
			if execErr == nil {
				execErr = err
			}
		}
	}
	if execErr != nil {
		return timings, execErr
	}
	return timings, nil
}

// UpdateTranslationUrls stores the uploaded XML URLs on one translation row.
func UpdateTranslationUrls(db DBTX, questionnaireId int64, lang, questionsUrl, reportUrl string) error {
	res, err := db.Exec(
		`UPDATE questionnaire_translations SET questions = ?, report = ? WHERE questionnaireId = ? AND language = ?`,
		questionsUrl, reportUrl, questionnaireId, lang)
	if err != nil {
		return err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return fmt.Errorf("%w: questionnaire %d lang %s", ErrUrlPatchMissed, questionnaireId, lang)
	}
	return nil
}
