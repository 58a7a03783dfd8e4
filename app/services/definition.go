package services

import (
	"fmt"
	"sort"
	"time"

	"github.com/gerarddekkers/builder-backend/app/database"
	"github.com/gerarddekkers/builder-backend/app/models"
)

// DefinitionService exports published questionnaires back into the editable
// definition format, and composes several into one.
type DefinitionService struct {
	db database.DBTX
}

func NewDefinitionService(db database.DBTX) *DefinitionService {
	return &DefinitionService{db: db}
}

// ExportDefinition reads a questionnaire with its full category, competence
// and item tree. Returns nil when the questionnaire does not exist.
func (s *DefinitionService) ExportDefinition(questionnaireId int64) (*models.AssessmentDefinition, error) {
	questionnaire, err := database.FindQuestionnaireById(s.db, questionnaireId)
	if err != nil {
		return nil, err
	}
	if questionnaire == nil {
		return nil, nil
	}

	qTranslations, err := database.FindQuestionnaireTranslations(s.db, questionnaireId)
	if err != nil {
		return nil, err
	}
	questionnaireTexts := map[string]models.QuestionnaireTexts{}
	for _, qt := range qTranslations {
		// The Metro columns are named for their historical content: "report"
		// holds the description, "questions" holds the instruction.
		questionnaireTexts[qt.Language] = models.QuestionnaireTexts{
			Name:        qt.Name,
			Description: qt.Report,
			Instruction: qt.Questions,
		}
	}

	itemRows, err := database.FindQuestionnaireItemsWithDetails(s.db, questionnaireId)
	if err != nil {
		return nil, err
	}
	if len(itemRows) == 0 {
		return buildDefinition(questionnaireId, questionnaireTexts, nil), nil
	}

	var competenceIds, categoryIds []int64
	itemToCompetence := map[int64]int64{}
	competenceToCategory := map[int64]int64{}
	seenCompetence := map[int64]bool{}
	seenCategory := map[int64]bool{}
	for _, row := range itemRows {
		if !seenCompetence[row.CompetenceId] {
			seenCompetence[row.CompetenceId] = true
			competenceIds = append(competenceIds, row.CompetenceId)
		}
		if !seenCategory[row.CategoryId] {
			seenCategory[row.CategoryId] = true
			categoryIds = append(categoryIds, row.CategoryId)
		}
		if _, ok := itemToCompetence[row.ItemId]; !ok {
			itemToCompetence[row.ItemId] = row.CompetenceId
		}
		if _, ok := competenceToCategory[row.CompetenceId]; !ok {
			competenceToCategory[row.CompetenceId] = row.CategoryId
		}
	}

	itemTexts, err := s.loadItemTexts(questionnaireId)
	if err != nil {
		return nil, err
	}
	competenceTexts, err := s.loadCompetenceTexts(competenceIds)
	if err != nil {
		return nil, err
	}
	categoryTexts, err := s.loadCategoryTexts(categoryIds)
	if err != nil {
		return nil, err
	}

	itemsByCompetence := map[int64][]models.ItemDef{}
	seenItems := map[int64]bool{}
	for _, row := range itemRows {
		if seenItems[row.ItemId] {
			continue
		}
		seenItems[row.ItemId] = true
		polarity := "positive"
		if row.InvertOrder != 0 {
			polarity = "negative"
		}
		compId := itemToCompetence[row.ItemId]
		itemsByCompetence[compId] = append(itemsByCompetence[compId], models.ItemDef{
			ID:        row.ItemId,
			Polarity:  polarity,
			SortOrder: row.ItemOrder,
			Texts:     itemTexts[row.ItemId],
		})
	}
	for _, items := range itemsByCompetence {
		sort.Slice(items, func(i, j int) bool { return items[i].SortOrder < items[j].SortOrder })
	}

	competencesByCategory := map[int64][]models.CompetenceDef{}
	for _, compId := range competenceIds {
		items := itemsByCompetence[compId]
		compSortOrder := minItemOrder(items)
		competencesByCategory[competenceToCategory[compId]] = append(
			competencesByCategory[competenceToCategory[compId]],
			models.CompetenceDef{
				ID:        compId,
				SortOrder: compSortOrder,
				Texts:     competenceTexts[compId],
				Items:     items,
			})
	}
	for _, comps := range competencesByCategory {
		sort.Slice(comps, func(i, j int) bool { return comps[i].SortOrder < comps[j].SortOrder })
	}

	var categories []models.CategoryDef
	for _, catId := range categoryIds {
		comps := competencesByCategory[catId]
		catSortOrder := minCompetenceOrder(comps)
		categories = append(categories, models.CategoryDef{
			ID:          catId,
			SortOrder:   catSortOrder,
			Texts:       categoryTexts[catId],
			Competences: comps,
		})
	}
	sort.Slice(categories, func(i, j int) bool { return categories[i].SortOrder < categories[j].SortOrder })

	return buildDefinition(questionnaireId, questionnaireTexts, categories), nil
}

// ComposeDefinitions merges several published assessments into one new
// definition. Each source assessment becomes one category carrying all of
// its competences; its name becomes the category name. Existing competence
// and item ids are kept so nothing is duplicated on publish.
func (s *DefinitionService) ComposeDefinitions(questionnaireIds []int64) (*models.AssessmentDefinition, error) {
	if len(questionnaireIds) < 2 {
		return nil, fmt.Errorf("at least 2 questionnaire ids are required, got %d", len(questionnaireIds))
	}

	var composed []models.CategoryDef
	sortOrder := 0
	for _, qId := range questionnaireIds {
		def, err := s.ExportDefinition(qId)
		if err != nil {
			return nil, err
		}
		if def == nil {
			continue
		}

		categoryTexts := map[string]models.CategoryTexts{}
		for lang, texts := range def.Texts {
			categoryTexts[lang] = models.CategoryTexts{Name: texts.Name}
		}

		var allCompetences []models.CompetenceDef
		for _, cat := range def.Categories {
			allCompetences = append(allCompetences, cat.Competences...)
		}

		composed = append(composed, models.CategoryDef{
			ID:          0,
			SortOrder:   sortOrder,
			Texts:       categoryTexts,
			Competences: allCompetences,
		})
		sortOrder++
	}

	return &models.AssessmentDefinition{
		ID:         0,
		Version:    "1.0",
		Metadata:   models.DefinitionMetadata{CreatedFrom: "compose", ExportedAt: time.Now().UTC()},
		Texts:      map[string]models.QuestionnaireTexts{},
		Scale:      models.DefinitionScale{Points: 6, Type: "bipolar"},
		Categories: composed,
	}, nil
}

func buildDefinition(questionnaireId int64, texts map[string]models.QuestionnaireTexts, categories []models.CategoryDef) *models.AssessmentDefinition {
	return &models.AssessmentDefinition{
		ID:         questionnaireId,
		Version:    "1.0",
		Metadata:   models.DefinitionMetadata{CreatedFrom: "metro-sql", ExportedAt: time.Now().UTC()},
		Texts:      texts,
		Scale:      models.DefinitionScale{Points: 6, Type: "bipolar"},
		Categories: categories,
	}
}

func (s *DefinitionService) loadItemTexts(questionnaireId int64) (map[int64]map[string]models.ItemTexts, error) {
	rows, err := database.FindItemTranslationsForQuestionnaire(s.db, questionnaireId)
	if err != nil {
		return nil, err
	}
	out := map[int64]map[string]models.ItemTexts{}
	for _, row := range rows {
		if out[row.ItemId] == nil {
			out[row.ItemId] = map[string]models.ItemTexts{}
		}
		out[row.ItemId][row.Language] = models.ItemTexts{LeftText: row.LeftText, RightText: row.RightText}
	}
	return out, nil
}

func (s *DefinitionService) loadCompetenceTexts(competenceIds []int64) (map[int64]map[string]models.CompetenceTexts, error) {
	rows, err := database.FindCompetenceTranslationsForIds(s.db, competenceIds)
	if err != nil {
		return nil, err
	}
	out := map[int64]map[string]models.CompetenceTexts{}
	for _, row := range rows {
		if out[row.CompetenceId] == nil {
			out[row.CompetenceId] = map[string]models.CompetenceTexts{}
		}
		out[row.CompetenceId][row.Language] = models.CompetenceTexts{Name: row.Name, Description: row.Description}
	}
	return out, nil
}

func (s *DefinitionService) loadCategoryTexts(categoryIds []int64) (map[int64]map[string]models.CategoryTexts, error) {
	rows, err := database.FindCategoryTranslationsForIds(s.db, categoryIds)
	if err != nil {
		return nil, err
	}
	out := map[int64]map[string]models.CategoryTexts{}
	for _, row := range rows {
		if out[row.CategoryId] == nil {
			out[row.CategoryId] = map[string]models.CategoryTexts{}
		}
		out[row.CategoryId][row.Language] = models.CategoryTexts{Name: row.Name}
	}
	return out, nil
}

func minItemOrder(items []models.ItemDef) int {
	min := int(^uint(0) >> 1)
	for _, item := range items {
		if item.SortOrder < min {
			min = item.SortOrder
		}
	}
	return min
}

func minCompetenceOrder(comps []models.CompetenceDef) int {
	min := int(^uint(0) >> 1)
	for _, comp := range comps {
		if comp.SortOrder < min {
			min = comp.SortOrder
		}
	}
	return min
}
