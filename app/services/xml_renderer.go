package services

import (
	"fmt"
	"strings"

	"github.com/gerarddekkers/builder-backend/app/models"
)

// The XML layout below is parsed by Metro's whitespace-sensitive runtime;
// attribute order, tab indentation and the trailing-dot question ids must
// stay exactly as emitted here.

type categoryBucket struct {
	name          string
	descriptionNl string
	descriptionEn string
	competences   []models.CompetenceInput
}

type questionEntry struct {
	id    string
	label string
}

type reportSection struct {
	title       string
	description string
	questions   []questionEntry
}

// GenerateQuestionnaireXml renders the questionnaire document for one
// language. Categories appear in first-seen order; every competence with
// question text becomes a rangeQuestion.
func GenerateQuestionnaireXml(req *models.AssessmentBuildRequest, language string, warnings *[]string) string {
	title := selectLang(language, req.AssessmentName, req.AssessmentNameEn)
	instruction := selectLang(language, req.AssessmentInstruction, req.AssessmentInstructionEn)

	buckets := buildCategoryBuckets(req.Competences)

	var sb strings.Builder
	sb.WriteString("<?xml version=\"1.0\" encoding=\"utf-8\"?>\n")
	sb.WriteString("<questionnaire")
	sb.WriteString(attribute("title", title))
	sb.WriteString("\n\tinstruction=\"\"")
	sb.WriteString("\n\tvaluators=\"7\"")
	sb.WriteString("\n\tdescription=\"\"")
	sb.WriteString(">\n")

	firstSection := true
	for categoryIndex, bucket := range buckets {
		categoryDesc := selectLang(language, bucket.descriptionNl, bucket.descriptionEn)
		sectionInstruction := categoryDesc
		if sectionInstruction == "" && firstSection {
			sectionInstruction = instruction
		}
		firstSection = false

		sb.WriteString("\t<section")
		sb.WriteString(attribute("title", bucket.name))
		sb.WriteString(attribute("instruction", sectionInstruction))
		sb.WriteString(">\n")

		for competenceIndex, competence := range bucket.competences {
			left := selectLang(language, competence.QuestionLeft, competence.QuestionLeftEn)
			right := selectLang(language, competence.QuestionRight, competence.QuestionRightEn)
			if left == "" || right == "" {
				*warnings = append(*warnings, "Vraagtekst ontbreekt voor competence: "+competence.Name)
			}

			sb.WriteString("\t\t<rangeQuestion")
			sb.WriteString(attribute("id", questionIdString(categoryIndex+1, competenceIndex+1)))
			sb.WriteString(attribute("left", left))
			sb.WriteString(attribute("right", right))
			sb.WriteString(" />\n")
		}

		sb.WriteString("\t</section>\n")
	}

	sb.WriteString("</questionnaire>")
	return sb.String()
}

// GenerateReportXml renders the report document: intro, four overview graphs
// over the category series, then one detail section per category/subcategory.
func GenerateReportXml(req *models.AssessmentBuildRequest, language string, warnings *[]string) string {
	assessmentName := selectLang(language, req.AssessmentName, req.AssessmentNameEn)
	introText := selectLang(language, req.AssessmentDescription, req.AssessmentDescriptionEn)

	buckets := buildCategoryBuckets(req.Competences)
	sections := buildReportSections(buckets, language)

	var sb strings.Builder
	sb.WriteString("<?xml version=\"1.0\" encoding=\"utf-8\"?>\n")
	sb.WriteString("<report")
	sb.WriteString(attribute("title", assessmentName))
	sb.WriteString(">\n")

	sb.WriteString("\t<section" + attribute("title", fixedTitle(language, "Inleiding", "Introduction")) + ">\n")
	if introText != "" {
		sb.WriteString("\t\t<p>" + escapeText(introText) + "</p>\n")
	}
	sb.WriteString("\t</section>\n")

	categoryEntries := make([]questionEntry, 0, len(buckets))
	for i, bucket := range buckets {
		categoryEntries = append(categoryEntries, questionEntry{id: fmt.Sprintf("%d.", i+1), label: bucket.name})
	}
	categoryQuestions := joinQuestions(categoryEntries)
	categoryLabels := joinLabels(categoryEntries)

	sb.WriteString("\t<section" + attribute("title", fixedTitle(language, "Overzicht van de scores", "Score overview")) + ">\n")
	sb.WriteString("\t\t<graph" + attribute("type", "bar") +
		attribute("questions", categoryQuestions) +
		attribute("labels", categoryLabels) + " />\n")
	sb.WriteString("\t\t<graph" + attribute("type", "spider") +
		attribute("title", fixedTitle(language, "Alle gebieden op een rijtje", "All areas at a glance")) +
		attribute("questions", categoryQuestions) +
		attribute("min", "6") +
		attribute("max", "8") +
		attribute("labels", categoryLabels) + " />\n")
	sb.WriteString("\t\t<graph" + attribute("type", "bar") +
		attribute("title", fixedTitle(language, "Mijn score versus wat anderen vinden", "My score versus others")) +
		attribute("questions", categoryQuestions) +
		attribute("labels", categoryLabels) +
		attribute("groupBy", "0") +
		attribute("groups", "1|2|3|4") +
		attribute("groupLabels", groupLabels(language)) + " />\n")
	sb.WriteString("\t\t<graph" + attribute("type", "table") +
		attribute("title", fixedTitle(language, "Mijn score versus wat anderen vinden", "My score versus others")) +
		attribute("questions", categoryQuestions) +
		attribute("labels", categoryLabels) +
		attribute("groupBy", "0") +
		attribute("groups", "1|2|3|4") +
		attribute("groupLabels", groupLabels(language)) + " />\n")
	sb.WriteString("\t</section>\n")

	for _, section := range sections {
		sb.WriteString("\t<section" + attribute("title", strings.ToUpper(section.title)) + ">\n")
		if section.description != "" {
			sb.WriteString("\t\t<p>" + escapeText(section.description) + "</p>\n")
		}
		if len(section.questions) > 0 {
			sb.WriteString("\t\t<list>\n")
			for _, entry := range section.questions {
				displayId := strings.TrimSuffix(entry.id, ".")
				sb.WriteString("\t\t\t<p>" + escapeText(displayId+" "+entry.label) + "</p>\n")
			}
			sb.WriteString("\t\t</list>\n")

			sectionQuestions := joinQuestions(section.questions)
			sb.WriteString("\t\t<graph" + attribute("type", "bar") +
				attribute("title", fixedTitle(language, "Gemiddelde score per vraag", "Average score per question")) +
				attribute("questions", sectionQuestions) +
				" />\n")
			sb.WriteString("\t\t<graph" + attribute("type", "bar") +
				attribute("title", fixedTitle(language, "Gemiddelde score per vraag per respondentengroep", "Average score per group")) +
				attribute("questions", sectionQuestions) +
				attribute("groupBy", "0") +
				attribute("groups", "1|2|3|4") +
				attribute("groupLabels", groupLabels(language)) +
				" />\n")
		}
		sb.WriteString("\t</section>\n")
	}

	sb.WriteString("</report>")
	return sb.String()
}

func buildCategoryBuckets(competences []models.CompetenceInput) []*categoryBucket {
	var order []*categoryBucket
	index := map[string]*categoryBucket{}
	for _, competence := range competences {
		category := strings.TrimSpace(competence.Category)
		key := strings.ToLower(category)
		bucket, ok := index[key]
		if !ok {
			bucket = &categoryBucket{name: category}
			index[key] = bucket
			order = append(order, bucket)
		}
		if bucket.descriptionNl == "" && competence.CategoryDescription != "" {
			bucket.descriptionNl = competence.CategoryDescription
		}
		if bucket.descriptionEn == "" && competence.CategoryDescriptionEn != "" {
			bucket.descriptionEn = competence.CategoryDescriptionEn
		}
		bucket.competences = append(bucket.competences, competence)
	}
	return order
}

// Detail sections group by subcategory when present, falling back to the
// category; the right-pole question text is the per-question label.
func buildReportSections(buckets []*categoryBucket, language string) []*reportSection {
	var order []*reportSection
	index := map[string]*reportSection{}
	for categoryIndex, bucket := range buckets {
		for competenceIndex, competence := range bucket.competences {
			id := questionIdString(categoryIndex+1, competenceIndex+1)
			label := selectLang(language, competence.QuestionRight, competence.QuestionRightEn)

			sectionTitle := strings.TrimSpace(competence.Subcategory)
			fromCategory := sectionTitle == ""
			if fromCategory {
				sectionTitle = bucket.name
			}
			key := strings.ToLower(sectionTitle)
			section, ok := index[key]
			if !ok {
				section = &reportSection{title: sectionTitle}
				index[key] = section
				order = append(order, section)
			}
			if section.description == "" {
				if fromCategory {
					section.description = selectLang(language, competence.CategoryDescription, competence.CategoryDescriptionEn)
				} else {
					section.description = selectLang(language, competence.SubcategoryDescription, competence.SubcategoryDescriptionEn)
				}
			}
			section.questions = append(section.questions, questionEntry{id: id, label: label})
		}
	}
	return order
}

func questionIdString(categoryIndex, competenceIndex int) string {
	return fmt.Sprintf("%d.%d.", categoryIndex, competenceIndex)
}

func joinQuestions(entries []questionEntry) string {
	ids := make([]string, len(entries))
	for i, entry := range entries {
		ids[i] = entry.id
	}
	return strings.Join(ids, "|")
}

func joinLabels(entries []questionEntry) string {
	labels := make([]string, len(entries))
	for i, entry := range entries {
		labels[i] = escapeAttribute(entry.label)
	}
	return strings.Join(labels, "|")
}

// selectLang picks the requested language's value, falling back to NL when
// the EN side is blank.
func selectLang(language, nlValue, enValue string) string {
	value := strings.TrimSpace(nlValue)
	if strings.EqualFold(language, "en") {
		value = strings.TrimSpace(enValue)
	}
	if value == "" {
		value = strings.TrimSpace(nlValue)
	}
	return value
}

func fixedTitle(language, nl, en string) string {
	if strings.EqualFold(language, "en") {
		return en
	}
	return nl
}

func groupLabels(language string) string {
	if strings.EqualFold(language, "en") {
		return "Self|Colleagues|Parents|Managers"
	}
	return "Zelf|Collega's|Ouders|Leiding"
}

// attribute omits the whole attribute when the value is blank.
func attribute(name, value string) string {
	if strings.TrimSpace(value) == "" {
		return ""
	}
	return " " + name + "=\"" + escapeAttribute(value) + "\""
}

func escapeAttribute(value string) string {
	return strings.ReplaceAll(escapeText(value), "\"", "&quot;")
}

func escapeText(value string) string {
	normalized := strings.NewReplacer("\r\n", " ", "\n", " ", "\r", " ").Replace(value)
	return strings.NewReplacer("&", "&amp;", "<", "&lt;", ">", "&gt;").Replace(normalized)
}
