package services

import (
	"strings"
	"testing"

	"github.com/gerarddekkers/builder-backend/app/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func xmlRequest() *models.AssessmentBuildRequest {
	return &models.AssessmentBuildRequest{
		AssessmentName:        "Leiderschap",
		AssessmentNameEn:      "Leadership",
		AssessmentInstruction: "Geef per stelling je score.",
		AssessmentDescription: "Dit rapport toont je scores.",
		GroupIds:              []int64{1},
		Competences: []models.CompetenceInput{
			{
				Category:      "Persoonlijk",
				Name:          "Zelfvertrouwen",
				QuestionLeft:  "Ik twijfel vaak",
				QuestionRight: "Ik sta stevig",
			},
			{
				Category:      "Persoonlijk",
				Name:          "Moed",
				QuestionLeft:  "Ik vermijd risico",
				QuestionRight: "Ik durf",
			},
			{
				Category:      "Sociaal",
				Name:          "Empathie",
				QuestionLeft:  "Ik luister weinig",
				QuestionRight: "Ik leef mee",
			},
		},
	}
}

func TestQuestionnaireXmlLayout(t *testing.T) {
	var warnings []string
	xml := GenerateQuestionnaireXml(xmlRequest(), "nl", &warnings)

	assert.True(t, strings.HasPrefix(xml, "<?xml version=\"1.0\" encoding=\"utf-8\"?>\n<questionnaire title=\"Leiderschap\""))
	assert.Contains(t, xml, "\n\tvaluators=\"7\"")
	assert.Contains(t, xml, "\t<section title=\"Persoonlijk\" instruction=\"Geef per stelling je score.\">\n")
	assert.Contains(t, xml, "\t\t<rangeQuestion id=\"1.1.\" left=\"Ik twijfel vaak\" right=\"Ik sta stevig\" />\n")
	assert.Contains(t, xml, "\t\t<rangeQuestion id=\"1.2.\" left=\"Ik vermijd risico\" right=\"Ik durf\" />\n")
	assert.Contains(t, xml, "\t\t<rangeQuestion id=\"2.1.\" left=\"Ik luister weinig\" right=\"Ik leef mee\" />\n")
	assert.True(t, strings.HasSuffix(xml, "</questionnaire>"))
	assert.Empty(t, warnings)
}

func TestQuestionnaireXmlEnglishFallsBackToDutch(t *testing.T) {
	var warnings []string
	xml := GenerateQuestionnaireXml(xmlRequest(), "en", &warnings)

	assert.Contains(t, xml, "<questionnaire title=\"Leadership\"")
	// No EN question texts given, the NL poles are reused.
	assert.Contains(t, xml, "left=\"Ik twijfel vaak\"")
}

func TestQuestionnaireXmlWarnsOnMissingQuestionText(t *testing.T) {
	req := xmlRequest()
	req.Competences[0].QuestionLeft = ""
	req.Competences[0].QuestionRight = ""

	var warnings []string
	GenerateQuestionnaireXml(req, "nl", &warnings)
	require.Len(t, warnings, 1)
	assert.Contains(t, warnings[0], "Zelfvertrouwen")
}

func TestQuestionnaireXmlEscapesAttributes(t *testing.T) {
	req := xmlRequest()
	req.AssessmentName = `Zorg & "Welzijn" <test>`

	var warnings []string
	xml := GenerateQuestionnaireXml(req, "nl", &warnings)
	assert.Contains(t, xml, "title=\"Zorg &amp; &quot;Welzijn&quot; &lt;test&gt;\"")
}

func TestReportXmlLayout(t *testing.T) {
	var warnings []string
	xml := GenerateReportXml(xmlRequest(), "nl", &warnings)

	assert.True(t, strings.HasPrefix(xml, "<?xml version=\"1.0\" encoding=\"utf-8\"?>\n<report title=\"Leiderschap\">"))
	assert.Contains(t, xml, "\t<section title=\"Inleiding\">\n")
	assert.Contains(t, xml, "<p>Dit rapport toont je scores.</p>")
	assert.Contains(t, xml, "\t<section title=\"Overzicht van de scores\">\n")
	assert.Contains(t, xml, "questions=\"1.|2.\"")
	assert.Contains(t, xml, "labels=\"Persoonlijk|Sociaal\"")
	assert.Contains(t, xml, "groupLabels=\"Zelf|Collega's|Ouders|Leiding\"")
	// Detail sections carry uppercased titles and per-question graphs.
	assert.Contains(t, xml, "\t<section title=\"PERSOONLIJK\">\n")
	assert.Contains(t, xml, "\t<section title=\"SOCIAAL\">\n")
	assert.Contains(t, xml, "questions=\"1.1.|1.2.\"")
	assert.Contains(t, xml, "<p>1.1 Ik sta stevig</p>")
	assert.True(t, strings.HasSuffix(xml, "</report>"))
}

func TestReportXmlGroupsBySubcategory(t *testing.T) {
	req := xmlRequest()
	req.Competences[0].Subcategory = "Innerlijke kracht"
	req.Competences[1].Subcategory = "Innerlijke kracht"

	var warnings []string
	xml := GenerateReportXml(req, "nl", &warnings)
	assert.Contains(t, xml, "\t<section title=\"INNERLIJKE KRACHT\">\n")
	assert.NotContains(t, xml, "\t<section title=\"PERSOONLIJK\">\n")
}

func TestReportXmlEnglishGroupLabels(t *testing.T) {
	var warnings []string
	xml := GenerateReportXml(xmlRequest(), "en", &warnings)
	assert.Contains(t, xml, "groupLabels=\"Self|Colleagues|Parents|Managers\"")
	assert.Contains(t, xml, "<section title=\"Introduction\">")
}

func TestEscapeTextNormalizesNewlines(t *testing.T) {
	assert.Equal(t, "a b c", escapeText("a\r\nb\nc"))
}
