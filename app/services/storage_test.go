package services

import (
	"testing"

	"github.com/gerarddekkers/builder-backend/app/config"
	"github.com/stretchr/testify/assert"
)

func TestNewStorageDisabledIsNil(t *testing.T) {
	assert.Nil(t, NewStorage(config.S3Config{Enabled: false}))
}

func TestToSlug(t *testing.T) {
	cases := map[string]string{
		"Persoonlijk Leiderschap":  "persoonlijk_leiderschap",
		"  Team & Samenwerking!  ": "team_samenwerking",
		"a - b":                    "a_b",
		"al_reeds_ok":              "al_reeds_ok",
		"___":                      "unnamed",
		"":                         "unnamed",
	}
	for input, expected := range cases {
		assert.Equal(t, expected, ToSlug(input), "input %q", input)
	}
}

func TestBuildKey(t *testing.T) {
	s := &Storage{bucket: "metro-platform", prefix: "test"}
	key := s.BuildKey("production", "nl", "Persoonlijk Leiderschap", "questionnaire")
	assert.Equal(t, "production/nl/questionnaire_persoonlijk_leiderschap_NL.xml", key)

	key = s.BuildKey("test", "en", "Persoonlijk Leiderschap", "report")
	assert.Equal(t, "test/en/report_persoonlijk_leiderschap_EN.xml", key)
}

func TestBuildUrl(t *testing.T) {
	s := &Storage{bucket: "metro-platform"}
	assert.Equal(t,
		"https://metro-platform.s3.amazonaws.com/test/nl/questionnaire_x_NL.xml",
		s.BuildUrl("test/nl/questionnaire_x_NL.xml"))
}

func TestSequence(t *testing.T) {
	seq := NewSequence(100)
	assert.Equal(t, int64(101), seq.Next())
	assert.Equal(t, int64(102), seq.Next())
	assert.Equal(t, int64(102), seq.Peek())
	assert.Equal(t, int64(103), seq.Next())
}
