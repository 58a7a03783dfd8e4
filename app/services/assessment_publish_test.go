package services

import (
	"context"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/gerarddekkers/builder-backend/app/database"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecordSlowest(t *testing.T) {
	timings := map[string]int64{}
	recordSlowest(timings, []database.StatementTiming{
		{Index: 0, Ms: 5},
		{Index: 1, Ms: 120},
		{Index: 2, Ms: 80},
		{Index: 3, Ms: 10},
		{Index: 4, Ms: 200},
		{Index: 5, Ms: 90},
		{Index: 6, Ms: 1},
	})

	assert.Equal(t, int64(200), timings["slow1_ms"])
	assert.Equal(t, int64(4), timings["slow1_idx"])
	assert.Equal(t, int64(120), timings["slow2_ms"])
	assert.Equal(t, int64(1), timings["slow2_idx"])
	assert.Equal(t, int64(90), timings["slow3_ms"])
	assert.Equal(t, int64(80), timings["slow4_ms"])
	assert.Equal(t, int64(10), timings["slow5_ms"])
	_, has6 := timings["slow6_ms"]
	assert.False(t, has6)
}

func TestRecordSlowestFewStatements(t *testing.T) {
	timings := map[string]int64{}
	recordSlowest(timings, []database.StatementTiming{{Index: 0, Ms: 3}})
	assert.Equal(t, int64(3), timings["slow1_ms"])
	_, has2 := timings["slow2_ms"]
	assert.False(t, has2)
}

func TestAssessmentPublishEnvResolution(t *testing.T) {
	publisher := NewAssessmentPublisher(nil, nil, nil)

	_, err := publisher.Publish(context.Background(), basicRequest(), EnvProduction)
	assert.ErrorIs(t, err, ErrProdNotConfigured)

	_, err = publisher.Publish(context.Background(), basicRequest(), EnvTest)
	assert.ErrorIs(t, err, database.ErrNotConfigured)
}

// Full publish against a mocked test database with S3 disabled. The plan for
// basicRequest emits 18 statements, all touching competence_questions at some
// point, so the trigger drop and recreate bracket the batch.
func TestAssessmentPublishExecutesPlanInTransaction(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	publisher := NewAssessmentPublisher(db, nil, nil)

	mock.ExpectBegin()
	mock.ExpectQuery("SELECT").WillReturnRows(
		sqlmock.NewRows([]string{"q", "cat", "comp", "g", "i", "cq"}).
			AddRow(100, 200, 300, 400, 500, 600))
	mock.ExpectQuery("SELECT id FROM groups").WillReturnRows(
		sqlmock.NewRows([]string{"id"}).AddRow(1))
	// Name lookups miss: questionnaire, category and competence are all new.
	for i := 0; i < 6; i++ {
		mock.ExpectQuery("SELECT").WillReturnRows(sqlmock.NewRows([]string{"id"}))
	}

	for i := 0; i < 3; i++ {
		mock.ExpectExec("DROP TRIGGER").WillReturnResult(sqlmock.NewResult(0, 0))
	}
	for i := 0; i < 18; i++ {
		mock.ExpectExec("INSERT|UPDATE|DELETE").WillReturnResult(sqlmock.NewResult(1, 1))
	}
	for i := 0; i < 3; i++ {
		mock.ExpectExec("CREATE TRIGGER").WillReturnResult(sqlmock.NewResult(0, 0))
	}
	mock.ExpectCommit()

	result, err := publisher.Publish(context.Background(), basicRequest(), EnvTest)
	require.NoError(t, err)
	assert.Equal(t, int64(101), result.QuestionnaireId)
	assert.True(t, result.Published)
	assert.Equal(t, int64(18), result.Timings["sqlStatementCount"])
	assert.Equal(t, int64(101), result.Timings["questionnaireId"])
	assert.Equal(t, int64(1), result.Timings["groupCount"])
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAssessmentPublishRollsBackOnUnknownGroup(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	publisher := NewAssessmentPublisher(db, nil, nil)

	mock.ExpectBegin()
	mock.ExpectQuery("SELECT").WillReturnRows(
		sqlmock.NewRows([]string{"q", "cat", "comp", "g", "i", "cq"}).
			AddRow(0, 0, 0, 0, 0, 0))
	mock.ExpectQuery("SELECT id FROM groups").WillReturnRows(
		sqlmock.NewRows([]string{"id"}))
	mock.ExpectRollback()

	_, err = publisher.Publish(context.Background(), basicRequest(), EnvTest)
	var unknownErr *UnknownGroupError
	require.ErrorAs(t, err, &unknownErr)
	assert.NoError(t, mock.ExpectationsWereMet())
}
