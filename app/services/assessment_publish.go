package services

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"
	"sort"
	"strconv"
	"time"

	"github.com/gerarddekkers/builder-backend/app/database"
	"github.com/gerarddekkers/builder-backend/app/models"
)

// PublishEnvironment selects which Metro database a publish targets.
type PublishEnvironment string

const (
	EnvTest       PublishEnvironment = "TEST"
	EnvProduction PublishEnvironment = "PRODUCTION"
)

// ErrProdNotConfigured is returned for PRODUCTION publishes when no prod
// datasource was configured at startup.
var ErrProdNotConfigured = errors.New("Production database is not configured. Set BUILDER_METRO_PROD_ENABLED=true with valid credentials.")

// AssessmentPublisher runs the full publish flow: plan, execute, render XML,
// upload, patch URLs. Everything touching the database happens in one
// transaction so a failed upload rolls the SQL back too.
type AssessmentPublisher struct {
	testDB  *sql.DB
	prodDB  *sql.DB
	storage *Storage
}

func NewAssessmentPublisher(testDB, prodDB *sql.DB, storage *Storage) *AssessmentPublisher {
	return &AssessmentPublisher{testDB: testDB, prodDB: prodDB, storage: storage}
}

func (p *AssessmentPublisher) resolve(env PublishEnvironment) (*sql.DB, string, error) {
	if env == EnvProduction {
		if p.prodDB == nil {
			return nil, "", ErrProdNotConfigured
		}
		return p.prodDB, "production", nil
	}
	if p.testDB == nil {
		return nil, "", database.ErrNotConfigured
	}
	return p.testDB, "test", nil
}

// Preview generates the SQL plan against the chosen environment without
// executing anything.
func (p *AssessmentPublisher) Preview(req *models.AssessmentBuildRequest, env PublishEnvironment) (*models.IntegrationPreview, error) {
	db, _, err := p.resolve(env)
	if err != nil {
		return nil, err
	}
	return GeneratePlan(req, NewDBLookup(db))
}

// Publish executes the plan and uploads the generated XML documents. The
// timings map mirrors what the frontend's diagnostics panel renders.
func (p *AssessmentPublisher) Publish(ctx context.Context, req *models.AssessmentBuildRequest, env PublishEnvironment) (*models.PublishResult, error) {
	db, s3Prefix, err := p.resolve(env)
	if err != nil {
		return nil, err
	}
	slog.Info("publishing questionnaire", "name", req.AssessmentName, "env", string(env))

	totalStart := time.Now()
	timings := map[string]int64{}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	t0 := time.Now()
	preview, err := GeneratePlan(req, NewDBLookup(tx))
	if err != nil {
		return nil, err
	}
	timings["generatePreview_ms"] = time.Since(t0).Milliseconds()
	timings["sqlStatementCount"] = int64(len(preview.SqlStatements))
	slog.Info("plan generated",
		"env", string(env),
		"ms", timings["generatePreview_ms"],
		"statements", len(preview.SqlStatements),
		"questionnaireId", preview.Summary.QuestionnaireId)

	t1 := time.Now()
	perStmt, err := database.ExecuteSqlStatements(tx, preview.SqlStatements)
	if err != nil {
		return nil, err
	}
	timings["executeSql_ms"] = time.Since(t1).Milliseconds()
	recordSlowest(timings, perStmt)
	slog.Info("sql executed", "env", string(env), "ms", timings["executeSql_ms"])

	questionnaireId := preview.Summary.QuestionnaireId

	if p.storage != nil {
		t2 := time.Now()
		if err := p.uploadXmlAndUpdateUrls(ctx, tx, req, questionnaireId, s3Prefix); err != nil {
			return nil, err
		}
		timings["xmlAndS3Upload_ms"] = time.Since(t2).Milliseconds()
		slog.Info("xml uploaded", "env", string(env), "ms", timings["xmlAndS3Upload_ms"])
	} else {
		slog.Info("S3 upload disabled; skipping XML upload", "questionnaireId", questionnaireId)
	}

	if err := tx.Commit(); err != nil {
		return nil, err
	}
	committed = true

	timings["total_ms"] = time.Since(totalStart).Milliseconds()
	timings["questionnaireId"] = questionnaireId
	timings["groupCount"] = int64(len(req.GroupIds))
	slog.Info("questionnaire published", "env", string(env), "questionnaireId", questionnaireId, "totalMs", timings["total_ms"])

	return &models.PublishResult{QuestionnaireId: questionnaireId, Published: true, Timings: timings}, nil
}

// recordSlowest folds the five slowest statements into the timings map so a
// slow publish can be traced to a concrete statement index.
func recordSlowest(timings map[string]int64, perStmt []database.StatementTiming) {
	sorted := make([]database.StatementTiming, len(perStmt))
	copy(sorted, perStmt)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Ms > sorted[j].Ms })
	if len(sorted) > 5 {
		sorted = sorted[:5]
	}
	for i, entry := range sorted {
		rank := strconv.Itoa(i + 1)
		timings["slow"+rank+"_ms"] = entry.Ms
		timings["slow"+rank+"_idx"] = int64(entry.Index)
	}
}

func (p *AssessmentPublisher) uploadXmlAndUpdateUrls(ctx context.Context, tx database.DBTX, req *models.AssessmentBuildRequest, questionnaireId int64, s3Prefix string) error {
	var warnings []string
	assessmentName := req.AssessmentName

	questionnaireNl := GenerateQuestionnaireXml(req, "nl", &warnings)
	reportNl := GenerateReportXml(req, "nl", &warnings)
	questionnaireEn := GenerateQuestionnaireXml(req, "en", &warnings)
	reportEn := GenerateReportXml(req, "en", &warnings)

	if len(warnings) > 0 {
		slog.Warn("XML generation warnings", "questionnaireId", questionnaireId, "warnings", warnings)
	}

	var uploadedKeys []string
	rollback := func(err error) error {
		slog.Error("S3 upload or URL update failed; rolling back uploaded objects",
			"questionnaireId", questionnaireId, "uploaded", len(uploadedKeys), "error", err)
		p.storage.DeleteObjects(ctx, uploadedKeys)
		return err
	}

	nlQuestionnaireKey := p.storage.BuildKey(s3Prefix, "nl", assessmentName, "questionnaire")
	if err := p.storage.UploadXml(ctx, nlQuestionnaireKey, questionnaireNl); err != nil {
		return rollback(err)
	}
	uploadedKeys = append(uploadedKeys, nlQuestionnaireKey)

	nlReportKey := p.storage.BuildKey(s3Prefix, "nl", assessmentName, "report")
	if err := p.storage.UploadXml(ctx, nlReportKey, reportNl); err != nil {
		return rollback(err)
	}
	uploadedKeys = append(uploadedKeys, nlReportKey)

	enQuestionnaireKey := p.storage.BuildKey(s3Prefix, "en", assessmentName, "questionnaire")
	if err := p.storage.UploadXml(ctx, enQuestionnaireKey, questionnaireEn); err != nil {
		return rollback(err)
	}
	uploadedKeys = append(uploadedKeys, enQuestionnaireKey)

	enReportKey := p.storage.BuildKey(s3Prefix, "en", assessmentName, "report")
	if err := p.storage.UploadXml(ctx, enReportKey, reportEn); err != nil {
		return rollback(err)
	}
	uploadedKeys = append(uploadedKeys, enReportKey)

	if err := database.UpdateTranslationUrls(tx, questionnaireId, "nl",
		p.storage.BuildUrl(nlQuestionnaireKey), p.storage.BuildUrl(nlReportKey)); err != nil {
		return rollback(err)
	}
	if err := database.UpdateTranslationUrls(tx, questionnaireId, "en",
		p.storage.BuildUrl(enQuestionnaireKey), p.storage.BuildUrl(enReportKey)); err != nil {
		return rollback(err)
	}

	slog.Info("XML uploaded and URLs stored",
		"prefix", s3Prefix, "questionnaireId", questionnaireId,
		"nlKey", nlQuestionnaireKey, "enKey", enQuestionnaireKey)
	return nil
}
