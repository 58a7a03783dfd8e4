package database

import (
	"database/sql"
	"log/slog"
)

// RunMigrations ensures the builder-owned tables exist in the Metro test
// database. Metro-owned tables are never created here.
func RunMigrations(db *sql.DB) error {
	if err := EnsureUsersTable(db); err != nil {
		return err
	}
	if err := EnsureProjectsTable(db); err != nil {
		return err
	}
	slog.Info("builder tables ensured")
	return nil
}

type journeyColumn struct {
	name string
	ddl  string
}

var journeyColumns = []journeyColumn{
	{"nameEn", "ALTER TABLE learning_journeys ADD COLUMN nameEn VARCHAR(50)"},
	{"descriptionEn", "ALTER TABLE learning_journeys ADD COLUMN descriptionEn VARCHAR(50)"},
	{"aiCoachEnabled", "ALTER TABLE learning_journeys ADD COLUMN aiCoachEnabled INT NOT NULL DEFAULT 0"},
}

// EnsureJourneyColumns adds the bilingual and AI-coach columns to
// learning_journeys when the target environment predates them. Runs before
// the publish transaction; ALTER TABLE would commit it implicitly.
func EnsureJourneyColumns(db DBTX) error {
	for _, col := range journeyColumns {
		exists, err := HasLearningJourneyColumn(db, col.name)
		if err != nil {
			return err
		}
		if !exists {
			if _, err := db.Exec(col.ddl); err != nil {
				return err
			}
			slog.Info("added learning_journeys column", "column", col.name)
		}
	}
	return nil
}
