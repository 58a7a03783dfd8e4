package database

import (
	"database/sql"
	"errors"

	"github.com/gerarddekkers/builder-backend/app/models"
)

func EnsureProjectsTable(db *sql.DB) error {
	_, err := db.Exec(`CREATE TABLE IF NOT EXISTS builder_projects (
		id VARCHAR(64) PRIMARY KEY,
		name VARCHAR(255) NOT NULL,
		project_data LONGTEXT,
		current_step INT NOT NULL DEFAULT 0,
		created_by VARCHAR(100),
		updated_by VARCHAR(100),
		created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
		updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP ON UPDATE CURRENT_TIMESTAMP
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`)
	return err
}

// ListProjects returns all drafts without their project_data payload, newest
// change first.
func ListProjects(db *sql.DB) ([]models.BuilderProject, error) {
	rows, err := db.Query(`SELECT id, name, current_step,
		COALESCE(created_by, ''), COALESCE(updated_by, ''), created_at, updated_at
		FROM builder_projects ORDER BY updated_at DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var projects []models.BuilderProject
	for rows.Next() {
		var p models.BuilderProject
		if err := rows.Scan(&p.ID, &p.Name, &p.CurrentStep, &p.CreatedBy, &p.UpdatedBy, &p.CreatedAt, &p.UpdatedAt); err != nil {
			return nil, err
		}
		projects = append(projects, p)
	}
	return projects, rows.Err()
}

func GetProjectByID(db *sql.DB, id string) (*models.BuilderProject, error) {
	p := &models.BuilderProject{}
	var data sql.NullString
	err := db.QueryRow(`SELECT id, name, project_data, current_step,
		COALESCE(created_by, ''), COALESCE(updated_by, ''), created_at, updated_at
		FROM builder_projects WHERE id = ?`, id).Scan(
		&p.ID, &p.Name, &data, &p.CurrentStep, &p.CreatedBy, &p.UpdatedBy, &p.CreatedAt, &p.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	p.ProjectData = data.String
	return p, nil
}

// SaveProject upserts a draft; username lands in created_by on insert and
// updated_by always.
func SaveProject(db *sql.DB, p models.BuilderProject, username string) error {
	_, err := db.Exec(`INSERT INTO builder_projects (id, name, project_data, current_step, created_by, updated_by)
		VALUES (?, ?, ?, ?, ?, ?)
		ON DUPLICATE KEY UPDATE
		name = VALUES(name), project_data = VALUES(project_data),
		current_step = VALUES(current_step), updated_by = VALUES(updated_by)`,
		p.ID, p.Name, p.ProjectData, p.CurrentStep, username, username)
	return err
}

func DeleteProject(db *sql.DB, id string) (bool, error) {
	res, err := db.Exec(`DELETE FROM builder_projects WHERE id = ?`, id)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	return n > 0, err
}
