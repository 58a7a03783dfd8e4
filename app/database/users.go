package database

import (
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"github.com/gerarddekkers/builder-backend/app/models"
	"golang.org/x/crypto/bcrypt"
)

const (
	defaultAdminUsername = "support@mentes.me"
	defaultAdminDisplay  = "MentesMe Support"
)

// ErrUsernameTaken maps to a 409 in the user admin API.
var ErrUsernameTaken = errors.New("gebruikersnaam bestaat al")

func hashPassword(password string) (string, error) {
	bytes, err := bcrypt.GenerateFromPassword([]byte(password), 14)
	return string(bytes), err
}

// EnsureUsersTable creates builder_users when missing and applies the access
// flag column migration for older installs.
func EnsureUsersTable(db *sql.DB) error {
	_, err := db.Exec(`CREATE TABLE IF NOT EXISTS builder_users (
		id BIGINT AUTO_INCREMENT PRIMARY KEY,
		username VARCHAR(100) UNIQUE NOT NULL,
		display_name VARCHAR(255),
		password_hash VARCHAR(255) NOT NULL,
		role ENUM('ADMIN', 'BUILDER') NOT NULL DEFAULT 'BUILDER',
		active TINYINT(1) NOT NULL DEFAULT 1,
		access_assessment_test TINYINT(1) NOT NULL DEFAULT 0,
		access_assessment_prod TINYINT(1) NOT NULL DEFAULT 0,
		access_journeys_test TINYINT(1) NOT NULL DEFAULT 0,
		access_journeys_prod TINYINT(1) NOT NULL DEFAULT 0,
		created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
		updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP ON UPDATE CURRENT_TIMESTAMP,
		INDEX idx_builder_users_username (username),
		INDEX idx_builder_users_active (active)
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`)
	if err != nil {
		return err
	}

	accessColumns := []string{
		"access_assessment_test", "access_assessment_prod",
		"access_journeys_test", "access_journeys_prod",
	}
	for _, col := range accessColumns {
		var count int
		err := db.QueryRow(`SELECT COUNT(*) FROM INFORMATION_SCHEMA.COLUMNS
			WHERE TABLE_SCHEMA = DATABASE() AND TABLE_NAME = 'builder_users' AND COLUMN_NAME = ?`,
			col).Scan(&count)
		if err != nil {
			return err
		}
		if count == 0 {
			if _, err := db.Exec("ALTER TABLE builder_users ADD COLUMN " + col + " TINYINT(1) NOT NULL DEFAULT 0"); err != nil {
				return err
			}
		}
	}
	return nil
}

// SeedAdminUser inserts the support admin when the table is empty, taking the
// password from BUILDER_AUTH_PASSWORD. On existing installs it backfills the
// admin's access flags once.
func SeedAdminUser(db *sql.DB, password string) error {
	var count int
	if err := db.QueryRow(`SELECT COUNT(*) FROM builder_users`).Scan(&count); err != nil {
		return err
	}
	if count == 0 {
		if password == "" {
			slog.Warn("no BUILDER_AUTH_PASSWORD set, cannot seed admin user")
			return nil
		}
		hash, err := hashPassword(password)
		if err != nil {
			return err
		}
		_, err = db.Exec(`INSERT INTO builder_users
			(username, display_name, password_hash, role, active,
			 access_assessment_test, access_assessment_prod, access_journeys_test, access_journeys_prod)
			VALUES (?, ?, ?, 'ADMIN', 1, 1, 1, 1, 1)`,
			defaultAdminUsername, defaultAdminDisplay, hash)
		if err != nil {
			return err
		}
		slog.Info("seeded admin user", "username", defaultAdminUsername)
		return nil
	}

	res, err := db.Exec(`UPDATE builder_users
		SET access_assessment_test = 1, access_assessment_prod = 1,
		    access_journeys_test = 1, access_journeys_prod = 1
		WHERE username = ? AND access_assessment_test = 0`, defaultAdminUsername)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n > 0 {
		slog.Info("updated admin user access flags", "username", defaultAdminUsername)
	}
	return nil
}

const userColumns = `id, username, COALESCE(display_name, ''), password_hash, role, active,
	access_assessment_test, access_assessment_prod, access_journeys_test, access_journeys_prod,
	created_at, updated_at`

func scanUser(row interface{ Scan(...any) error }) (*models.BuilderUser, error) {
	user := &models.BuilderUser{}
	err := row.Scan(
		&user.ID, &user.Username, &user.DisplayName, &user.PasswordHash, &user.Role, &user.Active,
		&user.AccessAssessmentTest, &user.AccessAssessmentProd,
		&user.AccessJourneysTest, &user.AccessJourneysProd,
		&user.CreatedAt, &user.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return user, nil
}

func GetUserByUsername(db *sql.DB, username string) (*models.BuilderUser, error) {
	return scanUser(db.QueryRow(
		`SELECT `+userColumns+` FROM builder_users WHERE username = ?`, username))
}

func GetUserByID(db *sql.DB, id int64) (*models.BuilderUser, error) {
	return scanUser(db.QueryRow(
		`SELECT `+userColumns+` FROM builder_users WHERE id = ?`, id))
}

// AuthenticateUser verifies the password against the active user's hash.
// Returns nil without error when the credentials do not match.
func AuthenticateUser(db *sql.DB, username, password string) (*models.BuilderUser, error) {
	user, err := scanUser(db.QueryRow(
		`SELECT `+userColumns+` FROM builder_users WHERE username = ? AND active = 1`, username))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)) != nil {
		return nil, nil
	}
	return user, nil
}

func CountActiveUsers(db *sql.DB) (int, error) {
	var count int
	err := db.QueryRow(`SELECT COUNT(*) FROM builder_users WHERE active = 1`).Scan(&count)
	return count, err
}

func ListUsers(db *sql.DB) ([]models.BuilderUser, error) {
	rows, err := db.Query(`SELECT ` + userColumns + ` FROM builder_users ORDER BY username ASC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var users []models.BuilderUser
	for rows.Next() {
		user, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		users = append(users, *user)
	}
	return users, rows.Err()
}

func CreateUser(db *sql.DB, req models.CreateUserRequest) (*models.BuilderUser, error) {
	existing, err := GetUserByUsername(db, req.Username)
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return nil, err
	}
	if existing != nil {
		return nil, fmt.Errorf("%w: %s", ErrUsernameTaken, req.Username)
	}

	hash, err := hashPassword(req.Password)
	if err != nil {
		return nil, err
	}
	role := req.Role
	if role == "" {
		role = models.RoleBuilder
	}
	res, err := db.Exec(`INSERT INTO builder_users
		(username, display_name, password_hash, role, active,
		 access_assessment_test, access_assessment_prod, access_journeys_test, access_journeys_prod)
		VALUES (?, ?, ?, ?, 1, ?, ?, ?, ?)`,
		req.Username, req.DisplayName, hash, role,
		req.AccessAssessmentTest, req.AccessAssessmentProd,
		req.AccessJourneysTest, req.AccessJourneysProd)
	if err != nil {
		return nil, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return nil, err
	}
	return GetUserByID(db, id)
}

func UpdateUser(db *sql.DB, id int64, req models.UpdateUserRequest) (*models.BuilderUser, error) {
	user, err := GetUserByID(db, id)
	if err != nil {
		return nil, err
	}
	if req.DisplayName != nil {
		user.DisplayName = *req.DisplayName
	}
	if req.Role != nil {
		user.Role = *req.Role
	}
	if req.Active != nil {
		user.Active = *req.Active
	}
	if req.AccessAssessmentTest != nil {
		user.AccessAssessmentTest = *req.AccessAssessmentTest
	}
	if req.AccessAssessmentProd != nil {
		user.AccessAssessmentProd = *req.AccessAssessmentProd
	}
	if req.AccessJourneysTest != nil {
		user.AccessJourneysTest = *req.AccessJourneysTest
	}
	if req.AccessJourneysProd != nil {
		user.AccessJourneysProd = *req.AccessJourneysProd
	}

	_, err = db.Exec(`UPDATE builder_users SET display_name = ?, role = ?, active = ?,
		access_assessment_test = ?, access_assessment_prod = ?,
		access_journeys_test = ?, access_journeys_prod = ?, updated_at = NOW()
		WHERE id = ?`,
		user.DisplayName, user.Role, user.Active,
		user.AccessAssessmentTest, user.AccessAssessmentProd,
		user.AccessJourneysTest, user.AccessJourneysProd, id)
	if err != nil {
		return nil, err
	}
	return GetUserByID(db, id)
}

func ChangeUserPassword(db *sql.DB, id int64, newPassword string) error {
	hash, err := hashPassword(newPassword)
	if err != nil {
		return err
	}
	res, err := db.Exec(`UPDATE builder_users SET password_hash = ?, updated_at = NOW() WHERE id = ?`, hash, id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return sql.ErrNoRows
	}
	return nil
}
