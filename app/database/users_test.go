package database

import (
	"database/sql"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/gerarddekkers/builder-backend/app/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

const selectUserByUsername = "SELECT id, username, COALESCE(display_name, ''), password_hash, role, active, access_assessment_test, access_assessment_prod, access_journeys_test, access_journeys_prod, created_at, updated_at FROM builder_users WHERE username = ? AND active = 1"

func userRows(passwordHash string) *sqlmock.Rows {
	now := time.Now()
	return sqlmock.NewRows([]string{
		"id", "username", "display_name", "password_hash", "role", "active",
		"access_assessment_test", "access_assessment_prod", "access_journeys_test", "access_journeys_prod",
		"created_at", "updated_at",
	}).AddRow(1, "gerard", "Gerard", passwordHash, "ADMIN", true, true, true, false, false, now, now)
}

func newUserMock(t *testing.T) (*sql.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherEqual))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db, mock
}

func TestAuthenticateUser(t *testing.T) {
	db, mock := newUserMock(t)

	hash, err := bcrypt.GenerateFromPassword([]byte("geheim"), bcrypt.MinCost)
	require.NoError(t, err)
	mock.ExpectQuery(selectUserByUsername).WithArgs("gerard").WillReturnRows(userRows(string(hash)))

	user, err := AuthenticateUser(db, "gerard", "geheim")
	require.NoError(t, err)
	require.NotNil(t, user)
	assert.Equal(t, "gerard", user.Username)
	assert.Equal(t, models.RoleAdmin, user.Role)
	assert.True(t, user.AccessAssessmentTest)
	assert.False(t, user.AccessJourneysProd)
}

func TestAuthenticateUserWrongPassword(t *testing.T) {
	db, mock := newUserMock(t)

	hash, err := bcrypt.GenerateFromPassword([]byte("geheim"), bcrypt.MinCost)
	require.NoError(t, err)
	mock.ExpectQuery(selectUserByUsername).WithArgs("gerard").WillReturnRows(userRows(string(hash)))

	user, err := AuthenticateUser(db, "gerard", "fout")
	require.NoError(t, err)
	assert.Nil(t, user)
}

func TestAuthenticateUserUnknown(t *testing.T) {
	db, mock := newUserMock(t)

	mock.ExpectQuery(selectUserByUsername).WithArgs("nobody").
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	user, err := AuthenticateUser(db, "nobody", "x")
	require.NoError(t, err)
	assert.Nil(t, user)
}

func TestCreateUserDuplicateUsername(t *testing.T) {
	db, mock := newUserMock(t)

	hash, _ := bcrypt.GenerateFromPassword([]byte("x"), bcrypt.MinCost)
	mock.ExpectQuery("SELECT id, username, COALESCE(display_name, ''), password_hash, role, active, access_assessment_test, access_assessment_prod, access_journeys_test, access_journeys_prod, created_at, updated_at FROM builder_users WHERE username = ?").
		WithArgs("gerard").WillReturnRows(userRows(string(hash)))

	_, err := CreateUser(db, models.CreateUserRequest{Username: "gerard", Password: "geheim"})
	assert.ErrorIs(t, err, ErrUsernameTaken)
}

func TestChangeUserPasswordMissingUser(t *testing.T) {
	db, mock := newUserMock(t)

	mock.ExpectExec("UPDATE builder_users SET password_hash = ?, updated_at = NOW() WHERE id = ?").
		WithArgs(sqlmock.AnyArg(), int64(99)).
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := ChangeUserPassword(db, 99, "nieuw")
	assert.ErrorIs(t, err, sql.ErrNoRows)
}
